package render

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/x/ansi"

	"github.com/TimelordUK/mpage/internal/config"
	"github.com/TimelordUK/mpage/internal/overstrike"
)

// SyntaxRenderer applies syntax highlighting based on file type. Lines
// carrying overstrike emphasis go to the fallback renderer instead.
type SyntaxRenderer struct {
	filename    string
	lexerName   string
	syntaxTheme string
	tabWidth    int
	fallback    Renderer
}

// NewSyntaxRenderer creates a syntax highlighting renderer for the given filename
func NewSyntaxRenderer(filename string, cfg *config.Config, fallback Renderer) *SyntaxRenderer {
	// Get lexer by filename extension
	lexer := lexers.Match(filename)
	lexerName := "plaintext"
	if lexer != nil {
		lexerName = lexer.Config().Name
	}

	theme := cfg.Theme.SyntaxTheme
	if theme == "" {
		theme = "monokai"
	}

	return &SyntaxRenderer{
		filename:    filename,
		lexerName:   lexerName,
		syntaxTheme: theme,
		tabWidth:    max(cfg.Display.TabWidth, 1),
		fallback:    fallback,
	}
}

// Lexer returns the name of the chroma lexer in use
func (r *SyntaxRenderer) Lexer() string {
	return r.lexerName
}

// Render applies syntax highlighting to a line
func (r *SyntaxRenderer) Render(line *overstrike.Line, width int) string {
	if line.HasMarkup() {
		return r.fallback.Render(line, width)
	}

	content, _, _ := Expand(line.Plain(), 0, r.tabWidth, width)
	if content == "" {
		return ""
	}

	var buf bytes.Buffer
	err := quick.Highlight(&buf, content, r.lexerName, "terminal16m", r.syntaxTheme)
	if err != nil {
		return content
	}

	// Remove any newlines that quick.Highlight adds
	highlighted := strings.NewReplacer("\n", "", "\r", "").Replace(buf.String())
	if width > 0 {
		highlighted = ansi.Truncate(highlighted, width, "")
	}
	return highlighted
}

// IsSyntaxHighlightable returns true if the file type supports syntax highlighting
func IsSyntaxHighlightable(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))

	// Common source code extensions
	syntaxExts := map[string]bool{
		".go": true, ".rs": true, ".py": true, ".js": true, ".ts": true,
		".jsx": true, ".tsx": true, ".c": true, ".cpp": true, ".h": true,
		".hpp": true, ".java": true, ".rb": true, ".php": true, ".swift": true,
		".kt": true, ".scala": true, ".cs": true, ".lua": true,
		".sh": true, ".bash": true, ".zsh": true, ".fish": true,
		".yaml": true, ".yml": true, ".json": true, ".toml": true, ".xml": true,
		".html": true, ".css": true, ".sql": true, ".md": true, ".markdown": true,
		".zig": true, ".hs": true, ".ml": true, ".pl": true, ".pm": true,
		".ex": true, ".exs": true, ".erl": true, ".clj": true,
	}

	if syntaxExts[ext] {
		return true
	}

	// Check for special filenames
	base := strings.ToLower(filepath.Base(filename))
	specialFiles := map[string]bool{
		"makefile": true, "dockerfile": true, "cmakelists.txt": true,
		"gemfile": true, "rakefile": true, "vagrantfile": true,
	}

	return specialFiles[base]
}
