package render

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/TimelordUK/mpage/internal/config"
	"github.com/TimelordUK/mpage/internal/overstrike"
)

// Renderer turns a decoded line into terminal text at most width cells
// wide. A width of zero or less means no limit.
type Renderer interface {
	Render(line *overstrike.Line, width int) string
}

// New picks the renderer for filename according to cfg
func New(cfg *config.Config, filename string) Renderer {
	markup := NewMarkupRenderer(cfg)
	if cfg.Display.SyntaxHighlight && IsSyntaxHighlightable(filename) {
		return NewSyntaxRenderer(filename, cfg, markup)
	}
	return markup
}

// MarkupRenderer draws bold and underline runs with lipgloss styles
type MarkupRenderer struct {
	tabWidth  int
	bold      lipgloss.Style
	underline lipgloss.Style
	both      lipgloss.Style
}

// NewMarkupRenderer creates a renderer with the theme from cfg
func NewMarkupRenderer(cfg *config.Config) *MarkupRenderer {
	bold := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(cfg.Theme.Bold))
	under := lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color(cfg.Theme.Underline))
	return &MarkupRenderer{
		tabWidth:  max(cfg.Display.TabWidth, 1),
		bold:      bold,
		underline: under,
		both:      bold.Underline(true),
	}
}

// Render applies emphasis styling to a line
func (r *MarkupRenderer) Render(line *overstrike.Line, width int) string {
	var out strings.Builder
	col := 0
	for _, seg := range line.Segments() {
		text, w, full := Expand(seg.Text, col, r.tabWidth, width)
		col += w
		switch {
		case seg.Bold && seg.Underline:
			out.WriteString(r.both.Render(text))
		case seg.Bold:
			out.WriteString(r.bold.Render(text))
		case seg.Underline:
			out.WriteString(r.underline.Render(text))
		default:
			out.WriteString(text)
		}
		if full {
			break
		}
	}
	return out.String()
}

// Expand makes s displayable starting at column col: tabs become spaces,
// control bytes become caret pairs, and text stops before exceeding width
// cells. It returns the text, the cells used and whether width was reached.
func Expand(s string, col, tabWidth, width int) (string, int, bool) {
	var b strings.Builder
	used := 0
	fits := func(w int) bool {
		return width <= 0 || col+used+w <= width
	}

	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]

		var text string
		var w int
		switch {
		case r == '\t':
			w = tabWidth - (col+used)%tabWidth
			text = strings.Repeat(" ", w)
		case r < 0x20:
			text, w = "^"+string(rune(r+'@')), 2
		case r == utf8.RuneError && size == 1:
			text, w = ".", 1
		default:
			text, w = string(r), runewidth.RuneWidth(r)
		}

		if !fits(w) {
			return b.String(), used, true
		}
		b.WriteString(text)
		used += w
	}
	return b.String(), used, width > 0 && col+used >= width
}
