package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration
type Config struct {
	Pager       PagerConfig      `toml:"pager"`
	Theme       ThemeConfig      `toml:"theme"`
	Keybindings KeybindingConfig `toml:"keybindings"`
	Display     DisplayConfig    `toml:"display"`
	Logging     LoggingConfig    `toml:"logging"`
}

// PagerConfig holds paging engine options
type PagerConfig struct {
	Squeeze          bool   `toml:"squeeze"`
	IgnoreCase       bool   `toml:"ignore_case"`
	VerbosePrompt    bool   `toml:"verbose_prompt"`
	CacheBlocks      int    `toml:"cache_blocks"`
	MaxLineLength    int    `toml:"max_line_length"`
	MaxRawLength     int    `toml:"max_raw_length"`
	SearchWraps      int    `toml:"search_wraps"`
	PrintableCeiling int    `toml:"printable_ceiling"`
	Editor           string `toml:"editor"`
}

// ThemeConfig defines color schemes
type ThemeConfig struct {
	Name          string `toml:"name"`
	Bold          string `toml:"bold"`
	Underline     string `toml:"underline"`
	StatusBar     string `toml:"status_bar"`
	StatusBarText string `toml:"status_bar_text"`
	Error         string `toml:"error"`
	Filler        string `toml:"filler"`
	SyntaxTheme   string `toml:"syntax_theme"`
}

// KeybindingConfig allows customizing keybindings
type KeybindingConfig struct {
	Quit             []string `toml:"quit"`
	LineDown         []string `toml:"line_down"`
	LineUp           []string `toml:"line_up"`
	PageDown         []string `toml:"page_down"`
	PageUp           []string `toml:"page_up"`
	HalfPageDown     []string `toml:"half_page_down"`
	HalfPageUp       []string `toml:"half_page_up"`
	Top              []string `toml:"top"`
	Bottom           []string `toml:"bottom"`
	Percent          []string `toml:"percent"`
	SearchForward    []string `toml:"search_forward"`
	SearchBackward   []string `toml:"search_backward"`
	NextMatch        []string `toml:"next_match"`
	PrevMatch        []string `toml:"prev_match"`
	SetMark          []string `toml:"set_mark"`
	GotoMark         []string `toml:"goto_mark"`
	NextFile         []string `toml:"next_file"`
	PrevFile         []string `toml:"prev_file"`
	Edit             []string `toml:"edit"`
	ToggleSqueeze    []string `toml:"toggle_squeeze"`
	ToggleIgnoreCase []string `toml:"toggle_ignore_case"`
	ToggleVerbose    []string `toml:"toggle_verbose"`
	Redraw           []string `toml:"redraw"`
}

// DisplayConfig holds display options
type DisplayConfig struct {
	SyntaxHighlight bool `toml:"syntax_highlight"`
	TabWidth        int  `toml:"tab_width"`
}

// LoggingConfig controls the diagnostic log. The terminal belongs to the
// pager, so logs go to a file or nowhere.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	Output string `toml:"output"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Pager: PagerConfig{
			CacheBlocks:      16,
			MaxLineLength:    1024,
			MaxRawLength:     1024,
			SearchWraps:      1,
			PrintableCeiling: 0xff,
		},
		Theme: ThemeConfig{
			Name:          "subtle",
			Bold:          "231", // White
			Underline:     "117", // Light blue
			StatusBar:     "236", // Darker gray background
			StatusBarText: "252", // Light gray text
			Error:         "167", // Soft red
			Filler:        "240", // Dark gray
			SyntaxTheme:   "monokai",
		},
		Keybindings: KeybindingConfig{
			Quit:             []string{"q", "Q", "ctrl+c"},
			LineDown:         []string{"j", "down", "enter", "e"},
			LineUp:           []string{"k", "up", "y"},
			PageDown:         []string{"f", "pgdown", " ", "ctrl+f"},
			PageUp:           []string{"b", "pgup", "ctrl+b"},
			HalfPageDown:     []string{"d", "ctrl+d"},
			HalfPageUp:       []string{"u", "ctrl+u"},
			Top:              []string{"g", "<", "home"},
			Bottom:           []string{"G", ">", "end"},
			Percent:          []string{"p", "%"},
			SearchForward:    []string{"/"},
			SearchBackward:   []string{"?"},
			NextMatch:        []string{"n"},
			PrevMatch:        []string{"N"},
			SetMark:          []string{"m"},
			GotoMark:         []string{"'"},
			NextFile:         []string{"]"},
			PrevFile:         []string{"["},
			Edit:             []string{"v"},
			ToggleSqueeze:    []string{"S"},
			ToggleIgnoreCase: []string{"I"},
			ToggleVerbose:    []string{"="},
			Redraw:           []string{"r", "ctrl+l"},
		},
		Display: DisplayConfig{
			SyntaxHighlight: true,
			TabWidth:        8,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "discard",
		},
	}
}

// Load loads config from the default location, falling back to defaults
func Load() (*Config, error) {
	return LoadFrom(getConfigPath())
}

// LoadFrom loads config from path. A missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Save saves config to the default location
func Save(cfg *Config) error {
	return SaveTo(cfg, getConfigPath())
}

// SaveTo writes cfg to path, creating its directory
func SaveTo(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// getConfigPath returns the config file path
func getConfigPath() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "mpage", "config.toml")
	}

	// Fall back to ~/.config
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".config", "mpage", "config.toml")
}

// GetConfigPath exports the config path for user reference
func GetConfigPath() string {
	return getConfigPath()
}
