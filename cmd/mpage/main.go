package main

import (
	"errors"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/TimelordUK/mpage/internal/config"
	"github.com/TimelordUK/mpage/internal/logger"
	"github.com/TimelordUK/mpage/internal/pager"
	"github.com/TimelordUK/mpage/internal/source"
	"github.com/TimelordUK/mpage/internal/ui"
)

// Version information injected at build time.
var version = "dev"

type flags struct {
	configFile string
	logFile    string
	logLevel   string
	squeeze    bool
	ignoreCase bool
	verbose    bool
	lines      int
	line       int
	pattern    string
}

func newRootCmd() *cobra.Command {
	return newCommand(&flags{})
}

// newCommand builds the root command with its flags bound to f
func newCommand(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mpage [flags] [file...]",
		Short: "mpage - a terminal pager",
		Long: `mpage displays files one screen at a time. It reads seekable files
through memory mapping and pipes through a bounded block cache, so
moving backwards and searching work on both.

With no file, or with "-", standard input is read.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f, args)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.configFile, "config", "", "config file (default: $XDG_CONFIG_HOME/mpage/config.toml)")
	fl.StringVar(&f.logFile, "log-file", "", "write diagnostic log to this file")
	fl.StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	fl.BoolVarP(&f.squeeze, "squeeze", "s", false, "squeeze runs of blank lines into one")
	fl.BoolVarP(&f.ignoreCase, "ignore-case", "i", false, "ignore case in searches")
	fl.BoolVarP(&f.verbose, "verbose-prompt", "m", false, "show position details in the prompt")
	fl.IntVarP(&f.lines, "lines", "n", 0, "rows per screen before the terminal size is known")
	fl.IntVarP(&f.line, "line", "l", 0, "start at this line")
	fl.StringVarP(&f.pattern, "pattern", "p", "", "start at the first line matching this pattern")

	return cmd
}

// applyFlags overlays command line flags on the loaded config
func applyFlags(cmd *cobra.Command, f *flags, cfg *config.Config) {
	fl := cmd.Flags()
	if fl.Changed("squeeze") {
		cfg.Pager.Squeeze = f.squeeze
	}
	if fl.Changed("ignore-case") {
		cfg.Pager.IgnoreCase = f.ignoreCase
	}
	if fl.Changed("verbose-prompt") {
		cfg.Pager.VerbosePrompt = f.verbose
	}
	if f.logFile != "" {
		cfg.Logging.Output = f.logFile
	}
	if f.logLevel != "" {
		cfg.Logging.Level = f.logLevel
	}
}

// sessionOptions builds the pager options described by cfg
func sessionOptions(cfg *config.Config, rows int) pager.SessionOptions {
	nav := pager.DefaultOptions()
	if rows > 0 {
		nav.Rows = rows
	}
	if cfg.Pager.SearchWraps > 0 {
		nav.SearchWraps = cfg.Pager.SearchWraps
	}

	reader := source.DefaultOptions()
	reader.Squeeze = cfg.Pager.Squeeze
	if cfg.Pager.MaxLineLength > 0 {
		reader.MaxLineLen = cfg.Pager.MaxLineLength
	}
	if cfg.Pager.MaxRawLength > 0 {
		reader.MaxRawLen = cfg.Pager.MaxRawLength
	}
	if c := cfg.Pager.PrintableCeiling; c > 0 && c <= 0xff {
		reader.Ceiling = byte(c)
	}
	nav.Reader = reader

	return pager.SessionOptions{
		Navigator:   nav,
		CacheBlocks: cfg.Pager.CacheBlocks,
	}
}

// startupCommands returns the commands given by -l and -p
func startupCommands(f *flags) []pager.Command {
	var cmds []pager.Command
	if f.line > 0 {
		cmds = append(cmds, pager.Command{Action: pager.ActionGotoLine, Count: f.line})
	}
	if f.pattern != "" {
		cmds = append(cmds, pager.Command{Action: pager.ActionSearchForward, Arg: f.pattern})
	}
	return cmds
}

func run(cmd *cobra.Command, f *flags, files []string) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}
	applyFlags(cmd, f, cfg)

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return err
	}
	defer logger.Close()

	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return copyAll(cmd.OutOrStdout(), files)
	}

	session := pager.NewSession(files, sessionOptions(cfg, f.lines))
	if err := session.Start(); err != nil {
		return errors.New(pager.MessageFor(err))
	}
	defer session.Close()

	logger.Info("pager started", "files", len(session.Files()), "first", session.Name())

	model := ui.NewModel(session, cfg, ui.Options{Startup: startupCommands(f)})
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error("pager failed", "error", err)
		return err
	}
	return nil
}

func loadConfig(f *flags) (*config.Config, error) {
	if f.configFile != "" {
		return config.LoadFrom(f.configFile)
	}
	return config.Load()
}

// copyAll writes files to w unpaged, as when output is not a terminal
func copyAll(w io.Writer, files []string) error {
	if len(files) == 0 {
		files = []string{pager.StdinName}
	}

	var errs []error
	for _, name := range files {
		if name == pager.StdinName {
			if _, err := io.Copy(w, os.Stdin); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		fh, err := os.Open(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		_, err = io.Copy(w, fh)
		fh.Close()
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		cmd.PrintErrf("mpage: %v\n", err)
		os.Exit(1)
	}
}
