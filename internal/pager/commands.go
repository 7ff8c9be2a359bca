package pager

import (
	"errors"
	"io"

	"github.com/TimelordUK/mpage/internal/logger"
	"github.com/TimelordUK/mpage/internal/overstrike"
)

// Action is a logical pager command
type Action int

const (
	ActionNone Action = iota
	ActionLineForward
	ActionLineBackward
	ActionPageForward
	ActionPageBackward
	ActionHalfPageForward
	ActionHalfPageBackward
	ActionGotoLine
	ActionGotoPercent
	ActionGotoEOF
	ActionSearchForward
	ActionSearchBackward
	ActionRepeatSearch
	ActionRepeatSearchReverse
	ActionSetMark
	ActionGotoMark
	ActionNextFile
	ActionPrevFile
	ActionExternal
	ActionSuspend
	ActionResume
	ActionToggleSqueeze
	ActionToggleIgnoreCase
	ActionToggleVerbose
	ActionRedraw
	ActionQuit
)

var actionNames = map[Action]string{
	ActionNone:                "none",
	ActionLineForward:         "line-forward",
	ActionLineBackward:        "line-backward",
	ActionPageForward:         "page-forward",
	ActionPageBackward:        "page-backward",
	ActionHalfPageForward:     "half-page-forward",
	ActionHalfPageBackward:    "half-page-backward",
	ActionGotoLine:            "goto-line",
	ActionGotoPercent:         "goto-percent",
	ActionGotoEOF:             "goto-eof",
	ActionSearchForward:       "search-forward",
	ActionSearchBackward:      "search-backward",
	ActionRepeatSearch:        "repeat-search",
	ActionRepeatSearchReverse: "repeat-search-reverse",
	ActionSetMark:             "set-mark",
	ActionGotoMark:            "goto-mark",
	ActionNextFile:            "next-file",
	ActionPrevFile:            "prev-file",
	ActionExternal:            "external",
	ActionSuspend:             "suspend",
	ActionResume:              "resume",
	ActionToggleSqueeze:       "toggle-squeeze",
	ActionToggleIgnoreCase:    "toggle-ignore-case",
	ActionToggleVerbose:       "toggle-verbose",
	ActionRedraw:              "redraw",
	ActionQuit:                "quit",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return "unknown"
}

// Command is one decoded user request
type Command struct {
	Action Action

	// Count is the numeric prefix; 0 means none was typed
	Count int

	// Arg is the search pattern
	Arg string

	// Mark is the mark letter
	Mark byte

	// Run is the external command run between suspend and resume
	Run func() error
}

// Renderer draws pager output. A nil line is a row past the end of the source.
type Renderer interface {
	DisplayLine(row int, line *overstrike.Line)
	DisplayStatus(text string)
	DisplayError(text string)
}

// CommandReader supplies commands to Run. io.EOF ends the loop.
type CommandReader interface {
	ReadCommand() (Command, error)
}

// DispatchOptions holds the toggles owned by the dispatcher
type DispatchOptions struct {
	IgnoreCase bool
	Verbose    bool
}

// Dispatcher executes commands against a session and reports through a
// Renderer. Errors from individual commands never escape it.
type Dispatcher struct {
	session  *Session
	renderer Renderer
	opts     DispatchOptions
}

// NewDispatcher creates a dispatcher
func NewDispatcher(s *Session, r Renderer, opts DispatchOptions) *Dispatcher {
	return &Dispatcher{session: s, renderer: r, opts: opts}
}

// Session returns the session being driven
func (d *Dispatcher) Session() *Session {
	return d.session
}

// Options returns the current toggles
func (d *Dispatcher) Options() DispatchOptions {
	return d.opts
}

// Execute runs cmd to completion and redraws. It reports whether the
// command asks to quit.
func (d *Dispatcher) Execute(cmd Command) bool {
	if cmd.Action == ActionQuit {
		return true
	}

	msg, err := d.execute(cmd)
	d.Redraw()
	if err != nil {
		logger.Debug("command failed", "action", cmd.Action.String(), "error", err)
		d.renderer.DisplayError(MessageFor(err))
	} else if msg != "" {
		d.renderer.DisplayStatus(msg)
	}
	return false
}

func count(c Command) int {
	if c.Count < 1 {
		return 1
	}
	return c.Count
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func (d *Dispatcher) execute(cmd Command) (string, error) {
	s := d.session
	n := count(cmd)

	switch cmd.Action {
	case ActionNone, ActionRedraw:
		return "", nil
	case ActionNextFile:
		return "", s.Next(n)
	case ActionPrevFile:
		return "", s.Prev(n)
	case ActionSuspend:
		s.Suspend()
		return "", nil
	case ActionResume:
		return "", s.Resume()
	case ActionExternal:
		s.Suspend()
		var runErr error
		if cmd.Run != nil {
			runErr = cmd.Run()
		}
		if err := s.Resume(); err != nil {
			return "", err
		}
		return "", runErr
	case ActionToggleSqueeze:
		on := !s.Options().Navigator.Reader.Squeeze
		return "Squeeze blank lines " + onOff(on), s.SetSqueeze(on)
	case ActionToggleIgnoreCase:
		d.opts.IgnoreCase = !d.opts.IgnoreCase
		return "Ignore case in searches " + onOff(d.opts.IgnoreCase), nil
	case ActionToggleVerbose:
		d.opts.Verbose = !d.opts.Verbose
		return "", nil
	}

	nav, err := s.Navigator()
	if err != nil {
		return "", err
	}

	switch cmd.Action {
	case ActionLineForward:
		return "", nav.ScrollForward(n)
	case ActionLineBackward:
		return "", nav.ScrollBackward(n)
	case ActionPageForward:
		return "", nav.PageForward(n)
	case ActionPageBackward:
		return "", nav.PageBackward(n)
	case ActionHalfPageForward:
		return "", nav.HalfPageForward(n)
	case ActionHalfPageBackward:
		return "", nav.HalfPageBackward(n)
	case ActionGotoLine:
		return "", nav.GotoLine(n)
	case ActionGotoPercent:
		return "", nav.GotoPercent(cmd.Count)
	case ActionGotoEOF:
		return "", nav.GotoEOF()
	case ActionSearchForward:
		return "", nav.Search(Forward, cmd.Arg, n, d.opts.IgnoreCase)
	case ActionSearchBackward:
		return "", nav.Search(Backward, cmd.Arg, n, d.opts.IgnoreCase)
	case ActionRepeatSearch:
		return "", nav.RepeatSearch(false, n)
	case ActionRepeatSearchReverse:
		return "", nav.RepeatSearch(true, n)
	case ActionSetMark:
		return "", nav.SetMark(cmd.Mark)
	case ActionGotoMark:
		return "", nav.GotoMark(cmd.Mark)
	}
	return "", nil
}

// Redraw sends every row and the prompt to the renderer
func (d *Dispatcher) Redraw() {
	nav, err := d.session.Navigator()
	if err != nil {
		d.renderer.DisplayError(MessageFor(err))
		return
	}

	lines := nav.Lines()
	for row := 0; row < nav.Rows(); row++ {
		var line *overstrike.Line
		if row < len(lines) {
			line = lines[row]
		}
		d.renderer.DisplayLine(row, line)
	}
	d.renderer.DisplayStatus(d.session.Status(d.opts.Verbose))
}

// Run draws the first screen and executes commands until quit or until the
// reader fails. io.EOF from the reader ends the loop cleanly.
func (d *Dispatcher) Run(r CommandReader) error {
	d.Redraw()
	for {
		cmd, err := r.ReadCommand()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if d.Execute(cmd) {
			return nil
		}
	}
}
