package ui

import (
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/TimelordUK/mpage/internal/config"
	"github.com/TimelordUK/mpage/internal/logger"
	"github.com/TimelordUK/mpage/internal/overstrike"
	"github.com/TimelordUK/mpage/internal/pager"
	"github.com/TimelordUK/mpage/internal/render"
)

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
	ModeGoto
	ModeSetMark
	ModeGotoMark
)

// Options configures a Model
type Options struct {
	// Startup commands run once before the first screen
	Startup []pager.Command
}

// editorFinishedMsg arrives when the external editor exits
type editorFinishedMsg struct{ err error }

// Model is the main application model. It is also the pager.Renderer the
// dispatcher draws into; View only assembles what was drawn.
type Model struct {
	session    *pager.Session
	dispatcher *pager.Dispatcher
	cfg        *config.Config
	keys       keyMap
	input      textinput.Model

	mode      Mode
	searchDir pager.Direction
	count     int
	width     int
	height    int
	quitting  bool

	rows      []string
	status    string
	statusErr bool

	renderer    render.Renderer
	rendererFor string

	statusStyle lipgloss.Style
	errorStyle  lipgloss.Style
	fillerStyle lipgloss.Style
}

// NewModel creates a model over a started session
func NewModel(session *pager.Session, cfg *config.Config, opts Options) *Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 256

	m := &Model{
		session: session,
		cfg:     cfg,
		keys:    newKeyMap(cfg.Keybindings),
		input:   ti,
		mode:    ModeNormal,
		width:   80,
		rows:    make([]string, session.Options().Navigator.Rows),

		statusStyle: lipgloss.NewStyle().
			Background(lipgloss.Color(cfg.Theme.StatusBar)).
			Foreground(lipgloss.Color(cfg.Theme.StatusBarText)),
		errorStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(cfg.Theme.Error)),
		fillerStyle: lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.Theme.Filler)),
	}
	m.dispatcher = pager.NewDispatcher(session, m, pager.DispatchOptions{
		IgnoreCase: cfg.Pager.IgnoreCase,
		Verbose:    cfg.Pager.VerbosePrompt,
	})

	m.dispatcher.Redraw()
	for _, cmd := range opts.Startup {
		m.dispatcher.Execute(cmd)
	}
	return m
}

// DisplayLine implements pager.Renderer
func (m *Model) DisplayLine(row int, line *overstrike.Line) {
	if row >= len(m.rows) {
		grown := make([]string, row+1)
		copy(grown, m.rows)
		m.rows = grown
	}
	if line == nil {
		m.rows[row] = m.fillerStyle.Render("~")
		return
	}

	if name := m.session.Name(); m.renderer == nil || name != m.rendererFor {
		m.renderer = render.New(m.cfg, name)
		m.rendererFor = name
	}
	m.rows[row] = m.renderer.Render(line, m.width)
}

// DisplayStatus implements pager.Renderer
func (m *Model) DisplayStatus(text string) {
	m.status = text
	m.statusErr = false
}

// DisplayError implements pager.Renderer
func (m *Model) DisplayError(text string) {
	m.status = text
	m.statusErr = true
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case editorFinishedMsg:
		m.dispatcher.Execute(pager.Command{Action: pager.ActionResume})
		if msg.err != nil {
			logger.Warn("editor failed", "error", msg.err)
			m.DisplayError(msg.err.Error())
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	// Reserve 1 line for the status bar
	rows := max(height-1, 1)
	m.rows = make([]string, rows)
	if err := m.session.SetRows(rows); err != nil {
		m.DisplayError(pager.MessageFor(err))
		return
	}
	m.dispatcher.Redraw()
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case ModeSearch, ModeGoto:
		return m.handlePromptKey(msg)
	case ModeSetMark, ModeGotoMark:
		return m.handleMarkKey(msg)
	}

	key := msg.String()
	if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
		m.count = m.count*10 + int(key[0]-'0')
		return m, nil
	}

	n := m.count
	m.count = 0

	b, action := m.keys.lookup(key)
	switch b {
	case bindQuit:
		m.quitting = true
		return m, tea.Quit

	case bindAction:
		m.dispatcher.Execute(pager.Command{Action: action, Count: n})

	case bindTop:
		m.dispatcher.Execute(pager.Command{Action: pager.ActionGotoLine, Count: max(n, 1)})

	case bindBottom:
		if n > 0 {
			m.dispatcher.Execute(pager.Command{Action: pager.ActionGotoLine, Count: n})
		} else {
			m.dispatcher.Execute(pager.Command{Action: pager.ActionGotoEOF})
		}

	case bindPercent:
		m.dispatcher.Execute(pager.Command{Action: pager.ActionGotoPercent, Count: n})

	case bindSearchForward:
		return m.openPrompt(ModeSearch, pager.Forward, n)
	case bindSearchBackward:
		return m.openPrompt(ModeSearch, pager.Backward, n)
	case bindGotoPrompt:
		return m.openPrompt(ModeGoto, pager.Forward, n)

	case bindSetMark:
		m.mode = ModeSetMark
	case bindGotoMark:
		m.mode = ModeGotoMark

	case bindEdit:
		return m, m.edit()
	}

	return m, nil
}

func (m *Model) openPrompt(mode Mode, dir pager.Direction, count int) (tea.Model, tea.Cmd) {
	m.mode = mode
	m.searchDir = dir
	m.count = count
	m.input.SetValue("")
	m.input.Focus()
	return m, textinput.Blink
}

func (m *Model) closePrompt() {
	m.mode = ModeNormal
	m.count = 0
	m.input.Blur()
}

func (m *Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		value := m.input.Value()
		mode, dir, n := m.mode, m.searchDir, m.count
		m.closePrompt()
		m.submit(mode, dir, n, value)
		return m, nil

	case "esc", "ctrl+c":
		m.closePrompt()
		m.dispatcher.Redraw()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) submit(mode Mode, dir pager.Direction, count int, value string) {
	if mode == ModeGoto {
		line, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || line < 1 {
			m.DisplayError("Invalid line number")
			return
		}
		m.dispatcher.Execute(pager.Command{Action: pager.ActionGotoLine, Count: line})
		return
	}

	action := pager.ActionSearchForward
	if dir == pager.Backward {
		action = pager.ActionSearchBackward
	}
	m.dispatcher.Execute(pager.Command{Action: action, Count: count, Arg: value})
}

func (m *Model) handleMarkKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	mode := m.mode
	m.mode = ModeNormal

	key := msg.String()
	if len(key) != 1 {
		// Escape or any named key abandons the mark command
		m.dispatcher.Redraw()
		return m, nil
	}

	action := pager.ActionSetMark
	if mode == ModeGotoMark {
		action = pager.ActionGotoMark
	}
	m.dispatcher.Execute(pager.Command{Action: action, Mark: key[0]})
	return m, nil
}

// editorCommand builds the command that edits the open file
func (m *Model) editorCommand() (*exec.Cmd, bool) {
	idx := m.session.Index()
	files := m.session.Files()
	if idx < 0 || files[idx] == pager.StdinName {
		return nil, false
	}

	editor := m.cfg.Pager.Editor
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if editor != "" {
			break
		}
		editor = os.Getenv(env)
	}
	if editor == "" {
		editor = "vi"
	}

	args := strings.Fields(editor)
	args = append(args, files[idx])
	return exec.Command(args[0], args[1:]...), true
}

func (m *Model) edit() tea.Cmd {
	c, ok := m.editorCommand()
	if !ok {
		m.DisplayError("Cannot edit standard input")
		return nil
	}

	logger.Info("starting editor", "command", c.String())
	m.dispatcher.Execute(pager.Command{Action: pager.ActionSuspend})
	return tea.ExecProcess(c, func(err error) tea.Msg {
		return editorFinishedMsg{err: err}
	})
}

// View implements tea.Model
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var builder strings.Builder
	for _, row := range m.rows {
		builder.WriteString(row)
		builder.WriteString("\n")
	}

	var status string
	switch m.mode {
	case ModeSearch:
		prefix := "/"
		if m.searchDir == pager.Backward {
			prefix = "?"
		}
		status = m.statusStyle.Render(prefix + m.input.View())
	case ModeGoto:
		status = m.statusStyle.Render(":" + m.input.View())
	case ModeSetMark:
		status = m.statusStyle.Render("mark: ")
	case ModeGotoMark:
		status = m.statusStyle.Render("goto mark: ")
	default:
		if m.statusErr {
			status = m.errorStyle.Render(m.status)
		} else {
			status = m.statusStyle.Render(m.status)
		}
	}
	builder.WriteString(status)

	return builder.String()
}

// Close releases the open source
func (m *Model) Close() error {
	return m.session.Close()
}
