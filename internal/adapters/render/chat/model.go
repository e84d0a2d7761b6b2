package chat

import (
	"context"
	"errors"

	"github.com/bnema/dchat/internal/adapters/watch"
	"github.com/bnema/dchat/internal/application"
	"github.com/bnema/dchat/internal/domain"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"
)

var ErrUnexpectedModel = errors.New("unexpected final bubbletea model type")

// ThemeSwitcher is the part of the theme controller the dashboard drives.
type ThemeSwitcher interface {
	Get(ctx context.Context) domain.ThemePreference
	Toggle(ctx context.Context) (domain.ThemePreference, error)
}

type Options struct {
	Session *application.Session
	Theme   ThemeSwitcher
	// Logout clears the persisted session. It runs on ctrl+l.
	Logout func(ctx context.Context) error
	// Changes, when set, triggers a reload of the user and theme.
	Changes <-chan watch.Change
	Logger  *zap.Logger
}

type Result struct {
	LoggedOut bool
}

type (
	exchangeDoneMsg struct{ result application.ExchangeResult }
	stateChangedMsg struct{}
	refreshDoneMsg  struct {
		err   error
		theme domain.ThemePreference
	}
	themeToggledMsg struct {
		pref domain.ThemePreference
		err  error
	}
	logoutDoneMsg struct{ err error }
)

type Model struct {
	ctx     context.Context
	session *application.Session
	theme   ThemeSwitcher
	logout  func(ctx context.Context) error
	changes <-chan watch.Change
	logger  *zap.Logger

	keys     KeyMap
	help     help.Model
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	styles   styles
	markdown *glamour.TermRenderer
	rendered map[string]string

	dark      bool
	width     int
	height    int
	notice    domain.Notice
	loggedOut bool
}

func New(ctx context.Context, opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	dark := true
	if opts.Theme != nil {
		dark = opts.Theme.Get(ctx).IsDark
	}

	input := textinput.New()
	input.Placeholder = "Type your message..."
	input.CharLimit = 2000
	input.Focus()

	m := Model{
		ctx:      ctx,
		session:  opts.Session,
		theme:    opts.Theme,
		logout:   opts.Logout,
		changes:  opts.Changes,
		logger:   logger,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		viewport: viewport.New(80, 20),
		input:    input,
		dark:     dark,
		width:    80,
		height:   24,
	}
	m.spinner = newSpinner(newStyles(dark))
	m.applyTheme(dark)
	m.syncContent()

	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForChange())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.session.State() != domain.ExchangeSending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.syncContent()
		return m, cmd

	case exchangeDoneMsg:
		m.notice = msg.result.Notice
		m.syncContent()
		return m, nil

	case stateChangedMsg:
		return m, tea.Batch(m.refresh(), m.waitForChange())

	case refreshDoneMsg:
		if errors.Is(msg.err, domain.ErrSessionMissing) {
			m.loggedOut = true
			return m, tea.Quit
		}
		if msg.err != nil {
			m.logger.Warn("reload session", zap.Error(msg.err))
			m.notice = m.session.Notice(msg.err)
		}
		if msg.theme.IsDark != m.dark {
			m.applyTheme(msg.theme.IsDark)
		}
		m.syncContent()
		return m, nil

	case themeToggledMsg:
		m.applyTheme(msg.pref.IsDark)
		if msg.err != nil {
			m.notice = m.session.Notice(msg.err)
		}
		m.syncContent()
		return m, nil

	case logoutDoneMsg:
		if msg.err != nil {
			m.notice = m.session.Notice(msg.err)
			return m, nil
		}
		m.loggedOut = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.ToggleTheme):
		return m, m.toggleTheme()

	case key.Matches(msg, m.keys.Logout):
		return m, m.doLogout()

	case key.Matches(msg, m.keys.ScrollUp), key.Matches(msg, m.keys.ScrollDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case key.Matches(msg, m.keys.Send):
		return m.send()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// send starts an exchange. Rejections only surface a notice; the input is
// kept so the user can retry.
func (m Model) send() (tea.Model, tea.Cmd) {
	exchange, err := m.session.Begin(m.input.Value())
	if err != nil {
		m.notice = m.session.Notice(err)
		return m, nil
	}

	m.notice = domain.Notice{}
	m.input.Reset()
	m.syncContent()

	ctx := m.ctx
	run := func() tea.Msg {
		return exchangeDoneMsg{result: exchange.Run(ctx)}
	}

	return m, tea.Batch(run, m.spinner.Tick)
}

func (m Model) toggleTheme() tea.Cmd {
	if m.theme == nil {
		return func() tea.Msg {
			return themeToggledMsg{pref: domain.ThemePreference{IsDark: !m.dark}}
		}
	}

	ctx, theme := m.ctx, m.theme
	return func() tea.Msg {
		pref, err := theme.Toggle(ctx)
		return themeToggledMsg{pref: pref, err: err}
	}
}

func (m Model) doLogout() tea.Cmd {
	ctx, logout := m.ctx, m.logout
	return func() tea.Msg {
		if logout == nil {
			return logoutDoneMsg{}
		}
		return logoutDoneMsg{err: logout(ctx)}
	}
}

func (m Model) refresh() tea.Cmd {
	ctx, session, theme, dark := m.ctx, m.session, m.theme, m.dark
	return func() tea.Msg {
		msg := refreshDoneMsg{
			err:   session.Refresh(ctx),
			theme: domain.ThemePreference{IsDark: dark},
		}
		if theme != nil {
			msg.theme = theme.Get(ctx)
		}
		return msg
	}
}

func (m Model) waitForChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}

	changes := m.changes
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return stateChangedMsg{}
	}
}

func (m *Model) applyTheme(dark bool) {
	m.dark = dark
	m.styles = newStyles(dark)
	// Restyle in place: a new spinner would orphan the running tick chain.
	m.spinner.Style = m.styles.spinner
	m.markdown = newMarkdownRenderer(dark, m.viewport.Width-4)
	m.rendered = map[string]string{}
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.help.Width = width
	m.input.Width = max(width-4, 10)
	m.viewport.Width = width
	m.viewport.Height = max(height-chromeHeight, 3)
	m.markdown = newMarkdownRenderer(m.dark, width-4)
	m.rendered = map[string]string{}
	m.syncContent()
}

// syncContent redraws the conversation and keeps it scrolled to the end.
func (m *Model) syncContent() {
	m.viewport.SetContent(m.renderConversation())
	m.viewport.GotoBottom()
}

func (m Model) Notice() domain.Notice {
	return m.notice
}

func (m Model) Dark() bool {
	return m.dark
}

func (m Model) LoggedOut() bool {
	return m.loggedOut
}

// Run shows the dashboard until the user quits or logs out.
func Run(ctx context.Context, opts Options, programOpts ...tea.ProgramOption) (Result, error) {
	programOpts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, programOpts...)
	p := tea.NewProgram(New(ctx, opts), programOpts...)

	finalModel, err := p.Run()
	if err != nil {
		return Result{}, err
	}

	final, ok := finalModel.(Model)
	if !ok {
		return Result{}, ErrUnexpectedModel
	}

	return Result{LoggedOut: final.loggedOut}, nil
}
