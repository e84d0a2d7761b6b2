package chat

import (
	"context"
	"fmt"

	"github.com/bnema/dchat/internal/application"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// pendingModel shows a single exchange outside the dashboard: the user's
// turn with the pending marker under it, then the outcome and the quota
// left once the exchange has been committed.
type pendingModel struct {
	ctx      context.Context
	exchange *application.Exchange
	spinner  spinner.Model
	styles   styles
	result   application.ExchangeResult
	done     bool
}

func newPendingModel(ctx context.Context, exchange *application.Exchange, dark bool) pendingModel {
	s := newStyles(dark)

	return pendingModel{
		ctx:      ctx,
		exchange: exchange,
		spinner:  newSpinner(s),
		styles:   s,
	}
}

func (m pendingModel) Init() tea.Cmd {
	ctx, exchange := m.ctx, m.exchange
	run := func() tea.Msg {
		return exchangeDoneMsg{result: exchange.Run(ctx)}
	}

	return tea.Batch(m.spinner.Tick, run)
}

func (m pendingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case exchangeDoneMsg:
		m.done = true
		m.result = msg.result
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m pendingModel) View() string {
	lines := []string{m.styles.userLine(m.exchange.Text)}
	if !m.done {
		return lipgloss.JoinVertical(lipgloss.Left, append(lines, m.styles.pendingLine(m.spinner))...)
	}

	if !m.result.Notice.IsZero() {
		lines = append(lines, m.styles.noticeLine(m.result.Notice))
	}
	lines = append(lines, m.styles.remainingLine(m.result.User))

	return lipgloss.JoinVertical(lipgloss.Left, lines...) + "\n"
}

// RunExchange runs exchange while showing its pending turn, and leaves the
// outcome and remaining quota on screen. The reply itself is returned for
// the caller to print.
func RunExchange(ctx context.Context, exchange *application.Exchange, dark bool, programOpts ...tea.ProgramOption) (application.ExchangeResult, error) {
	programOpts = append([]tea.ProgramOption{tea.WithInput(nil), tea.WithContext(ctx)}, programOpts...)
	p := tea.NewProgram(newPendingModel(ctx, exchange, dark), programOpts...)

	finalModel, err := p.Run()
	if err != nil {
		return application.ExchangeResult{}, err
	}

	final, ok := finalModel.(pendingModel)
	if !ok {
		return application.ExchangeResult{}, fmt.Errorf("%w: %T", ErrUnexpectedModel, finalModel)
	}

	return final.result, nil
}
