package chat

import (
	"fmt"
	"strings"

	"github.com/bnema/dchat/internal/domain"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

// header, notice, input and help lines around the viewport
const chromeHeight = 5

func (m Model) View() string {
	sections := []string{
		m.headerView(),
		m.viewport.View(),
		m.noticeView(),
		m.input.View(),
		m.help.View(m.keys),
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) headerView() string {
	user := m.session.User()
	title := m.styles.header.Render(fmt.Sprintf("dchat · %s", user.Name))

	quota := m.styles.remainingLine(user)

	gap := m.width - lipgloss.Width(title) - lipgloss.Width(quota)
	if gap < 1 {
		gap = 1
	}

	return title + strings.Repeat(" ", gap) + quota
}

func (m Model) noticeView() string {
	if m.notice.IsZero() {
		if !m.session.CanSend() && m.session.State() == domain.ExchangeIdle {
			return m.styles.disabled.Render("Daily limit reached.")
		}
		return ""
	}

	return m.styles.noticeLine(m.notice)
}

func (m Model) renderConversation() string {
	turns := m.session.Snapshot()
	blocks := make([]string, 0, len(turns))
	for _, turn := range turns {
		blocks = append(blocks, m.renderTurn(turn))
	}

	return strings.Join(blocks, "\n\n")
}

func (m Model) renderTurn(turn domain.Turn) string {
	if turn.Role == domain.RoleUser {
		return m.styles.userLine(turn.Content)
	}
	if turn.IsPending() {
		return m.styles.pendingLine(m.spinner)
	}

	return m.styles.botLabel.Render(turn.Role.DisplayName()+":") + "\n" + m.renderMarkdown(turn.Content)
}

func (m Model) renderMarkdown(content string) string {
	if m.markdown == nil {
		return content
	}
	if cached, ok := m.rendered[content]; ok {
		return cached
	}

	out, err := m.markdown.Render(content)
	if err != nil {
		return content
	}
	out = strings.Trim(out, "\n")
	m.rendered[content] = out

	return out
}

func (s styles) userLine(text string) string {
	return s.userLabel.Render(domain.RoleUser.DisplayName()+":") + " " + s.userText.Render(text)
}

func (s styles) pendingLine(spin spinner.Model) string {
	return s.botLabel.Render(domain.RoleAssistant.DisplayName()+":") + " " + spin.View() + " " + s.pending.Render(domain.PendingMarker)
}

func (s styles) remainingLine(user domain.User) string {
	style := s.quota
	if user.RemainingUsage <= 0 {
		style = s.quotaEmpty
	}

	return style.Render(fmt.Sprintf("Remaining: %d/%d", user.RemainingUsage, user.QuotaTotal))
}

func (s styles) noticeLine(notice domain.Notice) string {
	style := s.noticeInfo
	if notice.Variant == domain.NoticeDestructive {
		style = s.noticeError
	}

	return style.Render(fmt.Sprintf("%s: %s", notice.Title, notice.Description))
}
