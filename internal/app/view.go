package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"orkio/internal/types"
)

const (
	sidebarWidth = 28
	panelWidth   = 42
)

func (m *Model) View() string {
	if !m.ready {
		return "loading..."
	}

	columns := []string{}
	if m.showSidebar() {
		columns = append(columns, sidebarStyle.Render(m.sidebarView()))
	}
	columns = append(columns, m.chatView())
	if m.panel.open {
		columns = append(columns, m.panel.view(panelWidth, m.chatHeight()))
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, columns...)
	return lipgloss.JoinVertical(lipgloss.Left, body, m.input.View(), m.statusView())
}

func (m *Model) showSidebar() bool {
	return m.width >= 80
}

func (m *Model) chatWidth() int {
	width := m.width
	if m.showSidebar() {
		width -= sidebarWidth + 2
	}
	if m.panel.open {
		width -= panelWidth
	}
	if width < 20 {
		width = 20
	}
	return width
}

func (m *Model) chatHeight() int {
	height := m.height - m.input.Height() - 2
	if height < 3 {
		height = 3
	}
	return height
}

func (m *Model) sidebarView() string {
	var b strings.Builder
	b.WriteString(sidebarTitleStyle.Render("Conversations"))
	b.WriteString("\n")
	b.WriteString(m.filterInput.View())
	b.WriteString("\n\n")

	filtered := m.filteredConversations()
	if len(filtered) == 0 {
		b.WriteString(statusInfoStyle.Render("none yet"))
	}
	for i, conversation := range filtered {
		label := runewidth.Truncate(conversation.DisplayTitle(), sidebarWidth-4, "...")
		marker := "  "
		style := sidebarItemStyle
		if conversation.ID == m.activeConversation {
			marker = "* "
		}
		if m.focus == focusSidebar && i == m.sidebarIndex {
			style = sidebarSelectedStyle
			marker = "> "
		}
		b.WriteString(style.Render(marker + label))
		b.WriteString("\n")
	}
	return lipgloss.NewStyle().
		Width(sidebarWidth).
		Height(m.chatHeight()).
		MaxHeight(m.chatHeight()).
		Render(b.String())
}

func (m *Model) chatView() string {
	return m.viewport.View()
}

// refreshViewport re-renders the transcript into the chat viewport.
// follow keeps the view pinned to the newest content while an answer
// is streaming in.
func (m *Model) refreshViewport(follow bool) {
	if !m.ready {
		return
	}
	width := m.chatWidth()
	var b strings.Builder

	for _, message := range m.transcript.Visible(m.showHandoffs) {
		b.WriteString(m.renderMessage(message, width))
		b.WriteString("\n")
	}
	if m.transcript.StreamingActive() {
		b.WriteString(assistantLabelStyle.Render(m.transcript.StreamingAgent()))
		b.WriteString(" ")
		b.WriteString(statusInfoStyle.Render(m.spin.View()))
		b.WriteString("\n")
		if text := m.transcript.StreamingText(); text != "" {
			b.WriteString(renderMarkdown(text, width))
			b.WriteString("\n")
		}
	}
	if b.Len() == 0 {
		b.WriteString(statusInfoStyle.Render("no messages yet; say hello"))
	}

	m.viewport.SetContent(b.String())
	if follow {
		m.viewport.GotoBottom()
	}
}

func (m *Model) renderMessage(message types.Message, width int) string {
	var b strings.Builder
	switch message.Role {
	case types.RoleUser:
		label := "you"
		if message.Optimistic() {
			label = "you (sending)"
		}
		b.WriteString(userLabelStyle.Render(label))
		b.WriteString("\n")
		b.WriteString(xansi.Hardwrap(message.Content, width, true))
	case types.RoleSystem:
		b.WriteString(handoffStyle.Render("handoff: " + message.Content))
	default:
		name := message.AgentName
		if name == "" {
			name = "assistant"
		}
		b.WriteString(assistantLabelStyle.Render(name))
		b.WriteString("\n")
		b.WriteString(renderMarkdown(message.Content, width))
	}
	if message.Attachment != nil {
		b.WriteString("\n")
		b.WriteString(attachmentStyle.Render(fmt.Sprintf("attachment: %s (%d bytes)", message.Attachment.Filename, message.Attachment.Size)))
	}
	b.WriteString("\n")
	return b.String()
}

func (m *Model) statusView() string {
	if m.status == "" {
		hint := "enter send | esc cancel | tab focus | ctrl+n new | ctrl+r knowledge | ctrl+h handoffs | ctrl+y copy"
		return statusInfoStyle.Render(runewidth.Truncate(hint, m.width, "..."))
	}
	style := statusInfoStyle
	if m.statusErr {
		style = statusErrorStyle
	}
	return style.Render(runewidth.Truncate(m.status, m.width, "..."))
}
