package app

import (
	"context"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"orkio/internal/client"
	"orkio/internal/types"
)

type agentsMsg struct {
	agents []types.Agent
	err    error
}

type conversationsMsg struct {
	conversations []types.Conversation
	err           error
}

type messagesMsg struct {
	conversationID int64
	messages       []types.Message
	err            error
}

type conversationCreatedMsg struct {
	conversation *types.Conversation
	firstMessage string
	err          error
}

type conversationDeletedMsg struct {
	conversationID int64
	err            error
}

type conversationRenamedMsg struct {
	conversationID int64
	err            error
}

type streamOpenedMsg struct {
	gen    int
	ch     <-chan types.StreamEvent
	cancel func()
	err    error
}

type streamEventMsg struct {
	gen   int
	event types.StreamEvent
	ok    bool
}

type searchResultsMsg struct {
	query string
	hits  []types.RetrievalHit
	err   error
}

type ragStatsMsg struct {
	stats *types.RAGStats
	err   error
}

type ragEventsMsg struct {
	events []types.RAGEvent
	err    error
}

type agentDialogsMsg struct {
	dialogs []types.AgentDialog
	err     error
}

type attachmentUploadedMsg struct {
	attachment *types.Attachment
	err        error
}

type clearStatusMsg struct{}

func loadAgentsCmd(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		agents, err := c.Agents(context.Background())
		return agentsMsg{agents: agents, err: err}
	}
}

func loadConversationsCmd(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		conversations, err := c.Conversations(context.Background())
		return conversationsMsg{conversations: conversations, err: err}
	}
}

func loadMessagesCmd(c *client.Client, conversationID int64) tea.Cmd {
	return func() tea.Msg {
		messages, err := c.Messages(context.Background(), conversationID)
		return messagesMsg{conversationID: conversationID, messages: messages, err: err}
	}
}

func createConversationCmd(c *client.Client, agentID int64, firstMessage string) tea.Cmd {
	return func() tea.Msg {
		conversation, err := c.CreateConversation(context.Background(), agentID, "")
		return conversationCreatedMsg{conversation: conversation, firstMessage: firstMessage, err: err}
	}
}

func deleteConversationCmd(c *client.Client, conversationID int64) tea.Cmd {
	return func() tea.Msg {
		err := c.DeleteConversation(context.Background(), conversationID)
		return conversationDeletedMsg{conversationID: conversationID, err: err}
	}
}

func renameConversationCmd(c *client.Client, conversationID int64, title string) tea.Cmd {
	return func() tea.Msg {
		err := c.RenameConversation(context.Background(), conversationID, title)
		return conversationRenamedMsg{conversationID: conversationID, err: err}
	}
}

func openStreamCmd(c *client.Client, gen int, req client.StreamRequest) tea.Cmd {
	return func() tea.Msg {
		ch, cancel, err := c.StreamChat(context.Background(), req)
		return streamOpenedMsg{gen: gen, ch: ch, cancel: cancel, err: err}
	}
}

// waitStreamCmd blocks on the next decoded event. The generation rides
// along so stale events can be fenced out after a cancel.
func waitStreamCmd(gen int, ch <-chan types.StreamEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		return streamEventMsg{gen: gen, event: event, ok: ok}
	}
}

func uploadAttachmentCmd(c *client.Client, conversationID int64, path string) tea.Cmd {
	return func() tea.Msg {
		file, err := os.Open(path)
		if err != nil {
			return attachmentUploadedMsg{err: err}
		}
		defer file.Close()
		attachment, err := c.UploadAttachment(context.Background(), conversationID, filepath.Base(path), file)
		return attachmentUploadedMsg{attachment: attachment, err: err}
	}
}

func searchCmd(c *client.Client, query string, conversationID int64, topK int) tea.Cmd {
	return func() tea.Msg {
		hits, err := c.SearchRAG(context.Background(), query, conversationID, topK)
		return searchResultsMsg{query: query, hits: hits, err: err}
	}
}

func ragStatsCmd(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		stats, err := c.RAGStats(context.Background())
		return ragStatsMsg{stats: stats, err: err}
	}
}

func ragEventsCmd(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		events, err := c.RAGEvents(context.Background())
		return ragEventsMsg{events: events, err: err}
	}
}

func agentDialogsCmd(c *client.Client) tea.Cmd {
	return func() tea.Msg {
		dialogs, err := c.AgentDialogs(context.Background())
		return agentDialogsMsg{dialogs: dialogs, err: err}
	}
}

func clearStatusCmd() tea.Cmd {
	return tea.Tick(4*time.Second, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}
