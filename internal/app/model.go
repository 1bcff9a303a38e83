package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"orkio/internal/client"
	"orkio/internal/config"
	"orkio/internal/logging"
	"orkio/internal/store"
	"orkio/internal/types"
)

type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
	focusPanel
)

// Model is the full-screen console. All mutation happens on the update
// loop; background work comes back as messages.
type Model struct {
	cfg    config.Config
	client *client.Client
	store  *store.Store
	log    logging.Logger

	controller *StreamController
	transcript *Transcript
	streamCh   <-chan types.StreamEvent

	agents        []types.Agent
	conversations []types.Conversation

	activeConversation int64
	activeAgent        int64
	showHandoffs       bool
	pendingAttachment  *types.Attachment
	pendingReload      bool

	focus        focusArea
	sidebarIndex int
	filterInput  textinput.Model
	input        textarea.Model
	viewport     viewport.Model
	spin         spinner.Model
	panel        ragPanel

	width  int
	height int
	ready  bool

	status    string
	statusErr bool
}

func NewModel(cfg config.Config, apiClient *client.Client, db *store.Store, log logging.Logger) *Model {
	if log == nil {
		log = logging.Nop()
	}

	input := textarea.New()
	input.Placeholder = "Message the agent..."
	input.CharLimit = 4000
	input.SetHeight(3)
	input.ShowLineNumbers = false
	input.Focus()

	filter := textinput.New()
	filter.Placeholder = "filter conversations"
	filter.CharLimit = 64

	spin := spinner.New()
	spin.Spinner = spinner.MiniDot

	m := &Model{
		cfg:          cfg,
		client:       apiClient,
		store:        db,
		log:          log,
		controller:   NewStreamController(),
		transcript:   NewTranscript(),
		showHandoffs: cfg.Chat.ShowHandoffs,
		input:        input,
		filterInput:  filter,
		spin:         spin,
		panel:        newRAGPanel(cfg.ExcerptLimit()),
	}
	m.restoreState()
	return m
}

func (m *Model) restoreState() {
	if m.store == nil {
		return
	}
	state, err := m.store.ReadState()
	if err != nil {
		m.log.Warn("read console state", logging.F("err", err))
		return
	}
	m.activeConversation = state.ActiveConversationID
	m.activeAgent = state.ActiveAgentID
	if state.ShowHandoffs {
		m.showHandoffs = true
	}
}

func (m *Model) persistState() {
	if m.store == nil {
		return
	}
	state := &types.ConsoleState{
		ActiveConversationID: m.activeConversation,
		ActiveAgentID:        m.activeAgent,
		ShowHandoffs:         m.showHandoffs,
	}
	if err := m.store.WriteState(state); err != nil {
		m.log.Warn("persist console state", logging.F("err", err))
	}
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		loadAgentsCmd(m.client),
		loadConversationsCmd(m.client),
		m.spin.Tick,
	}
	if m.activeConversation > 0 {
		cmds = append(cmds, loadMessagesCmd(m.client, m.activeConversation))
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m, m.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		return m.handleKey(msg)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case agentsMsg:
		if msg.err != nil {
			return m, m.setError("load agents: " + msg.err.Error())
		}
		m.agents = msg.agents
		if m.activeAgent == 0 && len(m.agents) > 0 {
			m.activeAgent = m.agents[0].ID
		}
		return m, nil

	case conversationsMsg:
		if msg.err != nil {
			return m, m.setError("load conversations: " + msg.err.Error())
		}
		m.conversations = msg.conversations
		m.clampSidebar()
		return m, nil

	case messagesMsg:
		if msg.err != nil {
			return m, m.setError("load messages: " + msg.err.Error())
		}
		if msg.conversationID != m.activeConversation {
			return m, nil
		}
		m.transcript.SetMessages(msg.messages)
		m.refreshViewport(true)
		return m, nil

	case conversationCreatedMsg:
		return m.handleConversationCreated(msg)

	case conversationDeletedMsg:
		if msg.err != nil {
			return m, m.setError("delete conversation: " + msg.err.Error())
		}
		if msg.conversationID == m.activeConversation {
			m.activeConversation = 0
			m.transcript = NewTranscript()
			m.refreshViewport(true)
			m.persistState()
		}
		return m, loadConversationsCmd(m.client)

	case conversationRenamedMsg:
		if msg.err != nil {
			return m, m.setError("rename conversation: " + msg.err.Error())
		}
		return m, loadConversationsCmd(m.client)

	case streamOpenedMsg:
		return m.handleStreamOpened(msg)

	case streamEventMsg:
		return m.handleStreamEvent(msg)

	case searchResultsMsg:
		m.panel.setResults(msg.query, msg.hits, msg.err)
		return m, nil

	case ragStatsMsg:
		if msg.err == nil {
			m.panel.stats = msg.stats
		}
		return m, nil

	case ragEventsMsg:
		if msg.err == nil {
			m.panel.events = msg.events
		}
		return m, nil

	case agentDialogsMsg:
		if msg.err == nil {
			m.panel.dialogs = msg.dialogs
		}
		return m, nil

	case attachmentUploadedMsg:
		if msg.err != nil {
			return m, m.setError("upload failed: " + msg.err.Error())
		}
		m.pendingAttachment = msg.attachment
		return m, m.setInfo(fmt.Sprintf("attached %s; it rides on your next message", msg.attachment.Filename))

	case clearStatusMsg:
		m.status = ""
		m.statusErr = false
		return m, nil
	}

	return m, m.updateFocused(msg)
}

func (m *Model) resize(width, height int) tea.Cmd {
	m.width = width
	m.height = height
	chatWidth := m.chatWidth()
	if !m.ready {
		m.viewport = viewport.New(chatWidth, m.chatHeight())
		m.ready = true
	} else {
		m.viewport.Width = chatWidth
		m.viewport.Height = m.chatHeight()
	}
	m.input.SetWidth(chatWidth)
	m.refreshViewport(false)
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.controller.Cancel()
		m.persistState()
		return m, tea.Quit

	case "esc":
		if m.controller.Cancel() {
			m.transcript.Discard()
			m.streamCh = nil
			m.refreshViewport(false)
			return m, m.setInfo("stream cancelled")
		}
		if m.focus != focusInput {
			m.setFocus(focusInput)
			return m, nil
		}
		return m, nil

	case "tab":
		if m.focus == focusPanel {
			m.panel.nextTab()
			return m, m.panelTabCmd()
		}
		m.cycleFocus()
		return m, nil

	case "ctrl+r":
		m.panel.toggle()
		if m.panel.open {
			m.setFocus(focusPanel)
			return m, tea.Batch(ragStatsCmd(m.client), ragEventsCmd(m.client), agentDialogsCmd(m.client))
		}
		m.setFocus(focusInput)
		return m, nil

	case "ctrl+h":
		m.showHandoffs = !m.showHandoffs
		m.persistState()
		m.refreshViewport(false)
		if m.showHandoffs {
			return m, m.setInfo("showing handoffs")
		}
		return m, m.setInfo("hiding handoffs")

	case "ctrl+y":
		if message, ok := m.transcript.LastAssistant(); ok {
			if err := copyTextToClipboard(message.Content); err != nil {
				return m, m.setError("copy failed: " + err.Error())
			}
			return m, m.setInfo("answer copied")
		}
		return m, m.setInfo("nothing to copy")

	case "ctrl+n":
		return m.startNewConversation()
	}

	switch m.focus {
	case focusSidebar:
		return m.handleSidebarKey(msg)
	case focusPanel:
		return m.handlePanelKey(msg)
	default:
		return m.handleInputKey(msg)
	}
}

func (m *Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" && !msg.Alt {
		return m.sendMessage()
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	filtered := m.filteredConversations()
	switch msg.String() {
	case "up", "ctrl+p":
		if m.sidebarIndex > 0 {
			m.sidebarIndex--
		}
		return m, nil
	case "down", "ctrl+n":
		if m.sidebarIndex < len(filtered)-1 {
			m.sidebarIndex++
		}
		return m, nil
	case "enter":
		if m.sidebarIndex >= 0 && m.sidebarIndex < len(filtered) {
			return m, m.switchConversation(filtered[m.sidebarIndex])
		}
		return m, nil
	case "ctrl+d":
		if m.sidebarIndex >= 0 && m.sidebarIndex < len(filtered) {
			return m, deleteConversationCmd(m.client, filtered[m.sidebarIndex].ID)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.clampSidebar()
	return m, cmd
}

func (m *Model) handlePanelKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "enter" && m.panel.tab == ragTabSearch {
		query := strings.TrimSpace(m.panel.query.Value())
		if query == "" {
			return m, m.setInfo("search query is empty")
		}
		m.panel.searching = true
		return m, searchCmd(m.client, query, m.activeConversation, m.cfg.TopK())
	}
	var cmd tea.Cmd
	m.panel.query, cmd = m.panel.query.Update(msg)
	return m, cmd
}

func (m *Model) panelTabCmd() tea.Cmd {
	switch m.panel.tab {
	case ragTabStats:
		return ragStatsCmd(m.client)
	case ragTabEvents:
		return ragEventsCmd(m.client)
	case ragTabDialogs:
		return agentDialogsCmd(m.client)
	default:
		return nil
	}
}

// sendMessage starts a streamed turn: optimistic user entry, streaming
// placeholder, then the transport open. With no current conversation
// one is created first and the message rides along.
func (m *Model) sendMessage() (tea.Model, tea.Cmd) {
	message := strings.TrimSpace(m.input.Value())
	if message == "" {
		return m, nil
	}
	if cmd, handled := m.handleSlashCommand(message); handled {
		return m, cmd
	}
	if m.controller.Active() {
		return m, m.setError(ErrStreamActive.Error())
	}
	if m.activeAgent == 0 {
		return m, m.setError("no agent selected")
	}
	if m.activeConversation == 0 {
		m.input.Reset()
		return m, createConversationCmd(m.client, m.activeAgent, message)
	}
	m.input.Reset()
	return m, m.beginStream(message)
}

// handleSlashCommand intercepts console directives typed into the
// message input: /attach binds a file to the next message, /title
// renames the current conversation.
func (m *Model) handleSlashCommand(message string) (tea.Cmd, bool) {
	switch {
	case strings.HasPrefix(message, "/attach "):
		path := strings.TrimSpace(strings.TrimPrefix(message, "/attach "))
		m.input.Reset()
		if path == "" {
			return m.setError("usage: /attach <path>"), true
		}
		if m.activeConversation == 0 {
			return m.setError("start a conversation before attaching a file"), true
		}
		return uploadAttachmentCmd(m.client, m.activeConversation, path), true
	case strings.HasPrefix(message, "/title "):
		title := strings.TrimSpace(strings.TrimPrefix(message, "/title "))
		m.input.Reset()
		if title == "" {
			return m.setError("usage: /title <new title>"), true
		}
		if m.activeConversation == 0 {
			return m.setError("no conversation to rename"), true
		}
		return renameConversationCmd(m.client, m.activeConversation, title), true
	}
	return nil, false
}

func (m *Model) beginStream(message string) tea.Cmd {
	attachment := m.pendingAttachment
	m.pendingAttachment = nil
	m.transcript.AppendOptimistic(message, attachment)
	m.transcript.BeginPlaceholder(m.agentName(m.activeAgent))

	gen, err := m.controller.Begin(m.activeConversation, StreamCallbacks{
		OnDelta: func(fragment string) {
			m.transcript.AppendStreamingText(fragment)
		},
		OnDone: func(sources []types.RAGSource) {
			m.transcript.Commit()
			m.pendingReload = true
			if len(sources) > 0 {
				m.status = formatCitations(sources)
				m.statusErr = false
			}
		},
		OnError: func(err error) {
			m.transcript.Discard()
			m.status = "stream failed: " + err.Error()
			m.statusErr = true
		},
	})
	if err != nil {
		m.transcript.Discard()
		return m.setError(err.Error())
	}

	m.refreshViewport(true)
	return openStreamCmd(m.client, gen, client.StreamRequest{
		ConversationID: m.activeConversation,
		AgentID:        m.activeAgent,
		Message:        message,
	})
}

func (m *Model) handleConversationCreated(msg conversationCreatedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, m.setError("create conversation: " + msg.err.Error())
	}
	m.activeConversation = msg.conversation.ID
	if msg.conversation.AgentID > 0 {
		m.activeAgent = msg.conversation.AgentID
	}
	m.transcript = NewTranscript()
	m.persistState()

	cmds := []tea.Cmd{loadConversationsCmd(m.client)}
	if msg.firstMessage != "" {
		cmds = append(cmds, m.beginStream(msg.firstMessage))
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleStreamOpened(msg streamOpenedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.controller.Fail(msg.gen, msg.err)
		m.refreshViewport(false)
		return m, clearStatusCmd()
	}
	if !m.controller.Attach(msg.gen, msg.cancel) {
		return m, nil
	}
	m.streamCh = msg.ch
	return m, waitStreamCmd(msg.gen, msg.ch)
}

func (m *Model) handleStreamEvent(msg streamEventMsg) (tea.Model, tea.Cmd) {
	m.controller.Consume(msg.gen, msg.event, msg.ok)
	m.refreshViewport(true)

	var cmds []tea.Cmd
	if m.pendingReload {
		m.pendingReload = false
		m.streamCh = nil
		cmds = append(cmds, loadMessagesCmd(m.client, m.activeConversation), clearStatusCmd())
	} else if m.controller.Phase() == PhaseStreaming && msg.gen == m.controller.Generation() && m.streamCh != nil {
		cmds = append(cmds, waitStreamCmd(msg.gen, m.streamCh))
	} else if !m.controller.Active() {
		m.streamCh = nil
		cmds = append(cmds, clearStatusCmd())
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) startNewConversation() (tea.Model, tea.Cmd) {
	if m.controller.Cancel() {
		m.transcript.Discard()
		m.streamCh = nil
	}
	m.activeConversation = 0
	m.transcript = NewTranscript()
	m.refreshViewport(true)
	m.persistState()
	return m, m.setInfo("new conversation; next message starts it")
}

func (m *Model) switchConversation(conversation types.Conversation) tea.Cmd {
	if conversation.ID == m.activeConversation {
		m.setFocus(focusInput)
		return nil
	}
	if m.controller.Cancel() {
		m.transcript.Discard()
		m.streamCh = nil
	}
	m.activeConversation = conversation.ID
	if conversation.AgentID > 0 {
		m.activeAgent = conversation.AgentID
	}
	m.transcript = NewTranscript()
	m.setFocus(focusInput)
	m.persistState()
	m.refreshViewport(true)
	return loadMessagesCmd(m.client, conversation.ID)
}

func (m *Model) filteredConversations() []types.Conversation {
	return filterConversations(m.conversations, m.filterInput.Value())
}

func (m *Model) clampSidebar() {
	filtered := m.filteredConversations()
	if m.sidebarIndex >= len(filtered) {
		m.sidebarIndex = len(filtered) - 1
	}
	if m.sidebarIndex < 0 {
		m.sidebarIndex = 0
	}
}

func (m *Model) agentName(id int64) string {
	for _, agent := range m.agents {
		if agent.ID == id {
			return agent.Name
		}
	}
	return fmt.Sprintf("agent %d", id)
}

func (m *Model) setFocus(focus focusArea) {
	m.focus = focus
	m.input.Blur()
	m.filterInput.Blur()
	m.panel.query.Blur()
	switch focus {
	case focusInput:
		m.input.Focus()
	case focusSidebar:
		m.filterInput.Focus()
	case focusPanel:
		m.panel.query.Focus()
	}
}

func (m *Model) cycleFocus() {
	switch m.focus {
	case focusInput:
		m.setFocus(focusSidebar)
	case focusSidebar:
		if m.panel.open {
			m.setFocus(focusPanel)
		} else {
			m.setFocus(focusInput)
		}
	default:
		m.setFocus(focusInput)
	}
}

func (m *Model) updateFocused(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.focus {
	case focusSidebar:
		m.filterInput, cmd = m.filterInput.Update(msg)
	case focusPanel:
		m.panel.query, cmd = m.panel.query.Update(msg)
	default:
		m.input, cmd = m.input.Update(msg)
	}
	return cmd
}

func (m *Model) setInfo(message string) tea.Cmd {
	m.status = message
	m.statusErr = false
	return clearStatusCmd()
}

func (m *Model) setError(message string) tea.Cmd {
	m.status = message
	m.statusErr = true
	m.log.Warn(message)
	return clearStatusCmd()
}

func formatCitations(sources []types.RAGSource) string {
	titles := make([]string, 0, len(sources))
	for _, source := range sources {
		if source.DocumentTitle != "" {
			titles = append(titles, source.DocumentTitle)
		}
	}
	if len(titles) == 0 {
		return fmt.Sprintf("%d source(s) used", len(sources))
	}
	return "sources: " + strings.Join(titles, ", ")
}
