package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"orkio/internal/types"
)

type ragTab int

const (
	ragTabSearch ragTab = iota
	ragTabStats
	ragTabEvents
	ragTabDialogs
)

// ragPanel is the retrieval diagnostics side panel: ad hoc search over
// the corpus plus the operator-only stats, event and dialog views.
type ragPanel struct {
	open         bool
	tab          ragTab
	query        textinput.Model
	lastQuery    string
	hits         []types.RetrievalHit
	stats        *types.RAGStats
	events       []types.RAGEvent
	dialogs      []types.AgentDialog
	searching    bool
	err          error
	excerptLimit int
}

func newRAGPanel(excerptLimit int) ragPanel {
	query := textinput.New()
	query.Placeholder = "search the knowledge base"
	query.CharLimit = 256
	return ragPanel{
		query:        query,
		excerptLimit: excerptLimit,
	}
}

func (p *ragPanel) toggle() {
	p.open = !p.open
	if p.open {
		p.query.Focus()
	} else {
		p.query.Blur()
	}
}

func (p *ragPanel) nextTab() {
	p.tab = (p.tab + 1) % 4
}

func (p *ragPanel) setResults(query string, hits []types.RetrievalHit, err error) {
	p.searching = false
	p.lastQuery = query
	p.hits = hits
	p.err = err
}

func (p *ragPanel) view(width, height int) string {
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render(p.tabTitle()))
	b.WriteString("\n")

	switch p.tab {
	case ragTabSearch:
		b.WriteString(p.query.View())
		b.WriteString("\n\n")
		b.WriteString(p.searchView(width))
	case ragTabStats:
		b.WriteString(p.statsView())
	case ragTabEvents:
		b.WriteString(p.eventsView(width))
	case ragTabDialogs:
		b.WriteString(p.dialogsView(width))
	}
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		MaxHeight(height).
		Render(b.String())
}

func (p *ragPanel) tabTitle() string {
	switch p.tab {
	case ragTabStats:
		return "Knowledge: stats"
	case ragTabEvents:
		return "Knowledge: retrieval events"
	case ragTabDialogs:
		return "Knowledge: agent dialogs"
	default:
		return "Knowledge: search"
	}
}

func (p *ragPanel) searchView(width int) string {
	if p.err != nil {
		return statusErrorStyle.Render(p.err.Error())
	}
	if p.searching {
		return statusInfoStyle.Render("searching...")
	}
	if p.lastQuery == "" {
		return statusInfoStyle.Render("type a query and press enter")
	}
	if len(p.hits) == 0 {
		return statusInfoStyle.Render("no results for \"" + p.lastQuery + "\"")
	}
	var b strings.Builder
	for i, hit := range p.hits {
		if i > 0 {
			b.WriteString("\n")
		}
		header := fmt.Sprintf("%d. %s", i+1, hit.Filename)
		score := scoreStyle.Render(fmt.Sprintf(" %.2f", hit.RelevanceScore))
		b.WriteString(runewidth.Truncate(header, width-8, "...") + score)
		b.WriteString("\n")
		for _, segment := range excerptSegments(hit.Content, p.lastQuery, p.excerptLimit) {
			if segment.Match {
				b.WriteString(highlightStyle.Render(segment.Text))
			} else {
				b.WriteString(segment.Text)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (p *ragPanel) statsView() string {
	if p.stats == nil {
		return statusInfoStyle.Render("loading stats...")
	}
	enabled := "no"
	if p.stats.RAGEnabled {
		enabled = "yes"
	}
	return fmt.Sprintf(
		"documents: %d\nprocessed: %d\nchunks:    %d\nenabled:   %s\n",
		p.stats.TotalDocuments, p.stats.ProcessedDocuments, p.stats.TotalChunks, enabled,
	)
}

func (p *ragPanel) eventsView(width int) string {
	if len(p.events) == 0 {
		return statusInfoStyle.Render("no retrieval events (operator login required)")
	}
	var b strings.Builder
	for _, event := range p.events {
		line := fmt.Sprintf("%s  hits=%d  %dms  %s", event.Status, event.HitCount, event.LatencyMS, event.Query)
		b.WriteString(runewidth.Truncate(line, width, "..."))
		b.WriteString("\n")
	}
	return b.String()
}

func (p *ragPanel) dialogsView(width int) string {
	if len(p.dialogs) == 0 {
		return statusInfoStyle.Render("no agent dialogs (operator login required)")
	}
	var b strings.Builder
	for _, dialog := range p.dialogs {
		from := dialog.FromAgentName
		if from == "" {
			from = fmt.Sprintf("agent %d", dialog.FromAgentID)
		}
		to := dialog.ToAgentName
		if to == "" {
			to = fmt.Sprintf("agent %d", dialog.ToAgentID)
		}
		b.WriteString(panelTitleStyle.Render(from + " to " + to))
		b.WriteString("\n")
		b.WriteString(runewidth.Truncate(dialog.Message, width*3, "..."))
		b.WriteString("\n")
	}
	return b.String()
}
