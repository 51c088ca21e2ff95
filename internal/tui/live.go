// Package tui is the interactive live view: it follows a telemetry file as
// the Gemini CLI writes it and shows running totals and spend.
package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/sparkline"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/janekbaraniewski/gemusage/internal/pricing"
	"github.com/janekbaraniewski/gemusage/internal/render"
	"github.com/janekbaraniewski/gemusage/internal/telemetry"
	"github.com/janekbaraniewski/gemusage/internal/watch"
)

const (
	rateWindow      = time.Second
	sparklineWidth  = 40
	sparklineHeight = 4
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("110"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	valueStyle  = lipgloss.NewStyle().Bold(true)
	costStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Bold(true)
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
)

type modelTotals struct {
	Input    int64
	Output   int64
	Cached   int64
	Thoughts int64
	Tool     int64
	Cost     float64
}

type (
	watchEventMsg  watch.Event
	watchClosedMsg struct{}
	rateTickMsg    time.Time
)

// Model is the bubbletea model for the live view.
type Model struct {
	watcher *watch.Watcher
	catalog *pricing.Catalog

	path      string
	width     int
	calls     int
	byModel   map[string]modelTotals
	totalCost float64

	windowTokens int64 // tokens seen since the last rate tick
	spark        sparkline.Model

	closed bool
}

// NewModel wires a live view over an already constructed watcher.
func NewModel(watcher *watch.Watcher, catalog *pricing.Catalog, path string) Model {
	return Model{
		watcher: watcher,
		catalog: catalog,
		path:    path,
		byModel: make(map[string]modelTotals),
		spark:   sparkline.New(sparklineWidth, sparklineHeight),
	}
}

func (m Model) Init() tea.Cmd {
	m.watcher.Start()
	return tea.Batch(m.waitForEvent(), rateTick())
}

func (m Model) waitForEvent() tea.Cmd {
	events := m.watcher.Events()
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return watchClosedMsg{}
		}
		return watchEventMsg(event)
	}
}

func rateTick() tea.Cmd {
	return tea.Tick(rateWindow, func(t time.Time) tea.Msg {
		return rateTickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.watcher.Stop()
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case watchEventMsg:
		m.apply(watch.Event(msg))
		return m, m.waitForEvent()

	case watchClosedMsg:
		m.closed = true

	case rateTickMsg:
		m.spark.Push(float64(m.windowTokens))
		m.windowTokens = 0
		return m, rateTick()
	}

	return m, nil
}

func (m *Model) apply(event watch.Event) {
	switch event.Kind {
	case telemetry.StreamUsage:
		usage := event.Usage
		totals := m.byModel[usage.Model]
		totals.Input += telemetry.TokenOrZero(usage.InputTokens)
		totals.Output += telemetry.TokenOrZero(usage.OutputTokens)
		totals.Cached += telemetry.TokenOrZero(usage.CachedTokens)
		totals.Thoughts += telemetry.TokenOrZero(usage.ThoughtsTokens)
		totals.Tool += telemetry.TokenOrZero(usage.ToolTokens)

		if breakdown := m.catalog.ComputeCost(
			usage.Model,
			telemetry.TokenOrZero(usage.InputTokens),
			telemetry.TokenOrZero(usage.OutputTokens),
			telemetry.TokenOrZero(usage.CachedTokens),
			telemetry.TokenOrZero(usage.ThoughtsTokens),
			telemetry.TokenOrZero(usage.ToolTokens),
		); breakdown != nil {
			totals.Cost += breakdown.TotalCost
			m.totalCost += breakdown.TotalCost
		}

		m.byModel[usage.Model] = totals
		m.calls++
		m.windowTokens += telemetry.TokenOrZero(usage.InputTokens) +
			telemetry.TokenOrZero(usage.OutputTokens) +
			telemetry.TokenOrZero(usage.CachedTokens) +
			telemetry.TokenOrZero(usage.ThoughtsTokens) +
			telemetry.TokenOrZero(usage.ToolTokens)

	case telemetry.StreamTokens:
		m.windowTokens += event.Tokens.Count
	}
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("gemusage live"))
	b.WriteString(labelStyle.Render("  " + m.path))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("API calls "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%d", m.calls)))
	b.WriteString(labelStyle.Render("   spend "))
	b.WriteString(costStyle.Render(render.FormatCost(m.totalCost)))
	b.WriteString("\n\n")

	models := make([]string, 0, len(m.byModel))
	for model := range m.byModel {
		models = append(models, model)
	}
	sort.Strings(models)

	for _, model := range models {
		totals := m.byModel[model]
		b.WriteString(fmt.Sprintf("  %-28s in %8s  out %8s  cached %8s  %s\n",
			model,
			render.FormatTokens(totals.Input),
			render.FormatTokens(totals.Output),
			render.FormatTokens(totals.Cached),
			costStyle.Render(render.FormatCost(totals.Cost))))
	}
	if len(models) > 0 {
		b.WriteByte('\n')
	}

	b.WriteString(labelStyle.Render("tokens/s"))
	b.WriteByte('\n')
	m.spark.Draw()
	b.WriteString(m.spark.View())
	b.WriteByte('\n')

	if m.closed {
		b.WriteString(footerStyle.Render("watcher stopped"))
	} else {
		b.WriteString(footerStyle.Render("q to quit"))
	}
	b.WriteByte('\n')

	return b.String()
}
