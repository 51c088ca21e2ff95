// Package render formats aggregated usage buckets for the terminal and for
// machine consumption.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/janekbaraniewski/gemusage/internal/aggregate"
)

const maxModelsWidth = 40

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("110"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	totalStyle  = lipgloss.NewStyle().Bold(true)
	costStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
)

// Table renders buckets as a styled table with a totals row. An empty bucket
// sequence renders a "no usage data" notice so the caller can distinguish it
// from all-free usage.
func Table(title string, buckets []aggregate.Bucket) string {
	if len(buckets) == 0 {
		return dimStyle.Render("No usage data found.") + "\n"
	}

	keyWidth := len(title)
	for _, bucket := range buckets {
		if len(bucket.Key) > keyWidth {
			keyWidth = len(bucket.Key)
		}
	}
	if keyWidth < 10 {
		keyWidth = 10
	}

	var b strings.Builder

	header := fmt.Sprintf("%-*s  %12s  %12s  %12s  %10s  %s",
		keyWidth, title, "Input", "Output", "Cache Read", "Cost", "Models")
	b.WriteString(headerStyle.Render(header))
	b.WriteByte('\n')
	b.WriteString(dimStyle.Render(strings.Repeat("─", len(header))))
	b.WriteByte('\n')

	for _, bucket := range buckets {
		b.WriteString(fmt.Sprintf("%-*s  %12s  %12s  %12s  %10s  %s\n",
			keyWidth, bucket.Key,
			FormatTokens(bucket.InputTokens),
			FormatTokens(bucket.OutputTokens),
			FormatTokens(bucket.CacheReadTokens),
			costStyle.Render(FormatCost(bucket.TotalCost)),
			dimStyle.Render(modelList(bucket.ModelsUsed))))
	}

	totals := aggregate.Sum(buckets)
	b.WriteString(dimStyle.Render(strings.Repeat("─", len(header))))
	b.WriteByte('\n')
	b.WriteString(totalStyle.Render(fmt.Sprintf("%-*s  %12s  %12s  %12s  %10s",
		keyWidth, "Total",
		FormatTokens(totals.InputTokens),
		FormatTokens(totals.OutputTokens),
		FormatTokens(totals.CacheReadTokens),
		FormatCost(totals.TotalCost))))
	b.WriteByte('\n')

	return b.String()
}

func modelList(models []string) string {
	joined := strings.Join(models, ", ")
	if lipgloss.Width(joined) <= maxModelsWidth {
		return joined
	}
	return ansi.Cut(joined, 0, maxModelsWidth-1) + "…"
}

// FormatTokens renders a token count compactly (1.2K, 3.4M).
func FormatTokens(value int64) string {
	switch {
	case value >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", float64(value)/1_000_000_000)
	case value >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(value)/1_000_000)
	case value >= 1_000:
		return fmt.Sprintf("%.1fK", float64(value)/1_000)
	default:
		return fmt.Sprintf("%d", value)
	}
}

// FormatCost renders a USD amount. Sub-cent totals keep more precision so
// small experiments do not round to $0.00.
func FormatCost(cost float64) string {
	if cost > 0 && cost < 0.01 {
		return fmt.Sprintf("$%.4f", cost)
	}
	return fmt.Sprintf("$%.2f", cost)
}
