package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zerozero-0-0/portfolio/internal/langstat"
)

const labelWidth = 12

// ChartOverhead is the width a chart row uses besides its bar.
const ChartOverhead = labelWidth + 8

// LanguageChart draws one horizontal bar per language, scaled so 100% fills
// width cells, in each language's chart color.
func LanguageChart(usages []langstat.Usage, width int) string {
	if len(usages) == 0 {
		return HelpStyle.Render(MsgNoData)
	}
	if width < 10 {
		width = 10
	}

	var b strings.Builder
	for _, u := range usages {
		cells := int(math.Round(u.Percentage / 100 * float64(width)))
		if cells == 0 && u.Percentage > 0 {
			cells = 1
		}
		bar := lipgloss.NewStyle().
			Foreground(lipgloss.Color(langstat.Color(u.Language))).
			Render(strings.Repeat("█", cells))
		label := lipgloss.NewStyle().Width(labelWidth).Render(truncateEnd(u.Language, labelWidth-1))

		fmt.Fprintf(&b, "%s %s %s\n", label, bar, TimeStyle.Render(fmt.Sprintf("%.1f%%", u.Percentage)))
	}
	return strings.TrimRight(b.String(), "\n")
}

// Cached renders the "served from cache" footer under a result.
func Cached(fromCache bool, fetchedAtMillis int64) string {
	source := "fresh from upstream"
	if fromCache {
		source = "from cache"
	}
	if fetchedAtMillis == 0 {
		return HelpStyle.Render(source)
	}
	return HelpStyle.Render(fmt.Sprintf("%s, fetched %s", source, FormatMillis(fetchedAtMillis)))
}
