package tui

import "github.com/charmbracelet/lipgloss"

const ellipsis = "…"

// fit returns the longest prefix of r that fits in width terminal cells.
// Wide runes (CJK titles) count as two cells.
func fit(r []rune, width int) []rune {
	used := 0
	for i, c := range r {
		w := lipgloss.Width(string(c))
		if used+w > width {
			return r[:i]
		}
		used += w
	}
	return r
}

// fitTail is fit from the end of r.
func fitTail(r []rune, width int) []rune {
	used := 0
	for i := len(r) - 1; i >= 0; i-- {
		w := lipgloss.Width(string(r[i]))
		if used+w > width {
			return r[i+1:]
		}
		used += w
	}
	return r
}

// truncateEnd cuts s to limit cells, ending with an ellipsis when cut.
func truncateEnd(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= limit {
		return s
	}
	if limit == 1 {
		return ellipsis
	}
	return string(fit([]rune(s), limit-1)) + ellipsis
}

// truncateMiddle keeps both ends of s around a single ellipsis. Slugs and
// URLs stay recognizable that way.
func truncateMiddle(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= limit {
		return s
	}
	if limit == 1 {
		return ellipsis
	}
	r := []rune(s)
	left := (limit - 1) / 2
	right := limit - 1 - left
	return string(fit(r, left)) + ellipsis + string(fitTail(r, right))
}
