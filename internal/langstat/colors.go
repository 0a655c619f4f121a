package langstat

var languageColors = map[string]string{
	"JavaScript": "#FACC15",
	"TypeScript": "#3B82F6",
	"Python":     "#6B4CE6",
	"Rust":       "#D97706",
	"C++":        "#2563EB",
	"C":          "#0EA5E9",
	"CSS":        "#38BDF8",
	"HTML":       "#F97316",
	"Dockerfile": "#0EA5E9",
	"Markdown":   "#7C3AED",
	"Makefile":   "#4B5563",
}

const fallbackColor = "#94A3B8"

// Color returns the chart color for a language.
func Color(language string) string {
	if c, ok := languageColors[language]; ok {
		return c
	}
	return fallbackColor
}
