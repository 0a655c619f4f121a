package langstat

// OtherLanguage is the bucket for languages outside the known set.
const OtherLanguage = "Other"

// KnownLanguages are the languages the frontend has icons and colors for.
var KnownLanguages = map[string]bool{
	"JavaScript": true,
	"TypeScript": true,
	"Python":     true,
	"Rust":       true,
	"C++":        true,
	"C":          true,
	"CSS":        true,
	"HTML":       true,
	"Dockerfile": true,
	"Markdown":   true,
	"Makefile":   true,
}

// GroupOthers folds every language not in known into a trailing "Other"
// row. Known rows keep their order. A nil known uses KnownLanguages.
func GroupOthers(usages []Usage, known map[string]bool) []Usage {
	if known == nil {
		known = KnownLanguages
	}

	out := make([]Usage, 0, len(usages)+1)
	others := 0.0
	for _, u := range usages {
		if known[u.Language] {
			out = append(out, u)
			continue
		}
		others += u.Percentage
	}
	if others > 0 {
		out = append(out, Usage{Language: OtherLanguage, Percentage: round1(others)})
	}
	return out
}
