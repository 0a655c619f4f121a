package search

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/zerozero-0-0/portfolio/internal/blog"
)

// Result is an article matching a query, with the fields that matched.
type Result struct {
	Article blog.ArticleMeta
	Score   float64
	Matches []Match
}

// Match represents where text was found
type Match struct {
	Field  string // "title", "excerpt", "content", "tags"
	Text   string // matched text snippet
	Weight float64
}

// articleMatches scores each field of a against terms and returns the fields
// that matched, best first within the usual title/excerpt/content order.
func articleMatches(a blog.Article, terms []string) []Match {
	var matches []Match

	if s := scoreField(a.Meta.Title, terms, 4.0); s > 0 {
		matches = append(matches, Match{Field: "title", Text: a.Meta.Title, Weight: s})
	}
	if s := scoreField(a.Meta.Excerpt, terms, 2.0); s > 0 {
		matches = append(matches, Match{Field: "excerpt", Text: truncate(a.Meta.Excerpt, 150), Weight: s})
	}
	if s := scoreField(a.Text, terms, 1.0); s > 0 {
		matches = append(matches, Match{Field: "content", Text: findBestSnippet(a.Text, terms, 200), Weight: s})
	}
	if tags := strings.Join(a.Meta.Tags, " "); tags != "" {
		if s := scoreField(tags, terms, 1.5); s > 0 {
			matches = append(matches, Match{Field: "tags", Text: tags, Weight: s})
		}
	}

	return matches
}

// scoreField calculates relevance score for a field
func scoreField(text string, terms []string, weight float64) float64 {
	if text == "" {
		return 0
	}

	lower := strings.ToLower(text)
	words := tokenize(text)
	if len(words) == 0 {
		return 0
	}

	var score float64
	matchedTerms := 0

	for _, term := range terms {
		// Exact phrase match (highest score)
		if strings.Contains(lower, term) {
			score += 2.0
			matchedTerms++
		}

		for _, word := range words {
			switch {
			case word == term:
				score += 1.5
				matchedTerms++
			case strings.HasPrefix(word, term) || strings.HasSuffix(word, term):
				score += 1.0
				matchedTerms++
			case strings.Contains(word, term):
				score += 0.5
				matchedTerms++
			}
		}
	}

	if len(terms) > 1 && matchedTerms > 1 {
		score *= 1.0 + float64(matchedTerms)/float64(len(terms))
	}

	tf := float64(matchedTerms) / float64(len(words))
	score *= 1.0 + math.Log(1.0+tf)

	return score * weight
}

// findBestSnippet returns the window of text containing the most terms.
func findBestSnippet(text string, terms []string, maxLength int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}

	windowSize := maxLength / 8 // Approximate words in snippet
	if windowSize > len(words) {
		return truncate(text, maxLength)
	}

	bestScore := 0.0
	bestStart := 0
	for i := 0; i <= len(words)-windowSize; i++ {
		window := strings.ToLower(strings.Join(words[i:i+windowSize], " "))
		score := 0.0
		for _, term := range terms {
			if strings.Contains(window, term) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestStart = i
		}
	}

	return truncate(strings.Join(words[bestStart:bestStart+windowSize], " "), maxLength)
}

// tokenize breaks text into lowercased letter/digit runs, dropping single
// characters.
func tokenize(text string) []string {
	var terms []string
	current := strings.Builder{}

	flush := func() {
		if utf8.RuneCountInString(current.String()) > 1 {
			terms = append(terms, current.String())
		}
		current.Reset()
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(unicode.ToLower(r))
		} else if current.Len() > 0 {
			flush()
		}
	}
	flush()

	return terms
}

// truncate limits text to maxLen runes with an ellipsis.
func truncate(text string, maxLen int) string {
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	r := []rune(text)
	return string(r[:maxLen-1]) + "…"
}
