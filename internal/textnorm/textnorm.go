// Package textnorm folds free-text activity labels into comparable keywords.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MinKeywordLength is the shortest raw token Keywords keeps.
const MinKeywordLength = 3

// suffixes are removed in this order, each at most once.
var suffixes = []string{"ing", "ed", "er", "s"}

var synonyms = map[string]string{
	"programme":      "programming",
	"program":        "programming",
	"dev":            "development",
	"develop":        "development",
	"admin":          "administrative",
	"administration": "administrative",
	"gym":            "exercise",
	"gymnasium":      "exercise",
	"bfast":          "breakfast",
	"commut":         "commute",
	"workout":        "exercise",
	"socialis":       "social",
	"hangout":        "social",
}

// Normalize reduces a single term to its keyword form.
//
//	"Walking" -> "walk", "workouts" -> "exercise", "Café" -> "cafe"
func Normalize(term string) string {
	s := foldAccents(strings.TrimSpace(strings.ToLower(term)))
	for _, suffix := range suffixes {
		s = strings.TrimSuffix(s, suffix)
	}
	s = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' {
			return r
		}
		return -1
	}, s)
	if mapped, ok := synonyms[s]; ok {
		return mapped
	}
	return s
}

// NormalizeText normalizes every whitespace-separated token and joins the
// non-empty results with a single space.
func NormalizeText(text string) string {
	fields := strings.Fields(text)
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		if n := Normalize(field); n != "" {
			out = append(out, n)
		}
	}
	return strings.Join(out, " ")
}

// Keywords extracts the learnable keywords of a raw activity text: letter-only
// tokens of at least MinKeywordLength characters, normalized and de-duplicated
// in first-seen order.
func Keywords(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r):
			return r
		case unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, foldAccents(strings.ToLower(text)))

	seen := make(map[string]struct{})
	var keywords []string
	for _, token := range strings.Fields(cleaned) {
		if len([]rune(token)) < MinKeywordLength {
			continue
		}
		keyword := Normalize(token)
		if keyword == "" {
			continue
		}
		if _, dup := seen[keyword]; dup {
			continue
		}
		seen[keyword] = struct{}{}
		keywords = append(keywords, keyword)
	}
	return keywords
}

func foldAccents(s string) string {
	// transform.Chain is stateful, so each call builds its own.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}
