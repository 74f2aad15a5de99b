package classifier

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/chronolog/internal/textnorm"
)

// Sentiment is a coarse tone estimate of the text.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// Features is extracted once per classification.
type Features struct {
	Text             string    `json:"text"`
	Tokens           []string  `json:"tokens"`
	NormalizedTokens []string  `json:"normalized_tokens"`
	Length           int       `json:"length"`
	WordCount        int       `json:"word_count"`
	HasNumbers       bool      `json:"has_numbers"`
	HasSpecialChars  bool      `json:"has_special_chars"`
	StartsWithVerb   bool      `json:"starts_with_verb"`
	HasTimeReference bool      `json:"has_time_reference"`
	Sentiment        Sentiment `json:"sentiment"`
}

var (
	commonVerbs = map[string]bool{
		"go": true, "do": true, "make": true, "take": true, "get": true, "see": true, "come": true,
		"think": true, "look": true, "want": true, "give": true, "use": true, "find": true, "tell": true,
		"ask": true, "work": true, "seem": true, "feel": true, "try": true, "leave": true, "call": true,
	}
	timeWords = []string{
		"morning", "afternoon", "evening", "night", "today", "tomorrow", "yesterday",
		"hour", "minute", "time", "early", "late", "quick", "slow",
	}
	positiveWords = []string{
		"good", "great", "excellent", "amazing", "wonderful", "fantastic",
		"awesome", "love", "enjoy", "happy", "fun", "exciting",
	}
	negativeWords = []string{
		"bad", "terrible", "awful", "hate", "boring", "difficult",
		"hard", "stressful", "tired", "sad", "annoying",
	}
)

// ExtractFeatures lowercases and trims text and derives its features.
func ExtractFeatures(text string) Features {
	text = strings.ToLower(strings.TrimSpace(text))
	tokens := strings.Fields(text)
	f := Features{
		Text:             text,
		Tokens:           tokens,
		NormalizedTokens: make([]string, len(tokens)),
		Length:           utf8.RuneCountInString(text),
		WordCount:        len(tokens),
		HasTimeReference: containsAny(text, timeWords),
	}
	for i, tok := range tokens {
		f.NormalizedTokens[i] = textnorm.Normalize(tok)
	}
	for _, r := range text {
		switch {
		case unicode.IsDigit(r):
			f.HasNumbers = true
		case !unicode.IsLetter(r) && !unicode.IsSpace(r):
			f.HasSpecialChars = true
		}
	}
	if len(tokens) > 0 {
		f.StartsWithVerb = commonVerbs[tokens[0]]
	}

	positive, negative := countContained(text, positiveWords), countContained(text, negativeWords)
	switch {
	case positive > negative:
		f.Sentiment = SentimentPositive
	case negative > positive:
		f.Sentiment = SentimentNegative
	default:
		f.Sentiment = SentimentNeutral
	}
	return f
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func countContained(text string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}
