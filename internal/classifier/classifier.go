// Package classifier maps free-text activity names to semantic categories
// using weighted keyword, feature and pattern scores.
package classifier

import "strings"

// Source tells where a prediction came from.
type Source string

const (
	SourceFeedback Source = "feedback"
	SourceKeywords Source = "keywords"
	SourceFallback Source = "fallback"
)

// Prediction is the category chosen for a piece of text.
type Prediction struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Icon       string  `json:"icon"`
	Source     Source  `json:"source"`
}

// Score is one category's normalized score for a text.
type Score struct {
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// Learner supplies categories learned from user corrections.
type Learner interface {
	Lookup(text string) (category string, confidence float64, ok bool)
}

// Classifier is safe for concurrent use as long as its Learner is.
type Classifier struct {
	table   *Table
	learner Learner
}

// New returns a classifier over table. A nil table uses DefaultTable and a nil
// learner disables learned overrides.
func New(table *Table, learner Learner) *Classifier {
	if table == nil {
		table = DefaultTable()
	}
	return &Classifier{table: table, learner: learner}
}

// Table exposes the category table in use.
func (c *Classifier) Table() *Table {
	return c.table
}

// Classify predicts the category of text. Learned overrides win over the
// keyword scorer.
func (c *Classifier) Classify(text string) Prediction {
	if c.learner != nil {
		if category, confidence, ok := c.learner.Lookup(text); ok {
			return Prediction{
				Category:   category,
				Confidence: clamp01(confidence),
				Icon:       c.table.Icon(category),
				Source:     SourceFeedback,
			}
		}
	}

	f := ExtractFeatures(text)
	var (
		best      *CategoryModel
		bestScore float64
	)
	for i := range c.table.Categories {
		m := &c.table.Categories[i]
		if s := m.score(f); s > bestScore {
			best, bestScore = m, s
		}
	}
	if best == nil || bestScore <= c.table.Threshold {
		return Prediction{
			Category:   c.table.Default.Name,
			Confidence: c.table.Default.Confidence,
			Icon:       c.table.Default.Icon,
			Source:     SourceFallback,
		}
	}
	return Prediction{Category: best.Name, Confidence: bestScore, Icon: best.Icon, Source: SourceKeywords}
}

// Scores returns every category's keyword score for text, in table order.
func (c *Classifier) Scores(text string) []Score {
	f := ExtractFeatures(text)
	out := make([]Score, len(c.table.Categories))
	for i := range c.table.Categories {
		m := &c.table.Categories[i]
		out[i] = Score{Category: m.Name, Score: m.score(f)}
	}
	return out
}

func (m *CategoryModel) score(f Features) float64 {
	exact, substring := 0, 0
	for i, keyword := range m.Keywords {
		if matchesToken(keyword, m.normalizedKeywords[i], f) {
			exact++
		}
		if strings.Contains(f.Text, keyword) {
			substring++
		}
	}

	featureHits := 0
	for _, words := range m.Features {
		if containsAny(f.Text, words) {
			featureHits++
		}
	}

	raw := float64(exact)*m.Weights.ExactMatch +
		float64(substring)*m.Weights.SubstringMatch +
		float64(featureHits)*m.Weights.CharacterFeatures
	if f.Length < 3 || f.Length > 50 {
		raw += m.Weights.LengthPenalty
	}
	for _, p := range m.Patterns {
		if p.re.MatchString(f.Text) {
			raw += p.Boost
		}
	}

	divisor := min(len(m.Keywords), max(1, f.WordCount))
	return clamp01(raw / float64(divisor))
}

func matchesToken(keyword, normalized string, f Features) bool {
	for i, tok := range f.Tokens {
		if tok == keyword {
			return true
		}
		if normalized != "" && f.NormalizedTokens[i] == normalized {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
