package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLearner map[string]string

func (s stubLearner) Lookup(text string) (string, float64, bool) {
	c, ok := s[text]
	return c, 0.9, ok
}

func TestDefaultTable(t *testing.T) {
	table := DefaultTable()
	assert.Equal(t, []string{"exercise", "work", "food", "sleep", "social", "learning", "entertainment", "health", "travel"}, table.Names())
	assert.Equal(t, "general", table.Default.Name)
	assert.Equal(t, "🏃", table.Icon("exercise"))
	assert.Equal(t, table.Default.Icon, table.Icon("unknown"))
}

func TestClassify(t *testing.T) {
	c := New(nil, nil)

	tests := []struct {
		text     string
		category string
	}{
		{"morning run 5km", "exercise"},
		{"Gym", "exercise"},
		{"team meeting", "work"},
		{"Breakfast", "food"},
		{"sleep 8 hours", "sleep"},
		{"doctor appointment", "health"},
		{"commute by bus", "travel"},
		{"xyzzy", "general"},
		{"", "general"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := c.Classify(tt.text)
			assert.Equal(t, tt.category, got.Category)
		})
	}
}

func TestClassifyMorningRun(t *testing.T) {
	got := New(nil, nil).Classify("morning run 5km")
	assert.Equal(t, "exercise", got.Category)
	assert.Greater(t, got.Confidence, 0.3)
	assert.Equal(t, SourceKeywords, got.Source)
	assert.Equal(t, "🏃", got.Icon)
}

func TestClassifySingleKeywordSaturates(t *testing.T) {
	got := New(nil, nil).Classify("gym")
	assert.Equal(t, "exercise", got.Category)
	assert.Equal(t, 1.0, got.Confidence)
}

func TestClassifyFallback(t *testing.T) {
	got := New(nil, nil).Classify("xyzzy")
	assert.Equal(t, Prediction{Category: "general", Confidence: 0.1, Icon: "📝", Source: SourceFallback}, got)
}

func TestClassifyDeterministicAndBounded(t *testing.T) {
	c := New(nil, nil)
	inputs := []string{
		"morning run 5km", "a", "pizza lunch with friends and family at the new place downtown by the river",
		"!!!", "read a book", "watch netflix", "Café visit", "12345",
	}
	for _, in := range inputs {
		first := c.Classify(in)
		assert.Equal(t, first, c.Classify(in), in)
		assert.GreaterOrEqual(t, first.Confidence, 0.0, in)
		assert.LessOrEqual(t, first.Confidence, 1.0, in)
		for _, s := range c.Scores(in) {
			assert.GreaterOrEqual(t, s.Score, 0.0)
			assert.LessOrEqual(t, s.Score, 1.0)
		}
	}
}

func TestClassifyLearnedOverride(t *testing.T) {
	c := New(nil, stubLearner{"morning run 5km": "social"})
	got := c.Classify("morning run 5km")
	assert.Equal(t, "social", got.Category)
	assert.Equal(t, SourceFeedback, got.Source)
	assert.Equal(t, "👥", got.Icon)

	assert.Equal(t, "work", c.Classify("team meeting").Category)
}

func TestExtractFeatures(t *testing.T) {
	f := ExtractFeatures("  Go for a quick walk, it's great! 10 ")
	assert.Equal(t, "go for a quick walk, it's great! 10", f.Text)
	assert.Equal(t, 8, f.WordCount)
	assert.True(t, f.HasNumbers)
	assert.True(t, f.HasSpecialChars)
	assert.True(t, f.StartsWithVerb)
	assert.True(t, f.HasTimeReference)
	assert.Equal(t, SentimentPositive, f.Sentiment)
}

func TestParseTableErrors(t *testing.T) {
	_, err := ParseTable([]byte("categories: []"))
	assert.Error(t, err)

	_, err = ParseTable([]byte("categories:\n  - name: x\n    keywords: [a]\n    patterns:\n      - regex: '('\n"))
	assert.Error(t, err)

	_, err = ParseTable([]byte("categories:\n  - name: x\n    keywords: [a]\n  - name: x\n    keywords: [b]\n"))
	assert.Error(t, err)

	table, err := ParseTable([]byte("threshold: 0.3\ncategories:\n  - name: chores\n    keywords: [laundry]\n    weights: {exact_match: 1}\n"))
	require.NoError(t, err)
	assert.Equal(t, "chores", New(table, nil).Classify("laundry").Category)
}
