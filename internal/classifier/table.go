package classifier

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/chronolog/internal/textnorm"
)

//go:embed categories.yaml
var categoriesYAML []byte

// Weights scale the individual match counts of a category.
type Weights struct {
	ExactMatch        float64 `yaml:"exact_match"`
	SubstringMatch    float64 `yaml:"substring_match"`
	CharacterFeatures float64 `yaml:"character_features"`
	LengthPenalty     float64 `yaml:"length_penalty"`
}

// PatternBoost adds Boost to a category's raw score when Regex matches the
// lowercased text. Matching is case-insensitive.
type PatternBoost struct {
	Regex string  `yaml:"regex"`
	Boost float64 `yaml:"boost"`

	re *regexp.Regexp
}

// CategoryModel is one semantic category. Features maps a tag to the words
// whose presence in the text counts as a hit for that tag.
type CategoryModel struct {
	Name     string              `yaml:"name"`
	Icon     string              `yaml:"icon"`
	Keywords []string            `yaml:"keywords"`
	Features map[string][]string `yaml:"features"`
	Weights  Weights             `yaml:"weights"`
	Patterns []PatternBoost      `yaml:"patterns"`

	normalizedKeywords []string
}

// Fallback is returned when no category clears the threshold.
type Fallback struct {
	Name       string  `yaml:"name"`
	Icon       string  `yaml:"icon"`
	Confidence float64 `yaml:"confidence"`
}

// Table is the immutable set of category models.
type Table struct {
	Default    Fallback        `yaml:"default"`
	Threshold  float64         `yaml:"threshold"`
	Categories []CategoryModel `yaml:"categories"`

	byName map[string]*CategoryModel
}

var defaultTable = mustParseTable(categoriesYAML)

// DefaultTable returns the built-in category table.
func DefaultTable() *Table {
	return defaultTable
}

// LoadTableFile reads a category table from a YAML file.
func LoadTableFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read category table: %w", err)
	}
	return ParseTable(data)
}

// ParseTable decodes and validates a YAML category table.
func ParseTable(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode category table: %w", err)
	}
	if len(t.Categories) == 0 {
		return nil, errors.New("category table has no categories")
	}
	if t.Default.Name == "" {
		t.Default.Name = "general"
	}

	t.byName = make(map[string]*CategoryModel, len(t.Categories))
	for i := range t.Categories {
		m := &t.Categories[i]
		if m.Name == "" {
			return nil, fmt.Errorf("category %d has no name", i)
		}
		if len(m.Keywords) == 0 {
			return nil, fmt.Errorf("category %q has no keywords", m.Name)
		}
		if _, dup := t.byName[m.Name]; dup {
			return nil, fmt.Errorf("duplicate category %q", m.Name)
		}
		for j := range m.Patterns {
			re, err := regexp.Compile("(?i)" + m.Patterns[j].Regex)
			if err != nil {
				return nil, fmt.Errorf("category %q pattern %d: %w", m.Name, j, err)
			}
			m.Patterns[j].re = re
		}
		m.normalizedKeywords = make([]string, len(m.Keywords))
		for j, k := range m.Keywords {
			m.normalizedKeywords[j] = textnorm.Normalize(k)
		}
		t.byName[m.Name] = m
	}
	return &t, nil
}

func mustParseTable(data []byte) *Table {
	t, err := ParseTable(data)
	if err != nil {
		panic(err)
	}
	return t
}

// Model looks up a category by name.
func (t *Table) Model(name string) (*CategoryModel, bool) {
	m, ok := t.byName[name]
	return m, ok
}

// Names lists the category names in table order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Categories))
	for i, m := range t.Categories {
		names[i] = m.Name
	}
	return names
}

// Icon returns the icon for a category, or the fallback icon.
func (t *Table) Icon(name string) string {
	if m, ok := t.byName[name]; ok && m.Icon != "" {
		return m.Icon
	}
	return t.Default.Icon
}
