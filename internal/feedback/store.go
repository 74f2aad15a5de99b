// Package feedback learns category overrides from user corrections and feeds
// them back into classification.
package feedback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/chronolog/internal/textnorm"
)

const (
	// DefaultRetention is how long records and keywords are kept.
	DefaultRetention = 6 * 30 * 24 * time.Hour
	// MinKeywordFrequency is the reinforcement a keyword needs to be trusted.
	MinKeywordFrequency = 2
)

var (
	ErrEmptyText     = errors.New("activity text must contain letters")
	ErrEmptyCategory = errors.New("category must not be blank")
)

// Record is one manual category choice.
type Record struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
}

// Keyword is the learned category for one normalized keyword.
type Keyword struct {
	Keyword   string    `json:"keyword"`
	Category  string    `json:"category"`
	Frequency int       `json:"frequency"`
	LastUsed  time.Time `json:"last_used"`
}

// Snapshot is the persisted state of a store.
type Snapshot struct {
	Records  []Record
	Keywords []Keyword
}

// Repository persists feedback. Save stores one new record together with the
// keywords it changed.
type Repository interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, record Record, keywords []Keyword) error
	Prune(ctx context.Context, before time.Time) error
	Clear(ctx context.Context) error
}

// Stats summarizes what has been learned.
type Stats struct {
	TotalRecords     int `json:"total_records"`
	UniqueActivities int `json:"unique_activities"`
	Keywords         int `json:"keywords"`
	TrustedKeywords  int `json:"trusted_keywords"`
}

type categoryCount struct {
	category string
	count    int
}

// Store is safe for concurrent use. Writers are serialized; readers see the
// state as of the last completed write.
type Store struct {
	writeMu sync.Mutex

	mu       sync.RWMutex
	records  []Record
	exact    map[string][]categoryCount
	keywords map[string]Keyword

	repo      Repository
	retention time.Duration
	now       func() time.Time
	logger    zerolog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithRetention overrides DefaultRetention.
func WithRetention(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.retention = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used for load failures.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Open loads the store from repo and prunes expired entries. Unreadable
// storage is cleared and the store starts empty.
func Open(ctx context.Context, repo Repository, opts ...Option) *Store {
	s := &Store{
		repo:      repo,
		retention: DefaultRetention,
		now:       time.Now,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.reset()

	snap, err := repo.Load(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("feedback storage unreadable, starting empty")
		if err := repo.Clear(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("clear feedback storage")
		}
		return s
	}

	cutoff := s.now().Add(-s.retention)
	for _, r := range snap.Records {
		if r.Timestamp.Before(cutoff) {
			continue
		}
		s.records = append(s.records, r)
		s.exact[r.Text] = addCount(s.exact[r.Text], r.Category)
	}
	for _, k := range snap.Keywords {
		if k.LastUsed.Before(cutoff) {
			continue
		}
		s.keywords[k.Keyword] = k
	}
	if err := repo.Prune(ctx, cutoff); err != nil {
		s.logger.Warn().Err(err).Msg("prune feedback storage")
	}
	return s
}

func (s *Store) reset() {
	s.records = nil
	s.exact = make(map[string][]categoryCount)
	s.keywords = make(map[string]Keyword)
}

// RecordSelection stores that the user picked category for text and
// reinforces the text's keywords. A keyword already bound to a different
// category is left untouched.
func (s *Store) RecordSelection(ctx context.Context, text, category string) error {
	key := textnorm.NormalizeText(text)
	if key == "" {
		return ErrEmptyText
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return ErrEmptyCategory
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	now := s.now()
	record := Record{ID: uuid.NewString(), Text: key, Category: category, Timestamp: now}

	var changed []Keyword
	for _, word := range textnorm.Keywords(text) {
		current, ok := s.keywords[word]
		switch {
		case !ok:
			changed = append(changed, Keyword{Keyword: word, Category: category, Frequency: 1, LastUsed: now})
		case current.Category == category:
			current.Frequency++
			current.LastUsed = now
			changed = append(changed, current)
		}
	}

	if err := s.repo.Save(ctx, record, changed); err != nil {
		return fmt.Errorf("save feedback: %w", err)
	}

	s.mu.Lock()
	s.records = append(s.records, record)
	s.exact[key] = addCount(s.exact[key], category)
	for _, k := range changed {
		s.keywords[k.Keyword] = k
	}
	s.mu.Unlock()
	return nil
}

// Lookup returns the learned category for text and its confidence. Exact text
// matches win over keywords. A keyword hit reports f/(f+1) for a keyword
// reinforced f times, so text never corrected verbatim still has a confidence.
func (s *Store) Lookup(text string) (string, float64, bool) {
	key := textnorm.NormalizeText(text)
	if key == "" {
		return "", 0, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if counts := s.exact[key]; len(counts) > 0 {
		best, total := counts[0], 0
		for _, c := range counts {
			total += c.count
			if c.count > best.count {
				best = c
			}
		}
		return best.category, float64(best.count) / float64(total), true
	}

	for _, word := range textnorm.Keywords(text) {
		if k, ok := s.keywords[word]; ok && k.Frequency >= MinKeywordFrequency {
			return k.Category, float64(k.Frequency) / float64(k.Frequency+1), true
		}
	}
	return "", 0, false
}

// LearnedCategory returns the learned category for text, if any.
func (s *Store) LearnedCategory(text string) (string, bool) {
	category, _, ok := s.Lookup(text)
	return category, ok
}

// LearningConfidence returns how strongly the learned category is supported,
// or 0 when nothing was learned.
func (s *Store) LearningConfidence(text string) float64 {
	_, confidence, _ := s.Lookup(text)
	return confidence
}

// Stats reports counts over the current state.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		TotalRecords:     len(s.records),
		UniqueActivities: len(s.exact),
		Keywords:         len(s.keywords),
	}
	for _, k := range s.keywords {
		if k.Frequency >= MinKeywordFrequency {
			st.TrustedKeywords++
		}
	}
	return st
}

// Records returns a copy of the stored records, oldest first.
func (s *Store) Records() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Record(nil), s.records...)
}

// Clear forgets everything.
func (s *Store) Clear(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.repo.Clear(ctx); err != nil {
		return fmt.Errorf("clear feedback: %w", err)
	}
	s.mu.Lock()
	s.reset()
	s.mu.Unlock()
	return nil
}

func addCount(counts []categoryCount, category string) []categoryCount {
	for i := range counts {
		if counts[i].category == category {
			counts[i].count++
			return counts
		}
	}
	return append(counts, categoryCount{category: category, count: 1})
}
