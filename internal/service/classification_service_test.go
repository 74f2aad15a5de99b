package service

import (
	"context"
	"errors"
	"testing"

	"github.com/chronolog/internal/classifier"
	"github.com/chronolog/internal/feedback"
)

func newTestClassificationService(t *testing.T) *ClassificationService {
	t.Helper()
	gdb := setupTestDB(t)
	store := feedback.Open(context.Background(), NewFeedbackRepository(gdb))
	svc, err := NewClassificationService(nil, store, 16)
	if err != nil {
		t.Fatalf("NewClassificationService returned error: %v", err)
	}
	return svc
}

func TestClassificationServiceFeedbackInvalidatesCache(t *testing.T) {
	svc := newTestClassificationService(t)
	ctx := context.Background()

	first := svc.Classify("xyzzy plugh")
	if first.Category != "general" || first.Source != classifier.SourceFallback {
		t.Fatalf("expected fallback, got %+v", first)
	}

	if err := svc.RecordFeedback(ctx, "Xyzzy Plugh", "Learning"); err != nil {
		t.Fatalf("record feedback: %v", err)
	}

	learned := svc.Classify("xyzzy plugh")
	if learned.Category != "learning" || learned.Source != classifier.SourceFeedback {
		t.Fatalf("expected learned category, got %+v", learned)
	}
	if learned.Confidence != 1 || learned.Icon != "📚" {
		t.Fatalf("unexpected learned prediction: %+v", learned)
	}

	if err := svc.ClearFeedback(ctx); err != nil {
		t.Fatalf("clear feedback: %v", err)
	}
	if got := svc.Classify("xyzzy plugh"); got.Category != "general" {
		t.Fatalf("expected fallback after clear, got %+v", got)
	}
	if stats := svc.FeedbackStats(); stats.TotalRecords != 0 {
		t.Fatalf("expected no records after clear, got %+v", stats)
	}
}

func TestClassificationServiceDropsResultComputedBeforeFeedback(t *testing.T) {
	svc := newTestClassificationService(t)
	ctx := context.Background()

	compute := svc.classify
	svc.classify = func(text string) classifier.Prediction {
		stale := compute(text)
		if err := svc.RecordFeedback(ctx, text, "learning"); err != nil {
			t.Fatalf("record feedback: %v", err)
		}
		return stale
	}

	if got := svc.Classify("xyzzy plugh"); got.Category != "general" {
		t.Fatalf("expected the in-flight result to be the fallback, got %+v", got)
	}
	if _, ok := svc.cache.Get("xyzzy plugh"); ok {
		t.Fatalf("result computed before the feedback write must not be cached")
	}

	svc.classify = compute
	if got := svc.Classify("xyzzy plugh"); got.Category != "learning" {
		t.Fatalf("expected learned category after feedback, got %+v", got)
	}
}

func TestClassificationServiceRejectsUnknownCategory(t *testing.T) {
	svc := newTestClassificationService(t)

	err := svc.RecordFeedback(context.Background(), "chess club", "hobbies")
	if !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
	if err := svc.RecordFeedback(context.Background(), "   ", "work"); !errors.Is(err, feedback.ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
}

func TestClassificationServiceCategories(t *testing.T) {
	svc := newTestClassificationService(t)

	names := svc.Categories()
	if len(names) != 10 {
		t.Fatalf("expected 9 categories plus general, got %v", names)
	}
	if names[len(names)-1] != "general" {
		t.Fatalf("expected general last, got %v", names)
	}

	features, scores := svc.Explain("morning run 5km")
	if !features.HasNumbers || len(scores) != 9 {
		t.Fatalf("unexpected explanation: %+v %v", features, scores)
	}
}
