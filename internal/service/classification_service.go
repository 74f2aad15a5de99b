package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/chronolog/internal/classifier"
	"github.com/chronolog/internal/feedback"
	"github.com/chronolog/internal/metrics"
)

// ErrUnknownCategory 在反馈指定的分类不存在时返回
var ErrUnknownCategory = errors.New("unknown category")

// ClassificationService 组合关键词分类器与反馈学习，并缓存分类结果
// 任何反馈写入都会清空缓存，保证学习结果立即生效
type ClassificationService struct {
	classifier *classifier.Classifier
	store      *feedback.Store
	cache      *lru.Cache[string, classifier.Prediction]
	logger     zerolog.Logger

	// classify 默认为 classifier.Classify
	classify func(string) classifier.Prediction

	// generation 在每次清空缓存时递增，计算期间发生变化的结果不写入缓存
	mu         sync.Mutex
	generation uint64
}

// NewClassificationService 构造 ClassificationService
// table 为 nil 时使用内置分类表，store 为 nil 时反馈只保存在内存中
func NewClassificationService(table *classifier.Table, store *feedback.Store, cacheSize int) (*ClassificationService, error) {
	if cacheSize <= 0 {
		cacheSize = 512
	}
	cache, err := lru.New[string, classifier.Prediction](cacheSize)
	if err != nil {
		return nil, err
	}

	if store == nil {
		store = feedback.Open(context.Background(), feedback.NewMemoryRepository())
	}
	svc := &ClassificationService{
		classifier: classifier.New(table, store),
		store:      store,
		cache:      cache,
		logger:     zerolog.Nop(),
	}
	svc.classify = svc.classifier.Classify
	return svc, nil
}

// WithLogger 设置日志输出
func (s *ClassificationService) WithLogger(l zerolog.Logger) *ClassificationService {
	s.logger = l
	return s
}

// Classify 返回活动文本的分类结果
func (s *ClassificationService) Classify(text string) classifier.Prediction {
	key := strings.ToLower(strings.TrimSpace(text))
	if p, ok := s.cache.Get(key); ok {
		metrics.ClassifyCacheHits.Inc()
		return p
	}

	s.mu.Lock()
	gen := s.generation
	s.mu.Unlock()

	p := s.classify(key)

	s.mu.Lock()
	if gen == s.generation {
		s.cache.Add(key, p)
	}
	s.mu.Unlock()
	metrics.Classifications.WithLabelValues(string(p.Source)).Inc()
	return p
}

// Explain 返回文本的特征与各分类得分
func (s *ClassificationService) Explain(text string) (classifier.Features, []classifier.Score) {
	return classifier.ExtractFeatures(text), s.classifier.Scores(text)
}

// Categories 列出可选分类，包含兜底分类
func (s *ClassificationService) Categories() []string {
	table := s.classifier.Table()
	return append(table.Names(), table.Default.Name)
}

// RecordFeedback 记录用户对分类的修正
func (s *ClassificationService) RecordFeedback(ctx context.Context, text, category string) error {
	category = strings.ToLower(strings.TrimSpace(category))
	if !s.knownCategory(category) {
		return ErrUnknownCategory
	}
	if err := s.store.RecordSelection(ctx, text, category); err != nil {
		return err
	}
	s.invalidate()
	metrics.FeedbackRecords.Inc()
	s.logger.Info().Str("text", text).Str("category", category).Msg("category feedback recorded")
	return nil
}

// FeedbackStats 返回反馈学习统计
func (s *ClassificationService) FeedbackStats() feedback.Stats {
	return s.store.Stats()
}

// ClearFeedback 清空全部学习结果
func (s *ClassificationService) ClearFeedback(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.invalidate()
	s.logger.Info().Msg("category feedback cleared")
	return nil
}

func (s *ClassificationService) invalidate() {
	s.mu.Lock()
	s.generation++
	s.cache.Purge()
	s.mu.Unlock()
}

func (s *ClassificationService) knownCategory(category string) bool {
	table := s.classifier.Table()
	if category == table.Default.Name {
		return true
	}
	_, ok := table.Model(category)
	return ok
}
