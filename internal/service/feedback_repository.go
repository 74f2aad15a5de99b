package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chronolog/internal/db"
	"github.com/chronolog/internal/feedback"
)

// ErrCorruptFeedback 表示存储中的反馈数据不完整
var ErrCorruptFeedback = errors.New("corrupt feedback data")

// FeedbackRepository 基于 gorm 持久化分类反馈
type FeedbackRepository struct {
	db *gorm.DB
}

// NewFeedbackRepository 构造 FeedbackRepository
func NewFeedbackRepository(gdb *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{db: gdb}
}

// Load 读取全部记录与关键词，发现缺失字段时返回 ErrCorruptFeedback
func (r *FeedbackRepository) Load(ctx context.Context) (feedback.Snapshot, error) {
	var records []db.FeedbackRecord
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&records).Error; err != nil {
		return feedback.Snapshot{}, fmt.Errorf("load feedback records: %w", err)
	}
	var keywords []db.LearnedKeyword
	if err := r.db.WithContext(ctx).Order("keyword ASC").Find(&keywords).Error; err != nil {
		return feedback.Snapshot{}, fmt.Errorf("load learned keywords: %w", err)
	}

	snap := feedback.Snapshot{
		Records:  make([]feedback.Record, 0, len(records)),
		Keywords: make([]feedback.Keyword, 0, len(keywords)),
	}
	for _, rec := range records {
		if rec.Text == "" || rec.Category == "" {
			return feedback.Snapshot{}, fmt.Errorf("%w: record %s", ErrCorruptFeedback, rec.ID)
		}
		snap.Records = append(snap.Records, feedback.Record{
			ID:        rec.ID,
			Text:      rec.Text,
			Category:  rec.Category,
			Timestamp: rec.CreatedAt,
		})
	}
	for _, kw := range keywords {
		if kw.Category == "" || kw.Frequency < 1 {
			return feedback.Snapshot{}, fmt.Errorf("%w: keyword %q", ErrCorruptFeedback, kw.Keyword)
		}
		snap.Keywords = append(snap.Keywords, feedback.Keyword{
			Keyword:   kw.Keyword,
			Category:  kw.Category,
			Frequency: kw.Frequency,
			LastUsed:  kw.LastUsed,
		})
	}
	return snap, nil
}

// Save 在一个事务中写入记录并更新关键词
func (r *FeedbackRepository) Save(ctx context.Context, record feedback.Record, keywords []feedback.Keyword) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := db.FeedbackRecord{
			ID:        record.ID,
			Text:      record.Text,
			Category:  record.Category,
			CreatedAt: record.Timestamp,
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("create feedback record: %w", err)
		}

		for _, kw := range keywords {
			learned := db.LearnedKeyword{
				Keyword:   kw.Keyword,
				Category:  kw.Category,
				Frequency: kw.Frequency,
				LastUsed:  kw.LastUsed,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "keyword"}},
				DoUpdates: clause.AssignmentColumns([]string{"category", "frequency", "last_used"}),
			}).Create(&learned).Error; err != nil {
				return fmt.Errorf("upsert learned keyword: %w", err)
			}
		}
		return nil
	})
}

// Prune 删除 before 之前的记录与关键词
func (r *FeedbackRepository) Prune(ctx context.Context, before time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("created_at < ?", before).Delete(&db.FeedbackRecord{}).Error; err != nil {
			return fmt.Errorf("prune feedback records: %w", err)
		}
		if err := tx.Where("last_used < ?", before).Delete(&db.LearnedKeyword{}).Error; err != nil {
			return fmt.Errorf("prune learned keywords: %w", err)
		}
		return nil
	})
}

// Clear 清空全部反馈数据
func (r *FeedbackRepository) Clear(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&db.FeedbackRecord{}).Error; err != nil {
			return fmt.Errorf("clear feedback records: %w", err)
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&db.LearnedKeyword{}).Error; err != nil {
			return fmt.Errorf("clear learned keywords: %w", err)
		}
		return nil
	})
}
