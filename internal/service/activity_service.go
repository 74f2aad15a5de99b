package service

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chronolog/internal/db"
	"github.com/chronolog/internal/history"
	"github.com/chronolog/internal/metrics"
)

// plainText 去除用户输入中的全部 HTML 标记
var plainText = bluemonday.StrictPolicy()

// AppendInput 描述开始新活动时的输入
type AppendInput struct {
	Activity string
	Note     string
	Location *history.LatLong
}

// EditInput 描述修改已有记录时的输入
// StartSpec 支持 ""、"HH:MM"、10 位时间戳或分钟偏移
type EditInput struct {
	StartSpec string
	Activity  string
	Note      string
}

// ActivityLogService 持有活动日志的内存快照，并负责把每次变更落库
// 写操作串行执行；读取返回不可变快照，可并发使用
type ActivityLogService struct {
	db     *gorm.DB
	now    func() time.Time
	logger zerolog.Logger

	mu       sync.Mutex
	snapMu   sync.RWMutex
	snapshot history.Log
}

// NewActivityLogService 从数据库加载日志。首次运行时当前活动开始时间取 now()
func NewActivityLogService(gdb *gorm.DB, now func() time.Time) (*ActivityLogService, error) {
	if now == nil {
		now = time.Now
	}
	s := &ActivityLogService{db: gdb, now: now, logger: zerolog.Nop()}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// WithLogger 设置日志输出
func (s *ActivityLogService) WithLogger(l zerolog.Logger) *ActivityLogService {
	s.logger = l
	return s
}

// Now 返回服务使用的当前时间（已处于配置时区）
func (s *ActivityLogService) Now() time.Time {
	return s.now()
}

// Snapshot 返回当前日志快照
func (s *ActivityLogService) Snapshot() history.Log {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	return s.snapshot
}

// Append 记录新的活动，并把上一段活动在当前时间结束
func (s *ActivityLogService) Append(input AppendInput) (history.Log, error) {
	return s.mutate("append", func(l history.Log) (history.Log, error) {
		return l.Append(cleanInput(input.Activity), cleanInput(input.Note), input.Location, s.now())
	})
}

// Edit 修改开始时间为 oldStart 的记录
func (s *ActivityLogService) Edit(oldStart int64, input EditInput) (history.Log, error) {
	return s.mutate("edit", func(l history.Log) (history.Log, error) {
		return l.Edit(oldStart, input.StartSpec, cleanInput(input.Activity), cleanInput(input.Note), s.now())
	})
}

// Delete 删除记录，其时间段并入前一条
func (s *ActivityLogService) Delete(startTime int64) (history.Log, error) {
	return s.mutate("delete", func(l history.Log) (history.Log, error) {
		return l.Delete(startTime)
	})
}

// Replace 用导入的日志整体替换现有数据
func (s *ActivityLogService) Replace(next history.Log) (history.Log, error) {
	return s.mutate("import", func(history.Log) (history.Log, error) {
		return next, nil
	})
}

// mutate 计算新快照并在同一事务内落库，事务提交后才替换内存快照
func (s *ActivityLogService) mutate(op string, apply func(history.Log) (history.Log, error)) (history.Log, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.Snapshot()
	next, err := apply(current)
	if err != nil {
		metrics.LogMutations.WithLabelValues(op, "rejected").Inc()
		return current, err
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		return persistDiff(tx, current, next)
	}); err != nil {
		metrics.LogMutations.WithLabelValues(op, "error").Inc()
		s.logger.Error().Err(err).Str("operation", op).Msg("persist activity log")
		return current, fmt.Errorf("%s activity: %w", op, err)
	}

	s.snapMu.Lock()
	s.snapshot = next
	s.snapMu.Unlock()

	metrics.LogMutations.WithLabelValues(op, "ok").Inc()
	metrics.LogEntries.Set(float64(next.Len()))
	s.logger.Debug().Str("operation", op).Int("entries", next.Len()).Msg("activity log updated")
	return next, nil
}

func (s *ActivityLogService) reload() error {
	var rows []db.ActivityEntry
	if err := s.db.Order("start_time ASC").Find(&rows).Error; err != nil {
		return fmt.Errorf("load activity entries: %w", err)
	}

	entries := make([]history.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, entryFromRow(row))
	}

	var state db.LogState
	err := s.db.First(&state, db.LogStateID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		state = db.LogState{ID: db.LogStateID, CurrentActivityStartTime: s.now().Unix()}
		if err := s.db.Create(&state).Error; err != nil {
			return fmt.Errorf("create log state: %w", err)
		}
	case err != nil:
		return fmt.Errorf("load log state: %w", err)
	}

	s.snapMu.Lock()
	s.snapshot = history.New(entries, state.CurrentActivityStartTime)
	s.snapMu.Unlock()
	metrics.LogEntries.Set(float64(len(entries)))
	return nil
}

func persistDiff(tx *gorm.DB, prev, next history.Log) error {
	keep := make(map[int64]history.Entry, next.Len())
	for _, e := range next.Entries() {
		keep[e.StartTime] = e
	}

	var stale []int64
	for _, e := range prev.Entries() {
		if n, ok := keep[e.StartTime]; !ok {
			stale = append(stale, e.StartTime)
		} else if sameEntry(e, n) {
			delete(keep, e.StartTime)
		}
	}

	if len(stale) > 0 {
		if err := tx.Where("start_time IN ?", stale).Delete(&db.ActivityEntry{}).Error; err != nil {
			return fmt.Errorf("delete entries: %w", err)
		}
	}

	for _, e := range next.Entries() {
		if _, changed := keep[e.StartTime]; !changed {
			continue
		}
		row := rowFromEntry(e)
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "start_time"}},
			DoUpdates: clause.AssignmentColumns([]string{"activity", "note", "lat", "long", "updated_at"}),
		}).Create(&row).Error; err != nil {
			return fmt.Errorf("upsert entry: %w", err)
		}
	}

	state := db.LogState{ID: db.LogStateID, CurrentActivityStartTime: next.CurrentActivityStartTime()}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"current_activity_start_time", "updated_at"}),
	}).Create(&state).Error; err != nil {
		return fmt.Errorf("save log state: %w", err)
	}
	return nil
}

func sameEntry(a, b history.Entry) bool {
	if a.Activity != b.Activity || a.Note != b.Note {
		return false
	}
	if a.Location == nil || b.Location == nil {
		return a.Location == nil && b.Location == nil
	}
	return *a.Location == *b.Location
}

func entryFromRow(row db.ActivityEntry) history.Entry {
	e := history.Entry{StartTime: row.StartTime, Activity: row.Activity, Note: row.Note}
	if row.Lat != nil && row.Long != nil {
		e.Location = &history.LatLong{Lat: *row.Lat, Long: *row.Long}
	}
	return e
}

func rowFromEntry(e history.Entry) db.ActivityEntry {
	row := db.ActivityEntry{StartTime: e.StartTime, Activity: e.Activity, Note: e.Note}
	if e.Location != nil {
		lat, long := e.Location.Lat, e.Location.Long
		row.Lat, row.Long = &lat, &long
	}
	return row
}

// cleanInput 去掉标记后还原实体，避免 "&" 被存成 "&amp;"
func cleanInput(s string) string {
	return strings.TrimSpace(html.UnescapeString(plainText.Sanitize(s)))
}
