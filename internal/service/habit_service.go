package service

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/chronolog/internal/balance"
	"github.com/chronolog/internal/habit"
	"github.com/chronolog/internal/history"
)

// ErrHabitActivityRequired 在未指定活动名称时返回
var ErrHabitActivityRequired = errors.New("habit activity is required")

// habitWindow 为习惯概览统计的回看范围
const habitWindow = 14 * 24 * time.Hour

// LogSource 提供日志快照与当前时间，ActivityLogService 实现该接口
type LogSource interface {
	Snapshot() history.Log
	Now() time.Time
}

// HabitOverview 为单个活动的指标及可能的恢复提示
type HabitOverview struct {
	habit.Metrics
	Recovery *habit.Recovery `json:"recovery,omitempty"`
}

// HabitService 基于日志快照计算习惯指标
type HabitService struct {
	logs LogSource
	calc habit.Calculator
}

// NewHabitService 构造 HabitService，skipDays 为默认宽限天数
func NewHabitService(logs LogSource, skipDays int) *HabitService {
	return &HabitService{logs: logs, calc: habit.NewCalculator(skipDays)}
}

// Metrics 计算单个活动的指标，skipDays 为 nil 时使用默认宽限
func (s *HabitService) Metrics(activity string, skipDays *int) (habit.Metrics, error) {
	if strings.TrimSpace(activity) == "" {
		return habit.Metrics{}, ErrHabitActivityRequired
	}
	calc := s.calc
	if skipDays != nil {
		calc = habit.NewCalculator(*skipDays)
	}
	return calc.Calculate(s.logs.Snapshot(), activity, s.logs.Now()), nil
}

// Overview 返回近两周出现过的每个活动的指标，按名称排序
func (s *HabitService) Overview(log history.Log, now time.Time) []HabitOverview {
	seen := make(map[string]string)
	for _, e := range log.Since(now.Add(-habitWindow).Unix()) {
		if e.StartTime > now.Unix() {
			continue
		}
		key := strings.ToLower(e.Activity)
		if _, ok := seen[key]; !ok {
			seen[key] = e.Activity
		}
	}

	names := make([]string, 0, len(seen))
	for _, name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]HabitOverview, 0, len(names))
	for _, name := range names {
		m := s.calc.Calculate(log, name, now)
		item := HabitOverview{Metrics: m}
		if r, ok := habit.Recover(m, now); ok {
			item.Recovery = &r
		}
		out = append(out, item)
	}
	return out
}

// Achievements 返回全部里程碑，b 为同一快照的生活平衡结果
func (s *HabitService) Achievements(log history.Log, now time.Time, b balance.Metrics) []habit.Achievement {
	summary := habit.BalanceSummary{ActiveCategories: b.Active(), Overall: b.Overall}
	return s.calc.Achievements(log, now, summary, func(activity string) string {
		return string(balance.CategoryOf(activity))
	})
}
