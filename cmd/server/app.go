package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"gorm.io/gorm"

	"github.com/chronolog/internal/classifier"
	"github.com/chronolog/internal/config"
	"github.com/chronolog/internal/db"
	"github.com/chronolog/internal/feedback"
	"github.com/chronolog/internal/insight"
	"github.com/chronolog/internal/logger"
	"github.com/chronolog/internal/service"
)

// app 持有一次命令执行所需的全部服务
type app struct {
	cfg       config.AppConfig
	logger    zerolog.Logger
	db        *gorm.DB
	logs      *service.ActivityLogService
	classify  *service.ClassificationService
	habits    *service.HabitService
	analytics *service.AnalyticsService
}

func mustBind(key string, flag *pflag.Flag) {
	if err := settings.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

func newApp(ctx context.Context) (*app, error) {
	cfg := config.FromViper(settings)
	root := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	gdb, err := db.Init(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	location := cfg.Location
	now := func() time.Time { return time.Now().In(location) }

	logs, err := service.NewActivityLogService(gdb, now)
	if err != nil {
		return nil, err
	}
	logs.WithLogger(logger.ForComponent(root, "activity"))

	table := classifier.DefaultTable()
	if cfg.CategoriesFile != "" {
		if table, err = classifier.LoadTableFile(cfg.CategoriesFile); err != nil {
			return nil, fmt.Errorf("load categories: %w", err)
		}
	}

	store := feedback.Open(ctx, service.NewFeedbackRepository(gdb),
		feedback.WithRetention(cfg.FeedbackRetention()),
		feedback.WithLogger(logger.ForComponent(root, "feedback")),
	)
	classify, err := service.NewClassificationService(table, store, cfg.ClassifyCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create classifier: %w", err)
	}
	classify.WithLogger(logger.ForComponent(root, "classifier"))

	detectorCfg := insight.DefaultConfig()
	detectorCfg.SkipDaysAllowed = cfg.SkipDaysAllowed
	detectorCfg.DurationDeviation = cfg.DurationDeviation
	detectorCfg.TimingShiftHours = cfg.TimingShiftHours

	habits := service.NewHabitService(logs, cfg.SkipDaysAllowed)
	analytics := service.NewAnalyticsService(logs, classify, habits, insight.NewDetector(detectorCfg, nil)).
		WithLogger(logger.ForComponent(root, "analytics"))

	root.Debug().
		Str("database", cfg.DatabasePath).
		Str("timezone", cfg.Timezone).
		Int("entries", logs.Snapshot().Len()).
		Msg("application initialized")

	return &app{
		cfg:       cfg,
		logger:    root,
		db:        gdb,
		logs:      logs,
		classify:  classify,
		habits:    habits,
		analytics: analytics,
	}, nil
}

func (a *app) Close() {
	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close()
	}
}
