package handler

import (
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/chronolog/internal/service"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db        *gorm.DB
	logs      *service.ActivityLogService
	classify  *service.ClassificationService
	habits    *service.HabitService
	analytics *service.AnalyticsService
	logger    zerolog.Logger
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, logs *service.ActivityLogService, classify *service.ClassificationService, habits *service.HabitService, analytics *service.AnalyticsService) *API {
	return &API{
		db:        gdb,
		logs:      logs,
		classify:  classify,
		habits:    habits,
		analytics: analytics,
		logger:    zerolog.Nop(),
	}
}

// WithLogger 设置处理器日志输出
func (a *API) WithLogger(l zerolog.Logger) *API {
	a.logger = l
	return a
}
