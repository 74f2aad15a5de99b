package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix 为所有环境变量的前缀，同时兼容不带前缀的旧变量名
const EnvPrefix = "CHRONOLOG"

// 配置键，同时用作 cobra flag 的绑定名
const (
	KeyListenAddr            = "listen_addr"
	KeyPort                  = "port"
	KeyDatabasePath          = "database_path"
	KeySessionSecret         = "session_secret"
	KeyGinMode               = "gin_mode"
	KeyTimezone              = "timezone"
	KeyLogLevel              = "log_level"
	KeyLogFormat             = "log_format"
	KeyCategoriesFile        = "categories_file"
	KeySkipDaysAllowed       = "skip_days_allowed"
	KeyDurationDeviation     = "duration_deviation"
	KeyTimingShiftHours      = "timing_shift_hours"
	KeyFeedbackRetentionDays = "feedback_retention_days"
	KeyClassifyCacheSize     = "classify_cache_size"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr            string
	Port                  string
	DatabasePath          string
	SessionSecret         string
	GinMode               string
	Timezone              string
	Location              *time.Location
	LogLevel              string
	LogFormat             string
	CategoriesFile        string
	SkipDaysAllowed       int
	DurationDeviation     float64
	TimingShiftHours      float64
	FeedbackRetentionDays int
	ClassifyCacheSize     int
}

// New 创建带默认值与环境变量绑定的 viper 实例
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyPort, "8080")
	v.SetDefault(KeyDatabasePath, "chronolog.db")
	v.SetDefault(KeySessionSecret, "chronolog-dev-secret")
	v.SetDefault(KeyGinMode, "release")
	v.SetDefault(KeyTimezone, "Local")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "json")
	v.SetDefault(KeySkipDaysAllowed, 2)
	v.SetDefault(KeyDurationDeviation, 0.5)
	v.SetDefault(KeyTimingShiftHours, 2.0)
	v.SetDefault(KeyFeedbackRetentionDays, 180)
	v.SetDefault(KeyClassifyCacheSize, 512)

	for _, key := range []string{
		KeyListenAddr, KeyPort, KeyDatabasePath, KeySessionSecret, KeyGinMode,
		KeyTimezone, KeyLogLevel, KeyLogFormat, KeyCategoriesFile,
		KeySkipDaysAllowed, KeyDurationDeviation, KeyTimingShiftHours,
		KeyFeedbackRetentionDays, KeyClassifyCacheSize,
	} {
		env := strings.ToUpper(key)
		// BindEnv 只会因参数个数出错
		_ = v.BindEnv(key, EnvPrefix+"_"+env, env)
	}
	return v
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	return FromViper(New())
}

// FromViper 读取 viper 中的配置，非法数值回退到默认值
func FromViper(v *viper.Viper) AppConfig {
	port := strings.TrimSpace(v.GetString(KeyPort))
	if port == "" {
		port = "8080"
	}

	listenAddr := strings.TrimSpace(v.GetString(KeyListenAddr))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	timezone := strings.TrimSpace(v.GetString(KeyTimezone))
	location, err := time.LoadLocation(timezone)
	if err != nil || timezone == "" {
		timezone = "Local"
		location = time.Local
	}

	skipDays := v.GetInt(KeySkipDaysAllowed)
	if skipDays < 0 || skipDays > 6 {
		skipDays = 2
	}

	deviation := v.GetFloat64(KeyDurationDeviation)
	if deviation <= 0 {
		deviation = 0.5
	}

	shift := v.GetFloat64(KeyTimingShiftHours)
	if shift <= 0 {
		shift = 2
	}

	retention := v.GetInt(KeyFeedbackRetentionDays)
	if retention <= 0 {
		retention = 180
	}

	cacheSize := v.GetInt(KeyClassifyCacheSize)
	if cacheSize <= 0 {
		cacheSize = 512
	}

	return AppConfig{
		ListenAddr:            listenAddr,
		Port:                  port,
		DatabasePath:          strings.TrimSpace(v.GetString(KeyDatabasePath)),
		SessionSecret:         strings.TrimSpace(v.GetString(KeySessionSecret)),
		GinMode:               strings.TrimSpace(v.GetString(KeyGinMode)),
		Timezone:              timezone,
		Location:              location,
		LogLevel:              strings.TrimSpace(v.GetString(KeyLogLevel)),
		LogFormat:             strings.TrimSpace(v.GetString(KeyLogFormat)),
		CategoriesFile:        strings.TrimSpace(v.GetString(KeyCategoriesFile)),
		SkipDaysAllowed:       skipDays,
		DurationDeviation:     deviation,
		TimingShiftHours:      shift,
		FeedbackRetentionDays: retention,
		ClassifyCacheSize:     cacheSize,
	}
}

// FeedbackRetention 以 time.Duration 返回反馈保留时长
func (c AppConfig) FeedbackRetention() time.Duration {
	return time.Duration(c.FeedbackRetentionDays) * 24 * time.Hour
}
