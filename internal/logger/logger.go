// Package logger 构造服务使用的 zerolog 结构化日志
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Config 描述日志级别与输出格式
type Config struct {
	Level  string // debug/info/warn/error，默认 info
	Format string // console 或 json，默认 json
	Out    io.Writer
}

// New 根据配置创建根 logger，附带时间戳与 app 字段
func New(cfg Config) zerolog.Logger {
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}
	if strings.EqualFold(strings.TrimSpace(cfg.Format), "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	return zerolog.New(out).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("app", "chronolog").
		Logger()
}

// ParseLevel 将字符串转换为 zerolog 级别，无法识别时返回 info
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// ForComponent 返回带 component 字段的子 logger
func ForComponent(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}
