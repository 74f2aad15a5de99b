package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultPath 为未配置数据库路径时使用的文件
const DefaultPath = "chronolog.db"

// Init 打开 SQLite 数据库并执行自动迁移。
// databasePath 为空时回退到 DefaultPath，父目录不存在时自动创建。
func Init(databasePath string) (*gorm.DB, error) {
	path := strings.TrimSpace(databasePath)
	if path == "" {
		path = DefaultPath
	}

	if err := ensureParentDir(path); err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := Migrate(gdb); err != nil {
		return nil, err
	}
	return gdb, nil
}

// Migrate 为全部模型创建或更新表结构
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(
		&ActivityEntry{},
		&LogState{},
		&FeedbackRecord{},
		&LearnedKeyword{},
	); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

func ensureParentDir(path string) error {
	if strings.HasPrefix(path, "file:") {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
