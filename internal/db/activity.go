package db

import "time"

// ActivityEntry 对应活动日志中的一条记录
// 结束时间不落库，读取时由下一条记录的开始时间推导
// Lat/Long 同时为空表示没有位置信息
type ActivityEntry struct {
	ID        uint   `gorm:"primaryKey"`
	StartTime int64  `gorm:"uniqueIndex;not null"`
	Activity  string `gorm:"size:255;not null"`
	Note      string `gorm:"size:1024"`
	Lat       *float64
	Long      *float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LogStateID 是 LogState 唯一一行的主键
const LogStateID = 1

// LogState 保存当前进行中活动的开始时间，只有一行
type LogState struct {
	ID                       uint `gorm:"primaryKey"`
	CurrentActivityStartTime int64
	UpdatedAt                time.Time
}
