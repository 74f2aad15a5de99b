package db

import "time"

// FeedbackRecord 记录用户手动修正的分类
// Text 为归一化后的活动文本
type FeedbackRecord struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Text      string    `gorm:"index;size:255;not null"`
	Category  string    `gorm:"size:64;not null"`
	CreatedAt time.Time `gorm:"index"`
}

// LearnedKeyword 保存关键词与分类的绑定及强化次数
type LearnedKeyword struct {
	Keyword   string    `gorm:"primaryKey;size:128"`
	Category  string    `gorm:"size:64;not null"`
	Frequency int       `gorm:"not null;default:1"`
	LastUsed  time.Time `gorm:"index"`
}
