package db

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityRecord 记录一次运动/喝水/睡眠
// Value 的单位随 Type 变化：Exercise=kcal，Hydration=ml，Sleep=小时
// Date 用于按天分桶与区间筛选；睡眠记录的 Date 等于 StartTime
// StartTime/EndTime 仅 Exercise 与 Sleep 使用，Hydration 为空
type ActivityRecord struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    uint      `gorm:"index:idx_activity_user_date;not null"`
	User      User      `gorm:"constraint:OnDelete:CASCADE"`
	Type      string    `gorm:"size:20;index;not null"`
	Title     string    `gorm:"not null"`
	Value     float64   `gorm:"not null"`
	Date      time.Time `gorm:"index:idx_activity_user_date"`
	StartTime *time.Time
	EndTime   *time.Time
	Notes     string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 固定表名
func (ActivityRecord) TableName() string {
	return "activity_records"
}

// BeforeCreate 在插入前生成 UUID 主键
func (r *ActivityRecord) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Goal 描述某一活动类型在日期窗口内的目标值
// EndDate 在创建时归一到所选日期的 23:59:59
type Goal struct {
	ID          string    `gorm:"primaryKey;size:36"`
	UserID      uint      `gorm:"index;not null"`
	User        User      `gorm:"constraint:OnDelete:CASCADE"`
	Type        string    `gorm:"size:20;index;not null"`
	TargetValue float64   `gorm:"not null"`
	StartDate   time.Time `gorm:"index"`
	EndDate     time.Time `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BeforeCreate 在插入前生成 UUID 主键
func (g *Goal) BeforeCreate(*gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}
