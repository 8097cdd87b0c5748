package store

import "time"

type settingRow struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     string
	UpdatedAt time.Time
}

func (settingRow) TableName() string { return "settings" }

type historyRow struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"not null"`
	Kind      string `gorm:"size:16;not null"`
	Category  string `gorm:"not null"`
	Timestamp time.Time
}

func (historyRow) TableName() string { return "move_history" }

// totalsRow is a single row with ID 1
type totalsRow struct {
	ID             uint `gorm:"primaryKey"`
	TotalFiles     int64
	TotalBytes     int64
	TotalTimeSaved int64
}

func (totalsRow) TableName() string { return "metrics_totals" }

type pointRow struct {
	ID         uint `gorm:"primaryKey;autoIncrement"`
	Timestamp  time.Time
	Files      int64
	Bytes      int64
	TotalFiles int64
	TotalBytes int64
}

func (pointRow) TableName() string { return "metrics_points" }
