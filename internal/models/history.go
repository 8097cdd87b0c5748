package models

import "time"

// MoveRecord is one successful move, kept in the organization history
type MoveRecord struct {
	Name      string    `json:"name"`
	Kind      EntryKind `json:"type"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
}

// MetricsPoint is appended once per execution with the running totals
type MetricsPoint struct {
	Timestamp  time.Time `json:"timestamp"`
	Files      int64     `json:"files"`
	Bytes      int64     `json:"bytes"`
	TotalFiles int64     `json:"totalFiles"`
	TotalBytes int64     `json:"totalBytes"`
}

// MetricsSnapshot holds cumulative usage numbers
type MetricsSnapshot struct {
	TotalFiles     int64          `json:"totalFiles"`
	TotalBytes     int64          `json:"totalBytes"`
	TotalTimeSaved int64          `json:"totalTimeSaved"`
	History        []MetricsPoint `json:"history"`
}

const (
	MaxHistoryRecords = 100
	MaxMetricsPoints  = 50
	// SecondsSavedPerItem is the manual effort credited for each moved item.
	SecondsSavedPerItem = 5
)
