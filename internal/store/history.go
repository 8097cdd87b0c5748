package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"organizer-api/internal/models"
)

const totalsID = 1

// RecordExecution stores the outcome of one plan execution in a single
// transaction: records are prepended to history (trimmed to 100), totals
// grow by the moved count and bytes, and one metrics point is appended
// (trimmed to 50).
func (s *Store) RecordExecution(ctx context.Context, records []models.MoveRecord, bytes int64, now time.Time) (models.MetricsSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(len(records))
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// newest first is id descending, so the first record gets the highest id
		for i := len(records) - 1; i >= 0; i-- {
			r := records[i]
			row := historyRow{Name: r.Name, Kind: string(r.Kind), Category: r.Category, Timestamp: r.Timestamp}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("insert history: %w", err)
			}
		}
		if err := trimTable(tx, "move_history", models.MaxHistoryRecords); err != nil {
			return err
		}

		totals := totalsRow{ID: totalsID}
		if err := tx.FirstOrCreate(&totals, totalsRow{ID: totalsID}).Error; err != nil {
			return fmt.Errorf("load totals: %w", err)
		}
		totals.TotalFiles += n
		totals.TotalBytes += bytes
		totals.TotalTimeSaved += n * models.SecondsSavedPerItem
		if err := tx.Save(&totals).Error; err != nil {
			return fmt.Errorf("save totals: %w", err)
		}

		point := pointRow{
			Timestamp:  now,
			Files:      n,
			Bytes:      bytes,
			TotalFiles: totals.TotalFiles,
			TotalBytes: totals.TotalBytes,
		}
		if err := tx.Create(&point).Error; err != nil {
			return fmt.Errorf("insert metrics point: %w", err)
		}
		return trimTable(tx, "metrics_points", models.MaxMetricsPoints)
	})
	if err != nil {
		return models.MetricsSnapshot{}, err
	}

	return s.metrics(ctx)
}

// trimTable keeps the keep rows with the highest ids.
func trimTable(tx *gorm.DB, table string, keep int) error {
	err := tx.Exec(
		"DELETE FROM "+table+" WHERE id NOT IN (SELECT id FROM "+table+" ORDER BY id DESC LIMIT ?)",
		keep,
	).Error
	if err != nil {
		return fmt.Errorf("trim %s: %w", table, err)
	}
	return nil
}

// History returns up to limit records, newest first. A non-positive
// limit returns the whole retained history.
func (s *Store) History(ctx context.Context, limit int) ([]models.MoveRecord, error) {
	if limit <= 0 || limit > models.MaxHistoryRecords {
		limit = models.MaxHistoryRecords
	}

	var rows []historyRow
	if err := s.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	out := make([]models.MoveRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.MoveRecord{
			Name:      r.Name,
			Kind:      models.ParseEntryKind(r.Kind),
			Category:  r.Category,
			Timestamp: r.Timestamp,
		})
	}
	return out, nil
}

// Metrics returns the cumulative snapshot; zero when nothing was recorded.
func (s *Store) Metrics(ctx context.Context) (models.MetricsSnapshot, error) {
	return s.metrics(ctx)
}

func (s *Store) metrics(ctx context.Context) (models.MetricsSnapshot, error) {
	snap := models.MetricsSnapshot{History: []models.MetricsPoint{}}
	db := s.db.WithContext(ctx)

	var totals []totalsRow
	if err := db.Where("id = ?", totalsID).Limit(1).Find(&totals).Error; err != nil {
		return snap, fmt.Errorf("load totals: %w", err)
	}
	if len(totals) == 1 {
		snap.TotalFiles = totals[0].TotalFiles
		snap.TotalBytes = totals[0].TotalBytes
		snap.TotalTimeSaved = totals[0].TotalTimeSaved
	}

	var points []pointRow
	if err := db.Order("id ASC").Find(&points).Error; err != nil {
		return snap, fmt.Errorf("load metrics points: %w", err)
	}
	for _, p := range points {
		snap.History = append(snap.History, models.MetricsPoint{
			Timestamp:  p.Timestamp,
			Files:      p.Files,
			Bytes:      p.Bytes,
			TotalFiles: p.TotalFiles,
			TotalBytes: p.TotalBytes,
		})
	}
	return snap, nil
}
