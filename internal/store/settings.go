package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"organizer-api/internal/models"
)

// Get returns the value stored under key and whether it exists.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var rows []settingRow
	if err := s.db.WithContext(ctx).Where(&settingRow{Key: key}).Limit(1).Find(&rows).Error; err != nil {
		return "", false, fmt.Errorf("load setting %s: %w", key, err)
	}
	if len(rows) == 0 {
		return "", false, nil
	}
	return rows[0].Value, true, nil
}

// Set creates or replaces a setting.
func (s *Store) Set(ctx context.Context, key, value string) error {
	row := settingRow{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save setting %s: %w", key, err)
	}
	return nil
}

// All returns every stored setting.
func (s *Store) All(ctx context.Context) (map[string]string, error) {
	var rows []settingRow
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Value
	}
	return out, nil
}

// LoadSettings returns the typed settings view.
func (s *Store) LoadSettings(ctx context.Context) (models.Settings, error) {
	all, err := s.All(ctx)
	if err != nil {
		return models.Settings{}, err
	}
	return models.SettingsFromMap(all), nil
}
