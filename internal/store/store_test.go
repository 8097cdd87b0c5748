package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"organizer-api/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "data", "organizer.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func record(name string) models.MoveRecord {
	return models.MoveRecord{Name: name, Kind: models.KindFile, Category: "Docs", Timestamp: time.Now()}
}

func TestRecordExecution_HistoryNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.RecordExecution(ctx, []models.MoveRecord{record("a"), record("b")}, 0, time.Now()); err != nil {
		t.Fatalf("RecordExecution: %v", err)
	}
	if _, err := s.RecordExecution(ctx, []models.MoveRecord{record("c"), record("d")}, 0, time.Now()); err != nil {
		t.Fatalf("RecordExecution: %v", err)
	}

	hist, err := s.History(ctx, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	want := []string{"c", "d", "a", "b"}
	if len(hist) != len(want) {
		t.Fatalf("history has %d records, want %d", len(hist), len(want))
	}
	for i, n := range want {
		if hist[i].Name != n {
			t.Errorf("history[%d] = %q, want %q", i, hist[i].Name, n)
		}
	}
}

func TestRecordExecution_HistoryBounded(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 150; i++ {
		if _, err := s.RecordExecution(ctx, []models.MoveRecord{record(fmt.Sprintf("f%03d", i))}, 1, time.Now()); err != nil {
			t.Fatalf("RecordExecution %d: %v", i, err)
		}
	}

	hist, err := s.History(ctx, 0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(hist) != models.MaxHistoryRecords {
		t.Fatalf("history has %d records, want %d", len(hist), models.MaxHistoryRecords)
	}
	if hist[0].Name != "f149" || hist[99].Name != "f050" {
		t.Errorf("history spans %q..%q, want f149..f050", hist[0].Name, hist[99].Name)
	}

	snap, err := s.Metrics(ctx)
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	if len(snap.History) != models.MaxMetricsPoints {
		t.Errorf("metrics points = %d, want %d", len(snap.History), models.MaxMetricsPoints)
	}
	if snap.TotalFiles != 150 || snap.TotalTimeSaved != 750 {
		t.Errorf("totals = %+v", snap)
	}
	last := snap.History[len(snap.History)-1]
	if last.TotalFiles != 150 || last.TotalBytes != 150 {
		t.Errorf("last point = %+v", last)
	}
}

func TestRecordExecution_MetricsAccumulate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var snap models.MetricsSnapshot
	var err error
	for _, b := range []int64{10, 20, 30} {
		snap, err = s.RecordExecution(ctx, []models.MoveRecord{record("x")}, b, time.Now())
		if err != nil {
			t.Fatalf("RecordExecution: %v", err)
		}
	}

	if snap.TotalBytes != 60 || snap.TotalFiles != 3 || snap.TotalTimeSaved != 15 {
		t.Errorf("totals = files %d bytes %d saved %d", snap.TotalFiles, snap.TotalBytes, snap.TotalTimeSaved)
	}
	if len(snap.History) != 3 {
		t.Fatalf("points = %d, want 3", len(snap.History))
	}
	wantTotals := []int64{10, 30, 60}
	for i, p := range snap.History {
		if p.TotalBytes != wantTotals[i] {
			t.Errorf("point %d totalBytes = %d, want %d", i, p.TotalBytes, wantTotals[i])
		}
	}
}

func TestRecordExecution_ConcurrentIncrements(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.RecordExecution(ctx, []models.MoveRecord{record("x"), record("y")}, 5, time.Now()); err != nil {
				t.Errorf("RecordExecution: %v", err)
			}
		}()
	}
	wg.Wait()

	snap, err := s.Metrics(ctx)
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	if snap.TotalFiles != 20 || snap.TotalBytes != 50 {
		t.Errorf("totals = files %d bytes %d, want 20 and 50", snap.TotalFiles, snap.TotalBytes)
	}
}

func TestMetrics_EmptyStore(t *testing.T) {
	s := openTestStore(t)
	snap, err := s.Metrics(context.Background())
	if err != nil {
		t.Fatalf("Metrics: %v", err)
	}
	if snap.TotalFiles != 0 || snap.History == nil || len(snap.History) != 0 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestSettings_SetGetAll(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, models.SettingAPIKey); err != nil || ok {
		t.Fatalf("Get on empty store: ok=%v err=%v", ok, err)
	}

	for k, v := range map[string]string{
		models.SettingAPIKey:    "sk-1",
		models.SettingProvider:  "custom",
		models.SettingDebugMode: "true",
	} {
		if err := s.Set(ctx, k, v); err != nil {
			t.Fatalf("Set %s: %v", k, err)
		}
	}
	if err := s.Set(ctx, models.SettingAPIKey, "sk-2"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}

	v, ok, err := s.Get(ctx, models.SettingAPIKey)
	if err != nil || !ok || v != "sk-2" {
		t.Errorf("Get apiKey = %q, %v, %v", v, ok, err)
	}

	all, err := s.All(ctx)
	if err != nil || len(all) != 3 {
		t.Errorf("All = %v, %v", all, err)
	}

	settings, err := s.LoadSettings(ctx)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if settings.APIKey != "sk-2" || settings.Provider != "custom" || !settings.DebugMode {
		t.Errorf("settings = %+v", settings)
	}
}
