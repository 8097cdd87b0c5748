package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"organizer-api/internal/logging"
	"organizer-api/internal/models"
	"organizer-api/internal/utils"
)

// Repository is the persisted state the organizer reads and updates.
type Repository interface {
	LoadSettings(ctx context.Context) (models.Settings, error)
	History(ctx context.Context, limit int) ([]models.MoveRecord, error)
	Metrics(ctx context.Context) (models.MetricsSnapshot, error)
	RecordExecution(ctx context.Context, records []models.MoveRecord, bytes int64, now time.Time) (models.MetricsSnapshot, error)
}

// ExecutionReport is what ExecuteOrganization returns
type ExecutionReport struct {
	OperationID string `json:"operationId"`
	*ApplyResult
	Metrics *models.MetricsSnapshot `json:"metrics,omitempty"`
}

// OrganizerService implements scan, analyze and execute on top of the
// scanner, plan and executor services.
type OrganizerService struct {
	repo     Repository
	plans    *PlanService
	budget   models.ScanBudget
	markers  []string
	progress *models.ProgressStore
	now      func() time.Time
}

// NewOrganizerService creates the facade. progress may be nil.
func NewOrganizerService(repo Repository, plans *PlanService, budget models.ScanBudget, markers []string, progress *models.ProgressStore) *OrganizerService {
	return &OrganizerService{
		repo:     repo,
		plans:    plans,
		budget:   budget,
		markers:  markers,
		progress: progress,
		now:      time.Now,
	}
}

func (s *OrganizerService) resolveRoot(fs FileSystem, path string) (string, error) {
	if fs.IsRemote() {
		if path == "" {
			return "", utils.ErrInvalidPath
		}
		return fs.Clean(path), nil
	}
	return utils.ResolveRoot(path)
}

// ScanFolder lists path and summarizes its sub-folders.
func (s *OrganizerService) ScanFolder(ctx context.Context, fs FileSystem, path string) ([]models.DirectoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	root, err := s.resolveRoot(fs, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScan, err)
	}
	return NewScannerService(fs, s.budget, s.markers).Scan(root)
}

// AnalyzeFolder asks the model to categorize items using the stored
// settings and recent history.
func (s *OrganizerService) AnalyzeFolder(ctx context.Context, path string, items []models.DirectoryEntry) (*AnalyzeResult, error) {
	settings, err := s.repo.LoadSettings(ctx)
	if err != nil {
		return nil, err
	}
	history, err := s.repo.History(ctx, maxPromptHistory)
	if err != nil {
		return nil, err
	}

	logging.Logger().Info().
		Str("path", path).
		Int("items", len(items)).
		Str("provider", settings.Provider).
		Msg("analyzing folder")

	return s.plans.BuildPlan(ctx, items, settings, history)
}

// ExecuteOrganization applies plan under path and records the outcome.
// An execution is never interrupted once started; ctx only bounds the
// bookkeeping that follows. A plan without items changes nothing.
func (s *OrganizerService) ExecuteOrganization(ctx context.Context, fs FileSystem, path string, plan models.Plan, opID string) (*ExecutionReport, error) {
	root, err := s.resolveRoot(fs, path)
	if err != nil {
		return nil, err
	}
	if opID == "" {
		opID = uuid.New().String()
	}

	report := &ExecutionReport{OperationID: opID}
	total := plan.TotalItems()

	if s.progress != nil {
		s.progress.Set(opID, &models.Progress{
			ID:         opID,
			Path:       root,
			TotalItems: total,
			Status:     models.StatusPending,
		})
	}

	if total == 0 {
		report.ApplyResult = &ApplyResult{Success: true, Moved: []models.MoveRecord{}, Outcomes: []ItemOutcome{}}
		s.finish(opID, "")
		return report, nil
	}

	executor := NewExecutorService(fs)
	var onProgress ProgressFunc
	if s.progress != nil {
		onProgress = func(o ItemOutcome) {
			s.progress.Advance(opID, o.Name, o.Status == OutcomeMoved)
		}
		executor.WithCopyProgress(func(item string, written, total int64) {
			s.progress.Transfer(opID, item, written, total)
		})
	}

	start := time.Now()
	report.ApplyResult = executor.Apply(root, plan, onProgress)

	logging.Logger().Info().
		Str("operation_id", opID).
		Str("root", root).
		Int("items", total).
		Int("moved", len(report.Moved)).
		Int64("bytes", report.BytesMoved).
		Dur("took", time.Since(start)).
		Msg("plan applied")

	snap, err := s.repo.RecordExecution(context.WithoutCancel(ctx), report.Moved, report.BytesMoved, s.now())
	if err != nil {
		s.finish(opID, err.Error())
		return report, fmt.Errorf("record execution: %w", err)
	}
	report.Metrics = &snap
	s.finish(opID, "")
	return report, nil
}

func (s *OrganizerService) finish(opID, errMsg string) {
	if s.progress != nil {
		s.progress.Finish(opID, errMsg)
	}
}

func (s *OrganizerService) GetMetrics(ctx context.Context) (models.MetricsSnapshot, error) {
	return s.repo.Metrics(ctx)
}

// GetHistory returns up to limit records, newest first.
func (s *OrganizerService) GetHistory(ctx context.Context, limit int) ([]models.MoveRecord, error) {
	return s.repo.History(ctx, limit)
}
