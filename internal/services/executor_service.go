package services

import (
	"errors"
	"time"

	"organizer-api/internal/logging"
	"organizer-api/internal/metrics"
	"organizer-api/internal/models"
	"organizer-api/internal/utils"
)

// SkipReason says why a plan item was not moved
type SkipReason string

const (
	SkipInvalidCategory   SkipReason = "invalid_category"
	SkipInvalidName       SkipReason = "invalid_name"
	SkipSameAsCategory    SkipReason = "same_as_category"
	SkipInsideSource      SkipReason = "inside_source"
	SkipMkdirFailed       SkipReason = "mkdir_failed"
	SkipMissingSource     SkipReason = "missing_source"
	SkipDestinationExists SkipReason = "destination_exists"
	SkipMoveFailed        SkipReason = "move_failed"
)

type OutcomeStatus string

const (
	OutcomeMoved   OutcomeStatus = "moved"
	OutcomeSkipped OutcomeStatus = "skipped"
)

// ItemOutcome is the result of one plan item
type ItemOutcome struct {
	Category string           `json:"category"`
	Name     string           `json:"name"`
	Kind     models.EntryKind `json:"type"`
	Status   OutcomeStatus    `json:"status"`
	Reason   SkipReason       `json:"reason,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// ApplyResult summarizes a plan execution. Individual failures never fail
// the execution as a whole.
type ApplyResult struct {
	Success    bool                `json:"success"`
	Moved      []models.MoveRecord `json:"moved"`
	Outcomes   []ItemOutcome       `json:"outcomes"`
	BytesMoved int64               `json:"bytesMoved"`
}

// ProgressFunc is called once per processed item
type ProgressFunc func(ItemOutcome)

// CopyFunc reports byte progress for an item that is being copied rather
// than renamed
type CopyFunc func(item string, written, total int64)

// ExecutorService moves plan items into category folders under a root
type ExecutorService struct {
	fs     FileSystem
	now    func() time.Time
	onCopy CopyFunc
}

func NewExecutorService(fs FileSystem) *ExecutorService {
	return &ExecutorService{fs: fs, now: time.Now}
}

// WithCopyProgress sets the callback for byte progress of copied items
func (e *ExecutorService) WithCopyProgress(fn CopyFunc) *ExecutorService {
	e.onCopy = fn
	return e
}

type pendingMove struct {
	item   models.PlanItem
	source string
	skip   SkipReason
}

// Apply executes plan under root, category by category in plan order.
// Items are never overwritten and a folder is never moved into itself.
func (e *ExecutorService) Apply(root string, plan models.Plan, onProgress ProgressFunc) *ApplyResult {
	root = e.fs.Clean(root)
	res := &ApplyResult{
		Success:  true,
		Moved:    []models.MoveRecord{},
		Outcomes: make([]ItemOutcome, 0, plan.TotalItems()),
	}

	report := func(o ItemOutcome) {
		res.Outcomes = append(res.Outcomes, o)
		if o.Status == OutcomeSkipped {
			metrics.RecordItemSkipped(string(o.Reason))
			logging.Logger().Debug().
				Str("category", o.Category).
				Str("item", o.Name).
				Str("reason", string(o.Reason)).
				Str("error", o.Error).
				Msg("item skipped")
		}
		if onProgress != nil {
			onProgress(o)
		}
	}
	skip := func(cat string, it models.PlanItem, reason SkipReason, err error) {
		o := ItemOutcome{Category: cat, Name: it.Name, Kind: it.Kind, Status: OutcomeSkipped, Reason: reason}
		if err != nil {
			o.Error = err.Error()
		}
		report(o)
	}

	for _, cat := range plan.Categories {
		if err := utils.ValidCategoryName(cat.Name); err != nil {
			for _, it := range cat.Items {
				skip(cat.Name, it, SkipInvalidCategory, err)
			}
			continue
		}

		destDir := e.fs.Join(append([]string{root}, utils.CategorySegments(cat.Name)...)...)

		pending := make([]pendingMove, 0, len(cat.Items))
		movable := 0
		for _, it := range cat.Items {
			p := pendingMove{item: it}
			switch {
			case utils.ValidEntryName(it.Name) != nil:
				p.skip = SkipInvalidName
			default:
				p.source = e.fs.Join(root, it.Name)
				if p.source == destDir {
					p.skip = SkipSameAsCategory
				} else if utils.HasPathPrefix(destDir, p.source, e.fs.Separator()) {
					p.skip = SkipInsideSource
				} else {
					movable++
				}
			}
			pending = append(pending, p)
		}

		if len(cat.Items) == 0 || movable > 0 {
			if err := e.fs.MkdirAll(destDir); err != nil {
				logging.Logger().Warn().Err(err).Str("dir", destDir).Msg("cannot create category folder")
				for _, p := range pending {
					reason := p.skip
					if reason == "" {
						reason = SkipMkdirFailed
					}
					skip(cat.Name, p.item, reason, err)
				}
				continue
			}
		}

		for _, p := range pending {
			if p.skip != "" {
				skip(cat.Name, p.item, p.skip, nil)
				continue
			}
			if _, err := e.fs.Lstat(p.source); err != nil {
				skip(cat.Name, p.item, SkipMissingSource, nil)
				continue
			}

			dest := e.fs.Join(destDir, p.item.Name)
			if err := e.fs.Move(p.source, dest, e.copyProgress(p.item.Name)); err != nil {
				reason := SkipMoveFailed
				if errors.Is(err, ErrAlreadyExists) {
					reason = SkipDestinationExists
				}
				skip(cat.Name, p.item, reason, err)
				continue
			}

			kind := p.item.Kind
			if kind != models.KindFolder {
				kind = models.KindFile
			}
			res.Moved = append(res.Moved, models.MoveRecord{
				Name:      p.item.Name,
				Kind:      kind,
				Category:  cat.Name,
				Timestamp: e.now(),
			})
			res.BytesMoved += e.fs.Size(dest)
			metrics.RecordItemMoved(string(kind))
			report(ItemOutcome{Category: cat.Name, Name: p.item.Name, Kind: kind, Status: OutcomeMoved})
		}
	}

	metrics.RecordBytesMoved(res.BytesMoved)
	return res
}

func (e *ExecutorService) copyProgress(item string) CopyProgressFunc {
	if e.onCopy == nil {
		return nil
	}
	return func(written, total int64) {
		e.onCopy(item, written, total)
	}
}
