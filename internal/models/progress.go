package models

import "sync"

// ProgressStatus represents the status of an execution
type ProgressStatus string

const (
	StatusPending    ProgressStatus = "pending"
	StatusProcessing ProgressStatus = "processing"
	StatusCompleted  ProgressStatus = "completed"
	StatusFailed     ProgressStatus = "failed"
)

// Progress represents progress of a plan execution
type Progress struct {
	ID             string         `json:"id"`
	Path           string         `json:"path,omitempty"`
	Progress       int            `json:"progress"`
	ProcessedItems int            `json:"processed_items"`
	TotalItems     int            `json:"total_items"`
	CurrentItem    string         `json:"current_item,omitempty"`
	BytesCopied    int64          `json:"bytes_copied,omitempty"`
	BytesTotal     int64          `json:"bytes_total,omitempty"`
	Moved          int            `json:"moved"`
	Skipped        int            `json:"skipped"`
	Status         ProgressStatus `json:"status"`
	Error          string         `json:"error,omitempty"`
}

// ProgressStore stores progress information in memory
type ProgressStore struct {
	mu   sync.RWMutex
	data map[string]*Progress
}

// NewProgressStore creates a new progress store
func NewProgressStore() *ProgressStore {
	return &ProgressStore{
		data: make(map[string]*Progress),
	}
}

// Set stores progress for an operation
func (ps *ProgressStore) Set(id string, progress *Progress) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.data[id] = progress
}

// Get returns a copy of the progress for an operation
func (ps *ProgressStore) Get(id string) (Progress, bool) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	p, ok := ps.data[id]
	if !ok {
		return Progress{}, false
	}
	return *p, true
}

// Delete removes progress for an operation
func (ps *ProgressStore) Delete(id string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	delete(ps.data, id)
}

// Advance records one processed item and recalculates the percentage
func (ps *ProgressStore) Advance(id, item string, moved bool) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	p, ok := ps.data[id]
	if !ok {
		return
	}
	p.ProcessedItems++
	p.CurrentItem = item
	p.BytesCopied, p.BytesTotal = 0, 0
	if moved {
		p.Moved++
	} else {
		p.Skipped++
	}
	p.Status = StatusProcessing
	if p.TotalItems > 0 {
		p.Progress = p.ProcessedItems * 100 / p.TotalItems
	}
}

// Transfer records byte progress of an item that is being copied
func (ps *ProgressStore) Transfer(id, item string, written, total int64) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	p, ok := ps.data[id]
	if !ok {
		return
	}
	p.CurrentItem = item
	p.BytesCopied = written
	p.BytesTotal = total
	p.Status = StatusProcessing
}

// Finish marks the operation completed, or failed when errMsg is not empty
func (ps *ProgressStore) Finish(id, errMsg string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	p, ok := ps.data[id]
	if !ok {
		return
	}
	p.CurrentItem = ""
	p.BytesCopied, p.BytesTotal = 0, 0
	if errMsg != "" {
		p.Status = StatusFailed
		p.Error = errMsg
		return
	}
	p.Status = StatusCompleted
	p.Progress = 100
}
