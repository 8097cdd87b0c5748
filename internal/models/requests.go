package models

// ScanRequest represents a folder scan request
type ScanRequest struct {
	Path string `json:"path" validate:"required"`
}

// AnalyzeRequest asks for a categorization plan of previously scanned items
type AnalyzeRequest struct {
	Path  string           `json:"path" validate:"required"`
	Items []DirectoryEntry `json:"items" validate:"dive"`
}

// ExecuteRequest applies a plan under Path. The plan is not validated here;
// the executor skips invalid entries item by item.
type ExecuteRequest struct {
	Path        string `json:"path" validate:"required"`
	Plan        Plan   `json:"plan" validate:"-"`
	OperationID string `json:"operation_id" validate:"omitempty,max=64"`
}

// MoveItemRequest mirrors a drag-and-drop edit in the plan editor
type MoveItemRequest struct {
	Plan Plan   `json:"plan"`
	Item string `json:"item" validate:"required,entry_name"`
	From string `json:"from" validate:"required,category_name"`
	To   string `json:"to" validate:"required,category_name"`
}

// PlanSummaryRequest represents a plan summary request
type PlanSummaryRequest struct {
	Plan Plan `json:"plan" validate:"-"`
}

// AnalyzeResponse is the analyze payload; Debug is only set in debug mode.
type AnalyzeResponse struct {
	Plan  Plan `json:"plan"`
	Debug any  `json:"debug,omitempty"`
}
