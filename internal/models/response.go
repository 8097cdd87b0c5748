package models

import "time"

// StandardResponse is the standard API response wrapper
type StandardResponse struct {
	Success   bool       `json:"success"`
	Message   string     `json:"message"`
	Data      any        `json:"data"`
	Error     *ErrorInfo `json:"error"`
	Timestamp time.Time  `json:"timestamp"`
}

// ErrorInfo contains error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Details string `json:"details"`
}

// Error codes returned in ErrorInfo.Code
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeScanError      = "SCAN_ERROR"
	CodeConfigError    = "CONFIG_ERROR"
	CodeUpstreamError  = "UPSTREAM_ERROR"
	CodeParseError     = "PARSE_ERROR"
	CodeSSHError       = "SSH_ERROR"
	CodeNotFound       = "NOT_FOUND"
	CodeInternalError  = "INTERNAL_ERROR"
)

// NewSuccessResponse creates a success response
func NewSuccessResponse(message string, data any) StandardResponse {
	return StandardResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(message string, code string, details string) StandardResponse {
	return StandardResponse{
		Success: false,
		Message: message,
		Error: &ErrorInfo{
			Code:    code,
			Details: details,
		},
		Timestamp: time.Now(),
	}
}

// HistoryPage wraps a slice of history records
type HistoryPage struct {
	Items []MoveRecord `json:"items"`
	Total int          `json:"total"`
	Limit int          `json:"limit"`
}
