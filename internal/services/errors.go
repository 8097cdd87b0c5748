package services

import "errors"

var (
	ErrNotFound      = errors.New("file or folder not found")
	ErrAlreadyExists = errors.New("file or folder already exists")
	ErrNotAFolder    = errors.New("path is not a folder")
	ErrSSHConnection = errors.New("SSH connection failed")

	// ErrScan is returned when the root folder of a scan cannot be listed.
	ErrScan = errors.New("scan failed")
	// ErrConfig means the categorization settings are incomplete.
	ErrConfig = errors.New("categorization is not configured")
	// ErrUpstream wraps transport and service failures of the model call.
	ErrUpstream = errors.New("categorization service failed")
	// ErrParse means the model reply was not a usable plan.
	ErrParse = errors.New("categorization response could not be parsed")
)

// ParseError carries the raw model reply that failed to parse.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return ErrParse.Error() + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}
