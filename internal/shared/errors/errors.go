package errors

import "errors"

// Domain errors
var (
	// Target validation errors
	ErrEmptyTarget   = errors.New("target cannot be empty")
	ErrInvalidTarget = errors.New("invalid target URL")

	// Scan errors
	ErrUnknownScanType = errors.New("unknown scan type")
	ErrNetwork         = errors.New("network request failed")

	// Monitor errors
	ErrNoTargets = errors.New("at least one target is required")

	// Report errors
	ErrReportNotFound = errors.New("report not found")
)
