package errors

import "fmt"

// ParseError wraps a specific error with context about where it occurred.
type ParseError struct {
	Line   int
	Record []string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d: %v (record: %v)", e.Line, e.Err, e.Record)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Errors returned while reading history files.
var (
	ErrInvalidFieldCount  = fmt.Errorf("invalid field count")
	ErrInvalidTimestamp   = fmt.Errorf("invalid timestamp")
	ErrInvalidHandleTime  = fmt.Errorf("invalid handle time")
	ErrInvalidConcurrency = fmt.Errorf("invalid concurrency")
	ErrEmptyRecord        = fmt.Errorf("empty record")
)

// Input errors rejected before any rule or forecast step runs.
var (
	ErrMissingDateRange     = fmt.Errorf("missing date range")
	ErrInvalidDateRange     = fmt.Errorf("invalid date range")
	ErrInvalidShift         = fmt.Errorf("invalid shift")
	ErrInvalidForecastStart = fmt.Errorf("invalid forecast start")
	ErrInvalidSlotMinutes   = fmt.Errorf("invalid slot minutes")
	ErrInvalidHorizon       = fmt.Errorf("invalid horizon")
	ErrUnknownMethod        = fmt.Errorf("unknown staffing method")
	ErrInvalidServiceTarget = fmt.Errorf("invalid service target")
)
