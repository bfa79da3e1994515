package models

import "fmt"

// Error codes used in log output and internal error handling.
const (
	ErrCodeTimeout      = "RENDER_TIMEOUT"
	ErrCodeNavigation   = "NAVIGATION_FAILED"
	ErrCodeBrowserCrash = "BROWSER_CRASH"
	ErrCodeConfig       = "CONFIG_INVALID"
	ErrCodeWeakMatch    = "WEAK_MATCH"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// TrackError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type TrackError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *TrackError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *TrackError) Unwrap() error {
	return e.Err
}

// NewTrackError creates a new TrackError.
func NewTrackError(code, message string, err error) *TrackError {
	return &TrackError{Code: code, Message: message, Err: err}
}
