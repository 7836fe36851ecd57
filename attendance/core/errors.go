package core

import (
	"errors"
	"fmt"
)

// ErrorCode classifies failures for programmatic consumers of the sync API.
type ErrorCode string

const (
	CodeConfig     ErrorCode = "CONFIG"
	CodeUpstream   ErrorCode = "UPSTREAM"
	CodeValidation ErrorCode = "VALIDATION"
	CodePartial    ErrorCode = "PARTIAL"
)

type SyncError struct {
	Code ErrorCode
	Err  error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

func NewSyncError(code ErrorCode, format string, args ...any) *SyncError {
	return &SyncError{Code: code, Err: fmt.Errorf(format, args...)}
}

// CodeOf extracts the ErrorCode carried by err, defaulting to UPSTREAM for
// errors that did not come through a SyncError.
func CodeOf(err error) ErrorCode {
	var se *SyncError
	if errors.As(err, &se) {
		return se.Code
	}
	return CodeUpstream
}
