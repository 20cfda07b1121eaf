package cdpcontrol

import "fmt"

const (
	CodeValidation      = "VALIDATION"
	CodeCDPUnavailable  = "CDP_UNAVAILABLE"
	CodeSessionLost     = "SESSION_LOST"
	CodePageLoadTimeout = "PAGE_LOAD_TIMEOUT"
	CodeCaptureFailure  = "CAPTURE_FAILURE"
	CodeTargetNotFound  = "TARGET_NOT_FOUND"
	CodeRunNotFound     = "RUN_NOT_FOUND"
	CodeBusy            = "BUSY"
)

// CodedError is a typed error used to separate fatal session failures from
// recoverable per-slide failures.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *CodedError) Unwrap() error { return e.Cause }

func newError(code, msg string, cause error) error {
	return &CodedError{Code: code, Message: msg, Cause: cause}
}
