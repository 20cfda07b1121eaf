package cdpcontrol

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestCodedErrorFormatting(t *testing.T) {
	base := errors.New("dial tcp: connection refused")
	err := newError(CodeCDPUnavailable, "connect to browser", base)

	var coded *CodedError
	if !errors.As(err, &coded) {
		t.Fatalf("newError() did not produce a *CodedError: %T", err)
	}
	if coded.Code != CodeCDPUnavailable {
		t.Fatalf("Code = %q; want %q", coded.Code, CodeCDPUnavailable)
	}
	if !errors.Is(err, base) {
		t.Fatalf("wrapped cause lost: %v", err)
	}

	want := "CDP_UNAVAILABLE: connect to browser: dial tcp: connection refused"
	if got := err.Error(); got != want {
		t.Fatalf("Error() = %q; want %q", got, want)
	}

	bare := newError(CodeValidation, "bad input", nil)
	if got, want := bare.Error(), "VALIDATION: bad input"; got != want {
		t.Fatalf("Error() = %q; want %q", got, want)
	}
}

func TestSessionErrClassification(t *testing.T) {
	s := &Session{}

	cases := []struct {
		cause    error
		wantCode string
	}{
		{errors.New("rawcdp: send: broken pipe"), CodeSessionLost},
		{errors.New("websocket: close 1006"), CodeSessionLost},
		{fmt.Errorf("read: %w", context.Canceled), CodeSessionLost},
		{errors.New("rawcdp: Page.navigate: Cannot navigate to invalid URL"), CodeCDPUnavailable},
	}

	for _, tc := range cases {
		err := s.sessionErr("op", tc.cause)
		var coded *CodedError
		if !errors.As(err, &coded) {
			t.Fatalf("sessionErr(%v) not coded: %T", tc.cause, err)
		}
		if coded.Code != tc.wantCode {
			t.Errorf("sessionErr(%v) code = %q; want %q", tc.cause, coded.Code, tc.wantCode)
		}
	}
}

func TestCaptureErrStaysRecoverable(t *testing.T) {
	s := &Session{}

	err := s.captureErr(errors.New("rawcdp: captureScreenshot: encoding failed"))
	var coded *CodedError
	if !errors.As(err, &coded) || coded.Code != CodeCaptureFailure {
		t.Fatalf("captureErr() = %v; want CAPTURE_FAILURE", err)
	}

	err = s.captureErr(errors.New("connection reset by peer"))
	if !errors.As(err, &coded) || coded.Code != CodeSessionLost {
		t.Fatalf("captureErr() = %v; want SESSION_LOST for dead connection", err)
	}
}
