package resolve

import (
	"fmt"
	"time"

	"github.com/entrhq/anchor/pkg/locator"
)

// TimeoutError reports that no ready result was produced within the
// policy timeout. It carries the locator, the elapsed time and the
// last observed failure so the miss can be diagnosed without
// re-running the test.
type TimeoutError struct {
	Locator     locator.Locator
	Elapsed     time.Duration
	Timeout     time.Duration
	LastFailure error
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("resolution of %s timed out after %s (timeout %s)",
		e.Locator, e.Elapsed.Round(time.Millisecond), e.Timeout)
	if e.LastFailure != nil {
		msg = fmt.Sprintf("%s: last failure: %v", msg, e.LastFailure)
	}
	return msg
}

// Unwrap exposes the last observed failure.
func (e *TimeoutError) Unwrap() error { return e.LastFailure }
