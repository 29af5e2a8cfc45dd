package driver

import (
	"errors"
	"fmt"

	"github.com/entrhq/anchor/pkg/locator"
)

// FailureKind is the closed set of failures a driver may report.
// NotFound and Stale are transient and may be retried by a wait
// policy; NotInteractable and ClickIntercepted describe real page
// state and always propagate.
type FailureKind int

const (
	NotFound FailureKind = iota + 1
	Stale
	NotInteractable
	ClickIntercepted
)

// String implements fmt.Stringer.
func (k FailureKind) String() string {
	switch k {
	case NotFound:
		return "element not found"
	case Stale:
		return "stale element"
	case NotInteractable:
		return "element not interactable"
	case ClickIntercepted:
		return "click intercepted"
	default:
		return fmt.Sprintf("unknown failure kind %d", int(k))
	}
}

// Failure is a driver error classified into the closed kind set.
// Locator is the zero value when the failure is not lookup-related
// (e.g. a click on an already-held handle).
type Failure struct {
	Kind    FailureKind
	Locator locator.Locator
	Err     error
}

// NewFailure builds a classified driver failure.
func NewFailure(kind FailureKind, loc locator.Locator, err error) *Failure {
	return &Failure{Kind: kind, Locator: loc, Err: err}
}

// Error implements the error interface.
func (f *Failure) Error() string {
	msg := f.Kind.String()
	if !f.Locator.IsZero() {
		msg = fmt.Sprintf("%s: %s", msg, f.Locator)
	}
	if f.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, f.Err)
	}
	return msg
}

// Unwrap exposes the raw driver error for errors.Is/As chains.
func (f *Failure) Unwrap() error { return f.Err }

// KindOf extracts the failure kind from an error chain.
func KindOf(err error) (FailureKind, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind, true
	}
	return 0, false
}

// IsNotFound reports whether err is a NotFound driver failure.
func IsNotFound(err error) bool {
	k, ok := KindOf(err)
	return ok && k == NotFound
}

// IsStale reports whether err is a Stale driver failure.
func IsStale(err error) bool {
	k, ok := KindOf(err)
	return ok && k == Stale
}
