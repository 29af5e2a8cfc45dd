// Package wait holds the wait policy and readiness predicates the
// resolution engine polls with.
package wait

import (
	"time"

	"github.com/entrhq/anchor/pkg/driver"
)

const (
	// DefaultTimeout bounds a resolution attempt when no policy is
	// configured for the project, site or page.
	DefaultTimeout = 10 * time.Second

	// DefaultPollInterval is the sleep between resolution attempts.
	DefaultPollInterval = 200 * time.Millisecond
)

// Policy bounds a resolution loop: how long to keep trying, how long
// to sleep between attempts, and which driver failure kinds count as
// "not ready yet" rather than fatal.
type Policy struct {
	// Timeout is the total time allowed for one resolution.
	Timeout time.Duration

	// PollInterval is the sleep between attempts. Must be > 0 and
	// never larger than Timeout.
	PollInterval time.Duration

	// Ignore lists the failure kinds treated as retryable. Only
	// NotFound and Stale are sensible here; anything else masks a
	// real page state or a programmer error.
	Ignore []driver.FailureKind
}

// DefaultPolicy returns the stock policy: 10s timeout, 200ms poll,
// retrying on not-found and stale.
func DefaultPolicy() Policy {
	return Policy{
		Timeout:      DefaultTimeout,
		PollInterval: DefaultPollInterval,
		Ignore:       []driver.FailureKind{driver.NotFound, driver.Stale},
	}
}

// IsZero reports whether the policy is entirely unset.
func (p Policy) IsZero() bool {
	return p.Timeout == 0 && p.PollInterval == 0 && p.Ignore == nil
}

// Normalize fills zero fields from the defaults and restores the
// pollInterval > 0, timeout >= pollInterval invariants.
func (p Policy) Normalize() Policy {
	if p.Timeout <= 0 {
		p.Timeout = DefaultTimeout
	}
	if p.PollInterval <= 0 {
		p.PollInterval = DefaultPollInterval
	}
	if p.Timeout < p.PollInterval {
		p.Timeout = p.PollInterval
	}
	if p.Ignore == nil {
		p.Ignore = []driver.FailureKind{driver.NotFound, driver.Stale}
	}
	return p
}

// Ignores reports whether the policy treats the failure kind as
// retryable.
func (p Policy) Ignores(kind driver.FailureKind) bool {
	for _, k := range p.Ignore {
		if k == kind {
			return true
		}
	}
	return false
}
