// Package resolve implements the polling loop that turns a locator,
// a wait policy and a readiness predicate into a live element or
// element collection.
//
// The loop is a blocking spin-with-sleep on the calling goroutine; it
// never spawns workers and the only timing-sensitive aspect is the
// poll cadence. Driver calls are blocking I/O, so the sleep between
// attempts is a real sleep, not a cooperative yield.
package resolve

import (
	"fmt"
	"time"

	"github.com/entrhq/anchor/pkg/driver"
	"github.com/entrhq/anchor/pkg/locator"
	"github.com/entrhq/anchor/pkg/wait"
)

// state tags the outcome of one resolution attempt. "Not ready yet"
// is an explicit value, not an exception caught mid-flight.
type state int

const (
	ready state = iota
	notReady
	fatal
)

// outcome is the tagged result of a single attempt.
type outcome[T any] struct {
	state  state
	value  T
	reason error // why the attempt was not ready; kept for the timeout error
}

// One resolves a single element: it polls root.Find until the
// condition holds or the policy timeout expires. Failure kinds listed
// in the policy's ignore set count as not-ready; everything else is
// fatal and propagates immediately.
func One(root driver.SearchRoot, loc locator.Locator, policy wait.Policy, cond wait.Condition) (driver.Element, error) {
	if cond == nil {
		cond = wait.Present()
	}
	return poll(loc, policy, func(p wait.Policy) outcome[driver.Element] {
		return attemptOne(root, loc, p, cond)
	})
}

// All resolves an element collection. Readiness is judged over the
// whole collection at the moment of each check; membership may change
// freely between polls.
func All(root driver.SearchRoot, loc locator.Locator, policy wait.Policy, cond wait.ListCondition) ([]driver.Element, error) {
	if cond == nil {
		cond = wait.NonEmpty()
	}
	return poll(loc, policy, func(p wait.Policy) outcome[[]driver.Element] {
		return attemptAll(root, loc, p, cond)
	})
}

// poll drives the attempt function until it reports ready, a fatal
// error, or the deadline passes.
func poll[T any](loc locator.Locator, policy wait.Policy, attempt func(wait.Policy) outcome[T]) (T, error) {
	var zero T
	if err := loc.Validate(); err != nil {
		return zero, err
	}
	policy = policy.Normalize()

	start := time.Now()
	deadline := start.Add(policy.Timeout)
	var lastReason error

	for {
		out := attempt(policy)
		switch out.state {
		case ready:
			return out.value, nil
		case fatal:
			return zero, out.reason
		case notReady:
			lastReason = out.reason
		}

		// The deadline check follows the attempt so the error is
		// only raised at >= timeout and strictly before
		// timeout + pollInterval.
		if !time.Now().Before(deadline) {
			return zero, &TimeoutError{
				Locator:     loc,
				Elapsed:     time.Since(start),
				Timeout:     policy.Timeout,
				LastFailure: lastReason,
			}
		}
		time.Sleep(policy.PollInterval)
	}
}

func attemptOne(root driver.SearchRoot, loc locator.Locator, policy wait.Policy, cond wait.Condition) outcome[driver.Element] {
	el, err := root.Find(loc)
	if err != nil {
		return classify[driver.Element](policy, err)
	}

	ok, err := cond(el)
	if err != nil {
		return classify[driver.Element](policy, err)
	}
	if !ok {
		return outcome[driver.Element]{state: notReady, reason: fmt.Errorf("condition not met for %s", loc)}
	}
	return outcome[driver.Element]{state: ready, value: el}
}

func attemptAll(root driver.SearchRoot, loc locator.Locator, policy wait.Policy, cond wait.ListCondition) outcome[[]driver.Element] {
	els, err := root.FindAll(loc)
	if err != nil {
		return classify[[]driver.Element](policy, err)
	}

	ok, err := cond(els)
	if err != nil {
		return classify[[]driver.Element](policy, err)
	}
	if !ok {
		return outcome[[]driver.Element]{state: notReady, reason: fmt.Errorf("collection condition not met for %s (%d elements)", loc, len(els))}
	}
	return outcome[[]driver.Element]{state: ready, value: els}
}

// classify maps a driver failure onto the tagged outcome: ignorable
// kinds are not-ready, everything else is fatal. Unclassified errors
// (anything outside the driver's closed failure set) are always
// fatal so programmer errors are never masked by the retry loop.
func classify[T any](policy wait.Policy, err error) outcome[T] {
	if kind, ok := driver.KindOf(err); ok && policy.Ignores(kind) {
		return outcome[T]{state: notReady, reason: err}
	}
	return outcome[T]{state: fatal, reason: err}
}
