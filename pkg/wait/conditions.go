package wait

import (
	"strings"

	"github.com/entrhq/anchor/pkg/driver"
)

// Condition is a readiness predicate over a single found element.
// A condition must be pure: it may read from the element but never
// act on it. Errors returned by the element during the read are
// classified by the resolution engine like any other driver failure.
type Condition func(el driver.Element) (bool, error)

// ListCondition is a readiness predicate over a found collection,
// judged over the whole collection at the moment of the check.
type ListCondition func(els []driver.Element) (bool, error)

// Present is the default single-element condition: the lookup
// succeeded, nothing more.
func Present() Condition {
	return func(driver.Element) (bool, error) { return true, nil }
}

// Displayed requires the element to be visible.
func Displayed() Condition {
	return func(el driver.Element) (bool, error) { return el.Displayed() }
}

// Enabled requires the element to be enabled.
func Enabled() Condition {
	return func(el driver.Element) (bool, error) { return el.Enabled() }
}

// Clickable requires the element to be both visible and enabled.
func Clickable() Condition {
	return func(el driver.Element) (bool, error) {
		shown, err := el.Displayed()
		if err != nil || !shown {
			return false, err
		}
		return el.Enabled()
	}
}

// TextContains requires the element's visible text to contain want.
func TextContains(want string) Condition {
	return func(el driver.Element) (bool, error) {
		text, err := el.Text()
		if err != nil {
			return false, err
		}
		return strings.Contains(text, want), nil
	}
}

// AttributeEquals requires attribute name to equal want.
func AttributeEquals(name, want string) Condition {
	return func(el driver.Element) (bool, error) {
		got, err := el.Attribute(name)
		if err != nil {
			return false, err
		}
		return got == want, nil
	}
}

// NonEmpty is the default list condition: at least one element.
func NonEmpty() ListCondition {
	return func(els []driver.Element) (bool, error) { return len(els) > 0, nil }
}

// CountAtLeast requires the collection to hold at least n elements.
func CountAtLeast(n int) ListCondition {
	return func(els []driver.Element) (bool, error) { return len(els) >= n, nil }
}

// Every lifts a single-element condition over a whole collection.
// An empty collection is not ready.
func Every(cond Condition) ListCondition {
	return func(els []driver.Element) (bool, error) {
		if len(els) == 0 {
			return false, nil
		}
		for _, el := range els {
			ok, err := cond(el)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	}
}
