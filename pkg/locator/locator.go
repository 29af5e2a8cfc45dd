// Package locator defines the immutable strategy+value pairs used to
// describe how an element is searched for on a page.
package locator

import "fmt"

// Strategy identifies a find strategy understood by drivers.
type Strategy string

const (
	ByID              Strategy = "id"
	ByName            Strategy = "name"
	ByClassName       Strategy = "class name"
	ByCSSSelector     Strategy = "css selector"
	ByLinkText        Strategy = "link text"
	ByPartialLinkText Strategy = "partial link text"
	ByTagName         Strategy = "tag name"
	ByXPath           Strategy = "xpath"
	ByIDOrName        Strategy = "id or name"
)

var knownStrategies = map[Strategy]bool{
	ByID:              true,
	ByName:            true,
	ByClassName:       true,
	ByCSSSelector:     true,
	ByLinkText:        true,
	ByPartialLinkText: true,
	ByTagName:         true,
	ByXPath:           true,
	ByIDOrName:        true,
}

// Locator is an immutable description of how to find element(s).
// xpath and css selector values are passed through to the driver
// uninterpreted.
type Locator struct {
	strategy Strategy
	value    string
}

// New creates a locator and validates it.
func New(strategy Strategy, value string) (Locator, error) {
	l := Locator{strategy: strategy, value: value}
	if err := l.Validate(); err != nil {
		return Locator{}, err
	}
	return l, nil
}

// Convenience constructors. These do not validate; the resolution
// engine calls Validate before the first lookup so a malformed locator
// surfaces as a fatal InvalidLocatorError, never as a retried miss.

// ID locates by the id attribute.
func ID(value string) Locator { return Locator{strategy: ByID, value: value} }

// Name locates by the name attribute.
func Name(value string) Locator { return Locator{strategy: ByName, value: value} }

// ClassName locates by a single CSS class name.
func ClassName(value string) Locator { return Locator{strategy: ByClassName, value: value} }

// CSS locates by a raw CSS selector.
func CSS(value string) Locator { return Locator{strategy: ByCSSSelector, value: value} }

// LinkText locates an anchor by its exact visible text.
func LinkText(value string) Locator { return Locator{strategy: ByLinkText, value: value} }

// PartialLinkText locates an anchor whose visible text contains value.
func PartialLinkText(value string) Locator {
	return Locator{strategy: ByPartialLinkText, value: value}
}

// TagName locates by element tag name.
func TagName(value string) Locator { return Locator{strategy: ByTagName, value: value} }

// XPath locates by a raw XPath expression.
func XPath(value string) Locator { return Locator{strategy: ByXPath, value: value} }

// IDOrName locates by id, falling back to the name attribute.
func IDOrName(value string) Locator { return Locator{strategy: ByIDOrName, value: value} }

// Strategy returns the find strategy.
func (l Locator) Strategy() Strategy { return l.strategy }

// Value returns the search value.
func (l Locator) Value() string { return l.value }

// IsZero reports whether the locator is the zero value.
func (l Locator) IsZero() bool { return l.strategy == "" && l.value == "" }

// Validate checks the strategy is known and both parts are non-empty.
func (l Locator) Validate() error {
	if l.strategy == "" || l.value == "" {
		return &InvalidLocatorError{
			Strategy: l.strategy,
			Value:    l.value,
			Reason:   "strategy and value must be non-empty",
		}
	}
	if !knownStrategies[l.strategy] {
		return &InvalidLocatorError{
			Strategy: l.strategy,
			Value:    l.value,
			Reason:   "unknown strategy",
		}
	}
	return nil
}

// String renders the locator for diagnostics, e.g. `id="login"`.
func (l Locator) String() string {
	return fmt.Sprintf("%s=%q", string(l.strategy), l.value)
}

// InvalidLocatorError reports a malformed locator. It is a programmer
// error: the resolution engine never retries it.
type InvalidLocatorError struct {
	Strategy Strategy
	Value    string
	Reason   string
}

// Error implements the error interface.
func (e *InvalidLocatorError) Error() string {
	return fmt.Sprintf("invalid locator %s=%q: %s", string(e.Strategy), e.Value, e.Reason)
}
