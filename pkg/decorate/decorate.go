// Package decorate implements the ordered interception chain wrapped
// around every driver and element call: trace logging, transient
// visual highlighting and slow-motion delays.
//
// Decorators are middleware: they may add behavior before and after
// an operation but must never alter its result or swallow its
// failure. A chain is configured once per site or page and is
// read-only afterwards, so it is safe for concurrent use from many
// sessions.
package decorate

import (
	"github.com/entrhq/anchor/pkg/driver"
	"github.com/entrhq/anchor/pkg/locator"
)

// CallKind classifies the wrapped operation so decorators can scope
// themselves: highlighting applies to actions only, never to pure
// lookups.
type CallKind int

const (
	// CallResolve is a lookup that produces element(s).
	CallResolve CallKind = iota + 1
	// CallAction mutates page state (click, send keys, clear).
	CallAction
	// CallRead reads element state (text, attribute, displayed).
	CallRead
)

// String implements fmt.Stringer.
func (k CallKind) String() string {
	switch k {
	case CallResolve:
		return "resolve"
	case CallAction:
		return "action"
	case CallRead:
		return "read"
	default:
		return "unknown"
	}
}

// Call carries the metadata decorators observe about the wrapped
// operation. Subject is the element being acted on; nil for lookups.
type Call struct {
	Kind    CallKind
	Name    string
	Locator locator.Locator
	Subject driver.Element
	Session string
}

// Operation is the wrapped unit of work. Results travel through
// closures so decorators physically cannot rewrite them.
type Operation func() error

// Decorator wraps an operation with cross-cutting behavior.
type Decorator interface {
	Wrap(call Call, op Operation) Operation
}

// Chain is an ordered, immutable list of decorators. The
// first-declared decorator is outermost: its pre-logic runs first and
// its post-logic last.
type Chain struct {
	decorators []Decorator
}

// NewChain builds a chain from decorators in declaration order.
func NewChain(decorators ...Decorator) Chain {
	ds := make([]Decorator, len(decorators))
	copy(ds, decorators)
	return Chain{decorators: ds}
}

// Extend returns a new chain with more decorators appended; the
// receiver is left untouched.
func (c Chain) Extend(decorators ...Decorator) Chain {
	ds := make([]Decorator, 0, len(c.decorators)+len(decorators))
	ds = append(ds, c.decorators...)
	ds = append(ds, decorators...)
	return Chain{decorators: ds}
}

// Len reports the number of decorators in the chain.
func (c Chain) Len() int { return len(c.decorators) }

// Decorators returns a copy of the chain's decorators in order.
func (c Chain) Decorators() []Decorator {
	ds := make([]Decorator, len(c.decorators))
	copy(ds, c.decorators)
	return ds
}

// Apply composes the chain right-to-left around op and runs it.
func (c Chain) Apply(call Call, op Operation) error {
	wrapped := op
	for i := len(c.decorators) - 1; i >= 0; i-- {
		wrapped = c.decorators[i].Wrap(call, wrapped)
	}
	return wrapped()
}
