// Package cache holds the per-property element cache: each declared
// locator property on a page owns one accessor object that remembers
// the last resolved element(s) and transparently re-resolves when a
// cached handle goes stale.
//
// Accessor objects are confined to the page's owning goroutine, like
// everything else under a session, so they carry no locks.
package cache

import (
	"fmt"

	"github.com/entrhq/anchor/pkg/driver"
	"github.com/entrhq/anchor/pkg/locator"
	"github.com/entrhq/anchor/pkg/wait"
)

// Resolver produces fresh elements for a cache entry. The page layer
// implements it on top of the resolution engine and the decorator
// chain; tests implement it directly.
type Resolver interface {
	ResolveOne(loc locator.Locator, policy wait.Policy, cond wait.Condition) (driver.Element, error)
	ResolveAll(loc locator.Locator, policy wait.Policy, cond wait.ListCondition) ([]driver.Element, error)
}

// Entry is the declarative part of a cached property.
type Entry struct {
	Locator locator.Locator
	Policy  wait.Policy
	// Cached selects whether reads may serve the remembered element.
	// A successful resolution always refreshes the remembered value
	// regardless, so flipping the flag later behaves consistently.
	Cached bool
}

// Handle is the accessor object for a single-element property.
type Handle struct {
	entry Entry
	cond  wait.Condition
	res   Resolver
	last  driver.Element
}

// NewHandle creates the accessor for one declared property. Nothing
// is resolved until the first Get.
func NewHandle(entry Entry, cond wait.Condition, res Resolver) *Handle {
	return &Handle{entry: entry, cond: cond, res: res}
}

// Locator returns the property's locator.
func (h *Handle) Locator() locator.Locator { return h.entry.Locator }

// Get returns the property's element. When caching is enabled and a
// previous resolution is remembered, a lightweight staleness probe
// decides whether it can be served; a stale probe invalidates the
// entry and triggers exactly one automatic re-resolution.
func (h *Handle) Get() (driver.Element, error) {
	if h.entry.Cached && h.last != nil {
		stale, err := probe(h.last)
		if err != nil {
			return nil, err
		}
		if !stale {
			return h.last, nil
		}
		h.last = nil
	}

	el, err := h.res.ResolveOne(h.entry.Locator, h.entry.Policy, h.cond)
	if err != nil {
		return nil, err
	}
	h.last = el
	return el, nil
}

// Invalidate drops the remembered element so the next Get resolves
// fresh.
func (h *Handle) Invalidate() { h.last = nil }

// ListHandle is the accessor object for a multi-element property.
type ListHandle struct {
	entry Entry
	cond  wait.ListCondition
	res   Resolver
	last  []driver.Element
}

// NewListHandle creates the accessor for a declared collection
// property.
func NewListHandle(entry Entry, cond wait.ListCondition, res Resolver) *ListHandle {
	return &ListHandle{entry: entry, cond: cond, res: res}
}

// Locator returns the property's locator.
func (h *ListHandle) Locator() locator.Locator { return h.entry.Locator }

// Get returns the property's collection, consulting the cache under
// the same rules as Handle.Get. A collection is stale when any of its
// members is.
func (h *ListHandle) Get() ([]driver.Element, error) {
	if h.entry.Cached && h.last != nil {
		stale, err := probeAll(h.last)
		if err != nil {
			return nil, err
		}
		if !stale {
			return h.last, nil
		}
		h.last = nil
	}

	els, err := h.res.ResolveAll(h.entry.Locator, h.entry.Policy, h.cond)
	if err != nil {
		return nil, err
	}
	h.last = els
	return els, nil
}

// Invalidate drops the remembered collection.
func (h *ListHandle) Invalidate() { h.last = nil }

// probe performs the lightweight no-op interaction that detects a
// stale handle: a tag-name read. A stale failure means invalidate;
// any other failure is a real error the caller must observe, not
// something to swallow.
func probe(el driver.Element) (stale bool, err error) {
	if _, err := el.TagName(); err != nil {
		if driver.IsStale(err) {
			return true, nil
		}
		return false, fmt.Errorf("staleness probe failed: %w", err)
	}
	return false, nil
}

func probeAll(els []driver.Element) (stale bool, err error) {
	for _, el := range els {
		stale, err := probe(el)
		if err != nil || stale {
			return stale, err
		}
	}
	return false, nil
}
