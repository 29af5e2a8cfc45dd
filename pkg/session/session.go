// Package session binds one browser driver to the goroutine that
// opened it and enforces that binding on every page operation.
//
// Parallel test execution runs one browser per goroutine; a single
// session, driver and page triad is never shared across goroutines.
// Acting on a driver handle from a foreign goroutine risks corrupting
// the native driver protocol, so confinement violations are
// programmer errors: they fail fast and are never retried.
package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/entrhq/anchor/pkg/driver"
)

// SiteRef is the read-only site view a session carries. The concrete
// type lives in the page package; the indirection keeps this package
// free of lifecycle concerns.
type SiteRef interface {
	Name() string
	BaseURL() string
}

// Session is the binding of one driver to one owning goroutine for
// the duration of a test scope.
type Session struct {
	id     string
	drv    driver.Driver
	site   SiteRef
	owner  int64
	closed bool
}

// ID returns the session's correlation id.
func (s *Session) ID() string { return s.id }

// Driver returns the bound driver. Callers must already be inside the
// session's scope; use Guard to verify.
func (s *Session) Driver() driver.Driver { return s.drv }

// Site returns the site the session was opened for.
func (s *Session) Site() SiteRef { return s.site }

// Owner returns the id of the owning goroutine.
func (s *Session) Owner() int64 { return s.owner }

// registry is the single process-wide holder of per-goroutine session
// stacks. The map itself needs a lock because many goroutines enter
// and leave scopes concurrently; each stack is only ever touched by
// its own goroutine.
type registry struct {
	mu     sync.Mutex
	stacks map[int64][]*Session
}

var global = &registry{stacks: make(map[int64][]*Session)}

func (r *registry) push(gid int64, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stacks[gid] = append(r.stacks[gid], s)
}

func (r *registry) pop(gid int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stack := r.stacks[gid]
	if len(stack) == 0 {
		return
	}
	stack[len(stack)-1].closed = true
	stack = stack[:len(stack)-1]
	if len(stack) == 0 {
		delete(r.stacks, gid)
		return
	}
	r.stacks[gid] = stack
}

func (r *registry) peek(gid int64) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stack := r.stacks[gid]
	if len(stack) == 0 {
		return nil, false
	}
	return stack[len(stack)-1], true
}

// With opens a session scope on the calling goroutine: it pushes a
// new session bound to drv, runs fn, and pops the session on return,
// restoring any outer session rather than clearing state (stack
// discipline, so nested scopes compose).
func With(site SiteRef, drv driver.Driver, fn func(s *Session) error) error {
	gid := goroutineID()
	s := &Session{
		id:    uuid.NewString(),
		drv:   drv,
		site:  site,
		owner: gid,
	}
	global.push(gid, s)
	defer global.pop(gid)
	return fn(s)
}

// Current returns the calling goroutine's active session, or a
// NoActiveSessionError when the goroutine has none.
func Current() (*Session, error) {
	gid := goroutineID()
	s, ok := global.peek(gid)
	if !ok {
		return nil, &NoActiveSessionError{Goroutine: gid}
	}
	return s, nil
}

// Active reports whether the calling goroutine has an open session.
func Active() bool {
	_, ok := global.peek(goroutineID())
	return ok
}

// Guard verifies the calling goroutine's active session is exactly s.
// It distinguishes the two failure modes: no session at all on this
// goroutine (NoActiveSessionError) versus a session that is active
// but is not the one s was created under (ConfinementError).
func (s *Session) Guard() error {
	gid := goroutineID()
	current, ok := global.peek(gid)
	if !ok {
		return &NoActiveSessionError{Goroutine: gid}
	}
	if current != s {
		return &ConfinementError{
			SessionID: s.id,
			Owner:     s.owner,
			Caller:    gid,
		}
	}
	return nil
}

// WithDriver runs fn inside the calling goroutine's active session
// after checking that expected is the very driver instance the
// session is bound to (identity, not equality of configuration). A
// mismatch means the caller is about to operate a page bound to one
// browser while another is active, and fails with DriverMismatchError.
func WithDriver[T any](expected driver.Driver, fn func(s *Session) (T, error)) (T, error) {
	var zero T
	s, err := Current()
	if err != nil {
		return zero, err
	}
	if s.drv != expected {
		return zero, &DriverMismatchError{SessionID: s.id, Goroutine: s.owner}
	}
	return fn(s)
}
