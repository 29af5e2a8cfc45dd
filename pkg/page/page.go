package page

import (
	"fmt"

	"github.com/gobwas/glob"

	"github.com/entrhq/anchor/pkg/cache"
	"github.com/entrhq/anchor/pkg/decorate"
	"github.com/entrhq/anchor/pkg/driver"
	"github.com/entrhq/anchor/pkg/locator"
	"github.com/entrhq/anchor/pkg/resolve"
	"github.com/entrhq/anchor/pkg/session"
	"github.com/entrhq/anchor/pkg/wait"
)

// State tracks the page lifecycle.
type State int

const (
	// StateNavigated: the session has loaded the site and the page
	// object exists, but its readiness assertion has not run.
	StateNavigated State = iota + 1
	// StateReady: the readiness assertion passed.
	StateReady
	// StateDiscarded: the page's scope has ended; element access is
	// an error.
	StateDiscarded
)

// PageOptions configures a page created under a session. Zero fields
// inherit the site defaults.
type PageOptions struct {
	// Policy overrides the site wait policy for this page.
	Policy wait.Policy

	// Condition overrides the site default element condition.
	Condition wait.Condition

	// ExtraDecorators are appended to the site chain for this page.
	ExtraDecorators []decorate.Decorator

	// ReadyLocator, when non-zero, is resolved by Ready with
	// ReadyCondition (default: the page condition) as the page's
	// readiness assertion.
	ReadyLocator locator.Locator

	// ReadyCondition qualifies ReadyLocator.
	ReadyCondition wait.Condition

	// ReadyURL overrides the site's ready URL glob.
	ReadyURL string
}

// Page is one navigated view of a site. It owns its cache entries and
// is confined to the session, and therefore goroutine, it was created
// under.
type Page struct {
	name     string
	sess     *session.Session
	site     *Site
	policy   wait.Policy
	cond     wait.Condition
	chain    decorate.Chain
	state    State
	readyLoc locator.Locator
	readyCnd wait.Condition
	readyURL glob.Glob
}

// guardDecorator re-checks page confinement on every decorated call,
// including calls on cached element handles that never pass through
// the resolution engine again.
type guardDecorator struct {
	p *Page
}

func (g guardDecorator) Wrap(_ decorate.Call, op decorate.Operation) decorate.Operation {
	return func() error {
		if err := g.p.guard(); err != nil {
			return err
		}
		return op()
	}
}

// New creates a page under the calling goroutine's session for the
// given site. The session must be active and bound to the calling
// goroutine.
func New(sess *session.Session, site *Site, name string, opts PageOptions) (*Page, error) {
	if err := sess.Guard(); err != nil {
		return nil, err
	}

	p := &Page{
		name:     name,
		sess:     sess,
		site:     site,
		policy:   site.Policy(),
		cond:     site.Condition(),
		chain:    site.Decorators(),
		state:    StateNavigated,
		readyLoc: opts.ReadyLocator,
		readyCnd: opts.ReadyCondition,
		readyURL: site.readyURL,
	}
	if !opts.Policy.IsZero() {
		p.policy = opts.Policy.Normalize()
	}
	if opts.Condition != nil {
		p.cond = opts.Condition
	}
	if len(opts.ExtraDecorators) > 0 {
		p.chain = p.chain.Extend(opts.ExtraDecorators...)
	}
	p.chain = decorate.NewChain(guardDecorator{p: p}).Extend(p.chain.Decorators()...)
	if p.readyCnd == nil {
		p.readyCnd = p.cond
	}
	if opts.ReadyURL != "" {
		g, err := glob.Compile(opts.ReadyURL)
		if err != nil {
			return nil, fmt.Errorf("page %q: compiling ready URL glob %q: %w", name, opts.ReadyURL, err)
		}
		p.readyURL = g
	}
	return p, nil
}

// Name returns the page's name.
func (p *Page) Name() string { return p.name }

// State returns the page's lifecycle state.
func (p *Page) State() State { return p.state }

// Session returns the session the page is bound to.
func (p *Page) Session() *session.Session { return p.sess }

// Site returns the site the page belongs to.
func (p *Page) Site() *Site { return p.site }

// guard verifies the page may be used from the calling goroutine and
// has not been discarded.
func (p *Page) guard() error {
	if p.state == StateDiscarded {
		return fmt.Errorf("page %q has been discarded", p.name)
	}
	return p.sess.Guard()
}

// Ready runs the page readiness assertion: the current URL must match
// the ready glob and, when a ready locator is declared, it must
// resolve with the ready condition. On success the page enters
// StateReady.
func (p *Page) Ready() error {
	if err := p.guard(); err != nil {
		return err
	}

	if p.readyURL != nil {
		url, err := p.sess.Driver().CurrentURL()
		if err != nil {
			return fmt.Errorf("page %q: reading current URL: %w", p.name, err)
		}
		if !p.readyURL.Match(url) {
			return fmt.Errorf("page %q: current URL %q does not match ready pattern", p.name, url)
		}
	}

	if !p.readyLoc.IsZero() {
		if _, err := p.ResolveOne(p.readyLoc, p.policy, p.readyCnd); err != nil {
			return fmt.Errorf("page %q: readiness assertion: %w", p.name, err)
		}
	}

	p.state = StateReady
	return nil
}

// Discard ends the page's scope. Further element access fails; the
// browser itself stays open or closes per the session scope, not per
// page.
func (p *Page) Discard() {
	p.state = StateDiscarded
}

// ElementOptions configures one declared single-element property.
type ElementOptions struct {
	// Policy overrides the page wait policy for this property.
	Policy wait.Policy

	// Condition overrides the page readiness condition.
	Condition wait.Condition

	// Fresh disables serving this property from the cache; every
	// read resolves anew (writes still refresh the cache).
	Fresh bool
}

// ElementsOptions configures one declared collection property.
type ElementsOptions struct {
	// Policy overrides the page wait policy for this property.
	Policy wait.Policy

	// Condition is the collection readiness condition; default is
	// wait.NonEmpty.
	Condition wait.ListCondition

	// Fresh disables serving this property from the cache.
	Fresh bool
}

// Element declares a single-element property. Nothing is resolved
// until the first Get on the returned handle.
func (p *Page) Element(loc locator.Locator, opts ElementOptions) *cache.Handle {
	policy := p.policy
	if !opts.Policy.IsZero() {
		policy = opts.Policy.Normalize()
	}
	cond := p.cond
	if opts.Condition != nil {
		cond = opts.Condition
	}
	entry := cache.Entry{Locator: loc, Policy: policy, Cached: !opts.Fresh}
	return cache.NewHandle(entry, cond, p)
}

// Elements declares a collection property.
func (p *Page) Elements(loc locator.Locator, opts ElementsOptions) *cache.ListHandle {
	policy := p.policy
	if !opts.Policy.IsZero() {
		policy = opts.Policy.Normalize()
	}
	cond := opts.Condition
	if cond == nil {
		cond = wait.NonEmpty()
	}
	entry := cache.Entry{Locator: loc, Policy: policy, Cached: !opts.Fresh}
	return cache.NewListHandle(entry, cond, p)
}

// ResolveOne implements cache.Resolver: it runs the resolution engine
// through the page's decorator chain and returns the element wrapped
// so its actions stay decorated.
func (p *Page) ResolveOne(loc locator.Locator, policy wait.Policy, cond wait.Condition) (driver.Element, error) {
	if err := p.guard(); err != nil {
		return nil, err
	}

	var el driver.Element
	call := decorate.Call{
		Kind:    decorate.CallResolve,
		Name:    "resolve",
		Locator: loc,
		Session: p.sess.ID(),
	}
	err := p.chain.Apply(call, func() error {
		var err error
		el, err = resolve.One(p.sess.Driver(), loc, policy, cond)
		return err
	})
	if err != nil {
		return nil, err
	}
	return decorate.WrapElement(el, p.chain, loc, p.sess.ID()), nil
}

// ResolveAll implements cache.Resolver for collection properties.
func (p *Page) ResolveAll(loc locator.Locator, policy wait.Policy, cond wait.ListCondition) ([]driver.Element, error) {
	if err := p.guard(); err != nil {
		return nil, err
	}

	var els []driver.Element
	call := decorate.Call{
		Kind:    decorate.CallResolve,
		Name:    "resolve_all",
		Locator: loc,
		Session: p.sess.ID(),
	}
	err := p.chain.Apply(call, func() error {
		var err error
		els, err = resolve.All(p.sess.Driver(), loc, policy, cond)
		return err
	})
	if err != nil {
		return nil, err
	}

	wrapped := make([]driver.Element, len(els))
	for i, el := range els {
		wrapped[i] = decorate.WrapElement(el, p.chain, loc, p.sess.ID())
	}
	return wrapped, nil
}
