// Package page implements the Site and Page lifecycle on top of the
// session, resolution, cache and decorator layers.
//
// A Site is shared, read-only configuration: base URL, default wait
// policy and readiness condition, cookies and decorator chain for a
// group of pages. Sites are never mutated after construction and are
// safe to share across concurrently running sessions.
package page

import (
	"fmt"

	"github.com/gobwas/glob"

	"github.com/entrhq/anchor/pkg/decorate"
	"github.com/entrhq/anchor/pkg/driver"
	"github.com/entrhq/anchor/pkg/session"
	"github.com/entrhq/anchor/pkg/wait"
)

// SiteOptions configures a new site. Zero fields fall back to the
// engine defaults.
type SiteOptions struct {
	// Policy is the default wait policy for every page of the site.
	Policy wait.Policy

	// Condition is the default single-element readiness condition.
	Condition wait.Condition

	// Cookies are installed when a session enters the site.
	Cookies []driver.Cookie

	// Decorators wrap every driver and element call made under the
	// site, first-declared outermost.
	Decorators decorate.Chain

	// ReadyURL is a glob the current URL must match before a page of
	// this site reports ready. Empty disables the check.
	ReadyURL string

	// OnSessionReady runs after navigation and cookie installation,
	// before the visit callback.
	OnSessionReady func(s *session.Session) error
}

// Site is the immutable configuration shared by all sessions visiting
// one application.
type Site struct {
	name      string
	baseURL   string
	policy    wait.Policy
	condition wait.Condition
	cookies   []driver.Cookie
	chain     decorate.Chain
	readyURL  glob.Glob
	readyPat  string
	onReady   func(s *session.Session) error
}

// NewSite builds a site. The base URL must be non-empty; the ready
// URL glob, when given, must compile.
func NewSite(name, baseURL string, opts SiteOptions) (*Site, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("site %q: base URL must not be empty", name)
	}

	s := &Site{
		name:      name,
		baseURL:   baseURL,
		policy:    opts.Policy.Normalize(),
		condition: opts.Condition,
		cookies:   append([]driver.Cookie(nil), opts.Cookies...),
		chain:     opts.Decorators,
		readyPat:  opts.ReadyURL,
		onReady:   opts.OnSessionReady,
	}
	if s.condition == nil {
		s.condition = wait.Present()
	}
	if opts.ReadyURL != "" {
		g, err := glob.Compile(opts.ReadyURL)
		if err != nil {
			return nil, fmt.Errorf("site %q: compiling ready URL glob %q: %w", name, opts.ReadyURL, err)
		}
		s.readyURL = g
	}
	return s, nil
}

// Name implements session.SiteRef.
func (s *Site) Name() string { return s.name }

// BaseURL implements session.SiteRef.
func (s *Site) BaseURL() string { return s.baseURL }

// Policy returns the site default wait policy.
func (s *Site) Policy() wait.Policy { return s.policy }

// Condition returns the site default readiness condition.
func (s *Site) Condition() wait.Condition { return s.condition }

// Decorators returns the site's decorator chain.
func (s *Site) Decorators() decorate.Chain { return s.chain }

// matchesReadyURL reports whether url satisfies the ready glob; an
// unset glob matches everything.
func (s *Site) matchesReadyURL(url string) bool {
	if s.readyURL == nil {
		return true
	}
	return s.readyURL.Match(url)
}

// Visit opens a session scope for the site on the calling goroutine:
// it navigates to the base URL, installs the site cookies and runs fn
// with the bound session. The driver remains open after fn returns;
// closing it is the caller's responsibility.
//
// Cookie scoping only binds once the domain has been loaded, so when
// cookies are configured the base URL is deliberately navigated a
// second time after installing them. This is observed driver
// behavior, not an accident; removing the second navigation leaves
// the first page view without its cookies.
func (s *Site) Visit(drv driver.Driver, fn func(sess *session.Session) error) error {
	return session.With(s, drv, func(sess *session.Session) error {
		if err := drv.Navigate(s.baseURL); err != nil {
			return fmt.Errorf("site %q: navigating to %s: %w", s.name, s.baseURL, err)
		}

		if len(s.cookies) > 0 {
			for _, c := range s.cookies {
				if err := drv.AddCookie(c); err != nil {
					return fmt.Errorf("site %q: adding cookie %q: %w", s.name, c.Name, err)
				}
			}
			if err := drv.Navigate(s.baseURL); err != nil {
				return fmt.Errorf("site %q: re-navigating after cookies: %w", s.name, err)
			}
		}

		if s.onReady != nil {
			if err := s.onReady(sess); err != nil {
				return fmt.Errorf("site %q: session-ready hook: %w", s.name, err)
			}
		}

		return fn(sess)
	})
}
