// Package driver defines the narrow browser capability the engine
// depends on. Concrete drivers (playwrightdrv, chromedrv, memdriver)
// implement these interfaces; the core never imports a specific one.
package driver

import (
	"time"

	"github.com/entrhq/anchor/pkg/locator"
)

// SearchRoot is anything elements can be looked up under: a whole
// driver (document root) or a previously found element.
type SearchRoot interface {
	// Find returns the first element matching the locator, or a
	// Failure of kind NotFound when nothing matches.
	Find(loc locator.Locator) (Element, error)

	// FindAll returns every element matching the locator. An empty
	// result is not an error.
	FindAll(loc locator.Locator) ([]Element, error)
}

// Driver is one live browser instance. A Driver is owned by the
// goroutine that opened it and must never be shared across goroutines.
type Driver interface {
	SearchRoot

	// Navigate loads the given URL.
	Navigate(url string) error

	// CurrentURL reports the URL of the current document.
	CurrentURL() (string, error)

	// AddCookie installs a cookie into the browser. The domain must
	// already have been visited once for scoping to bind correctly.
	AddCookie(c Cookie) error

	// Quit closes the browser and releases its resources.
	Quit() error
}

// Element is a handle to a live DOM node. Handles go stale when the
// node is replaced; stale handles report a Failure of kind Stale from
// every method.
type Element interface {
	SearchRoot

	Click() error
	SendKeys(text string) error
	Clear() error
	Text() (string, error)
	TagName() (string, error)
	Attribute(name string) (string, error)
	Displayed() (bool, error)
	Enabled() (bool, error)
}

// Styler is an optional capability of Element used by the highlight
// decorator. Drivers that cannot mutate inline styles simply do not
// implement it and highlighting becomes a no-op.
type Styler interface {
	// SetInlineStyle replaces the element's style attribute.
	SetInlineStyle(css string) error
}

// Cookie mirrors the small cookie surface the lifecycle layer needs.
type Cookie struct {
	Name     string    `yaml:"name"`
	Value    string    `yaml:"value"`
	Domain   string    `yaml:"domain,omitempty"`
	Path     string    `yaml:"path,omitempty"`
	Secure   bool      `yaml:"secure,omitempty"`
	HTTPOnly bool      `yaml:"http_only,omitempty"`
	Expires  time.Time `yaml:"expires,omitempty"`
}
