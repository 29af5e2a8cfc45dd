// Package playwrightdrv implements the driver capability on top of
// playwright-go. One Driver owns one browser, one context and one
// page, matching the engine's one-driver-per-session model.
package playwrightdrv

import (
	"fmt"
	"io"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/anchor/pkg/driver"
	"github.com/entrhq/anchor/pkg/locator"
)

// Options configures a launched browser.
type Options struct {
	// Headless launches the browser without a window.
	Headless bool

	// SlowMo asks the browser itself to pace its operations. Most
	// callers should prefer the slow-motion decorator, which delays at
	// the engine layer instead; this is the raw protocol-level knob.
	SlowMo time.Duration
}

// Driver drives a real Chromium instance through Playwright.
type Driver struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
}

// Launch installs Playwright if needed, starts it and opens a
// Chromium page. Installer output is discarded so it cannot corrupt
// the caller's terminal.
func Launch(opts Options) (*Driver, error) {
	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(runOpts); err != nil {
		return nil, fmt.Errorf("installing playwright: %w", err)
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("starting playwright: %w", err)
	}

	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
	}
	if opts.SlowMo > 0 {
		launchOpts.SlowMo = playwright.Float(float64(opts.SlowMo.Milliseconds()))
	}
	browser, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launching browser: %w", err)
	}

	context, err := browser.NewContext()
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("creating browser context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("creating page: %w", err)
	}

	return &Driver{pw: pw, browser: browser, context: context, page: page}, nil
}

// Navigate implements driver.Driver.
func (d *Driver) Navigate(url string) error {
	if _, err := d.page.Goto(url); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

// CurrentURL implements driver.Driver.
func (d *Driver) CurrentURL() (string, error) {
	return d.page.URL(), nil
}

// AddCookie implements driver.Driver. Playwright scopes cookies to
// the context, not the page.
func (d *Driver) AddCookie(c driver.Cookie) error {
	cookie := playwright.OptionalCookie{
		Name:  c.Name,
		Value: c.Value,
	}
	if c.Domain != "" {
		cookie.Domain = playwright.String(c.Domain)
		path := c.Path
		if path == "" {
			path = "/"
		}
		cookie.Path = playwright.String(path)
	} else {
		cookie.URL = playwright.String(d.page.URL())
	}
	if c.Secure {
		cookie.Secure = playwright.Bool(true)
	}
	if c.HTTPOnly {
		cookie.HttpOnly = playwright.Bool(true)
	}
	if !c.Expires.IsZero() {
		cookie.Expires = playwright.Float(float64(c.Expires.Unix()))
	}

	if err := d.context.AddCookies([]playwright.OptionalCookie{cookie}); err != nil {
		return fmt.Errorf("adding cookie %q: %w", c.Name, err)
	}
	return nil
}

// Quit implements driver.Driver. Close errors during teardown are
// ignored so a half-dead browser can still be released; only a failed
// Playwright stop is reported.
func (d *Driver) Quit() error {
	_ = d.page.Close()
	_ = d.context.Close()
	_ = d.browser.Close()
	if err := d.pw.Stop(); err != nil {
		return fmt.Errorf("stopping playwright: %w", err)
	}
	return nil
}

// Find implements driver.SearchRoot against the page document.
func (d *Driver) Find(loc locator.Locator) (driver.Element, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	handle, err := d.page.QuerySelector(selectorFor(loc))
	if err != nil {
		return nil, classify(loc, err)
	}
	if handle == nil {
		return nil, driver.NewFailure(driver.NotFound, loc, nil)
	}
	return &element{handle: handle}, nil
}

// FindAll implements driver.SearchRoot against the page document.
func (d *Driver) FindAll(loc locator.Locator) ([]driver.Element, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	handles, err := d.page.QuerySelectorAll(selectorFor(loc))
	if err != nil {
		return nil, classify(loc, err)
	}
	return wrapHandles(handles), nil
}

func wrapHandles(handles []playwright.ElementHandle) []driver.Element {
	els := make([]driver.Element, 0, len(handles))
	for _, h := range handles {
		els = append(els, &element{handle: h})
	}
	return els
}
