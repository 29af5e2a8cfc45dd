// Package chromedrv implements the driver capability over the Chrome
// DevTools protocol via chromedp. It needs a local Chrome or Chromium
// binary and no separate driver process.
package chromedrv

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/entrhq/anchor/pkg/driver"
	"github.com/entrhq/anchor/pkg/locator"
)

// Options configures the launched Chrome instance.
type Options struct {
	// Headless launches Chrome without a window.
	Headless bool

	// UserAgent overrides the browser user agent when non-empty.
	UserAgent string
}

// Driver owns one Chrome instance and one tab. Like every driver it
// is confined to the goroutine that created it.
type Driver struct {
	ctx         context.Context
	cancelCtx   context.CancelFunc
	cancelAlloc context.CancelFunc
}

// New launches Chrome and opens a tab. Pages sometimes hide controls
// in mobile layouts, so the window is initialized to a desktop size.
func New(opts Options) (*Driver, error) {
	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.WindowSize(1920, 1080),
	)
	if !opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	ctx, cancelCtx := chromedp.NewContext(allocCtx)

	// The browser process starts lazily; run an empty task list so a
	// missing Chrome binary fails here instead of on first use.
	if err := chromedp.Run(ctx); err != nil {
		cancelCtx()
		cancelAlloc()
		return nil, fmt.Errorf("starting chrome: %w", err)
	}
	return &Driver{ctx: ctx, cancelCtx: cancelCtx, cancelAlloc: cancelAlloc}, nil
}

// Navigate implements driver.Driver.
func (d *Driver) Navigate(url string) error {
	if err := chromedp.Run(d.ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

// CurrentURL implements driver.Driver.
func (d *Driver) CurrentURL() (string, error) {
	var url string
	if err := chromedp.Run(d.ctx, chromedp.Location(&url)); err != nil {
		return "", fmt.Errorf("reading location: %w", err)
	}
	return url, nil
}

// AddCookie implements driver.Driver through the DevTools network
// domain.
func (d *Driver) AddCookie(c driver.Cookie) error {
	err := chromedp.Run(d.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		p := network.SetCookie(c.Name, c.Value)
		if c.Domain != "" {
			p = p.WithDomain(c.Domain)
		} else {
			var url string
			if err := chromedp.Location(&url).Do(ctx); err != nil {
				return err
			}
			p = p.WithURL(url)
		}
		if c.Path != "" {
			p = p.WithPath(c.Path)
		}
		if c.Secure {
			p = p.WithSecure(true)
		}
		if c.HTTPOnly {
			p = p.WithHTTPOnly(true)
		}
		if !c.Expires.IsZero() {
			expires := cdp.TimeSinceEpoch(c.Expires)
			p = p.WithExpires(&expires)
		}
		return p.Do(ctx)
	}))
	if err != nil {
		return fmt.Errorf("adding cookie %q: %w", c.Name, err)
	}
	return nil
}

// Quit implements driver.Driver.
func (d *Driver) Quit() error {
	err := chromedp.Cancel(d.ctx)
	d.cancelCtx()
	d.cancelAlloc()
	if err != nil {
		return fmt.Errorf("closing chrome: %w", err)
	}
	return nil
}

// Find implements driver.SearchRoot.
func (d *Driver) Find(loc locator.Locator) (driver.Element, error) {
	els, err := d.FindAll(loc)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, driver.NewFailure(driver.NotFound, loc, nil)
	}
	return els[0], nil
}

// FindAll implements driver.SearchRoot. The query does not wait for
// matches; the resolution engine owns the polling.
func (d *Driver) FindAll(loc locator.Locator) ([]driver.Element, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}

	sel, by := queryFor(loc)
	var nodes []*cdp.Node
	err := chromedp.Run(d.ctx, chromedp.Nodes(sel, &nodes, by, chromedp.AtLeast(0)))
	if err != nil {
		return nil, fmt.Errorf("querying %s: %w", loc, err)
	}

	els := make([]driver.Element, 0, len(nodes))
	for _, node := range nodes {
		els = append(els, &element{drv: d, xpath: node.FullXPath(), tag: node.NodeName})
	}
	return els, nil
}
