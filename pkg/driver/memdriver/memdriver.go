// Package memdriver is an in-memory DOM driver backed by parsed HTML
// documents. It implements the full driver capability against static
// markup, which makes it the workhorse for engine tests and runnable
// examples: documents can be swapped mid-test so cached element
// handles genuinely go stale, exactly like a live page replacing its
// DOM.
package memdriver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/entrhq/anchor/pkg/driver"
	"github.com/entrhq/anchor/pkg/locator"
)

// Driver serves elements from an in-memory document. Like any driver
// it is confined to the goroutine that opened it; it carries no locks.
type Driver struct {
	pages   map[string]string
	doc     *goquery.Document
	url     string
	gen     int
	cookies []driver.Cookie
	closed  bool
}

// New creates a driver over a url -> HTML page map. Nothing is loaded
// until the first Navigate.
func New(pages map[string]string) *Driver {
	copied := make(map[string]string, len(pages))
	for url, html := range pages {
		copied[url] = html
	}
	return &Driver{pages: copied}
}

// Navigate loads the document registered for url. Every previously
// handed-out element handle goes stale.
func (d *Driver) Navigate(url string) error {
	if d.closed {
		return errDriverClosed
	}
	html, ok := d.pages[url]
	if !ok {
		return fmt.Errorf("no page registered for %q", url)
	}
	return d.load(url, html)
}

// SetDocument replaces the current document in place, keeping the
// URL. It simulates the page rewriting its own DOM: existing handles
// go stale and must be re-resolved.
func (d *Driver) SetDocument(html string) error {
	if d.closed {
		return errDriverClosed
	}
	if d.url == "" {
		return errors.New("no document loaded")
	}
	return d.load(d.url, html)
}

func (d *Driver) load(url, html string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return fmt.Errorf("parsing document for %q: %w", url, err)
	}
	d.doc = doc
	d.url = url
	d.gen++
	return nil
}

// CurrentURL implements driver.Driver.
func (d *Driver) CurrentURL() (string, error) {
	if d.closed {
		return "", errDriverClosed
	}
	return d.url, nil
}

// AddCookie implements driver.Driver. Cookies are recorded verbatim;
// Cookies exposes them for assertions.
func (d *Driver) AddCookie(c driver.Cookie) error {
	if d.closed {
		return errDriverClosed
	}
	d.cookies = append(d.cookies, c)
	return nil
}

// Cookies returns every cookie added so far.
func (d *Driver) Cookies() []driver.Cookie {
	return append([]driver.Cookie(nil), d.cookies...)
}

// Quit implements driver.Driver. Further calls fail.
func (d *Driver) Quit() error {
	d.closed = true
	d.doc = nil
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

// FindAll implements driver.SearchRoot.
func (d *Driver) FindAll(loc locator.Locator) ([]driver.Element, error) {
	if d.closed {
		return nil, errDriverClosed
	}
	if d.doc == nil {
		return nil, errors.New("no document loaded")
	}
	if err := loc.Validate(); err != nil {
		return nil, err
	}

	sel, err := matchIn(d.doc.Selection, loc)
	if err != nil {
		return nil, err
	}

	els := make([]driver.Element, 0, sel.Length())
	for _, node := range sel.Nodes {
		els = append(els, &element{drv: d, node: node, gen: d.gen})
	}
	return els, nil
}

var errDriverClosed = errors.New("driver has been closed")

// matchIn evaluates a locator inside the given selection scope.
// XPath is the one strategy static documents cannot serve; asking for
// it is a programmer error, not a retryable miss.
func matchIn(scope *goquery.Selection, loc locator.Locator) (*goquery.Selection, error) {
	switch loc.Strategy() {
	case locator.ByXPath:
		return nil, fmt.Errorf("memdriver does not support xpath locators (%s)", loc)
	case locator.ByLinkText:
		return filterAnchors(scope, loc.Value(), true), nil
	case locator.ByPartialLinkText:
		return filterAnchors(scope, loc.Value(), false), nil
	case locator.ByIDOrName:
		byID := scope.Find(fmt.Sprintf("[id=%q]", loc.Value()))
		if byID.Length() > 0 {
			return byID, nil
		}
		return scope.Find(fmt.Sprintf("[name=%q]", loc.Value())), nil
	default:
		return scope.Find(cssFor(loc)), nil
	}
}

// cssFor translates the simple strategies to CSS.
func cssFor(loc locator.Locator) string {
	switch loc.Strategy() {
	case locator.ByID:
		return fmt.Sprintf("[id=%q]", loc.Value())
	case locator.ByName:
		return fmt.Sprintf("[name=%q]", loc.Value())
	case locator.ByClassName:
		return fmt.Sprintf("[class~=%q]", loc.Value())
	case locator.ByTagName:
		return loc.Value()
	default: // ByCSSSelector
		return loc.Value()
	}
}

func filterAnchors(scope *goquery.Selection, text string, exact bool) *goquery.Selection {
	return scope.Find("a").FilterFunction(func(_ int, s *goquery.Selection) bool {
		got := strings.TrimSpace(s.Text())
		if exact {
			return got == text
		}
		return strings.Contains(got, text)
	})
}
