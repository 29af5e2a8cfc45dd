package chromedrv

import (
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"

	"github.com/entrhq/anchor/pkg/driver"
	"github.com/entrhq/anchor/pkg/locator"
)

// element addresses its node by full XPath rather than holding a node
// id. DevTools node ids are invalidated whenever the document
// changes, so the handle re-resolves the path on every call; a path
// that no longer matches means the handle is stale.
type element struct {
	drv   *Driver
	xpath string
	tag   string
}

// node re-resolves the element's path without waiting. Zero matches
// is the staleness signal.
func (e *element) node() (*cdp.Node, error) {
	var nodes []*cdp.Node
	err := chromedp.Run(e.drv.ctx, chromedp.Nodes(e.xpath, &nodes, chromedp.BySearch, chromedp.AtLeast(0)))
	if err != nil {
		return nil, fmt.Errorf("re-resolving %s: %w", e.xpath, err)
	}
	if len(nodes) == 0 {
		return nil, driver.NewFailure(driver.Stale, locator.Locator{}, nil)
	}
	return nodes[0], nil
}

// Find implements driver.SearchRoot scoped to the element's subtree.
func (e *element) Find(loc locator.Locator) (driver.Element, error) {
	els, err := e.FindAll(loc)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, driver.NewFailure(driver.NotFound, loc, nil)
	}
	return els[0], nil
}

// FindAll implements driver.SearchRoot. The query runs document-wide
// and is narrowed to the subtree by path prefix, which works the same
// for CSS and XPath strategies.
func (e *element) FindAll(loc locator.Locator) ([]driver.Element, error) {
	if _, err := e.node(); err != nil {
		return nil, err
	}
	all, err := e.drv.FindAll(loc)
	if err != nil {
		return nil, err
	}

	prefix := e.xpath + "/"
	scoped := make([]driver.Element, 0, len(all))
	for _, el := range all {
		child := el.(*element)
		if strings.HasPrefix(child.xpath, prefix) {
			scoped = append(scoped, child)
		}
	}
	return scoped, nil
}

// Click implements driver.Element with a real mouse click at the
// node's coordinates.
func (e *element) Click() error {
	node, err := e.node()
	if err != nil {
		return err
	}
	if err := chromedp.Run(e.drv.ctx, chromedp.MouseClickNode(node)); err != nil {
		// A node without a box model has no point to click at.
		if strings.Contains(err.Error(), "could not compute box model") {
			return driver.NewFailure(driver.NotInteractable, locator.Locator{}, err)
		}
		return fmt.Errorf("clicking %s: %w", e.xpath, err)
	}
	return nil
}

// SendKeys implements driver.Element.
func (e *element) SendKeys(text string) error {
	if _, err := e.node(); err != nil {
		return err
	}
	if err := chromedp.Run(e.drv.ctx, chromedp.SendKeys(e.xpath, text, chromedp.BySearch)); err != nil {
		return fmt.Errorf("typing into %s: %w", e.xpath, err)
	}
	return nil
}

// Clear implements driver.Element.
func (e *element) Clear() error {
	if _, err := e.node(); err != nil {
		return err
	}
	if err := chromedp.Run(e.drv.ctx, chromedp.SetValue(e.xpath, "", chromedp.BySearch)); err != nil {
		return fmt.Errorf("clearing %s: %w", e.xpath, err)
	}
	return nil
}

// Text implements driver.Element.
func (e *element) Text() (string, error) {
	if _, err := e.node(); err != nil {
		return "", err
	}
	var text string
	if err := chromedp.Run(e.drv.ctx, chromedp.Text(e.xpath, &text, chromedp.BySearch)); err != nil {
		return "", fmt.Errorf("reading text of %s: %w", e.xpath, err)
	}
	return strings.TrimSpace(text), nil
}

// TagName implements driver.Element; it doubles as the staleness
// probe.
func (e *element) TagName() (string, error) {
	node, err := e.node()
	if err != nil {
		return "", err
	}
	return strings.ToLower(node.NodeName), nil
}

// Attribute implements driver.Element. Missing attributes read as
// empty.
func (e *element) Attribute(name string) (string, error) {
	if _, err := e.node(); err != nil {
		return "", err
	}
	var value string
	var ok bool
	err := chromedp.Run(e.drv.ctx, chromedp.AttributeValue(e.xpath, name, &value, &ok, chromedp.BySearch))
	if err != nil {
		return "", fmt.Errorf("reading attribute %q of %s: %w", name, e.xpath, err)
	}
	if !ok {
		return "", nil
	}
	return value, nil
}

// Displayed implements driver.Element via computed style in the page.
func (e *element) Displayed() (bool, error) {
	if _, err := e.node(); err != nil {
		return false, err
	}
	expr := fmt.Sprintf(`(() => {
		const el = document.evaluate(%q, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
		if (!el) return false;
		const style = window.getComputedStyle(el);
		return style.display !== 'none' && style.visibility !== 'hidden' && el.getClientRects().length > 0;
	})()`, e.xpath)
	var visible bool
	if err := chromedp.Run(e.drv.ctx, chromedp.Evaluate(expr, &visible)); err != nil {
		return false, fmt.Errorf("checking visibility of %s: %w", e.xpath, err)
	}
	return visible, nil
}

// Enabled implements driver.Element.
func (e *element) Enabled() (bool, error) {
	if _, err := e.node(); err != nil {
		return false, err
	}
	var value string
	var disabled bool
	err := chromedp.Run(e.drv.ctx, chromedp.AttributeValue(e.xpath, "disabled", &value, &disabled, chromedp.BySearch))
	if err != nil {
		return false, fmt.Errorf("checking enabled state of %s: %w", e.xpath, err)
	}
	return !disabled, nil
}

// SetInlineStyle implements driver.Styler for the highlight decorator.
func (e *element) SetInlineStyle(css string) error {
	if _, err := e.node(); err != nil {
		return err
	}
	expr := fmt.Sprintf(`(() => {
		const el = document.evaluate(%q, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
		if (el) el.setAttribute('style', %q);
		return el !== null;
	})()`, e.xpath, css)
	var found bool
	if err := chromedp.Run(e.drv.ctx, chromedp.Evaluate(expr, &found)); err != nil {
		return fmt.Errorf("styling %s: %w", e.xpath, err)
	}
	if !found {
		return driver.NewFailure(driver.Stale, locator.Locator{}, nil)
	}
	return nil
}
