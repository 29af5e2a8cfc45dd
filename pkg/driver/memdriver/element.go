package memdriver

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/entrhq/anchor/pkg/driver"
	"github.com/entrhq/anchor/pkg/locator"
)

// element is a handle to one node of the driver's current document.
// It remembers the document generation it was found in; once the
// driver loads or swaps a document, the handle reports Stale from
// every method, matching live-driver semantics.
type element struct {
	drv  *Driver
	node *html.Node
	gen  int
}

func (e *element) live() error {
	if e.drv.closed {
		return errDriverClosed
	}
	if e.gen != e.drv.gen {
		return driver.NewFailure(driver.Stale, locator.Locator{}, nil)
	}
	return nil
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

// FindAll implements driver.SearchRoot scoped to the element's subtree.
func (e *element) FindAll(loc locator.Locator) ([]driver.Element, error) {
	if err := e.live(); err != nil {
		return nil, err
	}
	if err := loc.Validate(); err != nil {
		return nil, err
	}

	scope := goquery.NewDocumentFromNode(e.node).Selection
	sel, err := matchIn(scope, loc)
	if err != nil {
		return nil, err
	}

	els := make([]driver.Element, 0, sel.Length())
	for _, node := range sel.Nodes {
		els = append(els, &element{drv: e.drv, node: node, gen: e.gen})
	}
	return els, nil
}

// Click implements driver.Element. Disabled elements are not
// interactable; elements marked data-click-intercepted simulate an
// overlay stealing the click. A successful click on an anchor with a
// registered href navigates, and every click increments the
// element's data-clicks attribute so tests can observe it.
func (e *element) Click() error {
	if err := e.live(); err != nil {
		return err
	}
	if hasAttr(e.node, "disabled") {
		return driver.NewFailure(driver.NotInteractable, locator.Locator{}, nil)
	}
	if hasAttr(e.node, "data-click-intercepted") {
		return driver.NewFailure(driver.ClickIntercepted, locator.Locator{}, nil)
	}

	setAttr(e.node, "data-clicks", incr(getAttr(e.node, "data-clicks")))

	if e.node.Data == "a" {
		if href := getAttr(e.node, "href"); href != "" {
			if _, registered := e.drv.pages[href]; registered {
				return e.drv.Navigate(href)
			}
		}
	}
	return nil
}

// SendKeys implements driver.Element by appending to the value
// attribute, like typing into a focused input.
func (e *element) SendKeys(text string) error {
	if err := e.live(); err != nil {
		return err
	}
	if hasAttr(e.node, "disabled") {
		return driver.NewFailure(driver.NotInteractable, locator.Locator{}, nil)
	}
	setAttr(e.node, "value", getAttr(e.node, "value")+text)
	return nil
}

// Clear implements driver.Element.
func (e *element) Clear() error {
	if err := e.live(); err != nil {
		return err
	}
	setAttr(e.node, "value", "")
	return nil
}

// Text implements driver.Element: the node's visible text content,
// whitespace-trimmed.
func (e *element) Text() (string, error) {
	if err := e.live(); err != nil {
		return "", err
	}
	return strings.TrimSpace(nodeText(e.node)), nil
}

// TagName implements driver.Element; it doubles as the staleness
// probe, so it must fail with a Stale failure on outdated handles.
func (e *element) TagName() (string, error) {
	if err := e.live(); err != nil {
		return "", err
	}
	return e.node.Data, nil
}

// Attribute implements driver.Element.
func (e *element) Attribute(name string) (string, error) {
	if err := e.live(); err != nil {
		return "", err
	}
	return getAttr(e.node, name), nil
}

// Displayed implements driver.Element: a node is hidden when it or
// any ancestor carries the hidden attribute or display:none.
func (e *element) Displayed() (bool, error) {
	if err := e.live(); err != nil {
		return false, err
	}
	for n := e.node; n != nil; n = n.Parent {
		if n.Type != html.ElementNode {
			continue
		}
		if hasAttr(n, "hidden") {
			return false, nil
		}
		style := strings.ReplaceAll(getAttr(n, "style"), " ", "")
		if strings.Contains(style, "display:none") {
			return false, nil
		}
	}
	return true, nil
}

// Enabled implements driver.Element.
func (e *element) Enabled() (bool, error) {
	if err := e.live(); err != nil {
		return false, err
	}
	return !hasAttr(e.node, "disabled"), nil
}

// SetInlineStyle implements driver.Styler for the highlight
// decorator.
func (e *element) SetInlineStyle(css string) error {
	if err := e.live(); err != nil {
		return err
	}
	setAttr(e.node, "style", css)
	return nil
}

func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(nodeText(c))
	}
	return b.String()
}

func getAttr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, name string) bool {
	for _, a := range n.Attr {
		if a.Key == name {
			return true
		}
	}
	return false
}

func setAttr(n *html.Node, name, value string) {
	for i := range n.Attr {
		if n.Attr[i].Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

func incr(count string) string {
	n, _ := strconv.Atoi(count)
	return strconv.Itoa(n + 1)
}
