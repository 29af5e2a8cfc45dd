package playwrightdrv

import (
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/anchor/pkg/driver"
	"github.com/entrhq/anchor/pkg/locator"
)

// actionTimeoutMillis caps Playwright's own actionability waiting.
// The resolution engine does the polling; the browser call itself
// should fail fast so the engine sees the failure and retries under
// its own policy.
const actionTimeoutMillis = 500

// element adapts a Playwright element handle.
type element struct {
	handle playwright.ElementHandle
}

// Find implements driver.SearchRoot scoped to the element's subtree.
func (e *element) Find(loc locator.Locator) (driver.Element, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	handle, err := e.handle.QuerySelector(selectorFor(loc))
	if err != nil {
		return nil, classify(loc, err)
	}
	if handle == nil {
		return nil, driver.NewFailure(driver.NotFound, loc, nil)
	}
	return &element{handle: handle}, nil
}

// FindAll implements driver.SearchRoot scoped to the element's subtree.
func (e *element) FindAll(loc locator.Locator) ([]driver.Element, error) {
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	handles, err := e.handle.QuerySelectorAll(selectorFor(loc))
	if err != nil {
		return nil, classify(loc, err)
	}
	return wrapHandles(handles), nil
}

// Click implements driver.Element.
func (e *element) Click() error {
	err := e.handle.Click(playwright.ElementHandleClickOptions{
		Timeout: playwright.Float(actionTimeoutMillis),
	})
	return classify(locator.Locator{}, err)
}

// SendKeys implements driver.Element by typing into the element,
// appending to existing content like a keyboard would.
func (e *element) SendKeys(text string) error {
	err := e.handle.Type(text, playwright.ElementHandleTypeOptions{
		Timeout: playwright.Float(actionTimeoutMillis),
	})
	return classify(locator.Locator{}, err)
}

// Clear implements driver.Element.
func (e *element) Clear() error {
	err := e.handle.Fill("", playwright.ElementHandleFillOptions{
		Timeout: playwright.Float(actionTimeoutMillis),
	})
	return classify(locator.Locator{}, err)
}

// Text implements driver.Element.
func (e *element) Text() (string, error) {
	text, err := e.handle.TextContent()
	if err != nil {
		return "", classify(locator.Locator{}, err)
	}
	return strings.TrimSpace(text), nil
}

// TagName implements driver.Element. It is also the cache's staleness
// probe, and a detached handle fails the evaluation with the message
// classify maps to Stale.
func (e *element) TagName() (string, error) {
	result, err := e.handle.Evaluate("el => el.tagName.toLowerCase()")
	if err != nil {
		return "", classify(locator.Locator{}, err)
	}
	tag, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("unexpected tag name result %T", result)
	}
	return tag, nil
}

// Attribute implements driver.Element. A missing attribute reads as
// empty, matching the other drivers.
func (e *element) Attribute(name string) (string, error) {
	value, err := e.handle.GetAttribute(name)
	if err != nil {
		return "", classify(locator.Locator{}, err)
	}
	return value, nil
}

// Displayed implements driver.Element.
func (e *element) Displayed() (bool, error) {
	visible, err := e.handle.IsVisible()
	if err != nil {
		return false, classify(locator.Locator{}, err)
	}
	return visible, nil
}

// Enabled implements driver.Element.
func (e *element) Enabled() (bool, error) {
	enabled, err := e.handle.IsEnabled()
	if err != nil {
		return false, classify(locator.Locator{}, err)
	}
	return enabled, nil
}

// SetInlineStyle implements driver.Styler for the highlight decorator.
func (e *element) SetInlineStyle(css string) error {
	_, err := e.handle.Evaluate("(el, css) => el.setAttribute('style', css)", css)
	return classify(locator.Locator{}, err)
}
