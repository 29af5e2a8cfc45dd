package chromedrv

import (
	"fmt"

	"github.com/chromedp/chromedp"

	"github.com/entrhq/anchor/pkg/locator"
)

// queryFor translates a locator into a chromedp selector and query
// option. Text-matching strategies and raw XPath go through the
// DevTools search API; everything else is a CSS query.
func queryFor(loc locator.Locator) (string, chromedp.QueryOption) {
	switch loc.Strategy() {
	case locator.ByXPath:
		return loc.Value(), chromedp.BySearch
	case locator.ByLinkText:
		return fmt.Sprintf("//a[normalize-space(.)=%q]", loc.Value()), chromedp.BySearch
	case locator.ByPartialLinkText:
		return fmt.Sprintf("//a[contains(normalize-space(.), %q)]", loc.Value()), chromedp.BySearch
	default:
		return cssFor(loc), chromedp.ByQueryAll
	}
}

func cssFor(loc locator.Locator) string {
	switch loc.Strategy() {
	case locator.ByID:
		return fmt.Sprintf("[id=%q]", loc.Value())
	case locator.ByName:
		return fmt.Sprintf("[name=%q]", loc.Value())
	case locator.ByIDOrName:
		return fmt.Sprintf("[id=%q], [name=%q]", loc.Value(), loc.Value())
	case locator.ByClassName:
		return fmt.Sprintf("[class~=%q]", loc.Value())
	case locator.ByTagName:
		return loc.Value()
	default: // ByCSSSelector
		return loc.Value()
	}
}
