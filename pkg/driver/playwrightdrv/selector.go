package playwrightdrv

import (
	"fmt"

	"github.com/entrhq/anchor/pkg/locator"
)

// selectorFor translates a locator to a Playwright selector string.
// Most strategies map to CSS; link text needs XPath because CSS
// cannot match on text content, and Playwright accepts both through
// the same selector argument with an engine prefix.
func selectorFor(loc locator.Locator) string {
	switch loc.Strategy() {
	case locator.ByID:
		return fmt.Sprintf("css=[id=%q]", loc.Value())
	case locator.ByName:
		return fmt.Sprintf("css=[name=%q]", loc.Value())
	case locator.ByIDOrName:
		return fmt.Sprintf("css=[id=%q], [name=%q]", loc.Value(), loc.Value())
	case locator.ByClassName:
		return fmt.Sprintf("css=[class~=%q]", loc.Value())
	case locator.ByTagName:
		return "css=" + loc.Value()
	case locator.ByLinkText:
		return fmt.Sprintf("xpath=//a[normalize-space(.)=%q]", loc.Value())
	case locator.ByPartialLinkText:
		return fmt.Sprintf("xpath=//a[contains(normalize-space(.), %q)]", loc.Value())
	case locator.ByXPath:
		return "xpath=" + loc.Value()
	default: // ByCSSSelector
		return "css=" + loc.Value()
	}
}
