package playwrightdrv

import (
	"strings"

	"github.com/entrhq/anchor/pkg/driver"
	"github.com/entrhq/anchor/pkg/locator"
)

// classify maps a Playwright error to the engine's failure taxonomy.
// Playwright reports conditions in error message text rather than
// typed errors, so classification is substring matching over the
// phrases its protocol layer emits. Unrecognized errors pass through
// untouched; the engine treats them as fatal.
func classify(loc locator.Locator, err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "not attached to the dom"),
		strings.Contains(msg, "element was detached"):
		return driver.NewFailure(driver.Stale, loc, err)
	case strings.Contains(msg, "intercepts pointer events"):
		return driver.NewFailure(driver.ClickIntercepted, loc, err)
	case strings.Contains(msg, "element is not visible"),
		strings.Contains(msg, "element is not enabled"),
		strings.Contains(msg, "element is outside of the viewport"):
		return driver.NewFailure(driver.NotInteractable, loc, err)
	default:
		return err
	}
}
