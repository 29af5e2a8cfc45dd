package decorate

import (
	"github.com/entrhq/anchor/pkg/driver"
)

// DefaultHighlightStyle is the outline applied when no style is
// configured.
const DefaultHighlightStyle = "outline: 2px solid red;"

// Highlight flashes a transient inline style on the element an action
// targets: apply style, run the action, restore the previous style.
// It scopes itself to actions, so pure lookups and reads pass through
// untouched, and it restores the style even when the action fails,
// then re-propagates the failure.
type Highlight struct {
	style string
}

// NewHighlight creates a highlight decorator. An empty style selects
// DefaultHighlightStyle.
func NewHighlight(style string) *Highlight {
	if style == "" {
		style = DefaultHighlightStyle
	}
	return &Highlight{style: style}
}

// Wrap implements Decorator.
func (h *Highlight) Wrap(call Call, op Operation) Operation {
	if call.Kind != CallAction || call.Subject == nil {
		return op
	}
	styler, ok := call.Subject.(driver.Styler)
	if !ok {
		// Driver cannot mutate inline styles; highlighting is a
		// no-op rather than an error.
		return op
	}

	return func() error {
		previous, attrErr := call.Subject.Attribute("style")
		if attrErr != nil {
			// The handle is unusable (e.g. stale); let the wrapped
			// action surface the real failure.
			return op()
		}
		if err := styler.SetInlineStyle(h.style); err != nil {
			return op()
		}
		defer func() {
			_ = styler.SetInlineStyle(previous)
		}()
		return op()
	}
}
