package driver

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/entrhq/anchor/pkg/locator"
)

func TestFailureErrorMessage(t *testing.T) {
	raw := errors.New("no node for selector")
	f := NewFailure(NotFound, locator.ID("login"), raw)

	assert.Contains(t, f.Error(), "element not found")
	assert.Contains(t, f.Error(), `id="login"`)
	assert.Contains(t, f.Error(), "no node for selector")
	assert.ErrorIs(t, f, raw)
}

func TestFailureWithoutLocator(t *testing.T) {
	f := NewFailure(Stale, locator.Locator{}, nil)
	assert.Equal(t, "stale element", f.Error())
}

func TestKindOfClassifiesWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("clicking: %w", NewFailure(ClickIntercepted, locator.Locator{}, nil))

	kind, ok := KindOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, ClickIntercepted, kind)

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestIsHelpers(t *testing.T) {
	assert.True(t, IsNotFound(NewFailure(NotFound, locator.Locator{}, nil)))
	assert.True(t, IsStale(NewFailure(Stale, locator.Locator{}, nil)))
	assert.False(t, IsStale(NewFailure(NotFound, locator.Locator{}, nil)))
	assert.False(t, IsNotFound(nil))
}
