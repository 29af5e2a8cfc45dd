package page

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/anchor/pkg/driver"
	"github.com/entrhq/anchor/pkg/driver/memdriver"
	"github.com/entrhq/anchor/pkg/session"
)

const homeHTML = `<html><body>
  <h1 id="title">Home</h1>
  <button id="cta">Get started</button>
</body></html>`

func newSite(t *testing.T, opts SiteOptions) *Site {
	t.Helper()
	s, err := NewSite("home", "https://app.test", opts)
	require.NoError(t, err)
	return s
}

func newDriver() *memdriver.Driver {
	return memdriver.New(map[string]string{
		"https://app.test": homeHTML,
	})
}

func TestNewSiteValidation(t *testing.T) {
	_, err := NewSite("x", "", SiteOptions{})
	assert.Error(t, err)

	_, err = NewSite("x", "https://app.test", SiteOptions{ReadyURL: "https://[bad"})
	assert.Error(t, err)
}

func TestVisitNavigatesAndBindsSession(t *testing.T) {
	drv := newDriver()
	site := newSite(t, SiteOptions{})

	err := site.Visit(drv, func(sess *session.Session) error {
		assert.Same(t, driver.Driver(drv), sess.Driver())
		assert.Equal(t, "home", sess.Site().Name())

		url, err := drv.CurrentURL()
		require.NoError(t, err)
		assert.Equal(t, "https://app.test", url)
		return nil
	})
	require.NoError(t, err)
	assert.False(t, session.Active())
}

// countingDriver observes navigations so the cookie double-navigation
// contract can be asserted.
type countingDriver struct {
	*memdriver.Driver
	navigations int
}

func (c *countingDriver) Navigate(url string) error {
	c.navigations++
	return c.Driver.Navigate(url)
}

func TestVisitAppliesCookiesWithSecondNavigation(t *testing.T) {
	drv := &countingDriver{Driver: newDriver()}
	site := newSite(t, SiteOptions{
		Cookies: []driver.Cookie{{Name: "consent", Value: "granted"}},
	})

	err := site.Visit(drv, func(sess *session.Session) error {
		cookies := drv.Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "consent", cookies[0].Name)
		return nil
	})
	require.NoError(t, err)
	// The domain must be loaded before cookies bind, so the base URL
	// is navigated once before and once after installing them.
	assert.Equal(t, 2, drv.navigations)
}

func TestVisitWithoutCookiesNavigatesOnce(t *testing.T) {
	drv := &countingDriver{Driver: newDriver()}
	site := newSite(t, SiteOptions{})

	err := site.Visit(drv, func(sess *session.Session) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, 1, drv.navigations)
}

func TestVisitPropagatesHookFailure(t *testing.T) {
	drv := newDriver()
	boom := errors.New("fixture load failed")
	site := newSite(t, SiteOptions{
		OnSessionReady: func(*session.Session) error { return boom },
	})

	err := site.Visit(drv, func(*session.Session) error {
		t.Fatal("visit callback must not run when the hook fails")
		return nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestVisitPropagatesNavigationFailure(t *testing.T) {
	drv := newDriver()
	site, err := NewSite("elsewhere", "https://unregistered.test", SiteOptions{})
	require.NoError(t, err)

	err = site.Visit(drv, func(*session.Session) error { return nil })
	assert.Error(t, err)
	assert.False(t, session.Active())
}

func TestMatchesReadyURL(t *testing.T) {
	site := newSite(t, SiteOptions{ReadyURL: "https://app.test/*"})
	assert.True(t, site.matchesReadyURL("https://app.test/dashboard"))
	assert.False(t, site.matchesReadyURL("https://evil.test/dashboard"))

	unrestricted := newSite(t, SiteOptions{})
	assert.True(t, unrestricted.matchesReadyURL("anything"))
}
