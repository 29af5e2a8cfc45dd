package memdriver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/anchor/pkg/driver"
	"github.com/entrhq/anchor/pkg/locator"
)

const indexHTML = `<!DOCTYPE html>
<html><body>
  <h1 id="title" class="headline big">Welcome</h1>
  <form>
    <input id="user" name="username" value="">
    <input id="pass" name="password" value="">
    <button id="submit" class="btn">Sign in</button>
    <button id="ghost" disabled>Disabled</button>
  </form>
  <div hidden><span id="hidden-child">secret</span></div>
  <div style="display: none"><span id="styled-hidden">also secret</span></div>
  <ul id="nav">
    <li><a href="https://example.test/docs">Documentation</a></li>
    <li><a href="https://example.test/about">About us</a></li>
  </ul>
  <div id="overlayed" data-click-intercepted>Blocked</div>
</body></html>`

const docsHTML = `<html><body><h1 id="title">Docs</h1></body></html>`

func newNavigated(t *testing.T) *Driver {
	t.Helper()
	d := New(map[string]string{
		"https://example.test":      indexHTML,
		"https://example.test/docs": docsHTML,
	})
	require.NoError(t, d.Navigate("https://example.test"))
	return d
}

func TestFindByStrategies(t *testing.T) {
	d := newNavigated(t)

	tests := []struct {
		name    string
		loc     locator.Locator
		wantTag string
	}{
		{name: "by id", loc: locator.ID("title"), wantTag: "h1"},
		{name: "by name", loc: locator.Name("username"), wantTag: "input"},
		{name: "by class", loc: locator.ClassName("headline"), wantTag: "h1"},
		{name: "by css", loc: locator.CSS("form > button.btn"), wantTag: "button"},
		{name: "by tag", loc: locator.TagName("form"), wantTag: "form"},
		{name: "by link text", loc: locator.LinkText("About us"), wantTag: "a"},
		{name: "by partial link text", loc: locator.PartialLinkText("Document"), wantTag: "a"},
		{name: "id or name hits id", loc: locator.IDOrName("user"), wantTag: "input"},
		{name: "id or name falls back to name", loc: locator.IDOrName("password"), wantTag: "input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			el, err := d.Find(tt.loc)
			require.NoError(t, err)
			tag, err := el.TagName()
			require.NoError(t, err)
			assert.Equal(t, tt.wantTag, tag)
		})
	}
}

func TestFindMissingIsNotFound(t *testing.T) {
	d := newNavigated(t)
	_, err := d.Find(locator.ID("nope"))
	assert.True(t, driver.IsNotFound(err))
}

func TestFindAllAndScopedFind(t *testing.T) {
	d := newNavigated(t)

	links, err := d.FindAll(locator.CSS("#nav a"))
	require.NoError(t, err)
	assert.Len(t, links, 2)

	nav, err := d.Find(locator.ID("nav"))
	require.NoError(t, err)
	scoped, err := nav.FindAll(locator.TagName("a"))
	require.NoError(t, err)
	assert.Len(t, scoped, 2)

	// Scoped search does not see nodes outside the subtree.
	_, err = nav.Find(locator.ID("submit"))
	assert.True(t, driver.IsNotFound(err))
}

func TestXPathIsUnsupportedAndFatal(t *testing.T) {
	d := newNavigated(t)
	_, err := d.Find(locator.XPath("//h1"))
	require.Error(t, err)
	_, classified := driver.KindOf(err)
	assert.False(t, classified, "xpath failure must not look retryable")
}

func TestInvalidLocatorSurfaces(t *testing.T) {
	d := newNavigated(t)
	_, err := d.Find(locator.ID(""))
	var invalid *locator.InvalidLocatorError
	assert.ErrorAs(t, err, &invalid)
}

func TestElementStateReads(t *testing.T) {
	d := newNavigated(t)

	title, err := d.Find(locator.ID("title"))
	require.NoError(t, err)

	text, err := title.Text()
	require.NoError(t, err)
	assert.Equal(t, "Welcome", text)

	class, err := title.Attribute("class")
	require.NoError(t, err)
	assert.Equal(t, "headline big", class)

	shown, err := title.Displayed()
	require.NoError(t, err)
	assert.True(t, shown)

	enabled, err := title.Enabled()
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestHiddenDetection(t *testing.T) {
	d := newNavigated(t)

	for _, id := range []string{"hidden-child", "styled-hidden"} {
		el, err := d.Find(locator.ID(id))
		require.NoError(t, err)
		shown, err := el.Displayed()
		require.NoError(t, err)
		assert.False(t, shown, "%s should inherit ancestor hiding", id)
	}
}

func TestSendKeysAndClear(t *testing.T) {
	d := newNavigated(t)

	user, err := d.Find(locator.ID("user"))
	require.NoError(t, err)

	require.NoError(t, user.SendKeys("alice"))
	require.NoError(t, user.SendKeys("@example.test"))
	value, err := user.Attribute("value")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.test", value)

	require.NoError(t, user.Clear())
	value, err = user.Attribute("value")
	require.NoError(t, err)
	assert.Empty(t, value)
}

func TestClickRecordsAndClassifies(t *testing.T) {
	d := newNavigated(t)

	submit, err := d.Find(locator.ID("submit"))
	require.NoError(t, err)
	require.NoError(t, submit.Click())
	require.NoError(t, submit.Click())
	clicks, err := submit.Attribute("data-clicks")
	require.NoError(t, err)
	assert.Equal(t, "2", clicks)

	ghost, err := d.Find(locator.ID("ghost"))
	require.NoError(t, err)
	kind, ok := driver.KindOf(ghost.Click())
	require.True(t, ok)
	assert.Equal(t, driver.NotInteractable, kind)

	overlayed, err := d.Find(locator.ID("overlayed"))
	require.NoError(t, err)
	kind, ok = driver.KindOf(overlayed.Click())
	require.True(t, ok)
	assert.Equal(t, driver.ClickIntercepted, kind)
}

func TestAnchorClickNavigates(t *testing.T) {
	d := newNavigated(t)

	docs, err := d.Find(locator.LinkText("Documentation"))
	require.NoError(t, err)
	require.NoError(t, docs.Click())

	url, err := d.CurrentURL()
	require.NoError(t, err)
	assert.Equal(t, "https://example.test/docs", url)

	title, err := d.Find(locator.ID("title"))
	require.NoError(t, err)
	text, err := title.Text()
	require.NoError(t, err)
	assert.Equal(t, "Docs", text)
}

func TestDocumentSwapStalesHandles(t *testing.T) {
	d := newNavigated(t)

	title, err := d.Find(locator.ID("title"))
	require.NoError(t, err)

	require.NoError(t, d.SetDocument(docsHTML))

	_, err = title.TagName()
	assert.True(t, driver.IsStale(err))
	assert.True(t, driver.IsStale(title.Click()))
	_, err = title.Find(locator.TagName("a"))
	assert.True(t, driver.IsStale(err))

	// Re-finding after the swap yields a live handle.
	fresh, err := d.Find(locator.ID("title"))
	require.NoError(t, err)
	text, err := fresh.Text()
	require.NoError(t, err)
	assert.Equal(t, "Docs", text)
}

func TestSetInlineStyle(t *testing.T) {
	d := newNavigated(t)

	el, err := d.Find(locator.ID("submit"))
	require.NoError(t, err)

	styler, ok := el.(driver.Styler)
	require.True(t, ok)
	require.NoError(t, styler.SetInlineStyle("outline: 2px solid red;"))

	style, err := el.Attribute("style")
	require.NoError(t, err)
	assert.Equal(t, "outline: 2px solid red;", style)
}

func TestNavigateUnknownURLFails(t *testing.T) {
	d := newNavigated(t)
	assert.Error(t, d.Navigate("https://elsewhere.test"))
}

func TestCookiesRecorded(t *testing.T) {
	d := newNavigated(t)
	require.NoError(t, d.AddCookie(driver.Cookie{Name: "consent", Value: "yes"}))
	require.Len(t, d.Cookies(), 1)
	assert.Equal(t, "consent", d.Cookies()[0].Name)
}

func TestQuitClosesDriver(t *testing.T) {
	d := newNavigated(t)
	el, err := d.Find(locator.ID("title"))
	require.NoError(t, err)

	require.NoError(t, d.Quit())

	_, err = d.Find(locator.ID("title"))
	assert.Error(t, err)
	_, err = el.Text()
	assert.Error(t, err)
	assert.Error(t, d.Navigate("https://example.test"))
}
