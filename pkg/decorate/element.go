package decorate

import (
	"github.com/entrhq/anchor/pkg/driver"
	"github.com/entrhq/anchor/pkg/locator"
)

// WrapElement returns an element whose every call runs through the
// chain. Child lookups return wrapped elements as well, so a handle
// obtained anywhere under a decorated page stays decorated.
func WrapElement(el driver.Element, chain Chain, loc locator.Locator, session string) driver.Element {
	if chain.Len() == 0 {
		return el
	}
	return &decoratedElement{inner: el, chain: chain, loc: loc, session: session}
}

type decoratedElement struct {
	inner   driver.Element
	chain   Chain
	loc     locator.Locator
	session string
}

// Unwrap exposes the underlying driver element, mainly for tests.
func (d *decoratedElement) Unwrap() driver.Element { return d.inner }

func (d *decoratedElement) call(kind CallKind, name string, loc locator.Locator) Call {
	return Call{
		Kind:    kind,
		Name:    name,
		Locator: loc,
		Subject: d.inner,
		Session: d.session,
	}
}

func (d *decoratedElement) Find(loc locator.Locator) (driver.Element, error) {
	var child driver.Element
	err := d.chain.Apply(d.call(CallResolve, "find", loc), func() error {
		var err error
		child, err = d.inner.Find(loc)
		return err
	})
	if err != nil {
		return nil, err
	}
	return WrapElement(child, d.chain, loc, d.session), nil
}

func (d *decoratedElement) FindAll(loc locator.Locator) ([]driver.Element, error) {
	var children []driver.Element
	err := d.chain.Apply(d.call(CallResolve, "find_all", loc), func() error {
		var err error
		children, err = d.inner.FindAll(loc)
		return err
	})
	if err != nil {
		return nil, err
	}
	wrapped := make([]driver.Element, len(children))
	for i, child := range children {
		wrapped[i] = WrapElement(child, d.chain, loc, d.session)
	}
	return wrapped, nil
}

func (d *decoratedElement) Click() error {
	return d.chain.Apply(d.call(CallAction, "click", d.loc), d.inner.Click)
}

func (d *decoratedElement) SendKeys(text string) error {
	return d.chain.Apply(d.call(CallAction, "send_keys", d.loc), func() error {
		return d.inner.SendKeys(text)
	})
}

func (d *decoratedElement) Clear() error {
	return d.chain.Apply(d.call(CallAction, "clear", d.loc), d.inner.Clear)
}

func (d *decoratedElement) Text() (string, error) {
	var text string
	err := d.chain.Apply(d.call(CallRead, "text", d.loc), func() error {
		var err error
		text, err = d.inner.Text()
		return err
	})
	return text, err
}

func (d *decoratedElement) TagName() (string, error) {
	var tag string
	err := d.chain.Apply(d.call(CallRead, "tag_name", d.loc), func() error {
		var err error
		tag, err = d.inner.TagName()
		return err
	})
	return tag, err
}

func (d *decoratedElement) Attribute(name string) (string, error) {
	var value string
	err := d.chain.Apply(d.call(CallRead, "attribute", d.loc), func() error {
		var err error
		value, err = d.inner.Attribute(name)
		return err
	})
	return value, err
}

func (d *decoratedElement) Displayed() (bool, error) {
	var shown bool
	err := d.chain.Apply(d.call(CallRead, "displayed", d.loc), func() error {
		var err error
		shown, err = d.inner.Displayed()
		return err
	})
	return shown, err
}

func (d *decoratedElement) Enabled() (bool, error) {
	var enabled bool
	err := d.chain.Apply(d.call(CallRead, "enabled", d.loc), func() error {
		var err error
		enabled, err = d.inner.Enabled()
		return err
	})
	return enabled, err
}
