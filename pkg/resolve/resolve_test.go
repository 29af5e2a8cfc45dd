package resolve

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/anchor/pkg/driver"
	"github.com/entrhq/anchor/pkg/locator"
	"github.com/entrhq/anchor/pkg/wait"
)

// fakeElement is a minimal element whose readiness is a plain flag.
type fakeElement struct {
	id        string
	displayed bool
}

func (f *fakeElement) Find(locator.Locator) (driver.Element, error)      { return nil, nil }
func (f *fakeElement) FindAll(locator.Locator) ([]driver.Element, error) { return nil, nil }
func (f *fakeElement) Click() error                                      { return nil }
func (f *fakeElement) SendKeys(string) error                             { return nil }
func (f *fakeElement) Clear() error                                      { return nil }
func (f *fakeElement) Text() (string, error)                             { return "", nil }
func (f *fakeElement) TagName() (string, error)                          { return "div", nil }
func (f *fakeElement) Attribute(string) (string, error)                  { return "", nil }
func (f *fakeElement) Displayed() (bool, error)                          { return f.displayed, nil }
func (f *fakeElement) Enabled() (bool, error)                            { return true, nil }

// scriptedRoot replays a fixed sequence of lookup results, one per
// attempt, repeating the final entry once the script runs out.
type scriptedRoot struct {
	attempts int
	script   []func() (driver.Element, error)
	list     []func() ([]driver.Element, error)
}

func (s *scriptedRoot) Find(locator.Locator) (driver.Element, error) {
	i := s.attempts
	s.attempts++
	if i >= len(s.script) {
		i = len(s.script) - 1
	}
	return s.script[i]()
}

func (s *scriptedRoot) FindAll(locator.Locator) ([]driver.Element, error) {
	i := s.attempts
	s.attempts++
	if i >= len(s.list) {
		i = len(s.list) - 1
	}
	return s.list[i]()
}

func found(el driver.Element) func() (driver.Element, error) {
	return func() (driver.Element, error) { return el, nil }
}

func missing(loc locator.Locator) func() (driver.Element, error) {
	return func() (driver.Element, error) {
		return nil, driver.NewFailure(driver.NotFound, loc, nil)
	}
}

// testPolicy keeps the suite fast: 5ms polls with a 60ms timeout.
func testPolicy() wait.Policy {
	return wait.Policy{
		Timeout:      60 * time.Millisecond,
		PollInterval: 5 * time.Millisecond,
		Ignore:       []driver.FailureKind{driver.NotFound, driver.Stale},
	}
}

func TestOneReturnsElementOnceReady(t *testing.T) {
	loc := locator.ID("login")
	el := &fakeElement{id: "login", displayed: true}
	root := &scriptedRoot{script: []func() (driver.Element, error){
		missing(loc),
		missing(loc),
		found(el),
	}}

	got, err := One(root, loc, testPolicy(), wait.Present())
	require.NoError(t, err)
	assert.Same(t, el, got)
	assert.Equal(t, 3, root.attempts)
}

func TestOneWallTimeTracksPollCadence(t *testing.T) {
	loc := locator.ID("slow")
	el := &fakeElement{displayed: true}
	// Ready on the third attempt, i.e. after two poll sleeps.
	root := &scriptedRoot{script: []func() (driver.Element, error){
		missing(loc),
		missing(loc),
		found(el),
	}}

	policy := testPolicy()
	start := time.Now()
	_, err := One(root, loc, policy, wait.Present())
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, elapsed, 2*policy.PollInterval)
	assert.Less(t, elapsed, 2*policy.PollInterval+policy.PollInterval+20*time.Millisecond)
}

func TestOneTimesOutWithinOnePollInterval(t *testing.T) {
	loc := locator.ID("never")
	root := &scriptedRoot{script: []func() (driver.Element, error){missing(loc)}}

	policy := testPolicy()
	start := time.Now()
	_, err := One(root, loc, policy, wait.Present())
	elapsed := time.Since(start)

	var timeout *TimeoutError
	require.True(t, errors.As(err, &timeout))
	assert.Equal(t, loc, timeout.Locator)
	assert.True(t, driver.IsNotFound(timeout.LastFailure))
	assert.GreaterOrEqual(t, elapsed, policy.Timeout)
	assert.Less(t, elapsed, policy.Timeout+policy.PollInterval+20*time.Millisecond)
}

func TestOneRetriesWhileConditionFalse(t *testing.T) {
	loc := locator.ID("spinner")
	hidden := &fakeElement{displayed: false}
	shown := &fakeElement{displayed: true}
	root := &scriptedRoot{script: []func() (driver.Element, error){
		found(hidden),
		found(hidden),
		found(shown),
	}}

	got, err := One(root, loc, testPolicy(), wait.Displayed())
	require.NoError(t, err)
	assert.Same(t, shown, got)
}

func TestOneConditionNeverMetCarriesReason(t *testing.T) {
	loc := locator.ID("spinner")
	hidden := &fakeElement{displayed: false}
	root := &scriptedRoot{script: []func() (driver.Element, error){found(hidden)}}

	_, err := One(root, loc, testPolicy(), wait.Displayed())

	var timeout *TimeoutError
	require.True(t, errors.As(err, &timeout))
	assert.Contains(t, timeout.Error(), "condition not met")
}

func TestOneStaleDuringConditionIsRetried(t *testing.T) {
	loc := locator.ID("refreshing")
	el := &fakeElement{displayed: true}
	stale := func() (driver.Element, error) {
		return nil, driver.NewFailure(driver.Stale, loc, nil)
	}
	root := &scriptedRoot{script: []func() (driver.Element, error){stale, found(el)}}

	got, err := One(root, loc, testPolicy(), wait.Present())
	require.NoError(t, err)
	assert.Same(t, el, got)
}

func TestOneFatalFailurePropagatesImmediately(t *testing.T) {
	loc := locator.ID("blocked")
	intercepted := driver.NewFailure(driver.ClickIntercepted, loc, errors.New("overlay"))
	root := &scriptedRoot{script: []func() (driver.Element, error){
		func() (driver.Element, error) { return nil, intercepted },
	}}

	start := time.Now()
	_, err := One(root, loc, testPolicy(), wait.Present())

	assert.ErrorIs(t, err, intercepted)
	assert.Equal(t, 1, root.attempts)
	assert.Less(t, time.Since(start), testPolicy().Timeout)
}

func TestOneUnclassifiedErrorIsFatal(t *testing.T) {
	loc := locator.ID("broken")
	raw := errors.New("driver exploded")
	root := &scriptedRoot{script: []func() (driver.Element, error){
		func() (driver.Element, error) { return nil, raw },
	}}

	_, err := One(root, loc, testPolicy(), wait.Present())
	assert.ErrorIs(t, err, raw)
	assert.Equal(t, 1, root.attempts)
}

func TestOneInvalidLocatorFailsWithoutAttempt(t *testing.T) {
	root := &scriptedRoot{script: []func() (driver.Element, error){
		found(&fakeElement{}),
	}}

	_, err := One(root, locator.ID(""), testPolicy(), wait.Present())

	var invalid *locator.InvalidLocatorError
	assert.True(t, errors.As(err, &invalid))
	assert.Zero(t, root.attempts)
}

func TestOneRespectsEmptyIgnoreSet(t *testing.T) {
	loc := locator.ID("strict")
	notFound := driver.NewFailure(driver.NotFound, loc, nil)
	root := &scriptedRoot{script: []func() (driver.Element, error){
		func() (driver.Element, error) { return nil, notFound },
	}}

	policy := testPolicy()
	policy.Ignore = []driver.FailureKind{}
	_, err := One(root, loc, policy, wait.Present())

	assert.ErrorIs(t, err, notFound)
	assert.Equal(t, 1, root.attempts)
}

func TestAllWaitsForCollectionCondition(t *testing.T) {
	loc := locator.CSS("li.result")
	one := []driver.Element{&fakeElement{displayed: true}}
	three := []driver.Element{
		&fakeElement{displayed: true},
		&fakeElement{displayed: true},
		&fakeElement{displayed: true},
	}
	root := &scriptedRoot{list: []func() ([]driver.Element, error){
		func() ([]driver.Element, error) { return nil, nil },
		func() ([]driver.Element, error) { return one, nil },
		func() ([]driver.Element, error) { return three, nil },
	}}

	got, err := All(root, loc, testPolicy(), wait.CountAtLeast(3))
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestAllJudgesWholeCollectionEachCheck(t *testing.T) {
	loc := locator.CSS("li")
	mixed := []driver.Element{&fakeElement{displayed: true}, &fakeElement{displayed: false}}
	allShown := []driver.Element{&fakeElement{displayed: true}, &fakeElement{displayed: true}}
	root := &scriptedRoot{list: []func() ([]driver.Element, error){
		func() ([]driver.Element, error) { return mixed, nil },
		func() ([]driver.Element, error) { return allShown, nil },
	}}

	got, err := All(root, loc, testPolicy(), wait.Every(wait.Displayed()))
	require.NoError(t, err)
	assert.Equal(t, allShown, got)
}

func TestAllTimeoutMentionsElementCount(t *testing.T) {
	loc := locator.CSS("li")
	one := []driver.Element{&fakeElement{}}
	root := &scriptedRoot{list: []func() ([]driver.Element, error){
		func() ([]driver.Element, error) { return one, nil },
	}}

	_, err := All(root, loc, testPolicy(), wait.CountAtLeast(5))

	var timeout *TimeoutError
	require.True(t, errors.As(err, &timeout))
	assert.Contains(t, timeout.Error(), "1 elements")
}

func TestDefaultConditionsApplied(t *testing.T) {
	loc := locator.ID("x")
	el := &fakeElement{}
	root := &scriptedRoot{
		script: []func() (driver.Element, error){found(el)},
		list: []func() ([]driver.Element, error){
			func() ([]driver.Element, error) { return []driver.Element{el}, nil },
		},
	}

	got, err := One(root, loc, testPolicy(), nil)
	require.NoError(t, err)
	assert.Same(t, el, got)

	els, err := All(root, loc, testPolicy(), nil)
	require.NoError(t, err)
	assert.Len(t, els, 1)
}
