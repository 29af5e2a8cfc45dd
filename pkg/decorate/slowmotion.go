package decorate

import "time"

// SlowMotion inserts a fixed delay before every wrapped operation so
// a human can follow the test in a headed browser.
type SlowMotion struct {
	delay time.Duration
}

// NewSlowMotion creates a slow-motion decorator. Non-positive delays
// disable it.
func NewSlowMotion(delay time.Duration) *SlowMotion {
	return &SlowMotion{delay: delay}
}

// Wrap implements Decorator.
func (s *SlowMotion) Wrap(call Call, op Operation) Operation {
	if s.delay <= 0 {
		return op
	}
	return func() error {
		time.Sleep(s.delay)
		return op()
	}
}
