package wait

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/entrhq/anchor/pkg/driver"
)

func TestNormalizeFillsDefaults(t *testing.T) {
	p := Policy{}.Normalize()

	assert.Equal(t, DefaultTimeout, p.Timeout)
	assert.Equal(t, DefaultPollInterval, p.PollInterval)
	assert.True(t, p.Ignores(driver.NotFound))
	assert.True(t, p.Ignores(driver.Stale))
	assert.False(t, p.Ignores(driver.NotInteractable))
}

func TestNormalizeRestoresInvariants(t *testing.T) {
	tests := []struct {
		name         string
		policy       Policy
		wantTimeout  time.Duration
		wantInterval time.Duration
	}{
		{
			name:         "timeout below poll interval is raised",
			policy:       Policy{Timeout: 50 * time.Millisecond, PollInterval: 200 * time.Millisecond},
			wantTimeout:  200 * time.Millisecond,
			wantInterval: 200 * time.Millisecond,
		},
		{
			name:         "negative interval replaced",
			policy:       Policy{Timeout: time.Second, PollInterval: -1},
			wantTimeout:  time.Second,
			wantInterval: DefaultPollInterval,
		},
		{
			name:         "explicit values kept",
			policy:       Policy{Timeout: 2 * time.Second, PollInterval: 100 * time.Millisecond},
			wantTimeout:  2 * time.Second,
			wantInterval: 100 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.policy.Normalize()
			assert.Equal(t, tt.wantTimeout, got.Timeout)
			assert.Equal(t, tt.wantInterval, got.PollInterval)
			assert.GreaterOrEqual(t, got.Timeout, got.PollInterval)
		})
	}
}

func TestIgnoresRespectsExplicitEmptySet(t *testing.T) {
	p := Policy{Timeout: time.Second, PollInterval: 100 * time.Millisecond, Ignore: []driver.FailureKind{}}
	p = p.Normalize()

	assert.False(t, p.Ignores(driver.NotFound))
	assert.False(t, p.Ignores(driver.Stale))
}
