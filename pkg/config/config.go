// Package config implements service-loader style discovery of the
// project configuration: providers register themselves (typically
// from an init function or test setup), and Discover returns at most
// one configuration object or fails.
package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/entrhq/anchor/pkg/driver"
	"github.com/entrhq/anchor/pkg/wait"
)

// Project is the discovered project-wide configuration. Zero fields
// fall back to the engine defaults.
type Project struct {
	// Timeout is the project default resolution timeout.
	Timeout time.Duration `yaml:"timeout" env:"ANCHOR_TIMEOUT"`

	// PollInterval is the project default poll interval.
	PollInterval time.Duration `yaml:"poll_interval" env:"ANCHOR_POLL_INTERVAL"`

	// Headless controls whether real drivers launch without a window.
	Headless bool `yaml:"headless" env:"ANCHOR_HEADLESS"`

	// SlowMotion, when positive, delays every intercepted call.
	SlowMotion time.Duration `yaml:"slow_motion" env:"ANCHOR_SLOW_MOTION"`

	// HighlightStyle, when set, enables the highlight decorator with
	// the given inline style.
	HighlightStyle string `yaml:"highlight_style" env:"ANCHOR_HIGHLIGHT_STYLE"`
}

// Default returns the configuration used when discovery yields no
// provider.
func Default() *Project {
	return &Project{
		Timeout:      wait.DefaultTimeout,
		PollInterval: wait.DefaultPollInterval,
		Headless:     true,
	}
}

// WaitPolicy bridges the project configuration to a wait policy.
func (p *Project) WaitPolicy() wait.Policy {
	return wait.Policy{
		Timeout:      p.Timeout,
		PollInterval: p.PollInterval,
		Ignore:       []driver.FailureKind{driver.NotFound, driver.Stale},
	}.Normalize()
}

// Provider supplies one project configuration. Implementations must
// behave like singletons: Configuration is called at most once per
// discovery and must return a non-nil object.
type Provider interface {
	// Name identifies the provider in discovery errors.
	Name() string

	// Configuration returns the provider's configuration object.
	Configuration() (*Project, error)
}

var (
	mu        sync.Mutex
	providers []Provider
)

// Register adds a provider to the discovery set.
func Register(p Provider) {
	mu.Lock()
	defer mu.Unlock()
	providers = append(providers, p)
}

// Reset clears all registered providers. Intended for tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	providers = nil
}

// Discover resolves the project configuration: no providers yields
// nil (callers use Default), exactly one yields its configuration,
// and two or more is a DiscoveryError naming every candidate.
func Discover() (*Project, error) {
	mu.Lock()
	registered := make([]Provider, len(providers))
	copy(registered, providers)
	mu.Unlock()

	switch len(registered) {
	case 0:
		return nil, nil
	case 1:
		p := registered[0]
		cfg, err := p.Configuration()
		if err != nil {
			return nil, &DiscoveryError{
				Providers: []string{p.Name()},
				Reason:    err.Error(),
			}
		}
		if cfg == nil {
			return nil, &DiscoveryError{
				Providers: []string{p.Name()},
				Reason:    "provider returned no configuration object",
			}
		}
		return cfg, nil
	default:
		names := make([]string, len(registered))
		for i, p := range registered {
			names[i] = p.Name()
		}
		return nil, &DiscoveryError{
			Providers: names,
			Reason:    "more than one configuration provider registered",
		}
	}
}

// Load runs discovery and substitutes the defaults when nothing is
// registered.
func Load() (*Project, error) {
	cfg, err := Discover()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return Default(), nil
	}
	return cfg, nil
}

// DiscoveryError reports failed configuration discovery, naming every
// provider involved so a duplicate registration can be tracked down.
type DiscoveryError struct {
	Providers []string
	Reason    string
}

// Error implements the error interface.
func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("configuration discovery failed (%s): %s",
		strings.Join(e.Providers, ", "), e.Reason)
}
