package page

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/entrhq/anchor/pkg/driver"
	"github.com/entrhq/anchor/pkg/wait"
)

// siteSpec is the YAML shape of one declarative site definition.
// Durations are strings ("5s", "250ms") because YAML has no native
// duration scalar.
type siteSpec struct {
	BaseURL      string          `yaml:"base_url"`
	Timeout      string          `yaml:"timeout,omitempty"`
	PollInterval string          `yaml:"poll_interval,omitempty"`
	ReadyURL     string          `yaml:"ready_url,omitempty"`
	Cookies      []driver.Cookie `yaml:"cookies,omitempty"`
}

type sitesFile struct {
	Sites map[string]siteSpec `yaml:"sites"`
}

// LoadSites reads declarative site definitions from a YAML file.
// Decorators and hooks cannot be declared in data; attach them by
// rebuilding the site with NewSite when needed.
func LoadSites(path string) (map[string]*Site, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading site definitions: %w", err)
	}
	return ParseSites(data)
}

// ParseSites parses YAML site definitions.
func ParseSites(data []byte) (map[string]*Site, error) {
	var file sitesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing site definitions: %w", err)
	}
	if len(file.Sites) == 0 {
		return nil, fmt.Errorf("site definitions contain no sites")
	}

	sites := make(map[string]*Site, len(file.Sites))
	for name, spec := range file.Sites {
		policy, err := specPolicy(name, spec)
		if err != nil {
			return nil, err
		}
		site, err := NewSite(name, spec.BaseURL, SiteOptions{
			Policy:   policy,
			Cookies:  spec.Cookies,
			ReadyURL: spec.ReadyURL,
		})
		if err != nil {
			return nil, err
		}
		sites[name] = site
	}
	return sites, nil
}

func specPolicy(name string, spec siteSpec) (wait.Policy, error) {
	var policy wait.Policy
	if spec.Timeout != "" {
		d, err := time.ParseDuration(spec.Timeout)
		if err != nil {
			return policy, fmt.Errorf("site %q: parsing timeout: %w", name, err)
		}
		policy.Timeout = d
	}
	if spec.PollInterval != "" {
		d, err := time.ParseDuration(spec.PollInterval)
		if err != nil {
			return policy, fmt.Errorf("site %q: parsing poll interval: %w", name, err)
		}
		policy.PollInterval = d
	}
	return policy, nil
}
