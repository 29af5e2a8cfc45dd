// Package main provides the anchor smoke-check CLI. It opens a real
// browser, visits a site and waits for a locator to become ready,
// which makes it a quick end-to-end probe of a deployment and a
// worked example of wiring the engine together: configuration
// discovery, structured trace logging and the decorator chain.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/entrhq/anchor/pkg/config"
	"github.com/entrhq/anchor/pkg/decorate"
	"github.com/entrhq/anchor/pkg/driver"
	"github.com/entrhq/anchor/pkg/driver/chromedrv"
	"github.com/entrhq/anchor/pkg/driver/playwrightdrv"
	"github.com/entrhq/anchor/pkg/locator"
	"github.com/entrhq/anchor/pkg/logging"
	"github.com/entrhq/anchor/pkg/page"
	"github.com/entrhq/anchor/pkg/session"
	"github.com/entrhq/anchor/pkg/wait"
)

const version = "0.1.0"

// CLIConfig holds command-line configuration.
type CLIConfig struct {
	URL         string
	Selector    string
	Browser     string
	ConfigFile  string
	Timeout     time.Duration
	ShowVersion bool
}

func main() {
	cli := parseFlags()

	if cli.ShowVersion {
		fmt.Printf("anchor-demo v%s\n", version)
		return
	}
	if err := cli.validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	if err := run(cli); err != nil {
		fmt.Fprintln(os.Stderr, "anchor-demo:", err)
		os.Exit(1)
	}
	fmt.Println("ready:", cli.Selector)
}

func parseFlags() *CLIConfig {
	cli := &CLIConfig{}

	flag.StringVar(&cli.URL, "url", "", "URL of the site to check (required)")
	flag.StringVar(&cli.Selector, "selector", "body", "CSS selector that must become visible")
	flag.StringVar(&cli.Browser, "browser", "playwright", "browser backend: playwright or chrome")
	flag.StringVar(&cli.ConfigFile, "config", "", "path to an anchor config file (YAML)")
	flag.DurationVar(&cli.Timeout, "timeout", 0, "override the configured wait timeout")
	flag.BoolVar(&cli.ShowVersion, "version", false, "show version and exit")
	flag.Parse()

	return cli
}

func (c *CLIConfig) validate() error {
	if c.URL == "" {
		return fmt.Errorf("-url is required")
	}
	if c.Browser != "playwright" && c.Browser != "chrome" {
		return fmt.Errorf("unknown browser %q", c.Browser)
	}
	return nil
}

func run(cli *CLIConfig) error {
	if cli.ConfigFile != "" {
		config.Register(config.NewFileProvider(cli.ConfigFile))
	}
	project, err := config.Load()
	if err != nil {
		return err
	}

	policy := project.WaitPolicy()
	if cli.Timeout > 0 {
		policy.Timeout = cli.Timeout
	}

	logger, err := logging.New("anchor-demo")
	if err != nil {
		return err
	}
	defer logger.Close()

	drv, err := openBrowser(cli.Browser, project)
	if err != nil {
		return err
	}
	defer drv.Quit()

	decorators := []decorate.Decorator{
		decorate.NewTrace(logger),
		decorate.NewTrace(decorate.NewConsoleSink(os.Stdout)),
	}
	if !project.Headless {
		decorators = append(decorators,
			decorate.NewHighlight(project.HighlightStyle),
			decorate.NewSlowMotion(project.SlowMotion),
		)
	}

	site, err := page.NewSite("target", cli.URL, page.SiteOptions{
		Policy:     policy,
		Decorators: decorate.NewChain(decorators...),
	})
	if err != nil {
		return err
	}

	return site.Visit(drv, func(sess *session.Session) error {
		p, err := page.New(sess, site, "landing", page.PageOptions{
			ReadyLocator:   locator.CSS(cli.Selector),
			ReadyCondition: wait.Displayed(),
		})
		if err != nil {
			return err
		}
		return p.Ready()
	})
}

func openBrowser(backend string, project *config.Project) (driver.Driver, error) {
	switch backend {
	case "chrome":
		return chromedrv.New(chromedrv.Options{Headless: project.Headless})
	default:
		return playwrightdrv.Launch(playwrightdrv.Options{Headless: project.Headless})
	}
}
