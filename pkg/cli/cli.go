// Package cli provides the wt-automation command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/aquariux/wt-automation/pkg/config"
	"github.com/aquariux/wt-automation/pkg/logger"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "env",
		Aliases: []string{"e"},
		Usage:   "Environment to use (sit, release_sit, uat)",
		Value:   "sit",
		EnvVars: []string{"WT_ENV"},
	},
	&cli.StringFlag{
		Name:    "client",
		Usage:   "Client to test (lirunex, transactionCloud), defaults to the config's client",
		EnvVars: []string{"WT_CLIENT"},
	},
	&cli.StringFlag{
		Name:    "platform",
		Aliases: []string{"p"},
		Usage:   "Platform to run on (web, android, ios)",
		Value:   "web",
		EnvVars: []string{"WT_PLATFORM"},
	},
	&cli.StringFlag{
		Name:    "browser",
		Usage:   "Browser for web tests (chrome, firefox, safari)",
		Value:   "chrome",
		EnvVars: []string{"WT_BROWSER"},
	},
	&cli.StringFlag{
		Name:    "config-dir",
		Usage:   "Directory holding <env>.yaml files",
		EnvVars: []string{"WT_CONFIG_DIR"},
	},
	&cli.StringFlag{
		Name:    "results-dir",
		Aliases: []string{"alluredir"},
		Usage:   "Allure results directory",
		Value:   "allure-results",
		EnvVars: []string{"WT_RESULTS_DIR"},
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable debug logging",
		EnvVars: []string{"WT_VERBOSE"},
	},
	&cli.BoolFlag{
		Name:  "no-ansi",
		Usage: "Disable ANSI colors",
	},
}

// NewApp builds the command tree.
func NewApp() *cli.App {
	return &cli.App{
		Name:    "wt-automation",
		Usage:   "Allure post-processing and driver tooling for WebTrader UI tests",
		Version: Version,
		Description: `wt-automation prepares and repairs the Allure results written by the
WebTrader UI test suites.

Examples:
  wt-automation report --results-dir allure-results
  wt-automation env --env uat --client lirunex --platform web
  wt-automation status --url http://localhost:4723/wd/hub`,
		Flags:  GlobalFlags,
		Before: setupLogging,
		Commands: []*cli.Command{
			reportCommand,
			envCommand,
			cleanCommand,
			statusCommand,
			configCommand,
		},
	}
}

func setupLogging(c *cli.Context) error {
	logger.SetNoColor(c.Bool("no-ansi"))
	level := "info"
	if c.Bool("verbose") {
		level = "debug"
	}
	return logger.SetLevel(level)
}

// configDir returns --config-dir or <home>/config.
func configDir(c *cli.Context) string {
	if dir := c.String("config-dir"); dir != "" {
		return dir
	}
	return config.ConfigDir()
}

// Execute runs the CLI.
func Execute() {
	if err := NewApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
