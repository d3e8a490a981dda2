package cli

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver"
	"github.com/urfave/cli/v2"

	"github.com/aquariux/wt-automation/pkg/config"
	"github.com/aquariux/wt-automation/pkg/driver"
	"github.com/aquariux/wt-automation/pkg/logger"
	"github.com/aquariux/wt-automation/pkg/report"
	"github.com/aquariux/wt-automation/pkg/webdriver"
)

var reportCommand = &cli.Command{
	Name:  "report",
	Usage: "Post-process every result file in the results directory",
	Description: `Normalizes zero-duration steps, keeps only the video attachment on each
result, renames tests from their full names and hides internal parameters.
Also writes categories.json.`,
	Action: func(c *cli.Context) error {
		dir := c.String("results-dir")
		p := &report.Processor{Dir: dir}
		n, err := p.Run()
		if err != nil {
			return err
		}
		if err := report.WriteCategories(dir); err != nil {
			return err
		}
		logger.Info("Processed %d result file(s) in %s", n, dir)
		fmt.Fprintf(c.App.Writer, "processed %d result file(s)\n", n)
		return nil
	},
}

var envCommand = &cli.Command{
	Name:  "env",
	Usage: "Write environment.properties into the results directory",
	Action: func(c *cli.Context) error {
		client := c.String("client")
		if client == "" {
			cfg, err := config.Load(configDir(c), c.String("env"))
			if err != nil {
				return fmt.Errorf("no --client given: %w", err)
			}
			client = cfg.ClientName()
		}

		e := report.Environment{
			Client:   client,
			Platform: c.String("platform"),
			Browser:  c.String("browser"),
			Env:      c.String("env"),
		}
		dir := c.String("results-dir")
		if err := report.WriteEnvironment(dir, e); err != nil {
			return err
		}
		for _, line := range e.Properties() {
			fmt.Fprintln(c.App.Writer, line)
		}
		return nil
	},
}

var cleanCommand = &cli.Command{
	Name:  "clean",
	Usage: "Remove .txt log attachments from the results directory",
	Action: func(c *cli.Context) error {
		n, err := report.CleanLogFiles(c.String("results-dir"))
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "removed %d log file(s)\n", n)
		return nil
	},
}

var statusCommand = &cli.Command{
	Name:  "status",
	Usage: "Probe a WebDriver or Appium endpoint",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "url",
			Usage: "Endpoint to query, defaults to Appium for mobile platforms and the grid for web",
		},
	},
	Action: func(c *cli.Context) error {
		url := c.String("url")
		if url == "" {
			url = driver.DefaultGridURL
			if strings.ToLower(c.String("platform")) != string(driver.PlatformWeb) {
				url = driver.DefaultAppiumURL
			}
		}

		st, err := webdriver.NewClient(url).Status()
		if err != nil {
			return fmt.Errorf("%s: %w", url, err)
		}

		fmt.Fprintf(c.App.Writer, "url:     %s\nready:   %t\n", url, st.Ready)
		if st.Message != "" {
			fmt.Fprintf(c.App.Writer, "message: %s\n", st.Message)
		}
		if st.Version != "" {
			fmt.Fprintf(c.App.Writer, "version: %s\n", st.Version)
			if v, err := semver.NewVersion(st.Version); err == nil && v.Major() < 2 {
				fmt.Fprintln(c.App.Writer, "warning: server is older than 2.0")
			}
		}
		if !st.Ready {
			return fmt.Errorf("%s is not ready", url)
		}
		return nil
	},
}

var configCommand = &cli.Command{
	Name:      "config",
	Usage:     "Print a value from the environment config",
	ArgsUsage: "<dotted.key>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("exactly one key is required")
		}
		cfg, err := config.Load(configDir(c), c.String("env"))
		if err != nil {
			return err
		}
		key := c.Args().First()
		if _, ok := cfg.Get(key); !ok {
			return fmt.Errorf("key %q not found in %s config", key, cfg.Env())
		}
		fmt.Fprintln(c.App.Writer, cfg.String(key))
		return nil
	},
}
