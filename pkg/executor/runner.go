// Package executor runs test cases with a fresh per-test context, then
// turns each test's step log into a post-processed Allure result.
package executor

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/aquariux/wt-automation/pkg/actions"
	"github.com/aquariux/wt-automation/pkg/assert"
	"github.com/aquariux/wt-automation/pkg/config"
	"github.com/aquariux/wt-automation/pkg/core"
	"github.com/aquariux/wt-automation/pkg/driver"
	"github.com/aquariux/wt-automation/pkg/logger"
	"github.com/aquariux/wt-automation/pkg/report"
	"github.com/aquariux/wt-automation/pkg/steplog"
)

// Markers that restrict where a case runs.
const (
	MarkerMT5 = "mt5" // skipped on mt4 servers
	MarkerUAT = "uat" // skipped outside the uat environment
)

// Options configure a run.
type Options struct {
	Client     string // defaults to the config's client key
	Platform   string // web, android or ios
	Browser    string
	Headless   bool
	Grid       bool
	ServerURL  string // overrides the grid, local driver or Appium endpoint
	ResultsDir string
	VideoDir   string

	// Servers and Accounts form the matrix cases are expanded over. They
	// default to the comma separated "server" and "account" config keys.
	Servers  []string
	Accounts []string

	// Retry replaces the default retry policy of every action layer.
	Retry *actions.RetryPolicy
}

// Case is one test. Run expands cases with no Server or Account over the
// configured server/account matrix; see Expand.
type Case struct {
	FullName string // e.g. tests.web.login.test_LGN_TC01#test_valid_credentials
	Package  string // report sub-suite, e.g. login
	Server   string // mt4 or mt5
	Account  string // demo, live or crm
	Markers  []string
	Fn       func(ctx context.Context, tc *TestContext) error
}

// CaseResult is the outcome of one case.
type CaseResult struct {
	UUID       string
	Name       string
	Status     core.Status
	Duration   time.Duration
	Error      string
	ResultFile string
}

// RunResult aggregates a run.
type RunResult struct {
	Status   core.Status
	Total    int
	Passed   int
	Failed   int
	Broken   int
	Skipped  int
	Duration time.Duration
	Cases    []CaseResult
}

// Runner executes cases sequentially against one environment.
type Runner struct {
	cfg    *config.Config
	client *config.ClientConfig
	opts   Options
	now    func() time.Time
}

// New validates the options against cfg and returns a runner.
func New(cfg *config.Config, opts Options) (*Runner, error) {
	if opts.Platform == "" {
		opts.Platform = string(driver.PlatformWeb)
	}
	if opts.ResultsDir == "" {
		opts.ResultsDir = "allure-results"
	}
	if opts.VideoDir == "" {
		opts.VideoDir = config.VideoDir()
	}

	if cfg != nil && opts.Servers == nil {
		opts.Servers = SplitList(cfg.String("server"))
	}
	if cfg != nil && opts.Accounts == nil {
		opts.Accounts = SplitList(cfg.String("account"))
	}

	r := &Runner{cfg: cfg, opts: opts, now: time.Now}
	if cfg != nil && (opts.Client != "" || cfg.ClientName() != "") {
		client, err := cfg.Client(opts.Client)
		if err != nil {
			return nil, err
		}
		r.client = client
	}

	// Fail on a bad platform or browser before any test starts.
	if _, err := r.target(driver.Platform(strings.ToLower(opts.Platform))); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Runner) mobile() bool {
	p := driver.Platform(strings.ToLower(r.opts.Platform))
	return p == driver.PlatformAndroid || p == driver.PlatformIOS
}

func (r *Runner) target(p driver.Platform) (driver.Target, error) {
	o := driver.Options{
		Platform:  string(p),
		Browser:   r.opts.Browser,
		Headless:  r.opts.Headless,
		Grid:      r.opts.Grid,
		ServerURL: r.opts.ServerURL,
	}
	if r.client != nil {
		m := r.client.Mobile()
		switch p {
		case driver.PlatformAndroid:
			o.UDID, o.AppPackage, o.AppActivity = m.AndroidUDID, m.AndroidPackage, m.AndroidActivity
		case driver.PlatformIOS:
			o.UDID, o.BundleID = m.IOSUDID, m.IOSBundleID
		}
	}
	return driver.ParseTarget(o)
}

// Run expands cases over the server/account matrix, executes them in order,
// then writes environment.properties and
// categories.json into the results directory.
func (r *Runner) Run(ctx context.Context, cases []Case) (*RunResult, error) {
	if _, err := report.NewWriter(r.opts.ResultsDir); err != nil {
		return nil, err
	}
	if r.mobile() {
		if _, err := config.ResetVideoDir(r.opts.VideoDir); err != nil {
			return nil, fmt.Errorf("reset video folder: %w", err)
		}
	}

	clientName := ""
	if r.client != nil {
		clientName = r.client.Name()
	}
	cases = Expand(cases, r.opts.Servers, r.opts.Accounts, clientName)

	start := r.now()
	results := make([]CaseResult, len(cases))
	for i, c := range cases {
		if ctx.Err() != nil {
			results[i] = CaseResult{Name: report.DisplayName(c.FullName), Status: core.StatusSkipped, Error: "run cancelled"}
			continue
		}
		results[i] = r.RunCase(ctx, c)
	}

	env := report.Environment{
		Platform: r.opts.Platform,
		Browser:  r.opts.Browser,
	}
	if r.client != nil {
		env.Client = r.client.Name()
	}
	if r.cfg != nil {
		env.Env = r.cfg.Env()
	}
	if err := report.WriteEnvironment(r.opts.ResultsDir, env); err != nil {
		logger.Error("%v", err)
	}
	if err := report.WriteCategories(r.opts.ResultsDir); err != nil {
		logger.Error("%v", err)
	}

	return buildRunResult(results, r.now().Sub(start)), nil
}

func buildRunResult(cases []CaseResult, d time.Duration) *RunResult {
	res := &RunResult{Status: core.StatusPassed, Total: len(cases), Duration: d, Cases: cases}
	for _, c := range cases {
		switch c.Status {
		case core.StatusPassed:
			res.Passed++
		case core.StatusFailed:
			res.Failed++
		case core.StatusBroken:
			res.Broken++
		case core.StatusSkipped:
			res.Skipped++
		}
		if c.Status != core.StatusSkipped {
			res.Status = res.Status.Worse(c.Status)
		}
	}
	return res
}

// skipReason returns why c does not run in this environment, or "".
func (r *Runner) skipReason(c Case) string {
	for _, m := range c.Markers {
		switch m {
		case MarkerMT5:
			if strings.EqualFold(c.Server, "mt4") {
				return "This test is for mt5 server only"
			}
		case MarkerUAT:
			if r.cfg == nil || !strings.EqualFold(r.cfg.Env(), "uat") {
				return "This test is for UAT environment only"
			}
		}
	}
	return ""
}

// RunCase runs a single case with its own context and writes its result.
func (r *Runner) RunCase(ctx context.Context, c Case) CaseResult {
	sink, err := report.NewWriter(r.opts.ResultsDir)
	if err != nil {
		return CaseResult{Name: report.DisplayName(c.FullName), Status: core.StatusBroken, Error: err.Error()}
	}

	log := steplog.New()
	sessions := driver.NewRegistry()
	tc := &TestContext{
		Log:      log,
		Soft:     assert.NewRecorder(log, sessions, sink),
		Sessions: sessions,
		Sink:     sink,
		Config:   r.cfg,
		Client:   r.client,
		Server:   c.Server,
		Account:  c.Account,
		provider: driver.NewProvider(sessions),
		targets:  r.target,
		record:   true,
		retry:    r.opts.Retry,
	}
	defer func() {
		if err := sessions.QuitAll(); err != nil {
			logger.Warn("Failed to quit sessions: %v", err)
		}
	}()

	start := r.now()
	status, details := core.StatusSkipped, (*report.StatusDetails)(nil)

	if reason := r.skipReason(c); reason != "" {
		logger.Info("Skipping %s: %s", c.FullName, reason)
		details = &report.StatusDetails{Message: reason}
	} else {
		logger.Info("- Running test case: %s - [%s] - [%s]",
			c.FullName, strings.ToUpper(c.Server), report.Capitalize(c.Account))

		err := r.call(ctx, c, tc)
		status, details = resolveStatus(err, tc.Soft)
		r.attachVideos(tc)
	}

	stop := r.now()
	res := r.buildResult(c, tc, start, stop, status, details)

	out := CaseResult{
		UUID:     res.UUID,
		Name:     res.Name,
		Status:   status,
		Duration: stop.Sub(start),
	}
	if details != nil {
		out.Error = details.Message
	}

	path, err := sink.WriteResult(res)
	if err != nil {
		logger.Error("%v", err)
		return out
	}
	out.ResultFile = path

	p := &report.Processor{
		Dir:      r.opts.ResultsDir,
		TestUUID: res.UUID,
		Failures: log.Failures(),
		Broken:   log.Broken(),
	}
	if _, err := p.Run(); err != nil {
		logger.Error("Post-processing failed: %v", err)
	}
	return out
}

// call runs the case function, turning a panic into an error.
func (r *Runner) call(ctx context.Context, c Case, tc *TestContext) (err error) {
	defer func() {
		if p := recover(); p != nil {
			logger.Error("Test %s panicked: %v", c.FullName, p)
			err = &panicError{value: p, stack: string(debug.Stack())}
		}
	}()
	if c.Fn == nil {
		return core.ErrMissingRequired.WithMessage("case has no test function")
	}
	return c.Fn(ctx, tc)
}

type panicError struct {
	value interface{}
	stack string
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

// resolveStatus maps the test outcome to a report status. An assertion
// error or soft failures mean failed; any other error means broken.
func resolveStatus(err error, soft *assert.Recorder) (core.Status, *report.StatusDetails) {
	switch {
	case err != nil && errors.Is(err, core.ErrAssertionFailed):
		return core.StatusFailed, &report.StatusDetails{Message: err.Error()}
	case err != nil:
		d := &report.StatusDetails{Message: err.Error()}
		var pe *panicError
		if errors.As(err, &pe) {
			d.Trace = pe.stack
		}
		return core.StatusBroken, d
	case soft.Failed():
		return core.StatusFailed, &report.StatusDetails{Message: soft.Err().Error()}
	}
	return core.StatusPassed, nil
}

func (r *Runner) buildResult(c Case, tc *TestContext, start, stop time.Time, status core.Status, details *report.StatusDetails) *report.Result {
	res := report.NewResult(tc.Log.TestID(), c.FullName, start, stop, status)
	res.StatusDetails = details
	res.Labels = []report.Label{
		{Name: "parentSuite", Value: strings.ToUpper(c.Server)},
		{Name: "suite", Value: report.Capitalize(c.Account)},
		{Name: "subSuite", Value: report.Capitalize(c.Package)},
	}
	res.Parameters = []report.Parameter{
		{Name: "server", Value: c.Server},
		{Name: "account", Value: c.Account},
	}
	res.Steps = report.BuildSteps(tc.Log.Entries(), stop)
	res.Attachments = tc.Sink.Attachments()
	return res
}
