package executor

import (
	"fmt"

	"github.com/aquariux/wt-automation/pkg/actions"
	"github.com/aquariux/wt-automation/pkg/assert"
	"github.com/aquariux/wt-automation/pkg/config"
	"github.com/aquariux/wt-automation/pkg/driver"
	"github.com/aquariux/wt-automation/pkg/logger"
	"github.com/aquariux/wt-automation/pkg/report"
	"github.com/aquariux/wt-automation/pkg/steplog"
	"github.com/aquariux/wt-automation/pkg/webdriver"
)

// recordingOptions keep mobile recordings small enough to attach.
var recordingOptions = map[string]interface{}{
	"bitRate":   200000,
	"videoSize": "480x270",
}

// TestContext is everything one test owns: its step log, soft assertions,
// driver sessions and report sink. It is created by the Runner per test
// and torn down when the test ends.
type TestContext struct {
	Log      *steplog.Log
	Soft     *assert.Recorder
	Sessions *driver.Registry
	Sink     *report.Writer
	Config   *config.Config
	Client   *config.ClientConfig

	Server  string
	Account string

	provider *driver.Provider
	targets  func(driver.Platform) (driver.Target, error)
	record   bool
	retry    *actions.RetryPolicy
}

// Step logs a step log message, e.g. tc.Step("Step 1: open login page").
func (tc *TestContext) Step(format string, v ...interface{}) {
	tc.Log.Info(format, v...)
}

// Credentials returns the login of the test's server and account.
func (tc *TestContext) Credentials() config.Credentials {
	if tc.Client == nil {
		return config.Credentials{}
	}
	return tc.Client.Credentials(tc.Server, tc.Account, false)
}

// Session starts (or returns) the session for platform p.
func (tc *TestContext) Session(p driver.Platform) (*webdriver.Client, error) {
	if c, ok := tc.Sessions.Get(p); ok {
		return c, nil
	}

	target, err := tc.targets(p)
	if err != nil {
		return nil, err
	}
	client, err := tc.provider.Start(target)
	if err != nil {
		return nil, err
	}

	if p != driver.PlatformWeb && tc.record {
		if err := client.StartRecordingScreen(recordingOptions); err != nil {
			logger.Error("Failed to start screen recording: %v", err)
		} else {
			logger.Debug("Started screen recording for %s test", p)
		}
	}
	return client, nil
}

func (tc *TestContext) actions(p driver.Platform) (*actions.Actions, error) {
	client, err := tc.Session(p)
	if err != nil {
		return nil, fmt.Errorf("%s session: %w", p, err)
	}
	a := actions.New(client, tc.Log, tc.Sink, tc.Soft)
	if tc.retry != nil {
		a.SetRetryPolicy(*tc.retry)
	}
	return a, nil
}

// Web returns web actions, starting the browser on first use.
func (tc *TestContext) Web() (*actions.Web, error) {
	a, err := tc.actions(driver.PlatformWeb)
	if err != nil {
		return nil, err
	}
	return actions.NewWeb(a), nil
}

// Android returns mobile actions on the Android session.
func (tc *TestContext) Android() (*actions.Mobile, error) {
	a, err := tc.actions(driver.PlatformAndroid)
	if err != nil {
		return nil, err
	}
	return actions.NewMobile(a), nil
}

// IOS returns mobile actions on the iOS session.
func (tc *TestContext) IOS() (*actions.Mobile, error) {
	a, err := tc.actions(driver.PlatformIOS)
	if err != nil {
		return nil, err
	}
	return actions.NewMobile(a), nil
}
