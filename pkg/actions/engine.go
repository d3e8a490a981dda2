// Package actions resolves locators to live elements and performs UI
// operations on them for web (Selenium) and mobile (Appium) sessions.
//
// Every element lookup goes through the same wait/retry engine: up to
// RetryPolicy.Attempts attempts, each polling the requested Condition until
// RetryPolicy.Timeout. Only no-such-element, stale-element and wait-timeout
// errors are retried; anything else fails the call immediately.
package actions

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff"

	"github.com/aquariux/wt-automation/pkg/assert"
	"github.com/aquariux/wt-automation/pkg/core"
	"github.com/aquariux/wt-automation/pkg/logger"
	"github.com/aquariux/wt-automation/pkg/steplog"
	"github.com/aquariux/wt-automation/pkg/webdriver"
)

// Attacher receives diagnostic attachments (screenshots) for the report.
type Attacher interface {
	Attach(name, contentType string, body []byte) error
}

// Actions is the action layer bound to one driver session and one test.
type Actions struct {
	client *webdriver.Client
	log    *steplog.Log
	sink   Attacher
	soft   *assert.Recorder
	policy RetryPolicy
}

// New creates an action layer. sink may be nil, in which case screenshots
// are not attached.
func New(client *webdriver.Client, log *steplog.Log, sink Attacher, soft *assert.Recorder) *Actions {
	return &Actions{
		client: client,
		log:    log,
		sink:   sink,
		soft:   soft,
		policy: DefaultRetryPolicy(),
	}
}

// SetRetryPolicy replaces the default policy used when a call has no overrides.
func (a *Actions) SetRetryPolicy(p RetryPolicy) {
	a.policy = p
}

// Client returns the underlying session.
func (a *Actions) Client() *webdriver.Client {
	return a.client
}

var (
	errNotVisible   = core.ErrWaitTimeout.WithMessage("element is not visible yet")
	errNotEnabled   = core.ErrWaitTimeout.WithMessage("element is not enabled yet")
	errStillVisible = core.ErrWaitTimeout.WithMessage("element is still visible")
	errNoElements   = core.ErrNoSuchElement.WithMessage("no elements matched")
)

// Find returns the first element matching loc that satisfies the condition.
// For the Invisible condition the returned element is nil.
//
// When all attempts are exhausted (or a non-retryable error occurs) the most
// recent step log entry is marked broken and a "broken" screenshot is
// attached before the error is returned.
func (a *Actions) Find(ctx context.Context, loc Locator, opts ...Option) (*webdriver.Element, error) {
	o := buildOptions(a.policy, opts)

	var found *webdriver.Element
	err := a.retry(ctx, loc.String(), o.policy, func() error {
		elem, err := a.check(loc, o.condition)
		if err != nil {
			return err
		}
		found = elem
		return nil
	})
	if err == nil {
		return found, nil
	}

	if core.IsTransient(err) {
		err = core.ErrElementNotFound.
			WithMessage(fmt.Sprintf("element with locator %s not found after %d attempt(s)", loc, o.policy.Attempts)).
			WithDetails(map[string]interface{}{
				"locator":   loc.String(),
				"condition": o.condition.String(),
				"attempts":  o.policy.Attempts,
				"lastError": core.Kind(err),
			})
	}
	a.captureBroken()
	return nil, err
}

// findElement is Find for actions that operate on the element. Invisible
// yields no element, so it is rejected before any lookup.
func (a *Actions) findElement(ctx context.Context, loc Locator, opts ...Option) (*webdriver.Element, error) {
	if o := buildOptions(a.policy, opts); o.condition == Invisible {
		return nil, core.ErrInvalidSelector.
			WithMessage(fmt.Sprintf("condition %s returns no element for %s", Invisible, loc)).
			WithDetails(map[string]interface{}{"locator": loc.String()})
	}
	return a.Find(ctx, loc, opts...)
}

// FindAll returns every element matching loc once at least one is present.
// It never fails: exhaustion or any error yields an empty slice.
func (a *Actions) FindAll(ctx context.Context, loc Locator, opts ...Option) []*webdriver.Element {
	o := buildOptions(a.policy, opts)

	var found []*webdriver.Element
	err := a.retry(ctx, loc.String(), o.policy, func() error {
		by, value := loc.wire(a.client.Platform())
		elems, err := a.client.FindElements(by, value)
		if err != nil {
			return err
		}
		if len(elems) == 0 {
			return errNoElements
		}
		found = elems
		return nil
	})
	if err != nil {
		return []*webdriver.Element{}
	}
	return found
}

// retry runs op through up to p.Attempts polling attempts.
func (a *Actions) retry(ctx context.Context, label string, p RetryPolicy, op func() error) error {
	var err error
	for i := 1; i <= p.Attempts; i++ {
		if err = poll(ctx, p, op); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !core.IsTransient(err) {
			logger.Error("Unexpected error for %s: %v", label, err)
			return err
		}
		logger.Warn("Attempt %d/%d failed for %s: %s", i, p.Attempts, label, core.Kind(err))
	}
	return err
}

// poll re-runs op every p.PollInterval until it succeeds, returns a
// non-retryable error, or p.Timeout elapses.
func poll(ctx context.Context, p RetryPolicy, op func() error) error {
	attemptCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	b := backoff.WithContext(backoff.NewConstantBackOff(p.PollInterval), attemptCtx)
	err := backoff.Retry(func() error {
		err := op()
		if err != nil && !core.IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, b)

	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case !core.IsTransient(err):
		return err
	}
	return core.ErrWaitTimeout.
		WithMessage(fmt.Sprintf("condition not met within %s", p.Timeout)).
		WithCause(err)
}

// check evaluates cond once against the current UI.
func (a *Actions) check(loc Locator, cond Condition) (*webdriver.Element, error) {
	by, value := loc.wire(a.client.Platform())
	elem, err := a.client.FindElement(by, value)

	if cond == Invisible {
		if core.IsTransient(err) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		shown, err := elem.IsDisplayed()
		if core.IsTransient(err) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if shown {
			return nil, errStillVisible
		}
		return nil, nil
	}

	if err != nil {
		return nil, err
	}
	if cond == Present {
		return elem, nil
	}

	shown, err := elem.IsDisplayed()
	if err != nil {
		return nil, err
	}
	if !shown {
		return nil, errNotVisible
	}
	if cond == Clickable {
		enabled, err := elem.IsEnabled()
		if err != nil {
			return nil, err
		}
		if !enabled {
			return nil, errNotEnabled
		}
	}
	return elem, nil
}

func (a *Actions) captureBroken() {
	a.log.MarkBroken()
	a.attachScreenshot("broken")
}

func (a *Actions) attachScreenshot(name string) {
	if a.sink == nil {
		return
	}
	png, err := a.client.Screenshot()
	if err != nil {
		logger.Error("Failed to capture screenshot: %v", err)
		return
	}
	if err := a.sink.Attach(name, "image/png", png); err != nil {
		logger.Error("Failed to attach screenshot: %v", err)
	}
}
