package actions

import (
	"context"
	"fmt"

	"github.com/aquariux/wt-automation/pkg/core"
	"github.com/aquariux/wt-automation/pkg/logger"
	"github.com/aquariux/wt-automation/pkg/webdriver"
)

// Web adds browser-only operations.
type Web struct {
	*Actions
}

// NewWeb wraps a for a browser session.
func NewWeb(a *Actions) *Web {
	return &Web{Actions: a}
}

// Goto navigates to url.
func (w *Web) Goto(url string) error {
	logger.Debug("Navigate to %s", url)
	return w.client.Navigate(url)
}

// WaitForURL waits for the browser to reach url and returns the URL it ended
// up on, whether or not it matched.
func (w *Web) WaitForURL(ctx context.Context, url string, opts ...Option) (string, error) {
	o := buildOptions(w.policy, opts)
	label := fmt.Sprintf("URL '%s'", url)

	_ = w.retry(ctx, label, o.policy, func() error {
		current, err := w.client.CurrentURL()
		if err != nil {
			return err
		}
		if current != url {
			return core.ErrWaitTimeout.WithMessage(fmt.Sprintf("current URL is %s", current))
		}
		return nil
	})
	return w.client.CurrentURL()
}

// VerifyURL soft-asserts that the browser reaches expected.
func (w *Web) VerifyURL(ctx context.Context, expected string, opts ...Option) bool {
	actual, err := w.WaitForURL(ctx, expected, opts...)
	if err != nil {
		logger.Error("Failed to read current URL: %v", err)
	}
	return w.soft.Equal(actual, expected)
}

// RightClick opens the context menu on the element.
func (w *Web) RightClick(ctx context.Context, loc Locator, opts ...Option) error {
	elem, err := w.findElement(ctx, loc, opts...)
	if err != nil {
		return err
	}
	return w.client.ClickAt(elem.ID, 0, 0, 2)
}

// PressEnter sends the Enter key to the element.
func (w *Web) PressEnter(ctx context.Context, loc Locator, opts ...Option) error {
	elem, err := w.findElement(ctx, loc, opts...)
	if err != nil {
		return err
	}
	return elem.SendKeys(webdriver.KeyEnter)
}
