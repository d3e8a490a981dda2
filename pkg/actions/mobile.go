package actions

import (
	"context"
	"fmt"
	"time"

	"github.com/aquariux/wt-automation/pkg/logger"
	"github.com/aquariux/wt-automation/pkg/webdriver"
)

// Mobile adds Appium gestures and hardware keys.
type Mobile struct {
	*Actions
}

// NewMobile wraps a for an Appium session.
func NewMobile(a *Actions) *Mobile {
	return &Mobile{Actions: a}
}

// Scroll drags from the center of src to the center of dst.
func (m *Mobile) Scroll(ctx context.Context, src, dst Locator, duration time.Duration, opts ...Option) error {
	from, err := m.findElement(ctx, src, opts...)
	if err != nil {
		return err
	}
	to, err := m.findElement(ctx, dst, opts...)
	if err != nil {
		return err
	}

	fx, fy, err := from.Center()
	if err != nil {
		return err
	}
	tx, ty, err := to.Center()
	if err != nil {
		return err
	}
	return m.client.Swipe(fx, fy, tx, ty, int(duration/time.Millisecond))
}

// ScrollToText scrolls the first scrollable container until text is shown.
func (m *Mobile) ScrollToText(ctx context.Context, text string, opts ...Option) (*webdriver.Element, error) {
	loc := Locator{
		By: ByAndroidUIAutomator,
		Value: fmt.Sprintf(
			`new UiScrollable(new UiSelector().scrollable(true)).scrollIntoView(new UiSelector().text("%s"))`,
			text),
	}
	return m.Find(ctx, loc, append(opts, WithCondition(Present))...)
}

// HideKeyboard dismisses the keyboard, falling back to "mobile: hideKeyboard"
// and finally to the back key.
func (m *Mobile) HideKeyboard() error {
	err := m.client.HideKeyboard()
	if err == nil {
		return nil
	}
	logger.Debug("hide keyboard failed: %v", err)

	if _, err = m.client.ExecuteScript("mobile: hideKeyboard"); err == nil {
		return nil
	}
	logger.Debug("mobile: hideKeyboard failed: %v", err)

	return m.PressBack()
}

// PressBack presses the Android back key.
func (m *Mobile) PressBack() error {
	return m.client.PressKeyCode(webdriver.AndroidKeyBack)
}

// PressHome presses the Android home key.
func (m *Mobile) PressHome() error {
	return m.client.PressKeyCode(webdriver.AndroidKeyHome)
}

// PressEnter sends the Enter key to the element.
func (m *Mobile) PressEnter(ctx context.Context, loc Locator, opts ...Option) error {
	elem, err := m.findElement(ctx, loc, opts...)
	if err != nil {
		return err
	}
	return elem.SendKeys(webdriver.KeyEnter)
}
