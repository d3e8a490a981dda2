package actions

import (
	"context"
	"fmt"

	"github.com/aquariux/wt-automation/pkg/logger"
)

// Click clicks the element.
func (a *Actions) Click(ctx context.Context, loc Locator, opts ...Option) error {
	elem, err := a.findElement(ctx, loc, opts...)
	if err != nil {
		return err
	}
	logger.Debug("Click %s", loc)
	return elem.Click()
}

// ClickByOffset clicks at (x, y) pixels from the element's center.
func (a *Actions) ClickByOffset(ctx context.Context, loc Locator, x, y int, opts ...Option) error {
	elem, err := a.findElement(ctx, loc, opts...)
	if err != nil {
		return err
	}
	logger.Debug("Click %s at offset (%d, %d)", loc, x, y)
	return a.client.ClickAt(elem.ID, x, y, 0)
}

// SendKeys clears the field and types value into it.
func (a *Actions) SendKeys(ctx context.Context, loc Locator, value string, opts ...Option) error {
	elem, err := a.findElement(ctx, loc, opts...)
	if err != nil {
		return err
	}
	if err := elem.Clear(); err != nil {
		return fmt.Errorf("clear %s: %w", loc, err)
	}
	logger.Debug("Send keys to %s", loc)
	return elem.SendKeys(value)
}

// Attribute reads an attribute. ok is false when the attribute is absent.
func (a *Actions) Attribute(ctx context.Context, loc Locator, name string, opts ...Option) (value string, ok bool, err error) {
	elem, err := a.findElement(ctx, loc, opts...)
	if err != nil {
		return "", false, err
	}
	return elem.Attribute(name)
}

// Text returns the element's visible text.
func (a *Actions) Text(ctx context.Context, loc Locator, opts ...Option) (string, error) {
	elem, err := a.findElement(ctx, loc, opts...)
	if err != nil {
		return "", err
	}
	return elem.Text()
}

// WaitForInvisible waits until no displayed element matches loc.
func (a *Actions) WaitForInvisible(ctx context.Context, loc Locator, opts ...Option) error {
	_, err := a.Find(ctx, loc, append(opts, WithCondition(Invisible))...)
	return err
}

// IsDisplayed reports whether loc becomes visible within the timeout.
// It never fails and leaves the step log untouched.
func (a *Actions) IsDisplayed(ctx context.Context, loc Locator, opts ...Option) bool {
	o := buildOptions(a.policy, append(opts, WithCondition(Visible)))
	for i := 0; i < o.policy.Attempts; i++ {
		err := poll(ctx, o.policy, func() error {
			_, err := a.check(loc, Visible)
			return err
		})
		if err == nil {
			return true
		}
		if ctx.Err() != nil {
			return false
		}
	}
	return false
}

// VerifyDisplayed soft-asserts that loc is displayed.
func (a *Actions) VerifyDisplayed(ctx context.Context, loc Locator, opts ...Option) bool {
	return a.soft.Equal(a.IsDisplayed(ctx, loc, opts...), true,
		fmt.Sprintf("Element with locator %s is not displayed", loc))
}
