package actions

import "time"

// ExplicitWait is the default per-attempt timeout.
const ExplicitWait = 10 * time.Second

// DefaultPollInterval is how often a condition is re-checked within an attempt.
const DefaultPollInterval = 500 * time.Millisecond

// Condition is the UI state an element must reach before it is returned.
type Condition int

const (
	Visible Condition = iota
	Present
	Invisible
	Clickable
)

func (c Condition) String() string {
	switch c {
	case Present:
		return "present"
	case Invisible:
		return "invisible"
	case Clickable:
		return "clickable"
	default:
		return "visible"
	}
}

// RetryPolicy bounds how long and how often an element is waited for.
type RetryPolicy struct {
	Timeout      time.Duration
	Attempts     int
	PollInterval time.Duration
}

// DefaultRetryPolicy waits ExplicitWait once.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Timeout:      ExplicitWait,
		Attempts:     1,
		PollInterval: DefaultPollInterval,
	}
}

type callOptions struct {
	policy    RetryPolicy
	condition Condition
}

// Option overrides the retry policy or condition of a single call.
type Option func(*callOptions)

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *callOptions) { o.policy.Timeout = d }
}

// WithAttempts sets the number of attempts. Values below 1 are treated as 1.
func WithAttempts(n int) Option {
	return func(o *callOptions) { o.policy.Attempts = n }
}

// WithCondition sets the condition to wait for.
func WithCondition(c Condition) Option {
	return func(o *callOptions) { o.condition = c }
}

// WithPollInterval sets how often the condition is re-checked.
func WithPollInterval(d time.Duration) Option {
	return func(o *callOptions) { o.policy.PollInterval = d }
}

func buildOptions(base RetryPolicy, opts []Option) callOptions {
	o := callOptions{policy: base, condition: Visible}
	for _, opt := range opts {
		opt(&o)
	}
	if o.policy.Attempts < 1 {
		o.policy.Attempts = 1
	}
	if o.policy.Timeout <= 0 {
		o.policy.Timeout = ExplicitWait
	}
	if o.policy.PollInterval <= 0 {
		o.policy.PollInterval = DefaultPollInterval
	}
	return o
}
