// Package assert implements soft assertions: comparisons that record a
// failure and keep the test running.
package assert

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/aquariux/wt-automation/pkg/core"
	"github.com/aquariux/wt-automation/pkg/logger"
	"github.com/aquariux/wt-automation/pkg/steplog"
	"github.com/aquariux/wt-automation/pkg/webdriver"
)

// Attacher receives screenshots taken on a mismatch.
type Attacher interface {
	Attach(name, contentType string, body []byte) error
}

// Sessions lists the driver sessions open for the current test.
type Sessions interface {
	All() []*webdriver.Client
}

// Recorder collects soft assertion failures into a test's step log.
type Recorder struct {
	log      *steplog.Log
	sessions Sessions
	sink     Attacher
}

// NewRecorder creates a recorder. sessions and sink may be nil.
func NewRecorder(log *steplog.Log, sessions Sessions, sink Attacher) *Recorder {
	return &Recorder{log: log, sessions: sessions, sink: sink}
}

// Equal compares actual and expected with reflect.DeepEqual. On mismatch it
// logs msg (or a default message), screenshots every open session and
// appends a FailureRecord. It returns whether the values were equal.
func (r *Recorder) Equal(actual, expected interface{}, msg ...string) bool {
	if reflect.DeepEqual(actual, expected) {
		return true
	}

	message := strings.Join(msg, " ")
	if message == "" {
		message = fmt.Sprintf("Validation failed! Actual: %#v, Expected: %#v", actual, expected)
	}
	logger.Error("%s", message)

	r.screenshotAll()

	rec := steplog.FailureRecord{Message: message}
	entry, ok := r.log.LastOfKind(steplog.KindVerify)
	if !ok {
		entry, ok = r.log.LastOfKind(steplog.KindStep)
	}
	if ok {
		rec.StepID = entry.ID
		rec.Step = entry.Message
	}
	r.log.AddFailure(rec)
	return false
}

// Failures returns every recorded mismatch.
func (r *Recorder) Failures() []steplog.FailureRecord {
	return r.log.Failures()
}

// Failed reports whether any comparison failed.
func (r *Recorder) Failed() bool {
	return len(r.log.Failures()) > 0
}

// Err aggregates the recorded mismatches, or returns nil.
func (r *Recorder) Err() error {
	failures := r.log.Failures()
	if len(failures) == 0 {
		return nil
	}
	msgs := make([]string, len(failures))
	for i, f := range failures {
		msgs[i] = f.Message
	}
	return core.ErrAssertionFailed.
		WithMessage(fmt.Sprintf("%d soft assertion(s) failed: %s", len(failures), strings.Join(msgs, "; "))).
		WithDetails(map[string]interface{}{"count": len(failures)})
}

func (r *Recorder) screenshotAll() {
	if r.sessions == nil || r.sink == nil {
		return
	}
	for _, c := range r.sessions.All() {
		png, err := c.Screenshot()
		if err != nil {
			logger.Error("Failed to capture screenshot: %v", err)
			continue
		}
		if err := r.sink.Attach("screenshot", "image/png", png); err != nil {
			logger.Error("Failed to attach screenshot: %v", err)
		}
	}
}
