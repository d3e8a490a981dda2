package report

import (
	"time"

	"github.com/aquariux/wt-automation/pkg/core"
	"github.com/aquariux/wt-automation/pkg/steplog"
)

// BuildSteps turns step log entries into Allure steps. Each step entry opens
// a top-level step; the verify entries that follow become its sub-steps.
// Verify entries logged before the first step entry are dropped. A step
// ends when the next entry starts, the last one at end.
func BuildSteps(entries []steplog.Entry, end time.Time) []Step {
	var steps []Step
	for i, e := range entries {
		stop := end
		if i+1 < len(entries) {
			stop = entries[i+1].Time
		}

		switch e.Kind {
		case steplog.KindStep:
			steps = append(steps, newStep(e, stop))
		case steplog.KindVerify:
			if len(steps) == 0 {
				continue
			}
			parent := &steps[len(steps)-1]
			parent.Steps = append(parent.Steps, newStep(e, stop))
		}
	}

	// A top-level step spans its sub-steps.
	for i := range steps {
		if n := len(steps[i].Steps); n > 0 && steps[i].Steps[n-1].Stop > steps[i].Stop {
			steps[i].Stop = steps[i].Steps[n-1].Stop
		}
	}
	return steps
}

func newStep(e steplog.Entry, stop time.Time) Step {
	if stop.Before(e.Time) {
		stop = e.Time
	}
	return Step{
		Name:       e.Message,
		Status:     core.StatusPassed,
		Stage:      "finished",
		Start:      e.Time.UnixMilli(),
		Stop:       stop.UnixMilli(),
		Parameters: []Parameter{{Name: StepIDParam, Value: e.ID, Mode: "hidden"}},
	}
}
