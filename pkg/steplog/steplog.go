// Package steplog records the human-readable narration of a single test.
//
// Messages logged through a Log are written to the process logger and, when
// they mention "step" or "verify", appended to an ordered entry list that the
// report writer turns into Allure steps. A Log also collects the soft
// assertion failures and broken-step markers that the report post-processor
// consumes. One Log is created per test and passed explicitly to the action
// layer and the assertion recorder.
package steplog

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aquariux/wt-automation/pkg/logger"
)

// Kind tags a step log entry.
type Kind string

const (
	KindStep   Kind = "step"
	KindVerify Kind = "verify"
)

// Entry is one recorded narration line.
type Entry struct {
	ID      string
	Message string
	Kind    Kind
	Time    time.Time
	Broken  bool
}

// FailureRecord is a soft assertion mismatch bound to the verify (or step)
// entry that was active when it happened.
type FailureRecord struct {
	StepID  string
	Step    string
	Message string
}

// BrokenStepRecord marks an entry that was active when an action failed for good.
type BrokenStepRecord struct {
	StepID string
	Step   string
	Kind   Kind
}

// Classify returns the kind of msg, or false when msg is plain narration.
func Classify(msg string) (Kind, bool) {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "step"):
		return KindStep, true
	case strings.Contains(lower, "verify"):
		return KindVerify, true
	}
	return "", false
}

// Log is the per-test step log. It is safe for concurrent use.
type Log struct {
	mu       sync.Mutex
	testID   string
	entries  []Entry
	failures []FailureRecord
	broken   []BrokenStepRecord
	now      func() time.Time
}

// New creates an empty log with a fresh test ID.
func New() *Log {
	return &Log{
		testID: uuid.New().String(),
		now:    time.Now,
	}
}

// TestID returns the UUID assigned to the test owning this log.
func (l *Log) TestID() string {
	return l.testID
}

// Info logs a message at info level and records it when it is tagged.
func (l *Log) Info(format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	logger.Info("%s", msg)
	l.Record(msg)
}

// Record appends msg as an entry if it is tagged. It does not log.
func (l *Log) Record(msg string) (Entry, bool) {
	kind, ok := Classify(msg)
	if !ok {
		return Entry{}, false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	e := Entry{
		ID:      uuid.New().String(),
		Message: msg,
		Kind:    kind,
		Time:    l.now(),
	}
	l.entries = append(l.entries, e)
	return e, true
}

// Entries returns a copy of the recorded entries in order.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Last returns the most recent entry.
func (l *Log) Last() (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// LastOfKind returns the most recent entry of the given kind.
func (l *Log) LastOfKind(k Kind) (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.lastIndex(k)
	if i < 0 {
		return Entry{}, false
	}
	return l.entries[i], true
}

func (l *Log) lastIndex(k Kind) int {
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].Kind == k {
			return i
		}
	}
	return -1
}

// MarkBroken flags the most recent entry as broken. When that entry is a
// verify entry, the most recent step entry is flagged as well. The records
// are returned in the order they were added.
func (l *Log) MarkBroken() []BrokenStepRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) == 0 {
		return nil
	}

	var added []BrokenStepRecord
	mark := func(i int) {
		l.entries[i].Broken = true
		e := l.entries[i]
		added = append(added, BrokenStepRecord{StepID: e.ID, Step: e.Message, Kind: e.Kind})
	}

	last := len(l.entries) - 1
	mark(last)
	if l.entries[last].Kind == KindVerify {
		if i := l.lastIndex(KindStep); i >= 0 {
			mark(i)
		}
	}
	l.broken = append(l.broken, added...)
	return added
}

// Broken returns the pending broken-step records.
func (l *Log) Broken() []BrokenStepRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]BrokenStepRecord, len(l.broken))
	copy(out, l.broken)
	return out
}

// AddFailure appends a soft assertion failure.
func (l *Log) AddFailure(f FailureRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failures = append(l.failures, f)
}

// Failures returns the recorded soft assertion failures.
func (l *Log) Failures() []FailureRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]FailureRecord, len(l.failures))
	copy(out, l.failures)
	return out
}
