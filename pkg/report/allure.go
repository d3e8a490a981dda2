// Package report writes Allure results for a test run and post-processes
// them so step status, failure messages and screenshots line up with the
// step log recorded during the test.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/aquariux/wt-automation/pkg/core"
)

// Allure result schema types.

// Result represents a single test result in Allure format.
type Result struct {
	UUID          string         `json:"uuid"`
	HistoryID     string         `json:"historyId,omitempty"`
	TestCaseID    string         `json:"testCaseId,omitempty"`
	FullName      string         `json:"fullName"`
	Name          string         `json:"name"`
	Description   string         `json:"description,omitempty"`
	Status        core.Status    `json:"status"`
	Stage         string         `json:"stage,omitempty"`
	StatusDetails *StatusDetails `json:"statusDetails,omitempty"`
	Start         int64          `json:"start"`
	Stop          int64          `json:"stop"`
	Labels        []Label        `json:"labels,omitempty"`
	Links         []Link         `json:"links,omitempty"`
	Parameters    []Parameter    `json:"parameters,omitempty"`
	Steps         []Step         `json:"steps,omitempty"`
	Attachments   []Attachment   `json:"attachments,omitempty"`

	// Extra holds fields written by other Allure adapters (descriptionHtml,
	// titlePath, ...) so a rewrite keeps them.
	Extra map[string]json.RawMessage `json:"-"`
}

// Step represents a step within a test result. Steps nest one level deep:
// a top-level step per "step" log entry with its "verify" entries below.
type Step struct {
	Name          string         `json:"name"`
	Status        core.Status    `json:"status"`
	Stage         string         `json:"stage,omitempty"`
	StatusDetails *StatusDetails `json:"statusDetails,omitempty"`
	Start         int64          `json:"start"`
	Stop          int64          `json:"stop"`
	Parameters    []Parameter    `json:"parameters,omitempty"`
	Steps         []Step         `json:"steps,omitempty"`
	Attachments   []Attachment   `json:"attachments,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Attachment represents a file attachment stored next to the result.
type Attachment struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Type   string `json:"type"`
}

// Label represents a label on a test result.
type Label struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Link is an external link shown on the result page.
type Link struct {
	Name string `json:"name,omitempty"`
	URL  string `json:"url"`
	Type string `json:"type,omitempty"`
}

// Parameter is a named test (or step) parameter.
type Parameter struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Excluded bool   `json:"excluded,omitempty"`
	Mode     string `json:"mode,omitempty"`
}

// StatusDetails holds failure message and trace.
type StatusDetails struct {
	Message string `json:"message,omitempty"`
	Trace   string `json:"trace,omitempty"`
	Known   bool   `json:"known,omitempty"`
	Muted   bool   `json:"muted,omitempty"`
	Flaky   bool   `json:"flaky,omitempty"`
}

// Category defines a failure category with regex matching.
type Category struct {
	Name            string        `json:"name"`
	MatchedStatuses []core.Status `json:"matchedStatuses"`
	MessageRegex    string        `json:"messageRegex"`
}

func (r *Result) UnmarshalJSON(data []byte) error {
	type plain Result
	if err := json.Unmarshal(data, (*plain)(r)); err != nil {
		return err
	}
	extra, err := unknownFields(data, reflect.TypeOf(plain{}))
	r.Extra = extra
	return err
}

func (r Result) MarshalJSON() ([]byte, error) {
	type plain Result
	return marshalWithExtra(plain(r), r.Extra)
}

func (s *Step) UnmarshalJSON(data []byte) error {
	type plain Step
	if err := json.Unmarshal(data, (*plain)(s)); err != nil {
		return err
	}
	extra, err := unknownFields(data, reflect.TypeOf(plain{}))
	s.Extra = extra
	return err
}

func (s Step) MarshalJSON() ([]byte, error) {
	type plain Step
	return marshalWithExtra(plain(s), s.Extra)
}

// unknownFields returns the top-level keys of data that t has no json tag for.
func unknownFields(data []byte, t reflect.Type) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		delete(all, name)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// marshalWithExtra encodes v and adds the extra keys v does not set itself.
func marshalWithExtra(v interface{}, extra map[string]json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for k, raw := range extra {
		if _, ok := merged[k]; !ok {
			merged[k] = raw
		}
	}
	return json.Marshal(merged)
}

// Attachment names with special meaning to the post-processor.
const (
	AttachmentScreenshot = "screenshot"
	AttachmentBroken     = "broken"
	AttachmentVideo      = "Screen Recording"
)

// StepIDParam is the step parameter carrying the step log entry ID.
const StepIDParam = "stepId"

// WriteCategories writes categories.json for failure categorization.
func WriteCategories(dir string) error {
	broken := []core.Status{core.StatusBroken}
	failed := []core.Status{core.StatusFailed}
	categories := []Category{
		{Name: "Element Not Found", MatchedStatuses: broken, MessageRegex: "(?i).*not found after.*"},
		{Name: "Element Not Interactable", MatchedStatuses: broken, MessageRegex: "(?i).*not interactable.*|.*click intercepted.*"},
		{Name: "Timeout", MatchedStatuses: broken, MessageRegex: "(?i).*timeout.*|.*timed out.*"},
		{Name: "Connection Error", MatchedStatuses: broken, MessageRegex: "(?i).*connect.*|.*session.*"},
		{Name: "Validation Failed", MatchedStatuses: failed, MessageRegex: "(?i).*validation failed.*|.*not displayed.*"},
	}

	if err := atomicWriteJSON(filepath.Join(dir, "categories.json"), categories); err != nil {
		return fmt.Errorf("write categories.json: %w", err)
	}
	return nil
}

// atomicWriteJSON writes v as indented JSON via a temp file and rename.
func atomicWriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func ensureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}
