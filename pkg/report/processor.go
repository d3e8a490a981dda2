package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aquariux/wt-automation/pkg/core"
	"github.com/aquariux/wt-automation/pkg/logger"
	"github.com/aquariux/wt-automation/pkg/steplog"
)

// hiddenParams are test parameters removed from the visible report.
var hiddenParams = map[string]bool{
	"server":    true,
	"account":   true,
	StepIDParam: true,
}

// Processor rewrites the result files in Dir. For every *result.json file,
// newest first, it:
//
//  1. gives zero-duration steps a 1ms duration,
//  2. applies Failures to the sub-steps of failed results,
//  3. applies pending Broken records and marks the result broken,
//  4. keeps only the video attachment on the result, drops the trace,
//     renames the test from its full name and hides noise parameters,
//  5. writes the file back.
//
// When TestUUID is set, steps 2 and 3 only apply to that result.
type Processor struct {
	Dir      string
	TestUUID string
	Failures []steplog.FailureRecord
	Broken   []steplog.BrokenStepRecord
}

// Run processes every result file. Per-file errors are logged and skipped;
// the returned count is the number of files rewritten.
func (p *Processor) Run() (int, error) {
	files, err := resultFiles(p.Dir)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, path := range files {
		if err := p.processFile(path); err != nil {
			logger.Error("Error processing file %s: %v", filepath.Base(path), err)
			continue
		}
		processed++
	}
	return processed, nil
}

// resultFiles lists *result.json files in dir, newest first.
func resultFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read results dir: %w", err)
	}

	type file struct {
		path  string
		mtime int64
	}
	var files []file
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), "result.json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, file{filepath.Join(dir, e.Name()), info.ModTime().UnixNano()})
	}
	sort.SliceStable(files, func(i, j int) bool { return files[i].mtime > files[j].mtime })

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.path
	}
	return paths, nil
}

func (p *Processor) processFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	p.Process(&r)

	return atomicWriteJSON(path, &r)
}

// Process applies the rewrite steps to a single result in memory.
func (p *Processor) Process(r *Result) {
	fixZeroDurations(r.Steps)

	inScope := p.TestUUID == "" || p.TestUUID == r.UUID
	if inScope && r.Status == core.StatusFailed {
		p.applyFailures(r)
	}
	if inScope && len(p.Broken) > 0 {
		p.applyBroken(r)
	}

	cleanup(r)
}

func fixZeroDurations(steps []Step) {
	for i := range steps {
		if steps[i].Stop == steps[i].Start {
			steps[i].Stop++
		}
		for j := range steps[i].Steps {
			sub := &steps[i].Steps[j]
			if sub.Stop == sub.Start {
				sub.Stop++
			}
		}
	}
}

func (p *Processor) applyFailures(r *Result) {
	shots := attachmentsNamed(r.Attachments, AttachmentScreenshot)

	for i := range r.Steps {
		item := &r.Steps[i]
		for j := range item.Steps {
			sub := &item.Steps[j]
			for _, f := range p.Failures {
				if !matchStep(sub, f.StepID, f.Step) {
					continue
				}
				sub.Status = core.StatusFailed
				item.Status = core.StatusFailed
				sub.StatusDetails = &StatusDetails{Message: f.Message}
				if len(shots) > 0 {
					sub.Attachments = []Attachment{shots[0]}
					shots = shots[1:]
				}
				break
			}
		}
	}

	// Failures recorded with no verify entry active point at a top-level step.
	for i := range r.Steps {
		item := &r.Steps[i]
		for _, f := range p.Failures {
			if f.Step == "" || !matchStep(item, f.StepID, f.Step) {
				continue
			}
			item.Status = core.StatusFailed
			item.StatusDetails = &StatusDetails{Message: f.Message}
			if len(shots) > 0 {
				item.Attachments = append(item.Attachments, shots[0])
				shots = shots[1:]
			}
			break
		}
	}
}

func (p *Processor) applyBroken(r *Result) {
	shots := attachmentsNamed(r.Attachments, AttachmentBroken)

	for i := range r.Steps {
		item := &r.Steps[i]
		if p.consumeBroken(item, steplog.KindStep) {
			item.Attachments = cloneAttachments(shots)
		}
		for j := range item.Steps {
			p.consumeBroken(&item.Steps[j], steplog.KindVerify)
		}
	}

	r.Status = core.StatusBroken
	if n := len(r.Steps); n > 0 {
		r.Steps[n-1].Attachments = cloneAttachments(shots)
	}
}

// consumeBroken compares s against the first pending record of the given
// kind and, on a match, marks s broken and drops the record.
func (p *Processor) consumeBroken(s *Step, kind steplog.Kind) bool {
	idx := -1
	for i, rec := range p.Broken {
		if rec.Kind == kind {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	rec := p.Broken[idx]
	if !matchStep(s, rec.StepID, rec.Step) {
		return false
	}
	s.Status = core.StatusBroken
	p.Broken = append(p.Broken[:idx], p.Broken[idx+1:]...)
	return true
}

// matchStep prefers the step ID; without one on either side it compares
// names case-insensitively.
func matchStep(s *Step, id, name string) bool {
	if id != "" {
		if sid := paramValue(s.Parameters, StepIDParam); sid != "" {
			return sid == id
		}
	}
	return strings.EqualFold(s.Name, name)
}

func cleanup(r *Result) {
	if r.Attachments != nil {
		r.Attachments = attachmentsNamed(r.Attachments, AttachmentVideo)
	}
	if r.StatusDetails != nil {
		r.StatusDetails.Trace = ""
	}
	if r.FullName != "" {
		r.Name = DisplayName(r.FullName)
	}
	r.Parameters = visibleParams(r.Parameters)
	for i := range r.Steps {
		r.Steps[i].Parameters = visibleParams(r.Steps[i].Parameters)
		for j := range r.Steps[i].Steps {
			sub := &r.Steps[i].Steps[j]
			sub.Parameters = visibleParams(sub.Parameters)
		}
	}
}

func visibleParams(params []Parameter) []Parameter {
	if params == nil {
		return nil
	}
	out := make([]Parameter, 0, len(params))
	for _, p := range params {
		if !hiddenParams[p.Name] {
			out = append(out, p)
		}
	}
	return out
}

func paramValue(params []Parameter, name string) string {
	for _, p := range params {
		if p.Name == name {
			return p.Value
		}
	}
	return ""
}

func attachmentsNamed(atts []Attachment, name string) []Attachment {
	out := []Attachment{}
	for _, a := range atts {
		if a.Name == name {
			out = append(out, a)
		}
	}
	return out
}

func cloneAttachments(atts []Attachment) []Attachment {
	out := make([]Attachment, len(atts))
	copy(out, atts)
	return out
}
