package steplog

import (
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		msg      string
		wantKind Kind
		wantOK   bool
	}{
		{"- Step: Login with valid credentials", KindStep, true},
		{"STEPS to reproduce", KindStep, true},
		{"Verify dashboard is displayed", KindVerify, true},
		{"- Step: verify and continue", KindStep, true},
		{"Clicking on (id, submit)", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			kind, ok := Classify(tt.msg)
			if kind != tt.wantKind || ok != tt.wantOK {
				t.Errorf("Classify(%q) = %q, %v; want %q, %v", tt.msg, kind, ok, tt.wantKind, tt.wantOK)
			}
		})
	}
}

func TestLog_Record(t *testing.T) {
	log := New()
	fixed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	log.now = func() time.Time { return fixed }

	log.Info("Step 1: open login page")
	log.Info("typing into username field")
	log.Info("Verify login form is shown")

	entries := log.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Kind != KindStep || entries[1].Kind != KindVerify {
		t.Errorf("unexpected kinds: %q, %q", entries[0].Kind, entries[1].Kind)
	}
	if entries[0].ID == "" || entries[0].ID == entries[1].ID {
		t.Errorf("entries need distinct IDs: %q, %q", entries[0].ID, entries[1].ID)
	}
	if !entries[0].Time.Equal(fixed) {
		t.Errorf("Time = %v, want %v", entries[0].Time, fixed)
	}
}

func TestLog_LastOfKind(t *testing.T) {
	log := New()
	if _, ok := log.LastOfKind(KindVerify); ok {
		t.Error("empty log should have no verify entry")
	}

	log.Record("Step 1")
	log.Record("Verify a")
	log.Record("Step 2")

	v, ok := log.LastOfKind(KindVerify)
	if !ok || v.Message != "Verify a" {
		t.Errorf("LastOfKind(verify) = %+v, %v", v, ok)
	}
	s, _ := log.LastOfKind(KindStep)
	if s.Message != "Step 2" {
		t.Errorf("LastOfKind(step) = %q", s.Message)
	}
}

func TestLog_MarkBroken_Verify(t *testing.T) {
	log := New()
	log.Record("Step 1: login")
	log.Record("Step 2: place order")
	log.Record("Verify order is placed")

	added := log.MarkBroken()
	if len(added) != 2 {
		t.Fatalf("expected 2 records, got %d", len(added))
	}
	if added[0].Step != "Verify order is placed" || added[0].Kind != KindVerify {
		t.Errorf("first record = %+v", added[0])
	}
	if added[1].Step != "Step 2: place order" || added[1].Kind != KindStep {
		t.Errorf("second record = %+v", added[1])
	}

	entries := log.Entries()
	if entries[0].Broken || !entries[1].Broken || !entries[2].Broken {
		t.Errorf("unexpected broken flags: %v %v %v", entries[0].Broken, entries[1].Broken, entries[2].Broken)
	}
	if len(log.Broken()) != 2 {
		t.Errorf("Broken() should hold 2 records")
	}
}

func TestLog_MarkBroken_Step(t *testing.T) {
	log := New()
	if got := log.MarkBroken(); got != nil {
		t.Errorf("MarkBroken on empty log = %v, want nil", got)
	}

	log.Record("Step 1: login")
	added := log.MarkBroken()
	if len(added) != 1 || added[0].Kind != KindStep {
		t.Errorf("MarkBroken() = %+v", added)
	}
	if added[0].StepID != log.Entries()[0].ID {
		t.Error("record should carry the entry ID")
	}
}

func TestLog_Failures(t *testing.T) {
	log := New()
	log.Record("Step 1")
	log.AddFailure(FailureRecord{Step: "Verify x", Message: "mismatch"})

	got := log.Failures()
	if len(got) != 1 || got[0].Message != "mismatch" {
		t.Fatalf("Failures() = %+v", got)
	}
	got[0].Message = "changed"
	if log.Failures()[0].Message != "mismatch" {
		t.Error("Failures should return a copy")
	}
}
