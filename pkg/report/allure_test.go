package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/aquariux/wt-automation/pkg/core"
)

func TestWriteCategories(t *testing.T) {
	dir := t.TempDir()
	if err := WriteCategories(dir); err != nil {
		t.Fatalf("WriteCategories: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "categories.json"))
	if err != nil {
		t.Fatalf("read categories: %v", err)
	}
	var categories []Category
	if err := json.Unmarshal(data, &categories); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(categories) == 0 {
		t.Fatal("expected categories")
	}

	found := false
	for _, c := range categories {
		if c.Name == "Validation Failed" && c.MatchedStatuses[0] == core.StatusFailed {
			found = true
		}
	}
	if !found {
		t.Error("missing Validation Failed category")
	}
}

func TestAtomicWriteJSON_NoTempLeft(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x-result.json")
	if err := atomicWriteJSON(path, map[string]string{"status": "passed"}); err != nil {
		t.Fatalf("atomicWriteJSON: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file should be renamed away")
	}
}

func TestResult_OmitsEmptyStatusDetails(t *testing.T) {
	data, err := json.Marshal(Result{UUID: "u", Status: core.StatusPassed})
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]interface{}
	json.Unmarshal(data, &raw)
	if _, ok := raw["statusDetails"]; ok {
		t.Error("statusDetails should be omitted when nil")
	}
	if raw["status"] != "passed" {
		t.Errorf("status = %v", raw["status"])
	}
}
