package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseStatus(t *testing.T) {
	for _, s := range []Status{StatusSucceeded, StatusSkipped, StatusFailed} {
		got, err := ParseStatus(" " + string(s) + " ")
		if err != nil {
			t.Fatalf("ParseStatus(%q) error: %v", s, err)
		}
		if got != s {
			t.Fatalf("ParseStatus(%q) = %q", s, got)
		}
	}
	if _, err := ParseStatus("done"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestFailedDefaultsReasonToError(t *testing.T) {
	result := Failed("vscode", errors.New("disk full"), "")
	if result.Reason != "disk full" {
		t.Fatalf("Reason = %q", result.Reason)
	}
	if result.Status != StatusFailed {
		t.Fatalf("Status = %q", result.Status)
	}
}

func TestStepResultJSONIncludesError(t *testing.T) {
	data, err := json.Marshal(Failed("zed", errors.New("boom"), "write theme: boom"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["error"] != "boom" {
		t.Fatalf("error field = %v", decoded["error"])
	}
	if decoded["status"] != "failed" {
		t.Fatalf("status field = %v", decoded["status"])
	}

	data, err = json.Marshal(Skipped("bar", "not running"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	decoded = map[string]any{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := decoded["error"]; ok {
		t.Fatal("expected no error field for a skip")
	}
}

func TestRunCounts(t *testing.T) {
	run := &Run{Steps: []StepResult{
		Succeeded("bar", ""),
		Skipped("vscode", ""),
		Skipped("zed", ""),
		Failed("borders", errors.New("exit 1"), ""),
	}}
	succeeded, skipped, failed := run.Counts()
	if succeeded != 1 || skipped != 2 || failed != 1 {
		t.Fatalf("Counts() = %d, %d, %d", succeeded, skipped, failed)
	}
}
