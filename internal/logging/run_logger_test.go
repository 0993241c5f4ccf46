package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMemoryLoggerAppendsEntries(t *testing.T) {
	logger := NewMemoryLogger("test-run")

	logger.Log("fetching %d files", 3)
	logger.Log("done")

	entries := logger.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if !strings.Contains(entries[0], "fetching 3 files") {
		t.Errorf("first entry = %q", entries[0])
	}
	if !strings.Contains(entries[1], "done") {
		t.Errorf("second entry = %q", entries[1])
	}
}

func TestEntriesReturnsCopy(t *testing.T) {
	logger := NewMemoryLogger("test-run")
	logger.Log("one")

	entries := logger.Entries()
	entries[0] = "mutated"

	if got := logger.Entries()[0]; got == "mutated" {
		t.Error("Entries() exposed internal slice")
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var logger *RunLogger
	logger.Log("no panic")
	logger.LogSection("section")
	logger.LogError("ctx", nil)
	logger.Close()
	if logger.Entries() != nil {
		t.Error("nil logger should have no entries")
	}
}

func TestSetCurrentLoggerReplacesActive(t *testing.T) {
	dir := t.TempDir()

	if _, err := StartRunLogging("old-run", dir); err != nil {
		t.Fatal(err)
	}

	fallback := NewMemoryLogger("new-run")
	SetCurrentLogger(fallback)

	if got := GetCurrentLogger(); got != fallback {
		t.Fatalf("current logger = %v, want the fallback logger", got.RunID())
	}

	// The previous logger's file must be finalized by the handover.
	matches, err := filepath.Glob(filepath.Join(dir, "run_old-run_*.log"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("log file matches = %v, err = %v", matches, err)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Run logging completed") {
		t.Errorf("previous transcript not closed, got:\n%s", data)
	}
}

func TestFileBackedLoggerWritesTranscript(t *testing.T) {
	dir := t.TempDir()

	logger, err := StartRunLogging("abc123", dir)
	if err != nil {
		t.Fatal(err)
	}
	logger.Log("hello transcript")
	logger.Close()

	matches, err := filepath.Glob(filepath.Join(dir, "run_abc123_*.log"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("log file matches = %v, err = %v", matches, err)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "hello transcript") {
		t.Errorf("log file missing entry, got:\n%s", data)
	}
	if !strings.Contains(string(data), "Run ID: abc123") {
		t.Error("log file missing header")
	}
}
