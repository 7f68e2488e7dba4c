package auditlog

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestRecord_FormatAndAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "vigia.log")
	l := New(path)
	l.now = func() time.Time { return time.Date(2025, 3, 10, 14, 30, 5, 0, time.UTC) }

	if err := l.Record(ActionScanInitiated, "target https://example.com"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := l.Record(ActionScanCompleted, "target https://example.com score 85"); err != nil {
		t.Fatalf("Record: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != "[2025-03-10 14:30:05] SCAN_INITIATED - target https://example.com" {
		t.Errorf("unexpected first line: %q", lines[0])
	}
	if !strings.Contains(lines[1], "SCAN_COMPLETED") {
		t.Errorf("unexpected second line: %q", lines[1])
	}
}

func TestRecord_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deep", "nested", "vigia.log")
	l := New(path)

	if err := l.Record(ActionMonitoringStarted, "2 targets"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}

func TestRecord_ConcurrentWritersKeepLinesWhole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vigia.log")
	l := New(path)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Record(ActionScanCompleted, "concurrent entry")
		}()
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 20 {
		t.Fatalf("expected 20 lines, got %d", len(lines))
	}
	for _, line := range lines {
		if !strings.HasSuffix(line, "SCAN_COMPLETED - concurrent entry") {
			t.Errorf("torn line: %q", line)
		}
	}
}
