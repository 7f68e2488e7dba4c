// Package auditlog appends scan and monitoring actions to a flat log file so
// an operator can reconstruct what the tool did and when.
package auditlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vigia-scan/vigia/internal/shared/constants"
)

// Audited actions.
const (
	ActionScanInitiated     = "SCAN_INITIATED"
	ActionScanCompleted     = "SCAN_COMPLETED"
	ActionScanError         = "SCAN_ERROR"
	ActionMonitoringStarted = "MONITORING_STARTED"
	ActionMonitoringStopped = "MONITORING_STOPPED"
	ActionMonitoringError   = "MONITORING_ERROR"
)

// Logger appends timestamped action lines to a single file. Safe for
// concurrent use.
type Logger struct {
	path string

	mu  sync.Mutex
	now func() time.Time
}

// New builds a logger writing to path. The parent directory is created on the
// first record, not here.
func New(path string) *Logger {
	return &Logger{path: path, now: time.Now}
}

// Path returns the log file location.
func (l *Logger) Path() string {
	return l.path
}

// Record appends one "[timestamp] ACTION - details" line. The file is opened
// per call so external log rotation needs no coordination.
func (l *Logger) Record(action, details string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), constants.DefaultDirPerm); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, constants.DefaultFilePerm)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] %s - %s\n", l.now().Format("2006-01-02 15:04:05"), action, details)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("append audit log: %w", err)
	}
	return nil
}
