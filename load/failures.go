package load

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// FailureLog is the append-mode, tab-separated miss log every batch job
// writes alongside its output. Repeated runs accumulate history.
type FailureLog struct {
	mu   sync.Mutex
	file *os.File
}

func OpenFailureLog(path string) (*FailureLog, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open failure log %s: %w", path, err)
	}
	return &FailureLog{file: file}, nil
}

// Record appends one tab-separated line. Safe for concurrent workers.
func (l *FailureLog) Record(fields ...string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := fmt.Fprintln(l.file, strings.Join(fields, "\t")); err != nil {
		return fmt.Errorf("failed to write failure log entry: %w", err)
	}
	return nil
}

func (l *FailureLog) Close() error {
	return l.file.Close()
}
