package notes

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// QuickNoteLog is the append-only plain-text side file: one line per note
// with a timestamp prefix, independent of the structured notes store.
type QuickNoteLog struct {
	mu   sync.Mutex
	path string
}

func NewQuickNoteLog(path string) *QuickNoteLog {
	return &QuickNoteLog{path: path}
}

func (l *QuickNoteLog) Append(body string, now time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open quick note file: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] - %s\n", now.Format(timestampLayout), body)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("append quick note: %w", err)
	}
	return nil
}

// Path returns the side file location, for user-facing confirmations.
func (l *QuickNoteLog) Path() string { return l.path }
