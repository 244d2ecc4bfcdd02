package notes

import (
	"context"
	"time"
)

// Note is one persisted personal fact. Notes are append-only: the assistant
// never mutates or deletes them.
type Note struct {
	Time string `json:"time"`
	Note string `json:"note"`
}

const timestampLayout = "2006-01-02 15:04:05"

// NewNote stamps a note body with the current wall-clock time.
func NewNote(body string, now time.Time) Note {
	return Note{Time: now.Format(timestampLayout), Note: body}
}

// Store persists and retrieves the personal notes list. Append must leave
// durable storage reflecting the full list; loads after a process restart
// must see every appended note.
type Store interface {
	Load(ctx context.Context) ([]Note, error)
	Append(ctx context.Context, n Note) error
	Close() error
}
