package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vivekps/nexus/internal/notes"
)

// NoNotesSentinel is the exact reply for an empty note list so the model can
// relay it instead of inventing notes.
const NoNotesSentinel = "I have no personal notes saved yet."

// AddPersonalNoteTool appends a timestamped note to the durable store.
func AddPersonalNoteTool(store notes.Store, now func() time.Time) Definition {
	if now == nil {
		now = time.Now
	}
	return Definition{
		Name:        "add_personal_note",
		Description: "Saves a piece of personal information or a key preference for later retrieval.",
		Params: []Param{
			{Name: "note_text", Description: "The note to remember.", Required: true},
		},
		Notice: func(map[string]string) string {
			return "Acknowledged. Saving a personal note."
		},
		Handler: func(ctx context.Context, args map[string]string) (string, error) {
			text := args["note_text"]
			if err := store.Append(ctx, notes.NewNote(text, now())); err != nil {
				return "", fmt.Errorf("I could not save that note: %v", err)
			}
			return fmt.Sprintf("I have successfully remembered the note: '%s'", text), nil
		},
	}
}

// RetrievePersonalNotesTool returns every stored note as one formatted block.
// The query parameter is declared for the model's sake but does not filter;
// the full list always comes back.
func RetrievePersonalNotesTool(store notes.Store) Definition {
	return Definition{
		Name:        "retrieve_personal_notes",
		Description: "Returns all stored personal notes for the assistant to process.",
		Params: []Param{
			{Name: "query", Description: "What the user is asking about.", Required: false},
		},
		Handler: func(ctx context.Context, _ map[string]string) (string, error) {
			items, err := store.Load(ctx)
			if err != nil {
				return "", fmt.Errorf("I could not read the saved notes: %v", err)
			}
			if len(items) == 0 {
				return NoNotesSentinel, nil
			}
			lines := make([]string, 0, len(items))
			for _, n := range items {
				lines = append(lines, fmt.Sprintf("Time: %s, Note: %s", n.Time, n.Note))
			}
			return "The user's stored notes are:\n" + strings.Join(lines, "\n"), nil
		},
	}
}

// TakeQuickNoteTool appends one line to the plain-text scratch file, bypassing
// the structured note store entirely.
func TakeQuickNoteTool(log *notes.QuickNoteLog, now func() time.Time) Definition {
	if now == nil {
		now = time.Now
	}
	return Definition{
		Name:        "take_quick_note",
		Description: "Saves a text note instantly to a local scratch file.",
		Params: []Param{
			{Name: "note_text", Description: "The note to jot down.", Required: true},
		},
		Notice: func(map[string]string) string {
			return "Using take_quick_note tool to save a transient note."
		},
		Handler: func(_ context.Context, args map[string]string) (string, error) {
			if err := log.Append(args["note_text"], now()); err != nil {
				return "", fmt.Errorf("Could not save the quick note due to an error: %v", err)
			}
			return fmt.Sprintf("Note successfully saved to %s.", log.Path()), nil
		},
	}
}
