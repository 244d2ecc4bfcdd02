package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/vivekps/nexus/internal/conversation"
)

func TestRoundTripKeepsTextDropsImages(t *testing.T) {
	msgs := []conversation.Message{
		{Role: conversation.RoleUser, Parts: []conversation.ContentItem{
			conversation.ImageItem("image/png", []byte{1, 2, 3}),
			conversation.TextItem("what is in this picture?"),
		}},
		{Role: conversation.RoleAssistant, Parts: []conversation.ContentItem{
			conversation.TextItem("a lighthouse"),
		}},
		// Tool traffic carries no text parts and must vanish on persist.
		{Role: conversation.RoleAssistant, Parts: []conversation.ContentItem{
			conversation.CallItem(conversation.ToolCall{Name: "web_search"}),
		}},
		{Role: conversation.RoleTool, Parts: []conversation.ContentItem{
			conversation.ResultItem(conversation.ToolResult{Name: "web_search", Content: "link"}),
		}},
	}

	restored := ToMessages(FromMessages(msgs))
	if len(restored) != 2 {
		t.Fatalf("len(restored) = %d, want 2", len(restored))
	}
	if restored[0].Role != conversation.RoleUser {
		t.Fatalf("restored[0].Role = %v, want user", restored[0].Role)
	}
	// Image-bearing turns lose only their image part, not surrounding text.
	if got := restored[0].JoinedText(); got != "what is in this picture?" {
		t.Fatalf("restored[0] text = %q, want question text", got)
	}
	if got := restored[1].JoinedText(); got != "a lighthouse" {
		t.Fatalf("restored[1] text = %q, want %q", got, "a lighthouse")
	}
}

func TestToMessagesToleratesLegacyRolesAndEmptyParts(t *testing.T) {
	stored := []StoredMessage{
		{Role: "model", Parts: []StoredPart{{Text: "hello"}}},
		{Role: "user", Parts: []StoredPart{{Text: ""}}},
	}
	msgs := ToMessages(stored)
	if len(msgs) != 1 {
		t.Fatalf("len(msgs) = %d, want 1", len(msgs))
	}
	if msgs[0].Role != conversation.RoleAssistant {
		t.Fatalf("legacy model role mapped to %v, want assistant", msgs[0].Role)
	}
}

func TestFileStoreSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_history.json")
	store := NewFileStore(path, nil)

	in := []StoredMessage{
		{Role: "user", Parts: []StoredPart{{Text: "hi"}}},
		{Role: "assistant", Parts: []StoredPart{{Text: "hello"}}},
	}
	if err := store.Save(context.Background(), in); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := NewFileStore(path, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(msgs) = %d, want 2", len(got))
	}
	if got[1].Parts[0].Text != "hello" {
		t.Fatalf("msgs[1] text = %q, want %q", got[1].Parts[0].Text, "hello")
	}
}

func TestFileStoreCorruptedFileTreatedAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_history.json")
	if err := os.WriteFile(path, []byte("]["), 0o644); err != nil {
		t.Fatalf("seed corrupted file: %v", err)
	}

	got, err := NewFileStore(path, nil).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v, want corruption tolerated", err)
	}
	if len(got) != 0 {
		t.Fatalf("len(msgs) = %d, want 0 after corruption", len(got))
	}
}

func TestFileStoreLoadMissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "absent.json"), nil)
	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("len(msgs) = %d, want 0", len(got))
	}
}
