package history

import (
	"context"

	"github.com/vivekps/nexus/internal/conversation"
)

// StoredPart is one persisted content item. Only text survives persistence:
// images are not safely replayable across sessions and tool traffic is
// machine-generated noise for a future session.
type StoredPart struct {
	Text string `json:"text"`
}

// StoredMessage is the durable form of one history entry.
type StoredMessage struct {
	Role  string       `json:"role"`
	Parts []StoredPart `json:"parts"`
}

// Store persists the conversation history as an ordered message sequence.
// Save is a whole-state rewrite; only one writer may be active at a time.
type Store interface {
	Load(ctx context.Context) ([]StoredMessage, error)
	Save(ctx context.Context, msgs []StoredMessage) error
	Close() error
}

// FromMessages projects in-memory history onto its durable form, keeping
// only text-bearing parts and omitting entries left with none.
func FromMessages(msgs []conversation.Message) []StoredMessage {
	out := make([]StoredMessage, 0, len(msgs))
	for _, m := range msgs {
		var parts []StoredPart
		for _, p := range m.Parts {
			if p.Kind == conversation.PartText && p.Text != "" {
				parts = append(parts, StoredPart{Text: p.Text})
			}
		}
		if len(parts) == 0 {
			continue
		}
		out = append(out, StoredMessage{Role: string(m.Role), Parts: parts})
	}
	return out
}

// ToMessages rebuilds in-memory history from storage. Entries whose parts
// are all empty are dropped to tolerate malformed legacy files.
func ToMessages(stored []StoredMessage) []conversation.Message {
	out := make([]conversation.Message, 0, len(stored))
	for _, sm := range stored {
		var parts []conversation.ContentItem
		for _, p := range sm.Parts {
			if p.Text == "" {
				continue
			}
			parts = append(parts, conversation.TextItem(p.Text))
		}
		if len(parts) == 0 {
			continue
		}
		out = append(out, conversation.Message{Role: roleFromStored(sm.Role), Parts: parts})
	}
	return out
}

func roleFromStored(role string) conversation.Role {
	switch role {
	case string(conversation.RoleAssistant), "model":
		return conversation.RoleAssistant
	case string(conversation.RoleTool):
		return conversation.RoleTool
	default:
		return conversation.RoleUser
	}
}
