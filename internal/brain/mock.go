package brain

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/vivekps/nexus/internal/conversation"
)

// MockAdapter provides deterministic local replies when no endpoint
// credential is configured. Tests can enqueue scripted replies.
type MockAdapter struct {
	mu       sync.Mutex
	scripted []conversation.Message
}

func NewMockAdapter() *MockAdapter { return &MockAdapter{} }

// Enqueue appends a scripted reply, returned in order by Generate.
func (a *MockAdapter) Enqueue(msg conversation.Message) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.scripted = append(a.scripted, msg)
}

func (a *MockAdapter) Generate(ctx context.Context, history []conversation.Message) (conversation.Message, error) {
	select {
	case <-ctx.Done():
		return conversation.Message{}, ctx.Err()
	default:
	}

	a.mu.Lock()
	if len(a.scripted) > 0 {
		next := a.scripted[0]
		a.scripted = a.scripted[1:]
		a.mu.Unlock()
		return next, nil
	}
	a.mu.Unlock()

	text := "I am listening."
	if len(history) > 0 {
		if last := strings.TrimSpace(history[len(history)-1].JoinedText()); last != "" {
			text = fmt.Sprintf("I heard you: %s", last)
		}
	}
	return conversation.Message{
		Role:  conversation.RoleAssistant,
		Parts: []conversation.ContentItem{conversation.TextItem(text)},
	}, nil
}
