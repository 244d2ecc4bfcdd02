package conversation

import "context"

// Brain is the model endpoint seen from the session's side: given the full
// ordered history (the newest message already appended), produce the next
// assistant message. Implementations live in internal/brain.
type Brain interface {
	Generate(ctx context.Context, history []Message) (Message, error)
}

// Session owns the running message history and the brain connection. It is
// not safe for concurrent use; the single-turn-at-a-time rule is enforced by
// the session manager, so at most one goroutine drives a Session.
type Session struct {
	brain   Brain
	history []Message
}

// NewSession seeds a session from previously persisted messages, dropping
// entries whose parts are all empty to tolerate malformed legacy history.
func NewSession(brain Brain, seed []Message) *Session {
	s := &Session{brain: brain}
	for _, m := range seed {
		if m.Empty() {
			continue
		}
		s.history = append(s.history, m)
	}
	return s
}

// SendUser appends a user turn to history, asks the brain for a reply, and
// appends the raw reply, including intermediate tool-call replies, so that
// replaying history reconstructs the full multi-step exchange.
func (s *Session) SendUser(ctx context.Context, parts []ContentItem) (Reply, error) {
	return s.send(ctx, Message{Role: RoleUser, Parts: parts})
}

// SendToolResults feeds one ordered batch of tool results back to the brain.
func (s *Session) SendToolResults(ctx context.Context, results []ToolResult) (Reply, error) {
	parts := make([]ContentItem, 0, len(results))
	for _, r := range results {
		parts = append(parts, ResultItem(r))
	}
	return s.send(ctx, Message{Role: RoleTool, Parts: parts})
}

func (s *Session) send(ctx context.Context, msg Message) (Reply, error) {
	s.history = append(s.history, msg)
	reply, err := s.brain.Generate(ctx, s.History())
	if err != nil {
		return Reply{}, err
	}
	s.history = append(s.history, reply)
	if calls := reply.ToolCalls(); len(calls) > 0 {
		return Reply{Text: reply.JoinedText(), Calls: calls}, nil
	}
	return Reply{Text: reply.JoinedText()}, nil
}

// History returns a copy of the ordered message history.
func (s *Session) History() []Message {
	out := make([]Message, len(s.history))
	copy(out, s.history)
	return out
}
