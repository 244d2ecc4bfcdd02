package assistant

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/vivekps/nexus/internal/conversation"
	"github.com/vivekps/nexus/internal/history"
	"github.com/vivekps/nexus/internal/observability"
	"github.com/vivekps/nexus/internal/protocol"
	"github.com/vivekps/nexus/internal/reminder"
	"github.com/vivekps/nexus/internal/session"
)

// Service runs websocket connections: one conversation per connection,
// seeded from persisted history, with reminder notifications fanned in.
type Service struct {
	assistant *Assistant
	brain     conversation.Brain
	sessions  *session.Manager
	history   history.Store
	reminders *reminder.Scheduler
	metrics   *observability.Metrics
	logger    *zap.Logger
}

type ServiceConfig struct {
	Assistant *Assistant
	Brain     conversation.Brain
	Sessions  *session.Manager
	History   history.Store
	Reminders *reminder.Scheduler
	Metrics   *observability.Metrics
	Logger    *zap.Logger
}

func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		assistant: cfg.Assistant,
		brain:     cfg.Brain,
		sessions:  cfg.Sessions,
		history:   cfg.History,
		reminders: cfg.Reminders,
		metrics:   cfg.Metrics,
		logger:    logger,
	}
}

// RunConnection drives one websocket connection until the client goes away
// or ends the session. Inbound messages come pre-parsed from the gateway;
// everything pushed to outbound is written back to the client.
func (s *Service) RunConnection(ctx context.Context, sess *session.Session, inbound <-chan any, outbound chan<- any) error {
	stored, err := s.history.Load(ctx)
	if err != nil {
		s.logger.Error("history load failed", zap.String("session_id", sess.ID), zap.Error(err))
	}
	conv := conversation.NewSession(s.brain, history.ToMessages(stored))

	send := func(msg any) bool {
		select {
		case <-ctx.Done():
			return false
		case outbound <- msg:
			return true
		}
	}

	// Reminders outlive the turn that set them; forward fires on their own
	// goroutine so a long model call never delays a due notification.
	events, unsubscribe := s.reminders.Subscribe()
	defer unsubscribe()
	go func() {
		for evt := range events {
			if s.metrics != nil {
				s.metrics.RemindersFired.Inc()
			}
			send(protocol.ReminderFired{
				Type:       protocol.TypeReminderFired,
				SessionID:  sess.ID,
				ReminderID: evt.ID,
				Message:    "REMINDER! " + evt.Message,
				FiredAtMs:  evt.FiredAt.UnixMilli(),
			})
		}
	}()

	send(protocol.Status{Type: protocol.TypeStatus, SessionID: sess.ID, State: s.idleState()})

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-inbound:
			if !ok {
				return nil
			}
			switch m := msg.(type) {
			case protocol.UserText:
				s.runTurn(ctx, sess.ID, conv, m, send)
			case protocol.ClientControl:
				if m.Action == "end" {
					if _, err := s.sessions.End(sess.ID); err != nil && !errors.Is(err, session.ErrNotFound) {
						s.logger.Warn("session end failed", zap.String("session_id", sess.ID), zap.Error(err))
					}
					send(protocol.SystemEvent{
						Type:      protocol.TypeSystemEvent,
						SessionID: sess.ID,
						Code:      "session_ended",
					})
					return nil
				}
			}
		}
	}
}

func (s *Service) runTurn(ctx context.Context, sessionID string, conv *conversation.Session, msg protocol.UserText, send func(any) bool) {
	turnID, err := s.sessions.BeginTurn(sessionID)
	if err != nil {
		code := "turn_rejected"
		if errors.Is(err, session.ErrBusy) {
			code = "turn_in_flight"
		}
		send(protocol.ErrorEvent{
			Type:      protocol.TypeErrorEvent,
			SessionID: sessionID,
			Code:      code,
			Detail:    err.Error(),
		})
		return
	}
	defer s.sessions.FinishTurn(sessionID, turnID)

	send(protocol.Status{Type: protocol.TypeStatus, SessionID: sessionID, State: protocol.StatusBusy})

	text, outcome := s.assistant.RunTurn(ctx, conv, msg.Text, func(notice string) {
		send(protocol.ToolNotice{
			Type:      protocol.TypeToolNotice,
			SessionID: sessionID,
			TurnID:    turnID,
			Notice:    notice,
		})
	})

	send(protocol.AssistantText{
		Type:      protocol.TypeAssistantText,
		SessionID: sessionID,
		TurnID:    turnID,
		Text:      text,
		Outcome:   string(outcome),
	})

	// Persist at the turn boundary so a crash loses at most the turn in
	// flight. Only text parts survive serialization.
	if err := s.history.Save(ctx, history.FromMessages(conv.History())); err != nil {
		s.logger.Error("history save failed", zap.String("session_id", sessionID), zap.Error(err))
	}

	send(protocol.Status{Type: protocol.TypeStatus, SessionID: sessionID, State: s.idleState()})
}

func (s *Service) idleState() string {
	if s.assistant.Enabled() {
		return protocol.StatusReady
	}
	return protocol.StatusDegraded
}
