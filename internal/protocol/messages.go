package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType identifies websocket payload variants.
type MessageType string

const (
	TypeUserText      MessageType = "user_text"
	TypeClientControl MessageType = "client_control"
	TypeAssistantText MessageType = "assistant_text"
	TypeToolNotice    MessageType = "tool_notice"
	TypeReminderFired MessageType = "reminder_fired"
	TypeStatus        MessageType = "status"
	TypeSystemEvent   MessageType = "system_event"
	TypeErrorEvent    MessageType = "error_event"
)

// Session status values carried by Status messages.
const (
	StatusBusy     = "busy"
	StatusReady    = "ready"
	StatusDegraded = "degraded"
)

var ErrUnsupportedType = errors.New("unsupported message type")

type Envelope struct {
	Type MessageType `json:"type"`
}

// UserText is one user turn. An image attachment rides inside the text as an
// [IMAGE_PATH:...] tag, same as the desktop input box.
type UserText struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Text      string      `json:"text"`
	TSMs      int64       `json:"ts_ms,omitempty"`
}

type ClientControl struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Action    string      `json:"action"`
}

// AssistantText is a terminal answer for one turn, Done or Failed alike.
type AssistantText struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	TurnID    string      `json:"turn_id"`
	Text      string      `json:"text"`
	Outcome   string      `json:"outcome"`
}

// ToolNotice is the synchronous "using tool X" line emitted before a tool
// batch executes.
type ToolNotice struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	TurnID    string      `json:"turn_id"`
	Notice    string      `json:"notice"`
}

// ReminderFired is a standalone notification, independent of any turn.
type ReminderFired struct {
	Type       MessageType `json:"type"`
	SessionID  string      `json:"session_id"`
	ReminderID string      `json:"reminder_id"`
	Message    string      `json:"message"`
	FiredAtMs  int64       `json:"fired_at_ms"`
}

// Status toggles the shell's input between busy and ready, or reports the
// degraded AI-disabled mode.
type Status struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	State     string      `json:"state"`
}

type SystemEvent struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Code      string      `json:"code"`
	Detail    string      `json:"detail,omitempty"`
}

type ErrorEvent struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Code      string      `json:"code"`
	Detail    string      `json:"detail"`
}

// ParseClientMessage decodes and validates one client-originated payload.
func ParseClientMessage(raw []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypeUserText:
		var msg UserText
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.SessionID == "" || msg.Text == "" {
			return nil, errors.New("invalid user_text")
		}
		return msg, nil
	case TypeClientControl:
		var msg ClientControl
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.SessionID == "" || msg.Action == "" {
			return nil, errors.New("invalid client_control")
		}
		return msg, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, env.Type)
	}
}
