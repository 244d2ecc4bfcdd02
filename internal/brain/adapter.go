package brain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vivekps/nexus/internal/conversation"
)

// Adapter is the black-box chat endpoint: it takes the full ordered history
// (newest message last) and returns the model's next message, whose parts
// are terminal text and/or tool calls. Wire mapping to the hosted API
// happens entirely inside the adapter.
type Adapter interface {
	Generate(ctx context.Context, history []conversation.Message) (conversation.Message, error)
}

// ParamSpec describes one string-typed tool parameter for advertisement.
type ParamSpec struct {
	Name        string
	Description string
	Required    bool
}

// ToolDeclaration is the machine-readable description of one local tool,
// advertised to the endpoint so the model can request invocations.
type ToolDeclaration struct {
	Name        string
	Description string
	Params      []ParamSpec
}

// Config controls adapter construction.
type Config struct {
	Mode              string
	APIKey            string
	BaseURL           string
	ModelID           string
	SystemInstruction string
	Timeout           time.Duration
	Tools             []ToolDeclaration
}

func NewAdapter(cfg Config) (Adapter, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "auto":
		if strings.TrimSpace(cfg.APIKey) != "" {
			return NewGeminiAdapter(cfg), nil
		}
		return NewMockAdapter(), nil
	case "http":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, errors.New("model endpoint API key is required for http mode")
		}
		return NewGeminiAdapter(cfg), nil
	case "mock":
		return NewMockAdapter(), nil
	default:
		return nil, fmt.Errorf("unsupported brain adapter mode %q", cfg.Mode)
	}
}
