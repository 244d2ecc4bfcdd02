package brain

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vivekps/nexus/internal/conversation"
	"github.com/vivekps/nexus/internal/reliability"
)

const (
	generateMaxAttempts = 3
	retryBackoffBase    = 400 * time.Millisecond
	retryBackoffCap     = 3 * time.Second
)

// GeminiAdapter speaks the generateContent REST contract of the hosted chat
// endpoint. One Generate call is one non-streaming request carrying the full
// history, the system instruction, and the tool declarations.
type GeminiAdapter struct {
	baseURL      string
	apiKey       string
	modelID      string
	systemPrompt string
	tools        []ToolDeclaration
	client       *http.Client
}

func NewGeminiAdapter(cfg Config) *GeminiAdapter {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &GeminiAdapter{
		baseURL:      strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:       strings.TrimSpace(cfg.APIKey),
		modelID:      strings.TrimSpace(cfg.ModelID),
		systemPrompt: cfg.SystemInstruction,
		tools:        cfg.Tools,
		client:       &http.Client{Timeout: timeout},
	}
}

// EndpointError is a non-2xx answer from the model endpoint.
type EndpointError struct {
	StatusCode int
	Message    string
}

func (e *EndpointError) Error() string {
	return fmt.Sprintf("model endpoint status %d: %s", e.StatusCode, e.Message)
}

func (e *EndpointError) Retryable() bool {
	return reliability.IsRetryableHTTPStatus(e.StatusCode)
}

func (a *GeminiAdapter) Generate(ctx context.Context, history []conversation.Message) (conversation.Message, error) {
	req := generateRequest{
		Contents: encodeContents(history),
		Tools:    encodeTools(a.tools),
	}
	if strings.TrimSpace(a.systemPrompt) != "" {
		req.SystemInstruction = &wireContent{Parts: []wirePart{{Text: a.systemPrompt}}}
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return conversation.Message{}, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", a.baseURL, a.modelID)

	var lastErr error
	for attempt := 0; attempt < generateMaxAttempts; attempt++ {
		if attempt > 0 {
			backoff := reliability.ExponentialBackoff(attempt, retryBackoffBase, retryBackoffCap)
			select {
			case <-ctx.Done():
				return conversation.Message{}, ctx.Err()
			case <-time.After(backoff):
			}
		}

		msg, err := a.doGenerate(ctx, url, payload)
		if err == nil {
			return msg, nil
		}
		lastErr = err

		var epErr *EndpointError
		if !errors.As(err, &epErr) || !epErr.Retryable() {
			return conversation.Message{}, err
		}
	}
	return conversation.Message{}, lastErr
}

func (a *GeminiAdapter) doGenerate(ctx context.Context, url string, payload []byte) (conversation.Message, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return conversation.Message{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", a.apiKey)

	res, err := a.client.Do(httpReq)
	if err != nil {
		return conversation.Message{}, fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 8<<20))
	if err != nil {
		return conversation.Message{}, fmt.Errorf("read response: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg := strings.TrimSpace(string(body))
		var errRes generateResponse
		if json.Unmarshal(body, &errRes) == nil && errRes.Error != nil {
			msg = errRes.Error.Message
		}
		return conversation.Message{}, &EndpointError{StatusCode: res.StatusCode, Message: msg}
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return conversation.Message{}, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Candidates) == 0 {
		return conversation.Message{}, fmt.Errorf("model endpoint returned no candidates")
	}

	return decodeContent(parsed.Candidates[0].Content), nil
}

// --- wire format ---

type generateRequest struct {
	SystemInstruction *wireContent  `json:"systemInstruction,omitempty"`
	Contents          []wireContent `json:"contents"`
	Tools             []wireTool    `json:"tools,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content wireContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type wireContent struct {
	Role  string     `json:"role,omitempty"`
	Parts []wirePart `json:"parts"`
}

type wirePart struct {
	Text             string                `json:"text,omitempty"`
	InlineData       *wireInlineData       `json:"inlineData,omitempty"`
	FunctionCall     *wireFunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *wireFunctionResponse `json:"functionResponse,omitempty"`
}

type wireInlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type wireFunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

type wireFunctionResponse struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

type wireTool struct {
	FunctionDeclarations []wireFunctionDeclaration `json:"functionDeclarations"`
}

type wireFunctionDeclaration struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Parameters  *wireSchema `json:"parameters,omitempty"`
}

type wireSchema struct {
	Type        string                `json:"type"`
	Description string                `json:"description,omitempty"`
	Properties  map[string]wireSchema `json:"properties,omitempty"`
	Required    []string              `json:"required,omitempty"`
}

func encodeTools(decls []ToolDeclaration) []wireTool {
	if len(decls) == 0 {
		return nil
	}
	fns := make([]wireFunctionDeclaration, 0, len(decls))
	for _, d := range decls {
		fn := wireFunctionDeclaration{Name: d.Name, Description: d.Description}
		if len(d.Params) > 0 {
			schema := wireSchema{Type: "object", Properties: map[string]wireSchema{}}
			for _, p := range d.Params {
				schema.Properties[p.Name] = wireSchema{Type: "string", Description: p.Description}
				if p.Required {
					schema.Required = append(schema.Required, p.Name)
				}
			}
			fn.Parameters = &schema
		}
		fns = append(fns, fn)
	}
	return []wireTool{{FunctionDeclarations: fns}}
}

func encodeContents(history []conversation.Message) []wireContent {
	out := make([]wireContent, 0, len(history))
	for _, m := range history {
		wc := wireContent{Role: encodeRole(m.Role)}
		for _, p := range m.Parts {
			switch p.Kind {
			case conversation.PartText:
				if p.Text != "" {
					wc.Parts = append(wc.Parts, wirePart{Text: p.Text})
				}
			case conversation.PartImage:
				if p.Image != nil && len(p.Image.Data) > 0 {
					wc.Parts = append(wc.Parts, wirePart{InlineData: &wireInlineData{
						MIMEType: p.Image.MIMEType,
						Data:     base64.StdEncoding.EncodeToString(p.Image.Data),
					}})
				}
			case conversation.PartToolCall:
				if p.Call != nil {
					args := make(map[string]any, len(p.Call.Args))
					for k, v := range p.Call.Args {
						args[k] = v
					}
					wc.Parts = append(wc.Parts, wirePart{FunctionCall: &wireFunctionCall{
						Name: p.Call.Name,
						Args: args,
					}})
				}
			case conversation.PartToolResult:
				if p.Result != nil {
					wc.Parts = append(wc.Parts, wirePart{FunctionResponse: &wireFunctionResponse{
						Name:     p.Result.Name,
						Response: map[string]any{"result": p.Result.Content},
					}})
				}
			}
		}
		if len(wc.Parts) == 0 {
			continue
		}
		out = append(out, wc)
	}
	return out
}

func decodeContent(wc wireContent) conversation.Message {
	msg := conversation.Message{Role: conversation.RoleAssistant}
	for _, p := range wc.Parts {
		switch {
		case p.FunctionCall != nil:
			args := make(map[string]string, len(p.FunctionCall.Args))
			for k, v := range p.FunctionCall.Args {
				if s, ok := v.(string); ok {
					args[k] = s
				} else {
					args[k] = fmt.Sprintf("%v", v)
				}
			}
			msg.Parts = append(msg.Parts, conversation.CallItem(conversation.ToolCall{
				Name: p.FunctionCall.Name,
				Args: args,
			}))
		case p.Text != "":
			msg.Parts = append(msg.Parts, conversation.TextItem(p.Text))
		}
	}
	return msg
}

func encodeRole(r conversation.Role) string {
	switch r {
	case conversation.RoleAssistant:
		return "model"
	default:
		// Tool results ride in a user-role content per the endpoint contract.
		return "user"
	}
}
