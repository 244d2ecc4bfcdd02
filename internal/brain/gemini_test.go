package brain

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vivekps/nexus/internal/conversation"
)

func testConfig(baseURL string) Config {
	return Config{
		Mode:              "http",
		APIKey:            "test-key",
		BaseURL:           baseURL,
		ModelID:           "gemini-2.5-flash",
		SystemInstruction: "You are a test assistant.",
		Timeout:           5 * time.Second,
		Tools: []ToolDeclaration{
			{
				Name:        "web_search",
				Description: "Searches the web.",
				Params:      []ParamSpec{{Name: "query", Description: "search terms", Required: true}},
			},
		},
	}
}

func TestGeminiAdapterEncodesHistoryAndTools(t *testing.T) {
	var captured map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("api key header = %q, want %q", got, "test-key")
		}
		if !strings.HasSuffix(r.URL.Path, "/v1beta/models/gemini-2.5-flash:generateContent") {
			t.Errorf("path = %q, want generateContent for the configured model", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("request body is not JSON: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"done"}]}}]}`))
	}))
	defer ts.Close()

	adapter := NewGeminiAdapter(testConfig(ts.URL))
	history := []conversation.Message{
		{Role: conversation.RoleUser, Parts: []conversation.ContentItem{conversation.TextItem("hello")}},
		{Role: conversation.RoleAssistant, Parts: []conversation.ContentItem{
			conversation.CallItem(conversation.ToolCall{Name: "web_search", Args: map[string]string{"query": "weather"}}),
		}},
		{Role: conversation.RoleTool, Parts: []conversation.ContentItem{
			conversation.ResultItem(conversation.ToolResult{Name: "web_search", Content: "link"}),
		}},
	}

	msg, err := adapter.Generate(context.Background(), history)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got := msg.JoinedText(); got != "done" {
		t.Fatalf("reply text = %q, want %q", got, "done")
	}

	contents, _ := captured["contents"].([]any)
	if len(contents) != 3 {
		t.Fatalf("wire contents length = %d, want 3", len(contents))
	}
	first := contents[0].(map[string]any)
	if first["role"] != "user" {
		t.Fatalf("contents[0].role = %v, want user", first["role"])
	}
	second := contents[1].(map[string]any)
	if second["role"] != "model" {
		t.Fatalf("contents[1].role = %v, want model", second["role"])
	}
	third := contents[2].(map[string]any)
	if third["role"] != "user" {
		t.Fatalf("tool results must ride in a user-role content, got %v", third["role"])
	}
	thirdParts := third["parts"].([]any)
	if _, ok := thirdParts[0].(map[string]any)["functionResponse"]; !ok {
		t.Fatalf("contents[2].parts[0] missing functionResponse: %+v", thirdParts[0])
	}

	if _, ok := captured["systemInstruction"]; !ok {
		t.Fatalf("request missing systemInstruction")
	}
	toolsField, _ := captured["tools"].([]any)
	if len(toolsField) != 1 {
		t.Fatalf("wire tools length = %d, want 1", len(toolsField))
	}
}

func TestGeminiAdapterDecodesToolCalls(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[
			{"functionCall":{"name":"set_reminder","args":{"time_string":"10 seconds","reminder_text":"stretch"}}},
			{"functionCall":{"name":"check_current_time","args":{}}}
		]}}]}`))
	}))
	defer ts.Close()

	adapter := NewGeminiAdapter(testConfig(ts.URL))
	msg, err := adapter.Generate(context.Background(), []conversation.Message{
		{Role: conversation.RoleUser, Parts: []conversation.ContentItem{conversation.TextItem("remind me")}},
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	calls := msg.ToolCalls()
	if len(calls) != 2 {
		t.Fatalf("len(calls) = %d, want 2", len(calls))
	}
	if calls[0].Name != "set_reminder" || calls[1].Name != "check_current_time" {
		t.Fatalf("call order = %q,%q, want set_reminder,check_current_time", calls[0].Name, calls[1].Name)
	}
	if calls[0].Args["time_string"] != "10 seconds" {
		t.Fatalf("args[time_string] = %q, want %q", calls[0].Args["time_string"], "10 seconds")
	}
}

func TestGeminiAdapterRetriesRetryableStatus(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"code":503,"message":"overloaded"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"recovered"}]}}]}`))
	}))
	defer ts.Close()

	adapter := NewGeminiAdapter(testConfig(ts.URL))
	msg, err := adapter.Generate(context.Background(), []conversation.Message{
		{Role: conversation.RoleUser, Parts: []conversation.ContentItem{conversation.TextItem("hi")}},
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got := msg.JoinedText(); got != "recovered" {
		t.Fatalf("reply text = %q, want %q", got, "recovered")
	}
	if hits.Load() != 2 {
		t.Fatalf("endpoint hit %d times, want 2", hits.Load())
	}
}

func TestGeminiAdapterStopsOnNonRetryableStatus(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"bad request"}}`))
	}))
	defer ts.Close()

	adapter := NewGeminiAdapter(testConfig(ts.URL))
	_, err := adapter.Generate(context.Background(), []conversation.Message{
		{Role: conversation.RoleUser, Parts: []conversation.ContentItem{conversation.TextItem("hi")}},
	})
	if err == nil {
		t.Fatalf("Generate() error = nil, want endpoint fault")
	}
	if hits.Load() != 1 {
		t.Fatalf("endpoint hit %d times, want 1 (no retry on 400)", hits.Load())
	}
}

func TestNewAdapterModes(t *testing.T) {
	if _, err := NewAdapter(Config{Mode: "http"}); err == nil {
		t.Fatalf("http mode without key: error = nil, want failure")
	}
	a, err := NewAdapter(Config{Mode: "auto"})
	if err != nil {
		t.Fatalf("auto mode without key: error = %v", err)
	}
	if _, ok := a.(*MockAdapter); !ok {
		t.Fatalf("auto mode without key = %T, want *MockAdapter", a)
	}
	a, err = NewAdapter(Config{Mode: "auto", APIKey: "k", BaseURL: "http://x", ModelID: "m"})
	if err != nil {
		t.Fatalf("auto mode with key: error = %v", err)
	}
	if _, ok := a.(*GeminiAdapter); !ok {
		t.Fatalf("auto mode with key = %T, want *GeminiAdapter", a)
	}
	if _, err := NewAdapter(Config{Mode: "telepathy"}); err == nil {
		t.Fatalf("unknown mode: error = nil, want failure")
	}
}
