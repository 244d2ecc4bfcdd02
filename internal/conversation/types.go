package conversation

import "strings"

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// PartKind identifies content item variants.
type PartKind string

const (
	PartText       PartKind = "text"
	PartImage      PartKind = "image"
	PartToolCall   PartKind = "tool_call"
	PartToolResult PartKind = "tool_result"
)

// ToolCall is the model's request to invoke one local tool. It exists only
// within a single orchestration round.
type ToolCall struct {
	Name string            `json:"name"`
	Args map[string]string `json:"args"`
}

// ToolResult is what a tool handler produced for one call. IsError marks a
// handler failure converted to text at the dispatch boundary.
type ToolResult struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	IsError bool   `json:"is_error,omitempty"`
}

// ImageRef carries raw image bytes attached to a user turn. Images are never
// persisted; replaying them across sessions is not safe.
type ImageRef struct {
	MIMEType string
	Data     []byte
}

// ContentItem is one tagged part of a message. Exactly one variant field is
// populated for non-text kinds.
type ContentItem struct {
	Kind   PartKind
	Text   string
	Image  *ImageRef
	Call   *ToolCall
	Result *ToolResult
}

func TextItem(text string) ContentItem {
	return ContentItem{Kind: PartText, Text: text}
}

func ImageItem(mimeType string, data []byte) ContentItem {
	return ContentItem{Kind: PartImage, Image: &ImageRef{MIMEType: mimeType, Data: data}}
}

func CallItem(call ToolCall) ContentItem {
	return ContentItem{Kind: PartToolCall, Call: &call}
}

func ResultItem(result ToolResult) ContentItem {
	return ContentItem{Kind: PartToolResult, Result: &result}
}

// Message is one exchange unit in conversation history.
type Message struct {
	Role  Role
	Parts []ContentItem
}

// JoinedText concatenates the text-bearing parts of the message.
func (m Message) JoinedText() string {
	var b strings.Builder
	for _, p := range m.Parts {
		if p.Kind != PartText || p.Text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(p.Text)
	}
	return b.String()
}

// ToolCalls returns the ordered tool calls embedded in the message.
func (m Message) ToolCalls() []ToolCall {
	var calls []ToolCall
	for _, p := range m.Parts {
		if p.Kind == PartToolCall && p.Call != nil {
			calls = append(calls, *p.Call)
		}
	}
	return calls
}

// Empty reports whether the message carries no usable content. Used to drop
// malformed legacy entries when seeding history from storage.
func (m Message) Empty() bool {
	for _, p := range m.Parts {
		switch p.Kind {
		case PartText:
			if strings.TrimSpace(p.Text) != "" {
				return false
			}
		case PartImage:
			if p.Image != nil && len(p.Image.Data) > 0 {
				return false
			}
		case PartToolCall:
			if p.Call != nil {
				return false
			}
		case PartToolResult:
			if p.Result != nil {
				return false
			}
		}
	}
	return true
}

// Reply is the model's answer to one send: either terminal text or a
// non-empty ordered sequence of tool calls.
type Reply struct {
	Text  string
	Calls []ToolCall
}

// IsFinal reports whether the reply terminates the orchestration loop.
func (r Reply) IsFinal() bool {
	return len(r.Calls) == 0
}
