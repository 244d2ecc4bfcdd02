// Package tools holds the assistant's callable tool surface: an immutable
// registry built at startup from an explicit list of definitions, plus the
// handlers themselves. Handlers are leaves; nothing here knows about the
// orchestration loop that drives them.
package tools

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/vivekps/nexus/internal/conversation"
)

// Handler executes one tool call. The returned string is fed back to the
// model verbatim; a non-nil error marks the result as a tool fault without
// aborting sibling calls in the same batch.
type Handler func(ctx context.Context, args map[string]string) (string, error)

// Param describes one declared argument of a tool.
type Param struct {
	Name        string
	Description string
	Required    bool
}

// Definition is the full declaration of one tool: the schema advertised to
// the model, the handler that runs it, and an optional notice template shown
// to the user before execution.
type Definition struct {
	Name        string
	Description string
	Params      []Param
	Handler     Handler

	// Notice builds the progress line announced before the handler runs.
	// Nil means a generic "Using the <name> tool." line.
	Notice func(args map[string]string) string
}

// Registry is a fixed name-to-definition map. It is never mutated after New.
type Registry struct {
	defs   map[string]Definition
	names  []string
	logger *zap.Logger
}

func New(defs []Definition, logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	byName := make(map[string]Definition, len(defs))
	for _, def := range defs {
		if def.Name == "" {
			return nil, fmt.Errorf("tool definition with empty name")
		}
		if def.Handler == nil {
			return nil, fmt.Errorf("tool %q has no handler", def.Name)
		}
		if _, dup := byName[def.Name]; dup {
			return nil, fmt.Errorf("duplicate tool %q", def.Name)
		}
		byName[def.Name] = def
	}
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return &Registry{defs: byName, names: names, logger: logger}, nil
}

// Definitions returns every registered definition in name order.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.defs[name])
	}
	return out
}

// Notice renders the user-facing progress line for a pending call.
func (r *Registry) Notice(call conversation.ToolCall) string {
	if def, ok := r.defs[call.Name]; ok && def.Notice != nil {
		return def.Notice(call.Args)
	}
	return fmt.Sprintf("Using the %s tool.", call.Name)
}

// Dispatch runs one call and always produces a ToolResult: unknown names,
// handler errors, and handler panics all become error results so a bad call
// never takes down the batch or the turn.
func (r *Registry) Dispatch(ctx context.Context, call conversation.ToolCall) (res conversation.ToolResult) {
	res.Name = call.Name

	def, ok := r.defs[call.Name]
	if !ok {
		res.IsError = true
		res.Content = fmt.Sprintf("I do not have a tool named %q.", call.Name)
		return res
	}

	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("tool handler panicked",
				zap.String("tool", call.Name), zap.Any("panic", p))
			res.IsError = true
			res.Content = fmt.Sprintf("The %s tool failed unexpectedly.", call.Name)
		}
	}()

	out, err := def.Handler(ctx, call.Args)
	if err != nil {
		r.logger.Warn("tool handler returned an error",
			zap.String("tool", call.Name), zap.Error(err))
		res.IsError = true
		res.Content = err.Error()
		return res
	}
	res.Content = out
	return res
}
