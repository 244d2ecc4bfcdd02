// Package app wires the service together: stores, tool registry, model
// adapter, session manager, assistant, and the HTTP API.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/vivekps/nexus/internal/assistant"
	"github.com/vivekps/nexus/internal/brain"
	"github.com/vivekps/nexus/internal/config"
	"github.com/vivekps/nexus/internal/history"
	"github.com/vivekps/nexus/internal/httpapi"
	"github.com/vivekps/nexus/internal/notes"
	"github.com/vivekps/nexus/internal/observability"
	"github.com/vivekps/nexus/internal/reminder"
	"github.com/vivekps/nexus/internal/session"
	"github.com/vivekps/nexus/internal/tools"
)

// systemInstruction is the assistant's standing persona and tool-usage
// policy, sent with every endpoint request.
const systemInstruction = "You are a dedicated, witty, and highly capable personal AI assistant named 'Nexus'. " +
	"Only use the web_search tool for requests requiring current, real-time data (like news or stock prices), " +
	"or for opening a specific website or video. For general knowledge and definitions, answer from your own " +
	"knowledge directly. You process image requests when one is attached, and use tools to perform actions. " +
	"Keep responses concise and professional."

type BuildResult struct {
	Config    config.Config
	API       *httpapi.Server
	Sessions  *session.Manager
	Service   *assistant.Service
	Assistant *assistant.Assistant
	Reminders *reminder.Scheduler
	Metrics   *observability.Metrics

	// Cleanup should be called on shutdown to release external resources
	// (DB pools, pending reminder timers).
	Cleanup func() error
}

func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*BuildResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := observability.NewMetrics(cfg.MetricsNamespace, prometheus.DefaultRegisterer)

	noteStore, err := notes.NewStore(ctx, cfg.DatabaseURL, cfg.NotesFile, logger)
	if err != nil {
		return nil, fmt.Errorf("notes store init failed: %w", err)
	}
	historyStore, err := history.NewStore(ctx, cfg.DatabaseURL, cfg.HistoryFile, logger)
	if err != nil {
		_ = noteStore.Close()
		return nil, fmt.Errorf("history store init failed: %w", err)
	}

	reminders := reminder.NewScheduler(logger)

	registry, err := tools.New(tools.DefaultSuite(tools.SuiteConfig{
		LinkMode:   cfg.LinkMode,
		Notes:      noteStore,
		QuickNotes: notes.NewQuickNoteLog(cfg.QuickNoteFile),
		Reminders:  reminders,
	}), logger)
	if err != nil {
		_ = noteStore.Close()
		_ = historyStore.Close()
		return nil, fmt.Errorf("tool registry init failed: %w", err)
	}

	adapter, err := brain.NewAdapter(brain.Config{
		Mode:              cfg.BrainMode,
		APIKey:            cfg.GeminiAPIKey,
		BaseURL:           cfg.BrainBaseURL,
		ModelID:           cfg.ModelID,
		SystemInstruction: systemInstruction,
		Timeout:           cfg.TurnTimeout,
		Tools:             declareTools(registry),
	})
	if err != nil {
		_ = noteStore.Close()
		_ = historyStore.Close()
		return nil, fmt.Errorf("brain adapter init failed: %w", err)
	}

	// Missing credential degrades the service instead of crashing it: the
	// shell still comes up and every turn answers with the AI-disabled
	// message. Explicit mock mode counts as enabled.
	enabled := cfg.GeminiAPIKey != "" || strings.EqualFold(cfg.BrainMode, "mock")
	if !enabled {
		logger.Warn("GEMINI_API_KEY is not set, starting in degraded AI-disabled mode")
	}

	sessions := session.NewManager(cfg.SessionInactivityTimeout)
	sessions.SetExpireHook(func(_ *session.Session) {
		metrics.ObserveSessionEvent("expired")
		metrics.ActiveSessions.Set(float64(sessions.ActiveCount()))
	})

	asst := assistant.New(assistant.Config{
		Registry:  registry,
		Logger:    logger,
		Metrics:   metrics,
		Enabled:   enabled,
		MaxRounds: cfg.MaxToolRounds,
		Timeout:   cfg.TurnTimeout,
	})

	service := assistant.NewService(assistant.ServiceConfig{
		Assistant: asst,
		Brain:     adapter,
		Sessions:  sessions,
		History:   historyStore,
		Reminders: reminders,
		Metrics:   metrics,
		Logger:    logger,
	})

	api := httpapi.New(cfg, sessions, service, metrics)

	cleanup := func() error {
		reminders.Close()
		var errs []string
		if err := historyStore.Close(); err != nil {
			errs = append(errs, err.Error())
		}
		if err := noteStore.Close(); err != nil {
			errs = append(errs, err.Error())
		}
		if len(errs) > 0 {
			return fmt.Errorf("%s", strings.Join(errs, "; "))
		}
		return nil
	}

	return &BuildResult{
		Config:    cfg,
		API:       api,
		Sessions:  sessions,
		Service:   service,
		Assistant: asst,
		Reminders: reminders,
		Metrics:   metrics,
		Cleanup:   cleanup,
	}, nil
}

func declareTools(registry *tools.Registry) []brain.ToolDeclaration {
	defs := registry.Definitions()
	out := make([]brain.ToolDeclaration, 0, len(defs))
	for _, def := range defs {
		decl := brain.ToolDeclaration{Name: def.Name, Description: def.Description}
		for _, p := range def.Params {
			decl.Params = append(decl.Params, brain.ParamSpec{
				Name:        p.Name,
				Description: p.Description,
				Required:    p.Required,
			})
		}
		out = append(out, decl)
	}
	return out
}
