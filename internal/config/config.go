package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the assistant service.
type Config struct {
	BindAddr                 string
	ShutdownTimeout          time.Duration
	SessionInactivityTimeout time.Duration
	MetricsNamespace         string

	AllowAnyOrigin bool

	// GeminiAPIKey is the model endpoint credential. When empty the service
	// starts in degraded mode: the shells stay up but every turn answers
	// with the "core AI inactive" message instead of calling the endpoint.
	GeminiAPIKey string

	BrainMode    string
	BrainBaseURL string
	ModelID      string
	TurnTimeout  time.Duration

	MaxToolRounds int

	// LinkMode controls how link-producing tools deliver their result:
	// "open" spawns the OS browser, "markdown" returns a clickable link.
	LinkMode string

	NotesFile     string
	HistoryFile   string
	QuickNoteFile string
	DatabaseURL   string
}

const (
	LinkModeOpen     = "open"
	LinkModeMarkdown = "markdown"
)

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:                 envOrDefault("NEXUS_BIND_ADDR", ":8090"),
		MetricsNamespace:         envOrDefault("NEXUS_METRICS_NAMESPACE", "nexus"),
		AllowAnyOrigin:           false,
		GeminiAPIKey:             stringsTrimSpace("GEMINI_API_KEY"),
		BrainMode:                envOrDefault("NEXUS_BRAIN_MODE", "auto"),
		BrainBaseURL:             envOrDefault("NEXUS_BRAIN_BASE_URL", "https://generativelanguage.googleapis.com"),
		ModelID:                  envOrDefault("NEXUS_MODEL_ID", "gemini-2.5-flash"),
		LinkMode:                 envOrDefault("NEXUS_LINK_MODE", LinkModeMarkdown),
		NotesFile:                envOrDefault("NEXUS_NOTES_FILE", "assistant_memory.json"),
		HistoryFile:              envOrDefault("NEXUS_HISTORY_FILE", "chat_history.json"),
		QuickNoteFile:            envOrDefault("NEXUS_QUICK_NOTE_FILE", "quick_note.txt"),
		DatabaseURL:              stringsTrimSpace("DATABASE_URL"),
		MaxToolRounds:            8,
		TurnTimeout:              60 * time.Second,
		ShutdownTimeout:          15 * time.Second,
		SessionInactivityTimeout: 10 * time.Minute,
	}
	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("NEXUS_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionInactivityTimeout, err = durationFromEnv("NEXUS_SESSION_INACTIVITY_TIMEOUT", cfg.SessionInactivityTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.TurnTimeout, err = durationFromEnv("NEXUS_TURN_TIMEOUT", cfg.TurnTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxToolRounds, err = intFromEnv("NEXUS_MAX_TOOL_ROUNDS", cfg.MaxToolRounds)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("NEXUS_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}

	if cfg.SessionInactivityTimeout < 5*time.Second {
		return Config{}, fmt.Errorf("NEXUS_SESSION_INACTIVITY_TIMEOUT must be at least 5s")
	}
	if cfg.MaxToolRounds <= 0 {
		return Config{}, fmt.Errorf("NEXUS_MAX_TOOL_ROUNDS must be positive")
	}
	if cfg.TurnTimeout <= 0 {
		return Config{}, fmt.Errorf("NEXUS_TURN_TIMEOUT must be positive")
	}
	switch strings.ToLower(strings.TrimSpace(cfg.LinkMode)) {
	case LinkModeOpen, LinkModeMarkdown:
		cfg.LinkMode = strings.ToLower(strings.TrimSpace(cfg.LinkMode))
	default:
		return Config{}, fmt.Errorf("NEXUS_LINK_MODE must be %q or %q", LinkModeOpen, LinkModeMarkdown)
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
