package tools

import (
	"time"

	"github.com/vivekps/nexus/internal/notes"
)

// SuiteConfig carries the collaborators the standard tool set needs.
type SuiteConfig struct {
	LinkMode   string
	Notes      notes.Store
	QuickNotes *notes.QuickNoteLog
	Reminders  ReminderScheduler
	Launcher   Launcher
	Opener     URLOpener
	Now        func() time.Time
}

// DefaultSuite builds the assistant's full tool set in declaration order.
func DefaultSuite(cfg SuiteConfig) []Definition {
	if cfg.Launcher == nil {
		cfg.Launcher = ExecLauncher{}
	}
	if cfg.Opener == nil {
		cfg.Opener = ExecURLOpener{}
	}
	return []Definition{
		WebSearchTool(cfg.LinkMode, cfg.Opener),
		PlayOnYouTubeTool(cfg.LinkMode, cfg.Opener),
		CheckCurrentTimeTool(cfg.Now),
		AddPersonalNoteTool(cfg.Notes, cfg.Now),
		RetrievePersonalNotesTool(cfg.Notes),
		SetReminderTool(cfg.Reminders),
		OpenApplicationTool(cfg.Launcher),
		TakeQuickNoteTool(cfg.QuickNotes, cfg.Now),
	}
}
