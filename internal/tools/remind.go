package tools

import (
	"context"
	"fmt"
	"time"
)

// ReminderScheduler accepts a delayed one-shot reminder. Scheduling must
// return immediately; the fire happens on a background timer.
type ReminderScheduler interface {
	Schedule(delay time.Duration, message string) error
}

// parseFailureReply is returned when a duration phrase yields no usable delay.
const parseFailureReply = "I could not understand the duration for the reminder. Please be specific."

// SetReminderTool parses a spoken duration phrase and schedules the reminder
// without blocking the turn on its delay.
func SetReminderTool(scheduler ReminderScheduler) Definition {
	return Definition{
		Name:        "set_reminder",
		Description: "Sets a reminder that will notify the user after the specified time has passed.",
		Params: []Param{
			{Name: "time_string", Description: "How long to wait, e.g. '5 minutes and 10 seconds'.", Required: true},
			{Name: "reminder_text", Description: "What to remind the user about.", Required: true},
		},
		Handler: func(_ context.Context, args map[string]string) (string, error) {
			seconds, ok := ParseDurationPhrase(args["time_string"])
			if !ok {
				return parseFailureReply, nil
			}
			message := args["reminder_text"]
			if err := scheduler.Schedule(time.Duration(seconds)*time.Second, message); err != nil {
				return "", fmt.Errorf("I could not schedule that reminder: %v", err)
			}
			return fmt.Sprintf("Reminder set successfully! I will remind you to '%s' in %s.",
				message, FormatDurationSeconds(seconds)), nil
		},
	}
}
