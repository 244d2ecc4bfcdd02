package tools

import (
	"strconv"
	"strings"
)

const maxReminderSeconds = 3600

// ParseDurationPhrase turns a spoken-style duration ("5 minutes and 10
// seconds", "90") into total seconds. Numeric tokens pick up the unit of the
// token that follows them; a phrase with no unit keywords but a leading
// number defaults that number to minutes. Totals clamp to [0, 3600], and a
// zero total means the phrase was not understood.
func ParseDurationPhrase(phrase string) (seconds int, ok bool) {
	parts := strings.Fields(strings.ToLower(phrase))

	total := 0
	for i, part := range parts {
		value, err := strconv.Atoi(part)
		if err != nil || value < 0 {
			continue
		}
		if i+1 >= len(parts) {
			continue
		}
		switch unit := parts[i+1]; {
		case strings.Contains(unit, "second"):
			total += value
		case strings.Contains(unit, "minute"):
			total += value * 60
		case strings.Contains(unit, "hour"):
			total += value * 3600
		}
	}

	if total == 0 && len(parts) > 0 {
		if value, err := strconv.Atoi(parts[0]); err == nil && value > 0 {
			total = value * 60
		}
	}

	if total > maxReminderSeconds {
		total = maxReminderSeconds
	}
	if total <= 0 {
		return 0, false
	}
	return total, true
}

// FormatDurationSeconds renders a delay the way the confirmation message
// reads it back: "M minutes and S seconds", or just "S seconds" when the
// delay is under a minute.
func FormatDurationSeconds(seconds int) string {
	minutes := seconds / 60
	rest := seconds % 60
	if minutes > 0 {
		return strconv.Itoa(minutes) + " minutes and " + strconv.Itoa(rest) + " seconds"
	}
	return strconv.Itoa(rest) + " seconds"
}
