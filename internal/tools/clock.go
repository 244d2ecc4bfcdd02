package tools

import (
	"context"
	"fmt"
	"time"
)

// CheckCurrentTimeTool reads the wall clock. The now func is injectable for
// tests; pass nil for time.Now.
func CheckCurrentTimeTool(now func() time.Time) Definition {
	if now == nil {
		now = time.Now
	}
	return Definition{
		Name:        "check_current_time",
		Description: "Returns the current local time.",
		Handler: func(_ context.Context, _ map[string]string) (string, error) {
			return fmt.Sprintf("The current time is %s", now().Format("03:04 PM")), nil
		},
	}
}
