// Package jobs holds the daily background jobs and the trigger that runs them.
package jobs

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseDailySchedule reads the hour and minute from a "m h * * *" cron expression.
// Only daily schedules are supported, so the last three fields must be "*".
func ParseDailySchedule(cronExpr string) (hour, minute int, err error) {
	parts := strings.Fields(cronExpr)
	if len(parts) != 5 {
		return 0, 0, fmt.Errorf("cron expression %q must have 5 fields", cronExpr)
	}
	for _, p := range parts[2:] {
		if p != "*" {
			return 0, 0, fmt.Errorf("cron expression %q: only daily schedules (m h * * *) are supported", cronExpr)
		}
	}

	minute, err = strconv.Atoi(parts[0])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("cron expression %q: minute must be 0-59", cronExpr)
	}
	hour, err = strconv.Atoi(parts[1])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("cron expression %q: hour must be 0-23", cronExpr)
	}
	return hour, minute, nil
}
