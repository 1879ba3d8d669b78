package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// ErrInvalidSchedule is returned for schedules crontab would not accept.
var ErrInvalidSchedule = errors.New("invalid cron schedule")

// DefaultReloadSchedule runs the reload job daily at 03:00.
const DefaultReloadSchedule = "0 3 * * *"

// Schedule presets accepted in place of a five-field expression.
var schedulePresets = map[string]string{
	"hourly":  "0 * * * *",
	"daily":   DefaultReloadSchedule,
	"weekly":  "0 3 * * 0",
	"monthly": "0 4 1 * *",
}

// isCrontabSchedule reports whether every field of a standard crontab
// schedule is in range: minute, hour, day of month, month (1-12 or jan-dec)
// and day of week (0-6 or sun-sat), or a descriptor such as @daily.
func isCrontabSchedule(fl validator.FieldLevel) bool {
	_, err := cron.ParseStandard(fl.Field().String())
	return err == nil
}

// CronEntry is a single crontab line.
type CronEntry struct {
	Schedule string
	Command  string
}

// NewCronEntry resolves presets and validates both parts of the line.
func NewCronEntry(schedule, command string) (CronEntry, error) {
	schedule = strings.Join(strings.Fields(schedule), " ")
	if expr, ok := schedulePresets[schedule]; ok {
		schedule = expr
	}

	if schedule == "" || strings.HasPrefix(schedule, "@every") {
		return CronEntry{}, fmt.Errorf("%w: %q", ErrInvalidSchedule, schedule)
	}
	if err := validate().Var(schedule, "crontab,excludesall=?"); err != nil {
		return CronEntry{}, fmt.Errorf("%w: %q", ErrInvalidSchedule, schedule)
	}
	if !strings.HasPrefix(schedule, "@") && len(strings.Fields(schedule)) != 5 {
		return CronEntry{}, fmt.Errorf("%w: %q (expected five fields)", ErrInvalidSchedule, schedule)
	}

	command = strings.TrimSpace(command)
	if command == "" || strings.ContainsAny(command, "\r\n%") {
		return CronEntry{}, fmt.Errorf("invalid cron command %q", command)
	}

	return CronEntry{Schedule: schedule, Command: command}, nil
}

// Line returns the crontab representation without a trailing newline.
func (e CronEntry) Line() string {
	return e.Schedule + " " + e.Command
}
