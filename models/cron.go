package models

import (
	"errors"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Schedules use 6-field cron expressions with a leading seconds field,
// e.g. "0 0 9 * * *" for daily 09:00.
var cronParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
)

// ParseCron validates a cron expression. Admin writes fail closed on a bad
// expression; only the tick loop degrades to a fallback.
func ParseCron(expr string) (cron.Schedule, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, errors.New("cron expression is blank")
	}
	return cronParser.Parse(expr)
}

// NextRunAt computes the next strictly-future firing time after base.
func NextRunAt(expr string, base time.Time) (time.Time, error) {
	sched, err := ParseCron(expr)
	if err != nil {
		return time.Time{}, err
	}
	next := sched.Next(base)
	if next.IsZero() {
		return time.Time{}, errors.New("cron expression has no future firing time")
	}
	return next, nil
}

// NextRunAtOrFallback degrades a malformed expression to base+1h instead of
// failing: a single bad schedule must not block the sweep, and the
// expression already passed validation once at admin-write time.
func NextRunAtOrFallback(expr string, base time.Time) time.Time {
	next, err := NextRunAt(expr, base)
	if err != nil {
		return base.Add(time.Hour)
	}
	return next
}

// ResolvePeriod resolves a schedule's period rule against today.
func ResolvePeriod(rule PeriodRule, today time.Time) string {
	switch rule {
	case PeriodRulePrevMonth:
		return today.AddDate(0, -1, -today.Day()+1).Format("2006-01")
	case PeriodRuleYesterday:
		return today.AddDate(0, 0, -1).Format("2006-01-02")
	case PeriodRuleLast7Days:
		return PeriodLast7Days
	default:
		// CURRENT_MONTH, and the historical default when no rule is set
		return today.Format("2006-01")
	}
}
