package store

import (
	"time"

	"github.com/robfig/cron/v3"
)

// Coarse schedule intervals accepted by the analysis service.
var scheduleSpecs = map[string]string{
	"every_1h":  "@every 1h",
	"every_6h":  "@every 6h",
	"every_12h": "@every 12h",
	"daily":     "@every 24h",
	"weekly":    "@every 168h",
}

const defaultScheduleSpec = "@every 1h"

var schedules = buildSchedules()

func buildSchedules() map[string]cron.Schedule {
	out := make(map[string]cron.Schedule, len(scheduleSpecs))
	for name, spec := range scheduleSpecs {
		sched, err := cron.ParseStandard(spec)
		if err != nil {
			continue
		}
		out[name] = sched
	}
	return out
}

// ValidSchedule reports whether the schedule name is one of the coarse
// intervals the analysis service understands.
func ValidSchedule(name string) bool {
	_, ok := schedules[name]
	return ok
}

// NextRunAfter computes the next fire time for a schedule. Unknown schedule
// names fall back to hourly, matching the analysis service's scheduler.
func NextRunAfter(name string, now time.Time) time.Time {
	sched, ok := schedules[name]
	if !ok {
		sched, _ = cron.ParseStandard(defaultScheduleSpec)
	}
	return sched.Next(now)
}
