package scheduler

import "time"

// Job is a recurring maintenance action driven by a cron expression.
// Jobs are in-memory only; the set is rebuilt from configuration on every
// launcher start.
type Job struct {
	// Name identifies the job to the onFire callback ("purge", "session").
	Name string
	// CronExpr is a 5-field cron expression determining recurrence.
	CronExpr string
	// nextAt is the next computed trigger time.
	nextAt time.Time
}
