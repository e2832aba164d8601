package model

import "time"

const (
	ScheduleDaily   = "daily"
	ScheduleWeekly  = "weekly"
	ScheduleMonthly = "monthly"
)

// RecurringTask is a template that spawns plain Tasks. DayOfWeek is set
// only when schedule is weekly, DayOfMonth only when monthly.
type RecurringTask struct {
	ID            int        `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Priority      string     `json:"priority"`
	Schedule      string     `json:"schedule"`
	DayOfWeek     *int       `json:"day_of_week"`
	DayOfMonth    *int       `json:"day_of_month"`
	Active        bool       `json:"active"`
	LastGenerated *time.Time `json:"last_generated"`
	CreatedAt     time.Time  `json:"created_at"`
}

// RecurringPatch is a partial template update; nil fields are left untouched.
type RecurringPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	Schedule    *string `json:"schedule"`
	DayOfWeek   *int    `json:"day_of_week"`
	DayOfMonth  *int    `json:"day_of_month"`
	Active      *bool   `json:"active"`
}
