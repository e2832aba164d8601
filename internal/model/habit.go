package model

import "time"

type Habit struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Frequency     string    `json:"frequency"`
	Streak        int       `json:"streak"`
	LongestStreak int       `json:"longest_streak"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// HabitPatch is a partial habit update; nil fields are left untouched.
type HabitPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Frequency   *string `json:"frequency"`
	Active      *bool   `json:"active"`
}

// HabitLog is one completion record; at most one exists per habit per
// calendar day (Date carries no time component).
type HabitLog struct {
	ID        int       `json:"id"`
	HabitID   int       `json:"habit_id"`
	Date      time.Time `json:"date"`
	Completed bool      `json:"completed"`
	Notes     string    `json:"notes"`
}
