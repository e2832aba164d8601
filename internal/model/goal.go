package model

import "time"

type Goal struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	TargetDate  *time.Time `json:"target_date"`
	Status      string     `json:"status"` // active / completed / abandoned
	Progress    int        `json:"progress"`
	Category    string     `json:"category"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	KeyResults []KeyResult `json:"key_results,omitempty"`
}

// GoalPatch is a partial goal update; nil fields are left untouched.
// Progress is the manually-set value; it is overwritten by the rollup
// whenever the goal has key results.
type GoalPatch struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	TargetDate  *time.Time `json:"target_date"`
	Status      *string    `json:"status"`
	Progress    *int       `json:"progress"`
	Category    *string    `json:"category"`
}

type KeyResult struct {
	ID      int     `json:"id"`
	GoalID  int     `json:"goal_id"`
	Title   string  `json:"title"`
	Target  float64 `json:"target"`
	Current float64 `json:"current"`
	Unit    string  `json:"unit"`
}

// KeyResultPatch creates or updates a key result. A nil ID means create.
type KeyResultPatch struct {
	ID      *int     `json:"id"`
	Title   *string  `json:"title"`
	Target  *float64 `json:"target"`
	Current *float64 `json:"current"`
	Unit    *string  `json:"unit"`
}
