package model

import "time"

// Task statuses form the pipeline backlog -> in_progress -> review -> done.
const (
	StatusBacklog    = "backlog"
	StatusInProgress = "in_progress"
	StatusReview     = "review"
	StatusDone       = "done"
)

const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
	PriorityLow      = "low"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusBacklog, StatusInProgress, StatusReview, StatusDone:
		return true
	}
	return false
}

func ValidPriority(p string) bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

type Task struct {
	ID          int        `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Tags        string     `json:"tags"`
	DueDate     *time.Time `json:"due_date"`

	// Proof-of-completion evidence, all required before status can
	// move to done (see internal/proof).
	ProofWhatChanged string `json:"proof_what_changed"`
	ProofWhatItDoes  string `json:"proof_what_it_does"`
	ProofHowToUse    string `json:"proof_how_to_use"`
	ProofTests       string `json:"proof_tests"`
	ProofScreenshot  string `json:"proof_screenshot"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskPatch is a partial update; nil fields are left untouched.
type TaskPatch struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	Tags        *string    `json:"tags"`
	DueDate     *time.Time `json:"due_date"`

	ProofWhatChanged *string `json:"proof_what_changed"`
	ProofWhatItDoes  *string `json:"proof_what_it_does"`
	ProofHowToUse    *string `json:"proof_how_to_use"`
	ProofTests       *string `json:"proof_tests"`
	ProofScreenshot  *string `json:"proof_screenshot"`
}

type Subtask struct {
	ID        int       `json:"id"`
	TaskID    int       `json:"task_id"`
	Title     string    `json:"title"`
	Done      bool      `json:"done"`
	SortOrder int       `json:"sort_order"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
}

// SubtaskPatch is a partial subtask update; nil fields are left untouched.
type SubtaskPatch struct {
	Title *string `json:"title"`
	Done  *bool   `json:"done"`
	Notes *string `json:"notes"`
}
