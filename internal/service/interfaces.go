package service

import (
	"context"
	"time"

	"secondbrain/internal/model"
)

// GateFunc inspects the currently persisted task and its subtasks and
// returns a rejection error to abort the write, or nil to let it through.
type GateFunc func(current *model.Task, subtasks []model.Subtask) error

// TaskStore is the persistence surface the transition engine needs.
// Transition must run read -> gate -> write as one atomic unit: the gate
// sees row-locked state and no write happens when it rejects.
type TaskStore interface {
	Create(ctx context.Context, t *model.Task) (*model.Task, error)
	Get(ctx context.Context, id int) (*model.Task, error)
	List(ctx context.Context) ([]model.Task, error)
	Delete(ctx context.Context, id int) error
	Transition(ctx context.Context, id int, patch model.TaskPatch, gate GateFunc) (*model.Task, error)
}

type SubtaskStore interface {
	ListByTask(ctx context.Context, taskID int) ([]model.Subtask, error)
	Count(ctx context.Context, taskID int) (int, error)
	Insert(ctx context.Context, s *model.Subtask) (*model.Subtask, error)
	Update(ctx context.Context, taskID, subtaskID int, patch model.SubtaskPatch) (*model.Subtask, error)
	Delete(ctx context.Context, taskID, subtaskID int) error
}

type HabitStore interface {
	Insert(ctx context.Context, h *model.Habit) (*model.Habit, error)
	Get(ctx context.Context, id int) (*model.Habit, error)
	List(ctx context.Context) ([]model.Habit, error)
	Update(ctx context.Context, id int, patch model.HabitPatch) (*model.Habit, error)
	Delete(ctx context.Context, id int) error
	// UpsertLog creates or updates the single log for (habit, day).
	UpsertLog(ctx context.Context, habitID int, day time.Time, completed bool, notes string) (*model.HabitLog, error)
	// ListCompletedLogs returns completed logs ordered by date descending.
	ListCompletedLogs(ctx context.Context, habitID int) ([]model.HabitLog, error)
	ListRecentLogs(ctx context.Context, habitID, limit int) ([]model.HabitLog, error)
	UpdateStreak(ctx context.Context, habitID, streak, longest int) error
}

type RecurringStore interface {
	Insert(ctx context.Context, t *model.RecurringTask) (*model.RecurringTask, error)
	Get(ctx context.Context, id int) (*model.RecurringTask, error)
	List(ctx context.Context) ([]model.RecurringTask, error)
	ListActive(ctx context.Context) ([]model.RecurringTask, error)
	Update(ctx context.Context, id int, patch model.RecurringPatch) (*model.RecurringTask, error)
	Delete(ctx context.Context, id int) error
	// ClaimToday atomically sets last_generated to now iff the template
	// has not generated since the start of today. Returns whether this
	// caller won the claim.
	ClaimToday(ctx context.Context, id int, now time.Time) (bool, error)
}

type GoalStore interface {
	Insert(ctx context.Context, g *model.Goal) (*model.Goal, error)
	Get(ctx context.Context, id int) (*model.Goal, error)
	List(ctx context.Context) ([]model.Goal, error)
	Update(ctx context.Context, id int, patch model.GoalPatch) (*model.Goal, error)
	Delete(ctx context.Context, id int) error
	ListKeyResults(ctx context.Context, goalID int) ([]model.KeyResult, error)
	InsertKeyResult(ctx context.Context, kr *model.KeyResult) (*model.KeyResult, error)
	UpdateKeyResult(ctx context.Context, id int, patch model.KeyResultPatch) (*model.KeyResult, error)
	UpdateProgress(ctx context.Context, goalID, progress int) error
}

// ActivityRecorder appends to the activity feed. Fire-and-forget: a feed
// write must never fail the operation that triggered it.
type ActivityRecorder interface {
	Record(ctx context.Context, entity string, entityID int, message string)
}
