package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"secondbrain/internal/model"
	"secondbrain/internal/proof"
	"secondbrain/pkg/metrics"
)

// TaskService owns the task lifecycle: CRUD, the subtask checklist, and
// the guarded transition into done.
type TaskService struct {
	tasks    TaskStore
	subtasks SubtaskStore
	activity ActivityRecorder
	policy   proof.Policy
	logger   *zap.Logger
}

func NewTaskService(
	tasks TaskStore,
	subtasks SubtaskStore,
	activity ActivityRecorder,
	policy proof.Policy,
	logger *zap.Logger,
) *TaskService {
	return &TaskService{
		tasks:    tasks,
		subtasks: subtasks,
		activity: activity,
		policy:   policy,
		logger:   logger,
	}
}

func (s *TaskService) CreateTask(ctx context.Context, t *model.Task) (*model.Task, error) {
	if t.Status == "" {
		t.Status = model.StatusBacklog
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	if !model.ValidStatus(t.Status) {
		return nil, fmt.Errorf("invalid status %q", t.Status)
	}
	if !model.ValidPriority(t.Priority) {
		return nil, fmt.Errorf("invalid priority %q", t.Priority)
	}

	created, err := s.tasks.Create(ctx, t)
	if err != nil {
		s.logger.Error("Failed to create task", zap.Error(err))
		return nil, err
	}

	s.activity.Record(ctx, "task", created.ID, fmt.Sprintf("Created task: %s", created.Title))
	s.logger.Info("Task created",
		zap.Int("task_id", created.ID),
		zap.String("title", created.Title),
	)
	return created, nil
}

func (s *TaskService) GetTask(ctx context.Context, id int) (*model.Task, error) {
	return s.tasks.Get(ctx, id)
}

func (s *TaskService) ListTasks(ctx context.Context) ([]model.Task, error) {
	return s.tasks.List(ctx)
}

func (s *TaskService) DeleteTask(ctx context.Context, id int) error {
	t, err := s.tasks.Get(ctx, id)
	if err != nil {
		return err
	}

	// subtasks cascade at the store level
	if err := s.tasks.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete task", zap.Int("task_id", id), zap.Error(err))
		return err
	}

	s.activity.Record(ctx, "task", id, fmt.Sprintf("Deleted task: %s", t.Title))
	s.logger.Info("Task deleted", zap.Int("task_id", id))
	return nil
}

// UpdateTask applies a partial update. When the effective status is done
// the subtask gate runs first, then the proof gate over the merged
// old+new proof values; either rejection aborts the write entirely.
// Reopening a done task bypasses both gates.
func (s *TaskService) UpdateTask(ctx context.Context, id int, patch model.TaskPatch) (*model.Task, error) {
	if patch.Status != nil && !model.ValidStatus(*patch.Status) {
		return nil, fmt.Errorf("invalid status %q", *patch.Status)
	}
	if patch.Priority != nil && !model.ValidPriority(*patch.Priority) {
		return nil, fmt.Errorf("invalid priority %q", *patch.Priority)
	}

	gate := func(current *model.Task, subtasks []model.Subtask) error {
		status := current.Status
		if patch.Status != nil {
			status = *patch.Status
		}
		if status != model.StatusDone {
			return nil
		}

		// subtask gate before proof gate: cheaper and more concrete
		if len(subtasks) > 0 {
			var incomplete []string
			done := 0
			for _, st := range subtasks {
				if st.Done {
					done++
				} else {
					incomplete = append(incomplete, st.Title)
				}
			}
			if len(incomplete) > 0 {
				return &SubtaskRejection{
					Incomplete: incomplete,
					Done:       done,
					Total:      len(subtasks),
				}
			}
		}

		values := effectiveProof(current, patch)
		if failures := proof.Validate(values, s.policy); len(failures) > 0 {
			for _, f := range failures {
				metrics.IncrementProofGateFailure(string(f.Field))
			}
			return &ProofRejection{Failures: failures}
		}
		return nil
	}

	updated, err := s.tasks.Transition(ctx, id, patch, gate)
	if err != nil {
		var pr *ProofRejection
		var sr *SubtaskRejection
		switch {
		case errors.As(err, &pr):
			metrics.IncrementTaskTransition("rejected_proof")
			s.logger.Info("Task update rejected by proof gate",
				zap.Int("task_id", id),
				zap.Int("failure_count", len(pr.Failures)),
			)
		case errors.As(err, &sr):
			metrics.IncrementTaskTransition("rejected_subtasks")
			s.logger.Info("Task update rejected by subtask gate",
				zap.Int("task_id", id),
				zap.Int("done", sr.Done),
				zap.Int("total", sr.Total),
			)
		case errors.Is(err, ErrNotFound):
			// not a transition outcome, just a bad id
		default:
			metrics.IncrementTaskTransition("error")
			s.logger.Error("Task update failed", zap.Int("task_id", id), zap.Error(err))
		}
		return nil, err
	}

	metrics.IncrementTaskTransition("accepted")
	s.activity.Record(ctx, "task", id, fmt.Sprintf("Updated task: %s", updated.Title))
	s.logger.Info("Task updated",
		zap.Int("task_id", id),
		zap.String("status", updated.Status),
	)
	return updated, nil
}

// effectiveProof merges the patch over the persisted task: a proof field
// takes the submitted value when present, otherwise falls back to what is
// already stored. Everything is trimmed before evaluation so whitespace
// padding cannot satisfy a length rule.
func effectiveProof(current *model.Task, patch model.TaskPatch) proof.Values {
	pick := func(patched *string, existing string) string {
		if patched != nil {
			return strings.TrimSpace(*patched)
		}
		return strings.TrimSpace(existing)
	}

	return proof.Values{
		WhatChanged: pick(patch.ProofWhatChanged, current.ProofWhatChanged),
		WhatItDoes:  pick(patch.ProofWhatItDoes, current.ProofWhatItDoes),
		HowToUse:    pick(patch.ProofHowToUse, current.ProofHowToUse),
		Tests:       pick(patch.ProofTests, current.ProofTests),
		Screenshot:  pick(patch.ProofScreenshot, current.ProofScreenshot),
	}
}

// AddSubtask appends a checklist item. Without an explicit sort order the
// item lands at the end (order = current count).
func (s *TaskService) AddSubtask(ctx context.Context, taskID int, title string, done bool, sortOrder *int) (*model.Subtask, error) {
	if _, err := s.tasks.Get(ctx, taskID); err != nil {
		return nil, err
	}

	order := 0
	if sortOrder != nil {
		order = *sortOrder
	} else {
		count, err := s.subtasks.Count(ctx, taskID)
		if err != nil {
			return nil, err
		}
		order = count
	}

	st, err := s.subtasks.Insert(ctx, &model.Subtask{
		TaskID:    taskID,
		Title:     title,
		Done:      done,
		SortOrder: order,
	})
	if err != nil {
		s.logger.Error("Failed to add subtask", zap.Int("task_id", taskID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Subtask added",
		zap.Int("task_id", taskID),
		zap.Int("subtask_id", st.ID),
		zap.Int("sort_order", st.SortOrder),
	)
	return st, nil
}

func (s *TaskService) ListSubtasks(ctx context.Context, taskID int) ([]model.Subtask, error) {
	if _, err := s.tasks.Get(ctx, taskID); err != nil {
		return nil, err
	}
	return s.subtasks.ListByTask(ctx, taskID)
}

func (s *TaskService) UpdateSubtask(ctx context.Context, taskID, subtaskID int, patch model.SubtaskPatch) (*model.Subtask, error) {
	return s.subtasks.Update(ctx, taskID, subtaskID, patch)
}

func (s *TaskService) RemoveSubtask(ctx context.Context, taskID, subtaskID int) error {
	return s.subtasks.Delete(ctx, taskID, subtaskID)
}

// CompletionRatio is done/total for the task's checklist, 0 when empty.
func (s *TaskService) CompletionRatio(ctx context.Context, taskID int) (float64, error) {
	subtasks, err := s.subtasks.ListByTask(ctx, taskID)
	if err != nil {
		return 0, err
	}
	if len(subtasks) == 0 {
		return 0, nil
	}
	done := 0
	for _, st := range subtasks {
		if st.Done {
			done++
		}
	}
	return float64(done) / float64(len(subtasks)), nil
}
