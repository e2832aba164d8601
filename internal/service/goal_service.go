package service

import (
	"context"
	"math"

	"go.uber.org/zap"

	"secondbrain/internal/model"
)

// GoalService manages goals and rolls key-result progress up into the
// goal's stored progress percentage.
type GoalService struct {
	goals  GoalStore
	logger *zap.Logger
}

func NewGoalService(goals GoalStore, logger *zap.Logger) *GoalService {
	return &GoalService{goals: goals, logger: logger}
}

func (s *GoalService) CreateGoal(ctx context.Context, g *model.Goal) (*model.Goal, error) {
	if g.Status == "" {
		g.Status = "active"
	}
	g.Progress = clampProgress(g.Progress)
	return s.goals.Insert(ctx, g)
}

func (s *GoalService) GetGoal(ctx context.Context, id int) (*model.Goal, error) {
	g, err := s.goals.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	krs, err := s.goals.ListKeyResults(ctx, id)
	if err != nil {
		return nil, err
	}
	g.KeyResults = krs
	return g, nil
}

func (s *GoalService) ListGoals(ctx context.Context) ([]model.Goal, error) {
	return s.goals.List(ctx)
}

func (s *GoalService) DeleteGoal(ctx context.Context, id int) error {
	return s.goals.Delete(ctx, id)
}

// UpdateGoal applies manual field edits plus an optional inline batch of
// key-result upserts, then recomputes progress.
func (s *GoalService) UpdateGoal(ctx context.Context, id int, patch model.GoalPatch, keyResults []model.KeyResultPatch) (*model.Goal, error) {
	if patch.Progress != nil {
		clamped := clampProgress(*patch.Progress)
		patch.Progress = &clamped
	}

	if _, err := s.goals.Update(ctx, id, patch); err != nil {
		return nil, err
	}

	for _, kr := range keyResults {
		if err := s.applyKeyResult(ctx, id, kr); err != nil {
			return nil, err
		}
	}

	if err := s.recompute(ctx, id); err != nil {
		return nil, err
	}
	return s.GetGoal(ctx, id)
}

// UpsertKeyResult creates or updates a single key result and recomputes
// the goal's progress.
func (s *GoalService) UpsertKeyResult(ctx context.Context, goalID int, kr model.KeyResultPatch) (*model.Goal, error) {
	if _, err := s.goals.Get(ctx, goalID); err != nil {
		return nil, err
	}
	if err := s.applyKeyResult(ctx, goalID, kr); err != nil {
		return nil, err
	}
	if err := s.recompute(ctx, goalID); err != nil {
		return nil, err
	}
	return s.GetGoal(ctx, goalID)
}

func (s *GoalService) applyKeyResult(ctx context.Context, goalID int, kr model.KeyResultPatch) error {
	if kr.Target != nil && *kr.Target <= 0 {
		return &KeyResultRejection{Reason: "key result target must be greater than zero"}
	}

	if kr.ID != nil {
		_, err := s.goals.UpdateKeyResult(ctx, *kr.ID, kr)
		return err
	}

	if kr.Target == nil {
		return &KeyResultRejection{Reason: "key result target is required"}
	}

	nkr := &model.KeyResult{GoalID: goalID}
	if kr.Title != nil {
		nkr.Title = *kr.Title
	}
	nkr.Target = *kr.Target
	if kr.Current != nil {
		nkr.Current = *kr.Current
	}
	if kr.Unit != nil {
		nkr.Unit = *kr.Unit
	}
	_, err := s.goals.InsertKeyResult(ctx, nkr)
	return err
}

func (s *GoalService) recompute(ctx context.Context, goalID int) error {
	krs, err := s.goals.ListKeyResults(ctx, goalID)
	if err != nil {
		return err
	}

	progress, ok := rollupProgress(krs)
	if !ok {
		// no key results: the manually set progress stands
		return nil
	}

	s.logger.Debug("Recomputed goal progress",
		zap.Int("goal_id", goalID),
		zap.Int("progress", progress),
		zap.Int("key_results", len(krs)),
	)
	return s.goals.UpdateProgress(ctx, goalID, progress)
}

// rollupProgress averages current/target across key results. The average
// is deliberately not clamped: a key result past its target pushes the
// goal above 100, which the dashboard shows as overachievement.
func rollupProgress(krs []model.KeyResult) (int, bool) {
	if len(krs) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, kr := range krs {
		sum += kr.Current / kr.Target * 100
	}
	return int(math.Round(sum / float64(len(krs)))), true
}

func clampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
