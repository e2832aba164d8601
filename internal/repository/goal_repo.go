package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"secondbrain/internal/model"
	"secondbrain/internal/service"
)

const goalColumns = `id, title, description, target_date, status, progress, category, created_at, updated_at`
const keyResultColumns = `id, goal_id, title, target, current, unit`

type GoalRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewGoalRepository(db *pgxpool.Pool, logger *zap.Logger) *GoalRepository {
	return &GoalRepository{db: db, logger: logger}
}

func scanGoal(row pgx.Row) (*model.Goal, error) {
	var g model.Goal
	err := row.Scan(
		&g.ID,
		&g.Title,
		&g.Description,
		&g.TargetDate,
		&g.Status,
		&g.Progress,
		&g.Category,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func scanKeyResult(row pgx.Row) (*model.KeyResult, error) {
	var kr model.KeyResult
	err := row.Scan(&kr.ID, &kr.GoalID, &kr.Title, &kr.Target, &kr.Current, &kr.Unit)
	if err != nil {
		return nil, err
	}
	return &kr, nil
}

func (r *GoalRepository) Insert(ctx context.Context, g *model.Goal) (*model.Goal, error) {
	query := `
        INSERT INTO goals (title, description, target_date, status, progress, category)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING ` + goalColumns

	created, err := scanGoal(r.db.QueryRow(ctx, query,
		g.Title,
		g.Description,
		g.TargetDate,
		g.Status,
		g.Progress,
		g.Category,
	))
	if err != nil {
		r.logger.Error("Failed to insert goal", zap.Error(err))
		return nil, err
	}
	return created, nil
}

func (r *GoalRepository) Get(ctx context.Context, id int) (*model.Goal, error) {
	g, err := scanGoal(r.db.QueryRow(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrNotFound
		}
		r.logger.Error("Failed to get goal", zap.Int("goal_id", id), zap.Error(err))
		return nil, err
	}
	return g, nil
}

func (r *GoalRepository) List(ctx context.Context) ([]model.Goal, error) {
	rows, err := r.db.Query(ctx, `SELECT `+goalColumns+` FROM goals ORDER BY created_at DESC`)
	if err != nil {
		r.logger.Error("Failed to list goals", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	goals := []model.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			r.logger.Error("Failed to scan goal", zap.Error(err))
			return nil, err
		}
		goals = append(goals, *g)
	}
	return goals, rows.Err()
}

func (r *GoalRepository) Update(ctx context.Context, id int, patch model.GoalPatch) (*model.Goal, error) {
	query := `
        UPDATE goals SET
            title       = COALESCE($2, title),
            description = COALESCE($3, description),
            target_date = COALESCE($4, target_date),
            status      = COALESCE($5, status),
            progress    = COALESCE($6, progress),
            category    = COALESCE($7, category),
            updated_at  = NOW()
        WHERE id = $1
        RETURNING ` + goalColumns

	updated, err := scanGoal(r.db.QueryRow(ctx, query, id,
		patch.Title,
		patch.Description,
		patch.TargetDate,
		patch.Status,
		patch.Progress,
		patch.Category,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrNotFound
		}
		r.logger.Error("Failed to update goal", zap.Int("goal_id", id), zap.Error(err))
		return nil, err
	}
	return updated, nil
}

func (r *GoalRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.Exec(ctx, `DELETE FROM goals WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete goal", zap.Int("goal_id", id), zap.Error(err))
		return err
	}
	if result.RowsAffected() == 0 {
		return service.ErrNotFound
	}
	return nil
}

func (r *GoalRepository) ListKeyResults(ctx context.Context, goalID int) ([]model.KeyResult, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+keyResultColumns+` FROM key_results WHERE goal_id = $1 ORDER BY id ASC`, goalID)
	if err != nil {
		r.logger.Error("Failed to list key results", zap.Int("goal_id", goalID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	krs := []model.KeyResult{}
	for rows.Next() {
		kr, err := scanKeyResult(rows)
		if err != nil {
			r.logger.Error("Failed to scan key result", zap.Error(err))
			return nil, err
		}
		krs = append(krs, *kr)
	}
	return krs, rows.Err()
}

func (r *GoalRepository) InsertKeyResult(ctx context.Context, kr *model.KeyResult) (*model.KeyResult, error) {
	query := `
        INSERT INTO key_results (goal_id, title, target, current, unit)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + keyResultColumns

	created, err := scanKeyResult(r.db.QueryRow(ctx, query,
		kr.GoalID,
		kr.Title,
		kr.Target,
		kr.Current,
		kr.Unit,
	))
	if err != nil {
		r.logger.Error("Failed to insert key result", zap.Int("goal_id", kr.GoalID), zap.Error(err))
		return nil, err
	}
	return created, nil
}

func (r *GoalRepository) UpdateKeyResult(ctx context.Context, id int, patch model.KeyResultPatch) (*model.KeyResult, error) {
	query := `
        UPDATE key_results SET
            title   = COALESCE($2, title),
            target  = COALESCE($3, target),
            current = COALESCE($4, current),
            unit    = COALESCE($5, unit)
        WHERE id = $1
        RETURNING ` + keyResultColumns

	updated, err := scanKeyResult(r.db.QueryRow(ctx, query, id,
		patch.Title,
		patch.Target,
		patch.Current,
		patch.Unit,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrNotFound
		}
		r.logger.Error("Failed to update key result", zap.Int("key_result_id", id), zap.Error(err))
		return nil, err
	}
	return updated, nil
}

func (r *GoalRepository) UpdateProgress(ctx context.Context, goalID, progress int) error {
	_, err := r.db.Exec(ctx,
		`UPDATE goals SET progress = $2, updated_at = NOW() WHERE id = $1`, goalID, progress)
	if err != nil {
		r.logger.Error("Failed to update goal progress",
			zap.Int("goal_id", goalID),
			zap.Int("progress", progress),
			zap.Error(err),
		)
		return err
	}
	return nil
}
