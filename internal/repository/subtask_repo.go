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

const subtaskColumns = `id, task_id, title, done, sort_order, notes, created_at`

type SubtaskRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewSubtaskRepository(db *pgxpool.Pool, logger *zap.Logger) *SubtaskRepository {
	return &SubtaskRepository{db: db, logger: logger}
}

func scanSubtask(row pgx.Row) (*model.Subtask, error) {
	var s model.Subtask
	err := row.Scan(
		&s.ID,
		&s.TaskID,
		&s.Title,
		&s.Done,
		&s.SortOrder,
		&s.Notes,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// listSubtasksTx loads a task's subtasks inside an open transaction, so
// the transition gate sees checklist state consistent with the locked
// task row.
func listSubtasksTx(ctx context.Context, tx pgx.Tx, taskID int) ([]model.Subtask, error) {
	query := `SELECT ` + subtaskColumns + ` FROM subtasks WHERE task_id = $1 ORDER BY sort_order ASC`
	rows, err := tx.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subtasks := []model.Subtask{}
	for rows.Next() {
		s, err := scanSubtask(rows)
		if err != nil {
			return nil, err
		}
		subtasks = append(subtasks, *s)
	}
	return subtasks, rows.Err()
}

func (r *SubtaskRepository) ListByTask(ctx context.Context, taskID int) ([]model.Subtask, error) {
	query := `SELECT ` + subtaskColumns + ` FROM subtasks WHERE task_id = $1 ORDER BY sort_order ASC`
	rows, err := r.db.Query(ctx, query, taskID)
	if err != nil {
		r.logger.Error("Failed to query subtasks", zap.Int("task_id", taskID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	subtasks := []model.Subtask{}
	for rows.Next() {
		s, err := scanSubtask(rows)
		if err != nil {
			r.logger.Error("Failed to scan subtask row", zap.Error(err))
			return nil, err
		}
		subtasks = append(subtasks, *s)
	}
	return subtasks, rows.Err()
}

func (r *SubtaskRepository) Count(ctx context.Context, taskID int) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM subtasks WHERE task_id = $1`, taskID).Scan(&count)
	if err != nil {
		r.logger.Error("Failed to count subtasks", zap.Int("task_id", taskID), zap.Error(err))
		return 0, err
	}
	return count, nil
}

func (r *SubtaskRepository) Insert(ctx context.Context, s *model.Subtask) (*model.Subtask, error) {
	query := `
        INSERT INTO subtasks (task_id, title, done, sort_order, notes)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + subtaskColumns

	created, err := scanSubtask(r.db.QueryRow(ctx, query,
		s.TaskID,
		s.Title,
		s.Done,
		s.SortOrder,
		s.Notes,
	))
	if err != nil {
		r.logger.Error("Failed to insert subtask",
			zap.Int("task_id", s.TaskID),
			zap.Error(err),
		)
		return nil, err
	}
	return created, nil
}

func (r *SubtaskRepository) Update(ctx context.Context, taskID, subtaskID int, patch model.SubtaskPatch) (*model.Subtask, error) {
	query := `
        UPDATE subtasks SET
            title = COALESCE($3, title),
            done  = COALESCE($4, done),
            notes = COALESCE($5, notes)
        WHERE id = $1 AND task_id = $2
        RETURNING ` + subtaskColumns

	updated, err := scanSubtask(r.db.QueryRow(ctx, query, subtaskID, taskID,
		patch.Title,
		patch.Done,
		patch.Notes,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrNotFound
		}
		r.logger.Error("Failed to update subtask",
			zap.Int("subtask_id", subtaskID),
			zap.Error(err),
		)
		return nil, err
	}
	return updated, nil
}

func (r *SubtaskRepository) Delete(ctx context.Context, taskID, subtaskID int) error {
	result, err := r.db.Exec(ctx,
		`DELETE FROM subtasks WHERE id = $1 AND task_id = $2`, subtaskID, taskID)
	if err != nil {
		r.logger.Error("Failed to delete subtask",
			zap.Int("subtask_id", subtaskID),
			zap.Error(err),
		)
		return err
	}
	if result.RowsAffected() == 0 {
		return service.ErrNotFound
	}
	return nil
}
