package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"secondbrain/internal/model"
	"secondbrain/internal/service"
	"secondbrain/pkg/metrics"
)

const taskColumns = `
	id, title, description, status, priority, tags, due_date,
	proof_what_changed, proof_what_it_does, proof_how_to_use,
	proof_tests, proof_screenshot, created_at, updated_at
`

type TaskRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTaskRepository(db *pgxpool.Pool, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{db: db, logger: logger}
}

func scanTask(row pgx.Row) (*model.Task, error) {
	var t model.Task
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&t.Tags,
		&t.DueDate,
		&t.ProofWhatChanged,
		&t.ProofWhatItDoes,
		&t.ProofHowToUse,
		&t.ProofTests,
		&t.ProofScreenshot,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepository) Create(ctx context.Context, t *model.Task) (*model.Task, error) {
	start := time.Now()
	query := `
        INSERT INTO tasks (title, description, status, priority, tags, due_date,
                           proof_what_changed, proof_what_it_does, proof_how_to_use,
                           proof_tests, proof_screenshot)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING ` + taskColumns

	created, err := scanTask(r.db.QueryRow(ctx, query,
		t.Title,
		t.Description,
		t.Status,
		t.Priority,
		t.Tags,
		t.DueDate,
		t.ProofWhatChanged,
		t.ProofWhatItDoes,
		t.ProofHowToUse,
		t.ProofTests,
		t.ProofScreenshot,
	))
	if err != nil {
		r.logger.Error("Failed to insert task", zap.Error(err), zap.String("title", t.Title))
		return nil, err
	}
	metrics.RecordDBQueryDuration("insert", "tasks", time.Since(start))

	r.logger.Info("Task inserted successfully",
		zap.Int("task_id", created.ID),
		zap.String("status", created.Status),
	)
	return created, nil
}

func (r *TaskRepository) Get(ctx context.Context, id int) (*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	t, err := scanTask(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrNotFound
		}
		r.logger.Error("Failed to get task", zap.Int("task_id", id), zap.Error(err))
		return nil, err
	}
	return t, nil
}

func (r *TaskRepository) List(ctx context.Context) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks ORDER BY updated_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query tasks", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			r.logger.Error("Failed to scan task row", zap.Error(err))
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) Delete(ctx context.Context, id int) error {
	// subtasks go with the task; activities keep their entity reference
	result, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete task", zap.Int("task_id", id), zap.Error(err))
		return err
	}
	if result.RowsAffected() == 0 {
		return service.ErrNotFound
	}
	r.logger.Info("Task deleted", zap.Int("task_id", id))
	return nil
}

// Transition runs read -> gate -> write inside one transaction with the
// task row locked, so two concurrent done-transitions cannot both read
// stale state and slip past the gate. A gate rejection rolls back with
// nothing persisted.
func (r *TaskRepository) Transition(ctx context.Context, id int, patch model.TaskPatch, gate service.GateFunc) (*model.Task, error) {
	start := time.Now()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 FOR UPDATE`
	current, err := scanTask(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrNotFound
		}
		r.logger.Error("Failed to lock task for update", zap.Int("task_id", id), zap.Error(err))
		return nil, err
	}

	subtasks, err := listSubtasksTx(ctx, tx, id)
	if err != nil {
		r.logger.Error("Failed to load subtasks for gate", zap.Int("task_id", id), zap.Error(err))
		return nil, err
	}

	if err := gate(current, subtasks); err != nil {
		return nil, err
	}

	update := `
        UPDATE tasks SET
            title              = COALESCE($2, title),
            description        = COALESCE($3, description),
            status             = COALESCE($4, status),
            priority           = COALESCE($5, priority),
            tags               = COALESCE($6, tags),
            due_date           = COALESCE($7, due_date),
            proof_what_changed = COALESCE($8, proof_what_changed),
            proof_what_it_does = COALESCE($9, proof_what_it_does),
            proof_how_to_use   = COALESCE($10, proof_how_to_use),
            proof_tests        = COALESCE($11, proof_tests),
            proof_screenshot   = COALESCE($12, proof_screenshot),
            updated_at         = NOW()
        WHERE id = $1
        RETURNING ` + taskColumns

	updated, err := scanTask(tx.QueryRow(ctx, update, id,
		patch.Title,
		patch.Description,
		patch.Status,
		patch.Priority,
		patch.Tags,
		patch.DueDate,
		patch.ProofWhatChanged,
		patch.ProofWhatItDoes,
		patch.ProofHowToUse,
		patch.ProofTests,
		patch.ProofScreenshot,
	))
	if err != nil {
		r.logger.Error("Failed to update task", zap.Int("task_id", id), zap.Error(err))
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Error("Failed to commit task update", zap.Int("task_id", id), zap.Error(err))
		return nil, err
	}

	metrics.RecordDBQueryDuration("transition", "tasks", time.Since(start))
	return updated, nil
}
