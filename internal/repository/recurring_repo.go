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
)

const recurringColumns = `id, title, description, priority, schedule, day_of_week, day_of_month, active, last_generated, created_at`

type RecurringRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewRecurringRepository(db *pgxpool.Pool, logger *zap.Logger) *RecurringRepository {
	return &RecurringRepository{db: db, logger: logger}
}

func scanRecurring(row pgx.Row) (*model.RecurringTask, error) {
	var t model.RecurringTask
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Priority,
		&t.Schedule,
		&t.DayOfWeek,
		&t.DayOfMonth,
		&t.Active,
		&t.LastGenerated,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *RecurringRepository) Insert(ctx context.Context, t *model.RecurringTask) (*model.RecurringTask, error) {
	query := `
        INSERT INTO recurring_tasks (title, description, priority, schedule, day_of_week, day_of_month, active)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING ` + recurringColumns

	created, err := scanRecurring(r.db.QueryRow(ctx, query,
		t.Title,
		t.Description,
		t.Priority,
		t.Schedule,
		t.DayOfWeek,
		t.DayOfMonth,
		t.Active,
	))
	if err != nil {
		r.logger.Error("Failed to insert recurring template", zap.Error(err))
		return nil, err
	}
	r.logger.Info("Recurring template inserted",
		zap.Int("template_id", created.ID),
		zap.String("schedule", created.Schedule),
	)
	return created, nil
}

func (r *RecurringRepository) Get(ctx context.Context, id int) (*model.RecurringTask, error) {
	t, err := scanRecurring(r.db.QueryRow(ctx,
		`SELECT `+recurringColumns+` FROM recurring_tasks WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *RecurringRepository) List(ctx context.Context) ([]model.RecurringTask, error) {
	return r.query(ctx, `SELECT `+recurringColumns+` FROM recurring_tasks ORDER BY active DESC, created_at DESC`)
}

func (r *RecurringRepository) ListActive(ctx context.Context) ([]model.RecurringTask, error) {
	return r.query(ctx, `SELECT `+recurringColumns+` FROM recurring_tasks WHERE active = TRUE ORDER BY created_at DESC`)
}

func (r *RecurringRepository) query(ctx context.Context, query string) ([]model.RecurringTask, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query recurring templates", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	templates := []model.RecurringTask{}
	for rows.Next() {
		t, err := scanRecurring(rows)
		if err != nil {
			r.logger.Error("Failed to scan recurring template", zap.Error(err))
			return nil, err
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

func (r *RecurringRepository) Update(ctx context.Context, id int, patch model.RecurringPatch) (*model.RecurringTask, error) {
	query := `
        UPDATE recurring_tasks SET
            title        = COALESCE($2, title),
            description  = COALESCE($3, description),
            priority     = COALESCE($4, priority),
            schedule     = COALESCE($5, schedule),
            day_of_week  = COALESCE($6, day_of_week),
            day_of_month = COALESCE($7, day_of_month),
            active       = COALESCE($8, active)
        WHERE id = $1
        RETURNING ` + recurringColumns

	updated, err := scanRecurring(r.db.QueryRow(ctx, query, id,
		patch.Title,
		patch.Description,
		patch.Priority,
		patch.Schedule,
		patch.DayOfWeek,
		patch.DayOfMonth,
		patch.Active,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrNotFound
		}
		r.logger.Error("Failed to update recurring template", zap.Int("template_id", id), zap.Error(err))
		return nil, err
	}
	return updated, nil
}

func (r *RecurringRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.Exec(ctx, `DELETE FROM recurring_tasks WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete recurring template", zap.Int("template_id", id), zap.Error(err))
		return err
	}
	if result.RowsAffected() == 0 {
		return service.ErrNotFound
	}
	return nil
}

// ClaimToday is the idempotency guard: the guarded UPDATE claims the
// template for today in one statement, so concurrent generator runs
// race on the row and exactly one sees RowsAffected() == 1.
func (r *RecurringRepository) ClaimToday(ctx context.Context, id int, now time.Time) (bool, error) {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	result, err := r.db.Exec(ctx, `
        UPDATE recurring_tasks
        SET last_generated = $2
        WHERE id = $1
        AND (last_generated IS NULL OR last_generated < $3)
    `, id, now, startOfDay)
	if err != nil {
		r.logger.Error("Failed to claim recurring template",
			zap.Int("template_id", id),
			zap.Error(err),
		)
		return false, err
	}
	return result.RowsAffected() > 0, nil
}
