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

const habitColumns = `id, name, description, frequency, streak, longest_streak, active, created_at, updated_at`
const habitLogColumns = `id, habit_id, date, completed, notes`

type HabitRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewHabitRepository(db *pgxpool.Pool, logger *zap.Logger) *HabitRepository {
	return &HabitRepository{db: db, logger: logger}
}

func scanHabit(row pgx.Row) (*model.Habit, error) {
	var h model.Habit
	err := row.Scan(
		&h.ID,
		&h.Name,
		&h.Description,
		&h.Frequency,
		&h.Streak,
		&h.LongestStreak,
		&h.Active,
		&h.CreatedAt,
		&h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func scanHabitLog(row pgx.Row) (*model.HabitLog, error) {
	var l model.HabitLog
	err := row.Scan(&l.ID, &l.HabitID, &l.Date, &l.Completed, &l.Notes)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *HabitRepository) Insert(ctx context.Context, h *model.Habit) (*model.Habit, error) {
	query := `
        INSERT INTO habits (name, description, frequency, active)
        VALUES ($1, $2, $3, $4)
        RETURNING ` + habitColumns

	created, err := scanHabit(r.db.QueryRow(ctx, query,
		h.Name,
		h.Description,
		h.Frequency,
		h.Active,
	))
	if err != nil {
		r.logger.Error("Failed to insert habit", zap.Error(err))
		return nil, err
	}
	r.logger.Info("Habit inserted successfully", zap.Int("habit_id", created.ID))
	return created, nil
}

func (r *HabitRepository) Get(ctx context.Context, id int) (*model.Habit, error) {
	h, err := scanHabit(r.db.QueryRow(ctx, `SELECT `+habitColumns+` FROM habits WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrNotFound
		}
		r.logger.Error("Failed to get habit", zap.Int("habit_id", id), zap.Error(err))
		return nil, err
	}
	return h, nil
}

func (r *HabitRepository) List(ctx context.Context) ([]model.Habit, error) {
	rows, err := r.db.Query(ctx, `SELECT `+habitColumns+` FROM habits ORDER BY created_at DESC`)
	if err != nil {
		r.logger.Error("Failed to list habits", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	habits := []model.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			r.logger.Error("Failed to scan habit", zap.Error(err))
			return nil, err
		}
		habits = append(habits, *h)
	}
	return habits, rows.Err()
}

func (r *HabitRepository) Update(ctx context.Context, id int, patch model.HabitPatch) (*model.Habit, error) {
	query := `
        UPDATE habits SET
            name        = COALESCE($2, name),
            description = COALESCE($3, description),
            frequency   = COALESCE($4, frequency),
            active      = COALESCE($5, active),
            updated_at  = NOW()
        WHERE id = $1
        RETURNING ` + habitColumns

	updated, err := scanHabit(r.db.QueryRow(ctx, query, id,
		patch.Name,
		patch.Description,
		patch.Frequency,
		patch.Active,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrNotFound
		}
		r.logger.Error("Failed to update habit", zap.Int("habit_id", id), zap.Error(err))
		return nil, err
	}
	return updated, nil
}

func (r *HabitRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.Exec(ctx, `DELETE FROM habits WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete habit", zap.Int("habit_id", id), zap.Error(err))
		return err
	}
	if result.RowsAffected() == 0 {
		return service.ErrNotFound
	}
	return nil
}

// UpsertLog relies on the (habit_id, date) unique index to keep one log
// per habit per calendar day.
func (r *HabitRepository) UpsertLog(ctx context.Context, habitID int, day time.Time, completed bool, notes string) (*model.HabitLog, error) {
	query := `
        INSERT INTO habit_logs (habit_id, date, completed, notes)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (habit_id, date)
        DO UPDATE SET completed = EXCLUDED.completed, notes = EXCLUDED.notes
        RETURNING ` + habitLogColumns

	log, err := scanHabitLog(r.db.QueryRow(ctx, query, habitID, day, completed, notes))
	if err != nil {
		r.logger.Error("Failed to upsert habit log",
			zap.Int("habit_id", habitID),
			zap.String("date", day.Format("2006-01-02")),
			zap.Error(err),
		)
		return nil, err
	}
	return log, nil
}

func (r *HabitRepository) ListCompletedLogs(ctx context.Context, habitID int) ([]model.HabitLog, error) {
	query := `
        SELECT ` + habitLogColumns + `
        FROM habit_logs
        WHERE habit_id = $1 AND completed = TRUE
        ORDER BY date DESC
    `
	return r.queryLogs(ctx, query, habitID)
}

func (r *HabitRepository) ListRecentLogs(ctx context.Context, habitID, limit int) ([]model.HabitLog, error) {
	query := `
        SELECT ` + habitLogColumns + `
        FROM habit_logs
        WHERE habit_id = $1
        ORDER BY date DESC
        LIMIT $2
    `
	return r.queryLogs(ctx, query, habitID, limit)
}

func (r *HabitRepository) queryLogs(ctx context.Context, query string, args ...any) ([]model.HabitLog, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query habit logs", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	logs := []model.HabitLog{}
	for rows.Next() {
		l, err := scanHabitLog(rows)
		if err != nil {
			r.logger.Error("Failed to scan habit log", zap.Error(err))
			return nil, err
		}
		logs = append(logs, *l)
	}
	return logs, rows.Err()
}

func (r *HabitRepository) UpdateStreak(ctx context.Context, habitID, streak, longest int) error {
	_, err := r.db.Exec(ctx, `
        UPDATE habits
        SET streak = $2, longest_streak = $3, updated_at = NOW()
        WHERE id = $1
    `, habitID, streak, longest)
	if err != nil {
		r.logger.Error("Failed to update streak",
			zap.Int("habit_id", habitID),
			zap.Int("streak", streak),
			zap.Error(err),
		)
		return err
	}
	return nil
}
