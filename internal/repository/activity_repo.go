package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	contracts "secondbrain/contracts/mq"
	"secondbrain/internal/model"
	"secondbrain/pkg/outbox"
)

// ActivityRepository appends feed entries and stages an outbox event in
// the same transaction, so the feed row and its published event cannot
// diverge. Record is fire-and-forget: failures are logged, never
// returned, because a broken feed must not fail the business write.
type ActivityRepository struct {
	db     *pgxpool.Pool
	outbox *outbox.Repository
	logger *zap.Logger
}

func NewActivityRepository(db *pgxpool.Pool, outboxRepo *outbox.Repository, logger *zap.Logger) *ActivityRepository {
	return &ActivityRepository{db: db, outbox: outboxRepo, logger: logger}
}

func (r *ActivityRepository) Record(ctx context.Context, entity string, entityID int, message string) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.Warn("Failed to begin activity transaction", zap.Error(err))
		return
	}
	defer tx.Rollback(ctx)

	var activity model.Activity
	err = tx.QueryRow(ctx, `
        INSERT INTO activities (entity, entity_id, message)
        VALUES ($1, $2, $3)
        RETURNING id, entity, entity_id, message, created_at
    `, entity, entityID, message).Scan(
		&activity.ID,
		&activity.Entity,
		&activity.EntityID,
		&activity.Message,
		&activity.CreatedAt,
	)
	if err != nil {
		r.logger.Warn("Failed to insert activity",
			zap.String("entity", entity),
			zap.Int("entity_id", entityID),
			zap.Error(err),
		)
		return
	}

	aggregateID := int64(entityID)
	payload := contracts.ActivityRecordedPayload{
		ActivityID: activity.ID,
		Entity:     activity.Entity,
		EntityID:   activity.EntityID,
		Message:    activity.Message,
		OccurredAt: activity.CreatedAt,
	}
	if err := outbox.InsertEventInTx(ctx, tx, r.outbox, entity, &aggregateID, "activity.recorded", payload); err != nil {
		r.logger.Warn("Failed to stage activity event", zap.Error(err))
		return
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.Warn("Failed to commit activity", zap.Error(err))
	}
}

// ListRecent returns the newest feed entries for the dashboard.
func (r *ActivityRepository) ListRecent(ctx context.Context, limit int) ([]model.Activity, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, entity, entity_id, message, created_at
        FROM activities
        ORDER BY created_at DESC
        LIMIT $1
    `, limit)
	if err != nil {
		r.logger.Error("Failed to query activities", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	activities := []model.Activity{}
	for rows.Next() {
		var a model.Activity
		if err := rows.Scan(&a.ID, &a.Entity, &a.EntityID, &a.Message, &a.CreatedAt); err != nil {
			r.logger.Error("Failed to scan activity", zap.Error(err))
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}
