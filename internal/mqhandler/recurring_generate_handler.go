package mqhandler

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	contracts "secondbrain/contracts/mq"
	"secondbrain/internal/service"
	"secondbrain/pkg/util"
)

// RecurringGenerateHandler reacts to recurring.generate events, typically
// published by a scheduler at midnight. The deduper keeps a burst of
// triggers for the same date down to one scan; the per-template claim
// inside the service catches anything that slips through.
type RecurringGenerateHandler struct {
	svc     *service.RecurringService
	deduper *util.Deduper
	logger  *zap.Logger
}

func NewRecurringGenerateHandler(svc *service.RecurringService, deduper *util.Deduper, logger *zap.Logger) *RecurringGenerateHandler {
	return &RecurringGenerateHandler{
		svc:     svc,
		deduper: deduper,
		logger:  logger,
	}
}

func (h *RecurringGenerateHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	var p contracts.RecurringGeneratePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal recurring.generate payload", zap.Error(err))
		return err
	}

	date := p.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	if h.deduper != nil && !h.deduper.AcquireOnce(ctx, "recurring_generate", date) {
		h.logger.Info("Skipping duplicate generation trigger", zap.String("date", date))
		return nil
	}

	h.logger.Info("Handling recurring.generate event", zap.String("date", date))

	batch, err := h.svc.GenerateNow(ctx)
	if err != nil {
		h.logger.Error("Recurring generation failed", zap.Error(err))
		return err
	}

	h.logger.Info("Recurring generation finished",
		zap.String("date", date),
		zap.Int("generated_count", batch.Count),
	)
	return nil
}
