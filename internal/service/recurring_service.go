package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"secondbrain/internal/model"
	"secondbrain/pkg/metrics"
)

// GeneratedTask maps a template to the task it spawned in one run.
type GeneratedTask struct {
	TemplateID int    `json:"template_id"`
	TaskID     int    `json:"task_id"`
	Title      string `json:"title"`
}

// GenerationBatch is the result of one generator invocation.
type GenerationBatch struct {
	Generated []GeneratedTask `json:"generated"`
	Count     int             `json:"count"`
}

// RecurringService turns schedule templates into concrete tasks, at most
// once per template per calendar day.
type RecurringService struct {
	templates RecurringStore
	tasks     TaskStore
	activity  ActivityRecorder
	logger    *zap.Logger
	now       func() time.Time
}

func NewRecurringService(
	templates RecurringStore,
	tasks TaskStore,
	activity ActivityRecorder,
	logger *zap.Logger,
) *RecurringService {
	return &RecurringService{
		templates: templates,
		tasks:     tasks,
		activity:  activity,
		logger:    logger,
		now:       time.Now,
	}
}

// ValidateSchedule enforces the schedule/day-field pairing: weekly needs
// dayOfWeek 0-6, monthly needs dayOfMonth 1-31.
func ValidateSchedule(schedule string, dayOfWeek, dayOfMonth *int) error {
	switch schedule {
	case model.ScheduleDaily:
		return nil
	case model.ScheduleWeekly:
		if dayOfWeek == nil || *dayOfWeek < 0 || *dayOfWeek > 6 {
			return &ScheduleRejection{Reason: "weekly tasks require day_of_week (0-6)"}
		}
		return nil
	case model.ScheduleMonthly:
		if dayOfMonth == nil || *dayOfMonth < 1 || *dayOfMonth > 31 {
			return &ScheduleRejection{Reason: "monthly tasks require day_of_month (1-31)"}
		}
		return nil
	default:
		return &ScheduleRejection{Reason: fmt.Sprintf("unknown schedule %q", schedule)}
	}
}

// CreateTemplate validates and stores a template; when generateNow is set
// the first task is spawned immediately.
func (s *RecurringService) CreateTemplate(ctx context.Context, t *model.RecurringTask, generateNow bool) (*model.RecurringTask, error) {
	if err := ValidateSchedule(t.Schedule, t.DayOfWeek, t.DayOfMonth); err != nil {
		return nil, err
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	// day fields only make sense for their own schedule
	if t.Schedule != model.ScheduleWeekly {
		t.DayOfWeek = nil
	}
	if t.Schedule != model.ScheduleMonthly {
		t.DayOfMonth = nil
	}

	created, err := s.templates.Insert(ctx, t)
	if err != nil {
		s.logger.Error("Failed to create recurring template", zap.Error(err))
		return nil, err
	}

	s.activity.Record(ctx, "recurring", created.ID,
		fmt.Sprintf("Created recurring task: %s (%s)", created.Title, created.Schedule))

	if generateNow {
		if _, err := s.generateFromTemplate(ctx, created); err != nil {
			s.logger.Error("Failed to generate initial task from template",
				zap.Int("template_id", created.ID),
				zap.Error(err),
			)
		}
	}

	return created, nil
}

func (s *RecurringService) ListTemplates(ctx context.Context) ([]model.RecurringTask, error) {
	return s.templates.List(ctx)
}

func (s *RecurringService) UpdateTemplate(ctx context.Context, id int, patch model.RecurringPatch) (*model.RecurringTask, error) {
	if patch.Schedule != nil {
		if err := ValidateSchedule(*patch.Schedule, patch.DayOfWeek, patch.DayOfMonth); err != nil {
			return nil, err
		}
	}
	return s.templates.Update(ctx, id, patch)
}

func (s *RecurringService) DeleteTemplate(ctx context.Context, id int) error {
	return s.templates.Delete(ctx, id)
}

// GenerateNow scans active templates and spawns a task for each that is
// due today and has not generated today yet. Safe to invoke repeatedly:
// the per-template claim is atomic, so a rerun within the same calendar
// day is silently absorbed.
func (s *RecurringService) GenerateNow(ctx context.Context) (*GenerationBatch, error) {
	now := s.now()
	s.logger.Info("Generating recurring tasks",
		zap.String("date", now.Format("2006-01-02")),
	)

	templates, err := s.templates.ListActive(ctx)
	if err != nil {
		s.logger.Error("Failed to list recurring templates", zap.Error(err))
		return nil, err
	}

	batch := &GenerationBatch{Generated: []GeneratedTask{}}
	for i := range templates {
		tpl := &templates[i]
		if !dueToday(tpl, now) {
			continue
		}

		gen, err := s.generateFromTemplate(ctx, tpl)
		if err != nil {
			s.logger.Error("Failed to generate task from template",
				zap.Int("template_id", tpl.ID),
				zap.Error(err),
			)
			continue
		}
		if gen == nil {
			// already generated today
			continue
		}
		batch.Generated = append(batch.Generated, *gen)
	}

	batch.Count = len(batch.Generated)
	s.logger.Info("Recurring generation completed",
		zap.Int("total_templates", len(templates)),
		zap.Int("generated_count", batch.Count),
	)
	return batch, nil
}

// generateFromTemplate claims today's slot and, when won, creates the
// task. Returns nil without error when the slot was already claimed.
func (s *RecurringService) generateFromTemplate(ctx context.Context, tpl *model.RecurringTask) (*GeneratedTask, error) {
	claimed, err := s.templates.ClaimToday(ctx, tpl.ID, s.now())
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, nil
	}

	task, err := s.tasks.Create(ctx, &model.Task{
		Title:       tpl.Title,
		Description: tpl.Description,
		Status:      model.StatusBacklog,
		Priority:    tpl.Priority,
	})
	if err != nil {
		// the claim is already burned for today; surface the error so
		// the caller sees the template was skipped
		return nil, err
	}

	metrics.IncrementRecurringGenerated()
	s.activity.Record(ctx, "recurring", tpl.ID,
		fmt.Sprintf("Generated task from recurring: %s", tpl.Title))
	s.logger.Info("Generated task from template",
		zap.Int("template_id", tpl.ID),
		zap.Int("task_id", task.ID),
		zap.String("title", tpl.Title),
	)

	return &GeneratedTask{
		TemplateID: tpl.ID,
		TaskID:     task.ID,
		Title:      task.Title,
	}, nil
}

// dueToday evaluates the schedule against the current date: daily is
// always due, weekly on a matching weekday, monthly on a matching
// day-of-month.
func dueToday(tpl *model.RecurringTask, now time.Time) bool {
	switch tpl.Schedule {
	case model.ScheduleDaily:
		return true
	case model.ScheduleWeekly:
		return tpl.DayOfWeek != nil && int(now.Weekday()) == *tpl.DayOfWeek
	case model.ScheduleMonthly:
		return tpl.DayOfMonth != nil && now.Day() == *tpl.DayOfMonth
	default:
		return false
	}
}
