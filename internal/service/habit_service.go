package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"secondbrain/internal/model"
	"secondbrain/pkg/metrics"
)

// HabitService tracks habits and recomputes completion streaks on every
// logged completion.
type HabitService struct {
	habits   HabitStore
	activity ActivityRecorder
	logger   *zap.Logger
	now      func() time.Time
}

func NewHabitService(habits HabitStore, activity ActivityRecorder, logger *zap.Logger) *HabitService {
	return &HabitService{
		habits:   habits,
		activity: activity,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *HabitService) CreateHabit(ctx context.Context, h *model.Habit) (*model.Habit, error) {
	created, err := s.habits.Insert(ctx, h)
	if err != nil {
		s.logger.Error("Failed to create habit", zap.Error(err))
		return nil, err
	}
	s.activity.Record(ctx, "habit", created.ID, fmt.Sprintf("Created habit: %s", created.Name))
	return created, nil
}

func (s *HabitService) GetHabit(ctx context.Context, id int) (*model.Habit, []model.HabitLog, error) {
	h, err := s.habits.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	logs, err := s.habits.ListRecentLogs(ctx, id, 30)
	if err != nil {
		return nil, nil, err
	}
	return h, logs, nil
}

func (s *HabitService) ListHabits(ctx context.Context) ([]model.Habit, error) {
	return s.habits.List(ctx)
}

func (s *HabitService) UpdateHabit(ctx context.Context, id int, patch model.HabitPatch) (*model.Habit, error) {
	return s.habits.Update(ctx, id, patch)
}

func (s *HabitService) DeleteHabit(ctx context.Context, id int) error {
	return s.habits.Delete(ctx, id)
}

// LogCompletion upserts the single log for (habit, day), then recomputes
// the streak from the full completed-log history. The upsert is durably
// written before the recomputation reads it back.
func (s *HabitService) LogCompletion(ctx context.Context, habitID int, date *time.Time, completed bool, notes string) (*model.HabitLog, int, error) {
	habit, err := s.habits.Get(ctx, habitID)
	if err != nil {
		return nil, 0, err
	}

	when := s.now()
	if date != nil {
		when = *date
	}
	day := dateOnly(when)

	log, err := s.habits.UpsertLog(ctx, habitID, day, completed, notes)
	if err != nil {
		s.logger.Error("Failed to upsert habit log",
			zap.Int("habit_id", habitID),
			zap.Error(err),
		)
		return nil, 0, err
	}
	metrics.IncrementHabitCompletion(completed)

	logs, err := s.habits.ListCompletedLogs(ctx, habitID)
	if err != nil {
		return nil, 0, err
	}

	streak := computeStreak(logs, s.now())

	longest := habit.LongestStreak
	if streak > longest {
		longest = streak
	}
	if err := s.habits.UpdateStreak(ctx, habitID, streak, longest); err != nil {
		return nil, 0, err
	}

	s.activity.Record(ctx, "habit", habitID, fmt.Sprintf("Logged habit: %s (streak %d)", habit.Name, streak))
	s.logger.Info("Habit completion logged",
		zap.Int("habit_id", habitID),
		zap.String("date", day.Format("2006-01-02")),
		zap.Bool("completed", completed),
		zap.Int("streak", streak),
	)
	return log, streak, nil
}

// computeStreak walks completed logs newest-first. The newest log starts
// a streak only when it is from today or yesterday; every further log
// extends it only on an exact one-day step. The first larger gap ends
// the walk.
func computeStreak(logs []model.HabitLog, now time.Time) int {
	today := dayNumber(now)

	streak := 0
	last := 0
	for _, l := range logs {
		day := dayNumber(l.Date)
		if streak == 0 {
			if today-day <= 1 {
				streak = 1
				last = day
				continue
			}
			return 0
		}
		if last-day == 1 {
			streak++
			last = day
			continue
		}
		break
	}
	return streak
}

// dateOnly truncates t to midnight in its own location.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// dayNumber maps t to its calendar day counted in whole days since the
// Unix epoch, using the date t shows in its own location. A log date
// scanned as UTC midnight and a now in the server's zone land on
// comparable values regardless of offset.
func dayNumber(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}
