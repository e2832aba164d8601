package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"secondbrain/internal/model"
)

func newHabitServiceForTest(now time.Time) (*HabitService, *memHabitStore) {
	store := newMemHabitStore()
	svc := NewHabitService(store, &recordingActivity{}, zap.NewNop())
	svc.now = func() time.Time { return now }
	return svc, store
}

func day(t time.Time, daysAgo int) *time.Time {
	d := t.AddDate(0, 0, -daysAgo)
	return &d
}

func TestLogCompletion_StartsStreakToday(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)
	svc, _ := newHabitServiceForTest(now)

	habit, err := svc.CreateHabit(context.Background(), &model.Habit{Name: "Read", Active: true})
	require.NoError(t, err)

	_, streak, err := svc.LogCompletion(context.Background(), habit.ID, nil, true, "")
	require.NoError(t, err)
	assert.Equal(t, 1, streak)
}

func TestLogCompletion_ConsecutiveDaysExtendStreak(t *testing.T) {
	now := time.Date(2026, 8, 28, 15, 0, 0, 0, time.UTC)
	svc, _ := newHabitServiceForTest(now)

	habit, err := svc.CreateHabit(context.Background(), &model.Habit{Name: "Read", Active: true})
	require.NoError(t, err)

	for _, ago := range []int{2, 1, 0} {
		_, _, err := svc.LogCompletion(context.Background(), habit.ID, day(now, ago), true, "")
		require.NoError(t, err)
	}

	h, _, err := svc.GetHabit(context.Background(), habit.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, h.Streak)
	assert.Equal(t, 3, h.LongestStreak)
}

func TestLogCompletion_YesterdayOnlyStillCounts(t *testing.T) {
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	svc, _ := newHabitServiceForTest(now)

	habit, err := svc.CreateHabit(context.Background(), &model.Habit{Name: "Read", Active: true})
	require.NoError(t, err)

	_, streak, err := svc.LogCompletion(context.Background(), habit.ID, day(now, 1), true, "")
	require.NoError(t, err)
	assert.Equal(t, 1, streak)
}

func TestLogCompletion_GapBreaksStreak(t *testing.T) {
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	svc, _ := newHabitServiceForTest(now)

	habit, err := svc.CreateHabit(context.Background(), &model.Habit{Name: "Read", Active: true})
	require.NoError(t, err)

	// logged today and three days ago: the gap stops the walk at 1
	_, _, err = svc.LogCompletion(context.Background(), habit.ID, day(now, 3), true, "")
	require.NoError(t, err)
	_, streak, err := svc.LogCompletion(context.Background(), habit.ID, nil, true, "")
	require.NoError(t, err)
	assert.Equal(t, 1, streak)
}

func TestLogCompletion_GapAfterRunStopsWalk(t *testing.T) {
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	svc, _ := newHabitServiceForTest(now)

	habit, err := svc.CreateHabit(context.Background(), &model.Habit{Name: "Read", Active: true})
	require.NoError(t, err)

	// logged today, yesterday and three days ago: the walk stops at two
	for _, ago := range []int{3, 1, 0} {
		_, _, err := svc.LogCompletion(context.Background(), habit.ID, day(now, ago), true, "")
		require.NoError(t, err)
	}

	h, _, err := svc.GetHabit(context.Background(), habit.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, h.Streak)
}

func TestLogCompletion_StaleHistoryIsZero(t *testing.T) {
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	svc, _ := newHabitServiceForTest(now)

	habit, err := svc.CreateHabit(context.Background(), &model.Habit{Name: "Read", Active: true})
	require.NoError(t, err)

	// newest log two days old: no current streak at all
	_, streak, err := svc.LogCompletion(context.Background(), habit.ID, day(now, 2), true, "")
	require.NoError(t, err)
	assert.Equal(t, 0, streak)
}

func TestLogCompletion_SameDayTwiceIsOneLog(t *testing.T) {
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	svc, store := newHabitServiceForTest(now)

	habit, err := svc.CreateHabit(context.Background(), &model.Habit{Name: "Read", Active: true})
	require.NoError(t, err)

	_, _, err = svc.LogCompletion(context.Background(), habit.ID, nil, true, "morning")
	require.NoError(t, err)
	_, streak, err := svc.LogCompletion(context.Background(), habit.ID, nil, true, "evening")
	require.NoError(t, err)

	assert.Equal(t, 1, streak)
	assert.Len(t, store.logs, 1)
	logs, err := store.ListCompletedLogs(context.Background(), habit.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "evening", logs[0].Notes)
}

func TestLogCompletion_UncompletingTodayDropsStreak(t *testing.T) {
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	svc, _ := newHabitServiceForTest(now)

	habit, err := svc.CreateHabit(context.Background(), &model.Habit{Name: "Read", Active: true})
	require.NoError(t, err)

	_, _, err = svc.LogCompletion(context.Background(), habit.ID, nil, true, "")
	require.NoError(t, err)
	_, streak, err := svc.LogCompletion(context.Background(), habit.ID, nil, false, "")
	require.NoError(t, err)
	assert.Equal(t, 0, streak)
}

func TestLogCompletion_LongestStreakPreserved(t *testing.T) {
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	svc, _ := newHabitServiceForTest(now)

	habit, err := svc.CreateHabit(context.Background(), &model.Habit{Name: "Read", Active: true})
	require.NoError(t, err)

	// a three-day run ending five days ago, then a fresh single-day run
	for _, ago := range []int{7, 6, 5} {
		_, _, err := svc.LogCompletion(context.Background(), habit.ID, day(now, ago), true, "")
		require.NoError(t, err)
	}
	// force the longest to register while the run was current
	past := now.AddDate(0, 0, -5)
	svc.now = func() time.Time { return past }
	_, streak, err := svc.LogCompletion(context.Background(), habit.ID, day(now, 5), true, "")
	require.NoError(t, err)
	require.Equal(t, 3, streak)

	svc.now = func() time.Time { return now }
	_, streak, err = svc.LogCompletion(context.Background(), habit.ID, nil, true, "")
	require.NoError(t, err)
	assert.Equal(t, 1, streak)

	h, _, err := svc.GetHabit(context.Background(), habit.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, h.Streak)
	assert.Equal(t, 3, h.LongestStreak)
}

func TestComputeStreak_EmptyLogs(t *testing.T) {
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, computeStreak(nil, now))
}

func TestComputeStreak_MixedLocations(t *testing.T) {
	// dates scanned from a date column arrive at UTC midnight while now
	// carries the server's zone; the walk compares calendar days, not
	// instants
	loc := time.FixedZone("UTC+2", 2*60*60)
	now := time.Date(2026, 8, 28, 0, 30, 0, 0, loc)

	stale := []model.HabitLog{
		{Date: time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC), Completed: true},
	}
	assert.Equal(t, 0, computeStreak(stale, now))

	fresh := []model.HabitLog{
		{Date: time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC), Completed: true},
	}
	assert.Equal(t, 1, computeStreak(fresh, now))
}

func TestLogCompletion_UnknownHabit(t *testing.T) {
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	svc, _ := newHabitServiceForTest(now)

	_, _, err := svc.LogCompletion(context.Background(), 42, nil, true, "")
	assert.ErrorIs(t, err, ErrNotFound)
}
