package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"secondbrain/internal/model"
)

// memStore is an in-memory TaskStore + SubtaskStore with the same
// transition contract as the real repository: read, gate, write as one
// unit, nothing persisted on rejection.
type memStore struct {
	tasks    map[int]*model.Task
	subtasks map[int]*model.Subtask
	nextTask int
	nextSub  int
}

func newMemStore() *memStore {
	return &memStore{
		tasks:    map[int]*model.Task{},
		subtasks: map[int]*model.Subtask{},
		nextTask: 1,
		nextSub:  1,
	}
}

func (m *memStore) Create(_ context.Context, t *model.Task) (*model.Task, error) {
	c := *t
	c.ID = m.nextTask
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	m.nextTask++
	m.tasks[c.ID] = &c
	out := c
	return &out, nil
}

func (m *memStore) Get(_ context.Context, id int) (*model.Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *t
	return &out, nil
}

func (m *memStore) List(_ context.Context) ([]model.Task, error) {
	out := []model.Task{}
	for _, t := range m.tasks {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) Delete(_ context.Context, id int) error {
	if _, ok := m.tasks[id]; !ok {
		return ErrNotFound
	}
	delete(m.tasks, id)
	for sid, s := range m.subtasks {
		if s.TaskID == id {
			delete(m.subtasks, sid)
		}
	}
	return nil
}

func (m *memStore) Transition(ctx context.Context, id int, patch model.TaskPatch, gate GateFunc) (*model.Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}

	subtasks, _ := m.ListByTask(ctx, id)
	current := *t
	if err := gate(&current, subtasks); err != nil {
		return nil, err
	}

	applyString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	applyString(&t.Title, patch.Title)
	applyString(&t.Description, patch.Description)
	applyString(&t.Status, patch.Status)
	applyString(&t.Priority, patch.Priority)
	applyString(&t.Tags, patch.Tags)
	if patch.DueDate != nil {
		t.DueDate = patch.DueDate
	}
	applyString(&t.ProofWhatChanged, patch.ProofWhatChanged)
	applyString(&t.ProofWhatItDoes, patch.ProofWhatItDoes)
	applyString(&t.ProofHowToUse, patch.ProofHowToUse)
	applyString(&t.ProofTests, patch.ProofTests)
	applyString(&t.ProofScreenshot, patch.ProofScreenshot)
	t.UpdatedAt = time.Now()

	out := *t
	return &out, nil
}

func (m *memStore) ListByTask(_ context.Context, taskID int) ([]model.Subtask, error) {
	out := []model.Subtask{}
	for _, s := range m.subtasks {
		if s.TaskID == taskID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (m *memStore) Count(ctx context.Context, taskID int) (int, error) {
	list, _ := m.ListByTask(ctx, taskID)
	return len(list), nil
}

func (m *memStore) Insert(_ context.Context, s *model.Subtask) (*model.Subtask, error) {
	c := *s
	c.ID = m.nextSub
	c.CreatedAt = time.Now()
	m.nextSub++
	m.subtasks[c.ID] = &c
	out := c
	return &out, nil
}

func (m *memStore) Update(_ context.Context, taskID, subtaskID int, patch model.SubtaskPatch) (*model.Subtask, error) {
	s, ok := m.subtasks[subtaskID]
	if !ok || s.TaskID != taskID {
		return nil, ErrNotFound
	}
	if patch.Title != nil {
		s.Title = *patch.Title
	}
	if patch.Done != nil {
		s.Done = *patch.Done
	}
	if patch.Notes != nil {
		s.Notes = *patch.Notes
	}
	out := *s
	return &out, nil
}

func (m *memStore) DeleteSubtask(_ context.Context, taskID, subtaskID int) error {
	s, ok := m.subtasks[subtaskID]
	if !ok || s.TaskID != taskID {
		return ErrNotFound
	}
	delete(m.subtasks, subtaskID)
	return nil
}

// memSubtasks presents the subtask half of memStore as a SubtaskStore;
// its Delete takes the (taskID, subtaskID) pair the interface expects.
type memSubtasks struct {
	*memStore
}

func (m memSubtasks) Delete(ctx context.Context, taskID, subtaskID int) error {
	return m.DeleteSubtask(ctx, taskID, subtaskID)
}

// memHabitStore is an in-memory HabitStore keyed by (habit, date).
type memHabitStore struct {
	habits map[int]*model.Habit
	logs   map[string]*model.HabitLog
	nextID int
	nextLg int
}

func newMemHabitStore() *memHabitStore {
	return &memHabitStore{
		habits: map[int]*model.Habit{},
		logs:   map[string]*model.HabitLog{},
		nextID: 1,
		nextLg: 1,
	}
}

func logKey(habitID int, day time.Time) string {
	return fmt.Sprintf("%d:%s", habitID, day.Format("2006-01-02"))
}

func (m *memHabitStore) Insert(_ context.Context, h *model.Habit) (*model.Habit, error) {
	c := *h
	c.ID = m.nextID
	m.nextID++
	m.habits[c.ID] = &c
	out := c
	return &out, nil
}

func (m *memHabitStore) Get(_ context.Context, id int) (*model.Habit, error) {
	h, ok := m.habits[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *h
	return &out, nil
}

func (m *memHabitStore) List(_ context.Context) ([]model.Habit, error) {
	out := []model.Habit{}
	for _, h := range m.habits {
		out = append(out, *h)
	}
	return out, nil
}

func (m *memHabitStore) Update(_ context.Context, id int, patch model.HabitPatch) (*model.Habit, error) {
	h, ok := m.habits[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.Name != nil {
		h.Name = *patch.Name
	}
	if patch.Description != nil {
		h.Description = *patch.Description
	}
	if patch.Frequency != nil {
		h.Frequency = *patch.Frequency
	}
	if patch.Active != nil {
		h.Active = *patch.Active
	}
	out := *h
	return &out, nil
}

func (m *memHabitStore) Delete(_ context.Context, id int) error {
	if _, ok := m.habits[id]; !ok {
		return ErrNotFound
	}
	delete(m.habits, id)
	return nil
}

func (m *memHabitStore) UpsertLog(_ context.Context, habitID int, day time.Time, completed bool, notes string) (*model.HabitLog, error) {
	key := logKey(habitID, day)
	if l, ok := m.logs[key]; ok {
		l.Completed = completed
		l.Notes = notes
		out := *l
		return &out, nil
	}
	l := &model.HabitLog{
		ID:        m.nextLg,
		HabitID:   habitID,
		Date:      day,
		Completed: completed,
		Notes:     notes,
	}
	m.nextLg++
	m.logs[key] = l
	out := *l
	return &out, nil
}

func (m *memHabitStore) ListCompletedLogs(_ context.Context, habitID int) ([]model.HabitLog, error) {
	out := []model.HabitLog{}
	for _, l := range m.logs {
		if l.HabitID == habitID && l.Completed {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (m *memHabitStore) ListRecentLogs(_ context.Context, habitID, limit int) ([]model.HabitLog, error) {
	out := []model.HabitLog{}
	for _, l := range m.logs {
		if l.HabitID == habitID {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memHabitStore) UpdateStreak(_ context.Context, habitID, streak, longest int) error {
	h, ok := m.habits[habitID]
	if !ok {
		return ErrNotFound
	}
	h.Streak = streak
	h.LongestStreak = longest
	return nil
}

// memRecurringStore mirrors the guarded-update claim of the real store.
type memRecurringStore struct {
	templates map[int]*model.RecurringTask
	nextID    int
}

func newMemRecurringStore() *memRecurringStore {
	return &memRecurringStore{templates: map[int]*model.RecurringTask{}, nextID: 1}
}

func (m *memRecurringStore) Insert(_ context.Context, t *model.RecurringTask) (*model.RecurringTask, error) {
	c := *t
	c.ID = m.nextID
	m.nextID++
	m.templates[c.ID] = &c
	out := c
	return &out, nil
}

func (m *memRecurringStore) Get(_ context.Context, id int) (*model.RecurringTask, error) {
	t, ok := m.templates[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *t
	return &out, nil
}

func (m *memRecurringStore) List(_ context.Context) ([]model.RecurringTask, error) {
	out := []model.RecurringTask{}
	for _, t := range m.templates {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRecurringStore) ListActive(ctx context.Context) ([]model.RecurringTask, error) {
	all, _ := m.List(ctx)
	out := []model.RecurringTask{}
	for _, t := range all {
		if t.Active {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memRecurringStore) Update(_ context.Context, id int, patch model.RecurringPatch) (*model.RecurringTask, error) {
	t, ok := m.templates[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.Schedule != nil {
		t.Schedule = *patch.Schedule
	}
	if patch.DayOfWeek != nil {
		t.DayOfWeek = patch.DayOfWeek
	}
	if patch.DayOfMonth != nil {
		t.DayOfMonth = patch.DayOfMonth
	}
	if patch.Active != nil {
		t.Active = *patch.Active
	}
	out := *t
	return &out, nil
}

func (m *memRecurringStore) Delete(_ context.Context, id int) error {
	if _, ok := m.templates[id]; !ok {
		return ErrNotFound
	}
	delete(m.templates, id)
	return nil
}

func (m *memRecurringStore) ClaimToday(_ context.Context, id int, now time.Time) (bool, error) {
	t, ok := m.templates[id]
	if !ok {
		return false, ErrNotFound
	}
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if t.LastGenerated != nil && !t.LastGenerated.Before(startOfDay) {
		return false, nil
	}
	claimed := now
	t.LastGenerated = &claimed
	return true, nil
}

// memGoalStore is an in-memory GoalStore.
type memGoalStore struct {
	goals      map[int]*model.Goal
	keyResults map[int]*model.KeyResult
	nextGoal   int
	nextKR     int
}

func newMemGoalStore() *memGoalStore {
	return &memGoalStore{
		goals:      map[int]*model.Goal{},
		keyResults: map[int]*model.KeyResult{},
		nextGoal:   1,
		nextKR:     1,
	}
}

func (m *memGoalStore) Insert(_ context.Context, g *model.Goal) (*model.Goal, error) {
	c := *g
	c.ID = m.nextGoal
	m.nextGoal++
	m.goals[c.ID] = &c
	out := c
	return &out, nil
}

func (m *memGoalStore) Get(_ context.Context, id int) (*model.Goal, error) {
	g, ok := m.goals[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *g
	out.KeyResults = nil
	return &out, nil
}

func (m *memGoalStore) List(_ context.Context) ([]model.Goal, error) {
	out := []model.Goal{}
	for _, g := range m.goals {
		c := *g
		c.KeyResults = nil
		out = append(out, c)
	}
	return out, nil
}

func (m *memGoalStore) Update(_ context.Context, id int, patch model.GoalPatch) (*model.Goal, error) {
	g, ok := m.goals[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.Title != nil {
		g.Title = *patch.Title
	}
	if patch.Description != nil {
		g.Description = *patch.Description
	}
	if patch.TargetDate != nil {
		g.TargetDate = patch.TargetDate
	}
	if patch.Status != nil {
		g.Status = *patch.Status
	}
	if patch.Progress != nil {
		g.Progress = *patch.Progress
	}
	if patch.Category != nil {
		g.Category = *patch.Category
	}
	out := *g
	return &out, nil
}

func (m *memGoalStore) Delete(_ context.Context, id int) error {
	if _, ok := m.goals[id]; !ok {
		return ErrNotFound
	}
	delete(m.goals, id)
	return nil
}

func (m *memGoalStore) ListKeyResults(_ context.Context, goalID int) ([]model.KeyResult, error) {
	out := []model.KeyResult{}
	for _, kr := range m.keyResults {
		if kr.GoalID == goalID {
			out = append(out, *kr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memGoalStore) InsertKeyResult(_ context.Context, kr *model.KeyResult) (*model.KeyResult, error) {
	c := *kr
	c.ID = m.nextKR
	m.nextKR++
	m.keyResults[c.ID] = &c
	out := c
	return &out, nil
}

func (m *memGoalStore) UpdateKeyResult(_ context.Context, id int, patch model.KeyResultPatch) (*model.KeyResult, error) {
	kr, ok := m.keyResults[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.Title != nil {
		kr.Title = *patch.Title
	}
	if patch.Target != nil {
		kr.Target = *patch.Target
	}
	if patch.Current != nil {
		kr.Current = *patch.Current
	}
	if patch.Unit != nil {
		kr.Unit = *patch.Unit
	}
	out := *kr
	return &out, nil
}

func (m *memGoalStore) UpdateProgress(_ context.Context, goalID, progress int) error {
	g, ok := m.goals[goalID]
	if !ok {
		return ErrNotFound
	}
	g.Progress = progress
	return nil
}

// recordingActivity captures feed messages for assertions.
type recordingActivity struct {
	messages []string
}

func (r *recordingActivity) Record(_ context.Context, _ string, _ int, message string) {
	r.messages = append(r.messages, message)
}
