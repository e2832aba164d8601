package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"secondbrain/internal/model"
	"secondbrain/internal/proof"
)

const testDomain = "myapp.example.com"

var (
	validWhatChanged = "Added the weekly report export button and wired it up to the backend endpoint."
	validWhatItDoes  = "Lets the user export the weekly report as CSV from the dashboard. Clicking the button fetches the current week's data and downloads it as a file named report.csv."
	validHowToUse    = "1. Navigate to https://" + testDomain + "/reports 2. Click the Export button in the top right corner 3. The CSV file downloads automatically to your machine."
	validTests       = "curl https://" + testDomain + "/api/reports/export -> HTTP 200, expected a CSV with 7 rows, actual CSV had 7 rows, PASS. " +
		"Also verified the empty-week case: curl https://" + testDomain + "/api/reports/export?week=0 -> HTTP 200, expected header-only CSV, actual header-only CSV, PASS."
	validScreenshot = "https://imgur.com/a/report-export.png"
)

func validProofPatch() model.TaskPatch {
	done := model.StatusDone
	return model.TaskPatch{
		Status:           &done,
		ProofWhatChanged: &validWhatChanged,
		ProofWhatItDoes:  &validWhatItDoes,
		ProofHowToUse:    &validHowToUse,
		ProofTests:       &validTests,
		ProofScreenshot:  &validScreenshot,
	}
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func newTaskServiceForTest() (*TaskService, *memStore, *recordingActivity) {
	store := newMemStore()
	activity := &recordingActivity{}
	svc := NewTaskService(store, memSubtasks{store}, activity, proof.DefaultPolicy(testDomain), zap.NewNop())
	return svc, store, activity
}

func TestCreateTask_Defaults(t *testing.T) {
	svc, _, activity := newTaskServiceForTest()

	task, err := svc.CreateTask(context.Background(), &model.Task{Title: "Write report"})
	require.NoError(t, err)

	assert.Equal(t, model.StatusBacklog, task.Status)
	assert.Equal(t, model.PriorityMedium, task.Priority)
	assert.Len(t, activity.messages, 1)
	assert.Contains(t, activity.messages[0], "Write report")
}

func TestCreateTask_RejectsInvalidStatus(t *testing.T) {
	svc, _, _ := newTaskServiceForTest()

	_, err := svc.CreateTask(context.Background(), &model.Task{Title: "x", Status: "archived"})
	assert.Error(t, err)
}

func TestUpdateTask_DoneRejectedWithoutProof(t *testing.T) {
	svc, _, _ := newTaskServiceForTest()
	task, err := svc.CreateTask(context.Background(), &model.Task{Title: "Ship feature"})
	require.NoError(t, err)

	done := model.StatusDone
	_, err = svc.UpdateTask(context.Background(), task.ID, model.TaskPatch{Status: &done})

	var pr *ProofRejection
	require.ErrorAs(t, err, &pr)
	assert.Len(t, pr.Failures, 5)

	// nothing persisted
	got, err := svc.GetTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusBacklog, got.Status)
}

func TestUpdateTask_DoneAcceptedWithFullProof(t *testing.T) {
	svc, _, _ := newTaskServiceForTest()
	task, err := svc.CreateTask(context.Background(), &model.Task{Title: "Ship feature"})
	require.NoError(t, err)

	updated, err := svc.UpdateTask(context.Background(), task.ID, validProofPatch())
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, updated.Status)
}

func TestUpdateTask_ProofMergesPersistedAndPatch(t *testing.T) {
	svc, _, _ := newTaskServiceForTest()
	task, err := svc.CreateTask(context.Background(), &model.Task{
		Title:            "Ship feature",
		ProofWhatChanged: validWhatChanged,
		ProofWhatItDoes:  validWhatItDoes,
		ProofHowToUse:    validHowToUse,
	})
	require.NoError(t, err)

	// only the two missing fields arrive in the patch
	done := model.StatusDone
	_, err = svc.UpdateTask(context.Background(), task.ID, model.TaskPatch{
		Status:          &done,
		ProofTests:      &validTests,
		ProofScreenshot: &validScreenshot,
	})
	require.NoError(t, err)
}

func TestUpdateTask_PatchOverridesPersistedProof(t *testing.T) {
	svc, _, _ := newTaskServiceForTest()
	task, err := svc.CreateTask(context.Background(), &model.Task{
		Title:      "Ship feature",
		ProofTests: validTests,
	})
	require.NoError(t, err)

	// patch degrades a previously valid field; the gate must see the
	// patched value, not the stored one
	patch := validProofPatch()
	patch.ProofTests = strPtr("it works")
	_, err = svc.UpdateTask(context.Background(), task.ID, patch)

	var pr *ProofRejection
	require.ErrorAs(t, err, &pr)
	require.Len(t, pr.Failures, 1)
	assert.Equal(t, proof.FieldTests, pr.Failures[0].Field)
}

func TestUpdateTask_WhitespaceCannotPassLengthRule(t *testing.T) {
	svc, _, _ := newTaskServiceForTest()
	task, err := svc.CreateTask(context.Background(), &model.Task{Title: "Ship feature"})
	require.NoError(t, err)

	patch := validProofPatch()
	patch.ProofWhatChanged = strPtr(strings.Repeat(" ", 80))
	_, err = svc.UpdateTask(context.Background(), task.ID, patch)

	var pr *ProofRejection
	require.ErrorAs(t, err, &pr)
	require.Len(t, pr.Failures, 1)
	assert.Equal(t, proof.FieldWhatChanged, pr.Failures[0].Field)
	assert.Contains(t, pr.Failures[0].Reason, "missing")
}

func TestUpdateTask_SubtaskGateBeforeProofGate(t *testing.T) {
	svc, _, _ := newTaskServiceForTest()
	task, err := svc.CreateTask(context.Background(), &model.Task{Title: "Ship feature"})
	require.NoError(t, err)

	_, err = svc.AddSubtask(context.Background(), task.ID, "write docs", false, nil)
	require.NoError(t, err)
	_, err = svc.AddSubtask(context.Background(), task.ID, "write tests", true, nil)
	require.NoError(t, err)

	// full proof attached, but an open subtask blocks first
	_, err = svc.UpdateTask(context.Background(), task.ID, validProofPatch())

	var sr *SubtaskRejection
	require.ErrorAs(t, err, &sr)
	assert.Equal(t, []string{"write docs"}, sr.Incomplete)
	assert.Equal(t, 1, sr.Done)
	assert.Equal(t, 2, sr.Total)
}

func TestUpdateTask_AllSubtasksDonePassesToProofGate(t *testing.T) {
	svc, _, _ := newTaskServiceForTest()
	task, err := svc.CreateTask(context.Background(), &model.Task{Title: "Ship feature"})
	require.NoError(t, err)

	st, err := svc.AddSubtask(context.Background(), task.ID, "write docs", false, nil)
	require.NoError(t, err)
	_, err = svc.UpdateSubtask(context.Background(), task.ID, st.ID, model.SubtaskPatch{Done: boolPtr(true)})
	require.NoError(t, err)

	updated, err := svc.UpdateTask(context.Background(), task.ID, validProofPatch())
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, updated.Status)
}

func TestUpdateTask_NoSubtasksIsVacuousPass(t *testing.T) {
	svc, _, _ := newTaskServiceForTest()
	task, err := svc.CreateTask(context.Background(), &model.Task{Title: "Ship feature"})
	require.NoError(t, err)

	_, err = svc.UpdateTask(context.Background(), task.ID, validProofPatch())
	assert.NoError(t, err)
}

func TestUpdateTask_NonDoneEditSkipsGates(t *testing.T) {
	svc, _, _ := newTaskServiceForTest()
	task, err := svc.CreateTask(context.Background(), &model.Task{Title: "Ship feature"})
	require.NoError(t, err)

	inProgress := model.StatusInProgress
	updated, err := svc.UpdateTask(context.Background(), task.ID, model.TaskPatch{
		Status: &inProgress,
		Title:  strPtr("Ship the feature"),
	})
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, updated.Status)
	assert.Equal(t, "Ship the feature", updated.Title)
}

func TestUpdateTask_ReopeningDoneTaskBypassesGates(t *testing.T) {
	svc, _, _ := newTaskServiceForTest()
	task, err := svc.CreateTask(context.Background(), &model.Task{Title: "Ship feature"})
	require.NoError(t, err)
	_, err = svc.UpdateTask(context.Background(), task.ID, validProofPatch())
	require.NoError(t, err)

	backlog := model.StatusBacklog
	updated, err := svc.UpdateTask(context.Background(), task.ID, model.TaskPatch{Status: &backlog})
	require.NoError(t, err)
	assert.Equal(t, model.StatusBacklog, updated.Status)
}

func TestUpdateTask_EditingDoneTaskReRunsGate(t *testing.T) {
	svc, _, _ := newTaskServiceForTest()
	task, err := svc.CreateTask(context.Background(), &model.Task{Title: "Ship feature"})
	require.NoError(t, err)
	_, err = svc.UpdateTask(context.Background(), task.ID, validProofPatch())
	require.NoError(t, err)

	// blanking a proof field on a done task is rejected
	_, err = svc.UpdateTask(context.Background(), task.ID, model.TaskPatch{
		ProofTests: strPtr(""),
	})
	var pr *ProofRejection
	assert.ErrorAs(t, err, &pr)
}

func TestUpdateTask_NotFound(t *testing.T) {
	svc, _, _ := newTaskServiceForTest()
	_, err := svc.UpdateTask(context.Background(), 999, model.TaskPatch{Title: strPtr("x")})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestAddSubtask_AppendsAtEnd(t *testing.T) {
	svc, _, _ := newTaskServiceForTest()
	task, err := svc.CreateTask(context.Background(), &model.Task{Title: "t"})
	require.NoError(t, err)

	first, err := svc.AddSubtask(context.Background(), task.ID, "one", false, nil)
	require.NoError(t, err)
	second, err := svc.AddSubtask(context.Background(), task.ID, "two", false, nil)
	require.NoError(t, err)

	assert.Equal(t, 0, first.SortOrder)
	assert.Equal(t, 1, second.SortOrder)
}

func TestCompletionRatio(t *testing.T) {
	svc, _, _ := newTaskServiceForTest()
	task, err := svc.CreateTask(context.Background(), &model.Task{Title: "t"})
	require.NoError(t, err)

	ratio, err := svc.CompletionRatio(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, ratio)

	_, err = svc.AddSubtask(context.Background(), task.ID, "one", true, nil)
	require.NoError(t, err)
	_, err = svc.AddSubtask(context.Background(), task.ID, "two", false, nil)
	require.NoError(t, err)

	ratio, err = svc.CompletionRatio(context.Background(), task.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, ratio, 1e-9)
}

func TestDeleteTask_RemovesSubtasks(t *testing.T) {
	svc, store, _ := newTaskServiceForTest()
	task, err := svc.CreateTask(context.Background(), &model.Task{Title: "t"})
	require.NoError(t, err)
	_, err = svc.AddSubtask(context.Background(), task.ID, "one", false, nil)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTask(context.Background(), task.ID))

	_, err = svc.GetTask(context.Background(), task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, store.subtasks)
}
