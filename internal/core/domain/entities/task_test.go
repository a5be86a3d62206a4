package entities

import (
	"errors"
	"strings"
	"testing"
	"time"

	"puzzle-rewards/internal/core/domain/exceptions"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() TaskInput {
	return TaskInput{
		Title:             "Pizza Puzzle",
		Description:       "Assemble the pizza",
		Type:              TaskTypeImagePuzzle,
		Difficulty:        DifficultyEasy,
		RewardType:        RewardTypeDiscount,
		RewardValue:       decimal.RequireFromString("20.00"),
		RewardDescription: "20% off any large pizza",
	}
}

func TestTaskInputValidate(t *testing.T) {
	maxReward := decimal.NewFromInt(1000)
	tests := []struct {
		name  string
		edit  func(in *TaskInput)
		field string
	}{
		{"valid", func(in *TaskInput) {}, ""},
		{"title too short", func(in *TaskInput) { in.Title = "ab" }, "title"},
		{"title too long", func(in *TaskInput) { in.Title = strings.Repeat("a", 101) }, "title"},
		{"description too long", func(in *TaskInput) { in.Description = strings.Repeat("d", 1001) }, "description"},
		{"bad type", func(in *TaskInput) { in.Type = "quiz" }, "task_type"},
		{"bad difficulty", func(in *TaskInput) { in.Difficulty = "insane" }, "difficulty"},
		{"bad reward type", func(in *TaskInput) { in.RewardType = "gift" }, "reward_type"},
		{"zero reward", func(in *TaskInput) { in.RewardValue = decimal.Zero }, "reward_value"},
		{"reward above max", func(in *TaskInput) { in.RewardValue = decimal.NewFromInt(1001) }, "reward_value"},
		{"reward description short", func(in *TaskInput) { in.RewardDescription = "short" }, "reward_description"},
		{"reward description long", func(in *TaskInput) { in.RewardDescription = strings.Repeat("r", 256) }, "reward_description"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.edit(&in)
			err := in.Validate(maxReward)
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			var e *exceptions.Error
			require.True(t, errors.As(err, &e))
			assert.Equal(t, exceptions.KindValidation, e.Kind)
			assert.Equal(t, tt.field, e.Field)
		})
	}
}

func TestTaskPublishStateMachine(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	task := NewTask("t1", "c1", validInput(), now)
	require.Equal(t, TaskStatusDraft, task.Status)

	err := task.Publish(now)
	assert.ErrorIs(t, err, exceptions.ErrValidation, "publishing without an image")

	task.ImageURL = "file:///tmp/t1.jpg"
	task.Puzzle = NewPuzzleConfig(9, nil, []int{0}, DifficultyEasy, "k", now, now, []int{0})
	require.NoError(t, task.Publish(now))
	assert.Equal(t, TaskStatusActive, task.Status)

	err = task.Publish(now)
	assert.ErrorIs(t, err, exceptions.ErrForbidden)
	assert.ErrorIs(t, task.CanEdit(), exceptions.ErrForbidden)
}

func TestTaskFeature(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	task := NewTask("t1", "c1", validInput(), now)

	assert.ErrorIs(t, task.Feature(now, 7), exceptions.ErrForbidden)

	task.Status = TaskStatusActive
	assert.ErrorIs(t, task.Feature(now, 0), exceptions.ErrValidation)
	assert.ErrorIs(t, task.Feature(now, 31), exceptions.ErrValidation)

	require.NoError(t, task.Feature(now, 7))
	require.NotNil(t, task.FeaturedUntil)
	assert.Equal(t, now.AddDate(0, 0, 7), *task.FeaturedUntil)
	assert.True(t, task.FeaturedAt(now))
	assert.False(t, task.FeaturedAt(now.AddDate(0, 0, 8)))
}

func TestTaskExpiryIsDerivedAtRead(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	expires := now.Add(time.Hour)
	in := validInput()
	in.ExpiresAt = &expires
	task := NewTask("t1", "c1", in, now)
	task.Status = TaskStatusActive
	task.Puzzle = NewPuzzleConfig(9, nil, nil, DifficultyEasy, "", now, now, nil)

	assert.Equal(t, TaskStatusActive, task.EffectiveStatus(now))
	assert.NoError(t, task.CanAttempt(now))

	later := now.Add(2 * time.Hour)
	assert.Equal(t, TaskStatusExpired, task.EffectiveStatus(later))
	assert.Equal(t, TaskStatusActive, task.Status)
	assert.ErrorIs(t, task.CanAttempt(later), exceptions.ErrGone)

	task.Status = TaskStatusDraft
	assert.ErrorIs(t, task.CanAttempt(now), exceptions.ErrNotFound)
}

func TestTaskPatchApply(t *testing.T) {
	in := validInput()
	title := "Burger Puzzle"
	out := TaskPatch{Title: &title}.Apply(in)
	assert.Equal(t, "Burger Puzzle", out.Title)
	assert.Equal(t, in.RewardDescription, out.RewardDescription)
	assert.True(t, TaskPatch{}.Empty())
}

func TestTaskFilterNormalize(t *testing.T) {
	f := TaskFilter{SortBy: "id; DROP TABLE tasks", Limit: 1000, Difficulty: "weird"}.Normalize()
	assert.Equal(t, TaskStatusActive, f.Status)
	assert.Equal(t, SortCreatedAt, f.SortBy)
	assert.True(t, f.Descending)
	assert.Equal(t, MaxPageLimit, f.Limit)
	assert.Equal(t, 1, f.Page)
	assert.Empty(t, f.Difficulty)

	f = TaskFilter{Status: TaskStatusDraft}.Normalize()
	assert.Equal(t, TaskStatusActive, f.Status)
	f = TaskFilter{Status: TaskStatusBlocked, CompanyID: "  "}.Normalize()
	assert.Equal(t, TaskStatusActive, f.Status)
	f = TaskFilter{Status: TaskStatusDraft, CompanyID: "c1"}.Normalize()
	assert.Equal(t, TaskStatusDraft, f.Status)
	f = TaskFilter{Status: TaskStatusExpired}.Normalize()
	assert.Equal(t, TaskStatusExpired, f.Status)

	f = TaskFilter{SortBy: SortRewardValue, Page: 3, Limit: 10}.Normalize()
	assert.Equal(t, SortRewardValue, f.SortBy)
	assert.Equal(t, 20, f.Offset())
}
