package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"puzzle-rewards/internal/core/domain/entities"
	"puzzle-rewards/internal/core/domain/exceptions"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndPublishPizzaPuzzle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	view, err := e.tasks.CreateTask(ctx, companyID, validInput("Pizza Puzzle"), testImage(t))
	require.NoError(t, err)
	assert.Equal(t, entities.TaskStatusDraft, view.Status)
	require.NotNil(t, view.Puzzle)
	assert.Equal(t, 9, view.Puzzle.GridSize)
	assert.Equal(t, 3, view.Puzzle.Side)
	assert.Len(t, view.Puzzle.Pieces, 9)
	assert.NotEmpty(t, view.ImageURL)
	assert.Equal(t, 1, e.storage.count())

	published, err := e.tasks.PublishTask(ctx, view.ID, companyID)
	require.NoError(t, err)
	assert.Equal(t, entities.TaskStatusActive, published.Status)

	_, err = e.tasks.PublishTask(ctx, view.ID, companyID)
	assert.ErrorIs(t, err, exceptions.ErrForbidden)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	cases := map[string]struct {
		mutate func(*entities.TaskInput)
		field  string
	}{
		"short title":        {func(in *entities.TaskInput) { in.Title = "ab" }, "title"},
		"bad type":           {func(in *entities.TaskInput) { in.Type = "crossword" }, "task_type"},
		"zero reward":        {func(in *entities.TaskInput) { in.RewardValue = decimal.Zero }, "reward_value"},
		"reward over max":    {func(in *entities.TaskInput) { in.RewardValue = decimal.NewFromInt(10001) }, "reward_value"},
		"short description":  {func(in *entities.TaskInput) { in.RewardDescription = "free" }, "reward_description"},
		"unknown difficulty": {func(in *entities.TaskInput) { in.Difficulty = "nightmare" }, "difficulty"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput("Valid title")
			tc.mutate(&in)
			_, err := e.tasks.CreateTask(ctx, companyID, in, nil)
			require.ErrorIs(t, err, exceptions.ErrValidation)
			var xerr *exceptions.Error
			require.True(t, errors.As(err, &xerr))
			assert.Equal(t, tc.field, xerr.Field)
		})
	}
}

func TestCreateDuplicateTitleIsConflict(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.tasks.CreateTask(ctx, companyID, validInput("Pizza Puzzle"), nil)
	require.NoError(t, err)
	_, err = e.tasks.CreateTask(ctx, companyID, validInput("pizza puzzle"), nil)
	assert.ErrorIs(t, err, exceptions.ErrConflict)

	_, err = e.tasks.CreateTask(ctx, otherCo, validInput("pizza puzzle"), nil)
	assert.NoError(t, err)
}

func TestCreateUnknownCompany(t *testing.T) {
	e := newEnv(t)
	_, err := e.tasks.CreateTask(context.Background(), "ghost", validInput("Pizza Puzzle"), nil)
	assert.ErrorIs(t, err, exceptions.ErrNotFound)
}

func TestCreateStorageFailureCreatesNothing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.storage.putErr = errors.New("bucket offline")

	_, err := e.tasks.CreateTask(ctx, companyID, validInput("Pizza Puzzle"), testImage(t))
	require.Error(t, err)

	tasks, total, err := e.store.Repositories().Tasks.List(ctx, entities.TaskFilter{Status: entities.TaskStatusDraft, CompanyID: companyID}, e.clock.Now())
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, tasks)
}

func TestCreateInsertFailureRemovesArtifacts(t *testing.T) {
	e := newEnv(t)
	gen := e.tasks.generator
	svc := e.newTaskService(t, gen, failingUoW{})

	_, err := svc.CreateTask(context.Background(), companyID, validInput("Pizza Puzzle"), testImage(t))
	require.Error(t, err)
	assert.Zero(t, e.storage.count())
	assert.Len(t, e.storage.deleted, 1)
}

func TestPublishRequiresImage(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	view, err := e.tasks.CreateTask(ctx, companyID, validInput("No image yet"), nil)
	require.NoError(t, err)
	_, err = e.tasks.PublishTask(ctx, view.ID, companyID)
	assert.ErrorIs(t, err, exceptions.ErrValidation)

	_, err = e.tasks.AttachImage(ctx, view.ID, companyID, *testImage(t))
	require.NoError(t, err)
	published, err := e.tasks.PublishTask(ctx, view.ID, companyID)
	require.NoError(t, err)
	assert.Equal(t, entities.TaskStatusActive, published.Status)

	_, err = e.tasks.AttachImage(ctx, view.ID, companyID, *testImage(t))
	assert.ErrorIs(t, err, exceptions.ErrForbidden)
}

func TestAttachImageReplacesOldArtifacts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	view, err := e.tasks.CreateTask(ctx, companyID, validInput("Pizza Puzzle"), testImage(t))
	require.NoError(t, err)
	oldURL := view.ImageURL

	updated, err := e.tasks.AttachImage(ctx, view.ID, companyID, *testImage(t))
	require.NoError(t, err)
	assert.NotEqual(t, oldURL, updated.ImageURL)
	assert.Equal(t, 1, e.storage.count())
}

func TestPublishOtherCompanyIsNotFound(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	view, err := e.tasks.CreateTask(ctx, companyID, validInput("Pizza Puzzle"), testImage(t))
	require.NoError(t, err)
	_, err = e.tasks.PublishTask(ctx, view.ID, otherCo)
	assert.ErrorIs(t, err, exceptions.ErrNotFound)
}

func TestUpdateTask(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	view, err := e.tasks.CreateTask(ctx, companyID, validInput("Pizza Puzzle"), testImage(t))
	require.NoError(t, err)

	title := "Pasta Puzzle"
	updated, err := e.tasks.UpdateTask(ctx, view.ID, companyID, entities.TaskPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Pasta Puzzle", updated.Title)
	assert.NotNil(t, updated.Puzzle)

	_, err = e.tasks.UpdateTask(ctx, view.ID, companyID, entities.TaskPatch{})
	assert.ErrorIs(t, err, exceptions.ErrValidation)

	empty := ""
	_, err = e.tasks.UpdateTask(ctx, view.ID, companyID, entities.TaskPatch{Title: &empty})
	assert.ErrorIs(t, err, exceptions.ErrValidation)

	_, err = e.tasks.UpdateTask(ctx, view.ID, otherCo, entities.TaskPatch{Title: &title})
	assert.ErrorIs(t, err, exceptions.ErrNotFound)

	hard := entities.DifficultyHard
	updated, err = e.tasks.UpdateTask(ctx, view.ID, companyID, entities.TaskPatch{Difficulty: &hard})
	require.NoError(t, err)
	assert.Nil(t, updated.Puzzle)
	assert.Empty(t, updated.ImageURL)
	assert.Zero(t, e.storage.count())

	_, err = e.tasks.AttachImage(ctx, view.ID, companyID, *testImage(t))
	require.NoError(t, err)
	_, err = e.tasks.PublishTask(ctx, view.ID, companyID)
	require.NoError(t, err)

	_, err = e.tasks.UpdateTask(ctx, view.ID, companyID, entities.TaskPatch{Title: &title})
	assert.ErrorIs(t, err, exceptions.ErrForbidden)
}

func TestFeatureTaskForSevenDays(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := e.activeTask(t, "Pizza Puzzle", nil)

	res, err := e.tasks.FeatureTask(ctx, id, companyID, 7)
	require.NoError(t, err)
	assert.True(t, res.Cost.Equal(decimal.NewFromInt(693)), "cost %s", res.Cost)
	require.NotNil(t, res.Task.FeaturedUntil)
	assert.True(t, e.clock.Now().AddDate(0, 0, 7).Equal(*res.Task.FeaturedUntil))
	assert.True(t, res.Task.IsFeatured)

	_, err = e.tasks.FeatureTask(ctx, id, companyID, 0)
	assert.ErrorIs(t, err, exceptions.ErrValidation)
	_, err = e.tasks.FeatureTask(ctx, id, companyID, 31)
	assert.ErrorIs(t, err, exceptions.ErrValidation)

	page, err := e.tasks.ListTasks(ctx, entities.TaskFilter{FeaturedOnly: true})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)

	e.clock.Advance(8 * 24 * time.Hour)
	page, err = e.tasks.ListTasks(ctx, entities.TaskFilter{FeaturedOnly: true})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestFeatureDraftIsForbidden(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	view, err := e.tasks.CreateTask(ctx, companyID, validInput("Pizza Puzzle"), testImage(t))
	require.NoError(t, err)

	_, err = e.tasks.FeatureTask(ctx, view.ID, companyID, 7)
	assert.ErrorIs(t, err, exceptions.ErrForbidden)
}

func TestGetTaskHidesSolutionAndDrafts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	draft, err := e.tasks.CreateTask(ctx, companyID, validInput("Draft only"), testImage(t))
	require.NoError(t, err)
	_, err = e.tasks.GetTask(ctx, draft.ID)
	assert.ErrorIs(t, err, exceptions.ErrNotFound)

	id := e.activeTask(t, "Pizza Puzzle", nil)
	view, err := e.tasks.GetTask(ctx, id)
	require.NoError(t, err)
	assert.True(t, e.cache.has(taskCacheKey(id)))

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "solution")

	cached, err := e.tasks.GetTask(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, view.ID, cached.ID)
	assert.Equal(t, view.Puzzle.ShuffledOrder, cached.Puzzle.ShuffledOrder)
}

func TestCachedViewTurnsExpired(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	expires := e.clock.Now().Add(time.Hour)
	id := e.activeTask(t, "Short lived", func(in *entities.TaskInput) { in.ExpiresAt = &expires })

	view, err := e.tasks.GetTask(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entities.TaskStatusActive, view.Status)

	e.clock.Advance(2 * time.Hour)
	view, err = e.tasks.GetTask(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entities.TaskStatusExpired, view.Status)
}

func TestMutationsInvalidateCache(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := e.activeTask(t, "Pizza Puzzle", nil)

	_, err := e.tasks.GetTask(ctx, id)
	require.NoError(t, err)
	require.True(t, e.cache.has(taskCacheKey(id)))

	res, err := e.tasks.FeatureTask(ctx, id, companyID, 3)
	require.NoError(t, err)
	assert.False(t, e.cache.has(taskCacheKey(id)))

	view, err := e.tasks.GetTask(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, view.FeaturedUntil)
	assert.True(t, res.Task.FeaturedUntil.Equal(*view.FeaturedUntil))
}

func TestDeleteTaskCascades(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := e.activeTask(t, "Pizza Puzzle", nil)

	res, err := e.attempts.SubmitAttempt(ctx, id, "user-1", entities.AttemptSubmission{Order: e.solution(t, id), ElapsedMs: 30_000})
	require.NoError(t, err)
	require.NotNil(t, res.Reward)
	_, err = e.attempts.SubmitAttempt(ctx, id, "user-2", entities.AttemptSubmission{Order: reversed(e.solution(t, id)), ElapsedMs: 30_000})
	require.NoError(t, err)

	assert.ErrorIs(t, e.tasks.DeleteTask(ctx, id, otherCo), exceptions.ErrNotFound)
	require.NoError(t, e.tasks.DeleteTask(ctx, id, companyID))

	repos := e.store.Repositories()
	_, err = repos.Tasks.GetByID(ctx, id)
	assert.ErrorIs(t, err, exceptions.ErrNotFound)
	exists, err := repos.Attempts.Exists(ctx, id, "user-1")
	require.NoError(t, err)
	assert.False(t, exists)
	rewards, err := repos.Rewards.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, rewards)
	assert.Zero(t, e.storage.count())
}

func TestListTasksDefaultsToActive(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.activeTask(t, "First active", nil)
	e.activeTask(t, "Second active", func(in *entities.TaskInput) { in.Difficulty = entities.DifficultyMedium })
	_, err := e.tasks.CreateTask(ctx, companyID, validInput("Still a draft"), nil)
	require.NoError(t, err)

	page, err := e.tasks.ListTasks(ctx, entities.TaskFilter{SortBy: "DROP TABLE tasks", Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, entities.MaxPageLimit, page.Limit)
	for _, v := range page.Tasks {
		assert.Equal(t, entities.TaskStatusActive, v.Status)
	}

	page, err = e.tasks.ListTasks(ctx, entities.TaskFilter{Difficulty: entities.DifficultyMedium, City: "almaty"})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "Second active", page.Tasks[0].Title)
	assert.Equal(t, 16, page.Tasks[0].Puzzle.GridSize)

	page, err = e.tasks.ListTasks(ctx, entities.TaskFilter{Status: entities.TaskStatusDraft})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	for _, v := range page.Tasks {
		assert.Equal(t, entities.TaskStatusActive, v.Status)
	}

	page, err = e.tasks.ListTasks(ctx, entities.TaskFilter{Status: entities.TaskStatusDraft, CompanyID: companyID})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "Still a draft", page.Tasks[0].Title)
}

func reversed(in []int) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}
