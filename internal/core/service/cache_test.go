package service

import (
	"context"
	"testing"

	"puzzle-rewards/internal/core/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewCacheDropsViewWrittenAcrossInvalidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := e.activeTask(t, "Pizza Puzzle", nil)

	// A reader takes the generation and loads the task, then a mutation
	// commits and invalidates before the reader stores its copy.
	gen, ok := e.tasks.cache.generation(ctx, id)
	require.True(t, ok)
	stale, err := e.tasks.GetTask(ctx, id)
	require.NoError(t, err)

	_, err = e.attempts.SubmitAttempt(ctx, id, "user-1", entities.AttemptSubmission{Order: e.solution(t, id), ElapsedMs: 10_000})
	require.NoError(t, err)
	e.tasks.cache.set(ctx, stale, gen)
	require.True(t, e.cache.has(taskCacheKey(id)))

	current, ok := e.tasks.cache.generation(ctx, id)
	require.True(t, ok)
	assert.NotEqual(t, gen, current)

	view, err := e.tasks.GetTask(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, view.AttemptCount)
	assert.Equal(t, 0, stale.AttemptCount)
}

func TestViewCacheServesMatchingGeneration(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := e.activeTask(t, "Pizza Puzzle", nil)

	first, err := e.tasks.GetTask(ctx, id)
	require.NoError(t, err)

	gen, ok := e.tasks.cache.generation(ctx, id)
	require.True(t, ok)
	cached, hit := e.tasks.cache.get(ctx, id, gen, e.clock.Now())
	require.True(t, hit)
	assert.Equal(t, first.ID, cached.ID)
}
