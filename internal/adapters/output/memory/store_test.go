package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"puzzle-rewards/internal/core/domain/entities"
	"puzzle-rewards/internal/core/domain/exceptions"
	"puzzle-rewards/internal/core/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func newTask(id, companyID, title string, status entities.TaskStatus, created time.Time) *entities.Task {
	return &entities.Task{
		ID:                id,
		CompanyID:         companyID,
		Title:             title,
		Type:              entities.TaskTypeImagePuzzle,
		Difficulty:        entities.DifficultyEasy,
		RewardType:        entities.RewardTypeCoupon,
		RewardValue:       decimal.NewFromInt(10),
		RewardDescription: "ten percent off",
		Status:            status,
		CreatedAt:         created,
		UpdatedAt:         created,
	}
}

func TestUnitOfWorkCommitAndRollback(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	uow := NewUnitOfWorkManager(store)

	err := uow.Do(ctx, func(u ports.UnitOfWork) error {
		return u.Repositories().Tasks.Create(ctx, newTask("t1", "c1", "First", entities.TaskStatusDraft, epoch))
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = uow.Do(ctx, func(u ports.UnitOfWork) error {
		repos := u.Repositories()
		require.NoError(t, repos.Tasks.Create(ctx, newTask("t2", "c1", "Second", entities.TaskStatusDraft, epoch)))
		require.NoError(t, repos.Tasks.IncrementCounters(ctx, "t1", true))
		return boom
	})
	require.ErrorIs(t, err, boom)

	repos := store.Repositories()
	_, err = repos.Tasks.GetByID(ctx, "t2")
	assert.ErrorIs(t, err, exceptions.ErrNotFound)
	t1, err := repos.Tasks.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Zero(t, t1.AttemptCount)
}

func TestUnitOfWorkRollsBackOnPanic(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	uow := NewUnitOfWorkManager(store)

	assert.Panics(t, func() {
		_ = uow.Do(ctx, func(u ports.UnitOfWork) error {
			_ = u.Repositories().Tasks.Create(ctx, newTask("t1", "c1", "First", entities.TaskStatusDraft, epoch))
			panic("bad")
		})
	})

	_, err := store.Repositories().Tasks.GetByID(ctx, "t1")
	assert.ErrorIs(t, err, exceptions.ErrNotFound)

	// The store must be usable again after the panic.
	require.NoError(t, uow.Do(ctx, func(u ports.UnitOfWork) error { return nil }))
}

func TestTitleUniquePerCompany(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repositories()

	require.NoError(t, repos.Tasks.Create(ctx, newTask("t1", "c1", "Find the cat", entities.TaskStatusDraft, epoch)))
	err := repos.Tasks.Create(ctx, newTask("t2", "c1", "FIND THE CAT", entities.TaskStatusDraft, epoch))
	assert.ErrorIs(t, err, exceptions.ErrConflict)
	assert.NoError(t, repos.Tasks.Create(ctx, newTask("t3", "c2", "Find the cat", entities.TaskStatusDraft, epoch)))

	exists, err := repos.Tasks.ExistsTitle(ctx, "c1", "find the cat", "t1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTransitionStatusIsConditional(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repositories()
	require.NoError(t, repos.Tasks.Create(ctx, newTask("t1", "c1", "Draft", entities.TaskStatusDraft, epoch)))

	moved, err := repos.Tasks.TransitionStatus(ctx, "t1", entities.TaskStatusDraft, entities.TaskStatusActive, epoch)
	require.NoError(t, err)
	assert.True(t, moved)

	moved, err = repos.Tasks.TransitionStatus(ctx, "t1", entities.TaskStatusDraft, entities.TaskStatusActive, epoch)
	require.NoError(t, err)
	assert.False(t, moved)
}

func TestAttemptUniquePerUser(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repositories()
	a := &entities.Attempt{ID: "a1", TaskID: "t1", UserID: "u1"}
	require.NoError(t, repos.Attempts.Create(ctx, a))

	err := repos.Attempts.Create(ctx, &entities.Attempt{ID: "a2", TaskID: "t1", UserID: "u1"})
	assert.ErrorIs(t, err, exceptions.ErrConflict)

	exists, err := repos.Attempts.Exists(ctx, "t1", "u1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestRewardCodeCollisionReportsFalse(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repositories()

	created, err := repos.Rewards.Create(ctx, &entities.Reward{ID: "r1", UserID: "u1", TaskID: "t1", Code: "RWD-1"})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repos.Rewards.Create(ctx, &entities.Reward{ID: "r2", UserID: "u2", TaskID: "t1", Code: "RWD-1"})
	require.NoError(t, err)
	assert.False(t, created)

	_, err = repos.Rewards.Create(ctx, &entities.Reward{ID: "r3", UserID: "u1", TaskID: "t1", Code: "RWD-2"})
	assert.ErrorIs(t, err, exceptions.ErrConflict)

	marked, err := repos.Rewards.MarkRedeemed(ctx, "r1", epoch)
	require.NoError(t, err)
	assert.True(t, marked)
	marked, err = repos.Rewards.MarkRedeemed(ctx, "r1", epoch)
	require.NoError(t, err)
	assert.False(t, marked)

	_, err = repos.Rewards.GetByCode(ctx, "u2", "RWD-1")
	assert.ErrorIs(t, err, exceptions.ErrNotFound)
}

func TestListFiltersAndPages(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	store.PutCompany(entities.Company{ID: "c1", Name: "Cafe", City: "Almaty"})
	store.PutCompany(entities.Company{ID: "c2", Name: "Books", City: "Astana"})
	repos := store.Repositories()

	past := epoch.Add(-time.Hour)
	for i := 0; i < 25; i++ {
		task := newTask(fmt.Sprintf("a%02d", i), "c1", fmt.Sprintf("Active %02d", i), entities.TaskStatusActive, epoch.Add(time.Duration(i)*time.Minute))
		require.NoError(t, repos.Tasks.Create(ctx, task))
	}
	expired := newTask("x1", "c2", "Expired", entities.TaskStatusActive, epoch)
	expired.ExpiresAt = &past
	require.NoError(t, repos.Tasks.Create(ctx, expired))
	require.NoError(t, repos.Tasks.Create(ctx, newTask("d1", "c2", "Draft", entities.TaskStatusDraft, epoch)))

	tasks, total, err := repos.Tasks.List(ctx, entities.TaskFilter{}, epoch)
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	require.Len(t, tasks, entities.DefaultPageLimit)
	assert.Equal(t, "a24", tasks[0].ID)

	tasks, _, err = repos.Tasks.List(ctx, entities.TaskFilter{Page: 2}, epoch)
	require.NoError(t, err)
	assert.Len(t, tasks, 5)

	tasks, total, err = repos.Tasks.List(ctx, entities.TaskFilter{City: "astana"}, epoch)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, tasks)

	tasks, total, err = repos.Tasks.List(ctx, entities.TaskFilter{Status: entities.TaskStatusExpired}, epoch)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "x1", tasks[0].ID)

	tasks, _, err = repos.Tasks.List(ctx, entities.TaskFilter{SortBy: entities.SortTitle, Limit: 3}, epoch)
	require.NoError(t, err)
	assert.Equal(t, []string{"a00", "a01", "a02"}, []string{tasks[0].ID, tasks[1].ID, tasks[2].ID})
}

func TestConcurrentUnitsOfWorkSerialize(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	uow := NewUnitOfWorkManager(store)
	require.NoError(t, store.Repositories().Tasks.Create(ctx, newTask("t1", "c1", "Counter", entities.TaskStatusActive, epoch)))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = uow.Do(ctx, func(u ports.UnitOfWork) error {
				return u.Repositories().Tasks.IncrementCounters(ctx, "t1", false)
			})
		}()
	}
	wg.Wait()

	task, err := store.Repositories().Tasks.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 50, task.AttemptCount)
}
