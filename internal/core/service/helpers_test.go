package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"puzzle-rewards/internal/adapters/output/memory"
	"puzzle-rewards/internal/core/domain/entities"
	"puzzle-rewards/internal/core/ports"
	"puzzle-rewards/internal/core/puzzle"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	putErr  error
}

func (f *fakeStorage) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return "", f.putErr
	}
	f.objects[key] = data
	return "https://cdn.test/" + key, nil
}

func (f *fakeStorage) DeleteMany(_ context.Context, keys []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.objects, k)
		f.deleted = append(f.deleted, k)
	}
	return nil
}

func (f *fakeStorage) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

type mapCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	deletes int
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string][]byte{}}
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *mapCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	c.deletes++
	return nil
}

func (c *mapCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

// failingUoW runs nothing and reports a storage outage.
type failingUoW struct{}

func (failingUoW) Begin(context.Context) (ports.UnitOfWork, error) {
	return nil, errors.New("database unavailable")
}

func (failingUoW) Do(context.Context, func(ports.UnitOfWork) error) error {
	return errors.New("database unavailable")
}

type env struct {
	store    *memory.Store
	uow      ports.UnitOfWorkManager
	storage  *fakeStorage
	cache    *mapCache
	clock    *clock
	tasks    *TaskService
	attempts *AttemptService
	rewards  *RewardService
}

const (
	companyID = "company-1"
	otherCo   = "company-2"
)

func newEnv(t *testing.T) *env {
	t.Helper()
	log := zap.NewNop()
	store := memory.NewStore()
	store.PutCompany(entities.Company{
		ID:           companyID,
		Name:         "Pizza Place",
		ContactEmail: "hello@pizza.test",
		ContactPhone: "+7 700 000 0000",
		Website:      "https://pizza.test",
		Address:      "1 Main St",
		City:         "Almaty",
	})
	store.PutCompany(entities.Company{ID: otherCo, Name: "Books", City: "Astana"})

	e := &env{
		store:   store,
		uow:     memory.NewUnitOfWorkManager(store),
		storage: &fakeStorage{objects: map[string][]byte{}},
		cache:   newMapCache(),
		clock:   &clock{now: time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)},
	}
	gen := puzzle.NewGenerator(e.storage, puzzle.Config{CanvasSize: 60}, log).WithClock(e.clock.Now)
	e.tasks = e.newTaskService(t, gen, e.uow)

	var err error
	e.rewards, err = NewRewardService(store.Repositories(), e.uow, DefaultSettings(), log)
	require.NoError(t, err)
	e.rewards.now = e.clock.Now

	e.attempts, err = NewAttemptService(e.uow, e.rewards, e.cache, DefaultSettings(), log)
	require.NoError(t, err)
	e.attempts.now = e.clock.Now
	return e
}

func (e *env) newTaskService(t *testing.T, gen PuzzleGenerator, uow ports.UnitOfWorkManager) *TaskService {
	t.Helper()
	svc, err := NewTaskService(e.store.Repositories(), uow, gen, e.storage, e.cache, DefaultSettings(), zap.NewNop())
	require.NoError(t, err)
	svc.now = e.clock.Now
	svc.newRand = func() *rand.Rand { return rand.New(rand.NewPCG(42, 42)) }
	return svc
}

func validInput(title string) entities.TaskInput {
	return entities.TaskInput{
		Title:             title,
		Description:       "Put the pizza back together",
		Type:              entities.TaskTypeImagePuzzle,
		Difficulty:        entities.DifficultyEasy,
		RewardType:        entities.RewardTypeCoupon,
		RewardValue:       decimal.RequireFromString("20.00"),
		RewardDescription: "Free slice of pizza",
	}
}

func testImage(t *testing.T) *ports.ImageUpload {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 90, 90))
	for y := 0; y < 90; y++ {
		for x := 0; x < 90; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 2), G: uint8(y * 2), B: uint8(x + y), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return &ports.ImageUpload{Data: buf.Bytes(), ContentType: "image/png"}
}

// activeTask creates and publishes a task, returning its id.
func (e *env) activeTask(t *testing.T, title string, mutate func(*entities.TaskInput)) string {
	t.Helper()
	in := validInput(title)
	if mutate != nil {
		mutate(&in)
	}
	view, err := e.tasks.CreateTask(context.Background(), companyID, in, testImage(t))
	require.NoError(t, err)
	_, err = e.tasks.PublishTask(context.Background(), view.ID, companyID)
	require.NoError(t, err)
	return view.ID
}

func (e *env) solution(t *testing.T, taskID string) []int {
	t.Helper()
	task, err := e.store.Repositories().Tasks.GetByID(context.Background(), taskID)
	require.NoError(t, err)
	require.NotNil(t, task.Puzzle)
	return task.Puzzle.Solution()
}
