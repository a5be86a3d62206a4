package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"puzzle-rewards/internal/core/domain/entities"
	"puzzle-rewards/internal/core/domain/exceptions"
	"puzzle-rewards/internal/core/ports"
	"puzzle-rewards/internal/core/puzzle"
	"puzzle-rewards/internal/metrics"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PuzzleGenerator builds puzzles from uploaded images.
type PuzzleGenerator interface {
	Generate(ctx context.Context, req puzzle.Request) (*puzzle.Result, error)
}

type TaskService struct {
	repos     ports.Repositories
	uow       ports.UnitOfWorkManager
	generator PuzzleGenerator
	storage   ports.ObjectStorage
	cache     viewCache
	settings  Settings
	newID     func() string
	newRand   func() *rand.Rand
	now       func() time.Time
	log       *zap.Logger
}

func NewTaskService(
	repos ports.Repositories,
	uow ports.UnitOfWorkManager,
	generator PuzzleGenerator,
	storage ports.ObjectStorage,
	cache ports.Cache,
	settings Settings,
	log *zap.Logger,
) (*TaskService, error) {
	if uow == nil {
		return nil, errors.New("unit of work manager is nil")
	}
	if generator == nil {
		return nil, errors.New("puzzle generator is nil")
	}
	if storage == nil {
		return nil, errors.New("object storage is nil")
	}
	if log == nil {
		return nil, errors.New("logger is nil")
	}
	if cache == nil {
		cache = ports.NoopCache{}
	}
	settings = settings.withDefaults()
	return &TaskService{
		repos:     repos,
		uow:       uow,
		generator: generator,
		storage:   storage,
		cache:     viewCache{cache: cache, ttl: settings.CacheTTL, log: log},
		settings:  settings,
		newID:     uuid.NewString,
		newRand:   func() *rand.Rand { return nil },
		now:       func() time.Time { return time.Now().UTC() },
		log:       log,
	}, nil
}

func (s *TaskService) CreateTask(ctx context.Context, companyID string, in entities.TaskInput, image *ports.ImageUpload) (*entities.TaskView, error) {
	s.log.Info("usecase: create task", zap.String("company_id", companyID), zap.String("title", in.Title))
	view, err := s.createTask(ctx, companyID, in, image)
	if err != nil {
		s.log.Warn("usecase: create task failed", zap.String("company_id", companyID), zap.Error(err))
		return nil, err
	}
	metrics.TaskTransitionsTotal.WithLabelValues("create").Inc()
	s.log.Info("usecase: create task done", zap.String("task_id", view.ID))
	return view, nil
}

func (s *TaskService) createTask(ctx context.Context, companyID string, in entities.TaskInput, image *ports.ImageUpload) (*entities.TaskView, error) {
	if companyID == "" {
		return nil, exceptions.Validation("company_id", "must not be empty")
	}
	if err := in.Validate(s.settings.MaxRewardValue); err != nil {
		return nil, err
	}
	if image != nil && len(image.Data) == 0 {
		return nil, exceptions.Validation("image", "image is empty")
	}
	if _, err := s.repos.Companies.GetByID(ctx, companyID); err != nil {
		return nil, err
	}
	taken, err := s.repos.Tasks.ExistsTitle(ctx, companyID, in.Title, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, exceptions.Conflict(exceptions.ResourceTask, in.Title, "title already used by this company")
	}

	now := s.now()
	task := entities.NewTask(s.newID(), companyID, in, now)
	if image != nil {
		res, err := s.generate(ctx, task, *image)
		if err != nil {
			return nil, err
		}
		task.Puzzle = res.Config
		task.ImageURL = res.ImageURL
	}

	err = s.uow.Do(ctx, func(uow ports.UnitOfWork) error {
		return uow.Repositories().Tasks.Create(ctx, task)
	})
	if err != nil {
		if task.Puzzle != nil {
			s.cleanupArtifacts(ctx, task.ID, task.Puzzle.ArtifactKeys())
		}
		return nil, err
	}

	view := task.View(now)
	return &view, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, taskID, companyID string, patch entities.TaskPatch) (*entities.TaskView, error) {
	s.log.Info("usecase: update task", zap.String("task_id", taskID), zap.String("company_id", companyID))
	if patch.Empty() {
		err := exceptions.Validation("patch", "no fields to update")
		s.log.Warn("usecase: update task failed", zap.Error(err))
		return nil, err
	}

	var (
		task  *entities.Task
		stale []string
	)
	err := s.uow.Do(ctx, func(uow ports.UnitOfWork) error {
		repos := uow.Repositories()
		var err error
		task, err = s.ownedForUpdate(ctx, repos, taskID, companyID)
		if err != nil {
			return err
		}
		if err := task.CanEdit(); err != nil {
			return err
		}

		in := patch.Apply(task.Input())
		if err := in.Validate(s.settings.MaxRewardValue); err != nil {
			return err
		}
		taken, err := repos.Tasks.ExistsTitle(ctx, companyID, in.Title, task.ID)
		if err != nil {
			return err
		}
		if taken {
			return exceptions.Conflict(exceptions.ResourceTask, task.ID, "title %q already used by this company", in.Title)
		}

		// A new difficulty means a new grid; the old puzzle no longer fits
		// and the draft needs its image attached again.
		if task.Puzzle != nil && in.Difficulty.GridSize() != task.Puzzle.GridSize {
			stale = task.Puzzle.ArtifactKeys()
			task.Puzzle = nil
			task.ImageURL = ""
		}
		task.SetInput(in, s.now())
		return repos.Tasks.Update(ctx, task)
	})
	if err != nil {
		s.log.Warn("usecase: update task failed", zap.String("task_id", taskID), zap.Error(err))
		return nil, err
	}

	s.cache.invalidate(ctx, taskID)
	s.cleanupArtifacts(ctx, taskID, stale)
	metrics.TaskTransitionsTotal.WithLabelValues("update").Inc()
	s.log.Info("usecase: update task done", zap.String("task_id", taskID))
	view := task.View(s.now())
	return &view, nil
}

func (s *TaskService) AttachImage(ctx context.Context, taskID, companyID string, image ports.ImageUpload) (*entities.TaskView, error) {
	s.log.Info("usecase: attach image", zap.String("task_id", taskID), zap.Int("bytes", len(image.Data)))
	view, err := s.attachImage(ctx, taskID, companyID, image)
	if err != nil {
		s.log.Warn("usecase: attach image failed", zap.String("task_id", taskID), zap.Error(err))
		return nil, err
	}
	metrics.TaskTransitionsTotal.WithLabelValues("attach_image").Inc()
	s.log.Info("usecase: attach image done", zap.String("task_id", taskID))
	return view, nil
}

func (s *TaskService) attachImage(ctx context.Context, taskID, companyID string, image ports.ImageUpload) (*entities.TaskView, error) {
	if len(image.Data) == 0 {
		return nil, exceptions.Validation("image", "image is empty")
	}
	task, err := s.owned(ctx, s.repos, taskID, companyID)
	if err != nil {
		return nil, err
	}
	if err := requireDraft(task); err != nil {
		return nil, err
	}

	res, err := s.generate(ctx, task, image)
	if err != nil {
		return nil, err
	}

	var stale []string
	err = s.uow.Do(ctx, func(uow ports.UnitOfWork) error {
		repos := uow.Repositories()
		var err error
		task, err = s.ownedForUpdate(ctx, repos, taskID, companyID)
		if err != nil {
			return err
		}
		if err := requireDraft(task); err != nil {
			return err
		}
		if task.Difficulty.GridSize() != res.Config.GridSize {
			return exceptions.Conflict(exceptions.ResourceTask, task.ID, "difficulty changed while the image was processed")
		}
		if task.Puzzle != nil {
			stale = task.Puzzle.ArtifactKeys()
		}
		task.Puzzle = res.Config
		task.ImageURL = res.ImageURL
		task.UpdatedAt = s.now()
		return repos.Tasks.Update(ctx, task)
	})
	if err != nil {
		s.cleanupArtifacts(ctx, taskID, res.Config.ArtifactKeys())
		return nil, err
	}

	s.cache.invalidate(ctx, taskID)
	s.cleanupArtifacts(ctx, taskID, stale)
	view := task.View(s.now())
	return &view, nil
}

func (s *TaskService) PublishTask(ctx context.Context, taskID, companyID string) (*entities.TaskView, error) {
	s.log.Info("usecase: publish task", zap.String("task_id", taskID), zap.String("company_id", companyID))
	var task *entities.Task
	err := s.uow.Do(ctx, func(uow ports.UnitOfWork) error {
		repos := uow.Repositories()
		var err error
		task, err = s.ownedForUpdate(ctx, repos, taskID, companyID)
		if err != nil {
			return err
		}
		now := s.now()
		if err := task.Publish(now); err != nil {
			return err
		}
		if task.IsExpired(now) {
			return exceptions.Validation("expires_at", "task already expired")
		}
		moved, err := repos.Tasks.TransitionStatus(ctx, task.ID, entities.TaskStatusDraft, entities.TaskStatusActive, now)
		if err != nil {
			return err
		}
		if !moved {
			return exceptions.Forbidden(exceptions.ResourceTask, task.ID, "task is no longer a draft")
		}
		return nil
	})
	if err != nil {
		s.log.Warn("usecase: publish task failed", zap.String("task_id", taskID), zap.Error(err))
		return nil, err
	}

	s.cache.invalidate(ctx, taskID)
	metrics.TaskTransitionsTotal.WithLabelValues("publish").Inc()
	s.log.Info("usecase: publish task done", zap.String("task_id", taskID))
	view := task.View(s.now())
	return &view, nil
}

func (s *TaskService) FeatureTask(ctx context.Context, taskID, companyID string, durationDays int) (*ports.FeatureResult, error) {
	s.log.Info("usecase: feature task", zap.String("task_id", taskID), zap.Int("days", durationDays))
	var task *entities.Task
	err := s.uow.Do(ctx, func(uow ports.UnitOfWork) error {
		repos := uow.Repositories()
		var err error
		task, err = s.ownedForUpdate(ctx, repos, taskID, companyID)
		if err != nil {
			return err
		}
		now := s.now()
		if err := task.Feature(now, durationDays); err != nil {
			return err
		}
		ok, err := repos.Tasks.SetFeatured(ctx, task.ID, *task.FeaturedUntil, now)
		if err != nil {
			return err
		}
		if !ok {
			return exceptions.Forbidden(exceptions.ResourceTask, task.ID, "only active tasks can be featured")
		}
		return nil
	})
	if err != nil {
		s.log.Warn("usecase: feature task failed", zap.String("task_id", taskID), zap.Error(err))
		return nil, err
	}

	s.cache.invalidate(ctx, taskID)
	cost := s.settings.FeatureCostPerDay.Mul(decimal.NewFromInt(int64(durationDays)))
	metrics.TaskTransitionsTotal.WithLabelValues("feature").Inc()
	s.log.Info("usecase: feature task done",
		zap.String("task_id", taskID),
		zap.Time("featured_until", *task.FeaturedUntil),
		zap.String("cost", cost.StringFixed(2)),
	)
	return &ports.FeatureResult{Task: task.View(s.now()), Cost: cost}, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, taskID, companyID string) error {
	s.log.Info("usecase: delete task", zap.String("task_id", taskID), zap.String("company_id", companyID))
	var (
		task             *entities.Task
		attempts, awards int
	)
	err := s.uow.Do(ctx, func(uow ports.UnitOfWork) error {
		repos := uow.Repositories()
		var err error
		task, err = s.ownedForUpdate(ctx, repos, taskID, companyID)
		if err != nil {
			return err
		}
		if attempts, err = repos.Attempts.DeleteByTask(ctx, task.ID); err != nil {
			return err
		}
		if awards, err = repos.Rewards.DeleteByTask(ctx, task.ID); err != nil {
			return err
		}
		return repos.Tasks.Delete(ctx, task.ID)
	})
	if err != nil {
		s.log.Warn("usecase: delete task failed", zap.String("task_id", taskID), zap.Error(err))
		return err
	}

	s.cache.invalidate(ctx, taskID)
	if task.Puzzle != nil {
		s.cleanupArtifacts(ctx, taskID, task.Puzzle.ArtifactKeys())
	}
	metrics.TaskTransitionsTotal.WithLabelValues("delete").Inc()
	s.log.Info("usecase: delete task done",
		zap.String("task_id", taskID),
		zap.Int("attempts", attempts),
		zap.Int("rewards", awards),
	)
	return nil
}

// GetTask is the player-facing read. Drafts and blocked tasks are invisible.
func (s *TaskService) GetTask(ctx context.Context, taskID string) (*entities.TaskView, error) {
	s.log.Debug("usecase: get task", zap.String("task_id", taskID))
	now := s.now()
	gen, cacheable := s.cache.generation(ctx, taskID)
	if cacheable {
		if v, ok := s.cache.get(ctx, taskID, gen, now); ok {
			return v, nil
		}
	}

	task, err := s.repos.Tasks.GetByID(ctx, taskID)
	if err != nil {
		s.log.Warn("usecase: get task failed", zap.String("task_id", taskID), zap.Error(err))
		return nil, err
	}
	if task.Status == entities.TaskStatusDraft || task.Status == entities.TaskStatusBlocked {
		return nil, exceptions.NotFound(exceptions.ResourceTask, taskID)
	}
	view := task.View(now)
	if cacheable {
		s.cache.set(ctx, &view, gen)
	}
	s.log.Debug("usecase: get task done", zap.String("task_id", taskID))
	return &view, nil
}

func (s *TaskService) ListTasks(ctx context.Context, filter entities.TaskFilter) (*entities.TaskPage, error) {
	filter = filter.Normalize()
	s.log.Debug("usecase: list tasks",
		zap.String("status", string(filter.Status)),
		zap.Int("page", filter.Page),
		zap.Int("limit", filter.Limit),
		zap.String("sort_by", string(filter.SortBy)),
	)
	now := s.now()
	tasks, total, err := s.repos.Tasks.List(ctx, filter, now)
	if err != nil {
		s.log.Warn("usecase: list tasks failed", zap.Error(err))
		return nil, err
	}
	page := &entities.TaskPage{
		Tasks: make([]entities.TaskView, 0, len(tasks)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for _, t := range tasks {
		page.Tasks = append(page.Tasks, t.View(now))
	}
	s.log.Debug("usecase: list tasks done", zap.Int("returned", len(page.Tasks)), zap.Int("total", total))
	return page, nil
}

func (s *TaskService) generate(ctx context.Context, task *entities.Task, image ports.ImageUpload) (*puzzle.Result, error) {
	return s.generator.Generate(ctx, puzzle.Request{
		KeyPrefix: "tasks/" + task.ID + "/" + s.newID(),
		Image:     image.Data,
		GridSize:  task.Difficulty.GridSize(),
		Rand:      s.newRand(),
	})
}

// cleanupArtifacts deletes stored puzzle images. Failures are logged only.
func (s *TaskService) cleanupArtifacts(ctx context.Context, taskID string, keys []string) {
	if len(keys) == 0 {
		return
	}
	if err := s.storage.DeleteMany(context.WithoutCancel(ctx), keys); err != nil {
		s.log.Warn("usecase: artifact cleanup failed", zap.String("task_id", taskID), zap.Strings("keys", keys), zap.Error(err))
	}
}

func (s *TaskService) owned(ctx context.Context, repos ports.Repositories, taskID, companyID string) (*entities.Task, error) {
	task, err := repos.Tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !task.OwnedBy(companyID) {
		return nil, exceptions.NotFound(exceptions.ResourceTask, taskID)
	}
	return task, nil
}

func (s *TaskService) ownedForUpdate(ctx context.Context, repos ports.Repositories, taskID, companyID string) (*entities.Task, error) {
	task, err := repos.Tasks.GetForUpdate(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !task.OwnedBy(companyID) {
		return nil, exceptions.NotFound(exceptions.ResourceTask, taskID)
	}
	return task, nil
}

func requireDraft(task *entities.Task) error {
	if task.Status != entities.TaskStatusDraft {
		return exceptions.Forbidden(exceptions.ResourceTask, task.ID, "images can only be attached to drafts")
	}
	return nil
}
