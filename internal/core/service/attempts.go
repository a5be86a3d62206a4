package service

import (
	"context"
	"errors"
	"time"

	"puzzle-rewards/internal/core/domain/entities"
	"puzzle-rewards/internal/core/domain/exceptions"
	"puzzle-rewards/internal/core/ports"
	"puzzle-rewards/internal/core/puzzle"
	"puzzle-rewards/internal/metrics"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("puzzle-rewards/service")

type AttemptService struct {
	uow       ports.UnitOfWorkManager
	rewards   *RewardService
	validator puzzle.Validator
	cache     viewCache
	newID     func() string
	now       func() time.Time
	log       *zap.Logger
}

func NewAttemptService(uow ports.UnitOfWorkManager, rewards *RewardService, cache ports.Cache, settings Settings, log *zap.Logger) (*AttemptService, error) {
	if uow == nil {
		return nil, errors.New("unit of work manager is nil")
	}
	if rewards == nil {
		return nil, errors.New("reward service is nil")
	}
	if log == nil {
		return nil, errors.New("logger is nil")
	}
	if cache == nil {
		cache = ports.NoopCache{}
	}
	settings = settings.withDefaults()
	return &AttemptService{
		uow:       uow,
		rewards:   rewards,
		validator: puzzle.NewValidator(settings.MaxSolveTime),
		cache:     viewCache{cache: cache, ttl: settings.CacheTTL, log: log},
		newID:     uuid.NewString,
		now:       func() time.Time { return time.Now().UTC() },
		log:       log,
	}, nil
}

// SubmitAttempt scores a submission and records it as the user's only attempt
// at the task. The attempt, the task counters and any reward are written in
// one unit of work.
func (s *AttemptService) SubmitAttempt(ctx context.Context, taskID, userID string, sub entities.AttemptSubmission) (_ *ports.AttemptResult, err error) {
	ctx, span := tracer.Start(ctx, "attempts.Submit")
	span.SetAttributes(
		attribute.String("task.id", taskID),
		attribute.Int("attempt.pieces", len(sub.Order)),
		attribute.Int64("attempt.elapsed_ms", sub.ElapsedMs),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			metrics.AttemptsTotal.WithLabelValues(attemptOutcome(err)).Inc()
		}
		span.End()
	}()

	s.log.Info("usecase: submit attempt", zap.String("task_id", taskID), zap.String("user_id", userID))
	if userID == "" {
		err = exceptions.Validation("user_id", "must not be empty")
		s.log.Warn("usecase: submit attempt failed", zap.Error(err))
		return nil, err
	}

	var result *ports.AttemptResult
	err = s.uow.Do(ctx, func(uow ports.UnitOfWork) error {
		repos := uow.Repositories()
		task, err := repos.Tasks.GetForUpdate(ctx, taskID)
		if err != nil {
			return err
		}
		now := s.now()
		if err := task.CanAttempt(now); err != nil {
			return err
		}
		exists, err := repos.Attempts.Exists(ctx, taskID, userID)
		if err != nil {
			return err
		}
		if exists {
			return exceptions.Conflict(exceptions.ResourceAttempt, taskID, "user %s already attempted this task", userID)
		}

		score, err := s.validator.Validate(sub.Order, task.Puzzle.Solution(), sub.ElapsedMs)
		if err != nil {
			return err
		}
		attempt, err := entities.NewAttempt(s.newID(), taskID, userID, now, sub.ElapsedMs, score.IsCorrect, score.Score, task.Difficulty.Multiplier())
		if err != nil {
			return err
		}
		if err := repos.Attempts.Create(ctx, attempt); err != nil {
			return err
		}
		if err := repos.Tasks.IncrementCounters(ctx, taskID, attempt.IsSuccessful); err != nil {
			return err
		}

		result = &ports.AttemptResult{
			Attempt:   attempt,
			IsCorrect: score.IsCorrect,
			Score:     score.Score,
			TimeBonus: score.TimeBonus,
		}
		if !attempt.IsSuccessful {
			return nil
		}
		result.Reward, err = s.rewards.issue(ctx, repos, userID, task, now)
		return err
	})
	if err != nil {
		s.log.Warn("usecase: submit attempt failed", zap.String("task_id", taskID), zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	s.cache.invalidate(ctx, taskID)
	outcome := "failure"
	if result.IsCorrect {
		outcome = "success"
	}
	metrics.AttemptsTotal.WithLabelValues(outcome).Inc()
	s.log.Info("usecase: submit attempt done",
		zap.String("task_id", taskID),
		zap.String("user_id", userID),
		zap.Bool("correct", result.IsCorrect),
		zap.Int("score", result.Score),
	)
	return result, nil
}

func attemptOutcome(err error) string {
	if errors.Is(err, exceptions.ErrConflict) {
		return "conflict"
	}
	return "rejected"
}
