package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"puzzle-rewards/internal/core/domain/entities"
	"puzzle-rewards/internal/core/domain/exceptions"
	"puzzle-rewards/internal/core/ports"
	"puzzle-rewards/internal/metrics"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const (
	rewardCodePrefix   = "RWD-"
	rewardCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	rewardCodeSuffix   = 6
	maxCodeAttempts    = 5
)

// CodeGenerator returns a human-typeable reward code. Uniqueness is enforced
// by storage; generators only need to make collisions unlikely.
type CodeGenerator func(now time.Time) string

// NewRewardCode builds codes like RWD-MB2K1Q8Z-7HKQ2X: a base36 millisecond
// timestamp followed by a random suffix without look-alike characters.
func NewRewardCode(now time.Time) string {
	buf := make([]byte, rewardCodeSuffix)
	if _, err := rand.Read(buf); err != nil {
		for i := range buf {
			buf[i] = byte(now.UnixNano() >> (i * 8))
		}
	}
	for i, b := range buf {
		buf[i] = rewardCodeAlphabet[int(b)%len(rewardCodeAlphabet)]
	}
	stamp := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	return rewardCodePrefix + stamp + "-" + string(buf)
}

type RewardService struct {
	repos    ports.Repositories
	uow      ports.UnitOfWorkManager
	settings Settings
	newCode  CodeGenerator
	newID    func() string
	now      func() time.Time
	log      *zap.Logger
}

func NewRewardService(repos ports.Repositories, uow ports.UnitOfWorkManager, settings Settings, log *zap.Logger) (*RewardService, error) {
	if uow == nil {
		return nil, errors.New("unit of work manager is nil")
	}
	if log == nil {
		return nil, errors.New("logger is nil")
	}
	return &RewardService{
		repos:    repos,
		uow:      uow,
		settings: settings.withDefaults(),
		newCode:  NewRewardCode,
		newID:    uuid.NewString,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log,
	}, nil
}

// IssueReward issues the reward for an already recorded successful attempt.
// Rewards are normally issued by SubmitAttempt; this covers a user whose
// reward was never written.
func (s *RewardService) IssueReward(ctx context.Context, userID, taskID string) (*entities.Reward, error) {
	s.log.Info("usecase: issue reward", zap.String("user_id", userID), zap.String("task_id", taskID))
	var reward *entities.Reward
	err := s.uow.Do(ctx, func(uow ports.UnitOfWork) error {
		repos := uow.Repositories()
		task, err := repos.Tasks.GetForUpdate(ctx, taskID)
		if err != nil {
			return err
		}
		attempt, err := repos.Attempts.Get(ctx, taskID, userID)
		if err != nil {
			return err
		}
		if !attempt.IsSuccessful {
			return exceptions.Forbidden(exceptions.ResourceReward, taskID, "attempt by %s was not successful", userID)
		}
		reward, err = s.issue(ctx, repos, userID, task, s.now())
		return err
	})
	if err != nil {
		s.log.Warn("usecase: issue reward failed", zap.String("user_id", userID), zap.String("task_id", taskID), zap.Error(err))
		return nil, err
	}
	s.log.Info("usecase: issue reward done", zap.String("reward_code", reward.Code))
	return reward, nil
}

// issue writes a reward inside the caller's unit of work, retrying on code
// collisions.
func (s *RewardService) issue(ctx context.Context, repos ports.Repositories, userID string, task *entities.Task, now time.Time) (*entities.Reward, error) {
	exists, err := repos.Rewards.Exists(ctx, userID, task.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, exceptions.Conflict(exceptions.ResourceReward, task.ID, "user %s already holds a reward for this task", userID)
	}

	for i := 0; i < maxCodeAttempts; i++ {
		reward := entities.NewReward(s.newID(), userID, task, s.newCode(now), now, s.settings.RewardValidity)
		created, err := repos.Rewards.Create(ctx, reward)
		if err != nil {
			return nil, err
		}
		if created {
			metrics.RewardsIssuedTotal.WithLabelValues(string(reward.Type)).Inc()
			return reward, nil
		}
		metrics.RewardCodeCollisionsTotal.Inc()
		s.log.Debug("usecase: reward code collision", zap.String("reward_code", reward.Code))
	}
	return nil, fmt.Errorf("allocate reward code: %d consecutive collisions", maxCodeAttempts)
}

func (s *RewardService) RedeemReward(ctx context.Context, userID, code string) (_ *entities.Redemption, err error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	ctx, span := tracer.Start(ctx, "rewards.Redeem")
	span.SetAttributes(attribute.String("reward.code", code))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	s.log.Info("usecase: redeem reward", zap.String("user_id", userID), zap.String("reward_code", code))
	if code == "" {
		err = exceptions.Validation("reward_code", "must not be empty")
		s.log.Warn("usecase: redeem reward failed", zap.Error(err))
		return nil, err
	}

	var (
		reward  *entities.Reward
		company *entities.Company
	)
	err = s.uow.Do(ctx, func(uow ports.UnitOfWork) error {
		repos := uow.Repositories()
		var err error
		reward, err = repos.Rewards.GetByCode(ctx, userID, code)
		if err != nil {
			return err
		}
		now := s.now()
		if err := reward.MarkRedeemed(now); err != nil {
			return err
		}
		marked, err := repos.Rewards.MarkRedeemed(ctx, reward.ID, now)
		if err != nil {
			return err
		}
		if !marked {
			return exceptions.Conflict(exceptions.ResourceReward, code, "reward already redeemed")
		}

		task, err := repos.Tasks.GetByID(ctx, reward.TaskID)
		if err != nil {
			return err
		}
		company, err = repos.Companies.GetByID(ctx, task.CompanyID)
		if err != nil && !errors.Is(err, exceptions.ErrNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		s.log.Warn("usecase: redeem reward failed", zap.String("reward_code", code), zap.Error(err))
		return nil, err
	}

	metrics.RewardsRedeemedTotal.WithLabelValues(string(reward.Type)).Inc()
	s.log.Info("usecase: redeem reward done", zap.String("reward_code", code))
	return &entities.Redemption{
		Reward:       reward,
		Instructions: entities.RedemptionInstructions(reward.Type),
		Company:      company.Contact(),
	}, nil
}

func (s *RewardService) ListRewards(ctx context.Context, userID string) ([]*entities.Reward, error) {
	s.log.Debug("usecase: list rewards", zap.String("user_id", userID))
	if userID == "" {
		return nil, exceptions.Validation("user_id", "must not be empty")
	}
	rewards, err := s.repos.Rewards.ListByUser(ctx, userID)
	if err != nil {
		s.log.Warn("usecase: list rewards failed", zap.Error(err))
		return nil, err
	}
	return rewards, nil
}
