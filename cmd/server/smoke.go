package main

import (
	"context"
	"errors"
	"time"

	"puzzle-rewards/internal/adapters/output/postgres"
	"puzzle-rewards/internal/core/domain/entities"
	"puzzle-rewards/internal/core/domain/exceptions"
	"puzzle-rewards/internal/infrastructure/db"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// runRepoSmokeTest exercises the Postgres repositories end to end against a
// live database and removes everything it created.
func runRepoSmokeTest(ctx context.Context, log *zap.Logger, q db.Querier) error {
	repos := postgres.NewRepositories(q, log)
	now := time.Now().UTC()

	companyID := "smoke-" + uuid.NewString()
	log.Info("smoke test: creating company", zap.String("company_id", companyID))
	if _, err := q.Exec(ctx, `INSERT INTO companies (id, name, city) VALUES ($1, $2, $3)`,
		companyID, "Smoke Test Company", "Smoke City"); err != nil {
		return err
	}
	defer cleanupSmokeCompany(ctx, log, q, companyID)

	expires := now.Add(24 * time.Hour)
	task := entities.NewTask(uuid.NewString(), companyID, entities.TaskInput{
		Title:             "Smoke Test Task",
		Description:       "Temporary task for repository smoke test",
		Type:              entities.TaskTypeImagePuzzle,
		Difficulty:        entities.DifficultyEasy,
		RewardType:        entities.RewardTypeCoupon,
		RewardValue:       decimal.NewFromInt(5),
		RewardDescription: "Smoke test coupon",
		ExpiresAt:         &expires,
	}, now)
	task.ImageURL = "file:///dev/null"
	task.Puzzle = entities.NewPuzzleConfig(9, smokePieces(9), []int{8, 7, 6, 5, 4, 3, 2, 1, 0},
		entities.DifficultyEasy, "smoke/puzzle.jpg", now, now.Add(time.Hour), []int{0, 1, 2, 3, 4, 5, 6, 7, 8})

	log.Info("smoke test: creating task", zap.String("task_id", task.ID))
	if err := repos.Tasks.Create(ctx, task); err != nil {
		return err
	}

	log.Info("smoke test: checking title uniqueness")
	dup := *task
	dup.ID = uuid.NewString()
	dup.Title = "SMOKE TEST TASK"
	if err := repos.Tasks.Create(ctx, &dup); !errors.Is(err, exceptions.ErrConflict) {
		log.Error("smoke test: duplicate title was not rejected", zap.Error(err))
		return errors.New("duplicate title accepted")
	}

	log.Info("smoke test: publishing task")
	if ok, err := repos.Tasks.TransitionStatus(ctx, task.ID, entities.TaskStatusDraft, entities.TaskStatusActive, now); err != nil || !ok {
		log.Error("smoke test: failed to publish", zap.Bool("transitioned", ok), zap.Error(err))
		return errors.New("publish failed")
	}

	stored, err := repos.Tasks.GetByID(ctx, task.ID)
	if err != nil {
		return err
	}
	if got := stored.Puzzle.Solution(); len(got) != 9 || got[8] != 8 {
		log.Error("smoke test: puzzle solution did not round-trip", zap.Ints("solution", got))
		return errors.New("solution mismatch")
	}

	userID := "smoke-user-" + uuid.NewString()
	attempt, err := entities.NewAttempt(uuid.NewString(), task.ID, userID, now, 12_000, true, 148, 1.0)
	if err != nil {
		return err
	}
	log.Info("smoke test: recording attempt", zap.String("user_id", userID))
	if err := repos.Attempts.Create(ctx, attempt); err != nil {
		return err
	}
	again := *attempt
	again.ID = uuid.NewString()
	if err := repos.Attempts.Create(ctx, &again); !errors.Is(err, exceptions.ErrConflict) {
		log.Error("smoke test: second attempt was not rejected", zap.Error(err))
		return errors.New("second attempt accepted")
	}
	if err := repos.Tasks.IncrementCounters(ctx, task.ID, true); err != nil {
		return err
	}

	reward := entities.NewReward(uuid.NewString(), userID, stored, "RWD-SMOKE-"+uuid.NewString()[:6], now, time.Hour)
	log.Info("smoke test: issuing reward", zap.String("reward_code", reward.Code))
	if created, err := repos.Rewards.Create(ctx, reward); err != nil || !created {
		log.Error("smoke test: failed to issue reward", zap.Bool("created", created), zap.Error(err))
		return errors.New("reward not created")
	}

	found, err := repos.Rewards.GetByCode(ctx, userID, reward.Code)
	if err != nil {
		return err
	}
	if ok, err := repos.Rewards.MarkRedeemed(ctx, found.ID, now); err != nil || !ok {
		log.Error("smoke test: failed to redeem", zap.Bool("redeemed", ok), zap.Error(err))
		return errors.New("redeem failed")
	}
	if ok, _ := repos.Rewards.MarkRedeemed(ctx, found.ID, now); ok {
		return errors.New("reward redeemed twice")
	}

	page, total, err := repos.Tasks.List(ctx, entities.TaskFilter{City: "Smoke City"}.Normalize(), now)
	if err != nil {
		return err
	}
	if total != 1 || page[0].AttemptCount != 1 || page[0].ConversionCount != 1 {
		log.Error("smoke test: unexpected list result", zap.Int("total", total))
		return errors.New("list mismatch")
	}

	log.Info("smoke test: passed", zap.String("task_id", task.ID))
	return nil
}

func smokePieces(n int) []entities.PuzzlePiece {
	pieces := make([]entities.PuzzlePiece, n)
	for i := range pieces {
		pieces[i] = entities.PuzzlePiece{Index: i, Hash: uuid.NewString()}
	}
	return pieces
}

func cleanupSmokeCompany(ctx context.Context, log *zap.Logger, q db.Querier, id string) {
	if _, err := q.Exec(ctx, "DELETE FROM tasks WHERE company_id = $1", id); err != nil {
		log.Error("smoke test: failed to cleanup tasks", zap.Error(err))
	}
	if _, err := q.Exec(ctx, "DELETE FROM companies WHERE id = $1", id); err != nil {
		log.Error("smoke test: failed to cleanup company", zap.Error(err))
	}
}
