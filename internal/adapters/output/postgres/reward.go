package postgres

import (
	"context"
	"errors"
	"time"

	"puzzle-rewards/internal/core/domain/entities"
	"puzzle-rewards/internal/core/domain/exceptions"
	"puzzle-rewards/internal/infrastructure/db"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const rewardColumns = `id, user_id, task_id, reward_code, reward_type, reward_value,
	reward_description, is_redeemed, redeemed_at, expires_at, created_at`

type RewardRepository struct {
	db  db.Querier
	log *zap.Logger
}

func NewRewardRepository(db db.Querier, log *zap.Logger) *RewardRepository {
	if db == nil {
		log.Fatal("database querier is nil")
	}
	if log == nil {
		log.Fatal("logger is nil")
	}
	return &RewardRepository{
		db:  db,
		log: log,
	}
}

func (r *RewardRepository) Exists(ctx context.Context, userID, taskID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM rewards WHERE user_id = $1 AND task_id = $2)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, userID, taskID).Scan(&exists); err != nil {
		r.log.Error("failed to check reward", zap.Error(err))
		return false, err
	}
	return exists, nil
}

// Create skips the insert when the code is taken instead of failing, which
// would abort the surrounding transaction.
func (r *RewardRepository) Create(ctx context.Context, reward *entities.Reward) (bool, error) {
	query := `INSERT INTO rewards (id, user_id, task_id, reward_code, reward_type, reward_value,
		reward_description, is_redeemed, redeemed_at, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (reward_code) DO NOTHING`

	tag, err := r.db.Exec(
		ctx,
		query,
		reward.ID,
		reward.UserID,
		reward.TaskID,
		reward.Code,
		reward.Type,
		reward.Value,
		reward.Description,
		reward.IsRedeemed,
		reward.RedeemedAt,
		reward.ExpiresAt,
		reward.CreatedAt,
	)
	if err != nil {
		if name, ok := uniqueConstraint(err); ok && name == constraintRewardOnce {
			return false, exceptions.Conflict(exceptions.ResourceReward, reward.TaskID, "user %s already holds a reward for this task", reward.UserID)
		}
		r.log.Error("failed to create reward", zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *RewardRepository) GetByCode(ctx context.Context, userID, code string) (*entities.Reward, error) {
	query := `SELECT ` + rewardColumns + ` FROM rewards WHERE reward_code = $1 AND user_id = $2 FOR UPDATE`
	reward, err := scanReward(r.db.QueryRow(ctx, query, code, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, exceptions.NotFound(exceptions.ResourceReward, code)
		}
		r.log.Error("failed to get reward", zap.Error(err))
		return nil, err
	}
	return reward, nil
}

// MarkRedeemed flips the flag only while it is still false and reports
// whether this call did it.
func (r *RewardRepository) MarkRedeemed(ctx context.Context, id string, redeemedAt time.Time) (bool, error) {
	query := `UPDATE rewards SET is_redeemed = true, redeemed_at = $2
		WHERE id = $1 AND is_redeemed = false`
	tag, err := r.db.Exec(ctx, query, id, redeemedAt)
	if err != nil {
		r.log.Error("failed to redeem reward", zap.String("reward_id", id), zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *RewardRepository) ListByUser(ctx context.Context, userID string) ([]*entities.Reward, error) {
	query := `SELECT ` + rewardColumns + ` FROM rewards WHERE user_id = $1 ORDER BY created_at DESC, id`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.log.Error("failed to list rewards", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	rewards := make([]*entities.Reward, 0)
	for rows.Next() {
		reward, err := scanReward(rows)
		if err != nil {
			r.log.Error("failed to scan reward row", zap.Error(err))
			return nil, err
		}
		rewards = append(rewards, reward)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("failed to iterate reward rows", zap.Error(err))
		return nil, err
	}

	return rewards, nil
}

func (r *RewardRepository) DeleteByTask(ctx context.Context, taskID string) (int, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM rewards WHERE task_id = $1`, taskID)
	if err != nil {
		r.log.Error("failed to delete rewards", zap.String("task_id", taskID), zap.Error(err))
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func scanReward(row pgx.Row) (*entities.Reward, error) {
	reward := entities.Reward{}
	if err := row.Scan(
		&reward.ID,
		&reward.UserID,
		&reward.TaskID,
		&reward.Code,
		&reward.Type,
		&reward.Value,
		&reward.Description,
		&reward.IsRedeemed,
		&reward.RedeemedAt,
		&reward.ExpiresAt,
		&reward.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &reward, nil
}
