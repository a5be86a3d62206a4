package postgres

import (
	"context"
	"errors"

	"puzzle-rewards/internal/core/domain/entities"
	"puzzle-rewards/internal/core/domain/exceptions"
	"puzzle-rewards/internal/infrastructure/db"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type AttemptRepository struct {
	db  db.Querier
	log *zap.Logger
}

func NewAttemptRepository(db db.Querier, log *zap.Logger) *AttemptRepository {
	if db == nil {
		log.Fatal("database querier is nil")
	}
	if log == nil {
		log.Fatal("logger is nil")
	}
	return &AttemptRepository{
		db:  db,
		log: log,
	}
}

func (r *AttemptRepository) Exists(ctx context.Context, taskID, userID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM task_attempts WHERE task_id = $1 AND user_id = $2)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, taskID, userID).Scan(&exists); err != nil {
		r.log.Error("failed to check attempt", zap.Error(err))
		return false, err
	}
	return exists, nil
}

// Create relies on the (task_id, user_id) unique constraint; concurrent
// inserts for the same pair surface as a Conflict.
func (r *AttemptRepository) Create(ctx context.Context, attempt *entities.Attempt) error {
	query := `INSERT INTO task_attempts (id, task_id, user_id, started_at, completed_at,
		time_taken_seconds, is_successful, score, difficulty_multiplier)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(
		ctx,
		query,
		attempt.ID,
		attempt.TaskID,
		attempt.UserID,
		attempt.StartedAt,
		attempt.CompletedAt,
		attempt.TimeTakenSeconds,
		attempt.IsSuccessful,
		attempt.Score,
		attempt.DifficultyMultiplier,
	)
	if err != nil {
		if name, ok := uniqueConstraint(err); ok && name == constraintAttemptOnce {
			return exceptions.Conflict(exceptions.ResourceAttempt, attempt.TaskID, "user %s already attempted this task", attempt.UserID)
		}
		r.log.Error("failed to create attempt", zap.Error(err))
		return err
	}
	return nil
}

func (r *AttemptRepository) Get(ctx context.Context, taskID, userID string) (*entities.Attempt, error) {
	query := `SELECT id, task_id, user_id, started_at, completed_at, time_taken_seconds,
		is_successful, score, difficulty_multiplier
		FROM task_attempts WHERE task_id = $1 AND user_id = $2`

	attempt := entities.Attempt{}
	err := r.db.QueryRow(ctx, query, taskID, userID).Scan(
		&attempt.ID,
		&attempt.TaskID,
		&attempt.UserID,
		&attempt.StartedAt,
		&attempt.CompletedAt,
		&attempt.TimeTakenSeconds,
		&attempt.IsSuccessful,
		&attempt.Score,
		&attempt.DifficultyMultiplier,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, exceptions.NotFound(exceptions.ResourceAttempt, taskID+"/"+userID)
		}
		r.log.Error("failed to get attempt", zap.Error(err))
		return nil, err
	}
	return &attempt, nil
}

func (r *AttemptRepository) DeleteByTask(ctx context.Context, taskID string) (int, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM task_attempts WHERE task_id = $1`, taskID)
	if err != nil {
		r.log.Error("failed to delete attempts", zap.String("task_id", taskID), zap.Error(err))
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
