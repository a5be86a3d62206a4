package ports

import (
	"context"
	"time"

	"puzzle-rewards/internal/core/domain/entities"
)

type TaskRepository interface {
	GetByID(ctx context.Context, id string) (*entities.Task, error)
	// GetForUpdate locks the row for the rest of the unit of work.
	GetForUpdate(ctx context.Context, id string) (*entities.Task, error)
	ExistsTitle(ctx context.Context, companyID, title, excludeID string) (bool, error)
	Create(ctx context.Context, task *entities.Task) error
	Update(ctx context.Context, task *entities.Task) error
	// TransitionStatus moves a task from one stored status to another and
	// reports false when the row was no longer in the expected status.
	TransitionStatus(ctx context.Context, id string, from, to entities.TaskStatus, updatedAt time.Time) (bool, error)
	SetFeatured(ctx context.Context, id string, until time.Time, updatedAt time.Time) (bool, error)
	IncrementCounters(ctx context.Context, id string, successful bool) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter entities.TaskFilter, now time.Time) ([]*entities.Task, int, error)
}

type AttemptRepository interface {
	Exists(ctx context.Context, taskID, userID string) (bool, error)
	// Create fails with a Conflict when (task_id, user_id) already exists.
	Create(ctx context.Context, attempt *entities.Attempt) error
	Get(ctx context.Context, taskID, userID string) (*entities.Attempt, error)
	DeleteByTask(ctx context.Context, taskID string) (int, error)
}

type RewardRepository interface {
	Exists(ctx context.Context, userID, taskID string) (bool, error)
	// Create reports false without error when the reward code is taken, so
	// callers can retry with a fresh code inside the same transaction.
	Create(ctx context.Context, reward *entities.Reward) (bool, error)
	GetByCode(ctx context.Context, userID, code string) (*entities.Reward, error)
	MarkRedeemed(ctx context.Context, id string, redeemedAt time.Time) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*entities.Reward, error)
	DeleteByTask(ctx context.Context, taskID string) (int, error)
}

type CompanyRepository interface {
	GetByID(ctx context.Context, id string) (*entities.Company, error)
}
