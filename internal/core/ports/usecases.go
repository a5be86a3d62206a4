package ports

import (
	"context"

	"puzzle-rewards/internal/core/domain/entities"

	"github.com/shopspring/decimal"
)

// ImageUpload is a raw image submitted by a company.
type ImageUpload struct {
	Data        []byte
	ContentType string
}

type FeatureResult struct {
	Task entities.TaskView
	Cost decimal.Decimal
}

type AttemptResult struct {
	Attempt   *entities.Attempt
	IsCorrect bool
	Score     int
	TimeBonus int
	Reward    *entities.Reward
}

type TaskUseCases interface {
	CreateTask(ctx context.Context, companyID string, in entities.TaskInput, image *ImageUpload) (*entities.TaskView, error)
	UpdateTask(ctx context.Context, taskID, companyID string, patch entities.TaskPatch) (*entities.TaskView, error)
	AttachImage(ctx context.Context, taskID, companyID string, image ImageUpload) (*entities.TaskView, error)
	PublishTask(ctx context.Context, taskID, companyID string) (*entities.TaskView, error)
	FeatureTask(ctx context.Context, taskID, companyID string, durationDays int) (*FeatureResult, error)
	DeleteTask(ctx context.Context, taskID, companyID string) error
	GetTask(ctx context.Context, taskID string) (*entities.TaskView, error)
	ListTasks(ctx context.Context, filter entities.TaskFilter) (*entities.TaskPage, error)
}

type AttemptUseCases interface {
	SubmitAttempt(ctx context.Context, taskID, userID string, submission entities.AttemptSubmission) (*AttemptResult, error)
}

type RewardUseCases interface {
	IssueReward(ctx context.Context, userID, taskID string) (*entities.Reward, error)
	RedeemReward(ctx context.Context, userID, code string) (*entities.Redemption, error)
	ListRewards(ctx context.Context, userID string) ([]*entities.Reward, error)
}
