package mapper

import (
	"context"
	"errors"
	"strings"
	"time"

	"puzzle-rewards/internal/core/domain/entities"
	"puzzle-rewards/internal/core/domain/exceptions"
	"puzzle-rewards/internal/core/ports"
	puzzlev1 "puzzle-rewards/pkg/grpc/puzzlev1"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"
)

func Task(task *entities.TaskView) *puzzlev1.Task {
	if task == nil {
		return nil
	}
	return &puzzlev1.Task{
		Id:                task.ID,
		CompanyId:         task.CompanyID,
		Title:             task.Title,
		Description:       task.Description,
		TaskType:          string(task.Type),
		Difficulty:        string(task.Difficulty),
		RewardType:        string(task.RewardType),
		RewardValue:       task.RewardValue.StringFixed(2),
		RewardDescription: task.RewardDescription,
		ImageUrl:          task.ImageURL,
		Puzzle:            Puzzle(task.Puzzle),
		Status:            string(task.Status),
		IsFeatured:        task.IsFeatured,
		FeaturedUntil:     timestampPtr(task.FeaturedUntil),
		AttemptCount:      int32(task.AttemptCount),
		ConversionCount:   int32(task.ConversionCount),
		ConversionRate:    task.ConversionRate,
		ExpiresAt:         timestampPtr(task.ExpiresAt),
		CreatedAt:         timestamp(task.CreatedAt),
		UpdatedAt:         timestamp(task.UpdatedAt),
	}
}

func Puzzle(p *entities.PublicPuzzle) *puzzlev1.Puzzle {
	if p == nil {
		return nil
	}
	pieces := make([]*puzzlev1.PuzzlePiece, 0, len(p.Pieces))
	for _, piece := range p.Pieces {
		pieces = append(pieces, &puzzlev1.PuzzlePiece{Index: int32(piece.Index), Hash: piece.Hash})
	}
	order := make([]int32, len(p.ShuffledOrder))
	for i, idx := range p.ShuffledOrder {
		order[i] = int32(idx)
	}
	return &puzzlev1.Puzzle{
		GridSize:       int32(p.GridSize),
		Side:           int32(p.Side),
		Pieces:         pieces,
		ShuffledOrder:  order,
		DifficultySeed: string(p.DifficultySeed),
		CreatedAt:      timestamp(p.CreatedAt),
		ExpiresAt:      timestamp(p.ExpiresAt),
	}
}

func TaskPage(page *entities.TaskPage) *puzzlev1.ListTasksResponse {
	resp := &puzzlev1.ListTasksResponse{
		Tasks: make([]*puzzlev1.Task, 0, len(page.Tasks)),
		Total: int32(page.Total),
		Page:  int32(page.Page),
		Limit: int32(page.Limit),
	}
	for i := range page.Tasks {
		resp.Tasks = append(resp.Tasks, Task(&page.Tasks[i]))
	}
	return resp
}

func Attempt(a *entities.Attempt) *puzzlev1.Attempt {
	if a == nil {
		return nil
	}
	return &puzzlev1.Attempt{
		Id:                   a.ID,
		TaskId:               a.TaskID,
		UserId:               a.UserID,
		StartedAt:            timestamp(a.StartedAt),
		CompletedAt:          timestamp(a.CompletedAt),
		TimeTakenSeconds:     int32(a.TimeTakenSeconds),
		IsSuccessful:         a.IsSuccessful,
		Score:                int32(a.Score),
		DifficultyMultiplier: a.DifficultyMultiplier,
	}
}

func AttemptResult(res *ports.AttemptResult, now time.Time) *puzzlev1.SubmitAttemptResponse {
	return &puzzlev1.SubmitAttemptResponse{
		Attempt:   Attempt(res.Attempt),
		IsCorrect: res.IsCorrect,
		Score:     int32(res.Score),
		TimeBonus: int32(res.TimeBonus),
		Reward:    Reward(res.Reward, now),
	}
}

// Reward maps a reward; expired is derived against now.
func Reward(r *entities.Reward, now time.Time) *puzzlev1.Reward {
	if r == nil {
		return nil
	}
	return &puzzlev1.Reward{
		Id:                r.ID,
		UserId:            r.UserID,
		TaskId:            r.TaskID,
		RewardCode:        r.Code,
		RewardType:        string(r.Type),
		RewardValue:       r.Value.StringFixed(2),
		RewardDescription: r.Description,
		IsRedeemed:        r.IsRedeemed,
		Expired:           !r.IsRedeemed && r.IsExpired(now),
		RedeemedAt:        timestampPtr(r.RedeemedAt),
		ExpiresAt:         timestamp(r.ExpiresAt),
		CreatedAt:         timestamp(r.CreatedAt),
	}
}

func Rewards(rewards []*entities.Reward, now time.Time) *puzzlev1.ListRewardsResponse {
	resp := &puzzlev1.ListRewardsResponse{Rewards: make([]*puzzlev1.Reward, 0, len(rewards))}
	for _, r := range rewards {
		resp.Rewards = append(resp.Rewards, Reward(r, now))
	}
	return resp
}

func Redemption(r *entities.Redemption, now time.Time) *puzzlev1.RedeemRewardResponse {
	return &puzzlev1.RedeemRewardResponse{
		Reward:       Reward(r.Reward, now),
		Instructions: r.Instructions,
		Company: &puzzlev1.CompanyContact{
			Name:    r.Company.Name,
			Email:   r.Company.Email,
			Phone:   r.Company.Phone,
			Website: r.Company.Website,
			Address: r.Company.Address,
		},
	}
}

func TaskInput(req *puzzlev1.CreateTaskRequest) (entities.TaskInput, error) {
	value, err := parseDecimal(req.RewardValue)
	if err != nil {
		return entities.TaskInput{}, err
	}
	return entities.TaskInput{
		Title:             req.Title,
		Description:       req.Description,
		Type:              entities.TaskType(req.TaskType),
		Difficulty:        entities.Difficulty(req.Difficulty),
		RewardType:        entities.RewardType(req.RewardType),
		RewardValue:       value,
		RewardDescription: req.RewardDescription,
		ExpiresAt:         timePtr(req.ExpiresAt),
	}, nil
}

func TaskPatch(req *puzzlev1.UpdateTaskRequest) (entities.TaskPatch, error) {
	patch := entities.TaskPatch{
		Title:             req.Title,
		Description:       req.Description,
		RewardDescription: req.RewardDescription,
		ExpiresAt:         timePtr(req.ExpiresAt),
		ClearExpiresAt:    req.ClearExpiresAt,
	}
	if req.TaskType != nil {
		v := entities.TaskType(*req.TaskType)
		patch.Type = &v
	}
	if req.Difficulty != nil {
		v := entities.Difficulty(*req.Difficulty)
		patch.Difficulty = &v
	}
	if req.RewardType != nil {
		v := entities.RewardType(*req.RewardType)
		patch.RewardType = &v
	}
	if req.RewardValue != nil {
		v, err := parseDecimal(*req.RewardValue)
		if err != nil {
			return entities.TaskPatch{}, err
		}
		patch.RewardValue = &v
	}
	return patch, nil
}

func Image(img *puzzlev1.Image) *ports.ImageUpload {
	if img == nil {
		return nil
	}
	return &ports.ImageUpload{Data: img.Data, ContentType: img.ContentType}
}

func TaskFilter(req *puzzlev1.ListTasksRequest) entities.TaskFilter {
	if req == nil {
		return entities.TaskFilter{}
	}
	return entities.TaskFilter{
		Status:       entities.TaskStatus(req.Status),
		Difficulty:   entities.Difficulty(req.Difficulty),
		Type:         entities.TaskType(req.TaskType),
		City:         req.City,
		CompanyID:    req.CompanyId,
		FeaturedOnly: req.FeaturedOnly,
		Page:         int(req.Page),
		Limit:        int(req.Limit),
		SortBy:       entities.SortField(req.SortBy),
		Descending:   req.Descending,
	}
}

func Submission(req *puzzlev1.SubmitAttemptRequest) entities.AttemptSubmission {
	order := make([]int, len(req.Order))
	for i, v := range req.Order {
		order[i] = int(v)
	}
	return entities.AttemptSubmission{Order: order, ElapsedMs: req.ElapsedMs}
}

func Error(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, exceptions.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, exceptions.ErrConflict):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, exceptions.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, exceptions.ErrForbidden):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, exceptions.ErrGone):
		return status.Error(codes.OutOfRange, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

func parseDecimal(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, exceptions.Validation("reward_value", "must be a decimal number")
	}
	return v, nil
}

func timestamp(t time.Time) *timestamppb.Timestamp {
	if t.IsZero() {
		return nil
	}
	return timestamppb.New(t)
}

func timestampPtr(t *time.Time) *timestamppb.Timestamp {
	if t == nil {
		return nil
	}
	return timestamp(*t)
}

func timePtr(ts *timestamppb.Timestamp) *time.Time {
	if ts == nil {
		return nil
	}
	t := ts.AsTime()
	return &t
}
