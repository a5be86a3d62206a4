package grpc

import (
	"context"

	"puzzle-rewards/internal/mapper"
	puzzlev1 "puzzle-rewards/pkg/grpc/puzzlev1"

	"go.uber.org/zap"
)

func (s *PuzzleServer) SubmitAttempt(ctx context.Context, req *puzzlev1.SubmitAttemptRequest) (*puzzlev1.SubmitAttemptResponse, error) {
	s.log.Info("grpc: submit attempt", zap.String("task_id", req.GetTaskId()), zap.String("user_id", req.GetUserId()))
	if err := s.validate("submit attempt", req); err != nil {
		return nil, err
	}

	res, err := s.attempts.SubmitAttempt(ctx, req.GetTaskId(), req.GetUserId(), mapper.Submission(req))
	if err != nil {
		return nil, s.fail("submit attempt", err)
	}

	s.log.Info("grpc: submit attempt done",
		zap.String("task_id", req.GetTaskId()),
		zap.Bool("correct", res.IsCorrect),
		zap.Int("score", res.Score),
	)
	return mapper.AttemptResult(res, s.now()), nil
}

func (s *PuzzleServer) IssueReward(ctx context.Context, req *puzzlev1.IssueRewardRequest) (*puzzlev1.RewardResponse, error) {
	s.log.Info("grpc: issue reward", zap.String("user_id", req.GetUserId()), zap.String("task_id", req.GetTaskId()))
	if err := s.validate("issue reward", req); err != nil {
		return nil, err
	}

	reward, err := s.rewards.IssueReward(ctx, req.GetUserId(), req.GetTaskId())
	if err != nil {
		return nil, s.fail("issue reward", err)
	}

	s.log.Info("grpc: issue reward done", zap.String("reward_id", reward.ID))
	return &puzzlev1.RewardResponse{Reward: mapper.Reward(reward, s.now())}, nil
}

func (s *PuzzleServer) RedeemReward(ctx context.Context, req *puzzlev1.RedeemRewardRequest) (*puzzlev1.RedeemRewardResponse, error) {
	s.log.Info("grpc: redeem reward", zap.String("user_id", req.GetUserId()))
	if err := s.validate("redeem reward", req); err != nil {
		return nil, err
	}

	redemption, err := s.rewards.RedeemReward(ctx, req.GetUserId(), req.GetRewardCode())
	if err != nil {
		return nil, s.fail("redeem reward", err)
	}

	s.log.Info("grpc: redeem reward done", zap.String("reward_id", redemption.Reward.ID))
	return mapper.Redemption(redemption, s.now()), nil
}

func (s *PuzzleServer) ListRewards(ctx context.Context, req *puzzlev1.ListRewardsRequest) (*puzzlev1.ListRewardsResponse, error) {
	s.log.Debug("grpc: list rewards", zap.String("user_id", req.GetUserId()))
	if err := s.validate("list rewards", req); err != nil {
		return nil, err
	}

	rewards, err := s.rewards.ListRewards(ctx, req.GetUserId())
	if err != nil {
		return nil, s.fail("list rewards", err)
	}
	return mapper.Rewards(rewards, s.now()), nil
}
