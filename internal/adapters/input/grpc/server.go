package grpc

import (
	"time"

	"puzzle-rewards/internal/core/ports"
	puzzlev1 "puzzle-rewards/pkg/grpc/puzzlev1"

	"go.uber.org/zap"
)

type PuzzleServer struct {
	puzzlev1.UnimplementedPuzzleServiceServer
	tasks    ports.TaskUseCases
	attempts ports.AttemptUseCases
	rewards  ports.RewardUseCases
	now      func() time.Time
	log      *zap.Logger
}

func NewPuzzleServer(tasks ports.TaskUseCases, attempts ports.AttemptUseCases, rewards ports.RewardUseCases, log *zap.Logger) *PuzzleServer {
	if log == nil {
		panic("logger is nil")
	}
	if tasks == nil {
		log.Fatal("task service is nil")
	}
	if attempts == nil {
		log.Fatal("attempt service is nil")
	}
	if rewards == nil {
		log.Fatal("reward service is nil")
	}
	return &PuzzleServer{
		tasks:    tasks,
		attempts: attempts,
		rewards:  rewards,
		now:      time.Now,
		log:      log,
	}
}
