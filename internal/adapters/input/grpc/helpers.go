package grpc

import (
	"puzzle-rewards/internal/core/domain/exceptions"
	"puzzle-rewards/internal/mapper"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type validatable interface {
	ValidateAll() error
}

// validate rejects malformed requests before they reach the core.
func (s *PuzzleServer) validate(op string, req validatable) error {
	if err := req.ValidateAll(); err != nil {
		s.log.Warn("grpc: "+op+" validation failed", zap.Error(err))
		return status.Error(codes.InvalidArgument, err.Error())
	}
	return nil
}

// fail logs err at a level matching its kind and converts it to a status.
// Domain errors are the caller's fault and log at Warn.
func (s *PuzzleServer) fail(op string, err error) error {
	if exceptions.KindOf(err) != 0 {
		s.log.Warn("grpc: "+op+" rejected", zap.Error(err))
	} else {
		s.log.Error("grpc: "+op+" failed", zap.Error(err))
	}
	return mapper.Error(err)
}
