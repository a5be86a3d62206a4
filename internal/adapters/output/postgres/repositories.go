package postgres

import (
	"puzzle-rewards/internal/core/ports"
	"puzzle-rewards/internal/infrastructure/db"

	"go.uber.org/zap"
)

// NewRepositories binds every repository to q. It is used as the unit of
// work's repository factory and, with the pool, for reads outside one.
func NewRepositories(q db.Querier, log *zap.Logger) ports.Repositories {
	return ports.Repositories{
		Tasks:     NewTaskRepository(q, log),
		Attempts:  NewAttemptRepository(q, log),
		Rewards:   NewRewardRepository(q, log),
		Companies: NewCompanyRepository(q, log),
	}
}
