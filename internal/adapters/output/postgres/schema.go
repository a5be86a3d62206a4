package postgres

import (
	"context"
	"fmt"

	"puzzle-rewards/internal/infrastructure/db"
)

const (
	constraintTaskTitle   = "tasks_company_title_key"
	constraintAttemptOnce = "task_attempts_task_user_key"
	constraintRewardCode  = "rewards_reward_code_key"
	constraintRewardOnce  = "rewards_user_task_key"
)

// schema is applied statement by statement. Every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS companies (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		contact_email TEXT NOT NULL DEFAULT '',
		contact_phone TEXT NOT NULL DEFAULT '',
		website       TEXT NOT NULL DEFAULT '',
		address       TEXT NOT NULL DEFAULT '',
		city          TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id                 TEXT PRIMARY KEY,
		company_id         TEXT NOT NULL REFERENCES companies (id),
		title              TEXT NOT NULL CHECK (char_length(title) BETWEEN 3 AND 100),
		description        TEXT NOT NULL DEFAULT '',
		task_type          TEXT NOT NULL,
		difficulty         TEXT NOT NULL,
		reward_type        TEXT NOT NULL,
		reward_value       NUMERIC(12, 2) NOT NULL CHECK (reward_value > 0),
		reward_description TEXT NOT NULL,
		image_url          TEXT,
		puzzle_config      JSONB,
		puzzle_solution    INTEGER[],
		status             TEXT NOT NULL DEFAULT 'draft',
		is_featured        BOOLEAN NOT NULL DEFAULT false,
		featured_until     TIMESTAMPTZ,
		attempt_count      INTEGER NOT NULL DEFAULT 0,
		conversion_count   INTEGER NOT NULL DEFAULT 0,
		expires_at         TIMESTAMPTZ,
		created_at         TIMESTAMPTZ NOT NULL,
		updated_at         TIMESTAMPTZ NOT NULL,
		CONSTRAINT tasks_active_has_image CHECK (status <> 'active' OR image_url IS NOT NULL)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ` + constraintTaskTitle + ` ON tasks (company_id, lower(title))`,
	`CREATE INDEX IF NOT EXISTS tasks_status_created_idx ON tasks (status, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS tasks_featured_idx ON tasks (featured_until) WHERE is_featured`,
	`CREATE TABLE IF NOT EXISTS task_attempts (
		id                    TEXT PRIMARY KEY,
		task_id               TEXT NOT NULL REFERENCES tasks (id) ON DELETE CASCADE,
		user_id               TEXT NOT NULL,
		started_at            TIMESTAMPTZ NOT NULL,
		completed_at          TIMESTAMPTZ NOT NULL,
		time_taken_seconds    INTEGER NOT NULL CHECK (time_taken_seconds > 0),
		is_successful         BOOLEAN NOT NULL,
		score                 INTEGER NOT NULL DEFAULT 0,
		difficulty_multiplier DOUBLE PRECISION NOT NULL DEFAULT 1.0 CHECK (difficulty_multiplier BETWEEN 0.5 AND 3.0),
		CONSTRAINT ` + constraintAttemptOnce + ` UNIQUE (task_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS rewards (
		id                 TEXT PRIMARY KEY,
		user_id            TEXT NOT NULL,
		task_id            TEXT NOT NULL REFERENCES tasks (id) ON DELETE CASCADE,
		reward_code        TEXT NOT NULL,
		reward_type        TEXT NOT NULL,
		reward_value       NUMERIC(12, 2) NOT NULL,
		reward_description TEXT NOT NULL,
		is_redeemed        BOOLEAN NOT NULL DEFAULT false,
		redeemed_at        TIMESTAMPTZ,
		expires_at         TIMESTAMPTZ NOT NULL,
		created_at         TIMESTAMPTZ NOT NULL,
		CONSTRAINT ` + constraintRewardCode + ` UNIQUE (reward_code),
		CONSTRAINT ` + constraintRewardOnce + ` UNIQUE (user_id, task_id)
	)`,
	`CREATE INDEX IF NOT EXISTS rewards_user_created_idx ON rewards (user_id, created_at DESC)`,
}

// EnsureSchema creates the tables and unique indexes the repositories rely on.
func EnsureSchema(ctx context.Context, q db.Querier) error {
	for i, stmt := range schema {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i, err)
		}
	}
	return nil
}
