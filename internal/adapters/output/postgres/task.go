package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"puzzle-rewards/internal/core/domain/entities"
	"puzzle-rewards/internal/core/domain/exceptions"
	"puzzle-rewards/internal/infrastructure/db"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const taskColumns = `t.id, t.company_id, t.title, t.description, t.task_type, t.difficulty,
	t.reward_type, t.reward_value, t.reward_description, t.image_url, t.puzzle_config,
	t.puzzle_solution, t.status, t.is_featured, t.featured_until, t.attempt_count,
	t.conversion_count, t.expires_at, t.created_at, t.updated_at`

type TaskRepository struct {
	db  db.Querier
	log *zap.Logger
}

func NewTaskRepository(db db.Querier, log *zap.Logger) *TaskRepository {
	if db == nil {
		log.Fatal("database querier is nil")
	}
	if log == nil {
		log.Fatal("logger is nil")
	}
	return &TaskRepository{
		db:  db,
		log: log,
	}
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*entities.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks t WHERE t.id = $1`
	return r.getOne(ctx, query, id)
}

func (r *TaskRepository) GetForUpdate(ctx context.Context, id string) (*entities.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks t WHERE t.id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

func (r *TaskRepository) getOne(ctx context.Context, query, id string) (*entities.Task, error) {
	task, err := scanTask(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, exceptions.NotFound(exceptions.ResourceTask, id)
		}
		r.log.Error("failed to get task", zap.String("task_id", id), zap.Error(err))
		return nil, err
	}
	return task, nil
}

func (r *TaskRepository) ExistsTitle(ctx context.Context, companyID, title, excludeID string) (bool, error) {
	query := `SELECT EXISTS(
		SELECT 1 FROM tasks WHERE company_id = $1 AND lower(title) = lower($2) AND id <> $3)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, companyID, title, excludeID).Scan(&exists); err != nil {
		r.log.Error("failed to check task title", zap.Error(err))
		return false, err
	}
	return exists, nil
}

func (r *TaskRepository) Create(ctx context.Context, task *entities.Task) error {
	config, solution, err := encodePuzzle(task.Puzzle)
	if err != nil {
		return err
	}
	query := `INSERT INTO tasks (id, company_id, title, description, task_type, difficulty,
		reward_type, reward_value, reward_description, image_url, puzzle_config, puzzle_solution,
		status, is_featured, featured_until, attempt_count, conversion_count, expires_at,
		created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`

	_, err = r.db.Exec(ctx, query,
		task.ID,
		task.CompanyID,
		task.Title,
		task.Description,
		task.Type,
		task.Difficulty,
		task.RewardType,
		task.RewardValue,
		task.RewardDescription,
		nullString(task.ImageURL),
		config,
		solution,
		task.Status,
		task.IsFeatured,
		task.FeaturedUntil,
		task.AttemptCount,
		task.ConversionCount,
		task.ExpiresAt,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		if name, ok := uniqueConstraint(err); ok {
			return titleConflict(task, name)
		}
		r.log.Error("failed to create task", zap.String("task_id", task.ID), zap.Error(err))
		return err
	}
	return nil
}

// Update writes the company-editable fields and the puzzle. Status, featuring
// and counters have their own conditional statements.
func (r *TaskRepository) Update(ctx context.Context, task *entities.Task) error {
	config, solution, err := encodePuzzle(task.Puzzle)
	if err != nil {
		return err
	}
	query := `UPDATE tasks
		SET title = $2, description = $3, task_type = $4, difficulty = $5, reward_type = $6,
			reward_value = $7, reward_description = $8, image_url = $9, puzzle_config = $10,
			puzzle_solution = $11, expires_at = $12, updated_at = $13
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Type,
		task.Difficulty,
		task.RewardType,
		task.RewardValue,
		task.RewardDescription,
		nullString(task.ImageURL),
		config,
		solution,
		task.ExpiresAt,
		task.UpdatedAt,
	)
	if err != nil {
		if name, ok := uniqueConstraint(err); ok {
			return titleConflict(task, name)
		}
		r.log.Error("failed to update task", zap.String("task_id", task.ID), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return exceptions.NotFound(exceptions.ResourceTask, task.ID)
	}
	return nil
}

func (r *TaskRepository) TransitionStatus(ctx context.Context, id string, from, to entities.TaskStatus, updatedAt time.Time) (bool, error) {
	query := `UPDATE tasks SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`
	tag, err := r.db.Exec(ctx, query, id, from, to, updatedAt)
	if err != nil {
		r.log.Error("failed to transition task status", zap.String("task_id", id), zap.Error(err))
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, r.mustExist(ctx, id)
	}
	return true, nil
}

func (r *TaskRepository) SetFeatured(ctx context.Context, id string, until time.Time, updatedAt time.Time) (bool, error) {
	query := `UPDATE tasks SET is_featured = true, featured_until = $2, updated_at = $3
		WHERE id = $1 AND status = 'active'`
	tag, err := r.db.Exec(ctx, query, id, until, updatedAt)
	if err != nil {
		r.log.Error("failed to feature task", zap.String("task_id", id), zap.Error(err))
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, r.mustExist(ctx, id)
	}
	return true, nil
}

func (r *TaskRepository) IncrementCounters(ctx context.Context, id string, successful bool) error {
	query := `UPDATE tasks
		SET attempt_count = attempt_count + 1,
			conversion_count = conversion_count + CASE WHEN $2 THEN 1 ELSE 0 END
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, successful)
	if err != nil {
		r.log.Error("failed to increment task counters", zap.String("task_id", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return exceptions.NotFound(exceptions.ResourceTask, id)
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		r.log.Error("failed to delete task", zap.String("task_id", id), zap.Error(err))
		return err
	}
	if tag.RowsAffected() == 0 {
		return exceptions.NotFound(exceptions.ResourceTask, id)
	}
	return nil
}

func (r *TaskRepository) List(ctx context.Context, filter entities.TaskFilter, now time.Time) ([]*entities.Task, int, error) {
	q := buildListQuery(filter, now)

	var total int
	if err := r.db.QueryRow(ctx, q.count, q.args...).Scan(&total); err != nil {
		r.log.Error("failed to count tasks", zap.Error(err))
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, q.page, q.pageArgs...)
	if err != nil {
		r.log.Error("failed to list tasks", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	tasks := make([]*entities.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			r.log.Error("failed to scan task row", zap.Error(err))
			return nil, 0, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		r.log.Error("failed to iterate task rows", zap.Error(err))
		return nil, 0, err
	}

	return tasks, total, nil
}

func (r *TaskRepository) mustExist(ctx context.Context, id string) error {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM tasks WHERE id = $1)`, id).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return exceptions.NotFound(exceptions.ResourceTask, id)
	}
	return nil
}

func scanTask(row pgx.Row) (*entities.Task, error) {
	var (
		task     entities.Task
		imageURL *string
		config   []byte
		solution []int
	)
	if err := row.Scan(
		&task.ID,
		&task.CompanyID,
		&task.Title,
		&task.Description,
		&task.Type,
		&task.Difficulty,
		&task.RewardType,
		&task.RewardValue,
		&task.RewardDescription,
		&imageURL,
		&config,
		&solution,
		&task.Status,
		&task.IsFeatured,
		&task.FeaturedUntil,
		&task.AttemptCount,
		&task.ConversionCount,
		&task.ExpiresAt,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if imageURL != nil {
		task.ImageURL = *imageURL
	}
	if len(config) > 0 {
		puzzle, err := decodePuzzle(config, solution)
		if err != nil {
			return nil, fmt.Errorf("task %s: %w", task.ID, err)
		}
		task.Puzzle = puzzle
	}
	return &task, nil
}

// encodePuzzle splits a config into its JSON document and the solution array
// stored in its own column.
func encodePuzzle(p *entities.PuzzleConfig) (any, any, error) {
	if p == nil {
		return nil, nil, nil
	}
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, nil, fmt.Errorf("encode puzzle config: %w", err)
	}
	return raw, p.Solution(), nil
}

func decodePuzzle(raw []byte, solution []int) (*entities.PuzzleConfig, error) {
	var stored entities.PuzzleConfig
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("decode puzzle config: %w", err)
	}
	return entities.NewPuzzleConfig(
		stored.GridSize,
		stored.Pieces,
		stored.ShuffledOrder,
		stored.DifficultySeed,
		stored.ImageKey,
		stored.CreatedAt,
		stored.ExpiresAt,
		solution,
	), nil
}

func titleConflict(task *entities.Task, constraint string) error {
	if constraint == constraintTaskTitle {
		return exceptions.Conflict(exceptions.ResourceTask, task.ID, "title %q already used by this company", task.Title)
	}
	return exceptions.Conflict(exceptions.ResourceTask, task.ID, "task already exists")
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
