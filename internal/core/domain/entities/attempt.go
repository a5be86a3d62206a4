package entities

import (
	"time"

	"puzzle-rewards/internal/core/domain/exceptions"
)

const (
	DefaultDifficultyMultiplier = 1.0
	MinDifficultyMultiplier     = 0.5
	MaxDifficultyMultiplier     = 3.0

	// MaxElapsedMs caps a single solve at one day.
	MaxElapsedMs int64 = 24 * 60 * 60 * 1000
)

// Attempt is immutable once recorded. (TaskID, UserID) is unique.
type Attempt struct {
	ID                   string    `json:"id"`
	TaskID               string    `json:"task_id"`
	UserID               string    `json:"user_id"`
	StartedAt            time.Time `json:"started_at"`
	CompletedAt          time.Time `json:"completed_at"`
	TimeTakenSeconds     int       `json:"time_taken_seconds"`
	IsSuccessful         bool      `json:"is_successful"`
	Score                int       `json:"score"`
	DifficultyMultiplier float64   `json:"difficulty_multiplier"`
}

// AttemptSubmission is what a player sends for a task.
type AttemptSubmission struct {
	Order     []int
	ElapsedMs int64
}

func NewAttempt(id, taskID, userID string, completedAt time.Time, elapsedMs int64, successful bool, score int, multiplier float64) (*Attempt, error) {
	if elapsedMs < 0 {
		return nil, exceptions.Validation("elapsed_ms", "must not be negative")
	}
	if elapsedMs > MaxElapsedMs {
		return nil, exceptions.Validation("elapsed_ms", "must not exceed %d", MaxElapsedMs)
	}
	if multiplier == 0 {
		multiplier = DefaultDifficultyMultiplier
	}
	if multiplier < MinDifficultyMultiplier || multiplier > MaxDifficultyMultiplier {
		return nil, exceptions.Validation("difficulty_multiplier", "must be between %.1f and %.1f", MinDifficultyMultiplier, MaxDifficultyMultiplier)
	}
	// time_taken_seconds is strictly positive; sub-second solves count as 1s.
	seconds := int((elapsedMs + 999) / 1000)
	if seconds < 1 {
		seconds = 1
	}
	return &Attempt{
		ID:                   id,
		TaskID:               taskID,
		UserID:               userID,
		StartedAt:            completedAt.Add(-time.Duration(elapsedMs) * time.Millisecond),
		CompletedAt:          completedAt,
		TimeTakenSeconds:     seconds,
		IsSuccessful:         successful,
		Score:                score,
		DifficultyMultiplier: multiplier,
	}, nil
}
