package puzzle

import (
	"time"

	"puzzle-rewards/internal/core/domain/exceptions"
)

const (
	BaseScore           = 100
	MaxTimeBonus        = 50
	DefaultMaxSolveTime = 300 * time.Second
)

type Score struct {
	IsCorrect bool
	Score     int
	BaseScore int
	TimeBonus int
	ElapsedMs int64
}

// Validator compares submitted orderings to stored solutions. It does no I/O.
type Validator struct {
	maxTime time.Duration
}

func NewValidator(maxTime time.Duration) Validator {
	if maxTime <= 0 {
		maxTime = DefaultMaxSolveTime
	}
	return Validator{maxTime: maxTime}
}

func (v Validator) MaxTime() time.Duration { return v.maxTime }

// Validate requires submitted to be a rearrangement of solution. Only an
// exact sequence match is correct; there is no partial credit.
func (v Validator) Validate(submitted, solution []int, elapsedMs int64) (Score, error) {
	if elapsedMs < 0 {
		return Score{}, exceptions.Validation("elapsed_ms", "must not be negative")
	}
	if len(solution) == 0 {
		return Score{}, exceptions.Validation("solution", "puzzle has no stored solution")
	}
	if len(submitted) != len(solution) {
		return Score{}, exceptions.Validation("order", "expected %d pieces, got %d", len(solution), len(submitted))
	}
	counts := make(map[int]int, len(solution))
	for _, idx := range solution {
		counts[idx]++
	}
	for _, idx := range submitted {
		counts[idx]--
		if counts[idx] < 0 {
			return Score{}, exceptions.Validation("order", "piece index %d is not part of this puzzle", idx)
		}
	}

	for i := range solution {
		if submitted[i] != solution[i] {
			return Score{ElapsedMs: elapsedMs}, nil
		}
	}
	bonus := TimeBonus(elapsedMs, v.maxTime)
	return Score{
		IsCorrect: true,
		Score:     BaseScore + bonus,
		BaseScore: BaseScore,
		TimeBonus: bonus,
		ElapsedMs: elapsedMs,
	}, nil
}

// TimeBonus is floor(50 * max(0, (max - elapsed) / max)), computed in integer
// milliseconds so it is exact and non-increasing in elapsed.
func TimeBonus(elapsedMs int64, maxTime time.Duration) int {
	maxMs := maxTime.Milliseconds()
	if maxMs <= 0 || elapsedMs >= maxMs {
		return 0
	}
	if elapsedMs < 0 {
		elapsedMs = 0
	}
	return int(MaxTimeBonus * (maxMs - elapsedMs) / maxMs)
}
