package entities

import (
	"math"
	"testing"
	"time"

	"puzzle-rewards/internal/core/domain/exceptions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAttemptRoundsTimeTaken(t *testing.T) {
	done := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	a, err := NewAttempt("a1", "t1", "u1", done, 250, true, 120, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, a.TimeTakenSeconds)
	assert.Equal(t, DefaultDifficultyMultiplier, a.DifficultyMultiplier)

	a, err = NewAttempt("a1", "t1", "u1", done, 45_001, true, 142, 1.5)
	require.NoError(t, err)
	assert.Equal(t, 46, a.TimeTakenSeconds)
	assert.True(t, a.StartedAt.Equal(done.Add(-45_001*time.Millisecond)))
}

func TestNewAttemptRejectsOutOfRangeElapsed(t *testing.T) {
	done := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, ms := range []int64{-1, MaxElapsedMs + 1, 3_000_000_000_000, math.MaxInt64} {
		_, err := NewAttempt("a1", "t1", "u1", done, ms, false, 0, 1)
		require.ErrorIs(t, err, exceptions.ErrValidation, "elapsed %d", ms)
		var de *exceptions.Error
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "elapsed_ms", de.Field)
	}

	a, err := NewAttempt("a1", "t1", "u1", done, MaxElapsedMs, false, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 86_400, a.TimeTakenSeconds)
	assert.True(t, a.StartedAt.Before(a.CompletedAt))
}
