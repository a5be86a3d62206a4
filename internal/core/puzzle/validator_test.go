package puzzle

import (
	"testing"
	"time"

	"puzzle-rewards/internal/core/domain/exceptions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identity(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestValidateCorrectAt45Seconds(t *testing.T) {
	v := NewValidator(0)
	got, err := v.Validate(identity(9), identity(9), 45_000)
	require.NoError(t, err)

	assert.True(t, got.IsCorrect)
	assert.Equal(t, 100, got.BaseScore)
	assert.Equal(t, 42, got.TimeBonus)
	assert.Equal(t, 142, got.Score)
}

func TestValidateWrongOrderScoresZero(t *testing.T) {
	v := NewValidator(0)
	submitted := identity(16)
	submitted[0], submitted[1] = submitted[1], submitted[0]

	got, err := v.Validate(submitted, identity(16), 10_000)
	require.NoError(t, err)
	assert.False(t, got.IsCorrect)
	assert.Zero(t, got.Score)
	assert.Zero(t, got.TimeBonus)
}

func TestValidateRejectsMalformedSubmissions(t *testing.T) {
	v := NewValidator(0)
	cases := map[string]struct {
		submitted []int
		elapsed   int64
	}{
		"too short":    {submitted: identity(8), elapsed: 1000},
		"too long":     {submitted: identity(10), elapsed: 1000},
		"duplicate":    {submitted: []int{0, 0, 2, 3, 4, 5, 6, 7, 8}, elapsed: 1000},
		"out of range": {submitted: []int{0, 1, 2, 3, 4, 5, 6, 7, 9}, elapsed: 1000},
		"negative":     {submitted: identity(9), elapsed: -1},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Validate(tc.submitted, identity(9), tc.elapsed)
			assert.ErrorIs(t, err, exceptions.ErrValidation)
		})
	}
}

func TestTimeBonusBounds(t *testing.T) {
	maxTime := 300 * time.Second
	assert.Equal(t, 50, TimeBonus(0, maxTime))
	assert.Equal(t, 0, TimeBonus(300_000, maxTime))
	assert.Equal(t, 0, TimeBonus(900_000, maxTime))

	prev := TimeBonus(0, maxTime)
	for ms := int64(0); ms <= 310_000; ms += 1_250 {
		b := TimeBonus(ms, maxTime)
		assert.GreaterOrEqual(t, b, 0)
		assert.LessOrEqual(t, b, 50)
		assert.LessOrEqual(t, b, prev, "bonus grew at %dms", ms)
		prev = b
	}
}

func TestCorrectScoreRange(t *testing.T) {
	v := NewValidator(0)
	for _, ms := range []int64{0, 1, 59_999, 299_999, 300_000, 3_600_000} {
		got, err := v.Validate(identity(25), identity(25), ms)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got.Score, 100)
		assert.LessOrEqual(t, got.Score, 150)
	}
}
