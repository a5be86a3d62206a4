package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "puzzle_rewards"

var (
	PuzzlesGeneratedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "puzzles_generated_total",
			Help:      "Puzzles generated, labeled by grid size and outcome.",
		},
		[]string{"grid_size", "outcome"},
	)

	PuzzleGenerationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "puzzle_generation_seconds",
			Help:      "Time spent decoding, slicing, hashing and storing a puzzle image.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"grid_size"},
	)

	TaskTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_transitions_total",
			Help:      "Task lifecycle operations, labeled by operation.",
		},
		[]string{"operation"},
	)

	AttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attempts_total",
			Help:      "Attempt submissions, labeled by outcome (success, failure, conflict, rejected).",
		},
		[]string{"outcome"},
	)

	RewardsIssuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rewards_issued_total",
			Help:      "Rewards issued, labeled by reward type.",
		},
		[]string{"reward_type"},
	)

	RewardsRedeemedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rewards_redeemed_total",
			Help:      "Rewards redeemed, labeled by reward type.",
		},
		[]string{"reward_type"},
	)

	RewardCodeCollisionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reward_code_collisions_total",
			Help:      "Generated reward codes that were already taken and had to be retried.",
		},
	)

	CacheRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "Read-through cache lookups, labeled by result (hit, miss, stale, error).",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		PuzzlesGeneratedTotal,
		PuzzleGenerationSeconds,
		TaskTransitionsTotal,
		AttemptsTotal,
		RewardsIssuedTotal,
		RewardsRedeemedTotal,
		RewardCodeCollisionsTotal,
		CacheRequestsTotal,
	)
}
