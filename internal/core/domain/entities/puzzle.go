package entities

import "time"

type PuzzlePiece struct {
	Index int    `json:"index"`
	Hash  string `json:"hash"`
}

// PuzzleConfig is the generated puzzle of a task. The correct solution is kept
// in an unexported field: it has no JSON representation and leaves the core
// only through Solution(), which the persistence adapters use.
type PuzzleConfig struct {
	GridSize       int           `json:"grid_size"`
	Pieces         []PuzzlePiece `json:"pieces"`
	ShuffledOrder  []int         `json:"shuffled_order"`
	DifficultySeed Difficulty    `json:"difficulty_seed"`
	ImageKey       string        `json:"image_key"`
	CreatedAt      time.Time     `json:"created_at"`
	ExpiresAt      time.Time     `json:"expires_at"`

	solution []int
}

// NewPuzzleConfig builds a config around a solution. It is used both by the
// generator and by repositories restoring a stored row.
func NewPuzzleConfig(gridSize int, pieces []PuzzlePiece, shuffled []int, seed Difficulty, imageKey string, createdAt, expiresAt time.Time, solution []int) *PuzzleConfig {
	return &PuzzleConfig{
		GridSize:       gridSize,
		Pieces:         append([]PuzzlePiece(nil), pieces...),
		ShuffledOrder:  append([]int(nil), shuffled...),
		DifficultySeed: seed,
		ImageKey:       imageKey,
		CreatedAt:      createdAt,
		ExpiresAt:      expiresAt,
		solution:       append([]int(nil), solution...),
	}
}

// Side is the number of rows (and columns) of the grid.
func (c *PuzzleConfig) Side() int {
	switch c.GridSize {
	case 9:
		return 3
	case 16:
		return 4
	case 25:
		return 5
	default:
		return 0
	}
}

func (c *PuzzleConfig) Solution() []int {
	return append([]int(nil), c.solution...)
}

func (c *PuzzleConfig) ArtifactKeys() []string {
	if c.ImageKey == "" {
		return nil
	}
	return []string{c.ImageKey}
}

// PublicPuzzle is the redacted projection shown to players. Pieces are listed
// in presentation order and identified by content hash.
type PublicPuzzle struct {
	GridSize       int           `json:"grid_size"`
	Side           int           `json:"side"`
	Pieces         []PuzzlePiece `json:"pieces"`
	ShuffledOrder  []int         `json:"shuffled_order"`
	DifficultySeed Difficulty    `json:"difficulty_seed"`
	CreatedAt      time.Time     `json:"created_at"`
	ExpiresAt      time.Time     `json:"expires_at"`
}

func (c *PuzzleConfig) Public() PublicPuzzle {
	byIndex := make(map[int]PuzzlePiece, len(c.Pieces))
	for _, p := range c.Pieces {
		byIndex[p.Index] = p
	}
	pieces := make([]PuzzlePiece, 0, len(c.ShuffledOrder))
	for _, idx := range c.ShuffledOrder {
		if p, ok := byIndex[idx]; ok {
			pieces = append(pieces, p)
		}
	}
	return PublicPuzzle{
		GridSize:       c.GridSize,
		Side:           c.Side(),
		Pieces:         pieces,
		ShuffledOrder:  append([]int(nil), c.ShuffledOrder...),
		DifficultySeed: c.DifficultySeed,
		CreatedAt:      c.CreatedAt,
		ExpiresAt:      c.ExpiresAt,
	}
}
