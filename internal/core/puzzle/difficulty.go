package puzzle

import (
	"errors"
	"fmt"

	"puzzle-rewards/internal/core/domain/entities"
)

const (
	easyDiversity   = 0.1
	mediumDiversity = 0.3
)

// ColorDiversity is the unique-colour ratio of each piece averaged over all
// pieces. It is a coarse proxy for how hard an image is to reassemble.
func ColorDiversity(pieces []Piece) (float64, error) {
	if len(pieces) == 0 {
		return 0, errors.New("no pieces")
	}
	var total float64
	for _, p := range pieces {
		pixels := len(p.Pix) / 4
		if pixels == 0 {
			return 0, fmt.Errorf("piece %d has no pixels", p.Index)
		}
		colors := make(map[uint32]struct{}, pixels/4)
		for i := 0; i+3 < len(p.Pix); i += 4 {
			colors[uint32(p.Pix[i])<<16|uint32(p.Pix[i+1])<<8|uint32(p.Pix[i+2])] = struct{}{}
		}
		total += float64(len(colors)) / float64(pixels)
	}
	return total / float64(len(pieces)), nil
}

// EstimateDifficulty buckets ColorDiversity. It is a hint only and never
// fails: any problem yields medium.
func EstimateDifficulty(pieces []Piece) (d entities.Difficulty) {
	defer func() {
		if recover() != nil {
			d = entities.DifficultyMedium
		}
	}()
	score, err := ColorDiversity(pieces)
	if err != nil {
		return entities.DifficultyMedium
	}
	switch {
	case score < easyDiversity:
		return entities.DifficultyEasy
	case score < mediumDiversity:
		return entities.DifficultyMedium
	default:
		return entities.DifficultyHard
	}
}
