package dataset

import (
	"fmt"
	"sort"
	"strings"
)

// Difficulty labels the DGP difficulty filter. The mapping onto tier strings
// is strict: "easy" never matches "very_easy", and DifficultyAll matches every
// tier.
type Difficulty string

const (
	DifficultyAll      Difficulty = "all"
	DifficultyVeryEasy Difficulty = "very_easy"
	DifficultyEasy     Difficulty = "easy"
	DifficultyMedium   Difficulty = "medium"
	DifficultyHard     Difficulty = "hard"
	DifficultyVeryHard Difficulty = "very_hard"
)

var validDifficulties = map[Difficulty]struct{}{
	DifficultyAll:      {},
	DifficultyVeryEasy: {},
	DifficultyEasy:     {},
	DifficultyMedium:   {},
	DifficultyHard:     {},
	DifficultyVeryHard: {},
}

// ParseDifficulty validates a difficulty label.
func ParseDifficulty(label string) (Difficulty, error) {
	d := Difficulty(strings.TrimSpace(label))
	if _, ok := validDifficulties[d]; !ok {
		allowed := make([]string, 0, len(validDifficulties))
		for v := range validDifficulties {
			allowed = append(allowed, string(v))
		}
		sort.Strings(allowed)
		return "", fmt.Errorf("invalid difficulty %q, allowed values: %s", label, strings.Join(allowed, ", "))
	}
	return d, nil
}

// Tiers returns the tier set this label selects, or nil for DifficultyAll
// (meaning no filter).
func (d Difficulty) Tiers() map[string]struct{} {
	if d == DifficultyAll {
		return nil
	}
	return map[string]struct{}{string(d): {}}
}
