package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDifficulty(t *testing.T) {
	t.Run("ValidLabels", func(t *testing.T) {
		for _, label := range []string{"all", "very_easy", "easy", "medium", "hard", "very_hard"} {
			d, err := ParseDifficulty(label)
			assert.NoError(t, err)
			assert.Equal(t, Difficulty(label), d)
		}
	})

	t.Run("UnknownLabel", func(t *testing.T) {
		_, err := ParseDifficulty("very easy")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "very easy")
		assert.Contains(t, err.Error(), "very_easy")
	})

	t.Run("NoAliasing", func(t *testing.T) {
		easy := DifficultyEasy.Tiers()
		veryEasy := DifficultyVeryEasy.Tiers()

		for tier := range easy {
			_, overlap := veryEasy[tier]
			assert.False(t, overlap, "easy and very_easy must select disjoint tiers")
		}
	})

	t.Run("AllMeansNoFilter", func(t *testing.T) {
		assert.Nil(t, DifficultyAll.Tiers())
	})
}
