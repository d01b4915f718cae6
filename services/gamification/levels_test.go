package gamification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelForXP(t *testing.T) {
	cases := []struct {
		xp   int
		want string
	}{
		{0, LevelExplorer},
		{1, LevelExplorer},
		{499, LevelExplorer},
		{500, LevelLearner},
		{1499, LevelLearner},
		{1500, LevelScholar},
		{3499, LevelScholar},
		{3500, LevelAchiever},
		{6999, LevelAchiever},
		{7000, LevelMastermind},
		{11999, LevelMastermind},
		{12000, LevelVirtuoso},
		{19999, LevelVirtuoso},
		{20000, LevelGenius},
		{1000000, LevelGenius},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, LevelForXP(tc.xp), "xp=%d", tc.xp)
	}
}

func TestLevelForXPNegative(t *testing.T) {
	// Penalties can push a stored total below zero; the level floors at Explorer.
	assert.Equal(t, LevelExplorer, LevelForXP(-1))
	assert.Equal(t, LevelExplorer, LevelForXP(-50000))
}

func TestLevelForXPMonotonic(t *testing.T) {
	prev := LevelRank(LevelForXP(0))
	for xp := 1; xp <= 25000; xp += 7 {
		rank := LevelRank(LevelForXP(xp))
		if rank < prev {
			t.Fatalf("level rank regressed at xp=%d", xp)
		}
		prev = rank
	}
}

func TestLevelRank(t *testing.T) {
	assert.Equal(t, 0, LevelRank(LevelExplorer))
	assert.Equal(t, 6, LevelRank(LevelGenius))
	assert.Equal(t, -1, LevelRank("Wizard"))
}
