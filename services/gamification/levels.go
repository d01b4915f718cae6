package gamification

// Level labels in ascending order
const (
	LevelExplorer   = "Explorer"
	LevelLearner    = "Learner"
	LevelScholar    = "Scholar"
	LevelAchiever   = "Achiever"
	LevelMastermind = "Mastermind"
	LevelVirtuoso   = "Virtuoso"
	LevelGenius     = "Genius"
)

type levelThreshold struct {
	minXP int
	label string
}

// Checked highest-first by LevelForXP
var levelThresholds = []levelThreshold{
	{20000, LevelGenius},
	{12000, LevelVirtuoso},
	{7000, LevelMastermind},
	{3500, LevelAchiever},
	{1500, LevelScholar},
	{500, LevelLearner},
	{0, LevelExplorer},
}

// LevelForXP computes the level label for an xp total. Pure and total:
// negative xp (penalty transactions can drive the stored total below zero)
// is treated as zero, so the floor level is always Explorer.
func LevelForXP(xp int) string {
	if xp < 0 {
		xp = 0
	}
	for _, t := range levelThresholds {
		if xp >= t.minXP {
			return t.label
		}
	}
	return LevelExplorer
}

// LevelRank returns the ordinal position of a level label, Explorer being 0.
// Unknown labels rank below Explorer.
func LevelRank(label string) int {
	for i, t := range levelThresholds {
		if t.label == label {
			return len(levelThresholds) - 1 - i
		}
	}
	return -1
}
