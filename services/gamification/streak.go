package gamification

import "time"

// StreakState is the streak-relevant slice of a student row.
type StreakState struct {
	Streak           int
	LongestStreak    int
	LastActivityDate *time.Time
}

// NextStreak applies one qualifying activity on the given day and returns
// the new state. Rules key strictly on calendar-day equality, never on
// elapsed hours:
//   - same day as the last activity: no change (idempotent)
//   - day immediately after the last activity: streak extends by one
//   - first-ever activity or a gap of two or more days: streak restarts at 1
//
// LongestStreak never regresses and LastActivityDate always moves to today.
func NextStreak(state StreakState, today time.Time) StreakState {
	next := state

	switch {
	case state.LastActivityDate != nil && sameDay(*state.LastActivityDate, today):
		return state
	case state.LastActivityDate != nil && sameDay(*state.LastActivityDate, today.AddDate(0, 0, -1)):
		next.Streak = state.Streak + 1
	default:
		next.Streak = 1
	}

	if next.Streak > next.LongestStreak {
		next.LongestStreak = next.Streak
	}

	day := today
	next.LastActivityDate = &day
	return next
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
