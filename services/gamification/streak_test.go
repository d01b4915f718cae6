package gamification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 30, 0, 0, time.UTC)
}

func TestNextStreakFirstActivity(t *testing.T) {
	got := NextStreak(StreakState{}, day(2026, time.March, 1))

	assert.Equal(t, 1, got.Streak)
	assert.Equal(t, 1, got.LongestStreak)
	require.NotNil(t, got.LastActivityDate)
	assert.Equal(t, 1, got.LastActivityDate.Day())
}

func TestNextStreakSameDayIdempotent(t *testing.T) {
	last := day(2026, time.March, 1)
	state := StreakState{Streak: 4, LongestStreak: 9, LastActivityDate: &last}

	// A second activity later the same day changes nothing.
	got := NextStreak(state, day(2026, time.March, 1).Add(8*time.Hour))

	assert.Equal(t, 4, got.Streak)
	assert.Equal(t, 9, got.LongestStreak)
	assert.Equal(t, last, *got.LastActivityDate)
}

func TestNextStreakConsecutiveDay(t *testing.T) {
	last := day(2026, time.March, 1)
	state := StreakState{Streak: 4, LongestStreak: 9, LastActivityDate: &last}

	got := NextStreak(state, day(2026, time.March, 2))

	assert.Equal(t, 5, got.Streak)
	assert.Equal(t, 9, got.LongestStreak)
	assert.Equal(t, 2, got.LastActivityDate.Day())
}

func TestNextStreakGapResets(t *testing.T) {
	last := day(2026, time.March, 1)
	state := StreakState{Streak: 8, LongestStreak: 8, LastActivityDate: &last}

	got := NextStreak(state, day(2026, time.March, 5))

	assert.Equal(t, 1, got.Streak)
	// The record survives the reset.
	assert.Equal(t, 8, got.LongestStreak)
}

func TestNextStreakNewRecord(t *testing.T) {
	last := day(2026, time.March, 1)
	state := StreakState{Streak: 9, LongestStreak: 9, LastActivityDate: &last}

	got := NextStreak(state, day(2026, time.March, 2))

	assert.Equal(t, 10, got.Streak)
	assert.Equal(t, 10, got.LongestStreak)
}

func TestNextStreakCalendarDayNotElapsedHours(t *testing.T) {
	// 11 PM followed by 1 AM the next day is consecutive even though only
	// two hours elapsed.
	last := time.Date(2026, time.March, 1, 23, 0, 0, 0, time.UTC)
	state := StreakState{Streak: 2, LongestStreak: 5, LastActivityDate: &last}

	got := NextStreak(state, time.Date(2026, time.March, 2, 1, 0, 0, 0, time.UTC))

	assert.Equal(t, 3, got.Streak)
}

func TestNextStreakMonthBoundary(t *testing.T) {
	last := day(2026, time.February, 28)
	state := StreakState{Streak: 6, LongestStreak: 6, LastActivityDate: &last}

	got := NextStreak(state, day(2026, time.March, 1))

	assert.Equal(t, 7, got.Streak)
	assert.Equal(t, 7, got.LongestStreak)
}

func TestNextStreakSequence(t *testing.T) {
	state := StreakState{Streak: 0, LongestStreak: 8}

	// Five consecutive days after a long break.
	for i := 1; i <= 5; i++ {
		state = NextStreak(state, day(2026, time.April, i))
	}

	assert.Equal(t, 5, state.Streak)
	assert.Equal(t, 8, state.LongestStreak)
}
