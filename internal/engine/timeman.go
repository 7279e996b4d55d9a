package engine

import (
	"time"
)

// Time budget bounds for a clocked move.
const (
	minMoveTime   = 50 * time.Millisecond
	expectedMoves = 30
)

// TimeManager decides how long a search may run.
type TimeManager struct {
	budget    time.Duration
	startTime time.Time
}

// NewTimeManager creates a new time manager.
func NewTimeManager() *TimeManager {
	return &TimeManager{}
}

// Init starts the clock for a search under limits. A zero budget means the
// search is bounded by depth or cancellation only.
func (tm *TimeManager) Init(limits SearchLimits) {
	tm.startTime = time.Now()
	tm.budget = limits.MoveTime

	if limits.Infinite {
		tm.budget = 0
		return
	}
	if limits.TimeLeft <= 0 {
		return
	}

	// Spread the remaining time over the moves we still expect to play,
	// capped by the difficulty's move time.
	share := limits.TimeLeft / expectedMoves
	if tm.budget == 0 || share < tm.budget {
		tm.budget = share
	}
	if tm.budget < minMoveTime {
		tm.budget = minMoveTime
	}
}

// Deadline returns when the search must stop, or the zero time.
func (tm *TimeManager) Deadline() time.Time {
	if tm.budget == 0 {
		return time.Time{}
	}
	return tm.startTime.Add(tm.budget)
}

// Budget returns the time allotted to this search.
func (tm *TimeManager) Budget() time.Duration {
	return tm.budget
}

// Elapsed returns the time elapsed since search started.
func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.startTime)
}

// ShouldStartIteration reports whether another deepening iteration is
// likely to finish in time. Each iteration costs at least as much as all
// earlier ones together.
func (tm *TimeManager) ShouldStartIteration() bool {
	if tm.budget == 0 {
		return true
	}
	return tm.Elapsed() < tm.budget/2
}
