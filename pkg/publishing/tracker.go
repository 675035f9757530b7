package publishing

import (
	"sync"
	"time"
)

// CheckProgress is a point-in-time view of the check schedule
type CheckProgress struct {
	LastCheckAt    *time.Time
	NextCheckAt    *time.Time
	CheckCount     int
	CheckCountdown int // Seconds until the next scheduled check
}

// CheckTracker records when checks ran and when the next one is due
type CheckTracker struct {
	mu       sync.RWMutex
	progress CheckProgress
	now      func() time.Time
}

func NewCheckTracker(now func() time.Time) *CheckTracker {
	if now == nil {
		now = time.Now
	}
	return &CheckTracker{now: now}
}

func (ct *CheckTracker) GetProgress() CheckProgress {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return ct.progress
}

func (ct *CheckTracker) SetNextCheck(nextCheckAt time.Time) {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	ct.progress.NextCheckAt = &nextCheckAt
	ct.progress.CheckCountdown = ct.countdown(nextCheckAt)
}

func (ct *CheckTracker) ClearNextCheck() {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	ct.progress.NextCheckAt = nil
	ct.progress.CheckCountdown = 0
}

func (ct *CheckTracker) SetCheckCompleted() {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	now := ct.now()
	ct.progress.LastCheckAt = &now
	ct.progress.CheckCount++
}

// UpdateCheckCountdown refreshes the countdown; the TUI calls it once per tick
func (ct *CheckTracker) UpdateCheckCountdown() {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	if ct.progress.NextCheckAt != nil {
		ct.progress.CheckCountdown = ct.countdown(*ct.progress.NextCheckAt)
	}
}

func (ct *CheckTracker) countdown(at time.Time) int {
	seconds := int(at.Sub(ct.now()).Seconds())
	if seconds < 0 {
		return 0
	}
	return seconds
}
