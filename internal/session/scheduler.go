package session

import (
	"sync"
	"time"

	"spotivr/pkg/logging"
)

// RefreshScheduler owns at most one pending renewal timer. Arm while a
// timer is outstanding is a no-op (single-flight guard, not a queue), and
// Disarm is idempotent. The fire callback runs on the timer goroutine
// after the scheduler has already disarmed itself.
type RefreshScheduler struct {
	mu    sync.Mutex
	timer *time.Timer
	fire  func(refreshToken string)
}

// NewRefreshScheduler creates a scheduler that invokes fire with the
// refresh token passed to Arm when the timer elapses.
func NewRefreshScheduler(fire func(refreshToken string)) *RefreshScheduler {
	return &RefreshScheduler{fire: fire}
}

// Arm schedules a single renewal attempt after delay. A negative delay
// (token already past its safety margin) fires immediately rather than
// being rejected. Calling Arm while a timer is pending does nothing.
func (s *RefreshScheduler) Arm(delay time.Duration, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		logging.Debug("Session", "Refresh timer already armed, ignoring")
		return
	}

	if delay < 0 {
		delay = 0
	}

	logging.Debug("Session", "Arming refresh timer (delay %s)", delay)
	s.timer = time.AfterFunc(delay, func() {
		s.Disarm()
		s.fire(refreshToken)
	})
}

// Disarm cancels the pending timer, if any.
func (s *RefreshScheduler) Disarm() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Armed reports whether a renewal timer is currently pending.
func (s *RefreshScheduler) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}
