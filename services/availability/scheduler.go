package availability

import (
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"thuere/models"
)

const (
	// backoffFloor/backoffCeil bound the doubling applied when the same
	// hold expiry keeps being observed across refreshes.
	backoffFloor = time.Second
	backoffCeil  = 60 * time.Second

	// firePadding pushes the timer past the exact expiry instant so we do
	// not race the upstream's own expiry clock.
	firePadding = 200 * time.Millisecond

	// retargetWindow keeps an existing timer whose target is close enough
	// to the newly computed one.
	retargetWindow = 250 * time.Millisecond

	// sameExpiryWindow decides whether two observed expiries are "the same
	// one", meaning the previous refresh resolved nothing.
	sameExpiryWindow = time.Second

	// maxTimerDelay clamps delays to what 32-bit timer APIs can carry.
	maxTimerDelay = time.Duration(math.MaxInt32) * time.Millisecond
)

// NextHoldExpiryAt returns the soonest still-future resolvable hold expiry
// across the slot set.
func NextHoldExpiryAt(slots []models.RawSlot, now time.Time) (time.Time, bool) {
	var next time.Time
	for _, s := range slots {
		expiry, ok := resolveHoldExpiry(s.HoldExpiresAt, s.HoldExpiresAtTs)
		if !ok || !expiry.After(now) {
			continue
		}
		if next.IsZero() || expiry.Before(next) {
			next = expiry
		}
	}
	return next, !next.IsZero()
}

// NextHoldExpiry is NextHoldExpiryAt against the wall clock.
func NextHoldExpiry(slots []models.RawSlot) (time.Time, bool) {
	return NextHoldExpiryAt(slots, time.Now())
}

// HoldExpiryScheduler owns at most one pending timer that fires shortly
// after the soonest upcoming hold expiry in the observed slot set, so
// availability can be re-fetched right when held courts may free up.
type HoldExpiryScheduler struct {
	mu          sync.Mutex
	timer       *time.Timer
	target      time.Time
	backoff     time.Duration
	lastExpiry  time.Time
	lastDelay   time.Duration
	onFire      func()
	now         func() time.Time
	logger      *zap.Logger
}

func NewHoldExpiryScheduler(onFire func(), logger *zap.Logger) *HoldExpiryScheduler {
	return &HoldExpiryScheduler{
		backoff: backoffFloor,
		onFire:  onFire,
		now:     time.Now,
		logger:  logger,
	}
}

// Observe recomputes the schedule from the currently visible slot set.
// Call it whenever that set changes.
func (s *HoldExpiryScheduler) Observe(slots []models.RawSlot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	next, ok := NextHoldExpiryAt(slots, now)
	if !ok {
		s.cancelLocked()
		s.backoff = backoffFloor
		s.lastExpiry = time.Time{}
		return
	}

	// The same expiry showing up again means the previous refresh did not
	// resolve it; back off instead of hammering the upstream.
	if !s.lastExpiry.IsZero() && absDuration(next.Sub(s.lastExpiry)) <= sameExpiryWindow {
		s.backoff *= 2
		if s.backoff > backoffCeil {
			s.backoff = backoffCeil
		}
	} else {
		s.backoff = backoffFloor
	}
	s.lastExpiry = next

	delay := next.Sub(now) + firePadding
	if delay < s.backoff {
		delay = s.backoff
	}
	if delay > maxTimerDelay {
		delay = maxTimerDelay
	}
	target := now.Add(delay)

	if s.timer != nil && absDuration(target.Sub(s.target)) <= retargetWindow {
		return
	}

	s.cancelLocked()
	s.target = target
	s.lastDelay = delay
	s.timer = time.AfterFunc(delay, s.fire)
	s.logger.Debug("hold-expiry refresh scheduled",
		zap.Time("expiry", next),
		zap.Duration("delay", delay),
		zap.Duration("backoff", s.backoff))
}

// NextRefresh returns the pending timer's target, if one is armed.
func (s *HoldExpiryScheduler) NextRefresh() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer == nil {
		return time.Time{}, false
	}
	return s.target, true
}

// Stop cancels any pending timer and resets the backoff state.
func (s *HoldExpiryScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	s.backoff = backoffFloor
	s.lastExpiry = time.Time{}
}

func (s *HoldExpiryScheduler) fire() {
	s.mu.Lock()
	s.timer = nil
	s.target = time.Time{}
	cb := s.onFire
	s.mu.Unlock()
	if cb != nil {
		cb()
	}
}

func (s *HoldExpiryScheduler) cancelLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.target = time.Time{}
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
