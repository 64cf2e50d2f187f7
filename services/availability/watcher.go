package availability

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"thuere/models"
)

// watcherIdleTTL is how long an unobserved field/date keeps its scheduler.
const watcherIdleTTL = 10 * time.Minute

// Watcher keeps one HoldExpiryScheduler per recently served (field, date)
// so availability is re-fetched just after held courts are due to expire,
// instead of polling continuously.
type Watcher struct {
	mu      sync.Mutex
	entries map[string]*watchEntry
	refresh func(fieldCode, date string)
	logger  *zap.Logger
}

type watchEntry struct {
	sched    *HoldExpiryScheduler
	lastSeen time.Time
}

func NewWatcher(refresh func(fieldCode, date string), logger *zap.Logger) *Watcher {
	return &Watcher{
		entries: make(map[string]*watchEntry),
		refresh: refresh,
		logger:  logger,
	}
}

// Observe feeds the latest slot set for a field/date into its scheduler,
// creating one on first sight and evicting idle entries along the way.
func (w *Watcher) Observe(fieldCode, date string, slots []models.RawSlot) {
	key := fieldCode + "|" + date

	w.mu.Lock()
	entry, ok := w.entries[key]
	if !ok {
		fc, d := fieldCode, date
		entry = &watchEntry{
			sched: NewHoldExpiryScheduler(func() { w.refresh(fc, d) }, w.logger),
		}
		w.entries[key] = entry
	}
	entry.lastSeen = time.Now()

	for k, e := range w.entries {
		if k == key {
			continue
		}
		if _, pending := e.sched.NextRefresh(); !pending && time.Since(e.lastSeen) > watcherIdleTTL {
			e.sched.Stop()
			delete(w.entries, k)
		}
	}
	w.mu.Unlock()

	entry.sched.Observe(slots)
}

// NextRefresh reports the pending refresh target for a field/date, if any.
func (w *Watcher) NextRefresh(fieldCode, date string) (time.Time, bool) {
	w.mu.Lock()
	entry, ok := w.entries[fieldCode+"|"+date]
	w.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}
	return entry.sched.NextRefresh()
}

// Stop cancels every scheduler. Called on shutdown.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for k, e := range w.entries {
		e.sched.Stop()
		delete(w.entries, k)
	}
}
