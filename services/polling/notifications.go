package polling

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"thuere/models"
)

// NotificationFetcher returns the current notification page plus the
// unread counter.
type NotificationFetcher func(ctx context.Context) (*models.NotificationList, error)

// NotificationSink receives notifications detected as new.
type NotificationSink interface {
	NotifyNew(n models.Notification) error
}

const defaultNotificationInterval = 10 * time.Second

// NotificationPollerConfig configures a NotificationPoller.
type NotificationPollerConfig struct {
	Interval time.Duration
	Logger   *zap.Logger
}

// NotificationPoller polls the notification endpoint and pushes newly
// arrived unread notifications to a sink. New arrivals are detected by an
// unread-count increase; entries already reported are de-duplicated by id
// so the same notification is never pushed twice.
type NotificationPoller struct {
	fetch    NotificationFetcher
	sink     NotificationSink
	interval time.Duration
	logger   *zap.Logger

	mu         sync.Mutex
	lastUnread int
	reported   map[int]struct{}
	cancel     context.CancelFunc
	done       chan struct{}
}

func NewNotificationPoller(fetch NotificationFetcher, sink NotificationSink, cfg NotificationPollerConfig) *NotificationPoller {
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultNotificationInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationPoller{
		fetch:    fetch,
		sink:     sink,
		interval: interval,
		logger:   logger,
		reported: make(map[int]struct{}),
	}
}

// Start begins polling; the first poll only primes the unread baseline so
// pre-existing notifications are not re-announced.
func (p *NotificationPoller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.cancel != nil {
		p.mu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	done := p.done
	p.mu.Unlock()

	go p.loop(pollCtx, done)
}

// Stop halts polling. Safe to call more than once.
func (p *NotificationPoller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	done := p.done
	p.cancel = nil
	p.done = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (p *NotificationPoller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	p.poll(ctx, true)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx, false)
		}
	}
}

func (p *NotificationPoller) poll(ctx context.Context, prime bool) {
	list, err := p.fetch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Warn("notification poll failed", zap.Error(err))
		}
		return
	}

	p.mu.Lock()
	previous := p.lastUnread
	p.lastUnread = list.UnreadCount
	var fresh *models.Notification
	if !prime && list.UnreadCount > previous {
		for i := range list.Data {
			n := list.Data[i]
			if n.IsRead != "N" {
				continue
			}
			if _, seen := p.reported[n.NotificationID]; seen {
				continue
			}
			p.reported[n.NotificationID] = struct{}{}
			fresh = &n
			break
		}
	}
	if prime {
		for _, n := range list.Data {
			if n.IsRead == "N" {
				p.reported[n.NotificationID] = struct{}{}
			}
		}
	}
	p.mu.Unlock()

	if fresh != nil && p.sink != nil {
		if err := p.sink.NotifyNew(*fresh); err != nil {
			p.logger.Warn("notification sink failed",
				zap.Int("notificationId", fresh.NotificationID), zap.Error(err))
		}
	}
}
