package polling

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PaymentStatusFunc checks the current payment status for a booking code.
type PaymentStatusFunc func(ctx context.Context, bookingCode string) (string, error)

// paymentTerminal is the set of statuses that end polling.
var paymentTerminal = map[string]struct{}{
	"paid":     {},
	"failed":   {},
	"refunded": {},
}

const defaultPaymentInterval = 2 * time.Second

// PaymentPollerConfig configures a PaymentPoller. OnSuccess fires on every
// successful tick, not only on change; consumers must tolerate repeated
// identical statuses.
type PaymentPollerConfig struct {
	Interval  time.Duration
	OnSuccess func(status string)
	OnError   func(err error)
	Logger    *zap.Logger
}

// PaymentPoller polls a payment-status endpoint on a fixed interval until
// the status reaches a terminal state. Transient errors surface through
// OnError and Err but never stop the polling loop.
type PaymentPoller struct {
	bookingCode string
	check       PaymentStatusFunc
	interval    time.Duration
	onSuccess   func(string)
	onError     func(error)
	logger      *zap.Logger

	mu     sync.Mutex
	status string
	err    error
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPaymentPoller(bookingCode string, check PaymentStatusFunc, cfg PaymentPollerConfig) *PaymentPoller {
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultPaymentInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentPoller{
		bookingCode: bookingCode,
		check:       check,
		interval:    interval,
		onSuccess:   cfg.OnSuccess,
		onError:     cfg.OnError,
		logger:      logger,
	}
}

// Start begins polling with an immediate first poll. Starting an already
// running poller is a no-op; restarting after Stop polls immediately again.
func (p *PaymentPoller) Start(ctx context.Context) {
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

// Stop halts polling and waits for the loop to exit. Safe to call more
// than once.
func (p *PaymentPoller) Stop() {
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

// Status returns the last successfully observed payment status.
func (p *PaymentPoller) Status() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Err returns the last poll error, cleared by the next successful poll.
func (p *PaymentPoller) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *PaymentPoller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if terminal := p.poll(ctx); terminal {
			p.mu.Lock()
			if p.cancel != nil {
				p.cancel()
				p.cancel = nil
				p.done = nil
			}
			p.mu.Unlock()
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (p *PaymentPoller) poll(ctx context.Context) bool {
	status, err := p.check(ctx, p.bookingCode)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.mu.Lock()
		p.err = err
		p.mu.Unlock()
		p.logger.Warn("payment status poll failed",
			zap.String("bookingCode", p.bookingCode), zap.Error(err))
		if p.onError != nil {
			p.onError(err)
		}
		return false
	}

	p.mu.Lock()
	p.status = status
	p.err = nil
	p.mu.Unlock()

	if p.onSuccess != nil {
		p.onSuccess(status)
	}

	_, terminal := paymentTerminal[status]
	if terminal {
		p.logger.Info("payment reached terminal status",
			zap.String("bookingCode", p.bookingCode), zap.String("status", status))
	}
	return terminal
}
