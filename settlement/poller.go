// Package settlement waits for payments to reach a terminal status.
package settlement

import (
	"context"
	"fmt"
	"time"

	"github.com/vitwit/tonpay/logger"
	"github.com/vitwit/tonpay/metrics"
	"github.com/vitwit/tonpay/types"
)

// Fetcher returns the current state of a payment.
type Fetcher interface {
	GetPayment(ctx context.Context, paymentID string) (*types.PaymentResponse, error)
}

// Poller repeatedly fetches a payment until it settles or a deadline passes.
// Polling uses a fixed interval with no backoff or jitter.
type Poller struct {
	fetcher  Fetcher
	interval time.Duration
	timeout  time.Duration

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	logger  logger.Logger
	metrics metrics.Recorder
}

type Option func(*Poller)

func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithTimeout sets the deadline used when WaitForSettlement is called without one.
func WithTimeout(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithClock replaces the time source and the sleeper, mainly for tests.
func WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(p *Poller) {
		if now != nil {
			p.now = now
		}
		if sleep != nil {
			p.sleep = sleep
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(p *Poller) {
		p.logger = logger.OrNoop(l)
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(p *Poller) {
		p.metrics = metrics.OrNoop(r)
	}
}

// NewPoller creates a poller with a 2s interval and a 300s default timeout.
func NewPoller(fetcher Fetcher, opts ...Option) *Poller {
	p := &Poller{
		fetcher:  fetcher,
		interval: types.DefaultPollInterval,
		timeout:  types.DefaultPollTimeout,
		now:      time.Now,
		sleep:    sleepContext,
		logger:   logger.NoopLogger{},
		metrics:  metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WaitForSettlement returns the payment as soon as a terminal status is observed.
// A timeout <= 0 uses the poller's default. When the deadline passes first it fails
// with types.ErrPollTimeout and the last non-terminal snapshot is discarded.
// Fetch errors are returned unchanged.
func (p *Poller) WaitForSettlement(ctx context.Context, paymentID string, timeout time.Duration) (*types.PaymentResponse, error) {
	if timeout <= 0 {
		timeout = p.timeout
	}

	start := p.now()
	polls := 0

	for p.now().Sub(start) < timeout {
		payment, err := p.fetcher.GetPayment(ctx, paymentID)
		polls++
		p.metrics.IncCounter(metrics.PollTotal, map[string]string{"operation": "wait_for_settlement"})
		if err != nil {
			p.logger.Error("failed to fetch payment while polling", logger.Err(err, map[string]any{
				"payment_id": paymentID,
				"polls":      polls,
			}))
			return nil, err
		}

		if payment.Payload.CurrentStatus.IsTerminal() {
			p.metrics.ObserveLatency(metrics.SettleLatency, p.now().Sub(start), map[string]string{
				"operation": "wait_for_settlement",
				"outcome":   string(payment.Payload.CurrentStatus),
			})
			p.logger.Info("payment settled", map[string]any{
				"payment_id": paymentID,
				"status":     payment.Payload.CurrentStatus.String(),
				"polls":      polls,
			})
			return payment, nil
		}

		if err := p.sleep(ctx, p.interval); err != nil {
			return nil, err
		}
	}

	err := &types.Error{
		Code:    types.CodePollTimeout,
		Message: fmt.Sprintf("payment timeout: %s not settled after %s", paymentID, timeout),
	}
	p.metrics.ObserveLatency(metrics.SettleLatency, p.now().Sub(start), map[string]string{
		"operation": "wait_for_settlement",
		"outcome":   "timeout",
	})
	p.logger.Warn("payment did not settle before deadline", logger.Err(err, map[string]any{
		"payment_id": paymentID,
		"polls":      polls,
	}))
	return nil, err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
