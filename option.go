package tonpay

import (
	"time"

	"github.com/vitwit/tonpay/clients"
	"github.com/vitwit/tonpay/logger"
	"github.com/vitwit/tonpay/metrics"
)

type options struct {
	logger       logger.Logger
	metrics      metrics.Recorder
	service      clients.PaymentService
	pollInterval time.Duration
	autoConnect  bool
}

type Option func(*options)

func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(o *options) {
		o.metrics = r
	}
}

// WithPaymentService replaces the HTTP payment client, e.g. with clients/mock.
func WithPaymentService(s clients.PaymentService) Option {
	return func(o *options) {
		o.service = s
	}
}

// WithPollInterval overrides the interval used by WaitForPayment.
func WithPollInterval(d time.Duration) Option {
	return func(o *options) {
		o.pollInterval = d
	}
}

// WithAutoConnect controls whether SendTransaction opens the wallet modal when no wallet is connected.
func WithAutoConnect(enabled bool) Option {
	return func(o *options) {
		o.autoConnect = enabled
	}
}
