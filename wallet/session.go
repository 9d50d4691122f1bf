package wallet

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vitwit/tonpay/core"
	"github.com/vitwit/tonpay/logger"
	"github.com/vitwit/tonpay/metrics"
	"github.com/vitwit/tonpay/types"
	"github.com/vitwit/tonpay/verification"
)

// State of a Session.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateReady
	StateInitFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateInitFailed:
		return "init_failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Session tracks the connector lifecycle and the connected flag of one consumer.
type Session struct {
	provider *Provider

	mu        sync.Mutex
	state     State
	connected bool
	connector Connector
	initErr   error

	autoConnect bool
	now         func() time.Time
	logger      logger.Logger
	metrics     metrics.Recorder
}

type SessionOption func(*Session)

// WithAutoConnect makes SendTransaction open the connector modal when no wallet is connected.
func WithAutoConnect(enabled bool) SessionOption {
	return func(s *Session) {
		s.autoConnect = enabled
	}
}

func WithNow(now func() time.Time) SessionOption {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(l logger.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger.OrNoop(l)
	}
}

func WithMetrics(r metrics.Recorder) SessionOption {
	return func(s *Session) {
		s.metrics = metrics.OrNoop(r)
	}
}

func NewSession(provider *Provider, opts ...SessionOption) *Session {
	s := &Session{
		provider:    provider,
		state:       StateUninitialized,
		autoConnect: true,
		now:         time.Now,
		logger:      logger.NoopLogger{},
		metrics:     metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init obtains the connector and reads whether a wallet is already connected.
// Calling Init on a ready session is a no-op.
func (s *Session) Init(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateReady {
		s.mu.Unlock()
		return nil
	}
	s.state = StateInitializing
	s.mu.Unlock()

	c, err := s.initConnector(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.state = StateInitFailed
		s.connector = nil
		s.connected = false
		s.initErr = err
		s.logger.Error("failed to initialize wallet connector", logger.Err(err, nil))
		return err
	}

	s.connector = c.connector
	s.connected = c.connected
	s.initErr = nil
	s.state = StateReady
	s.logger.Info("wallet connector initialized", map[string]any{"connected": s.connected})
	return nil
}

type initResult struct {
	connector Connector
	connected bool
}

func (s *Session) initConnector(ctx context.Context) (initResult, error) {
	if s.provider == nil {
		return initResult{}, types.NewWalletError("no wallet provider configured", nil)
	}

	c, err := s.provider.Connector(ctx)
	if err != nil {
		return initResult{}, types.NewWalletError("failed to initialize wallet connector", err)
	}

	accounts, err := c.Wallets(ctx)
	if err != nil {
		return initResult{}, types.NewWalletError("failed to read connected wallets", err)
	}

	return initResult{connector: c, connected: len(accounts) > 0}, nil
}

// Connect opens the connector's wallet selection UI. Connector errors are returned unchanged.
func (s *Session) Connect(ctx context.Context) error {
	c, err := s.ready()
	if err != nil {
		return err
	}

	if err := c.OpenModal(ctx); err != nil {
		s.logger.Error("wallet connection failed", logger.Err(err, nil))
		return err
	}

	accounts, err := c.Wallets(ctx)
	if err != nil {
		s.logger.Error("wallet connection failed", logger.Err(err, nil))
		return err
	}

	s.mu.Lock()
	s.connected = len(accounts) > 0
	s.mu.Unlock()

	return nil
}

// SendTransaction builds the transaction for payment and asset and hands it to the connector.
// An unpayable or already settled record fails with types.ErrInvalidPayment or
// types.ErrUnsupportedChain before the connector is touched. The connector's result is
// returned as the transaction hash.
func (s *Session) SendTransaction(ctx context.Context, payment *types.Payment, asset types.Asset) (string, error) {
	c, err := s.ready()
	if err != nil {
		return "", err
	}

	target, err := verification.Verify(payment, asset)
	if err != nil {
		return "", err
	}
	if !verification.IsPayable(payment) {
		return "", types.NewInvalidPayment("payment %s is already %s", payment.PaymentID, payment.CurrentStatus)
	}
	tx := core.NewTransaction(target, payment.PaymentID, s.now())

	if !s.IsConnected() {
		if !s.autoConnect {
			return "", types.ErrWalletNotConnected
		}
		if err := s.Connect(ctx); err != nil {
			return "", err
		}
	}

	start := s.now()
	result, err := c.SendTransaction(ctx, tx)
	labels := map[string]string{"operation": "send_transaction", "outcome": "ok"}
	if err != nil {
		labels["outcome"] = "error"
		s.metrics.IncCounter(metrics.TransactionSent, labels)
		if IsNotConnected(err) {
			s.mu.Lock()
			s.connected = false
			s.mu.Unlock()
		}
		s.logger.Error("transaction failed", logger.Err(err, map[string]any{
			"payment_id": payment.PaymentID,
			"asset":      asset.String(),
		}))
		return "", err
	}
	if result == nil {
		err := types.NewWalletError("connector returned no transaction result", nil)
		labels["outcome"] = "error"
		s.metrics.IncCounter(metrics.TransactionSent, labels)
		s.logger.Error("transaction failed", logger.Err(err, map[string]any{
			"payment_id": payment.PaymentID,
			"asset":      asset.String(),
		}))
		return "", err
	}
	s.metrics.IncCounter(metrics.TransactionSent, labels)
	s.metrics.ObserveLatency(metrics.TransactionLatency, s.now().Sub(start), labels)

	s.logger.Info("transaction sent", map[string]any{
		"payment_id": payment.PaymentID,
		"asset":      asset.String(),
		"amount":     target.DisplayAmount,
		"network":    tx.Network.String(),
	})
	return result.BOC, nil
}

// Disconnect tears down the connected state. It is safe to call repeatedly.
func (s *Session) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	c := s.connector
	connected := s.connected
	s.connected = false
	s.mu.Unlock()

	if c == nil || !connected {
		return nil
	}

	if err := c.Disconnect(ctx); err != nil {
		s.logger.Error("wallet disconnect failed", logger.Err(err, nil))
		return err
	}
	return nil
}

// Close releases the session. The shared connector stays with its Provider.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.connector = nil
	s.connected = false
	s.state = StateUninitialized
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateReady && s.connected
}

// InitError returns the error of the last failed Init.
func (s *Session) InitError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initErr
}

func (s *Session) ready() (Connector, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady || s.connector == nil {
		return nil, types.ErrNotInitialized
	}
	return s.connector, nil
}
