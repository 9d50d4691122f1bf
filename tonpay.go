// Package tonpay is a client SDK for creating crypto payments against a payment service,
// paying them from a connected wallet and waiting for them to settle.
package tonpay

import (
	"context"
	"time"

	"github.com/vitwit/tonpay/clients"
	"github.com/vitwit/tonpay/core"
	"github.com/vitwit/tonpay/logger"
	"github.com/vitwit/tonpay/metrics"
	"github.com/vitwit/tonpay/settlement"
	"github.com/vitwit/tonpay/types"
	"github.com/vitwit/tonpay/utils"
	"github.com/vitwit/tonpay/wallet"
)

// SendParams selects the payment to pay. When PaymentID is empty a new payment is created for Amount.
type SendParams struct {
	Amount    string
	PaymentID string

	// Asset to pay with. Defaults to the configured asset.
	Asset types.Asset
}

// Payments is the client-side entry point. It pairs the payment service with one wallet session.
type Payments struct {
	config      types.Config
	autoConnect bool
	core        *core.Core
	session     *wallet.Session
	poller      *settlement.Poller
	logger      logger.Logger
	metrics     metrics.Recorder
}

// New creates a Payments instance. The provider owns the wallet connector and may be shared by
// several instances. Init must be called before any wallet operation.
func New(cfg *types.Config, provider *wallet.Provider, opts ...Option) (*Payments, error) {
	b, err := build(cfg, opts)
	if err != nil {
		return nil, err
	}

	session := wallet.NewSession(provider,
		wallet.WithAutoConnect(b.opts.autoConnect),
		wallet.WithLogger(b.logger),
		wallet.WithMetrics(b.metrics),
	)

	return &Payments{
		config:      b.config,
		autoConnect: b.opts.autoConnect,
		core:        b.core,
		session:     session,
		poller:      b.poller,
		logger:      b.logger,
		metrics:     b.metrics,
	}, nil
}

// Init initializes the wallet connector. A failed Init may be retried.
func (p *Payments) Init(ctx context.Context) error {
	return p.session.Init(ctx)
}

// State returns the wallet session state.
func (p *Payments) State() wallet.State {
	return p.session.State()
}

// InitiatePayment creates a payment for amount. It fails with types.ErrNotInitialized until Init succeeds.
func (p *Payments) InitiatePayment(ctx context.Context, amount string) (*types.PaymentResponse, error) {
	if p.session.State() != wallet.StateReady {
		return nil, types.ErrNotInitialized
	}

	resp, err := p.core.CreatePayment(ctx, amount)
	if err != nil {
		return nil, err
	}

	p.logger.Info("payment initiated", map[string]any{
		"payment_id": resp.Payload.PaymentID,
		"amount":     amount,
	})
	return resp, nil
}

func (p *Payments) ConnectWallet(ctx context.Context) error {
	return p.session.Connect(ctx)
}

// SendTransaction pays an existing payment, or a new one for params.Amount, from the connected wallet.
// When the connector reports that the wallet went away and auto-connect is enabled, it reconnects
// and retries once.
func (p *Payments) SendTransaction(ctx context.Context, params SendParams) (*types.TxResult, error) {
	if p.session.State() != wallet.StateReady {
		return nil, types.ErrNotInitialized
	}

	asset := params.Asset
	if asset == "" {
		asset = p.config.Asset
	}

	var (
		payment *types.PaymentResponse
		err     error
	)
	if params.PaymentID != "" {
		payment, err = p.core.GetPayment(ctx, params.PaymentID)
	} else {
		payment, err = p.core.CreatePayment(ctx, params.Amount)
	}
	if err != nil {
		return nil, err
	}

	hash, err := p.session.SendTransaction(ctx, &payment.Payload, asset)
	if err != nil && p.autoConnect && wallet.IsNotConnected(err) {
		p.logger.Warn("wallet disconnected, reconnecting", map[string]any{
			"payment_id": payment.Payload.PaymentID,
		})
		if cerr := p.session.Connect(ctx); cerr != nil {
			return nil, cerr
		}
		hash, err = p.session.SendTransaction(ctx, &payment.Payload, asset)
	}
	if err != nil {
		return nil, err
	}

	return &types.TxResult{TxHash: hash, Payment: payment}, nil
}

func (p *Payments) GetPayment(ctx context.Context, paymentID string) (*types.PaymentResponse, error) {
	return p.core.GetPayment(ctx, paymentID)
}

// WaitForPayment polls until the payment settles. timeout <= 0 uses the configured poll timeout.
func (p *Payments) WaitForPayment(ctx context.Context, paymentID string, timeout time.Duration) (*types.PaymentResponse, error) {
	return p.poller.WaitForSettlement(ctx, paymentID, timeout)
}

func (p *Payments) IsConnected() bool {
	return p.session.IsConnected()
}

func (p *Payments) Disconnect(ctx context.Context) error {
	return p.session.Disconnect(ctx)
}

// Close releases the wallet session and flushes the logger.
func (p *Payments) Close() {
	p.session.Close()
	if s, ok := p.logger.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}
}

// Version information
const (
	Version    = "1.0.0"
	APIVersion = "v1"
)

// GetVersion returns version information
func GetVersion() map[string]interface{} {
	return map[string]interface{}{
		"library_version": Version,
		"api_version":     APIVersion,
		"supported_assets": []string{
			types.AssetTON.String(), types.AssetBTC.String(),
			types.AssetETH.String(), types.AssetBNB.String(),
		},
		"supported_networks": []string{
			types.ChainMainnet.String(), types.ChainTestnet.String(),
		},
	}
}

// built holds the pieces shared by Payments and Server.
type built struct {
	config  types.Config
	opts    options
	core    *core.Core
	poller  *settlement.Poller
	logger  logger.Logger
	metrics metrics.Recorder
}

func build(cfg *types.Config, opts []Option) (*built, error) {
	if cfg == nil {
		return nil, &types.Error{Code: types.CodeConfigError, Message: "config is required"}
	}

	o := options{autoConnect: true}
	for _, opt := range opts {
		opt(&o)
	}

	c := cfg.WithDefaults()
	if o.pollInterval > 0 {
		c.PollInterval = o.pollInterval
	}

	log := o.logger
	if log == nil {
		log = logger.NewZapLogger(c.LogLevel)
	}

	rec := o.metrics
	if rec == nil && c.EnableMetrics {
		prom, err := metrics.NewPrometheusRecorder(nil)
		if err != nil {
			return nil, &types.Error{Code: types.CodeConfigError, Message: "failed to register metrics", Err: err}
		}
		rec = prom
	}
	rec = metrics.OrNoop(rec)

	service := o.service
	if service == nil {
		if err := utils.ValidateConfig(&c); err != nil {
			return nil, err
		}
		client, err := clients.NewPaymentClientFromConfig(c,
			clients.WithLogger(log),
			clients.WithMetrics(rec),
		)
		if err != nil {
			return nil, err
		}
		service = client
	}

	return &built{
		config: c,
		opts:   o,
		core:   core.New(service, core.WithAsset(c.Asset), core.WithLogger(log)),
		poller: settlement.NewPoller(service,
			settlement.WithInterval(c.PollInterval),
			settlement.WithTimeout(c.PollTimeout),
			settlement.WithLogger(log),
			settlement.WithMetrics(rec),
		),
		logger:  log,
		metrics: rec,
	}, nil
}
