// Package core holds the payment logic shared by the client-side and server-side facades.
package core

import (
	"context"
	"time"

	"github.com/vitwit/tonpay/clients"
	"github.com/vitwit/tonpay/logger"
	"github.com/vitwit/tonpay/types"
)

// CreateParams describes a payment to create, or an existing one to pay.
type CreateParams struct {
	// Amount requested when a new payment is created.
	Amount string

	// When set, the existing payment is fetched instead of creating a new one.
	PaymentID string

	// Asset to build the transaction for. Defaults to the core's asset.
	Asset types.Asset
}

// PaymentWithTransaction pairs a payment with the transaction that fulfils it.
type PaymentWithTransaction struct {
	Payment     *types.PaymentResponse    `json:"payment"`
	Transaction *types.TransactionRequest `json:"transaction"`
}

// Core wraps the payment service and builds transactions from payment records.
type Core struct {
	service clients.PaymentService
	asset   types.Asset
	now     func() time.Time
	logger  logger.Logger
}

type Option func(*Core)

func WithAsset(a types.Asset) Option {
	return func(c *Core) {
		if a != "" {
			c.asset = a
		}
	}
}

func WithNow(now func() time.Time) Option {
	return func(c *Core) {
		if now != nil {
			c.now = now
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(c *Core) {
		c.logger = logger.OrNoop(l)
	}
}

func New(service clients.PaymentService, opts ...Option) *Core {
	c := &Core{
		service: service,
		asset:   types.AssetTON,
		now:     time.Now,
		logger:  logger.NoopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Service returns the underlying payment service.
func (c *Core) Service() clients.PaymentService {
	return c.service
}

// CreatePayment creates a new payment without building a transaction.
func (c *Core) CreatePayment(ctx context.Context, amount string) (*types.PaymentResponse, error) {
	return c.service.CreatePayment(ctx, types.CreatePaymentRequest{Amount: amount})
}

// GetPayment gets payment details by id.
func (c *Core) GetPayment(ctx context.Context, paymentID string) (*types.PaymentResponse, error) {
	return c.service.GetPayment(ctx, paymentID)
}

// CreatePaymentWithTransaction fetches params.PaymentID when set, or creates a new payment
// for params.Amount, and builds the transaction that pays it.
func (c *Core) CreatePaymentWithTransaction(ctx context.Context, params CreateParams) (*PaymentWithTransaction, error) {
	var (
		payment *types.PaymentResponse
		err     error
	)
	if params.PaymentID != "" {
		payment, err = c.GetPayment(ctx, params.PaymentID)
	} else {
		payment, err = c.CreatePayment(ctx, params.Amount)
	}
	if err != nil {
		return nil, err
	}

	asset := params.Asset
	if asset == "" {
		asset = c.asset
	}

	tx, err := BuildTransaction(&payment.Payload, asset, c.now())
	if err != nil {
		c.logger.Error("failed to build transaction", logger.Err(err, map[string]any{
			"payment_id": payment.Payload.PaymentID,
			"asset":      asset.String(),
		}))
		return nil, err
	}

	return &PaymentWithTransaction{
		Payment:     payment,
		Transaction: tx,
	}, nil
}
