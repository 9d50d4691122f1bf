package mock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vitwit/tonpay/clients"
	"github.com/vitwit/tonpay/types"
	"github.com/vitwit/tonpay/utils"
)

var ErrPaymentNotFound = errors.New("payment not found")

// Mock implements clients.PaymentService in memory for testing purposes.
type Mock struct {
	mu       sync.Mutex
	payments map[string]*types.Payment
	scripts  map[string][]types.PaymentStatus
	config   Config

	creates int
	gets    int

	// Err, when set, is returned by every call.
	Err error
}

var _ clients.PaymentService = (*Mock)(nil)

type Config struct {
	ChainID int64

	// Rate converts the requested amount into TON. Zero means 1:1.
	Rate string

	// DepositAddresses assigned to every new payment.
	DepositAddresses types.AssetValues

	// Lifetime of a new payment.
	Expiry time.Duration
}

func New(config Config) *Mock {
	if config.ChainID == 0 {
		config.ChainID = types.ChainIDTestnet
	}
	if config.Expiry == 0 {
		config.Expiry = 15 * time.Minute
	}
	return &Mock{
		payments: make(map[string]*types.Payment),
		scripts:  make(map[string][]types.PaymentStatus),
		config:   config,
	}
}

func (m *Mock) CreatePayment(ctx context.Context, req types.CreatePaymentRequest) (*types.PaymentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.creates++
	if m.Err != nil {
		return nil, m.Err
	}

	amount, err := utils.ValidateAmount(req.Amount)
	if err != nil {
		return nil, types.NewServiceError(400, err.Error(), nil)
	}
	tonAmount := amount.String()
	if m.config.Rate != "" {
		rate, err := utils.ValidateAmount(m.config.Rate)
		if err != nil {
			return nil, types.NewServiceError(500, err.Error(), nil)
		}
		tonAmount = amount.Mul(*rate).String()
	}

	now := time.Now().UTC()
	p := &types.Payment{
		PaymentID:        uuid.NewString(),
		AmountInUSD:      amount.StringFixed(2),
		AmountInCrypto:   types.AssetValues{TON: &tonAmount},
		DepositAddresses: m.config.DepositAddresses,
		Merchant:         "mock",
		ChainID:          m.config.ChainID,
		CurrentStatus:    types.StatusCreated,
		CreatedAt:        now.Format(time.RFC3339),
		Expires:          now.Add(m.config.Expiry).Format(time.RFC3339),
	}
	m.payments[p.PaymentID] = p

	return &types.PaymentResponse{Status: 200, Message: "Payment created", Payload: *p}, nil
}

// GetPayment returns the stored payment, advancing its scripted status if one is set.
func (m *Mock) GetPayment(ctx context.Context, paymentID string) (*types.PaymentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gets++
	if m.Err != nil {
		return nil, m.Err
	}

	p, ok := m.payments[paymentID]
	if !ok {
		return nil, types.NewServiceError(404, ErrPaymentNotFound.Error(), ErrPaymentNotFound)
	}

	if script := m.scripts[paymentID]; len(script) > 0 {
		p.CurrentStatus = script[0]
		m.scripts[paymentID] = script[1:]
	}

	return &types.PaymentResponse{Status: 200, Message: "Payment found", Payload: *p}, nil
}

// Put stores payment as-is, replacing any payment with the same id.
func (m *Mock) Put(payment types.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := payment
	m.payments[p.PaymentID] = &p
}

// Script queues statuses returned by successive GetPayment calls; the last one sticks.
func (m *Mock) Script(paymentID string, statuses ...types.PaymentStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.scripts[paymentID] = append(m.scripts[paymentID], statuses...)
}

// Calls returns the number of create and get calls made so far.
func (m *Mock) Calls() (creates, gets int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.creates, m.gets
}
