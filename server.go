package tonpay

import (
	"context"
	"time"

	"github.com/vitwit/tonpay/core"
	"github.com/vitwit/tonpay/settlement"
	"github.com/vitwit/tonpay/types"
)

// Server is the server-side entry point. It creates payments and builds the transactions that pay
// them, leaving signing to the payer's wallet.
type Server struct {
	core   *core.Core
	poller *settlement.Poller
}

func NewServer(cfg *types.Config, opts ...Option) (*Server, error) {
	b, err := build(cfg, opts)
	if err != nil {
		return nil, err
	}
	return &Server{core: b.core, poller: b.poller}, nil
}

// CreatePaymentWithTransaction fetches params.PaymentID when set, or creates a payment for
// params.Amount, and returns it together with its transaction.
func (s *Server) CreatePaymentWithTransaction(ctx context.Context, params core.CreateParams) (*core.PaymentWithTransaction, error) {
	return s.core.CreatePaymentWithTransaction(ctx, params)
}

func (s *Server) GetPayment(ctx context.Context, paymentID string) (*types.PaymentResponse, error) {
	return s.core.GetPayment(ctx, paymentID)
}

func (s *Server) WaitForPayment(ctx context.Context, paymentID string, timeout time.Duration) (*types.PaymentResponse, error) {
	return s.poller.WaitForSettlement(ctx, paymentID, timeout)
}
