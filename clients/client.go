package clients

import (
	"context"

	"github.com/vitwit/tonpay/types"
)

// PaymentService is the remote payment-processing API.
type PaymentService interface {
	CreatePayment(ctx context.Context, req types.CreatePaymentRequest) (*types.PaymentResponse, error)
	GetPayment(ctx context.Context, paymentID string) (*types.PaymentResponse, error)
}

// Endpoints of the payment service, relative to the configured API URL.
const (
	CreatePaymentPath = "v1/create_payment"
	CheckPaymentPath  = "v1/check_payment"
)

// Operation names used in logs and metrics.
const (
	opCreatePayment = "create_payment"
	opGetPayment    = "get_payment"
)
