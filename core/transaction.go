package core

import (
	"time"

	"github.com/vitwit/tonpay/types"
	"github.com/vitwit/tonpay/verification"
)

// BuildTransaction turns a payment record into a transaction request for asset.
// The request is valid for types.TransactionValidity from now and carries the
// payment id as its payload.
func BuildTransaction(payment *types.Payment, asset types.Asset, now time.Time) (*types.TransactionRequest, error) {
	target, err := verification.Verify(payment, asset)
	if err != nil {
		return nil, err
	}
	return NewTransaction(target, payment.PaymentID, now), nil
}

// NewTransaction builds the single-message transaction paying target.
func NewTransaction(target *verification.Target, paymentID string, now time.Time) *types.TransactionRequest {
	return &types.TransactionRequest{
		ValidUntil: now.Add(types.TransactionValidity).Unix(),
		Network:    target.Chain,
		Asset:      target.Asset,
		Messages: []types.TransactionMessage{
			{
				Address: target.Address,
				Amount:  target.Amount.String(),
				Payload: paymentID,
			},
		},
	}
}
