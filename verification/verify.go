// Package verification checks that a payment record carries everything needed to pay it.
package verification

import (
	"math/big"

	"github.com/vitwit/tonpay/types"
	"github.com/vitwit/tonpay/utils"
)

// Target is the resolved destination of a payment for one asset.
type Target struct {
	Asset   types.Asset
	Chain   types.Chain
	Address string

	// Amount in the asset's smallest unit.
	Amount *big.Int

	// Amount in whole units, normalised from Amount (e.g. "5.0" becomes "5").
	DisplayAmount string
}

// Verify resolves the deposit address, amount and network of payment for asset.
// Missing or malformed fields fail with types.ErrInvalidPayment, an unknown
// chain id with types.ErrUnsupportedChain.
func Verify(payment *types.Payment, asset types.Asset) (*Target, error) {
	if payment == nil {
		return nil, types.NewInvalidPayment("payment is nil")
	}
	if !asset.IsValid() {
		return nil, types.NewInvalidPayment("unsupported asset %q", asset)
	}
	if payment.PaymentID == "" {
		return nil, types.NewInvalidPayment("payment id is missing")
	}

	amount, ok := payment.AmountInCrypto.Get(asset)
	if !ok {
		return nil, types.NewInvalidPayment("no %s amount for payment %s", asset, payment.PaymentID)
	}
	address, ok := payment.DepositAddresses.Get(asset)
	if !ok {
		return nil, types.NewInvalidPayment("no %s deposit address for payment %s", asset, payment.PaymentID)
	}

	chain, err := types.ChainFromID(payment.ChainID)
	if err != nil {
		return nil, err
	}

	if err := utils.ValidateAddressForAsset(address, asset); err != nil {
		return nil, types.NewInvalidPayment("%v", err)
	}
	if asset.Family() == types.FamilyEVM {
		address = utils.NormalizeAddress(address)
	}

	units, err := utils.ToSmallestUnit(amount, asset)
	if err != nil {
		return nil, types.NewInvalidPayment("%v", err)
	}

	return &Target{
		Asset:         asset,
		Chain:         chain,
		Address:       address,
		Amount:        units,
		DisplayAmount: utils.FormatAmountFromBigInt(units, asset.Decimals()),
	}, nil
}

// IsPayable reports whether payment can still be paid, i.e. it has not settled.
func IsPayable(payment *types.Payment) bool {
	return payment != nil && !payment.CurrentStatus.IsTerminal()
}
