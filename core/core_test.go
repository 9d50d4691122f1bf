package core_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitwit/tonpay/clients/mock"
	"github.com/vitwit/tonpay/core"
	"github.com/vitwit/tonpay/types"
)

const tonAddress = "0:ed1691307050047117b998b561d8de82d31fbf84910ced6eb5fc92e7485ef8a7"

func strPtr(s string) *string { return &s }

var fixedNow = time.Date(2024, 3, 21, 12, 0, 0, 0, time.UTC)

func newService() *mock.Mock {
	return mock.New(mock.Config{
		DepositAddresses: types.AssetValues{TON: strPtr(tonAddress)},
	})
}

func TestBuildTransaction(t *testing.T) {
	p := &types.Payment{
		PaymentID:        "123",
		AmountInCrypto:   types.AssetValues{TON: strPtr("1.5")},
		DepositAddresses: types.AssetValues{TON: strPtr(tonAddress)},
		ChainID:          types.ChainIDMainnet,
	}

	tx, err := core.BuildTransaction(p, types.AssetTON, fixedNow)
	require.NoError(t, err)

	assert.Equal(t, fixedNow.Unix()+600, tx.ValidUntil)
	assert.Equal(t, types.ChainMainnet, tx.Network)
	assert.Equal(t, types.AssetTON, tx.Asset)
	require.Len(t, tx.Messages, 1)
	assert.Equal(t, types.TransactionMessage{
		Address: tonAddress,
		Amount:  "1500000000",
		Payload: "123",
	}, tx.Messages[0])

	assert.False(t, tx.Expired(fixedNow.Add(599*time.Second)))
	assert.True(t, tx.Expired(fixedNow.Add(600*time.Second)))
}

func TestBuildTransaction_Errors(t *testing.T) {
	p := &types.Payment{
		PaymentID:        "123",
		AmountInCrypto:   types.AssetValues{TON: strPtr("1.5")},
		DepositAddresses: types.AssetValues{TON: nil},
		ChainID:          types.ChainIDMainnet,
	}
	_, err := core.BuildTransaction(p, types.AssetTON, fixedNow)
	assert.ErrorIs(t, err, types.ErrInvalidPayment)

	p.DepositAddresses.TON = strPtr(tonAddress)
	p.ChainID = 42
	_, err = core.BuildTransaction(p, types.AssetTON, fixedNow)
	assert.ErrorIs(t, err, types.ErrUnsupportedChain)
}

func TestCreatePaymentWithTransaction_New(t *testing.T) {
	svc := newService()
	c := core.New(svc, core.WithNow(func() time.Time { return fixedNow }))

	res, err := c.CreatePaymentWithTransaction(context.Background(), core.CreateParams{Amount: "2"})
	require.NoError(t, err)

	assert.Equal(t, types.StatusCreated, res.Payment.Payload.CurrentStatus)
	require.Len(t, res.Transaction.Messages, 1)
	assert.Equal(t, "2000000000", res.Transaction.Messages[0].Amount)
	assert.Equal(t, res.Payment.Payload.PaymentID, res.Transaction.Messages[0].Payload)
	assert.Equal(t, types.ChainTestnet, res.Transaction.Network)

	creates, gets := svc.Calls()
	assert.Equal(t, 1, creates)
	assert.Equal(t, 0, gets)
}

func TestCreatePaymentWithTransaction_Existing(t *testing.T) {
	svc := newService()
	svc.Put(types.Payment{
		PaymentID:        "existing",
		AmountInCrypto:   types.AssetValues{TON: strPtr("0.25")},
		DepositAddresses: types.AssetValues{TON: strPtr(tonAddress)},
		ChainID:          types.ChainIDTestnet,
		CurrentStatus:    types.StatusPending,
	})
	c := core.New(svc)

	res, err := c.CreatePaymentWithTransaction(context.Background(), core.CreateParams{PaymentID: "existing"})
	require.NoError(t, err)
	assert.Equal(t, "250000000", res.Transaction.Messages[0].Amount)

	creates, gets := svc.Calls()
	assert.Equal(t, 0, creates)
	assert.Equal(t, 1, gets)
}

func TestCreatePaymentWithTransaction_ServiceError(t *testing.T) {
	svc := newService()
	svc.Err = types.NewServiceError(503, "unavailable", nil)

	_, err := core.New(svc).CreatePaymentWithTransaction(context.Background(), core.CreateParams{Amount: "1"})
	assert.ErrorIs(t, err, types.ErrServiceError)
}

func TestCreatePaymentWithTransaction_UnsupportedAsset(t *testing.T) {
	c := core.New(newService(), core.WithAsset(types.AssetETH))

	_, err := c.CreatePaymentWithTransaction(context.Background(), core.CreateParams{Amount: "1"})
	assert.ErrorIs(t, err, types.ErrInvalidPayment)
}
