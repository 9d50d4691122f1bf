package tonpay_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitwit/tonpay"
	"github.com/vitwit/tonpay/clients/mock"
	"github.com/vitwit/tonpay/logger"
	"github.com/vitwit/tonpay/types"
	"github.com/vitwit/tonpay/wallet"
	walletmock "github.com/vitwit/tonpay/wallet/mock"
)

const depositTON = "0:ed1691307050047117b998b561d8de82d31fbf84910ced6eb5fc92e7485ef8a7"

func strPtr(s string) *string { return &s }

func newService() *mock.Mock {
	return mock.New(mock.Config{
		ChainID:          types.ChainIDTestnet,
		DepositAddresses: types.AssetValues{TON: strPtr(depositTON)},
	})
}

func newPayments(t *testing.T, service *mock.Mock, conn *walletmock.Connector, opts ...tonpay.Option) *tonpay.Payments {
	t.Helper()

	opts = append([]tonpay.Option{
		tonpay.WithPaymentService(service),
		tonpay.WithLogger(logger.NoopLogger{}),
		tonpay.WithPollInterval(5 * time.Millisecond),
	}, opts...)

	p, err := tonpay.New(&types.Config{}, wallet.NewProvider(conn.Factory(), types.ConnectorConfig{}), opts...)
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p
}

func TestNew_RequiresConfig(t *testing.T) {
	_, err := tonpay.New(nil, nil)
	assert.ErrorIs(t, err, types.ErrConfig)
}

func TestNew_ValidatesConfigForHTTPClient(t *testing.T) {
	_, err := tonpay.New(&types.Config{APIKey: "secret"}, nil, tonpay.WithLogger(logger.NoopLogger{}))
	assert.ErrorIs(t, err, types.ErrConfig)

	p, err := tonpay.New(&types.Config{APIURL: "https://pay.example.com", APIKey: "secret"}, nil,
		tonpay.WithLogger(logger.NoopLogger{}))
	require.NoError(t, err)
	assert.Equal(t, wallet.StateUninitialized, p.State())
}

func TestInitiatePayment(t *testing.T) {
	ctx := context.Background()
	p := newPayments(t, newService(), walletmock.New(walletmock.Config{}))

	_, err := p.InitiatePayment(ctx, "5")
	assert.ErrorIs(t, err, types.ErrNotInitialized)

	require.NoError(t, p.Init(ctx))

	resp, err := p.InitiatePayment(ctx, "5")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Payload.PaymentID)
	assert.Equal(t, types.StatusCreated, resp.Payload.CurrentStatus)
}

func TestInit_Failure(t *testing.T) {
	p, err := tonpay.New(&types.Config{}, wallet.NewProvider(nil, types.ConnectorConfig{}),
		tonpay.WithPaymentService(newService()), tonpay.WithLogger(logger.NoopLogger{}))
	require.NoError(t, err)

	err = p.Init(context.Background())
	assert.ErrorIs(t, err, types.ErrWalletError)
	assert.Equal(t, wallet.StateInitFailed, p.State())

	_, err = p.SendTransaction(context.Background(), tonpay.SendParams{Amount: "5"})
	assert.ErrorIs(t, err, types.ErrNotInitialized)
}

func TestSendTransaction_NewPayment(t *testing.T) {
	ctx := context.Background()
	conn := walletmock.New(walletmock.Config{})
	p := newPayments(t, newService(), conn)
	require.NoError(t, p.Init(ctx))
	assert.False(t, p.IsConnected())

	res, err := p.SendTransaction(ctx, tonpay.SendParams{Amount: "5"})
	require.NoError(t, err)

	assert.NotEmpty(t, res.TxHash)
	require.NotNil(t, res.Payment)
	assert.True(t, p.IsConnected(), "auto-connect opens the wallet")

	sent := conn.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, types.ChainTestnet, sent[0].Network)
	require.Len(t, sent[0].Messages, 1)
	assert.Equal(t, depositTON, sent[0].Messages[0].Address)
	assert.Equal(t, "5000000000", sent[0].Messages[0].Amount)
	assert.Equal(t, res.Payment.Payload.PaymentID, sent[0].Messages[0].Payload)
}

func TestSendTransaction_ExistingPayment(t *testing.T) {
	ctx := context.Background()
	service := newService()
	conn := walletmock.New(walletmock.Config{Connected: true})
	p := newPayments(t, service, conn)
	require.NoError(t, p.Init(ctx))

	service.Put(types.Payment{
		PaymentID:        "123",
		AmountInCrypto:   types.AssetValues{TON: strPtr("0.5")},
		DepositAddresses: types.AssetValues{TON: strPtr(depositTON)},
		ChainID:          types.ChainIDMainnet,
		CurrentStatus:    types.StatusCreated,
	})

	res, err := p.SendTransaction(ctx, tonpay.SendParams{PaymentID: "123"})
	require.NoError(t, err)
	assert.Equal(t, "123", res.Payment.Payload.PaymentID)

	sent := conn.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, types.ChainMainnet, sent[0].Network)
	assert.Equal(t, "500000000", sent[0].Messages[0].Amount)

	creates, _ := service.Calls()
	assert.Zero(t, creates)
}

func TestSendTransaction_ReconnectsOnce(t *testing.T) {
	ctx := context.Background()
	conn := walletmock.New(walletmock.Config{Connected: true})
	conn.SendErrOnce = types.ErrWalletNotConnected
	p := newPayments(t, newService(), conn)
	require.NoError(t, p.Init(ctx))

	res, err := p.SendTransaction(ctx, tonpay.SendParams{Amount: "1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.TxHash)

	calls := conn.Calls()
	assert.Equal(t, 2, calls.Send)
	assert.Equal(t, 1, calls.OpenModal)
}

func TestSendTransaction_ReconnectRetriesOnlyOnce(t *testing.T) {
	ctx := context.Background()
	conn := walletmock.New(walletmock.Config{Connected: true})
	conn.SendErr = types.ErrWalletNotConnected
	p := newPayments(t, newService(), conn)
	require.NoError(t, p.Init(ctx))

	_, err := p.SendTransaction(ctx, tonpay.SendParams{Amount: "1"})
	assert.ErrorIs(t, err, types.ErrWalletNotConnected)
	assert.Equal(t, 2, conn.Calls().Send)
}

func TestSendTransaction_NoRetryWithoutAutoConnect(t *testing.T) {
	ctx := context.Background()
	conn := walletmock.New(walletmock.Config{Connected: true})
	conn.SendErrOnce = types.ErrWalletNotConnected
	p := newPayments(t, newService(), conn, tonpay.WithAutoConnect(false))
	require.NoError(t, p.Init(ctx))

	_, err := p.SendTransaction(ctx, tonpay.SendParams{Amount: "1"})
	assert.ErrorIs(t, err, types.ErrWalletNotConnected)

	calls := conn.Calls()
	assert.Equal(t, 1, calls.Send)
	assert.Zero(t, calls.OpenModal)
}

func TestSendTransaction_UserRejection(t *testing.T) {
	ctx := context.Background()
	conn := walletmock.New(walletmock.Config{Connected: true})
	conn.SendErr = walletmock.ErrUserRejected
	p := newPayments(t, newService(), conn)
	require.NoError(t, p.Init(ctx))

	_, err := p.SendTransaction(ctx, tonpay.SendParams{Amount: "1"})
	assert.ErrorIs(t, err, walletmock.ErrUserRejected)
	assert.Equal(t, 1, conn.Calls().Send)
}

func TestSendTransaction_InvalidPayment(t *testing.T) {
	ctx := context.Background()
	conn := walletmock.New(walletmock.Config{Connected: true})
	p := newPayments(t, newService(), conn)
	require.NoError(t, p.Init(ctx))

	_, err := p.SendTransaction(ctx, tonpay.SendParams{Amount: "1", Asset: types.AssetETH})
	assert.ErrorIs(t, err, types.ErrInvalidPayment)
	assert.Zero(t, conn.Calls().Send)
}

func TestConnectAndDisconnect(t *testing.T) {
	ctx := context.Background()
	conn := walletmock.New(walletmock.Config{})
	p := newPayments(t, newService(), conn)
	require.NoError(t, p.Init(ctx))

	require.NoError(t, p.ConnectWallet(ctx))
	assert.True(t, p.IsConnected())

	require.NoError(t, p.Disconnect(ctx))
	require.NoError(t, p.Disconnect(ctx))
	assert.False(t, p.IsConnected())
	assert.Equal(t, 1, conn.Calls().Disconnect)
}

func TestWaitForPayment(t *testing.T) {
	ctx := context.Background()
	service := newService()
	p := newPayments(t, service, walletmock.New(walletmock.Config{}))
	require.NoError(t, p.Init(ctx))

	created, err := p.InitiatePayment(ctx, "2")
	require.NoError(t, err)
	id := created.Payload.PaymentID

	service.Script(id, types.StatusPending, types.StatusPending, types.StatusPaid)

	settled, err := p.WaitForPayment(ctx, id, time.Second)
	require.NoError(t, err)
	assert.Equal(t, types.StatusPaid, settled.Payload.CurrentStatus)

	_, gets := service.Calls()
	assert.Equal(t, 3, gets)
}

func TestWaitForPayment_Timeout(t *testing.T) {
	ctx := context.Background()
	service := newService()
	p := newPayments(t, service, walletmock.New(walletmock.Config{}))
	require.NoError(t, p.Init(ctx))

	created, err := p.InitiatePayment(ctx, "2")
	require.NoError(t, err)
	service.Script(created.Payload.PaymentID, types.StatusPending)

	_, err = p.WaitForPayment(ctx, created.Payload.PaymentID, 20*time.Millisecond)
	assert.ErrorIs(t, err, types.ErrPollTimeout)
}

func TestGetVersion(t *testing.T) {
	v := tonpay.GetVersion()
	assert.Equal(t, tonpay.Version, v["library_version"])
	assert.Contains(t, v["supported_assets"], "ton")
}
