package wallet_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitwit/tonpay/types"
	"github.com/vitwit/tonpay/wallet"
	"github.com/vitwit/tonpay/wallet/mock"
)

const tonAddress = "0:ed1691307050047117b998b561d8de82d31fbf84910ced6eb5fc92e7485ef8a7"

func strPtr(s string) *string { return &s }

func payment() *types.Payment {
	return &types.Payment{
		PaymentID:        "123",
		AmountInCrypto:   types.AssetValues{TON: strPtr("5.0")},
		DepositAddresses: types.AssetValues{TON: strPtr(tonAddress)},
		ChainID:          types.ChainIDTestnet,
		CurrentStatus:    types.StatusCreated,
	}
}

func readySession(t *testing.T, conn *mock.Connector, opts ...wallet.SessionOption) *wallet.Session {
	t.Helper()

	s := wallet.NewSession(wallet.StaticProvider(conn), opts...)
	require.NoError(t, s.Init(context.Background()))
	require.Equal(t, wallet.StateReady, s.State())
	return s
}

func TestInit_States(t *testing.T) {
	ctx := context.Background()

	t.Run("ready and disconnected", func(t *testing.T) {
		s := readySession(t, mock.New(mock.Config{}))
		assert.False(t, s.IsConnected())
		assert.NoError(t, s.InitError())
	})

	t.Run("ready and already connected", func(t *testing.T) {
		s := readySession(t, mock.New(mock.Config{Connected: true}))
		assert.True(t, s.IsConnected())
	})

	t.Run("factory failure", func(t *testing.T) {
		boom := errors.New("boom")
		p := wallet.NewProvider(func(context.Context, types.ConnectorConfig) (wallet.Connector, error) {
			return nil, boom
		}, types.ConnectorConfig{})

		s := wallet.NewSession(p)
		err := s.Init(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrWalletError)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, wallet.StateInitFailed, s.State())
		assert.Equal(t, err, s.InitError())
	})

	t.Run("nil provider", func(t *testing.T) {
		s := wallet.NewSession(nil)
		assert.ErrorIs(t, s.Init(ctx), types.ErrWalletError)
		assert.Equal(t, wallet.StateInitFailed, s.State())
	})
}

func TestProvider_ConstructsOnce(t *testing.T) {
	conn := mock.New(mock.Config{})
	built := 0
	p := wallet.NewProvider(func(context.Context, types.ConnectorConfig) (wallet.Connector, error) {
		built++
		return conn, nil
	}, types.ConnectorConfig{})

	for i := 0; i < 3; i++ {
		s := wallet.NewSession(p)
		require.NoError(t, s.Init(context.Background()))
		s.Close()
		assert.Equal(t, wallet.StateUninitialized, s.State())
	}
	assert.Equal(t, 1, built)
}

func TestProvider_RetriesFailedConstruction(t *testing.T) {
	conn := mock.New(mock.Config{})
	attempts := 0
	p := wallet.NewProvider(func(context.Context, types.ConnectorConfig) (wallet.Connector, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("transient")
		}
		return conn, nil
	}, types.ConnectorConfig{})

	s := wallet.NewSession(p)
	require.Error(t, s.Init(context.Background()))
	require.NoError(t, s.Init(context.Background()))
	assert.Equal(t, wallet.StateReady, s.State())
	assert.Equal(t, 2, attempts)
}

func TestConnect(t *testing.T) {
	conn := mock.New(mock.Config{})
	s := readySession(t, conn)

	require.NoError(t, s.Connect(context.Background()))
	assert.True(t, s.IsConnected())
	assert.Equal(t, 1, conn.Calls().OpenModal)
}

func TestConnect_ErrorSurfacesUnchanged(t *testing.T) {
	conn := mock.New(mock.Config{})
	conn.OpenModalErr = mock.ErrUserRejected
	s := readySession(t, conn)

	err := s.Connect(context.Background())
	assert.Same(t, mock.ErrUserRejected, err)
	assert.False(t, s.IsConnected())
}

func TestConnect_RequiresInit(t *testing.T) {
	s := wallet.NewSession(wallet.StaticProvider(mock.New(mock.Config{})))
	assert.ErrorIs(t, s.Connect(context.Background()), types.ErrNotInitialized)
}

func TestSendTransaction(t *testing.T) {
	now := time.Date(2024, 3, 21, 12, 0, 0, 0, time.UTC)
	conn := mock.New(mock.Config{Connected: true})
	s := readySession(t, conn, wallet.WithNow(func() time.Time { return now }))

	hash, err := s.SendTransaction(context.Background(), payment(), types.AssetTON)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	sent := conn.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, now.Unix()+600, sent[0].ValidUntil)
	assert.Equal(t, types.ChainTestnet, sent[0].Network)
	assert.Equal(t, "5000000000", sent[0].Messages[0].Amount)
	assert.Equal(t, "123", sent[0].Messages[0].Payload)
	assert.Equal(t, 0, conn.Calls().OpenModal)
}

func TestSendTransaction_AutoConnects(t *testing.T) {
	conn := mock.New(mock.Config{})
	s := readySession(t, conn)

	_, err := s.SendTransaction(context.Background(), payment(), types.AssetTON)
	require.NoError(t, err)
	assert.Equal(t, 1, conn.Calls().OpenModal)
	assert.True(t, s.IsConnected())
}

func TestSendTransaction_NoAutoConnect(t *testing.T) {
	conn := mock.New(mock.Config{})
	s := readySession(t, conn, wallet.WithAutoConnect(false))

	_, err := s.SendTransaction(context.Background(), payment(), types.AssetTON)
	assert.ErrorIs(t, err, types.ErrWalletNotConnected)
	assert.Equal(t, 0, conn.Calls().Send)
}

func TestSendTransaction_InvalidPaymentSkipsConnector(t *testing.T) {
	conn := mock.New(mock.Config{})
	s := readySession(t, conn)
	before := conn.Calls()

	p := payment()
	p.DepositAddresses.TON = nil

	_, err := s.SendTransaction(context.Background(), p, types.AssetTON)
	assert.ErrorIs(t, err, types.ErrInvalidPayment)
	assert.Equal(t, before, conn.Calls())
}

func TestSendTransaction_UnsupportedChain(t *testing.T) {
	conn := mock.New(mock.Config{Connected: true})
	s := readySession(t, conn)

	p := payment()
	p.ChainID = 1

	_, err := s.SendTransaction(context.Background(), p, types.AssetTON)
	assert.ErrorIs(t, err, types.ErrUnsupportedChain)
	assert.Equal(t, 0, conn.Calls().Send)
}

func TestSendTransaction_RequiresInit(t *testing.T) {
	s := wallet.NewSession(wallet.StaticProvider(mock.New(mock.Config{})))

	_, err := s.SendTransaction(context.Background(), payment(), types.AssetTON)
	assert.ErrorIs(t, err, types.ErrNotInitialized)
}

func TestSendTransaction_ConnectorErrorMarksDisconnected(t *testing.T) {
	conn := mock.New(mock.Config{Connected: true})
	conn.SendErrOnce = types.ErrWalletNotConnected
	s := readySession(t, conn)

	_, err := s.SendTransaction(context.Background(), payment(), types.AssetTON)
	assert.True(t, wallet.IsNotConnected(err))
	assert.False(t, s.IsConnected())
}

func TestDisconnect_Idempotent(t *testing.T) {
	conn := mock.New(mock.Config{Connected: true})
	s := readySession(t, conn)

	require.NoError(t, s.Disconnect(context.Background()))
	require.NoError(t, s.Disconnect(context.Background()))
	assert.False(t, s.IsConnected())
	assert.Equal(t, 1, conn.Calls().Disconnect)

	uninitialized := wallet.NewSession(nil)
	assert.NoError(t, uninitialized.Disconnect(context.Background()))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "ready", wallet.StateReady.String())
	assert.Equal(t, "init_failed", wallet.StateInitFailed.String())
}

// emptyResultConnector accepts every transaction but reports no result.
type emptyResultConnector struct {
	*mock.Connector
}

func (emptyResultConnector) SendTransaction(context.Context, *types.TransactionRequest) (*types.SendResult, error) {
	return nil, nil
}

func TestSendTransaction_EmptyConnectorResult(t *testing.T) {
	conn := emptyResultConnector{mock.New(mock.Config{Connected: true})}
	s := wallet.NewSession(wallet.StaticProvider(conn))
	require.NoError(t, s.Init(context.Background()))

	var (
		hash string
		err  error
	)
	require.NotPanics(t, func() {
		hash, err = s.SendTransaction(context.Background(), payment(), types.AssetTON)
	})
	assert.ErrorIs(t, err, types.ErrWalletError)
	assert.Empty(t, hash)
}

func TestSendTransaction_SettledPaymentSkipsConnector(t *testing.T) {
	conn := mock.New(mock.Config{Connected: true})
	s := readySession(t, conn)

	for _, status := range []types.PaymentStatus{types.StatusPaid, types.StatusExpired, types.StatusFailed} {
		p := payment()
		p.CurrentStatus = status

		_, err := s.SendTransaction(context.Background(), p, types.AssetTON)
		assert.ErrorIs(t, err, types.ErrInvalidPayment, status.String())
	}
	assert.Zero(t, conn.Calls().Send)
}
