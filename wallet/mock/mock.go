package mock

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/vitwit/tonpay/types"
	"github.com/vitwit/tonpay/wallet"
)

var ErrUserRejected = errors.New("user rejected the request")

// Connector implements wallet.Connector in memory for testing purposes.
type Connector struct {
	mu        sync.Mutex
	account   types.Account
	connected bool
	sent      []types.TransactionRequest
	calls     Calls

	// Programmable failures. A nil error means success.
	OpenModalErr  error
	SendErr       error
	DisconnectErr error

	// SendErrOnce is returned by the next SendTransaction only.
	SendErrOnce error
}

// Calls counts invocations per connector operation.
type Calls struct {
	OpenModal  int
	Wallets    int
	Send       int
	Disconnect int
}

var _ wallet.Connector = (*Connector)(nil)

type Config struct {
	// Account reported once connected.
	Account types.Account

	// Start with the account already connected.
	Connected bool
}

func New(config Config) *Connector {
	if config.Account.Address == "" {
		config.Account = types.Account{
			Address: "0:" + "0000000000000000000000000000000000000000000000000000000000000001",
			Chain:   types.ChainTestnet,
			Name:    "mock",
		}
	}
	return &Connector{
		account:   config.Account,
		connected: config.Connected,
	}
}

// Factory returns a wallet.Factory that always yields c.
func (c *Connector) Factory() wallet.Factory {
	return func(context.Context, types.ConnectorConfig) (wallet.Connector, error) {
		return c, nil
	}
}

func (c *Connector) OpenModal(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls.OpenModal++
	if c.OpenModalErr != nil {
		return c.OpenModalErr
	}
	c.connected = true
	return nil
}

func (c *Connector) Wallets(ctx context.Context) ([]types.Account, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls.Wallets++
	if !c.connected {
		return nil, nil
	}
	return []types.Account{c.account}, nil
}

// SendTransaction records tx and returns a base64 digest unique to the call.
func (c *Connector) SendTransaction(ctx context.Context, tx *types.TransactionRequest) (*types.SendResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls.Send++
	if c.SendErrOnce != nil {
		err := c.SendErrOnce
		c.SendErrOnce = nil
		if wallet.IsNotConnected(err) {
			c.connected = false
		}
		return nil, err
	}
	if c.SendErr != nil {
		return nil, c.SendErr
	}
	if !c.connected {
		return nil, types.ErrWalletNotConnected
	}

	c.sent = append(c.sent, *tx)

	raw, err := json.Marshal(tx)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(append(raw, []byte(uuid.NewString())...))
	return &types.SendResult{BOC: base64.StdEncoding.EncodeToString(sum[:])}, nil
}

func (c *Connector) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls.Disconnect++
	if c.DisconnectErr != nil {
		return c.DisconnectErr
	}
	c.connected = false
	return nil
}

// Sent returns the transactions accepted so far.
func (c *Connector) Sent() []types.TransactionRequest {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]types.TransactionRequest, len(c.sent))
	copy(out, c.sent)
	return out
}

func (c *Connector) Calls() Calls {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}
