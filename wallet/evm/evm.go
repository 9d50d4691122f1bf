// Package evm is a wallet connector that signs eth and bnb deposits with a locally held key.
package evm

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"sync"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/vitwit/tonpay/types"
	"github.com/vitwit/tonpay/utils"
	"github.com/vitwit/tonpay/wallet"
)

// Backend is the subset of ethclient.Client the connector needs.
type Backend interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *gethtypes.Transaction) error
	Close()
}

// Dialer opens a Backend for an RPC URL.
type Dialer func(ctx context.Context, rpcURL string) (Backend, error)

var _ wallet.Connector = (*Connector)(nil)

// Config of the EVM connector.
type Config struct {
	// Hex encoded secp256k1 private key, with or without 0x prefix.
	PrivateKey string `yaml:"private_key"`

	// RPC endpoint per EVM chain id.
	RPCURLs map[int64]string `yaml:"rpc_urls"`
}

// Connector holds a signing key and one RPC backend per EVM chain.
type Connector struct {
	key     *ecdsa.PrivateKey
	address common.Address
	rpcURLs map[int64]string
	dial    Dialer
	now     func() time.Time

	mu        sync.Mutex
	backends  map[int64]Backend
	connected bool
}

type Option func(*Connector)

func WithDialer(d Dialer) Option {
	return func(c *Connector) {
		c.dial = d
	}
}

func WithNow(now func() time.Time) Option {
	return func(c *Connector) {
		c.now = now
	}
}

func New(cfg Config, opts ...Option) (*Connector, error) {
	key, err := utils.PrivateKeyFromHex(cfg.PrivateKey)
	if err != nil {
		return nil, types.NewWalletError("invalid EVM private key", err)
	}

	c := &Connector{
		key:      key,
		address:  utils.AddressFromPrivateKey(key),
		rpcURLs:  cfg.RPCURLs,
		dial:     dialEthclient,
		now:      time.Now,
		backends: make(map[int64]Backend),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Factory returns a wallet.Factory building a Connector from cfg.
func Factory(cfg Config, opts ...Option) wallet.Factory {
	return func(context.Context, types.ConnectorConfig) (wallet.Connector, error) {
		return New(cfg, opts...)
	}
}

func dialEthclient(ctx context.Context, rpcURL string) (Backend, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to EVM RPC: %w", err)
	}
	return client, nil
}

// Address of the signing account.
func (c *Connector) Address() common.Address {
	return c.address
}

// OpenModal connects the key-held account. There is no UI to show.
func (c *Connector) OpenModal(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.connected = true
	return nil
}

func (c *Connector) Wallets(ctx context.Context) ([]types.Account, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil, nil
	}
	return []types.Account{{Address: c.address.Hex(), Name: "evm"}}, nil
}

// SendTransaction signs one EIP-155 transfer per message and broadcasts them in order.
// The payment id travels as calldata. The hash of the last transfer is returned.
func (c *Connector) SendTransaction(ctx context.Context, tx *types.TransactionRequest) (*types.SendResult, error) {
	if !c.isConnected() {
		return nil, types.ErrWalletNotConnected
	}
	if tx.Asset.Family() != types.FamilyEVM {
		return nil, types.NewWalletError(fmt.Sprintf("asset %s cannot be sent by the EVM connector", tx.Asset), nil)
	}
	if tx.Expired(c.now()) {
		return nil, types.NewWalletError("transaction request expired", nil)
	}
	if len(tx.Messages) == 0 {
		return nil, types.NewWalletError("transaction request has no messages", nil)
	}

	chainID, err := types.EVMChainID(tx.Asset, tx.Network)
	if err != nil {
		return nil, err
	}
	backend, err := c.backend(ctx, chainID)
	if err != nil {
		return nil, err
	}

	nonce, err := backend.PendingNonceAt(ctx, c.address)
	if err != nil {
		return nil, types.NewWalletError("failed to get nonce", err)
	}
	gasPrice, err := backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, types.NewWalletError("failed to get gas price", err)
	}

	signer := gethtypes.NewEIP155Signer(big.NewInt(chainID))

	var hash common.Hash
	for i, msg := range tx.Messages {
		signed, err := c.signTransfer(ctx, backend, signer, msg, nonce+uint64(i), gasPrice)
		if err != nil {
			return nil, err
		}
		if err := backend.SendTransaction(ctx, signed); err != nil {
			return nil, types.NewWalletError("failed to broadcast transaction", err)
		}
		hash = signed.Hash()
	}

	return &types.SendResult{BOC: hash.Hex()}, nil
}

func (c *Connector) signTransfer(
	ctx context.Context,
	backend Backend,
	signer gethtypes.Signer,
	msg types.TransactionMessage,
	nonce uint64,
	gasPrice *big.Int,
) (*gethtypes.Transaction, error) {
	if !common.IsHexAddress(msg.Address) {
		return nil, types.NewWalletError(fmt.Sprintf("invalid recipient %q", msg.Address), nil)
	}
	value, ok := new(big.Int).SetString(msg.Amount, 10)
	if !ok || value.Sign() <= 0 {
		return nil, types.NewWalletError(fmt.Sprintf("invalid amount %q", msg.Amount), nil)
	}

	to := common.HexToAddress(msg.Address)
	data := []byte(msg.Payload)

	gas, err := backend.EstimateGas(ctx, ethereum.CallMsg{
		From:     c.address,
		To:       &to,
		GasPrice: gasPrice,
		Value:    value,
		Data:     data,
	})
	if err != nil {
		return nil, types.NewWalletError("failed to estimate gas", err)
	}

	unsigned := gethtypes.NewTx(&gethtypes.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gas,
		To:       &to,
		Value:    value,
		Data:     data,
	})

	signed, err := gethtypes.SignTx(unsigned, signer, c.key)
	if err != nil {
		return nil, types.NewWalletError("failed to sign transaction", err)
	}
	return signed, nil
}

func (c *Connector) backend(ctx context.Context, chainID int64) (Backend, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if b, ok := c.backends[chainID]; ok {
		return b, nil
	}

	url, ok := c.rpcURLs[chainID]
	if !ok || url == "" {
		return nil, &types.Error{
			Code:    types.CodeUnsupportedChain,
			Message: fmt.Sprintf("no RPC endpoint configured for EVM chain %d", chainID),
		}
	}

	b, err := c.dial(ctx, url)
	if err != nil {
		return nil, types.NewWalletError("failed to dial EVM RPC", err)
	}

	remote, err := b.ChainID(ctx)
	if err != nil {
		b.Close()
		return nil, types.NewWalletError("failed to read chain id", err)
	}
	if remote.Int64() != chainID {
		b.Close()
		return nil, types.NewWalletError(fmt.Sprintf("RPC reports chain %s, expected %d", remote, chainID), nil)
	}

	c.backends[chainID] = b
	return b, nil
}

func (c *Connector) isConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Disconnect forgets the account and closes every RPC backend.
func (c *Connector) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, b := range c.backends {
		b.Close()
		delete(c.backends, id)
	}
	c.connected = false
	return nil
}
