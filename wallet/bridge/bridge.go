// Package bridge is a wallet connector that delegates signing to an external HTTP wallet bridge.
package bridge

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/vitwit/tonpay/logger"
	"github.com/vitwit/tonpay/types"
	"github.com/vitwit/tonpay/wallet"
)

// Bridge endpoints, relative to the configured bridge URL.
const (
	ConnectPath         = "v1/connect"
	WalletsPath         = "v1/wallets"
	SendTransactionPath = "v1/send_transaction"
	DisconnectPath      = "v1/disconnect"
)

var _ wallet.Connector = (*Connector)(nil)

type connectRequest struct {
	ManifestURL    string   `json:"manifest_url,omitempty"`
	IncludeWallets []string `json:"include_wallets,omitempty"`
	ExcludeWallets []string `json:"exclude_wallets,omitempty"`
}

type walletsResponse struct {
	Accounts []types.Account `json:"accounts"`
}

type bridgeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Connector forwards connector calls to the bridge. The session id ties calls to one wallet connection.
type Connector struct {
	http    *resty.Client
	config  types.ConnectorConfig
	session string
}

// Option configures a Connector.
type Option func(*Connector)

// WithLogger routes the HTTP client's own warnings and debug output through l.
func WithLogger(l logger.Logger) Option {
	return func(c *Connector) {
		c.http.SetLogger(logger.NewPrintfLogger(l, "wallet_bridge"))
	}
}

// WithHTTPDebug dumps every bridge request and response at debug level.
func WithHTTPDebug(enabled bool) Option {
	return func(c *Connector) {
		c.http.SetDebug(enabled)
	}
}

// New creates a bridge connector. timeout <= 0 uses types.DefaultTimeout.
func New(cfg types.ConnectorConfig, timeout time.Duration, opts ...Option) (*Connector, error) {
	if cfg.BridgeURL == "" {
		return nil, &types.Error{Code: types.CodeConfigError, Message: "bridge url is required"}
	}
	if timeout <= 0 {
		timeout = types.DefaultTimeout
	}

	session := uuid.NewString()
	client := resty.New().
		SetBaseURL(cfg.BridgeURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Session-ID", session).
		SetLogger(logger.NewPrintfLogger(nil, "wallet_bridge"))

	c := &Connector{http: client, config: cfg, session: session}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Factory returns a wallet.Factory that builds a bridge connector from the connector config.
func Factory(timeout time.Duration, opts ...Option) wallet.Factory {
	return func(_ context.Context, cfg types.ConnectorConfig) (wallet.Connector, error) {
		return New(cfg, timeout, opts...)
	}
}

// Session returns the id sent with every request.
func (c *Connector) Session() string {
	return c.session
}

func (c *Connector) OpenModal(ctx context.Context) error {
	body := connectRequest{
		ManifestURL:    c.config.ManifestURL,
		IncludeWallets: c.config.IncludeWallets,
		ExcludeWallets: c.config.ExcludeWallets,
	}
	return c.do(ctx, http.MethodPost, ConnectPath, body, nil)
}

func (c *Connector) Wallets(ctx context.Context) ([]types.Account, error) {
	var out walletsResponse
	if err := c.do(ctx, http.MethodGet, WalletsPath, nil, &out); err != nil {
		return nil, err
	}
	return out.Accounts, nil
}

func (c *Connector) SendTransaction(ctx context.Context, tx *types.TransactionRequest) (*types.SendResult, error) {
	var out types.SendResult
	if err := c.do(ctx, http.MethodPost, SendTransactionPath, tx, &out); err != nil {
		return nil, err
	}
	if out.BOC == "" {
		return nil, types.NewWalletError("bridge returned an empty transaction result", nil)
	}
	return &out, nil
}

func (c *Connector) Disconnect(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, DisconnectPath, nil, nil)
}

func (c *Connector) do(ctx context.Context, method, path string, body, result any) error {
	var errBody bridgeError

	req := c.http.R().
		SetContext(ctx).
		SetError(&errBody)
	if body != nil {
		req.SetBody(body)
	}
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return types.NewWalletError(fmt.Sprintf("wallet bridge %s failed", path), err)
	}

	if resp.IsError() {
		msg := errBody.Message
		if msg == "" {
			msg = fmt.Sprintf("wallet bridge %s returned %s", path, resp.Status())
		}
		if errBody.Code == types.CodeWalletNotConnected {
			return &types.Error{Code: types.CodeWalletNotConnected, Message: msg}
		}
		return types.NewWalletError(msg, nil)
	}

	return nil
}
