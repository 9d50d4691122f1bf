// Package wallet connects to an external wallet connector and submits payment transactions through it.
package wallet

import (
	"context"
	"errors"

	"github.com/vitwit/tonpay/types"
)

// Connector is the external component handling key custody, signing and broadcast.
type Connector interface {
	// Open the wallet selection UI and wait for the user to connect.
	OpenModal(ctx context.Context) (err error)

	// Returns the currently connected wallets.
	Wallets(ctx context.Context) (accounts []types.Account, err error)

	// Sign and broadcast a transaction.
	SendTransaction(ctx context.Context, tx *types.TransactionRequest) (result *types.SendResult, err error)

	// Tear down the connection to the current wallet.
	Disconnect(ctx context.Context) (err error)
}

// Factory constructs a connector. It is invoked at most once per Provider.
type Factory func(ctx context.Context, cfg types.ConnectorConfig) (Connector, error)

// IsNotConnected reports whether err signals that the connector has no connected wallet.
func IsNotConnected(err error) bool {
	return errors.Is(err, types.ErrWalletNotConnected)
}
