package types

import "time"

// TransactionMessage is a single transfer inside a TransactionRequest.
type TransactionMessage struct {
	// Destination deposit address.
	Address string `json:"address"`

	// Amount in the asset's smallest unit, base-10.
	Amount string `json:"amount"`

	// Opaque payload attached to the transfer; carries the payment id.
	Payload string `json:"payload,omitempty"`
}

// TransactionRequest is the payload handed to a wallet connector for signing and broadcast.
// It is built fresh for every send attempt and never persisted.
type TransactionRequest struct {
	// Unix time in seconds after which the wallet must reject the request.
	ValidUntil int64 `json:"validUntil"`

	Network Chain `json:"network"`

	Asset Asset `json:"asset,omitempty"`

	Messages []TransactionMessage `json:"messages"`
}

// Expired reports whether the request is no longer valid at now.
func (t *TransactionRequest) Expired(now time.Time) bool {
	return now.Unix() >= t.ValidUntil
}

// SendResult is what a wallet connector returns after broadcasting a transaction.
type SendResult struct {
	// Signed message (bag of cells for TON) or transaction hash, as reported by the connector.
	BOC string `json:"boc"`
}

// TxResult is returned by the payments facade after a successful send.
type TxResult struct {
	TxHash  string           `json:"txHash"`
	Payment *PaymentResponse `json:"payment,omitempty"`
}

// Account is a wallet connected through a connector.
type Account struct {
	Address string `json:"address"`
	Chain   Chain  `json:"chain"`
	Name    string `json:"name,omitempty"`
}
