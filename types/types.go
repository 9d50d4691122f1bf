package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// PaymentStatus represents the lifecycle state of a payment held by the payment service
type PaymentStatus string

const (
	StatusCreated PaymentStatus = "CREATED"
	StatusPending PaymentStatus = "PENDING"
	StatusPaid    PaymentStatus = "PAID"
	StatusExpired PaymentStatus = "EXPIRED"
	StatusFailed  PaymentStatus = "FAILED"

	// statusCompleted is the legacy spelling of StatusPaid still emitted by older deployments.
	statusCompleted PaymentStatus = "COMPLETED"
)

// IsTerminal reports whether no further transitions are expected.
func (s PaymentStatus) IsTerminal() bool {
	return s == StatusPaid || s == StatusExpired || s == StatusFailed
}

func (s PaymentStatus) IsValid() bool {
	switch s {
	case StatusCreated, StatusPending, StatusPaid, StatusExpired, StatusFailed:
		return true
	}
	return false
}

func (s PaymentStatus) String() string {
	return string(s)
}

// UnmarshalJSON normalises the status, mapping COMPLETED to PAID.
func (s *PaymentStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("payment status must be a string: %w", err)
	}

	status := PaymentStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if status == statusCompleted {
		status = StatusPaid
	}
	*s = status
	return nil
}

// AssetValues holds one nullable value per supported asset.
type AssetValues struct {
	TON *string `json:"ton"`
	BTC *string `json:"btc"`
	ETH *string `json:"eth"`
	BNB *string `json:"bnb"`
}

// Get returns the value for asset. ok is false when the value is null or blank.
func (a AssetValues) Get(asset Asset) (value string, ok bool) {
	var v *string
	switch asset {
	case AssetTON:
		v = a.TON
	case AssetBTC:
		v = a.BTC
	case AssetETH:
		v = a.ETH
	case AssetBNB:
		v = a.BNB
	}
	if v == nil || strings.TrimSpace(*v) == "" {
		return "", false
	}
	return strings.TrimSpace(*v), true
}

// Payment is a snapshot of a payment record as returned by the payment service.
type Payment struct {
	// Identifier allocated by the payment service.
	PaymentID string `json:"payment_id"`

	// Requested amount, in USD.
	AmountInUSD string `json:"amount_in_usd"`

	// Amount the payer must send, per asset.
	AmountInCrypto AssetValues `json:"amount_in_crypto"`

	// Chain-specific address the payer must send funds to, per asset.
	DepositAddresses AssetValues `json:"deposit_addresses"`

	Merchant string `json:"merchant"`

	// Network identifier of the deposit chain (-239 mainnet, -3 testnet).
	ChainID int64 `json:"chain_id"`

	CurrentStatus PaymentStatus `json:"current_status"`

	CreatedAt string `json:"created_at,omitempty"`
	Expires   string `json:"expires"`
}

// ExpiresAt parses the expiry timestamp.
func (p *Payment) ExpiresAt() (time.Time, error) {
	return parseFlexibleTime(p.Expires)
}

// IsSettled reports whether the payment reached a terminal status.
func (p *Payment) IsSettled() bool {
	return p.CurrentStatus.IsTerminal()
}

// PaymentResponse is the envelope wrapping every payment service response.
type PaymentResponse struct {
	Status  int     `json:"status"`
	Message string  `json:"message"`
	Payload Payment `json:"payload"`
}

// CreatePaymentRequest is the body of the create endpoint.
type CreatePaymentRequest struct {
	// Requested amount as a decimal string.
	Amount string `json:"amount" validate:"required,numeric"`
}

// CheckPaymentRequest is the body of the status-check endpoint.
type CheckPaymentRequest struct {
	PaymentID string `json:"payment_id" validate:"required"`
}

// ConnectorConfig customises the wallet connector.
type ConnectorConfig struct {
	ManifestURL    string   `json:"manifestUrl,omitempty" yaml:"manifest_url" validate:"omitempty,url"`
	BridgeURL      string   `json:"bridgeUrl,omitempty" yaml:"bridge_url" validate:"omitempty,url"`
	IncludeWallets []string `json:"includeWallets,omitempty" yaml:"include_wallets"`
	ExcludeWallets []string `json:"excludeWallets,omitempty" yaml:"exclude_wallets"`
}

// Config contains global configuration for the SDK
type Config struct {
	APIURL        string          `json:"apiUrl" yaml:"api_url" validate:"required,url"`
	APIKey        string          `json:"apiKey" yaml:"api_key" validate:"required"`
	Timeout       time.Duration   `json:"timeout,omitempty" yaml:"timeout" validate:"gte=0"`
	PollInterval  time.Duration   `json:"pollInterval,omitempty" yaml:"poll_interval" validate:"gte=0"`
	PollTimeout   time.Duration   `json:"pollTimeout,omitempty" yaml:"poll_timeout" validate:"gte=0"`
	LogLevel      string          `json:"logLevel,omitempty" yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	EnableMetrics bool            `json:"enableMetrics,omitempty" yaml:"enable_metrics"`
	Asset         Asset           `json:"asset,omitempty" yaml:"asset" validate:"omitempty,oneof=ton btc eth bnb"`
	Connector     ConnectorConfig `json:"connector,omitempty" yaml:"connector"`
}

const (
	DefaultTimeout      = 30 * time.Second
	DefaultPollInterval = 2 * time.Second
	DefaultPollTimeout  = 300 * time.Second

	// TransactionValidity is how long a built transaction stays valid.
	TransactionValidity = 600 * time.Second
)

// WithDefaults returns a copy of c with zero values replaced by defaults.
func (c Config) WithDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.PollTimeout <= 0 {
		c.PollTimeout = DefaultPollTimeout
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Asset == "" {
		c.Asset = AssetTON
	}
	return c
}

func parseFlexibleTime(timeStr string) (time.Time, error) {
	formats := []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, timeStr); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse time: %s", timeStr)
}
