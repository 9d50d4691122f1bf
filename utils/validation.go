package utils

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/tonkeeper/tongo/ton"
	"github.com/vitwit/tonpay/types"
)

// ValidateAmount checks that an amount string is a positive decimal
func ValidateAmount(amount string) (*decimal.Decimal, error) {
	if strings.TrimSpace(amount) == "" {
		return nil, fmt.Errorf("amount cannot be empty")
	}

	dec, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return nil, fmt.Errorf("invalid amount format: %w", err)
	}

	if !dec.IsPositive() {
		return nil, fmt.Errorf("amount must be greater than zero")
	}

	return &dec, nil
}

// ParseAmountWithDecimals converts a decimal amount into the integer amount of its smallest unit.
// Amounts with more fractional digits than decimals are rejected rather than truncated.
func ParseAmountWithDecimals(amount string, decimals int32) (*big.Int, error) {
	dec, err := ValidateAmount(amount)
	if err != nil {
		return nil, err
	}

	scaled := dec.Shift(decimals)
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, fmt.Errorf("amount %s has more than %d decimal places", amount, decimals)
	}

	return scaled.BigInt(), nil
}

// FormatAmountFromBigInt formats a smallest-unit amount as a decimal string
func FormatAmountFromBigInt(amount *big.Int, decimals int32) string {
	return decimal.NewFromBigInt(amount, -decimals).String()
}

// ToSmallestUnit converts a human amount of asset into its smallest unit (nanotons, satoshis, wei).
func ToSmallestUnit(amount string, asset types.Asset) (*big.Int, error) {
	return ParseAmountWithDecimals(amount, asset.Decimals())
}

// ValidateAddressForAsset validates a deposit address for the chain the asset settles on.
func ValidateAddressForAsset(address string, asset types.Asset) error {
	if address == "" {
		return fmt.Errorf("address cannot be empty")
	}

	switch asset.Family() {
	case types.FamilyTON:
		if _, err := ton.ParseAccountID(address); err != nil {
			return fmt.Errorf("invalid TON address %q: %w", address, err)
		}

	case types.FamilyEVM:
		if !common.IsHexAddress(address) {
			return fmt.Errorf("invalid EVM address %q", address)
		}

	case types.FamilyBitcoin:
		if len(address) < 26 || len(address) > 90 {
			return fmt.Errorf("bitcoin address has invalid length")
		}
		if !isBase58String(address) && !isBech32String(address) {
			return fmt.Errorf("bitcoin address must be base58 or bech32")
		}

	default:
		return fmt.Errorf("unsupported asset for address validation: %s", asset)
	}

	return nil
}

// Helper function to check if a string is valid base58
func isBase58String(s string) bool {
	return base58Pattern.MatchString(s)
}

func isBech32String(s string) bool {
	return bech32Pattern.MatchString(strings.ToLower(s))
}
