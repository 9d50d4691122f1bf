package types

import (
	"fmt"
	"strings"
)

// Asset identifies a currency the payment service can allocate a deposit address for.
type Asset string

const (
	AssetTON Asset = "ton"
	AssetBTC Asset = "btc"
	AssetETH Asset = "eth"
	AssetBNB Asset = "bnb"
)

// AssetFamily classifies an asset by the kind of chain it settles on.
type AssetFamily string

const (
	FamilyTON     AssetFamily = "ton"
	FamilyBitcoin AssetFamily = "bitcoin"
	FamilyEVM     AssetFamily = "evm"
)

// ParseAsset parses a case-insensitive asset name.
func ParseAsset(s string) (Asset, error) {
	a := Asset(strings.ToLower(strings.TrimSpace(s)))
	if !a.IsValid() {
		return "", fmt.Errorf("unsupported asset: %q", s)
	}
	return a, nil
}

func (a Asset) IsValid() bool {
	return a == AssetTON || a == AssetBTC || a == AssetETH || a == AssetBNB
}

// Decimals returns the number of decimal places of the asset's smallest unit.
func (a Asset) Decimals() int32 {
	switch a {
	case AssetTON:
		return 9
	case AssetBTC:
		return 8
	case AssetETH, AssetBNB:
		return 18
	}
	return 0
}

func (a Asset) Family() AssetFamily {
	switch a {
	case AssetBTC:
		return FamilyBitcoin
	case AssetETH, AssetBNB:
		return FamilyEVM
	}
	return FamilyTON
}

func (a Asset) String() string {
	return string(a)
}

// Chain is the network identifier understood by wallet connectors.
type Chain string

const (
	ChainMainnet Chain = "-239"
	ChainTestnet Chain = "-3"
)

// Numeric chain identifiers carried in payment records.
const (
	ChainIDMainnet int64 = -239
	ChainIDTestnet int64 = -3
)

// ChainFromID maps a payment record's chain identifier to a connector network.
func ChainFromID(id int64) (Chain, error) {
	switch id {
	case ChainIDMainnet:
		return ChainMainnet, nil
	case ChainIDTestnet:
		return ChainTestnet, nil
	}
	return "", &Error{
		Code:    CodeUnsupportedChain,
		Message: fmt.Sprintf("unsupported chain id: %d", id),
	}
}

func (c Chain) IsTestnet() bool {
	return c == ChainTestnet
}

func (c Chain) String() string {
	return string(c)
}
