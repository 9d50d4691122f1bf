package types

import "fmt"

// EVM chain ids used when settling eth/bnb deposits.
const (
	EVMChainEthereum        int64 = 1
	EVMChainEthereumSepolia int64 = 11155111
	EVMChainBSC             int64 = 56
	EVMChainBSCTestnet      int64 = 97
)

// EVMChainID resolves the EVM chain id an asset settles on for the given network.
func EVMChainID(asset Asset, chain Chain) (int64, error) {
	switch {
	case asset == AssetETH && chain == ChainMainnet:
		return EVMChainEthereum, nil
	case asset == AssetETH && chain == ChainTestnet:
		return EVMChainEthereumSepolia, nil
	case asset == AssetBNB && chain == ChainMainnet:
		return EVMChainBSC, nil
	case asset == AssetBNB && chain == ChainTestnet:
		return EVMChainBSCTestnet, nil
	}
	return 0, &Error{
		Code:    CodeUnsupportedChain,
		Message: fmt.Sprintf("no EVM chain for asset %s on network %s", asset, chain),
	}
}
