package config

import (
	"github.com/licensekit/license-sdk-go/pkg/errs"
)

// NetworkProfile describes a resolved target chain. Profiles are immutable:
// ResolveNetwork returns a copy and nothing in the SDK mutates it afterwards.
type NetworkProfile struct {
	ChainID     int64  `json:"chain_id" yaml:"chain_id"`
	RPCEndpoint string `json:"rpc_endpoint" yaml:"rpc_endpoint"`
	ExplorerURL string `json:"explorer_url" yaml:"explorer_url"`
	Name        string `json:"name" yaml:"name"`
}

// CustomNetwork is the identifier for user-supplied networks, which require
// an explicit RPC endpoint and chain ID.
const CustomNetwork = "custom"

// knownNetworks maps recognized network identifiers to their default
// profiles. The RPC endpoints are public gateways; production callers
// normally override them with a provider endpoint.
var knownNetworks = map[string]NetworkProfile{
	"mainnet": {
		ChainID:     1,
		RPCEndpoint: "https://eth.llamarpc.com",
		ExplorerURL: "https://etherscan.io",
		Name:        "Ethereum Mainnet",
	},
	"sepolia": {
		ChainID:     11155111,
		RPCEndpoint: "https://rpc.sepolia.org",
		ExplorerURL: "https://sepolia.etherscan.io",
		Name:        "Sepolia Testnet",
	},
	"holesky": {
		ChainID:     17000,
		RPCEndpoint: "https://ethereum-holesky-rpc.publicnode.com",
		ExplorerURL: "https://holesky.etherscan.io",
		Name:        "Holesky Testnet",
	},
	"polygon": {
		ChainID:     137,
		RPCEndpoint: "https://polygon-rpc.com",
		ExplorerURL: "https://polygonscan.com",
		Name:        "Polygon Mainnet",
	},
	"polygon-amoy": {
		ChainID:     80002,
		RPCEndpoint: "https://rpc-amoy.polygon.technology",
		ExplorerURL: "https://amoy.polygonscan.com",
		Name:        "Polygon Amoy Testnet",
	},
	"arbitrum": {
		ChainID:     42161,
		RPCEndpoint: "https://arb1.arbitrum.io/rpc",
		ExplorerURL: "https://arbiscan.io",
		Name:        "Arbitrum One",
	},
	"optimism": {
		ChainID:     10,
		RPCEndpoint: "https://mainnet.optimism.io",
		ExplorerURL: "https://optimistic.etherscan.io",
		Name:        "OP Mainnet",
	},
	"base": {
		ChainID:     8453,
		RPCEndpoint: "https://mainnet.base.org",
		ExplorerURL: "https://basescan.org",
		Name:        "Base",
	},
	"bsc": {
		ChainID:     56,
		RPCEndpoint: "https://bsc-dataseed.bnbchain.org",
		ExplorerURL: "https://bscscan.com",
		Name:        "BNB Smart Chain",
	},
}

// KnownNetworks returns the identifiers of all preconfigured networks,
// excluding "custom".
func KnownNetworks() []string {
	names := make([]string, 0, len(knownNetworks))
	for name := range knownNetworks {
		names = append(names, name)
	}
	return names
}

// ResolveNetwork maps a network identifier to a concrete profile. For
// recognized names the preconfigured profile is returned, with endpoint
// overridden by explicitEndpoint when supplied. For "custom" both
// explicitEndpoint and explicitChainID are required. It is a pure function:
// no I/O and no process state.
func ResolveNetwork(network, explicitEndpoint string, explicitChainID int64) (NetworkProfile, error) {
	if network == CustomNetwork {
		if explicitEndpoint == "" {
			return NetworkProfile{}, errs.New(errs.InvalidNetwork, "custom network requires an explicit RPC endpoint")
		}
		if explicitChainID <= 0 {
			return NetworkProfile{}, errs.New(errs.InvalidNetwork, "custom network requires an explicit chain id")
		}
		return NetworkProfile{
			ChainID:     explicitChainID,
			RPCEndpoint: explicitEndpoint,
			Name:        "Custom Network",
		}, nil
	}

	profile, ok := knownNetworks[network]
	if !ok {
		return NetworkProfile{}, errs.Newf(errs.InvalidNetwork, "unrecognized network %q", network)
	}
	if explicitEndpoint != "" {
		profile.RPCEndpoint = explicitEndpoint
	}
	return profile, nil
}
