package walletauth

import "sort"

// NativeCurrency describes a chain's native token.
type NativeCurrency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// ChainDescriptor is a static registry entry for a supported network.
// Entries live for the process lifetime and are never mutated.
type ChainDescriptor struct {
	ChainID          int64          `json:"chain_id"`
	Name             string         `json:"name"`
	RPCURL           string         `json:"rpc_url"`
	BlockExplorerURL string         `json:"block_explorer_url"`
	Native           NativeCurrency `json:"native_currency"`
}

// chainTable is fixed at build time. There are no mutation operations.
var chainTable = map[int64]ChainDescriptor{
	1: {
		ChainID:          1,
		Name:             "Ethereum Mainnet",
		RPCURL:           "https://eth.llamarpc.com",
		BlockExplorerURL: "https://etherscan.io",
		Native:           NativeCurrency{Name: "Ether", Symbol: "ETH", Decimals: 18},
	},
	11155111: {
		ChainID:          11155111,
		Name:             "Sepolia",
		RPCURL:           "https://rpc.sepolia.org",
		BlockExplorerURL: "https://sepolia.etherscan.io",
		Native:           NativeCurrency{Name: "Sepolia Ether", Symbol: "SEP", Decimals: 18},
	},
	137: {
		ChainID:          137,
		Name:             "Polygon",
		RPCURL:           "https://polygon-rpc.com",
		BlockExplorerURL: "https://polygonscan.com",
		Native:           NativeCurrency{Name: "POL", Symbol: "POL", Decimals: 18},
	},
	80002: {
		ChainID:          80002,
		Name:             "Polygon Amoy",
		RPCURL:           "https://rpc-amoy.polygon.technology",
		BlockExplorerURL: "https://amoy.polygonscan.com",
		Native:           NativeCurrency{Name: "POL", Symbol: "POL", Decimals: 18},
	},
	1337: {
		ChainID:          1337,
		Name:             "Localhost",
		RPCURL:           "http://127.0.0.1:8545",
		BlockExplorerURL: "",
		Native:           NativeCurrency{Name: "Ether", Symbol: "ETH", Decimals: 18},
	},
}

// LookupChain returns the descriptor for a chain id. The boolean is an
// explicit "not found" result, it is not an error for a chain to be
// unsupported.
func LookupChain(chainID int64) (ChainDescriptor, bool) {
	desc, ok := chainTable[chainID]
	return desc, ok
}

// IsSupportedChain reports whether the chain id is in the registry.
func IsSupportedChain(chainID int64) bool {
	_, ok := chainTable[chainID]
	return ok
}

// SupportedChains returns every registry entry ordered by chain id.
func SupportedChains() []ChainDescriptor {
	chains := make([]ChainDescriptor, 0, len(chainTable))
	for _, desc := range chainTable {
		chains = append(chains, desc)
	}
	sort.Slice(chains, func(i, j int) bool {
		return chains[i].ChainID < chains[j].ChainID
	})
	return chains
}
