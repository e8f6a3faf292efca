package config

import (
	"fmt"
	"sort"

	"github.com/nuclifi/nuclifi-deployer/internal/domain/config"
)

type builtinNetwork struct {
	chainID     uint64
	infuraHost  string // empty for local chains
	rpcURL      string
	explorerURL string
}

var builtinNetworks = map[string]builtinNetwork{
	"goerli": {
		chainID:     5,
		infuraHost:  "goerli.infura.io",
		explorerURL: "https://goerli.etherscan.io",
	},
	"sepolia": {
		chainID:     11155111,
		infuraHost:  "sepolia.infura.io",
		explorerURL: "https://sepolia.etherscan.io",
	},
	"localhost": {
		chainID: 31337,
		rpcURL:  "http://127.0.0.1:8545",
	},
}

// NetworkResolver resolves network names from foundry.toml [rpc_endpoints]
// and the built-in Infura networks.
type NetworkResolver struct {
	foundry         *config.FoundryConfig
	rawEndpoints    map[string]string
	infuraProjectID string
	etherscanAPIKey string
}

// NewNetworkResolver creates a new network resolver
func NewNetworkResolver(foundry *config.FoundryConfig, rawEndpoints map[string]string, infuraProjectID, etherscanAPIKey string) *NetworkResolver {
	return &NetworkResolver{
		foundry:         foundry,
		rawEndpoints:    rawEndpoints,
		infuraProjectID: infuraProjectID,
		etherscanAPIKey: etherscanAPIKey,
	}
}

// Networks returns every resolvable network name, sorted
func (r *NetworkResolver) Networks() []string {
	seen := make(map[string]bool)
	for name := range builtinNetworks {
		seen[name] = true
	}
	for name := range r.foundry.RpcEndpoints {
		seen[name] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the configuration of a network. A known network whose
// endpoint cannot be built resolves with an empty RPC URL and MissingRPC
// describing what to set; connecting to it fails later with
// ErrMissingRPCURL.
func (r *NetworkResolver) Resolve(name string) (*config.Network, error) {
	builtin, isBuiltin := builtinNetworks[name]
	rpcURL, inFoundry := r.foundry.RpcEndpoints[name]
	if !isBuiltin && !inFoundry {
		return nil, fmt.Errorf("%w: %s (add it to foundry.toml [rpc_endpoints])", config.ErrUnknownNetwork, name)
	}

	network := &config.Network{
		Name:    name,
		RPCURL:  rpcURL,
		ChainID: builtin.chainID,
	}

	if network.RPCURL == "" && isBuiltin {
		switch {
		case builtin.rpcURL != "":
			network.RPCURL = builtin.rpcURL
		case r.infuraProjectID != "":
			network.RPCURL = fmt.Sprintf("https://%s/v3/%s", builtin.infuraHost, r.infuraProjectID)
		default:
			network.MissingRPC = "INFURA_PROJECT_ID"
		}
	}
	if network.RPCURL == "" && network.MissingRPC == "" {
		if envVar, ok := DetectEnvVar(r.rawEndpoints[name]); ok {
			network.MissingRPC = envVar
		} else {
			network.MissingRPC = GenerateEnvVarName(name)
		}
	}

	network.ExplorerURL = builtin.explorerURL
	network.EtherscanAPIKey = r.etherscanAPIKey
	if etherscan, ok := r.foundry.Etherscan[name]; ok {
		if etherscan.URL != "" {
			network.ExplorerURL = etherscan.URL
		}
		if etherscan.Key != "" {
			network.EtherscanAPIKey = etherscan.Key
		}
	}

	return network, nil
}
