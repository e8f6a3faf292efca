package config

// FoundryConfig represents the parts of foundry.toml the deployer reads
type FoundryConfig struct {
	Profile      map[string]ProfileConfig   `toml:"profile"`
	RpcEndpoints map[string]string          `toml:"rpc_endpoints"`
	Etherscan    map[string]EtherscanConfig `toml:"etherscan,omitempty"`
}

// EtherscanConfig represents Etherscan configuration for a network
// This matches Foundry's expected structure
type EtherscanConfig struct {
	Key string `toml:"key,omitempty"` // API key for verification
	URL string `toml:"url,omitempty"` // API URL (for custom explorers)
}

// ProfileConfig represents a profile's foundry configuration
type ProfileConfig struct {
	SrcPath       string `toml:"src,omitempty"`
	OutPath       string `toml:"out,omitempty"`
	SolcVersion   string `toml:"solc_version,omitempty"`
	Optimizer     bool   `toml:"optimizer,omitempty"`
	OptimizerRuns int    `toml:"optimizer_runs,omitempty"`
}
