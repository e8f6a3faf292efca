package config

import (
	"crypto/ecdsa"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// RuntimeConfig represents the complete runtime configuration
// This is constructed once at startup and injected into use cases; core code
// never reads the process environment itself.
type RuntimeConfig struct {
	// Core settings
	ProjectRoot    string
	DataDir        string // full ledgers, one per network
	DeploymentsDir string // checked-in address registries
	ABIDir         string // exported ABIs
	ArtifactDirs   []string

	// Context settings
	Network *Network

	// Signing account, nil when PRIVATE_KEY is not set
	Credential *Credential

	// Execution settings
	Debug          bool
	NonInteractive bool
	Timeout        time.Duration
	ConfirmTimeout time.Duration

	// Resolved configurations
	FoundryConfig *FoundryConfig
}

// Network represents network configuration
type Network struct {
	Name            string `json:"name"`
	RPCURL          string `json:"rpcUrl"`
	ChainID         uint64 `json:"chainId,omitempty"` // 0 means ask the node
	ExplorerURL     string `json:"explorerUrl,omitempty"`
	EtherscanAPIKey string `json:"-"`
	// MissingRPC names the variable to set when RPCURL could not be built
	MissingRPC string `json:"-"`
}

// IsLocal reports whether the network is a local dev chain (anvil/hardhat).
func (n *Network) IsLocal() bool {
	return n.ChainID == 31337 || n.Name == "localhost" || n.Name == "anvil"
}

// Credential is the single signing key of the process.
type Credential struct {
	key     *ecdsa.PrivateKey
	Address common.Address
}

// NewCredential wraps a parsed private key.
func NewCredential(key *ecdsa.PrivateKey, address common.Address) *Credential {
	return &Credential{key: key, Address: address}
}

// PrivateKey returns the signing key.
func (c *Credential) PrivateKey() *ecdsa.PrivateKey {
	return c.key
}

// String never prints key material.
func (c *Credential) String() string {
	return c.Address.Hex()
}
