package usecase

import (
	"context"

	"github.com/nuclifi/nuclifi-deployer/internal/domain/config"
)

// NetworkResolver resolves network names to connection settings
type NetworkResolver interface {
	Networks() []string
	Resolve(name string) (*config.Network, error)
}

// ListNetworksResult contains the result of listing networks
type ListNetworksResult struct {
	Current  string
	Networks []NetworkStatus
}

// NetworkStatus represents the status of a network
type NetworkStatus struct {
	Name    string
	ChainID uint64
	Local   bool
	// MissingRPC names the variable to set before the network is usable
	MissingRPC string
	Error      error
}

// Ready reports whether a deployment could connect to the network.
func (s NetworkStatus) Ready() bool {
	return s.Error == nil && s.MissingRPC == ""
}

// ListNetworks is a use case for listing available networks
type ListNetworks struct {
	cfg      *config.RuntimeConfig
	resolver NetworkResolver
}

// NewListNetworks creates a new ListNetworks use case
func NewListNetworks(cfg *config.RuntimeConfig, resolver NetworkResolver) *ListNetworks {
	return &ListNetworks{
		cfg:      cfg,
		resolver: resolver,
	}
}

// Run executes the use case. Resolution problems are reported per network.
func (uc *ListNetworks) Run(ctx context.Context) (*ListNetworksResult, error) {
	result := &ListNetworksResult{}
	if uc.cfg.Network != nil {
		result.Current = uc.cfg.Network.Name
	}

	names := uc.resolver.Networks()
	result.Networks = make([]NetworkStatus, 0, len(names))
	for _, name := range names {
		status := NetworkStatus{Name: name}

		network, err := uc.resolver.Resolve(name)
		if err != nil {
			status.Error = err
		} else {
			status.ChainID = network.ChainID
			status.Local = network.IsLocal()
			status.MissingRPC = network.MissingRPC
		}

		result.Networks = append(result.Networks, status)
	}

	return result, nil
}
