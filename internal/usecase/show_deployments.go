package usecase

import (
	"context"
	"fmt"

	"github.com/nuclifi/nuclifi-deployer/internal/domain"
	"github.com/nuclifi/nuclifi-deployer/internal/domain/config"
)

// ShowDeployments reads the persisted registry of a network
type ShowDeployments struct {
	cfg   *config.RuntimeConfig
	store LedgerStore
}

// NewShowDeployments creates a new show use case
func NewShowDeployments(cfg *config.RuntimeConfig, store LedgerStore) *ShowDeployments {
	return &ShowDeployments{cfg: cfg, store: store}
}

// ShowDeploymentsResult holds the registry and, when present, the full
// ledger it was derived from.
type ShowDeploymentsResult struct {
	Network  string
	Artifact *domain.DeploymentArtifact
	Ledger   *domain.DeploymentLedger
}

// Run loads the registry for the selected network. suffix selects a
// secondary registry such as the strategy-factories one.
func (s *ShowDeployments) Run(ctx context.Context, suffix string) (*ShowDeploymentsResult, error) {
	if s.cfg.Network == nil {
		return nil, fmt.Errorf("no network selected")
	}
	name := s.cfg.Network.Name

	artifact, err := s.store.LoadArtifact(ctx, name, suffix)
	if err != nil {
		return nil, fmt.Errorf("failed to load deployments for %s: %w", name, err)
	}

	result := &ShowDeploymentsResult{Network: name, Artifact: artifact}

	// the full ledger is optional: registries written by older tooling
	// only have the artifact file
	if ledger, err := s.store.LoadLedger(ctx, name, suffix); err == nil {
		result.Ledger = ledger
	}
	return result, nil
}
