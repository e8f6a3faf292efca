package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nuclifi/nuclifi-deployer/internal/domain"
	"github.com/nuclifi/nuclifi-deployer/internal/domain/config"
	"github.com/nuclifi/nuclifi-deployer/internal/usecase"
)

// LedgerStoreAdapter persists ledgers on the file system. The address
// registry goes to deployments/<network>[.suffix].json and the full ledger,
// needed to re-verify later, to .nuclifi/<network>/ledger[.suffix].json.
type LedgerStoreAdapter struct {
	deploymentsDir string
	dataDir        string
}

// NewLedgerStoreAdapter creates a new LedgerStoreAdapter
func NewLedgerStoreAdapter(cfg *config.RuntimeConfig) *LedgerStoreAdapter {
	return &LedgerStoreAdapter{
		deploymentsDir: cfg.DeploymentsDir,
		dataDir:        cfg.DataDir,
	}
}

// ArtifactPath returns where the registry of network is written
func (s *LedgerStoreAdapter) ArtifactPath(network, suffix string) string {
	return filepath.Join(s.deploymentsDir, withSuffix(network, suffix)+".json")
}

// LedgerPath returns where the full ledger of network is written
func (s *LedgerStoreAdapter) LedgerPath(network, suffix string) string {
	return filepath.Join(s.dataDir, network, withSuffix("ledger", suffix)+".json")
}

// SaveLedger writes the registry and the full ledger.
func (s *LedgerStoreAdapter) SaveLedger(_ context.Context, network, suffix string, ledger *domain.DeploymentLedger) (*usecase.SavedLedger, error) {
	if err := validateName(network); err != nil {
		return nil, err
	}

	saved := &usecase.SavedLedger{
		ArtifactPath: s.ArtifactPath(network, suffix),
		LedgerPath:   s.LedgerPath(network, suffix),
	}

	if err := writeJSON(saved.ArtifactPath, ledger.Artifact()); err != nil {
		return nil, fmt.Errorf("failed to write deployment artifact: %w", err)
	}
	if err := writeJSON(saved.LedgerPath, ledger); err != nil {
		return nil, fmt.Errorf("failed to write ledger: %w", err)
	}
	return saved, nil
}

// LoadLedger reads the full ledger of network
func (s *LedgerStoreAdapter) LoadLedger(_ context.Context, network, suffix string) (*domain.DeploymentLedger, error) {
	ledger := domain.NewDeploymentLedger()
	if err := readJSON(s.LedgerPath(network, suffix), ledger); err != nil {
		return nil, err
	}
	return ledger, nil
}

// LoadArtifact reads the registry of network
func (s *LedgerStoreAdapter) LoadArtifact(_ context.Context, network, suffix string) (*domain.DeploymentArtifact, error) {
	artifact := &domain.DeploymentArtifact{}
	if err := readJSON(s.ArtifactPath(network, suffix), artifact); err != nil {
		return nil, err
	}
	return artifact, nil
}

func withSuffix(name, suffix string) string {
	if suffix == "" {
		return name
	}
	return name + "." + suffix
}

func validateName(network string) error {
	if network == "" || strings.ContainsAny(network, `/\`) || network == "." || network == ".." {
		return fmt.Errorf("invalid network name %q", network)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// writeJSON writes v indented with two spaces. The file is replaced
// atomically so a crash never leaves half a registry behind.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return writeFileAtomic(path, data)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Ensure LedgerStoreAdapter implements LedgerStore
var _ usecase.LedgerStore = (*LedgerStoreAdapter)(nil)
