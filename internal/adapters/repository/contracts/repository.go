package contracts

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/nuclifi/nuclifi-deployer/internal/domain"
	"github.com/nuclifi/nuclifi-deployer/internal/domain/config"
	"github.com/nuclifi/nuclifi-deployer/internal/domain/models"
	"github.com/nuclifi/nuclifi-deployer/internal/usecase"
)

// Repository indexes compiled artifacts from forge (out/) and hardhat
// (artifacts/) build directories.
type Repository struct {
	projectRoot  string
	artifactDirs []string
	contracts    map[string]*models.Contract   // key: "path:contractName"
	names        map[string][]*models.Contract // key: contract name
	log          *slog.Logger
	mu           sync.RWMutex
	indexed      bool
}

// NewRepository creates a new contract repository
func NewRepository(cfg *config.RuntimeConfig, log *slog.Logger) *Repository {
	return &Repository{
		projectRoot:  cfg.ProjectRoot,
		artifactDirs: cfg.ArtifactDirs,
		log:          log,
		contracts:    make(map[string]*models.Contract),
		names:        make(map[string][]*models.Contract),
	}
}

// Index discovers all artifacts. It runs once.
func (r *Repository) Index() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexed {
		return nil
	}

	found := false
	for _, dir := range r.artifactDirs {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		found = true

		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if d.Name() == "build-info" {
					return filepath.SkipDir
				}
				return nil
			}
			if filepath.Ext(path) != ".json" || strings.HasSuffix(path, ".dbg.json") {
				return nil
			}
			return r.processArtifact(path)
		})
		if err != nil {
			return fmt.Errorf("failed to index %s: %w", dir, err)
		}
	}

	if !found {
		return fmt.Errorf("no build output found in %s: run `forge build` or `npx hardhat compile`", strings.Join(r.artifactDirs, ", "))
	}

	r.indexed = true
	return nil
}

// processArtifact indexes a single artifact file. Files that are not
// contract artifacts are skipped.
func (r *Repository) processArtifact(artifactPath string) error {
	data, err := os.ReadFile(artifactPath)
	if err != nil {
		return err
	}

	var artifact models.Artifact
	if err := json.Unmarshal(data, &artifact); err != nil || len(artifact.ABI) == 0 {
		return nil
	}

	fallback := strings.TrimSuffix(filepath.Base(artifactPath), ".json")
	relPath, _ := filepath.Rel(r.projectRoot, artifactPath)

	contract, err := artifact.ToContract(fallback, relPath)
	if err != nil {
		r.log.Debug("skipping artifact", "path", relPath, "error", err)
		return nil
	}

	key := contract.FullyQualifiedName()
	if _, exists := r.contracts[key]; exists {
		// forge output is walked first and wins
		return nil
	}
	r.contracts[key] = contract
	r.names[contract.Name] = append(r.names[contract.Name], contract)

	r.log.Debug("indexed artifact", "contract", key, "path", relPath)
	return nil
}

// GetContract retrieves a contract by name or path:name
func (r *Repository) GetContract(ctx context.Context, key string) (*models.Contract, error) {
	if err := r.Index(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	if contract, ok := r.contracts[key]; ok {
		return contract, nil
	}

	matches := r.names[key]
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", domain.ErrContractNotFound, key)
	case 1:
		return matches[0], nil
	default:
		candidates := make([]string, 0, len(matches))
		for _, c := range matches {
			candidates = append(candidates, c.FullyQualifiedName())
		}
		sort.Strings(candidates)
		return nil, fmt.Errorf("ambiguous contract %s, use one of: %s", key, strings.Join(candidates, ", "))
	}
}

// ListContracts returns every indexed contract sorted by qualified name
func (r *Repository) ListContracts(ctx context.Context) ([]*models.Contract, error) {
	if err := r.Index(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Contract, 0, len(r.contracts))
	for _, c := range r.contracts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].FullyQualifiedName() < out[j].FullyQualifiedName()
	})
	return out, nil
}

// Ensure the adapter implements the interface
var _ usecase.ContractRepository = (*Repository)(nil)
