package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nuclifi/nuclifi-deployer/internal/domain/config"
	"github.com/nuclifi/nuclifi-deployer/internal/domain/models"
	"github.com/nuclifi/nuclifi-deployer/internal/usecase"
)

// ABIWriterAdapter exports ABIs as flat, pretty-printed <Name>.json files.
// Stale exports are cleared first.
type ABIWriterAdapter struct {
	dir string
}

// NewABIWriterAdapter creates a new ABIWriterAdapter
func NewABIWriterAdapter(cfg *config.RuntimeConfig) *ABIWriterAdapter {
	return &ABIWriterAdapter{dir: cfg.ABIDir}
}

// WriteABIs writes one file per contract and returns the written paths
func (w *ABIWriterAdapter) WriteABIs(_ context.Context, contracts []*models.Contract) ([]string, error) {
	if err := w.clear(); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(contracts))
	for _, c := range contracts {
		var buf bytes.Buffer
		if err := json.Indent(&buf, c.RawABI, "", "  "); err != nil {
			return paths, fmt.Errorf("invalid ABI for %s: %w", c.Name, err)
		}
		buf.WriteByte('\n')

		path := filepath.Join(w.dir, c.Name+".json")
		if err := writeFileAtomic(path, buf.Bytes()); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (w *ABIWriterAdapter) clear() error {
	stale, err := filepath.Glob(filepath.Join(w.dir, "*.json"))
	if err != nil {
		return err
	}
	for _, path := range stale {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to clear %s: %w", path, err)
		}
	}
	return nil
}

// Ensure ABIWriterAdapter implements ABIWriter
var _ usecase.ABIWriter = (*ABIWriterAdapter)(nil)
