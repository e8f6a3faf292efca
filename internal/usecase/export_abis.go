package usecase

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/nuclifi/nuclifi-deployer/internal/domain/models"
)

// ExportABIs writes the ABI of every contract kind a plan produces, so
// front-ends can talk to the deployed addresses.
type ExportABIs struct {
	catalog   PlanCatalog
	contracts ContractRepository
	writer    ABIWriter
}

// NewExportABIs creates a new export use case
func NewExportABIs(catalog PlanCatalog, contracts ContractRepository, writer ABIWriter) *ExportABIs {
	return &ExportABIs{catalog: catalog, contracts: contracts, writer: writer}
}

// Run exports the ABIs used by planName, or by every plan when it is empty.
func (e *ExportABIs) Run(ctx context.Context, planName string) ([]string, error) {
	plans := e.catalog.Plans()
	if planName != "" {
		p, err := e.catalog.Find(planName)
		if err != nil {
			return nil, err
		}
		plans = plans[:0:0]
		plans = append(plans, p)
	}

	var kinds []string
	for _, p := range plans {
		for _, c := range p.Contracts() {
			kinds = append(kinds, c.Kind())
		}
	}
	kinds = lo.Uniq(kinds)

	contracts := make([]*models.Contract, 0, len(kinds))
	for _, kind := range kinds {
		c, err := e.contracts.GetContract(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve ABI %s: %w", kind, err)
		}
		contracts = append(contracts, c)
	}

	return e.writer.WriteABIs(ctx, contracts)
}
