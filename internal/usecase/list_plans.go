package usecase

import (
	"context"

	"github.com/nuclifi/nuclifi-deployer/internal/domain"
)

// ListPlans lists the deployment plans
type ListPlans struct {
	catalog PlanCatalog
}

// NewListPlans creates a new list plans use case
func NewListPlans(catalog PlanCatalog) *ListPlans {
	return &ListPlans{catalog: catalog}
}

// PlanSummary describes a plan for display
type PlanSummary struct {
	Name           string
	Description    string
	ArtifactSuffix string
	Contracts      int
	WiringCalls    int
	SetupCalls     int
}

// Run returns a summary of every plan
func (l *ListPlans) Run(ctx context.Context) []PlanSummary {
	plans := l.catalog.Plans()
	out := make([]PlanSummary, 0, len(plans))
	for _, p := range plans {
		setup := 0
		for _, s := range p.Stages {
			setup += len(s.Setup)
		}
		out = append(out, PlanSummary{
			Name:           p.Name,
			Description:    p.Description,
			ArtifactSuffix: p.ArtifactSuffix,
			Contracts:      len(p.Contracts()),
			WiringCalls:    len(p.Wiring),
			SetupCalls:     setup,
		})
	}
	return out
}

// Find returns the named plan
func (l *ListPlans) Find(name string) (*domain.DeploymentPlan, error) {
	return l.catalog.Find(name)
}

// All returns every plan
func (l *ListPlans) All() []*domain.DeploymentPlan {
	return l.catalog.Plans()
}
