package app

import (
	"github.com/nuclifi/nuclifi-deployer/internal/domain/config"
	"github.com/nuclifi/nuclifi-deployer/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig

	// Shared dependencies
	Selector  usecase.PlanSelector
	Confirmer usecase.Confirmer

	// Use cases
	DeployProtocol  *usecase.DeployProtocol
	VerifyContracts *usecase.VerifyContracts
	ShowDeployments *usecase.ShowDeployments
	ListPlans       *usecase.ListPlans
	ExportABIs      *usecase.ExportABIs
	ListNetworks    *usecase.ListNetworks
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	selector usecase.PlanSelector,
	confirmer usecase.Confirmer,
	deployProtocol *usecase.DeployProtocol,
	verifyContracts *usecase.VerifyContracts,
	showDeployments *usecase.ShowDeployments,
	listPlans *usecase.ListPlans,
	exportABIs *usecase.ExportABIs,
	listNetworks *usecase.ListNetworks,
) *App {
	return &App{
		Config:          cfg,
		Selector:        selector,
		Confirmer:       confirmer,
		DeployProtocol:  deployProtocol,
		VerifyContracts: verifyContracts,
		ShowDeployments: showDeployments,
		ListPlans:       listPlans,
		ExportABIs:      exportABIs,
		ListNetworks:    listNetworks,
	}
}
