//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/spf13/viper"

	"github.com/nuclifi/nuclifi-deployer/internal/adapters"
	"github.com/nuclifi/nuclifi-deployer/internal/config"
	"github.com/nuclifi/nuclifi-deployer/internal/logging"
	"github.com/nuclifi/nuclifi-deployer/internal/usecase"
)

// InitApp creates a fully wired App instance. The returned cleanup closes
// the chain connection.
func InitApp(v *viper.Viper, sink usecase.ProgressSink) (*App, func(), error) {
	wire.Build(
		// Configuration
		config.Provider,
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.NewGasPricer,
		usecase.NewWireContracts,
		usecase.NewVerifyContracts,
		usecase.NewDeployProtocol,
		usecase.NewShowDeployments,
		usecase.NewListPlans,
		usecase.NewExportABIs,
		usecase.NewListNetworks,

		// App
		NewApp,
	)
	return nil, nil, nil
}
