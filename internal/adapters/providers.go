package adapters

import (
	"log/slog"

	"github.com/google/wire"

	"github.com/nuclifi/nuclifi-deployer/internal/adapters/blockchain"
	"github.com/nuclifi/nuclifi-deployer/internal/adapters/fs"
	"github.com/nuclifi/nuclifi-deployer/internal/adapters/interactive"
	"github.com/nuclifi/nuclifi-deployer/internal/adapters/repository/contracts"
	"github.com/nuclifi/nuclifi-deployer/internal/adapters/verification"
	"github.com/nuclifi/nuclifi-deployer/internal/config"
	domainconfig "github.com/nuclifi/nuclifi-deployer/internal/domain/config"
	"github.com/nuclifi/nuclifi-deployer/internal/plans"
	"github.com/nuclifi/nuclifi-deployer/internal/usecase"
)

// ProvideChainClient provides the chain client and closes its connection
// when the app is torn down
func ProvideChainClient(cfg *domainconfig.RuntimeConfig, log *slog.Logger) (*blockchain.Client, func()) {
	client := blockchain.NewClient(cfg, log)
	return client, client.Close
}

// FSSet provides filesystem-based implementations
var FSSet = wire.NewSet(
	fs.NewLedgerStoreAdapter,
	wire.Bind(new(usecase.LedgerStore), new(*fs.LedgerStoreAdapter)),

	fs.NewABIWriterAdapter,
	wire.Bind(new(usecase.ABIWriter), new(*fs.ABIWriterAdapter)),
)

// RepositorySet provides the compiled contract repository
var RepositorySet = wire.NewSet(
	contracts.NewRepository,
	wire.Bind(new(usecase.ContractRepository), new(*contracts.Repository)),
)

// VerificationSet provides the forge-based source verifier
var VerificationSet = wire.NewSet(
	verification.NewForgeVerifier,
	wire.Bind(new(usecase.SourceVerifier), new(*verification.ForgeVerifier)),
)

// BlockchainSet provides blockchain-based implementations
var BlockchainSet = wire.NewSet(
	ProvideChainClient,
	wire.Bind(new(usecase.ChainClient), new(*blockchain.Client)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewSelectorAdapter,
	wire.Bind(new(usecase.PlanSelector), new(*interactive.SelectorAdapter)),
	wire.Bind(new(usecase.Confirmer), new(*interactive.SelectorAdapter)),
)

// ConfigSet provides configuration-based implementations
var ConfigSet = wire.NewSet(
	config.ProvideNetworkResolver,
	wire.Bind(new(usecase.NetworkResolver), new(*config.NetworkResolver)),
)

// PlanSet provides the built-in deployment plans
var PlanSet = wire.NewSet(
	plans.NewCatalog,
	wire.Bind(new(usecase.PlanCatalog), new(*plans.Catalog)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	FSSet,
	RepositorySet,
	VerificationSet,
	BlockchainSet,
	InteractiveSet,
	ConfigSet,
	PlanSet,
)
