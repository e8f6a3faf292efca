package usecase

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/nuclifi/nuclifi-deployer/internal/domain"
	"github.com/nuclifi/nuclifi-deployer/internal/domain/models"
)

// ChainClient is the chain-client collaborator. Every transaction it submits
// is signed by the single process-wide credential.
type ChainClient interface {
	// Connect dials the RPC endpoint and checks the chain ID.
	Connect(ctx context.Context) error
	ChainID() uint64
	Sender() common.Address
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	// DeployContract submits a creation transaction and returns without
	// waiting for it to be mined.
	DeployContract(ctx context.Context, contract *models.Contract, gasPrice *big.Int, args ...any) (*models.PendingTx, error)
	// Transact submits a method call on a deployed contract.
	Transact(ctx context.Context, target models.ContractAt, gasPrice *big.Int, method string, args ...any) (*models.PendingTx, error)
	// WaitDeployed blocks until the creation transaction is mined and code
	// exists at the new address.
	WaitDeployed(ctx context.Context, tx *models.PendingTx) (*models.Receipt, error)
	// WaitMined blocks until the transaction is mined.
	WaitMined(ctx context.Context, tx *models.PendingTx) (*models.Receipt, error)
}

// ContractRepository resolves factory identifiers to compiled contracts
type ContractRepository interface {
	GetContract(ctx context.Context, name string) (*models.Contract, error)
	ListContracts(ctx context.Context) ([]*models.Contract, error)
}

// VerifyRequest carries everything an explorer needs to match a deployment
// with its source.
type VerifyRequest struct {
	LogicalName     string
	Factory         string
	Address         common.Address
	ConstructorArgs []any
	EncodedArgs     []byte
}

// SourceVerifier is the source-verification collaborator. Submitting an
// already verified contract must not be an error.
type SourceVerifier interface {
	Verify(ctx context.Context, req VerifyRequest) error
}

// LedgerStore persists the results of a run
type LedgerStore interface {
	// SaveLedger writes the address registry and the full ledger.
	SaveLedger(ctx context.Context, network, suffix string, ledger *domain.DeploymentLedger) (*SavedLedger, error)
	LoadLedger(ctx context.Context, network, suffix string) (*domain.DeploymentLedger, error)
	LoadArtifact(ctx context.Context, network, suffix string) (*domain.DeploymentArtifact, error)
}

// SavedLedger lists the files written by SaveLedger.
type SavedLedger struct {
	ArtifactPath string
	LedgerPath   string
}

// ABIWriter writes exported ABI files
type ABIWriter interface {
	WriteABIs(ctx context.Context, contracts []*models.Contract) ([]string, error)
}

// Confirmer asks the operator before transactions are sent
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// PlanCatalog lists the deployment plans known to the deployer
type PlanCatalog interface {
	Plans() []*domain.DeploymentPlan
	Find(name string) (*domain.DeploymentPlan, error)
}

// PlanSelector chooses a plan interactively
type PlanSelector interface {
	SelectPlan(ctx context.Context, plans []*domain.DeploymentPlan) (*domain.DeploymentPlan, error)
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage   domain.RunState
	Current int
	Total   int
	Message string
	Spinner bool
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}
