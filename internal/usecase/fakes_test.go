package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/nuclifi/nuclifi-deployer/internal/domain"
	"github.com/nuclifi/nuclifi-deployer/internal/domain/config"
	"github.com/nuclifi/nuclifi-deployer/internal/domain/models"
)

var testDeployer = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRuntimeConfig(network string, chainID uint64) *config.RuntimeConfig {
	return &config.RuntimeConfig{
		Network: &config.Network{Name: network, RPCURL: "http://rpc", ChainID: chainID},
	}
}

// sentTx is a transaction recorded by fakeChain
type sentTx struct {
	Factory  string
	Target   common.Address
	Method   string
	Args     []any
	GasPrice *big.Int
}

// fakeChain hands out sequential addresses and mines everything instantly
type fakeChain struct {
	mu sync.Mutex

	connectErr error
	gasPrice   *big.Int
	gasErr     error

	// failDeployAt fails the n-th creation transaction (1-based)
	failDeployAt int
	// failMethod fails every call to the named method
	failMethod string

	connected bool
	deploys   []sentTx
	calls     []sentTx
	nextAddr  int64
}

func newFakeChain() *fakeChain {
	return &fakeChain{gasPrice: big.NewInt(100)}
}

func (f *fakeChain) Connect(context.Context) error {
	if f.connectErr != nil {
		return f.connectErr
	}
	f.connected = true
	return nil
}

func (f *fakeChain) ChainID() uint64        { return 5 }
func (f *fakeChain) Sender() common.Address { return testDeployer }

func (f *fakeChain) SuggestGasPrice(context.Context) (*big.Int, error) {
	if f.gasErr != nil {
		return nil, f.gasErr
	}
	return f.gasPrice, nil
}

func (f *fakeChain) DeployContract(ctx context.Context, contract *models.Contract, gasPrice *big.Int, args ...any) (*models.PendingTx, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deploys = append(f.deploys, sentTx{Factory: contract.Name, Args: args, GasPrice: gasPrice})
	if f.failDeployAt == len(f.deploys) {
		return nil, errors.New("insufficient funds for gas * price + value")
	}

	f.nextAddr++
	return &models.PendingTx{
		Hash:            common.BigToHash(big.NewInt(1000 + f.nextAddr)),
		ContractAddress: common.BigToAddress(big.NewInt(0x1000 + f.nextAddr)),
	}, nil
}

func (f *fakeChain) Transact(ctx context.Context, target models.ContractAt, gasPrice *big.Int, method string, args ...any) (*models.PendingTx, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, sentTx{
		Factory:  target.Contract.Name,
		Target:   target.Address,
		Method:   method,
		Args:     args,
		GasPrice: gasPrice,
	})
	if method == f.failMethod {
		return nil, fmt.Errorf("execution reverted: %s", method)
	}
	return &models.PendingTx{Hash: common.BigToHash(big.NewInt(int64(5000 + len(f.calls))))}, nil
}

func (f *fakeChain) WaitDeployed(ctx context.Context, tx *models.PendingTx) (*models.Receipt, error) {
	return &models.Receipt{TxHash: tx.Hash, BlockNumber: uint64(len(f.deploys)), ContractAddress: tx.ContractAddress}, nil
}

func (f *fakeChain) WaitMined(ctx context.Context, tx *models.PendingTx) (*models.Receipt, error) {
	return &models.Receipt{TxHash: tx.Hash, BlockNumber: uint64(100 + len(f.calls))}, nil
}

func (f *fakeChain) methods() []string {
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Method)
	}
	return out
}

const testABIs = `{
  "MockERC20": [
    {"type":"constructor","inputs":[{"name":"name","type":"string"},{"name":"symbol","type":"string"},{"name":"decimals","type":"uint8"}]},
    {"type":"function","name":"transfer","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
  ],
  "IERC20": [
    {"type":"function","name":"transfer","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
  ],
  "MockStaking": [
    {"type":"constructor","inputs":[{"name":"owner","type":"address"},{"name":"stakingToken","type":"address"},{"name":"rewardsToken","type":"address"},{"name":"duration","type":"uint256"}]},
    {"type":"function","name":"notifyRewardAmount","stateMutability":"nonpayable","inputs":[{"name":"reward","type":"uint256"}],"outputs":[]}
  ],
  "MockStakingStrategyFactory": [
    {"type":"function","name":"setAddresses","stateMutability":"nonpayable","inputs":[{"name":"staking","type":"address"},{"name":"controller","type":"address"},{"name":"certificate","type":"address"}],"outputs":[]}
  ],
  "NuclifiController": [
    {"type":"function","name":"setAddresses","stateMutability":"nonpayable","inputs":[{"name":"usdc","type":"address"},{"name":"certificate","type":"address"},{"name":"configuration","type":"address"}],"outputs":[]}
  ],
  "NuclifiConfiguration": [
    {"type":"function","name":"setStrategyFactoryAddress","stateMutability":"nonpayable","inputs":[{"name":"id","type":"uint256"},{"name":"factory","type":"address"}],"outputs":[]}
  ],
  "NuclifiCertificate": [
    {"type":"constructor","inputs":[{"name":"controller","type":"address"}]}
  ]
}`

// fakeRepository serves the Nuclifi contract ABIs with dummy bytecode
type fakeRepository struct {
	contracts map[string]*models.Contract
}

func newFakeRepository(t *testing.T) *fakeRepository {
	t.Helper()

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(testABIs), &raw))

	repo := &fakeRepository{contracts: make(map[string]*models.Contract)}
	for name, rawABI := range raw {
		parsed, err := abi.JSON(strings.NewReader(string(rawABI)))
		require.NoError(t, err, name)

		bytecode := []byte{0x60, 0x80, 0x60, 0x40}
		if name == "IERC20" {
			bytecode = nil
		}
		repo.contracts[name] = &models.Contract{
			Name:       name,
			SourcePath: "src/" + name + ".sol",
			RawABI:     []byte(rawABI),
			ABI:        parsed,
			Bytecode:   bytecode,
		}
	}
	return repo
}

func (r *fakeRepository) GetContract(ctx context.Context, name string) (*models.Contract, error) {
	c, ok := r.contracts[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, domain.ErrContractNotFound)
	}
	return c, nil
}

func (r *fakeRepository) ListContracts(ctx context.Context) ([]*models.Contract, error) {
	out := make([]*models.Contract, 0, len(r.contracts))
	for _, c := range r.contracts {
		out = append(out, c)
	}
	return out, nil
}

// fakeVerifier fails or panics for selected logical names
type fakeVerifier struct {
	fail   map[string]error
	panics map[string]bool
	seen   []string
}

func (f *fakeVerifier) Verify(ctx context.Context, req VerifyRequest) error {
	f.seen = append(f.seen, req.LogicalName)
	if f.panics[req.LogicalName] {
		panic("explorer client exploded")
	}
	if err := f.fail[req.LogicalName]; err != nil {
		return err
	}
	return nil
}

// fakeStore keeps saved ledgers in memory
type fakeStore struct {
	saveErr error
	saves   int
	ledgers map[string]*domain.DeploymentLedger
}

func newFakeStore() *fakeStore {
	return &fakeStore{ledgers: make(map[string]*domain.DeploymentLedger)}
}

func storeKey(network, suffix string) string {
	if suffix == "" {
		return network
	}
	return network + "." + suffix
}

func (s *fakeStore) SaveLedger(ctx context.Context, network, suffix string, ledger *domain.DeploymentLedger) (*SavedLedger, error) {
	s.saves++
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	key := storeKey(network, suffix)
	s.ledgers[key] = ledger
	return &SavedLedger{
		ArtifactPath: "deployments/" + key + ".json",
		LedgerPath:   ".nuclifi/" + network + "/ledger.json",
	}, nil
}

func (s *fakeStore) LoadLedger(ctx context.Context, network, suffix string) (*domain.DeploymentLedger, error) {
	ledger, ok := s.ledgers[storeKey(network, suffix)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return ledger, nil
}

func (s *fakeStore) LoadArtifact(ctx context.Context, network, suffix string) (*domain.DeploymentArtifact, error) {
	ledger, err := s.LoadLedger(ctx, network, suffix)
	if err != nil {
		return nil, err
	}
	return ledger.Artifact(), nil
}

// recordingSink keeps every progress event
type recordingSink struct {
	events []ProgressEvent
	infos  []string
}

func (s *recordingSink) OnProgress(ctx context.Context, event ProgressEvent) {
	s.events = append(s.events, event)
}
func (s *recordingSink) Info(message string)  { s.infos = append(s.infos, message) }
func (s *recordingSink) Error(message string) {}

// transitions returns the stage changes, ignoring spinner updates
func (s *recordingSink) transitions() []domain.RunState {
	var out []domain.RunState
	for _, e := range s.events {
		if !e.Spinner {
			out = append(out, e.Stage)
		}
	}
	return out
}
