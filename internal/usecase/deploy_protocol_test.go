package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuclifi/nuclifi-deployer/internal/domain"
	"github.com/nuclifi/nuclifi-deployer/internal/domain/config"
	"github.com/nuclifi/nuclifi-deployer/internal/plans"
)

var fixedNow = time.Date(2023, 3, 14, 12, 0, 0, 0, time.UTC)

type deployFixture struct {
	cfg      *config.RuntimeConfig
	chain    *fakeChain
	repo     *fakeRepository
	store    *fakeStore
	verifier *fakeVerifier
	sink     *recordingSink
}

func newDeployFixture(t *testing.T) *deployFixture {
	t.Helper()
	return &deployFixture{
		cfg:      testRuntimeConfig("goerli", 5),
		chain:    newFakeChain(),
		repo:     newFakeRepository(t),
		store:    newFakeStore(),
		verifier: &fakeVerifier{},
		sink:     &recordingSink{},
	}
}

func (f *deployFixture) deployer() *DeployProtocol {
	log := discardLogger()
	wiring := NewWireContracts(f.chain, f.repo, f.sink, log)
	verifier := NewVerifyContracts(f.cfg, f.verifier, f.store, f.sink, log)
	d := NewDeployProtocol(f.cfg, f.chain, f.repo, f.store, NewGasPricer(f.chain), wiring, verifier, f.sink, log)
	d.now = func() time.Time { return fixedNow }
	return d
}

func (f *deployFixture) run(t *testing.T, plan *domain.DeploymentPlan, opts DeployOptions) (*domain.RunReport, error) {
	t.Helper()
	report, err := f.deployer().Run(context.Background(), plan, opts)
	require.NotNil(t, report)
	return report, err
}

func requireFailure(t *testing.T, err error, kind domain.FailureKind) *domain.RunError {
	t.Helper()
	require.Error(t, err)
	var runErr *domain.RunError
	require.True(t, errors.As(err, &runErr), "expected RunError, got %v", err)
	assert.Equal(t, kind, runErr.Kind, err.Error())
	return runErr
}

func TestDeployProtocolRunsFullPlan(t *testing.T) {
	f := newDeployFixture(t)

	report, err := f.run(t, plans.Protocol(), DeployOptions{})
	require.NoError(t, err)

	assert.Equal(t, domain.StateDone, report.State)
	assert.Equal(t, "goerli", report.Network)
	assert.Equal(t, uint64(5), report.ChainID)
	assert.Equal(t, testDeployer, report.Deployer)
	assert.NotEmpty(t, report.RunID)

	assert.Equal(t, []string{
		"USDC",
		"USDT",
		"USDCRewardStaking",
		"USDTRewardStaking",
		"USDCRewardStakingStrategyFactory",
		"USDTRewardStakingStrategyFactory",
		"NuclifiController",
		"NuclifiConfiguration",
		"NuclifiCertificate",
	}, report.Ledger.Names())

	t.Run("every transaction uses the marked up gas price", func(t *testing.T) {
		assert.Equal(t, big.NewInt(150), report.Gas.EffectiveGasPrice())
		for _, tx := range append(f.chain.deploys, f.chain.calls...) {
			assert.Equal(t, big.NewInt(150), tx.GasPrice)
		}
	})

	t.Run("staking programs reference the token addresses", func(t *testing.T) {
		usdc, err := report.Ledger.Address("USDC")
		require.NoError(t, err)
		usdt, err := report.Ledger.Address("USDT")
		require.NoError(t, err)

		usdcStaking, ok := report.Ledger.Get("USDCRewardStaking")
		require.True(t, ok)
		assert.Equal(t, []any{testDeployer, usdc, usdc, big.NewInt(plans.RewardDuration)}, usdcStaking.ConstructorArgs)

		usdtStaking, ok := report.Ledger.Get("USDTRewardStaking")
		require.True(t, ok)
		assert.Equal(t, []any{testDeployer, usdt, usdc, big.NewInt(plans.RewardDuration)}, usdtStaking.ConstructorArgs)
	})

	t.Run("ledger records each program at its own address", func(t *testing.T) {
		usdc, _ := report.Ledger.Address("USDC")
		staking, _ := report.Ledger.Address("USDCRewardStaking")
		assert.NotEqual(t, usdc, staking)

		artifact := f.store.ledgers["goerli"].Artifact()
		entry, ok := artifact.Lookup("USDCRewardStaking")
		require.True(t, ok)
		assert.Equal(t, staking.Hex(), entry.Address)
		assert.Equal(t, "MockStaking", entry.ABI)
	})

	t.Run("records carry deployment metadata", func(t *testing.T) {
		rec, _ := report.Ledger.Get("NuclifiCertificate")
		controller, _ := report.Ledger.Address("NuclifiController")
		assert.Equal(t, []any{controller}, rec.ConstructorArgs)
		assert.NotEmpty(t, rec.EncodedArgs)
		assert.Equal(t, fixedNow, rec.DeployedAt)
		assert.NotEqual(t, common.Hash{}, rec.TxHash)
	})

	t.Run("setup runs before wiring", func(t *testing.T) {
		assert.Equal(t, []string{
			"transfer",
			"notifyRewardAmount",
			"transfer",
			"notifyRewardAmount",
			"setStrategyFactoryAddress",
			"setStrategyFactoryAddress",
			"setAddresses",
			"setAddresses",
			"setAddresses",
		}, f.chain.methods())
		assert.Len(t, report.Setup, 4)
		assert.Len(t, report.Wiring, 5)
	})

	t.Run("ledger persisted once before wiring", func(t *testing.T) {
		assert.Equal(t, 1, f.store.saves)
		assert.Equal(t, "deployments/goerli.json", report.ArtifactPath)
	})

	t.Run("every contract is verified", func(t *testing.T) {
		assert.Equal(t, report.Ledger.Names(), f.verifier.seen)
		assert.Equal(t, 9, report.VerifiedCount())
	})

	t.Run("stages advance in order", func(t *testing.T) {
		assert.Equal(t, []domain.RunState{
			domain.StateGasPriced,
			domain.StateDeploying,
			domain.StateLedgered,
			domain.StateVerified,
			domain.StateWired,
			domain.StateDone,
		}, f.sink.transitions())
		assert.Equal(t, []string{
			"Deploying mock tokens",
			"Deploying mock staking programs",
			"Deploying strategies",
			"Deploying Nuclifi core",
		}, f.sink.infos)
	})
}

func TestDeployProtocolStrategyFactoriesPlan(t *testing.T) {
	f := newDeployFixture(t)

	report, err := f.run(t, plans.StrategyFactories(), DeployOptions{})
	require.NoError(t, err)

	assert.Equal(t, domain.StateDone, report.State)
	assert.Equal(t, 2, report.Ledger.Len())
	assert.Contains(t, f.store.ledgers, "goerli.strategy-factories")
	assert.NotContains(t, f.store.ledgers, "goerli")
	assert.Empty(t, f.chain.calls)
}

func TestDeployProtocolConnectFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind domain.FailureKind
	}{
		{"missing credential", config.ErrMissingCredential, domain.FailureConfig},
		{"invalid credential", fmt.Errorf("%w: bad key", config.ErrInvalidCredential), domain.FailureConfig},
		{"missing rpc url", fmt.Errorf("%w: set INFURA_PROJECT_ID", config.ErrMissingRPCURL), domain.FailureConfig},
		{"unreachable node", errors.New("dial tcp 127.0.0.1:8545: connection refused"), domain.FailureOracle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDeployFixture(t)
			f.chain.connectErr = tt.err

			report, err := f.run(t, plans.Protocol(), DeployOptions{})
			runErr := requireFailure(t, err, tt.kind)
			assert.Equal(t, domain.StateStart, runErr.Stage)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, domain.StateFailed, report.State)
			assert.Empty(t, f.chain.deploys)
		})
	}
}

func TestDeployProtocolOracleFailure(t *testing.T) {
	t.Run("price unavailable", func(t *testing.T) {
		f := newDeployFixture(t)
		f.chain.gasErr = errors.New("rpc timeout")

		report, err := f.run(t, plans.Protocol(), DeployOptions{})
		requireFailure(t, err, domain.FailureOracle)
		assert.Equal(t, domain.StateFailed, report.State)
		assert.Empty(t, f.chain.deploys)
		assert.Zero(t, f.store.saves)
	})

	t.Run("zero price", func(t *testing.T) {
		f := newDeployFixture(t)
		f.chain.gasPrice = big.NewInt(0)

		_, err := f.run(t, plans.Protocol(), DeployOptions{})
		requireFailure(t, err, domain.FailureOracle)
		assert.ErrorIs(t, err, domain.ErrInvalidGasPrice)
		assert.Empty(t, f.chain.deploys)
	})
}

func TestDeployProtocolStopsAtFailedDeployment(t *testing.T) {
	f := newDeployFixture(t)
	f.chain.failDeployAt = 3

	report, err := f.run(t, plans.Protocol(), DeployOptions{})
	runErr := requireFailure(t, err, domain.FailureDeployment)

	assert.Equal(t, "USDCRewardStaking", runErr.Contract)
	assert.Equal(t, domain.StateDeploying, runErr.Stage)
	assert.Equal(t, domain.StateFailed, report.State)

	// nothing after the failing contract is attempted
	assert.Len(t, f.chain.deploys, 3)
	assert.Empty(t, f.chain.calls)
	assert.Zero(t, f.store.saves)
	assert.Empty(t, f.verifier.seen)

	// the partial ledger is returned for manual recovery
	assert.Equal(t, []string{"USDC", "USDT"}, report.Ledger.Names())
	assert.Empty(t, report.ArtifactPath)
}

func TestDeployProtocolFirstDeploymentFails(t *testing.T) {
	f := newDeployFixture(t)
	f.chain.failDeployAt = 1

	report, err := f.run(t, plans.Protocol(), DeployOptions{})
	requireFailure(t, err, domain.FailureDeployment)
	assert.Zero(t, report.Ledger.Len())
	assert.Zero(t, f.store.saves)
}

func TestDeployProtocolMissingFactory(t *testing.T) {
	f := newDeployFixture(t)
	delete(f.repo.contracts, "NuclifiController")

	report, err := f.run(t, plans.Protocol(), DeployOptions{})
	runErr := requireFailure(t, err, domain.FailureDeployment)
	assert.Equal(t, "NuclifiController", runErr.Contract)
	assert.ErrorIs(t, err, domain.ErrContractNotFound)
	assert.Equal(t, 6, report.Ledger.Len())
}

func TestDeployProtocolSetupFailure(t *testing.T) {
	f := newDeployFixture(t)
	f.chain.failMethod = "notifyRewardAmount"

	report, err := f.run(t, plans.Protocol(), DeployOptions{})
	runErr := requireFailure(t, err, domain.FailureDeployment)

	assert.Equal(t, "USDCRewardStaking", runErr.Contract)
	assert.Equal(t, 4, report.Ledger.Len())
	assert.Len(t, f.chain.deploys, 4)
	assert.Zero(t, f.store.saves)
}

func TestDeployProtocolPersistFailure(t *testing.T) {
	f := newDeployFixture(t)
	f.store.saveErr = errors.New("read-only file system")

	report, err := f.run(t, plans.Protocol(), DeployOptions{})
	requireFailure(t, err, domain.FailureDeployment)

	assert.Equal(t, 9, report.Ledger.Len())
	assert.NotContains(t, f.chain.methods(), "setAddresses")
	assert.Empty(t, f.verifier.seen)
}

func TestDeployProtocolWiringFailure(t *testing.T) {
	f := newDeployFixture(t)
	f.chain.failMethod = "setStrategyFactoryAddress"

	report, err := f.run(t, plans.Protocol(), DeployOptions{})
	runErr := requireFailure(t, err, domain.FailureWiring)

	assert.Equal(t, domain.StateVerified, runErr.Stage)
	assert.Equal(t, domain.StateFailed, report.State)

	// the registry was already written
	assert.Equal(t, 1, f.store.saves)
	assert.Equal(t, "deployments/goerli.json", report.ArtifactPath)

	// every contract was verified before the first setter was sent
	assert.Equal(t, report.Ledger.Names(), f.verifier.seen)
	assert.Len(t, f.verifier.seen, 9)
	assert.Equal(t, 9, report.VerifiedCount())
	assert.NotContains(t, f.chain.methods(), "setAddresses")
}

func TestDeployProtocolVerificationFailuresDoNotAbort(t *testing.T) {
	f := newDeployFixture(t)
	f.verifier.fail = map[string]error{"USDC": errors.New("rate limited")}
	f.verifier.panics = map[string]bool{"NuclifiController": true}

	report, err := f.run(t, plans.Protocol(), DeployOptions{})
	require.NoError(t, err)

	assert.Equal(t, domain.StateDone, report.State)
	assert.Len(t, f.verifier.seen, 9)
	require.Len(t, report.Verification, 9)
	assert.Equal(t, 7, report.VerifiedCount())

	assert.False(t, report.Verification[0].Succeeded)
	assert.Equal(t, "rate limited", report.Verification[0].ErrorMessage)
	assert.False(t, report.Verification[6].Succeeded)
	assert.Contains(t, report.Verification[6].ErrorMessage, "panicked")
}

func TestDeployProtocolSkipsVerification(t *testing.T) {
	t.Run("skip flag", func(t *testing.T) {
		f := newDeployFixture(t)

		report, err := f.run(t, plans.Protocol(), DeployOptions{SkipVerify: true})
		require.NoError(t, err)
		assert.Equal(t, domain.StateDone, report.State)
		assert.Empty(t, f.verifier.seen)
		assert.Empty(t, report.Verification)
	})

	t.Run("local network", func(t *testing.T) {
		f := newDeployFixture(t)
		f.cfg = testRuntimeConfig("localhost", 31337)

		report, err := f.run(t, plans.Protocol(), DeployOptions{})
		require.NoError(t, err)
		assert.Equal(t, domain.StateDone, report.State)
		assert.Empty(t, f.verifier.seen)
	})
}

func TestDeployProtocolRejectsInvalidPlan(t *testing.T) {
	f := newDeployFixture(t)
	plan := &domain.DeploymentPlan{
		Name: "broken",
		Stages: []domain.Stage{{
			Title: "tokens",
			Contracts: []domain.ContractSpec{
				{Name: "USDC", Factory: "MockERC20"},
				{Name: "USDC", Factory: "MockERC20"},
			},
		}},
	}

	report, err := f.run(t, plan, DeployOptions{})
	requireFailure(t, err, domain.FailureConfig)
	assert.ErrorIs(t, err, domain.ErrInvalidPlan)
	assert.Equal(t, domain.StateFailed, report.State)
	assert.False(t, f.chain.connected)
}

func TestDeployProtocolRequiresNetwork(t *testing.T) {
	f := newDeployFixture(t)
	f.cfg = &config.RuntimeConfig{}

	report, err := f.run(t, plans.Protocol(), DeployOptions{})
	requireFailure(t, err, domain.FailureConfig)
	assert.Equal(t, domain.StateFailed, report.State)
}
