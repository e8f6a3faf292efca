package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/nuclifi/nuclifi-deployer/internal/domain"
	"github.com/nuclifi/nuclifi-deployer/internal/usecase"
)

var (
	usdcAddr = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	usdtAddr = common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
)

func testLedger(t *testing.T) *domain.DeploymentLedger {
	t.Helper()
	ledger := domain.NewDeploymentLedger()
	require.NoError(t, ledger.Append(domain.DeploymentRecord{
		LogicalName: "USDC",
		ABIKind:     "MockERC20",
		Address:     usdcAddr,
		TxHash:      common.HexToHash("0x01"),
		BlockNumber: 1,
	}))
	require.NoError(t, ledger.Append(domain.DeploymentRecord{
		LogicalName: "USDT",
		ABIKind:     "MockERC20",
		Address:     usdtAddr,
		TxHash:      common.HexToHash("0x02"),
		BlockNumber: 2,
	}))
	return ledger
}

func TestRenderReportDone(t *testing.T) {
	gas, err := domain.NewGasPolicy(big.NewInt(2_000_000_000))
	require.NoError(t, err)

	var out bytes.Buffer
	report := &domain.RunReport{
		RunID:        "run-1",
		Network:      "goerli",
		ChainID:      5,
		Plan:         "protocol",
		Gas:          gas,
		State:        domain.StateDone,
		Ledger:       testLedger(t),
		ArtifactPath: "deployments/goerli.json",
		LedgerPath:   ".nuclifi/goerli/ledger.json",
		Verification: []domain.VerificationOutcome{
			{LogicalName: "USDC", Address: usdcAddr, Succeeded: true},
			{LogicalName: "USDT", Address: usdtAddr, ErrorMessage: "rate limited"},
		},
	}

	require.NoError(t, NewReportRenderer(&out, false).RenderReport(report))
	s := out.String()

	assert.Contains(t, s, "goerli (chain 5)")
	assert.Contains(t, s, "3 gwei (network 2 gwei)")
	assert.Contains(t, s, "Deployments")
	assert.Contains(t, s, usdcAddr.Hex())
	assert.Contains(t, s, "rate limited")
	assert.Contains(t, s, "Verified 1/2 contracts")
	assert.Contains(t, s, "deployments/goerli.json")
	assert.Contains(t, s, "Deployed 2 contracts")
}

func TestRenderReportFailedListsPartialLedger(t *testing.T) {
	var out bytes.Buffer
	report := &domain.RunReport{
		RunID:   "run-2",
		Network: "goerli",
		Plan:    "protocol",
		State:   domain.StateFailed,
		Ledger:  testLedger(t),
	}

	require.NoError(t, NewReportRenderer(&out, false).RenderReport(report))
	s := out.String()

	assert.Contains(t, s, "Deployed before failure")
	assert.Contains(t, s, usdtAddr.Hex())
	assert.Contains(t, s, "registry was not written")
	assert.NotContains(t, s, "Deployed 2 contracts")
}

func TestRenderPlan(t *testing.T) {
	plan := &domain.DeploymentPlan{
		Name: "tiny",
		Stages: []domain.Stage{{
			Title: "Tokens",
			Contracts: []domain.ContractSpec{
				{Name: "USDC", Factory: "MockERC20", Args: []domain.Arg{domain.Lit("USDC Coin"), domain.Lit(6)}},
			},
		}},
		Wiring: []domain.Call{{Target: "USDC", Method: "mint", Args: []domain.Arg{domain.DeployerAddress()}}},
	}

	var out bytes.Buffer
	NewReportRenderer(&out, false).RenderPlan(plan, "localhost")
	s := out.String()

	assert.Contains(t, s, "tiny on localhost")
	assert.Contains(t, s, "USDC MockERC20(USDC Coin, 6)")
	assert.Contains(t, s, "USDC.mint(@deployer)")
}

func TestDeploymentsRendererFormats(t *testing.T) {
	ledger := testLedger(t)
	result := &usecase.ShowDeploymentsResult{
		Network:  "goerli",
		Artifact: ledger.Artifact(),
		Ledger:   ledger,
	}

	t.Run("json", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, NewDeploymentsRenderer(&out, false).Render(result, FormatJSON))

		var views []deploymentView
		require.NoError(t, json.Unmarshal(out.Bytes(), &views))
		require.Len(t, views, 2)
		assert.Equal(t, "USDC", views[0].Name)
		assert.Equal(t, usdcAddr.Hex(), views[0].Address)
		assert.Equal(t, uint64(2), views[1].BlockNumber)
	})

	t.Run("yaml", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, NewDeploymentsRenderer(&out, false).Render(result, FormatYAML))

		var views []deploymentView
		require.NoError(t, yaml.Unmarshal(out.Bytes(), &views))
		require.Len(t, views, 2)
		assert.Equal(t, "USDT", views[1].Name)
		assert.Equal(t, "MockERC20", views[1].ABI)
	})

	t.Run("table without ledger", func(t *testing.T) {
		var out bytes.Buffer
		artifactOnly := &usecase.ShowDeploymentsResult{Network: "goerli", Artifact: ledger.Artifact()}
		require.NoError(t, NewDeploymentsRenderer(&out, false).Render(artifactOnly, FormatTable))
		assert.Contains(t, out.String(), "Deployments on goerli")
		assert.Contains(t, out.String(), usdtAddr.Hex())
	})

	t.Run("unknown", func(t *testing.T) {
		var out bytes.Buffer
		assert.Error(t, NewDeploymentsRenderer(&out, false).Render(result, "xml"))
	})
}

func TestRenderNetworksList(t *testing.T) {
	var out bytes.Buffer
	result := &usecase.ListNetworksResult{
		Current: "goerli",
		Networks: []usecase.NetworkStatus{
			{Name: "goerli", ChainID: 5, MissingRPC: "INFURA_PROJECT_ID"},
			{Name: "localhost", ChainID: 31337, Local: true},
			{Name: "broken", Error: errors.New("bad endpoint")},
		},
	}

	require.NoError(t, NewNetworksRenderer(&out, false).RenderNetworksList(result))
	s := out.String()

	assert.Contains(t, s, "* ⚠️  goerli - set INFURA_PROJECT_ID")
	assert.Contains(t, s, "localhost - Chain ID: 31337 (local, no verification)")
	assert.Contains(t, s, "broken - Error: bad endpoint")
}

func TestRenderPlans(t *testing.T) {
	var out bytes.Buffer
	err := NewPlansRenderer(&out, false).RenderPlans([]usecase.PlanSummary{
		{Name: "protocol", Contracts: 9, SetupCalls: 4, WiringCalls: 5},
		{Name: "strategy-factories", ArtifactSuffix: "strategy-factories", Contracts: 2},
	})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "protocol")
	assert.Contains(t, out.String(), "<network>.strategy-factories.json")
}
