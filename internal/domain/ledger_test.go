package domain

import (
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(name string, addr int64) DeploymentRecord {
	return DeploymentRecord{
		LogicalName: name,
		ABIKind:     name + "ABI",
		Factory:     name + "Factory",
		Address:     common.BigToAddress(big.NewInt(addr)),
	}
}

func TestLedgerAppend(t *testing.T) {
	ledger := NewDeploymentLedger()
	require.NoError(t, ledger.Append(record("USDT", 2)))
	require.NoError(t, ledger.Append(record("USDC", 1)))
	require.NoError(t, ledger.Append(record("Staking", 3)))

	assert.Equal(t, []string{"USDT", "USDC", "Staking"}, ledger.Names())
	assert.Equal(t, 3, ledger.Len())
	assert.True(t, ledger.Has("USDC"))
	assert.False(t, ledger.Has("Ghost"))

	t.Run("duplicate", func(t *testing.T) {
		err := ledger.Append(record("USDC", 9))
		assert.ErrorIs(t, err, ErrAlreadyExists)
		addr, _ := ledger.Address("USDC")
		assert.Equal(t, common.BigToAddress(big.NewInt(1)), addr)
		assert.Equal(t, 3, ledger.Len())
	})

	t.Run("zero address", func(t *testing.T) {
		err := ledger.Append(DeploymentRecord{LogicalName: "Zero"})
		assert.ErrorIs(t, err, ErrInvalidAddress)
		assert.False(t, ledger.Has("Zero"))
	})

	t.Run("empty name", func(t *testing.T) {
		err := ledger.Append(record("", 4))
		assert.Error(t, err)
	})

	t.Run("missing entry", func(t *testing.T) {
		_, err := ledger.Address("Ghost")
		assert.ErrorIs(t, err, ErrMissingLedgerEntry)
	})
}

func TestLedgerRecordsAreCopies(t *testing.T) {
	ledger := NewDeploymentLedger()
	args := []any{"USDC Coin"}
	rec := record("USDC", 1)
	rec.ConstructorArgs = args
	require.NoError(t, ledger.Append(rec))

	args[0] = "mutated"
	got, ok := ledger.Get("USDC")
	require.True(t, ok)
	assert.Equal(t, []any{"USDC Coin"}, got.ConstructorArgs)

	got.ConstructorArgs[0] = "mutated again"
	again, _ := ledger.Get("USDC")
	assert.Equal(t, []any{"USDC Coin"}, again.ConstructorArgs)
}

func TestArtifactJSON(t *testing.T) {
	ledger := NewDeploymentLedger()
	require.NoError(t, ledger.Append(DeploymentRecord{
		LogicalName: "USDT",
		ABIKind:     "IERC20",
		Address:     common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"),
	}))
	require.NoError(t, ledger.Append(DeploymentRecord{
		LogicalName: "USDC",
		ABIKind:     "IERC20",
		Address:     common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"),
	}))

	data, err := json.MarshalIndent(ledger.Artifact(), "", "  ")
	require.NoError(t, err)

	expected := `{
  "USDT": {
    "abi": "IERC20",
    "address": "0x5FbDB2315678afecb367f032d93F642f64180aa3"
  },
  "USDC": {
    "abi": "IERC20",
    "address": "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512"
  }
}`
	assert.Equal(t, expected, string(data))

	var decoded DeploymentArtifact
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, ledger.Artifact().Entries, decoded.Entries)

	entry, ok := decoded.Lookup("USDC")
	require.True(t, ok)
	assert.Equal(t, "0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512", entry.Address)
}

func TestArtifactRejectsDuplicateKeys(t *testing.T) {
	var artifact DeploymentArtifact
	err := json.Unmarshal([]byte(`{"A":{"abi":"X","address":"0x1"},"A":{"abi":"Y","address":"0x2"}}`), &artifact)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestLedgerJSONRoundTrip(t *testing.T) {
	deployedAt := time.Date(2023, 3, 14, 12, 0, 0, 0, time.UTC)
	ledger := NewDeploymentLedger()
	require.NoError(t, ledger.Append(DeploymentRecord{
		LogicalName:     "Staking",
		ABIKind:         "MockStaking",
		Factory:         "MockStaking",
		Address:         common.BigToAddress(big.NewInt(7)),
		ConstructorArgs: []any{common.BigToAddress(big.NewInt(1)), big.NewInt(2592000)},
		EncodedArgs:     []byte{0x01, 0x02},
		TxHash:          common.BigToHash(big.NewInt(99)),
		BlockNumber:     12,
		DeployedAt:      deployedAt,
	}))
	require.NoError(t, ledger.Append(record("Certificate", 8)))

	data, err := json.Marshal(ledger)
	require.NoError(t, err)

	var decoded DeploymentLedger
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, []string{"Staking", "Certificate"}, decoded.Names())
	rec, ok := decoded.Get("Staking")
	require.True(t, ok)
	assert.Equal(t, common.BigToAddress(big.NewInt(7)), rec.Address)
	assert.Equal(t, []any{common.BigToAddress(big.NewInt(1)).Hex(), "2592000"}, rec.ConstructorArgs)
	assert.Equal(t, []byte{0x01, 0x02}, []byte(rec.EncodedArgs))
	assert.Equal(t, uint64(12), rec.BlockNumber)
	assert.True(t, deployedAt.Equal(rec.DeployedAt))
}

func TestResolveArgs(t *testing.T) {
	ledger := NewDeploymentLedger()
	require.NoError(t, ledger.Append(record("USDC", 1)))
	deployer := common.BigToAddress(big.NewInt(0xdead))

	args, err := ResolveArgs([]Arg{DeployerAddress(), AddressOf("USDC"), Lit(30)}, ledger, deployer)
	require.NoError(t, err)
	assert.Equal(t, []any{deployer, common.BigToAddress(big.NewInt(1)), 30}, args)

	_, err = ResolveArgs([]Arg{AddressOf("USDT")}, ledger, deployer)
	assert.ErrorIs(t, err, ErrMissingLedgerEntry)
}
