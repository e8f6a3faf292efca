package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuclifi/nuclifi-deployer/internal/domain/config"
)

type fakeNetworkResolver struct {
	networks map[string]*config.Network
	errs     map[string]error
	order    []string
}

func (f *fakeNetworkResolver) Networks() []string { return f.order }

func (f *fakeNetworkResolver) Resolve(name string) (*config.Network, error) {
	if err := f.errs[name]; err != nil {
		return nil, err
	}
	return f.networks[name], nil
}

func TestListNetworks(t *testing.T) {
	resolver := &fakeNetworkResolver{
		order: []string{"goerli", "localhost", "mainnet"},
		networks: map[string]*config.Network{
			"goerli":    {Name: "goerli", ChainID: 5, MissingRPC: "INFURA_PROJECT_ID"},
			"localhost": {Name: "localhost", ChainID: 31337, RPCURL: "http://127.0.0.1:8545"},
		},
		errs: map[string]error{"mainnet": errors.New("bad toml value")},
	}

	uc := NewListNetworks(testRuntimeConfig("localhost", 31337), resolver)
	result, err := uc.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "localhost", result.Current)
	require.Len(t, result.Networks, 3)

	goerli := result.Networks[0]
	assert.Equal(t, uint64(5), goerli.ChainID)
	assert.Equal(t, "INFURA_PROJECT_ID", goerli.MissingRPC)
	assert.False(t, goerli.Ready())

	localhost := result.Networks[1]
	assert.True(t, localhost.Local)
	assert.True(t, localhost.Ready())

	mainnet := result.Networks[2]
	assert.Error(t, mainnet.Error)
	assert.False(t, mainnet.Ready())
}
