package usecase

import (
	"context"
	"fmt"

	"github.com/nuclifi/nuclifi-deployer/internal/domain"
)

// GasPricer takes the single gas price snapshot used by a run
type GasPricer struct {
	chain ChainClient
}

// NewGasPricer creates a new gas pricer
func NewGasPricer(chain ChainClient) *GasPricer {
	return &GasPricer{chain: chain}
}

// Price queries the network price and applies the 3/2 markup. There is no
// fallback: an unavailable or non-positive price is an error.
func (g *GasPricer) Price(ctx context.Context) (domain.GasPolicy, error) {
	price, err := g.chain.SuggestGasPrice(ctx)
	if err != nil {
		return domain.GasPolicy{}, fmt.Errorf("failed to query network gas price: %w", err)
	}
	return domain.NewGasPolicy(price)
}
