package domain

import (
	"fmt"
	"math/big"
)

// Gas price markup applied on top of the network suggestion: 3/2 (50%).
const (
	GasMultiplierNumerator   = 3
	GasMultiplierDenominator = 2
)

// GasPolicy is the gas price snapshot taken once at the start of a run.
// Every transaction in the run is submitted at EffectiveGasPrice.
type GasPolicy struct {
	BaseGasPrice          *big.Int `json:"baseGasPrice"`
	MultiplierNumerator   int64    `json:"multiplierNumerator"`
	MultiplierDenominator int64    `json:"multiplierDenominator"`
}

// NewGasPolicy builds the standard 3/2 policy for a network price.
func NewGasPolicy(base *big.Int) (GasPolicy, error) {
	if base == nil || base.Sign() <= 0 {
		return GasPolicy{}, fmt.Errorf("%w: %v", ErrInvalidGasPrice, base)
	}
	return GasPolicy{
		BaseGasPrice:          new(big.Int).Set(base),
		MultiplierNumerator:   GasMultiplierNumerator,
		MultiplierDenominator: GasMultiplierDenominator,
	}, nil
}

// EffectiveGasPrice returns base * numerator / denominator with truncating
// integer division.
func (p GasPolicy) EffectiveGasPrice() *big.Int {
	price := new(big.Int).Mul(p.BaseGasPrice, big.NewInt(p.MultiplierNumerator))
	return price.Quo(price, big.NewInt(p.MultiplierDenominator))
}

// ComputeGasPrice applies the 50% markup to the current network price.
func ComputeGasPrice(currentNetworkPrice *big.Int) (*big.Int, error) {
	policy, err := NewGasPolicy(currentNetworkPrice)
	if err != nil {
		return nil, err
	}
	return policy.EffectiveGasPrice(), nil
}

// FormatGwei renders a wei amount in gwei with up to 9 decimals.
func FormatGwei(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	gwei := new(big.Rat).SetFrac(wei, big.NewInt(1_000_000_000))
	s := gwei.FloatString(9)
	// trim trailing zeros of the fractional part
	for len(s) > 0 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	return s
}
