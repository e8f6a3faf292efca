// Package plans holds the deployment plans shipped with the deployer.
package plans

import (
	"fmt"
	"sort"

	"github.com/nuclifi/nuclifi-deployer/internal/domain"
)

const (
	// DefaultPlan is run when no plan is named and no prompt is possible.
	DefaultPlan = "protocol"

	// RewardDuration is the staking reward period in seconds (30 days).
	RewardDuration = 2592000
	// RewardAmount is the amount of mock tokens (6 decimals) funded into
	// each staking program.
	RewardAmount = 10000000000

	usdcStrategyID = 1
	usdtStrategyID = 2
)

// Protocol is the full Nuclifi protocol deployment against mock tokens.
func Protocol() *domain.DeploymentPlan {
	return &domain.DeploymentPlan{
		Name:        DefaultPlan,
		Description: "Mock tokens, mock staking programs, strategy factories and the Nuclifi core",
		Stages: []domain.Stage{
			mockTokens(),
			mockStakingPrograms(),
			{
				Title:     "Deploying strategies",
				Contracts: strategyFactories(),
			},
			{
				Title: "Deploying Nuclifi core",
				Contracts: []domain.ContractSpec{
					{Name: "NuclifiController", Factory: "NuclifiController"},
					{Name: "NuclifiConfiguration", Factory: "NuclifiConfiguration"},
					{
						Name:    "NuclifiCertificate",
						Factory: "NuclifiCertificate",
						Args:    []domain.Arg{domain.AddressOf("NuclifiController")},
					},
				},
			},
		},
		Wiring: []domain.Call{
			{
				Target: "NuclifiConfiguration",
				Method: "setStrategyFactoryAddress",
				Args:   []domain.Arg{domain.Lit(usdcStrategyID), domain.AddressOf("USDCRewardStakingStrategyFactory")},
			},
			{
				Target: "NuclifiConfiguration",
				Method: "setStrategyFactoryAddress",
				Args:   []domain.Arg{domain.Lit(usdtStrategyID), domain.AddressOf("USDTRewardStakingStrategyFactory")},
			},
			factoryWiring("USDCRewardStakingStrategyFactory", "USDCRewardStaking"),
			factoryWiring("USDTRewardStakingStrategyFactory", "USDTRewardStaking"),
			{
				Target: "NuclifiController",
				Method: "setAddresses",
				Args: []domain.Arg{
					domain.AddressOf("USDC"),
					domain.AddressOf("NuclifiCertificate"),
					domain.AddressOf("NuclifiConfiguration"),
				},
			},
		},
	}
}

// StrategyFactories deploys only the mock staking strategy factories. Its
// registry is written next to the main one with a distinct suffix.
func StrategyFactories() *domain.DeploymentPlan {
	return &domain.DeploymentPlan{
		Name:           "strategy-factories",
		Description:    "Mock staking strategy factories only",
		ArtifactSuffix: "strategy-factories",
		Stages: []domain.Stage{
			{
				Title:     "Deploying strategies",
				Contracts: strategyFactories(),
			},
		},
	}
}

func mockTokens() domain.Stage {
	return domain.Stage{
		Title: "Deploying mock tokens",
		Contracts: []domain.ContractSpec{
			{
				Name:    "USDC",
				Factory: "MockERC20",
				ABIKind: "IERC20",
				Args:    []domain.Arg{domain.Lit("USDC Coin"), domain.Lit("USDC"), domain.Lit(6)},
			},
			{
				Name:    "USDT",
				Factory: "MockERC20",
				ABIKind: "IERC20",
				Args:    []domain.Arg{domain.Lit("Tether USDC"), domain.Lit("USDT"), domain.Lit(6)},
			},
		},
	}
}

func mockStakingPrograms() domain.Stage {
	return domain.Stage{
		Title: "Deploying mock staking programs",
		Contracts: []domain.ContractSpec{
			stakingProgram("USDCRewardStaking", "USDC"),
			stakingProgram("USDTRewardStaking", "USDT"),
		},
		Setup: append(funding("USDC", "USDCRewardStaking"), funding("USDT", "USDTRewardStaking")...),
	}
}

// stakingProgram stakes token and pays rewards in USDC.
func stakingProgram(name, token string) domain.ContractSpec {
	return domain.ContractSpec{
		Name:    name,
		Factory: "MockStaking",
		Args: []domain.Arg{
			domain.DeployerAddress(),
			domain.AddressOf(token),
			domain.AddressOf("USDC"),
			domain.Lit(RewardDuration),
		},
	}
}

func funding(token, program string) []domain.Call {
	return []domain.Call{
		{
			Target: token,
			Method: "transfer",
			Args:   []domain.Arg{domain.AddressOf(program), domain.Lit(RewardAmount)},
		},
		{
			Target: program,
			Method: "notifyRewardAmount",
			Args:   []domain.Arg{domain.Lit(RewardAmount)},
		},
	}
}

func strategyFactories() []domain.ContractSpec {
	return []domain.ContractSpec{
		{Name: "USDCRewardStakingStrategyFactory", Factory: "MockStakingStrategyFactory"},
		{Name: "USDTRewardStakingStrategyFactory", Factory: "MockStakingStrategyFactory"},
	}
}

func factoryWiring(factory, program string) domain.Call {
	return domain.Call{
		Target: factory,
		Method: "setAddresses",
		Args: []domain.Arg{
			domain.AddressOf(program),
			domain.AddressOf("NuclifiController"),
			domain.AddressOf("NuclifiCertificate"),
		},
	}
}

// Catalog is the set of plans the CLI can run
type Catalog struct {
	plans map[string]*domain.DeploymentPlan
}

// NewCatalog returns a catalog with the built-in plans
func NewCatalog() *Catalog {
	return NewCatalogWith(Protocol(), StrategyFactories())
}

// NewCatalogWith returns a catalog holding the given plans
func NewCatalogWith(plans ...*domain.DeploymentPlan) *Catalog {
	c := &Catalog{plans: make(map[string]*domain.DeploymentPlan, len(plans))}
	for _, p := range plans {
		c.plans[p.Name] = p
	}
	return c
}

// Plans returns every plan sorted by name
func (c *Catalog) Plans() []*domain.DeploymentPlan {
	out := make([]*domain.DeploymentPlan, 0, len(c.plans))
	for _, p := range c.plans {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Find returns the plan with the given name
func (c *Catalog) Find(name string) (*domain.DeploymentPlan, error) {
	p, ok := c.plans[name]
	if !ok {
		return nil, fmt.Errorf("plan %q: %w", name, domain.ErrNotFound)
	}
	return p, nil
}
