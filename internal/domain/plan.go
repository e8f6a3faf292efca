package domain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ArgKind tells how an Arg is resolved at submission time.
type ArgKind int

const (
	ArgLiteral ArgKind = iota
	ArgAddressOf
	ArgDeployer
)

// Arg is a constructor or call argument. Addresses of other contracts and
// of the signing account are only known at run time, so they are expressed
// as references and resolved against the ledger.
type Arg struct {
	Kind  ArgKind
	Value any
	Ref   string
}

// Lit is a literal value passed as-is (integer literals are coerced to the
// ABI input type by the contract layer).
func Lit(v any) Arg {
	return Arg{Kind: ArgLiteral, Value: v}
}

// AddressOf refers to the deployed address of a logical contract name.
func AddressOf(name string) Arg {
	return Arg{Kind: ArgAddressOf, Ref: name}
}

// DeployerAddress refers to the signing account of the run.
func DeployerAddress() Arg {
	return Arg{Kind: ArgDeployer}
}

func (a Arg) String() string {
	switch a.Kind {
	case ArgAddressOf:
		return "@" + a.Ref
	case ArgDeployer:
		return "@deployer"
	default:
		return FormatArg(a.Value)
	}
}

// ResolveArgs turns plan arguments into concrete values. A missing ledger
// entry is reported as ErrMissingLedgerEntry.
func ResolveArgs(args []Arg, ledger *DeploymentLedger, deployer common.Address) ([]any, error) {
	out := make([]any, 0, len(args))
	for _, a := range args {
		switch a.Kind {
		case ArgAddressOf:
			addr, err := ledger.Address(a.Ref)
			if err != nil {
				return nil, err
			}
			out = append(out, addr)
		case ArgDeployer:
			out = append(out, deployer)
		default:
			out = append(out, a.Value)
		}
	}
	return out, nil
}

// ContractSpec describes one contract instance to deploy.
type ContractSpec struct {
	Name    string // logical name, unique within a plan
	Factory string // artifact identifier resolvable by the build tooling
	ABIKind string // ABI recorded in the artifact, defaults to Factory
	Args    []Arg
}

// Kind returns the ABI kind recorded for the contract.
func (c ContractSpec) Kind() string {
	if c.ABIKind == "" {
		return c.Factory
	}
	return c.ABIKind
}

// Call is a state-changing method call on an already deployed contract.
type Call struct {
	Target string
	Method string
	Args   []Arg
}

func (c Call) String() string {
	parts := make([]string, 0, len(c.Args))
	for _, a := range c.Args {
		parts = append(parts, a.String())
	}
	return fmt.Sprintf("%s.%s(%s)", c.Target, c.Method, strings.Join(parts, ", "))
}

// References lists every logical name the call depends on, target first.
func (c Call) References() []string {
	refs := []string{c.Target}
	for _, a := range c.Args {
		if a.Kind == ArgAddressOf {
			refs = append(refs, a.Ref)
		}
	}
	return refs
}

// Stage is a batch of deployments followed by incidental setup calls
// (funding reward balances and the like).
type Stage struct {
	Title     string
	Contracts []ContractSpec
	Setup     []Call
}

// DeploymentPlan is the full ordered description of a run.
type DeploymentPlan struct {
	Name        string
	Description string
	// ArtifactSuffix distinguishes secondary registries from the main
	// deployments/<network>.json file.
	ArtifactSuffix string
	Stages         []Stage
	Wiring         []Call
}

// Contracts returns all contract specs in deployment order.
func (p *DeploymentPlan) Contracts() []ContractSpec {
	var out []ContractSpec
	for _, s := range p.Stages {
		out = append(out, s.Contracts...)
	}
	return out
}

// Validate checks that names are unique and that every reference resolves
// in topological order: constructor and setup arguments may only refer to
// contracts deployed before them, wiring may refer to any planned contract.
func (p *DeploymentPlan) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: plan has no name", ErrInvalidPlan)
	}

	deployed := make(map[string]bool)
	var problems []string

	for _, stage := range p.Stages {
		for _, c := range stage.Contracts {
			if c.Name == "" || c.Factory == "" {
				problems = append(problems, fmt.Sprintf("stage %q: contract needs a name and a factory", stage.Title))
				continue
			}
			if deployed[c.Name] {
				problems = append(problems, fmt.Sprintf("duplicate contract name %s", c.Name))
			}
			for _, a := range c.Args {
				if a.Kind == ArgAddressOf && !deployed[a.Ref] {
					problems = append(problems, fmt.Sprintf("%s constructor references %s before it is deployed", c.Name, a.Ref))
				}
			}
			deployed[c.Name] = true
		}
		for _, call := range stage.Setup {
			for _, ref := range call.References() {
				if !deployed[ref] {
					problems = append(problems, fmt.Sprintf("setup call %s references %s before it is deployed", call, ref))
				}
			}
		}
	}

	for _, call := range p.Wiring {
		for _, ref := range call.References() {
			if !deployed[ref] {
				problems = append(problems, fmt.Sprintf("wiring call %s references unknown contract %s", call, ref))
			}
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w %s:\n  - %s", ErrInvalidPlan, p.Name, strings.Join(problems, "\n  - "))
	}
	return nil
}
