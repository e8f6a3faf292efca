package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Contract is a compiled contract resolved from the build output. It acts as
// the factory used to deploy new instances.
type Contract struct {
	Name            string          `json:"name"`
	SourcePath      string          `json:"sourcePath"`
	ArtifactPath    string          `json:"artifactPath,omitempty"`
	CompilerVersion string          `json:"compilerVersion,omitempty"`
	RawABI          json.RawMessage `json:"abi"`
	ABI             abi.ABI         `json:"-"`
	Bytecode        []byte          `json:"-"`
}

// FullyQualifiedName returns path:Name as expected by forge.
func (c *Contract) FullyQualifiedName() string {
	if c.SourcePath == "" {
		return c.Name
	}
	return fmt.Sprintf("%s:%s", c.SourcePath, c.Name)
}

// Deployable reports whether the artifact carries creation bytecode
// (interfaces and abstract contracts don't).
func (c *Contract) Deployable() bool {
	return len(c.Bytecode) > 0
}

// PackConstructor coerces args to the constructor input types and returns
// the coerced values together with their ABI encoding.
func (c *Contract) PackConstructor(args ...any) ([]any, []byte, error) {
	coerced, err := CoerceArgs(c.ABI.Constructor.Inputs, args)
	if err != nil {
		return nil, nil, fmt.Errorf("%s constructor: %w", c.Name, err)
	}
	encoded, err := c.ABI.Pack("", coerced...)
	if err != nil {
		return nil, nil, fmt.Errorf("%s constructor: %w", c.Name, err)
	}
	return coerced, encoded, nil
}

// PackMethod coerces args for method and returns them ready for
// bind.BoundContract.Transact.
func (c *Contract) PackMethod(method string, args ...any) ([]any, error) {
	m, ok := c.ABI.Methods[method]
	if !ok {
		return nil, fmt.Errorf("%s has no method %s", c.Name, method)
	}
	coerced, err := CoerceArgs(m.Inputs, args)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", c.Name, method, err)
	}
	if _, err := c.ABI.Pack(method, coerced...); err != nil {
		return nil, fmt.Errorf("%s.%s: %w", c.Name, method, err)
	}
	return coerced, nil
}

// BytecodeObject accepts both the Foundry layout ({"object": "0x.."}) and
// the Hardhat layout (a bare hex string).
type BytecodeObject struct {
	Object         string         `json:"object"`
	SourceMap      string         `json:"sourceMap,omitempty"`
	LinkReferences map[string]any `json:"linkReferences,omitempty"`
}

func (b *BytecodeObject) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &b.Object)
	}
	type plain BytecodeObject
	return json.Unmarshal(data, (*plain)(b))
}

// Bytes decodes the hex bytecode. Unlinked library placeholders are
// rejected.
func (b BytecodeObject) Bytes() ([]byte, error) {
	obj := strings.TrimSpace(b.Object)
	if obj == "" || obj == "0x" {
		return nil, nil
	}
	if strings.Contains(obj, "__") {
		return nil, fmt.Errorf("bytecode has unlinked library references")
	}
	if !strings.HasPrefix(obj, "0x") {
		obj = "0x" + obj
	}
	return hexutil.Decode(obj)
}

// Artifact is a compilation artifact produced by Foundry (out/) or Hardhat
// (artifacts/).
type Artifact struct {
	ContractName     string           `json:"contractName"`
	SourceName       string           `json:"sourceName"`
	ABI              json.RawMessage  `json:"abi"`
	Bytecode         BytecodeObject   `json:"bytecode"`
	DeployedBytecode BytecodeObject   `json:"deployedBytecode"`
	Metadata         ArtifactMetadata `json:"metadata"`
}

// ArtifactMetadata represents the metadata section of a Foundry artifact
type ArtifactMetadata struct {
	Compiler struct {
		Version string `json:"version"`
	} `json:"compiler"`
	Settings struct {
		CompilationTarget map[string]string `json:"compilationTarget"`
	} `json:"settings"`
}

// ToContract parses the ABI and bytecode. fallbackName is used when the
// artifact does not name its contract (Foundry).
func (a *Artifact) ToContract(fallbackName, artifactPath string) (*Contract, error) {
	name := a.ContractName
	source := a.SourceName
	for src, target := range a.Metadata.Settings.CompilationTarget {
		source = src
		if name == "" {
			name = target
		}
	}
	if name == "" {
		name = fallbackName
	}

	parsed, err := abi.JSON(strings.NewReader(string(a.ABI)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI of %s: %w", name, err)
	}
	bytecode, err := a.Bytecode.Bytes()
	if err != nil {
		return nil, fmt.Errorf("invalid bytecode for %s: %w", name, err)
	}

	return &Contract{
		Name:            name,
		SourcePath:      source,
		ArtifactPath:    artifactPath,
		CompilerVersion: a.Metadata.Compiler.Version,
		RawABI:          a.ABI,
		ABI:             parsed,
		Bytecode:        bytecode,
	}, nil
}

// ContractAt pairs a contract with a deployed address.
type ContractAt struct {
	Contract *Contract
	Address  common.Address
}
