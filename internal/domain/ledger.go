package domain

import (
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// DeploymentRecord is one confirmed contract deployment. Records are values:
// once appended to a ledger they are never modified.
type DeploymentRecord struct {
	LogicalName     string
	ABIKind         string
	Address         common.Address
	ConstructorArgs []any
	Factory         string
	EncodedArgs     hexutil.Bytes
	TxHash          common.Hash
	BlockNumber     uint64
	DeployedAt      time.Time
}

// recordJSON is the on-disk form of a record in the full ledger.
type recordJSON struct {
	ABIKind         string         `json:"abi"`
	Address         common.Address `json:"address"`
	Factory         string         `json:"factory"`
	ConstructorArgs []string       `json:"constructorArgs"`
	EncodedArgs     hexutil.Bytes  `json:"encodedArgs"`
	TxHash          common.Hash    `json:"txHash"`
	BlockNumber     uint64         `json:"blockNumber"`
	DeployedAt      time.Time      `json:"deployedAt"`
}

// FormatArg renders a constructor or call argument for humans and for the
// full ledger file.
func FormatArg(v any) string {
	switch val := v.(type) {
	case common.Address:
		return val.Hex()
	case *big.Int:
		return val.String()
	case []byte:
		return hexutil.Encode(val)
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

// DeploymentLedger maps logical contract names to deployment records for
// one run. It is insertion-ordered and append-only.
type DeploymentLedger struct {
	order   []string
	records map[string]DeploymentRecord
}

// NewDeploymentLedger creates an empty ledger.
func NewDeploymentLedger() *DeploymentLedger {
	return &DeploymentLedger{
		records: make(map[string]DeploymentRecord),
	}
}

// Append adds a record. Names must be unique and addresses non-zero.
func (l *DeploymentLedger) Append(rec DeploymentRecord) error {
	if rec.LogicalName == "" {
		return fmt.Errorf("%w: empty logical name", ErrInvalidPlan)
	}
	if rec.Address == (common.Address{}) {
		return fmt.Errorf("%w: zero address for %s", ErrInvalidAddress, rec.LogicalName)
	}
	if _, exists := l.records[rec.LogicalName]; exists {
		return fmt.Errorf("%s: %w", rec.LogicalName, ErrAlreadyExists)
	}

	rec.ConstructorArgs = append([]any(nil), rec.ConstructorArgs...)
	rec.EncodedArgs = append(hexutil.Bytes(nil), rec.EncodedArgs...)
	l.order = append(l.order, rec.LogicalName)
	l.records[rec.LogicalName] = rec
	return nil
}

// Get returns a copy of the record stored under name.
func (l *DeploymentLedger) Get(name string) (DeploymentRecord, bool) {
	rec, ok := l.records[name]
	if !ok {
		return DeploymentRecord{}, false
	}
	rec.ConstructorArgs = append([]any(nil), rec.ConstructorArgs...)
	return rec, true
}

// Address returns the deployed address of name.
func (l *DeploymentLedger) Address(name string) (common.Address, error) {
	rec, ok := l.records[name]
	if !ok {
		return common.Address{}, fmt.Errorf("%s: %w", name, ErrMissingLedgerEntry)
	}
	return rec.Address, nil
}

// Has reports whether name was recorded.
func (l *DeploymentLedger) Has(name string) bool {
	_, ok := l.records[name]
	return ok
}

// Len returns the number of records.
func (l *DeploymentLedger) Len() int {
	return len(l.order)
}

// Names returns logical names in insertion order.
func (l *DeploymentLedger) Names() []string {
	return append([]string(nil), l.order...)
}

// Records returns copies of all records in insertion order.
func (l *DeploymentLedger) Records() []DeploymentRecord {
	out := make([]DeploymentRecord, 0, len(l.order))
	for _, name := range l.order {
		rec, _ := l.Get(name)
		out = append(out, rec)
	}
	return out
}

// Artifact projects the ledger onto the per-network address registry.
func (l *DeploymentLedger) Artifact() *DeploymentArtifact {
	artifact := &DeploymentArtifact{}
	for _, name := range l.order {
		rec := l.records[name]
		artifact.Entries = append(artifact.Entries, ArtifactEntry{
			Name:    name,
			ABI:     rec.ABIKind,
			Address: rec.Address.Hex(),
		})
	}
	return artifact
}

// MarshalJSON writes the full ledger as an object keyed by logical name in
// insertion order.
func (l *DeploymentLedger) MarshalJSON() ([]byte, error) {
	return marshalOrderedObject(l.order, func(name string) any {
		rec := l.records[name]
		args := make([]string, 0, len(rec.ConstructorArgs))
		for _, arg := range rec.ConstructorArgs {
			args = append(args, FormatArg(arg))
		}
		return recordJSON{
			ABIKind:         rec.ABIKind,
			Address:         rec.Address,
			Factory:         rec.Factory,
			ConstructorArgs: args,
			EncodedArgs:     rec.EncodedArgs,
			TxHash:          rec.TxHash,
			BlockNumber:     rec.BlockNumber,
			DeployedAt:      rec.DeployedAt,
		}
	})
}

// UnmarshalJSON rebuilds a ledger through Append, so a file with duplicate
// names or zero addresses is rejected.
func (l *DeploymentLedger) UnmarshalJSON(data []byte) error {
	fresh := NewDeploymentLedger()
	err := unmarshalOrderedObject(data, func(name string, raw json.RawMessage) error {
		var rj recordJSON
		if err := json.Unmarshal(raw, &rj); err != nil {
			return fmt.Errorf("failed to decode record %s: %w", name, err)
		}
		args := make([]any, 0, len(rj.ConstructorArgs))
		for _, a := range rj.ConstructorArgs {
			args = append(args, a)
		}
		return fresh.Append(DeploymentRecord{
			LogicalName:     name,
			ABIKind:         rj.ABIKind,
			Address:         rj.Address,
			ConstructorArgs: args,
			Factory:         rj.Factory,
			EncodedArgs:     rj.EncodedArgs,
			TxHash:          rj.TxHash,
			BlockNumber:     rj.BlockNumber,
			DeployedAt:      rj.DeployedAt,
		})
	})
	if err != nil {
		return err
	}
	*l = *fresh
	return nil
}

// ArtifactEntry is one line of the address registry.
type ArtifactEntry struct {
	Name    string `json:"-" yaml:"name"`
	ABI     string `json:"abi" yaml:"abi"`
	Address string `json:"address" yaml:"address"`
}

// DeploymentArtifact is the human-readable address registry checked into
// version control: logical name -> {abi, address}.
type DeploymentArtifact struct {
	Entries []ArtifactEntry
}

// Lookup returns the entry for name.
func (a *DeploymentArtifact) Lookup(name string) (ArtifactEntry, bool) {
	for _, e := range a.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return ArtifactEntry{}, false
}

func (a *DeploymentArtifact) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(a.Entries))
	byName := make(map[string]ArtifactEntry, len(a.Entries))
	for _, e := range a.Entries {
		keys = append(keys, e.Name)
		byName[e.Name] = e
	}
	return marshalOrderedObject(keys, func(name string) any {
		return byName[name]
	})
}

func (a *DeploymentArtifact) UnmarshalJSON(data []byte) error {
	seen := make(map[string]bool)
	var entries []ArtifactEntry
	err := unmarshalOrderedObject(data, func(name string, raw json.RawMessage) error {
		if seen[name] {
			return fmt.Errorf("%s: %w", name, ErrAlreadyExists)
		}
		seen[name] = true
		var e ArtifactEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			return fmt.Errorf("failed to decode entry %s: %w", name, err)
		}
		e.Name = name
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return err
	}
	a.Entries = entries
	return nil
}
