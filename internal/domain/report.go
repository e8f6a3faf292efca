package domain

import (
	"github.com/ethereum/go-ethereum/common"
)

// VerificationOutcome is the observational result of one source
// verification attempt. It never influences control flow.
type VerificationOutcome struct {
	LogicalName  string         `json:"logicalName"`
	Address      common.Address `json:"address"`
	Succeeded    bool           `json:"succeeded"`
	ErrorMessage string         `json:"errorMessage,omitempty"`
}

// WiringResult records one confirmed wiring or setup transaction.
type WiringResult struct {
	Call        string      `json:"call"`
	TxHash      common.Hash `json:"txHash"`
	BlockNumber uint64      `json:"blockNumber"`
}

// RunReport summarises a deployment run.
type RunReport struct {
	RunID        string
	Network      string
	ChainID      uint64
	Plan         string
	Deployer     common.Address
	Gas          GasPolicy
	State        RunState
	Ledger       *DeploymentLedger
	Setup        []WiringResult
	Wiring       []WiringResult
	Verification []VerificationOutcome
	ArtifactPath string
	LedgerPath   string
}

// VerifiedCount returns how many verification attempts succeeded.
func (r *RunReport) VerifiedCount() int {
	n := 0
	for _, o := range r.Verification {
		if o.Succeeded {
			n++
		}
	}
	return n
}
