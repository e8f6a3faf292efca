package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound is returned when a requested resource doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when a logical name is appended to the ledger twice
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidAddress is returned when an Ethereum address is invalid or zero
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidGasPrice is returned when the network gas price is missing or not positive
	ErrInvalidGasPrice = errors.New("invalid gas price")

	// ErrMissingLedgerEntry is returned when a plan references a contract that is not in the ledger
	ErrMissingLedgerEntry = errors.New("missing ledger entry")

	// ErrInvalidPlan is returned when a deployment plan fails static validation
	ErrInvalidPlan = errors.New("invalid deployment plan")

	// ErrContractNotFound is returned when a contract artifact can't be found
	ErrContractNotFound = errors.New("contract not found")

	// ErrTransactionReverted is returned when a mined transaction has a failed status
	ErrTransactionReverted = errors.New("transaction reverted")

	// ErrVerificationFailed is returned by verifiers when the explorer rejects a submission
	ErrVerificationFailed = errors.New("verification failed")
)

// FailureKind classifies fatal run errors.
type FailureKind string

const (
	FailureConfig     FailureKind = "config"
	FailureOracle     FailureKind = "oracle"
	FailureDeployment FailureKind = "deployment"
	FailureWiring     FailureKind = "wiring"
)

// RunError is a fatal error that terminates a deployment run. It carries the
// pipeline stage it happened in and, when relevant, the contract involved.
type RunError struct {
	Kind     FailureKind
	Stage    RunState
	Contract string
	Err      error
}

func (e *RunError) Error() string {
	if e.Contract != "" {
		return fmt.Sprintf("%s failure during %s (%s): %v", e.Kind, e.Stage, e.Contract, e.Err)
	}
	return fmt.Sprintf("%s failure during %s: %v", e.Kind, e.Stage, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

// NewRunError wraps err as a fatal run error.
func NewRunError(kind FailureKind, stage RunState, contract string, err error) *RunError {
	return &RunError{Kind: kind, Stage: stage, Contract: contract, Err: err}
}

// IsFailure reports whether err is a RunError of the given kind.
func IsFailure(err error, kind FailureKind) bool {
	var runErr *RunError
	if errors.As(err, &runErr) {
		return runErr.Kind == kind
	}
	return false
}

type MissingReferencesErr struct {
	Names []string
}

func (e MissingReferencesErr) Error() string {
	return fmt.Sprintf("%v: %v", ErrMissingLedgerEntry, e.Names)
}

func (e MissingReferencesErr) Unwrap() error {
	return ErrMissingLedgerEntry
}
