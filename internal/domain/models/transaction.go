package models

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// PendingTx is a submitted transaction whose confirmation can be awaited.
type PendingTx struct {
	Hash common.Hash
	// ContractAddress is the predicted address for creation transactions.
	ContractAddress common.Address
	Tx              *types.Transaction
}

// Receipt is the confirmed outcome of a transaction.
type Receipt struct {
	TxHash          common.Hash
	BlockNumber     uint64
	GasUsed         uint64
	ContractAddress common.Address
}
