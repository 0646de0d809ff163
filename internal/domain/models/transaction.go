package models

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Receipt is the confirmed outcome of a submitted transaction
type Receipt struct {
	TxHash          common.Hash
	Status          uint64
	ContractAddress common.Address // zero unless the transaction created a contract
	BlockNumber     uint64
	GasUsed         uint64
}

// Succeeded reports whether the transaction executed without reverting
func (r *Receipt) Succeeded() bool {
	return r != nil && r.Status == types.ReceiptStatusSuccessful
}

// NewReceipt converts a go-ethereum receipt
func NewReceipt(r *types.Receipt) *Receipt {
	if r == nil {
		return nil
	}
	out := &Receipt{
		TxHash:          r.TxHash,
		Status:          r.Status,
		ContractAddress: r.ContractAddress,
		GasUsed:         r.GasUsed,
	}
	if r.BlockNumber != nil {
		out.BlockNumber = r.BlockNumber.Uint64()
	}
	return out
}
