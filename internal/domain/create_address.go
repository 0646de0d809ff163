package domain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// PredictCreateAddress returns the address a contract created by sender at the
// given nonce receives under the CREATE rule: the low 20 bytes of
// keccak256(rlp([sender, nonce])).
//
// RLP encodes integers in minimal big-endian form, so nonce 0 is the empty
// string (0x80) and not a single zero byte.
func PredictCreateAddress(sender common.Address, nonce uint64) common.Address {
	data, err := rlp.EncodeToBytes([]interface{}{sender, nonce})
	if err != nil {
		// Encoding a 20-byte array and a uint64 cannot fail.
		panic(err)
	}
	return common.BytesToAddress(crypto.Keccak256(data)[12:])
}

// PredictCreateAddresses returns the predicted addresses for nonces
// [from, from+count).
func PredictCreateAddresses(sender common.Address, from, count uint64) []common.Address {
	out := make([]common.Address, 0, count)
	for n := from; n < from+count; n++ {
		out = append(out, PredictCreateAddress(sender, n))
	}
	return out
}
