package domain

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
)

func TestPredictCreateAddress(t *testing.T) {
	sender := common.HexToAddress("0x6ac7ea33f8831ea9dcc53393aaa88b25a785dbf0")

	tests := []struct {
		name     string
		nonce    uint64
		expected string
	}{
		{
			name:     "nonce zero uses empty encoding",
			nonce:    0,
			expected: "0xcd234a471b72ba2f1ccf0a70fcaba648a5eecd8d",
		},
		{
			name:     "nonce one",
			nonce:    1,
			expected: "0x343c43a37d37dff08ae8c4a11544c718abb4fcf8",
		},
		{
			name:     "nonce two",
			nonce:    2,
			expected: "0xf778b86fa74e846c4f0a1fbd1335fe81c00a0c91",
		},
		{
			name:     "nonce three",
			nonce:    3,
			expected: "0xfffd933a0bc612844eaf0c6fe3e5b8e9b6c1d19c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PredictCreateAddress(sender, tt.nonce)
			assert.Equal(t, common.HexToAddress(tt.expected), got)
		})
	}
}

func TestPredictCreateAddress_MatchesGethDerivation(t *testing.T) {
	senders := []common.Address{
		{},
		common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"),
		common.HexToAddress("0xffffffffffffffffffffffffffffffffffffffff"),
	}
	nonces := []uint64{0, 1, 0x7f, 0x80, 0xff, 0x100, 1 << 32, ^uint64(0)}

	for _, sender := range senders {
		for _, nonce := range nonces {
			assert.Equal(t, crypto.CreateAddress(sender, nonce), PredictCreateAddress(sender, nonce),
				"sender %s nonce %d", sender.Hex(), nonce)
		}
	}
}

func TestPredictCreateAddress_Deterministic(t *testing.T) {
	sender := common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
	for nonce := uint64(0); nonce < 32; nonce++ {
		assert.Equal(t, PredictCreateAddress(sender, nonce), PredictCreateAddress(sender, nonce))
	}
}

func TestPredictCreateAddresses(t *testing.T) {
	sender := common.HexToAddress("0x6ac7ea33f8831ea9dcc53393aaa88b25a785dbf0")

	addrs := PredictCreateAddresses(sender, 1, 3)
	assert.Equal(t, []common.Address{
		common.HexToAddress("0x343c43a37d37dff08ae8c4a11544c718abb4fcf8"),
		common.HexToAddress("0xf778b86fa74e846c4f0a1fbd1335fe81c00a0c91"),
		common.HexToAddress("0xfffd933a0bc612844eaf0c6fe3e5b8e9b6c1d19c"),
	}, addrs)

	assert.Empty(t, PredictCreateAddresses(sender, 5, 0))
}
