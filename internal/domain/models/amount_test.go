package models

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/catapult/internal/domain"
)

func TestExpandAmount(t *testing.T) {
	weth := NewWrappedNative(common.HexToAddress("0x1000000000000000000000000000000000000001"))
	usdc := &IssuedToken{TokenName: "USD Coin", TokenSymbol: "USDC", TokenDecimals: 6}

	t.Run("18 decimals", func(t *testing.T) {
		tok := &IssuedToken{TokenName: "WETH Partner", TokenSymbol: "WETHP", TokenDecimals: 18}
		got, err := ExpandAmount(tok, 5)
		require.NoError(t, err)

		want, _ := new(big.Int).SetString("5000000000000000000", 10)
		assert.Equal(t, want, got.ToBig())
	})

	t.Run("native token is always 18 decimals", func(t *testing.T) {
		got, err := ExpandAmount(weth, 1000)
		require.NoError(t, err)
		want, _ := new(big.Int).SetString("1000000000000000000000", 10)
		assert.Equal(t, want, got.ToBig())
	})

	t.Run("issued token decimals", func(t *testing.T) {
		got, err := ExpandAmount(usdc, 4000)
		require.NoError(t, err)
		assert.Equal(t, uint64(4_000_000_000), got.Uint64())
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := ExpandAmount(nil, 1)
		assert.ErrorIs(t, err, domain.ErrInvalidConfig)

		var issued *IssuedToken
		_, err = ExpandAmount(issued, 1)
		assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	})

	t.Run("zero decimals", func(t *testing.T) {
		got, err := ExpandUnits(^uint32(0), 0)
		require.NoError(t, err)
		assert.Equal(t, uint64(^uint32(0)), got.Uint64())
	})

	t.Run("max human amount at 18 decimals fits", func(t *testing.T) {
		got, err := ExpandUnits(^uint32(0), 18)
		require.NoError(t, err)
		want := new(big.Int).Mul(big.NewInt(int64(^uint32(0))), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
		assert.Equal(t, want, got.ToBig())
	})
}

func TestExpandUnits_Overflow(t *testing.T) {
	tests := []struct {
		name     string
		human    uint32
		decimals uint8
		overflow bool
	}{
		{"largest power of ten that fits", 1, 77, false},
		{"two at 77 decimals overflows", 2, 77, true},
		{"scale itself overflows", 1, 78, true},
		{"max decimals", 1, 255, true},
		{"zero never overflows", 0, 255, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandUnits(tt.human, tt.decimals)
			if !tt.overflow {
				require.NoError(t, err)
				require.NotNil(t, got)
				return
			}

			require.Error(t, err)
			assert.Nil(t, got)

			var overflowErr *domain.AmountOverflowError
			require.True(t, errors.As(err, &overflowErr))
			assert.Equal(t, tt.human, overflowErr.Human)
			assert.Equal(t, tt.decimals, overflowErr.Decimals)
			assert.Equal(t, AmountBits, overflowErr.Bits)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	tok := &IssuedToken{TokenName: "USD Coin", TokenSymbol: "USDC", TokenDecimals: 6}

	base, err := ExpandAmount(tok, 42)
	require.NoError(t, err)
	assert.Equal(t, "42", FormatAmount(tok, base))

	weth := NewWrappedNative(common.Address{})
	half, err := ExpandUnits(5, 17)
	require.NoError(t, err)
	assert.Equal(t, "0.5", FormatAmount(weth, half))

	assert.Equal(t, "0", FormatAmount(weth, nil))
}
