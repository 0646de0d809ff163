package models

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"github.com/trebuchet-org/catapult/internal/domain"
)

// AmountBits is the width of on-chain token amounts
const AmountBits = 256

var ten = uint256.NewInt(10)

// ExpandUnits returns human * 10^decimals, or an AmountOverflowError when the
// result does not fit in AmountBits.
func ExpandUnits(human uint32, decimals uint8) (*uint256.Int, error) {
	if human == 0 {
		return new(uint256.Int), nil
	}

	overflow := &domain.AmountOverflowError{Human: human, Decimals: decimals, Bits: AmountBits}

	scale := uint256.NewInt(1)
	for i := uint8(0); i < decimals; i++ {
		var over bool
		if scale, over = new(uint256.Int).MulOverflow(scale, ten); over {
			return nil, overflow
		}
	}

	base, over := new(uint256.Int).MulOverflow(uint256.NewInt(uint64(human)), scale)
	if over {
		return nil, overflow
	}
	return base, nil
}

// ExpandAmount scales a human quantity of tok to base units
func ExpandAmount(tok Token, human uint32) (*uint256.Int, error) {
	switch t := tok.(type) {
	case *WrappedNative:
		if t != nil {
			return ExpandUnits(human, NativeDecimals)
		}
	case *IssuedToken:
		if t != nil {
			return ExpandUnits(human, t.TokenDecimals)
		}
	}
	return nil, fmt.Errorf("%w: cannot expand amount of token %T", domain.ErrInvalidConfig, tok)
}

// FormatAmount renders base units of tok as a decimal human quantity
func FormatAmount(tok Token, base *uint256.Int) string {
	if base == nil {
		return "0"
	}
	return decimal.NewFromBigInt(base.ToBig(), -int32(tok.Decimals())).String()
}
