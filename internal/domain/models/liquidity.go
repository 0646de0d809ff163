package models

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// VenueKind selects the exchange protocol liquidity is provided to
type VenueKind string

const (
	// VenueV2 pairs any two tokens through a factory and router
	VenueV2 VenueKind = "v2"
	// VenueV1 pairs one token with the native currency through a per-token exchange
	VenueV1 VenueKind = "v1"
)

// Venue is a deployed exchange the bootstrap talks to
type Venue struct {
	Kind    VenueKind
	Factory common.Address
	Router  common.Address // v2 only
}

func (v Venue) String() string {
	switch v.Kind {
	case VenueV1:
		return fmt.Sprintf("Uniswap V1 (factory %s)", v.Factory.Hex())
	default:
		return fmt.Sprintf("Uniswap V2 (factory %s, router %s)", v.Factory.Hex(), v.Router.Hex())
	}
}

// LiquiditySide is one token of a pair with its expanded deposit amount
type LiquiditySide struct {
	Token  Token
	Human  uint32
	Amount *uint256.Int
}

func (s LiquiditySide) String() string {
	return fmt.Sprintf("%s %s", FormatAmount(s.Token, s.Amount), s.Token.Symbol())
}

// ApprovalOutcome records one allowance transaction. Failures are warnings.
type ApprovalOutcome struct {
	Token   Token
	Spender common.Address
	Amount  *uint256.Int
	Receipt *Receipt
	Err     error
}

// Succeeded reports whether the allowance was granted
func (a *ApprovalOutcome) Succeeded() bool {
	return a.Err == nil && a.Receipt.Succeeded()
}

// BootstrapResult is the outcome of a liquidity bootstrap
type BootstrapResult struct {
	Venue       Venue
	Pair        common.Address
	PairCreated bool
	SideA       LiquiditySide
	SideB       LiquiditySide
	Approvals   []*ApprovalOutcome
	Deadline    uint64
	Deposit     *Receipt
}
