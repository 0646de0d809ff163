package models

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// NativeDecimals is the fixed precision of the wrapped native token
const NativeDecimals uint8 = 18

// Token is either *WrappedNative or *IssuedToken. Call sites switch on the
// concrete type; the unexported marker keeps the set closed.
type Token interface {
	fmt.Stringer
	fmt.GoStringer
	Name() string
	Symbol() string
	Address() common.Address
	Decimals() uint8
	isToken()
}

// WrappedNative is the chain's wrapped native currency (WETH9 and friends)
type WrappedNative struct {
	ContractAddress common.Address
}

// NewWrappedNative creates the wrapped native token at addr
func NewWrappedNative(addr common.Address) *WrappedNative {
	return &WrappedNative{ContractAddress: addr}
}

func (*WrappedNative) isToken() {}

func (w *WrappedNative) Address() common.Address { return w.ContractAddress }
func (w *WrappedNative) Decimals() uint8         { return NativeDecimals }
func (w *WrappedNative) Name() string            { return "Wrapped Ether" }
func (w *WrappedNative) Symbol() string          { return "WETH" }

func (w *WrappedNative) String() string {
	return fmt.Sprintf("%s [ %s ]", w.Name(), w.Symbol())
}

// GoString is the audit form
func (w *WrappedNative) GoString() string {
	return fmt.Sprintf("ERC20 %s ; Contract Address: %s", w.String(), w.ContractAddress.Hex())
}

// Provenance records where an issued token comes from. It is carried for
// display and audit only.
type Provenance interface {
	Label() string
	isProvenance()
}

// Origin marks a token issued on this chain
type Origin struct{}

func (Origin) isProvenance() {}
func (Origin) Label() string { return "Origin" }

// Bridged marks a token wrapped from another chain
type Bridged struct {
	SourceChain string
	SourceToken string
}

func (Bridged) isProvenance() {}

func (b Bridged) Label() string {
	if b.SourceChain == "" {
		return "Bridge"
	}
	return fmt.Sprintf("Bridge from %s", b.SourceChain)
}

// IssuedToken is a plain ERC-20 with metadata supplied by config or the chain
type IssuedToken struct {
	TokenName       string
	TokenSymbol     string
	TokenDecimals   uint8
	ContractAddress common.Address
	Provenance      Provenance
}

func (*IssuedToken) isToken() {}

func (t *IssuedToken) Address() common.Address { return t.ContractAddress }
func (t *IssuedToken) Decimals() uint8         { return t.TokenDecimals }
func (t *IssuedToken) Name() string            { return t.TokenName }
func (t *IssuedToken) Symbol() string          { return t.TokenSymbol }

func (t *IssuedToken) String() string {
	return fmt.Sprintf("%s [ %s ]", t.TokenName, t.TokenSymbol)
}

// GoString is the audit form
func (t *IssuedToken) GoString() string {
	provenance := Provenance(Origin{})
	if t.Provenance != nil {
		provenance = t.Provenance
	}
	return fmt.Sprintf("ERC20 %s: %s ; Contract Address: %s", provenance.Label(), t.String(), t.ContractAddress.Hex())
}

// IsNative reports whether tok is the wrapped native token
func IsNative(tok Token) bool {
	_, ok := tok.(*WrappedNative)
	return ok
}
