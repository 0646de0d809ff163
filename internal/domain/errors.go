package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
)

// Sentinel errors for domain operations
var (
	// ErrNotFound is returned when a requested resource doesn't exist
	ErrNotFound = errors.New("not found")

	// ErrInvalidAddress is returned when an Ethereum address is invalid
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidPlan is returned when a deployment plan breaks its slot ordering
	ErrInvalidPlan = errors.New("invalid deployment plan")

	// ErrSlotGap is returned when a step is reached whose slot is ahead of the signer's nonce
	ErrSlotGap = errors.New("plan slot ahead of signer nonce")

	// ErrUnresolvedStep is returned when a builder references a step that has no address yet
	ErrUnresolvedStep = errors.New("unresolved step")

	// ErrNativePair is returned when both sides of a liquidity pair are the wrapped native token
	ErrNativePair = errors.New("both sides of the pair are the native token")

	// ErrUnsupportedVenue is returned when a pair cannot be served by the configured venue
	ErrUnsupportedVenue = errors.New("unsupported liquidity venue")

	// ErrPairUnavailable is returned when a trading pair cannot be resolved after creation
	ErrPairUnavailable = errors.New("trading pair unavailable")

	// ErrNotConnected is returned when a chain adapter is used before dialing
	ErrNotConnected = errors.New("not connected to blockchain")

	// ErrInvalidConfig is returned for missing or malformed configuration
	ErrInvalidConfig = errors.New("invalid configuration")
)

// PredictionMismatchError reports a deployed address that differs from the
// CREATE prediction for its slot.
type PredictionMismatchError struct {
	Step      string
	Slot      uint64
	Predicted common.Address
	Actual    common.Address
}

func (e *PredictionMismatchError) Error() string {
	return fmt.Sprintf("step %s (slot %d) deployed at %s, predicted %s",
		e.Step, e.Slot, e.Actual.Hex(), e.Predicted.Hex())
}

// TransactionRejectedError reports a transaction that was mined with a failure status.
type TransactionRejectedError struct {
	Operation string
	TxHash    common.Hash
	Target    common.Address
	Details   map[string]string
}

func (e *TransactionRejectedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s rejected (tx %s", e.Operation, e.TxHash.Hex())
	if e.Target != (common.Address{}) {
		fmt.Fprintf(&b, ", target %s", e.Target.Hex())
	}
	keys := lo.Keys(e.Details)
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, ", %s=%s", k, e.Details[k])
	}
	b.WriteString(")")
	return b.String()
}

// AmountOverflowError is returned when a human amount does not fit the
// on-chain amount width once scaled by the token's decimals.
type AmountOverflowError struct {
	Human    uint32
	Decimals uint8
	Bits     int
}

func (e *AmountOverflowError) Error() string {
	return fmt.Sprintf("amount %d with %d decimals overflows uint%d", e.Human, e.Decimals, e.Bits)
}

// SkippedStepMissingError is returned when verification of a presumed step
// finds no code at its predicted address.
type SkippedStepMissingError struct {
	Step    string
	Slot    uint64
	Address common.Address
}

func (e *SkippedStepMissingError) Error() string {
	return fmt.Sprintf("step %s (slot %d) presumed deployed but no code at %s", e.Step, e.Slot, e.Address.Hex())
}

// ConfigError wraps a startup configuration fault.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %v", ErrInvalidConfig, e.Err)
	}
	return fmt.Sprintf("%v: %s: %v", ErrInvalidConfig, e.Field, e.Err)
}

func (e *ConfigError) Unwrap() []error {
	return []error{ErrInvalidConfig, e.Err}
}
