package usecase

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/domain/bindings"
	"github.com/trebuchet-org/catapult/internal/domain/models"
)

// DefaultDeadlineWindow is how far in the future a deposit stays valid
const DefaultDeadlineWindow = time.Hour

const bpsDenominator = 10_000

// BootstrapLiquidity ensures a trading pair exists and seeds it with liquidity.
// Each sub-step inspects the chain before acting; unlike plan steps they are
// not slot-pinned.
type BootstrapLiquidity struct {
	chain    ChainClient
	clock    Clock
	progress ProgressSink
}

// NewBootstrapLiquidity creates a new bootstrap liquidity use case
func NewBootstrapLiquidity(
	chain ChainClient,
	clock Clock,
	progress ProgressSink,
) *BootstrapLiquidity {
	return &BootstrapLiquidity{
		chain:    chain,
		clock:    clock,
		progress: progress,
	}
}

// BootstrapParams describes the pair and the initial deposit
type BootstrapParams struct {
	Venue   models.Venue
	TokenA  models.Token
	TokenB  models.Token
	AmountA uint32
	AmountB uint32
	// Recipient receives the liquidity tokens
	Recipient common.Address
	// DeadlineWindow defaults to DefaultDeadlineWindow
	DeadlineWindow time.Duration
	// SlippageBps lowers the minimum amounts below the desired ones
	SlippageBps uint16
}

// Run executes ensure-pair, approve and deposit in that order
func (uc *BootstrapLiquidity) Run(ctx context.Context, params BootstrapParams) (*models.BootstrapResult, error) {
	sideA, sideB, err := uc.prepare(params)
	if err != nil {
		return nil, err
	}

	result := &models.BootstrapResult{
		Venue: params.Venue,
		SideA: sideA,
		SideB: sideB,
	}

	if err := uc.ensurePair(ctx, params.Venue, sideA, sideB, result); err != nil {
		return result, err
	}

	spender := params.Venue.Router
	if params.Venue.Kind == models.VenueV1 {
		spender = result.Pair
	}
	for _, side := range []models.LiquiditySide{sideA, sideB} {
		if models.IsNative(side.Token) {
			continue
		}
		result.Approvals = append(result.Approvals, uc.approve(ctx, side, spender))
	}

	if err := uc.deposit(ctx, params, result); err != nil {
		return result, err
	}
	return result, nil
}

// Check runs the offline validation of Run. Tokens whose decimals are not
// known yet are checked with zero decimals.
func (uc *BootstrapLiquidity) Check(params BootstrapParams) error {
	_, _, err := uc.prepare(params)
	return err
}

// prepare validates the pair and expands both amounts without touching the chain
func (uc *BootstrapLiquidity) prepare(params BootstrapParams) (models.LiquiditySide, models.LiquiditySide, error) {
	var sideA, sideB models.LiquiditySide
	if params.TokenA == nil || params.TokenB == nil {
		return sideA, sideB, fmt.Errorf("%w: both tokens of the pair are required", domain.ErrInvalidConfig)
	}
	if models.IsNative(params.TokenA) && models.IsNative(params.TokenB) {
		return sideA, sideB, fmt.Errorf("%w: %s / %s", domain.ErrNativePair, params.TokenA, params.TokenB)
	}

	switch params.Venue.Kind {
	case models.VenueV2:
		if params.Venue.Router == (common.Address{}) {
			return sideA, sideB, fmt.Errorf("%w: v2 venue needs a router", domain.ErrUnsupportedVenue)
		}
		if params.Recipient == (common.Address{}) {
			return sideA, sideB, fmt.Errorf("%w: liquidity recipient is required", domain.ErrInvalidConfig)
		}
	case models.VenueV1:
		if !models.IsNative(params.TokenA) && !models.IsNative(params.TokenB) {
			return sideA, sideB, fmt.Errorf("%w: v1 exchanges pair a token with the native currency, got %s / %s",
				domain.ErrUnsupportedVenue, params.TokenA, params.TokenB)
		}
	default:
		return sideA, sideB, fmt.Errorf("%w: %q", domain.ErrUnsupportedVenue, params.Venue.Kind)
	}
	if params.SlippageBps > bpsDenominator {
		return sideA, sideB, fmt.Errorf("%w: slippage %d bps exceeds 100%%", domain.ErrInvalidConfig, params.SlippageBps)
	}

	amountA, err := models.ExpandAmount(params.TokenA, params.AmountA)
	if err != nil {
		return sideA, sideB, fmt.Errorf("amount of %s: %w", params.TokenA, err)
	}
	amountB, err := models.ExpandAmount(params.TokenB, params.AmountB)
	if err != nil {
		return sideA, sideB, fmt.Errorf("amount of %s: %w", params.TokenB, err)
	}

	sideA = models.LiquiditySide{Token: params.TokenA, Human: params.AmountA, Amount: amountA}
	sideB = models.LiquiditySide{Token: params.TokenB, Human: params.AmountB, Amount: amountB}
	return sideA, sideB, nil
}

// ensurePair resolves the pair (v2) or exchange (v1), creating it if missing
func (uc *BootstrapLiquidity) ensurePair(ctx context.Context, venue models.Venue, sideA, sideB models.LiquiditySide, result *models.BootstrapResult) error {
	var (
		registry = bindings.UniswapV2Factory
		lookup   = "getPair"
		create   = "createPair"
		args     = []any{sideA.Token.Address(), sideB.Token.Address()}
		label    = fmt.Sprintf("%s / %s", sideA.Token, sideB.Token)
	)
	if venue.Kind == models.VenueV1 {
		token := issuedSide(sideA, sideB).Token
		registry = bindings.UniswapV1Factory
		lookup = "getExchange"
		create = "createExchange"
		args = []any{token.Address()}
		label = token.String()
	}

	pair, err := uc.lookupAddress(ctx, venue.Factory, registry, lookup, args)
	if err != nil {
		return err
	}

	if pair == (common.Address{}) {
		uc.progress.OnProgress(ctx, ProgressEvent{
			Stage:   "pair_creating",
			Message: fmt.Sprintf("Creating pair %s", label),
			Spinner: true,
		})
		receipt, err := uc.chain.Transact(ctx, TransactRequest{
			To:     venue.Factory,
			ABI:    registry,
			Method: create,
			Args:   args,
		})
		if err != nil {
			return fmt.Errorf("failed to submit %s: %w", create, err)
		}
		if !receipt.Succeeded() {
			return &domain.TransactionRejectedError{
				Operation: create,
				TxHash:    receipt.TxHash,
				Target:    venue.Factory,
				Details:   map[string]string{"pair": label},
			}
		}
		result.PairCreated = true

		pair, err = uc.lookupAddress(ctx, venue.Factory, registry, lookup, args)
		if err != nil {
			return err
		}
		if pair == (common.Address{}) {
			return fmt.Errorf("%w: %s still unset after %s", domain.ErrPairUnavailable, label, create)
		}
	}

	result.Pair = pair
	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:    "pair_ready",
		Message:  fmt.Sprintf("Pair %s at %s", label, pair.Hex()),
		Metadata: result,
	})
	return nil
}

func (uc *BootstrapLiquidity) lookupAddress(ctx context.Context, registry common.Address, contract *abi.ABI, method string, args []any) (common.Address, error) {
	out, err := uc.chain.Call(ctx, CallRequest{
		To:     registry,
		ABI:    contract,
		Method: method,
		Args:   args,
	})
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to query %s: %w", method, err)
	}
	if len(out) != 1 {
		return common.Address{}, fmt.Errorf("%s returned %d values", method, len(out))
	}
	addr, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%s returned %T, not an address", method, out[0])
	}
	return addr, nil
}

// approve grants spender an allowance. A failure is reported and returned in
// the outcome; the deposit is still attempted.
func (uc *BootstrapLiquidity) approve(ctx context.Context, side models.LiquiditySide, spender common.Address) *models.ApprovalOutcome {
	outcome := &models.ApprovalOutcome{
		Token:   side.Token,
		Spender: spender,
		Amount:  side.Amount,
	}

	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:   "approve_submitting",
		Message: fmt.Sprintf("Approving %s for %s", side, spender.Hex()),
		Spinner: true,
	})
	receipt, err := uc.chain.Transact(ctx, TransactRequest{
		To:     side.Token.Address(),
		ABI:    bindings.ERC20,
		Method: "approve",
		Args:   []any{spender, side.Amount.ToBig()},
	})
	outcome.Receipt = receipt
	switch {
	case err != nil:
		outcome.Err = fmt.Errorf("failed to submit approve for %s: %w", side.Token, err)
	case !receipt.Succeeded():
		outcome.Err = &domain.TransactionRejectedError{
			Operation: "approve",
			TxHash:    receipt.TxHash,
			Target:    side.Token.Address(),
			Details: map[string]string{
				"spender": spender.Hex(),
				"amount":  side.String(),
			},
		}
	}

	if outcome.Err != nil {
		uc.progress.Error(fmt.Sprintf("Approve %s declined: %v", side, outcome.Err))
		return outcome
	}
	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:    "approve_confirmed",
		Message:  fmt.Sprintf("Approved %s for %s", side, spender.Hex()),
		Metadata: outcome,
	})
	return outcome
}

func (uc *BootstrapLiquidity) deposit(ctx context.Context, params BootstrapParams, result *models.BootstrapResult) error {
	window := params.DeadlineWindow
	if window <= 0 {
		window = DefaultDeadlineWindow
	}
	result.Deadline = uint64(uc.clock.Now().Add(window).Unix())
	deadline := new(big.Int).SetUint64(result.Deadline)

	req := depositRequest(params, result, deadline)

	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:   "deposit_submitting",
		Message: fmt.Sprintf("Adding liquidity %s + %s", result.SideA, result.SideB),
		Spinner: true,
	})

	receipt, err := uc.chain.Transact(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to submit %s: %w", req.Method, err)
	}
	result.Deposit = receipt

	if !receipt.Succeeded() {
		rejected := &domain.TransactionRejectedError{
			Operation: req.Method,
			TxHash:    receipt.TxHash,
			Target:    req.To,
			Details: map[string]string{
				"amountA":  result.SideA.String(),
				"amountB":  result.SideB.String(),
				"deadline": deadline.String(),
				"pair":     result.Pair.Hex(),
			},
		}
		uc.progress.Error(rejected.Error())
		return rejected
	}

	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:    "deposit_confirmed",
		Message:  fmt.Sprintf("Added liquidity %s + %s", result.SideA, result.SideB),
		Metadata: result,
	})
	return nil
}

// depositRequest routes to the plain, native-paired or v1 entry point
func depositRequest(params BootstrapParams, result *models.BootstrapResult, deadline *big.Int) TransactRequest {
	sideA, sideB := result.SideA, result.SideB
	to := params.Recipient

	if params.Venue.Kind == models.VenueV1 {
		native, token := nativeSide(sideA, sideB), issuedSide(sideA, sideB)
		return TransactRequest{
			To:     result.Pair,
			ABI:    bindings.UniswapV1Exchange,
			Method: "addLiquidity",
			Args: []any{
				minAmount(native.Amount, params.SlippageBps),
				token.Amount.ToBig(),
				deadline,
			},
			Value: native.Amount.ToBig(),
		}
	}

	if models.IsNative(sideA.Token) || models.IsNative(sideB.Token) {
		native, token := nativeSide(sideA, sideB), issuedSide(sideA, sideB)
		return TransactRequest{
			To:     params.Venue.Router,
			ABI:    bindings.UniswapV2Router,
			Method: "addLiquidityETH",
			Args: []any{
				token.Token.Address(),
				token.Amount.ToBig(),
				minAmount(token.Amount, params.SlippageBps),
				minAmount(native.Amount, params.SlippageBps),
				to,
				deadline,
			},
			Value: native.Amount.ToBig(),
		}
	}

	return TransactRequest{
		To:     params.Venue.Router,
		ABI:    bindings.UniswapV2Router,
		Method: "addLiquidity",
		Args: []any{
			sideA.Token.Address(),
			sideB.Token.Address(),
			sideA.Amount.ToBig(),
			sideB.Amount.ToBig(),
			minAmount(sideA.Amount, params.SlippageBps),
			minAmount(sideB.Amount, params.SlippageBps),
			to,
			deadline,
		},
	}
}

func nativeSide(a, b models.LiquiditySide) models.LiquiditySide {
	if models.IsNative(a.Token) {
		return a
	}
	return b
}

func issuedSide(a, b models.LiquiditySide) models.LiquiditySide {
	if models.IsNative(a.Token) {
		return b
	}
	return a
}

// minAmount returns amount * (1 - bps/10000), rounded down
func minAmount(amount *uint256.Int, bps uint16) *big.Int {
	if bps == 0 {
		return amount.ToBig()
	}
	scaled := new(big.Int).Mul(amount.ToBig(), big.NewInt(int64(bpsDenominator-int(bps))))
	return scaled.Quo(scaled, big.NewInt(bpsDenominator))
}
