package usecase

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/domain/bindings"
	"github.com/trebuchet-org/catapult/internal/domain/models"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var (
	testNow     = time.Unix(1_700_000_000, 0)
	factoryAddr = common.HexToAddress("0x00000000000000000000000000000000000f0001")
	routerAddr  = common.HexToAddress("0x00000000000000000000000000000000000f0002")
	pairAddr    = common.HexToAddress("0x00000000000000000000000000000000000f0003")
	wethAddr    = common.HexToAddress("0x00000000000000000000000000000000000e0001")
	partnerAddr = common.HexToAddress("0x00000000000000000000000000000000000e0002")
	tokenBAddr  = common.HexToAddress("0x00000000000000000000000000000000000e0003")
)

func weth() *models.WrappedNative { return models.NewWrappedNative(wethAddr) }

func partner() *models.IssuedToken {
	return &models.IssuedToken{TokenName: "WETH Partner", TokenSymbol: "WETHP", TokenDecimals: 18, ContractAddress: partnerAddr, Provenance: models.Origin{}}
}

func tokenB() *models.IssuedToken {
	return &models.IssuedToken{TokenName: "Token B", TokenSymbol: "TKB", TokenDecimals: 6, ContractAddress: tokenBAddr}
}

// venueChain wires a fake chain with a pair registry that answers
// getPair/getExchange and records createPair/createExchange.
type venueChain struct {
	*fakeChain
	pair           common.Address
	createStatus   uint64
	createSetsPair bool
	approveStatus  uint64
	depositStatus  uint64
}

func newVenueChain(existing common.Address) *venueChain {
	vc := &venueChain{
		fakeChain:      newFakeChain(testSigner, 17),
		pair:           existing,
		createStatus:   types.ReceiptStatusSuccessful,
		createSetsPair: true,
		approveStatus:  types.ReceiptStatusSuccessful,
		depositStatus:  types.ReceiptStatusSuccessful,
	}
	vc.callFn = func(req CallRequest) ([]any, error) {
		switch req.Method {
		case "getPair", "getExchange":
			return []any{vc.pair}, nil
		}
		return nil, errors.New("unexpected call " + req.Method)
	}
	vc.transactFn = func(req TransactRequest) (*models.Receipt, error) {
		switch req.Method {
		case "createPair", "createExchange":
			if vc.createStatus == types.ReceiptStatusSuccessful && vc.createSetsPair {
				vc.pair = pairAddr
			}
			return &models.Receipt{Status: vc.createStatus}, nil
		case "approve":
			return &models.Receipt{Status: vc.approveStatus}, nil
		default:
			return &models.Receipt{Status: vc.depositStatus}, nil
		}
	}
	return vc
}

func (vc *venueChain) methods() []string {
	out := make([]string, len(vc.transacts))
	for i, tx := range vc.transacts {
		out[i] = tx.Method
	}
	return out
}

func v2Venue() models.Venue {
	return models.Venue{Kind: models.VenueV2, Factory: factoryAddr, Router: routerAddr}
}

func expand(t *testing.T, tok models.Token, human uint32) *big.Int {
	t.Helper()
	amt, err := models.ExpandAmount(tok, human)
	require.NoError(t, err)
	return amt.ToBig()
}

func TestBootstrapLiquidity_RejectsBeforeNetwork(t *testing.T) {
	tests := []struct {
		name   string
		params BootstrapParams
		target error
	}{
		{
			name:   "native pair",
			params: BootstrapParams{Venue: v2Venue(), TokenA: weth(), TokenB: weth(), AmountA: 1, AmountB: 1, Recipient: testSigner},
			target: domain.ErrNativePair,
		},
		{
			name:   "v1 without native side",
			params: BootstrapParams{Venue: models.Venue{Kind: models.VenueV1, Factory: factoryAddr}, TokenA: partner(), TokenB: tokenB(), AmountA: 1, AmountB: 1},
			target: domain.ErrUnsupportedVenue,
		},
		{
			name:   "unknown venue",
			params: BootstrapParams{Venue: models.Venue{Kind: "v4"}, TokenA: weth(), TokenB: partner(), AmountA: 1, AmountB: 1},
			target: domain.ErrUnsupportedVenue,
		},
		{
			name:   "v2 without router",
			params: BootstrapParams{Venue: models.Venue{Kind: models.VenueV2, Factory: factoryAddr}, TokenA: weth(), TokenB: partner(), AmountA: 1, AmountB: 1},
			target: domain.ErrUnsupportedVenue,
		},
		{
			name:   "missing token",
			params: BootstrapParams{Venue: v2Venue(), TokenA: weth(), AmountA: 1, AmountB: 1},
			target: domain.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := newVenueChain(common.Address{})
			uc := NewBootstrapLiquidity(chain, fixedClock{testNow}, NopProgress{})

			result, err := uc.Run(context.Background(), tt.params)
			assert.ErrorIs(t, err, tt.target)
			assert.Nil(t, result)
			assert.Empty(t, chain.calls)
			assert.Zero(t, chain.mutations())
		})
	}

	t.Run("amount overflow", func(t *testing.T) {
		chain := newVenueChain(common.Address{})
		uc := NewBootstrapLiquidity(chain, fixedClock{testNow}, NopProgress{})
		huge := &models.IssuedToken{TokenName: "Huge", TokenSymbol: "HUGE", TokenDecimals: 80, ContractAddress: tokenBAddr}

		_, err := uc.Run(context.Background(), BootstrapParams{
			Venue: v2Venue(), TokenA: weth(), TokenB: huge, AmountA: 1, AmountB: 1, Recipient: testSigner,
		})
		var overflow *domain.AmountOverflowError
		require.ErrorAs(t, err, &overflow)
		assert.Equal(t, uint8(80), overflow.Decimals)
		assert.Empty(t, chain.calls)
		assert.Zero(t, chain.mutations())
	})
}

func TestBootstrapLiquidity_NativePairRoutesToETHEntryPoint(t *testing.T) {
	chain := newVenueChain(common.Address{})
	progress := &recordingProgress{}
	uc := NewBootstrapLiquidity(chain, fixedClock{testNow}, progress)

	result, err := uc.Run(context.Background(), BootstrapParams{
		Venue:     v2Venue(),
		TokenA:    weth(),
		TokenB:    partner(),
		AmountA:   1000,
		AmountB:   4000,
		Recipient: testSigner,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"createPair", "approve", "addLiquidityETH"}, chain.methods())
	assert.Len(t, chain.calls, 2, "query, create, re-query")
	assert.Equal(t, []any{wethAddr, partnerAddr}, chain.calls[0].Args)

	approve := chain.transacts[1]
	assert.Equal(t, partnerAddr, approve.To)
	assert.Equal(t, bindings.ERC20, approve.ABI)
	assert.Equal(t, []any{routerAddr, expand(t, partner(), 4000)}, approve.Args)

	deposit := chain.transacts[2]
	assert.Equal(t, routerAddr, deposit.To)
	assert.Equal(t, expand(t, weth(), 1000), deposit.Value, "native amount is attached as value")
	deadline := big.NewInt(testNow.Add(time.Hour).Unix())
	assert.Equal(t, []any{
		partnerAddr,
		expand(t, partner(), 4000),
		expand(t, partner(), 4000),
		expand(t, weth(), 1000),
		testSigner,
		deadline,
	}, deposit.Args)
	for _, arg := range deposit.Args {
		assert.NotEqual(t, wethAddr, arg, "native token is not passed as an argument")
	}

	assert.True(t, result.PairCreated)
	assert.Equal(t, pairAddr, result.Pair)
	assert.Equal(t, deadline.Uint64(), result.Deadline)
	require.Len(t, result.Approvals, 1)
	assert.True(t, result.Approvals[0].Succeeded())
	assert.True(t, result.Deposit.Succeeded())
	assert.Equal(t, []string{
		"pair_creating",
		"pair_ready",
		"approve_submitting",
		"approve_confirmed",
		"deposit_submitting",
		"deposit_confirmed",
	}, progress.stages())
	for _, e := range progress.events {
		assert.Equal(t, strings.HasSuffix(e.Stage, "_submitting") || e.Stage == "pair_creating", e.Spinner,
			"spinner only while a transaction is pending: %s", e.Stage)
	}
}

func TestBootstrapLiquidity_TwoIssuedTokens(t *testing.T) {
	chain := newVenueChain(pairAddr)
	uc := NewBootstrapLiquidity(chain, fixedClock{testNow}, NopProgress{})

	result, err := uc.Run(context.Background(), BootstrapParams{
		Venue:          v2Venue(),
		TokenA:         partner(),
		TokenB:         tokenB(),
		AmountA:        5,
		AmountB:        10,
		Recipient:      testSigner,
		DeadlineWindow: 10 * time.Minute,
		SlippageBps:    50,
	})
	require.NoError(t, err)

	assert.False(t, result.PairCreated)
	assert.Len(t, chain.calls, 1)
	assert.Equal(t, []string{"approve", "approve", "addLiquidity"}, chain.methods())

	deposit := chain.transacts[2]
	assert.Nil(t, deposit.Value)
	amountB := big.NewInt(10_000_000)
	minB := big.NewInt(9_950_000)
	assert.Equal(t, []any{
		partnerAddr,
		tokenBAddr,
		expand(t, partner(), 5),
		amountB,
		new(big.Int).Div(new(big.Int).Mul(expand(t, partner(), 5), big.NewInt(9950)), big.NewInt(10000)),
		minB,
		testSigner,
		big.NewInt(testNow.Add(10 * time.Minute).Unix()),
	}, deposit.Args)
}

func TestBootstrapLiquidity_PairCreationFaults(t *testing.T) {
	params := BootstrapParams{Venue: v2Venue(), TokenA: weth(), TokenB: partner(), AmountA: 1, AmountB: 1, Recipient: testSigner}

	t.Run("create rejected", func(t *testing.T) {
		chain := newVenueChain(common.Address{})
		chain.createStatus = types.ReceiptStatusFailed
		uc := NewBootstrapLiquidity(chain, fixedClock{testNow}, NopProgress{})

		result, err := uc.Run(context.Background(), params)
		var rejected *domain.TransactionRejectedError
		require.ErrorAs(t, err, &rejected)
		assert.Equal(t, "createPair", rejected.Operation)
		assert.Equal(t, factoryAddr, rejected.Target)
		assert.Equal(t, []string{"createPair"}, chain.methods(), "no approve or deposit after a failed create")
		assert.False(t, result.PairCreated)
	})

	t.Run("pair still unset", func(t *testing.T) {
		chain := newVenueChain(common.Address{})
		chain.createSetsPair = false
		uc := NewBootstrapLiquidity(chain, fixedClock{testNow}, NopProgress{})

		_, err := uc.Run(context.Background(), params)
		assert.ErrorIs(t, err, domain.ErrPairUnavailable)
		assert.Equal(t, []string{"createPair"}, chain.methods())
	})
}

func TestBootstrapLiquidity_ApproveFailureIsWarning(t *testing.T) {
	chain := newVenueChain(pairAddr)
	chain.approveStatus = types.ReceiptStatusFailed
	progress := &recordingProgress{}
	uc := NewBootstrapLiquidity(chain, fixedClock{testNow}, progress)

	result, err := uc.Run(context.Background(), BootstrapParams{
		Venue: v2Venue(), TokenA: weth(), TokenB: partner(), AmountA: 1, AmountB: 1, Recipient: testSigner,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"approve", "addLiquidityETH"}, chain.methods(), "deposit is still attempted")
	require.Len(t, result.Approvals, 1)
	assert.False(t, result.Approvals[0].Succeeded())
	var rejected *domain.TransactionRejectedError
	assert.ErrorAs(t, result.Approvals[0].Err, &rejected)
	assert.Len(t, progress.errors, 1)
}

func TestBootstrapLiquidity_DepositRejected(t *testing.T) {
	chain := newVenueChain(pairAddr)
	chain.depositStatus = types.ReceiptStatusFailed
	progress := &recordingProgress{}
	uc := NewBootstrapLiquidity(chain, fixedClock{testNow}, progress)

	result, err := uc.Run(context.Background(), BootstrapParams{
		Venue: v2Venue(), TokenA: partner(), TokenB: weth(), AmountA: 5, AmountB: 5, Recipient: testSigner,
	})
	var rejected *domain.TransactionRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "addLiquidityETH", rejected.Operation)
	assert.Equal(t, routerAddr, rejected.Target)
	assert.Equal(t, "5 WETHP", rejected.Details["amountA"])
	assert.Equal(t, "5 WETH", rejected.Details["amountB"])

	assert.Equal(t, []string{"approve", "addLiquidityETH"}, chain.methods(), "deposit is not retried")
	assert.False(t, result.Deposit.Succeeded())
	assert.Len(t, progress.errors, 1)
}

func TestBootstrapLiquidity_V1Exchange(t *testing.T) {
	chain := newVenueChain(common.Address{})
	uc := NewBootstrapLiquidity(chain, fixedClock{testNow}, NopProgress{})

	result, err := uc.Run(context.Background(), BootstrapParams{
		Venue:   models.Venue{Kind: models.VenueV1, Factory: factoryAddr},
		TokenA:  partner(),
		TokenB:  weth(),
		AmountA: 5,
		AmountB: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"createExchange", "approve", "addLiquidity"}, chain.methods())
	assert.Equal(t, "getExchange", chain.calls[0].Method)
	assert.Equal(t, []any{partnerAddr}, chain.calls[0].Args)
	assert.Equal(t, bindings.UniswapV1Factory, chain.transacts[0].ABI)

	approve := chain.transacts[1]
	assert.Equal(t, pairAddr, approve.Args[0], "exchange is the spender")

	five := expand(t, weth(), 5)
	deposit := chain.transacts[2]
	assert.Equal(t, pairAddr, deposit.To)
	assert.Equal(t, bindings.UniswapV1Exchange, deposit.ABI)
	assert.Equal(t, five, deposit.Value)
	assert.Equal(t, []any{five, five, big.NewInt(testNow.Add(time.Hour).Unix())}, deposit.Args)
	assert.Equal(t, pairAddr, result.Pair)
}

func TestMinAmount(t *testing.T) {
	amount := uint256.NewInt(1_000_000)
	assert.Equal(t, big.NewInt(1_000_000), minAmount(amount, 0))
	assert.Equal(t, big.NewInt(995_000), minAmount(amount, 50))
	assert.Zero(t, minAmount(amount, bpsDenominator).Sign())
}
