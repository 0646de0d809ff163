package usecase

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/catapult/internal/config"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/domain/models"
)

type staticSigner common.Address

func (s staticSigner) Address() common.Address { return common.Address(s) }

func (s staticSigner) SignTx(context.Context, *types.Transaction, *big.Int) (*types.Transaction, error) {
	return nil, errors.New("fake signer cannot sign")
}

type scriptedConfirmer struct {
	answer  bool
	err     error
	prompts []string
}

func (c *scriptedConfirmer) Confirm(_ context.Context, prompt string) (bool, error) {
	c.prompts = append(c.prompts, prompt)
	return c.answer, c.err
}

func tokenPlan() *models.Plan {
	return &models.Plan{Name: "tokens", Steps: []*models.DeploymentStep{
		{Name: "WETH9", Slot: 0, Kind: models.StepDeploy, Artifact: "WETH9"},
		{Name: "WETHPartner", Slot: 1, Kind: models.StepDeploy, Artifact: "ERC20"},
	}}
}

func v1Liquidity() *config.LiquidityConfig {
	decimals := uint8(18)
	return &config.LiquidityConfig{
		Venue:    "v1",
		Factory:  factoryAddr.Hex(),
		AmountA:  5,
		AmountB:  5,
		Deadline: 30 * time.Minute,
		TokenA:   config.TokenConfig{Native: true, Address: "WETH9"},
		TokenB:   config.TokenConfig{Address: "WETHPartner", Name: "WETH Partner", Symbol: "WETHP", Decimals: &decimals},
	}
}

type orchestrateFixture struct {
	chain     *venueChain
	confirmer *scriptedConfirmer
	progress  *recordingProgress
	cfg       *config.RuntimeConfig
	uc        *OrchestrateDeployment
}

func newOrchestrateFixture(nonce uint64, liq *config.LiquidityConfig) *orchestrateFixture {
	chain := newVenueChain(common.Address{})
	chain.nonce = nonce
	f := &orchestrateFixture{
		chain:     chain,
		confirmer: &scriptedConfirmer{answer: true},
		progress:  &recordingProgress{},
		cfg:       &config.RuntimeConfig{Project: &config.ProjectConfig{ChainID: 31337, Liquidity: liq}},
	}
	f.uc = NewOrchestrateDeployment(
		f.cfg,
		staticSigner(testSigner),
		NewInspectPlan(chain),
		NewDeployPlan(chain, &fakeArtifacts{}, f.progress),
		NewResolveTokens(nil),
		NewBootstrapLiquidity(chain, fixedClock{testNow}, f.progress),
		f.confirmer,
		f.progress,
	)
	return f
}

func TestOrchestrateDeployment_PlanThenLiquidity(t *testing.T) {
	f := newOrchestrateFixture(0, v1Liquidity())

	result, err := f.uc.Run(context.Background(), tokenPlan())
	require.NoError(t, err)
	assert.False(t, result.Cancelled)
	assert.Equal(t, []string{"Deploy 2 of 2 steps of plan tokens to chain 31337"}, f.confirmer.prompts)
	assert.Equal(t, 2, result.Deploy.Count(models.StepConfirmed))
	assert.Equal(t, "signer_report", f.progress.events[0].Stage)

	require.NotNil(t, result.Liquidity)
	wethAt := domain.PredictCreateAddress(testSigner, 0)
	partnerAt := domain.PredictCreateAddress(testSigner, 1)
	assert.Equal(t, wethAt, result.Liquidity.SideA.Token.Address())
	assert.Equal(t, partnerAt, result.Liquidity.SideB.Token.Address())
	assert.Equal(t, pairAddr, result.Liquidity.Pair)
	assert.Equal(t, uint64(testNow.Add(30*time.Minute).Unix()), result.Liquidity.Deadline)
	assert.Equal(t, []string{"createExchange", "approve", "addLiquidity"}, f.chain.methods())
}

func TestOrchestrateDeployment_Resumed(t *testing.T) {
	f := newOrchestrateFixture(2, nil)

	result, err := f.uc.Run(context.Background(), tokenPlan())
	require.NoError(t, err)
	assert.Empty(t, f.confirmer.prompts, "nothing left to deploy")
	assert.Equal(t, 2, result.Deploy.Count(models.StepPresumed))
	assert.Nil(t, result.Liquidity)
	assert.Zero(t, f.chain.mutations())
}

func TestOrchestrateDeployment_Declined(t *testing.T) {
	f := newOrchestrateFixture(0, v1Liquidity())
	f.confirmer.answer = false

	result, err := f.uc.Run(context.Background(), tokenPlan())
	require.NoError(t, err)
	assert.True(t, result.Cancelled)
	assert.Nil(t, result.Deploy)
	assert.Zero(t, f.chain.mutations())
}

func TestOrchestrateDeployment_SkipLiquidity(t *testing.T) {
	f := newOrchestrateFixture(0, v1Liquidity())
	f.cfg.SkipLiquidity = true
	f.cfg.VerifySkipped = true

	result, err := f.uc.Run(context.Background(), tokenPlan())
	require.NoError(t, err)
	assert.True(t, result.Deploy.Complete())
	assert.Nil(t, result.Liquidity)
	assert.Equal(t, 2, f.chain.mutations())
}

func TestOrchestrateDeployment_Bootstrap(t *testing.T) {
	f := newOrchestrateFixture(2, v1Liquidity())

	result, err := f.uc.Bootstrap(context.Background(), tokenPlan())
	require.NoError(t, err)
	assert.Empty(t, f.confirmer.prompts)
	assert.Equal(t, domain.PredictCreateAddress(testSigner, 0), result.SideA.Token.Address())
	assert.Equal(t, domain.PredictCreateAddress(testSigner, 1), result.SideB.Token.Address())
	assert.Equal(t, []string{"createExchange", "approve", "addLiquidity"}, f.chain.methods())

	t.Run("not configured", func(t *testing.T) {
		f := newOrchestrateFixture(2, nil)
		_, err := f.uc.Bootstrap(context.Background(), tokenPlan())
		var cfgErr *domain.ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "liquidity", cfgErr.Field)
	})
}

func TestOrchestrateDeployment_Faults(t *testing.T) {
	t.Run("chain id mismatch", func(t *testing.T) {
		f := newOrchestrateFixture(0, nil)
		f.cfg.Project.ChainID = 1

		_, err := f.uc.Run(context.Background(), tokenPlan())
		assert.ErrorIs(t, err, domain.ErrInvalidConfig)
		assert.ErrorContains(t, err, "endpoint reports chain 31337")
		assert.Empty(t, f.confirmer.prompts)
	})

	t.Run("confirmation error", func(t *testing.T) {
		f := newOrchestrateFixture(0, nil)
		f.confirmer.err = errors.New("no tty")

		_, err := f.uc.Run(context.Background(), tokenPlan())
		assert.ErrorContains(t, err, "no tty")
	})

	t.Run("unknown liquidity reference", func(t *testing.T) {
		liq := v1Liquidity()
		liq.TokenB.Address = "Missing"
		f := newOrchestrateFixture(0, liq)

		result, err := f.uc.Run(context.Background(), tokenPlan())
		assert.ErrorIs(t, err, domain.ErrInvalidConfig)
		assert.ErrorIs(t, err, domain.ErrInvalidAddress)
		assert.ErrorContains(t, err, "liquidity.token_b")
		assert.Nil(t, result)
		assert.Empty(t, f.confirmer.prompts)
		assert.Zero(t, f.chain.mutations())
	})

	t.Run("plan fault skips liquidity", func(t *testing.T) {
		f := newOrchestrateFixture(0, v1Liquidity())
		f.chain.deployFn = func(DeployRequest, uint64) (*models.Receipt, error) {
			return nil, errors.New("connection refused")
		}

		result, err := f.uc.Run(context.Background(), tokenPlan())
		assert.ErrorContains(t, err, "connection refused")
		assert.Nil(t, result.Liquidity)
		assert.Empty(t, f.chain.transacts)
	})
}

func TestOrchestrateDeployment_LiquidityCheckedBeforeDeploy(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(liq *config.LiquidityConfig)
		wantErr error
		msg     string
	}{
		{
			name: "native pair",
			mutate: func(liq *config.LiquidityConfig) {
				liq.Venue = "v2"
				liq.Router = routerAddr.Hex()
				liq.TokenB.Native = true
			},
			wantErr: domain.ErrNativePair,
		},
		{
			name:    "v1 without native side",
			mutate:  func(liq *config.LiquidityConfig) { liq.TokenA.Native = false },
			wantErr: domain.ErrUnsupportedVenue,
		},
		{
			name: "amount overflows static decimals",
			mutate: func(liq *config.LiquidityConfig) {
				decimals := uint8(70)
				liq.AmountB = 4_000_000_000
				liq.TokenB.Decimals = &decimals
			},
			msg: "overflows uint256",
		},
		{
			name:    "unknown factory step",
			mutate:  func(liq *config.LiquidityConfig) { liq.Factory = "UniswapV1Factory" },
			wantErr: domain.ErrInvalidAddress,
			msg:     "liquidity.factory",
		},
		{
			name:    "slippage",
			mutate:  func(liq *config.LiquidityConfig) { liq.SlippageBps = 10_001 },
			wantErr: domain.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			liq := v1Liquidity()
			tt.mutate(liq)
			f := newOrchestrateFixture(0, liq)

			_, err := f.uc.Run(context.Background(), tokenPlan())
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.msg != "" {
				assert.ErrorContains(t, err, tt.msg)
			}
			assert.Empty(t, f.confirmer.prompts)
			assert.Zero(t, f.chain.mutations())
		})
	}

	t.Run("skipped liquidity is not checked", func(t *testing.T) {
		liq := v1Liquidity()
		liq.TokenB.Native = true
		f := newOrchestrateFixture(0, liq)
		f.cfg.SkipLiquidity = true

		result, err := f.uc.Run(context.Background(), tokenPlan())
		require.NoError(t, err)
		assert.True(t, result.Deploy.Complete())
	})
}

func TestResolveRef(t *testing.T) {
	deployed := models.ResolvedAddresses{"WETH9": wethAddr}

	addr, err := ResolveRef("WETH9", deployed)
	require.NoError(t, err)
	assert.Equal(t, wethAddr, addr)

	addr, err = ResolveRef(routerAddr.Hex(), deployed)
	require.NoError(t, err)
	assert.Equal(t, routerAddr, addr)

	_, err = ResolveRef("Router", deployed)
	assert.ErrorIs(t, err, domain.ErrInvalidAddress)
}

func TestFormatEther(t *testing.T) {
	assert.Equal(t, "0", FormatEther(nil))
	assert.Equal(t, "1.5", FormatEther(big.NewInt(1_500_000_000_000_000_000)))
}
