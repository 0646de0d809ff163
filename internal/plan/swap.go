package plan

import (
	"math/big"
	"time"

	"github.com/trebuchet-org/catapult/internal/domain/models"
)

// SwapPlanName is the name of the built-in exchange plan
const SwapPlanName = "swap"

// Step names of the swap plan
const (
	StepUni                = "Uni"
	StepTimelock           = "Timelock"
	StepGovernorAlpha      = "GovernorAlpha"
	StepWETH9              = "WETH9"
	StepUniswapV1Factory   = "UniswapV1Factory"
	StepUniswapV1Exchange  = "UniswapV1Exchange"
	StepInitializeFactory  = "InitializeFactory"
	StepUniswapV2Factory   = "UniswapV2Factory"
	StepUniswapV2Router01  = "UniswapV2Router01"
	StepUniswapV2Router02  = "UniswapV2Router02"
	StepRouterEventEmitter = "RouterEventEmitter"
	StepUniswapV2Migrator  = "UniswapV2Migrator"
	StepMulticall          = "Multicall"
	StepWETHPartner        = "WETHPartner"
	StepTokenA             = "TokenA"
	StepTokenB             = "TokenB"
	StepExampleFlashSwap   = "ExampleFlashSwap"
)

// ERC20Artifact is the artifact shared by the plan's test tokens
const ERC20Artifact = "ERC20"

const (
	// TimelockDelay is the governance timelock delay
	TimelockDelay = 3 * 24 * time.Hour
	// MintingDelay is how long after deployment Uni minting opens
	MintingDelay = time.Hour
)

// SwapOptions parameterizes the swap plan
type SwapOptions struct {
	// Now is read when Uni's constructor args are built
	Now func() time.Time
	// Artifacts overrides artifact keys by step name
	Artifacts map[string]string
}

// Swap returns the governance, V1 and V2 exchange plan. Uni references
// Timelock and Timelock references GovernorAlpha before either exists; both
// resolve through prediction.
func Swap(opts SwapOptions) *models.Plan {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	artifact := func(step, fallback string) string {
		if key, ok := opts.Artifacts[step]; ok && key != "" {
			return key
		}
		return fallback
	}

	b := newBuilder(SwapPlanName)
	b.deploy(StepUni, artifact(StepUni, "Uni"), "governance token; Timelock is the minter",
		func(bc *models.BuildContext) ([]any, error) {
			mintingAllowedAfter := big.NewInt(now().Add(MintingDelay).Unix())
			return args(bc, signer, ref(StepTimelock), value(mintingAllowedAfter))
		})
	b.deploy(StepTimelock, artifact(StepTimelock, "Timelock"), "admin is GovernorAlpha",
		func(bc *models.BuildContext) ([]any, error) {
			return args(bc, ref(StepGovernorAlpha), value(big.NewInt(int64(TimelockDelay/time.Second))))
		})
	b.deploy(StepGovernorAlpha, artifact(StepGovernorAlpha, "GovernorAlpha"), "",
		addresses(StepTimelock, StepUni))
	b.deploy(StepWETH9, artifact(StepWETH9, "WETH9"), "wrapped native currency", nil)
	b.deploy(StepUniswapV1Factory, artifact(StepUniswapV1Factory, "UniswapV1Factory"), "", nil)
	b.deploy(StepUniswapV1Exchange, artifact(StepUniswapV1Exchange, "UniswapV1Exchange"), "exchange template", nil)
	b.call(StepInitializeFactory, StepUniswapV1Factory, "initializeFactory", "registers the exchange template",
		addresses(StepUniswapV1Exchange))
	b.deploy(StepUniswapV2Factory, artifact(StepUniswapV2Factory, "UniswapV2Factory"), "signer is feeToSetter",
		func(bc *models.BuildContext) ([]any, error) { return args(bc, signer) })
	b.deploy(StepUniswapV2Router01, artifact(StepUniswapV2Router01, "UniswapV2Router01"), "",
		addresses(StepUniswapV2Factory, StepWETH9))
	b.deploy(StepUniswapV2Router02, artifact(StepUniswapV2Router02, "UniswapV2Router02"), "",
		addresses(StepUniswapV2Factory, StepWETH9))
	b.deploy(StepRouterEventEmitter, artifact(StepRouterEventEmitter, "RouterEventEmitter"), "", nil)
	b.deploy(StepUniswapV2Migrator, artifact(StepUniswapV2Migrator, "UniswapV2Migrator"), "",
		addresses(StepUniswapV1Factory, StepUniswapV2Router01))
	b.deploy(StepMulticall, artifact(StepMulticall, "Multicall"), "", nil)
	b.deploy(StepWETHPartner, artifact(StepWETHPartner, ERC20Artifact), "test token paired with WETH",
		supply(500_000))
	b.deploy(StepTokenA, artifact(StepTokenA, ERC20Artifact), "test token", supply(500_000))
	b.deploy(StepTokenB, artifact(StepTokenB, ERC20Artifact), "test token", supply(300_000))
	b.deploy(StepExampleFlashSwap, artifact(StepExampleFlashSwap, "ExampleFlashSwap"), "",
		addresses(StepUniswapV2Factory, StepUniswapV1Factory, StepUniswapV2Router02))
	return b.plan
}

// supply returns an ERC-20 constructor taking units * 10^18
func supply(units int64) models.ArgsBuilder {
	return func(*models.BuildContext) ([]any, error) {
		total := new(big.Int).Mul(big.NewInt(units), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
		return []any{total}, nil
	}
}
