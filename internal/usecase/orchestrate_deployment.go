package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/trebuchet-org/catapult/internal/config"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/domain/models"
)

// OrchestrateDeployment runs a full deployment: startup report, operator
// confirmation, the resumable plan and the optional liquidity bootstrap.
type OrchestrateDeployment struct {
	config    *config.RuntimeConfig
	signer    Signer
	inspect   *InspectPlan
	deploy    *DeployPlan
	tokens    *ResolveTokens
	bootstrap *BootstrapLiquidity
	confirmer Confirmer
	progress  ProgressSink
}

// NewOrchestrateDeployment creates a new orchestrate deployment use case
func NewOrchestrateDeployment(
	cfg *config.RuntimeConfig,
	signer Signer,
	inspect *InspectPlan,
	deploy *DeployPlan,
	tokens *ResolveTokens,
	bootstrap *BootstrapLiquidity,
	confirmer Confirmer,
	progress ProgressSink,
) *OrchestrateDeployment {
	return &OrchestrateDeployment{
		config:    cfg,
		signer:    signer,
		inspect:   inspect,
		deploy:    deploy,
		tokens:    tokens,
		bootstrap: bootstrap,
		confirmer: confirmer,
		progress:  progress,
	}
}

// OrchestrationResult collects what each phase produced
type OrchestrationResult struct {
	Report    *SignerReport
	Deploy    *models.DeployResult
	Liquidity *models.BootstrapResult
	Cancelled bool
}

// Run executes plan and, unless disabled, the configured liquidity bootstrap
func (uc *OrchestrateDeployment) Run(ctx context.Context, plan *models.Plan) (*OrchestrationResult, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	signer := uc.signer.Address()
	result := &OrchestrationResult{}

	liq := uc.config.Project.Liquidity
	if uc.config.SkipLiquidity {
		liq = nil
	}
	if liq != nil {
		if err := uc.checkLiquidity(liq, predictAddresses(plan, signer), signer); err != nil {
			return nil, err
		}
	}

	report, err := uc.inspect.Report(ctx, signer)
	if err != nil {
		return nil, err
	}
	result.Report = report
	if want := uc.config.Project.ChainID; want != 0 && want != report.ChainID {
		return result, &domain.ConfigError{
			Field: "chain_id",
			Err:   fmt.Errorf("endpoint reports chain %d, config expects %d", report.ChainID, want),
		}
	}
	summary := fmt.Sprintf("chain %d | signer %s | balance %s | nonce %d",
		report.ChainID, report.Signer.Hex(), FormatEther(report.Balance), report.Nonce)
	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:    "signer_report",
		Message:  summary,
		Metadata: report,
	})

	total := uint64(len(plan.Steps))
	remaining := total - min(report.Nonce, total)
	if remaining > 0 {
		prompt := fmt.Sprintf("Deploy %d of %d steps of plan %s to chain %d", remaining, total, plan.Name, report.ChainID)
		ok, err := uc.confirmer.Confirm(ctx, prompt)
		if err != nil {
			return result, err
		}
		if !ok {
			result.Cancelled = true
			return result, nil
		}
	}

	deployed, err := uc.deploy.Run(ctx, plan, signer, DeployOptions{VerifySkipped: uc.config.VerifySkipped})
	result.Deploy = deployed
	if err != nil {
		return result, err
	}

	if liq == nil {
		return result, nil
	}

	params, err := uc.bootstrapParams(ctx, liq, deployed.Addresses(), signer)
	if err != nil {
		return result, err
	}
	result.Liquidity, err = uc.bootstrap.Run(ctx, params)
	return result, err
}

// Bootstrap runs only the liquidity phase. Step references resolve to the
// predicted addresses of plan, which must already be deployed.
func (uc *OrchestrateDeployment) Bootstrap(ctx context.Context, plan *models.Plan) (*models.BootstrapResult, error) {
	liq := uc.config.Project.Liquidity
	if liq == nil {
		return nil, &domain.ConfigError{Field: "liquidity", Err: errors.New("no liquidity section configured")}
	}
	signer := uc.signer.Address()

	params, err := uc.bootstrapParams(ctx, liq, predictAddresses(plan, signer), signer)
	if err != nil {
		return nil, err
	}
	return uc.bootstrap.Run(ctx, params)
}

// checkLiquidity resolves the liquidity section against the plan's predicted
// addresses and runs the offline pairing and amount checks. It makes no RPC
// calls.
func (uc *OrchestrateDeployment) checkLiquidity(liq *config.LiquidityConfig, predicted models.ResolvedAddresses, signer common.Address) error {
	params, err := uc.venueParams(liq, predicted, signer)
	if err != nil {
		return err
	}
	for _, side := range []struct {
		field string
		tc    config.TokenConfig
		token *models.Token
	}{
		{"liquidity.token_a", liq.TokenA, &params.TokenA},
		{"liquidity.token_b", liq.TokenB, &params.TokenB},
	} {
		addr, err := ResolveRef(side.tc.Address, predicted)
		if err != nil {
			return &domain.ConfigError{Field: side.field, Err: err}
		}
		if *side.token, err = uc.tokens.Static(tokenSpec(side.tc, addr)); err != nil {
			return &domain.ConfigError{Field: side.field, Err: err}
		}
	}
	if err := uc.bootstrap.Check(params); err != nil {
		return fmt.Errorf("liquidity section rejected before deployment: %w", err)
	}
	return nil
}

func (uc *OrchestrateDeployment) bootstrapParams(ctx context.Context, liq *config.LiquidityConfig, deployed models.ResolvedAddresses, signer common.Address) (BootstrapParams, error) {
	params, err := uc.venueParams(liq, deployed, signer)
	if err != nil {
		return params, err
	}
	if params.TokenA, err = uc.resolveToken(ctx, "liquidity.token_a", liq.TokenA, deployed); err != nil {
		return params, err
	}
	if params.TokenB, err = uc.resolveToken(ctx, "liquidity.token_b", liq.TokenB, deployed); err != nil {
		return params, err
	}
	return params, nil
}

func (uc *OrchestrateDeployment) venueParams(liq *config.LiquidityConfig, deployed models.ResolvedAddresses, signer common.Address) (BootstrapParams, error) {
	params := BootstrapParams{
		Venue:          models.Venue{Kind: models.VenueKind(liq.Venue)},
		AmountA:        liq.AmountA,
		AmountB:        liq.AmountB,
		Recipient:      signer,
		DeadlineWindow: liq.Deadline,
		SlippageBps:    liq.SlippageBps,
	}

	var err error
	if params.Venue.Factory, err = ResolveRef(liq.Factory, deployed); err != nil {
		return params, &domain.ConfigError{Field: "liquidity.factory", Err: err}
	}
	if liq.Router != "" {
		if params.Venue.Router, err = ResolveRef(liq.Router, deployed); err != nil {
			return params, &domain.ConfigError{Field: "liquidity.router", Err: err}
		}
	}
	if liq.Recipient != "" {
		if params.Recipient, err = ResolveRef(liq.Recipient, deployed); err != nil {
			return params, &domain.ConfigError{Field: "liquidity.recipient", Err: err}
		}
	}
	return params, nil
}

func (uc *OrchestrateDeployment) resolveToken(ctx context.Context, field string, tc config.TokenConfig, deployed models.ResolvedAddresses) (models.Token, error) {
	addr, err := ResolveRef(tc.Address, deployed)
	if err != nil {
		return nil, &domain.ConfigError{Field: field, Err: err}
	}
	return uc.tokens.Resolve(ctx, tokenSpec(tc, addr))
}

func tokenSpec(tc config.TokenConfig, addr common.Address) TokenSpec {
	return TokenSpec{
		Native:       tc.Native,
		Address:      addr,
		Name:         tc.Name,
		Symbol:       tc.Symbol,
		Decimals:     tc.Decimals,
		BridgedFrom:  tc.BridgedFrom,
		BridgedToken: tc.BridgedToken,
	}
}

// predictAddresses maps each deploy step of plan to its CREATE address
func predictAddresses(plan *models.Plan, signer common.Address) models.ResolvedAddresses {
	predicted := make(models.ResolvedAddresses, len(plan.Steps))
	for _, step := range plan.Steps {
		if step.Kind == models.StepDeploy {
			predicted[step.Name] = domain.PredictCreateAddress(signer, step.Slot)
		}
	}
	return predicted
}

// ResolveRef turns a hex address or the name of a deployed step into an address
func ResolveRef(ref string, deployed models.ResolvedAddresses) (common.Address, error) {
	if common.IsHexAddress(ref) {
		return common.HexToAddress(ref), nil
	}
	if addr, ok := deployed[ref]; ok {
		return addr, nil
	}
	return common.Address{}, fmt.Errorf("%w: %q is neither an address nor a deployed step", domain.ErrInvalidAddress, ref)
}

// FormatEther renders a wei amount in ether
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -18).String()
}
