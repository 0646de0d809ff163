package usecase

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/domain/models"
)

// InspectPlan reports where a signer stands in a plan without sending anything
type InspectPlan struct {
	chain ChainClient
}

// NewInspectPlan creates a new inspect plan use case
func NewInspectPlan(chain ChainClient) *InspectPlan {
	return &InspectPlan{chain: chain}
}

// InspectOptions filters and enriches the report
type InspectOptions struct {
	// Filter fuzzy-matches step names; empty keeps every step
	Filter string
	// CheckCode queries code at every predicted address
	CheckCode bool
}

// SignerReport is the startup summary of the signer account
type SignerReport struct {
	ChainID uint64
	Signer  common.Address
	Balance *big.Int
	Nonce   uint64
}

// PlanStatus is the projected state of every step for the current nonce
type PlanStatus struct {
	Plan   *models.Plan
	Report *SignerReport
	Steps  []*StepStatus
}

// StepStatus is one row of a plan report
type StepStatus struct {
	Step      *models.DeploymentStep
	Predicted common.Address
	State     models.StepState
	HasCode   *bool
}

// Report reads chain id, balance and nonce of signer
func (uc *InspectPlan) Report(ctx context.Context, signer common.Address) (*SignerReport, error) {
	chainID, err := uc.chain.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	balance, err := uc.chain.Balance(ctx, signer)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance of %s: %w", signer.Hex(), err)
	}
	nonce, err := uc.chain.TransactionCount(ctx, signer)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction count for %s: %w", signer.Hex(), err)
	}
	return &SignerReport{
		ChainID: chainID,
		Signer:  signer,
		Balance: balance,
		Nonce:   nonce,
	}, nil
}

// Run projects plan onto the signer's current nonce
func (uc *InspectPlan) Run(ctx context.Context, plan *models.Plan, signer common.Address, opts InspectOptions) (*PlanStatus, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	report, err := uc.Report(ctx, signer)
	if err != nil {
		return nil, err
	}

	steps := filterSteps(plan.Steps, opts.Filter)
	status := &PlanStatus{
		Plan:   plan,
		Report: report,
		Steps:  make([]*StepStatus, 0, len(steps)),
	}
	for _, step := range steps {
		row := &StepStatus{
			Step:      step,
			Predicted: domain.PredictCreateAddress(signer, step.Slot),
			State:     models.StepPending,
		}
		if step.Slot < report.Nonce {
			row.State = models.StepPresumed
		}
		if opts.CheckCode && step.Kind == models.StepDeploy {
			code, err := uc.chain.CodeAt(ctx, row.Predicted)
			if err != nil {
				return nil, fmt.Errorf("failed to get code at %s: %w", row.Predicted.Hex(), err)
			}
			row.HasCode = lo.ToPtr(len(code) > 0)
		}
		status.Steps = append(status.Steps, row)
	}
	return status, nil
}

// filterSteps keeps steps whose name fuzzy-matches filter, in slot order
func filterSteps(steps []*models.DeploymentStep, filter string) []*models.DeploymentStep {
	if filter == "" {
		return steps
	}
	names := lo.Map(steps, func(s *models.DeploymentStep, _ int) string { return s.Name })
	matched := lo.SliceToMap(fuzzy.Find(filter, names), func(m fuzzy.Match) (int, bool) { return m.Index, true })
	return lo.Filter(steps, func(_ *models.DeploymentStep, i int) bool { return matched[i] })
}
