package usecase

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/domain/models"
)

// DeployPlan runs a deployment plan against the chain. The signer's
// transaction count is the only resume state: slots below it are presumed
// deployed, the rest are executed in order and verified against the CREATE
// prediction for their slot.
type DeployPlan struct {
	chain     ChainClient
	artifacts ArtifactRepository
	progress  ProgressSink
}

// NewDeployPlan creates a new deploy plan use case
func NewDeployPlan(
	chain ChainClient,
	artifacts ArtifactRepository,
	progress ProgressSink,
) *DeployPlan {
	return &DeployPlan{
		chain:     chain,
		artifacts: artifacts,
		progress:  progress,
	}
}

// DeployOptions tunes a run
type DeployOptions struct {
	// VerifySkipped checks that code exists at the predicted address of every
	// presumed deploy step instead of trusting the nonce alone.
	VerifySkipped bool
}

// Run executes plan for signer. The returned result is non-nil whenever the
// run got as far as reading the nonce, including when a step faulted.
func (uc *DeployPlan) Run(ctx context.Context, plan *models.Plan, signer common.Address, opts DeployOptions) (*models.DeployResult, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	artifacts, err := uc.loadArtifacts(ctx, plan)
	if err != nil {
		return nil, err
	}

	chainID, err := uc.chain.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}

	// Read once; a concurrent sender on this key breaks the slot cursor.
	nonce, err := uc.chain.TransactionCount(ctx, signer)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction count for %s: %w", signer.Hex(), err)
	}

	result := &models.DeployResult{
		Plan:       plan.Name,
		ChainID:    chainID,
		Signer:     signer,
		StartNonce: nonce,
		Steps:      make([]*models.StepOutcome, len(plan.Steps)),
	}
	for i, step := range plan.Steps {
		result.Steps[i] = &models.StepOutcome{
			Step:      step,
			Name:      step.Name,
			Slot:      step.Slot,
			Kind:      step.Kind,
			State:     models.StepPending,
			Predicted: domain.PredictCreateAddress(signer, step.Slot),
		}
	}

	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:   "plan_started",
		Total:   len(plan.Steps),
		Message: fmt.Sprintf("Running plan %s from nonce %d", plan.Name, nonce),
		Metadata: map[string]interface{}{
			"plan":    plan.Name,
			"chainId": chainID,
			"signer":  signer,
			"nonce":   nonce,
		},
	})

	resolved := make(models.ResolvedAddresses, len(plan.Steps))
	cursor := nonce
	for i, outcome := range result.Steps {
		step := outcome.Step

		if step.Slot < nonce {
			if err := uc.presume(ctx, outcome, opts); err != nil {
				return result, uc.fault(ctx, outcome, i, len(plan.Steps), err)
			}
			if step.Kind == models.StepDeploy {
				resolved[step.Name] = outcome.Address
			}
			uc.progress.OnProgress(ctx, ProgressEvent{
				Stage:    "step_presumed",
				Current:  i + 1,
				Total:    len(plan.Steps),
				Message:  step.Name,
				Metadata: outcome,
			})
			continue
		}

		if step.Slot != cursor {
			err := fmt.Errorf("%w: step %s needs slot %d, signer is at %d", domain.ErrSlotGap, step.Name, step.Slot, cursor)
			return result, uc.fault(ctx, outcome, i, len(plan.Steps), err)
		}

		outcome.State = models.StepDeploying
		uc.progress.OnProgress(ctx, ProgressEvent{
			Stage:    "step_deploying",
			Current:  i + 1,
			Total:    len(plan.Steps),
			Message:  step.Name,
			Spinner:  true,
			Metadata: outcome,
		})

		bc := models.NewBuildContext(plan, step, signer, resolved)
		if err := uc.execute(ctx, plan, outcome, bc, artifacts); err != nil {
			return result, uc.fault(ctx, outcome, i, len(plan.Steps), err)
		}

		outcome.State = models.StepConfirmed
		if step.Kind == models.StepDeploy {
			resolved[step.Name] = outcome.Address
		}
		cursor++

		uc.progress.OnProgress(ctx, ProgressEvent{
			Stage:    "step_confirmed",
			Current:  i + 1,
			Total:    len(plan.Steps),
			Message:  step.Name,
			Metadata: outcome,
		})
	}

	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:    "plan_completed",
		Current:  len(plan.Steps),
		Total:    len(plan.Steps),
		Metadata: result,
	})

	return result, nil
}

func (uc *DeployPlan) loadArtifacts(ctx context.Context, plan *models.Plan) (map[string]*models.Artifact, error) {
	artifacts := make(map[string]*models.Artifact)
	for _, key := range plan.ArtifactKeys() {
		artifact, err := uc.artifacts.GetArtifact(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to load artifact %s: %w", key, err)
		}
		artifacts[key] = artifact
	}

	for _, step := range plan.Steps {
		if step.Kind != models.StepDeploy {
			continue
		}
		if artifact := artifacts[step.Artifact]; !artifact.HasBytecode() {
			return nil, fmt.Errorf("%w: artifact %s for step %s has no creation bytecode", domain.ErrInvalidPlan, step.Artifact, step.Name)
		}
	}
	return artifacts, nil
}

// presume resolves a step whose slot the signer already consumed
func (uc *DeployPlan) presume(ctx context.Context, outcome *models.StepOutcome, opts DeployOptions) error {
	outcome.State = models.StepPresumed
	if outcome.Kind != models.StepDeploy {
		return nil
	}
	outcome.Address = outcome.Predicted

	if !opts.VerifySkipped {
		return nil
	}
	code, err := uc.chain.CodeAt(ctx, outcome.Predicted)
	if err != nil {
		return fmt.Errorf("failed to get code at %s: %w", outcome.Predicted.Hex(), err)
	}
	if len(code) == 0 {
		return &domain.SkippedStepMissingError{
			Step:    outcome.Name,
			Slot:    outcome.Slot,
			Address: outcome.Predicted,
		}
	}
	return nil
}

func (uc *DeployPlan) execute(ctx context.Context, plan *models.Plan, outcome *models.StepOutcome, bc *models.BuildContext, artifacts map[string]*models.Artifact) error {
	step := outcome.Step
	args, err := step.Args(bc)
	if err != nil {
		return err
	}

	slot := step.Slot
	var receipt *models.Receipt
	var target common.Address

	switch step.Kind {
	case models.StepDeploy:
		receipt, err = uc.chain.Deploy(ctx, DeployRequest{
			Artifact: artifacts[step.Artifact],
			Args:     args,
			Nonce:    &slot,
		})
	case models.StepCall:
		target, err = bc.Address(step.Target)
		if err != nil {
			return err
		}
		receipt, err = uc.chain.Transact(ctx, TransactRequest{
			To:     target,
			ABI:    &artifacts[plan.ArtifactKey(step)].ABI,
			Method: step.Method,
			Args:   args,
			Nonce:  &slot,
		})
	}
	if err != nil {
		return fmt.Errorf("failed to submit %s: %w", step.Name, err)
	}
	outcome.Receipt = receipt

	if !receipt.Succeeded() {
		return &domain.TransactionRejectedError{
			Operation: fmt.Sprintf("%s %s", step.Kind, step.Name),
			TxHash:    receipt.TxHash,
			Target:    target,
			Details: map[string]string{
				"slot":   strconv.FormatUint(step.Slot, 10),
				"status": strconv.FormatUint(receipt.Status, 10),
			},
		}
	}

	if step.Kind == models.StepDeploy {
		if receipt.ContractAddress != outcome.Predicted {
			return &domain.PredictionMismatchError{
				Step:      step.Name,
				Slot:      step.Slot,
				Predicted: outcome.Predicted,
				Actual:    receipt.ContractAddress,
			}
		}
		outcome.Address = receipt.ContractAddress
	}
	return nil
}

func (uc *DeployPlan) fault(ctx context.Context, outcome *models.StepOutcome, i, total int, err error) error {
	outcome.State = models.StepFaulted
	outcome.Err = err
	uc.progress.OnProgress(ctx, ProgressEvent{
		Stage:    "step_faulted",
		Current:  i + 1,
		Total:    total,
		Message:  err.Error(),
		Metadata: outcome,
	})
	return fmt.Errorf("step %s (slot %d) faulted: %w", outcome.Name, outcome.Slot, err)
}
