package models

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"github.com/trebuchet-org/catapult/internal/domain"
)

// StepKind distinguishes contract creations from plain transactions in a plan
type StepKind string

const (
	// StepDeploy creates a contract; its address is verified against the CREATE prediction
	StepDeploy StepKind = "deploy"
	// StepCall sends a transaction to an earlier step's contract; it still consumes a slot
	StepCall StepKind = "call"
)

// ArgsBuilder produces constructor or call arguments for a step
type ArgsBuilder func(bc *BuildContext) ([]any, error)

// DeploymentStep is one entry of a plan. Slot is the signer nonce that the
// step's transaction consumes.
type DeploymentStep struct {
	Name        string
	Slot        uint64
	Kind        StepKind
	Artifact    string // artifact key; for call steps defaults to the target's artifact
	Target      string // call steps: name of the step whose contract is called
	Method      string // call steps: ABI method name
	Build       ArgsBuilder
	Description string
}

// Args evaluates the step's builder. A nil builder yields no arguments.
func (s *DeploymentStep) Args(bc *BuildContext) ([]any, error) {
	if s.Build == nil {
		return nil, nil
	}
	args, err := s.Build(bc)
	if err != nil {
		return nil, fmt.Errorf("build args for %s: %w", s.Name, err)
	}
	return args, nil
}

// Plan is a fixed, slot-ordered list of steps
type Plan struct {
	Name  string
	Steps []*DeploymentStep
}

// Validate checks that slots run 0..N-1 in order and that every step is complete.
func (p *Plan) Validate() error {
	if len(p.Steps) == 0 {
		return fmt.Errorf("%w: plan %q has no steps", domain.ErrInvalidPlan, p.Name)
	}

	seen := make(map[string]uint64, len(p.Steps))
	for i, step := range p.Steps {
		if step == nil {
			return fmt.Errorf("%w: step %d is nil", domain.ErrInvalidPlan, i)
		}
		if step.Name == "" {
			return fmt.Errorf("%w: step %d has no name", domain.ErrInvalidPlan, i)
		}
		if step.Slot != uint64(i) {
			return fmt.Errorf("%w: step %s has slot %d at position %d", domain.ErrInvalidPlan, step.Name, step.Slot, i)
		}
		if _, dup := seen[step.Name]; dup {
			return fmt.Errorf("%w: duplicate step name %s", domain.ErrInvalidPlan, step.Name)
		}
		seen[step.Name] = step.Slot

		switch step.Kind {
		case StepDeploy:
			if step.Artifact == "" {
				return fmt.Errorf("%w: deploy step %s has no artifact", domain.ErrInvalidPlan, step.Name)
			}
		case StepCall:
			if step.Method == "" {
				return fmt.Errorf("%w: call step %s has no method", domain.ErrInvalidPlan, step.Name)
			}
			targetSlot, ok := seen[step.Target]
			if !ok || targetSlot >= step.Slot {
				return fmt.Errorf("%w: call step %s targets %q which is not an earlier step", domain.ErrInvalidPlan, step.Name, step.Target)
			}
			if target, _ := p.Step(step.Target); target.Kind != StepDeploy {
				return fmt.Errorf("%w: call step %s targets non-contract step %s", domain.ErrInvalidPlan, step.Name, step.Target)
			}
		default:
			return fmt.Errorf("%w: step %s has unknown kind %q", domain.ErrInvalidPlan, step.Name, step.Kind)
		}
	}
	return nil
}

// Step looks up a step by name
func (p *Plan) Step(name string) (*DeploymentStep, bool) {
	return lo.Find(p.Steps, func(s *DeploymentStep) bool { return s.Name == name })
}

// ArtifactKey returns the artifact holding the ABI (and for deploys, the bytecode) of a step
func (p *Plan) ArtifactKey(step *DeploymentStep) string {
	if step.Artifact != "" || step.Kind == StepDeploy {
		return step.Artifact
	}
	if target, ok := p.Step(step.Target); ok {
		return target.Artifact
	}
	return ""
}

// ArtifactKeys returns every artifact key the plan needs, in first-use order
func (p *Plan) ArtifactKeys() []string {
	keys := lo.FilterMap(p.Steps, func(s *DeploymentStep, _ int) (string, bool) {
		key := p.ArtifactKey(s)
		return key, key != ""
	})
	return lo.Uniq(keys)
}

// ResolvedAddresses maps step names to the address each step resolved to in a run
type ResolvedAddresses map[string]common.Address

// BuildContext gives argument builders access to addresses of other steps.
// Earlier steps resolve to their confirmed or presumed address; later steps
// resolve to their CREATE prediction, since the chain assigns it deterministically.
type BuildContext struct {
	Signer   common.Address
	Step     *DeploymentStep
	plan     *Plan
	resolved ResolvedAddresses
}

// NewBuildContext creates a build context for a step of plan
func NewBuildContext(plan *Plan, step *DeploymentStep, signer common.Address, resolved ResolvedAddresses) *BuildContext {
	return &BuildContext{
		Signer:   signer,
		Step:     step,
		plan:     plan,
		resolved: resolved,
	}
}

// Address returns the address of the named step
func (bc *BuildContext) Address(name string) (common.Address, error) {
	if addr, ok := bc.resolved[name]; ok {
		return addr, nil
	}
	step, ok := bc.plan.Step(name)
	if !ok {
		return common.Address{}, fmt.Errorf("%w: %s is not part of plan %s", domain.ErrUnresolvedStep, name, bc.plan.Name)
	}
	if bc.Step != nil && step.Slot <= bc.Step.Slot {
		// earlier steps must have been resolved by the run
		return common.Address{}, fmt.Errorf("%w: %s has not been resolved", domain.ErrUnresolvedStep, name)
	}
	if step.Kind != StepDeploy {
		return common.Address{}, fmt.Errorf("%w: %s does not create a contract", domain.ErrUnresolvedStep, name)
	}
	return domain.PredictCreateAddress(bc.Signer, step.Slot), nil
}

// Self returns the predicted address of the step being built
func (bc *BuildContext) Self() common.Address {
	return domain.PredictCreateAddress(bc.Signer, bc.Step.Slot)
}
