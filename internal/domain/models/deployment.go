package models

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
)

// StepState is the lifecycle state of a plan step within one run
type StepState string

const (
	StepPending   StepState = "PENDING"
	StepDeploying StepState = "DEPLOYING"
	StepConfirmed StepState = "CONFIRMED"
	StepFaulted   StepState = "FAULTED"
	// StepPresumed marks a step whose slot was already consumed when the run started
	StepPresumed StepState = "PRESUMED"
)

// Resolved reports whether the step has an address other steps may rely on
func (s StepState) Resolved() bool {
	return s == StepConfirmed || s == StepPresumed
}

// StepOutcome records what happened to one step in a run
type StepOutcome struct {
	Step      *DeploymentStep `json:"-"`
	Name      string          `json:"name"`
	Slot      uint64          `json:"slot"`
	Kind      StepKind        `json:"kind"`
	State     StepState       `json:"state"`
	Predicted common.Address  `json:"predicted"`
	Address   common.Address  `json:"address,omitempty"`
	Receipt   *Receipt        `json:"receipt,omitempty"`
	Err       error           `json:"-"`
}

// DeployResult is the outcome of running a plan
type DeployResult struct {
	Plan       string         `json:"plan"`
	ChainID    uint64         `json:"chainId"`
	Signer     common.Address `json:"signer"`
	StartNonce uint64         `json:"startNonce"`
	Steps      []*StepOutcome `json:"steps"`
}

// Faulted returns the faulted step, if any
func (r *DeployResult) Faulted() (*StepOutcome, bool) {
	return lo.Find(r.Steps, func(o *StepOutcome) bool { return o.State == StepFaulted })
}

// Count returns the number of steps in the given state
func (r *DeployResult) Count(state StepState) int {
	return lo.CountBy(r.Steps, func(o *StepOutcome) bool { return o.State == state })
}

// Complete reports whether every step resolved
func (r *DeployResult) Complete() bool {
	return lo.EveryBy(r.Steps, func(o *StepOutcome) bool { return o.State.Resolved() })
}

// Addresses returns the resolved address of every resolved deploy step
func (r *DeployResult) Addresses() ResolvedAddresses {
	out := make(ResolvedAddresses, len(r.Steps))
	for _, o := range r.Steps {
		if o.State.Resolved() && o.Kind == StepDeploy {
			out[o.Name] = o.Address
		}
	}
	return out
}
