package plan

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/domain/models"
)

// Builtins lists the plans compiled into the binary
var Builtins = []string{SwapPlanName}

// Load returns the built-in plan called name, or compiles the YAML manifest
// at name when it has a .yaml or .yml extension. Artifact overrides apply to
// both.
func Load(name string, artifacts map[string]string, now func() time.Time) (*models.Plan, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); {
	case ext == ".yaml" || ext == ".yml":
		p, err := LoadManifest(name, now)
		if err != nil {
			return nil, err
		}
		if err := overrideArtifacts(p, artifacts); err != nil {
			return nil, err
		}
		return p, nil
	case name == SwapPlanName:
		p := Swap(SwapOptions{Now: now, Artifacts: artifacts})
		if err := checkOverrides(p, artifacts); err != nil {
			return nil, err
		}
		return p, nil
	}
	return nil, fmt.Errorf("%w: unknown plan %q (built-in plans: %s)", domain.ErrInvalidPlan, name, strings.Join(Builtins, ", "))
}

func overrideArtifacts(p *models.Plan, artifacts map[string]string) error {
	if err := checkOverrides(p, artifacts); err != nil {
		return err
	}
	for name, artifact := range artifacts {
		step, _ := p.Step(name)
		step.Artifact = artifact
	}
	return nil
}

func checkOverrides(p *models.Plan, artifacts map[string]string) error {
	for name := range artifacts {
		if _, ok := p.Step(name); !ok {
			return fmt.Errorf("%w: artifact override for unknown step %s", domain.ErrInvalidPlan, name)
		}
	}
	return nil
}
