package plan

import (
	"github.com/trebuchet-org/catapult/internal/domain/models"
)

// builder assigns slots in declaration order
type builder struct {
	plan *models.Plan
}

func newBuilder(name string) *builder {
	return &builder{plan: &models.Plan{Name: name}}
}

func (b *builder) nextSlot() uint64 {
	return uint64(len(b.plan.Steps))
}

func (b *builder) deploy(name, artifact, description string, build models.ArgsBuilder) {
	b.plan.Steps = append(b.plan.Steps, &models.DeploymentStep{
		Name:        name,
		Slot:        b.nextSlot(),
		Kind:        models.StepDeploy,
		Artifact:    artifact,
		Build:       build,
		Description: description,
	})
}

func (b *builder) call(name, target, method, description string, build models.ArgsBuilder) {
	b.plan.Steps = append(b.plan.Steps, &models.DeploymentStep{
		Name:        name,
		Slot:        b.nextSlot(),
		Kind:        models.StepCall,
		Target:      target,
		Method:      method,
		Build:       build,
		Description: description,
	})
}

// arg resolves a single argument at build time
type arg func(bc *models.BuildContext) (any, error)

func args(bc *models.BuildContext, in ...arg) ([]any, error) {
	out := make([]any, len(in))
	for i, a := range in {
		v, err := a(bc)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func signer(bc *models.BuildContext) (any, error) {
	return bc.Signer, nil
}

func self(bc *models.BuildContext) (any, error) {
	return bc.Self(), nil
}

func ref(step string) arg {
	return func(bc *models.BuildContext) (any, error) {
		return bc.Address(step)
	}
}

func value(v any) arg {
	return func(*models.BuildContext) (any, error) {
		return v, nil
	}
}

// addresses builds args from the addresses of the named steps
func addresses(steps ...string) models.ArgsBuilder {
	return func(bc *models.BuildContext) ([]any, error) {
		in := make([]arg, len(steps))
		for i, s := range steps {
			in[i] = ref(s)
		}
		return args(bc, in...)
	}
}
