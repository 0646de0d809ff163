package plan

import (
	"bytes"
	"fmt"
	"math/big"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/domain/models"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Manifest is a plan declared in YAML. Steps take slots in list order.
//
//	name: governance
//	steps:
//	  - name: Uni
//	    artifact: Uni
//	    args: ["${signer}", "${Timelock}", "${now+1h}"]
//	  - name: Timelock
//	    artifact: Timelock
//	    args: ["${GovernorAlpha}", 259200]
//	  - name: InitializeFactory
//	    call: UniswapV1Factory
//	    method: initializeFactory
//	    args: ["${UniswapV1Exchange}"]
type Manifest struct {
	Name  string         `yaml:"name" validate:"required"`
	Steps []ManifestStep `yaml:"steps" validate:"required,min=1,dive"`
}

// ManifestStep is one entry of a manifest
type ManifestStep struct {
	Name        string      `yaml:"name" validate:"required"`
	Slot        *uint64     `yaml:"slot,omitempty"`
	Artifact    string      `yaml:"artifact" validate:"required_without=Call"`
	Call        string      `yaml:"call" validate:"required_with=Method"`
	Method      string      `yaml:"method" validate:"required_with=Call"`
	Args        []yaml.Node `yaml:"args"`
	Description string      `yaml:"description"`
}

// LoadManifest reads and compiles a manifest file
func LoadManifest(path string, now func() time.Time) (*models.Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan manifest: %w", err)
	}
	return ParseManifest(data, now)
}

// ParseManifest decodes and compiles a manifest
func ParseManifest(data []byte, now func() time.Time) (*models.Plan, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: failed to parse plan manifest: %v", domain.ErrInvalidPlan, err)
	}
	return m.Compile(now)
}

// Compile turns the manifest into a validated plan
func (m *Manifest) Compile(now func() time.Time) (*models.Plan, error) {
	if err := validate.Struct(m); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidPlan, err)
	}
	if now == nil {
		now = time.Now
	}

	b := newBuilder(m.Name)
	for i, step := range m.Steps {
		if step.Slot != nil && *step.Slot != uint64(i) {
			return nil, fmt.Errorf("%w: step %s declares slot %d but is entry %d", domain.ErrInvalidPlan, step.Name, *step.Slot, i)
		}

		resolvers := make([]arg, len(step.Args))
		for j := range step.Args {
			r, err := parseArg(&step.Args[j], now)
			if err != nil {
				return nil, fmt.Errorf("%w: step %s arg %d: %v", domain.ErrInvalidPlan, step.Name, j, err)
			}
			resolvers[j] = r
		}
		build := func(bc *models.BuildContext) ([]any, error) {
			return args(bc, resolvers...)
		}

		if step.Call != "" {
			b.call(step.Name, step.Call, step.Method, step.Description, build)
			b.plan.Steps[i].Artifact = step.Artifact
		} else {
			b.deploy(step.Name, step.Artifact, step.Description, build)
		}
	}

	if err := b.plan.Validate(); err != nil {
		return nil, err
	}
	return b.plan, nil
}

var (
	placeholderRe = regexp.MustCompile(`^\$\{([A-Za-z_][A-Za-z0-9_]*)\}$`)
	nowRe         = regexp.MustCompile(`^\$\{now(?:\+([0-9]+[a-z]+))?\}$`)
	scaledRe      = regexp.MustCompile(`^([0-9]+)e([0-9]+)$`)
)

// parseArg compiles one manifest argument into a resolver
func parseArg(node *yaml.Node, now func() time.Time) (arg, error) {
	switch node.Kind {
	case yaml.SequenceNode:
		items := make([]arg, len(node.Content))
		for i, child := range node.Content {
			r, err := parseArg(child, now)
			if err != nil {
				return nil, err
			}
			items[i] = r
		}
		return func(bc *models.BuildContext) (any, error) {
			vals, err := args(bc, items...)
			if err != nil {
				return nil, err
			}
			return vals, nil
		}, nil
	case yaml.ScalarNode:
	default:
		return nil, fmt.Errorf("unsupported argument at line %d", node.Line)
	}

	raw := node.Value
	if node.Tag == "!!bool" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, err
		}
		return value(b), nil
	}
	if node.Tag == "!!str" && node.Style != 0 && !strings.HasPrefix(raw, "${") && !scaledRe.MatchString(raw) && !common.IsHexAddress(raw) {
		// quoted strings stay strings
		return value(raw), nil
	}

	switch {
	case raw == "${signer}":
		return signer, nil
	case raw == "${self}":
		return self, nil
	case nowRe.MatchString(raw):
		offset, err := parseOffset(nowRe.FindStringSubmatch(raw)[1])
		if err != nil {
			return nil, err
		}
		return func(*models.BuildContext) (any, error) {
			return big.NewInt(now().Add(offset).Unix()), nil
		}, nil
	case placeholderRe.MatchString(raw):
		return ref(placeholderRe.FindStringSubmatch(raw)[1]), nil
	case common.IsHexAddress(raw):
		return value(common.HexToAddress(raw)), nil
	case scaledRe.MatchString(raw):
		m := scaledRe.FindStringSubmatch(raw)
		n, _ := new(big.Int).SetString(m[1], 10)
		exp, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil || exp > 77 {
			return nil, fmt.Errorf("exponent of %s out of range", raw)
		}
		return value(n.Mul(n, new(big.Int).Exp(big.NewInt(10), big.NewInt(exp), nil))), nil
	}

	if n, ok := new(big.Int).SetString(raw, 0); ok {
		return value(n), nil
	}
	return value(raw), nil
}

// parseOffset accepts Go durations plus a day suffix ("3d")
func parseOffset(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid offset %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}
