package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/trebuchet-org/catapult/internal/domain"
)

// ProjectFile is the default project config name
const ProjectFile = "catapult.toml"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their toml key
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	v.RegisterStructValidation(liquidityRules, LiquidityConfig{})
	return v
}

// liquidityRules checks the pairing rules that span both tokens
func liquidityRules(sl validator.StructLevel) {
	liq := sl.Current().Interface().(LiquidityConfig)
	if liq.TokenA.Native && liq.TokenB.Native {
		sl.ReportError(liq.TokenB.Native, "token_b", "TokenB", "native_pair", "")
	}
	if liq.Venue == "v1" && !liq.TokenA.Native && !liq.TokenB.Native {
		sl.ReportError(liq.Venue, "venue", "Venue", "v1_native", "")
	}
}

// loadEnvFiles loads .env and .env.local from dir without overriding the
// process environment
func loadEnvFiles(dir string) {
	for _, name := range []string{".env", ".env.local"} {
		envFile := filepath.Join(dir, name)
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to load %s: %v\n", envFile, err)
			}
		}
	}
}

// LoadProject decodes the project config at path. ${VAR} references are
// expanded after the .env files next to it are loaded. Relative paths are
// resolved against the config's directory.
func LoadProject(path string) (*ProjectConfig, error) {
	dir := filepath.Dir(path)
	loadEnvFiles(dir)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.ConfigError{Field: "config", Err: err}
	}

	cfg := &ProjectConfig{
		Artifacts: "out",
		Plan:      "swap",
	}
	md, err := toml.Decode(os.ExpandEnv(string(data)), cfg)
	if err != nil {
		return nil, &domain.ConfigError{Field: "config", Err: fmt.Errorf("failed to parse %s: %w", path, err)}
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, &domain.ConfigError{Field: "config", Err: fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))}
	}

	cfg.Artifacts = resolvePath(dir, cfg.Artifacts)
	if cfg.KeyFile != "" {
		cfg.KeyFile = resolvePath(dir, cfg.KeyFile)
	}
	if IsManifestPath(cfg.Plan) {
		cfg.Plan = resolvePath(dir, cfg.Plan)
	}
	return cfg, nil
}

// Validate checks the struct constraints of the project config
func (c *ProjectConfig) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &domain.ConfigError{Err: err}
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "ProjectConfig.")
		errs = append(errs, &domain.ConfigError{Field: field, Err: fmt.Errorf("failed %q check", fe.Tag())})
	}
	return errors.Join(errs...)
}

// IsManifestPath reports whether plan names a YAML manifest rather than a
// built-in plan
func IsManifestPath(plan string) bool {
	ext := strings.ToLower(filepath.Ext(plan))
	return ext == ".yaml" || ext == ".yml"
}

func resolvePath(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
