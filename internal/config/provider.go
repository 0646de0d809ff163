package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*RuntimeConfig, error) {
	configPath := v.GetString("config")
	projectRoot := v.GetString("project_root")
	if configPath == "" {
		if projectRoot == "" {
			var err error
			projectRoot, err = FindProjectRoot()
			if err != nil {
				return nil, fmt.Errorf("failed to find project root: %w", err)
			}
		}
		configPath = filepath.Join(projectRoot, ProjectFile)
	} else if projectRoot == "" {
		projectRoot = filepath.Dir(configPath)
	}

	cfg := &RuntimeConfig{
		ProjectRoot:    projectRoot,
		ConfigPath:     configPath,
		Debug:          v.GetBool("debug"),
		NonInteractive: v.GetBool("non_interactive"),
		Yes:            v.GetBool("yes"),
		Timeout:        v.GetDuration("timeout"),
		VerifySkipped:  v.GetBool("verify_skipped"),
		SkipLiquidity:  v.GetBool("skip_liquidity"),
		RPCURL:         v.GetString("rpc_url"),
		KeyFile:        v.GetString("key_file"),
	}

	project, err := LoadProject(configPath)
	if err != nil {
		return nil, err
	}
	if cfg.RPCURL != "" {
		project.RPCURL = cfg.RPCURL
	}
	if cfg.KeyFile != "" {
		project.KeyFile = cfg.KeyFile
	}
	if err := project.Validate(); err != nil {
		return nil, err
	}
	cfg.Project = project

	return cfg, nil
}

// FindProjectRoot walks up from current directory to find catapult.toml
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, ProjectFile)); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a catapult project (%s not found)", ProjectFile)
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance
func SetupViper(cmd *cobra.Command) *viper.Viper {
	v := viper.New()

	// Set up environment variables
	v.SetEnvPrefix("CATAPULT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	// Set defaults
	v.SetDefault("timeout", "10m")
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key := strings.ReplaceAll(f.Name, "-", "_")
		if err := v.BindPFlag(key, f); err != nil {
			panic(err)
		}
	})

	return v
}
