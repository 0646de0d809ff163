package config

import (
	"time"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot string
	ConfigPath  string

	// Execution settings
	Debug          bool
	NonInteractive bool
	Yes            bool // Skip the confirmation prompt
	Timeout        time.Duration

	// Command-specific settings (only populated for relevant commands)
	VerifySkipped bool
	SkipLiquidity bool

	// Overrides applied on top of catapult.toml
	RPCURL  string
	KeyFile string

	// Resolved configuration
	Project *ProjectConfig
}

// ProjectConfig is the decoded catapult.toml
type ProjectConfig struct {
	RPCURL        string            `toml:"rpc_url" validate:"required,url"`
	ChainID       uint64            `toml:"chain_id"`
	KeyFile       string            `toml:"key_file" validate:"required_without=KeyEnv"`
	KeyEnv        string            `toml:"key_env"`
	Artifacts     string            `toml:"artifacts" validate:"required"`
	Plan          string            `toml:"plan" validate:"required"`
	PlanArtifacts map[string]string `toml:"plan_artifacts"`
	Gas           GasConfig         `toml:"gas"`
	Liquidity     *LiquidityConfig  `toml:"liquidity"`
}

// GasConfig fixes gas parameters; zero values mean estimate and suggest
type GasConfig struct {
	Limit     uint64 `toml:"limit"`
	PriceGwei uint64 `toml:"price_gwei"`
}

// LiquidityConfig describes the pair bootstrapped after the plan completes.
// Factory, Router, Recipient and token addresses accept either a hex address
// or the name of a deploy step in the plan.
type LiquidityConfig struct {
	Venue       string        `toml:"venue" validate:"required,oneof=v1 v2"`
	Factory     string        `toml:"factory" validate:"required"`
	Router      string        `toml:"router" validate:"required_if=Venue v2"`
	Recipient   string        `toml:"recipient"`
	AmountA     uint32        `toml:"amount_a" validate:"required"`
	AmountB     uint32        `toml:"amount_b" validate:"required"`
	Deadline    time.Duration `toml:"deadline"`
	SlippageBps uint16        `toml:"slippage_bps" validate:"lte=10000"`
	TokenA      TokenConfig   `toml:"token_a"`
	TokenB      TokenConfig   `toml:"token_b"`
}

// TokenConfig identifies one side of the pair. Metadata left unset is read
// from the token contract.
type TokenConfig struct {
	Native       bool   `toml:"native"`
	Address      string `toml:"address" validate:"required"`
	Name         string `toml:"name"`
	Symbol       string `toml:"symbol"`
	Decimals     *uint8 `toml:"decimals"`
	BridgedFrom  string `toml:"bridged_from"`
	BridgedToken string `toml:"bridged_token"`
}
