package adapters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/wire"
	"github.com/shopspring/decimal"
	"github.com/trebuchet-org/catapult/internal/adapters/artifacts"
	"github.com/trebuchet-org/catapult/internal/adapters/blockchain"
	"github.com/trebuchet-org/catapult/internal/adapters/interactive"
	"github.com/trebuchet-org/catapult/internal/adapters/signer"
	"github.com/trebuchet-org/catapult/internal/config"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// dialTimeout bounds the initial chain id handshake
const dialTimeout = 30 * time.Second

// ProvideSigner loads the signing key from the key file or the named environment variable
func ProvideSigner(cfg *config.RuntimeConfig) (*signer.LocalSigner, error) {
	project := cfg.Project
	if project.KeyFile != "" {
		return signer.NewLocalSignerFromFile(project.KeyFile)
	}
	key, ok := os.LookupEnv(project.KeyEnv)
	if !ok || key == "" {
		return nil, &domain.ConfigError{
			Field: "key_env",
			Err:   fmt.Errorf("environment variable %s is not set", project.KeyEnv),
		}
	}
	return signer.NewLocalSigner(key)
}

// ProvideTxOptions converts the gas section of the project config
func ProvideTxOptions(cfg *config.RuntimeConfig) blockchain.TxOptions {
	opts := blockchain.TxOptions{GasLimit: cfg.Project.Gas.Limit}
	if gwei := cfg.Project.Gas.PriceGwei; gwei > 0 {
		opts.GasPrice = decimal.NewFromInt(int64(gwei)).Shift(9).BigInt()
	}
	return opts
}

// ProvideChainClient dials the configured endpoint
func ProvideChainClient(cfg *config.RuntimeConfig, s usecase.Signer, opts blockchain.TxOptions, log *slog.Logger) (*blockchain.ClientAdapter, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	client, err := blockchain.Dial(ctx, cfg.Project.RPCURL, s, opts, log)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("timed out connecting to %s", cfg.Project.RPCURL)
		}
		return nil, err
	}
	return client, nil
}

// ProvideArtifactRepository indexes the configured artifacts directory
func ProvideArtifactRepository(cfg *config.RuntimeConfig, log *slog.Logger) *artifacts.Repository {
	return artifacts.NewRepository(cfg.Project.Artifacts, log)
}

// SignerSet provides the transaction signer
var SignerSet = wire.NewSet(
	ProvideSigner,
	wire.Bind(new(usecase.Signer), new(*signer.LocalSigner)),
)

// BlockchainSet provides the chain client and on-chain lookups
var BlockchainSet = wire.NewSet(
	ProvideTxOptions,
	ProvideChainClient,
	wire.Bind(new(usecase.ChainClient), new(*blockchain.ClientAdapter)),

	blockchain.NewTokenMetadataAdapter,
	wire.Bind(new(usecase.TokenMetadataSource), new(*blockchain.TokenMetadataAdapter)),
)

// ArtifactSet provides compiled contract lookup
var ArtifactSet = wire.NewSet(
	ProvideArtifactRepository,
	wire.Bind(new(usecase.ArtifactRepository), new(*artifacts.Repository)),
)

// InteractiveSet provides interactive implementations
var InteractiveSet = wire.NewSet(
	interactive.NewConfirmerAdapter,
	wire.Bind(new(usecase.Confirmer), new(*interactive.ConfirmerAdapter)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	SignerSet,
	BlockchainSet,
	ArtifactSet,
	InteractiveSet,
	wire.Struct(new(usecase.SystemClock)),
	wire.Bind(new(usecase.Clock), new(usecase.SystemClock)),
)
