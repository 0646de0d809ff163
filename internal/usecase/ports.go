package usecase

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/trebuchet-org/catapult/internal/domain/models"
)

// ChainClient is the single chain endpoint a run talks to. Deploy and Transact
// sign with the configured signer and block until the receipt is available.
type ChainClient interface {
	ChainID(ctx context.Context) (uint64, error)
	TransactionCount(ctx context.Context, account common.Address) (uint64, error)
	Balance(ctx context.Context, account common.Address) (*big.Int, error)
	CodeAt(ctx context.Context, contract common.Address) ([]byte, error)
	Deploy(ctx context.Context, req DeployRequest) (*models.Receipt, error)
	Transact(ctx context.Context, req TransactRequest) (*models.Receipt, error)
	Call(ctx context.Context, req CallRequest) ([]any, error)
}

// DeployRequest is a contract creation
type DeployRequest struct {
	Artifact *models.Artifact
	Args     []any
	// Nonce pins the transaction to a slot; nil uses the pending nonce
	Nonce *uint64
}

// TransactRequest is a state-changing contract call
type TransactRequest struct {
	To     common.Address
	ABI    *abi.ABI
	Method string
	Args   []any
	Value  *big.Int
	Nonce  *uint64
}

// CallRequest is a read-only contract call
type CallRequest struct {
	To     common.Address
	ABI    *abi.ABI
	Method string
	Args   []any
}

// Signer holds the deployment key. The key never leaves the implementation.
type Signer interface {
	Address() common.Address
	SignTx(ctx context.Context, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// ArtifactRepository loads compiled contracts by plan key
type ArtifactRepository interface {
	GetArtifact(ctx context.Context, key string) (*models.Artifact, error)
}

// TokenMetadataSource resolves name, symbol and decimals of an issued token
type TokenMetadataSource interface {
	TokenMetadata(ctx context.Context, token common.Address) (*TokenMetadata, error)
}

// TokenMetadata is the display and scaling metadata of an ERC-20
type TokenMetadata struct {
	Name     string
	Symbol   string
	Decimals uint8
}

// Confirmer asks the operator a yes/no question
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// Clock returns the current time; injected so deadlines are testable
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    string
	Current  int
	Total    int
	Message  string
	Spinner  bool
	Metadata interface{}
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}
