package blockchain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/domain/models"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// DefaultGasLimit is used when estimation fails, e.g. for a call that reverts
const DefaultGasLimit uint64 = 3_000_000

// Backend is the subset of an RPC client the adapter needs. Both
// *ethclient.Client and the in-process simulated client satisfy it.
type Backend interface {
	ethereum.ChainIDReader
	ethereum.ChainStateReader
	ethereum.ContractCaller
	ethereum.GasEstimator
	ethereum.GasPricer
	ethereum.PendingStateReader
	ethereum.TransactionReader
	ethereum.TransactionSender
}

// TxOptions fixes gas parameters. Zero values fall back to estimation and
// the node's suggested price.
type TxOptions struct {
	GasLimit uint64
	GasPrice *big.Int
}

// ClientAdapter implements usecase.ChainClient over a JSON-RPC endpoint
type ClientAdapter struct {
	backend Backend
	signer  usecase.Signer
	opts    TxOptions
	log     *slog.Logger

	mu      sync.Mutex
	chainID *big.Int
}

// NewClientAdapter wraps an already connected backend
func NewClientAdapter(backend Backend, signer usecase.Signer, opts TxOptions, log *slog.Logger) *ClientAdapter {
	return &ClientAdapter{
		backend: backend,
		signer:  signer,
		opts:    opts,
		log:     log.With("component", "chain"),
	}
}

// Dial connects to rpcURL and checks that the endpoint answers
func Dial(ctx context.Context, rpcURL string, signer usecase.Signer, opts TxOptions, log *slog.Logger) (*ClientAdapter, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC: %w", err)
	}
	c := NewClientAdapter(client, signer, opts, log)
	if _, err := c.ChainID(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return c, nil
}

// ChainID returns the endpoint's chain id, cached after the first call
func (c *ClientAdapter) ChainID(ctx context.Context) (uint64, error) {
	id, err := c.chainIDBig(ctx)
	if err != nil {
		return 0, err
	}
	return id.Uint64(), nil
}

func (c *ClientAdapter) chainIDBig(ctx context.Context) (*big.Int, error) {
	if c.backend == nil {
		return nil, domain.ErrNotConnected
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.chainID != nil {
		return c.chainID, nil
	}
	id, err := c.backend.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	c.chainID = id
	return id, nil
}

// TransactionCount returns the number of transactions account has mined
func (c *ClientAdapter) TransactionCount(ctx context.Context, account common.Address) (uint64, error) {
	if c.backend == nil {
		return 0, domain.ErrNotConnected
	}
	nonce, err := c.backend.NonceAt(ctx, account, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to get transaction count for %s: %w", account.Hex(), err)
	}
	return nonce, nil
}

// Balance returns account's native balance at the latest block
func (c *ClientAdapter) Balance(ctx context.Context, account common.Address) (*big.Int, error) {
	if c.backend == nil {
		return nil, domain.ErrNotConnected
	}
	bal, err := c.backend.BalanceAt(ctx, account, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance for %s: %w", account.Hex(), err)
	}
	return bal, nil
}

// CodeAt returns the runtime code at contract
func (c *ClientAdapter) CodeAt(ctx context.Context, contract common.Address) ([]byte, error) {
	if c.backend == nil {
		return nil, domain.ErrNotConnected
	}
	code, err := c.backend.CodeAt(ctx, contract, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check code at %s: %w", contract.Hex(), err)
	}
	return code, nil
}

// Deploy sends a contract creation and waits for its receipt
func (c *ClientAdapter) Deploy(ctx context.Context, req usecase.DeployRequest) (*models.Receipt, error) {
	if req.Artifact == nil || !req.Artifact.HasBytecode() {
		return nil, fmt.Errorf("artifact has no creation bytecode")
	}
	args, err := coerceArgs(req.Artifact.ABI.Constructor.Inputs, req.Args)
	if err != nil {
		return nil, fmt.Errorf("constructor of %s: %w", req.Artifact.Name, err)
	}
	packed, err := req.Artifact.ABI.Pack("", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack constructor args for %s: %w", req.Artifact.Name, err)
	}
	data := append(append([]byte{}, req.Artifact.Bytecode...), packed...)
	return c.send(ctx, nil, data, nil, req.Nonce)
}

// Transact sends a state-changing call and waits for its receipt
func (c *ClientAdapter) Transact(ctx context.Context, req usecase.TransactRequest) (*models.Receipt, error) {
	data, err := pack(req.ABI, req.Method, req.Args)
	if err != nil {
		return nil, err
	}
	to := req.To
	return c.send(ctx, &to, data, req.Value, req.Nonce)
}

// Call performs a read-only call against the latest block
func (c *ClientAdapter) Call(ctx context.Context, req usecase.CallRequest) ([]any, error) {
	if c.backend == nil {
		return nil, domain.ErrNotConnected
	}
	data, err := pack(req.ABI, req.Method, req.Args)
	if err != nil {
		return nil, err
	}
	to := req.To
	msg := ethereum.CallMsg{To: &to, Data: data}
	if c.signer != nil {
		msg.From = c.signer.Address()
	}
	out, err := c.backend.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s on %s: %w", req.Method, to.Hex(), err)
	}
	values, err := req.ABI.Unpack(req.Method, out)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s result: %w", req.Method, err)
	}
	return values, nil
}

func pack(contract *abi.ABI, method string, args []any) ([]byte, error) {
	if contract == nil {
		return nil, fmt.Errorf("no abi for %s", method)
	}
	m, ok := contract.Methods[method]
	if !ok {
		return nil, fmt.Errorf("method %s not found in abi", method)
	}
	coerced, err := coerceArgs(m.Inputs, args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	data, err := contract.Pack(method, coerced...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}
	return data, nil
}

// send signs, submits and waits for a transaction. A nil nonce uses the
// pending nonce of the signer.
func (c *ClientAdapter) send(ctx context.Context, to *common.Address, data []byte, value *big.Int, nonce *uint64) (*models.Receipt, error) {
	if c.backend == nil {
		return nil, domain.ErrNotConnected
	}
	if c.signer == nil {
		return nil, errors.New("no signer configured")
	}
	from := c.signer.Address()

	chainID, err := c.chainIDBig(ctx)
	if err != nil {
		return nil, err
	}

	var n uint64
	if nonce != nil {
		n = *nonce
	} else if n, err = c.backend.PendingNonceAt(ctx, from); err != nil {
		return nil, fmt.Errorf("failed to get pending nonce: %w", err)
	}

	if value == nil {
		value = new(big.Int)
	}

	gasPrice := c.opts.GasPrice
	if gasPrice == nil {
		if gasPrice, err = c.backend.SuggestGasPrice(ctx); err != nil {
			return nil, fmt.Errorf("failed to suggest gas price: %w", err)
		}
	}

	gasLimit := c.opts.GasLimit
	if gasLimit == 0 {
		estimate, err := c.backend.EstimateGas(ctx, ethereum.CallMsg{
			From:  from,
			To:    to,
			Value: value,
			Data:  data,
		})
		if err != nil {
			c.log.Warn("gas estimation failed, using default limit", "error", err, "gas", DefaultGasLimit)
			gasLimit = DefaultGasLimit
		} else {
			gasLimit = estimate * 120 / 100
		}
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    n,
		GasPrice: gasPrice,
		Gas:      gasLimit,
		To:       to,
		Value:    value,
		Data:     data,
	})

	signed, err := c.signer.SignTx(ctx, tx, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := c.backend.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("failed to send transaction: %w", err)
	}
	c.log.Debug("transaction submitted",
		"hash", signed.Hash().Hex(), "nonce", n, "gas", gasLimit, "gasPrice", gasPrice)

	receipt, err := bind.WaitMined(ctx, c.backend, signed)
	if err != nil {
		return nil, fmt.Errorf("failed waiting for %s: %w", signed.Hash().Hex(), err)
	}
	c.log.Debug("transaction mined",
		"hash", receipt.TxHash.Hex(), "status", receipt.Status, "gasUsed", receipt.GasUsed)

	return models.NewReceipt(receipt), nil
}

// Ensure the adapter implements the interface
var _ usecase.ChainClient = (*ClientAdapter)(nil)
