package usecase

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/domain/models"
)

// fakeChain is an in-memory chain for a single signer. Deploys land at the
// CREATE address of the nonce they consume unless deployFn overrides them.
type fakeChain struct {
	mu sync.Mutex

	chainID uint64
	signer  common.Address
	nonce   uint64
	balance *big.Int
	code    map[common.Address][]byte

	deploys   []DeployRequest
	transacts []TransactRequest
	calls     []CallRequest
	codeAts   []common.Address
	countReqs int

	deployFn   func(req DeployRequest, nonce uint64) (*models.Receipt, error)
	transactFn func(req TransactRequest) (*models.Receipt, error)
	callFn     func(req CallRequest) ([]any, error)
	countErr   error
}

func newFakeChain(signer common.Address, nonce uint64) *fakeChain {
	return &fakeChain{
		chainID: 31337,
		signer:  signer,
		nonce:   nonce,
		balance: big.NewInt(0),
		code:    make(map[common.Address][]byte),
	}
}

var _ ChainClient = (*fakeChain)(nil)

func (f *fakeChain) ChainID(context.Context) (uint64, error) { return f.chainID, nil }

func (f *fakeChain) TransactionCount(_ context.Context, account common.Address) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countReqs++
	if f.countErr != nil {
		return 0, f.countErr
	}
	if account != f.signer {
		return 0, nil
	}
	return f.nonce, nil
}

func (f *fakeChain) Balance(context.Context, common.Address) (*big.Int, error) {
	return f.balance, nil
}

func (f *fakeChain) CodeAt(_ context.Context, contract common.Address) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codeAts = append(f.codeAts, contract)
	return f.code[contract], nil
}

func (f *fakeChain) Deploy(_ context.Context, req DeployRequest) (*models.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if req.Nonce != nil && *req.Nonce != f.nonce {
		return nil, fmt.Errorf("nonce too low: have %d, want %d", *req.Nonce, f.nonce)
	}
	f.deploys = append(f.deploys, req)
	nonce := f.nonce
	f.nonce++

	if f.deployFn != nil {
		return f.deployFn(req, nonce)
	}
	addr := crypto.CreateAddress(f.signer, nonce)
	f.code[addr] = []byte{0x00}
	return &models.Receipt{
		TxHash:          txHash(nonce),
		Status:          types.ReceiptStatusSuccessful,
		ContractAddress: addr,
	}, nil
}

func (f *fakeChain) Transact(_ context.Context, req TransactRequest) (*models.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if req.Nonce != nil && *req.Nonce != f.nonce {
		return nil, fmt.Errorf("nonce too low: have %d, want %d", *req.Nonce, f.nonce)
	}
	f.transacts = append(f.transacts, req)
	nonce := f.nonce
	f.nonce++

	if f.transactFn != nil {
		return f.transactFn(req)
	}
	return &models.Receipt{
		TxHash: txHash(nonce),
		Status: types.ReceiptStatusSuccessful,
	}, nil
}

func (f *fakeChain) Call(_ context.Context, req CallRequest) ([]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, req)
	if f.callFn != nil {
		return f.callFn(req)
	}
	return nil, fmt.Errorf("unexpected call to %s", req.Method)
}

func (f *fakeChain) mutations() int {
	return len(f.deploys) + len(f.transacts)
}

func txHash(nonce uint64) common.Hash {
	return common.BigToHash(new(big.Int).SetUint64(nonce + 1))
}

// fakeArtifacts serves every key with a deployable one-byte contract
type fakeArtifacts struct {
	missing map[string]bool
	empty   map[string]bool
	loaded  []string
}

func (f *fakeArtifacts) GetArtifact(_ context.Context, key string) (*models.Artifact, error) {
	f.loaded = append(f.loaded, key)
	if f.missing[key] {
		return nil, fmt.Errorf("%w: artifact %s", domain.ErrNotFound, key)
	}
	artifact := &models.Artifact{Name: key, Path: key + ".json"}
	if !f.empty[key] {
		artifact.Bytecode = []byte{0x60, 0x01, 0x60, 0x00, 0xf3}
	}
	return artifact, nil
}

// recordingProgress keeps every event stage in order
type recordingProgress struct {
	events []ProgressEvent
	infos  []string
	errors []string
}

func (r *recordingProgress) OnProgress(_ context.Context, event ProgressEvent) {
	r.events = append(r.events, event)
}
func (r *recordingProgress) Info(message string)  { r.infos = append(r.infos, message) }
func (r *recordingProgress) Error(message string) { r.errors = append(r.errors, message) }

func (r *recordingProgress) stages() []string {
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Stage
	}
	return out
}
