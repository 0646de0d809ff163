package blockchain

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/catapult/internal/domain/bindings"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// TokenMetadataAdapter reads ERC-20 name, symbol and decimals from the chain
type TokenMetadataAdapter struct {
	chain usecase.ChainClient
}

// NewTokenMetadataAdapter creates a new on-chain token metadata source
func NewTokenMetadataAdapter(chain usecase.ChainClient) *TokenMetadataAdapter {
	return &TokenMetadataAdapter{chain: chain}
}

// TokenMetadata queries the three metadata getters of token
func (a *TokenMetadataAdapter) TokenMetadata(ctx context.Context, token common.Address) (*usecase.TokenMetadata, error) {
	name, err := a.single(ctx, token, "name")
	if err != nil {
		return nil, err
	}
	symbol, err := a.single(ctx, token, "symbol")
	if err != nil {
		return nil, err
	}
	decimals, err := a.single(ctx, token, "decimals")
	if err != nil {
		return nil, err
	}

	md := &usecase.TokenMetadata{}
	var ok bool
	if md.Name, ok = name.(string); !ok {
		return nil, fmt.Errorf("token %s: name returned %T", token.Hex(), name)
	}
	if md.Symbol, ok = symbol.(string); !ok {
		return nil, fmt.Errorf("token %s: symbol returned %T", token.Hex(), symbol)
	}
	if md.Decimals, ok = decimals.(uint8); !ok {
		return nil, fmt.Errorf("token %s: decimals returned %T", token.Hex(), decimals)
	}
	return md, nil
}

func (a *TokenMetadataAdapter) single(ctx context.Context, token common.Address, method string) (any, error) {
	out, err := a.chain.Call(ctx, usecase.CallRequest{To: token, ABI: bindings.ERC20, Method: method})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s of token %s: %w", method, token.Hex(), err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("token %s: %s returned %d values", token.Hex(), method, len(out))
	}
	return out[0], nil
}

// Ensure the adapter implements the interface
var _ usecase.TokenMetadataSource = (*TokenMetadataAdapter)(nil)
