package usecase

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/domain/models"
)

// TokenSpec describes a liquidity token before its metadata is known
type TokenSpec struct {
	Native  bool
	Address common.Address
	// Static metadata; any missing field is looked up on chain
	Name     string
	Symbol   string
	Decimals *uint8
	// BridgedFrom names the source chain of a bridged token
	BridgedFrom  string
	BridgedToken string
}

// ResolveTokens turns token specs into tokens, preferring static metadata
type ResolveTokens struct {
	metadata TokenMetadataSource
}

// NewResolveTokens creates a new resolve tokens use case
func NewResolveTokens(metadata TokenMetadataSource) *ResolveTokens {
	return &ResolveTokens{metadata: metadata}
}

// Resolve builds the token for spec
func (uc *ResolveTokens) Resolve(ctx context.Context, spec TokenSpec) (models.Token, error) {
	token, err := uc.Static(spec)
	if err != nil {
		return nil, err
	}
	issued, ok := token.(*models.IssuedToken)
	if !ok || (spec.Name != "" && spec.Symbol != "" && spec.Decimals != nil) {
		return token, nil
	}

	meta, err := uc.metadata.TokenMetadata(ctx, spec.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata of token %s: %w", spec.Address.Hex(), err)
	}
	if issued.TokenName == "" {
		issued.TokenName = meta.Name
	}
	if issued.TokenSymbol == "" {
		issued.TokenSymbol = meta.Symbol
	}
	if spec.Decimals == nil {
		issued.TokenDecimals = meta.Decimals
	}
	return issued, nil
}

// Static builds the token for spec from configured metadata only. Unset
// decimals stay zero.
func (uc *ResolveTokens) Static(spec TokenSpec) (models.Token, error) {
	if spec.Address == (common.Address{}) {
		return nil, fmt.Errorf("%w: token address is required", domain.ErrInvalidAddress)
	}
	if spec.Native {
		return models.NewWrappedNative(spec.Address), nil
	}

	token := &models.IssuedToken{
		TokenName:       spec.Name,
		TokenSymbol:     spec.Symbol,
		ContractAddress: spec.Address,
		Provenance:      models.Origin{},
	}
	if spec.BridgedFrom != "" {
		token.Provenance = models.Bridged{SourceChain: spec.BridgedFrom, SourceToken: spec.BridgedToken}
	}
	if spec.Decimals != nil {
		token.TokenDecimals = *spec.Decimals
	}
	return token, nil
}
