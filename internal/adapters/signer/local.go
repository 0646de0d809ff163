package signer

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/catapult/internal/domain"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// LocalSigner signs with an in-memory secp256k1 key
type LocalSigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewLocalSigner parses a hex private key, with or without 0x prefix
func NewLocalSigner(hexKey string) (*LocalSigner, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if hexKey == "" {
		return nil, &domain.ConfigError{Field: "key", Err: errors.New("empty private key")}
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, &domain.ConfigError{Field: "key", Err: fmt.Errorf("invalid private key: %w", err)}
	}
	return &LocalSigner{key: key, address: crypto.PubkeyToAddress(key.PublicKey)}, nil
}

// NewLocalSignerFromFile reads the key from a file containing a single hex line
func NewLocalSignerFromFile(path string) (*LocalSigner, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.ConfigError{Field: "key_file", Err: err}
	}
	return NewLocalSigner(string(data))
}

// Address returns the signer's account
func (s *LocalSigner) Address() common.Address {
	return s.address
}

// SignTx signs tx for chainID with the latest signer rules
func (s *LocalSigner) SignTx(_ context.Context, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return signed, nil
}

// Ensure LocalSigner implements Signer
var _ usecase.Signer = (*LocalSigner)(nil)
