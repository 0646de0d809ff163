package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Artifact is a compiled contract: its ABI and creation bytecode
type Artifact struct {
	Name     string
	Path     string
	ABI      abi.ABI
	Bytecode []byte
}

// HasBytecode reports whether the artifact can be deployed
func (a *Artifact) HasBytecode() bool {
	return len(a.Bytecode) > 0
}

// BytecodeObject is the bytecode section of a compiler artifact. Foundry writes
// {"object": "0x..."}; Hardhat and Truffle write the hex string directly.
type BytecodeObject struct {
	Object string `json:"object"`
}

func (b *BytecodeObject) UnmarshalJSON(data []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte(`"`)) {
		return json.Unmarshal(data, &b.Object)
	}
	type plain BytecodeObject
	return json.Unmarshal(data, (*plain)(b))
}

// ArtifactFile is the on-disk JSON layout of a compiler artifact
type ArtifactFile struct {
	ContractName string          `json:"contractName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     BytecodeObject  `json:"bytecode"`
}

// Decode parses the ABI and bytecode of the file into an Artifact
func (f *ArtifactFile) Decode(name, path string) (*Artifact, error) {
	if len(f.ABI) == 0 {
		return nil, fmt.Errorf("artifact %s has no abi", name)
	}
	parsed, err := abi.JSON(bytes.NewReader(f.ABI))
	if err != nil {
		return nil, fmt.Errorf("artifact %s: invalid abi: %w", name, err)
	}

	var code []byte
	if obj := strings.TrimSpace(f.Bytecode.Object); obj != "" && obj != "0x" {
		if !strings.HasPrefix(obj, "0x") {
			obj = "0x" + obj
		}
		if strings.Contains(obj, "__") {
			return nil, fmt.Errorf("artifact %s has unlinked library references", name)
		}
		code, err = hexutil.Decode(obj)
		if err != nil {
			return nil, fmt.Errorf("artifact %s: invalid bytecode: %w", name, err)
		}
	}

	if f.ContractName != "" {
		name = f.ContractName
	}
	return &Artifact{
		Name:     name,
		Path:     path,
		ABI:      parsed,
		Bytecode: code,
	}, nil
}
