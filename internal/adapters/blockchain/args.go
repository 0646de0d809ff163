package blockchain

import (
	"fmt"
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// coerceArgs converts plan values (big ints, hex strings, []any) into the Go
// types abi.Pack expects for inputs.
func coerceArgs(inputs abi.Arguments, args []any) ([]any, error) {
	if len(inputs) != len(args) {
		return nil, fmt.Errorf("expected %d arguments, got %d", len(inputs), len(args))
	}
	out := make([]any, len(args))
	for i, in := range inputs {
		v, err := coerce(in.Type, args[i])
		if err != nil {
			return nil, fmt.Errorf("argument %d (%s): %w", i, in.Name, err)
		}
		out[i] = v
	}
	return out, nil
}

func coerce(t abi.Type, v any) (any, error) {
	if v == nil {
		return nil, fmt.Errorf("nil value for %s", t.String())
	}
	want := t.GetType()

	if t.T == abi.IntTy || t.T == abi.UintTy {
		n, ok := toBig(v)
		if !ok {
			return nil, fmt.Errorf("cannot use %T as %s", v, t.String())
		}
		if err := checkRange(t, n); err != nil {
			return nil, err
		}
		if t.Size > 64 {
			return new(big.Int).Set(n), nil
		}
		rv := reflect.New(want).Elem()
		if t.T == abi.UintTy {
			rv.SetUint(n.Uint64())
		} else {
			rv.SetInt(n.Int64())
		}
		return rv.Interface(), nil
	}

	if reflect.TypeOf(v) == want {
		return v, nil
	}

	switch t.T {
	case abi.AddressTy:
		if s, ok := v.(string); ok && common.IsHexAddress(s) {
			return common.HexToAddress(s), nil
		}

	case abi.BoolTy:
		if b, ok := v.(bool); ok {
			return b, nil
		}

	case abi.StringTy:
		if s, ok := v.(string); ok {
			return s, nil
		}

	case abi.BytesTy:
		if s, ok := v.(string); ok {
			return hexutil.Decode(s)
		}

	case abi.FixedBytesTy:
		var raw []byte
		switch x := v.(type) {
		case string:
			b, err := hexutil.Decode(x)
			if err != nil {
				return nil, err
			}
			raw = b
		case []byte:
			raw = x
		case common.Hash:
			raw = x.Bytes()
		}
		if raw != nil {
			if len(raw) != t.Size {
				return nil, fmt.Errorf("expected %d bytes, got %d", t.Size, len(raw))
			}
			rv := reflect.New(want).Elem()
			reflect.Copy(rv, reflect.ValueOf(raw))
			return rv.Interface(), nil
		}

	case abi.SliceTy, abi.ArrayTy:
		items, ok := v.([]any)
		if !ok {
			break
		}
		if t.T == abi.ArrayTy && len(items) != t.Size {
			return nil, fmt.Errorf("expected %d elements, got %d", t.Size, len(items))
		}
		var rv reflect.Value
		if t.T == abi.SliceTy {
			rv = reflect.MakeSlice(want, len(items), len(items))
		} else {
			rv = reflect.New(want).Elem()
		}
		for i, item := range items {
			e, err := coerce(*t.Elem, item)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			rv.Index(i).Set(reflect.ValueOf(e))
		}
		return rv.Interface(), nil
	}

	return nil, fmt.Errorf("cannot use %T as %s", v, t.String())
}

// checkRange rejects n unless it fits the integer type t exactly.
func checkRange(t abi.Type, n *big.Int) error {
	if t.T == abi.UintTy {
		if n.Sign() < 0 {
			return fmt.Errorf("negative value %s for %s", n, t.String())
		}
		if n.BitLen() > t.Size {
			return fmt.Errorf("value %s overflows %s", n, t.String())
		}
		return nil
	}
	limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
	if n.Cmp(limit) >= 0 || n.Cmp(new(big.Int).Neg(limit)) < 0 {
		return fmt.Errorf("value %s overflows %s", n, t.String())
	}
	return nil
}

func toBig(v any) (*big.Int, bool) {
	switch x := v.(type) {
	case *big.Int:
		return x, x != nil
	case int:
		return big.NewInt(int64(x)), true
	case int8:
		return big.NewInt(int64(x)), true
	case int16:
		return big.NewInt(int64(x)), true
	case int32:
		return big.NewInt(int64(x)), true
	case int64:
		return big.NewInt(x), true
	case uint:
		return new(big.Int).SetUint64(uint64(x)), true
	case uint64:
		return new(big.Int).SetUint64(x), true
	case uint32:
		return new(big.Int).SetUint64(uint64(x)), true
	case uint16:
		return new(big.Int).SetUint64(uint64(x)), true
	case uint8:
		return new(big.Int).SetUint64(uint64(x)), true
	}
	return nil, false
}
