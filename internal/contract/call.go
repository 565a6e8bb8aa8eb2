package contract

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/msto63/kontrakt/internal/provider"
	"github.com/msto63/kontrakt/pkg/core/kerror"
)

// Call invokes method with script-level arguments. Constant methods return
// their decoded outputs (a single value is unwrapped), other methods return
// the transaction hash.
func (c *Contract) Call(ctx context.Context, method string, args ...interface{}) (interface{}, error) {
	m, ok := c.abi.Methods[method]
	if !ok {
		return nil, kerror.Newf(kerror.CodeUnknownMethod, "%s has no method %q", c.name, method)
	}
	if !c.deployed {
		return nil, kerror.Newf(kerror.CodeNotDeployed, "%s has not been deployed to network %s", c.name, c.binding.Network)
	}
	if c.binding.Provider == nil {
		return nil, kerror.Newf(kerror.CodeProvider, "no provider bound to %s", c.name)
	}
	if len(args) != len(m.Inputs) {
		return nil, kerror.Newf(kerror.CodeInvalidArgument, "%s.%s expects %d arguments, got %d",
			c.name, method, len(m.Inputs), len(args))
	}

	values := make([]interface{}, len(args))
	for i, arg := range args {
		v, err := convertArg(m.Inputs[i].Type, arg)
		if err != nil {
			return nil, kerror.Wrapf(err, kerror.CodeInvalidArgument, "%s.%s argument %d", c.name, method, i)
		}
		values[i] = v
	}

	data, err := c.abi.Pack(method, values...)
	if err != nil {
		return nil, kerror.Wrapf(err, kerror.CodeInvalidArgument, "cannot encode %s.%s", c.name, method)
	}

	if m.IsConstant() {
		return c.call(ctx, method, data)
	}
	return c.transact(ctx, data)
}

func (c *Contract) txObject(data []byte) map[string]interface{} {
	tx := map[string]interface{}{
		"to":   c.address.Hex(),
		"data": hexutil.Encode(data),
	}
	cfg := c.binding.Config
	if cfg.From != "" {
		tx["from"] = cfg.From
	}
	if cfg.Gas != 0 {
		tx["gas"] = hexutil.EncodeUint64(cfg.Gas)
	}
	if cfg.GasPrice != "" {
		if price, ok := new(big.Int).SetString(cfg.GasPrice, 0); ok {
			tx["gasPrice"] = hexutil.EncodeBig(price)
		}
	}
	return tx
}

func (c *Contract) call(ctx context.Context, method string, data []byte) (interface{}, error) {
	var result string
	if err := c.binding.Provider.CallContext(ctx, &result, "eth_call", c.txObject(data), "latest"); err != nil {
		return nil, kerror.Wrapf(err, kerror.CodeProvider, "eth_call %s.%s", c.name, method)
	}
	out, err := hexutil.Decode(result)
	if err != nil {
		return nil, kerror.Wrapf(err, kerror.CodeProvider, "eth_call %s.%s returned %q", c.name, method, result)
	}

	values, err := c.abi.Unpack(method, out)
	if err != nil {
		return nil, kerror.Wrapf(err, kerror.CodeProvider, "cannot decode %s.%s result", c.name, method)
	}
	normalized := make([]interface{}, len(values))
	for i, v := range values {
		normalized[i] = normalizeOutput(v)
	}
	switch len(normalized) {
	case 0:
		return nil, nil
	case 1:
		return normalized[0], nil
	default:
		return normalized, nil
	}
}

func (c *Contract) transact(ctx context.Context, data []byte) (interface{}, error) {
	tx := c.txObject(data)
	if _, ok := tx["from"]; !ok {
		accounts, err := provider.Accounts(ctx, c.binding.Provider)
		if err != nil {
			return nil, err
		}
		if len(accounts) == 0 {
			return nil, kerror.New(kerror.CodeProvider, "no sender: configure `from` or unlock an account")
		}
		tx["from"] = accounts[0]
	}

	var hash string
	if err := c.binding.Provider.CallContext(ctx, &hash, "eth_sendTransaction", tx); err != nil {
		return nil, kerror.Wrapf(err, kerror.CodeProvider, "eth_sendTransaction to %s", c.name)
	}
	return hash, nil
}

// convertArg converts a script value (int64, float64, string, bool, *big.Int,
// []interface{}) into the Go type abi.Pack expects for t.
func convertArg(t abi.Type, arg interface{}) (interface{}, error) {
	switch t.T {
	case abi.IntTy, abi.UintTy:
		n, err := toBigInt(arg)
		if err != nil {
			return nil, err
		}
		if err := checkRange(t, n); err != nil {
			return nil, err
		}
		goType := t.GetType()
		if goType == reflect.TypeOf((*big.Int)(nil)) {
			return n, nil
		}
		v := reflect.New(goType).Elem()
		if t.T == abi.UintTy {
			v.SetUint(n.Uint64())
		} else {
			v.SetInt(n.Int64())
		}
		return v.Interface(), nil

	case abi.BoolTy:
		b, ok := arg.(bool)
		if !ok {
			return nil, fmt.Errorf("bool expected, got %T", arg)
		}
		return b, nil

	case abi.StringTy:
		s, ok := arg.(string)
		if !ok {
			return nil, fmt.Errorf("string expected, got %T", arg)
		}
		return s, nil

	case abi.AddressTy:
		s, ok := arg.(string)
		if !ok || !common.IsHexAddress(s) {
			return nil, fmt.Errorf("address expected, got %v", arg)
		}
		return common.HexToAddress(s), nil

	case abi.BytesTy:
		s, ok := arg.(string)
		if !ok {
			return nil, fmt.Errorf("hex string expected, got %T", arg)
		}
		return hexutil.Decode(s)

	case abi.FixedBytesTy:
		s, ok := arg.(string)
		if !ok {
			return nil, fmt.Errorf("hex string expected, got %T", arg)
		}
		raw, err := hexutil.Decode(s)
		if err != nil {
			return nil, err
		}
		if len(raw) > t.Size {
			return nil, fmt.Errorf("%d bytes do not fit %s", len(raw), t)
		}
		v := reflect.New(t.GetType()).Elem()
		reflect.Copy(v, reflect.ValueOf(raw))
		return v.Interface(), nil

	case abi.SliceTy, abi.ArrayTy:
		items, ok := arg.([]interface{})
		if !ok {
			return nil, fmt.Errorf("array expected, got %T", arg)
		}
		if t.T == abi.ArrayTy && len(items) != t.Size {
			return nil, fmt.Errorf("%s expects %d items, got %d", t, t.Size, len(items))
		}
		var v reflect.Value
		if t.T == abi.SliceTy {
			v = reflect.MakeSlice(t.GetType(), len(items), len(items))
		} else {
			v = reflect.New(t.GetType()).Elem()
		}
		for i, item := range items {
			converted, err := convertArg(*t.Elem, item)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			v.Index(i).Set(reflect.ValueOf(converted))
		}
		return v.Interface(), nil

	default:
		return nil, fmt.Errorf("unsupported parameter type %s", t)
	}
}

// checkRange rejects values that do not fit t's bit width
func checkRange(t abi.Type, n *big.Int) error {
	if t.T == abi.UintTy {
		if n.Sign() < 0 {
			return fmt.Errorf("%s is negative, %s expected", n, t)
		}
		if n.BitLen() > t.Size {
			return fmt.Errorf("%s out of range for %s", n, t)
		}
		return nil
	}

	limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
	if n.Cmp(limit) >= 0 || n.Cmp(new(big.Int).Neg(limit)) < 0 {
		return fmt.Errorf("%s out of range for %s", n, t)
	}
	return nil
}

func toBigInt(arg interface{}) (*big.Int, error) {
	switch v := arg.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case int64:
		return big.NewInt(v), nil
	case int:
		return big.NewInt(int64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	case float64:
		if v != float64(int64(v)) {
			return nil, fmt.Errorf("%v is not an integer", v)
		}
		return big.NewInt(int64(v)), nil
	case string:
		s := strings.TrimSpace(v)
		if n, ok := new(big.Int).SetString(s, 0); ok {
			return n, nil
		}
		if _, err := strconv.ParseFloat(s, 64); err == nil {
			return nil, fmt.Errorf("%q is not an integer", v)
		}
		return nil, fmt.Errorf("%q is not a number", v)
	default:
		return nil, fmt.Errorf("number expected, got %T", arg)
	}
}

// normalizeOutput maps decoded ABI values onto script friendly values:
// big integers become decimal strings, addresses and byte values hex strings.
func normalizeOutput(v interface{}) interface{} {
	switch x := v.(type) {
	case *big.Int:
		return x.String()
	case common.Address:
		return x.Hex()
	case []byte:
		return hexutil.Encode(x)
	case bool, string:
		return x
	case uint64:
		if x > math.MaxInt64 {
			return strconv.FormatUint(x, 10)
		}
		return int64(x)
	case uint8, uint16, uint32, int8, int16, int32, int64:
		return reflect.ValueOf(x).Convert(reflect.TypeOf(int64(0))).Interface()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			raw := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(raw), rv)
			return hexutil.Encode(raw)
		}
		fallthrough
	case reflect.Slice:
		out := make([]interface{}, rv.Len())
		for i := range out {
			out[i] = normalizeOutput(rv.Index(i).Interface())
		}
		return out
	}
	return v
}
