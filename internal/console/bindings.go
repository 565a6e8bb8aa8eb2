package console

import (
	"context"
	"encoding/hex"
	"encoding/json"

	"github.com/dop251/goja"

	"github.com/msto63/kontrakt/internal/contract"
	"github.com/msto63/kontrakt/internal/provider"
	"github.com/msto63/kontrakt/pkg/core/kerror"
)

// reserved are properties of a contract object that ABI methods may not shadow
var reserved = map[string]bool{
	"contractName": true,
	"address":      true,
	"abi":          true,
	"bytecode":     true,
	"digest":       true,
	"network":      true,
	"isDeployed":   true,
	"at":           true,
	"methods":      true,
}

// contractObject exposes c to scripts. Every ABI method becomes a function
// returning a promise.
func (c *Console) contractObject(k *contract.Contract) *goja.Object {
	vm := c.scope.vm
	obj := vm.NewObject()

	for _, m := range k.Methods() {
		if reserved[m.Name] {
			c.logger.Debug("ABI method shadowed by built-in property", "contract", k.Name(), "method", m.Name)
			continue
		}
		name := m.Name
		_ = obj.Set(name, func(call goja.FunctionCall) goja.Value {
			args := make([]interface{}, len(call.Arguments))
			for i, arg := range call.Arguments {
				args[i] = arg.Export()
			}
			result, err := k.Call(c.evalContext(), name, args...)
			if err != nil {
				return c.scope.Rejected(err)
			}
			return c.scope.Resolved(result)
		})
	}

	var abiValue interface{}
	if err := json.Unmarshal(k.ABI(), &abiValue); err != nil {
		abiValue = []interface{}{}
	}
	digest := k.Digest()

	_ = obj.Set("contractName", k.Name())
	_ = obj.Set("abi", abiValue)
	_ = obj.Set("bytecode", k.Bytecode())
	_ = obj.Set("digest", "0x"+hex.EncodeToString(digest[:]))
	_ = obj.Set("network", k.Binding().Network)
	if k.Deployed() {
		_ = obj.Set("address", k.Address())
	} else {
		_ = obj.Set("address", goja.Null())
	}
	_ = obj.Set("isDeployed", k.Deployed)
	_ = obj.Set("at", func(address string) *goja.Object {
		clone, err := k.At(address)
		if err != nil {
			c.scope.Throw(err)
		}
		return c.contractObject(clone)
	})
	_ = obj.Set("methods", func() []map[string]interface{} {
		methods := k.Methods()
		out := make([]map[string]interface{}, len(methods))
		for i, m := range methods {
			out[i] = map[string]interface{}{
				"name":      m.Name,
				"signature": m.Signature,
				"selector":  m.Selector,
				"constant":  m.Constant,
			}
		}
		return out
	})
	return obj
}

// installGlobals binds the globals that live for the whole session
func (c *Console) installGlobals() error {
	vm := c.scope.vm

	artifactsObj := vm.NewObject()
	if err := artifactsObj.Set("require", func(name string) *goja.Object {
		k, err := c.opts.Resolver.Require(name)
		if err != nil {
			c.scope.Throw(err)
		}
		return c.contractObject(k)
	}); err != nil {
		return err
	}

	providerObj := vm.NewObject()
	if err := providerObj.Set("request", func(call goja.FunctionCall) goja.Value {
		method := call.Argument(0)
		if goja.IsUndefined(method) || method.String() == "" {
			return c.scope.Rejected(kerror.New(kerror.CodeInvalidArgument, "provider.request needs a method name"))
		}
		params := make([]interface{}, 0, len(call.Arguments))
		for _, arg := range call.Arguments[1:] {
			params = append(params, arg.Export())
		}
		raw, err := provider.Request(c.evalContext(), c.opts.Provider, method.String(), params...)
		if err != nil {
			return c.scope.Rejected(err)
		}
		var result interface{}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &result); err != nil {
				return c.scope.Rejected(kerror.Wrap(err, kerror.CodeProvider, "invalid provider response"))
			}
		}
		return c.scope.Resolved(result)
	}); err != nil {
		return err
	}
	_ = providerObj.Set("network", c.opts.Network)
	_ = providerObj.Set("networkId", string(c.opts.NetworkID))

	if err := c.scope.Set("artifacts", artifactsObj); err != nil {
		return err
	}
	if err := c.scope.Set("provider", providerObj); err != nil {
		return err
	}
	return c.scope.Set("accounts", []string{})
}

// loadAccounts binds the node's accounts. Failures only leave the list empty.
func (c *Console) loadAccounts(ctx context.Context) {
	accounts, err := provider.Accounts(ctx, c.opts.Provider)
	if err != nil {
		c.logger.Debug("Could not load accounts", "error", err)
		return
	}
	if accounts == nil {
		accounts = []string{}
	}
	if err := c.scope.Set("accounts", accounts); err != nil {
		c.logger.Warn("Could not bind accounts", "error", err)
	}
}
