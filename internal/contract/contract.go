// ============================================================================
// kontrakt - Contract Development Console
// ============================================================================
//
// Package:     contract
// Description: Contract abstractions built from artifacts and bound to a network
// Created:     2026-10-13
// License:     MIT
// ============================================================================

// Package contract turns a compiled artifact into a callable abstraction.
//
// An abstraction knows its ABI, bytecode and, when deployed on the bound
// network, its address. Calls to constant methods go out as eth_call, all
// other methods as eth_sendTransaction through the bound provider.
package contract

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/msto63/kontrakt/internal/provider"
	"github.com/msto63/kontrakt/pkg/core/config"
	"github.com/msto63/kontrakt/pkg/core/kerror"
)

// Source is the part of a compiled artifact an abstraction is built from
type Source struct {
	Name     string
	ABI      json.RawMessage
	Bytecode string
	// Addresses maps network id to deployed address
	Addresses map[string]string
	Digest    [32]byte
}

// Binding is the runtime configuration bound to every abstraction
type Binding struct {
	Network   string
	NetworkID config.NetworkID
	Config    config.NetworkConfig
	Provider  provider.Provider
}

// Contract is a contract abstraction
type Contract struct {
	name     string
	abi      abi.ABI
	rawABI   json.RawMessage
	bytecode string
	address  common.Address
	deployed bool
	digest   [32]byte
	binding  Binding
}

// New builds an abstraction from src and binds it. The deployed address is
// taken from src.Addresses for the binding's network id; a wildcard network
// id uses the only deployment when there is exactly one.
func New(src Source, binding Binding) (*Contract, error) {
	if strings.TrimSpace(src.Name) == "" {
		return nil, kerror.New(kerror.CodeArtifactParse, "artifact has no contract name")
	}

	raw := src.ABI
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = json.RawMessage("[]")
	}
	parsed, err := abi.JSON(bytes.NewReader(raw))
	if err != nil {
		return nil, kerror.Wrapf(err, kerror.CodeArtifactParse, "invalid abi for %s", src.Name)
	}

	c := &Contract{
		name:     src.Name,
		abi:      parsed,
		rawABI:   raw,
		bytecode: src.Bytecode,
		digest:   src.Digest,
		binding:  binding,
	}

	if addr, ok := deployedAddress(src.Addresses, binding.NetworkID); ok {
		if !common.IsHexAddress(addr) {
			return nil, kerror.Newf(kerror.CodeArtifactParse, "invalid address %q for %s", addr, src.Name)
		}
		c.address = common.HexToAddress(addr)
		c.deployed = true
	}

	return c, nil
}

func deployedAddress(addresses map[string]string, id config.NetworkID) (string, bool) {
	if !id.IsAny() {
		addr, ok := addresses[string(id)]
		return addr, ok && addr != ""
	}
	if len(addresses) != 1 {
		return "", false
	}
	for _, addr := range addresses {
		return addr, addr != ""
	}
	return "", false
}

// At returns a copy of the abstraction pointing at address
func (c *Contract) At(address string) (*Contract, error) {
	if !common.IsHexAddress(address) {
		return nil, kerror.Newf(kerror.CodeInvalidArgument, "%q is not an address", address)
	}
	clone := *c
	clone.address = common.HexToAddress(address)
	clone.deployed = true
	return &clone, nil
}

// Name returns the contract name
func (c *Contract) Name() string { return c.name }

// ABI returns the raw ABI JSON as found in the artifact
func (c *Contract) ABI() json.RawMessage { return c.rawABI }

// Bytecode returns the creation bytecode
func (c *Contract) Bytecode() string { return c.bytecode }

// Digest returns the sha3 digest of the artifact the abstraction was built from
func (c *Contract) Digest() [32]byte { return c.digest }

// Binding returns the bound runtime configuration
func (c *Contract) Binding() Binding { return c.binding }

// Deployed reports whether the abstraction has an address on the bound network
func (c *Contract) Deployed() bool { return c.deployed }

// Address returns the deployed address, or the empty string
func (c *Contract) Address() string {
	if !c.deployed {
		return ""
	}
	return c.address.Hex()
}

// Method describes one callable ABI method
type Method struct {
	Name      string
	Signature string
	Selector  string
	Constant  bool
}

// Methods lists the ABI methods sorted by name
func (c *Contract) Methods() []Method {
	methods := make([]Method, 0, len(c.abi.Methods))
	for _, m := range c.abi.Methods {
		methods = append(methods, Method{
			Name:      m.Name,
			Signature: m.Sig,
			Selector:  "0x" + common.Bytes2Hex(m.ID),
			Constant:  m.IsConstant(),
		})
	}
	sort.Slice(methods, func(i, j int) bool { return methods[i].Name < methods[j].Name })
	return methods
}
