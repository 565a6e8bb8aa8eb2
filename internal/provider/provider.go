// ============================================================================
// kontrakt - Contract Development Console
// ============================================================================
//
// Package:     provider
// Description: JSON-RPC provider handles for configured networks
// Created:     2026-10-13
// License:     MIT
// ============================================================================

package provider

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"

	"github.com/msto63/kontrakt/pkg/core/config"
	"github.com/msto63/kontrakt/pkg/core/kerror"
)

// Provider issues JSON-RPC requests against a network. *rpc.Client satisfies it.
type Provider interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
	Close()
}

// Dial connects to the network's endpoint. HTTP endpoints connect lazily;
// websocket endpoints fail here when the node is unreachable.
func Dial(ctx context.Context, network config.NetworkConfig) (Provider, error) {
	endpoint := network.Endpoint()
	client, err := rpc.DialContext(ctx, endpoint)
	if err != nil {
		return nil, kerror.Wrapf(err, kerror.CodeProvider, "cannot connect to %s", endpoint)
	}
	return client, nil
}

// Request performs a call and returns the raw result
func Request(ctx context.Context, p Provider, method string, params ...interface{}) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := p.CallContext(ctx, &raw, method, params...); err != nil {
		return nil, kerror.Wrapf(err, kerror.CodeProvider, "%s failed", method)
	}
	return raw, nil
}

// Accounts returns the accounts the node manages
func Accounts(ctx context.Context, p Provider) ([]string, error) {
	var accounts []string
	if err := p.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, kerror.Wrap(err, kerror.CodeProvider, "eth_accounts failed")
	}
	return accounts, nil
}

// NetworkID asks the node for its network id. Hex and decimal answers are
// both normalised to decimal.
func NetworkID(ctx context.Context, p Provider) (config.NetworkID, error) {
	var version string
	if err := p.CallContext(ctx, &version, "net_version"); err != nil {
		return "", kerror.Wrap(err, kerror.CodeProvider, "net_version failed")
	}
	if strings.HasPrefix(version, "0x") {
		if n, err := strconv.ParseUint(version[2:], 16, 64); err == nil {
			version = strconv.FormatUint(n, 10)
		}
	}
	return config.NetworkID(version), nil
}

// ResolveNetworkID returns configured unless it is the wildcard, in which case
// the node is asked. Failures fall back to the wildcard.
func ResolveNetworkID(ctx context.Context, p Provider, configured config.NetworkID) (config.NetworkID, error) {
	if !configured.IsAny() {
		return configured, nil
	}
	id, err := NetworkID(ctx, p)
	if err != nil {
		return config.AnyNetworkID, err
	}
	return id, nil
}
