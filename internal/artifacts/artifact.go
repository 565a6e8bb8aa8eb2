// ============================================================================
// kontrakt - Contract Development Console
// ============================================================================
//
// Package:     artifacts
// Description: Artifact parsing, provisioning passes and name resolution
// Created:     2026-10-13
// License:     MIT
// ============================================================================

package artifacts

import (
	"encoding/json"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/msto63/kontrakt/internal/contract"
	"github.com/msto63/kontrakt/pkg/core/kerror"
)

// Extension is the file extension of artifact files
const Extension = ".json"

// Deployment records where a contract lives on one network
type Deployment struct {
	Address         string `json:"address"`
	TransactionHash string `json:"transactionHash,omitempty"`
}

// Artifact is a compiled contract as written by the build step
type Artifact struct {
	ContractName     string                `json:"contractName"`
	ABI              json.RawMessage       `json:"abi"`
	Bytecode         string                `json:"bytecode"`
	DeployedBytecode string                `json:"deployedBytecode,omitempty"`
	SourcePath       string                `json:"sourcePath,omitempty"`
	Networks         map[string]Deployment `json:"networks,omitempty"`
	UpdatedAt        string                `json:"updatedAt,omitempty"`

	// Digest is the sha3-256 digest of the raw file contents
	Digest [32]byte `json:"-"`
}

// Parse decodes an artifact. The contract name is required.
func Parse(data []byte) (*Artifact, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, kerror.Wrap(err, kerror.CodeArtifactParse, "invalid artifact json")
	}
	if strings.TrimSpace(a.ContractName) == "" {
		return nil, kerror.New(kerror.CodeArtifactParse, "artifact has no contractName")
	}
	a.Digest = sha3.Sum256(data)
	return &a, nil
}

// Source returns what contract.New needs from the artifact
func (a *Artifact) Source() contract.Source {
	addresses := make(map[string]string, len(a.Networks))
	for id, d := range a.Networks {
		addresses[id] = d.Address
	}
	return contract.Source{
		Name:      a.ContractName,
		ABI:       a.ABI,
		Bytecode:  a.Bytecode,
		Addresses: addresses,
		Digest:    a.Digest,
	}
}
