package artifacts

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/msto63/kontrakt/internal/contract"
	"github.com/msto63/kontrakt/pkg/core/kerror"
)

// Resolver looks up a single artifact by contract name
type Resolver struct {
	dir     string
	binding contract.Binding
}

// NewResolver creates a resolver over the build directory
func NewResolver(dir string, binding contract.Binding) *Resolver {
	return &Resolver{dir: dir, binding: binding}
}

// Require loads <dir>/<name>.json and returns a freshly bound abstraction.
// A name may be given with or without the extension.
func (r *Resolver) Require(name string) (*contract.Contract, error) {
	name = strings.TrimSuffix(strings.TrimSpace(name), Extension)
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, kerror.Newf(kerror.CodeInvalidArgument, "invalid contract name %q", name)
	}

	file := name + Extension
	data, err := os.ReadFile(filepath.Join(r.dir, file))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, kerror.Newf(kerror.CodeArtifactMissing, "could not find artifact for %s in %s", name, r.dir)
		}
		return nil, kerror.Wrapf(err, kerror.CodeArtifactParse, "error reading %s", file)
	}

	artifact, err := Parse(data)
	if err != nil {
		return nil, kerror.Wrapf(err, kerror.CodeArtifactParse, "error parsing %s", file)
	}
	return contract.New(artifact.Source(), r.binding)
}
