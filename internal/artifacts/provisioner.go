package artifacts

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/msto63/kontrakt/internal/contract"
	"github.com/msto63/kontrakt/pkg/core/kerror"
	"github.com/msto63/kontrakt/pkg/core/logging"
)

// Provisioner builds a fresh set of abstractions from the build directory
type Provisioner struct {
	dir     string
	binding contract.Binding
	logger  *logging.Logger
}

// NewProvisioner creates a provisioner for dir binding every abstraction to binding
func NewProvisioner(dir string, binding contract.Binding, logger *logging.Logger) *Provisioner {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Provisioner{
		dir:     dir,
		binding: binding,
		logger:  logger.With("dir", dir),
	}
}

// Dir returns the build directory
func (p *Provisioner) Dir() string {
	return p.dir
}

// Provision reads every artifact file in the build directory. A missing or
// unreadable directory yields an empty set; a file that cannot be read or
// parsed fails the pass with the file name in the error.
func (p *Provisioner) Provision(ctx context.Context) ([]*contract.Contract, error) {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		p.logger.Debug("Build directory not readable, provisioning nothing", "error", err)
		return nil, nil
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), Extension) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	contracts := make([]*contract.Contract, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		c, err := p.load(name)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
	}

	p.logger.Debug("Provisioning pass complete", "contracts", len(contracts))
	return contracts, nil
}

func (p *Provisioner) load(name string) (*contract.Contract, error) {
	data, err := os.ReadFile(filepath.Join(p.dir, name))
	if err != nil {
		return nil, kerror.Wrapf(err, kerror.CodeArtifactParse, "error reading %s", name).
			WithDetail("file", name)
	}

	artifact, err := Parse(data)
	if err != nil {
		return nil, kerror.Wrapf(err, kerror.CodeArtifactParse, "error parsing %s", name).
			WithDetail("file", name)
	}

	c, err := contract.New(artifact.Source(), p.binding)
	if err != nil {
		return nil, kerror.Wrapf(err, kerror.CodeArtifactParse, "error binding %s", name).
			WithDetail("file", name)
	}
	return c, nil
}
