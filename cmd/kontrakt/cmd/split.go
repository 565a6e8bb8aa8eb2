package cmd

import (
	"github.com/mattn/go-shellwords"

	"github.com/msto63/kontrakt/pkg/core/kerror"
)

// splitCommand splits console command text into arguments with shell
// quoting rules. Environment and backtick expansion stay off, and shell
// operators are rejected since nothing runs through a shell.
func splitCommand(text string) ([]string, error) {
	p := shellwords.NewParser()
	args, err := p.Parse(text)
	if err != nil {
		return nil, kerror.Wrapf(err, kerror.CodeInvalidArgument, "cannot split %q", text)
	}
	if p.Position >= 0 {
		return nil, kerror.Newf(kerror.CodeInvalidArgument, "shell operators are not supported in %q", text)
	}
	return args, nil
}
