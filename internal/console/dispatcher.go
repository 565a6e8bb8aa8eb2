package console

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"os/signal"

	"github.com/msto63/kontrakt/pkg/core/config"
	"github.com/msto63/kontrakt/pkg/core/kerror"
	"github.com/msto63/kontrakt/pkg/core/logging"
)

// ChildCommand is the hidden subcommand a dispatched command runs under
const ChildCommand = "console-child"

// Environment handed to the child process
const (
	EnvNetwork = "KONTRAKT_NETWORK"
	EnvConfig  = config.EnvConfig
)

// DispatcherConfig configures a Dispatcher
type DispatcherConfig struct {
	// BinaryPath is the executable to spawn. Empty means the running binary.
	BinaryPath string
	// LeadingArgs are placed before the child subcommand name
	LeadingArgs []string
	ConfigPath  string
	Dir         string
	Network     string
	Networks    map[string]config.NetworkConfig

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *logging.Logger
}

// Dispatcher runs console commands in a child process of the same binary
type Dispatcher struct {
	cfg    DispatcherConfig
	logger *logging.Logger

	// Reprovision runs after the child exits, whatever its status
	Reprovision func(ctx context.Context) error
	// AfterDispatch runs once the dispatch is over, successful or not
	AfterDispatch func()
}

// NewDispatcher creates a dispatcher
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	if cfg.BinaryPath == "" {
		if exe, err := os.Executable(); err == nil {
			cfg.BinaryPath = exe
		} else {
			cfg.BinaryPath = os.Args[0]
		}
	}
	if cfg.Stdin == nil {
		cfg.Stdin = os.Stdin
	}
	if cfg.Stdout == nil {
		cfg.Stdout = os.Stdout
	}
	if cfg.Stderr == nil {
		cfg.Stderr = os.Stderr
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	return &Dispatcher{cfg: cfg, logger: cfg.Logger}
}

// Dispatch runs commandText in a child process and waits for it. The
// child inherits the terminal; while it runs the parent ignores SIGINT.
// Only a failure to start the child is returned. A non-zero exit status is
// logged, and reprovisioning errors are logged and swallowed.
func (d *Dispatcher) Dispatch(ctx context.Context, commandText string) error {
	if d.AfterDispatch != nil {
		defer d.AfterDispatch()
	}

	bundle, err := config.EncodeNetworks(d.cfg.Networks)
	if err != nil {
		return kerror.Wrap(err, kerror.CodeDispatch, "cannot encode network configuration")
	}

	args := make([]string, 0, len(d.cfg.LeadingArgs)+3)
	args = append(args, d.cfg.LeadingArgs...)
	args = append(args, ChildCommand, commandText, bundle)

	cmd := exec.Command(d.cfg.BinaryPath, args...)
	cmd.Dir = d.cfg.Dir
	cmd.Stdin = d.cfg.Stdin
	cmd.Stdout = d.cfg.Stdout
	cmd.Stderr = d.cfg.Stderr
	cmd.Env = append(os.Environ(), EnvNetwork+"="+d.cfg.Network)
	if d.cfg.ConfigPath != "" {
		cmd.Env = append(cmd.Env, EnvConfig+"="+d.cfg.ConfigPath)
	}

	// The terminal belongs to the child until it exits.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	defer signal.Stop(sigs)

	if err := cmd.Start(); err != nil {
		return kerror.Wrapf(err, kerror.CodeDispatch, "cannot start %q", commandText).
			WithDetail("binary", d.cfg.BinaryPath)
	}
	d.logger.Debug("Child process started", "command", commandText, "pid", cmd.Process.Pid)

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			d.logger.Warn("Command exited with non-zero status", "command", commandText, "code", exitErr.ExitCode())
		} else {
			d.logger.Error("Waiting for child process failed", "command", commandText, "error", err)
		}
	}

	if d.Reprovision != nil {
		if err := d.Reprovision(context.WithoutCancel(ctx)); err != nil {
			d.logger.Error("Reprovisioning after command failed", "command", commandText, "error", err)
		}
	}
	return nil
}
