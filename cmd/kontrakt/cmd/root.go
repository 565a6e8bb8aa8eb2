// ============================================================================
// kontrakt - Contract Development Console
// ============================================================================
//
// Package:     cmd
// Description: Command line interface
// Created:     2026-10-15
// License:     MIT
// ============================================================================

package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/msto63/kontrakt/internal/console"
	"github.com/msto63/kontrakt/pkg/core/config"
	"github.com/msto63/kontrakt/pkg/core/kerror"
	"github.com/msto63/kontrakt/pkg/core/logging"
)

var (
	cfgFile     string
	networkName string
	verbose     bool

	// networkOverrides replaces the configured networks when a command
	// runs as a console child
	networkOverrides map[string]config.NetworkConfig
)

var rootCmd = &cobra.Command{
	Use:   "kontrakt",
	Short: "kontrakt - contract development toolkit",
	Long: `kontrakt works with compiled smart contract artifacts.

Start an interactive session with 'kontrakt console'. Inside the console,
commands such as 'networks' run in a separate process and everything else
is evaluated as JavaScript with one binding per compiled contract.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		return exitCode(err)
	}
	return 0
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./kontrakt.toml)")
	rootCmd.PersistentFlags().StringVarP(&networkName, "network", "n", "", "network to use (default: console.default_network)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads the project configuration for the current command
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
	} else {
		dir, wdErr := os.Getwd()
		if wdErr != nil {
			return nil, kerror.Wrap(wdErr, kerror.CodeConfiguration, "cannot determine working directory")
		}
		cfg, err = config.Discover(dir)
	}
	if err != nil {
		return nil, err
	}

	if networkOverrides != nil {
		cfg.Networks = networkOverrides
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// activeNetwork returns the network selected by flag, child environment or config
func activeNetwork(cfg *config.Config) string {
	if networkName != "" {
		return networkName
	}
	if name := os.Getenv(console.EnvNetwork); name != "" {
		return name
	}
	return cfg.Console.DefaultNetwork
}

func newLogger(cfg *config.Config, name string) *logging.Logger {
	lc := logging.DefaultLoggerConfig(name)
	if cfg.Logging.Level != "" {
		lc.Level = cfg.Logging.Level
	}
	if verbose {
		lc.Level = logging.LevelDebug.String()
	}
	lc.Format = cfg.Logging.Format
	return logging.NewLogger(lc)
}

func printError(err error) {
	if e, ok := kerror.As(err); ok {
		fmt.Fprintf(os.Stderr, "Error: %s\n", e.Error())
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

// exitCode maps an error to a process exit status. A failing child of a
// dispatched command passes its own status through.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	switch kerror.CodeOf(err) {
	case kerror.CodeConfiguration:
		return 2
	default:
		return 1
	}
}
