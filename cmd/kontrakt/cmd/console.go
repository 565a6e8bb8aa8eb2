package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/msto63/kontrakt/internal/artifacts"
	"github.com/msto63/kontrakt/internal/console"
	"github.com/msto63/kontrakt/internal/contract"
	"github.com/msto63/kontrakt/internal/provider"
	"github.com/msto63/kontrakt/internal/registry"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Start an interactive contract console",
	Long: `Starts an interactive console bound to a network.

Every compiled contract in the build directory is available by name.
Lines starting with a command name (for example 'networks') run that
command in a separate process; the contracts are reloaded afterwards.

Examples:
  kontrakt console
  kontrakt console --network sepolia`,
	Args: cobra.NoArgs,
	RunE: runConsole,
}

func init() {
	rootCmd.AddCommand(consoleCmd)
}

func runConsole(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, "console")

	network := activeNetwork(cfg)
	netCfg, err := cfg.Network(network)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	dialCtx, cancel := context.WithTimeout(ctx, cfg.Console.DialTimeout.Duration)
	defer cancel()
	p, err := provider.Dial(dialCtx, netCfg)
	if err != nil {
		return err
	}
	defer p.Close()

	networkID, err := provider.ResolveNetworkID(dialCtx, p, netCfg.NetworkID)
	if err != nil {
		logger.Warn("Could not resolve network id, matching any deployment", "network", network, "error", err)
	}

	binding := contract.Binding{
		Network:   network,
		NetworkID: networkID,
		Config:    netCfg,
		Provider:  p,
	}

	c, err := console.New(console.Options{
		ProgramName:             cfg.Console.ProgramName,
		WorkingDirectory:        cfg.Project.WorkingDirectory,
		ContractsDirectory:      cfg.Project.ContractsDirectory,
		ContractsBuildDirectory: cfg.Project.ContractsBuildDirectory,
		MigrationsDirectory:     cfg.Project.MigrationsDirectory,
		Network:                 network,
		NetworkID:               networkID,
		Networks:                cfg.Networks,
		ConfigPath:              cfg.Path,
		Provider:                p,
		Resolver:                artifacts.NewResolver(cfg.Project.ContractsBuildDirectory, binding),
		Logger:                  logger,
		Registry:                registry.New(rootCmd),
		NoAliases:               cfg.Console.NoAliases,
		In:                      os.Stdin,
		Out:                     os.Stdout,
	})
	if err != nil {
		return err
	}

	if err := c.Start(ctx); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%s console on %s (network id %s). Type .help for help.\n",
		cfg.Console.ProgramName, network, networkID)
	return c.Run(ctx)
}
