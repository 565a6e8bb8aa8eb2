package cmd

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/msto63/kontrakt/internal/artifacts"
	"github.com/msto63/kontrakt/internal/contract"
	"github.com/msto63/kontrakt/pkg/core/config"
)

var artifactsCmd = &cobra.Command{
	Use:     "artifacts",
	Aliases: []string{"ls"},
	Short:   "List compiled contract artifacts",
	Long: `Lists the artifacts in the build directory together with their
deployment on the selected network. No node is contacted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		network := activeNetwork(cfg)
		netCfg, err := cfg.Network(network)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return printArtifacts(ctx, os.Stdout, cfg, network, netCfg)
	},
}

func init() {
	rootCmd.AddCommand(artifactsCmd)
}

func printArtifacts(ctx context.Context, out io.Writer, cfg *config.Config, network string, netCfg config.NetworkConfig) error {
	binding := contract.Binding{Network: network, NetworkID: netCfg.NetworkID, Config: netCfg}
	logger := newLogger(cfg, "artifacts")
	contracts, err := artifacts.NewProvisioner(cfg.Project.ContractsBuildDirectory, binding, logger).Provision(ctx)
	if err != nil {
		return err
	}
	if len(contracts) == 0 {
		fmt.Fprintf(out, "No artifacts in %s\n", cfg.Project.ContractsBuildDirectory)
		return nil
	}

	t := newTable(out, "CONTRACT", "METHODS", fmt.Sprintf("ADDRESS (%s)", network), "DIGEST")
	for _, c := range contracts {
		address := c.Address()
		if !c.Deployed() {
			address = "-"
		}
		digest := c.Digest()
		t.Row(c.Name(), strconv.Itoa(len(c.Methods())), address, hex.EncodeToString(digest[:6]))
	}
	return renderTable(out, t)
}
