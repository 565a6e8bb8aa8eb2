package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/msto63/kontrakt/pkg/core/config"
)

var networksCmd = &cobra.Command{
	Use:     "networks",
	Aliases: []string{"nets"},
	Short:   "List configured networks",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return printNetworks(os.Stdout, cfg, activeNetwork(cfg))
	},
}

func init() {
	rootCmd.AddCommand(networksCmd)
}

func printNetworks(out io.Writer, cfg *config.Config, active string) error {
	t := newTable(out, "NAME", "NETWORK ID", "ENDPOINT", "FROM")
	for _, name := range cfg.NetworkNames() {
		n := cfg.Networks[name]
		marker := ""
		if name == active {
			marker = " *"
		}
		id := string(n.NetworkID)
		if id == "" {
			id = string(config.AnyNetworkID)
		}
		from := n.From
		if from == "" {
			from = "-"
		}
		t.Row(name+marker, id, n.Endpoint(), from)
	}
	return renderTable(out, t)
}
