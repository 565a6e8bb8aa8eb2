package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msto63/kontrakt/pkg/core/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), version.Info(rootCmd.Name()))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
