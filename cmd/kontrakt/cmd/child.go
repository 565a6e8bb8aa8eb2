package cmd

import (
	"github.com/spf13/cobra"

	"github.com/msto63/kontrakt/internal/console"
	"github.com/msto63/kontrakt/pkg/core/config"
	"github.com/msto63/kontrakt/pkg/core/kerror"
)

// childCmd runs a command dispatched from the console. The first argument
// is the command text, the second the network bundle of the parent.
var childCmd = &cobra.Command{
	Use:    console.ChildCommand + " <command> <networks>",
	Short:  "Run a console command in a child process",
	Hidden: true,
	Args:   cobra.ExactArgs(2),
	RunE:   runChild,
}

func init() {
	rootCmd.AddCommand(childCmd)
}

func runChild(cmd *cobra.Command, args []string) error {
	networks, err := config.DecodeNetworks(args[1])
	if err != nil {
		return err
	}

	argv, err := splitCommand(args[0])
	if err != nil {
		return err
	}
	if len(argv) == 0 {
		return kerror.New(kerror.CodeInvalidArgument, "empty console command")
	}

	target, rest, err := rootCmd.Find(argv)
	if err != nil {
		return kerror.Wrapf(err, kerror.CodeInvalidArgument, "unknown command %q", argv[0])
	}
	if target == rootCmd || target == cmd || target == consoleCmd {
		return kerror.Newf(kerror.CodeDispatch, "%q cannot run from the console", argv[0])
	}

	networkOverrides = networks
	if err := target.ParseFlags(rest); err != nil {
		return kerror.Wrap(err, kerror.CodeInvalidArgument, "invalid flags")
	}
	targetArgs := target.Flags().Args()
	if err := target.ValidateArgs(targetArgs); err != nil {
		return kerror.Wrap(err, kerror.CodeInvalidArgument, "invalid arguments")
	}
	target.SetContext(cmd.Context())

	switch {
	case target.RunE != nil:
		return target.RunE(target, targetArgs)
	case target.Run != nil:
		target.Run(target, targetArgs)
		return nil
	default:
		return target.Help()
	}
}
