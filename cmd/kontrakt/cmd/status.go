package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/kontrakt/internal/artifacts"
	"github.com/msto63/kontrakt/internal/contract"
	"github.com/msto63/kontrakt/internal/provider"
	"github.com/msto63/kontrakt/pkg/core/config"
	"github.com/msto63/kontrakt/pkg/core/health"
	"github.com/msto63/kontrakt/pkg/core/kerror"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"doctor"},
	Short:   "Check configured networks and the build directory",
	Long: `Contacts every configured network and reads the build directory.
All checks run concurrently; the command fails when any check fails.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		report := projectChecks(cfg, activeNetwork(cfg), provider.Dial).Check(ctx)
		printReport(os.Stdout, report)
		if report.Status == health.StatusFailed {
			return kerror.Newf(kerror.CodeProvider, "%d of %d checks failed", report.Failed(), len(report.Results))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

type dialFunc func(ctx context.Context, network config.NetworkConfig) (provider.Provider, error)

func projectChecks(cfg *config.Config, active string, dial dialFunc) *health.Registry {
	r := health.NewRegistry()
	timeout := cfg.Console.DialTimeout.Duration

	for _, name := range cfg.NetworkNames() {
		n := cfg.Networks[name]
		r.RegisterFunc("network/"+name, func(ctx context.Context) health.Result {
			return checkNetwork(ctx, n, dial, timeout)
		})
	}

	binding := contract.Binding{Network: active, NetworkID: cfg.Networks[active].NetworkID}
	r.RegisterFunc("artifacts", func(ctx context.Context) health.Result {
		dir := cfg.Project.ContractsBuildDirectory
		if _, err := os.Stat(dir); err != nil {
			return health.Warning("build directory " + dir + " does not exist")
		}
		contracts, err := artifacts.NewProvisioner(dir, binding, nil).Provision(ctx)
		if err != nil {
			return health.Failed(err)
		}
		deployed := 0
		for _, c := range contracts {
			if c.Deployed() {
				deployed++
			}
		}
		if len(contracts) == 0 {
			return health.Warning("no artifacts in " + dir)
		}
		return health.OK(fmt.Sprintf("%d artifacts, %d deployed on %s", len(contracts), deployed, active))
	})
	return r
}

func checkNetwork(ctx context.Context, n config.NetworkConfig, dial dialFunc, timeout time.Duration) health.Result {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	p, err := dial(ctx, n)
	if err != nil {
		return health.Failed(err)
	}
	defer p.Close()

	id, err := provider.NetworkID(ctx, p)
	if err != nil {
		return health.Failed(err)
	}
	var block string
	if err := p.CallContext(ctx, &block, "eth_blockNumber"); err != nil {
		return health.Failed(kerror.Wrap(err, kerror.CodeProvider, "eth_blockNumber failed"))
	}
	height, _ := strconv.ParseUint(strings.TrimPrefix(block, "0x"), 16, 64)

	result := health.OK(fmt.Sprintf("network id %s at block %d", id, height))
	if !n.NetworkID.IsAny() && n.NetworkID != id {
		result = health.Warning(fmt.Sprintf("node reports network id %s, configured %s", id, n.NetworkID))
	}
	result.Details = map[string]interface{}{"endpoint": n.Endpoint()}
	return result
}

func printReport(out io.Writer, report *health.Report) {
	t := newTable(out, "CHECK", "STATUS", "MESSAGE")
	for _, result := range report.Results {
		t.Row(result.Name, string(result.Status), result.Message)
	}
	_ = renderTable(out, t)
	fmt.Fprintln(out, report.String())
}
