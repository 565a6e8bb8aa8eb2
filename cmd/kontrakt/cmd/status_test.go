package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/msto63/kontrakt/internal/provider"
	"github.com/msto63/kontrakt/pkg/core/config"
	"github.com/msto63/kontrakt/pkg/core/health"
)

type nodeStub struct {
	version string
	block   string
}

func (n *nodeStub) CallContext(_ context.Context, result interface{}, method string, _ ...interface{}) error {
	var answer string
	switch method {
	case "net_version":
		answer = n.version
	case "eth_blockNumber":
		answer = n.block
	default:
		return errors.New("unsupported")
	}
	data, _ := json.Marshal(answer)
	return json.Unmarshal(data, result)
}

func (n *nodeStub) Close() {}

func TestProjectChecks(t *testing.T) {
	resetGlobals(t)
	cfg, err := config.Load(writeConfig(t))
	if err != nil {
		t.Fatal(err)
	}

	dial := func(_ context.Context, n config.NetworkConfig) (provider.Provider, error) {
		if n.URL != "" {
			return nil, errors.New("connection refused")
		}
		return &nodeStub{version: "1337", block: "0x10"}, nil
	}

	report := projectChecks(cfg, "development", dial).Check(context.Background())
	if report.Status != health.StatusFailed {
		t.Errorf("Status = %s, want failed", report.Status)
	}

	byName := map[string]health.Result{}
	for _, r := range report.Results {
		byName[r.Name] = r
	}
	if got := byName["network/development"]; got.Status != health.StatusWarning || !strings.Contains(got.Message, "1337") {
		t.Errorf("development = %+v, want id mismatch warning", got)
	}
	if got := byName["network/sepolia"]; got.Status != health.StatusFailed {
		t.Errorf("sepolia = %+v, want failed", got)
	}
	if got := byName["artifacts"]; got.Status != health.StatusWarning {
		t.Errorf("artifacts = %+v, want warning for missing build dir", got)
	}

	var out bytes.Buffer
	printReport(&out, report)
	if !strings.Contains(out.String(), "network/sepolia") || !strings.Contains(out.String(), "Failed: 1") {
		t.Errorf("report output = %q", out.String())
	}
}

func TestCheckNetwork_OK(t *testing.T) {
	dial := func(context.Context, config.NetworkConfig) (provider.Provider, error) {
		return &nodeStub{version: "5777", block: "0x2a"}, nil
	}
	result := checkNetwork(context.Background(), config.NetworkConfig{NetworkID: "5777"}, dial, 0)
	if result.Status != health.StatusOK || !strings.Contains(result.Message, "block 42") {
		t.Errorf("result = %+v", result)
	}
}
