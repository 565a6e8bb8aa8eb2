package cmd

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/msto63/kontrakt/internal/console"
	"github.com/msto63/kontrakt/pkg/core/config"
	"github.com/msto63/kontrakt/pkg/core/kerror"
)

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    []string
		wantErr bool
	}{
		{"single", "networks", []string{"networks"}, false},
		{"flags", "artifacts  --network sepolia", []string{"artifacts", "--network", "sepolia"}, false},
		{"double quotes", `exec "scripts/run me.js"`, []string{"exec", "scripts/run me.js"}, false},
		{"single quotes keep backslash", `echo 'a\b'`, []string{"echo", `a\b`}, false},
		{"escaped space", `echo a\ b`, []string{"echo", "a b"}, false},
		{"empty quotes", `echo ""`, []string{"echo", ""}, false},
		{"blank", "   ", nil, false},
		{"unterminated", `echo "oops`, nil, true},
		{"trailing backslash", `echo \`, nil, true},
		{"operator", "networks; ls", nil, true},
		{"quoted operator", `echo "a;b"`, []string{"echo", "a;b"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := splitCommand(tt.text)
			if (err != nil) != tt.wantErr {
				t.Fatalf("splitCommand(%q) error = %v, wantErr %v", tt.text, err, tt.wantErr)
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
				t.Errorf("splitCommand(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "kontrakt.toml")
	content := `
[console]
default_network = "development"

[networks.development]
host = "127.0.0.1"
port = 7545
network_id = 5777

[networks.sepolia]
url = "https://rpc.example.org"
network_id = 11155111
from = "0x00000000000000000000000000000000000000aa"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func resetGlobals(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		cfgFile, networkName, verbose = "", "", false
		networkOverrides = nil
	})
}

func TestLoadConfig_Overrides(t *testing.T) {
	resetGlobals(t)
	cfgFile = writeConfig(t)

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if len(cfg.Networks) != 2 {
		t.Fatalf("networks = %v", cfg.NetworkNames())
	}

	networkOverrides = map[string]config.NetworkConfig{
		"child": {URL: "http://10.0.0.1:8545", NetworkID: "42"},
	}
	cfg, err = loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() with overrides error = %v", err)
	}
	if names := cfg.NetworkNames(); len(names) != 1 || names[0] != "child" {
		t.Errorf("networks with overrides = %v", names)
	}
}

func TestActiveNetwork(t *testing.T) {
	resetGlobals(t)
	cfg := config.Default()

	if got := activeNetwork(cfg); got != "development" {
		t.Errorf("default = %q", got)
	}
	t.Setenv(console.EnvNetwork, "sepolia")
	if got := activeNetwork(cfg); got != "sepolia" {
		t.Errorf("from environment = %q", got)
	}
	networkName = "mainnet"
	if got := activeNetwork(cfg); got != "mainnet" {
		t.Errorf("from flag = %q", got)
	}
}

func TestPrintNetworks(t *testing.T) {
	resetGlobals(t)
	cfg, err := config.Load(writeConfig(t))
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := printNetworks(&out, cfg, "sepolia"); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("output = %q", out.String())
	}
	if !strings.HasPrefix(lines[1], "development ") || !strings.Contains(lines[1], "http://127.0.0.1:7545") {
		t.Errorf("development line = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "sepolia *") || !strings.Contains(lines[2], "11155111") {
		t.Errorf("sepolia line = %q", lines[2])
	}
}

func TestPrintArtifacts(t *testing.T) {
	resetGlobals(t)
	cfg, err := config.Load(writeConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	build := cfg.Project.ContractsBuildDirectory

	var out bytes.Buffer
	if err := printArtifacts(context.Background(), &out, cfg, "development", cfg.Networks["development"]); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No artifacts") {
		t.Errorf("empty build dir output = %q", out.String())
	}

	if err := os.MkdirAll(build, 0o755); err != nil {
		t.Fatal(err)
	}
	artifact := `{"contractName":"MetaCoin","abi":[],"bytecode":"0x60",
		"networks":{"5777":{"address":"0x00000000000000000000000000000000000000cc"}}}`
	if err := os.WriteFile(filepath.Join(build, "MetaCoin.json"), []byte(artifact), 0o644); err != nil {
		t.Fatal(err)
	}

	out.Reset()
	if err := printArtifacts(context.Background(), &out, cfg, "development", cfg.Networks["development"]); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "MetaCoin") || !strings.Contains(strings.ToLower(out.String()), "0x00000000000000000000000000000000000000cc") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunChild_Rejects(t *testing.T) {
	resetGlobals(t)
	cfgFile = writeConfig(t)
	bundle, err := config.EncodeNetworks(map[string]config.NetworkConfig{"development": {Port: 8545}})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		code kerror.Code
	}{
		{"bad bundle", []string{"networks", "not json"}, kerror.CodeConfiguration},
		{"empty command", []string{"  ", bundle}, kerror.CodeInvalidArgument},
		{"unterminated quote", []string{`networks "x`, bundle}, kerror.CodeInvalidArgument},
		{"console", []string{"console", bundle}, kerror.CodeDispatch},
		{"bad flag", []string{"networks --bogus", bundle}, kerror.CodeInvalidArgument},
		{"extra args", []string{"networks extra", bundle}, kerror.CodeInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runChild(childCmd, tt.args)
			if !kerror.HasCode(err, tt.code) {
				t.Errorf("runChild(%q) error = %v, want %s", tt.args, err, tt.code)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	if got := exitCode(kerror.New(kerror.CodeConfiguration, "bad")); got != 2 {
		t.Errorf("configuration exit code = %d, want 2", got)
	}
	if got := exitCode(kerror.New(kerror.CodeDispatch, "bad")); got != 1 {
		t.Errorf("dispatch exit code = %d, want 1", got)
	}

	if _, err := os.Stat("/bin/sh"); err == nil {
		err := exec.Command("/bin/sh", "-c", "exit 4").Run()
		if got := exitCode(err); got != 4 {
			t.Errorf("child exit code = %d, want 4", got)
		}
	}
}

func TestNewTable_Plain(t *testing.T) {
	var out bytes.Buffer
	tbl := newTable(&out, "NAME", "STATUS")
	tbl.Row("development", "ok")
	tbl.Row("sepolia", "failed")
	if err := renderTable(&out, tbl); err != nil {
		t.Fatal(err)
	}

	if strings.Contains(out.String(), "\x1b[") {
		t.Errorf("non-terminal output contains escape codes: %q", out.String())
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("output = %q", out.String())
	}
	col := strings.Index(lines[0], "STATUS")
	if col < 0 || strings.Index(lines[1], "ok") != col || strings.Index(lines[2], "failed") != col {
		t.Errorf("columns not aligned:\n%s", out.String())
	}
}
