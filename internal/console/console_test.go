package console

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dop251/goja"

	"github.com/msto63/kontrakt/internal/artifacts"
	"github.com/msto63/kontrakt/internal/contract"
	"github.com/msto63/kontrakt/pkg/core/config"
	"github.com/msto63/kontrakt/pkg/core/kerror"
	"github.com/msto63/kontrakt/pkg/core/logging"
)

const (
	testAccount = "0x00000000000000000000000000000000000000aa"

	metaCoinArtifact = `{
  "contractName": "MetaCoin",
  "abi": [{"type":"function","name":"getBalance","stateMutability":"view",
    "inputs":[{"name":"addr","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}],
  "bytecode": "0x6080",
  "networks": {"5777": {"address": "0x00000000000000000000000000000000000000cc"}}
}`

	convertLibArtifact = `{"contractName": "ConvertLib", "abi": [], "bytecode": "0x60"}`
)

// stubProvider answers JSON-RPC methods from a table
type stubProvider struct {
	answers map[string]interface{}
}

func (s *stubProvider) CallContext(_ context.Context, result interface{}, method string, _ ...interface{}) error {
	answer, ok := s.answers[method]
	if !ok {
		return fmt.Errorf("the method %s does not exist", method)
	}
	data, err := json.Marshal(answer)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, result)
}

func (s *stubProvider) Close() {}

type fixture struct {
	console  *Console
	buildDir string
	out      *bytes.Buffer
	exits    []int
}

func newFixture(t *testing.T, in string) *fixture {
	t.Helper()
	root := t.TempDir()
	buildDir := filepath.Join(root, "build", "contracts")
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeArtifact(t, buildDir, "MetaCoin.json", metaCoinArtifact)

	f := &fixture{buildDir: buildDir, out: &bytes.Buffer{}}
	networks := map[string]config.NetworkConfig{
		"development": {Host: "127.0.0.1", Port: 8545, NetworkID: "5777"},
	}
	p := &stubProvider{answers: map[string]interface{}{
		"eth_accounts": []string{testAccount},
		"eth_call":     fmt.Sprintf("0x%064x", 1000),
		"net_version":  "5777",
	}}

	opts := Options{
		ProgramName:             "kontrakt",
		WorkingDirectory:        root,
		ContractsDirectory:      filepath.Join(root, "contracts"),
		ContractsBuildDirectory: buildDir,
		MigrationsDirectory:     filepath.Join(root, "migrations"),
		Network:                 "development",
		NetworkID:               "5777",
		Networks:                networks,
		Provider:                p,
		Resolver:                artifacts.NewResolver(buildDir, contract.Binding{Network: "development", NetworkID: "5777", Provider: p}),
		Logger:                  logging.Nop(),
		Registry:                testRegistry(),
		In:                      strings.NewReader(in),
		Out:                     f.out,
		Exit:                    func(code int) { f.exits = append(f.exits, code) },
	}

	c, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	f.console = c
	return f
}

func writeArtifact(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func (f *fixture) eval(t *testing.T, input string) (goja.Value, error) {
	t.Helper()
	var (
		gotErr   error
		gotValue goja.Value
		called   bool
	)
	f.console.Eval(context.Background(), input, "", func(err error, value goja.Value) {
		called = true
		gotErr, gotValue = err, value
	})
	if !called {
		t.Fatalf("Eval(%q) did not call its continuation", input)
	}
	return gotValue, gotErr
}

func (f *fixture) mustEval(t *testing.T, input string) goja.Value {
	t.Helper()
	v, err := f.eval(t, input)
	if err != nil {
		t.Fatalf("Eval(%q) error = %v", input, err)
	}
	return v
}

func TestOptions_Validate(t *testing.T) {
	err := Options{ProgramName: "kontrakt", Network: "development"}.Validate()
	if !kerror.HasCode(err, kerror.CodeConfiguration) {
		t.Fatalf("Validate() = %v, want CONFIGURATION", err)
	}
	for _, name := range []string{"WorkingDirectory", "ContractsBuildDirectory", "NetworkID", "Provider", "Resolver", "Logger", "Registry"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("Validate() error %q does not list %s", err, name)
		}
	}
	for _, name := range []string{"ProgramName", "Network,"} {
		if strings.Contains(err.Error(), name) {
			t.Errorf("Validate() error %q lists %s although it is set", err, name)
		}
	}

	if _, err := New(Options{}); !kerror.HasCode(err, kerror.CodeConfiguration) {
		t.Errorf("New(Options{}) error = %v, want CONFIGURATION", err)
	}
}

func TestConsole_Expressions(t *testing.T) {
	f := newFixture(t, "")

	if got := f.mustEval(t, "1 + 1").ToInteger(); got != 2 {
		t.Errorf("1 + 1 = %d", got)
	}
	if got := f.mustEval(t, "MetaCoin.contractName").String(); got != "MetaCoin" {
		t.Errorf("MetaCoin.contractName = %q", got)
	}
	if got := f.mustEval(t, "MetaCoin.isDeployed()").ToBoolean(); !got {
		t.Error("MetaCoin.isDeployed() = false")
	}
	if got := f.mustEval(t, "accounts[0]").String(); got != testAccount {
		t.Errorf("accounts[0] = %q", got)
	}
	if got := f.mustEval(t, "await MetaCoin.getBalance(accounts[0])").Export(); got != "1000" {
		t.Errorf("getBalance = %v (%T), want \"1000\"", got, got)
	}
	if got := f.mustEval(t, "await provider.request('net_version')").String(); got != "5777" {
		t.Errorf("net_version = %q", got)
	}

	f.mustEval(t, "const coin = artifacts.require('MetaCoin')")
	if got := f.mustEval(t, "coin.address").String(); !strings.EqualFold(got, "0x00000000000000000000000000000000000000cc") {
		t.Errorf("coin.address = %q", got)
	}
}

func TestConsole_DomainErrors(t *testing.T) {
	f := newFixture(t, "")

	tests := []struct {
		input string
		code  kerror.Code
	}{
		{"artifacts.require('Missing')", kerror.CodeArtifactMissing},
		{"await MetaCoin.getBalance('alice')", kerror.CodeInvalidArgument},
		{"await provider.request('eth_mining')", kerror.CodeProvider},
		{"MetaCoin.at('nope')", kerror.CodeInvalidArgument},
	}
	for _, tt := range tests {
		_, err := f.eval(t, tt.input)
		if !kerror.HasCode(err, tt.code) {
			t.Errorf("Eval(%q) error = %v, want %s", tt.input, err, tt.code)
		}
	}
}

func TestConsole_StateTrail(t *testing.T) {
	f := newFixture(t, "")

	var events []Event
	f.console.On(EventEvaluated, func(e Event) { events = append(events, e) })

	f.mustEval(t, "x = await Promise.resolve(1)")
	_, _ = f.eval(t, "x +")

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}

	want := []State{StateReceived, StateClassifying, StateRewriting, StateCompiling, StateExecuting, StateAssigningEpilogue, StateIdle}
	if fmt.Sprint(events[0].States) != fmt.Sprint(want) {
		t.Errorf("states = %v, want %v", events[0].States, want)
	}
	if events[0].Path != PathExpression || events[0].Err != nil {
		t.Errorf("event = %+v", events[0])
	}

	failed := events[1].States
	if failed[len(failed)-2] != StateReportingError || events[1].Err == nil {
		t.Errorf("failed evaluation states = %v, err = %v", failed, events[1].Err)
	}
	if f.console.State() != StateIdle {
		t.Errorf("State() = %v, want idle", f.console.State())
	}
}

func TestConsole_ProvisioningMerge(t *testing.T) {
	f := newFixture(t, "")

	f.mustEval(t, "var keep = 7")
	f.mustEval(t, "var old = MetaCoin")

	writeArtifact(t, f.buildDir, "ConvertLib.json", convertLibArtifact)
	if err := f.console.Provision(context.Background()); err != nil {
		t.Fatalf("Provision() error = %v", err)
	}
	if got := f.mustEval(t, "keep").ToInteger(); got != 7 {
		t.Errorf("keep = %d, want 7", got)
	}
	if got := f.mustEval(t, "typeof ConvertLib").String(); got != "object" {
		t.Errorf("typeof ConvertLib = %q", got)
	}
	if f.mustEval(t, "old === MetaCoin").ToBoolean() {
		t.Error("MetaCoin was not replaced by a fresh abstraction")
	}

	if err := os.Remove(filepath.Join(f.buildDir, "MetaCoin.json")); err != nil {
		t.Fatal(err)
	}
	if err := f.console.Provision(context.Background()); err != nil {
		t.Fatalf("Provision() error = %v", err)
	}
	if got := f.mustEval(t, "typeof MetaCoin").String(); got != "undefined" {
		t.Errorf("typeof MetaCoin = %q, want undefined after removal", got)
	}

	writeArtifact(t, f.buildDir, "Broken.json", "{")
	if err := f.console.Provision(context.Background()); err == nil || !strings.Contains(err.Error(), "Broken.json") {
		t.Errorf("Provision() error = %v, want one naming Broken.json", err)
	}
	if got := f.mustEval(t, "typeof ConvertLib").String(); got != "object" {
		t.Error("failed pass dropped existing bindings")
	}
}

func TestConsole_Events(t *testing.T) {
	f := newFixture(t, "")

	var provisioned [][]string
	f.console.On(EventProvisioned, func(e Event) { provisioned = append(provisioned, e.Contracts) })
	exits := 0
	f.console.Once(EventExit, func(Event) { exits++ })

	if err := f.console.Provision(context.Background()); err != nil {
		t.Fatal(err)
	}
	f.console.Close()
	f.console.Close()

	if len(provisioned) != 1 || len(provisioned[0]) != 1 || provisioned[0][0] != "MetaCoin" {
		t.Errorf("provisioned = %v", provisioned)
	}
	if exits != 1 {
		t.Errorf("Once observer ran %d times, want 1", exits)
	}
}

func TestConsole_EvalError(t *testing.T) {
	f := newFixture(t, "")

	_, err := f.eval(t, "undefinedThing")
	var script *ScriptError
	if !errors.As(err, &script) || !strings.Contains(script.Message, "ReferenceError") {
		t.Errorf("error = %v, want ReferenceError", err)
	}
}
