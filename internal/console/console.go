// ============================================================================
// kontrakt - Contract Development Console
// ============================================================================
//
// Package:     console
// Description: Interactive session evaluating commands and expressions
// Created:     2026-10-14
// License:     MIT
// ============================================================================

// Package console implements the interactive contract console.
//
// Every input line is classified first. Lines naming a registered command
// run in a child process of the same binary, after which the contract
// abstractions are provisioned again. Everything else is evaluated as
// JavaScript in a persistent execution context that holds one binding per
// compiled contract. Top-level await is supported by rewriting the input
// into an async wrapper.
//
// Evaluation is strictly sequential; the runtime is only used from the
// goroutine calling Eval.
package console

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/dop251/goja"

	"github.com/msto63/kontrakt/internal/artifacts"
	"github.com/msto63/kontrakt/internal/contract"
	"github.com/msto63/kontrakt/internal/provider"
	"github.com/msto63/kontrakt/pkg/core/config"
	"github.com/msto63/kontrakt/pkg/core/kerror"
	"github.com/msto63/kontrakt/pkg/core/logging"
)

// Resolver loads a single contract abstraction by name
type Resolver interface {
	Require(name string) (*contract.Contract, error)
}

// Options configures a console session
type Options struct {
	ProgramName             string
	WorkingDirectory        string
	ContractsDirectory      string
	ContractsBuildDirectory string
	MigrationsDirectory     string

	Network   string
	NetworkID config.NetworkID
	Networks  map[string]config.NetworkConfig
	// ConfigPath is handed to dispatched commands
	ConfigPath string

	Provider provider.Provider
	Resolver Resolver
	Logger   *logging.Logger
	Registry CommandRegistry

	// Optional
	NoAliases  bool
	Dispatcher *Dispatcher
	In         io.Reader
	Out        io.Writer
	Exit       func(code int)
}

// Validate reports every missing required option at once
func (o Options) Validate() error {
	var missing []string
	check := func(ok bool, name string) {
		if !ok {
			missing = append(missing, name)
		}
	}
	check(o.ProgramName != "", "ProgramName")
	check(o.WorkingDirectory != "", "WorkingDirectory")
	check(o.ContractsDirectory != "", "ContractsDirectory")
	check(o.ContractsBuildDirectory != "", "ContractsBuildDirectory")
	check(o.MigrationsDirectory != "", "MigrationsDirectory")
	check(o.Network != "", "Network")
	check(o.NetworkID != "", "NetworkID")
	check(len(o.Networks) > 0, "Networks")
	check(o.Provider != nil, "Provider")
	check(o.Resolver != nil, "Resolver")
	check(o.Logger != nil, "Logger")
	check(o.Registry != nil, "Registry")

	if len(missing) > 0 {
		return kerror.Newf(kerror.CodeConfiguration, "missing required options: %s", strings.Join(missing, ", ")).
			WithDetail("missing", missing)
	}
	return nil
}

// Console is an interactive session
type Console struct {
	opts   Options
	logger *logging.Logger

	scope       *ExecutionContext
	executor    *Executor
	classifier  *Classifier
	dispatcher  *Dispatcher
	provisioner *artifacts.Provisioner

	events   observers
	exitOnce sync.Once

	state  State
	trail  []State
	evalMu sync.Mutex
	ctx    context.Context
}

// New creates a console. Nothing is provisioned until Start.
func New(opts Options) (*Console, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Exit == nil {
		opts.Exit = os.Exit
	}

	c := &Console{
		opts:       opts,
		logger:     opts.Logger.With("network", opts.Network),
		scope:      NewExecutionContext(),
		classifier: NewClassifier(opts.ProgramName, opts.Registry, opts.NoAliases),
		ctx:        context.Background(),
	}
	c.executor = NewExecutor(c.scope)
	c.executor.onState = c.setState

	binding := contract.Binding{
		Network:   opts.Network,
		NetworkID: opts.NetworkID,
		Config:    opts.Networks[opts.Network],
		Provider:  opts.Provider,
	}
	c.provisioner = artifacts.NewProvisioner(opts.ContractsBuildDirectory, binding, c.logger)

	c.dispatcher = opts.Dispatcher
	if c.dispatcher == nil {
		c.dispatcher = NewDispatcher(DispatcherConfig{
			ConfigPath: opts.ConfigPath,
			Dir:        opts.WorkingDirectory,
			Network:    opts.Network,
			Networks:   opts.Networks,
			Stdin:      opts.In,
			Stdout:     opts.Out,
			Logger:     c.logger,
		})
	}
	c.dispatcher.Reprovision = c.reprovision
	c.dispatcher.AfterDispatch = c.registerExit

	if err := c.installGlobals(); err != nil {
		return nil, kerror.Wrap(err, kerror.CodeConfiguration, "cannot install console globals")
	}
	return c, nil
}

// Start runs the first provisioning pass, loads accounts and emits EventReady
func (c *Console) Start(ctx context.Context) error {
	if err := c.Provision(ctx); err != nil {
		return err
	}
	c.loadAccounts(ctx)
	c.events.emit(Event{Kind: EventReady, Contracts: c.scope.Bound()})
	c.logger.Info("Console ready", "contracts", len(c.scope.Bound()))
	return nil
}

// Provision builds fresh abstractions from the build directory and merges
// them into the execution context
func (c *Console) Provision(ctx context.Context) error {
	contracts, err := c.provisioner.Provision(ctx)
	if err != nil {
		return err
	}

	bindings := make(map[string]goja.Value, len(contracts))
	for _, k := range contracts {
		bindings[k.Name()] = c.contractObject(k)
	}
	if removed := c.scope.Merge(bindings); len(removed) > 0 {
		c.logger.Debug("Removed stale contract bindings", "names", removed)
	}

	c.events.emit(Event{Kind: EventProvisioned, Contracts: c.scope.Bound()})
	return nil
}

func (c *Console) reprovision(ctx context.Context) error {
	c.setState(StateReprovisioning)
	return c.Provision(ctx)
}

// registerExit makes the end of the session terminate the process. It is
// registered at most once however many commands are dispatched.
func (c *Console) registerExit() {
	c.exitOnce.Do(func() {
		c.Once(EventExit, func(Event) {
			c.opts.Exit(0)
		})
	})
}

// On registers fn for every event of kind
func (c *Console) On(kind EventKind, fn func(Event)) {
	c.events.add(kind, fn, false)
}

// Once registers fn for the next event of kind
func (c *Console) Once(kind EventKind, fn func(Event)) {
	c.events.add(kind, fn, true)
}

// State returns the state of the current evaluation
func (c *Console) State() State {
	return c.state
}

// Runtime returns the runtime of the execution context
func (c *Console) Runtime() *goja.Runtime {
	return c.scope.vm
}

// Close ends the session and emits EventExit
func (c *Console) Close() {
	c.events.emit(Event{Kind: EventExit})
}

func (c *Console) setState(s State) {
	c.state = s
	c.trail = append(c.trail, s)
}

func (c *Console) evalContext() context.Context {
	return c.ctx
}

// Eval evaluates one input and reports the outcome to done before
// returning. filename labels compiled input; empty means Filename.
func (c *Console) Eval(ctx context.Context, input, filename string, done func(err error, value goja.Value)) {
	c.evalMu.Lock()
	defer c.evalMu.Unlock()

	c.ctx = ctx
	defer func() { c.ctx = context.Background() }()
	c.trail = nil

	if filename != "" {
		c.executor.filename = filename
	} else {
		c.executor.filename = Filename
	}

	c.setState(StateReceived)
	path, value, err := c.evaluate(ctx, input)
	if err != nil {
		c.setState(StateReportingError)
	}
	c.setState(StateIdle)

	c.events.emit(Event{
		Kind:   EventEvaluated,
		Input:  input,
		Path:   path,
		States: append([]State(nil), c.trail...),
		Err:    err,
	})
	if done != nil {
		done(err, value)
	}
}

func (c *Console) evaluate(ctx context.Context, input string) (Path, goja.Value, error) {
	c.setState(StateClassifying)
	if text, ok := c.classifier.Classify(input); ok {
		c.setState(StateDispatching)
		return PathCommand, nil, c.dispatcher.Dispatch(ctx, text)
	}

	c.setState(StateRewriting)
	value, err := c.executor.Execute(ctx, RewriteInput(input))
	return PathExpression, value, err
}
