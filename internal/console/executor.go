package console

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dop251/goja"
	"github.com/dop251/goja/parser"

	"github.com/msto63/kontrakt/pkg/core/kerror"
)

// Filename labels compiled input in error positions and stack traces
const Filename = "repl"

var (
	// ErrUnsettled is returned when a promise is still pending after the
	// job queue has drained
	ErrUnsettled = errors.New("promise did not settle")

	// ErrInterrupted is returned when an evaluation is cancelled
	ErrInterrupted = errors.New("script execution interrupted")
)

// incompleteMessage is what the parser reports when input ends early
const incompleteMessage = "Unexpected end of input"

// CodeError is a compilation failure. Nothing was executed.
type CodeError struct {
	Message string
	// Line and Column are 1-based positions in the user's input
	Line   int
	Column int
	// Incomplete reports that more input could complete the source
	Incomplete bool
}

func (e *CodeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("SyntaxError: %s (line %d, col %d)", e.Message, e.Line, e.Column)
	}
	return "SyntaxError: " + e.Message
}

// ScriptError is an exception raised by evaluated code
type ScriptError struct {
	Message string
	Stack   string
}

func (e *ScriptError) Error() string {
	return e.Message
}

// Executor compiles and runs rewritten input against an execution context
type Executor struct {
	ctx      *ExecutionContext
	filename string

	// onState is told about every state the executor enters
	onState func(State)
}

// NewExecutor creates an executor for ctx
func NewExecutor(ctx *ExecutionContext) *Executor {
	return &Executor{ctx: ctx, filename: Filename, onState: func(State) {}}
}

// Execute compiles rw and runs it. A promise result is settled. For an
// assignment capture the settled value is handed to the epilogue and is also
// the result; the slot is always released.
func (e *Executor) Execute(ctx context.Context, rw Rewrite) (goja.Value, error) {
	e.onState(StateCompiling)
	prog, err := e.compile(rw.Source, rw.LineOffset())
	if err != nil {
		return nil, err
	}

	e.onState(StateExecuting)
	value, err := e.run(ctx, prog)
	if err != nil {
		return nil, err
	}
	value, err = e.settle(value)
	if err != nil {
		return nil, err
	}

	if rw.Epilogue == "" {
		return value, nil
	}
	e.onState(StateAssigningEpilogue)
	return e.assign(ctx, rw, value)
}

func (e *Executor) compile(src string, lineOffset int) (*goja.Program, error) {
	ast, err := parser.ParseFile(nil, e.filename, src, 0)
	if err != nil {
		return nil, codeError(err, lineOffset)
	}
	prog, err := goja.CompileAST(ast, false)
	if err != nil {
		return nil, codeError(err, lineOffset)
	}
	return prog, nil
}

func codeError(err error, lineOffset int) *CodeError {
	var list parser.ErrorList
	if errors.As(err, &list) && len(list) > 0 {
		first := list[0]
		line := first.Position.Line - lineOffset
		if line < 1 {
			line = 1
		}
		return &CodeError{
			Message:    first.Message,
			Line:       line,
			Column:     first.Position.Column,
			Incomplete: strings.Contains(first.Message, incompleteMessage),
		}
	}

	var syntax *goja.CompilerSyntaxError
	if errors.As(err, &syntax) {
		return &CodeError{
			Message:    syntax.Message,
			Incomplete: strings.Contains(syntax.Message, incompleteMessage),
		}
	}
	return &CodeError{Message: err.Error()}
}

// run executes prog, interrupting the runtime when ctx is cancelled. The
// watcher is joined before the interrupt flag is cleared so a late
// interrupt cannot leak into the next run.
func (e *Executor) run(ctx context.Context, prog *goja.Program) (goja.Value, error) {
	vm := e.ctx.vm
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-ctx.Done():
			vm.Interrupt(ErrInterrupted)
		case <-done:
		}
	}()

	value, err := vm.RunProgram(prog)
	close(done)
	wg.Wait()
	vm.ClearInterrupt()

	if err != nil {
		return nil, e.convert(err)
	}
	return value, nil
}

func (e *Executor) settle(value goja.Value) (goja.Value, error) {
	if value == nil {
		return goja.Undefined(), nil
	}
	p, ok := value.Export().(*goja.Promise)
	if !ok {
		return value, nil
	}
	switch p.State() {
	case goja.PromiseStateFulfilled:
		return p.Result(), nil
	case goja.PromiseStateRejected:
		return nil, e.thrown(p.Result(), "")
	default:
		return nil, ErrUnsettled
	}
}

func (e *Executor) assign(ctx context.Context, rw Rewrite, value goja.Value) (goja.Value, error) {
	global := e.ctx.vm.GlobalObject()
	if err := global.Set(rw.Slot, value); err != nil {
		return nil, e.convert(err)
	}
	defer func() { _ = global.Delete(rw.Slot) }()

	prog, err := e.compile(rw.Epilogue, 0)
	if err != nil {
		return nil, err
	}
	if _, err := e.run(ctx, prog); err != nil {
		return nil, err
	}
	return value, nil
}

func (e *Executor) convert(err error) error {
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return ErrInterrupted
	}
	var exception *goja.Exception
	if errors.As(err, &exception) {
		return e.thrown(exception.Value(), exception.String())
	}
	return err
}

// thrown converts a thrown or rejected value. Go domain errors raised from
// bindings come back as themselves; anything else is a ScriptError.
func (e *Executor) thrown(v goja.Value, stack string) error {
	if v == nil {
		return &ScriptError{Message: "undefined", Stack: stack}
	}
	if obj, ok := v.(*goja.Object); ok {
		if inner := obj.Get("value"); inner != nil {
			if err, ok := inner.Export().(error); ok {
				if domain, ok := kerror.As(err); ok {
					return domain
				}
			}
		}
		if s := obj.Get("stack"); s != nil && !goja.IsUndefined(s) && !goja.IsNull(s) {
			stack = s.String()
		}
	}

	msg := v.String()
	if stack == "" {
		stack = msg
	}
	return &ScriptError{Message: msg, Stack: stack}
}
