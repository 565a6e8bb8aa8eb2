package console

import (
	"sort"

	"github.com/dop251/goja"
)

// ExecutionContext is the persistent global scope expressions run in.
//
// Provisioning passes are merged into it: names bound by the previous pass
// are rebound, names that disappeared are removed unless the user has since
// rebound them, and every other global the user created is left alone.
type ExecutionContext struct {
	vm    *goja.Runtime
	bound map[string]goja.Value

	promise *goja.Object
	resolve goja.Callable
	reject  goja.Callable
}

// NewExecutionContext creates a fresh runtime
func NewExecutionContext() *ExecutionContext {
	vm := goja.New()
	vm.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))

	ctor := vm.Get("Promise").ToObject(vm)
	resolve, _ := goja.AssertFunction(ctor.Get("resolve"))
	reject, _ := goja.AssertFunction(ctor.Get("reject"))

	return &ExecutionContext{
		vm:      vm,
		bound:   make(map[string]goja.Value),
		promise: ctor,
		resolve: resolve,
		reject:  reject,
	}
}

// Runtime returns the underlying runtime
func (c *ExecutionContext) Runtime() *goja.Runtime {
	return c.vm
}

// Set binds a global that is not part of provisioning
func (c *ExecutionContext) Set(name string, value interface{}) error {
	return c.vm.Set(name, value)
}

// Merge binds every entry of bindings and removes the names of the
// previous merge that are missing now. It returns the removed names.
func (c *ExecutionContext) Merge(bindings map[string]goja.Value) []string {
	var removed []string
	global := c.vm.GlobalObject()

	for name, prev := range c.bound {
		if _, ok := bindings[name]; ok {
			continue
		}
		if cur := global.Get(name); cur != nil && cur.SameAs(prev) {
			_ = global.Delete(name)
			removed = append(removed, name)
		}
	}

	next := make(map[string]goja.Value, len(bindings))
	for name, value := range bindings {
		_ = global.Set(name, value)
		next[name] = value
	}
	c.bound = next

	sort.Strings(removed)
	return removed
}

// Bound returns the names bound by the last merge
func (c *ExecutionContext) Bound() []string {
	names := make([]string, 0, len(c.bound))
	for name := range c.bound {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolved returns a promise fulfilled with value
func (c *ExecutionContext) Resolved(value interface{}) goja.Value {
	return c.settled(c.resolve, c.vm.ToValue(value))
}

// Rejected returns a promise rejected with a Go error object wrapping err
func (c *ExecutionContext) Rejected(err error) goja.Value {
	return c.settled(c.reject, c.vm.NewGoError(err))
}

func (c *ExecutionContext) settled(fn goja.Callable, arg goja.Value) goja.Value {
	p, err := fn(c.promise, arg)
	if err != nil {
		panic(c.vm.NewGoError(err))
	}
	return p
}

// Throw raises err as a Go error object inside the running script
func (c *ExecutionContext) Throw(err error) {
	panic(c.vm.NewGoError(err))
}
