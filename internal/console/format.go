package console

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dop251/goja"
)

// FormatValue renders a result the way the prompt echoes it
func FormatValue(v goja.Value) string {
	switch {
	case v == nil || goja.IsUndefined(v):
		return "undefined"
	case goja.IsNull(v):
		return "null"
	}

	obj, ok := v.(*goja.Object)
	if !ok {
		if s, ok := v.Export().(string); ok {
			return strconv.Quote(s)
		}
		return v.String()
	}

	if _, ok := goja.AssertFunction(obj); ok {
		name := obj.Get("name")
		if name == nil || name.String() == "" {
			return "[Function (anonymous)]"
		}
		return fmt.Sprintf("[Function: %s]", name.String())
	}
	if p, ok := obj.Export().(*goja.Promise); ok {
		return fmt.Sprintf("Promise { <%s> }", promiseState(p))
	}

	data, err := obj.MarshalJSON()
	if err != nil || (string(data) == "{}" && len(obj.Keys()) > 0) {
		return formatKeys(obj)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return string(data)
	}
	return out.String()
}

// formatKeys lists the own keys of objects JSON cannot render, such as
// contract abstractions made of functions
func formatKeys(obj *goja.Object) string {
	var b bytes.Buffer
	b.WriteString("{ ")
	for i, key := range obj.Keys() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(key)
		if _, ok := goja.AssertFunction(obj.Get(key)); ok {
			b.WriteString("()")
		}
	}
	b.WriteString(" }")
	return b.String()
}

func promiseState(p *goja.Promise) string {
	switch p.State() {
	case goja.PromiseStateFulfilled:
		return "fulfilled"
	case goja.PromiseStateRejected:
		return "rejected"
	default:
		return "pending"
	}
}
