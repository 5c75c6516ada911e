package builtins

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/evaljs/runtime"
)

const inspectDepth = 2

func createConsoleObject(stdout, stderr io.Writer) *runtime.Object {
	console := runtime.NewOrdinaryObject(runtime.DefaultObjectPrototype)
	printer := func(w io.Writer) runtime.CallableFunc {
		return func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
			fmt.Fprintln(w, FormatArgs(args))
			return runtime.Undefined, nil
		}
	}
	setMethod(console, "log", 0, printer(stdout))
	setMethod(console, "info", 0, printer(stdout))
	setMethod(console, "debug", 0, printer(stdout))
	setMethod(console, "error", 0, printer(stderr))
	setMethod(console, "warn", 0, printer(stderr))
	return console
}

// FormatArgs renders console arguments separated by spaces. Strings print
// verbatim; other values are inspected.
func FormatArgs(args []*runtime.Value) string {
	parts := make([]string, len(args))
	for i, a := range args {
		if a.Type == runtime.TypeString {
			parts[i] = a.Str
			continue
		}
		parts[i] = inspect(a, 0)
	}
	return strings.Join(parts, " ")
}

// Inspect renders a value for display in the REPL and console.
func Inspect(v *runtime.Value) string {
	return inspect(v, 0)
}

func inspect(v *runtime.Value, depth int) string {
	switch v.Type {
	case runtime.TypeString:
		if depth == 0 {
			return v.Str
		}
		return "'" + strings.ReplaceAll(v.Str, "'", `\'`) + "'"
	case runtime.TypeSymbol:
		return runtime.Describe(v)
	case runtime.TypeObject:
	default:
		return v.ToString()
	}
	obj := v.Object
	switch {
	case obj.Callable != nil:
		name := obj.Get("name").ToString()
		if name == "" {
			return "[Function (anonymous)]"
		}
		return "[Function: " + name + "]"
	case obj.OType == runtime.ObjTypeError:
		return runtime.Describe(v)
	case obj.OType == runtime.ObjTypeRegExp:
		d := regexpDataOf(obj)
		return "/" + d.source + "/" + d.flags
	case obj.OType == runtime.ObjTypeDate:
		s, err := dateToISOString(v, nil)
		if err != nil {
			return "Invalid Date"
		}
		return s.Str
	case obj.OType == runtime.ObjTypeNumber || obj.OType == runtime.ObjTypeBoolean || obj.OType == runtime.ObjTypeString:
		if obj.Primitive != nil {
			return "[" + strings.ToUpper(obj.Primitive.Type.String()[:1]) + obj.Primitive.Type.String()[1:] + ": " + inspect(obj.Primitive, 1) + "]"
		}
	}
	if p, ok := runtime.PromiseOf(v); ok {
		if p.State() == runtime.PromisePending {
			return "Promise { <pending> }"
		}
		return "Promise { " + p.State().String() + " " + inspect(p.Result(), depth+1) + " }"
	}
	if obj.OType == runtime.ObjTypeArray {
		if depth > inspectDepth {
			return "[Array]"
		}
		return describeArray(obj, depth)
	}
	if depth > inspectDepth {
		return "[Object]"
	}
	var parts []string
	if c, ok := obj.Internal["collection"].(*collection); ok {
		_ = c.each(func(e *entry) error {
			if obj.OType == runtime.ObjTypeMap {
				parts = append(parts, inspect(e.key, depth+1)+" => "+inspect(e.value, depth+1))
			} else {
				parts = append(parts, inspect(e.key, depth+1))
			}
			return nil
		})
		prefix := "Map(" + strconv.Itoa(c.live) + ") "
		if obj.OType == runtime.ObjTypeSet {
			prefix = "Set(" + strconv.Itoa(c.live) + ") "
		}
		return prefix + braces(parts)
	}
	for _, k := range obj.Keys() {
		if strings.HasPrefix(k, "@@symbol:") {
			continue
		}
		parts = append(parts, inspectKey(k)+": "+inspect(obj.Get(k), depth+1))
	}
	return braces(parts)
}

func braces(parts []string) string {
	if len(parts) == 0 {
		return "{}"
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

func inspectKey(k string) string {
	for i, r := range k {
		if r == '_' || r == '$' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (i > 0 && r >= '0' && r <= '9') {
			continue
		}
		return "'" + k + "'"
	}
	if k == "" {
		return "''"
	}
	return k
}
