package builtins

import (
	"math"
	"time"

	"github.com/example/evaljs/runtime"
)

// timerFunctions builds setTimeout and friends on top of loop.
func timerFunctions(loop *runtime.Loop) []*runtime.Object {
	schedule := func(name string, repeat bool) *runtime.Object {
		return newFuncObject(name, 2, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
			if loop == nil {
				return nil, typeErrorf("%s is not available without an event loop", name)
			}
			fn := argAt(args, 0)
			if !fn.IsCallable() {
				return nil, typeErrorf("The \"callback\" argument must be of type function. Received %s", runtime.Typeof(fn))
			}
			ms, err := runtime.ToNumber(argAt(args, 1))
			if err != nil {
				return nil, err
			}
			if math.IsNaN(ms) || ms < 1 {
				ms = 0
			}
			var extra []*runtime.Value
			if len(args) > 2 {
				extra = append(extra, args[2:]...)
			}
			id := loop.SetTimer(time.Duration(ms*float64(time.Millisecond)), repeat, func() error {
				_, err := runtime.Call(fn, runtime.Undefined, extra)
				return err
			})
			return runtime.NewNumber(float64(id)), nil
		})
	}
	clear := func(name string) *runtime.Object {
		return newFuncObject(name, 1, func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
			if loop != nil {
				if id := argAt(args, 0); id.Type == runtime.TypeNumber {
					loop.ClearTimer(int(id.Number))
				}
			}
			return runtime.Undefined, nil
		})
	}
	return []*runtime.Object{
		schedule("setTimeout", false),
		schedule("setInterval", true),
		clear("clearTimeout"),
		clear("clearInterval"),
	}
}
