package interpreter

import (
	"fmt"
	"math"

	"github.com/example/evaljs/runtime"
)

type binaryOp func(left, right *runtime.Value) (*runtime.Value, error)

type unaryOp func(v *runtime.Value) (*runtime.Value, error)

var binaryOps = map[string]binaryOp{
	"+":          add,
	"-":          arith(func(a, b float64) float64 { return a - b }),
	"*":          arith(func(a, b float64) float64 { return a * b }),
	"/":          arith(func(a, b float64) float64 { return a / b }),
	"%":          arith(math.Mod),
	"==":         looseEquals(false),
	"!=":         looseEquals(true),
	"===":        strictEquals(false),
	"!==":        strictEquals(true),
	"<":          compare(false, false),
	">":          compare(true, false),
	"<=":         compare(true, true),
	">=":         compare(false, true),
	"&":          bitwise(func(a, b int32) int32 { return a & b }),
	"|":          bitwise(func(a, b int32) int32 { return a | b }),
	"^":          bitwise(func(a, b int32) int32 { return a ^ b }),
	"<<":         shift(func(a int32, n uint32) float64 { return float64(a << n) }),
	">>":         shift(func(a int32, n uint32) float64 { return float64(a >> n) }),
	">>>":        shift(func(a int32, n uint32) float64 { return float64(uint32(a) >> n) }),
	"in":         in,
	"instanceof": instanceOf,
}

// compoundOps maps each compound assignment operator to its binary operator.
var compoundOps = map[string]string{
	"+=":   "+",
	"-=":   "-",
	"*=":   "*",
	"/=":   "/",
	"%=":   "%",
	"<<=":  "<<",
	">>=":  ">>",
	">>>=": ">>>",
	"&=":   "&",
	"|=":   "|",
	"^=":   "^",
}

var unaryOps = map[string]unaryOp{
	"-": func(v *runtime.Value) (*runtime.Value, error) {
		n, err := runtime.ToNumber(v)
		if err != nil {
			return nil, err
		}
		return runtime.NewNumber(-n), nil
	},
	"+": func(v *runtime.Value) (*runtime.Value, error) {
		n, err := runtime.ToNumber(v)
		if err != nil {
			return nil, err
		}
		return runtime.NewNumber(n), nil
	},
	"!": func(v *runtime.Value) (*runtime.Value, error) {
		return runtime.NewBool(!v.ToBoolean()), nil
	},
	"~": func(v *runtime.Value) (*runtime.Value, error) {
		n, err := runtime.ToNumber(v)
		if err != nil {
			return nil, err
		}
		return runtime.NewNumber(float64(^runtime.ToInt32(n))), nil
	},
	"typeof": func(v *runtime.Value) (*runtime.Value, error) {
		return runtime.NewString(runtime.Typeof(v)), nil
	},
	"void": func(*runtime.Value) (*runtime.Value, error) {
		return runtime.Undefined, nil
	},
}

// logicalOps report whether the right operand must be evaluated; otherwise
// the left value is the result.
var logicalOps = map[string]func(left *runtime.Value) bool{
	"&&": func(v *runtime.Value) bool { return v.ToBoolean() },
	"||": func(v *runtime.Value) bool { return !v.ToBoolean() },
}

// updateOps holds the numeric step of ++ and --.
var updateOps = map[string]float64{
	"++": 1,
	"--": -1,
}

func add(left, right *runtime.Value) (*runtime.Value, error) {
	lp, err := runtime.ToPrimitive(left, runtime.HintDefault)
	if err != nil {
		return nil, err
	}
	rp, err := runtime.ToPrimitive(right, runtime.HintDefault)
	if err != nil {
		return nil, err
	}
	if lp.Type == runtime.TypeString || rp.Type == runtime.TypeString {
		ls, err := runtime.ToString(lp)
		if err != nil {
			return nil, err
		}
		rs, err := runtime.ToString(rp)
		if err != nil {
			return nil, err
		}
		return runtime.NewString(ls + rs), nil
	}
	return arith(func(a, b float64) float64 { return a + b })(lp, rp)
}

func numbers(left, right *runtime.Value) (float64, float64, error) {
	a, err := runtime.ToNumber(left)
	if err != nil {
		return 0, 0, err
	}
	b, err := runtime.ToNumber(right)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func arith(fn func(a, b float64) float64) binaryOp {
	return func(left, right *runtime.Value) (*runtime.Value, error) {
		a, b, err := numbers(left, right)
		if err != nil {
			return nil, err
		}
		return runtime.NewNumber(fn(a, b)), nil
	}
}

func bitwise(fn func(a, b int32) int32) binaryOp {
	return func(left, right *runtime.Value) (*runtime.Value, error) {
		a, b, err := numbers(left, right)
		if err != nil {
			return nil, err
		}
		return runtime.NewNumber(float64(fn(runtime.ToInt32(a), runtime.ToInt32(b)))), nil
	}
}

func shift(fn func(a int32, n uint32) float64) binaryOp {
	return func(left, right *runtime.Value) (*runtime.Value, error) {
		a, b, err := numbers(left, right)
		if err != nil {
			return nil, err
		}
		return runtime.NewNumber(fn(runtime.ToInt32(a), runtime.ToUint32(b)&0x1f)), nil
	}
}

func looseEquals(negate bool) binaryOp {
	return func(left, right *runtime.Value) (*runtime.Value, error) {
		eq, err := runtime.LooseEquals(left, right)
		if err != nil {
			return nil, err
		}
		return runtime.NewBool(eq != negate), nil
	}
}

func strictEquals(negate bool) binaryOp {
	return func(left, right *runtime.Value) (*runtime.Value, error) {
		return runtime.NewBool(runtime.StrictEquals(left, right) != negate), nil
	}
}

// compare implements the relational operators on top of a single
// less-than test. swap exchanges the operands; negate inverts the result,
// with an undefined (NaN) comparison always false.
func compare(swap, negate bool) binaryOp {
	return func(left, right *runtime.Value) (*runtime.Value, error) {
		lp, err := runtime.ToPrimitive(left, runtime.HintNumber)
		if err != nil {
			return nil, err
		}
		rp, err := runtime.ToPrimitive(right, runtime.HintNumber)
		if err != nil {
			return nil, err
		}
		if swap {
			lp, rp = rp, lp
		}
		less, ok, err := lessThan(lp, rp)
		if err != nil {
			return nil, err
		}
		if !ok {
			return runtime.False, nil
		}
		return runtime.NewBool(less != negate), nil
	}
}

// lessThan reports a < b for primitives. ok is false when either side is
// NaN.
func lessThan(a, b *runtime.Value) (less, ok bool, err error) {
	if a.Type == runtime.TypeString && b.Type == runtime.TypeString {
		au, bu := runtime.UTF16(a.Str), runtime.UTF16(b.Str)
		for i := 0; i < len(au) && i < len(bu); i++ {
			if au[i] != bu[i] {
				return au[i] < bu[i], true, nil
			}
		}
		return len(au) < len(bu), true, nil
	}
	x, y, err := numbers(a, b)
	if err != nil {
		return false, false, err
	}
	if math.IsNaN(x) || math.IsNaN(y) {
		return false, false, nil
	}
	return x < y, true, nil
}

func in(left, right *runtime.Value) (*runtime.Value, error) {
	if right.Type != runtime.TypeObject {
		return nil, fmt.Errorf("TypeError: Cannot use 'in' operator to search for '%s' in %s", left.ToString(), right.ToString())
	}
	key, err := runtime.ToPropertyKey(left)
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(right.Object.HasProperty(key)), nil
}

func instanceOf(left, right *runtime.Value) (*runtime.Value, error) {
	if !right.IsCallable() {
		return nil, fmt.Errorf("TypeError: Right-hand side of 'instanceof' is not callable")
	}
	if left.Type != runtime.TypeObject {
		return runtime.False, nil
	}
	proto, err := right.Object.Lookup("prototype")
	if err != nil {
		return nil, err
	}
	if proto.Type != runtime.TypeObject {
		return nil, fmt.Errorf("TypeError: Function has non-object prototype '%s' in instanceof check", proto.ToString())
	}
	return runtime.NewBool(left.Object.InstanceOf(proto.Object)), nil
}
