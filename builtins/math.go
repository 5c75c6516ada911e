package builtins

import (
	"math"
	"math/bits"
	"math/rand/v2"

	"github.com/example/evaljs/runtime"
)

func createMathObject(objProto *runtime.Object) *runtime.Object {
	m := runtime.NewOrdinaryObject(objProto)
	m.Internal = map[string]interface{}{"toStringTag": "Math"}

	setConstant(m, "PI", runtime.NewNumber(math.Pi))
	setConstant(m, "E", runtime.NewNumber(math.E))
	setConstant(m, "LN2", runtime.NewNumber(math.Ln2))
	setConstant(m, "LN10", runtime.NewNumber(math.Ln10))
	setConstant(m, "LOG2E", runtime.NewNumber(math.Log2E))
	setConstant(m, "LOG10E", runtime.NewNumber(math.Log10E))
	setConstant(m, "SQRT2", runtime.NewNumber(math.Sqrt2))
	setConstant(m, "SQRT1_2", runtime.NewNumber(math.Sqrt2/2))

	unary := map[string]func(float64) float64{
		"abs":   math.Abs,
		"ceil":  math.Ceil,
		"floor": math.Floor,
		"round": jsRound,
		"trunc": math.Trunc,
		"sign":  jsSign,
		"sqrt":  math.Sqrt,
		"cbrt":  math.Cbrt,
		"log":   math.Log,
		"log2":  math.Log2,
		"log10": math.Log10,
		"exp":   math.Exp,
		"expm1": math.Expm1,
		"log1p": math.Log1p,
		"sin":   math.Sin,
		"cos":   math.Cos,
		"tan":   math.Tan,
		"asin":  math.Asin,
		"acos":  math.Acos,
		"atan":  math.Atan,
		"sinh":  math.Sinh,
		"cosh":  math.Cosh,
		"tanh":  math.Tanh,
		"fround": func(x float64) float64 {
			return float64(float32(x))
		},
		"clz32": func(x float64) float64 {
			return float64(bits.LeadingZeros32(runtime.ToUint32(x)))
		},
	}
	for _, name := range []string{"abs", "ceil", "floor", "round", "trunc", "sign", "sqrt", "cbrt",
		"log", "log2", "log10", "exp", "expm1", "log1p", "sin", "cos", "tan", "asin", "acos", "atan",
		"sinh", "cosh", "tanh", "fround", "clz32"} {
		setMethod(m, name, 1, mathUnary(unary[name]))
	}
	setMethod(m, "atan2", 2, mathBinary(math.Atan2))
	setMethod(m, "pow", 2, mathBinary(jsPow))
	setMethod(m, "imul", 2, mathBinary(func(a, b float64) float64 {
		return float64(runtime.ToInt32(a) * runtime.ToInt32(b))
	}))
	setMethod(m, "max", 2, mathMax)
	setMethod(m, "min", 2, mathMin)
	setMethod(m, "hypot", 2, mathHypot)
	setMethod(m, "random", 0, mathRandom)
	return m
}

func numbers(args []*runtime.Value) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		n, err := runtime.ToNumber(a)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func mathUnary(fn func(float64) float64) runtime.CallableFunc {
	return func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		n, err := runtime.ToNumber(argAt(args, 0))
		if err != nil {
			return nil, err
		}
		return runtime.NewNumber(fn(n)), nil
	}
}

func mathBinary(fn func(a, b float64) float64) runtime.CallableFunc {
	return func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		ns, err := numbers([]*runtime.Value{argAt(args, 0), argAt(args, 1)})
		if err != nil {
			return nil, err
		}
		return runtime.NewNumber(fn(ns[0], ns[1])), nil
	}
}

// jsRound rounds half-way cases towards +Infinity.
func jsRound(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) || x == 0 {
		return x
	}
	if x > 0 && x < 0.5 {
		return 0
	}
	if x < 0 && x >= -0.5 {
		return math.Copysign(0, -1)
	}
	f := math.Floor(x)
	if x-f >= 0.5 {
		return f + 1
	}
	return f
}

func jsSign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return x
}

// jsPow differs from math.Pow where the base has magnitude 1 and the
// exponent is infinite, or the exponent is NaN.
func jsPow(x, y float64) float64 {
	if math.IsNaN(y) || (math.Abs(x) == 1 && math.IsInf(y, 0)) {
		return math.NaN()
	}
	return math.Pow(x, y)
}

func mathMax(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	ns, err := numbers(args)
	if err != nil {
		return nil, err
	}
	result := math.Inf(-1)
	for _, n := range ns {
		if math.IsNaN(n) {
			return runtime.NaN, nil
		}
		result = math.Max(result, n)
	}
	return runtime.NewNumber(result), nil
}

func mathMin(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	ns, err := numbers(args)
	if err != nil {
		return nil, err
	}
	result := math.Inf(1)
	for _, n := range ns {
		if math.IsNaN(n) {
			return runtime.NaN, nil
		}
		result = math.Min(result, n)
	}
	return runtime.NewNumber(result), nil
}

func mathHypot(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	ns, err := numbers(args)
	if err != nil {
		return nil, err
	}
	sum, nan := 0.0, false
	for _, n := range ns {
		if math.IsInf(n, 0) {
			return runtime.PosInf, nil
		}
		nan = nan || math.IsNaN(n)
		sum += n * n
	}
	if nan {
		return runtime.NaN, nil
	}
	return runtime.NewNumber(math.Sqrt(sum)), nil
}

func mathRandom(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	return runtime.NewNumber(rand.Float64()), nil
}
