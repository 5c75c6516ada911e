package builtins

import (
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/example/evaljs/runtime"
)

func createNumberConstructor(objProto *runtime.Object) *runtime.Object {
	proto := runtime.NewOrdinaryObject(objProto)
	proto.OType = runtime.ObjTypeNumber
	proto.Primitive = runtime.Zero
	runtime.DefaultNumberPrototype = proto

	setMethod(proto, "toFixed", 1, numberToFixed)
	setMethod(proto, "toPrecision", 1, numberToPrecision)
	setMethod(proto, "toExponential", 1, numberToExponential)
	setMethod(proto, "toString", 1, numberToString)
	setMethod(proto, "toLocaleString", 0, numberToString)
	setMethod(proto, "valueOf", 0, numberValueOf)

	ctor := newConstructor("Number", 1, proto, numberConstructorCall, func(args []*runtime.Value) (*runtime.Value, error) {
		n, err := numberConstructorCall(runtime.Undefined, args)
		if err != nil {
			return nil, err
		}
		obj, _ := runtime.ToObject(n)
		return runtime.NewObject(obj), nil
	})

	setMethod(ctor, "isInteger", 1, numberIsInteger)
	setMethod(ctor, "isFinite", 1, numberIsFinite)
	setMethod(ctor, "isNaN", 1, numberIsNaN)
	setMethod(ctor, "isSafeInteger", 1, numberIsSafeInteger)
	setMethod(ctor, "parseInt", 2, globalParseInt)
	setMethod(ctor, "parseFloat", 1, globalParseFloat)

	setConstant(ctor, "EPSILON", runtime.NewNumber(math.Nextafter(1, 2)-1))
	setConstant(ctor, "MAX_SAFE_INTEGER", runtime.NewNumber(9007199254740991))
	setConstant(ctor, "MIN_SAFE_INTEGER", runtime.NewNumber(-9007199254740991))
	setConstant(ctor, "MAX_VALUE", runtime.NewNumber(math.MaxFloat64))
	setConstant(ctor, "MIN_VALUE", runtime.NewNumber(math.SmallestNonzeroFloat64))
	setConstant(ctor, "NaN", runtime.NaN)
	setConstant(ctor, "POSITIVE_INFINITY", runtime.PosInf)
	setConstant(ctor, "NEGATIVE_INFINITY", runtime.NegInf)
	return ctor
}

func numberConstructorCall(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	if len(args) == 0 {
		return runtime.Zero, nil
	}
	n, err := runtime.ToNumber(args[0])
	if err != nil {
		return nil, err
	}
	return runtime.NewNumber(n), nil
}

func numberValueOf(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	n, err := thisNumberValue(this, "valueOf")
	if err != nil {
		return nil, err
	}
	return runtime.NewNumber(n), nil
}

// digitsArg reads a fraction-digits argument and checks it against [lo, 100].
func digitsArg(args []*runtime.Value, lo int, method string) (int, error) {
	d := toInteger(argAt(args, 0))
	if d < float64(lo) || d > 100 {
		return 0, rangeErrorf("%s() argument must be between %d and 100", method, lo)
	}
	return int(d), nil
}

// roundFixed formats |x| with digits fraction digits, rounding ties away
// from zero.
func roundFixed(x float64, digits int) string {
	exact := new(big.Float).SetFloat64(math.Abs(x)).Text('f', 1100)
	dot := strings.IndexByte(exact, '.')
	intPart, frac := exact[:dot], exact[dot+1:]
	kept := []byte(intPart + frac[:digits])
	if frac[digits] >= '5' {
		i := len(kept) - 1
		for ; i >= 0; i-- {
			if kept[i] < '9' {
				kept[i]++
				break
			}
			kept[i] = '0'
		}
		if i < 0 {
			kept = append([]byte{'1'}, kept...)
		}
	}
	n := len(kept) - digits
	if digits == 0 {
		return string(kept)
	}
	return string(kept[:n]) + "." + string(kept[n:])
}

func numberToFixed(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	n, err := thisNumberValue(this, "toFixed")
	if err != nil {
		return nil, err
	}
	digits, err := digitsArg(args, 0, "toFixed")
	if err != nil {
		return nil, err
	}
	if math.IsNaN(n) || math.Abs(n) >= 1e21 {
		return runtime.NewString(runtime.FormatNumber(n)), nil
	}
	s := roundFixed(n, digits)
	if n < 0 && strings.Trim(s, "0.") != "" {
		s = "-" + s
	}
	return runtime.NewString(s), nil
}

// jsExponent rewrites Go's "e+05" exponent into the "e+5" form.
func jsExponent(s string) string {
	i := strings.IndexByte(s, 'e')
	if i < 0 {
		return s
	}
	mant, exp := s[:i], s[i+1:]
	sign := exp[0]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mant + "e" + string(sign) + digits
}

func numberToExponential(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	n, err := thisNumberValue(this, "toExponential")
	if err != nil {
		return nil, err
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return runtime.NewString(runtime.FormatNumber(n)), nil
	}
	digits := -1
	if argAt(args, 0).Type != runtime.TypeUndefined {
		if digits, err = digitsArg(args, 0, "toExponential"); err != nil {
			return nil, err
		}
	}
	return runtime.NewString(jsExponent(strconv.FormatFloat(n, 'e', digits, 64))), nil
}

func numberToPrecision(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	n, err := thisNumberValue(this, "toPrecision")
	if err != nil {
		return nil, err
	}
	if argAt(args, 0).Type == runtime.TypeUndefined || math.IsNaN(n) || math.IsInf(n, 0) {
		return runtime.NewString(runtime.FormatNumber(n)), nil
	}
	p, err := digitsArg(args, 1, "toPrecision")
	if err != nil {
		return nil, err
	}
	if n == 0 {
		if p == 1 {
			return runtime.NewString("0"), nil
		}
		return runtime.NewString("0." + strings.Repeat("0", p-1)), nil
	}
	e := strconv.FormatFloat(n, 'e', p-1, 64)
	exp, _ := strconv.Atoi(e[strings.IndexByte(e, 'e')+1:])
	if exp < -6 || exp >= p {
		return runtime.NewString(jsExponent(e)), nil
	}
	return runtime.NewString(strconv.FormatFloat(n, 'f', p-1-exp, 64)), nil
}

func numberToString(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	n, err := thisNumberValue(this, "toString")
	if err != nil {
		return nil, err
	}
	radix := 10
	if r := argAt(args, 0); r.Type != runtime.TypeUndefined {
		radix = int(toInteger(r))
	}
	if radix < 2 || radix > 36 {
		return nil, rangeErrorf("toString() radix must be between 2 and 36")
	}
	if radix == 10 || math.IsNaN(n) || math.IsInf(n, 0) {
		return runtime.NewString(runtime.FormatNumber(n)), nil
	}
	return runtime.NewString(formatRadix(n, radix)), nil
}

// formatRadix renders n in the given base with up to 52 fraction digits.
func formatRadix(n float64, radix int) string {
	neg := n < 0
	n = math.Abs(n)
	ip, fp := math.Modf(n)
	var s string
	if ip < 1<<53 {
		s = strconv.FormatInt(int64(ip), radix)
	} else {
		bi, _ := new(big.Float).SetFloat64(ip).Int(nil)
		s = bi.Text(radix)
	}
	if fp > 0 {
		var b strings.Builder
		b.WriteByte('.')
		for i := 0; i < 52 && fp > 0; i++ {
			fp *= float64(radix)
			d := int(fp)
			b.WriteByte("0123456789abcdefghijklmnopqrstuvwxyz"[d])
			fp -= float64(d)
		}
		s += b.String()
	}
	if neg {
		return "-" + s
	}
	return s
}

func numberArg(args []*runtime.Value) (float64, bool) {
	a := argAt(args, 0)
	return a.Number, a.Type == runtime.TypeNumber
}

func numberIsInteger(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	n, ok := numberArg(args)
	return runtime.NewBool(ok && !math.IsInf(n, 0) && math.Trunc(n) == n), nil
}

func numberIsFinite(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	n, ok := numberArg(args)
	return runtime.NewBool(ok && !math.IsNaN(n) && !math.IsInf(n, 0)), nil
}

func numberIsNaN(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	n, ok := numberArg(args)
	return runtime.NewBool(ok && math.IsNaN(n)), nil
}

func numberIsSafeInteger(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	n, ok := numberArg(args)
	return runtime.NewBool(ok && !math.IsInf(n, 0) && math.Trunc(n) == n && math.Abs(n) <= 9007199254740991), nil
}
