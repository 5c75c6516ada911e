package builtins

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/example/evaljs/runtime"
)

// globalFunctions builds the global function bindings.
func globalFunctions() []*runtime.Object {
	return []*runtime.Object{
		newFuncObject("parseInt", 2, globalParseInt),
		newFuncObject("parseFloat", 1, globalParseFloat),
		newFuncObject("isNaN", 1, globalIsNaN),
		newFuncObject("isFinite", 1, globalIsFinite),
		newFuncObject("encodeURI", 1, globalEncodeURI),
		newFuncObject("decodeURI", 1, globalDecodeURI),
		newFuncObject("encodeURIComponent", 1, globalEncodeURIComponent),
		newFuncObject("decodeURIComponent", 1, globalDecodeURIComponent),
		newFuncObject("escape", 1, globalEscape),
		newFuncObject("unescape", 1, globalUnescape),
	}
}

const digitChars = "0123456789abcdefghijklmnopqrstuvwxyz"

func globalParseInt(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	s = strings.TrimLeftFunc(s, isSpace)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	radix := int(runtime.ToInt32(argAt(args, 1).ToNumber()))
	switch {
	case radix == 0 || radix == 16:
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			s, radix = s[2:], 16
		} else if radix == 0 {
			radix = 10
		}
	case radix < 2 || radix > 36:
		return runtime.NaN, nil
	}
	valid := digitChars[:radix]
	end := 0
	for end < len(s) && strings.IndexByte(valid, lowerASCII(s[end])) >= 0 {
		end++
	}
	if end == 0 {
		return runtime.NaN, nil
	}
	var n float64
	if i, err := strconv.ParseInt(s[:end], radix, 64); err == nil {
		n = float64(i)
	} else {
		for _, c := range []byte(s[:end]) {
			n = n*float64(radix) + float64(strings.IndexByte(valid, lowerASCII(c)))
		}
	}
	if neg {
		n = -n
	}
	return runtime.NewNumber(n), nil
}

func lowerASCII(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

func globalParseFloat(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	s = strings.TrimLeftFunc(s, isSpace)
	body := strings.TrimLeft(s, "+-")
	if len(s)-len(body) > 1 {
		return runtime.NaN, nil
	}
	if strings.HasPrefix(body, "Infinity") {
		if strings.HasPrefix(s, "-") {
			return runtime.NegInf, nil
		}
		return runtime.PosInf, nil
	}
	// Longest prefix of the form digits[.digits][e[+-]digits].
	end, digits := 0, 0
	i := len(s) - len(body)
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i, digits = i+1, digits+1
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i, digits = i+1, digits+1
		}
	}
	if digits == 0 {
		return runtime.NaN, nil
	}
	end = i
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && s[k] >= '0' && s[k] <= '9' {
			k++
		}
		if k > j {
			end = k
		}
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(s[:end], "."), 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return runtime.NewNumber(f), nil
		}
		return runtime.NaN, nil
	}
	return runtime.NewNumber(f), nil
}

func globalIsNaN(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	n, err := runtime.ToNumber(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(math.IsNaN(n)), nil
}

func globalIsFinite(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	n, err := runtime.ToNumber(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(!math.IsNaN(n) && !math.IsInf(n, 0)), nil
}

const (
	uriUnreserved = "-_.!~*'()"
	uriReserved   = ";/?:@&=+$,#"
)

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func encode(args []*runtime.Value, keep string) (*runtime.Value, error) {
	s, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAlnum(c) || strings.IndexByte(keep, c) >= 0 {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return runtime.NewString(b.String()), nil
}

// decode reverses percent-encoding. Escapes that decode to a byte in
// preserve are left as written.
func decode(args []*runtime.Value, preserve string) (*runtime.Value, error) {
	s, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	malformed := fmt.Errorf("URIError: URI malformed")
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			b.WriteByte(s[i])
			continue
		}
		first, ok := hexByte(s, i)
		if !ok {
			return nil, malformed
		}
		if first < 0x80 {
			if strings.IndexByte(preserve, first) >= 0 {
				b.WriteString(s[i : i+3])
			} else {
				b.WriteByte(first)
			}
			i += 2
			continue
		}
		n := 0
		switch {
		case first&0xE0 == 0xC0:
			n = 2
		case first&0xF0 == 0xE0:
			n = 3
		case first&0xF8 == 0xF0:
			n = 4
		default:
			return nil, malformed
		}
		seq := []byte{first}
		for k := 1; k < n; k++ {
			c, ok := hexByte(s, i+3*k)
			if !ok {
				return nil, malformed
			}
			seq = append(seq, c)
		}
		if !utf8.Valid(seq) {
			return nil, malformed
		}
		b.Write(seq)
		i += 3*n - 1
	}
	return runtime.NewString(b.String()), nil
}

func hexByte(s string, i int) (byte, bool) {
	if i+3 > len(s) || s[i] != '%' {
		return 0, false
	}
	v, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
	if err != nil {
		return 0, false
	}
	return byte(v), true
}

func globalEncodeURI(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	return encode(args, uriUnreserved+uriReserved)
}

func globalEncodeURIComponent(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	return encode(args, uriUnreserved)
}

func globalDecodeURI(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	return decode(args, uriReserved)
}

func globalDecodeURIComponent(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	return decode(args, "")
}

// escape works on UTF-16 code units.
func globalEscape(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	for _, u := range runtime.UTF16(s) {
		switch {
		case u < 0x80 && (isAlnum(byte(u)) || strings.IndexByte("@*_+-./", byte(u)) >= 0):
			b.WriteByte(byte(u))
		case u <= 0xFF:
			fmt.Fprintf(&b, "%%%02X", u)
		default:
			fmt.Fprintf(&b, "%%u%04X", u)
		}
	}
	return runtime.NewString(b.String()), nil
}

func globalUnescape(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	units := runtime.UTF16(s)
	out := make([]uint16, 0, len(units))
	parse := func(from, n int) (uint16, bool) {
		if from+n > len(units) {
			return 0, false
		}
		v, err := strconv.ParseUint(runtime.FromUTF16(units[from:from+n]), 16, 16)
		return uint16(v), err == nil
	}
	for i := 0; i < len(units); i++ {
		if units[i] == '%' {
			if i+1 < len(units) && units[i+1] == 'u' {
				if v, ok := parse(i+2, 4); ok {
					out = append(out, v)
					i += 5
					continue
				}
			}
			if v, ok := parse(i+1, 2); ok {
				out = append(out, v)
				i += 2
				continue
			}
		}
		out = append(out, units[i])
	}
	return runtime.NewString(runtime.FromUTF16(out)), nil
}
