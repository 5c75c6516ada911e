package builtins

import (
	"strings"
	"unicode"

	"github.com/example/evaljs/runtime"
)

func createStringConstructor(objProto *runtime.Object) *runtime.Object {
	proto := runtime.NewOrdinaryObject(objProto)
	proto.OType = runtime.ObjTypeString
	proto.Primitive = runtime.NewString("")
	runtime.DefaultStringPrototype = proto

	setMethod(proto, "charAt", 1, stringCharAt)
	setMethod(proto, "charCodeAt", 1, stringCharCodeAt)
	setMethod(proto, "indexOf", 1, stringIndexOf)
	setMethod(proto, "lastIndexOf", 1, stringLastIndexOf)
	setMethod(proto, "includes", 1, stringIncludes)
	setMethod(proto, "startsWith", 1, stringStartsWith)
	setMethod(proto, "endsWith", 1, stringEndsWith)
	setMethod(proto, "slice", 2, stringSlice)
	setMethod(proto, "substring", 2, stringSubstring)
	setMethod(proto, "substr", 2, stringSubstr)
	setMethod(proto, "toUpperCase", 0, stringToUpperCase)
	setMethod(proto, "toLowerCase", 0, stringToLowerCase)
	setMethod(proto, "trim", 0, stringTrim)
	setMethod(proto, "trimStart", 0, stringTrimStart)
	setMethod(proto, "trimEnd", 0, stringTrimEnd)
	setMethod(proto, "repeat", 1, stringRepeat)
	setMethod(proto, "padStart", 1, stringPadStart)
	setMethod(proto, "padEnd", 1, stringPadEnd)
	setMethod(proto, "split", 2, stringSplit)
	setMethod(proto, "replace", 2, stringReplace)
	setMethod(proto, "match", 1, stringMatch)
	setMethod(proto, "search", 1, stringSearch)
	setMethod(proto, "concat", 1, stringConcat)
	setMethod(proto, "localeCompare", 1, stringLocaleCompare)
	setMethod(proto, "toString", 0, stringValueOf)
	setMethod(proto, "valueOf", 0, stringValueOf)

	ctor := newConstructor("String", 1, proto, stringConstructorCall, func(args []*runtime.Value) (*runtime.Value, error) {
		s, err := stringConstructorCall(runtime.Undefined, args)
		if err != nil {
			return nil, err
		}
		obj, _ := runtime.ToObject(s)
		return runtime.NewObject(obj), nil
	})
	setMethod(ctor, "fromCharCode", 1, stringFromCharCode)
	return ctor
}

func stringConstructorCall(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	if len(args) == 0 {
		return runtime.NewString(""), nil
	}
	if args[0].Type == runtime.TypeSymbol {
		return runtime.NewString(runtime.Describe(args[0])), nil
	}
	s, err := runtime.ToString(args[0])
	if err != nil {
		return nil, err
	}
	return runtime.NewString(s), nil
}

// thisString coerces the receiver of a String.prototype method.
func thisString(this *runtime.Value, method string) (string, error) {
	switch {
	case this.Type == runtime.TypeString:
		return this.Str, nil
	case this.IsNullish():
		return "", typeErrorf("String.prototype.%s called on null or undefined", method)
	}
	if obj := toObject(this); obj != nil && obj.OType == runtime.ObjTypeString && obj.Primitive != nil {
		return obj.Primitive.Str, nil
	}
	return runtime.ToString(this)
}

func argString(args []*runtime.Value, i int) (string, error) {
	return runtime.ToString(argAt(args, i))
}

func stringValueOf(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	if this.Type == runtime.TypeString {
		return this, nil
	}
	if obj := toObject(this); obj != nil && obj.OType == runtime.ObjTypeString && obj.Primitive != nil {
		return obj.Primitive, nil
	}
	return nil, typeErrorf("String.prototype.valueOf requires that 'this' be a String")
}

func stringFromCharCode(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	units := make([]uint16, len(args))
	for i, a := range args {
		units[i] = uint16(runtime.ToUint32(a.ToNumber()))
	}
	return runtime.NewString(runtime.FromUTF16(units)), nil
}

func stringCharAt(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "charAt")
	if err != nil {
		return nil, err
	}
	units := runtime.UTF16(s)
	pos := toInteger(argAt(args, 0))
	if pos < 0 || pos >= float64(len(units)) {
		return runtime.NewString(""), nil
	}
	return runtime.NewString(runtime.FromUTF16(units[int(pos) : int(pos)+1])), nil
}

func stringCharCodeAt(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "charCodeAt")
	if err != nil {
		return nil, err
	}
	units := runtime.UTF16(s)
	pos := toInteger(argAt(args, 0))
	if pos < 0 || pos >= float64(len(units)) {
		return runtime.NaN, nil
	}
	return runtime.NewNumber(float64(units[int(pos)])), nil
}

// indexUnits finds needle in hay at or after from, in UTF-16 units.
func indexUnits(hay, needle []uint16, from int) int {
	for i := max(from, 0); i+len(needle) <= len(hay); i++ {
		if unitsEqual(hay[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}

func unitsEqual(a, b []uint16) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func stringIndexOf(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "indexOf")
	if err != nil {
		return nil, err
	}
	search, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	units := runtime.UTF16(s)
	from := clampIndex(argAt(args, 1), len(units), 0)
	return runtime.NewNumber(float64(indexUnits(units, runtime.UTF16(search), from))), nil
}

func stringLastIndexOf(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "lastIndexOf")
	if err != nil {
		return nil, err
	}
	search, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	units, needle := runtime.UTF16(s), runtime.UTF16(search)
	from := len(units)
	if pos := argAt(args, 1).ToNumber(); pos == pos {
		from = clampIndex(argAt(args, 1), len(units), len(units))
	}
	for i := min(from, len(units)-len(needle)); i >= 0; i-- {
		if unitsEqual(units[i:i+len(needle)], needle) {
			return runtime.NewNumber(float64(i)), nil
		}
	}
	return runtime.NewNumber(-1), nil
}

func stringIncludes(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "includes")
	if err != nil {
		return nil, err
	}
	if isRegExp(argAt(args, 0)) {
		return nil, typeErrorf("First argument to String.prototype.includes must not be a regular expression")
	}
	search, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	units := runtime.UTF16(s)
	from := clampIndex(argAt(args, 1), len(units), 0)
	return runtime.NewBool(indexUnits(units, runtime.UTF16(search), from) >= 0), nil
}

func stringStartsWith(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "startsWith")
	if err != nil {
		return nil, err
	}
	search, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	units, needle := runtime.UTF16(s), runtime.UTF16(search)
	start := clampIndex(argAt(args, 1), len(units), 0)
	if start+len(needle) > len(units) {
		return runtime.False, nil
	}
	return runtime.NewBool(unitsEqual(units[start:start+len(needle)], needle)), nil
}

func stringEndsWith(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "endsWith")
	if err != nil {
		return nil, err
	}
	search, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	units, needle := runtime.UTF16(s), runtime.UTF16(search)
	end := clampIndex(argAt(args, 1), len(units), len(units))
	start := end - len(needle)
	if start < 0 {
		return runtime.False, nil
	}
	return runtime.NewBool(unitsEqual(units[start:end], needle)), nil
}

func stringSlice(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "slice")
	if err != nil {
		return nil, err
	}
	units := runtime.UTF16(s)
	start := relativeIndex(argAt(args, 0), len(units), 0)
	end := relativeIndex(argAt(args, 1), len(units), len(units))
	if start >= end {
		return runtime.NewString(""), nil
	}
	return runtime.NewString(runtime.FromUTF16(units[start:end])), nil
}

func stringSubstring(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "substring")
	if err != nil {
		return nil, err
	}
	units := runtime.UTF16(s)
	start := clampIndex(argAt(args, 0), len(units), 0)
	end := clampIndex(argAt(args, 1), len(units), len(units))
	if start > end {
		start, end = end, start
	}
	return runtime.NewString(runtime.FromUTF16(units[start:end])), nil
}

func stringSubstr(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "substr")
	if err != nil {
		return nil, err
	}
	units := runtime.UTF16(s)
	start := relativeIndex(argAt(args, 0), len(units), 0)
	count := clampIndex(argAt(args, 1), len(units)-start, len(units)-start)
	return runtime.NewString(runtime.FromUTF16(units[start : start+count])), nil
}

func stringToUpperCase(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "toUpperCase")
	if err != nil {
		return nil, err
	}
	return runtime.NewString(strings.ToUpper(s)), nil
}

func stringToLowerCase(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "toLowerCase")
	if err != nil {
		return nil, err
	}
	return runtime.NewString(strings.ToLower(s)), nil
}

func isSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

func stringTrim(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "trim")
	if err != nil {
		return nil, err
	}
	return runtime.NewString(strings.TrimFunc(s, isSpace)), nil
}

func stringTrimStart(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "trimStart")
	if err != nil {
		return nil, err
	}
	return runtime.NewString(strings.TrimLeftFunc(s, isSpace)), nil
}

func stringTrimEnd(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "trimEnd")
	if err != nil {
		return nil, err
	}
	return runtime.NewString(strings.TrimRightFunc(s, isSpace)), nil
}

func stringRepeat(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "repeat")
	if err != nil {
		return nil, err
	}
	n := toInteger(argAt(args, 0))
	if n < 0 || n > 1<<28 {
		return nil, rangeErrorf("Invalid count value: %s", runtime.FormatNumber(n))
	}
	if len(s)*int(n) > 1<<28 {
		return nil, rangeErrorf("Invalid string length")
	}
	return runtime.NewString(strings.Repeat(s, int(n))), nil
}

func pad(this *runtime.Value, args []*runtime.Value, method string, atStart bool) (*runtime.Value, error) {
	s, err := thisString(this, method)
	if err != nil {
		return nil, err
	}
	target := int(toInteger(argAt(args, 0)))
	filler := " "
	if f := argAt(args, 1); f.Type != runtime.TypeUndefined {
		if filler, err = runtime.ToString(f); err != nil {
			return nil, err
		}
	}
	units, fill := runtime.UTF16(s), runtime.UTF16(filler)
	if target <= len(units) || len(fill) == 0 {
		return runtime.NewString(s), nil
	}
	if target > 1<<28 {
		return nil, rangeErrorf("Invalid string length")
	}
	padding := make([]uint16, 0, target-len(units))
	for len(padding) < target-len(units) {
		padding = append(padding, fill[len(padding)%len(fill)])
	}
	if atStart {
		return runtime.NewString(runtime.FromUTF16(padding) + s), nil
	}
	return runtime.NewString(s + runtime.FromUTF16(padding)), nil
}

func stringPadStart(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	return pad(this, args, "padStart", true)
}

func stringPadEnd(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	return pad(this, args, "padEnd", false)
}

func stringSplit(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "split")
	if err != nil {
		return nil, err
	}
	limit := -1
	if l := argAt(args, 1); l.Type != runtime.TypeUndefined {
		limit = int(runtime.ToUint32(l.ToNumber()))
	}
	var parts []string
	sep := argAt(args, 0)
	switch {
	case limit == 0:
	case sep.Type == runtime.TypeUndefined:
		parts = []string{s}
	case isRegExp(sep):
		data := regexpDataOf(sep.Object)
		parts = data.split(s)
	default:
		sepStr, err := runtime.ToString(sep)
		if err != nil {
			return nil, err
		}
		if sepStr == "" {
			for _, u := range runtime.UTF16(s) {
				parts = append(parts, runtime.FromUTF16([]uint16{u}))
			}
		} else {
			parts = strings.Split(s, sepStr)
		}
	}
	if limit >= 0 && len(parts) > limit {
		parts = parts[:limit]
	}
	return createStringArray(parts), nil
}

// expandReplacement substitutes $-patterns in a replacement template.
// groups holds the captures; nil entries did not participate.
func expandReplacement(tmpl, subject string, start, end int, groups []*string) string {
	if !strings.Contains(tmpl, "$") {
		return tmpl
	}
	var b strings.Builder
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		if c != '$' || i+1 == len(tmpl) {
			b.WriteByte(c)
			continue
		}
		next := tmpl[i+1]
		switch {
		case next == '$':
			b.WriteByte('$')
			i++
		case next == '&':
			b.WriteString(subject[start:end])
			i++
		case next == '`':
			b.WriteString(subject[:start])
			i++
		case next == '\'':
			b.WriteString(subject[end:])
			i++
		case next >= '0' && next <= '9':
			n, width := int(next-'0'), 1
			if i+2 < len(tmpl) && tmpl[i+2] >= '0' && tmpl[i+2] <= '9' {
				if two := n*10 + int(tmpl[i+2]-'0'); two >= 1 && two <= len(groups) {
					n, width = two, 2
				}
			}
			if n < 1 || n > len(groups) {
				b.WriteByte(c)
				continue
			}
			if g := groups[n-1]; g != nil {
				b.WriteString(*g)
			}
			i += width
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// replacement computes the text substituted for one match.
func replacement(repl *runtime.Value, tmpl, subject string, start, end int, groups []*string) (string, error) {
	if !repl.IsCallable() {
		return expandReplacement(tmpl, subject, start, end, groups), nil
	}
	callArgs := []*runtime.Value{runtime.NewString(subject[start:end])}
	for _, g := range groups {
		if g == nil {
			callArgs = append(callArgs, runtime.Undefined)
		} else {
			callArgs = append(callArgs, runtime.NewString(*g))
		}
	}
	callArgs = append(callArgs,
		runtime.NewNumber(float64(runtime.StringLength(subject[:start]))),
		runtime.NewString(subject))
	res, err := runtime.Call(repl, runtime.Undefined, callArgs)
	if err != nil {
		return "", err
	}
	return runtime.ToString(res)
}

func stringReplace(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "replace")
	if err != nil {
		return nil, err
	}
	pattern, repl := argAt(args, 0), argAt(args, 1)
	tmpl := ""
	if !repl.IsCallable() {
		if tmpl, err = runtime.ToString(repl); err != nil {
			return nil, err
		}
	}
	if isRegExp(pattern) {
		out, err := regexpDataOf(pattern.Object).replace(pattern.Object, s, repl, tmpl)
		if err != nil {
			return nil, err
		}
		return runtime.NewString(out), nil
	}
	search, err := runtime.ToString(pattern)
	if err != nil {
		return nil, err
	}
	idx := strings.Index(s, search)
	if idx < 0 {
		return runtime.NewString(s), nil
	}
	sub, err := replacement(repl, tmpl, s, idx, idx+len(search), nil)
	if err != nil {
		return nil, err
	}
	return runtime.NewString(s[:idx] + sub + s[idx+len(search):]), nil
}

// coerceRegExp returns v as a RegExp object, compiling non-regexp values.
func coerceRegExp(v *runtime.Value) (*runtime.Object, error) {
	if isRegExp(v) {
		return v.Object, nil
	}
	source := "(?:)"
	if v.Type != runtime.TypeUndefined {
		s, err := runtime.ToString(v)
		if err != nil {
			return nil, err
		}
		source = s
	}
	re, err := NewRegExp(source, "")
	if err != nil {
		return nil, err
	}
	return re.Object, nil
}

func stringMatch(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "match")
	if err != nil {
		return nil, err
	}
	re, err := coerceRegExp(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	data := regexpDataOf(re)
	if !data.global {
		return regexpExec(runtime.NewObject(re), []*runtime.Value{runtime.NewString(s)})
	}
	re.Set("lastIndex", runtime.Zero)
	matches := data.re.FindAllString(s, -1)
	if len(matches) == 0 {
		return runtime.Null, nil
	}
	return createStringArray(matches), nil
}

func stringSearch(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "search")
	if err != nil {
		return nil, err
	}
	re, err := coerceRegExp(argAt(args, 0))
	if err != nil {
		return nil, err
	}
	loc := regexpDataOf(re).re.FindStringIndex(s)
	if loc == nil {
		return runtime.NewNumber(-1), nil
	}
	return runtime.NewNumber(float64(runtime.StringLength(s[:loc[0]]))), nil
}

func stringConcat(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "concat")
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	b.WriteString(s)
	for _, a := range args {
		part, err := runtime.ToString(a)
		if err != nil {
			return nil, err
		}
		b.WriteString(part)
	}
	return runtime.NewString(b.String()), nil
}

func stringLocaleCompare(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	s, err := thisString(this, "localeCompare")
	if err != nil {
		return nil, err
	}
	other, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	return runtime.NewNumber(float64(strings.Compare(s, other))), nil
}
