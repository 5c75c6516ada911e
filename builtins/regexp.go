package builtins

import (
	"fmt"
	"regexp"
	"regexp/syntax"
	"strings"

	"github.com/example/evaljs/runtime"
)

var regexpPrototype *runtime.Object

// regexpData is the compiled state behind a RegExp object.
type regexpData struct {
	source string
	flags  string
	re     *regexp.Regexp
	global bool
	sticky bool
}

func createRegExpConstructor(objProto *runtime.Object) *runtime.Object {
	proto := runtime.NewOrdinaryObject(objProto)
	regexpPrototype = proto

	setMethod(proto, "test", 1, regexpTest)
	setMethod(proto, "exec", 1, regexpExec)
	setMethod(proto, "toString", 0, regexpToString)

	call := func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		if p := argAt(args, 0); isRegExp(p) && argAt(args, 1).Type == runtime.TypeUndefined {
			return p, nil
		}
		return regexpConstruct(args)
	}
	return newConstructor("RegExp", 2, proto, call, regexpConstruct)
}

func regexpConstruct(args []*runtime.Value) (*runtime.Value, error) {
	source, flags := "(?:)", ""
	p := argAt(args, 0)
	switch {
	case isRegExp(p):
		data := regexpDataOf(p.Object)
		source, flags = data.source, data.flags
	case p.Type != runtime.TypeUndefined:
		s, err := runtime.ToString(p)
		if err != nil {
			return nil, err
		}
		source = s
	}
	if f := argAt(args, 1); f.Type != runtime.TypeUndefined {
		s, err := runtime.ToString(f)
		if err != nil {
			return nil, err
		}
		flags = s
	}
	return NewRegExp(source, flags)
}

// NewRegExp compiles a regular expression literal or RegExp() call into a
// RegExp object. Patterns the Go engine cannot express raise SyntaxError.
func NewRegExp(source, flags string) (*runtime.Value, error) {
	Init()
	var prefix string
	seen := map[rune]bool{}
	for _, f := range flags {
		if seen[f] || !strings.ContainsRune("gimsuy", f) {
			return nil, fmt.Errorf("SyntaxError: Invalid flags supplied to RegExp constructor '%s'", flags)
		}
		seen[f] = true
		if f == 'i' || f == 'm' || f == 's' {
			prefix += string(f)
		}
	}
	pattern := translatePattern(source)
	if prefix != "" {
		pattern = "(?" + prefix + ")" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("SyntaxError: Invalid regular expression: /%s/: %s", source, regexpReason(err))
	}
	obj := runtime.NewOrdinaryObject(regexpPrototype)
	obj.OType = runtime.ObjTypeRegExp
	obj.Internal = map[string]interface{}{
		"regexp": &regexpData{source: source, flags: flags, re: re, global: seen['g'], sticky: seen['y']},
	}
	setDataProp(obj, "lastIndex", runtime.Zero, true, false, false)
	setDataProp(obj, "source", runtime.NewString(source), false, false, true)
	setDataProp(obj, "flags", runtime.NewString(flags), false, false, true)
	setDataProp(obj, "global", runtime.NewBool(seen['g']), false, false, true)
	setDataProp(obj, "ignoreCase", runtime.NewBool(seen['i']), false, false, true)
	setDataProp(obj, "multiline", runtime.NewBool(seen['m']), false, false, true)
	setDataProp(obj, "sticky", runtime.NewBool(seen['y']), false, false, true)
	return runtime.NewObject(obj), nil
}

func regexpReason(err error) string {
	if e, ok := err.(*syntax.Error); ok {
		return string(e.Code)
	}
	return err.Error()
}

// translatePattern rewrites the escapes RE2 spells differently.
func translatePattern(src string) string {
	var b strings.Builder
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case c == '\\' && i+1 < len(src):
			next := src[i+1]
			switch {
			case next == 'u' && i+5 < len(src) && isHex(src[i+2:i+6]):
				b.WriteString(`\x{` + src[i+2:i+6] + `}`)
				i += 5
			case next == 'u' && i+2 < len(src) && src[i+2] == '{':
				if end := strings.IndexByte(src[i:], '}'); end > 0 {
					b.WriteString(`\x` + src[i+2:i+end+1])
					i += end
					continue
				}
				b.WriteString(`\\u`)
				i++
			case next == '/':
				b.WriteByte('/')
				i++
			case next == 'd' || next == 'D' || next == 'w' || next == 'W' || next == 's' || next == 'S' || next == 'b' || next == 'B':
				b.WriteString(src[i : i+2])
				i++
			case next >= 'a' && next <= 'z' && !strings.ContainsRune("fnrtvxpck", rune(next)):
				// Identity escapes of letters match the letter itself.
				b.WriteByte(next)
				i++
			default:
				b.WriteString(src[i : i+2])
				i++
			}
		case strings.HasPrefix(src[i:], "[^]"):
			b.WriteString(`[\s\S]`)
			i += 2
		case strings.HasPrefix(src[i:], "[]"):
			b.WriteString(`[^\s\S]`)
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isHex(s string) bool {
	for _, c := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return false
		}
	}
	return true
}

func isRegExp(v *runtime.Value) bool {
	obj := toObject(v)
	if obj == nil || obj.OType != runtime.ObjTypeRegExp {
		return false
	}
	_, ok := obj.Internal["regexp"].(*regexpData)
	return ok
}

func regexpDataOf(obj *runtime.Object) *regexpData {
	data, _ := obj.Internal["regexp"].(*regexpData)
	return data
}

func thisRegExp(this *runtime.Value, method string) (*runtime.Object, *regexpData, error) {
	if !isRegExp(this) {
		return nil, nil, typeErrorf("RegExp.prototype.%s called on incompatible receiver", method)
	}
	return this.Object, regexpDataOf(this.Object), nil
}

// byteOffset converts a UTF-16 index into a byte offset in s.
func byteOffset(s string, index int) int {
	units := 0
	for i, r := range s {
		if units >= index {
			return i
		}
		if r >= 0x10000 {
			units += 2
		} else {
			units++
		}
	}
	return len(s)
}

// match runs the expression against s, starting at lastIndex for global and
// sticky expressions and updating it. loc holds byte offsets.
func (d *regexpData) match(obj *runtime.Object, s string) ([]int, error) {
	start := 0
	if d.global || d.sticky {
		li, err := obj.Lookup("lastIndex")
		if err != nil {
			return nil, err
		}
		n := toInteger(li)
		if n < 0 || n > float64(runtime.StringLength(s)) {
			return nil, obj.Assign("lastIndex", runtime.Zero)
		}
		start = byteOffset(s, int(n))
	}
	loc := d.re.FindStringSubmatchIndex(s[start:])
	if loc != nil && d.sticky && loc[0] != 0 {
		loc = nil
	}
	if loc == nil {
		if d.global || d.sticky {
			return nil, obj.Assign("lastIndex", runtime.Zero)
		}
		return nil, nil
	}
	for i := range loc {
		if loc[i] >= 0 {
			loc[i] += start
		}
	}
	if d.global || d.sticky {
		end := runtime.StringLength(s[:loc[1]])
		if err := obj.Assign("lastIndex", runtime.NewNumber(float64(end))); err != nil {
			return nil, err
		}
	}
	return loc, nil
}

func captures(s string, loc []int) []*string {
	groups := make([]*string, 0, len(loc)/2-1)
	for i := 2; i+1 < len(loc); i += 2 {
		if loc[i] < 0 {
			groups = append(groups, nil)
			continue
		}
		g := s[loc[i]:loc[i+1]]
		groups = append(groups, &g)
	}
	return groups
}

func (d *regexpData) split(s string) []string {
	all := d.re.FindAllStringSubmatchIndex(s, -1)
	if s == "" {
		if len(all) > 0 {
			return nil
		}
		return []string{""}
	}
	var parts []string
	last := 0
	for _, loc := range all {
		if loc[0] >= len(s) || loc[1] == last {
			continue
		}
		parts = append(parts, s[last:loc[0]])
		for _, g := range captures(s, loc) {
			if g != nil {
				parts = append(parts, *g)
			} else {
				parts = append(parts, "")
			}
		}
		last = loc[1]
	}
	return append(parts, s[last:])
}

func (d *regexpData) replace(obj *runtime.Object, s string, repl *runtime.Value, tmpl string) (string, error) {
	var all [][]int
	if d.global {
		if err := obj.Assign("lastIndex", runtime.Zero); err != nil {
			return "", err
		}
		all = d.re.FindAllStringSubmatchIndex(s, -1)
	} else {
		loc, err := d.match(obj, s)
		if err != nil {
			return "", err
		}
		if loc != nil {
			all = [][]int{loc}
		}
	}
	var b strings.Builder
	last := 0
	for _, loc := range all {
		sub, err := replacement(repl, tmpl, s, loc[0], loc[1], captures(s, loc))
		if err != nil {
			return "", err
		}
		b.WriteString(s[last:loc[0]])
		b.WriteString(sub)
		last = loc[1]
	}
	b.WriteString(s[last:])
	return b.String(), nil
}

func regexpTest(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, data, err := thisRegExp(this, "test")
	if err != nil {
		return nil, err
	}
	s, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	loc, err := data.match(obj, s)
	if err != nil {
		return nil, err
	}
	return runtime.NewBool(loc != nil), nil
}

func regexpExec(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	obj, data, err := thisRegExp(this, "exec")
	if err != nil {
		return nil, err
	}
	s, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	loc, err := data.match(obj, s)
	if err != nil || loc == nil {
		return runtime.Null, err
	}
	elems := []*runtime.Value{runtime.NewString(s[loc[0]:loc[1]])}
	for _, g := range captures(s, loc) {
		if g == nil {
			elems = append(elems, runtime.Undefined)
		} else {
			elems = append(elems, runtime.NewString(*g))
		}
	}
	result := runtime.NewArrayObject(elems)
	result.Set("index", runtime.NewNumber(float64(runtime.StringLength(s[:loc[0]]))))
	result.Set("input", runtime.NewString(s))
	return runtime.NewObject(result), nil
}

func regexpToString(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	_, data, err := thisRegExp(this, "toString")
	if err != nil {
		return nil, err
	}
	return runtime.NewString("/" + data.source + "/" + data.flags), nil
}
