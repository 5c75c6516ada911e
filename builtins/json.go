package builtins

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/example/evaljs/runtime"
)

func createJSONObject(objProto *runtime.Object) *runtime.Object {
	j := runtime.NewOrdinaryObject(objProto)
	j.Internal = map[string]interface{}{"toStringTag": "JSON"}
	setMethod(j, "parse", 2, jsonParse)
	setMethod(j, "stringify", 3, jsonStringify)
	return j
}

func jsonParse(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	text, err := argString(args, 0)
	if err != nil {
		return nil, err
	}
	result, err := ParseJSON(text)
	if err != nil {
		return nil, err
	}
	if reviver := argAt(args, 1); reviver.IsCallable() {
		root := runtime.NewPlainObject()
		root.Set("", result)
		return internalize(root, "", reviver)
	}
	return result, nil
}

// ParseJSON decodes text into script values, keeping object keys in
// document order.
func ParseJSON(text string) (*runtime.Value, error) {
	Init()
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	v, err := decodeJSON(dec)
	if err == nil {
		if _, err = dec.Token(); err == io.EOF {
			return v, nil
		} else if err == nil {
			err = errors.New("unexpected data after JSON value")
		}
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		err = errors.New("unexpected end of JSON input")
	}
	return nil, fmt.Errorf("SyntaxError: JSON.parse: %v", err)
}

func decodeJSON(dec *json.Decoder) (*runtime.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case nil:
		return runtime.Null, nil
	case bool:
		return runtime.NewBool(t), nil
	case string:
		return runtime.NewString(t), nil
	case json.Number:
		f, err := strconv.ParseFloat(string(t), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return nil, err
		}
		return runtime.NewNumber(f), nil
	case json.Delim:
		if t == '[' {
			var elems []*runtime.Value
			for dec.More() {
				v, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				elems = append(elems, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return runtime.NewArray(elems), nil
		}
		obj := runtime.NewPlainObject()
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			v, err := decodeJSON(dec)
			if err != nil {
				return nil, err
			}
			setDataProp(obj, keyTok.(string), v, true, true, true)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return runtime.NewObject(obj), nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

func internalize(holder *runtime.Object, key string, reviver *runtime.Value) (*runtime.Value, error) {
	val, err := holder.Lookup(key)
	if err != nil {
		return nil, err
	}
	if obj := toObject(val); obj != nil {
		for _, k := range obj.Keys() {
			nv, err := internalize(obj, k, reviver)
			if err != nil {
				return nil, err
			}
			if nv.Type == runtime.TypeUndefined {
				obj.Delete(k)
			} else if err := obj.Assign(k, nv); err != nil {
				return nil, err
			}
		}
	}
	return runtime.Call(reviver, runtime.NewObject(holder), []*runtime.Value{runtime.NewString(key), val})
}

type stringifier struct {
	replacer *runtime.Value
	allow    []string
	indent   string
	stack    []*runtime.Object
}

func jsonStringify(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	st := &stringifier{}
	if r := argAt(args, 1); r.IsCallable() {
		st.replacer = r
	} else if isArray(r) {
		st.allow = []string{}
		for _, v := range r.Object.ArrayData {
			if v == nil || (v.Type != runtime.TypeString && v.Type != runtime.TypeNumber) {
				continue
			}
			st.allow = append(st.allow, v.ToString())
		}
	}
	space := argAt(args, 2)
	if obj := toObject(space); obj != nil && obj.Primitive != nil {
		space = obj.Primitive
	}
	switch space.Type {
	case runtime.TypeNumber:
		st.indent = strings.Repeat(" ", int(math.Max(0, math.Min(10, toInteger(space)))))
	case runtime.TypeString:
		st.indent = space.Str
		if len(st.indent) > 10 {
			st.indent = st.indent[:10]
		}
	}
	holder := runtime.NewPlainObject()
	holder.Set("", argAt(args, 0))
	out, ok, err := st.property(holder, "", "")
	if err != nil {
		return nil, err
	}
	if !ok {
		return runtime.Undefined, nil
	}
	return runtime.NewString(out), nil
}

// StringifyJSON serializes v the way JSON.stringify(v, null, indent) does.
// ok is false when v has no JSON representation.
func StringifyJSON(v *runtime.Value, indent string) (out string, ok bool, err error) {
	holder := runtime.NewPlainObject()
	holder.Set("", v)
	return (&stringifier{indent: indent}).property(holder, "", "")
}

func (st *stringifier) property(holder *runtime.Object, key, cur string) (string, bool, error) {
	val, err := holder.Lookup(key)
	if err != nil {
		return "", false, err
	}
	if val.Type == runtime.TypeObject {
		toJSON, err := val.Object.Lookup("toJSON")
		if err != nil {
			return "", false, err
		}
		if toJSON.IsCallable() {
			if val, err = runtime.Call(toJSON, val, []*runtime.Value{runtime.NewString(key)}); err != nil {
				return "", false, err
			}
		}
	}
	if st.replacer != nil {
		if val, err = runtime.Call(st.replacer, runtime.NewObject(holder), []*runtime.Value{runtime.NewString(key), val}); err != nil {
			return "", false, err
		}
	}
	if obj := toObject(val); obj != nil && obj.Primitive != nil {
		switch obj.OType {
		case runtime.ObjTypeNumber, runtime.ObjTypeString, runtime.ObjTypeBoolean:
			val = obj.Primitive
		}
	}
	switch val.Type {
	case runtime.TypeNull:
		return "null", true, nil
	case runtime.TypeBoolean:
		return strconv.FormatBool(val.Bool), true, nil
	case runtime.TypeNumber:
		if math.IsNaN(val.Number) || math.IsInf(val.Number, 0) {
			return "null", true, nil
		}
		return runtime.FormatNumber(val.Number), true, nil
	case runtime.TypeString:
		return quoteJSON(val.Str), true, nil
	case runtime.TypeObject:
		if val.IsCallable() {
			return "", false, nil
		}
		for _, o := range st.stack {
			if o == val.Object {
				return "", false, typeErrorf("Converting circular structure to JSON")
			}
		}
		st.stack = append(st.stack, val.Object)
		defer func() { st.stack = st.stack[:len(st.stack)-1] }()
		if val.Object.OType == runtime.ObjTypeArray {
			s, err := st.array(val.Object, cur)
			return s, err == nil, err
		}
		s, err := st.object(val.Object, cur)
		return s, err == nil, err
	}
	return "", false, nil
}

func (st *stringifier) wrap(open, close string, parts []string, cur string) string {
	if len(parts) == 0 {
		return open + close
	}
	if st.indent == "" {
		return open + strings.Join(parts, ",") + close
	}
	inner := cur + st.indent
	return open + "\n" + inner + strings.Join(parts, ",\n"+inner) + "\n" + cur + close
}

func (st *stringifier) array(obj *runtime.Object, cur string) (string, error) {
	parts := make([]string, len(obj.ArrayData))
	for i := range obj.ArrayData {
		s, ok, err := st.property(obj, itoa(i), cur+st.indent)
		if err != nil {
			return "", err
		}
		if !ok {
			s = "null"
		}
		parts[i] = s
	}
	return st.wrap("[", "]", parts, cur), nil
}

func (st *stringifier) object(obj *runtime.Object, cur string) (string, error) {
	keys := obj.Keys()
	if st.allow != nil {
		keys = keys[:0:0]
		for _, k := range st.allow {
			if obj.HasProperty(k) {
				keys = append(keys, k)
			}
		}
	}
	sep := ":"
	if st.indent != "" {
		sep = ": "
	}
	var parts []string
	for _, k := range keys {
		if strings.HasPrefix(k, "@@symbol:") {
			continue
		}
		s, ok, err := st.property(obj, k, cur+st.indent)
		if err != nil {
			return "", err
		}
		if ok {
			parts = append(parts, quoteJSON(k)+sep+s)
		}
	}
	return st.wrap("{", "}", parts, cur), nil
}

func quoteJSON(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
