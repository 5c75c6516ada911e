package builtins

import (
	"sync"

	"github.com/example/evaljs/runtime"
)

var (
	symbolMu       sync.Mutex
	symbolRegistry = make(map[string]*runtime.Value)
)

func createSymbolConstructor(objProto *runtime.Object) *runtime.Object {
	proto := runtime.NewOrdinaryObject(objProto)
	runtime.DefaultSymbolPrototype = proto
	setMethod(proto, "toString", 0, symbolToString)
	setMethod(proto, "valueOf", 0, symbolValueOf)
	proto.DefineProperty("description", &runtime.Property{
		IsAccessor:   true,
		Getter:       runtime.NewObject(newFuncObject("description", 0, symbolDescription)),
		Configurable: true,
	})

	ctor := newConstructor("Symbol", 0, proto, symbolConstructorCall, func(args []*runtime.Value) (*runtime.Value, error) {
		return symbolConstructorCall(runtime.Undefined, args)
	})
	setMethod(ctor, "for", 1, symbolFor)
	setMethod(ctor, "keyFor", 1, symbolKeyFor)
	return ctor
}

func thisSymbolValue(this *runtime.Value) (*runtime.Value, error) {
	if this.Type == runtime.TypeSymbol {
		return this, nil
	}
	if obj := toObject(this); obj != nil && obj.Primitive != nil && obj.Primitive.Type == runtime.TypeSymbol {
		return obj.Primitive, nil
	}
	return nil, typeErrorf("Symbol.prototype.toString requires that 'this' be a Symbol")
}

func symbolConstructorCall(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	desc := ""
	if a := argAt(args, 0); a.Type != runtime.TypeUndefined {
		s, err := runtime.ToString(a)
		if err != nil {
			return nil, err
		}
		desc = s
	}
	return runtime.NewSymbol(desc), nil
}

func symbolToString(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	sym, err := thisSymbolValue(this)
	if err != nil {
		return nil, err
	}
	return runtime.NewString(runtime.Describe(sym)), nil
}

func symbolValueOf(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	return thisSymbolValue(this)
}

func symbolDescription(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	sym, err := thisSymbolValue(this)
	if err != nil {
		return nil, err
	}
	return runtime.NewString(sym.Symbol.Description), nil
}

func symbolFor(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	key := argAt(args, 0).ToString()
	symbolMu.Lock()
	defer symbolMu.Unlock()
	if sym, ok := symbolRegistry[key]; ok {
		return sym, nil
	}
	sym := runtime.NewSymbol(key)
	symbolRegistry[key] = sym
	return sym, nil
}

func symbolKeyFor(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
	a := argAt(args, 0)
	if a.Type != runtime.TypeSymbol {
		return nil, typeErrorf("%s is not a symbol", a.ToString())
	}
	symbolMu.Lock()
	defer symbolMu.Unlock()
	for k, v := range symbolRegistry {
		if v.Symbol == a.Symbol {
			return runtime.NewString(k), nil
		}
	}
	return runtime.Undefined, nil
}
