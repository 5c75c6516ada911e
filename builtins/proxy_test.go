package builtins

import (
	"testing"

	"github.com/example/evaljs/runtime"
	"github.com/google/go-cmp/cmp"
)

func hostFunc(fn runtime.CallableFunc) *runtime.Value {
	return runtime.NewObject(newFuncObject("", 0, fn))
}

func TestReflectGet(t *testing.T) {
	obj := runtime.NewOrdinaryObject(nil)
	obj.Set("x", num(42))

	result := call(t, global(t, "Reflect"), "get", runtime.NewObject(obj), str("x"))
	if result.Number != 42 {
		t.Errorf("Reflect.get: expected 42, got %v", result.Number)
	}
}

func TestReflectSet(t *testing.T) {
	obj := runtime.NewOrdinaryObject(nil)
	result := call(t, global(t, "Reflect"), "set", runtime.NewObject(obj), str("x"), num(10))
	if !result.Bool {
		t.Error("Reflect.set should return true")
	}
	if obj.Get("x").Number != 10 {
		t.Error("property not set")
	}
}

func TestReflectHasAndDelete(t *testing.T) {
	obj := runtime.NewOrdinaryObject(nil)
	obj.Set("a", num(1))
	reflect := global(t, "Reflect")

	if !call(t, reflect, "has", runtime.NewObject(obj), str("a")).Bool {
		t.Error("Reflect.has('a') should be true")
	}
	if call(t, reflect, "has", runtime.NewObject(obj), str("b")).Bool {
		t.Error("Reflect.has('b') should be false")
	}
	if !call(t, reflect, "deleteProperty", runtime.NewObject(obj), str("a")).Bool {
		t.Error("Reflect.deleteProperty should return true")
	}
	if obj.HasOwnProperty("a") {
		t.Error("property should be deleted")
	}
}

func TestReflectOwnKeysAndApply(t *testing.T) {
	obj := runtime.NewOrdinaryObject(nil)
	obj.Set("a", num(1))
	obj.Set("b", num(2))
	reflect := global(t, "Reflect")

	keys := stringsOf(t, call(t, reflect, "ownKeys", runtime.NewObject(obj)))
	if diff := cmp.Diff([]string{"a", "b"}, keys); diff != "" {
		t.Errorf("ownKeys (-want +got):\n%s", diff)
	}

	add := hostFunc(func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return num(argAt(args, 0).Number + argAt(args, 1).Number), nil
	})
	if got := call(t, reflect, "apply", add, runtime.Undefined, nums(3, 4)); got.Number != 7 {
		t.Errorf("Reflect.apply: expected 7, got %v", got.Number)
	}

	_, err := invoke(t, reflect, "get", num(1), str("x"))
	wantErr(t, err, "TypeError")
}

func TestProxyConstructor(t *testing.T) {
	target := runtime.NewOrdinaryObject(nil)
	target.Set("x", num(1))
	handler := runtime.NewOrdinaryObject(nil)

	p := construct(t, "Proxy", runtime.NewObject(target), runtime.NewObject(handler))
	if p.Object.OType != runtime.ObjTypeProxy {
		t.Fatal("expected proxy object")
	}
	if got := p.Object.Get("x"); got.Number != 1 {
		t.Errorf("forwarded get = %s", Inspect(got))
	}
	p.Object.Set("y", num(2))
	if got := target.Get("y"); got.Number != 2 {
		t.Errorf("forwarded set left target.y = %s", Inspect(got))
	}

	_, err := global(t, "Proxy").Object.Construct([]*runtime.Value{num(1), runtime.NewObject(handler)})
	wantErr(t, err, "TypeError")
	_, err = runtime.Call(global(t, "Proxy"), runtime.Undefined, nil)
	wantErr(t, err, "TypeError")
}

func TestProxyTraps(t *testing.T) {
	target := runtime.NewOrdinaryObject(nil)
	target.Set("x", num(1))
	var log []string

	handler := runtime.NewOrdinaryObject(nil)
	handler.Set("get", hostFunc(func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		log = append(log, "get "+argAt(args, 1).Str)
		return num(99), nil
	}))
	handler.Set("set", hostFunc(func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		log = append(log, "set "+argAt(args, 1).Str)
		argAt(args, 0).Object.Set(argAt(args, 1).Str, num(argAt(args, 2).Number*10))
		return runtime.True, nil
	}))
	handler.Set("has", hostFunc(func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		log = append(log, "has "+argAt(args, 1).Str)
		return runtime.True, nil
	}))
	handler.Set("deleteProperty", hostFunc(func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		log = append(log, "delete "+argAt(args, 1).Str)
		return runtime.False, nil
	}))
	handler.Set("ownKeys", hostFunc(func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return createStringArray([]string{"k"}), nil
	}))

	p := construct(t, "Proxy", runtime.NewObject(target), runtime.NewObject(handler)).Object
	if got := p.Get("x"); got.Number != 99 {
		t.Errorf("get trap result = %s", Inspect(got))
	}
	p.Set("y", num(2))
	if got := target.Get("y"); got.Number != 20 {
		t.Errorf("set trap wrote %s", Inspect(got))
	}
	if !p.HasProperty("missing") {
		t.Error("has trap was ignored")
	}
	if p.Delete("x") || !target.HasOwnProperty("x") {
		t.Error("deleteProperty trap was ignored")
	}
	if diff := cmp.Diff([]string{"k"}, p.OwnKeys()); diff != "" {
		t.Errorf("ownKeys (-want +got):\n%s", diff)
	}
	want := []string{"get x", "set y", "has missing", "delete x"}
	if diff := cmp.Diff(want, log); diff != "" {
		t.Errorf("trap calls (-want +got):\n%s", diff)
	}
}

func TestProxyApplyTrap(t *testing.T) {
	double := hostFunc(func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		return num(argAt(args, 0).Number * 2), nil
	})
	plain := construct(t, "Proxy", double, runtime.NewObject(runtime.NewOrdinaryObject(nil)))
	if got, err := runtime.Call(plain, runtime.Undefined, []*runtime.Value{num(4)}); err != nil || got.Number != 8 {
		t.Errorf("forwarded call = %v, %v", got, err)
	}

	handler := runtime.NewOrdinaryObject(nil)
	handler.Set("apply", hostFunc(func(this *runtime.Value, args []*runtime.Value) (*runtime.Value, error) {
		list := argAt(args, 2).Object.ArrayData
		return num(list[0].Number + 1), nil
	}))
	trapped := construct(t, "Proxy", double, runtime.NewObject(handler))
	if got, err := runtime.Call(trapped, runtime.Undefined, []*runtime.Value{num(4)}); err != nil || got.Number != 5 {
		t.Errorf("apply trap = %v, %v", got, err)
	}

	bad := runtime.NewOrdinaryObject(nil)
	bad.Set("get", num(1))
	p := construct(t, "Proxy", runtime.NewObject(runtime.NewOrdinaryObject(nil)), runtime.NewObject(bad))
	_, err := p.Object.Lookup("x")
	wantErr(t, err, "TypeError")
}
