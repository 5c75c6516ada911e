package runtime

import "fmt"

// NewProxy creates an object that forwards every operation to target.
// When handler defines the matching trap (get, set, has, deleteProperty,
// ownKeys or apply) the trap runs instead.
func NewProxy(target, handler *Object) *Object {
	p := &Object{
		OType:      ObjTypeProxy,
		Properties: make(map[string]*Property),
		Prototype:  target.Prototype,
		Internal: map[string]interface{}{
			"target":  target,
			"handler": handler,
		},
	}
	if target.Callable != nil {
		p.Callable = func(this *Value, args []*Value) (*Value, error) {
			trap, err := p.trap("apply")
			if err != nil {
				return nil, err
			}
			if trap == nil {
				return target.Callable(this, args)
			}
			return p.callTrap(trap, NewObject(target), this, NewArray(append([]*Value(nil), args...)))
		}
	}
	return p
}

// ProxyTarget returns the object a proxy forwards to.
func ProxyTarget(o *Object) (*Object, bool) {
	if o == nil || o.OType != ObjTypeProxy {
		return nil, false
	}
	t, ok := o.Internal["target"].(*Object)
	return t, ok
}

func (o *Object) proxyTarget() *Object {
	t, _ := ProxyTarget(o)
	return t
}

// trap returns the handler's trap, or nil when the handler leaves the
// operation to the target.
func (o *Object) trap(name string) (*Value, error) {
	handler, _ := o.Internal["handler"].(*Object)
	if handler == nil {
		return nil, nil
	}
	fn, err := handler.Lookup(name)
	if err != nil {
		return nil, err
	}
	if fn.IsNullish() {
		return nil, nil
	}
	if !fn.IsCallable() {
		return nil, fmt.Errorf("TypeError: proxy trap %s is not a function", name)
	}
	return fn, nil
}

func (o *Object) callTrap(trap *Value, args ...*Value) (*Value, error) {
	handler, _ := o.Internal["handler"].(*Object)
	return Call(trap, NewObject(handler), args)
}

func (o *Object) proxyGet(name string, receiver *Value) (*Value, error) {
	trap, err := o.trap("get")
	if err != nil {
		return nil, err
	}
	if trap == nil {
		return o.proxyTarget().lookup(name, receiver)
	}
	return o.callTrap(trap, NewObject(o.proxyTarget()), NewString(name), receiver)
}

// proxySet ignores a falsy trap result: assignments outside strict mode do
// not report rejected writes.
func (o *Object) proxySet(name string, val *Value) error {
	trap, err := o.trap("set")
	if err != nil {
		return err
	}
	if trap == nil {
		return o.proxyTarget().Assign(name, val)
	}
	_, err = o.callTrap(trap, NewObject(o.proxyTarget()), NewString(name), val, NewObject(o))
	return err
}

func (o *Object) proxyHas(name string) bool {
	trap, err := o.trap("has")
	if err != nil {
		return false
	}
	if trap == nil {
		return o.proxyTarget().HasProperty(name)
	}
	res, err := o.callTrap(trap, NewObject(o.proxyTarget()), NewString(name))
	return err == nil && res.ToBoolean()
}

func (o *Object) proxyDelete(name string) bool {
	trap, err := o.trap("deleteProperty")
	if err != nil {
		return false
	}
	if trap == nil {
		return o.proxyTarget().Delete(name)
	}
	res, err := o.callTrap(trap, NewObject(o.proxyTarget()), NewString(name))
	return err == nil && res.ToBoolean()
}

// proxyOwnKeys reads the ownKeys trap result as an array of names.
func (o *Object) proxyOwnKeys() []string {
	trap, err := o.trap("ownKeys")
	if err != nil {
		return nil
	}
	if trap == nil {
		return o.proxyTarget().OwnKeys()
	}
	res, err := o.callTrap(trap, NewObject(o.proxyTarget()))
	if err != nil || res.Type != TypeObject || !res.Object.hasElements() {
		return nil
	}
	keys := make([]string, 0, len(res.Object.ArrayData))
	for _, k := range res.Object.ArrayData {
		if k != nil {
			keys = append(keys, k.ToString())
		}
	}
	return keys
}
