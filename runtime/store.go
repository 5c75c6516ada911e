package runtime

// Store is one link of the variable scope chain. Each store keeps its
// bindings on a record object so that `with` can use an arbitrary object
// as a scope and the global object can double as the root store.
type Store struct {
	Record *Object
	parent *Store
}

// NewGlobalStore makes global the root of a new scope chain.
func NewGlobalStore(global *Object) *Store {
	return &Store{Record: global}
}

// Push creates a child store whose record starts with the given bindings.
func Push(parent *Store, seed map[string]*Value) *Store {
	rec := NewOrdinaryObject(nil)
	for name, v := range seed {
		rec.DefineProperty(name, &Property{Value: v, Writable: true, Enumerable: true})
	}
	return &Store{Record: rec, parent: parent}
}

// PushObject creates a child store backed by an existing object.
func PushObject(parent *Store, obj *Object) *Store {
	return &Store{Record: obj, parent: parent}
}

func (s *Store) Parent() *Store {
	return s.parent
}

// Root returns the global store at the end of the chain.
func (s *Store) Root() *Store {
	for s.parent != nil {
		s = s.parent
	}
	return s
}

// Resolve returns the nearest store that holds name, or the global store
// when no store does.
func (s *Store) Resolve(name string) *Store {
	cur := s
	for {
		if cur.Record.HasProperty(name) || cur.parent == nil {
			return cur
		}
		cur = cur.parent
	}
}

// Has reports whether name is bound anywhere on the chain.
func (s *Store) Has(name string) bool {
	return s.Resolve(name).Record.HasProperty(name)
}

// Declare installs a binding in this store unless one already exists.
// It reports whether a binding was created.
func (s *Store) Declare(name string, v *Value) bool {
	if s.Record.HasOwnProperty(name) {
		return false
	}
	s.Record.DefineProperty(name, &Property{Value: v, Writable: true, Enumerable: true})
	return true
}

// Lookup reads name through the chain. Unbound names read as undefined.
func (s *Store) Lookup(name string) (*Value, error) {
	return s.Resolve(name).Record.Lookup(name)
}

// Assign writes name in the store that binds it, creating a global binding
// when none does.
func (s *Store) Assign(name string, v *Value) error {
	return s.Resolve(name).Record.Assign(name, v)
}
