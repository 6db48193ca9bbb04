package fiber

import "sync"

// Registry is a name→function table. The default registry carries the
// built-in functions; callers may register additional implementations
// before the store starts serving.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]Function
}

// NewRegistry returns a registry populated with the built-in functions.
func NewRegistry() *Registry {
	r := &Registry{funcs: map[string]Function{}}
	r.Register(Identity{})
	r.Register(Hash{Buckets: 64})
	return r
}

// Register adds or replaces a function under its name.
func (r *Registry) Register(f Function) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[f.Name()] = f
}

// Resolve looks up a function by name.
func (r *Registry) Resolve(name string) (Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.funcs[name]
	return f, ok
}

// Names returns the registered function names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	return names
}
