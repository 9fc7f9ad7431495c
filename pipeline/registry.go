package pipeline

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/configura/configura/runtime"
)

// Registry maps step references to the symbols exported under them. It is
// populated once at startup and read by the engine when compiling a
// pipeline.
type Registry struct {
	mu         sync.RWMutex
	namespaces map[string]map[string]any
}

// Handle is a resolved registry entry.
type Handle struct {
	Ref    Reference
	Symbol any
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{namespaces: make(map[string]map[string]any)}
}

// Register exports symbol under ref. Symbols are usually Factory values; any
// other value is accepted but cannot be instantiated. Returns an error if
// ref is already registered.
func (r *Registry) Register(ref string, symbol any) error {
	parsed, err := ParseReference(ref)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ns, ok := r.namespaces[parsed.Location]
	if !ok {
		ns = make(map[string]any)
		r.namespaces[parsed.Location] = ns
	}
	if _, exists := ns[parsed.Name]; exists {
		return fmt.Errorf("step already registered: %q", parsed.String())
	}
	ns[parsed.Name] = symbol
	return nil
}

// MustRegister is like Register but panics on error. Intended for
// registration tables built at init time.
func (r *Registry) MustRegister(ref string, symbol any) {
	if err := r.Register(ref, symbol); err != nil {
		panic(err)
	}
}

// Resolve looks up ref.
func (r *Registry) Resolve(ref string) (Handle, error) {
	parsed, err := ParseReference(ref)
	if err != nil {
		return Handle{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	ns, ok := r.namespaces[parsed.Location]
	if !ok {
		return Handle{}, fmt.Errorf("%w: unknown location %q", ErrNotFound, parsed.Location)
	}
	sym, ok := ns[parsed.Name]
	if !ok {
		return Handle{}, fmt.Errorf("%w: location %q does not define %q", ErrNotFound, parsed.Location, parsed.Name)
	}
	return Handle{Ref: parsed, Symbol: sym}, nil
}

// Instantiate constructs the step behind h. params must be nil, empty or a
// mapping.
func (r *Registry) Instantiate(h Handle, params any, rc *runtime.Context) (Step, error) {
	var factory Factory
	switch f := h.Symbol.(type) {
	case Factory:
		factory = f
	case func(*runtime.Context, Params) (Step, error):
		factory = f
	default:
		return nil, fmt.Errorf("%w: %q refers to %T", ErrNotAConstructible, h.Ref.String(), h.Symbol)
	}
	if factory == nil {
		return nil, fmt.Errorf("%w: %q has a nil factory", ErrNotAConstructible, h.Ref.String())
	}

	p, err := toParams(params)
	if err != nil {
		return nil, err
	}

	step, err := factory(rc, p)
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %w", ErrInvalidParams, h.Ref.String(), err)
	}
	if isNilStep(step) {
		return nil, fmt.Errorf("%w: %s", ErrMissingContract, h.Ref.String())
	}
	return step, nil
}

// isNilStep also catches a typed nil, such as a (*T)(nil) returned through
// the Step interface.
func isNilStep(s Step) bool {
	if s == nil {
		return true
	}
	v := reflect.ValueOf(s)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Slice, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// Build resolves and instantiates ref in one call.
func (r *Registry) Build(ref string, params any, rc *runtime.Context) (Step, error) {
	h, err := r.Resolve(ref)
	if err != nil {
		return nil, err
	}
	return r.Instantiate(h, params, rc)
}

// List returns all registered references, sorted alphabetically.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var refs []string
	for loc, ns := range r.namespaces {
		for name := range ns {
			refs = append(refs, Reference{Location: loc, Name: name}.String())
		}
	}
	sort.Strings(refs)
	return refs
}

func toParams(params any) (Params, error) {
	switch p := params.(type) {
	case nil:
		return Params{}, nil
	case Params:
		return p, nil
	case map[string]any:
		return Params(p), nil
	case []any:
		if len(p) == 0 {
			return Params{}, nil
		}
	case string:
		if p == "" {
			return Params{}, nil
		}
	}
	return nil, fmt.Errorf("%w: params must be a mapping, got %T", ErrInvalidParams, params)
}
