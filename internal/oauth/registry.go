package oauth

// Registry holds the configured providers, preserving registration order.
// /login redirects to the first registered provider.
type Registry struct {
	order    []string
	services map[string]Service
}

func NewRegistry() *Registry {
	return &Registry{services: map[string]Service{}}
}

// Register adds a provider. Registering the same name twice replaces the
// service but keeps its original position.
func (r *Registry) Register(s Service) {
	name := s.Name()
	if _, exists := r.services[name]; !exists {
		r.order = append(r.order, name)
	}
	r.services[name] = s
}

// Get returns the named provider.
func (r *Registry) Get(name string) (Service, bool) {
	s, ok := r.services[name]
	return s, ok
}

// First returns the first registered provider, if any.
func (r *Registry) First() (Service, bool) {
	if len(r.order) == 0 {
		return nil, false
	}
	return r.services[r.order[0]], true
}

// Names returns the provider names in registration order.
func (r *Registry) Names() []string {
	return r.order
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	return len(r.order)
}
