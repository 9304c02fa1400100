package rpc

import "encoding/json"

// Handler computes one RPC method. On success it returns the result rendered
// as a string together with its result_type tag; on rejection it returns a
// wire-level *Error.
type Handler func(params json.RawMessage) (result string, resultType string, rpcErr *Error)

// MethodRegistry maps method names to handlers. It is built once at startup
// and treated as read-only afterwards, so it is safe to share across
// connection goroutines.
type MethodRegistry struct {
	methods map[string]Handler
}

// NewMethodRegistry creates an empty registry.
func NewMethodRegistry() *MethodRegistry {
	return &MethodRegistry{methods: make(map[string]Handler)}
}

// Register adds a handler for a method name.
func (r *MethodRegistry) Register(method string, handler Handler) {
	r.methods[method] = handler
}

// Lookup returns the handler for a method, or nil if not found.
func (r *MethodRegistry) Lookup(method string) Handler {
	return r.methods[method]
}

// Methods returns all registered method names.
func (r *MethodRegistry) Methods() []string {
	names := make([]string, 0, len(r.methods))
	for name := range r.methods {
		names = append(names, name)
	}
	return names
}
