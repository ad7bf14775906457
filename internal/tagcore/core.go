package tagcore

// Core is the explicit, non-global handle spec.md §9 asks for in place
// of diffuse package-level singletons: one Registry and one Admin
// endpoint, created together and sized together. Every client-facing
// component (transport, discovery) is built from one Core.
type Core struct {
	Registry *Registry
	Admin    *Admin
}

// NewCore creates a Registry bounded by capacity and its single
// Administrative Endpoint (spec.md §9 "init creates the registry and
// the administrative endpoint").
func NewCore(capacity int) *Core {
	reg := NewRegistry(capacity)
	return &Core{
		Registry: reg,
		Admin:    NewAdmin(reg),
	}
}

// Open attaches a new Endpoint session to the named tag. It returns nil
// if no such tag is live — Open never creates (spec.md §4.3).
func (c *Core) Open(name string) *Endpoint {
	t := c.Registry.Lookup(name)
	if t == nil {
		return nil
	}
	return OpenEndpoint(t)
}
