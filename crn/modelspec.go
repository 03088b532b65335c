package crn

// ModelSpec is the small API that built-in model packages implement.
type ModelSpec interface {
	Name() string
	Description() string // human meaning of the network and its target
	Build() (*Network, error)
}

var registry = map[string]ModelSpec{}

// Register makes a model available by name. It is meant to be called from
// the init function of a model package.
func Register(m ModelSpec) {
	registry[m.Name()] = m
}

// Lookup returns a registered model.
func Lookup(name string) (ModelSpec, bool) {
	m, ok := registry[name]
	return m, ok
}

// Models lists the registered model names in sorted order.
func Models() []string {
	return sortedKeys(registry)
}
