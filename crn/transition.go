package crn

// Guard decides whether a transition is enabled in a state. Implementations
// must be pure functions of the state.
type Guard interface {
	Enabled(s State) bool
}

// Always is a Guard that never blocks.
type Always struct{}

func (Always) Enabled(State) bool { return true }

// ReactantGuard requires at least Reactants[i] copies of species i.
type ReactantGuard struct {
	Reactants []int
}

func (g ReactantGuard) Enabled(s State) bool {
	for i, need := range g.Reactants {
		if need > 0 && s[i] < need {
			return false
		}
	}
	return true
}

// ThresholdGuard compares one species count against a constant.
type ThresholdGuard struct {
	Species int
	Kind    BoundKind
	Value   int
}

func (g ThresholdGuard) Enabled(s State) bool {
	return g.Kind.Compare(s[g.Species], g.Value)
}

// AllOf is enabled when every member guard is enabled.
type AllOf []Guard

func (a AllOf) Enabled(s State) bool {
	for _, g := range a {
		if !g.Enabled(s) {
			return false
		}
	}
	return true
}

// RateFinder computes the propensity of a transition in a state from its
// rate constant. It is injected at network construction.
type RateFinder interface {
	FindRate(s State, rateConstant float64, name string) float64
}

// RateFinderFunc adapts a plain function to RateFinder.
type RateFinderFunc func(s State, rateConstant float64, name string) float64

func (f RateFinderFunc) FindRate(s State, rateConstant float64, name string) float64 {
	return f(s, rateConstant, name)
}

// ConstantRate ignores the state and returns the rate constant.
type ConstantRate struct{}

func (ConstantRate) FindRate(_ State, rateConstant float64, _ string) float64 {
	return rateConstant
}

// MassAction is the default RateFinder: k times the number of distinct
// reactant combinations, k * prod_i C(x_i, r_i). Reactions it has no
// stoichiometry for fall back to the bare rate constant.
type MassAction struct {
	reactants map[string][]int
}

// NewMassAction returns an empty mass-action rate finder.
func NewMassAction() *MassAction {
	return &MassAction{reactants: make(map[string][]int)}
}

// Register records the reactant multiplicities of a named reaction.
func (m *MassAction) Register(name string, reactants []int) {
	r := make([]int, len(reactants))
	copy(r, reactants)
	m.reactants[name] = r
}

func (m *MassAction) FindRate(s State, rateConstant float64, name string) float64 {
	rate := rateConstant
	for i, need := range m.reactants[name] {
		for j := 0; j < need; j++ {
			rate *= float64(s[i]-j) / float64(j+1)
		}
	}
	if rate < 0 {
		return 0
	}
	return rate
}

// Transition is one reaction of the network.
type Transition struct {
	Name         string
	Update       []int
	RateConstant float64

	// Reactants and Products hold stoichiometry when the transition came
	// from a reaction; both are nil for hand-built transitions.
	Reactants []int
	Products  []int
	// Catalysts marks species that gate the rate but are left unchanged.
	Catalysts []bool

	Guard Guard
	Rates RateFinder
}

// Clone returns a copy with its own vectors. Guard and Rates are shared.
func (t *Transition) Clone() *Transition {
	c := *t
	c.Update = cloneInts(t.Update)
	c.Reactants = cloneInts(t.Reactants)
	c.Products = cloneInts(t.Products)
	if t.Catalysts != nil {
		c.Catalysts = append([]bool(nil), t.Catalysts...)
	}
	return &c
}

func cloneInts(v []int) []int {
	if v == nil {
		return nil
	}
	return append([]int(nil), v...)
}

// Enabled reports whether the transition may fire in s.
func (t *Transition) Enabled(s State) bool {
	if t.Guard == nil {
		return true
	}
	return t.Guard.Enabled(s)
}

// Rate returns the propensity of the transition in s.
func (t *Transition) Rate(s State) float64 {
	if t.Rates == nil {
		return t.RateConstant
	}
	return t.Rates.FindRate(s, t.RateConstant, t.Name)
}

// Apply returns the state reached by firing the transition.
func (t *Transition) Apply(s State) State {
	return s.Add(t.Update)
}

// IsProducerOf reports whether the transition creates species i from
// nothing: i is among its products but not its reactants.
func (t *Transition) IsProducerOf(i int) bool {
	if t.Reactants == nil && t.Products == nil {
		return t.Update[i] > 0
	}
	return t.Products[i] > 0 && t.Reactants[i] == 0
}

// IsConsumerOf reports whether the transition uses up species i: i is
// among its reactants but not its products.
func (t *Transition) IsConsumerOf(i int) bool {
	if t.Reactants == nil && t.Products == nil {
		return t.Update[i] < 0
	}
	return t.Reactants[i] > 0 && t.Products[i] == 0
}

// Requirement returns the species counts that must be present for the
// transition to fire. Hand-built transitions report what their update
// removes.
func (t *Transition) Requirement() []int {
	req := make([]int, len(t.Update))
	if t.Reactants != nil {
		copy(req, t.Reactants)
		return req
	}
	for i, u := range t.Update {
		if u < 0 {
			req[i] = -u
		}
	}
	return req
}

// NewReaction builds a mass-action style transition from stoichiometry.
// The update is products minus reactants, and the guard requires the
// reactants to be present.
func NewReaction(name string, reactants, products []int, rateConstant float64, rates RateFinder) *Transition {
	n := len(reactants)
	update := make([]int, n)
	catalysts := make([]bool, n)
	for i := 0; i < n; i++ {
		update[i] = products[i] - reactants[i]
		catalysts[i] = reactants[i] > 0 && update[i] == 0
	}
	return &Transition{
		Name:         name,
		Update:       update,
		RateConstant: rateConstant,
		Reactants:    append([]int(nil), reactants...),
		Products:     append([]int(nil), products...),
		Catalysts:    catalysts,
		Guard:        ReactantGuard{Reactants: append([]int(nil), reactants...)},
		Rates:        rates,
	}
}
