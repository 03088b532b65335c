// Package threespecies is the three-species smoke-test network: each
// species has one fast producing and one slow consuming transition, both
// guarded by thresholds.
package threespecies

import "github.com/fluentverification/wayfarer/crn"

// Model implements crn.ModelSpec.
type Model struct{}

func init() { crn.Register(Model{}) }

// Name returns the identifier used by `wayfarer explore --builtin`.
func (Model) Name() string { return "threespecies" }

// Description states the target in words.
func (Model) Description() string {
	return "three species from (0,0,0); reach A>200, B>2 and exactly C=98"
}

// Build constructs the network.
func (Model) Build() (*crn.Network, error) { return New() }

// New constructs the network with the given options.
func New(opts ...crn.Option) (*crn.Network, error) {
	transitions := []*crn.Transition{
		step("a_down", []int{-10, 0, 0}, 1.7, 0, crn.GreaterThan, 50),
		step("a_up", []int{40, 0, 0}, 5.7, 0, crn.LessThan, 1000),
		step("b_up", []int{0, 1, 0}, 3, 1, crn.LessThan, 100),
		step("b_down", []int{0, -1, 0}, 0.5, 1, crn.GreaterThan, 1),
		step("c_up", []int{0, 0, 10}, 4, 2, crn.LessThan, 100),
		step("c_down", []int{0, 0, -2}, 0.3, 2, crn.GreaterThan, 2),
	}
	boundary := crn.Boundary{
		{Value: 200, Kind: crn.GreaterThan},
		{Value: 2, Kind: crn.GreaterThan},
		{Value: 98, Kind: crn.Equal},
	}
	return crn.NewNetwork([]string{"A", "B", "C"}, crn.State{0, 0, 0}, boundary, transitions, opts...)
}

func step(name string, update []int, rate float64, species int, kind crn.BoundKind, threshold int) *crn.Transition {
	return &crn.Transition{
		Name:         name,
		Update:       update,
		RateConstant: rate,
		Guard:        crn.ThresholdGuard{Species: species, Kind: kind, Value: threshold},
		Rates:        crn.ConstantRate{},
	}
}
