// Package fourspecies extends the smoke-test network with a fourth
// species D whose transitions are gated by the count of C.
package fourspecies

import "github.com/fluentverification/wayfarer/crn"

// Model implements crn.ModelSpec.
type Model struct{}

func init() { crn.Register(Model{}) }

func (Model) Name() string { return "fourspecies" }

func (Model) Description() string {
	return "four species from (0,0,0,0); reach A>200, B>2, C=98 and D=98"
}

func (Model) Build() (*crn.Network, error) { return New() }

// New constructs the network with the given options.
func New(opts ...crn.Option) (*crn.Network, error) {
	gate := func(kind crn.BoundKind, v int) crn.Guard {
		return crn.ThresholdGuard{Species: 2, Kind: kind, Value: v}
	}
	transitions := []*crn.Transition{
		{Name: "a_down", Update: []int{-1, 0, 0, 0}, RateConstant: 0.01,
			Guard: crn.ThresholdGuard{Species: 0, Kind: crn.GreaterThan, Value: 50}},
		{Name: "a_up", Update: []int{10, 0, 0, 0}, RateConstant: 3.3,
			Guard: crn.ThresholdGuard{Species: 0, Kind: crn.LessThan, Value: 1000}},
		{Name: "b_up", Update: []int{0, 1, 0, 0}, RateConstant: 1,
			Guard: crn.ThresholdGuard{Species: 1, Kind: crn.LessThan, Value: 100}},
		{Name: "b_down", Update: []int{0, -1, 0, 0}, RateConstant: 0.05,
			Guard: crn.ThresholdGuard{Species: 1, Kind: crn.GreaterThan, Value: 1}},
		{Name: "c_up", Update: []int{0, 0, 10, 0}, RateConstant: 4, Guard: gate(crn.LessThan, 100)},
		{Name: "c_down", Update: []int{0, 0, -2, 0}, RateConstant: 0.03, Guard: gate(crn.GreaterThan, 2)},
		{Name: "d_up", Update: []int{0, 0, 0, 2}, RateConstant: 4, Guard: gate(crn.LessThan, 100)},
		{Name: "d_down", Update: []int{0, 0, 0, -1}, RateConstant: 0.003, Guard: gate(crn.GreaterThan, 2)},
	}
	boundary := crn.Boundary{
		{Value: 200, Kind: crn.GreaterThan},
		{Value: 2, Kind: crn.GreaterThan},
		{Value: 98, Kind: crn.Equal},
		{Value: 98, Kind: crn.Equal},
	}
	return crn.NewNetwork([]string{"A", "B", "C", "D"}, crn.State{0, 0, 0, 0}, boundary, transitions, opts...)
}
