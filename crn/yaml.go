package crn

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// NetworkFile is the YAML form of a network. Unlike RAGTIMER it can
// express inequality targets:
//
//	species: [A, B]
//	initial: {A: 0, B: 5}
//	target: {A: ">200", B: "*"}
//	reactions:
//	  - name: make_a
//	    reactants: {B: 1}
//	    products: {A: 2}
//	    rate: 0.5
type NetworkFile struct {
	Species   []string          `yaml:"species"`
	Initial   map[string]int    `yaml:"initial"`
	Target    map[string]string `yaml:"target"`
	Reactions []ReactionFile    `yaml:"reactions"`
}

// ReactionFile is one reaction entry of a NetworkFile.
type ReactionFile struct {
	Name      string         `yaml:"name"`
	Reactants map[string]int `yaml:"reactants,omitempty"`
	Products  map[string]int `yaml:"products,omitempty"`
	Rate      float64        `yaml:"rate"`
}

// LoadYAML opens and decodes a YAML network file.
func LoadYAML(path string, opts ...Option) (*Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeYAML(f, opts...)
}

// DecodeYAML reads a NetworkFile and builds the network. Species missing
// from initial start at zero; species missing from target are DontCare.
func DecodeYAML(r io.Reader, opts ...Option) (*Network, error) {
	var nf NetworkFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&nf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return nf.Network(opts...)
}

// Network converts the file form into a validated network.
func (nf *NetworkFile) Network(opts ...Option) (*Network, error) {
	index := make(map[string]int, len(nf.Species))
	for i, name := range nf.Species {
		if err := ValidIdentifier(name); err != nil {
			return nil, err
		}
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("%w: duplicate species %q", ErrMalformedInput, name)
		}
		index[name] = i
	}

	initial := make(State, len(nf.Species))
	for _, name := range sortedKeys(nf.Initial) {
		i, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("%w: initial %q", ErrUnknownSpecies, name)
		}
		initial[i] = nf.Initial[name]
	}

	boundary := make(Boundary, len(nf.Species))
	for _, name := range sortedKeys(nf.Target) {
		i, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("%w: target %q", ErrUnknownSpecies, name)
		}
		b, err := ParseBound(nf.Target[name])
		if err != nil {
			return nil, fmt.Errorf("target %s: %w", name, err)
		}
		boundary[i] = b
	}

	rates := NewMassAction()
	transitions := make([]*Transition, 0, len(nf.Reactions))
	seen := make(map[string]bool, len(nf.Reactions))
	for _, rf := range nf.Reactions {
		if err := ValidIdentifier(rf.Name); err != nil {
			return nil, err
		}
		if seen[rf.Name] {
			return nil, fmt.Errorf("%w: duplicate reaction %q", ErrMalformedInput, rf.Name)
		}
		seen[rf.Name] = true
		reactants, err := countsOf(rf.Reactants, index)
		if err != nil {
			return nil, fmt.Errorf("reaction %s: %w", rf.Name, err)
		}
		products, err := countsOf(rf.Products, index)
		if err != nil {
			return nil, fmt.Errorf("reaction %s: %w", rf.Name, err)
		}
		rates.Register(rf.Name, reactants)
		transitions = append(transitions, NewReaction(rf.Name, reactants, products, rf.Rate, rates))
	}
	return NewNetwork(nf.Species, initial, boundary, transitions, opts...)
}

func countsOf(m map[string]int, index map[string]int) ([]int, error) {
	counts := make([]int, len(index))
	for name, c := range m {
		i, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownSpecies, name)
		}
		if c < 0 {
			return nil, fmt.Errorf("%w: negative multiplicity for %s", ErrMalformedInput, name)
		}
		counts[i] = c
	}
	return counts, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
