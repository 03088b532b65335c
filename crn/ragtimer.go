package crn

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
)

// EmptySet is the RAGTIMER token for "no species" on either side of a
// reaction.
const EmptySet = "0"

// ValidIdentifier reports whether name may be used for a species or
// reaction: no whitespace, no period, and not purely numeric.
func ValidIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidIdentifier)
	}
	if strings.ContainsFunc(name, unicode.IsSpace) || strings.Contains(name, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	if _, err := strconv.Atoi(name); err == nil {
		return fmt.Errorf("%w: %q is numeric", ErrInvalidIdentifier, name)
	}
	return nil
}

// LoadRagtimer opens and parses a RAGTIMER file.
func LoadRagtimer(path string, opts ...Option) (*Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseRagtimer(f, opts...)
}

// ParseRagtimer reads the tab-separated RAGTIMER format:
//
//	line 1: species names
//	line 2: initial counts
//	line 3: target counts, -1 for don't-care
//	line 4+: name, reactants..., ">", products..., rate constant
//
// Targets other than -1 become Equal bounds. Rates follow mass-action
// kinetics unless a RateFinder option says otherwise.
func ParseRagtimer(r io.Reader, opts ...Option) (*Network, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(lines) < 3 {
		return nil, fmt.Errorf("%w: need species, initial and target lines, got %d lines", ErrMalformedInput, len(lines))
	}

	species := splitFields(lines[0])
	index := make(map[string]int, len(species))
	for i, name := range species {
		if err := ValidIdentifier(name); err != nil {
			return nil, fmt.Errorf("line 1: %w", err)
		}
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("%w: line 1: duplicate species %q", ErrMalformedInput, name)
		}
		index[name] = i
	}

	initial, err := parseCounts(lines[1], len(species), 2)
	if err != nil {
		return nil, err
	}
	targets, err := parseCounts(lines[2], len(species), 3)
	if err != nil {
		return nil, err
	}
	boundary := make(Boundary, len(species))
	for i, v := range targets {
		if v == -1 {
			boundary[i] = Bound{Kind: DontCare}
			continue
		}
		boundary[i] = Bound{Value: v, Kind: Equal}
	}

	rates := NewMassAction()
	var transitions []*Transition
	seen := make(map[string]int)
	for n, line := range lines[3:] {
		lineNo := n + 4
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		t, err := parseReaction(line, index, rates)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if first, dup := seen[t.Name]; dup {
			return nil, fmt.Errorf("%w: line %d: reaction %q already declared on line %d", ErrMalformedInput, lineNo, t.Name, first)
		}
		seen[t.Name] = lineNo
		rates.Register(t.Name, t.Reactants)
		transitions = append(transitions, t)
	}
	return NewNetwork(species, initial, boundary, transitions, opts...)
}

func parseReaction(line string, index map[string]int, rates *MassAction) (*Transition, error) {
	fields := splitFields(line)
	sep := -1
	for i, f := range fields {
		if f == ">" {
			sep = i
			break
		}
	}
	if sep < 1 || len(fields) < sep+3 {
		return nil, fmt.Errorf("%w: reaction %q needs name, reactants, \">\", products and rate", ErrMalformedInput, line)
	}
	name := fields[0]
	if err := ValidIdentifier(name); err != nil {
		return nil, err
	}
	reactants, err := multiset(fields[1:sep], index)
	if err != nil {
		return nil, err
	}
	products, err := multiset(fields[sep+1:len(fields)-1], index)
	if err != nil {
		return nil, err
	}
	k, err := strconv.ParseFloat(fields[len(fields)-1], 64)
	if err != nil {
		return nil, fmt.Errorf("%w: reaction %s: %v", ErrInvalidRate, name, err)
	}
	return NewReaction(name, reactants, products, k, rates), nil
}

// multiset counts species occurrences. A lone "0" is the empty set.
func multiset(names []string, index map[string]int) ([]int, error) {
	counts := make([]int, len(index))
	if len(names) == 1 && names[0] == EmptySet {
		return counts, nil
	}
	for _, name := range names {
		i, ok := index[name]
		if !ok {
			if err := ValidIdentifier(name); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %q", ErrUnknownSpecies, name)
		}
		counts[i]++
	}
	return counts, nil
}

func parseCounts(line string, n, lineNo int) ([]int, error) {
	fields := splitFields(line)
	if len(fields) != n {
		return nil, fmt.Errorf("%w: line %d has %d values, want %d", ErrDimensionMismatch, lineNo, len(fields), n)
	}
	out := make([]int, n)
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %q is not an integer", ErrMalformedInput, lineNo, f)
		}
		out[i] = v
	}
	return out, nil
}

func splitFields(line string) []string {
	raw := strings.Split(line, "\t")
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		f = strings.TrimSpace(f)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// WriteRagtimer writes a network in RAGTIMER form. Only transitions with
// stoichiometry can be written; others are reported as an error. Bounds
// other than Equal and DontCare cannot be expressed and are rejected.
// Nothing is written when the network cannot be expressed.
func WriteRagtimer(w io.Writer, n *Network) error {
	for _, b := range n.boundary {
		if b.Kind != Equal && b.Kind != DontCare {
			return fmt.Errorf("%w: bound %s has no RAGTIMER form", ErrMalformedInput, b)
		}
	}
	for _, t := range n.transitions {
		if t.Reactants == nil {
			return fmt.Errorf("%w: transition %s has no stoichiometry", ErrMalformedInput, t.Name)
		}
	}

	names := n.Species()
	lines := []string{
		strings.Join(names, "\t"),
		joinInts(n.initial),
		joinInts(n.Target()),
	}
	for _, t := range n.transitions {
		fields := []string{t.Name}
		fields = append(fields, expand(t.Reactants, names)...)
		fields = append(fields, ">")
		fields = append(fields, expand(t.Products, names)...)
		fields = append(fields, strconv.FormatFloat(t.RateConstant, 'g', -1, 64))
		lines = append(lines, strings.Join(fields, "\t"))
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("write ragtimer: %w", err)
		}
	}
	return nil
}

func expand(counts []int, names []string) []string {
	var out []string
	for i, c := range counts {
		for j := 0; j < c; j++ {
			out = append(out, names[i])
		}
	}
	if len(out) == 0 {
		return []string{EmptySet}
	}
	return out
}

func joinInts(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, "\t")
}
