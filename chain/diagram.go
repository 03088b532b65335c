package chain

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// rowName is the diagram identifier of a row.
func (c *Chain) rowName(r int) string {
	if r == AbsorbingIndex {
		return "absorbing"
	}
	if r < len(c.States) && c.States[r] != nil {
		return c.States[r].String()
	}
	return "s" + strconv.Itoa(r)
}

// rowLabels returns the labels of every row in declaration order.
func (c *Chain) rowLabels() map[int][]string {
	byRow := make(map[int][]string)
	for _, label := range labelOrder {
		for _, r := range c.Labels[label] {
			byRow[r] = append(byRow[r], label)
		}
	}
	return byRow
}

// WriteDOT writes the chain as a Graphviz digraph. Edges carry rates and
// labeled rows list their labels.
func (c *Chain) WriteDOT(w io.Writer) error {
	bw := bufio.NewWriter(w)
	labels := c.rowLabels()

	fmt.Fprintln(bw, "digraph Chain {")
	fmt.Fprintln(bw, "  rankdir=LR;")
	fmt.Fprintln(bw, "  node [shape=circle];")
	fmt.Fprintln(bw)
	if init := c.Labels[LabelInit]; len(init) > 0 {
		fmt.Fprintln(bw, "  start [shape=point];")
		fmt.Fprintf(bw, "  start -> r%d;\n", init[0])
		fmt.Fprintln(bw)
	}
	for r := range c.Rows {
		text := c.rowName(r)
		if ls := labels[r]; len(ls) > 0 {
			text += `\n{` + strings.Join(ls, ", ") + "}"
		}
		shape := ""
		if r == AbsorbingIndex {
			shape = ", shape=doublecircle"
		}
		fmt.Fprintf(bw, "  r%d [label=\"%s\"%s];\n", r, text, shape)
	}
	fmt.Fprintln(bw)
	for r, row := range c.Rows {
		for _, e := range row {
			fmt.Fprintf(bw, "  r%d -> r%d [label=\"%s\"];\n", r, e.Column, strconv.FormatFloat(e.Rate, 'g', 4, 64))
		}
	}
	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

// WriteMermaid writes the chain as a Mermaid stateDiagram-v2. Self-loops
// of terminal rows are left out.
func (c *Chain) WriteMermaid(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "stateDiagram-v2")
	if init := c.Labels[LabelInit]; len(init) > 0 {
		fmt.Fprintf(bw, "  [*] --> r%d\n", init[0])
	}
	for r, row := range c.Rows {
		for _, e := range row {
			if e.Column == r {
				continue
			}
			fmt.Fprintf(bw, "  r%d --> r%d: %s\n", r, e.Column, strconv.FormatFloat(e.Rate, 'g', 4, 64))
		}
	}
	labels := c.rowLabels()
	for r := range c.Rows {
		desc := c.rowName(r)
		if ls := labels[r]; len(ls) > 0 {
			desc += " " + strings.Join(ls, " ")
		}
		fmt.Fprintf(bw, "  r%d: %s\n", r, desc)
	}
	return bw.Flush()
}
