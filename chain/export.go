package chain

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// labelOrder fixes the declaration order of the label file.
var labelOrder = []string{LabelInit, LabelSatisfy, LabelAbsorbing, LabelDeadlock}

// WriteExplicit writes the chain in the explicit CTMC format read by
// Storm: a transition file of "src dst rate" lines headed by the model
// type, and a label file with a declaration block.
func (c *Chain) WriteExplicit(tra, lab io.Writer) error {
	tw := bufio.NewWriter(tra)
	fmt.Fprintln(tw, "ctmc")
	for r, row := range c.Rows {
		for _, e := range row {
			fmt.Fprintf(tw, "%d %d %s\n", r, e.Column, strconv.FormatFloat(e.Rate, 'g', -1, 64))
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write transitions: %w", err)
	}

	byRow := c.rowLabels()
	rows := make([]int, 0, len(byRow))
	for r := range byRow {
		rows = append(rows, r)
	}
	sort.Ints(rows)

	lw := bufio.NewWriter(lab)
	fmt.Fprintln(lw, "#DECLARATION")
	fmt.Fprintln(lw, strings.Join(labelOrder, " "))
	fmt.Fprintln(lw, "#END")
	for _, r := range rows {
		fmt.Fprintf(lw, "%d %s\n", r, strings.Join(byRow[r], " "))
	}
	if err := lw.Flush(); err != nil {
		return fmt.Errorf("write labels: %w", err)
	}
	return nil
}
