// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package add

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
)

// stats returns information about the node table
func (m *Manager) stats() string {
	res := fmt.Sprintf("Varnum:     %d\n", len(m.varnames))
	res += fmt.Sprintf("Allocated:  %s\n", humanize.Comma(int64(len(m.nodes))))
	res += fmt.Sprintf("Produced:   %s\n", humanize.Comma(int64(m.produced)))
	res += fmt.Sprintf("Terminals:  %d\n", len(m.consts))
	r := (float64(m.freenum) / float64(len(m.nodes))) * 100
	res += fmt.Sprintf("Free:       %s  (%.3g %%)\n", humanize.Comma(int64(m.freenum)), r)
	res += fmt.Sprintf("Used:       %s  (%.3g %%)", humanize.Comma(int64(len(m.nodes)-m.freenum)), (100.0 - r))
	return res
}

func (m *Manager) gcstats() string {
	res := fmt.Sprintf("# of GC:    %d\n", len(m.gcstat.history))
	allocated := int(m.gcstat.setfinalizers)
	reclaimed := int(m.gcstat.calledfinalizers)
	for _, g := range m.gcstat.history {
		allocated += g.setfinalizers
		reclaimed += g.calledfinalizers
	}
	res += fmt.Sprintf("Ext. refs:  %s\n", humanize.Comma(int64(allocated)))
	res += fmt.Sprintf("Reclaimed:  %s", humanize.Comma(int64(reclaimed)))
	return res
}

// Stats returns a textual representation of the table statistics.
func (m *Manager) Stats() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := m.stats() + "\n==============\n" + m.gcstats()
	if _DEBUG {
		res += "\n==============\n" + m.cacheStat.String()
	}
	return res
}

// Size returns the number of live nodes in the table, terminals included.
func (m *Manager) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.nodes) - m.freenum
}

// ************************************************************

// Print returns a one-line description of node n.
func (m *Manager) Print(n Node) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.error != nil {
		return fmt.Sprintf("error %s", m.error)
	}
	if n == nil || *n < 0 {
		return "Error"
	}
	if *n >= len(m.nodes) {
		return fmt.Sprintf("Error (%d not a valid index)", *n)
	}
	if m.nodes[*n].low == -1 {
		return fmt.Sprintf("Error (node %d undefined)", *n)
	}
	if m.isconst(*n) {
		return strconv.FormatFloat(m.value(*n), 'g', -1, 64)
	}
	return fmt.Sprintf("(%d[%s] ? %d : %d)", *n, m.varnames[m.level(*n)], m.low(*n), m.high(*n))
}

// PrintTable writes the nodes reachable from n, one per line, in increasing
// order of their index.
func (m *Manager) PrintTable(w io.Writer, n Node) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkptr(n); err != nil {
		return err
	}
	nodes := []int{}
	m.visit(*n, func(k int) { nodes = append(nodes, k) })
	sort.Ints(nodes)
	tw := tabwriter.NewWriter(w, 0, 0, 0, ' ', 0)
	for _, k := range nodes {
		if m.isconst(k) {
			fmt.Fprintf(tw, "%d\t[const\t] = \t%g\n", k, m.value(k))
			continue
		}
		fmt.Fprintf(tw, "%d\t[%s\t] ? \t%d\t : %d\n", k, m.varnames[m.level(k)], m.low(k), m.high(k))
	}
	return tw.Flush()
}

// ************************************************************

// FPrintDot writes a graph-like description of the ADD with root n, using the
// DOT format, in the given file. We use the standard output if filename is
// "-".
func (m *Manager) FPrintDot(filename string, label string, n Node) error {
	var out *os.File
	var err error
	if filename == "-" {
		out = os.Stdout
	} else {
		out, err = os.Create(filename)
		if err != nil {
			return err
		}
		defer out.Close()
	}
	return m.PrintDot(out, label, n)
}

// PrintDot writes a GraphViz DOT description of the ADD with root n to w.
// Terminals are drawn as boxes and we do not draw the constant 0, nor the arcs
// that go to it. Low (false) branches are dotted. The graph is tagged with
// label when it is not empty.
func (m *Manager) PrintDot(w io.Writer, label string, n Node) error {
	m.mu.Lock()
	if err := m.checkptr(n); err != nil {
		m.mu.Unlock()
		return err
	}
	nodes := []int{}
	m.visit(*n, func(k int) { nodes = append(nodes, k) })
	sort.Ints(nodes)
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "digraph G {")
	if label != "" {
		fmt.Fprintf(bw, "label=%q;\n", label)
		fmt.Fprintln(bw, "labelloc=t;")
	}
	for _, v := range nodes {
		switch {
		case v == 0:
			if len(nodes) == 1 {
				fmt.Fprintln(bw, "0 [shape=box, label=\"0\", style=filled, height=0.3, width=0.3];")
			}
		case m.isconst(v):
			fmt.Fprintf(bw, "%d [shape=box, label=\"%g\", style=filled, height=0.3, width=0.3];\n", v, m.value(v))
		default:
			fmt.Fprintf(bw, "%d %s\n", v, dotlabel(v, m.varnames[m.level(v)]))
			if m.low(v) != 0 {
				fmt.Fprintf(bw, "%d -> %d [style=dotted];\n", v, m.low(v))
			}
			if m.high(v) != 0 {
				fmt.Fprintf(bw, "%d -> %d [style=filled];\n", v, m.high(v))
			}
		}
	}
	fmt.Fprintln(bw, "}")
	m.mu.Unlock()
	return bw.Flush()
}

func dotlabel(a int, name string) string {
	return fmt.Sprintf(`[label=<
	<FONT POINT-SIZE="20">%s</FONT>
	<FONT POINT-SIZE="10">[%d]</FONT>
>];`, name, a)
}
