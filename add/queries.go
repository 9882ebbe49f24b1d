// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package add

import (
	"fmt"
	"math"
	"math/big"
	"sort"
)

// Eval returns the value of n for the given assignment of variables.
// Variables that are absent from the assignment are considered false. The
// result is NaN, and the error status is set, if n is not a valid node.
func (m *Manager) Eval(n Node, assignment map[string]bool) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkptr(n); err != nil {
		m.seterror(err, "wrong operand in call to Eval")
		return math.NaN()
	}
	k := *n
	for !m.isconst(k) {
		if assignment[m.varnames[m.level(k)]] {
			k = m.high(k)
		} else {
			k = m.low(k)
		}
	}
	return m.value(k)
}

// Support returns the names of the variables that n depends on, in level
// order.
func (m *Manager) Support(n Node) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkptr(n); err != nil {
		m.seterror(err, "wrong operand in call to Support")
		return nil
	}
	levels := make(map[int32]struct{})
	m.visit(*n, func(k int) {
		if !m.isconst(k) {
			levels[m.level(k)] = struct{}{}
		}
	})
	res := make([]int32, 0, len(levels))
	for l := range levels {
		res = append(res, l)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	names := make([]string, len(res))
	for i, l := range res {
		names[i] = m.varnames[l]
	}
	return names
}

// Terminals returns the distinct terminal values reachable from n, sorted in
// increasing order (a NaN terminal comes first).
func (m *Manager) Terminals(n Node) []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkptr(n); err != nil {
		m.seterror(err, "wrong operand in call to Terminals")
		return nil
	}
	res := []float64{}
	m.visit(*n, func(k int) {
		if m.isconst(k) {
			res = append(res, m.value(k))
		}
	})
	sort.Float64s(res)
	return res
}

// IsBoolean reports whether all the terminals reachable from n are 0 or 1.
func (m *Manager) IsBoolean(n Node) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.checkptr(n) != nil {
		return false
	}
	res := true
	m.visit(*n, func(k int) {
		if m.isconst(k) && k > 1 {
			res = false
		}
	})
	return res
}

// Nodecount returns the number of nodes, terminals included, reachable from
// n.
func (m *Manager) Nodecount(n Node) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.checkptr(n) != nil {
		return 0
	}
	res := 0
	m.visit(*n, func(int) { res++ })
	return res
}

// visit calls f once on every node reachable from n, in depth-first order.
func (m *Manager) visit(n int, f func(int)) {
	seen := make(map[int]struct{})
	stack := []int{n}
	for len(stack) > 0 {
		k := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		f(k)
		if !m.isconst(k) {
			stack = append(stack, m.high(k), m.low(k))
		}
	}
}

// ************************************************************

// Satcount computes the number of variable assignments, over all the declared
// variables, for which n is not zero. We return a result using
// arbitrary-precision arithmetic to avoid possible overflows. The result is
// zero (and we set the error flag of m) if there is an error.
func (m *Manager) Satcount(n Node) *big.Int {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := big.NewInt(0)
	if err := m.checkptr(n); err != nil {
		m.seterror(err, "wrong operand in call to Satcount")
		return res
	}
	// We compute 2^level with a bit shift 1 << level
	res.SetBit(res, int(m.lvl(*n)), 1)
	satc := make(map[int]*big.Int)
	return res.Mul(res, m.satcount(*n, satc))
}

func (m *Manager) satcount(n int, satc map[int]*big.Int) *big.Int {
	if m.isconst(n) {
		if m.value(n) == 0 {
			return big.NewInt(0)
		}
		return big.NewInt(1)
	}
	// we use satc to memoize the value of satcount for each nodes
	res, ok := satc[n]
	if ok {
		return res
	}
	level := m.lvl(n)
	low := m.low(n)
	high := m.high(n)

	res = big.NewInt(0)
	two := big.NewInt(0)
	two.SetBit(two, int(m.lvl(low)-level-1), 1)
	res.Add(res, two.Mul(two, m.satcount(low, satc)))
	two = big.NewInt(0)
	two.SetBit(two, int(m.lvl(high)-level-1), 1)
	res.Add(res, two.Mul(two, m.satcount(high, satc)))
	satc[n] = res
	return res
}

// Allpaths iterates through all the paths of n that lead to a non-zero
// terminal and calls the function f on each of them. We pass an int slice of
// length Varnum to f where each entry is either 0 if the variable is false, 1
// if it is true, and -1 if it is a don't care, together with the value of the
// terminal. We stop and return an error if f returns an error at some point.
//
// The following is an example of a callback handler that lists the valid
// configurations of a feature model together with their reliability:
//
//	m.Allpaths(rel, func(profile []int, value float64) error {
//		fmt.Println(profile, value)
//		return nil
//	})
func (m *Manager) Allpaths(n Node, f func([]int, float64) error) error {
	m.mu.Lock()
	if err := m.checkptr(n); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("wrong node in call to Allpaths: %w", err)
	}
	type path struct {
		prof  []int
		value float64
	}
	// we collect the paths before calling f, so that f may use m
	paths := []path{}
	prof := make([]int, len(m.varnames))
	for k := range prof {
		prof[k] = -1
	}
	m.allpaths(*n, prof, func(p []int, v float64) {
		c := make([]int, len(p))
		copy(c, p)
		paths = append(paths, path{c, v})
	})
	m.mu.Unlock()
	for _, p := range paths {
		if err := f(p.prof, p.value); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) allpaths(n int, prof []int, f func([]int, float64)) {
	if m.isconst(n) {
		if m.value(n) != 0 {
			f(prof, m.value(n))
		}
		return
	}
	level := m.level(n)
	for branch, next := range [2]int{m.low(n), m.high(n)} {
		if next == 0 {
			continue
		}
		prof[level] = branch
		for v := m.lvl(next) - 1; v > level; v-- {
			prof[v] = -1
		}
		m.allpaths(next, prof, f)
	}
	prof[level] = -1
}

// Allnodes applies function f over all the nodes accessible from the nodes in
// the sequence n..., or all the active nodes if n is absent. The parameters to
// function f are the id, level, and id's of the low and high successors of
// each node, and the value (meaningful only for terminals, whose level is -1).
// The constants 0 and 1 have always the id 0 and 1, respectively.
//
// The order in which nodes are visited is not specified. We stop the
// computation and return an error if f returns an error at some point.
func (m *Manager) Allnodes(f func(id, level, low, high int, value float64) error, n ...Node) error {
	m.mu.Lock()
	type entry struct {
		id, level, low, high int
		value                float64
	}
	entries := []entry{}
	add := func(k int) {
		nd := m.nodes[k]
		level := int(nd.level)
		if nd.level == _CONSTLEVEL {
			level = -1
		}
		entries = append(entries, entry{k, level, nd.low, nd.high, nd.value})
	}
	if len(n) == 0 {
		for k := range m.nodes {
			if m.nodes[k].low != -1 {
				add(k)
			}
		}
	} else {
		seen := make(map[int]struct{})
		for _, v := range n {
			if err := m.checkptr(v); err != nil {
				m.mu.Unlock()
				return fmt.Errorf("wrong node in call to Allnodes: %w", err)
			}
			m.visit(*v, func(k int) {
				if _, ok := seen[k]; !ok {
					seen[k] = struct{}{}
					add(k)
				}
			})
		}
	}
	m.mu.Unlock()
	for _, e := range entries {
		if err := f(e.id, e.level, e.low, e.high, e.value); err != nil {
			return err
		}
	}
	return nil
}
