// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package add

import (
	"log"
)

// gcstat stores status information about garbage collections. We use a stack
// (slice) of objects to record the sequence of GC during a computation.
type gcstat struct {
	setfinalizers    uint64    // Total number of external references to nodes
	calledfinalizers uint64    // Number of external references that were freed
	history          []gcpoint // Snaphot of GC stats at each occurrence
}

type gcpoint struct {
	nodes            int // Total number of allocated nodes in the nodetable
	freenodes        int // Number of free nodes in the nodetable
	setfinalizers    int // Total number of external references to nodes
	calledfinalizers int // Number of external references that were freed
}

// *************************************************************************

// gbc is the garbage collector called for reclaiming memory, inside a call to
// makenode or makeconst, when there are no free positions available.
// Allocated nodes that are not reclaimed do not move.
func (m *Manager) gbc() {
	if _LOGLEVEL > 0 {
		log.Println("starting GC")
		if _LOGLEVEL > 2 {
			m.logTable()
		}
	}

	// we append the current stats to the GC history
	if _DEBUG {
		m.gcstat.history = append(m.gcstat.history, gcpoint{
			nodes:            len(m.nodes),
			freenodes:        m.freenum,
			setfinalizers:    int(m.gcstat.setfinalizers),
			calledfinalizers: int(m.gcstat.calledfinalizers),
		})
		m.gcstat.setfinalizers = 0
		m.gcstat.calledfinalizers = 0
	} else {
		m.gcstat.history = append(m.gcstat.history, gcpoint{
			nodes:     len(m.nodes),
			freenodes: m.freenum,
		})
	}
	// we mark the nodes in the refstack to avoid collecting them
	for _, r := range m.refstack {
		m.markrec(r)
	}
	// we also protect nodes with a positive refcount (and therefore also the
	// ones with a MAXREFCOUNT, such has variables and the constants 0 and 1)
	for k := range m.nodes {
		if m.nodes[k].low != -1 && m.nodes[k].refcou > 0 {
			m.markrec(k)
		}
	}
	m.freepos = 0
	m.freenum = 0
	// we do a pass through the nodes list to void the unmarked nodes. After
	// finishing this pass, m.freepos points to the first free position in
	// m.nodes, or it is 0 if we found none.
	for n := len(m.nodes) - 1; n > 1; n-- {
		if m.nodes[n].mark && (m.nodes[n].low != -1) {
			m.nodes[n].mark = false
			continue
		}
		if m.nodes[n].low != -1 {
			m.delnode(n)
		}
		m.nodes[n] = addnode{low: -1, high: m.freepos}
		m.freepos = n
		m.freenum++
	}
	m.nodes[0].mark = false
	m.nodes[1].mark = false
	if _LOGLEVEL > 0 {
		log.Printf("end GC; freenum: %d\n", m.freenum)
	}
}

// *************************************************************************
// RECURSIVE MARK / UNMARK

func (m *Manager) markrec(n int) {
	if n < 0 || m.nodes[n].mark || (m.nodes[n].low == -1) {
		return
	}
	m.nodes[n].mark = true
	if m.isconst(n) {
		return
	}
	m.markrec(m.nodes[n].low)
	m.markrec(m.nodes[n].high)
}

func (m *Manager) unmarkall() {
	for k := range m.nodes {
		m.nodes[k].mark = false
	}
}

// *************************************************************************
// private functions to manipulate the refstack; used to prevent nodes that are
// currently being built (e.g. transient nodes built during an apply) to be
// reclaimed during GC.

func (m *Manager) initref() {
	m.refstack = m.refstack[:0]
}

func (m *Manager) pushref(n int) int {
	m.refstack = append(m.refstack, n)
	return n
}

func (m *Manager) popref(a int) {
	m.refstack = m.refstack[:len(m.refstack)-a]
}
