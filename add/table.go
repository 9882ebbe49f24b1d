// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package add

import (
	"log"
	"math"
	"runtime"
	"sync/atomic"
)

// retnode creates a Node for external use and sets a finalizer on it so that
// we can reclaim the ressource during GC.
func (m *Manager) retnode(n int) Node {
	if n < 0 || n >= len(m.nodes) {
		if _DEBUG {
			log.Panicf("m.retnode(%d) not valid\n", n)
		}
		return nil
	}
	if n == 0 {
		return addzero
	}
	if n == 1 {
		return addone
	}
	x := n
	if m.nodes[n].refcou < _MAXREFCOUNT {
		m.nodes[n].refcou++
		runtime.SetFinalizer(&x, m.nodefinalizer)
		if _DEBUG {
			atomic.AddUint64(&(m.gcstat.setfinalizers), 1)
			if _LOGLEVEL > 2 {
				log.Printf("inc refcou %d\n", n)
			}
		}
	}
	return &x
}

// makenode returns the (unique) node for the triplet (level, low, high),
// building it if needed. It returns -1 and sets the error status when the
// table is full and cannot grow.
func (m *Manager) makenode(level int32, low, high int) int {
	if _DEBUG {
		m.cacheStat.uniqueAccess++
	}
	if low < 0 || high < 0 {
		return -1
	}
	// check whether children are equal, in which case we can skip the node
	if low == high {
		return low
	}
	key := nodekey{level, low, high}
	if res, ok := m.unique[key]; ok {
		if _DEBUG {
			m.cacheStat.uniqueHit++
		}
		return res
	}
	if _DEBUG {
		m.cacheStat.uniqueMiss++
	}
	if !m.reserve() {
		return -1
	}
	res := m.setnode(addnode{level: level, low: low, high: high})
	m.unique[key] = res
	return res
}

// makeconst returns the (unique) terminal node with value v.
func (m *Manager) makeconst(v float64) int {
	v = canonical(v)
	key := constkey(v)
	if res, ok := m.consts[key]; ok {
		return res
	}
	if !m.reserve() {
		return -1
	}
	res := m.setnode(addnode{level: _CONSTLEVEL, value: v})
	m.nodes[res].low = res
	m.nodes[res].high = res
	m.consts[key] = res
	return res
}

// reserve makes sure there is at least one free slot in the table. If there is
// no available spot (m.freepos == 0), we try garbage collection and, as a
// last resort, resizing the node list.
func (m *Manager) reserve() bool {
	if m.freepos != 0 {
		return true
	}
	m.gbc()
	err := errReset
	if (m.freenum*100)/len(m.nodes) <= m.minfreenodes {
		err = m.noderesize()
		if err != errResize {
			m.seterror(ErrMemory, "cannot grow node table beyond %d nodes", len(m.nodes))
			return false
		}
	}
	// intermediate results are protected by the refstack, but the caches may
	// reference collected nodes
	if err == errResize {
		m.cacheresize(len(m.nodes))
	} else {
		m.cachereset()
	}
	if m.freepos == 0 {
		m.seterror(ErrMemory, "no free node after garbage collection")
		return false
	}
	return true
}

// When a slot is unused in m.nodes, we have low set to -1 and high set to the
// next free position. The value of m.freepos gives the index of the lowest
// unused slot, except when freenum is 0, in which case it is also 0.

func (m *Manager) setnode(n addnode) int {
	res := m.freepos
	m.freepos = m.nodes[res].high
	m.freenum--
	m.produced++
	m.nodes[res] = n
	return res
}

func (m *Manager) delnode(k int) {
	n := m.nodes[k]
	if n.level == _CONSTLEVEL {
		delete(m.consts, constkey(n.value))
		return
	}
	delete(m.unique, nodekey{n.level, n.low, n.high})
}

func (m *Manager) noderesize() error {
	if _LOGLEVEL > 0 {
		log.Printf("start resize: %d\n", len(m.nodes))
	}
	oldsize := len(m.nodes)
	nodesize := len(m.nodes)
	if (oldsize >= m.maxnodesize) && (m.maxnodesize > 0) {
		return ErrMemory
	}
	if oldsize > (math.MaxInt32 >> 1) {
		nodesize = math.MaxInt32 - 1
	} else {
		nodesize = nodesize << 1
	}
	if m.maxnodeincrease > 0 && nodesize > (oldsize+m.maxnodeincrease) {
		nodesize = oldsize + m.maxnodeincrease
	}
	if (nodesize > m.maxnodesize) && (m.maxnodesize > 0) {
		nodesize = m.maxnodesize
	}
	if nodesize <= oldsize {
		return ErrMemory
	}

	tmp := m.nodes
	m.nodes = make([]addnode, nodesize)
	copy(m.nodes, tmp)

	for n := oldsize; n < nodesize; n++ {
		m.nodes[n].low = -1
		m.nodes[n].high = n + 1
	}
	m.nodes[nodesize-1].high = m.freepos
	m.freepos = oldsize
	m.freenum += (nodesize - oldsize)

	if _LOGLEVEL > 0 {
		log.Printf("end resize: %d\n", len(m.nodes))
	}
	return errResize
}
