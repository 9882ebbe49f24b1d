// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package add

import (
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"
)

// Node is a reference to an element of an ADD. It represents the atomic unit
// of interactions and computations within a Manager.
type Node *int

// Manager holds the node table shared by all the diagrams of an analysis
// session. Every exported method is safe for concurrent use.
type Manager struct {
	mu            sync.Mutex
	nodes         []addnode          // List of all the nodes. Constants 0 and 1 are always kept at index 0 and 1
	unique        map[nodekey]int    // Unicity table for internal nodes
	consts        map[uint64]int     // Unicity table for terminals, keyed by the bits of their value
	freenum       int                // Number of free nodes
	freepos       int                // First free node
	produced      int                // Total number of new nodes ever produced
	varnames      []string           // Name of the variable at each level
	varlevels     map[string]int32   // Level of each declared variable
	varset        []int              // Projection node of each variable
	refstack      []int              // Internal node reference stack
	nodefinalizer func(*int)         // Finalizer used to decrement the ref count of external references
	error         error              // Error status to help chain operations
	applycache                       // Cache for apply results
	itecache                         // Cache for ITE results
	monadcache                       // Cache for Not and Negate
	cacheStat                        // Information about the caches
	gcstat                           // Information about garbage collections
	configs                          // Configurable parameters
}

type addnode struct {
	level  int32   // Order of the variable in the ADD; _CONSTLEVEL for terminals
	low    int     // Reference to the false branch; -1 for a free slot
	high   int     // Reference to the true branch, or next free slot
	value  float64 // Value of a terminal
	refcou int32   // Count the number of external references
	mark   bool    // Used during GC and traversals
}

type nodekey struct {
	level int32
	low   int
	high  int
}

// inode returns a Node for known nodes, such as constants, that do not need to
// increase their reference count.
func inode(n int) Node {
	x := n
	return &x
}

var addone Node = inode(1)

var addzero Node = inode(0)

// New returns a new, empty Manager. Variables are declared afterwards, either
// explicitly with Declare or on demand with Var.
func New(options ...Option) (*Manager, error) {
	c := makeconfigs()
	for _, f := range options {
		f(c)
	}
	m := &Manager{configs: *c}
	if m.nodesize < 3 {
		m.nodesize = 3
	}
	if m.maxnodesize > 0 && m.nodesize > m.maxnodesize {
		m.nodesize = m.maxnodesize
	}
	m.nodes = make([]addnode, m.nodesize)
	for k := range m.nodes {
		m.nodes[k] = addnode{low: -1, high: k + 1}
	}
	m.nodes[m.nodesize-1].high = 0
	m.unique = make(map[nodekey]int, m.nodesize)
	m.consts = make(map[uint64]int)
	// creating the constants 0 and 1; they never move and are never collected
	m.nodes[0] = addnode{level: _CONSTLEVEL, low: 0, high: 0, value: 0, refcou: _MAXREFCOUNT}
	m.nodes[1] = addnode{level: _CONSTLEVEL, low: 1, high: 1, value: 1, refcou: _MAXREFCOUNT}
	m.consts[constkey(0)] = 0
	m.consts[constkey(1)] = 1
	m.freepos = 2
	m.freenum = m.nodesize - 2
	if m.nodesize == 2 {
		m.freepos = 0
	}
	m.varlevels = make(map[string]int32)
	m.refstack = make([]int, 0, 64)
	m.gcstat.history = []gcpoint{}
	m.cacheinit(m.cachesize)
	m.nodefinalizer = func(n *int) {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _DEBUG {
			atomic.AddUint64(&(m.gcstat.calledfinalizers), 1)
			if _LOGLEVEL > 2 {
				log.Printf("dec refcou %d\n", *n)
			}
		}
		if m.nodes[*n].refcou > 0 && m.nodes[*n].refcou < _MAXREFCOUNT {
			m.nodes[*n].refcou--
		}
	}
	return m, nil
}

// canonical folds -0 into 0 and every NaN into a single NaN so that each
// terminal value has exactly one node.
func canonical(v float64) float64 {
	if v == 0 {
		return 0
	}
	if math.IsNaN(v) {
		return math.NaN()
	}
	return v
}

func constkey(v float64) uint64 {
	return math.Float64bits(canonical(v))
}

// ************************************************************

// Declare adds variables, in order, at the bottom of the current variable
// order. Names that are already declared are left untouched.
func (m *Manager) Declare(names ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, name := range names {
		if m.declare(name) < 0 {
			return m.error
		}
	}
	return nil
}

// declare returns the level of variable name, creating it if needed. It
// returns -1 and sets the error status if the variable cannot be created.
func (m *Manager) declare(name string) int32 {
	if level, ok := m.varlevels[name]; ok {
		return level
	}
	if m.error != nil {
		return -1
	}
	if name == "" {
		m.seterror(ErrInvalidNode, "empty variable name")
		return -1
	}
	level := int32(len(m.varnames))
	if level >= _MAXVAR {
		m.seterror(ErrMemory, "too many variables (%d)", level)
		return -1
	}
	m.initref()
	v := m.makenode(level, 0, 1)
	if v < 0 {
		m.seterror(ErrMemory, "cannot allocate new variable %s", name)
		return -1
	}
	m.nodes[v].refcou = _MAXREFCOUNT
	m.varnames = append(m.varnames, name)
	m.varset = append(m.varset, v)
	m.varlevels[name] = level
	if _LOGLEVEL > 0 {
		log.Printf("declare variable %s at level %d\n", name, level)
	}
	return level
}

// Var returns the projection diagram of the variable with the given name: 1
// when the variable is true and 0 otherwise. The variable is declared if
// needed.
func (m *Manager) Var(name string) Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	level := m.declare(name)
	if level < 0 {
		return nil
	}
	// we do not need to reference count variables
	return inode(m.varset[level])
}

// NVar returns the negation of the projection diagram of variable name.
func (m *Manager) NVar(name string) Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	level := m.declare(name)
	if level < 0 {
		return nil
	}
	m.initref()
	return m.retnode(m.not(m.varset[level]))
}

// Ithvar returns the projection diagram of the variable at level i. The
// requested variable must be in the range [0..Varnum).
func (m *Manager) Ithvar(i int) Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.error != nil {
		return nil
	}
	if (i < 0) || (i >= len(m.varset)) {
		return m.seterror(ErrInvalidNode, "unknown variable used (%d) in call to Ithvar", i)
	}
	return inode(m.varset[i])
}

// Varnum returns the number of declared variables.
func (m *Manager) Varnum() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.varnames)
}

// Varname returns the name of the variable at the given level.
func (m *Manager) Varname(level int) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if level < 0 || level >= len(m.varnames) {
		return "", false
	}
	return m.varnames[level], true
}

// Variables returns the names of all declared variables, in level order.
func (m *Manager) Variables() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make([]string, len(m.varnames))
	copy(res, m.varnames)
	return res
}

// ************************************************************

// True returns the constant 1.
func (m *Manager) True() Node {
	return addone
}

// False returns the constant 0.
func (m *Manager) False() Node {
	return addzero
}

// From returns a (constant) Node from a boolean value.
func (m *Manager) From(v bool) Node {
	if v {
		return addone
	}
	return addzero
}

// Constant returns the terminal node with value v.
func (m *Manager) Constant(v float64) Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.error != nil {
		return nil
	}
	m.initref()
	res := m.makeconst(v)
	if res < 0 {
		return nil
	}
	return m.retnode(res)
}

// IsConst reports whether n is a terminal node.
func (m *Manager) IsConst(n Node) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.checkptr(n) != nil {
		return false
	}
	return m.nodes[*n].level == _CONSTLEVEL
}

// Value returns the value of terminal n. The boolean is false if n is not a
// terminal.
func (m *Manager) Value(n Node) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.checkptr(n) != nil || m.nodes[*n].level != _CONSTLEVEL {
		return 0, false
	}
	return m.nodes[*n].value, true
}

// Label returns the name of the variable tested by node n. We set the ADD to
// its error state and return the empty string if n is a terminal.
func (m *Manager) Label(n Node) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkptr(n); err != nil {
		m.seterror(err, "illegal access to node in call to Label")
		return ""
	}
	if m.nodes[*n].level == _CONSTLEVEL {
		m.seterror(ErrInvalidNode, "try to access label of constant node")
		return ""
	}
	return m.varnames[m.nodes[*n].level]
}

// Low returns the false branch of n.
func (m *Manager) Low(n Node) Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkptr(n); err != nil {
		return m.seterror(err, "illegal access to node in call to Low")
	}
	return m.retnode(m.nodes[*n].low)
}

// High returns the true branch of n.
func (m *Manager) High(n Node) Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkptr(n); err != nil {
		return m.seterror(err, "illegal access to node in call to High")
	}
	return m.retnode(m.nodes[*n].high)
}

// Equal tests equivalence between nodes. Since diagrams are canonical, two
// nodes of the same Manager are equal iff they denote the same function.
func (m *Manager) Equal(a, b Node) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

// String implements fmt.Stringer with the main statistics of the table.
func (m *Manager) String() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fmt.Sprintf("ADD(varnum: %d, allocated: %d, free: %d)", len(m.varnames), len(m.nodes), m.freenum)
}

// level returns the level of node n; terminals share _CONSTLEVEL.
func (m *Manager) level(n int) int32 {
	return m.nodes[n].level
}

// lvl is like level, but maps terminals to the number of variables, which is
// what counting functions need.
func (m *Manager) lvl(n int) int32 {
	if m.nodes[n].level == _CONSTLEVEL {
		return int32(len(m.varnames))
	}
	return m.nodes[n].level
}

func (m *Manager) low(n int) int {
	return m.nodes[n].low
}

func (m *Manager) high(n int) int {
	return m.nodes[n].high
}

func (m *Manager) isconst(n int) bool {
	return m.nodes[n].level == _CONSTLEVEL
}

func (m *Manager) value(n int) float64 {
	return m.nodes[n].value
}
