// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package add

import (
	"log"
)

// Apply performs all of the basic operations with two operands, such as
// Plus, Times, And, etc. Left and right are the operands and op is the
// requested operation and must be one of the following:
//
//	Identifier    Description               Terminal case
//
//	OPplus        addition                  a + b
//	OPminus       subtraction               a - b
//	OPtimes       multiplication            a * b, 0 if a or b is 0
//	OPdivide      division                  a / b, 0 if a is 0
//	OPmin         minimum                   min(a, b)
//	OPmax         maximum                   max(a, b)
//	OPand         logical and               a != 0 && b != 0
//	OPor          logical or                a != 0 || b != 0
//	OPxor         logical xor               (a != 0) != (b != 0)
//	OPbiimp       equivalence               (a != 0) == (b != 0)
func (m *Manager) Apply(left Node, right Node, op Operator) Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkptr(left); err != nil {
		return m.seterror(err, "wrong operand in call to Apply %s(left, right)", op)
	}
	if err := m.checkptr(right); err != nil {
		return m.seterror(err, "wrong operand in call to Apply %s(left, right)", op)
	}
	if op < OPplus || op > OPbiimp {
		return m.seterror(ErrInvalidNode, "unauthorized operation (%s) in apply", op)
	}
	m.initref()
	m.pushref(*left)
	m.pushref(*right)
	res := m.apply(*left, *right, op)
	m.popref(2)
	if res < 0 {
		return nil
	}
	return m.retnode(res)
}

func (m *Manager) apply(left int, right int, op Operator) int {
	// we check for errors
	if left < 0 || right < 0 {
		if _DEBUG {
			log.Printf("error in apply(%d,%d,%s)\n", left, right, op)
		}
		return -1
	}
	switch op {
	case OPplus:
		if left == 0 {
			return right
		}
		if right == 0 {
			return left
		}
	case OPminus:
		if right == 0 {
			return left
		}
	case OPtimes:
		if (left == 0) || (right == 0) {
			return 0
		}
		if left == 1 {
			return right
		}
		if right == 1 {
			return left
		}
	case OPdivide:
		if left == 0 {
			return 0
		}
		if right == 1 {
			return left
		}
	case OPmin, OPmax:
		if left == right {
			return left
		}
	case OPand:
		if (left == 0) || (right == 0) {
			return 0
		}
	case OPor:
		if (left == 1) || (right == 1) {
			return 1
		}
	}

	// we deal with the other cases where the two operands are constants
	if m.isconst(left) && m.isconst(right) {
		return m.makeconst(op.eval(m.value(left), m.value(right)))
	}
	if op.commutative() && left > right {
		left, right = right, left
	}
	if res := m.matchapply(left, right, op); res >= 0 {
		return res
	}
	leftlvl := m.level(left)
	rightlvl := m.level(right)
	var res int
	if leftlvl == rightlvl {
		low := m.pushref(m.apply(m.low(left), m.low(right), op))
		high := m.pushref(m.apply(m.high(left), m.high(right), op))
		res = m.makenode(leftlvl, low, high)
	} else {
		if leftlvl < rightlvl {
			low := m.pushref(m.apply(m.low(left), right, op))
			high := m.pushref(m.apply(m.high(left), right, op))
			res = m.makenode(leftlvl, low, high)
		} else {
			low := m.pushref(m.apply(left, m.low(right), op))
			high := m.pushref(m.apply(left, m.high(right), op))
			res = m.makenode(rightlvl, low, high)
		}
	}
	m.popref(2)
	return m.setapply(left, right, op, res)
}

// ************************************************************

// Plus returns the pointwise sum of a sequence of nodes.
func (m *Manager) Plus(n ...Node) Node {
	return m.fold(addzero, OPplus, n)
}

// Times returns the pointwise product of a sequence of nodes. With boolean
// operands this is also their conjunction.
func (m *Manager) Times(n ...Node) Node {
	return m.fold(addone, OPtimes, n)
}

// Minus returns the pointwise difference n1 - n2.
func (m *Manager) Minus(n1, n2 Node) Node {
	return m.Apply(n1, n2, OPminus)
}

// Divide returns the pointwise quotient n1 / n2.
func (m *Manager) Divide(n1, n2 Node) Node {
	return m.Apply(n1, n2, OPdivide)
}

// And returns the logical 'and' of a sequence of nodes.
func (m *Manager) And(n ...Node) Node {
	return m.fold(addone, OPand, n)
}

// Or returns the logical 'or' of a sequence of nodes.
func (m *Manager) Or(n ...Node) Node {
	return m.fold(addzero, OPor, n)
}

// Xor returns the logical 'exclusive or' between two nodes.
func (m *Manager) Xor(n1, n2 Node) Node {
	return m.Apply(n1, n2, OPxor)
}

// Equiv returns the logical 'bi-implication' between two nodes.
func (m *Manager) Equiv(n1, n2 Node) Node {
	return m.Apply(n1, n2, OPbiimp)
}

// Imp returns the logical 'implication' between two nodes.
func (m *Manager) Imp(n1, n2 Node) Node {
	return m.Or(m.Not(n1), n2)
}

func (m *Manager) fold(unit Node, op Operator, n []Node) Node {
	if len(n) == 0 {
		return unit
	}
	if len(n) == 1 {
		if op == OPand || op == OPor {
			// normalize a single operand to {0,1}
			return m.Apply(n[0], unit, op)
		}
		return n[0]
	}
	res := n[0]
	for _, v := range n[1:] {
		res = m.Apply(res, v, op)
		if res == nil {
			return nil
		}
	}
	return res
}

// ************************************************************

// Not returns the boolean complement of n: 1 where n is 0, and 0 elsewhere.
func (m *Manager) Not(n Node) Node {
	return m.monadic(n, op_not)
}

// Negate returns the arithmetic negation of n.
func (m *Manager) Negate(n Node) Node {
	return m.monadic(n, op_negate)
}

func (m *Manager) monadic(n Node, op Operator) Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkptr(n); err != nil {
		return m.seterror(err, "wrong operand in call to %s", op)
	}
	m.initref()
	m.pushref(*n)
	var res int
	if op == op_not {
		res = m.not(*n)
	} else {
		res = m.negate(*n)
	}
	m.popref(1)
	if res < 0 {
		return nil
	}
	return m.retnode(res)
}

func (m *Manager) not(n int) int {
	if n < 0 {
		return -1
	}
	if m.isconst(n) {
		return m.makeconst(bool2float(!truth(m.value(n))))
	}
	if res := m.matchmonad(n, op_not); res >= 0 {
		return res
	}
	low := m.pushref(m.not(m.low(n)))
	high := m.pushref(m.not(m.high(n)))
	res := m.makenode(m.level(n), low, high)
	m.popref(2)
	return m.setmonad(n, op_not, res)
}

func (m *Manager) negate(n int) int {
	if n < 0 {
		return -1
	}
	if m.isconst(n) {
		return m.makeconst(-m.value(n))
	}
	if res := m.matchmonad(n, op_negate); res >= 0 {
		return res
	}
	low := m.pushref(m.negate(m.low(n)))
	high := m.pushref(m.negate(m.high(n)))
	res := m.makenode(m.level(n), low, high)
	m.popref(2)
	return m.setmonad(n, op_negate, res)
}

// ************************************************************

// Ite, short for if-then-else operator, computes the diagram that is equal to
// g where f is non-zero and to h elsewhere. It is more efficient than doing
// the corresponding products and sums separately.
func (m *Manager) Ite(f, g, h Node) Node {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.checkptr(f); err != nil {
		return m.seterror(err, "wrong operand in call to Ite (f)")
	}
	if err := m.checkptr(g); err != nil {
		return m.seterror(err, "wrong operand in call to Ite (g)")
	}
	if err := m.checkptr(h); err != nil {
		return m.seterror(err, "wrong operand in call to Ite (h)")
	}
	m.initref()
	m.pushref(*f)
	m.pushref(*g)
	m.pushref(*h)
	res := m.ite(*f, *g, *h)
	m.popref(3)
	if res < 0 {
		return nil
	}
	return m.retnode(res)
}

// iteLow returns n if p is strictly higher than q or r, otherwise it returns
// n.low. This is used in function ite to know which node to follow: we always
// follow the smallest(s) nodes.
func (m *Manager) iteLow(p, q, r int32, n int) int {
	if (p > q) || (p > r) {
		return n
	}
	return m.low(n)
}

func (m *Manager) iteHigh(p, q, r int32, n int) int {
	if (p > q) || (p > r) {
		return n
	}
	return m.high(n)
}

// min3 returns the smallest value between p, q and r. This is used in function
// ite to compute the smallest level.
func min3(p, q, r int32) int32 {
	if p <= q {
		if p <= r { // p <= q && p <= r
			return p
		}
		return r // r < p <= q
	}
	if q <= r { // q < p && q <= r
		return q
	}
	return r // r < q < p
}

func (m *Manager) ite(f, g, h int) int {
	// we check for possible errors
	if f < 0 || g < 0 || h < 0 {
		if _DEBUG {
			log.Printf("error in ite(%d,%d,%d)\n", f, g, h)
		}
		return -1
	}
	switch {
	case m.isconst(f) && truth(m.value(f)):
		return g
	case m.isconst(f):
		return h
	case g == h:
		return g
	case (g == 0) && (h == 1):
		return m.not(f)
	}
	if res := m.matchite(f, g, h); res >= 0 {
		return res
	}
	p := m.level(f)
	q := m.level(g)
	r := m.level(h)
	low := m.pushref(m.ite(m.iteLow(p, q, r, f), m.iteLow(q, p, r, g), m.iteLow(r, p, q, h)))
	high := m.pushref(m.ite(m.iteHigh(p, q, r, f), m.iteHigh(q, p, r, g), m.iteHigh(r, p, q, h)))
	res := m.makenode(min3(p, q, r), low, high)
	m.popref(2)
	return m.setite(f, g, h, res)
}
