// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package add

import "math"

// Operator describe the potential (binary) operations available on an Apply.
type Operator int

// Arithmetic operators combine terminal values pointwise. Boolean operators
// read any non-zero value as true and always yield 0 or 1.
const (
	OPplus    Operator = iota // Addition
	OPminus                   // Subtraction
	OPtimes                   // Multiplication; 0 is absorbing, even for Inf and NaN
	OPdivide                  // Division; 0/x is 0, x/0 follows IEEE-754
	OPmin                     // Minimum
	OPmax                     // Maximum
	OPand                     // Boolean conjunction
	OPor                      // Disjunction
	OPxor                     // Exclusive or
	OPbiimp                   // Equivalence
	op_not                    // Negation. Should not be used in apply, but used in caches
	op_negate                 // Arithmetic negation, same
)

var opnames = [12]string{
	OPplus:    "plus",
	OPminus:   "minus",
	OPtimes:   "times",
	OPdivide:  "divide",
	OPmin:     "min",
	OPmax:     "max",
	OPand:     "and",
	OPor:      "or",
	OPxor:     "xor",
	OPbiimp:   "biimp",
	op_not:    "not",
	op_negate: "negate",
}

func (op Operator) String() string {
	if op < 0 || int(op) >= len(opnames) {
		return "unknown"
	}
	return opnames[op]
}

// commutative reports whether the operands of op can be swapped. We use it to
// normalize the keys of the apply cache.
func (op Operator) commutative() bool {
	switch op {
	case OPplus, OPtimes, OPmin, OPmax, OPand, OPor, OPxor, OPbiimp:
		return true
	}
	return false
}

func truth(v float64) bool {
	return v != 0
}

func bool2float(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// eval computes the value of op on two terminal values.
func (op Operator) eval(a, b float64) float64 {
	switch op {
	case OPplus:
		return a + b
	case OPminus:
		return a - b
	case OPtimes:
		if a == 0 || b == 0 {
			return 0
		}
		return a * b
	case OPdivide:
		if a == 0 {
			return 0
		}
		return a / b
	case OPmin:
		return math.Min(a, b)
	case OPmax:
		return math.Max(a, b)
	case OPand:
		return bool2float(truth(a) && truth(b))
	case OPor:
		return bool2float(truth(a) || truth(b))
	case OPxor:
		return bool2float(truth(a) != truth(b))
	case OPbiimp:
		return bool2float(truth(a) == truth(b))
	}
	return math.NaN()
}
