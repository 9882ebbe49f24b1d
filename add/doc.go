// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

/*
Package add defines a concrete type for Algebraic Decision Diagrams (ADD), a
data structure used to efficiently represent functions from Boolean vectors to
real numbers. An ADD is a Binary Decision Diagram whose terminals may hold any
float64 value instead of just 0 and 1.

# Basics

All the diagrams of a computation live in a single Manager, created with New.
Variables are identified by their name and are given a level, in the order of
their declaration. A variable is declared explicitly with Declare, or on
demand the first time it is used with Var.

Most operations return a Node; that is a pointer to a vertex in the node table
that includes a variable level and the address of the low and high branch for
this node. Terminals are unique: there is exactly one node for each value, with
the convention that 1 (respectively 0) is the address of the constant 1
(respectively 0). Since diagrams are reduced and ordered, two Nodes denote the
same function if and only if they are Equal.

# Errors

Operations do not return errors. When an operation fails, for instance because
the node table cannot grow beyond the limit set with Maxnodesize, the Manager
enters an error state and the operation returns nil. The error status is
sticky, so that operations can be chained and checked once with Err.

# Automatic memory management

We piggyback on the garbage collection mechanism of Go. References to nodes
held by user code are managed with finalizers, and the node table is collected
and resized when it runs out of free slots. Compile with the build tag `debug`
to get better statistics about caches and garbage collections, and to log
some operations.
*/
package add
