// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package add

import (
	"errors"
	"math"
)

// _MINFREENODES is the minimal number of nodes (%) that has to be left after a
// garbage collect unless a resize should be done.
const _MINFREENODES int = 20

// _MAXVAR is the maximal number of levels in the ADD. Levels are stored on an
// int32 and the value math.MaxInt32 is reserved for terminals.
const _MAXVAR int32 = 0x1FFFFF

// _CONSTLEVEL is the level of every terminal node. It is larger than any
// variable level so that terminals always sit below the variables, even when
// new variables are declared after the terminal was created.
const _CONSTLEVEL int32 = math.MaxInt32

// _MAXREFCOUNT is the maximal value of the reference counter (refcou), also
// used to stick nodes (like constants and variables) in the node list.
const _MAXREFCOUNT int32 = 0x3FF

// _DEFAULTMAXNODEINC is the default value for the maximal increase in the
// number of nodes during a resize. It is approx. one million nodes (1 048 576).
const _DEFAULTMAXNODEINC int = 1 << 20

// _DEFAULTCACHESIZE is the number of entries in each operation cache when no
// Cachesize option is given.
const _DEFAULTCACHESIZE int = 10000

// ErrMemory is returned when the node table cannot grow anymore, usually
// because of the limit set with Maxnodesize.
var ErrMemory = errors.New("unable to free memory or resize ADD")

// ErrInvalidNode is returned when an operation receives a nil Node or a Node
// that does not belong to the live part of the node table.
var ErrInvalidNode = errors.New("invalid node")

var errResize = errors.New("should cache resize") // when gbc and then noderesize
var errReset = errors.New("should cache reset")   // when gbc only, without resizing
