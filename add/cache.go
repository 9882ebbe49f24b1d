// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package add

import (
	"fmt"
	"math/big"
)

// ************************************************************
// cache is used for caching apply/ite/monadic results
type cache struct {
	table []cacheData
}

// cacheStat stores status information about cache usage
type cacheStat struct {
	uniqueAccess int // accesses to the unique node table
	uniqueHit    int // entries actually found in the the unique node table
	uniqueMiss   int // entries not found in the the unique node table
	opHit        int // entries found in the operator caches
	opMiss       int // entries not found in the operator caches
}

// cacheData is a unit of information stored in the Apply and ITE cache
type cacheData struct {
	res int
	a   int
	b   int
	c   int
}

// ************************************************************

// Different kind of caches used in the add

type applycache struct {
	cache // Cache for apply results
}

type itecache struct {
	cache // Cache for ITE results
}

type monadcache struct {
	cache // Cache for Not and Negate results
}

// ************************************************************

// Basic functions shared by all caches

func (bc *cache) init(size int) {
	// we never check if the creation of the slice panic because of lack of memory
	size = primesize(size)
	bc.table = make([]cacheData, size)
	bc.reset()
}

// primesize returns the smallest odd prime greater or equal to size.
// Caches are indexed modulo their length.
func primesize(size int) int {
	if size <= 3 {
		return 3
	}
	size |= 1
	for !big.NewInt(int64(size)).ProbablyPrime(0) {
		size += 2
	}
	return size
}

func (bc *cache) reset() {
	for k := range bc.table {
		bc.table[k].a = -1
	}
}

// *************************************************************************
// Setup and shutdown

func (m *Manager) cacheinit(cachesize int) {
	if cachesize <= 0 {
		cachesize = len(m.nodes)/5 + 1
	}
	m.applycache.init(cachesize)
	m.itecache.init(cachesize)
	m.monadcache.init(cachesize)
}

func (m *Manager) cachereset() {
	m.applycache.reset()
	m.itecache.reset()
	m.monadcache.reset()
}

// cacheresize is called after the node table grew. With a cache ratio of r,
// caches get r entries for every 100 nodes; otherwise their size is fixed.
func (m *Manager) cacheresize(nodesize int) {
	if m.cacheratio <= 0 {
		m.cachereset()
		return
	}
	m.cacheinit((nodesize * m.cacheratio) / 100)
}

// ************************************************************

// String prints information about the cache performance. The information
// contains the number of accesses to the unique node table, the number of
// times a node was (not) found there. Hit and miss count is also given for the
// operator caches.
func (c cacheStat) String() string {
	res := fmt.Sprintf("Unique Access:  %d\n", c.uniqueAccess)
	res += fmt.Sprintf("Unique Hit:     %d\n", c.uniqueHit)
	res += fmt.Sprintf("Unique Miss:    %d\n", c.uniqueMiss)
	res += fmt.Sprintf("Operator Hits:  %d\n", c.opHit)
	res += fmt.Sprintf("Operator Miss:  %d", c.opMiss)
	return res
}
