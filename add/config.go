// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package add

// configs is used to store the values of different parameters of the ADD
type configs struct {
	nodesize        int // initial number of nodes in the table
	cachesize       int // initial cache size (general)
	cacheratio      int // initial ratio (general, 0 if size constant) between cache size and node table
	maxnodesize     int // Maximum total number of nodes (0 if no limit)
	maxnodeincrease int // Maximum number of nodes that can be added to the table at each resize (0 if no limit)
	minfreenodes    int // Minimum number of nodes that should be left after GC before triggering a resize
}

// Option is the type of configuration options accepted by New.
type Option func(*configs)

func makeconfigs() *configs {
	c := &configs{}
	c.minfreenodes = _MINFREENODES
	c.maxnodeincrease = _DEFAULTMAXNODEINC
	c.cachesize = _DEFAULTCACHESIZE
	// enough room for the two constants and a few variables
	c.nodesize = 1024
	return c
}

// Nodesize is a configuration option. Used as a parameter in New it sets a
// preferred initial size for the node table. The size of the ADD can increase
// during computation.
func Nodesize(size int) Option {
	return func(c *configs) {
		if size > 2 {
			c.nodesize = size
		}
	}
}

// Maxnodesize is a configuration option. Used as a parameter in New it sets a
// limit to the number of nodes in the ADD. An operation trying to raise the
// number of nodes above this limit will generate an error (ErrMemory) and
// return a nil Node. The default value (0) means that there is no limit.
func Maxnodesize(size int) Option {
	return func(c *configs) {
		c.maxnodesize = size
	}
}

// Maxnodeincrease is a configuration option. Used as a parameter in New it sets
// a limit on the increase in size of the node table. Below this limit we
// typically double the size of the node list each time we need to resize it.
// The default value is about a million nodes. Set the value to zero to avoid
// imposing a limit.
func Maxnodeincrease(size int) Option {
	return func(c *configs) {
		c.maxnodeincrease = size
	}
}

// Minfreenodes is a configuration option. Used as a parameter in New it sets
// the ratio of free nodes (%) that has to be left after a Garbage Collection
// event. The default value is 20%.
func Minfreenodes(ratio int) Option {
	return func(c *configs) {
		c.minfreenodes = ratio
	}
}

// Cachesize is a configuration option. Used as a parameter in New it sets the
// initial number of entries in the operation caches. The default value is
// 10 000.
func Cachesize(size int) Option {
	return func(c *configs) {
		c.cachesize = size
	}
}

// Cacheratio is a configuration option. Used as a parameter in New it sets a
// "cache ratio" (%) so that caches can grow each time we resize the node
// table. With a cache ratio of r, we have r available entries in the cache for
// every 100 slots in the node table. The default value (0) means that the cache
// size never grows.
func Cacheratio(ratio int) Option {
	return func(c *configs) {
		c.cacheratio = ratio
	}
}
