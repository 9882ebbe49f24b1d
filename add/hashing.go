// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package add

// Hash functions

func _TRIPLE(a, b, c, len int) int {
	return int(_PAIR64(uint64(c), _PAIR(a, b, len), uint64(len)))
}

// _PAIR is a mapping function that maps (bijectively) a pair of integer (a, b)
// into a unique integer. It is therefore a perfect hash: no collisions
func _PAIR(a, b, len int) uint64 {
	return (((uint64(a+b) * uint64(a+b+1)) / 2) + uint64(a)) % uint64(len)
}

func _PAIR64(a, b, len uint64) uint64 {
	return (((((a + b) % len) * ((a + b + 1) % len)) / 2) + a) % len
}

// ************************************************************

// The hash function for monadic operations is #(n, op).

func (m *Manager) matchmonad(n int, op Operator) int {
	entry := m.monadcache.table[_PAIR(n, int(op), len(m.monadcache.table))]
	if entry.a == n && entry.c == int(op) {
		if _DEBUG {
			m.cacheStat.opHit++
		}
		return entry.res
	}
	if _DEBUG {
		m.cacheStat.opMiss++
	}
	return -1
}

func (m *Manager) setmonad(n int, op Operator, res int) int {
	if res < 0 {
		return -1
	}
	m.monadcache.table[_PAIR(n, int(op), len(m.monadcache.table))] = cacheData{
		a:   n,
		c:   int(op),
		res: res,
	}
	return res
}

// ************************************************************

// The hash function for Apply is #(left, right, op).

func (m *Manager) matchapply(left, right int, op Operator) int {
	entry := m.applycache.table[_TRIPLE(left, right, int(op), len(m.applycache.table))]
	if entry.a == left && entry.b == right && entry.c == int(op) {
		if _DEBUG {
			m.cacheStat.opHit++
		}
		return entry.res
	}
	if _DEBUG {
		m.cacheStat.opMiss++
	}
	return -1
}

func (m *Manager) setapply(left, right int, op Operator, res int) int {
	if res < 0 {
		return -1
	}
	m.applycache.table[_TRIPLE(left, right, int(op), len(m.applycache.table))] = cacheData{
		a:   left,
		b:   right,
		c:   int(op),
		res: res,
	}
	return res
}

// ************************************************************

// The hash function for ITE is #(f,g,h).

func (m *Manager) matchite(f, g, h int) int {
	entry := m.itecache.table[_TRIPLE(f, g, h, len(m.itecache.table))]
	if entry.a == f && entry.b == g && entry.c == h {
		if _DEBUG {
			m.cacheStat.opHit++
		}
		return entry.res
	}
	if _DEBUG {
		m.cacheStat.opMiss++
	}
	return -1
}

func (m *Manager) setite(f, g, h, res int) int {
	if res < 0 {
		return -1
	}
	m.itecache.table[_TRIPLE(f, g, h, len(m.itecache.table))] = cacheData{
		a:   f,
		b:   g,
		c:   h,
		res: res,
	}
	return res
}
