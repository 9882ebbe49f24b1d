// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

//go:build debug
// +build debug

package add

import (
	"log"
	"os"
)

const _DEBUG bool = true
const _LOGLEVEL int = 1

func init() {
	log.SetOutput(os.Stdout)
}

// logTable dumps the whole node table; only available with the debug tag.
func (m *Manager) logTable() {
	if m.error != nil {
		log.Printf("ERROR: %s\n", m.error)
	}
	for k, n := range m.nodes {
		switch {
		case n.low == -1:
			continue
		case n.level == _CONSTLEVEL:
			log.Printf("%-3d ( const %-8g ) | %d\n", k, n.value, n.refcou)
		case n.refcou == _MAXREFCOUNT:
			log.Printf("%-3d ( %-3d ,  %-3d ,  %-3d) | +\n", k, n.level, n.low, n.high)
		default:
			log.Printf("%-3d ( %-3d ,  %-3d ,  %-3d) | %d\n", k, n.level, n.low, n.high, n.refcou)
		}
	}
}
