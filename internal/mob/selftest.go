package mob

import (
	"fmt"

	"spacerobots2/internal/geom"
)

// SelfTest runs the quick built-in set checks behind the --unitTests
// CLI flag; it panics on the first failure.
func SelfTest() {
	s := NewSet()
	for i := 1; i <= 16; i++ {
		m := &Mob{}
		t := TypeFighter
		if i%4 == 0 {
			t = TypeMissile
		}
		m.Init(t)
		m.ID = ID(i)
		m.Pos = geom.Point{X: float32(i), Y: 0}
		s.Add(m)
	}

	if s.Len() != 16 {
		panic(fmt.Sprintf("mob: set selftest len %d", s.Len()))
	}
	if s.Get(7) == nil || s.Get(99) != nil {
		panic("mob: set selftest lookup failed")
	}

	fighters := 0
	s.Filtered(FlagFighter, func(*Mob) { fighters++ })
	if fighters != 12 {
		panic(fmt.Sprintf("mob: set selftest filter got %d", fighters))
	}

	closest := s.FindClosest(geom.Point{}, FlagFighter)
	if closest == nil || closest.ID != 1 {
		panic("mob: set selftest closest failed")
	}

	s.RemoveID(1)
	if s.Contains(1) || s.Len() != 15 {
		panic("mob: set selftest remove failed")
	}
}
