package mob

import (
	"sort"

	"spacerobots2/internal/geom"
)

// Set is the mob container handed to controllers: insertion by id,
// membership lookup, iteration filtered by type flags, and closest-N
// searches. Iteration order is insertion order, so identically-built
// sets iterate identically — controllers stay deterministic.
type Set struct {
	mobs  []*Mob
	index map[ID]int
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{index: make(map[ID]int)}
}

// Clear empties the set but keeps its capacity.
func (s *Set) Clear() {
	s.mobs = s.mobs[:0]
	clear(s.index)
}

// Len returns the number of mobs in the set.
func (s *Set) Len() int {
	return len(s.mobs)
}

// Add inserts m, replacing any previous mob with the same id.
func (s *Set) Add(m *Mob) {
	if i, ok := s.index[m.ID]; ok {
		s.mobs[i] = m
		return
	}
	s.index[m.ID] = len(s.mobs)
	s.mobs = append(s.mobs, m)
}

// Get returns the mob with the given id, or nil.
func (s *Set) Get(id ID) *Mob {
	if i, ok := s.index[id]; ok {
		return s.mobs[i]
	}
	return nil
}

// Contains reports membership by id.
func (s *Set) Contains(id ID) bool {
	_, ok := s.index[id]
	return ok
}

// RemoveID drops the mob with the given id via swap-remove.
func (s *Set) RemoveID(id ID) {
	i, ok := s.index[id]
	if !ok {
		return
	}
	last := len(s.mobs) - 1
	if i != last {
		s.mobs[i] = s.mobs[last]
		s.index[s.mobs[i].ID] = i
	}
	s.mobs = s.mobs[:last]
	delete(s.index, id)
}

// All iterates every mob in the set. The callback must not add or
// remove mobs.
func (s *Set) All(fn func(*Mob)) {
	for _, m := range s.mobs {
		fn(m)
	}
}

// Filtered iterates mobs whose type matches the flag mask.
func (s *Set) Filtered(filter TypeFlag, fn func(*Mob)) {
	for _, m := range s.mobs {
		if m.Type.Flag()&filter != 0 {
			fn(m)
		}
	}
}

// Slice returns the underlying storage for index-based scans. Callers
// must not grow or reorder it.
func (s *Set) Slice() []*Mob {
	return s.mobs
}

// FindClosest returns the matching mob nearest to pos, or nil.
func (s *Set) FindClosest(pos geom.Point, filter TypeFlag) *Mob {
	var best *Mob
	var bestD float32
	for _, m := range s.mobs {
		if m.Type.Flag()&filter == 0 {
			continue
		}
		d := m.Pos.DistanceSquared(pos)
		if best == nil || d < bestD {
			best = m
			bestD = d
		}
	}
	return best
}

// FindClosestInRange returns the matching mob nearest to pos within
// radius, or nil.
func (s *Set) FindClosestInRange(pos geom.Point, filter TypeFlag, radius float32) *Mob {
	best := s.FindClosest(pos, filter)
	if best == nil || best.Pos.DistanceSquared(pos) > radius*radius {
		return nil
	}
	return best
}

// FindNClosestInRange returns up to n matching mobs within radius of
// pos, nearest first. Ties break by id so the result is deterministic.
func (s *Set) FindNClosestInRange(pos geom.Point, filter TypeFlag, radius float32, n int) []*Mob {
	if n <= 0 {
		return nil
	}
	r2 := radius * radius
	var found []*Mob
	for _, m := range s.mobs {
		if m.Type.Flag()&filter == 0 {
			continue
		}
		if m.Pos.DistanceSquared(pos) <= r2 {
			found = append(found, m)
		}
	}
	sort.Slice(found, func(i, j int) bool {
		di := found[i].Pos.DistanceSquared(pos)
		dj := found[j].Pos.DistanceSquared(pos)
		if di != dj {
			return di < dj
		}
		return found[i].ID < found[j].ID
	})
	if len(found) > n {
		found = found[:n]
	}
	return found
}
