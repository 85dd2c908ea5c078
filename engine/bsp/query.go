package bsp

import (
	"math"
	"sort"

	"github.com/1siamBot/hivebattle/engine/grid"
)

type candidate struct {
	o  *Occupant
	d2 int
}

// Nearest returns the position of the closest live occupant accepted by pred
func (t *Tree) Nearest(p grid.Pos, pred Predicate) (grid.Pos, bool) {
	o, ok := t.NearestOccupant(p, pred)
	if !ok {
		return grid.Pos{}, false
	}
	return o.Pos, true
}

// NearestOccupant is Nearest returning the occupant record itself
func (t *Tree) NearestOccupant(p grid.Pos, pred Predicate) (*Occupant, bool) {
	best := candidate{d2: math.MaxInt}
	t.nearest(0, p, pred, &best)
	return best.o, best.o != nil
}

func (t *Tree) nearest(i int, p grid.Pos, pred Predicate, best *candidate) {
	part := &t.partitions[i]
	if part.IsLeaf() {
		for e := part.FirstElement; e >= 0; e = t.elements[e].Next {
			o := t.store.Get(t.elements[e].Element)
			if !pred.accept(o) {
				continue
			}
			// strict: the first candidate found at a given distance wins
			if d2 := p.DistanceToSquared(o.Pos); d2 < best.d2 {
				best.o, best.d2 = o, d2
			}
		}
		return
	}

	near, far := part.Left, part.Right
	if !part.leftOf(p.X, p.Y) {
		near, far = far, near
	}
	t.nearest(near, p, pred, best)
	if pd := part.planeDist(p.X, p.Y); pd*pd <= best.d2 {
		t.nearest(far, p, pred, best)
	}
}

// KNearest returns up to k positions ordered by ascending distance to p
func (t *Tree) KNearest(p grid.Pos, k int, pred Predicate) []grid.Pos {
	occ := t.KNearestOccupants(p, k, pred)
	out := make([]grid.Pos, len(occ))
	for i, o := range occ {
		out[i] = o.Pos
	}
	return out
}

// KNearestOccupants is KNearest returning occupant records
func (t *Tree) KNearestOccupants(p grid.Pos, k int, pred Predicate) []*Occupant {
	if k <= 0 {
		return nil
	}
	found := make([]candidate, 0, k)
	t.kNearest(0, p, k, pred, &found)
	out := make([]*Occupant, len(found))
	for i, c := range found {
		out[i] = c.o
	}
	return out
}

func (t *Tree) kNearest(i int, p grid.Pos, k int, pred Predicate, found *[]candidate) {
	part := &t.partitions[i]
	if part.IsLeaf() {
		for e := part.FirstElement; e >= 0; e = t.elements[e].Next {
			o := t.store.Get(t.elements[e].Element)
			if !pred.accept(o) {
				continue
			}
			insertBounded(found, candidate{o, p.DistanceToSquared(o.Pos)}, k)
		}
		return
	}

	near, far := part.Left, part.Right
	if !part.leftOf(p.X, p.Y) {
		near, far = far, near
	}
	t.kNearest(near, p, k, pred, found)
	pd := part.planeDist(p.X, p.Y)
	if len(*found) < k || pd*pd <= (*found)[k-1].d2 {
		t.kNearest(far, p, k, pred, found)
	}
}

// insertBounded keeps found sorted by distance and at most k long.
// Equal distances keep discovery order.
func insertBounded(found *[]candidate, c candidate, k int) {
	s := *found
	idx := sort.Search(len(s), func(j int) bool { return s[j].d2 > c.d2 })
	if idx >= k {
		return
	}
	if len(s) < k {
		s = append(s, candidate{})
	}
	copy(s[idx+1:], s[idx:len(s)-1])
	s[idx] = c
	*found = s
}

// InRange returns every accepted position within radius of p, in no particular order
func (t *Tree) InRange(p grid.Pos, radius float64, pred Predicate) []grid.Pos {
	var out []grid.Pos
	t.inRange(0, p, radius, pred, func(o *Occupant) { out = append(out, o.Pos) })
	return out
}

// InRangeOccupants is InRange returning occupant records
func (t *Tree) InRangeOccupants(p grid.Pos, radius float64, pred Predicate) []*Occupant {
	var out []*Occupant
	t.inRange(0, p, radius, pred, func(o *Occupant) { out = append(out, o) })
	return out
}

// CountInRange counts accepted occupants within radius of p
func (t *Tree) CountInRange(p grid.Pos, radius float64, pred Predicate) int {
	n := 0
	t.inRange(0, p, radius, pred, func(*Occupant) { n++ })
	return n
}

func (t *Tree) inRange(i int, p grid.Pos, radius float64, pred Predicate, emit func(*Occupant)) {
	if radius < 0 {
		return
	}
	part := &t.partitions[i]
	if part.IsLeaf() {
		for e := part.FirstElement; e >= 0; e = t.elements[e].Next {
			o := t.store.Get(t.elements[e].Element)
			if pred.accept(o) && p.InRange(o.Pos, radius) {
				emit(o)
			}
		}
		return
	}

	near, far := part.Left, part.Right
	if !part.leftOf(p.X, p.Y) {
		near, far = far, near
	}
	t.inRange(near, p, radius, pred, emit)
	if float64(part.planeDist(p.X, p.Y)) <= radius {
		t.inRange(far, p, radius, pred, emit)
	}
}
