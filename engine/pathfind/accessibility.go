package pathfind

import (
	"fmt"

	"github.com/1siamBot/hivebattle/engine/grid"
)

// JitterEpsilon is the minimum improvement over the start distance before a
// fallback cell is accepted. Stops bots swapping between equidistant cells.
const JitterEpsilon = 0.5

// AccessibilityMap records which cells can be reached from an origin
type AccessibilityMap struct {
	world     World
	width     int
	height    int
	reachable []bool
	origin    grid.Pos
	class     grid.MoveClass
	canMine   bool
	count     int
}

// NewAccessibilityMap flood-fills the cells reachable from origin. An origin
// walled in on all sides is also seeded from the ring two cells out.
func NewAccessibilityMap(w World, origin grid.Pos, class grid.MoveClass, canMine bool) *AccessibilityMap {
	am := &AccessibilityMap{
		world:     w,
		width:     w.Width(),
		height:    w.Height(),
		reachable: make([]bool, w.Width()*w.Height()),
		origin:    origin,
		class:     class,
		canMine:   canMine,
	}
	if !inBounds(w, origin) {
		return am
	}

	queue := []grid.Pos{origin}
	if w.IsSurrounded(origin, canMine) {
		for _, d := range grid.Ring2 {
			p := origin.Add(d[0], d[1])
			if !inBounds(w, p) {
				continue
			}
			if !w.IsBlocked(p.X, p.Y, canMine) {
				am.mark(p)
			}
			queue = append(queue, p)
		}
	} else {
		am.mark(origin)
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range cur.Neighbors() {
			if !inBounds(w, n) || am.reachable[am.index(n)] || w.IsBlocked(n.X, n.Y, canMine) {
				continue
			}
			am.mark(n)
			queue = append(queue, n)
		}
	}
	return am
}

func (am *AccessibilityMap) index(p grid.Pos) int { return p.Y*am.width + p.X }

func (am *AccessibilityMap) mark(p grid.Pos) {
	i := am.index(p)
	if !am.reachable[i] {
		am.reachable[i] = true
		am.count++
	}
}

func (am *AccessibilityMap) contains(p grid.Pos) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < am.width && p.Y < am.height
}

// IsReachable reports whether p was reached by the flood fill
func (am *AccessibilityMap) IsReachable(p grid.Pos) bool {
	return am.contains(p) && am.reachable[am.index(p)]
}

// CanPathFindTo reports whether p or one of its neighbours is reachable
func (am *AccessibilityMap) CanPathFindTo(p grid.Pos) bool {
	if am.IsReachable(p) {
		return true
	}
	for _, n := range p.Neighbors() {
		if am.IsReachable(n) {
			return true
		}
	}
	return false
}

func (am *AccessibilityMap) Origin() grid.Pos      { return am.origin }
func (am *AccessibilityMap) Class() grid.MoveClass { return am.class }
func (am *AccessibilityMap) CanMine() bool         { return am.canMine }

// Count returns the number of reachable cells
func (am *AccessibilityMap) Count() int { return am.count }

// Size returns the dimensions of the underlying grid
func (am *AccessibilityMap) Size() (width, height int) { return am.width, am.height }

// FindClosestReachablePos picks where to head for target. It returns target
// when reachable, else its first reachable neighbour, else the reachable cell
// near from that gets closest to target. If nothing beats from's own distance
// by more than JitterEpsilon, from is returned.
func (am *AccessibilityMap) FindClosestReachablePos(from, target grid.Pos) (grid.Pos, error) {
	if !am.contains(from) || !am.contains(target) {
		return from, fmt.Errorf("closest reachable %v -> %v: %w", from, target, ErrOutOfBounds)
	}
	if am.IsReachable(target) {
		return target, nil
	}
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if n := target.Add(dx, dy); am.IsReachable(n) {
				return n, nil
			}
		}
	}

	visited := make([]bool, len(am.reachable))
	visited[am.index(from)] = true
	queue := []grid.Pos{from}

	closest := from
	startDist := from.DistanceTo(target)
	closestDist := startDist

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range cur.Neighbors() {
			if !am.IsReachable(n) || visited[am.index(n)] || am.world.IsOccupiedBySameClass(n.X, n.Y, am.class) {
				continue
			}
			visited[am.index(n)] = true

			d := n.DistanceTo(target)
			if closestDist-d > 0 && startDist-d > JitterEpsilon {
				closestDist = d
				closest = n
			}
			queue = append(queue, n)
		}
	}
	return closest, nil
}
