package bsp

import (
	"math"

	"github.com/1siamBot/hivebattle/engine/grid"
)

// MaxDepth bounds the tree so tiny leaves never dominate memory
const MaxDepth = 12

// cellsPerLeaf is the target number of grid cells covered by one leaf
const cellsPerLeaf = 100

// Tree is a fixed-shape binary space partition over a width x height grid.
// Leaves keep intrusive lists of occupants stored in a shared CellStore.
type Tree struct {
	partitions []Partition
	elements   []ElementIndex
	store      *CellStore
	depth      int
	live       int
}

// DepthFor picks a depth so that each leaf covers roughly cellsPerLeaf cells
func DepthFor(width, height int) int {
	cells := float64(width * height)
	if cells < 2*cellsPerLeaf {
		return 0
	}
	d := int(math.Floor(math.Log2(cells / cellsPerLeaf)))
	return min(d, MaxDepth)
}

// New builds an empty tree of the given depth covering [0,width)x[0,height)
func New(width, height, depth int) *Tree {
	depth = max(0, min(depth, MaxDepth))
	t := &Tree{
		partitions: make([]Partition, 1<<(depth+1)-1),
		store:      NewCellStore(DefaultStoreSize),
		depth:      depth,
	}
	t.build(0, Bounds{0, width - 1, 0, height - 1}, 0)
	return t
}

// NewForGrid builds a tree sized with DepthFor
func NewForGrid(width, height int) *Tree {
	return New(width, height, DepthFor(width, height))
}

func (t *Tree) build(i int, b Bounds, depth int) {
	p := &t.partitions[i]
	p.Bounds = b
	p.Depth = depth
	p.SplitAlongX = depth%2 == 0
	if depth == t.depth {
		p.Left, p.Right = Null, Null
		p.FirstElement = Empty
		return
	}
	p.FirstElement = Null
	p.Left, p.Right = 2*i+1, 2*i+2

	var lb, rb Bounds
	if p.SplitAlongX {
		p.SplitValue = b.XMin + (b.XMax-b.XMin)/2
		lb = Bounds{b.XMin, p.SplitValue, b.YMin, b.YMax}
		rb = Bounds{p.SplitValue + 1, b.XMax, b.YMin, b.YMax}
	} else {
		p.SplitValue = b.YMin + (b.YMax-b.YMin)/2
		lb = Bounds{b.XMin, b.XMax, b.YMin, p.SplitValue}
		rb = Bounds{b.XMin, b.XMax, p.SplitValue + 1, b.YMax}
	}
	t.build(p.Left, lb, depth+1)
	t.build(p.Right, rb, depth+1)
}

// Insert adds a live occupant to the index
func (t *Tree) Insert(o *Occupant) {
	if o.destroyed {
		return
	}
	t.link(t.store.Add(o), o.Pos)
	t.live++
}

// link pushes a store handle onto the head of the leaf that owns pos
func (t *Tree) link(handle int, pos grid.Pos) {
	i := 0
	for !t.partitions[i].IsLeaf() {
		p := &t.partitions[i]
		if p.leftOf(pos.X, pos.Y) {
			i = p.Left
		} else {
			i = p.Right
		}
	}
	leaf := &t.partitions[i]
	next := leaf.FirstElement
	if next == Empty {
		next = Null
	}
	t.elements = append(t.elements, ElementIndex{Next: next, Element: handle})
	leaf.FirstElement = len(t.elements) - 1
}

// MarkDestroyed tombstones o. It stays reachable through the leaf lists until
// the next compacting rebuild but is never returned by a query.
func (t *Tree) MarkDestroyed(o *Occupant) {
	if o == nil || o.destroyed {
		return
	}
	o.destroyed = true
	t.store.IncrementDestroyed()
	t.live--
}

// ReinsertAllAndCleanIfNeeded compacts the store and rebuilds every leaf list
// once enough tombstones have piled up. Returns whether a rebuild ran.
func (t *Tree) ReinsertAllAndCleanIfNeeded() bool {
	if !t.store.NeedsCompaction() {
		return false
	}
	for i := range t.partitions {
		if t.partitions[i].IsLeaf() {
			t.partitions[i].FirstElement = Empty
		}
	}
	t.elements = t.elements[:0]
	t.store.CompactIfNeeded()
	for h := 0; h < t.store.Len(); h++ {
		t.link(h, t.store.Get(h).Pos)
	}
	return true
}

// Len returns the number of live occupants
func (t *Tree) Len() int { return t.live }

// Depth returns the fixed depth of the tree
func (t *Tree) Depth() int { return t.depth }

// Tombstones returns the destroyed occupants still held by the store
func (t *Tree) Tombstones() int { return t.store.Destroyed() }

// Leaves returns the bounds of every leaf partition
func (t *Tree) Leaves() []Bounds {
	out := make([]Bounds, 0, 1<<t.depth)
	for i := range t.partitions {
		if t.partitions[i].IsLeaf() {
			out = append(out, t.partitions[i].Bounds)
		}
	}
	return out
}

// Walk calls fn for every live occupant, leaf by leaf
func (t *Tree) Walk(fn func(o *Occupant)) {
	for i := range t.partitions {
		p := &t.partitions[i]
		if !p.IsLeaf() {
			continue
		}
		for e := p.FirstElement; e >= 0; e = t.elements[e].Next {
			if o := t.store.Get(t.elements[e].Element); !o.destroyed {
				fn(o)
			}
		}
	}
}

// Positions lists the positions of all live occupants
func (t *Tree) Positions() []grid.Pos {
	out := make([]grid.Pos, 0, t.live)
	t.Walk(func(o *Occupant) { out = append(out, o.Pos) })
	return out
}
