package bsp

// Sentinels for Partition.FirstElement and ElementIndex.Next
const (
	Null  = -1 // internal partition, or end of a leaf list
	Empty = -2 // leaf that has never held an element
)

// Partition is one node of the fixed-shape tree
type Partition struct {
	Bounds       Bounds
	SplitValue   int
	SplitAlongX  bool
	Left, Right  int
	Depth        int
	FirstElement int
}

// IsLeaf reports whether the partition holds elements directly
func (p *Partition) IsLeaf() bool { return p.FirstElement != Null }

// ElementIndex is one link of a leaf's intrusive list
type ElementIndex struct {
	Next    int
	Element int
}

// leftOf reports whether (x, y) routes to the left child.
// Points on the split line always go left.
func (p *Partition) leftOf(x, y int) bool {
	if p.SplitAlongX {
		return x <= p.SplitValue
	}
	return y <= p.SplitValue
}

// planeDist is the distance from (x, y) to the split line
func (p *Partition) planeDist(x, y int) int {
	d := y - p.SplitValue
	if p.SplitAlongX {
		d = x - p.SplitValue
	}
	if d < 0 {
		return -d
	}
	return d
}
