package pathfind

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/1siamBot/hivebattle/engine/grid"
)

const (
	// HeuristicWeight inflates the Euclidean estimate; the search is greedy, not optimal
	HeuristicWeight = 2
	// MineCost is added for stepping into a cell that must be mined first
	MineCost = 1
	// MaxSearchIterations caps node expansions per search
	MaxSearchIterations = 100000
)

// BotDetourCost is the penalty for stepping onto a bot of the same class
func BotDetourCost(canMine bool) float64 {
	if canMine {
		return 10
	}
	return 4
}

// FindNextStep returns the first cell to step to on the way from start to
// target. A shootable target counts as reached from any adjacent cell. When
// no route exists start is returned.
func FindNextStep(w World, start, target grid.Pos, class grid.MoveClass, canMine bool) (grid.Pos, error) {
	end, err := search(w, start, target, class, canMine)
	if err != nil {
		return start, err
	}
	if end == nil {
		return start, nil
	}
	cur := end
	for cur.prev != nil && cur.prev.prev != nil {
		cur = cur.prev
	}
	return cur.p, nil
}

// FindRoute returns every cell from start to the terminal cell, both included.
// Nil when no route exists.
func FindRoute(w World, start, target grid.Pos, class grid.MoveClass, canMine bool) ([]grid.Pos, error) {
	end, err := search(w, start, target, class, canMine)
	if err != nil || end == nil {
		return nil, err
	}
	return reconstructPath(end), nil
}

func search(w World, start, target grid.Pos, class grid.MoveClass, canMine bool) (*node, error) {
	if class != grid.ClassMiner && class != grid.ClassFighter {
		return nil, fmt.Errorf("path %v -> %v: %w: %v", start, target, ErrInvalidClass, class)
	}
	if !inBounds(w, start) || !inBounds(w, target) {
		return nil, fmt.Errorf("path %v -> %v: %w", start, target, ErrOutOfBounds)
	}

	startNode := &node{p: start, index: -1}
	if start == target {
		return startNode, nil
	}
	targetShootable := w.IsShootable(target)

	open := &nodeHeap{}
	nodes := map[int]*node{start.ID(): startNode}
	heap.Push(open, startNode)

	for iterations := 0; open.Len() > 0; iterations++ {
		if iterations >= MaxSearchIterations {
			return nil, fmt.Errorf("path %v -> %v: %w", start, target, ErrSearchExhausted)
		}
		cur := heap.Pop(open).(*node)
		if cur.p == target || targetShootable && target.IsNextToOrEqual(cur.p) {
			return cur, nil
		}

		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				if dx == 0 && dy == 0 {
					continue
				}
				np := cur.p.Add(dx, dy)
				if w.IsBlocked(np.X, np.Y, canMine) {
					continue
				}
				g := cur.g + stepCost(w, np, dx, dy, class, canMine)

				n, seen := nodes[np.ID()]
				if !seen {
					n = &node{p: np, index: -1}
					nodes[np.ID()] = n
				} else if g >= n.g {
					continue
				}
				n.prev = cur
				n.g = g
				n.f = g + np.DistanceTo(target)*HeuristicWeight
				if n.index >= 0 {
					heap.Fix(open, n.index)
				} else {
					heap.Push(open, n)
				}
			}
		}
	}
	return nil, nil
}

func stepCost(w World, p grid.Pos, dx, dy int, class grid.MoveClass, canMine bool) float64 {
	cost := 1.0
	if dx != 0 && dy != 0 {
		cost = math.Sqrt2
	}
	switch {
	case canMine && w.IsMineable(p.X, p.Y):
		cost += MineCost
	case w.IsOccupiedBySameClass(p.X, p.Y, class):
		cost += BotDetourCost(canMine)
	}
	return cost
}

func reconstructPath(end *node) []grid.Pos {
	var path []grid.Pos
	for cur := end; cur != nil; cur = cur.prev {
		path = append(path, cur.p)
	}
	// Reverse
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// --- Priority queue ---

type node struct {
	p     grid.Pos
	prev  *node
	g, f  float64
	index int // heap slot, -1 when not queued
}

type nodeHeap []*node

func (h nodeHeap) Len() int           { return len(h) }
func (h nodeHeap) Less(i, j int) bool { return h[i].f < h[j].f }
func (h nodeHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *nodeHeap) Push(x interface{}) {
	n := x.(*node)
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *nodeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*h = old[:n-1]
	return item
}
