package pathfind

import (
	"errors"

	"github.com/1siamBot/hivebattle/engine/grid"
)

var (
	ErrOutOfBounds     = errors.New("pathfind: position out of bounds")
	ErrInvalidClass    = errors.New("pathfind: invalid movement class")
	ErrSearchExhausted = errors.New("pathfind: search iteration limit exceeded")
)

// World is the read-only view of the grid the pathfinder needs.
// Out-of-bounds coordinates must report blocked and not mineable.
type World interface {
	Width() int
	Height() int
	IsBlocked(x, y int, canMine bool) bool
	IsMineable(x, y int) bool
	IsWalkable(x, y int) bool
	IsOccupiedBySameClass(x, y int, class grid.MoveClass) bool
	IsSurrounded(p grid.Pos, canMine bool) bool
	IsShootable(p grid.Pos) bool
}

func inBounds(w World, p grid.Pos) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < w.Width() && p.Y < w.Height()
}
