package bsp

import (
	"fmt"

	"github.com/1siamBot/hivebattle/engine/grid"
)

// Bounds is an inclusive axis-aligned rectangle of cells
type Bounds struct {
	XMin, XMax, YMin, YMax int
}

// Contains reports whether p lies inside b
func (b Bounds) Contains(p grid.Pos) bool {
	return p.X >= b.XMin && p.X <= b.XMax && p.Y >= b.YMin && p.Y <= b.YMax
}

// Width returns the number of columns covered
func (b Bounds) Width() int { return b.XMax - b.XMin + 1 }

// Height returns the number of rows covered
func (b Bounds) Height() int { return b.YMax - b.YMin + 1 }

func (b Bounds) String() string {
	return fmt.Sprintf("[%d..%d]x[%d..%d]", b.XMin, b.XMax, b.YMin, b.YMax)
}
