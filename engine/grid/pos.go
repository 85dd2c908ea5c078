package grid

import (
	"fmt"
	"math"
)

// PackFactor separates x from y in a packed position id
const PackFactor = 10000

// Pos is an integer grid coordinate
type Pos struct{ X, Y int }

// P is shorthand for Pos{x, y}
func P(x, y int) Pos { return Pos{X: x, Y: y} }

func (p Pos) Equals(o Pos) bool { return p.X == o.X && p.Y == o.Y }

// Add returns p shifted by (dx, dy)
func (p Pos) Add(dx, dy int) Pos { return Pos{p.X + dx, p.Y + dy} }

// DistanceTo returns the Euclidean distance to o
func (p Pos) DistanceTo(o Pos) float64 {
	return math.Sqrt(float64(p.DistanceToSquared(o)))
}

// DistanceToSquared returns the squared Euclidean distance to o
func (p Pos) DistanceToSquared(o Pos) int {
	dx := p.X - o.X
	dy := p.Y - o.Y
	return dx*dx + dy*dy
}

// IsNextToOrEqual reports whether o is p or one of its 8 neighbours
func (p Pos) IsNextToOrEqual(o Pos) bool {
	return abs(p.X-o.X) <= 1 && abs(p.Y-o.Y) <= 1
}

// InRange reports whether o lies within radius r of p
func (p Pos) InRange(o Pos, r float64) bool {
	return float64(p.DistanceToSquared(o)) <= r*r
}

// ChebyshevTo returns max(|dx|, |dy|)
func (p Pos) ChebyshevTo(o Pos) int {
	return max(abs(p.X-o.X), abs(p.Y-o.Y))
}

// ID packs the position into a single int, valid for coordinates below PackFactor
func (p Pos) ID() int { return p.X*PackFactor + p.Y }

// FromID reverses ID
func FromID(id int) Pos { return Pos{id / PackFactor, id % PackFactor} }

// Neighbors returns the 8 surrounding positions, rows y+1 to y-1, columns x-1 to x+1
func (p Pos) Neighbors() [8]Pos {
	var out [8]Pos
	for i, d := range Dirs8 {
		out[i] = Pos{p.X + d[0], p.Y + d[1]}
	}
	return out
}

func (p Pos) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Dirs8 lists the neighbour offsets in Neighbors order
var Dirs8 = [8][2]int{
	{-1, 1}, {0, 1}, {1, 1},
	{-1, 0}, {1, 0},
	{-1, -1}, {0, -1}, {1, -1},
}

// Ring2 lists the offsets at Chebyshev distance 2 used to seed enclosed origins
var Ring2 = [8][2]int{
	{-2, 2}, {0, 2}, {2, 2},
	{-2, 0}, {2, 0},
	{-2, -2}, {0, -2}, {2, -2},
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
