package maplib

import (
	"fmt"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/1siamBot/hivebattle/engine/grid"
)

// Generator decides the content of an interior cell
type Generator func(x, y int) grid.CellType

// OnlyDeposit fills the interior with deposits
func OnlyDeposit(x, y int) grid.CellType { return grid.Deposit }

// DiagonalLines produces stone columns with diagonal deposit veins
func DiagonalLines(x, y int) grid.CellType {
	if x%3 == 0 {
		return grid.Stone
	}
	if y%3 == 0 || x%4 == y%4 {
		return grid.Deposit
	}
	return grid.Empty
}

// Open leaves the interior empty
func Open(x, y int) grid.CellType { return grid.Empty }

// Noise builds a cave-like generator from simplex noise
func Noise(seed int64) Generator {
	noise := opensimplex.NewNormalized(seed)
	detail := opensimplex.NewNormalized(seed + 1)
	const scale = 0.09
	return func(x, y int) grid.CellType {
		v := noise.Eval2(float64(x)*scale, float64(y)*scale)
		switch {
		case v > 0.68:
			return grid.Stone
		case v > 0.5:
			return grid.Deposit
		case detail.Eval2(float64(x)*scale*3, float64(y)*scale*3) > 0.78:
			return grid.Deposit
		}
		return grid.Empty
	}
}

// GeneratorByName resolves a generator from config
func GeneratorByName(name string, seed int64) (Generator, error) {
	switch name {
	case "", "deposit":
		return OnlyDeposit, nil
	case "diagonal":
		return DiagonalLines, nil
	case "open":
		return Open, nil
	case "noise":
		return Noise(seed), nil
	}
	return nil, fmt.Errorf("unknown map generator %q", name)
}

// Generate lays out a map with a bedrock border, a stone ring inside it and
// gen everywhere else. The 3x3 area around every start position stays empty.
func Generate(name string, width, height int, gen Generator, starts []grid.Pos) *Layout {
	l := NewLayout(name, width, height)
	l.MaxPlayers = max(2, len(starts))
	for i, s := range starts {
		l.StartPositions = append(l.StartPositions, StartPos{PlayerSlot: i, X: s.X, Y: s.Y})
	}

	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			if y == 0 || y == height-1 || x == 0 || x == width-1 {
				l.Set(x, y, grid.Bedrock)
				continue
			}
			if y == 1 || y == height-2 || x == 1 || x == width-2 {
				l.Set(x, y, grid.Stone)
				continue
			}
			if nearStart(starts, x, y) {
				continue
			}
			if c := gen(x, y); c != grid.None && c != grid.MotherShip && !c.IsBot() {
				l.Set(x, y, c)
			}
		}
	}
	return l
}

func nearStart(starts []grid.Pos, x, y int) bool {
	for _, s := range starts {
		if s.IsNextToOrEqual(grid.P(x, y)) {
			return true
		}
	}
	return false
}
