package maplib

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/1siamBot/hivebattle/engine/grid"
)

// Layout is the static part of a map: terrain, resources and start slots.
// MotherShip cells are never stored; StartPositions are authoritative.
type Layout struct {
	Name   string          `json:"name"`
	Author string          `json:"author"`
	Width  int             `json:"width"`
	Height int             `json:"height"`
	Cells  []grid.CellType `json:"cells"`

	// Map metadata
	StartPositions []StartPos `json:"start_positions"`
	Description    string     `json:"description"`
	MaxPlayers     int        `json:"max_players"`
}

// StartPos defines a player start position
type StartPos struct {
	PlayerSlot int `json:"player_slot"`
	X          int `json:"x"`
	Y          int `json:"y"`
}

func (s StartPos) Pos() grid.Pos { return grid.P(s.X, s.Y) }

// NewLayout creates a new empty layout
func NewLayout(name string, width, height int) *Layout {
	l := &Layout{
		Name:       name,
		Width:      width,
		Height:     height,
		Cells:      make([]grid.CellType, width*height),
		MaxPlayers: 2,
	}
	for i := range l.Cells {
		l.Cells[i] = grid.Empty
	}
	return l
}

// InBounds checks if coordinates are within layout bounds
func (l *Layout) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < l.Width && y < l.Height
}

// At returns the cell type at (x, y), None when out of bounds
func (l *Layout) At(x, y int) grid.CellType {
	if !l.InBounds(x, y) {
		return grid.None
	}
	return l.Cells[y*l.Width+x]
}

// Set assigns a cell type, ignoring out of bounds coordinates
func (l *Layout) Set(x, y int, c grid.CellType) {
	if l.InBounds(x, y) {
		l.Cells[y*l.Width+x] = c
	}
}

// Fill sets a rectangular region
func (l *Layout) Fill(x1, y1, x2, y2 int, c grid.CellType) {
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			l.Set(x, y, c)
		}
	}
}

// Count returns how many cells have type c
func (l *Layout) Count(c grid.CellType) int {
	n := 0
	for _, v := range l.Cells {
		if v == c {
			n++
		}
	}
	return n
}

// Validate checks dimensions and start positions
func (l *Layout) Validate() error {
	if l.Width < 5 || l.Height < 5 {
		return fmt.Errorf("layout %q: %dx%d is too small", l.Name, l.Width, l.Height)
	}
	if len(l.Cells) != l.Width*l.Height {
		return fmt.Errorf("layout %q: %d cells for %dx%d", l.Name, len(l.Cells), l.Width, l.Height)
	}
	for _, s := range l.StartPositions {
		if !l.InBounds(s.X, s.Y) {
			return fmt.Errorf("layout %q: start slot %d at (%d,%d): %w", l.Name, s.PlayerSlot, s.X, s.Y, ErrOutOfBounds)
		}
	}
	return nil
}

// SaveJSON saves the layout to a JSON file
func (l *Layout) SaveJSON(path string) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadJSON loads a layout from a JSON file
func LoadJSON(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &l, nil
}
