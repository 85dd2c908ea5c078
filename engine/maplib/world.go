package maplib

import (
	"errors"
	"fmt"
	"slices"

	"github.com/1siamBot/hivebattle/engine/bsp"
	"github.com/1siamBot/hivebattle/engine/core"
	"github.com/1siamBot/hivebattle/engine/grid"
)

var (
	ErrOutOfBounds  = errors.New("position out of bounds")
	ErrCellOccupied = errors.New("cell already occupied")
	ErrCellEmpty    = errors.New("cell is empty")
	ErrNotAdjacent  = errors.New("target is not adjacent")
	ErrBlocked      = errors.New("target is not walkable")
	ErrInvalidKind  = errors.New("invalid cell type")
	ErrNotMineable  = errors.New("cell is not mineable")
)

type teamIndex struct {
	miners   *bsp.Tree
	fighters *bsp.Tree
}

// Map is the grid world. Static cells live on the ground layer; miners and
// fighters each have their own layer so one of each may share a cell.
// Minerals, deposits and every team's bots are also kept in spatial indices.
type Map struct {
	width, height int

	ground   []*bsp.Occupant
	miners   []*bsp.Occupant
	fighters []*bsp.Occupant

	minerals *bsp.Tree
	deposits *bsp.Tree
	units    map[int]*teamIndex
	depth    int
}

// NewMap creates an empty map
func NewMap(width, height int) *Map {
	depth := bsp.DepthFor(width, height)
	return &Map{
		width:    width,
		height:   height,
		ground:   make([]*bsp.Occupant, width*height),
		miners:   make([]*bsp.Occupant, width*height),
		fighters: make([]*bsp.Occupant, width*height),
		minerals: bsp.New(width, height, depth),
		deposits: bsp.New(width, height, depth),
		units:    make(map[int]*teamIndex),
		depth:    depth,
	}
}

// FromLayout creates a map populated with a layout's cells
func FromLayout(l *Layout) (*Map, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	m := NewMap(l.Width, l.Height)
	for y := 0; y < l.Height; y++ {
		for x := 0; x < l.Width; x++ {
			c := l.At(x, y)
			if c == grid.None || c == grid.Empty || c == grid.MotherShip || c.IsBot() {
				continue
			}
			if _, err := m.CreateCell(grid.P(x, y), c, bsp.NoTeam, core.NoEntity); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

// Layout captures the current ground layer
func (m *Map) Layout(name string) *Layout {
	l := NewLayout(name, m.width, m.height)
	for i, o := range m.ground {
		if o != nil && o.Kind != grid.MotherShip {
			l.Cells[i] = o.Kind
		}
	}
	return l
}

func (m *Map) Width() int  { return m.width }
func (m *Map) Height() int { return m.height }

// InBounds checks if coordinates are within map bounds
func (m *Map) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.width && y < m.height
}

func (m *Map) index(p grid.Pos) int { return p.Y*m.width + p.X }

func (m *Map) layer(kind grid.CellType) []*bsp.Occupant {
	switch kind {
	case grid.MinerBot:
		return m.miners
	case grid.FighterBot:
		return m.fighters
	}
	return m.ground
}

func (m *Map) team(team int) *teamIndex {
	ti, ok := m.units[team]
	if !ok {
		ti = &teamIndex{
			miners:   bsp.New(m.width, m.height, m.depth),
			fighters: bsp.New(m.width, m.height, m.depth),
		}
		m.units[team] = ti
	}
	return ti
}

func (m *Map) unitTree(team int, kind grid.CellType) *bsp.Tree {
	if kind == grid.MinerBot {
		return m.team(team).miners
	}
	return m.team(team).fighters
}

func (m *Map) check(p grid.Pos) error {
	if !m.InBounds(p.X, p.Y) {
		return fmt.Errorf("%v: %w", p, ErrOutOfBounds)
	}
	return nil
}

// CreateCell places a new occupant. Bots go on their own layer and into
// their team's index, minerals and deposits into the resource indices.
func (m *Map) CreateCell(p grid.Pos, kind grid.CellType, team int, owner core.EntityID) (*bsp.Occupant, error) {
	if err := m.check(p); err != nil {
		return nil, err
	}
	if kind == grid.None || kind == grid.Empty {
		return nil, fmt.Errorf("create %v at %v: %w", kind, p, ErrInvalidKind)
	}
	layer := m.layer(kind)
	i := m.index(p)
	if layer[i] != nil {
		return nil, fmt.Errorf("create %v at %v over %v: %w", kind, p, layer[i].Kind, ErrCellOccupied)
	}

	o := bsp.NewOccupant(p, kind, team, owner)
	layer[i] = o
	switch kind {
	case grid.Mineral:
		m.minerals.Insert(o)
	case grid.Deposit:
		m.deposits.Insert(o)
	case grid.MinerBot, grid.FighterBot:
		m.unitTree(team, kind).Insert(o)
	}
	return o, nil
}

// DestroyCell removes the ground occupant at p
func (m *Map) DestroyCell(p grid.Pos) error {
	if err := m.check(p); err != nil {
		return err
	}
	i := m.index(p)
	o := m.ground[i]
	if o == nil {
		return fmt.Errorf("destroy %v: %w", p, ErrCellEmpty)
	}
	m.ground[i] = nil
	switch o.Kind {
	case grid.Mineral:
		m.minerals.MarkDestroyed(o)
		m.minerals.ReinsertAllAndCleanIfNeeded()
	case grid.Deposit:
		m.deposits.MarkDestroyed(o)
		m.deposits.ReinsertAllAndCleanIfNeeded()
	default:
		o.Destroy()
	}
	return nil
}

// DestroyBot removes the bot of the given kind at p
func (m *Map) DestroyBot(p grid.Pos, kind grid.CellType) error {
	if err := m.check(p); err != nil {
		return err
	}
	if !kind.IsBot() {
		return fmt.Errorf("destroy bot %v at %v: %w", kind, p, ErrInvalidKind)
	}
	layer := m.layer(kind)
	i := m.index(p)
	o := layer[i]
	if o == nil {
		return fmt.Errorf("destroy %v at %v: %w", kind, p, ErrCellEmpty)
	}
	layer[i] = nil
	tree := m.unitTree(o.Team, kind)
	tree.MarkDestroyed(o)
	tree.ReinsertAllAndCleanIfNeeded()
	return nil
}

// MoveBot steps a bot to an adjacent walkable cell. Its index record is
// tombstoned and a fresh one inserted at the destination.
func (m *Map) MoveBot(from, to grid.Pos, kind grid.CellType) (*bsp.Occupant, error) {
	if err := m.check(from); err != nil {
		return nil, err
	}
	if err := m.check(to); err != nil {
		return nil, err
	}
	if !kind.IsBot() {
		return nil, fmt.Errorf("move %v: %w", kind, ErrInvalidKind)
	}
	layer := m.layer(kind)
	old := layer[m.index(from)]
	switch {
	case old == nil:
		return nil, fmt.Errorf("move %v from %v: %w", kind, from, ErrCellEmpty)
	case from == to || !from.IsNextToOrEqual(to):
		return nil, fmt.Errorf("move %v %v -> %v: %w", kind, from, to, ErrNotAdjacent)
	case layer[m.index(to)] != nil:
		return nil, fmt.Errorf("move %v %v -> %v: %w", kind, from, to, ErrCellOccupied)
	case !m.IsWalkable(to.X, to.Y):
		return nil, fmt.Errorf("move %v %v -> %v: %w", kind, from, to, ErrBlocked)
	}

	tree := m.unitTree(old.Team, kind)
	tree.MarkDestroyed(old)
	moved := bsp.NewOccupant(to, kind, old.Team, old.Owner)
	layer[m.index(from)] = nil
	layer[m.index(to)] = moved
	tree.Insert(moved)
	tree.ReinsertAllAndCleanIfNeeded()
	return moved, nil
}

// Mine breaks stone or a deposit. A mined deposit leaves a mineral behind.
func (m *Map) Mine(p grid.Pos) error {
	if !m.IsMineable(p.X, p.Y) {
		return fmt.Errorf("mine %v (%v): %w", p, m.GroundAt(p), ErrNotMineable)
	}
	wasDeposit := m.IsDeposit(p)
	if err := m.DestroyCell(p); err != nil {
		return err
	}
	if wasDeposit {
		_, err := m.CreateCell(p, grid.Mineral, bsp.NoTeam, core.NoEntity)
		return err
	}
	return nil
}

// ClearMineral removes a mineral that has been picked up
func (m *Map) ClearMineral(p grid.Pos) error {
	if !m.IsMineral(p) {
		return fmt.Errorf("clear mineral %v (%v): %w", p, m.GroundAt(p), ErrInvalidKind)
	}
	return m.DestroyCell(p)
}

// FirstEmptyNeighbor returns the first neighbour with no occupant on any layer
func (m *Map) FirstEmptyNeighbor(p grid.Pos) (grid.Pos, bool) {
	for _, n := range p.Neighbors() {
		if m.IsEmpty(n) {
			return n, true
		}
	}
	return grid.Pos{}, false
}

// Minerals is the index of minerals lying on the ground
func (m *Map) Minerals() *bsp.Tree { return m.minerals }

// Deposits is the index of unmined deposits
func (m *Map) Deposits() *bsp.Tree { return m.deposits }

// MinerIndex is the index of a team's miners
func (m *Map) MinerIndex(team int) *bsp.Tree { return m.team(team).miners }

// FighterIndex is the index of a team's fighters
func (m *Map) FighterIndex(team int) *bsp.Tree { return m.team(team).fighters }

// Teams lists every team that has had a unit index, ascending
func (m *Map) Teams() []int {
	out := make([]int, 0, len(m.units))
	for t := range m.units {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

func (m *Map) MineralPositions() []grid.Pos { return m.minerals.Positions() }
func (m *Map) DepositPositions() []grid.Pos { return m.deposits.Positions() }
