package maplib

import (
	"github.com/1siamBot/hivebattle/engine/bsp"
	"github.com/1siamBot/hivebattle/engine/grid"
)

func (m *Map) at(layer []*bsp.Occupant, x, y int) *bsp.Occupant {
	if !m.InBounds(x, y) {
		return nil
	}
	return layer[y*m.width+x]
}

// GroundAt returns the ground cell type, Empty when bare and None out of bounds
func (m *Map) GroundAt(p grid.Pos) grid.CellType {
	if !m.InBounds(p.X, p.Y) {
		return grid.None
	}
	if o := m.ground[m.index(p)]; o != nil {
		return o.Kind
	}
	return grid.Empty
}

// CellTypeAt returns the topmost occupant type: fighter, miner, then ground
func (m *Map) CellTypeAt(p grid.Pos) grid.CellType {
	if m.at(m.fighters, p.X, p.Y) != nil {
		return grid.FighterBot
	}
	if m.at(m.miners, p.X, p.Y) != nil {
		return grid.MinerBot
	}
	return m.GroundAt(p)
}

// IsCellType reports whether any layer at p holds kind
func (m *Map) IsCellType(p grid.Pos, kind grid.CellType) bool {
	switch kind {
	case grid.MinerBot:
		return m.IsMinerBot(p.X, p.Y)
	case grid.FighterBot:
		return m.IsFighterBot(p.X, p.Y)
	}
	return m.GroundAt(p) == kind
}

// GroundOccupant returns the ground record at p, or nil
func (m *Map) GroundOccupant(p grid.Pos) *bsp.Occupant { return m.at(m.ground, p.X, p.Y) }

// MinerAt returns the miner record at p, or nil
func (m *Map) MinerAt(p grid.Pos) *bsp.Occupant { return m.at(m.miners, p.X, p.Y) }

// FighterAt returns the fighter record at p, or nil
func (m *Map) FighterAt(p grid.Pos) *bsp.Occupant { return m.at(m.fighters, p.X, p.Y) }

func (m *Map) IsStone(p grid.Pos) bool      { return m.GroundAt(p) == grid.Stone }
func (m *Map) IsDeposit(p grid.Pos) bool    { return m.GroundAt(p) == grid.Deposit }
func (m *Map) IsMineral(p grid.Pos) bool    { return m.GroundAt(p) == grid.Mineral }
func (m *Map) IsBedrock(p grid.Pos) bool    { return m.GroundAt(p) == grid.Bedrock }
func (m *Map) IsMotherShip(p grid.Pos) bool { return m.GroundAt(p) == grid.MotherShip }

func (m *Map) IsMinerBot(x, y int) bool   { return m.at(m.miners, x, y) != nil }
func (m *Map) IsFighterBot(x, y int) bool { return m.at(m.fighters, x, y) != nil }

// IsEmpty reports whether no layer at p holds anything
func (m *Map) IsEmpty(p grid.Pos) bool {
	return m.InBounds(p.X, p.Y) && m.GroundAt(p) == grid.Empty &&
		!m.IsMinerBot(p.X, p.Y) && !m.IsFighterBot(p.X, p.Y)
}

// IsWalkable reports whether the ground at (x, y) is bare or a mineral
func (m *Map) IsWalkable(x, y int) bool {
	if !m.InBounds(x, y) {
		return false
	}
	o := m.ground[y*m.width+x]
	return o == nil || o.Kind == grid.Mineral
}

// IsMineable reports whether the ground at (x, y) is stone or a deposit
func (m *Map) IsMineable(x, y int) bool {
	o := m.at(m.ground, x, y)
	return o != nil && (o.Kind == grid.Stone || o.Kind == grid.Deposit)
}

// IsBlocked reports whether a traverser cannot enter (x, y)
func (m *Map) IsBlocked(x, y int, canMine bool) bool {
	if canMine {
		return !m.IsWalkable(x, y) && !m.IsMineable(x, y)
	}
	return !m.IsWalkable(x, y)
}

// IsSurrounded reports whether all 8 neighbours of p are blocked
func (m *Map) IsSurrounded(p grid.Pos, canMine bool) bool {
	for _, n := range p.Neighbors() {
		if !m.IsBlocked(n.X, n.Y, canMine) {
			return false
		}
	}
	return true
}

// IsShootable reports whether p holds a bot or a mothership
func (m *Map) IsShootable(p grid.Pos) bool {
	return m.IsMinerBot(p.X, p.Y) || m.IsFighterBot(p.X, p.Y) || m.IsMotherShip(p)
}

// IsOccupiedBySameClass reports whether a bot moving with class sits at (x, y)
func (m *Map) IsOccupiedBySameClass(x, y int, class grid.MoveClass) bool {
	switch class {
	case grid.ClassMiner:
		return m.IsMinerBot(x, y)
	case grid.ClassFighter:
		return m.IsFighterBot(x, y)
	}
	return false
}
