package bsp

import (
	"github.com/1siamBot/hivebattle/engine/core"
	"github.com/1siamBot/hivebattle/engine/grid"
)

// NoTeam marks an occupant that belongs to no player
const NoTeam = -1

// Occupant is a record for something placed on the grid. Its position never
// changes; a moving unit is tombstoned and a new record inserted.
type Occupant struct {
	Pos       grid.Pos
	Kind      grid.CellType
	Team      int
	Owner     core.EntityID
	destroyed bool
}

// NewOccupant creates a live record
func NewOccupant(pos grid.Pos, kind grid.CellType, team int, owner core.EntityID) *Occupant {
	return &Occupant{Pos: pos, Kind: kind, Team: team, Owner: owner}
}

// Destroyed reports whether the occupant has been tombstoned
func (o *Occupant) Destroyed() bool { return o.destroyed }

// Destroy tombstones an occupant that is not held by any index
func (o *Occupant) Destroy() { o.destroyed = true }

// Predicate filters occupants during a query; nil accepts everything
type Predicate func(o *Occupant) bool

func (pr Predicate) accept(o *Occupant) bool {
	return !o.destroyed && (pr == nil || pr(o))
}
