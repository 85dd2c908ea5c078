package game

import "github.com/1siamBot/hivebattle/engine/grid"

type MinerMoveType uint8

const (
	MinerDoNothing MinerMoveType = iota
	MinerStep
	MinerMoveTowards
	MinerMineTowards
	MinerMine
	MinerPickUpMineral
	MinerUnloadMinerals
	MinerHeal
)

var minerMoveNames = [...]string{"do_nothing", "move", "move_towards", "mine_towards", "mine", "pick_up_mineral", "unload_minerals", "heal"}

func (t MinerMoveType) String() string {
	if int(t) < len(minerMoveNames) {
		return minerMoveNames[t]
	}
	return "unknown"
}

type FighterMoveType uint8

const (
	FighterDoNothing FighterMoveType = iota
	FighterStep
	FighterMoveTowards
	FighterShoot
	FighterHeal
)

var fighterMoveNames = [...]string{"do_nothing", "move", "move_towards", "shoot", "heal"}

func (t FighterMoveType) String() string {
	if int(t) < len(fighterMoveNames) {
		return fighterMoveNames[t]
	}
	return "unknown"
}

type MotherShipMoveType uint8

const (
	MotherShipDoNothing MotherShipMoveType = iota
	MotherShipBuildFighter
	MotherShipBuildMiner
)

func (t MotherShipMoveType) String() string {
	switch t {
	case MotherShipBuildFighter:
		return "build_fighter"
	case MotherShipBuildMiner:
		return "build_miner"
	}
	return "do_nothing"
}

// MinerMove is a miner's decision for one turn
type MinerMove struct {
	Type      MinerMoveType
	Target    grid.Pos
	HasTarget bool
}

// MinerAct builds a move that needs a target
func MinerAct(t MinerMoveType, target grid.Pos) MinerMove {
	return MinerMove{Type: t, Target: target, HasTarget: true}
}

// MinerIdle builds a targetless move
func MinerIdle(t MinerMoveType) MinerMove { return MinerMove{Type: t} }

func (m MinerMove) needsTarget() bool {
	return m.Type != MinerDoNothing && m.Type != MinerHeal
}

// FighterMove is a fighter's decision for one turn
type FighterMove struct {
	Type      FighterMoveType
	Target    grid.Pos
	HasTarget bool
}

// FighterAct builds a move that needs a target
func FighterAct(t FighterMoveType, target grid.Pos) FighterMove {
	return FighterMove{Type: t, Target: target, HasTarget: true}
}

// FighterIdle builds a targetless move
func FighterIdle(t FighterMoveType) FighterMove { return FighterMove{Type: t} }

func (m FighterMove) needsTarget() bool {
	return m.Type != FighterDoNothing && m.Type != FighterHeal
}

// MotherShipMove is the mothership's decision for one turn
type MotherShipMove struct {
	Type MotherShipMoveType
}
