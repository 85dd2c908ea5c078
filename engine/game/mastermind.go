package game

import (
	"slices"

	"github.com/1siamBot/hivebattle/engine/grid"
	"github.com/zyedidia/generic/mapset"
)

// MasterMind spreads miners over distinct resources and focuses fighter fire.
// Its target lists are reset on every mothership decision, which is the last
// decision of a player's turn.
type MasterMind struct {
	openFight    bool
	fightTargets []grid.Pos
	mineTargets  mapset.Set[grid.Pos]

	enemyNearBase    grid.Pos
	hasEnemyNearBase bool
}

func NewMasterMind() *MasterMind {
	return &MasterMind{mineTargets: mapset.New[grid.Pos]()}
}

const (
	// enemyTooCloseFraction of the distance to the far corner counts as too close to base
	enemyTooCloseFraction = 0.3
	minerHunterEvery      = 10
)

func (m *MasterMind) reset(obs *MotherShipObservation) {
	m.enemyNearBase, m.hasEnemyNearBase = obs.NearestEnemyFighter()
	m.fightTargets = m.fightTargets[:0]
	m.mineTargets = mapset.New[grid.Pos]()

	m.openFight = false
	for _, ship := range obs.EnemyMotherShips() {
		if obs.CanPathFindTo(ship) {
			m.openFight = true
			break
		}
	}
}

func (m *MasterMind) MotherShipAI(obs *MotherShipObservation) MotherShipMove {
	m.reset(obs)

	maxMiners := min((4-obs.EnemyCount())*5, 15) + 2*obs.MapWidth()/100
	buildMiner := obs.DepositCount() != 0 && obs.FriendlyMinerCount() < maxMiners

	tooClose := false
	if m.hasEnemyNearBase {
		here := obs.Position()
		far := here.DistanceTo(grid.P(obs.MapWidth()-2, obs.MapHeight()-2))
		tooClose = here.DistanceTo(m.enemyNearBase) < far*enemyTooCloseFraction
	}

	if (!m.openFight || !tooClose) && buildMiner {
		return MotherShipMove{Type: MotherShipBuildMiner}
	}
	return MotherShipMove{Type: MotherShipBuildFighter}
}

func (m *MasterMind) FighterAI(obs *BotObservation) FighterMove {
	for _, t := range m.fightTargets {
		if obs.InShootingRange(t) && obs.IsEnemyAt(t) {
			return FighterAct(FighterShoot, t)
		}
	}

	fighter, hasFighter := obs.NearestEnemyFighter()
	if hasFighter && obs.InShootingRange(fighter) {
		return FighterAct(FighterShoot, fighter)
	}

	ship, hasShip := obs.NearestEnemyMotherShip()
	miner, hasMiner := obs.NearestEnemyMiner()
	switch {
	case hasShip && obs.InShootingRange(ship):
		return FighterAct(FighterShoot, ship)
	case hasMiner && obs.InShootingRange(miner):
		m.fightTargets = append(m.fightTargets, miner)
		return FighterAct(FighterShoot, miner)
	}

	if hasMiner && obs.BuildNumber()%minerHunterEvery == 0 {
		return FighterAct(FighterMoveTowards, miner)
	}
	if hasFighter && obs.CanPathFindTo(fighter) &&
		(!hasShip || obs.DistanceTo(fighter) < obs.DistanceTo(ship)) {
		return FighterAct(FighterMoveTowards, fighter)
	}
	if obs.HealthPercent() < 100 {
		return FighterIdle(FighterHeal)
	}
	if !hasShip {
		return FighterIdle(FighterDoNothing)
	}
	return FighterAct(FighterMoveTowards, ship)
}

func (m *MasterMind) MinerAI(obs *BotObservation) MinerMove {
	home := obs.FriendlyMotherShip()
	if !obs.CanPickUpMinerals() {
		if obs.IsNextTo(home) {
			return MinerAct(MinerUnloadMinerals, home)
		}
		return MinerAct(MinerMineTowards, home)
	}

	if p, ok := obs.NearestMineral(); ok && obs.IsNextTo(p) {
		return MinerAct(MinerPickUpMineral, p)
	}

	free := func(p grid.Pos) bool { return !m.mineTargets.Has(p) }
	mineral, hasMineral := obs.NearestMineralWhere(free)
	deposit, hasDeposit := obs.NearestDepositWhere(free)

	switch {
	case !hasMineral && !hasDeposit:
		if ship, ok := obs.NearestEnemyMotherShip(); ok {
			return MinerAct(MinerMineTowards, ship)
		}
		return MinerIdle(MinerDoNothing)
	case !hasMineral:
		return m.claim(deposit)
	case !hasDeposit:
		return m.claim(mineral)
	case obs.DistanceTo(mineral) < obs.DistanceTo(deposit):
		return m.claim(mineral)
	}
	return m.claim(deposit)
}

func (m *MasterMind) claim(p grid.Pos) MinerMove {
	m.mineTargets.Put(p)
	return MinerAct(MinerMineTowards, p)
}

// FightTargets returns the miners fighters have focused on this turn
func (m *MasterMind) FightTargets() []grid.Pos { return slices.Clone(m.fightTargets) }

// MineTargets returns how many resources miners have claimed this turn
func (m *MasterMind) MineTargets() int { return m.mineTargets.Size() }
