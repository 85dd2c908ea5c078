package game

import "github.com/1siamBot/hivebattle/engine/grid"

// MinersOnly builds nothing but miners and sends them to the closest resource
type MinersOnly struct{}

const minersOnlyCap = 100

func (MinersOnly) MotherShipAI(obs *MotherShipObservation) MotherShipMove {
	if obs.FriendlyMinerCount() <= minersOnlyCap && obs.MinerBuildCost() <= obs.StoredMinerals() {
		return MotherShipMove{Type: MotherShipBuildMiner}
	}
	return MotherShipMove{}
}

func (MinersOnly) FighterAI(obs *BotObservation) FighterMove {
	if p, ok := obs.NearestEnemyFighter(); ok && obs.InShootingRange(p) {
		return FighterAct(FighterShoot, p)
	}
	ship, ok := obs.NearestEnemyMotherShip()
	if !ok {
		return FighterIdle(FighterDoNothing)
	}
	if obs.InShootingRange(ship) {
		return FighterAct(FighterShoot, ship)
	}
	if p, ok := obs.NearestEnemyMiner(); ok && obs.InShootingRange(p) {
		return FighterAct(FighterShoot, p)
	}
	return FighterAct(FighterMoveTowards, ship)
}

func (MinersOnly) MinerAI(obs *BotObservation) MinerMove {
	mineral, hasMineral := obs.NearestMineral()
	deposit, hasDeposit := obs.NearestDeposit()
	return gatherMove(obs, mineral, hasMineral, deposit, hasDeposit)
}

// gatherMove is the shared miner routine: unload when full, pick up what is
// adjacent, otherwise mine towards whichever resource is closer
func gatherMove(obs *BotObservation, mineral grid.Pos, hasMineral bool, deposit grid.Pos, hasDeposit bool) MinerMove {
	ship := obs.FriendlyMotherShip()
	if !obs.CanPickUpMinerals() {
		if obs.IsNextTo(ship) {
			return MinerAct(MinerUnloadMinerals, ship)
		}
		return MinerAct(MinerMineTowards, ship)
	}
	switch {
	case !hasMineral && !hasDeposit:
		return MinerIdle(MinerDoNothing)
	case !hasMineral:
		return MinerAct(MinerMineTowards, deposit)
	case obs.IsNextTo(mineral):
		return MinerAct(MinerPickUpMineral, mineral)
	case !hasDeposit:
		return MinerAct(MinerMineTowards, mineral)
	case obs.DistanceTo(mineral) < obs.DistanceTo(deposit):
		return MinerAct(MinerMineTowards, mineral)
	}
	return MinerAct(MinerMineTowards, deposit)
}
