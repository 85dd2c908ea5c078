package game

import "github.com/1siamBot/hivebattle/engine/grid"

// Demo balances an early miner economy against fighters once it has one
// miner per five columns of map width
type Demo struct{}

func (Demo) MotherShipAI(obs *MotherShipObservation) MotherShipMove {
	canMiner := obs.StoredMinerals() >= obs.MinerBuildCost()
	canFighter := obs.StoredMinerals() >= obs.FighterBuildCost()

	if obs.FriendlyMinerCount() < obs.MapWidth()/5 {
		if canMiner {
			return MotherShipMove{Type: MotherShipBuildMiner}
		}
		return MotherShipMove{}
	}
	if canFighter {
		return MotherShipMove{Type: MotherShipBuildFighter}
	}
	return MotherShipMove{}
}

func (Demo) FighterAI(obs *BotObservation) FighterMove {
	if near := obs.KNearestEnemyFighters(1); len(near) > 0 && obs.InShootingRange(near[0]) {
		return FighterAct(FighterShoot, near[0])
	}
	ship, ok := obs.NearestEnemyMotherShip()
	if !ok {
		return FighterIdle(FighterDoNothing)
	}
	if obs.InShootingRange(ship) {
		return FighterAct(FighterShoot, ship)
	}
	if near := obs.KNearestEnemyMiners(1); len(near) > 0 && obs.InShootingRange(near[0]) {
		return FighterAct(FighterShoot, near[0])
	}
	return FighterAct(FighterMoveTowards, ship)
}

func (Demo) MinerAI(obs *BotObservation) MinerMove {
	minerals := obs.KNearestMinerals(1)
	deposits := obs.KNearestDeposits(1)
	var mineral, deposit grid.Pos
	if len(minerals) > 0 {
		mineral = minerals[0]
	}
	if len(deposits) > 0 {
		deposit = deposits[0]
	}
	return gatherMove(obs, mineral, len(minerals) > 0, deposit, len(deposits) > 0)
}
