package game

import (
	"cmp"
	"slices"

	"github.com/1siamBot/hivebattle/engine/bsp"
	"github.com/1siamBot/hivebattle/engine/grid"
	"github.com/1siamBot/hivebattle/engine/pathfind"
)

// Observation is the read-only view of the game an agent's policy decides on.
// Spatial questions are answered by the map's BSP indices.
type Observation struct {
	g      *Game
	acc    *pathfind.AccessibilityMap
	player *Player
	agent  *Agent
	turn   int
}

func newObservation(g *Game, acc *pathfind.AccessibilityMap, p *Player, a *Agent) Observation {
	return Observation{g: g, acc: acc, player: p, agent: a, turn: g.Turn}
}

func (o *Observation) PlayerID() int            { return o.player.ID }
func (o *Observation) Position() grid.Pos       { return o.agent.Pos }
func (o *Observation) Health() int              { return o.agent.Health }
func (o *Observation) HealthPercent() int       { return o.agent.HealthPercent() }
func (o *Observation) Turn() int                { return o.turn }
func (o *Observation) MapWidth() int            { return o.g.Map.Width() }
func (o *Observation) MapHeight() int           { return o.g.Map.Height() }
func (o *Observation) IsNextTo(p grid.Pos) bool { return o.agent.Pos.IsNextToOrEqual(p) }

func (o *Observation) DistanceTo(p grid.Pos) float64 { return o.agent.Pos.DistanceTo(p) }

// InShootingRange reports whether p is within shooting range of the agent
func (o *Observation) InShootingRange(p grid.Pos) bool {
	return o.agent.Pos.InRange(p, o.g.Rules.ShootingRange)
}

// CellTypeAt returns the topmost occupant at p
func (o *Observation) CellTypeAt(p grid.Pos) grid.CellType { return o.g.Map.CellTypeAt(p) }

func (o *Observation) IsCellType(p grid.Pos, kind grid.CellType) bool {
	return o.g.Map.IsCellType(p, kind)
}

func (o *Observation) IsEmpty(p grid.Pos) bool    { return o.g.Map.IsEmpty(p) }
func (o *Observation) IsMineable(p grid.Pos) bool { return o.g.Map.IsMineable(p.X, p.Y) }

func (o *Observation) IsBlocked(p grid.Pos, canMine bool) bool {
	return o.g.Map.IsBlocked(p.X, p.Y, canMine)
}

// CanPathFindTo reports whether p or one of its neighbours is reachable from
// the player's mothership with this agent's movement class
func (o *Observation) CanPathFindTo(p grid.Pos) bool { return o.acc.CanPathFindTo(p) }

// EnemyCount is the number of opponents still in the game
func (o *Observation) EnemyCount() int { return len(o.g.Enemies(o.player.ID)) }

func (o *Observation) FriendlyFighterCount() int { return o.g.Map.FighterIndex(o.player.ID).Len() }
func (o *Observation) FriendlyMinerCount() int   { return o.g.Map.MinerIndex(o.player.ID).Len() }

func (o *Observation) EnemyFighterCount() int {
	n := 0
	for _, t := range o.enemyFighterTrees() {
		n += t.Len()
	}
	return n
}

func (o *Observation) EnemyMinerCount() int {
	n := 0
	for _, t := range o.enemyMinerTrees() {
		n += t.Len()
	}
	return n
}

func (o *Observation) FriendlyFighterPositions() []grid.Pos {
	return o.g.Map.FighterIndex(o.player.ID).Positions()
}

func (o *Observation) FriendlyMinerPositions() []grid.Pos {
	return o.g.Map.MinerIndex(o.player.ID).Positions()
}

func (o *Observation) EnemyFighterPositions() []grid.Pos { return positions(o.enemyFighterTrees()) }
func (o *Observation) EnemyMinerPositions() []grid.Pos   { return positions(o.enemyMinerTrees()) }

// NearestFriendlyFighter returns the closest own fighter other than the agent
func (o *Observation) NearestFriendlyFighter() (grid.Pos, bool) {
	return o.g.Map.FighterIndex(o.player.ID).Nearest(o.agent.Pos, o.notSelf)
}

// NearestFriendlyMiner returns the closest own miner other than the agent
func (o *Observation) NearestFriendlyMiner() (grid.Pos, bool) {
	return o.g.Map.MinerIndex(o.player.ID).Nearest(o.agent.Pos, o.notSelf)
}

func (o *Observation) NearestEnemyFighter() (grid.Pos, bool) {
	return nearestAcross(o.enemyFighterTrees(), o.agent.Pos)
}

func (o *Observation) NearestEnemyMiner() (grid.Pos, bool) {
	return nearestAcross(o.enemyMinerTrees(), o.agent.Pos)
}

// KNearestEnemyFighters returns up to k enemy fighters, closest first
func (o *Observation) KNearestEnemyFighters(k int) []grid.Pos {
	return kNearestAcross(o.enemyFighterTrees(), o.agent.Pos, k)
}

// KNearestEnemyMiners returns up to k enemy miners, closest first
func (o *Observation) KNearestEnemyMiners(k int) []grid.Pos {
	return kNearestAcross(o.enemyMinerTrees(), o.agent.Pos, k)
}

func (o *Observation) EnemyFightersInShootingRange() []grid.Pos {
	return o.inRange(o.enemyFighterTrees())
}

func (o *Observation) EnemyMinersInShootingRange() []grid.Pos {
	return o.inRange(o.enemyMinerTrees())
}

func (o *Observation) FriendlyMotherShip() grid.Pos { return o.player.MotherShip.Pos }

func (o *Observation) EnemyMotherShips() []grid.Pos {
	var out []grid.Pos
	for _, e := range o.g.Enemies(o.player.ID) {
		out = append(out, e.MotherShip.Pos)
	}
	return out
}

func (o *Observation) NearestEnemyMotherShip() (grid.Pos, bool) {
	return o.NearestOf(o.EnemyMotherShips())
}

// NearestOf returns the candidate closest to the agent, the first one on ties
func (o *Observation) NearestOf(candidates []grid.Pos) (grid.Pos, bool) {
	best, found := grid.Pos{}, false
	bestDist := 0
	for _, p := range candidates {
		d := o.agent.Pos.DistanceToSquared(p)
		if !found || d < bestDist {
			best, bestDist, found = p, d, true
		}
	}
	return best, found
}

func (o *Observation) MineralPositions() []grid.Pos { return o.g.Map.MineralPositions() }
func (o *Observation) DepositPositions() []grid.Pos { return o.g.Map.DepositPositions() }
func (o *Observation) MineralCount() int            { return o.g.Map.Minerals().Len() }
func (o *Observation) DepositCount() int            { return o.g.Map.Deposits().Len() }

func (o *Observation) NearestMineral() (grid.Pos, bool) {
	return o.g.Map.Minerals().Nearest(o.agent.Pos, nil)
}

func (o *Observation) NearestDeposit() (grid.Pos, bool) {
	return o.g.Map.Deposits().Nearest(o.agent.Pos, nil)
}

// NearestMineralWhere returns the closest mineral whose position passes keep
func (o *Observation) NearestMineralWhere(keep func(grid.Pos) bool) (grid.Pos, bool) {
	return o.g.Map.Minerals().Nearest(o.agent.Pos, byPos(keep))
}

// NearestDepositWhere returns the closest deposit whose position passes keep
func (o *Observation) NearestDepositWhere(keep func(grid.Pos) bool) (grid.Pos, bool) {
	return o.g.Map.Deposits().Nearest(o.agent.Pos, byPos(keep))
}

func (o *Observation) KNearestMinerals(k int) []grid.Pos {
	return o.g.Map.Minerals().KNearest(o.agent.Pos, k, nil)
}

func (o *Observation) KNearestDeposits(k int) []grid.Pos {
	return o.g.Map.Deposits().KNearest(o.agent.Pos, k, nil)
}

func (o *Observation) notSelf(oc *bsp.Occupant) bool { return oc.Owner != o.agent.ID }

func (o *Observation) enemyFighterTrees() []*bsp.Tree {
	var out []*bsp.Tree
	for _, e := range o.g.Enemies(o.player.ID) {
		out = append(out, o.g.Map.FighterIndex(e.ID))
	}
	return out
}

func (o *Observation) enemyMinerTrees() []*bsp.Tree {
	var out []*bsp.Tree
	for _, e := range o.g.Enemies(o.player.ID) {
		out = append(out, o.g.Map.MinerIndex(e.ID))
	}
	return out
}

func (o *Observation) inRange(trees []*bsp.Tree) []grid.Pos {
	var out []grid.Pos
	for _, t := range trees {
		out = append(out, t.InRange(o.agent.Pos, o.g.Rules.ShootingRange, nil)...)
	}
	return out
}

func byPos(keep func(grid.Pos) bool) bsp.Predicate {
	if keep == nil {
		return nil
	}
	return func(oc *bsp.Occupant) bool { return keep(oc.Pos) }
}

func positions(trees []*bsp.Tree) []grid.Pos {
	var out []grid.Pos
	for _, t := range trees {
		out = append(out, t.Positions()...)
	}
	return out
}

func nearestAcross(trees []*bsp.Tree, from grid.Pos) (grid.Pos, bool) {
	best, found := grid.Pos{}, false
	for _, t := range trees {
		p, ok := t.Nearest(from, nil)
		if ok && (!found || from.DistanceToSquared(p) < from.DistanceToSquared(best)) {
			best, found = p, true
		}
	}
	return best, found
}

// kNearestAcross merges the per-team k-nearest lists, keeping team order on ties
func kNearestAcross(trees []*bsp.Tree, from grid.Pos, k int) []grid.Pos {
	var all []grid.Pos
	for _, t := range trees {
		all = append(all, t.KNearest(from, k, nil)...)
	}
	slices.SortStableFunc(all, func(a, b grid.Pos) int {
		return cmp.Compare(from.DistanceToSquared(a), from.DistanceToSquared(b))
	})
	if len(all) > k {
		all = all[:k]
	}
	return all
}

// BotObservation adds the state of the deciding bot
type BotObservation struct {
	Observation
	bot *Bot
}

func newBotObservation(g *Game, acc *pathfind.AccessibilityMap, p *Player, b *Bot) *BotObservation {
	return &BotObservation{Observation: newObservation(g, acc, p, &b.Agent), bot: b}
}

func (o *BotObservation) BuildNumber() int        { return o.bot.BuildNumber }
func (o *BotObservation) CanPickUpMinerals() bool { return o.bot.CanPickUpMinerals() }
func (o *BotObservation) CarriedMinerals() int    { return o.bot.PickedUpMinerals }

// MotherShipObservation adds the player's economy
type MotherShipObservation struct {
	Observation
}

func newMotherShipObservation(g *Game, acc *pathfind.AccessibilityMap, p *Player) *MotherShipObservation {
	return &MotherShipObservation{newObservation(g, acc, p, &p.MotherShip.Agent)}
}

func (o *MotherShipObservation) StoredMinerals() int   { return o.player.StoredMinerals }
func (o *MotherShipObservation) FighterBuildCost() int { return o.player.FighterBuildCost() }
func (o *MotherShipObservation) MinerBuildCost() int   { return o.player.MinerBuildCost() }

// IsEnemyAt reports whether p holds a live agent of another player
func (o *Observation) IsEnemyAt(p grid.Pos) bool {
	a := o.g.AgentAt(p)
	return a != nil && a.PlayerID != o.player.ID
}
