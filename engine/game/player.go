package game

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/1siamBot/hivebattle/engine/core"
	"github.com/1siamBot/hivebattle/engine/grid"
	"github.com/1siamBot/hivebattle/engine/pathfind"
)

var (
	ErrMissingTarget = errors.New("move needs a target")
	ErrInvalidShot   = errors.New("target is not shootable from here")
	ErrInvalidPickUp = errors.New("cannot pick up mineral")
	ErrUnknownMove   = errors.New("unknown move type")
)

// Player owns a mothership and the bots it has built
type Player struct {
	ID             int
	Name           string
	HiveMindName   string
	HiveMind       HiveMind
	MotherShip     *MotherShip
	StoredMinerals int

	fighters      []*Bot
	miners        []*Bot
	builtFighters int
	builtMiners   int
	lost          bool
	log           *slog.Logger
}

func (p *Player) HasLost() bool { return p.lost }

// Fighters returns the live fighter bots
func (p *Player) Fighters() []*Bot {
	p.fighters = prune(p.fighters)
	return p.fighters
}

// Miners returns the live miner bots
func (p *Player) Miners() []*Bot {
	p.miners = prune(p.miners)
	return p.miners
}

// FighterBuildCost grows quadratically with the number of fighters
func (p *Player) FighterBuildCost() int {
	n := float64(len(p.fighters))
	return int(math.Round((n+2)*n*0.2)) + 1
}

// MinerBuildCost grows quadratically with the number of miners
func (p *Player) MinerBuildCost() int {
	n := float64(len(p.miners))
	return int(math.Round(n*n*0.2)) + 1
}

// TakeTurn lets the hive mind decide for every fighter, every miner and then
// the mothership. Reachability is computed once per turn from the mothership.
func (p *Player) TakeTurn(g *Game) error {
	if p.lost {
		return nil
	}
	origin := p.MotherShip.Pos
	minerAcc := pathfind.NewAccessibilityMap(g.Map, origin, grid.ClassMiner, false)
	fighterAcc := pathfind.NewAccessibilityMap(g.Map, origin, grid.ClassFighter, false)

	if err := p.updateFighters(g, fighterAcc); err != nil {
		return err
	}
	if err := p.updateMiners(g, minerAcc); err != nil {
		return err
	}
	return p.updateMotherShip(g, fighterAcc)
}

// handle applies the error policy to a failed agent action
func (p *Player) handle(g *Game, b *Agent, move fmt.Stringer, err error) error {
	if err == nil {
		return nil
	}
	if g.Rules.SuppressErrors {
		p.log.Warn("agent action failed", "turn", g.Turn, "agent", b.ID, "kind", b.Kind, "pos", b.Pos, "move", move, "err", err)
		return nil
	}
	return fmt.Errorf("player %d %v at %v (%v): %w", p.ID, b.Kind, b.Pos, move, err)
}

func prune(bots []*Bot) []*Bot {
	out := bots[:0]
	for _, b := range bots {
		if !b.destroyed {
			out = append(out, b)
		}
	}
	clear(bots[len(out):])
	return out
}

func (p *Player) updateFighters(g *Game, acc *pathfind.AccessibilityMap) error {
	p.fighters = prune(p.fighters)
	for _, b := range append([]*Bot(nil), p.fighters...) {
		if p.lost || g.over {
			return nil
		}
		if b.destroyed {
			continue
		}
		move := p.HiveMind.FighterAI(newBotObservation(g, acc, p, b))
		if err := p.handle(g, &b.Agent, move.Type, p.applyFighter(g, acc, b, move)); err != nil {
			return err
		}
	}
	p.fighters = prune(p.fighters)
	return nil
}

func (p *Player) applyFighter(g *Game, acc *pathfind.AccessibilityMap, b *Bot, move FighterMove) error {
	if move.needsTarget() && !move.HasTarget {
		return ErrMissingTarget
	}
	m := g.Map
	switch move.Type {
	case FighterDoNothing:
		return nil
	case FighterStep:
		if !m.IsWalkable(move.Target.X, move.Target.Y) || m.IsFighterBot(move.Target.X, move.Target.Y) {
			return nil
		}
		return g.moveBot(b, move.Target)
	case FighterMoveTowards:
		target, err := acc.FindClosestReachablePos(b.Pos, move.Target)
		if err != nil {
			return err
		}
		next, err := pathfind.FindNextStep(m, b.Pos, target, grid.ClassFighter, false)
		if err != nil {
			return err
		}
		if next == b.Pos || !m.IsWalkable(next.X, next.Y) || m.IsFighterBot(next.X, next.Y) {
			return nil
		}
		return g.moveBot(b, next)
	case FighterShoot:
		if !m.IsShootable(move.Target) || !b.Pos.InRange(move.Target, g.Rules.ShootingRange) {
			return fmt.Errorf("shoot %v (%v): %w", move.Target, m.CellTypeAt(move.Target), ErrInvalidShot)
		}
		hit := g.rng.Float64() < g.Rules.HitChance
		amount := 0
		if hit {
			amount = g.Rules.DamageAmount
		}
		g.emit(core.EvtShot, core.Action{Player: p.ID, Agent: b.ID, Kind: b.Kind, From: b.Pos, To: move.Target, Amount: amount})
		if !hit {
			return nil
		}
		return g.damage(b, move.Target)
	case FighterHeal:
		b.Heal()
		g.emit(core.EvtHealed, core.Action{Player: p.ID, Agent: b.ID, Kind: b.Kind, From: b.Pos, To: b.Pos, Amount: b.Health})
		return nil
	}
	return fmt.Errorf("%w: %d", ErrUnknownMove, move.Type)
}

func (p *Player) updateMiners(g *Game, acc *pathfind.AccessibilityMap) error {
	p.miners = prune(p.miners)
	for _, b := range append([]*Bot(nil), p.miners...) {
		if p.lost || g.over {
			return nil
		}
		if b.destroyed {
			continue
		}
		move := p.HiveMind.MinerAI(newBotObservation(g, acc, p, b))
		if err := p.handle(g, &b.Agent, move.Type, p.applyMiner(g, acc, b, move)); err != nil {
			return err
		}
	}
	p.miners = prune(p.miners)
	return nil
}

func (p *Player) applyMiner(g *Game, acc *pathfind.AccessibilityMap, b *Bot, move MinerMove) error {
	if move.needsTarget() && !move.HasTarget {
		return ErrMissingTarget
	}
	m := g.Map
	t := move.Target
	switch move.Type {
	case MinerDoNothing:
		return nil
	case MinerStep:
		if !m.IsWalkable(t.X, t.Y) || m.IsMinerBot(t.X, t.Y) {
			return nil
		}
		return g.moveBot(b, t)
	case MinerMoveTowards, MinerMineTowards:
		canMine := move.Type == MinerMineTowards
		if m.IsSurrounded(t, canMine) {
			var err error
			if t, err = acc.FindClosestReachablePos(b.Pos, t); err != nil {
				return err
			}
		}
		next, err := pathfind.FindNextStep(m, b.Pos, t, grid.ClassMiner, canMine)
		if err != nil {
			return err
		}
		if next == b.Pos {
			return nil
		}
		if m.IsMineable(next.X, next.Y) {
			return g.mine(b, next)
		}
		if !m.IsWalkable(next.X, next.Y) || m.IsMinerBot(next.X, next.Y) {
			return nil
		}
		return g.moveBot(b, next)
	case MinerMine:
		if m.IsMineable(t.X, t.Y) && b.Pos.IsNextToOrEqual(t) {
			return g.mine(b, t)
		}
		return nil
	case MinerPickUpMineral:
		if !m.IsMineral(t) || !b.CanPickUpMinerals() || !b.Pos.IsNextToOrEqual(t) {
			return fmt.Errorf("%w at %v (%v, carrying %d)", ErrInvalidPickUp, t, m.GroundAt(t), b.PickedUpMinerals)
		}
		if err := b.AddMineral(); err != nil {
			return err
		}
		g.emit(core.EvtMineralPickedUp, core.Action{Player: p.ID, Agent: b.ID, Kind: b.Kind, From: b.Pos, To: t, Amount: b.PickedUpMinerals})
		return m.ClearMineral(t)
	case MinerUnloadMinerals:
		if b.Pos.IsNextToOrEqual(t) && t == p.MotherShip.Pos {
			n := b.RemovePickedUpMinerals()
			p.StoredMinerals += n
			g.emit(core.EvtMineralsUnloaded, core.Action{Player: p.ID, Agent: b.ID, Kind: b.Kind, From: b.Pos, To: t, Amount: n})
		}
		return nil
	case MinerHeal:
		b.Heal()
		g.emit(core.EvtHealed, core.Action{Player: p.ID, Agent: b.ID, Kind: b.Kind, From: b.Pos, To: b.Pos, Amount: b.Health})
		return nil
	}
	return fmt.Errorf("%w: %d", ErrUnknownMove, move.Type)
}

func (p *Player) updateMotherShip(g *Game, acc *pathfind.AccessibilityMap) error {
	if p.lost || g.over {
		return nil
	}
	move := p.HiveMind.MotherShipAI(newMotherShipObservation(g, acc, p))
	var err error
	switch move.Type {
	case MotherShipDoNothing:
	case MotherShipBuildFighter:
		err = p.buildBot(g, grid.FighterBot)
	case MotherShipBuildMiner:
		err = p.buildBot(g, grid.MinerBot)
	default:
		err = fmt.Errorf("%w: %d", ErrUnknownMove, move.Type)
	}
	return p.handle(g, &p.MotherShip.Agent, move.Type, err)
}

// buildBot places a new bot next to the mothership if it can be paid for
// and there is room. Not affording it is not an error.
func (p *Player) buildBot(g *Game, kind grid.CellType) error {
	cost := p.MinerBuildCost()
	number := p.builtMiners
	if kind == grid.FighterBot {
		cost = p.FighterBuildCost()
		number = p.builtFighters
	}
	if cost > p.StoredMinerals {
		return nil
	}
	pos, ok := g.Map.FirstEmptyNeighbor(p.MotherShip.Pos)
	if !ok {
		return nil
	}

	b := NewBot(p.ID, number, kind, pos, g.Rules)
	if _, err := g.Map.CreateCell(pos, kind, p.ID, b.ID); err != nil {
		return err
	}
	p.StoredMinerals -= cost
	if kind == grid.FighterBot {
		p.fighters = append(p.fighters, b)
		p.builtFighters++
	} else {
		p.miners = append(p.miners, b)
		p.builtMiners++
	}
	g.register(b)
	g.emit(core.EvtBotBuilt, core.Action{Player: p.ID, Agent: b.ID, Kind: kind, From: p.MotherShip.Pos, To: pos, Amount: cost})
	return nil
}

func (g *Game) moveBot(b *Bot, to grid.Pos) error {
	if _, err := g.Map.MoveBot(b.Pos, to, b.Kind); err != nil {
		return err
	}
	g.emit(core.EvtBotMoved, core.Action{Player: b.PlayerID, Agent: b.ID, Kind: b.Kind, From: b.Pos, To: to})
	b.Pos = to
	return nil
}

func (g *Game) mine(b *Bot, at grid.Pos) error {
	kind := g.Map.GroundAt(at)
	if err := g.Map.Mine(at); err != nil {
		return err
	}
	g.emit(core.EvtMined, core.Action{Player: b.PlayerID, Agent: b.ID, Kind: kind, From: b.Pos, To: at})
	return nil
}
