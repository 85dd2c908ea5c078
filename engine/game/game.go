package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/1siamBot/hivebattle/engine/bsp"
	"github.com/1siamBot/hivebattle/engine/core"
	"github.com/1siamBot/hivebattle/engine/grid"
	"github.com/1siamBot/hivebattle/engine/maplib"
)

// Rules holds the tunable game constants
type Rules struct {
	DamageAmount        int
	ShootingRange       float64
	HitChance           float64
	HealAmount          int
	BotMaxHealth        int
	MotherShipMaxHealth int
	MaxPickedUpMinerals int
	StartMinerals       int

	// SuppressErrors logs a failing agent action and carries on with the turn
	SuppressErrors bool
}

func DefaultRules() Rules {
	return Rules{
		DamageAmount:        DamageAmount,
		ShootingRange:       ShootingRange,
		HitChance:           HitChance,
		HealAmount:          HealAmount,
		BotMaxHealth:        BotMaxHealth,
		MotherShipMaxHealth: MotherShipMaxHealth,
		MaxPickedUpMinerals: MaxPickedUpMinerals,
		StartMinerals:       1,
	}
}

// PlayerSpec describes one participant
type PlayerSpec struct {
	Name     string
	HiveMind string
	Start    grid.Pos
}

// Setup is everything needed to start a game
type Setup struct {
	Layout  *maplib.Layout
	Players []PlayerSpec
	Rules   Rules
	Seed    int64
	Logger  *slog.Logger
	Bus     *core.EventBus
}

// Game drives the turn loop over all players
type Game struct {
	Map     *maplib.Map
	Players []*Player
	Rules   Rules
	Bus     *core.EventBus
	Turn    int

	rng    *rand.Rand
	agents map[core.EntityID]*Agent
	log    *slog.Logger
	over   bool
	winner *Player
}

// New builds the map, places every mothership and creates the players
func New(s Setup) (*Game, error) {
	if s.Layout == nil {
		return nil, errors.New("game: no layout")
	}
	if len(s.Players) < 2 {
		return nil, fmt.Errorf("game: need at least 2 players, got %d", len(s.Players))
	}
	m, err := maplib.FromLayout(s.Layout)
	if err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}
	g := &Game{
		Map:    m,
		Rules:  s.Rules,
		Bus:    s.Bus,
		Turn:   1,
		rng:    rand.New(rand.NewSource(s.Seed)),
		agents: make(map[core.EntityID]*Agent),
		log:    s.Logger,
	}
	if g.Bus == nil {
		g.Bus = core.NewEventBus()
	}
	if g.log == nil {
		g.log = slog.Default()
	}

	for i, ps := range s.Players {
		hm, err := NewHiveMind(ps.HiveMind)
		if err != nil {
			return nil, fmt.Errorf("game: player %d: %w", i, err)
		}
		ship := NewMotherShip(i, ps.Start, s.Rules.MotherShipMaxHealth)
		if _, err := m.CreateCell(ps.Start, grid.MotherShip, i, ship.ID); err != nil {
			return nil, fmt.Errorf("game: mothership of player %d: %w", i, err)
		}
		name := ps.Name
		if name == "" {
			name = fmt.Sprintf("player-%d", i)
		}
		p := &Player{
			ID:             i,
			Name:           name,
			HiveMindName:   ps.HiveMind,
			HiveMind:       hm,
			MotherShip:     ship,
			StoredMinerals: s.Rules.StartMinerals,
			log:            g.log.With("player", i, "name", name),
		}
		g.Players = append(g.Players, p)
		g.agents[ship.ID] = &ship.Agent
	}
	return g, nil
}

// Step plays one round: every player takes a turn in order
func (g *Game) Step() error {
	if g.over {
		return nil
	}
	if g.checkOver() {
		return nil
	}
	g.emit(core.EvtTurnStart, core.Action{})
	for _, p := range g.Players {
		if err := p.TakeTurn(g); err != nil {
			return fmt.Errorf("turn %d: %w", g.Turn, err)
		}
		if g.over {
			break
		}
	}
	g.emit(core.EvtTurnEnd, core.Action{})
	g.Bus.Dispatch()
	g.Turn++
	g.checkOver()
	return nil
}

// Run steps until the game ends, maxTurns is reached (0 means no limit) or ctx is done
func (g *Game) Run(ctx context.Context, maxTurns int) error {
	for !g.over && (maxTurns <= 0 || g.Turn <= maxTurns) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := g.Step(); err != nil {
			return err
		}
	}
	return nil
}

func (g *Game) checkOver() bool {
	if g.over {
		return true
	}
	var alive []*Player
	for _, p := range g.Players {
		if !p.lost {
			alive = append(alive, p)
		}
	}
	if len(alive) > 1 {
		return false
	}
	g.over = true
	if len(alive) == 1 {
		g.winner = alive[0]
		g.log.Info("game over", "turn", g.Turn, "winner", g.winner.Name)
	} else {
		g.log.Info("game over without a winner", "turn", g.Turn)
	}
	g.emit(core.EvtGameEnd, core.Action{Player: g.winnerID()})
	g.Bus.Dispatch()
	return true
}

func (g *Game) winnerID() int {
	if g.winner == nil {
		return bsp.NoTeam
	}
	return g.winner.ID
}

func (g *Game) Over() bool { return g.over }

// Winner returns the last player standing, if any
func (g *Game) Winner() (*Player, bool) { return g.winner, g.winner != nil }

// Player returns the player with the given id, or nil
func (g *Game) Player(id int) *Player {
	if id < 0 || id >= len(g.Players) {
		return nil
	}
	return g.Players[id]
}

// Enemies lists the players other than id that are still in the game
func (g *Game) Enemies(id int) []*Player {
	var out []*Player
	for _, p := range g.Players {
		if p.ID != id && !p.lost {
			out = append(out, p)
		}
	}
	return out
}

// AgentAt returns the agent a shot at p would hit: mothership, then fighter, then miner
func (g *Game) AgentAt(p grid.Pos) *Agent {
	for _, o := range []*bsp.Occupant{g.Map.GroundOccupant(p), g.Map.FighterAt(p), g.Map.MinerAt(p)} {
		if o == nil || o.Owner == core.NoEntity {
			continue
		}
		if a, ok := g.agents[o.Owner]; ok && !a.destroyed {
			return a
		}
	}
	return nil
}

// damage hurts the agent at target and removes it from the map when destroyed
func (g *Game) damage(shooter *Bot, target grid.Pos) error {
	a := g.AgentAt(target)
	if a == nil {
		return fmt.Errorf("shot at %v: no agent", target)
	}
	killed := a.Damage(g.Rules.DamageAmount)
	g.emit(core.EvtDamaged, core.Action{Player: a.PlayerID, Agent: a.ID, Kind: a.Kind, From: shooter.Pos, To: a.Pos, Amount: g.Rules.DamageAmount})
	if !killed {
		return nil
	}
	if a.Kind == grid.MotherShip {
		g.eliminate(g.Player(a.PlayerID))
		return nil
	}
	return g.removeBot(a)
}

func (g *Game) removeBot(a *Agent) error {
	delete(g.agents, a.ID)
	g.emit(core.EvtBotDestroyed, core.Action{Player: a.PlayerID, Agent: a.ID, Kind: a.Kind, From: a.Pos, To: a.Pos})
	return g.Map.DestroyBot(a.Pos, a.Kind)
}

// eliminate removes everything a player owns once their mothership falls
func (g *Game) eliminate(p *Player) {
	if p == nil || p.lost {
		return
	}
	p.lost = true
	for _, b := range append(p.fighters, p.miners...) {
		if b.destroyed {
			continue
		}
		b.destroyed = true
		if err := g.removeBot(&b.Agent); err != nil {
			g.log.Error("remove bot of eliminated player", "player", p.ID, "pos", b.Pos, "err", err)
		}
	}
	p.fighters, p.miners = nil, nil
	ship := p.MotherShip
	ship.destroyed = true
	delete(g.agents, ship.ID)
	if err := g.Map.DestroyCell(ship.Pos); err != nil {
		g.log.Error("remove mothership", "player", p.ID, "err", err)
	}
	g.emit(core.EvtMotherShipDestroyed, core.Action{Player: p.ID, Agent: ship.ID, Kind: grid.MotherShip, From: ship.Pos, To: ship.Pos})
	g.emit(core.EvtPlayerLost, core.Action{Player: p.ID})
	g.log.Info("player lost", "turn", g.Turn, "player", p.ID, "name", p.Name)
	g.checkOver()
}

func (g *Game) register(b *Bot) { g.agents[b.ID] = &b.Agent }

func (g *Game) emit(t core.EventType, a core.Action) {
	g.Bus.Emit(core.Event{Type: t, Turn: uint64(g.Turn), Payload: a})
}

// Result summarises the match
type Result struct {
	Turns    int
	Winner   string
	WinnerID int
	Players  []PlayerResult
}

type PlayerResult struct {
	ID            int
	Name          string
	HiveMind      string
	Minerals      int
	Miners        int
	Fighters      int
	BuiltMiners   int
	BuiltFighters int
	Lost          bool
}

func (g *Game) Result() Result {
	r := Result{Turns: g.Turn - 1, WinnerID: g.winnerID()}
	if g.winner != nil {
		r.Winner = g.winner.Name
	}
	for _, p := range g.Players {
		r.Players = append(r.Players, PlayerResult{
			ID:            p.ID,
			Name:          p.Name,
			HiveMind:      p.HiveMindName,
			Minerals:      p.StoredMinerals,
			Miners:        len(p.Miners()),
			Fighters:      len(p.Fighters()),
			BuiltMiners:   p.builtMiners,
			BuiltFighters: p.builtFighters,
			Lost:          p.lost,
		})
	}
	return r
}
