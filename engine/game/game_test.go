package game

import (
	"context"
	"log/slog"
	"testing"

	"github.com/1siamBot/hivebattle/engine/bsp"
	"github.com/1siamBot/hivebattle/engine/core"
	"github.com/1siamBot/hivebattle/engine/grid"
	"github.com/1siamBot/hivebattle/engine/maplib"
	"github.com/1siamBot/hivebattle/engine/pathfind"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scripted struct {
	ship    func(*MotherShipObservation) MotherShipMove
	fighter func(*BotObservation) FighterMove
	miner   func(*BotObservation) MinerMove
}

func (s *scripted) MotherShipAI(obs *MotherShipObservation) MotherShipMove {
	if s.ship == nil {
		return MotherShipMove{}
	}
	return s.ship(obs)
}

func (s *scripted) FighterAI(obs *BotObservation) FighterMove {
	if s.fighter == nil {
		return FighterIdle(FighterDoNothing)
	}
	return s.fighter(obs)
}

func (s *scripted) MinerAI(obs *BotObservation) MinerMove {
	if s.miner == nil {
		return MinerIdle(MinerDoNothing)
	}
	return s.miner(obs)
}

var testStarts = []grid.Pos{grid.P(5, 5), grid.P(14, 14)}

func newTestGame(t *testing.T, rules Rules) *Game {
	t.Helper()
	l := maplib.Generate("test", 20, 20, maplib.Open, testStarts)
	g, err := New(Setup{
		Layout: l,
		Players: []PlayerSpec{
			{Name: "alpha", HiveMind: "empty", Start: testStarts[0]},
			{Name: "beta", HiveMind: "empty", Start: testStarts[1]},
		},
		Rules:  rules,
		Seed:   1,
		Logger: slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)
	return g
}

func spawn(t *testing.T, g *Game, player int, kind grid.CellType, at grid.Pos) *Bot {
	t.Helper()
	p := g.Players[player]
	b := NewBot(player, 0, kind, at, g.Rules)
	_, err := g.Map.CreateCell(at, kind, player, b.ID)
	require.NoError(t, err)
	if kind == grid.FighterBot {
		p.fighters = append(p.fighters, b)
	} else {
		p.miners = append(p.miners, b)
	}
	g.register(b)
	return b
}

func sureHits() Rules {
	r := DefaultRules()
	r.HitChance = 1
	return r
}

func TestNewRejectsBadSetup(t *testing.T) {
	l := maplib.Generate("test", 20, 20, maplib.Open, testStarts)
	two := []PlayerSpec{{HiveMind: "empty", Start: testStarts[0]}, {HiveMind: "empty", Start: testStarts[1]}}

	_, err := New(Setup{Players: two, Rules: DefaultRules()})
	assert.Error(t, err)

	_, err = New(Setup{Layout: l, Players: two[:1], Rules: DefaultRules()})
	assert.Error(t, err)

	_, err = New(Setup{Layout: l, Players: []PlayerSpec{two[0], {HiveMind: "nope", Start: testStarts[1]}}, Rules: DefaultRules()})
	assert.ErrorContains(t, err, "nope")

	_, err = New(Setup{Layout: l, Players: []PlayerSpec{two[0], {HiveMind: "empty", Start: testStarts[0]}}, Rules: DefaultRules()})
	assert.ErrorIs(t, err, maplib.ErrCellOccupied)
}

func TestNewPlacesMotherShips(t *testing.T) {
	g := newTestGame(t, DefaultRules())
	require.Len(t, g.Players, 2)
	for i, p := range g.Players {
		assert.Equal(t, testStarts[i], p.MotherShip.Pos)
		assert.True(t, g.Map.IsMotherShip(testStarts[i]))
		assert.Equal(t, 1, p.StoredMinerals)
		assert.Equal(t, &p.MotherShip.Agent, g.AgentAt(testStarts[i]))
	}
	assert.Equal(t, "alpha", g.Players[0].Name)
	assert.Len(t, g.Enemies(0), 1)
	assert.Nil(t, g.Player(5))
}

func TestBuildCosts(t *testing.T) {
	p := &Player{}
	miners := []int{1, 1, 2, 3, 4, 6}
	fighters := []int{1, 2, 3, 4, 6, 8}
	for n := range miners {
		p.miners = make([]*Bot, n)
		p.fighters = make([]*Bot, n)
		assert.Equal(t, miners[n], p.MinerBuildCost(), "miners=%d", n)
		assert.Equal(t, fighters[n], p.FighterBuildCost(), "fighters=%d", n)
	}
}

func TestBuildBotSpendsMinerals(t *testing.T) {
	g := newTestGame(t, DefaultRules())
	p := g.Players[0]
	p.HiveMind = &scripted{ship: func(*MotherShipObservation) MotherShipMove {
		return MotherShipMove{Type: MotherShipBuildMiner}
	}}
	built := 0
	g.Bus.On(core.EvtBotBuilt, func(core.Event) { built++ })

	require.NoError(t, g.Step())
	require.Len(t, p.Miners(), 1)
	assert.Equal(t, 0, p.StoredMinerals)
	assert.Equal(t, 1, built)
	m := p.Miners()[0]
	assert.True(t, m.Pos.IsNextToOrEqual(p.MotherShip.Pos))
	assert.True(t, g.Map.IsMinerBot(m.Pos.X, m.Pos.Y))

	// cannot afford the next one
	require.NoError(t, g.Step())
	assert.Len(t, p.Miners(), 1)
	assert.Equal(t, 1, built)
}

func TestShootingDestroysBot(t *testing.T) {
	g := newTestGame(t, sureHits())
	shooter := spawn(t, g, 0, grid.FighterBot, grid.P(7, 7))
	victim := spawn(t, g, 1, grid.MinerBot, grid.P(9, 9))

	g.Players[0].HiveMind = &scripted{fighter: func(obs *BotObservation) FighterMove {
		if in := obs.EnemyMinersInShootingRange(); len(in) > 0 {
			return FighterAct(FighterShoot, in[0])
		}
		return FighterIdle(FighterDoNothing)
	}}
	destroyed := 0
	g.Bus.On(core.EvtBotDestroyed, func(core.Event) { destroyed++ })

	for i := 0; i < 12; i++ {
		require.NoError(t, g.Step())
	}
	assert.True(t, victim.IsDestroyed())
	assert.Equal(t, 0, victim.Health)
	assert.Equal(t, 1, destroyed)
	assert.False(t, g.Map.IsMinerBot(9, 9))
	assert.Equal(t, 0, g.Map.MinerIndex(1).Len())
	assert.Empty(t, g.Players[1].Miners())
	assert.Equal(t, BotMaxHealth, shooter.Health)
	assert.False(t, g.Over())
}

func TestInvalidShotIsReported(t *testing.T) {
	g := newTestGame(t, sureHits())
	spawn(t, g, 0, grid.FighterBot, grid.P(7, 7))
	g.Players[0].HiveMind = &scripted{fighter: func(*BotObservation) FighterMove {
		return FighterAct(FighterShoot, grid.P(8, 8))
	}}
	err := g.Step()
	assert.ErrorIs(t, err, ErrInvalidShot)

	g.Rules.SuppressErrors = true
	assert.NoError(t, g.Step())
}

func TestMissingTarget(t *testing.T) {
	g := newTestGame(t, DefaultRules())
	spawn(t, g, 0, grid.MinerBot, grid.P(6, 5))
	g.Players[0].HiveMind = &scripted{miner: func(*BotObservation) MinerMove {
		return MinerIdle(MinerMoveTowards)
	}}
	assert.ErrorIs(t, g.Step(), ErrMissingTarget)
}

func TestDestroyingMotherShipEndsGame(t *testing.T) {
	rules := sureHits()
	rules.MotherShipMaxHealth = 30
	g := newTestGame(t, rules)
	spawn(t, g, 0, grid.FighterBot, grid.P(12, 14))
	enemyMiner := spawn(t, g, 1, grid.MinerBot, grid.P(15, 15))

	g.Players[0].HiveMind = &scripted{fighter: func(obs *BotObservation) FighterMove {
		if ship, ok := obs.NearestEnemyMotherShip(); ok && obs.InShootingRange(ship) {
			return FighterAct(FighterShoot, ship)
		}
		return FighterIdle(FighterDoNothing)
	}}
	var lost []int
	g.Bus.On(core.EvtPlayerLost, func(e core.Event) { lost = append(lost, e.Payload.(core.Action).Player) })

	require.NoError(t, g.Run(context.Background(), 10))
	assert.True(t, g.Over())
	w, ok := g.Winner()
	require.True(t, ok)
	assert.Equal(t, "alpha", w.Name)
	assert.Equal(t, []int{1}, lost)
	assert.True(t, g.Players[1].HasLost())
	assert.False(t, g.Map.IsMotherShip(testStarts[1]))
	assert.True(t, enemyMiner.IsDestroyed())
	assert.False(t, g.Map.IsMinerBot(15, 15))

	r := g.Result()
	assert.Equal(t, 3, r.Turns)
	assert.Equal(t, "alpha", r.Winner)
	assert.Equal(t, 0, r.WinnerID)
	assert.True(t, r.Players[1].Lost)

	// further steps are no-ops
	require.NoError(t, g.Step())
	assert.Equal(t, 4, g.Turn)
}

func TestPickUpAndUnload(t *testing.T) {
	g := newTestGame(t, DefaultRules())
	miner := spawn(t, g, 0, grid.MinerBot, grid.P(6, 5))
	_, err := g.Map.CreateCell(grid.P(7, 5), grid.Mineral, bsp.NoTeam, core.NoEntity)
	require.NoError(t, err)

	g.Players[0].HiveMind = &scripted{miner: func(obs *BotObservation) MinerMove {
		if p, ok := obs.NearestMineral(); ok && obs.IsNextTo(p) && obs.CanPickUpMinerals() {
			return MinerAct(MinerPickUpMineral, p)
		}
		if obs.CarriedMinerals() > 0 {
			return MinerAct(MinerUnloadMinerals, obs.FriendlyMotherShip())
		}
		return MinerIdle(MinerDoNothing)
	}}

	require.NoError(t, g.Step())
	assert.Equal(t, 1, miner.PickedUpMinerals)
	assert.Equal(t, 0, g.Map.Minerals().Len())
	assert.False(t, g.Map.IsMineral(grid.P(7, 5)))

	require.NoError(t, g.Step())
	assert.Equal(t, 0, miner.PickedUpMinerals)
	assert.Equal(t, 2, g.Players[0].StoredMinerals)
}

func TestPickUpWhenFull(t *testing.T) {
	g := newTestGame(t, DefaultRules())
	miner := spawn(t, g, 0, grid.MinerBot, grid.P(6, 5))
	miner.PickedUpMinerals = MaxPickedUpMinerals
	_, err := g.Map.CreateCell(grid.P(7, 5), grid.Mineral, bsp.NoTeam, core.NoEntity)
	require.NoError(t, err)
	g.Players[0].HiveMind = &scripted{miner: func(*BotObservation) MinerMove {
		return MinerAct(MinerPickUpMineral, grid.P(7, 5))
	}}
	assert.ErrorIs(t, g.Step(), ErrInvalidPickUp)
	assert.True(t, g.Map.IsMineral(grid.P(7, 5)))
}

func TestMineTowardsBreaksDeposit(t *testing.T) {
	g := newTestGame(t, DefaultRules())
	spawn(t, g, 0, grid.MinerBot, grid.P(6, 5))
	_, err := g.Map.CreateCell(grid.P(7, 5), grid.Deposit, bsp.NoTeam, core.NoEntity)
	require.NoError(t, err)
	g.Players[0].HiveMind = &scripted{miner: func(*BotObservation) MinerMove {
		return MinerAct(MinerMineTowards, grid.P(7, 5))
	}}

	require.NoError(t, g.Step())
	assert.True(t, g.Map.IsMineral(grid.P(7, 5)))
	assert.Equal(t, 0, g.Map.Deposits().Len())
	assert.Equal(t, 1, g.Map.Minerals().Len())
}

func TestFighterMoves(t *testing.T) {
	g := newTestGame(t, DefaultRules())
	f := spawn(t, g, 0, grid.FighterBot, grid.P(7, 7))
	g.Players[0].HiveMind = &scripted{fighter: func(*BotObservation) FighterMove {
		return FighterAct(FighterMoveTowards, grid.P(10, 7))
	}}
	require.NoError(t, g.Step())
	assert.Equal(t, grid.P(8, 7), f.Pos)
	assert.True(t, g.Map.IsFighterBot(8, 7))
	assert.False(t, g.Map.IsFighterBot(7, 7))
	assert.Equal(t, []grid.Pos{grid.P(8, 7)}, g.Map.FighterIndex(0).Positions())

	g.Players[0].HiveMind = &scripted{fighter: func(*BotObservation) FighterMove {
		return FighterAct(FighterStep, grid.P(8, 8))
	}}
	require.NoError(t, g.Step())
	assert.Equal(t, grid.P(8, 8), f.Pos)
}

func TestHeal(t *testing.T) {
	g := newTestGame(t, DefaultRules())
	f := spawn(t, g, 0, grid.FighterBot, grid.P(7, 7))
	f.Health = 97
	g.Players[0].HiveMind = &scripted{fighter: func(*BotObservation) FighterMove { return FighterIdle(FighterHeal) }}
	require.NoError(t, g.Step())
	assert.Equal(t, 100, f.Health)
	require.NoError(t, g.Step())
	assert.Equal(t, 100, f.Health)
}

func TestObservationQueries(t *testing.T) {
	g := newTestGame(t, DefaultRules())
	self := spawn(t, g, 0, grid.FighterBot, grid.P(7, 7))
	spawn(t, g, 0, grid.FighterBot, grid.P(2, 2))
	spawn(t, g, 1, grid.FighterBot, grid.P(8, 8))
	spawn(t, g, 1, grid.FighterBot, grid.P(12, 12))
	spawn(t, g, 1, grid.MinerBot, grid.P(9, 7))

	p := g.Players[0]
	acc := pathfind.NewAccessibilityMap(g.Map, p.MotherShip.Pos, grid.ClassFighter, false)
	obs := newBotObservation(g, acc, p, self)

	near, ok := obs.NearestEnemyFighter()
	require.True(t, ok)
	assert.Equal(t, grid.P(8, 8), near)
	assert.Equal(t, []grid.Pos{grid.P(8, 8), grid.P(12, 12)}, obs.KNearestEnemyFighters(5))
	assert.Equal(t, []grid.Pos{grid.P(8, 8)}, obs.EnemyFightersInShootingRange())
	assert.Equal(t, []grid.Pos{grid.P(9, 7)}, obs.EnemyMinersInShootingRange())

	friend, ok := obs.NearestFriendlyFighter()
	require.True(t, ok)
	assert.Equal(t, grid.P(2, 2), friend)
	_, ok = obs.NearestFriendlyMiner()
	assert.False(t, ok)

	assert.Equal(t, 2, obs.FriendlyFighterCount())
	assert.Equal(t, 2, obs.EnemyFighterCount())
	assert.Equal(t, 1, obs.EnemyMinerCount())
	assert.Equal(t, 1, obs.EnemyCount())

	ship, ok := obs.NearestEnemyMotherShip()
	require.True(t, ok)
	assert.Equal(t, testStarts[1], ship)
	assert.True(t, obs.CanPathFindTo(ship))
	assert.True(t, obs.IsEnemyAt(grid.P(8, 8)))
	assert.False(t, obs.IsEnemyAt(grid.P(2, 2)))
	assert.Equal(t, grid.FighterBot, obs.CellTypeAt(grid.P(8, 8)))
	assert.Equal(t, 20, obs.MapHeight())
	assert.Equal(t, 100, obs.HealthPercent())
}

func TestObservationResourceFilters(t *testing.T) {
	g := newTestGame(t, DefaultRules())
	for _, p := range []grid.Pos{grid.P(7, 5), grid.P(9, 5), grid.P(12, 5)} {
		_, err := g.Map.CreateCell(p, grid.Mineral, bsp.NoTeam, core.NoEntity)
		require.NoError(t, err)
	}
	p := g.Players[0]
	acc := pathfind.NewAccessibilityMap(g.Map, p.MotherShip.Pos, grid.ClassMiner, false)
	obs := newMotherShipObservation(g, acc, p)

	m, ok := obs.NearestMineral()
	require.True(t, ok)
	assert.Equal(t, grid.P(7, 5), m)
	m, ok = obs.NearestMineralWhere(func(q grid.Pos) bool { return q != grid.P(7, 5) })
	require.True(t, ok)
	assert.Equal(t, grid.P(9, 5), m)
	assert.Equal(t, []grid.Pos{grid.P(7, 5), grid.P(9, 5)}, obs.KNearestMinerals(2))
	_, ok = obs.NearestDeposit()
	assert.False(t, ok)
	assert.Equal(t, 3, obs.MineralCount())
	assert.Equal(t, 1, obs.MinerBuildCost())
	assert.Equal(t, 1, obs.StoredMinerals())
}

func TestHiveMindRegistry(t *testing.T) {
	assert.Equal(t, []string{"demo", "empty", "mastermind", "minersonly"}, HiveMinds())
	hm, err := NewHiveMind("mastermind")
	require.NoError(t, err)
	assert.IsType(t, &MasterMind{}, hm)
	_, err = NewHiveMind("missing")
	assert.Error(t, err)
	assert.Panics(t, func() { Register("empty", func() HiveMind { return Empty{} }) })
}

func newMatch(t *testing.T, seed int64, a, b string, suppress bool) *Game {
	t.Helper()
	starts := []grid.Pos{grid.P(6, 6), grid.P(25, 25)}
	rules := DefaultRules()
	rules.SuppressErrors = suppress
	g, err := New(Setup{
		Layout: maplib.Generate("match", 32, 32, maplib.OnlyDeposit, starts),
		Players: []PlayerSpec{
			{Name: a, HiveMind: a, Start: starts[0]},
			{Name: b, HiveMind: b, Start: starts[1]},
		},
		Rules:  rules,
		Seed:   seed,
		Logger: slog.New(slog.DiscardHandler),
	})
	require.NoError(t, err)
	return g
}

func assertConsistent(t *testing.T, g *Game) {
	t.Helper()
	for _, p := range g.Players {
		assert.Equal(t, len(p.Miners()), g.Map.MinerIndex(p.ID).Len(), "player %d miners", p.ID)
		assert.Equal(t, len(p.Fighters()), g.Map.FighterIndex(p.ID).Len(), "player %d fighters", p.ID)
		for _, b := range p.Miners() {
			o := g.Map.MinerAt(b.Pos)
			require.NotNil(t, o, "miner %v", b.Pos)
			assert.Equal(t, b.ID, o.Owner)
		}
		for _, b := range p.Fighters() {
			o := g.Map.FighterAt(b.Pos)
			require.NotNil(t, o, "fighter %v", b.Pos)
			assert.Equal(t, b.ID, o.Owner)
		}
		assert.GreaterOrEqual(t, p.StoredMinerals, 0)
	}
}

func TestMinersOnlyGathers(t *testing.T) {
	g := newMatch(t, 3, "minersonly", "minersonly", false)
	counts := map[core.EventType]int{}
	g.Bus.OnAny(func(e core.Event) { counts[e.Type]++ })

	require.NoError(t, g.Run(context.Background(), 60))
	assertConsistent(t, g)
	assert.Positive(t, counts[core.EvtMined])
	assert.Positive(t, counts[core.EvtMineralPickedUp])
	assert.Positive(t, counts[core.EvtMineralsUnloaded])
	assert.Equal(t, 60, counts[core.EvtTurnStart])
	for _, p := range g.Players {
		assert.GreaterOrEqual(t, p.builtMiners, 2)
		assert.Empty(t, p.Fighters())
	}
}

func TestMasterMindMatch(t *testing.T) {
	g := newMatch(t, 7, "mastermind", "minersonly", false)
	require.NoError(t, g.Run(context.Background(), 80))
	assertConsistent(t, g)
	assert.Positive(t, g.Players[0].builtMiners)
}

func TestMatchIsDeterministic(t *testing.T) {
	a := newMatch(t, 11, "mastermind", "demo", true)
	b := newMatch(t, 11, "mastermind", "demo", true)
	require.NoError(t, a.Run(context.Background(), 50))
	require.NoError(t, b.Run(context.Background(), 50))
	assert.Equal(t, a.Result(), b.Result())
}

func TestRunHonoursContext(t *testing.T) {
	g := newTestGame(t, DefaultRules())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, g.Run(ctx, 0), context.Canceled)
	assert.Equal(t, 1, g.Turn)
}
