package maplib

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1siamBot/hivebattle/engine/bsp"
	"github.com/1siamBot/hivebattle/engine/core"
	"github.com/1siamBot/hivebattle/engine/grid"
	"github.com/1siamBot/hivebattle/engine/pathfind"
)

var _ pathfind.World = (*Map)(nil)

func mustCreate(t *testing.T, m *Map, p grid.Pos, kind grid.CellType, team int) *bsp.Occupant {
	t.Helper()
	o, err := m.CreateCell(p, kind, team, core.NewEntityID())
	require.NoError(t, err)
	return o
}

func TestCreateCellLayers(t *testing.T) {
	m := NewMap(20, 20)
	mustCreate(t, m, grid.P(3, 3), grid.Mineral, bsp.NoTeam)
	mustCreate(t, m, grid.P(3, 3), grid.MinerBot, 0)
	mustCreate(t, m, grid.P(3, 3), grid.FighterBot, 1)

	assert.Equal(t, grid.FighterBot, m.CellTypeAt(grid.P(3, 3)))
	assert.Equal(t, grid.Mineral, m.GroundAt(grid.P(3, 3)))
	assert.True(t, m.IsCellType(grid.P(3, 3), grid.MinerBot))
	assert.True(t, m.IsShootable(grid.P(3, 3)))
	assert.True(t, m.IsWalkable(3, 3))

	_, err := m.CreateCell(grid.P(3, 3), grid.Stone, bsp.NoTeam, core.NoEntity)
	assert.ErrorIs(t, err, ErrCellOccupied)
	_, err = m.CreateCell(grid.P(3, 3), grid.MinerBot, 0, core.NoEntity)
	assert.ErrorIs(t, err, ErrCellOccupied)
	_, err = m.CreateCell(grid.P(20, 3), grid.Stone, bsp.NoTeam, core.NoEntity)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = m.CreateCell(grid.P(4, 4), grid.Empty, bsp.NoTeam, core.NoEntity)
	assert.ErrorIs(t, err, ErrInvalidKind)

	assert.Equal(t, 1, m.Minerals().Len())
	assert.Equal(t, 1, m.MinerIndex(0).Len())
	assert.Equal(t, 1, m.FighterIndex(1).Len())
	assert.Equal(t, []int{0, 1}, m.Teams())
}

func TestPredicates(t *testing.T) {
	m := NewMap(10, 10)
	mustCreate(t, m, grid.P(1, 1), grid.Stone, bsp.NoTeam)
	mustCreate(t, m, grid.P(2, 1), grid.Deposit, bsp.NoTeam)
	mustCreate(t, m, grid.P(3, 1), grid.Bedrock, bsp.NoTeam)
	mustCreate(t, m, grid.P(4, 1), grid.MotherShip, 0)

	cases := []struct {
		p                   grid.Pos
		walk, mine, blocked bool
		blockedWhileMining  bool
	}{
		{grid.P(0, 0), true, false, false, false},
		{grid.P(1, 1), false, true, true, false},
		{grid.P(2, 1), false, true, true, false},
		{grid.P(3, 1), false, false, true, true},
		{grid.P(4, 1), false, false, true, true},
		{grid.P(-1, 1), false, false, true, true},
	}
	for _, c := range cases {
		assert.Equal(t, c.walk, m.IsWalkable(c.p.X, c.p.Y), "walkable %v", c.p)
		assert.Equal(t, c.mine, m.IsMineable(c.p.X, c.p.Y), "mineable %v", c.p)
		assert.Equal(t, c.blocked, m.IsBlocked(c.p.X, c.p.Y, false), "blocked %v", c.p)
		assert.Equal(t, c.blockedWhileMining, m.IsBlocked(c.p.X, c.p.Y, true), "blocked mining %v", c.p)
	}
	assert.True(t, m.IsShootable(grid.P(4, 1)))
	assert.False(t, m.IsShootable(grid.P(1, 1)))
	assert.Equal(t, grid.None, m.GroundAt(grid.P(10, 0)))
}

func TestIsSurroundedAndSameClass(t *testing.T) {
	m := NewMap(10, 10)
	mustCreate(t, m, grid.P(5, 5), grid.MotherShip, 0)
	for _, n := range grid.P(5, 5).Neighbors() {
		mustCreate(t, m, n, grid.Stone, bsp.NoTeam)
	}
	assert.True(t, m.IsSurrounded(grid.P(5, 5), false))
	assert.False(t, m.IsSurrounded(grid.P(5, 5), true))

	mustCreate(t, m, grid.P(1, 1), grid.MinerBot, 0)
	assert.True(t, m.IsOccupiedBySameClass(1, 1, grid.ClassMiner))
	assert.False(t, m.IsOccupiedBySameClass(1, 1, grid.ClassFighter))
	assert.False(t, m.IsOccupiedBySameClass(1, 1, grid.ClassNone))
}

func TestMineDepositLeavesMineral(t *testing.T) {
	m := NewMap(10, 10)
	mustCreate(t, m, grid.P(2, 2), grid.Deposit, bsp.NoTeam)
	mustCreate(t, m, grid.P(3, 2), grid.Stone, bsp.NoTeam)

	require.NoError(t, m.Mine(grid.P(2, 2)))
	assert.True(t, m.IsMineral(grid.P(2, 2)))
	assert.Equal(t, 0, m.Deposits().Len())
	got, ok := m.Minerals().Nearest(grid.P(0, 0), nil)
	require.True(t, ok)
	assert.Equal(t, grid.P(2, 2), got)

	require.NoError(t, m.Mine(grid.P(3, 2)))
	assert.True(t, m.IsEmpty(grid.P(3, 2)))

	assert.ErrorIs(t, m.Mine(grid.P(3, 2)), ErrNotMineable)
	assert.ErrorIs(t, m.Mine(grid.P(2, 2)), ErrNotMineable)

	require.NoError(t, m.ClearMineral(grid.P(2, 2)))
	assert.Equal(t, 0, m.Minerals().Len())
	assert.ErrorIs(t, m.ClearMineral(grid.P(2, 2)), ErrInvalidKind)
	assert.ErrorIs(t, m.DestroyCell(grid.P(2, 2)), ErrCellEmpty)
}

func TestMoveBot(t *testing.T) {
	m := NewMap(10, 10)
	first := mustCreate(t, m, grid.P(2, 2), grid.MinerBot, 0)
	mustCreate(t, m, grid.P(4, 2), grid.Stone, bsp.NoTeam)
	mustCreate(t, m, grid.P(3, 3), grid.MinerBot, 0)

	moved, err := m.MoveBot(grid.P(2, 2), grid.P(3, 2), grid.MinerBot)
	require.NoError(t, err)
	assert.True(t, first.Destroyed())
	assert.Equal(t, first.Owner, moved.Owner)
	assert.Equal(t, 0, moved.Team)
	assert.False(t, m.IsMinerBot(2, 2))
	assert.True(t, m.IsMinerBot(3, 2))

	idx := m.MinerIndex(0)
	assert.Equal(t, 2, idx.Len())
	assert.ElementsMatch(t, []grid.Pos{grid.P(3, 2), grid.P(3, 3)}, idx.Positions())

	_, err = m.MoveBot(grid.P(3, 2), grid.P(4, 2), grid.MinerBot)
	assert.ErrorIs(t, err, ErrBlocked)
	_, err = m.MoveBot(grid.P(3, 2), grid.P(3, 3), grid.MinerBot)
	assert.ErrorIs(t, err, ErrCellOccupied)
	_, err = m.MoveBot(grid.P(3, 2), grid.P(5, 2), grid.MinerBot)
	assert.ErrorIs(t, err, ErrNotAdjacent)
	_, err = m.MoveBot(grid.P(3, 2), grid.P(3, 2), grid.MinerBot)
	assert.ErrorIs(t, err, ErrNotAdjacent)
	_, err = m.MoveBot(grid.P(7, 7), grid.P(7, 8), grid.FighterBot)
	assert.ErrorIs(t, err, ErrCellEmpty)
	_, err = m.MoveBot(grid.P(3, 2), grid.P(2, 2), grid.Stone)
	assert.ErrorIs(t, err, ErrInvalidKind)

	// a fighter may share the cell of a miner
	mustCreate(t, m, grid.P(2, 2), grid.FighterBot, 1)
	_, err = m.MoveBot(grid.P(2, 2), grid.P(3, 2), grid.FighterBot)
	require.NoError(t, err)
}

func TestUnitIndexSurvivesManyMoves(t *testing.T) {
	m := NewMap(30, 30)
	mustCreate(t, m, grid.P(1, 1), grid.FighterBot, 2)
	p := grid.P(1, 1)
	for i := 0; i < 25; i++ {
		next := p.Add(1, 1)
		if i%2 == 1 {
			next = p.Add(0, -1)
		}
		_, err := m.MoveBot(p, next, grid.FighterBot)
		require.NoError(t, err)
		p = next
	}
	idx := m.FighterIndex(2)
	assert.Equal(t, 1, idx.Len())
	assert.Less(t, idx.Tombstones(), bsp.MinCompactDestroyed+16, "tombstones get compacted")
	got, ok := idx.Nearest(grid.P(0, 0), nil)
	require.True(t, ok)
	assert.Equal(t, p, got)
}

func TestDestroyBot(t *testing.T) {
	m := NewMap(10, 10)
	mustCreate(t, m, grid.P(2, 2), grid.FighterBot, 0)
	require.NoError(t, m.DestroyBot(grid.P(2, 2), grid.FighterBot))
	assert.Equal(t, 0, m.FighterIndex(0).Len())
	assert.ErrorIs(t, m.DestroyBot(grid.P(2, 2), grid.FighterBot), ErrCellEmpty)
	assert.ErrorIs(t, m.DestroyBot(grid.P(2, 2), grid.Stone), ErrInvalidKind)
}

func TestFirstEmptyNeighbor(t *testing.T) {
	m := NewMap(5, 5)
	for _, n := range grid.P(2, 2).Neighbors() {
		mustCreate(t, m, n, grid.Stone, bsp.NoTeam)
	}
	_, ok := m.FirstEmptyNeighbor(grid.P(2, 2))
	assert.False(t, ok)

	require.NoError(t, m.Mine(grid.P(3, 1)))
	got, ok := m.FirstEmptyNeighbor(grid.P(2, 2))
	require.True(t, ok)
	assert.Equal(t, grid.P(3, 1), got)
}

func TestGenerateLayout(t *testing.T) {
	starts := []grid.Pos{grid.P(5, 5), grid.P(24, 14)}
	l := Generate("test", 30, 20, DiagonalLines, starts)
	require.NoError(t, l.Validate())

	assert.Equal(t, grid.Bedrock, l.At(0, 7))
	assert.Equal(t, grid.Bedrock, l.At(29, 19))
	assert.Equal(t, grid.Stone, l.At(1, 7))
	assert.Equal(t, grid.Stone, l.At(15, 18))
	for _, s := range starts {
		ns := s.Neighbors()
		for _, n := range append(ns[:], s) {
			assert.Equal(t, grid.Empty, l.At(n.X, n.Y), "%v near start", n)
		}
	}
	assert.Equal(t, grid.Stone, l.At(9, 10))
	assert.Len(t, l.StartPositions, 2)
	assert.Equal(t, 1, l.StartPositions[1].PlayerSlot)
}

func TestNoiseGeneratorDeterministic(t *testing.T) {
	a := Generate("a", 40, 40, Noise(42), nil)
	b := Generate("b", 40, 40, Noise(42), nil)
	assert.Equal(t, a.Cells, b.Cells)
	assert.Positive(t, a.Count(grid.Deposit)+a.Count(grid.Stone))

	_, err := GeneratorByName("swamp", 1)
	assert.Error(t, err)
}

func TestLayoutJSONAndFromLayout(t *testing.T) {
	l := Generate("saved", 20, 16, OnlyDeposit, []grid.Pos{grid.P(4, 4)})
	path := filepath.Join(t.TempDir(), "map.json")
	require.NoError(t, l.SaveJSON(path))

	loaded, err := LoadJSON(path)
	require.NoError(t, err)
	assert.Equal(t, l.Cells, loaded.Cells)
	assert.Equal(t, l.StartPositions, loaded.StartPositions)

	m, err := FromLayout(loaded)
	require.NoError(t, err)
	assert.Equal(t, loaded.Count(grid.Deposit), m.Deposits().Len())
	assert.True(t, m.IsBedrock(grid.P(0, 0)))
	assert.True(t, m.IsEmpty(grid.P(4, 4)))
	assert.Equal(t, loaded.Cells, m.Layout("again").Cells)
}

func TestAccessibilityOnGeneratedMap(t *testing.T) {
	ship := grid.P(6, 6)
	m, err := FromLayout(Generate("acc", 24, 24, DiagonalLines, []grid.Pos{ship}))
	require.NoError(t, err)
	mustCreate(t, m, ship, grid.MotherShip, 0)

	am := pathfind.NewAccessibilityMap(m, ship, grid.ClassMiner, false)
	assert.True(t, am.IsReachable(ship))
	assert.True(t, am.IsReachable(grid.P(7, 7)))
	assert.False(t, am.IsReachable(grid.P(0, 0)))

	next, err := pathfind.FindNextStep(m, grid.P(7, 7), grid.P(7, 12), grid.ClassMiner, true)
	require.NoError(t, err)
	assert.True(t, grid.P(7, 7).IsNextToOrEqual(next))
	assert.NotEqual(t, grid.P(7, 7), next)
}
