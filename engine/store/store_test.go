package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/1siamBot/hivebattle/engine/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "matches.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func result(winner int, names ...string) game.Result {
	r := game.Result{Turns: 120, WinnerID: winner}
	for i, n := range names {
		r.Players = append(r.Players, game.PlayerResult{
			ID:          i,
			Name:        n,
			HiveMind:    n,
			Minerals:    i * 3,
			Miners:      4,
			BuiltMiners: 5,
			Lost:        i != winner,
		})
	}
	if winner >= 0 {
		r.Winner = names[winner]
	}
	return r
}

func TestSaveAndList(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()
	base := time.Unix(1_700_000_000, 0)

	first, err := db.SaveMatch(ctx, Match{PlayedAt: base, Seed: 1, MapName: "a", Width: 32, Height: 32, Result: result(0, "mastermind", "minersonly")})
	require.NoError(t, err)
	second, err := db.SaveMatch(ctx, Match{PlayedAt: base.Add(time.Minute), Seed: 2, MapName: "b", Width: 64, Height: 48, ReplayPath: "b.hbr", Result: result(1, "demo", "mastermind")})
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	rows, err := db.ListMatches(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, second, rows[0].ID)
	assert.Equal(t, "mastermind", rows[0].Winner)
	assert.Equal(t, 1, rows[0].WinnerSlot)
	assert.Equal(t, "b.hbr", rows[0].ReplayPath)
	assert.Equal(t, 48, rows[0].Height)

	limited, err := db.ListMatches(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	m, err := db.Match(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, int64(1), m.Seed)
	assert.Equal(t, base.Unix(), m.PlayedAt)

	players, err := db.Players(ctx, first)
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, "mastermind", players[0].HiveMind)
	assert.False(t, players[0].Lost)
	assert.True(t, players[1].Lost)
	assert.Equal(t, 3, players[1].Minerals)
	assert.Equal(t, 5, players[1].BuiltMiners)
}

func TestStandings(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()
	for _, r := range []game.Result{
		result(0, "mastermind", "minersonly"),
		result(0, "mastermind", "demo"),
		result(1, "minersonly", "demo"),
		result(-1, "empty", "empty"),
	} {
		_, err := db.SaveMatch(ctx, Match{MapName: "m", Result: r})
		require.NoError(t, err)
	}

	got, err := db.Standings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Standing{
		{HiveMind: "mastermind", Played: 2, Wins: 2},
		{HiveMind: "demo", Played: 2, Wins: 1},
		{HiveMind: "empty", Played: 2, Wins: 0},
		{HiveMind: "minersonly", Played: 2, Wins: 0},
	}, got)
}

func TestMissingMatch(t *testing.T) {
	db := openTemp(t)
	_, err := db.Match(context.Background(), "nope")
	assert.Error(t, err)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keep.db")
	db, err := Open(path)
	require.NoError(t, err)
	id, err := db.SaveMatch(context.Background(), Match{MapName: "k", Result: result(0, "a", "b")})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	m, err := db.Match(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "k", m.MapName)
}
