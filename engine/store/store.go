// Package store keeps finished match results in SQLite
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/1siamBot/hivebattle/engine/game"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// DB wraps the match database
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates the database at path
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS matches (
		id TEXT PRIMARY KEY,
		played_at INTEGER NOT NULL,
		seed INTEGER NOT NULL,
		map_name TEXT NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		turns INTEGER NOT NULL,
		winner TEXT NOT NULL,
		winner_slot INTEGER NOT NULL,
		replay_path TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS match_players (
		match_id TEXT NOT NULL REFERENCES matches(id),
		slot INTEGER NOT NULL,
		name TEXT NOT NULL,
		hivemind TEXT NOT NULL,
		minerals INTEGER NOT NULL,
		miners INTEGER NOT NULL,
		fighters INTEGER NOT NULL,
		built_miners INTEGER NOT NULL,
		built_fighters INTEGER NOT NULL,
		lost INTEGER NOT NULL,
		PRIMARY KEY (match_id, slot)
	);

	CREATE INDEX IF NOT EXISTS idx_matches_played ON matches(played_at);
	CREATE INDEX IF NOT EXISTS idx_players_hivemind ON match_players(hivemind);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Match is a finished game to be stored
type Match struct {
	PlayedAt   time.Time
	Seed       int64
	MapName    string
	Width      int
	Height     int
	ReplayPath string
	Result     game.Result
}

// MatchRow is a stored match
type MatchRow struct {
	ID         string `db:"id"`
	PlayedAt   int64  `db:"played_at"`
	Seed       int64  `db:"seed"`
	MapName    string `db:"map_name"`
	Width      int    `db:"width"`
	Height     int    `db:"height"`
	Turns      int    `db:"turns"`
	Winner     string `db:"winner"`
	WinnerSlot int    `db:"winner_slot"`
	ReplayPath string `db:"replay_path"`
}

// PlayerRow is one participant of a stored match
type PlayerRow struct {
	MatchID       string `db:"match_id"`
	Slot          int    `db:"slot"`
	Name          string `db:"name"`
	HiveMind      string `db:"hivemind"`
	Minerals      int    `db:"minerals"`
	Miners        int    `db:"miners"`
	Fighters      int    `db:"fighters"`
	BuiltMiners   int    `db:"built_miners"`
	BuiltFighters int    `db:"built_fighters"`
	Lost          bool   `db:"lost"`
}

// Standing aggregates results per hive mind
type Standing struct {
	HiveMind string `db:"hivemind"`
	Played   int    `db:"played"`
	Wins     int    `db:"wins"`
}

// SaveMatch stores m and its players in one transaction and returns the new id
func (db *DB) SaveMatch(ctx context.Context, m Match) (string, error) {
	id := uuid.NewString()
	if m.PlayedAt.IsZero() {
		m.PlayedAt = time.Now()
	}

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	r := m.Result
	_, err = tx.ExecContext(ctx, `INSERT INTO matches
		(id, played_at, seed, map_name, width, height, turns, winner, winner_slot, replay_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, m.PlayedAt.Unix(), m.Seed, m.MapName, m.Width, m.Height,
		r.Turns, r.Winner, r.WinnerID, m.ReplayPath,
	)
	if err != nil {
		return "", fmt.Errorf("insert match: %w", err)
	}

	for _, p := range r.Players {
		_, err := tx.NamedExecContext(ctx, `INSERT INTO match_players
			(match_id, slot, name, hivemind, minerals, miners, fighters, built_miners, built_fighters, lost)
			VALUES (:match_id, :slot, :name, :hivemind, :minerals, :miners, :fighters, :built_miners, :built_fighters, :lost)`,
			PlayerRow{
				MatchID:       id,
				Slot:          p.ID,
				Name:          p.Name,
				HiveMind:      p.HiveMind,
				Minerals:      p.Minerals,
				Miners:        p.Miners,
				Fighters:      p.Fighters,
				BuiltMiners:   p.BuiltMiners,
				BuiltFighters: p.BuiltFighters,
				Lost:          p.Lost,
			})
		if err != nil {
			return "", fmt.Errorf("insert player %d: %w", p.ID, err)
		}
	}
	return id, tx.Commit()
}

// ListMatches returns the most recent matches first
func (db *DB) ListMatches(ctx context.Context, limit int) ([]MatchRow, error) {
	var rows []MatchRow
	err := db.conn.SelectContext(ctx, &rows,
		"SELECT * FROM matches ORDER BY played_at DESC, rowid DESC LIMIT ?", limit)
	return rows, err
}

// Match returns one stored match
func (db *DB) Match(ctx context.Context, id string) (MatchRow, error) {
	var row MatchRow
	err := db.conn.GetContext(ctx, &row, "SELECT * FROM matches WHERE id = ?", id)
	return row, err
}

// Players returns the participants of a match by slot
func (db *DB) Players(ctx context.Context, matchID string) ([]PlayerRow, error) {
	var rows []PlayerRow
	err := db.conn.SelectContext(ctx, &rows,
		"SELECT * FROM match_players WHERE match_id = ? ORDER BY slot", matchID)
	return rows, err
}

// Standings counts games played and won per hive mind, best first
func (db *DB) Standings(ctx context.Context) ([]Standing, error) {
	var rows []Standing
	err := db.conn.SelectContext(ctx, &rows, `
		SELECT p.hivemind AS hivemind,
		       COUNT(*) AS played,
		       SUM(CASE WHEN m.winner_slot = p.slot THEN 1 ELSE 0 END) AS wins
		FROM match_players p JOIN matches m ON m.id = p.match_id
		GROUP BY p.hivemind
		ORDER BY wins DESC, hivemind`)
	return rows, err
}
