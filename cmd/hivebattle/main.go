package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/1siamBot/hivebattle/engine/config"
	"github.com/1siamBot/hivebattle/engine/core"
	"github.com/1siamBot/hivebattle/engine/game"
	"github.com/1siamBot/hivebattle/engine/grid"
	"github.com/1siamBot/hivebattle/engine/maplib"
	"github.com/1siamBot/hivebattle/engine/render"
	"github.com/1siamBot/hivebattle/engine/replay"
	"github.com/1siamBot/hivebattle/engine/store"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "run":
			runCmd(os.Args[2:])
			return
		case "replay":
			replayCmd(os.Args[2:])
			return
		case "matches":
			matchesCmd(os.Args[2:])
			return
		case "standings":
			standingsCmd(os.Args[2:])
			return
		case "hiveminds":
			fmt.Println(strings.Join(game.HiveMinds(), "\n"))
			return
		case "config":
			configCmd(os.Args[2:])
			return
		case "layout":
			layoutCmd(os.Args[2:])
			return
		}
	}
	runCmd(os.Args[1:])
}

func runCmd(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", "", "match config (YAML); built-in defaults when empty")
	turns := fs.Int("turns", -1, "turn limit, 0 for unlimited (overrides max_turns)")
	seed := fs.Int64("seed", 0, "rng seed (overrides seed)")
	replayPath := fs.String("replay", "", "write a replay file (overrides replay)")
	dbPath := fs.String("db", "", "record the result in a sqlite database (overrides db)")
	logLevel := fs.String("log-level", "", "debug, info, warn or error (overrides log.level)")
	snapshot := fs.String("snapshot", "", "write a PNG of the final map")
	scale := fs.Int("scale", 8, "snapshot pixels per cell")
	_ = fs.Parse(args)

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	if *turns >= 0 {
		cfg.MaxTurns = *turns
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if *replayPath != "" {
		cfg.ReplayPath = *replayPath
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	logger := cfg.Log.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := playMatch(ctx, cfg, logger, *snapshot, *scale)
	if err != nil {
		logger.Error("match failed", "err", err)
		os.Exit(1)
	}
	printResult(os.Stdout, res)
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func mapName(cfg config.Config) string {
	if cfg.Map.File != "" {
		return strings.TrimSuffix(filepath.Base(cfg.Map.File), filepath.Ext(cfg.Map.File))
	}
	return cfg.Map.Generator
}

// playMatch runs one headless match, recording and storing it as configured
func playMatch(ctx context.Context, cfg config.Config, logger *slog.Logger, snapshot string, scale int) (res game.Result, err error) {
	setup, err := cfg.Setup(logger)
	if err != nil {
		return res, err
	}
	g, err := game.New(setup)
	if err != nil {
		return res, err
	}

	if cfg.ReplayPath != "" {
		rec, rerr := replay.NewRecorder(cfg.ReplayPath, replay.NewHeader(g, mapName(cfg), cfg.Seed))
		if rerr != nil {
			return res, rerr
		}
		rec.Attach(g.Bus)
		defer func() {
			if cerr := rec.Close(); cerr != nil {
				err = errors.Join(err, fmt.Errorf("replay: %w", cerr))
				return
			}
			logger.Info("replay written", "path", cfg.ReplayPath, "entries", rec.Count())
		}()
	}

	logger.Info("match started",
		"map", mapName(cfg),
		"width", setup.Layout.Width,
		"height", setup.Layout.Height,
		"players", len(setup.Players),
		"seed", cfg.Seed,
		"max_turns", cfg.MaxTurns,
	)
	start := time.Now()
	runErr := g.Run(ctx, cfg.MaxTurns)
	res = g.Result()
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return res, runErr
	}
	logger.Info("match finished",
		"turns", res.Turns,
		"winner", res.Winner,
		"interrupted", runErr != nil,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)

	if snapshot != "" {
		if err := render.SavePNG(snapshot, g.Map, render.SnapshotOptions{Scale: scale}); err != nil {
			return res, err
		}
		logger.Info("snapshot written", "path", snapshot)
	}

	if cfg.DBPath != "" {
		db, err := store.Open(cfg.DBPath)
		if err != nil {
			return res, err
		}
		defer db.Close()
		// an interrupted match is still stored
		id, err := db.SaveMatch(context.WithoutCancel(ctx), store.Match{
			Seed:       cfg.Seed,
			MapName:    mapName(cfg),
			Width:      g.Map.Width(),
			Height:     g.Map.Height(),
			ReplayPath: cfg.ReplayPath,
			Result:     res,
		})
		if err != nil {
			return res, err
		}
		logger.Info("match stored", "id", id, "db", cfg.DBPath)
	}
	return res, nil
}

func printResult(w io.Writer, res game.Result) {
	winner := res.Winner
	if winner == "" {
		winner = "none"
	}
	fmt.Fprintf(w, "turns: %d  winner: %s\n", res.Turns, winner)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SLOT\tNAME\tHIVEMIND\tMINERALS\tMINERS\tFIGHTERS\tBUILT\tLOST")
	for _, p := range res.Players {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%d\t%d/%d\t%v\n",
			p.ID, p.Name, p.HiveMind, p.Minerals, p.Miners, p.Fighters, p.BuiltMiners, p.BuiltFighters, p.Lost)
	}
	tw.Flush()
}

func replayCmd(args []string) {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	turn := fs.Uint64("turn", 0, "play back up to this turn (0 = all)")
	snapshot := fs.String("snapshot", "", "write a PNG of the reconstructed map")
	scale := fs.Int("scale", 8, "snapshot pixels per cell")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: hivebattle replay [-turn N] [-snapshot out.png] file")
		os.Exit(2)
	}

	rep, err := replay.Load(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "load:", err)
		os.Exit(1)
	}
	h := rep.Header
	fmt.Printf("map %q %dx%d seed %d, %d entries over %d turns\n", h.Name, h.Width, h.Height, h.Seed, len(rep.Entries), rep.LastTurn())

	counts := rep.Counts()
	types := make([]core.EventType, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	slices.Sort(types)
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, t := range types {
		fmt.Fprintf(tw, "  %v\t%d\n", t, counts[t])
	}
	tw.Flush()

	pb, err := replay.NewPlayback(rep)
	if err != nil {
		fmt.Fprintln(os.Stderr, "playback:", err)
		os.Exit(1)
	}
	if *turn == 0 {
		err = pb.Run()
	} else {
		err = pb.StepTo(*turn)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "playback:", err)
		os.Exit(1)
	}
	printResult(os.Stdout, game.Result{Turns: int(pb.Turn), Players: pb.Players()})

	if *snapshot != "" {
		if err := render.SavePNG(*snapshot, pb.Map, render.SnapshotOptions{Scale: *scale}); err != nil {
			fmt.Fprintln(os.Stderr, "snapshot:", err)
			os.Exit(1)
		}
	}
}

// openDB adds the -db flag to fs, parses args and opens the database
func openDB(fs *flag.FlagSet, args []string) *store.DB {
	dbPath := fs.String("db", "hivebattle.db", "sqlite database")
	_ = fs.Parse(args)
	db, err := store.Open(*dbPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	return db
}

func matchesCmd(args []string) {
	fs := flag.NewFlagSet("matches", flag.ExitOnError)
	limit := fs.Int("limit", 20, "result limit")
	db := openDB(fs, args)
	defer db.Close()
	ctx := context.Background()

	if fs.NArg() == 1 {
		m, err := db.Match(ctx, fs.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, "match:", err)
			os.Exit(1)
		}
		players, err := db.Players(ctx, m.ID)
		if err != nil {
			fmt.Fprintln(os.Stderr, "players:", err)
			os.Exit(1)
		}
		res := game.Result{Turns: m.Turns, Winner: m.Winner, WinnerID: m.WinnerSlot}
		for _, p := range players {
			res.Players = append(res.Players, game.PlayerResult{
				ID:            p.Slot,
				Name:          p.Name,
				HiveMind:      p.HiveMind,
				Minerals:      p.Minerals,
				Miners:        p.Miners,
				Fighters:      p.Fighters,
				BuiltMiners:   p.BuiltMiners,
				BuiltFighters: p.BuiltFighters,
				Lost:          p.Lost,
			})
		}
		fmt.Printf("%s  %s %dx%d seed %d  replay %q\n", m.ID, m.MapName, m.Width, m.Height, m.Seed, m.ReplayPath)
		printResult(os.Stdout, res)
		return
	}

	rows, err := db.ListMatches(ctx, *limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list:", err)
		os.Exit(1)
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPLAYED\tMAP\tTURNS\tWINNER")
	for _, m := range rows {
		played := time.Unix(m.PlayedAt, 0).Format(time.DateTime)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", m.ID, played, m.MapName, m.Turns, m.Winner)
	}
	tw.Flush()
}

func standingsCmd(args []string) {
	db := openDB(flag.NewFlagSet("standings", flag.ExitOnError), args)
	defer db.Close()

	rows, err := db.Standings(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, "standings:", err)
		os.Exit(1)
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "HIVEMIND\tPLAYED\tWINS")
	for _, s := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", s.HiveMind, s.Played, s.Wins)
	}
	tw.Flush()
}

// configCmd writes the built-in defaults so they can be edited
func configCmd(args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	out := fs.String("out", "hivebattle.yaml", "output path")
	_ = fs.Parse(args)
	if err := config.Default().Save(*out); err != nil {
		fmt.Fprintln(os.Stderr, "save:", err)
		os.Exit(1)
	}
	fmt.Println("wrote", *out)
}

// layoutCmd generates a layout from the config's map and player sections
// and saves it as JSON, start positions included
func layoutCmd(args []string) {
	fs := flag.NewFlagSet("layout", flag.ExitOnError)
	cfgPath := fs.String("config", "", "match config (YAML); built-in defaults when empty")
	generator := fs.String("generator", "", "open, deposit, diagonal or noise (overrides map.generator)")
	width := fs.Int("width", 0, "map width (overrides map.width)")
	height := fs.Int("height", 0, "map height (overrides map.height)")
	seed := fs.Int64("seed", 0, "generator seed (overrides map.seed)")
	out := fs.String("out", "layout.json", "output path")
	snapshot := fs.String("snapshot", "", "also write a PNG preview")
	_ = fs.Parse(args)

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	cfg.Map.File = ""
	if *generator != "" {
		cfg.Map.Generator = *generator
	}
	if *width > 0 {
		cfg.Map.Width = *width
	}
	if *height > 0 {
		cfg.Map.Height = *height
	}
	if *seed != 0 {
		cfg.Map.Seed = *seed
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	l, err := cfg.Layout()
	if err != nil {
		fmt.Fprintln(os.Stderr, "layout:", err)
		os.Exit(1)
	}
	if err := l.SaveJSON(*out); err != nil {
		fmt.Fprintln(os.Stderr, "save:", err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s: %dx%d, %d deposits, %d minerals, %d stone\n",
		*out, l.Width, l.Height, l.Count(grid.Deposit), l.Count(grid.Mineral), l.Count(grid.Stone))

	if *snapshot != "" {
		m, err := maplib.FromLayout(l)
		if err != nil {
			fmt.Fprintln(os.Stderr, "layout:", err)
			os.Exit(1)
		}
		if err := render.SavePNG(*snapshot, m, render.SnapshotOptions{Scale: 8, Partition: m.Deposits()}); err != nil {
			fmt.Fprintln(os.Stderr, "snapshot:", err)
			os.Exit(1)
		}
	}
}
