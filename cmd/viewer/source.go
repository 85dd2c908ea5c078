package main

import (
	"fmt"
	"log/slog"

	"github.com/1siamBot/hivebattle/engine/config"
	"github.com/1siamBot/hivebattle/engine/game"
	"github.com/1siamBot/hivebattle/engine/grid"
	"github.com/1siamBot/hivebattle/engine/maplib"
	"github.com/1siamBot/hivebattle/engine/replay"
)

// source is what the viewer plays: a live game or a recorded one
type source interface {
	Title() string
	Map() *maplib.Map
	Turn() int
	Players() []game.PlayerResult
	MotherShip(player int) (grid.Pos, bool)
	Winner() string
	// Step advances one turn and returns false once nothing is left to play
	Step() bool
}

type liveSource struct {
	g        *game.Game
	title    string
	maxTurns int
	log      *slog.Logger
}

func newLiveSource(cfg config.Config, logger *slog.Logger) (*liveSource, error) {
	setup, err := cfg.Setup(logger)
	if err != nil {
		return nil, err
	}
	g, err := game.New(setup)
	if err != nil {
		return nil, err
	}
	title := fmt.Sprintf("%s %dx%d seed %d", setup.Layout.Name, g.Map.Width(), g.Map.Height(), cfg.Seed)
	return &liveSource{g: g, title: title, maxTurns: cfg.MaxTurns, log: logger}, nil
}

func (s *liveSource) Title() string                { return s.title }
func (s *liveSource) Map() *maplib.Map             { return s.g.Map }
func (s *liveSource) Turn() int                    { return s.g.Turn }
func (s *liveSource) Players() []game.PlayerResult { return s.g.Result().Players }

func (s *liveSource) MotherShip(player int) (grid.Pos, bool) {
	p := s.g.Player(player)
	if p == nil || p.HasLost() {
		return grid.Pos{}, false
	}
	return p.MotherShip.Pos, true
}

func (s *liveSource) Winner() string {
	if w, ok := s.g.Winner(); ok {
		return w.Name
	}
	return ""
}

func (s *liveSource) Step() bool {
	if err := s.g.Step(); err != nil {
		s.log.Error("turn failed", "turn", s.g.Turn, "err", err)
		return false
	}
	if s.g.Over() {
		res := s.g.Result()
		s.log.Info("match finished", "turns", res.Turns, "winner", res.Winner)
		return false
	}
	return s.maxTurns <= 0 || s.g.Turn <= s.maxTurns
}

type replaySource struct {
	pb    *replay.Playback
	title string
}

func newReplaySource(path string) (*replaySource, error) {
	rep, err := replay.Load(path)
	if err != nil {
		return nil, err
	}
	pb, err := replay.NewPlayback(rep)
	if err != nil {
		return nil, err
	}
	h := rep.Header
	title := fmt.Sprintf("replay %s %dx%d seed %d (%d turns)", h.Name, h.Width, h.Height, h.Seed, rep.LastTurn())
	return &replaySource{pb: pb, title: title}, nil
}

func (s *replaySource) Title() string                { return s.title }
func (s *replaySource) Map() *maplib.Map             { return s.pb.Map }
func (s *replaySource) Turn() int                    { return int(s.pb.Turn) }
func (s *replaySource) Players() []game.PlayerResult { return s.pb.Players() }

func (s *replaySource) MotherShip(player int) (grid.Pos, bool) {
	players := s.pb.Replay().Header.Players
	if player < 0 || player >= len(players) {
		return grid.Pos{}, false
	}
	p := players[player].Start
	return p, s.pb.Map.IsMotherShip(p)
}

func (s *replaySource) Winner() string {
	var alive []game.PlayerResult
	for _, p := range s.pb.Players() {
		if !p.Lost {
			alive = append(alive, p)
		}
	}
	if len(alive) == 1 && s.pb.Done() {
		return alive[0].Name
	}
	return ""
}

func (s *replaySource) Step() bool {
	if _, err := s.pb.Step(); err != nil {
		slog.Error("replay step failed", "turn", s.pb.Turn, "err", err)
		return false
	}
	return !s.pb.Done()
}
