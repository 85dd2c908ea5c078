package replay

import (
	"fmt"

	"github.com/1siamBot/hivebattle/engine/core"
	"github.com/1siamBot/hivebattle/engine/game"
	"github.com/1siamBot/hivebattle/engine/grid"
	"github.com/1siamBot/hivebattle/engine/maplib"
)

// Playback rebuilds the map turn by turn from a replay
type Playback struct {
	Map  *maplib.Map
	Turn uint64

	rep     *Replay
	next    int
	players []game.PlayerResult
}

// NewPlayback places the starting layout and motherships
func NewPlayback(rep *Replay) (*Playback, error) {
	m, err := maplib.FromLayout(rep.Header.Layout())
	if err != nil {
		return nil, err
	}
	for i, p := range rep.Header.Players {
		if _, err := m.CreateCell(p.Start, grid.MotherShip, i, core.NoEntity); err != nil {
			return nil, fmt.Errorf("mothership %d: %w", i, err)
		}
	}
	pb := &Playback{Map: m, rep: rep}
	for i, p := range rep.Header.Players {
		pb.players = append(pb.players, game.PlayerResult{ID: i, Name: p.Name, HiveMind: p.HiveMind, Minerals: p.Minerals})
	}
	return pb, nil
}

// Replay returns the replay being played
func (pb *Playback) Replay() *Replay { return pb.rep }

// Done reports whether every entry has been applied
func (pb *Playback) Done() bool { return pb.next >= len(pb.rep.Entries) }

// Step applies the entries of the next recorded turn and returns them
func (pb *Playback) Step() ([]Entry, error) {
	if pb.Done() {
		return nil, nil
	}
	turn := pb.rep.Entries[pb.next].Turn
	start := pb.next
	for pb.next < len(pb.rep.Entries) && pb.rep.Entries[pb.next].Turn == turn {
		e := pb.rep.Entries[pb.next]
		if err := pb.apply(e); err != nil {
			return nil, fmt.Errorf("turn %d entry %d (%v): %w", turn, pb.next, e.Type, err)
		}
		pb.tally(e)
		pb.next++
	}
	pb.Turn = turn
	return pb.rep.Entries[start:pb.next], nil
}

// StepTo applies whole turns until turn has been played or the replay ends
func (pb *Playback) StepTo(turn uint64) error {
	for !pb.Done() && pb.rep.Entries[pb.next].Turn <= turn {
		if _, err := pb.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Run applies everything that is left
func (pb *Playback) Run() error {
	for !pb.Done() {
		if _, err := pb.Step(); err != nil {
			return err
		}
	}
	return nil
}

func (pb *Playback) apply(e Entry) error {
	m := pb.Map
	switch e.Type {
	case core.EvtBotBuilt:
		_, err := m.CreateCell(e.To, e.Kind, e.Player, e.Agent)
		return err
	case core.EvtBotMoved:
		_, err := m.MoveBot(e.From, e.To, e.Kind)
		return err
	case core.EvtMined:
		return m.Mine(e.To)
	case core.EvtMineralPickedUp:
		return m.ClearMineral(e.To)
	case core.EvtBotDestroyed:
		return m.DestroyBot(e.From, e.Kind)
	case core.EvtMotherShipDestroyed:
		return m.DestroyCell(e.From)
	}
	return nil
}

func (pb *Playback) tally(e Entry) {
	if e.Player < 0 || e.Player >= len(pb.players) {
		return
	}
	p := &pb.players[e.Player]
	switch e.Type {
	case core.EvtBotBuilt:
		p.Minerals -= e.Amount
		if e.Kind == grid.MinerBot {
			p.BuiltMiners++
		} else {
			p.BuiltFighters++
		}
	case core.EvtMineralsUnloaded:
		p.Minerals += e.Amount
	case core.EvtPlayerLost:
		p.Lost = true
	}
}

// Players summarises every player as of the last applied turn
func (pb *Playback) Players() []game.PlayerResult {
	out := make([]game.PlayerResult, len(pb.players))
	for i, p := range pb.players {
		p.Miners = pb.Map.MinerIndex(i).Len()
		p.Fighters = pb.Map.FighterIndex(i).Len()
		out[i] = p
	}
	return out
}
