package replay

import (
	"encoding/binary"
	"io"

	"github.com/1siamBot/hivebattle/engine/core"
	"github.com/1siamBot/hivebattle/engine/grid"
)

// Entry is one recorded game event
type Entry struct {
	Turn   uint64
	Type   core.EventType
	Player int
	Agent  core.EntityID
	Kind   grid.CellType
	From   grid.Pos
	To     grid.Pos
	Amount int
}

// FromEvent flattens a bus event. Events without an Action payload keep
// only their type and turn.
func FromEvent(e core.Event) Entry {
	en := Entry{Turn: e.Turn, Type: e.Type}
	if a, ok := e.Payload.(core.Action); ok {
		en.Player = a.Player
		en.Agent = a.Agent
		en.Kind = a.Kind
		en.From = a.From
		en.To = a.To
		en.Amount = a.Amount
	}
	return en
}

// wireEntry is the fixed-size little endian record
type wireEntry struct {
	Turn         uint64
	Type         uint16
	Player       int32
	Agent        uint64
	Kind         uint8
	FromX, FromY int32
	ToX, ToY     int32
	Amount       int32
}

// Encode writes the entry in binary
func (e *Entry) Encode(w io.Writer) error {
	return binary.Write(w, binary.LittleEndian, wireEntry{
		Turn:   e.Turn,
		Type:   uint16(e.Type),
		Player: int32(e.Player),
		Agent:  uint64(e.Agent),
		Kind:   uint8(e.Kind),
		FromX:  int32(e.From.X),
		FromY:  int32(e.From.Y),
		ToX:    int32(e.To.X),
		ToY:    int32(e.To.Y),
		Amount: int32(e.Amount),
	})
}

// Decode reads an entry. io.EOF means the stream ended cleanly between entries.
func (e *Entry) Decode(r io.Reader) error {
	var w wireEntry
	if err := binary.Read(r, binary.LittleEndian, &w); err != nil {
		return err
	}
	*e = Entry{
		Turn:   w.Turn,
		Type:   core.EventType(w.Type),
		Player: int(w.Player),
		Agent:  core.EntityID(w.Agent),
		Kind:   grid.CellType(w.Kind),
		From:   grid.P(int(w.FromX), int(w.FromY)),
		To:     grid.P(int(w.ToX), int(w.ToY)),
		Amount: int(w.Amount),
	}
	return nil
}
