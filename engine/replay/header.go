package replay

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/1siamBot/hivebattle/engine/game"
	"github.com/1siamBot/hivebattle/engine/grid"
	"github.com/1siamBot/hivebattle/engine/maplib"
)

const (
	Magic   = "HVBR"
	Version = 1
)

var ErrBadMagic = errors.New("not a replay file")

// PlayerInfo identifies a participant
type PlayerInfo struct {
	Name     string
	HiveMind string
	Start    grid.Pos
	Minerals int // stored at the start
}

// Header holds what is needed to rebuild the starting position
type Header struct {
	Version uint16
	Seed    int64
	Name    string
	Width   int
	Height  int
	Cells   []grid.CellType
	Players []PlayerInfo
}

// NewHeader captures g before its first step
func NewHeader(g *game.Game, name string, seed int64) Header {
	l := g.Map.Layout(name)
	h := Header{
		Version: Version,
		Seed:    seed,
		Name:    name,
		Width:   l.Width,
		Height:  l.Height,
		Cells:   l.Cells,
	}
	for _, p := range g.Players {
		h.Players = append(h.Players, PlayerInfo{
			Name:     p.Name,
			HiveMind: p.HiveMindName,
			Start:    p.MotherShip.Pos,
			Minerals: p.StoredMinerals,
		})
	}
	return h
}

// Layout rebuilds the starting layout
func (h *Header) Layout() *maplib.Layout {
	l := maplib.NewLayout(h.Name, h.Width, h.Height)
	copy(l.Cells, h.Cells)
	for i, p := range h.Players {
		l.StartPositions = append(l.StartPositions, maplib.StartPos{PlayerSlot: i, X: p.Start.X, Y: p.Start.Y})
	}
	l.MaxPlayers = max(2, len(h.Players))
	return l
}

func (h *Header) Encode(w io.Writer) error {
	if _, err := io.WriteString(w, Magic); err != nil {
		return err
	}
	fixed := []any{h.Version, h.Seed, int32(h.Width), int32(h.Height)}
	for _, v := range fixed {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	if err := writeString(w, h.Name); err != nil {
		return err
	}
	cells := make([]byte, len(h.Cells))
	for i, c := range h.Cells {
		cells[i] = byte(c)
	}
	if _, err := w.Write(cells); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(h.Players))); err != nil {
		return err
	}
	for _, p := range h.Players {
		if err := writeString(w, p.Name); err != nil {
			return err
		}
		if err := writeString(w, p.HiveMind); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, [3]int32{int32(p.Start.X), int32(p.Start.Y), int32(p.Minerals)}); err != nil {
			return err
		}
	}
	return nil
}

func (h *Header) Decode(r io.Reader) error {
	magic := make([]byte, len(Magic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return err
	}
	if string(magic) != Magic {
		return ErrBadMagic
	}
	var width, height int32
	for _, v := range []any{&h.Version, &h.Seed, &width, &height} {
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	if h.Version != Version {
		return fmt.Errorf("replay version %d, want %d", h.Version, Version)
	}
	if width <= 0 || height <= 0 || width >= grid.PackFactor || height >= grid.PackFactor {
		return fmt.Errorf("replay map size %dx%d", width, height)
	}
	h.Width, h.Height = int(width), int(height)
	var err error
	if h.Name, err = readString(r); err != nil {
		return err
	}
	cells := make([]byte, h.Width*h.Height)
	if _, err := io.ReadFull(r, cells); err != nil {
		return err
	}
	h.Cells = make([]grid.CellType, len(cells))
	for i, c := range cells {
		h.Cells[i] = grid.CellType(c)
	}
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return err
	}
	h.Players = make([]PlayerInfo, n)
	for i := range h.Players {
		p := &h.Players[i]
		if p.Name, err = readString(r); err != nil {
			return err
		}
		if p.HiveMind, err = readString(r); err != nil {
			return err
		}
		var fixed [3]int32
		if err := binary.Read(r, binary.LittleEndian, &fixed); err != nil {
			return err
		}
		p.Start = grid.P(int(fixed[0]), int(fixed[1]))
		p.Minerals = int(fixed[2])
	}
	return nil
}

func writeString(w io.Writer, s string) error {
	if len(s) > 0xffff {
		s = s[:0xffff]
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
