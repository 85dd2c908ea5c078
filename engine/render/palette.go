// Package render turns a map into pixels: camera math, colors and PNG
// snapshots. It has no window or GPU dependency; the ebiten drawing lives in
// engine/ui.
package render

import (
	"image/color"

	"github.com/1siamBot/hivebattle/engine/bsp"
	"github.com/1siamBot/hivebattle/engine/grid"
	"github.com/1siamBot/hivebattle/engine/maplib"
)

// CellColors maps ground cell types to colors
var CellColors = map[grid.CellType]color.RGBA{
	grid.Empty:   {34, 30, 28, 255},   // dug out
	grid.Stone:   {110, 104, 96, 255}, // gray
	grid.Deposit: {150, 120, 50, 255}, // ochre
	grid.Mineral: {255, 215, 0, 255},  // gold
	grid.Bedrock: {45, 45, 60, 255},   // slate
}

// TeamColors is indexed by team id, wrapping for larger ids
var TeamColors = []color.RGBA{
	{220, 60, 60, 255},  // red
	{60, 120, 255, 255}, // blue
	{60, 200, 90, 255},  // green
	{230, 140, 30, 255}, // orange
	{170, 80, 220, 255}, // purple
	{40, 200, 200, 255}, // teal
}

var (
	BackgroundColor = color.RGBA{20, 20, 30, 255}
	UnknownColor    = color.RGBA{128, 128, 128, 255}
	RouteColor      = color.RGBA{255, 255, 255, 255}
	LeafColor       = color.NRGBA{0, 255, 255, 90}
	ReachColor      = color.NRGBA{0, 255, 0, 60}
)

// TeamColor returns the color of a team; NoTeam gets UnknownColor
func TeamColor(team int) color.RGBA {
	if team < 0 {
		return UnknownColor
	}
	return TeamColors[team%len(TeamColors)]
}

// Shade scales the RGB channels of c by f, clamped to 255
func Shade(c color.RGBA, f float64) color.RGBA {
	ch := func(v uint8) uint8 {
		s := float64(v) * f
		if s > 255 {
			return 255
		}
		return uint8(s)
	}
	return color.RGBA{ch(c.R), ch(c.G), ch(c.B), c.A}
}

// GroundColor returns the color of the ground layer at p
func GroundColor(m *maplib.Map, p grid.Pos) color.RGBA {
	if o := m.GroundOccupant(p); o != nil && o.Kind == grid.MotherShip {
		return Shade(TeamColor(o.Team), 0.6)
	}
	if c, ok := CellColors[m.GroundAt(p)]; ok {
		return c
	}
	return UnknownColor
}

// CellColor returns the color of the topmost layer at p. Fighters are drawn
// in full team color, miners in a lighter shade.
func CellColor(m *maplib.Map, p grid.Pos) color.RGBA {
	if o := m.FighterAt(p); o != nil {
		return TeamColor(o.Team)
	}
	if o := m.MinerAt(p); o != nil {
		return Shade(TeamColor(o.Team), 1.4)
	}
	return GroundColor(m, p)
}

// BotAt returns the bot drawn at p, preferring the fighter
func BotAt(m *maplib.Map, p grid.Pos) (*bsp.Occupant, bool) {
	if o := m.FighterAt(p); o != nil {
		return o, true
	}
	if o := m.MinerAt(p); o != nil {
		return o, true
	}
	return nil, false
}
