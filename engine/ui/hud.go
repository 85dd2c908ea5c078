package ui

import (
	"fmt"
	"image/color"

	"github.com/1siamBot/hivebattle/engine/game"
	"github.com/1siamBot/hivebattle/engine/render"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
)

// Status is what the HUD shows for the current frame
type Status struct {
	Title   string
	Turn    int
	State   string
	Speed   float64 // turns per second
	Players []game.PlayerResult
	Focus   int    // player whose overlays are drawn
	Hover   string // description of the cell under the cursor
	Winner  string
}

// HUD is the heads-up display
type HUD struct {
	ScreenW, ScreenH int
	SidebarWidth     int
	TopBarHeight     int

	face text.Face
}

func NewHUD(sw, sh int) *HUD {
	return &HUD{
		ScreenW:      sw,
		ScreenH:      sh,
		SidebarWidth: 220,
		TopBarHeight: 24,
		face:         text.NewGoXFace(basicfont.Face7x13),
	}
}

// Draw renders the entire HUD
func (h *HUD) Draw(screen *ebiten.Image, s Status) {
	h.drawTopBar(screen, s)
	h.drawSidebar(screen, s)
	h.drawHelp(screen)
}

func (h *HUD) label(screen *ebiten.Image, str string, x, y int, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(clr)
	op.LineSpacing = 15
	text.Draw(screen, str, h.face, op)
}

func (h *HUD) drawTopBar(screen *ebiten.Image, s Status) {
	vector.DrawFilledRect(screen, 0, 0, float32(h.ScreenW), float32(h.TopBarHeight), color.RGBA{0, 0, 0, 180}, false)
	info := fmt.Sprintf("%s | Turn %d | %s | %.1f turns/s | FPS %.0f", s.Title, s.Turn, s.State, s.Speed, ebiten.ActualFPS())
	if s.Winner != "" {
		info += " | winner: " + s.Winner
	}
	h.label(screen, info, 8, 5, color.White)
}

func (h *HUD) drawSidebar(screen *ebiten.Image, s Status) {
	sx := h.ScreenW - h.SidebarWidth
	vector.DrawFilledRect(screen, float32(sx), float32(h.TopBarHeight), float32(h.SidebarWidth), float32(h.ScreenH-h.TopBarHeight), color.RGBA{20, 20, 40, 220}, false)

	y := h.TopBarHeight + 10
	h.label(screen, "=== PLAYERS ===", sx+10, y, color.White)
	y += 22

	for _, p := range s.Players {
		clr := render.TeamColor(p.ID)
		vector.DrawFilledRect(screen, float32(sx+10), float32(y), 10, 10, clr, false)
		if p.ID == s.Focus {
			vector.StrokeRect(screen, float32(sx+8), float32(y-2), float32(h.SidebarWidth-16), 64, 1, color.RGBA{255, 255, 0, 200}, false)
		}
		name := p.Name
		if p.Lost {
			name += " (lost)"
		}
		h.label(screen, name, sx+26, y-1, clr)
		h.label(screen, fmt.Sprintf("%s\nminerals %d\nminers %d/%d fighters %d/%d",
			p.HiveMind, p.Minerals, p.Miners, p.BuiltMiners, p.Fighters, p.BuiltFighters), sx+26, y+14, color.RGBA{200, 200, 200, 255})
		y += 72
	}

	if s.Hover != "" {
		h.label(screen, s.Hover, sx+10, h.ScreenH-40, color.RGBA{255, 255, 0, 255})
	}
}

func (h *HUD) drawHelp(screen *ebiten.Image) {
	ebitenutil.DebugPrintAt(screen,
		"[Space] Pause [N] Step [+/-] Speed [WASD/Drag] Pan [Scroll] Zoom [F] Fit\n"+
			"[G] Grid [B] BSP [R] Reach [P] Route [M] Minimap [Tab] Player [F2] Snapshot",
		8, h.ScreenH-36)
}
