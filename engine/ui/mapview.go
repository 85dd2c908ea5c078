package ui

import (
	"image"
	"image/color"

	"github.com/1siamBot/hivebattle/engine/bsp"
	"github.com/1siamBot/hivebattle/engine/grid"
	"github.com/1siamBot/hivebattle/engine/maplib"
	"github.com/1siamBot/hivebattle/engine/pathfind"
	"github.com/1siamBot/hivebattle/engine/render"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// MapView draws a top-down map with optional debug overlays
type MapView struct {
	Camera *render.Camera

	ShowGrid    bool
	ShowLeaves  bool
	ShowReach   bool
	ShowRoute   bool
	ShowMinimap bool

	// one pixel per cell, refreshed every frame and scaled by the camera
	pixels *image.RGBA
	cells  *ebiten.Image
}

// NewMapView creates a view with its own camera
func NewMapView(screenW, screenH, tileSize int) *MapView {
	cam := render.NewCamera(screenW, screenH)
	cam.TileSize = tileSize
	return &MapView{Camera: cam, ShowMinimap: true}
}

// Bind fits the camera to a map, reallocating the cell image on size change
func (v *MapView) Bind(m *maplib.Map) {
	v.Camera.SetMapBounds(m.Width(), m.Height(), v.Camera.TileSize)
	v.Camera.FitMap()
	v.pixels = nil
}

func (v *MapView) refresh(m *maplib.Map) {
	if v.pixels == nil || v.pixels.Bounds().Dx() != m.Width() || v.pixels.Bounds().Dy() != m.Height() {
		v.pixels = image.NewRGBA(image.Rect(0, 0, m.Width(), m.Height()))
		v.cells = ebiten.NewImage(m.Width(), m.Height())
	}
	render.Paint(v.pixels, m)
	v.cells.WritePixels(v.pixels.Pix)
}

// DrawMap renders every cell, then marks bots when cells are large enough
func (v *MapView) DrawMap(screen *ebiten.Image, m *maplib.Map) {
	v.refresh(m)

	cs := v.Camera.CellSize()
	ox, oy := v.Camera.WorldToScreen(0, 0)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(cs, cs)
	op.GeoM.Translate(float64(ox), float64(oy))
	screen.DrawImage(v.cells, op)

	if cs < 6 {
		return
	}
	minX, minY, maxX, maxY := v.Camera.VisibleTileRange(m.Width(), m.Height())
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			o, ok := render.BotAt(m, grid.P(x, y))
			if !ok {
				continue
			}
			cx, cy := v.center(x, y)
			r := float32(cs) * 0.4
			if o.Kind == grid.MinerBot {
				r = float32(cs) * 0.3
			}
			vector.DrawFilledCircle(screen, cx, cy, r, render.TeamColor(o.Team), false)
			vector.StrokeCircle(screen, cx, cy, r, 1, color.RGBA{255, 255, 255, 180}, false)
			// a miner sharing the cell with a fighter
			if mo := m.MinerAt(grid.P(x, y)); mo != nil && o.Kind == grid.FighterBot {
				vector.DrawFilledCircle(screen, cx, cy, r*0.4, render.Shade(render.TeamColor(mo.Team), 1.4), false)
			}
		}
	}
}

func (v *MapView) center(x, y int) (float32, float32) {
	sx, sy := v.Camera.WorldToScreen(float64(x), float64(y))
	h := float32(v.Camera.CellSize()) / 2
	return float32(sx) + h, float32(sy) + h
}

// DrawGrid draws cell borders over the visible range
func (v *MapView) DrawGrid(screen *ebiten.Image, m *maplib.Map) {
	cs := v.Camera.CellSize()
	if cs < 4 {
		return
	}
	minX, minY, maxX, maxY := v.Camera.VisibleTileRange(m.Width(), m.Height())
	gridColor := color.RGBA{255, 255, 255, 30}

	x0, y0 := v.Camera.WorldToScreen(float64(minX), float64(minY))
	x1, y1 := v.Camera.WorldToScreen(float64(maxX+1), float64(maxY+1))
	for x := minX; x <= maxX+1; x++ {
		sx, _ := v.Camera.WorldToScreen(float64(x), 0)
		vector.StrokeLine(screen, float32(sx), float32(y0), float32(sx), float32(y1), 1, gridColor, false)
	}
	for y := minY; y <= maxY+1; y++ {
		_, sy := v.Camera.WorldToScreen(0, float64(y))
		vector.StrokeLine(screen, float32(x0), float32(sy), float32(x1), float32(sy), 1, gridColor, false)
	}
}

// DrawLeaves outlines the leaf partitions of a spatial index
func (v *MapView) DrawLeaves(screen *ebiten.Image, t *bsp.Tree) {
	for _, b := range t.Leaves() {
		x0, y0 := v.Camera.WorldToScreen(float64(b.XMin), float64(b.YMin))
		x1, y1 := v.Camera.WorldToScreen(float64(b.XMax+1), float64(b.YMax+1))
		vector.StrokeRect(screen, float32(x0), float32(y0), float32(x1-x0), float32(y1-y0), 1, render.LeafColor, false)
	}
}

// DrawReach tints every visible cell the accessibility map can reach
func (v *MapView) DrawReach(screen *ebiten.Image, acc *pathfind.AccessibilityMap) {
	w, h := acc.Size()
	cs := float32(v.Camera.CellSize())
	minX, minY, maxX, maxY := v.Camera.VisibleTileRange(w, h)
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if !acc.IsReachable(grid.P(x, y)) {
				continue
			}
			sx, sy := v.Camera.WorldToScreen(float64(x), float64(y))
			vector.DrawFilledRect(screen, float32(sx), float32(sy), cs, cs, render.ReachColor, false)
		}
	}
}

// DrawRoute connects the centers of a path
func (v *MapView) DrawRoute(screen *ebiten.Image, route []grid.Pos) {
	for i := 1; i < len(route); i++ {
		ax, ay := v.center(route[i-1].X, route[i-1].Y)
		bx, by := v.center(route[i].X, route[i].Y)
		vector.StrokeLine(screen, ax, ay, bx, by, 2, render.RouteColor, false)
	}
	if len(route) > 0 {
		end := route[len(route)-1]
		cx, cy := v.center(end.X, end.Y)
		vector.DrawFilledCircle(screen, cx, cy, 3, render.RouteColor, false)
	}
}

// DrawHover highlights one cell
func (v *MapView) DrawHover(screen *ebiten.Image, m *maplib.Map, x, y int) {
	if !m.InBounds(x, y) {
		return
	}
	sx, sy := v.Camera.WorldToScreen(float64(x), float64(y))
	cs := float32(v.Camera.CellSize())
	vector.StrokeRect(screen, float32(sx), float32(sy), cs, cs, 2, color.RGBA{255, 255, 0, 160}, false)
}

// DrawMinimap draws the whole map in a box with the viewport outlined
func (v *MapView) DrawMinimap(screen *ebiten.Image, m *maplib.Map, posX, posY, size int) {
	if v.cells == nil {
		return
	}
	scale := float64(size) / float64(max(m.Width(), m.Height()))
	w := float32(float64(m.Width()) * scale)
	h := float32(float64(m.Height()) * scale)
	vector.DrawFilledRect(screen, float32(posX)-2, float32(posY)-2, w+4, h+4, color.RGBA{0, 0, 0, 180}, false)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(float64(posX), float64(posY))
	screen.DrawImage(v.cells, op)

	// Camera viewport indicator
	wx0, wy0 := v.Camera.ScreenToWorld(0, 0)
	wx1, wy1 := v.Camera.ScreenToWorld(v.Camera.ScreenW, v.Camera.ScreenH)
	vx0 := float32(posX) + float32(max(wx0, 0)*scale)
	vy0 := float32(posY) + float32(max(wy0, 0)*scale)
	vx1 := float32(posX) + min(float32(wx1*scale), w)
	vy1 := float32(posY) + min(float32(wy1*scale), h)
	vector.StrokeRect(screen, vx0, vy0, vx1-vx0, vy1-vy0, 1, color.RGBA{255, 255, 255, 200}, false)
}
