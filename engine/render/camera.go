package render

import "math"

// Camera represents the viewport onto the top-down grid
type Camera struct {
	X, Y       float64 // camera center position (pixels at zoom 1)
	Zoom       float64 // zoom level (1.0 = default)
	MinZoom    float64
	MaxZoom    float64
	ScreenW    int     // viewport width in pixels
	ScreenH    int     // viewport height in pixels
	Speed      float64 // pan speed (pixels per second)
	EdgeScroll bool    // enable edge scrolling
	EdgeSize   int     // edge scroll trigger zone in pixels

	// Map bounds for clamping
	MapWidth  int
	MapHeight int
	TileSize  int
}

// NewCamera creates a camera with default settings
func NewCamera(screenW, screenH int) *Camera {
	return &Camera{
		Zoom:       1.0,
		MinZoom:    0.25,
		MaxZoom:    4.0,
		ScreenW:    screenW,
		ScreenH:    screenH,
		Speed:      500,
		EdgeScroll: false,
		EdgeSize:   20,
		TileSize:   12,
	}
}

// SetMapBounds sets the map size for camera clamping
func (c *Camera) SetMapBounds(w, h, tileSize int) {
	c.MapWidth = w
	c.MapHeight = h
	c.TileSize = tileSize
	c.clamp()
}

// Pan moves the camera by pixel delta
func (c *Camera) Pan(dx, dy float64) {
	c.X += dx / c.Zoom
	c.Y += dy / c.Zoom
	c.clamp()
}

// SetZoom sets zoom level with clamping
func (c *Camera) SetZoom(z float64) {
	c.Zoom = math.Max(c.MinZoom, math.Min(c.MaxZoom, z))
}

// ZoomAt zooms toward a screen point, keeping that point fixed
func (c *Camera) ZoomAt(delta float64, screenX, screenY int) {
	wx, wy := c.ScreenToWorld(screenX, screenY)
	c.SetZoom(c.Zoom + delta)
	wx2, wy2 := c.ScreenToWorld(screenX, screenY)
	ts := float64(c.TileSize)
	c.X += (wx - wx2) * ts
	c.Y += (wy - wy2) * ts
	c.clamp()
}

// CenterOn centers the camera on a cell coordinate
func (c *Camera) CenterOn(wx, wy float64) {
	ts := float64(c.TileSize)
	c.X = (wx + 0.5) * ts
	c.Y = (wy + 0.5) * ts
	c.clamp()
}

// FitMap picks the largest zoom at which the whole map is visible and centers it
func (c *Camera) FitMap() {
	if c.MapWidth == 0 || c.MapHeight == 0 {
		return
	}
	ts := float64(c.TileSize)
	zx := float64(c.ScreenW) / (float64(c.MapWidth) * ts)
	zy := float64(c.ScreenH) / (float64(c.MapHeight) * ts)
	c.SetZoom(math.Min(zx, zy))
	c.CenterOn(float64(c.MapWidth-1)/2, float64(c.MapHeight-1)/2)
}

// WorldToScreen converts a cell coordinate to the screen pixel of its top-left corner
func (c *Camera) WorldToScreen(wx, wy float64) (int, int) {
	sx, sy := c.worldToScreenF(wx, wy)
	return int(math.Floor(sx)), int(math.Floor(sy))
}

func (c *Camera) worldToScreenF(wx, wy float64) (float64, float64) {
	ts := float64(c.TileSize)
	sx := (wx*ts-c.X)*c.Zoom + float64(c.ScreenW)/2
	sy := (wy*ts-c.Y)*c.Zoom + float64(c.ScreenH)/2
	return sx, sy
}

// ScreenToWorld converts a screen pixel to fractional cell coordinates
func (c *Camera) ScreenToWorld(sx, sy int) (float64, float64) {
	ts := float64(c.TileSize)
	wx := ((float64(sx)-float64(c.ScreenW)/2)/c.Zoom + c.X) / ts
	wy := ((float64(sy)-float64(c.ScreenH)/2)/c.Zoom + c.Y) / ts
	return wx, wy
}

// CellAt returns the cell under a screen pixel
func (c *Camera) CellAt(sx, sy int) (int, int) {
	wx, wy := c.ScreenToWorld(sx, sy)
	return int(math.Floor(wx)), int(math.Floor(wy))
}

// CellSize returns the on-screen edge length of one cell
func (c *Camera) CellSize() float64 { return float64(c.TileSize) * c.Zoom }

// VisibleTileRange returns the range of cells visible on screen
func (c *Camera) VisibleTileRange(mapW, mapH int) (minX, minY, maxX, maxY int) {
	wx0, wy0 := c.ScreenToWorld(0, 0)
	wx1, wy1 := c.ScreenToWorld(c.ScreenW, c.ScreenH)

	minX = max(int(math.Floor(wx0)), 0)
	minY = max(int(math.Floor(wy0)), 0)
	maxX = min(int(math.Ceil(wx1)), mapW-1)
	maxY = min(int(math.Ceil(wy1)), mapH-1)
	return
}

// clamp keeps the camera center over the map
func (c *Camera) clamp() {
	if c.MapWidth == 0 || c.MapHeight == 0 {
		return
	}
	ts := float64(c.TileSize)
	c.X = math.Max(0, math.Min(c.X, float64(c.MapWidth)*ts))
	c.Y = math.Max(0, math.Min(c.Y, float64(c.MapHeight)*ts))
}
