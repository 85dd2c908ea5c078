package render

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"github.com/1siamBot/hivebattle/engine/bsp"
	"github.com/1siamBot/hivebattle/engine/grid"
	"github.com/1siamBot/hivebattle/engine/maplib"
	xdraw "golang.org/x/image/draw"
)

// SnapshotOptions control what a snapshot draws on top of the map
type SnapshotOptions struct {
	Scale     int        // pixels per cell, at least 1
	Partition *bsp.Tree  // outline the leaves of this index when set
	Route     []grid.Pos // highlight a path
}

// Image draws the map at one pixel per cell
func Image(m *maplib.Map) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, m.Width(), m.Height()))
	Paint(img, m)
	return img
}

// Paint redraws every cell of m into img, which must be at least map sized
func Paint(img *image.RGBA, m *maplib.Map) {
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			img.SetRGBA(x, y, CellColor(m, grid.P(x, y)))
		}
	}
}

// Snapshot draws the map scaled up with nearest-neighbour filtering, then the
// requested overlays at the scaled resolution
func Snapshot(m *maplib.Map, opt SnapshotOptions) *image.RGBA {
	scale := max(opt.Scale, 1)
	src := Image(m)
	for _, p := range opt.Route {
		if m.InBounds(p.X, p.Y) {
			src.SetRGBA(p.X, p.Y, RouteColor)
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, m.Width()*scale, m.Height()*scale))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	if opt.Partition != nil && scale > 1 {
		for _, b := range opt.Partition.Leaves() {
			outline(dst, b, scale, LeafColor)
		}
	}
	return dst
}

// outline strokes the border of a leaf, blending over what is below
func outline(img *image.RGBA, b bsp.Bounds, scale int, c color.Color) {
	x0, y0 := b.XMin*scale, b.YMin*scale
	x1, y1 := (b.XMax+1)*scale-1, (b.YMax+1)*scale-1
	src := image.NewUniform(c)
	for _, r := range []image.Rectangle{
		image.Rect(x0, y0, x1+1, y0+1),
		image.Rect(x0, y1, x1+1, y1+1),
		image.Rect(x0, y0, x0+1, y1+1),
		image.Rect(x1, y0, x1+1, y1+1),
	} {
		xdraw.Draw(img, r, src, image.Point{}, xdraw.Over)
	}
}

// WritePNG encodes a snapshot as PNG
func WritePNG(w io.Writer, m *maplib.Map, opt SnapshotOptions) error {
	return png.Encode(w, Snapshot(m, opt))
}

// SavePNG writes a snapshot to a file
func SavePNG(path string, m *maplib.Map, opt SnapshotOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	bw := bufio.NewWriter(f)
	if err := WritePNG(bw, m, opt); err != nil {
		f.Close()
		return fmt.Errorf("encode snapshot %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return f.Close()
}
