package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/1siamBot/hivebattle/engine/config"
	"github.com/1siamBot/hivebattle/engine/core"
	"github.com/1siamBot/hivebattle/engine/grid"
	"github.com/1siamBot/hivebattle/engine/input"
	"github.com/1siamBot/hivebattle/engine/maplib"
	"github.com/1siamBot/hivebattle/engine/pathfind"
	"github.com/1siamBot/hivebattle/engine/render"
	"github.com/1siamBot/hivebattle/engine/ui"
	"github.com/hajimehoshi/ebiten/v2"
)

const (
	ScreenWidth  = 1280
	ScreenHeight = 800
	TileSize     = 12

	minInterval = 5 * time.Millisecond
	maxInterval = 2 * time.Second
)

// Viewer implements ebiten.Game on top of a live match or a replay
type Viewer struct {
	src   source
	loop  *core.TurnLoop
	input *input.InputState
	view  *ui.MapView
	hud   *ui.HUD
	log   *slog.Logger

	focus          int
	hoverX, hoverY int

	// overlays are recomputed only when their inputs change
	reach      *pathfind.AccessibilityMap
	reachTurn  int
	reachFocus int
	route      []grid.Pos
	routeKey   [3]int
}

func NewViewer(src source, interval time.Duration, logger *slog.Logger) *Viewer {
	v := &Viewer{
		src:       src,
		input:     input.NewInputState(),
		view:      ui.NewMapView(ScreenWidth-220, ScreenHeight, TileSize),
		hud:       ui.NewHUD(ScreenWidth, ScreenHeight),
		log:       logger,
		reachTurn: -1,
	}
	v.loop = core.NewTurnLoop(interval, src.Step)
	v.view.Bind(src.Map())
	return v
}

func (v *Viewer) Update() error {
	v.input.Update()
	v.handleCamera()

	cx, cy := v.view.Camera.CellAt(v.input.MouseX, v.input.MouseY)
	v.hoverX, v.hoverY = cx, cy

	for _, a := range v.input.Actions() {
		switch a {
		case input.ActQuit:
			return ebiten.Termination
		case input.ActTogglePause:
			v.loop.Toggle()
		case input.ActStep:
			v.loop.Pause()
			v.loop.StepOnce()
		case input.ActFaster:
			v.loop.Interval = max(v.loop.Interval/2, minInterval)
		case input.ActSlower:
			v.loop.Interval = min(v.loop.Interval*2, maxInterval)
		case input.ActToggleGrid:
			v.view.ShowGrid = !v.view.ShowGrid
		case input.ActToggleLeaves:
			v.view.ShowLeaves = !v.view.ShowLeaves
		case input.ActToggleReach:
			v.view.ShowReach = !v.view.ShowReach
		case input.ActToggleRoute:
			v.view.ShowRoute = !v.view.ShowRoute
		case input.ActToggleMinimap:
			v.view.ShowMinimap = !v.view.ShowMinimap
		case input.ActNextPlayer:
			v.focus = (v.focus + 1) % max(len(v.src.Players()), 1)
		case input.ActFitMap:
			v.view.Camera.FitMap()
		case input.ActSnapshot:
			v.snapshot()
		}
	}

	if turns := v.loop.Update(); turns > 0 {
		v.log.Debug("turns played", "count", turns, "turn", v.src.Turn())
	}
	return nil
}

func (v *Viewer) handleCamera() {
	cam := v.view.Camera
	speed := cam.Speed / 60.0 // per frame at 60fps

	dx, dy := v.input.PanDirection()
	if dx != 0 || dy != 0 {
		cam.Pan(dx*speed, dy*speed)
	}

	if v.input.ScrollY != 0 {
		cam.ZoomAt(v.input.ScrollY*0.1*cam.Zoom, v.input.MouseX, v.input.MouseY)
	}

	// Left or middle mouse drag to pan
	if dx, dy, ok := v.input.DragDelta(); ok {
		cam.Pan(float64(-dx), float64(-dy))
	} else if v.input.MiddlePressed {
		cam.Pan(float64(-v.input.MouseDX), float64(-v.input.MouseDY))
	}
}

func (v *Viewer) refreshOverlays(m *maplib.Map) {
	start, ok := v.src.MotherShip(v.focus)
	if !ok {
		v.reach, v.route = nil, nil
		return
	}
	if v.view.ShowReach && (v.reachTurn != v.src.Turn() || v.reachFocus != v.focus) {
		v.reach = pathfind.NewAccessibilityMap(m, start, grid.ClassMiner, false)
		v.reachTurn, v.reachFocus = v.src.Turn(), v.focus
	}
	key := [3]int{v.src.Turn(), grid.P(v.hoverX, v.hoverY).ID(), v.focus}
	if v.view.ShowRoute && key != v.routeKey {
		v.routeKey = key
		v.route = nil
		if m.InBounds(v.hoverX, v.hoverY) {
			route, err := pathfind.FindRoute(m, start, grid.P(v.hoverX, v.hoverY), grid.ClassMiner, true)
			if err != nil {
				v.log.Debug("no route", "from", start, "to", grid.P(v.hoverX, v.hoverY), "err", err)
			}
			v.route = route
		}
	}
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(render.BackgroundColor)
	m := v.src.Map()
	v.refreshOverlays(m)

	v.view.DrawMap(screen, m)
	if v.view.ShowReach && v.reach != nil {
		v.view.DrawReach(screen, v.reach)
	}
	if v.view.ShowGrid {
		v.view.DrawGrid(screen, m)
	}
	if v.view.ShowLeaves {
		v.view.DrawLeaves(screen, m.Minerals())
	}
	if v.view.ShowRoute {
		v.view.DrawRoute(screen, v.route)
	}
	v.view.DrawHover(screen, m, v.hoverX, v.hoverY)
	if v.view.ShowMinimap {
		v.view.DrawMinimap(screen, m, ScreenWidth-220-170, ScreenHeight-210, 160)
	}

	v.hud.Draw(screen, ui.Status{
		Title:   v.src.Title(),
		Turn:    v.src.Turn(),
		State:   stateName(v.loop.State),
		Speed:   float64(time.Second) / float64(v.loop.Interval),
		Players: v.src.Players(),
		Focus:   v.focus,
		Hover:   v.describe(m),
		Winner:  v.src.Winner(),
	})
}

func (v *Viewer) describe(m *maplib.Map) string {
	p := grid.P(v.hoverX, v.hoverY)
	if !m.InBounds(p.X, p.Y) {
		return ""
	}
	s := fmt.Sprintf("%v %v", p, m.GroundAt(p))
	if o := m.GroundOccupant(p); o != nil && o.Kind == grid.MotherShip {
		s += fmt.Sprintf(" p%d", o.Team)
	}
	if o := m.FighterAt(p); o != nil {
		s += fmt.Sprintf(" +fighter p%d", o.Team)
	}
	if o := m.MinerAt(p); o != nil {
		s += fmt.Sprintf(" +miner p%d", o.Team)
	}
	return s
}

func (v *Viewer) snapshot() {
	opt := render.SnapshotOptions{Scale: 8}
	if v.view.ShowLeaves {
		opt.Partition = v.src.Map().Minerals()
	}
	if v.view.ShowRoute {
		opt.Route = v.route
	}
	path := fmt.Sprintf("hivebattle-turn-%04d.png", v.src.Turn())
	if err := render.SavePNG(path, v.src.Map(), opt); err != nil {
		v.log.Error("snapshot failed", "err", err)
		return
	}
	v.log.Info("snapshot written", "path", path)
}

func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}

func stateName(s core.LoopState) string {
	switch s {
	case core.StatePlaying:
		return "playing"
	case core.StateGameOver:
		return "game over"
	}
	return "paused"
}

func main() {
	cfgPath := flag.String("config", "", "match config (YAML); built-in defaults when empty")
	replayPath := flag.String("replay", "", "play back a replay file instead of a live match")
	intervalMS := flag.Int("interval", 0, "milliseconds per turn (overrides turn_interval_ms)")
	logLevel := flag.String("log-level", "", "debug, info, warn or error")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			fmt.Fprintln(os.Stderr, "config:", err)
			os.Exit(2)
		}
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *intervalMS > 0 {
		cfg.TurnIntervalMS = *intervalMS
	}
	logger := cfg.Log.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	var (
		src source
		err error
	)
	if *replayPath != "" {
		src, err = newReplaySource(*replayPath)
	} else {
		src, err = newLiveSource(cfg, logger)
	}
	if err != nil {
		logger.Error("viewer setup failed", "err", err)
		os.Exit(1)
	}

	ebiten.SetWindowSize(ScreenWidth, ScreenHeight)
	ebiten.SetWindowTitle("hivebattle - " + src.Title())
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetVsyncEnabled(true)
	ebiten.SetScreenClearedEveryFrame(true)

	interval := time.Duration(cfg.TurnIntervalMS) * time.Millisecond
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	viewer := NewViewer(src, interval, logger)
	viewer.loop.Play()

	if err := ebiten.RunGame(viewer); err != nil {
		log.Fatal(err)
	}
}
