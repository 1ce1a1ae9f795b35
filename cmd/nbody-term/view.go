package main

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"

	"nbody-sandbox/pkg/audio"
	"nbody-sandbox/pkg/physics"
	"nbody-sandbox/pkg/simulation"
)

const (
	trailStep = 0.1 // seconds per +/- press
	panCells  = 4
)

// viewer draws the simulation on a tcell screen. Terminal cells are about
// twice as tall as wide, so a row covers twice the world units of a column.
type viewer struct {
	screen        tcell.Screen
	width, height int

	sim        *simulation.Simulator
	configPath string
	chime      *audio.Chime

	scale  float64
	cam    physics.Vec2 // world position of the top-left cell
	paused bool

	// shown on the status line until the next successful reset
	notice string
}

func newViewer(sim *simulation.Simulator, configPath string, scale float64, chime *audio.Chime) (*viewer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.HideCursor()

	v := &viewer{
		screen:     screen,
		sim:        sim,
		configPath: configPath,
		chime:      chime,
		scale:      scale,
	}
	v.width, v.height = screen.Size()
	return v, nil
}

// project maps a world position to a terminal cell.
func project(p, cam physics.Vec2, scale float64) (int, int) {
	x := (p.X - cam.X) / scale
	y := (p.Y - cam.Y) / (scale * 2)
	return int(math.Floor(x)), int(math.Floor(y))
}

func styleFor(c color.RGBA) tcell.Style {
	return tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
}

func glyphFor(b physics.Body, scale float64) rune {
	switch {
	case b.Fragment:
		return '·'
	case float64(b.Radius) >= scale:
		return '●'
	}
	return 'o'
}

func (v *viewer) inBounds(x, y int) bool {
	return x >= 0 && x < v.width && y >= 1 && y < v.height
}

func (v *viewer) draw() {
	v.screen.Clear()

	trail := tcell.StyleDefault.Foreground(tcell.NewRGBColor(90, 90, 90))
	bodies := v.sim.Bodies()
	for _, b := range bodies {
		for _, p := range b.History {
			x, y := project(p, v.cam, v.scale)
			if v.inBounds(x, y) {
				v.screen.SetContent(x, y, '.', nil, trail)
			}
		}
	}
	if v.sim.Config().Fragmentation {
		roche := tcell.StyleDefault.Foreground(tcell.NewRGBColor(150, 150, 150))
		for _, seg := range simulation.RocheMarkers(bodies) {
			x0, y := project(seg.From, v.cam, v.scale)
			x1, _ := project(seg.To, v.cam, v.scale)
			for x := x0 + 1; x <= x1; x++ {
				if v.inBounds(x, y) {
					v.screen.SetContent(x, y, '-', nil, roche)
				}
			}
		}
	}
	for _, b := range bodies {
		cx, cy := project(b.Pos, v.cam, v.scale)
		style := styleFor(b.Color)
		glyph := glyphFor(b, v.scale)
		// bodies wider than a cell fill their footprint
		rx := int(float64(b.Radius) / v.scale)
		ry := int(float64(b.Radius) / (v.scale * 2))
		for dy := -ry; dy <= ry; dy++ {
			for dx := -rx; dx <= rx; dx++ {
				if rx > 0 && float64(dx*dx)/float64(rx*rx)+float64(dy*dy)/math.Max(1, float64(ry*ry)) > 1 {
					continue
				}
				if v.inBounds(cx+dx, cy+dy) {
					v.screen.SetContent(cx+dx, cy+dy, glyph, nil, style)
				}
			}
		}
	}

	status := v.statusLine()
	header := tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true)
	for i, r := range []rune(status) {
		if i >= v.width {
			break
		}
		v.screen.SetContent(i, 0, r, nil, header)
	}

	v.screen.Show()
}

func (v *viewer) statusLine() string {
	status := fmt.Sprintf(" %s | step %d | bodies %d | mass %.3e | trail %s | frag %v | p pause, +/- trail, n forever, f frag, r reset, arrows pan, q quit",
		v.sim.Name, v.sim.Steps(), v.sim.Len(), v.sim.TotalMass(), v.sim.Trail(), v.sim.Config().Fragmentation)
	if v.paused {
		status = " [paused]" + status
	}
	if v.notice != "" {
		status = " " + v.notice + " |" + status
	}
	return status
}

func (v *viewer) step() {
	v.sim.Step()
	v.chime.Play(v.sim.Events())
}

// handleInput returns false when the viewer should exit.
func (v *viewer) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyLeft:
			v.cam.X -= panCells * v.scale
		case tcell.KeyRight:
			v.cam.X += panCells * v.scale
		case tcell.KeyUp:
			v.cam.Y -= panCells * v.scale * 2
		case tcell.KeyDown:
			v.cam.Y += panCells * v.scale * 2
		case tcell.KeyRune:
			return v.handleRune(ev.Rune())
		}

	case *tcell.EventResize:
		v.width, v.height = v.screen.Size()
		v.screen.Sync()
	}
	return true
}

func (v *viewer) handleRune(r rune) bool {
	switch r {
	case 'q':
		return false
	case 'p':
		v.paused = !v.paused
	case ' ':
		if v.paused {
			v.step()
		}
	case '+', '=':
		v.sim.SetTrail(v.sim.Trail().Adjust(trailStep))
	case '-':
		v.sim.SetTrail(v.sim.Trail().Adjust(-trailStep))
	case 'n':
		p := v.sim.Trail()
		p.Forever = !p.Forever
		v.sim.SetTrail(p)
	case 'f':
		v.sim.SetFragmentation(!v.sim.Config().Fragmentation)
	case 'r':
		v.reset()
	}
	return true
}

// reset reloads the environment file, keeping the trail setting. Errors go
// to the status line; the terminal is owned by tcell while the viewer runs.
func (v *viewer) reset() {
	sim, err := simulation.LoadConfig(v.configPath)
	if err != nil {
		v.notice = fmt.Sprintf("reset failed: %v", err)
		return
	}
	sim.SetTrail(v.sim.Trail())
	v.sim = sim
	v.cam = physics.Vec2{}
	v.notice = ""
}

func (v *viewer) run() {
	ticker := time.NewTicker(time.Second / time.Duration(v.sim.Config().FPS))
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			eventChan <- v.screen.PollEvent()
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			if ev == nil {
				return
			}
			if !v.handleInput(ev) {
				return
			}

		case <-ticker.C:
			if !v.paused {
				v.step()
			}
			v.draw()
		}
	}
}

func (v *viewer) cleanup() {
	v.screen.Fini()
}
