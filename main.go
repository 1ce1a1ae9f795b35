package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"math"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"

	"golang.org/x/image/font/basicfont"

	"nbody-sandbox/pkg/audio"
	"nbody-sandbox/pkg/physics"
	"nbody-sandbox/pkg/simulation"
)

const (
	screenWidth  = 1360
	screenHeight = 768

	// UI
	uiBtnW   = 100
	uiBtnH   = 28
	uiBtnPad = 12

	trailStep = 0.1 // seconds per +/- press
)

var (
	trailColor = color.RGBA{255, 255, 255, 255}
	rocheColor = color.RGBA{150, 150, 150, 255}
)

// Game ---
type Game struct {
	sim    *simulation.Simulator
	chime  *audio.Chime
	paused bool

	// camera offset, world -> screen
	cam       physics.Vec2
	panning   bool
	panMouse  [2]int
	panCamRef physics.Vec2

	shortcutsVisible bool
	configPath       string
	resetModalOpen   bool
}

type button struct {
	label    string
	x, y     int
	active   bool
	disabled bool
}

func (b button) contains(mx, my int) bool {
	return mx >= b.x && mx <= b.x+uiBtnW && my >= b.y && my <= b.y+uiBtnH
}

func (b button) fill(hover bool) (bg, fg color.RGBA) {
	switch {
	case b.disabled:
		return color.RGBA{60, 60, 60, 160}, color.RGBA{160, 160, 160, 200}
	case b.active && hover:
		return color.RGBA{100, 190, 100, 240}, color.RGBA{240, 240, 240, 255}
	case b.active:
		return color.RGBA{60, 120, 60, 220}, color.RGBA{240, 240, 240, 255}
	case hover:
		return color.RGBA{90, 90, 90, 230}, color.RGBA{240, 240, 240, 255}
	}
	return color.RGBA{20, 20, 20, 200}, color.RGBA{240, 240, 240, 255}
}

// draw renders the button onto dst at its own position.
func (b button) draw(dst *ebiten.Image, hover bool) {
	bg, fg := b.fill(hover)
	img := ebiten.NewImage(uiBtnW, uiBtnH)
	img.Fill(bg)
	inner := ebiten.NewImage(uiBtnW-2, uiBtnH-2)
	inner.Fill(color.RGBA{40, 40, 40, 120})
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(1, 1)
	img.DrawImage(inner, op)
	text.Draw(img, b.label, basicfont.Face7x13, (uiBtnW-len(b.label)*7)/2, (uiBtnH+8)/2, fg)

	op = &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(b.x), float64(b.y))
	dst.DrawImage(img, op)
}

func (g *Game) buttons() []button {
	pauseLabel := "Pause"
	if g.paused {
		pauseLabel = "Resume"
	}
	labels := []button{
		{label: pauseLabel, active: g.paused},
		{label: "Step", disabled: !g.paused},
		{label: "Frag", active: g.sim.Config().Fragmentation},
		{label: "Reset"},
		{label: "Quit"},
	}
	x := screenWidth - uiBtnPad - uiBtnW
	for i := range labels {
		labels[i].x = x
		labels[i].y = uiBtnPad
		x -= uiBtnPad + uiBtnW
	}
	return labels
}

// Update ---
func (g *Game) Update() error {
	if g.resetModalOpen {
		return g.updateResetModal()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) && g.paused {
		g.advanceOneStep()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.shortcutsVisible = !g.shortcutsVisible
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		g.toggleFragmentation()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.resetModalOpen = true
	}

	// trail length
	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadAdd) {
		g.sim.SetTrail(g.sim.Trail().Adjust(trailStep))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadSubtract) {
		g.sim.SetTrail(g.sim.Trail().Adjust(-trailStep))
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		p := g.sim.Trail()
		p.Forever = !p.Forever
		g.sim.SetTrail(p)
	}

	g.updatePan()

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		mx, my := ebiten.CursorPosition()
		for _, b := range g.buttons() {
			if !b.contains(mx, my) || b.disabled {
				continue
			}
			switch b.label {
			case "Pause", "Resume":
				g.paused = !g.paused
			case "Step":
				g.advanceOneStep()
			case "Frag":
				g.toggleFragmentation()
			case "Reset":
				g.resetModalOpen = true
			case "Quit":
				return ebiten.Termination
			}
			return nil
		}
	}

	if g.paused {
		return nil
	}
	g.advanceOneStep()
	return nil
}

// right mouse button drags the camera
func (g *Game) updatePan() {
	mx, my := ebiten.CursorPosition()
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		g.panning = true
		g.panMouse = [2]int{mx, my}
		g.panCamRef = g.cam
	}
	if g.panning && !ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) {
		g.panning = false
	}
	if g.panning {
		g.cam = g.panCamRef.Add(physics.Vec2{
			X: float64(mx - g.panMouse[0]),
			Y: float64(my - g.panMouse[1]),
		})
	}
}

func (g *Game) updateResetModal() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyY) || inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		if err := g.resetSimulation(); err != nil {
			log.Printf("Reset failed: %v", err)
		}
		return nil
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.resetModalOpen = false
		return nil
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		mx, my := ebiten.CursorPosition()
		yes, _ := resetModalButtons(true)
		if yes.contains(mx, my) {
			if err := g.resetSimulation(); err != nil {
				log.Printf("Reset failed: %v", err)
			}
			return nil
		}
		// No, or a click outside the dialog
		g.resetModalOpen = false
	}
	return nil
}

func (g *Game) toggleFragmentation() {
	on := !g.sim.Config().Fragmentation
	g.sim.SetFragmentation(on)
	log.Printf("Fragmentation %v", on)
}

// advanceOneStep ---
func (g *Game) advanceOneStep() {
	g.sim.Step()
	events := g.sim.Events()
	for _, e := range events {
		log.Print(e)
	}
	g.chime.Play(events)
}

// resetSimulation reloads the environment file, keeping the trail setting.
func (g *Game) resetSimulation() error {
	sim, err := simulation.LoadConfig(g.configPath)
	if err != nil {
		return err
	}
	sim.SetTrail(g.sim.Trail())
	g.sim = sim
	g.cam = physics.Vec2{}
	g.resetModalOpen = false
	g.paused = false
	return nil
}

// drawLine plots a world-space segment shifted by cam with Bresenham's
// algorithm. Segments entirely off screen are skipped.
func drawLine(img *ebiten.Image, from, to, cam physics.Vec2, clr color.RGBA) {
	a, b := from.Add(cam), to.Add(cam)
	if offscreen(a.X, a.Y, b.X, b.Y) {
		return
	}
	x, y := int(math.Round(a.X)), int(math.Round(a.Y))
	x1, y1 := int(math.Round(b.X)), int(math.Round(b.Y))
	dx, sx := x1-x, 1
	if dx < 0 {
		dx, sx = -dx, -1
	}
	dy, sy := y1-y, 1
	if dy > 0 {
		dy = -dy
	} else {
		sy = -1
	}
	e := dx + dy
	for {
		if x >= 0 && y >= 0 && x < screenWidth && y < screenHeight {
			img.Set(x, y, clr)
		}
		if x == x1 && y == y1 {
			return
		}
		if 2*e >= dy {
			e += dy
			x += sx
		}
		if 2*e <= dx {
			e += dx
			y += sy
		}
	}
}

// drawCircle - filled disc, row by row
func drawCircle(screen *ebiten.Image, cx, cy, r float64, clr color.RGBA) {
	ir := int(math.Ceil(r))
	rr := r * r
	for dy := -ir; dy <= ir; dy++ {
		y := int(math.Round(cy)) + dy
		if y < 0 || y >= screenHeight {
			continue
		}
		xspan := math.Sqrt(math.Max(0, rr-float64(dy*dy)))
		xmin := int(math.Round(cx - xspan))
		xmax := int(math.Round(cx + xspan))
		if xmin < 0 {
			xmin = 0
		}
		if xmax >= screenWidth {
			xmax = screenWidth - 1
		}
		for x := xmin; x <= xmax; x++ {
			screen.Set(x, y, clr)
		}
	}
}

func offscreen(x0, y0, x1, y1 float64) bool {
	const margin = 64
	return (x0 < -margin && x1 < -margin) || (x0 > screenWidth+margin && x1 > screenWidth+margin) ||
		(y0 < -margin && y1 < -margin) || (y0 > screenHeight+margin && y1 > screenHeight+margin)
}

// Draw ---
func (g *Game) Draw(screen *ebiten.Image) {
	bodies := g.sim.Bodies()

	// trails, oldest point first, ending at the current position
	for _, b := range bodies {
		if len(b.History) == 0 {
			continue
		}
		prev := b.History[0]
		for _, p := range append(b.History[1:], b.Pos) {
			drawLine(screen, prev, p, g.cam, trailColor)
			prev = p
		}
	}
	if g.sim.Config().Fragmentation {
		for _, seg := range simulation.RocheMarkers(bodies) {
			drawLine(screen, seg.From, seg.To, g.cam, rocheColor)
		}
	}
	for _, b := range bodies {
		p := b.Pos.Add(g.cam)
		drawCircle(screen, p.X, p.Y, float64(b.Radius), b.Color)
	}

	// HUD
	ebitenutil.DebugPrint(screen, fmt.Sprintf("Env: %s\nPaused: %v", g.sim.Name, g.paused))
	text.Draw(screen, trailText(g.sim.Trail()), basicfont.Face7x13, 8, 48, color.RGBA{255, 255, 255, 255})
	stats := fmt.Sprintf("Step %d  Bodies %d  Total mass %.4e", g.sim.Steps(), g.sim.Len(), g.sim.TotalMass())
	text.Draw(screen, stats, basicfont.Face7x13, 8, 64, color.RGBA{200, 200, 200, 220})
	drawShortcuts(screen, g)

	mx, my := ebiten.CursorPosition()
	for _, b := range g.buttons() {
		b.draw(screen, b.contains(mx, my))
	}

	if g.paused {
		g.drawTooltip(screen, bodies, mx, my)
	}
	if g.resetModalOpen {
		drawResetModal(screen)
	}
}

func trailText(p simulation.TrailPolicy) string {
	if p.Forever {
		return "Trail: Forever (press N to toggle)"
	}
	return fmt.Sprintf("Trail: %s  (+/- to change, N toggles Forever)", p)
}

// drawTooltip shows the body under the cursor while paused.
func (g *Game) drawTooltip(screen *ebiten.Image, bodies []physics.Body, mx, my int) {
	mouse := physics.Vec2{X: float64(mx), Y: float64(my)}.Sub(g.cam)
	var hovered *physics.Body
	minD := math.MaxFloat64
	for i := range bodies {
		b := &bodies[i]
		d := b.Pos.Sub(mouse).Len()
		if d <= math.Max(float64(b.Radius), 3) && d < minD {
			hovered = b
			minD = d
		}
	}
	if hovered == nil {
		return
	}
	lines := []string{
		fmt.Sprintf("Body #%d", hovered.ID),
		fmt.Sprintf("Mass: %.3e", hovered.Mass),
		fmt.Sprintf("Pos: (%.2f, %.2f)", hovered.Pos.X, hovered.Pos.Y),
		fmt.Sprintf("Vel: (%.2f, %.2f)", hovered.Vel.X, hovered.Vel.Y),
		fmt.Sprintf("Radius: %d  Density: %.2f", hovered.Radius, hovered.Density),
		fmt.Sprintf("Fragment: %v", hovered.Fragment),
	}
	tooltip := panel(lines, 13)
	tw, th := tooltip.Bounds().Dx(), tooltip.Bounds().Dy()
	drawX := mx + 12
	drawY := my + 12
	if drawX+tw > screenWidth {
		drawX = screenWidth - tw - 8
	}
	if drawY+th > screenHeight {
		drawY = screenHeight - th - 8
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(drawX), float64(drawY))
	screen.DrawImage(tooltip, op)
}

// panel renders lines of text on a dark box.
func panel(lines []string, lineH int) *ebiten.Image {
	pad := 6
	charW := 7
	maxLen := 0
	for _, l := range lines {
		if len(l) > maxLen {
			maxLen = len(l)
		}
	}
	w := maxLen*charW + pad*2
	h := len(lines)*lineH + pad*2

	img := ebiten.NewImage(w, h)
	img.Fill(color.RGBA{10, 10, 20, 200})
	inner := ebiten.NewImage(w-2, h-2)
	inner.Fill(color.RGBA{30, 30, 40, 80})
	opInner := &ebiten.DrawImageOptions{}
	opInner.GeoM.Translate(1, 1)
	img.DrawImage(inner, opInner)

	for i, l := range lines {
		text.Draw(img, l, basicfont.Face7x13, pad, pad+(i+1)*lineH-2, color.RGBA{220, 220, 220, 255})
	}
	return img
}

func drawShortcuts(screen *ebiten.Image, g *Game) {
	if !g.shortcutsVisible {
		return
	}
	lines := []string{
		"P - Pause/Resume",
		"Space - Step (when paused)",
		"+ / - - trail length",
		"N - toggle Forever trail",
		"F - toggle fragmentation",
		"R - reset",
		"Right drag - pan",
		"H - hide shortcuts",
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(12, 100)
	screen.DrawImage(panel(lines, 14), op)
}

func (g *Game) Layout(_, _ int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	envName := flag.String("env", "roche", "environment to load (roche, merge, binary)")
	sound := flag.Bool("sound", false, "play a tone on merges and fragmentation")
	flag.Parse()
	configPath := filepath.Join("pkg/assets", fmt.Sprintf("%s.json", *envName))

	sim, err := simulation.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load environment: %v", err)
	}

	var chime *audio.Chime
	if *sound {
		chime, err = audio.NewChime()
		if err != nil {
			log.Printf("Audio initialization failed: %v", err)
		}
		defer chime.Close()
	}

	game := &Game{
		sim:              sim,
		chime:            chime,
		shortcutsVisible: true,
		configPath:       configPath,
	}
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("N-body sandbox - " + sim.Name)
	ebiten.SetTPS(sim.Config().FPS)
	if err := ebiten.RunGame(game); err != nil && err != ebiten.Termination {
		log.Fatal(err)
	}
}

const (
	modalW = 360
	modalH = 120
)

// resetModalButtons returns the Yes and No buttons in screen coordinates,
// or relative to the dialog when screenSpace is false.
func resetModalButtons(screenSpace bool) (yes, no button) {
	yes = button{label: "Yes", x: 40, y: modalH - 44}
	no = button{label: "No", x: modalW - 40 - uiBtnW, y: modalH - 44}
	if screenSpace {
		dx, dy := (screenWidth-modalW)/2, (screenHeight-modalH)/2
		yes.x, yes.y = yes.x+dx, yes.y+dy
		no.x, no.y = no.x+dx, no.y+dy
	}
	return yes, no
}

// drawResetModal draws the reset confirmation dialog
func drawResetModal(screen *ebiten.Image) {
	p := ebiten.NewImage(modalW, modalH)
	p.Fill(color.RGBA{20, 20, 20, 220})
	inner := ebiten.NewImage(modalW-4, modalH-4)
	inner.Fill(color.RGBA{36, 36, 44, 200})
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(2, 2)
	p.DrawImage(inner, op)

	text.Draw(p, "Reset simulation?", basicfont.Face7x13, 16, 28, color.RGBA{230, 230, 230, 255})
	text.Draw(p, "Reload the environment file.", basicfont.Face7x13, 16, 48, color.RGBA{190, 190, 190, 200})

	yes, no := resetModalButtons(false)
	yes.draw(p, false)
	no.draw(p, false)

	op = &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64((screenWidth-modalW)/2), float64((screenHeight-modalH)/2))
	screen.DrawImage(p, op)
}
