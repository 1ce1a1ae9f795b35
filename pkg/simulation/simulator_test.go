package simulation

import (
	"errors"
	"math"
	"testing"

	"nbody-sandbox/pkg/physics"
)

func body(t *testing.T, x, y float64, r int, mass, density float64) *physics.Body {
	t.Helper()
	b, err := physics.NewBody(physics.BodyParams{
		Pos:     physics.Vec2{X: x, Y: y},
		Radius:  r,
		Mass:    mass,
		Density: density,
		Color:   DefaultColor,
	})
	if err != nil {
		t.Fatalf("NewBody: %v", err)
	}
	return b
}

func newSim(t *testing.T, cfg Config, bodies ...*physics.Body) *Simulator {
	t.Helper()
	s, err := New(cfg, bodies...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func mergeOnly() Config {
	cfg := DefaultConfig()
	cfg.Fragmentation = false
	return cfg
}

func findBody(bodies []physics.Body, id uint64) (physics.Body, bool) {
	for _, b := range bodies {
		if b.ID == id {
			return b, true
		}
	}
	return physics.Body{}, false
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FragmentCount = 0
	if _, err := New(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("New error = %v, want ErrInvalidConfig", err)
	}
}

func TestStepMergeHeavierOuterSurvives(t *testing.T) {
	a := body(t, 0, 0, 5, 10, 1)
	b := body(t, 3, 0, 5, 1, 1)
	s := newSim(t, mergeOnly(), a, b)
	mass := a.Mass + b.Mass
	area := a.Area + b.Area

	s.Step()

	bodies := s.Bodies()
	if len(bodies) != 1 {
		t.Fatalf("got %d bodies after merge, want 1", len(bodies))
	}
	got := bodies[0]
	if got.ID != a.ID {
		t.Errorf("survivor = body %d, want heavier body %d", got.ID, a.ID)
	}
	if math.Abs(got.Mass-mass) > 1e-12 {
		t.Errorf("mass = %v, want %v", got.Mass, mass)
	}
	if math.Abs(got.Area-area) > 1e-9 {
		t.Errorf("area = %v, want %v", got.Area, area)
	}
	if want := int(math.Sqrt(area / math.Pi)); got.Radius != want {
		t.Errorf("radius = %d, want %d", got.Radius, want)
	}

	ev := s.Events()
	if len(ev) != 1 || ev[0].Kind != EventMerge || ev[0].Survivor != a.ID || ev[0].Absorbed != b.ID {
		t.Errorf("events = %v", ev)
	}

	s.Step()
	if len(s.Events()) != 0 {
		t.Errorf("absorbed body produced events in a later step: %v", s.Events())
	}
	if _, ok := findBody(s.Bodies(), b.ID); ok {
		t.Error("absorbed body reappeared")
	}
}

func TestStepMergeLighterOuterStopsInnerScan(t *testing.T) {
	light := body(t, 0, 0, 3, 1, 1)
	heavy := body(t, 2, 0, 3, 50, 1)
	far := body(t, 1000, 0, 3, 1, 1)
	far.Vel = physics.Vec2{X: 1}
	s := newSim(t, mergeOnly(), light, heavy, far)

	s.Step()

	bodies := s.Bodies()
	if len(bodies) != 2 {
		t.Fatalf("got %d bodies, want 2", len(bodies))
	}
	if bodies[0].ID != heavy.ID || bodies[1].ID != far.ID {
		t.Errorf("order = [%d %d], want [%d %d]", bodies[0].ID, bodies[1].ID, heavy.ID, far.ID)
	}
	if bodies[0].Mass != 51 {
		t.Errorf("heavy mass = %v, want 51", bodies[0].Mass)
	}
	// every survivor was integrated exactly once
	for _, b := range bodies {
		if len(b.History) != 1 {
			t.Errorf("body %d integrated %d times", b.ID, len(b.History))
		}
	}
	if x := bodies[1].Pos.X; math.Abs(x-1001) > 1e-6 {
		t.Errorf("far body x = %v, want about 1001", x)
	}
}

func TestStepChainedMerges(t *testing.T) {
	a := body(t, 0, 0, 5, 100, 1)
	b := body(t, 1, 0, 1, 1, 1)
	c := body(t, 2, 0, 1, 1, 1)
	s := newSim(t, mergeOnly(), a, b, c)

	s.Step()

	if s.Len() != 1 {
		t.Fatalf("got %d bodies, want 1", s.Len())
	}
	if got := s.Bodies()[0]; got.ID != a.ID || got.Mass != 102 || got.Radius != 5 {
		t.Errorf("survivor = id %d mass %v radius %d", got.ID, got.Mass, got.Radius)
	}
	if n := len(s.Events()); n != 2 {
		t.Errorf("got %d merge events, want 2", n)
	}
}

func TestStepMergeKeepsDensity(t *testing.T) {
	a := body(t, 0, 0, 4, 10, 2)
	b := body(t, 1, 0, 4, 1, 50)
	s := newSim(t, mergeOnly(), a, b)
	s.Step()
	if got := s.Bodies()[0].Density; got != 2 {
		t.Errorf("density after merge = %v, want survivor's own density 2", got)
	}
}

func TestStepMergeDisabled(t *testing.T) {
	cfg := mergeOnly()
	cfg.Merge = false
	s := newSim(t, cfg, body(t, 0, 0, 5, 10, 1), body(t, 1, 0, 5, 10, 1))
	s.Step()
	if s.Len() != 2 {
		t.Errorf("bodies merged with merging disabled")
	}
}

func TestStepAttractionSymmetry(t *testing.T) {
	a := body(t, 0, 0, 1, 3e12, 1)
	b := body(t, 500, 0, 1, 1e12, 1)
	s := newSim(t, mergeOnly(), a, b)

	s.Step()

	ga, _ := findBody(s.Bodies(), a.ID)
	gb, _ := findBody(s.Bodies(), b.ID)
	px := ga.Vel.X*ga.Mass + gb.Vel.X*gb.Mass
	if math.Abs(px) > 1e-9*math.Abs(ga.Vel.X*ga.Mass) {
		t.Errorf("net momentum %v after one step", px)
	}
	if ratio := math.Abs(gb.Vel.X / ga.Vel.X); math.Abs(ratio-3) > 1e-9 {
		t.Errorf("|dv_b|/|dv_a| = %v, want 3", ratio)
	}
}

func TestStepCoincidentBodiesStayFinite(t *testing.T) {
	cfg := mergeOnly()
	cfg.Merge = false
	s := newSim(t, cfg, body(t, 7, 7, 1, 1e12, 1), body(t, 7, 7, 1, 1e12, 1))
	for i := 0; i < 3; i++ {
		s.Step()
	}
	for _, b := range s.Bodies() {
		for _, v := range []float64{b.Pos.X, b.Pos.Y, b.Vel.X, b.Vel.Y} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("body %d went non-finite: pos %v vel %v", b.ID, b.Pos, b.Vel)
			}
		}
	}
}

func TestStepFragmentation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Merge = false
	primary := body(t, 0, 0, 10, 1e14, 10)
	moon := body(t, 15, 0, 2, 1e6, 1)
	moon.Vel = physics.Vec2{X: 1}
	s := newSim(t, cfg, primary, moon)
	total := primary.Mass + moon.Mass

	s.Step()

	bodies := s.Bodies()
	if len(bodies) != 11 {
		t.Fatalf("got %d bodies, want primary + 10 fragments", len(bodies))
	}
	if bodies[0].ID != primary.ID || bodies[0].Fragment {
		t.Errorf("first body = %+v, want unfragmented primary", bodies[0])
	}
	for _, f := range bodies[1:] {
		if !f.Fragment || f.Radius != 1 || f.Mass != moon.Mass/10 {
			t.Errorf("fragment %d = radius %d mass %v fragment %v", f.ID, f.Radius, f.Mass, f.Fragment)
		}
		// integrated once in the step that spawned them, after being pulled
		// toward the primary
		if len(f.History) != 1 {
			t.Fatalf("fragment %d integrated %d times in its spawn step, want 1", f.ID, len(f.History))
		}
		if f.History[0].X != 15 || f.Pos.X >= 15 {
			t.Errorf("fragment %d spawned at %v moved to %v, want a move toward the primary", f.ID, f.History[0], f.Pos)
		}
	}
	if _, ok := findBody(bodies, moon.ID); ok {
		t.Error("fragmented body still present")
	}
	ev := s.Events()
	if len(ev) != 1 || ev[0].Kind != EventFragment || ev[0].Fragments != 10 || ev[0].Absorbed != moon.ID {
		t.Errorf("events = %v", ev)
	}
	if m := s.TotalMass(); math.Abs(m-total) > 1e-6 {
		t.Errorf("total mass = %v, want %v", m, total)
	}

	// fragments sit inside both the primary's and each other's Roche
	// limits but never break up again
	for i := 0; i < 20; i++ {
		s.Step()
		if len(s.Events()) != 0 {
			t.Fatalf("step %d: unexpected events %v", s.Steps(), s.Events())
		}
		if s.Len() != 11 {
			t.Fatalf("step %d: body count %d, want 11", s.Steps(), s.Len())
		}
	}
}

func TestStepFragmentationDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Merge = false
	s := newSim(t, cfg, body(t, 0, 0, 10, 1e14, 10), body(t, 15, 0, 2, 1e6, 1))
	s.SetFragmentation(false)
	s.Step()
	if s.Len() != 2 {
		t.Errorf("got %d bodies with fragmentation off, want 2", s.Len())
	}
}

func TestStepOutsideRocheRestoresColor(t *testing.T) {
	primary := body(t, 0, 0, 10, 1e14, 10)
	moon := body(t, 500, 0, 2, 1e6, 1)
	moon.Color = physics.FlashColor
	s := newSim(t, DefaultConfig(), primary, moon)
	s.Step()
	got, _ := findBody(s.Bodies(), moon.ID)
	if got.Color != got.BaseColor {
		t.Errorf("color = %v, want base %v", got.Color, got.BaseColor)
	}
}

// A body fragmented in the middle of the inner scan must not cause the scan
// to skip the next live slot.
func TestStepFragmentationDoesNotSkipNextPair(t *testing.T) {
	cfg := DefaultConfig()
	primary := body(t, 0, 0, 10, 1e14, 10)
	moon := body(t, 15, 0, 2, 1e6, 1)
	rock := body(t, 5, 0, 2, 1, 1) // overlaps primary
	s := newSim(t, cfg, primary, moon, rock)

	s.Step()

	if _, ok := findBody(s.Bodies(), rock.ID); ok {
		t.Error("body after a fragmented slot was not merged into the primary")
	}
	var merges, frags int
	for _, e := range s.Events() {
		switch e.Kind {
		case EventMerge:
			merges++
		case EventFragment:
			frags++
		}
	}
	if merges != 1 || frags != 1 {
		t.Errorf("merges = %d fragments = %d, want 1 and 1", merges, frags)
	}
}

func TestTrailBound(t *testing.T) {
	cfg := mergeOnly()
	cfg.Trail = TrailPolicy{Seconds: 0.05} // 3 frames at 60 fps
	s := newSim(t, cfg, body(t, 0, 0, 1, 1, 1), body(t, 1000, 0, 1, 1, 1))
	for i := 0; i < 10; i++ {
		s.Step()
		for _, b := range s.Bodies() {
			if len(b.History) > 3 {
				t.Fatalf("step %d: history %d > 3", i, len(b.History))
			}
		}
	}
}

func TestTrailUnboundedAndRuntimeChange(t *testing.T) {
	s := newSim(t, mergeOnly(), body(t, 0, 0, 1, 1, 1), body(t, 1000, 0, 1, 1, 1))
	for i := 0; i < 25; i++ {
		s.Step()
	}
	for _, b := range s.Bodies() {
		if len(b.History) != 25 {
			t.Errorf("body %d history = %d, want 25", b.ID, len(b.History))
		}
	}

	s.SetTrail(s.Trail().Adjust(0.1)) // forever -> 1.1s = 66 frames
	if s.Trail().Forever {
		t.Fatal("Adjust kept Forever")
	}
	s.SetTrail(TrailPolicy{Seconds: 0.1})
	for _, b := range s.Bodies() {
		if len(b.History) != 6 {
			t.Errorf("body %d history after shrink = %d, want 6", b.ID, len(b.History))
		}
	}
}

func TestBodiesReturnsCopies(t *testing.T) {
	s := newSim(t, mergeOnly(), body(t, 0, 0, 1, 1, 1))
	s.Step()
	snap := s.Bodies()
	snap[0].Mass = 99
	snap[0].History[0] = physics.Vec2{X: 42}
	got := s.Bodies()[0]
	if got.Mass == 99 || got.History[0].X == 42 {
		t.Error("Bodies exposed registry state")
	}
}

// Central mass with two small bodies in rough orbit, as in the roche
// environment, run for 1000 steps.
func TestScenarioThousandSteps(t *testing.T) {
	for _, frag := range []bool{false, true} {
		name := "merge"
		if frag {
			name = "merge+fragmentation"
		}
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Fragmentation = frag
			central := body(t, 680, 384, 10, 1e14, 10)
			left := body(t, 432, 384, 5, 2e10, 1.3)
			left.Vel = physics.Vec2{Y: -2.1}
			right := body(t, 940, 384, 5, 2e10, 1.4)
			right.Vel = physics.Vec2{Y: 3}
			s := newSim(t, cfg, central, left, right)

			introduced := central.Mass + left.Mass + right.Mass
			const tol = 1e-12
			prevCentral := central.Mass
			prevTotal := s.TotalMass()
			for i := 0; i < 1000; i++ {
				s.Step()
				c, ok := findBody(s.Bodies(), central.ID)
				if !ok {
					t.Fatalf("step %d: central body vanished", i)
				}
				if c.Mass < prevCentral {
					t.Fatalf("step %d: central mass fell from %v to %v", i, prevCentral, c.Mass)
				}
				prevCentral = c.Mass

				total := s.TotalMass()
				if total < prevTotal*(1-tol) {
					t.Fatalf("step %d: total mass fell from %v to %v", i, prevTotal, total)
				}
				if total > introduced*(1+tol) {
					t.Fatalf("step %d: total mass %v exceeds introduced %v", i, total, introduced)
				}
				prevTotal = total
			}
			if s.Steps() != 1000 {
				t.Errorf("Steps = %d", s.Steps())
			}
		})
	}
}
