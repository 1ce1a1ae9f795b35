package simulation

import (
	"errors"
	"fmt"
	"math"

	"nbody-sandbox/pkg/physics"
)

var ErrInvalidConfig = errors.New("invalid simulation config")

// Config holds the tunables of the physics kernel.
type Config struct {
	G               float64
	MinDistance     float64
	Merge           bool
	Fragmentation   bool
	FragmentCount   int
	FragmentSpacing float64
	FPS             int
	Trail           TrailPolicy
}

func DefaultConfig() Config {
	return Config{
		G:               physics.G,
		MinDistance:     physics.MinDistance,
		Merge:           true,
		Fragmentation:   true,
		FragmentCount:   10,
		FragmentSpacing: 10,
		FPS:             60,
		Trail:           TrailPolicy{Forever: true, Seconds: 1},
	}
}

func (c Config) Validate() error {
	switch {
	case !(c.G > 0) || math.IsInf(c.G, 0):
		return fmt.Errorf("%w: gravitational constant %v", ErrInvalidConfig, c.G)
	case !(c.MinDistance > 0) || math.IsInf(c.MinDistance, 0):
		return fmt.Errorf("%w: minimum distance %v", ErrInvalidConfig, c.MinDistance)
	case math.IsNaN(c.FragmentSpacing) || math.IsInf(c.FragmentSpacing, 0):
		return fmt.Errorf("%w: fragment spacing %v", ErrInvalidConfig, c.FragmentSpacing)
	case c.FragmentCount < 1:
		return fmt.Errorf("%w: fragment count %d", ErrInvalidConfig, c.FragmentCount)
	case c.FPS < 1:
		return fmt.Errorf("%w: fps %d", ErrInvalidConfig, c.FPS)
	case c.Trail.Seconds < 0:
		return fmt.Errorf("%w: trail seconds %v", ErrInvalidConfig, c.Trail.Seconds)
	}
	return nil
}

// --- Simulator ---

// Simulator owns the body registry and advances it one frame per Step.
// It is not safe for concurrent use.
type Simulator struct {
	Name string

	cfg    Config
	reg    *Registry
	steps  uint64
	events []Event
}

// New validates cfg and registers bodies in the given order.
func New(cfg Config, bodies ...*physics.Body) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Simulator{cfg: cfg, reg: NewRegistry()}
	for _, b := range bodies {
		s.Add(b)
	}
	return s, nil
}

// Add registers b at the end of the scan order and returns its ID.
func (s *Simulator) Add(b *physics.Body) uint64 {
	s.reg.Add(b)
	return b.ID
}

func (s *Simulator) Config() Config { return s.cfg }
func (s *Simulator) Steps() uint64 { return s.steps }
func (s *Simulator) Len() int { return s.reg.Count() }

// Events returns what merged or broke up during the last Step.
func (s *Simulator) Events() []Event { return s.events }

// SetFragmentation switches the Roche-limit policy on or off.
func (s *Simulator) SetFragmentation(on bool) { s.cfg.Fragmentation = on }

func (s *Simulator) Trail() TrailPolicy { return s.cfg.Trail }

// SetTrail changes the trail policy and trims existing histories to it.
func (s *Simulator) SetTrail(p TrailPolicy) {
	s.cfg.Trail = p
	n := p.Frames(s.cfg.FPS)
	for _, b := range s.reg.Live() {
		physics.TrimHistory(b, n)
	}
}

// Bodies returns copies of the live bodies in scan order.
func (s *Simulator) Bodies() []physics.Body {
	live := s.reg.Live()
	out := make([]physics.Body, len(live))
	for i, b := range live {
		out[i] = b.Clone()
	}
	return out
}

func (s *Simulator) TotalMass() float64 {
	var m float64
	for _, b := range s.reg.Live() {
		m += b.Mass
	}
	return m
}

// Step advances the simulation by one frame.
//
// Bodies are visited in registry order. Each body is integrated when the
// outer scan reaches it and then paired with every later live body: the pair
// attracts, then merges if overlapping, then the later body may break up
// inside the earlier one's Roche limit. Removed slots are skipped for the
// rest of the step; if the outer body is absorbed its inner scan stops.
// Both bounds follow the registry as it grows, so fragments spawned during
// the step are paired with the later slots, then integrated and scanned in
// the same step. Fragments never break up again, which bounds the growth.
func (s *Simulator) Step() {
	s.steps++
	s.events = nil

	history := s.cfg.Trail.Frames(s.cfg.FPS)
	for i := 0; i < s.reg.Len(); i++ {
		if !s.reg.Alive(i) {
			continue
		}
		physics.Integrate(s.reg.At(i), history)

		for j := i + 1; j < s.reg.Len(); j++ {
			if !s.reg.Alive(j) {
				continue
			}
			if s.resolvePair(i, j) {
				break
			}
		}
	}
	s.reg.Compact()
}

// resolvePair runs force, merge and Roche checks for slots i < j. It returns
// true when slot i was removed.
func (s *Simulator) resolvePair(i, j int) bool {
	each, other := s.reg.At(i), s.reg.At(j)
	d := physics.Attract(each, other, s.cfg.G, s.cfg.MinDistance)

	if s.cfg.Merge && physics.Overlapping(each, other, d) {
		survivor, absorbed := physics.Heavier(each, other)
		physics.Absorb(survivor, absorbed)
		s.events = append(s.events, Event{
			Kind:     EventMerge,
			Step:     s.steps,
			Survivor: survivor.ID,
			Absorbed: absorbed.ID,
			Pos:      survivor.Pos,
			Mass:     survivor.Mass,
		})
		if absorbed == each {
			s.reg.Remove(i)
			return true
		}
		s.reg.Remove(j)
		return false
	}

	if !s.cfg.Fragmentation || other.Fragment {
		return false
	}
	if d >= physics.RocheLimit(each, other) {
		other.Color = other.BaseColor
		return false
	}

	other.Color = physics.FlashColor
	frags := physics.Shatter(other, s.cfg.FragmentCount, s.cfg.FragmentSpacing)
	s.reg.Remove(j)
	for _, f := range frags {
		s.reg.Add(f)
	}
	s.events = append(s.events, Event{
		Kind:      EventFragment,
		Step:      s.steps,
		Survivor:  each.ID,
		Absorbed:  other.ID,
		Pos:       other.Pos,
		Mass:      other.Mass,
		Fragments: len(frags),
	})
	return false
}
