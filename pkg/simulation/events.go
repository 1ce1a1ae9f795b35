package simulation

import (
	"fmt"

	"nbody-sandbox/pkg/physics"
)

type EventKind int

const (
	EventMerge EventKind = iota
	EventFragment
)

func (k EventKind) String() string {
	switch k {
	case EventMerge:
		return "merge"
	case EventFragment:
		return "fragment"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event records a structural change made during a step.
//
// For a merge, Survivor absorbed Absorbed. For a fragmentation, Absorbed is
// the body that broke up, Survivor is the body whose Roche limit it crossed
// and Fragments is the number of bodies spawned.
type Event struct {
	Kind      EventKind
	Step      uint64
	Survivor  uint64
	Absorbed  uint64
	Pos       physics.Vec2
	Mass      float64
	Fragments int
}

func (e Event) String() string {
	switch e.Kind {
	case EventMerge:
		return fmt.Sprintf("step %d: body %d absorbed body %d at (%.1f, %.1f), mass now %.3e",
			e.Step, e.Survivor, e.Absorbed, e.Pos.X, e.Pos.Y, e.Mass)
	case EventFragment:
		return fmt.Sprintf("step %d: body %d broke into %d fragments inside the Roche limit of body %d at (%.1f, %.1f)",
			e.Step, e.Absorbed, e.Fragments, e.Survivor, e.Pos.X, e.Pos.Y)
	}
	return fmt.Sprintf("step %d: %v", e.Step, e.Kind)
}
