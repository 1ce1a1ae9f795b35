package simulation

import (
	"fmt"

	"nbody-sandbox/pkg/physics"
)

// TrailPolicy sets how much position history each body keeps.
type TrailPolicy struct {
	Forever bool    `json:"forever"`
	Seconds float64 `json:"seconds"`
}

// Frames converts the policy to a history length at the given frame rate.
// Forever maps to physics.Unbounded.
func (p TrailPolicy) Frames(fps int) int {
	if p.Forever {
		return physics.Unbounded
	}
	n := int(p.Seconds * float64(fps))
	if n < 0 {
		return 0
	}
	return n
}

// Adjust returns the policy with Seconds moved by delta, clamped at zero.
// A Forever policy switches to a finite one first.
func (p TrailPolicy) Adjust(delta float64) TrailPolicy {
	p.Forever = false
	p.Seconds += delta
	if p.Seconds < 0 {
		p.Seconds = 0
	}
	return p
}

func (p TrailPolicy) String() string {
	if p.Forever {
		return "forever"
	}
	return fmt.Sprintf("%.1fs", p.Seconds)
}
