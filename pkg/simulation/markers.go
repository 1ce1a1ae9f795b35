package simulation

import "nbody-sandbox/pkg/physics"

// Segment is a line in world coordinates.
type Segment struct {
	From, To physics.Vec2
}

// RocheMarkers returns one horizontal segment per pair i < j of bodies,
// running from bodies[i] out to the Roche limit it imposes on bodies[j].
// Fragments never break up, so pairs with a fragment as the satellite are
// left out.
func RocheMarkers(bodies []physics.Body) []Segment {
	var segs []Segment
	for i := range bodies {
		primary := &bodies[i]
		for j := i + 1; j < len(bodies); j++ {
			if bodies[j].Fragment {
				continue
			}
			limit := physics.RocheLimit(primary, &bodies[j])
			segs = append(segs, Segment{
				From: primary.Pos,
				To:   primary.Pos.Add(physics.Vec2{X: limit}),
			})
		}
	}
	return segs
}
