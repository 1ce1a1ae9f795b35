package physics

import "math"

const (
	G           = 6.674e-11
	MinDistance = 2.0
)

// Attract applies the mutual gravitational pull of each and other to their
// velocities and returns the separation used, floored at minDist.
//
// Each is pulled toward other and other toward each, with acceleration
// F/m on each side, so the momentum change is equal and opposite.
func Attract(each, other *Body, g, minDist float64) float64 {
	dx := each.Pos.X - other.Pos.X
	dy := each.Pos.Y - other.Pos.Y
	d := math.Max(math.Hypot(dx, dy), minDist)

	f := g * each.Mass * other.Mass / (d * d)
	ux, uy := dx/d, dy/d

	ae := f / each.Mass
	each.Vel.X -= ae * ux
	each.Vel.Y -= ae * uy

	ao := f / other.Mass
	other.Vel.X += ao * ux
	other.Vel.Y += ao * uy

	return d
}
