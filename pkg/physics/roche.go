package physics

import (
	"image/color"
	"math"
)

// FlashColor marks a body caught inside another body's Roche limit.
var FlashColor = color.RGBA{0, 255, 0, 255}

// RocheLimit is the distance from primary inside which satellite breaks up:
// r_primary * cbrt(2 * density_primary / density_satellite).
func RocheLimit(primary, satellite *Body) float64 {
	return float64(primary.Radius) * math.Cbrt(2*primary.Density/satellite.Density)
}

// Shatter returns count fragments of b laid out in a line starting just
// past b. The line runs along x when Vel.X > Vel.Y and along y otherwise.
// Fragments share b's velocity, density and base color and split its mass
// evenly. b itself is not modified.
func Shatter(b *Body, count int, spacing float64) []*Body {
	if count < 1 {
		return nil
	}
	horizontal := b.Vel.X > b.Vel.Y
	mass := b.Mass / float64(count)

	frags := make([]*Body, 0, count)
	for k := 0; k < count; k++ {
		off := float64(k) + spacing + float64(b.Radius)/10
		pos := b.Pos
		if horizontal {
			pos.X += off
		} else {
			pos.Y += off
		}
		frags = append(frags, newBody(BodyParams{
			Pos:      pos,
			Vel:      b.Vel,
			Radius:   1,
			Mass:     mass,
			Density:  b.Density,
			Color:    b.BaseColor,
			Fragment: true,
		}))
	}
	return frags
}
