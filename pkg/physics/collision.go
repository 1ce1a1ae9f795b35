package physics

// Overlapping reports whether two bodies at separation d touch.
func Overlapping(a, b *Body, d float64) bool {
	return d < float64(a.Radius+b.Radius)
}

// Heavier returns (survivor, absorbed) for a merge of a and b.
// Ties go to a.
func Heavier(a, b *Body) (*Body, *Body) {
	if a.Mass >= b.Mass {
		return a, b
	}
	return b, a
}

// Absorb merges from into into. Mass and area are summed and the radius is
// re-derived from the new area. Density and color of into are unchanged.
func Absorb(into, from *Body) {
	into.Mass += from.Mass
	into.Area += from.Area
	into.Radius = RadiusFromArea(into.Area)
}
