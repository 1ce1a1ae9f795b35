package physics

// Unbounded disables trail trimming in Integrate.
const Unbounded = -1

// Integrate records the current position in the trail and advances the body
// by one step of its velocity (explicit Euler, unit time step).
// A negative maxHistory keeps the whole trail.
func Integrate(b *Body, maxHistory int) {
	b.History = append(b.History, b.Pos)
	TrimHistory(b, maxHistory)

	b.Pos = b.Pos.Add(b.Vel)
}

// TrimHistory drops the oldest trail points beyond limit.
func TrimHistory(b *Body, limit int) {
	if limit < 0 || len(b.History) <= limit {
		return
	}
	b.History = b.History[len(b.History)-limit:]
}
