package simulation

import "nbody-sandbox/pkg/physics"

// Registry holds bodies in insertion order. Removal only tombstones a slot so
// indices stay stable while a pairwise scan is running; Compact drops the
// dead slots afterwards.
type Registry struct {
	bodies []*physics.Body
	dead   []bool
	nDead  int
	nextID uint64
}

func NewRegistry() *Registry {
	return &Registry{nextID: 1}
}

// Add appends b, assigns its ID and returns its slot index.
func (r *Registry) Add(b *physics.Body) int {
	b.ID = r.nextID
	r.nextID++
	r.bodies = append(r.bodies, b)
	r.dead = append(r.dead, false)
	return len(r.bodies) - 1
}

// Len is the number of slots, live or not.
func (r *Registry) Len() int {
	return len(r.bodies)
}

// Count is the number of live bodies.
func (r *Registry) Count() int {
	return len(r.bodies) - r.nDead
}

func (r *Registry) At(i int) *physics.Body {
	return r.bodies[i]
}

func (r *Registry) Alive(i int) bool {
	return i >= 0 && i < len(r.bodies) && !r.dead[i]
}

// Remove tombstones slot i. It returns false if the slot is out of range or
// already removed.
func (r *Registry) Remove(i int) bool {
	if !r.Alive(i) {
		return false
	}
	r.dead[i] = true
	r.nDead++
	return true
}

// Compact drops removed slots, keeping the relative order of the rest.
func (r *Registry) Compact() {
	if r.nDead == 0 {
		return
	}
	n := 0
	for i, b := range r.bodies {
		if r.dead[i] {
			continue
		}
		r.bodies[n] = b
		n++
	}
	for i := n; i < len(r.bodies); i++ {
		r.bodies[i] = nil
	}
	r.bodies = r.bodies[:n]
	r.dead = r.dead[:n]
	for i := range r.dead {
		r.dead[i] = false
	}
	r.nDead = 0
}

// Live returns the live bodies in order.
func (r *Registry) Live() []*physics.Body {
	out := make([]*physics.Body, 0, r.Count())
	for i, b := range r.bodies {
		if !r.dead[i] {
			out = append(out, b)
		}
	}
	return out
}
