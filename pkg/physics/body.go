package physics

import (
	"errors"
	"fmt"
	"image/color"
	"math"
)

var (
	ErrInvalidRadius  = errors.New("radius must be at least 1")
	ErrInvalidMass    = errors.New("mass must be positive and finite")
	ErrInvalidDensity = errors.New("density must be positive and finite")
	ErrInvalidVector  = errors.New("position and velocity must be finite")
)

// --- 2D vector ---
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

func (v Vec2) Mul(s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

func (v Vec2) finite() bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}

// --- Body ---

// Body is a circular mass. Area is the conserved quantity on merge;
// Radius is always derived from it.
type Body struct {
	ID        uint64
	Pos       Vec2
	Vel       Vec2
	Radius    int
	Area      float64
	Mass      float64
	Density   float64
	Color     color.RGBA
	BaseColor color.RGBA
	Fragment  bool
	History   []Vec2
}

// BodyParams describes a body to construct with NewBody.
type BodyParams struct {
	Pos      Vec2
	Vel      Vec2
	Radius   int
	Mass     float64
	Density  float64
	Color    color.RGBA
	Fragment bool
}

// NewBody validates p and returns a body whose area matches its radius.
func NewBody(p BodyParams) (*Body, error) {
	if p.Radius < 1 {
		return nil, fmt.Errorf("new body: %w (got %d)", ErrInvalidRadius, p.Radius)
	}
	if !positive(p.Mass) {
		return nil, fmt.Errorf("new body: %w (got %v)", ErrInvalidMass, p.Mass)
	}
	if !positive(p.Density) {
		return nil, fmt.Errorf("new body: %w (got %v)", ErrInvalidDensity, p.Density)
	}
	if !p.Pos.finite() || !p.Vel.finite() {
		return nil, fmt.Errorf("new body: %w", ErrInvalidVector)
	}
	return newBody(p), nil
}

func newBody(p BodyParams) *Body {
	r := float64(p.Radius)
	return &Body{
		Pos:       p.Pos,
		Vel:       p.Vel,
		Radius:    p.Radius,
		Area:      math.Pi * r * r,
		Mass:      p.Mass,
		Density:   p.Density,
		Color:     p.Color,
		BaseColor: p.Color,
		Fragment:  p.Fragment,
	}
}

func positive(x float64) bool {
	return x > 0 && !math.IsInf(x, 0) && !math.IsNaN(x)
}

// RadiusFromArea returns floor(sqrt(area/π)).
func RadiusFromArea(area float64) int {
	return int(math.Sqrt(area / math.Pi))
}

// Clone returns a copy of b with its own history slice.
func (b *Body) Clone() Body {
	c := *b
	if b.History != nil {
		c.History = append([]Vec2(nil), b.History...)
	}
	return c
}
