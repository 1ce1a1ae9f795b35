package simulation

import (
	"encoding/json"
	"fmt"
	"image/color"
	"math"
	"os"

	"nbody-sandbox/pkg/physics"
)

// DefaultColor is used for bodies with a missing or malformed color.
var DefaultColor = color.RGBA{200, 200, 255, 255}

// --- Environment file ---
type EnvironmentConfig struct {
	Name      string        `json:"name"`
	Physics   PhysicsConfig `json:"physics"`
	FPS       int           `json:"fps,omitempty"`
	Trail     *TrailPolicy  `json:"trail,omitempty"`
	AutoOrbit bool          `json:"auto_orbit,omitempty"`
	Bodies    []BodyConfig  `json:"bodies"`
}

// PhysicsConfig overrides DefaultConfig; unset fields keep the default.
type PhysicsConfig struct {
	G               *float64 `json:"g,omitempty"`
	MinDistance     *float64 `json:"min_distance,omitempty"`
	Merge           *bool    `json:"merge,omitempty"`
	Fragmentation   *bool    `json:"fragmentation,omitempty"`
	FragmentCount   *int     `json:"fragment_count,omitempty"`
	FragmentSpacing *float64 `json:"fragment_spacing,omitempty"`
}

type BodyConfig struct {
	Pos     [2]float64 `json:"pos"`
	Vel     [2]float64 `json:"vel"`
	Radius  int        `json:"radius"`
	Mass    float64    `json:"mass"`
	Density float64    `json:"density"`
	Color   string     `json:"color"`
}

// Config returns the kernel configuration described by the environment.
func (env EnvironmentConfig) Config() Config {
	cfg := DefaultConfig()
	p := env.Physics
	if p.G != nil {
		cfg.G = *p.G
	}
	if p.MinDistance != nil {
		cfg.MinDistance = *p.MinDistance
	}
	if p.Merge != nil {
		cfg.Merge = *p.Merge
	}
	if p.Fragmentation != nil {
		cfg.Fragmentation = *p.Fragmentation
	}
	if p.FragmentCount != nil {
		cfg.FragmentCount = *p.FragmentCount
	}
	if p.FragmentSpacing != nil {
		cfg.FragmentSpacing = *p.FragmentSpacing
	}
	if env.FPS != 0 {
		cfg.FPS = env.FPS
	}
	if env.Trail != nil {
		cfg.Trail = *env.Trail
	}
	return cfg
}

// SetOrbitalVelocities gives every body at rest except the first a circular
// orbit velocity around the first body.
func SetOrbitalVelocities(bodies []BodyConfig, g float64) {
	if len(bodies) == 0 {
		return
	}
	central := bodies[0]
	for i := 1; i < len(bodies); i++ {
		if bodies[i].Vel[0] != 0 || bodies[i].Vel[1] != 0 {
			continue
		}

		dx := bodies[i].Pos[0] - central.Pos[0]
		dy := bodies[i].Pos[1] - central.Pos[1]
		r := math.Hypot(dx, dy)
		if r == 0 {
			continue
		}
		v := math.Sqrt(g * central.Mass / r)
		// perpendicular to the radius vector
		bodies[i].Vel[0] = -dy / r * v
		bodies[i].Vel[1] = dx / r * v
	}
}

// --- Loading ---

// LoadConfig reads an environment file and builds a simulator from it.
func LoadConfig(path string) (*Simulator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	sim, err := ParseEnvironment(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sim, nil
}

// ParseEnvironment builds a simulator from environment JSON.
func ParseEnvironment(data []byte) (*Simulator, error) {
	var env EnvironmentConfig
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return NewFromEnvironment(env)
}

func NewFromEnvironment(env EnvironmentConfig) (*Simulator, error) {
	cfg := env.Config()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if env.AutoOrbit {
		SetOrbitalVelocities(env.Bodies, cfg.G)
	}

	bodies := make([]*physics.Body, 0, len(env.Bodies))
	for i, bc := range env.Bodies {
		b, err := physics.NewBody(physics.BodyParams{
			Pos:     physics.Vec2{X: bc.Pos[0], Y: bc.Pos[1]},
			Vel:     physics.Vec2{X: bc.Vel[0], Y: bc.Vel[1]},
			Radius:  bc.Radius,
			Mass:    bc.Mass,
			Density: bc.Density,
			Color:   parseColor(bc.Color),
		})
		if err != nil {
			return nil, fmt.Errorf("body %d: %w", i, err)
		}
		bodies = append(bodies, b)
	}

	sim, err := New(cfg, bodies...)
	if err != nil {
		return nil, err
	}
	sim.Name = env.Name
	return sim, nil
}

// --- HEX color parser ---
func parseColor(hex string) color.RGBA {
	var r, g, b uint8
	if len(hex) == 7 && hex[0] == '#' {
		n, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b)
		if err == nil && n == 3 {
			return color.RGBA{r, g, b, 255}
		}
	}
	return DefaultColor
}
