// Command nbody-term runs the sandbox in a terminal, or headless with -headless.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"nbody-sandbox/pkg/audio"
	"nbody-sandbox/pkg/simulation"
)

func main() {
	envName := flag.String("env", "roche", "environment to load (roche, merge, binary)")
	assets := flag.String("assets", "pkg/assets", "directory holding environment files")
	headless := flag.Bool("headless", false, "run without a terminal UI and log events")
	steps := flag.Int("steps", 1000, "steps to run in headless mode")
	scale := flag.Float64("scale", 8, "world units per terminal column")
	sound := flag.Bool("sound", false, "play a tone on merges and fragmentation")
	flag.Parse()

	configPath := filepath.Join(*assets, fmt.Sprintf("%s.json", *envName))
	sim, err := simulation.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load environment: %v", err)
	}

	if *headless {
		runHeadless(sim, *steps, log.New(os.Stdout, "", 0))
		return
	}

	var chime *audio.Chime
	if *sound {
		chime, err = audio.NewChime()
		if err != nil {
			log.Printf("Audio initialization failed: %v", err)
		}
		defer chime.Close()
	}

	v, err := newViewer(sim, configPath, *scale, chime)
	if err != nil {
		log.Fatalf("Failed to initialize terminal: %v", err)
	}
	defer v.cleanup()
	v.run()
}

// runHeadless steps sim and logs every event followed by a summary.
func runHeadless(sim *simulation.Simulator, steps int, logger *log.Logger) {
	logger.Printf("environment %q: %d bodies, total mass %.6e", sim.Name, sim.Len(), sim.TotalMass())
	var merges, frags int
	for i := 0; i < steps; i++ {
		sim.Step()
		for _, e := range sim.Events() {
			switch e.Kind {
			case simulation.EventMerge:
				merges++
			case simulation.EventFragment:
				frags++
			}
			logger.Print(e)
		}
	}
	logger.Printf("after %d steps: %d bodies, %d merges, %d fragmentations, total mass %.6e",
		sim.Steps(), sim.Len(), merges, frags, sim.TotalMass())
	for _, b := range sim.Bodies() {
		logger.Printf("  body %d pos (%.1f, %.1f) vel (%.3f, %.3f) radius %d mass %.3e fragment %v",
			b.ID, b.Pos.X, b.Pos.Y, b.Vel.X, b.Vel.Y, b.Radius, b.Mass, b.Fragment)
	}
}
