package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/akmonengine/proximity"
	"github.com/akmonengine/proximity/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// SetupScene creates a static floor slab, a row of cubes and a hexagonal prism
// falling through them
func SetupScene() (*proximity.Scene, *actor.Body, error) {
	scene := proximity.NewScene(2.0, 1024)
	scene.Workers = 4
	scene.Margin = 0.5
	scene.Conservative = true
	scene.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	floor, err := actor.NewBody(0, actor.Transform{
		Position: mgl64.Vec3{0, -0.5, 0},
		Rotation: mgl64.QuatIdent(),
	}, actor.Box(mgl64.Vec3{10, 0.5, 10}))
	if err != nil {
		return nil, nil, err
	}
	floor.Static = true
	if err := scene.AddBody(floor); err != nil {
		return nil, nil, err
	}

	cube := actor.Box(mgl64.Vec3{0.5, 0.5, 0.5})
	for i := 0; i < 4; i++ {
		body, err := actor.NewBody(i+1, actor.Transform{
			Position: mgl64.Vec3{float64(i)*1.5 - 2.25, 0.5, 0},
			Rotation: mgl64.QuatRotate(float64(i)*0.3, mgl64.Vec3{0, 1, 0}),
		}, cube)
		if err != nil {
			return nil, nil, err
		}
		if err := scene.AddBody(body); err != nil {
			return nil, nil, err
		}
	}

	hexagon, err := actor.Prism(6, 0.6, 0.4)
	if err != nil {
		return nil, nil, err
	}
	probe, err := actor.NewBody(100, actor.Transform{
		Position: mgl64.Vec3{-3, 3, 0},
		Rotation: mgl64.QuatRotate(0.7, mgl64.Vec3{1, 0, 0}),
	}, hexagon)
	if err != nil {
		return nil, nil, err
	}
	if err := scene.AddBody(probe); err != nil {
		return nil, nil, err
	}

	return scene, probe, nil
}

func main() {
	scene, probe, err := SetupScene()
	if err != nil {
		fmt.Fprintf(os.Stderr, "setup: %+v\n", err)
		os.Exit(1)
	}

	scene.Events.Subscribe(proximity.OVERLAP_ENTER, func(event proximity.Event) {
		e := event.(proximity.OverlapEnterEvent)
		fmt.Printf("  enter: %d <-> %d\n", e.BodyA.ID, e.BodyB.ID)
	})
	scene.Events.Subscribe(proximity.OVERLAP_EXIT, func(event proximity.Event) {
		e := event.(proximity.OverlapExitEvent)
		fmt.Printf("  exit:  %d <-> %d\n", e.BodyA.ID, e.BodyB.ID)
	})
	scene.Events.Subscribe(proximity.NON_CONVERGENT, func(event proximity.Event) {
		e := event.(proximity.NonConvergentEvent)
		fmt.Printf("  non-convergent: %d <-> %d after %d iterations\n", e.BodyA.ID, e.BodyB.ID, e.Iterations)
	})

	const steps = 40
	for step := 0; step < steps; step++ {
		// The probe sweeps along x while sinking towards the floor
		position := mgl64.Vec3{-3 + 0.15*float64(step), 3 - 0.07*float64(step), 0}
		probe.SetPose(position, probe.Transform.Rotation)

		fmt.Printf("--- step %d, probe at %v ---\n", step+1, position)
		for _, p := range scene.Detect() {
			if p.Overlap {
				fmt.Printf("  %d/%d overlap near %v\n", p.BodyA.ID, p.BodyB.ID, p.WitnessA)
				continue
			}
			fmt.Printf("  %d/%d distance %.4f (iterations %d)\n", p.BodyA.ID, p.BodyB.ID, p.Distance(), p.Result.Iterations)
		}
	}
}
