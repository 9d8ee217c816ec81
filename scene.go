package proximity

import (
	"log/slog"
	"sort"

	"github.com/akmonengine/proximity/actor"
	"github.com/akmonengine/proximity/gjk"
	"github.com/pkg/errors"
)

const DEFAULT_WORKERS = 1

// Scene holds a set of bodies and answers, on each Detect, which pairs overlap
// and how far apart the others are.
type Scene struct {
	// List of all bodies in the scene
	Bodies      []*actor.Body
	SpatialGrid *SpatialGrid
	Workers     int

	// Margin grows every AABB before the broad phase, so that separated pairs
	// closer than Margin still get a distance query.
	Margin float64
	// Conservative treats pairs whose query did not converge as overlapping.
	Conservative bool
	// Planar runs the two-dimensional instantiation of the query.
	Planar bool

	Config gjk.Config
	Logger *slog.Logger

	Events Events
}

// NewScene creates an empty scene with the default tolerances
func NewScene(cellSize float64, numCells int) *Scene {
	return &Scene{
		SpatialGrid: NewSpatialGrid(cellSize, numCells),
		Workers:     DEFAULT_WORKERS,
		Config:      gjk.DefaultConfig(),
		Events:      NewEvents(),
	}
}

// AddBody adds a body to the scene. Body ids must be unique.
func (s *Scene) AddBody(body *actor.Body) error {
	if err := checkBody(body); err != nil {
		return err
	}
	for _, b := range s.Bodies {
		if b.ID == body.ID {
			return errors.Wrapf(ErrDuplicateBody, "id %d", body.ID)
		}
	}

	s.Bodies = append(s.Bodies, body)
	return nil
}

// RemoveBody removes a body from the scene. Its pairs are forgotten silently,
// no Exit event is sent for them.
func (s *Scene) RemoveBody(body *actor.Body) {
	k := -1
	for i, b := range s.Bodies {
		if b == body {
			k = i
			break
		}
	}

	if k != -1 {
		s.Bodies = append(s.Bodies[:k], s.Bodies[k+1:]...)
	}

	s.Events.forget(body)
}

// Detect runs one detection pass over the current poses. The proximities are
// sorted by (BodyA.ID, BodyB.ID), BodyA always holding the lower id. Events
// are dispatched before Detect returns.
func (s *Scene) Detect() []Proximity {
	s.Workers = max(DEFAULT_WORKERS, s.Workers)
	if s.SpatialGrid == nil {
		s.SpatialGrid = NewSpatialGrid(1, 1024)
	}
	logger := s.logger()

	// Phase 1: refresh the bounds
	task(s.Workers, s.Bodies, func(body *actor.Body) {
		body.ComputeAABB(s.Margin)
	})

	// Phase 2.0: Broad phase
	// Phase 2.1: Narrow phase
	results := make([]Proximity, 0, len(s.Bodies))
	nonConvergent := 0
	for p := range NarrowPhase(BroadPhase(s.SpatialGrid, s.Bodies, s.Workers), s.Workers, s.Config, s.Planar) {
		if !p.Converged() {
			nonConvergent++
			logger.Warn("proximity query did not converge",
				slog.Int("bodyA", p.BodyA.ID),
				slog.Int("bodyB", p.BodyB.ID),
				slog.Int("iterations", p.Result.Iterations),
				slog.Bool("conservative", s.Conservative),
			)
			if s.Conservative {
				p.Overlap = true
			}
		}
		results = append(results, p)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].BodyA.ID != results[j].BodyA.ID {
			return results[i].BodyA.ID < results[j].BodyA.ID
		}
		return results[i].BodyB.ID < results[j].BodyB.ID
	})

	// Phase 3: events
	s.Events.record(results)
	s.Events.flush()

	logger.Debug("proximity pass",
		slog.Int("bodies", len(s.Bodies)),
		slog.Int("pairs", len(results)),
		slog.Int("nonConvergent", nonConvergent),
	)

	return results
}

func (s *Scene) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
