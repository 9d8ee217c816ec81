package proximity

import (
	"sync"

	"github.com/akmonengine/proximity/actor"
	"github.com/akmonengine/proximity/gjk"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

var (
	ErrNilBody       = errors.New("nil body")
	ErrDuplicateBody = errors.New("body id already in scene")
)

// Proximity is the narrow-phase answer for one pair of bodies
type Proximity struct {
	BodyA *actor.Body
	BodyB *actor.Body

	// Result is expressed in the frame translated to BodyA's position
	Result gjk.Result

	// World-space closest points. When Overlap is true they only locate a
	// point of the overlap region.
	WitnessA mgl64.Vec3
	WitnessB mgl64.Vec3

	// Overlap is Result.Overlap, possibly forced by the scene's fallback
	// policy when the query did not converge.
	Overlap bool
}

// Distance is zero for overlapping pairs and |Separation| otherwise.
func (p Proximity) Distance() float64 {
	if p.Overlap {
		return 0
	}
	return p.Result.Distance()
}

// Converged reports whether the query finished within its iteration cap
func (p Proximity) Converged() bool {
	return p.Result.Success
}

// Query runs a three-dimensional GJK query between two world-placed bodies.
//
// The core works in the frame where a sits at the origin: b is passed with the
// relative translation b.Position - a.Position, and the witnesses are moved
// back to world space before returning.
func Query(a, b *actor.Body, cfg gjk.Config) (Proximity, error) {
	return query[gjk.Dim3](a, b, cfg)
}

// QueryPlanar is Query for planar bodies (z == 0, rotations about z).
func QueryPlanar(a, b *actor.Body, cfg gjk.Config) (Proximity, error) {
	return query[gjk.Dim2](a, b, cfg)
}

func query[D gjk.Dimension](a, b *actor.Body, cfg gjk.Config) (Proximity, error) {
	if err := checkBody(a); err != nil {
		return Proximity{}, errors.WithMessage(err, "body A")
	}
	if err := checkBody(b); err != nil {
		return Proximity{}, errors.WithMessage(err, "body B")
	}

	origin := a.Transform.Position
	result := gjk.GJK[D](
		a.Shape.Vertices(),
		b.Shape.Vertices(),
		a.Transform.Rotation,
		b.Transform.Rotation,
		b.Transform.Position.Sub(origin),
		cfg,
	)

	return Proximity{
		BodyA:    a,
		BodyB:    b,
		Result:   result,
		WitnessA: result.WitnessA.Add(origin),
		WitnessB: result.WitnessB.Add(origin),
		Overlap:  result.Overlap,
	}, nil
}

func checkBody(body *actor.Body) error {
	if body == nil {
		return errors.WithStack(ErrNilBody)
	}
	if body.Shape == nil {
		return errors.Wrapf(actor.ErrNilShape, "body %d", body.ID)
	}
	if body.Shape.Len() == 0 {
		return errors.Wrapf(actor.ErrEmptyVertexSet, "body %d", body.ID)
	}
	return nil
}

// BroadPhase rebuilds the grid from the bodies' cached bounds and streams the
// pairs whose bounds overlap
func BroadPhase(spatialGrid *SpatialGrid, bodies []*actor.Body, workersCount int) <-chan Pair {
	spatialGrid.Clear()
	for i, body := range bodies {
		spatialGrid.Insert(i, body)
	}
	spatialGrid.SortCells()

	return spatialGrid.FindPairsParallel(bodies, workersCount)
}

// NarrowPhase runs one GJK query per pair on workersCount goroutines, with the
// lower body id as BodyA. Pairs whose bodies fail validation are dropped.
// Queries share no state, so the workers never synchronize beyond the channels.
func NarrowPhase(pairs <-chan Pair, workersCount int, cfg gjk.Config, planar bool) <-chan Proximity {
	ch := make(chan Proximity, workersCount)

	run := query[gjk.Dim3]
	if planar {
		run = query[gjk.Dim2]
	}

	go func() {
		var wg sync.WaitGroup
		defer close(ch)

		for w := 0; w < workersCount; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for pair := range pairs {
					a, b := pair.BodyA, pair.BodyB
					if b.ID < a.ID {
						a, b = b, a
					}
					p, err := run(a, b, cfg)
					if err != nil {
						continue
					}
					ch <- p
				}
			}()
		}

		wg.Wait()
	}()

	return ch
}
