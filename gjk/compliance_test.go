package gjk_test

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/akmonengine/proximity/gjk"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pmezard/go-difflib/difflib"
)

var expectedTrace = strings.Join([]string{
	"separated cubes: overlap = false, success = true, iters = 2, distance = 2",
	"overlapping cubes: overlap = true, success = true, iters = 3, distance = 0",
	"same cube: overlap = true, success = true, iters = 3, distance = 0",
	"diagonal cubes: overlap = false, success = true, iters = 2, distance = 1.4142135623730951",
	"single points: overlap = false, success = true, iters = 2, distance = 3",
	"planar squares: overlap = false, success = true, iters = 2, distance = 2",
	"no degeneracy check: overlap = false, success = true, iters = 2, distance = 2",
}, "\n") + "\n"

func TestComplianceTrace(t *testing.T) {
	ident := mgl64.QuatIdent()
	box := []mgl64.Vec3{
		{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {-0.5, 0.5, -0.5}, {0.5, 0.5, -0.5},
		{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {-0.5, 0.5, 0.5}, {0.5, 0.5, 0.5},
	}
	squareVerts := []mgl64.Vec3{{-0.5, -0.5, 0}, {0.5, -0.5, 0}, {0.5, 0.5, 0}, {-0.5, 0.5, 0}}
	point := []mgl64.Vec3{{0, 0, 0}}

	noCheck := gjk.DefaultConfig()
	noCheck.DegeneracyCheck = false

	cases := []struct {
		name   string
		result gjk.Result
	}{
		{"separated cubes", gjk.Distance(box, box, ident, ident, mgl64.Vec3{3, 0, 0})},
		{"overlapping cubes", gjk.Distance(box, box, ident, ident, mgl64.Vec3{0.5, 0, 0})},
		{"same cube", gjk.Distance(box, box, ident, ident, mgl64.Vec3{})},
		{"diagonal cubes", gjk.Distance(box, box, ident, ident, mgl64.Vec3{2, 2, 0})},
		{"single points", gjk.Distance(point, point, ident, ident, mgl64.Vec3{3, 0, 0})},
		{"planar squares", gjk.Distance2D(squareVerts, squareVerts, ident, ident, mgl64.Vec3{3, 0, 0})},
		{"no degeneracy check", gjk.GJK[gjk.Dim3](box, box, ident, ident, mgl64.Vec3{3, 0, 0}, noCheck)},
	}

	var b strings.Builder
	for _, c := range cases {
		distance := c.result.Distance()
		if c.result.Overlap {
			distance = math.Round(distance)
		}
		fmt.Fprintf(&b, "%s: overlap = %v, success = %v, iters = %v, distance = %v\n",
			c.name, c.result.Overlap, c.result.Success, c.result.Iterations, distance)
	}
	msg := b.String()

	if msg != expectedTrace {
		diff := difflib.UnifiedDiff{
			A:        difflib.SplitLines(expectedTrace),
			B:        difflib.SplitLines(msg),
			FromFile: "Expected",
			ToFile:   "Current",
			Context:  0,
		}
		text, _ := difflib.GetUnifiedDiffString(diff)
		t.Fatalf("trace does not match the reference:\n%s", text)
	}
}
