package grid

import (
	"math"
	"testing"

	"github.com/framecheck/framecheck/pkg/types"
)

func TestGrid(t *testing.T) {
	g := Grid(900, 600)

	if g.Width != 900 || g.Height != 600 {
		t.Errorf("dimensions = %dx%d, want 900x600", g.Width, g.Height)
	}
	if g.Vertical != [2]int{300, 600} {
		t.Errorf("vertical lines = %v, want [300 600]", g.Vertical)
	}
	if g.Horizontal != [2]int{200, 400} {
		t.Errorf("horizontal lines = %v, want [200 400]", g.Horizontal)
	}

	want := [4]types.Point{
		{X: 300, Y: 200},
		{X: 300, Y: 400},
		{X: 600, Y: 200},
		{X: 600, Y: 400},
	}
	if g.Intersections != want {
		t.Errorf("intersections = %v, want %v", g.Intersections, want)
	}
}

func TestGridIntegerDivision(t *testing.T) {
	// Dimensions that do not divide by three truncate, so the second line
	// sits at twice the first, not necessarily at 2/3 of the dimension.
	g := Grid(100, 100)
	if g.Vertical != [2]int{33, 66} {
		t.Errorf("vertical lines = %v, want [33 66]", g.Vertical)
	}
}

func TestNearestIntersection(t *testing.T) {
	tests := []struct {
		name     string
		p        types.Point
		want     types.Point
		wantDist float64
	}{
		{"exactly on intersection", types.Point{X: 300, Y: 200}, types.Point{X: 300, Y: 200}, 0},
		{"near upper left", types.Point{X: 310, Y: 200}, types.Point{X: 300, Y: 200}, 10},
		{"near lower right", types.Point{X: 590, Y: 410}, types.Point{X: 600, Y: 400}, math.Sqrt(200)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, dist := NearestIntersection(900, 600, tt.p)
			if got != tt.want {
				t.Errorf("NearestIntersection() point = %+v, want %+v", got, tt.want)
			}
			if math.Abs(dist-tt.wantDist) > 1e-9 {
				t.Errorf("NearestIntersection() dist = %v, want %v", dist, tt.wantDist)
			}
		})
	}
}

func TestNearestIntersectionTieBreak(t *testing.T) {
	// The center of a 900x600 image is equidistant from all four
	// intersections; the first in grid order wins.
	got, _ := NearestIntersection(900, 600, types.Point{X: 450, Y: 300})
	if (got != types.Point{X: 300, Y: 200}) {
		t.Errorf("tie should resolve to the first intersection, got %+v", got)
	}
}
