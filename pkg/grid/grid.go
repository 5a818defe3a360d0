// Package grid computes the rule-of-thirds geometry for an image size.
//
// The grid is pure integer-division geometry: divider lines at one and two
// thirds of each dimension and the four points where they cross. Both the
// subject locator and the crop planner resolve "nearest thirds intersection"
// through this package so the two can never drift apart.
package grid

import (
	"github.com/framecheck/framecheck/pkg/geometry"
	"github.com/framecheck/framecheck/pkg/types"
)

// Grid returns the rule-of-thirds grid for a width x height image.
func Grid(width, height int) types.GridSpec {
	v1, v2 := width/3, 2*(width/3)
	h1, h2 := height/3, 2*(height/3)

	return types.GridSpec{
		Width:      width,
		Height:     height,
		Vertical:   [2]int{v1, v2},
		Horizontal: [2]int{h1, h2},
		Intersections: [4]types.Point{
			{X: v1, Y: h1},
			{X: v1, Y: h2},
			{X: v2, Y: h1},
			{X: v2, Y: h2},
		},
	}
}

// Intersections returns just the four thirds intersections for a width x
// height image, in grid order.
func Intersections(width, height int) [4]types.Point {
	return Grid(width, height).Intersections
}

// NearestIntersection returns the thirds intersection closest to p and the
// Euclidean distance to it. Ties resolve to the earliest point in grid order.
func NearestIntersection(width, height int, p types.Point) (types.Point, float64) {
	points := Intersections(width, height)

	best := points[0]
	bestDist := geometry.Distance(p, points[0])
	for _, candidate := range points[1:] {
		if d := geometry.Distance(p, candidate); d < bestDist {
			best = candidate
			bestDist = d
		}
	}
	return best, bestDist
}
