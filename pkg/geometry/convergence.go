package geometry

import (
	"gonum.org/v1/gonum/stat"

	"github.com/framecheck/framecheck/pkg/types"
)

// parallelEpsilon is the smallest determinant magnitude treated as a real
// crossing; below it the two lines are considered parallel.
const parallelEpsilon = 1e-10

// SegmentIntersection solves for the crossing of the infinite lines through
// segments a and b using the 2x2 determinant form. It returns false when the
// lines are near-parallel or when the crossing falls outside either finite
// segment.
func SegmentIntersection(a, b types.LineSegment) (types.Point, bool) {
	x1, y1 := float64(a.Start.X), float64(a.Start.Y)
	x2, y2 := float64(a.End.X), float64(a.End.Y)
	x3, y3 := float64(b.Start.X), float64(b.Start.Y)
	x4, y4 := float64(b.End.X), float64(b.End.Y)

	denom := (x1-x2)*(y3-y4) - (y1-y2)*(x3-x4)
	if denom < parallelEpsilon && denom > -parallelEpsilon {
		return types.Point{}, false
	}

	t := ((x1-x3)*(y3-y4) - (y1-y3)*(x3-x4)) / denom
	u := -((x1-x2)*(y1-y3) - (y1-y2)*(x1-x3)) / denom
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return types.Point{}, false
	}

	return types.Point{
		X: int(x1 + t*(x2-x1)),
		Y: int(y1 + t*(y2-y1)),
	}, true
}

// Convergence estimates the point toward which a set of line segments
// converge: the mean of all pairwise segment intersections. It returns nil
// when fewer than two segments are given or no pair intersects within both
// finite extents.
func Convergence(lines []types.LineSegment) *types.Point {
	if len(lines) < 2 {
		return nil
	}

	var xs, ys []float64
	for i := 0; i < len(lines); i++ {
		for j := i + 1; j < len(lines); j++ {
			if p, ok := SegmentIntersection(lines[i], lines[j]); ok {
				xs = append(xs, float64(p.X))
				ys = append(ys, float64(p.Y))
			}
		}
	}
	if len(xs) == 0 {
		return nil
	}

	return &types.Point{
		X: int(stat.Mean(xs, nil)),
		Y: int(stat.Mean(ys, nil)),
	}
}
