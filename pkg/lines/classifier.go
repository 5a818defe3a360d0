package lines

import (
	"math"

	"github.com/framecheck/framecheck/pkg/types"
)

// Classification thresholds. A segment is diagonal when its normalized angle
// sits strictly between the two bounds; a corner origin requires an endpoint
// near a vertical image edge and a horizontal image edge at once.
const (
	diagonalMinDeg  = 15.0
	diagonalMaxDeg  = 75.0
	cornerEdgeRatio = 0.1
)

// Classify tags each segment as diagonal and/or corner-originating for an
// image of the given size, and aggregates the strong-leading-lines signal:
// at least two diagonals, or at least one corner-originating segment. The
// input slice is not modified.
func Classify(segments []types.LineSegment, width, height int) ([]types.LineSegment, bool) {
	classified := make([]types.LineSegment, len(segments))
	diagonals, corners := 0, 0

	for i, seg := range segments {
		seg.Diagonal = isDiagonal(seg.Angle)
		seg.CornerOrigin = nearCorner(seg.Start, width, height) || nearCorner(seg.End, width, height)
		if seg.Diagonal {
			diagonals++
		}
		if seg.CornerOrigin {
			corners++
		}
		classified[i] = seg
	}

	return classified, diagonals >= 2 || corners >= 1
}

func isDiagonal(angle float64) bool {
	a := math.Abs(angle)
	return a > diagonalMinDeg && a < diagonalMaxDeg
}

// nearCorner reports whether p lies within 10% of a left/right edge and
// within 10% of a top/bottom edge. Proximity to one edge alone is not a
// corner.
func nearCorner(p types.Point, width, height int) bool {
	fx, fy := float64(p.X), float64(p.Y)
	fw, fh := float64(width), float64(height)

	nearVertical := fx < fw*cornerEdgeRatio || fx > fw*(1-cornerEdgeRatio)
	nearHorizontal := fy < fh*cornerEdgeRatio || fy > fh*(1-cornerEdgeRatio)
	return nearVertical && nearHorizontal
}
