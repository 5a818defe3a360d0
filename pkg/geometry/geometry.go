// Package geometry holds the shared 2D point and segment math used across
// the composition pipeline.
package geometry

import (
	"math"

	"github.com/framecheck/framecheck/pkg/types"
)

// Distance returns the Euclidean distance between two pixel points.
func Distance(a, b types.Point) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// SegmentLength returns the length of a segment between two endpoints.
func SegmentLength(start, end types.Point) float64 {
	return Distance(start, end)
}

// SegmentAngle returns the angle of the segment in degrees, normalized to
// (-90, 90]. A horizontal segment is 0; positive angles slope downward in
// image coordinates (y grows toward the bottom).
func SegmentAngle(start, end types.Point) float64 {
	angle := math.Atan2(float64(end.Y-start.Y), float64(end.X-start.X)) * 180 / math.Pi
	return NormalizeAngle(angle)
}

// NormalizeAngle maps an angle in degrees onto (-90, 90].
func NormalizeAngle(deg float64) float64 {
	if deg > 90 {
		deg -= 180
	} else if deg <= -90 {
		deg += 180
	}
	return deg
}
