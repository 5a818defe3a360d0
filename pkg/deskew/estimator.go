// Package deskew estimates and removes unintended tilt from photographs,
// then reframes them around the strongest compositional signal.
package deskew

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/framecheck/framecheck/pkg/types"
)

// EstimatorConfig holds the rotation estimation parameters. The alignment
// ratio and angle windows decide when a measured skew is vetoed as
// intentional or negligible.
type EstimatorConfig struct {
	// AlignedRatio is the fraction of near-horizontal plus near-vertical
	// lines above which the image counts as already grid-aligned.
	AlignedRatio float64 `json:"aligned_ratio"`
	// AlignedWindowDeg is the half-width of the near-horizontal and
	// near-vertical windows.
	AlignedWindowDeg float64 `json:"aligned_window_deg"`
	// MinSkewDeg is the smallest median angle worth correcting.
	MinSkewDeg float64 `json:"min_skew_deg"`
	// MajorRotationDeg bounds the window treated as an intentional
	// orientation change rather than skew.
	MajorRotationDeg float64 `json:"major_rotation_deg"`
}

// Estimator derives a corrective rotation from a set of line segments.
type Estimator struct {
	config EstimatorConfig
}

// NewEstimator creates an Estimator with default parameters.
func NewEstimator() *Estimator {
	return &Estimator{
		config: EstimatorConfig{
			AlignedRatio:     0.6,
			AlignedWindowDeg: 15,
			MinSkewDeg:       2,
			MajorRotationDeg: 45,
		},
	}
}

// NewEstimatorWithConfig creates an Estimator with custom parameters.
func NewEstimatorWithConfig(config EstimatorConfig) *Estimator {
	return &Estimator{config: config}
}

// Estimate returns the corrective rotation in degrees for the given
// unclassified line set, or 0 when no correction should be applied. The
// median segment angle drives the estimate; three vetoes fire in order:
// a majority of lines already near-horizontal or near-vertical, a median
// below the skew floor, and a median large enough to read as an intentional
// orientation change.
func (e *Estimator) Estimate(segments []types.LineSegment) float64 {
	if len(segments) == 0 {
		return 0
	}

	angles := make([]float64, len(segments))
	horizontal, vertical := 0, 0
	for i, seg := range segments {
		a := seg.Angle
		angles[i] = a
		if math.Abs(a) < e.config.AlignedWindowDeg {
			horizontal++
		}
		if math.Abs(a-90) < e.config.AlignedWindowDeg || math.Abs(a+90) < e.config.AlignedWindowDeg {
			vertical++
		}
	}

	if float64(horizontal+vertical)/float64(len(segments)) > e.config.AlignedRatio {
		return 0
	}

	sort.Float64s(angles)
	median := stat.Quantile(0.5, stat.LinInterp, angles, nil)

	if math.Abs(median) < e.config.MinSkewDeg {
		return 0
	}
	if math.Abs(median) > e.config.MajorRotationDeg && math.Abs(median) < 180-e.config.MajorRotationDeg {
		return 0
	}

	// Counter-rotate to cancel the measured tilt.
	return -median
}
