package deskew

import (
	"math"
	"testing"

	"github.com/framecheck/framecheck/pkg/types"
)

func withAngles(angles ...float64) []types.LineSegment {
	segments := make([]types.LineSegment, len(angles))
	for i, a := range angles {
		segments[i] = types.LineSegment{Angle: a}
	}
	return segments
}

func TestEstimate(t *testing.T) {
	e := NewEstimator()

	tests := []struct {
		name     string
		segments []types.LineSegment
		want     float64
	}{
		{
			name:     "no segments",
			segments: nil,
			want:     0,
		},
		{
			name:     "consistent twenty degree tilt",
			segments: withAngles(20, 20, 20),
			want:     -20,
		},
		{
			name:     "negative tilt corrects positive",
			segments: withAngles(-20, -20, -20),
			want:     20,
		},
		{
			name: "aligned majority vetoes",
			// Four of five lines near horizontal or vertical: treat the
			// frame as already straight even though the median is 10.
			segments: withAngles(1, -2, 89, -88, 10),
			want:     0,
		},
		{
			name:     "tiny median vetoes",
			segments: withAngles(1, 1, 1, 30, -30, 25, -25),
			want:     0,
		},
		{
			name: "large median reads as intentional",
			// Median 60 falls in the major-rotation window.
			segments: withAngles(60, 60, 60),
			want:     0,
		},
		{
			name:     "forty four degrees is corrected",
			segments: withAngles(44, 44, 44),
			want:     -44,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Estimate(tt.segments)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Estimate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEstimateMedianIsRobust(t *testing.T) {
	e := NewEstimator()

	// A single 60 degree outlier must not drag the correction away from
	// the consistent 20 degree tilt.
	got := e.Estimate(withAngles(20, 20, 20, 20, 60))
	if math.Abs(got - -20) > 0.5 {
		t.Errorf("Estimate() = %v, want about -20", got)
	}
}

func TestEstimateCustomConfig(t *testing.T) {
	e := NewEstimatorWithConfig(EstimatorConfig{
		AlignedRatio:     1.0,
		AlignedWindowDeg: 15,
		MinSkewDeg:       0.5,
		MajorRotationDeg: 45,
	})

	// Under the default config the aligned-majority veto would fire here;
	// with the ratio raised to 1.0 it cannot.
	got := e.Estimate(withAngles(10, 1, -2, 89))
	if got == 0 {
		t.Error("raised aligned ratio should disable the majority veto")
	}
}
