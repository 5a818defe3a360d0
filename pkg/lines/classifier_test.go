package lines

import (
	"testing"

	"github.com/framecheck/framecheck/pkg/types"
)

func TestIsDiagonal(t *testing.T) {
	tests := []struct {
		name  string
		angle float64
		want  bool
	}{
		{"horizontal", 0, false},
		{"shallow", 15, false},
		{"just past shallow bound", 16, true},
		{"forty five", 45, true},
		{"negative forty five", -45, true},
		{"steep bound", 75, false},
		{"just under steep bound", 74, true},
		{"vertical", 90, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isDiagonal(tt.angle); got != tt.want {
				t.Errorf("isDiagonal(%v) = %v, want %v", tt.angle, got, tt.want)
			}
		})
	}
}

func TestNearCorner(t *testing.T) {
	// 1000x800 image: corner zones are within 100px of a vertical edge and
	// 80px of a horizontal edge simultaneously.
	tests := []struct {
		name string
		p    types.Point
		want bool
	}{
		{"top left corner", types.Point{X: 50, Y: 40}, true},
		{"bottom right corner", types.Point{X: 950, Y: 770}, true},
		{"left edge only", types.Point{X: 50, Y: 400}, false},
		{"top edge only", types.Point{X: 500, Y: 40}, false},
		{"center", types.Point{X: 500, Y: 400}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nearCorner(tt.p, 1000, 800); got != tt.want {
				t.Errorf("nearCorner(%+v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	segments := []types.LineSegment{
		{Start: types.Point{X: 500, Y: 100}, End: types.Point{X: 900, Y: 100}, Angle: 0},
		{Start: types.Point{X: 200, Y: 200}, End: types.Point{X: 600, Y: 500}, Angle: 36.87},
	}

	classified, strong := Classify(segments, 1000, 800)

	if classified[0].Diagonal {
		t.Error("horizontal segment classified as diagonal")
	}
	if !classified[1].Diagonal {
		t.Error("36.87 degree segment not classified as diagonal")
	}
	if strong {
		t.Error("one diagonal and no corner lines should not be strong")
	}

	// Input must not be mutated.
	if segments[1].Diagonal {
		t.Error("Classify mutated its input")
	}
}

func TestClassifyStrongSignals(t *testing.T) {
	diag := func(x1, y1, x2, y2 int) types.LineSegment {
		return types.LineSegment{
			Start: types.Point{X: x1, Y: y1},
			End:   types.Point{X: x2, Y: y2},
			Angle: 45,
		}
	}

	t.Run("two diagonals", func(t *testing.T) {
		_, strong := Classify([]types.LineSegment{
			diag(400, 300, 600, 500),
			diag(600, 300, 400, 500),
		}, 1000, 800)
		if !strong {
			t.Error("two diagonals should be strong")
		}
	})

	t.Run("one corner line", func(t *testing.T) {
		// Horizontal line from the top-left corner zone: not diagonal,
		// but corner origin alone makes the signal strong.
		segs := []types.LineSegment{
			{Start: types.Point{X: 20, Y: 20}, End: types.Point{X: 700, Y: 20}, Angle: 0},
		}
		classified, strong := Classify(segs, 1000, 800)
		if !classified[0].CornerOrigin {
			t.Error("line starting in the corner zone should be corner-origin")
		}
		if !strong {
			t.Error("a corner-origin line should be strong")
		}
	})

	t.Run("corner at far endpoint", func(t *testing.T) {
		// The end point, not the start, sits in the bottom-right zone.
		segs := []types.LineSegment{
			{Start: types.Point{X: 500, Y: 400}, End: types.Point{X: 980, Y: 790}, Angle: 39},
		}
		classified, _ := Classify(segs, 1000, 800)
		if !classified[0].CornerOrigin {
			t.Error("corner check must consider both endpoints")
		}
	})

	t.Run("no segments", func(t *testing.T) {
		classified, strong := Classify(nil, 1000, 800)
		if len(classified) != 0 || strong {
			t.Error("empty input should classify to empty and weak")
		}
	})
}
