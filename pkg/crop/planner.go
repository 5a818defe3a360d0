// Package crop proposes a crop box that improves composition by pulling the
// focal point toward the nearest rule-of-thirds intersection.
package crop

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"

	"github.com/framecheck/framecheck/pkg/grid"
	"github.com/framecheck/framecheck/pkg/types"
)

// Config holds the crop planning parameters.
type Config struct {
	// DefaultSideRatio sizes the centered square used when no focal point
	// is available, as a fraction of the shorter image dimension.
	DefaultSideRatio float64 `json:"default_side_ratio"`
	// FocalSideRatio sizes the crop square around a focal point.
	FocalSideRatio float64 `json:"focal_side_ratio"`
	// BlendFactor is how far the crop center moves from the focal point
	// toward the ideal thirds intersection. A full snap would chase
	// detection noise; a partial pull damps it.
	BlendFactor float64 `json:"blend_factor"`
	// ReanchorRatio is the fraction of the intended side below which a
	// clamped axis is re-anchored against the edge instead of shrinking.
	ReanchorRatio float64 `json:"reanchor_ratio"`
}

// Planner selects crop boxes.
type Planner struct {
	config Config
}

// New creates a Planner with default parameters.
func New() *Planner {
	return &Planner{
		config: Config{
			DefaultSideRatio: 0.8,
			FocalSideRatio:   0.75,
			BlendFactor:      0.3,
			ReanchorRatio:    0.8,
		},
	}
}

// NewWithConfig creates a Planner with custom parameters.
func NewWithConfig(config Config) *Planner {
	return &Planner{config: config}
}

// Plan returns the crop box for a width x height image. With no focal point
// the crop is a centered square; with one, a slightly smaller square whose
// center is blended from the focal point toward the nearest thirds
// intersection, clamped to the image bounds.
func (p *Planner) Plan(width, height int, focal *types.Point) types.CropBox {
	if focal == nil {
		return p.centeredCrop(width, height)
	}

	side := float64(min(width, height)) * p.config.FocalSideRatio
	target, _ := grid.NearestIntersection(width, height, *focal)

	cx := float64(focal.X) + (float64(target.X)-float64(focal.X))*p.config.BlendFactor
	cy := float64(focal.Y) + (float64(target.Y)-float64(focal.Y))*p.config.BlendFactor

	half := math.Floor(side / 2)
	x1 := max(0, int(cx-half))
	y1 := max(0, int(cy-half))
	x2 := min(width, x1+int(side))
	y2 := min(height, y1+int(side))

	// Clamping against an edge can eat into the box; when it costs more
	// than a fifth of the side, slide the box flush instead.
	if float64(x2-x1) < side*p.config.ReanchorRatio {
		x1 = max(0, x2-int(side))
	}
	if float64(y2-y1) < side*p.config.ReanchorRatio {
		y1 = max(0, y2-int(side))
	}

	return validated(types.CropBox{X1: x1, Y1: y1, X2: x2, Y2: y2})
}

func (p *Planner) centeredCrop(width, height int) types.CropBox {
	side := float64(min(width, height)) * p.config.DefaultSideRatio
	x1 := int(math.Floor((float64(width) - side) / 2))
	y1 := int(math.Floor((float64(height) - side) / 2))
	return validated(types.CropBox{
		X1: x1,
		Y1: y1,
		X2: x1 + int(side),
		Y2: y1 + int(side),
	})
}

// Apply extracts the crop box from img as a fresh Mat. The caller owns the
// returned Mat.
func (p *Planner) Apply(img gocv.Mat, box types.CropBox) gocv.Mat {
	region := img.Region(image.Rect(box.X1, box.Y1, box.X2, box.Y2))
	defer region.Close()
	return region.Clone()
}

// validated guards the clamp invariant: a planned box always has positive
// area. Violations are defects, not recoverable conditions.
func validated(box types.CropBox) types.CropBox {
	if !box.Valid() {
		panic(fmt.Sprintf("crop: planned degenerate box %+v", box))
	}
	return box
}
