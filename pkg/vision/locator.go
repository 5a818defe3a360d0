// Package vision locates the dominant subject of a photograph.
//
// The locator thresholds the image against its local neighborhood so that
// regions darker than their surroundings become foreground, extracts external
// contours, and takes the centroid of the largest one covering at least 1% of
// the frame. Absence of such a region is not an error: the geometric image
// center is substituted and flagged as a fallback.
package vision

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/framecheck/framecheck/pkg/grid"
	"github.com/framecheck/framecheck/pkg/types"
)

// Config holds the subject detection parameters.
type Config struct {
	BlurKernel     int     `json:"blur_kernel"`
	ThresholdBlock int     `json:"threshold_block"`
	ThresholdC     float32 `json:"threshold_c"`
	MinAreaRatio   float64 `json:"min_area_ratio"`
	ThirdsRatio    float64 `json:"thirds_ratio"`
}

// Locator finds the focal subject of an image.
type Locator struct {
	config Config
}

// New creates a Locator with default parameters.
func New() *Locator {
	return &Locator{
		config: Config{
			BlurKernel:     5,
			ThresholdBlock: 11,
			ThresholdC:     2,
			MinAreaRatio:   0.01,
			ThirdsRatio:    0.15,
		},
	}
}

// NewWithConfig creates a Locator with custom parameters.
func NewWithConfig(config Config) *Locator {
	return &Locator{config: config}
}

// Locate returns the subject of img along with its relation to the
// rule-of-thirds grid.
func (l *Locator) Locate(img gocv.Mat) types.Subject {
	width, height := img.Cols(), img.Rows()

	center, detected := l.subjectCenter(img)
	if !detected {
		center = types.Point{X: width / 2, Y: height / 2}
	}

	closest, dist := grid.NearestIntersection(width, height, center)
	threshold := float64(min(width, height)) * l.config.ThirdsRatio

	return types.Subject{
		Center:              center,
		Fallback:            !detected,
		ClosestIntersection: closest,
		Distance:            dist,
		Threshold:           threshold,
		FollowsRuleOfThirds: dist < threshold,
	}
}

// subjectCenter runs the contour pipeline and returns the centroid of the
// largest qualifying contour, or false when none qualifies.
func (l *Locator) subjectCenter(img gocv.Mat) (types.Point, bool) {
	if img.Empty() {
		return types.Point{}, false
	}
	width, height := img.Cols(), img.Rows()

	gray := gocv.NewMat()
	defer gray.Close()
	if img.Channels() == 1 {
		img.CopyTo(&gray)
	} else {
		gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	k := l.config.BlurKernel
	gocv.GaussianBlur(gray, &blurred, image.Pt(k, k), 0, 0, gocv.BorderDefault)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.AdaptiveThreshold(blurred, &thresh, 255, gocv.AdaptiveThresholdMean,
		gocv.ThresholdBinaryInv, l.config.ThresholdBlock, l.config.ThresholdC)

	contours := gocv.FindContours(thresh, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	minArea := float64(width*height) * l.config.MinAreaRatio
	bestIdx := -1
	bestArea := 0.0
	for i := 0; i < contours.Size(); i++ {
		area := gocv.ContourArea(contours.At(i))
		if area > minArea && area > bestArea {
			bestArea = area
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return types.Point{}, false
	}

	// Centroid from the first moments of the filled contour mass.
	mask := gocv.NewMatWithSize(height, width, gocv.MatTypeCV8UC1)
	defer mask.Close()
	gocv.DrawContours(&mask, contours, bestIdx, color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)

	m := gocv.Moments(mask, true)
	if m["m00"] == 0 {
		return types.Point{}, false
	}
	return types.Point{
		X: int(m["m10"] / m["m00"]),
		Y: int(m["m01"] / m["m00"]),
	}, true
}
