// Package lines extracts and classifies straight line features that guide a
// viewer's eye through a photograph.
package lines

import (
	"image"
	"math"

	"gocv.io/x/gocv"

	"github.com/framecheck/framecheck/pkg/geometry"
	"github.com/framecheck/framecheck/pkg/types"
)

// Profile selects the Hough extraction parameters for one use case. The
// leading-lines profile favors long, compositionally significant segments;
// the deskew profile admits shorter segments so the rotation estimate has
// more samples to take a median over.
type Profile struct {
	Name          string  `json:"name"`
	MinLineLength int     `json:"min_line_length"`
	MinKeepPx     float64 `json:"min_keep_px"`
	MinKeepRatio  float64 `json:"min_keep_ratio"`
}

// The two built-in parameter profiles.
var (
	LeadingLines = Profile{Name: "leading-lines", MinLineLength: 100, MinKeepRatio: 0.2}
	Deskew       = Profile{Name: "deskew", MinLineLength: 50, MinKeepPx: 80}
)

// Config holds the shared edge and Hough parameters.
type Config struct {
	BlurKernel     int     `json:"blur_kernel"`
	CannyLow       float32 `json:"canny_low"`
	CannyHigh      float32 `json:"canny_high"`
	HoughRho       float32 `json:"hough_rho"`
	HoughThetaDeg  float32 `json:"hough_theta_deg"`
	HoughThreshold int     `json:"hough_threshold"`
	HoughMaxGap    float32 `json:"hough_max_gap"`
}

// Detector extracts straight line segments from an image.
type Detector struct {
	config Config
}

// New creates a Detector with default parameters.
func New() *Detector {
	return &Detector{
		config: Config{
			BlurKernel:     5,
			CannyLow:       50,
			CannyHigh:      150,
			HoughRho:       1,
			HoughThetaDeg:  1,
			HoughThreshold: 100,
			HoughMaxGap:    10,
		},
	}
}

// NewWithConfig creates a Detector with custom parameters.
func NewWithConfig(config Config) *Detector {
	return &Detector{config: config}
}

// Detect runs grayscale conversion, Gaussian smoothing, Canny edge detection
// and a probabilistic Hough transform over img, returning the segments that
// survive the profile's length filter in detection order. An empty result is
// a valid outcome, not an error.
func (d *Detector) Detect(img gocv.Mat, profile Profile) []types.LineSegment {
	if img.Empty() {
		return nil
	}
	width, height := img.Cols(), img.Rows()

	gray := grayscale(img)
	defer gray.Close()

	blurred := gocv.NewMat()
	defer blurred.Close()
	k := d.config.BlurKernel
	gocv.GaussianBlur(gray, &blurred, image.Pt(k, k), 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blurred, &edges, d.config.CannyLow, d.config.CannyHigh)

	hough := gocv.NewMat()
	defer hough.Close()
	theta := float32(math.Pi / 180 * float64(d.config.HoughThetaDeg))
	gocv.HoughLinesPWithParams(edges, &hough, d.config.HoughRho, theta,
		d.config.HoughThreshold, float32(profile.MinLineLength), d.config.HoughMaxGap)

	minKeep := profile.MinKeepPx
	if byRatio := profile.MinKeepRatio * float64(min(width, height)); byRatio > minKeep {
		minKeep = byRatio
	}

	var segments []types.LineSegment
	for i := 0; i < hough.Rows(); i++ {
		v := hough.GetVeciAt(i, 0)
		start := types.Point{X: int(v[0]), Y: int(v[1])}
		end := types.Point{X: int(v[2]), Y: int(v[3])}

		length := geometry.SegmentLength(start, end)
		if length <= minKeep {
			continue
		}
		segments = append(segments, types.LineSegment{
			Start:  start,
			End:    end,
			Length: length,
			Angle:  geometry.SegmentAngle(start, end),
		})
	}
	return segments
}

// grayscale returns a single-channel copy of img, converting when needed.
func grayscale(img gocv.Mat) gocv.Mat {
	if img.Channels() == 1 {
		return img.Clone()
	}
	gray := gocv.NewMat()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)
	return gray
}
