package deskew

import (
	"gocv.io/x/gocv"

	"github.com/framecheck/framecheck/pkg/crop"
	"github.com/framecheck/framecheck/pkg/geometry"
	"github.com/framecheck/framecheck/pkg/lines"
	"github.com/framecheck/framecheck/pkg/types"
)

// Reframer runs the full straighten-and-recrop pipeline: detect lines,
// estimate and apply a corrective rotation, then plan a crop anchored on
// the strongest focal signal.
type Reframer struct {
	detector  *lines.Detector
	estimator *Estimator
	planner   *crop.Planner
}

// Result carries the outcome of a reframe pass. Rotated and Final are owned
// by the caller; release them with Close.
type Result struct {
	RotationAngle    float64
	Lines            []types.LineSegment
	ConvergencePoint *types.Point
	CropBox          types.CropBox
	Rotated          gocv.Mat
	Final            gocv.Mat
}

// Close releases the Mats held by the result.
func (r *Result) Close() {
	r.Rotated.Close()
	r.Final.Close()
}

// NewReframer creates a Reframer with default components.
func NewReframer() *Reframer {
	return &Reframer{
		detector:  lines.New(),
		estimator: NewEstimator(),
		planner:   crop.New(),
	}
}

// NewReframerWith creates a Reframer from caller-supplied components.
func NewReframerWith(detector *lines.Detector, estimator *Estimator, planner *crop.Planner) *Reframer {
	return &Reframer{detector: detector, estimator: estimator, planner: planner}
}

// Process straightens img and plans a crop on the rotated result. The crop
// anchors on subjectCenter when supplied, otherwise on the convergence point
// of the detected lines, otherwise it is centered. Lines are detected once,
// before rotation, and drive both the angle estimate and the convergence
// point.
func (r *Reframer) Process(img gocv.Mat, subjectCenter *types.Point) Result {
	segments := r.detector.Detect(img, lines.Deskew)
	angle := r.estimator.Estimate(segments)

	rotated := Rotate(img, angle)

	convergence := geometry.Convergence(segments)

	focal := subjectCenter
	if focal == nil {
		focal = convergence
	}

	box := r.planner.Plan(rotated.Cols(), rotated.Rows(), focal)
	final := r.planner.Apply(rotated, box)

	return Result{
		RotationAngle:    angle,
		Lines:            segments,
		ConvergencePoint: convergence,
		CropBox:          box,
		Rotated:          rotated,
		Final:            final,
	}
}
