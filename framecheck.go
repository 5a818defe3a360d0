// Package framecheck analyzes photographic composition.
//
// It measures how an image relates to the rule-of-thirds grid, detects and
// classifies leading lines, estimates and removes unintended tilt, and plans
// subject-aware crops. A language model backend can turn the measurements
// into coaching feedback and rank stylistically similar photographers.
//
// Basic usage:
//
//	package main
//
//	import (
//		"fmt"
//		"log"
//
//		"github.com/framecheck/framecheck"
//	)
//
//	func main() {
//		fc := framecheck.New()
//
//		img, err := fc.LoadImage("photo.jpg")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		report, err := fc.Analyze(img, "photo.jpg")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		fmt.Printf("follows rule of thirds: %v\n", report.Summary.FollowsRuleOfThirds)
//		fmt.Printf("leading lines: %d\n", report.Summary.TotalLines)
//	}
//
// The heavy lifting lives in the pkg subpackages: grid computes the thirds
// geometry, vision locates the subject, lines detects and classifies line
// segments, deskew estimates and applies corrective rotation, and crop plans
// the reframing box. This package wires them together behind one Analyzer.
package framecheck

import (
	"context"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"github.com/framecheck/framecheck/internal/config"
	"github.com/framecheck/framecheck/pkg/client"
	"github.com/framecheck/framecheck/pkg/crop"
	"github.com/framecheck/framecheck/pkg/deskew"
	"github.com/framecheck/framecheck/pkg/feedback"
	"github.com/framecheck/framecheck/pkg/geometry"
	"github.com/framecheck/framecheck/pkg/grid"
	"github.com/framecheck/framecheck/pkg/lines"
	"github.com/framecheck/framecheck/pkg/llamacpp"
	"github.com/framecheck/framecheck/pkg/ollama"
	"github.com/framecheck/framecheck/pkg/processing"
	"github.com/framecheck/framecheck/pkg/similarity"
	"github.com/framecheck/framecheck/pkg/types"
	"github.com/framecheck/framecheck/pkg/vision"
)

// Version of the framecheck library
const Version = "1.0.0"

// Analyzer is the high-level entry point for composition analysis.
type Analyzer struct {
	cfg *config.Config

	processor *processing.Processor
	locator   *vision.Locator
	detector  *lines.Detector
	estimator *deskew.Estimator
	planner   *crop.Planner
	reframer  *deskew.Reframer

	// The model client and similarity finder are built on first use so
	// purely geometric analysis never touches the model backend.
	modelOnce   sync.Once
	modelClient client.LanguageClient
	modelErr    error

	finderOnce sync.Once
	finder     *similarity.Finder
	finderErr  error
}

// Report bundles the per-image composition analysis.
type Report struct {
	Filename     string                   `json:"filename"`
	Width        int                      `json:"width"`
	Height       int                      `json:"height"`
	RuleOfThirds types.RuleOfThirdsResult `json:"rule_of_thirds"`
	LeadingLines types.LeadingLinesResult `json:"leading_lines"`
	Summary      types.AnalysisSummary    `json:"summary"`
}

// New creates an Analyzer with default configuration.
func New() *Analyzer {
	return NewWithConfig(config.Default())
}

// NewWithConfig creates an Analyzer from the given configuration.
func NewWithConfig(cfg *config.Config) *Analyzer {
	processor := processing.NewProcessor()
	processor.JPEGQuality = cfg.Processing.JPEGQuality
	processor.MinImageSize = cfg.Processing.MinImageSize

	locator := vision.NewWithConfig(vision.Config{
		BlurKernel:     cfg.Vision.BlurKernel,
		ThresholdBlock: cfg.Vision.ThresholdBlock,
		ThresholdC:     float32(cfg.Vision.ThresholdC),
		MinAreaRatio:   cfg.Vision.MinAreaRatio,
		ThirdsRatio:    cfg.Vision.ThirdsRatio,
	})

	detector := lines.NewWithConfig(lines.Config{
		BlurKernel:     cfg.Lines.BlurKernel,
		CannyLow:       cfg.Lines.CannyLow,
		CannyHigh:      cfg.Lines.CannyHigh,
		HoughRho:       1,
		HoughThetaDeg:  1,
		HoughThreshold: cfg.Lines.HoughThreshold,
		HoughMaxGap:    float32(cfg.Lines.HoughMaxGap),
	})

	estimator := deskew.NewEstimatorWithConfig(deskew.EstimatorConfig{
		AlignedRatio:     cfg.Deskew.AlignedRatio,
		AlignedWindowDeg: cfg.Deskew.AlignedWindowDeg,
		MinSkewDeg:       cfg.Deskew.MinSkewDeg,
		MajorRotationDeg: cfg.Deskew.MajorRotationDeg,
	})

	planner := crop.NewWithConfig(crop.Config{
		DefaultSideRatio: cfg.Crop.DefaultSideRatio,
		FocalSideRatio:   cfg.Crop.FocalSideRatio,
		BlendFactor:      cfg.Crop.BlendFactor,
		ReanchorRatio:    cfg.Crop.ReanchorRatio,
	})

	return &Analyzer{
		cfg:       cfg,
		processor: processor,
		locator:   locator,
		detector:  detector,
		estimator: estimator,
		planner:   planner,
		reframer:  deskew.NewReframerWith(detector, estimator, planner),
	}
}

// LoadImage loads an image from a file path.
func (a *Analyzer) LoadImage(path string) (image.Image, error) {
	return a.processor.LoadImage(path)
}

// LoadImageSmart loads an image from a file path or URL.
func (a *Analyzer) LoadImageSmart(source string) (image.Image, error) {
	return a.processor.LoadImageSmart(source)
}

// DecodeBytes decodes an uploaded image payload.
func (a *Analyzer) DecodeBytes(data []byte) (image.Image, error) {
	return a.processor.DecodeBytes(data)
}

// SaveImage saves an image to a file.
func (a *Analyzer) SaveImage(img image.Image, path string) error {
	return a.processor.SaveImage(img, path, "", a.cfg.Processing.JPEGQuality, false)
}

// ValidateImage checks that an image is large enough to analyze.
func (a *Analyzer) ValidateImage(img image.Image) error {
	return a.processor.ValidateImage(img)
}

// Grid returns the rule-of-thirds grid for the given dimensions.
func (a *Analyzer) Grid(width, height int) types.GridSpec {
	return grid.Grid(width, height)
}

// AnalyzeRuleOfThirds locates the subject and measures its placement against
// the thirds grid, returning the grid, subject and an annotated overlay.
func (a *Analyzer) AnalyzeRuleOfThirds(img image.Image) (types.RuleOfThirdsResult, error) {
	mat, err := a.processor.ToMat(img)
	if err != nil {
		return types.RuleOfThirdsResult{}, err
	}
	defer mat.Close()

	return a.ruleOfThirdsFromMat(mat)
}

func (a *Analyzer) ruleOfThirdsFromMat(mat gocv.Mat) (types.RuleOfThirdsResult, error) {
	g := grid.Grid(mat.Cols(), mat.Rows())
	subject := a.locator.Locate(mat)

	overlay := a.processor.RenderOverlay(mat, g, &subject, nil, nil)
	defer overlay.Close()

	encoded, err := a.processor.EncodeMatBase64(overlay)
	if err != nil {
		return types.RuleOfThirdsResult{}, fmt.Errorf("failed to encode grid overlay: %w", err)
	}

	return types.RuleOfThirdsResult{
		Grid:      g,
		Subject:   subject,
		GridImage: encoded,
	}, nil
}

// AnalyzeLeadingLines detects and classifies leading lines, returning the
// segments, summary counts and an annotated overlay.
func (a *Analyzer) AnalyzeLeadingLines(img image.Image) (types.LeadingLinesResult, error) {
	mat, err := a.processor.ToMat(img)
	if err != nil {
		return types.LeadingLinesResult{}, err
	}
	defer mat.Close()

	return a.leadingLinesFromMat(mat)
}

func (a *Analyzer) leadingLinesFromMat(mat gocv.Mat) (types.LeadingLinesResult, error) {
	segments := a.detector.Detect(mat, lines.LeadingLines)
	classified, strong := lines.Classify(segments, mat.Cols(), mat.Rows())

	diagonals, corners := 0, 0
	for _, seg := range classified {
		if seg.Diagonal {
			diagonals++
		}
		if seg.CornerOrigin {
			corners++
		}
	}

	overlay := a.processor.RenderOverlay(mat, types.GridSpec{}, nil, classified, nil)
	defer overlay.Close()

	encoded, err := a.processor.EncodeMatBase64(overlay)
	if err != nil {
		return types.LeadingLinesResult{}, fmt.Errorf("failed to encode lines overlay: %w", err)
	}

	return types.LeadingLinesResult{
		TotalLines:            len(classified),
		DiagonalLines:         diagonals,
		CornerLines:           corners,
		HasStrongLeadingLines: strong,
		Lines:                 classified,
		LinesImage:            encoded,
	}, nil
}

// Analyze runs the full composition analysis: rule of thirds, leading lines
// and the compact summary handed to the feedback generator.
func (a *Analyzer) Analyze(img image.Image, filename string) (*Report, error) {
	if err := a.ValidateImage(img); err != nil {
		return nil, err
	}

	mat, err := a.processor.ToMat(img)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	rot, err := a.ruleOfThirdsFromMat(mat)
	if err != nil {
		return nil, err
	}

	ll, err := a.leadingLinesFromMat(mat)
	if err != nil {
		return nil, err
	}

	return &Report{
		Filename:     filename,
		Width:        mat.Cols(),
		Height:       mat.Rows(),
		RuleOfThirds: rot,
		LeadingLines: ll,
		Summary: types.AnalysisSummary{
			Filename:            filename,
			FollowsRuleOfThirds: rot.Subject.FollowsRuleOfThirds,
			SubjectDetected:     !rot.Subject.Fallback,
			DistanceToThirds:    rot.Subject.Distance,
			TotalLines:          ll.TotalLines,
			DiagonalLines:       ll.DiagonalLines,
			CornerLines:         ll.CornerLines,
			HasStrongLines:      ll.HasStrongLeadingLines,
		},
	}, nil
}

// DetectLines runs line detection with the given profile.
func (a *Analyzer) DetectLines(img image.Image, profile lines.Profile) ([]types.LineSegment, error) {
	mat, err := a.processor.ToMat(img)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	return a.detector.Detect(mat, profile), nil
}

// ComputeConvergence returns the mean pairwise intersection of the given
// segments, or nil when no two segments cross within their extents.
func (a *Analyzer) ComputeConvergence(segments []types.LineSegment) *types.Point {
	return geometry.Convergence(segments)
}

// EstimateRotation returns the corrective rotation suggested by the given
// segments, in degrees.
func (a *Analyzer) EstimateRotation(segments []types.LineSegment) float64 {
	return a.estimator.Estimate(segments)
}

// PlanCrop plans a crop box for the given dimensions, optionally anchored on
// a focal point.
func (a *Analyzer) PlanCrop(width, height int, focal *types.Point) types.CropBox {
	return a.planner.Plan(width, height, focal)
}

// DeskewAndCrop straightens the image and reframes it around the detected
// convergence point, or around subjectCenter when supplied. The result
// carries the original, rotated and final images as base64 JPEG data URLs.
func (a *Analyzer) DeskewAndCrop(img image.Image, subjectCenter *types.Point) (*types.DeskewResult, error) {
	if err := a.ValidateImage(img); err != nil {
		return nil, err
	}

	mat, err := a.processor.ToMat(img)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	res := a.reframer.Process(mat, subjectCenter)
	defer res.Close()

	original, err := a.processor.EncodeMatBase64(mat)
	if err != nil {
		return nil, fmt.Errorf("failed to encode original image: %w", err)
	}
	rotated, err := a.processor.EncodeMatBase64(res.Rotated)
	if err != nil {
		return nil, fmt.Errorf("failed to encode rotated image: %w", err)
	}
	final, err := a.processor.EncodeMatBase64(res.Final)
	if err != nil {
		return nil, fmt.Errorf("failed to encode final image: %w", err)
	}

	return &types.DeskewResult{
		RotationAngle:    res.RotationAngle,
		LinesDetected:    len(res.Lines),
		ConvergencePoint: res.ConvergencePoint,
		CropBox:          res.CropBox,
		OriginalImage:    original,
		RotatedImage:     rotated,
		FinalImage:       final,
	}, nil
}

// SuggestCrop plans a rule-of-thirds aware crop without rotating the image.
// The subject is located automatically unless subjectCenter is supplied.
func (a *Analyzer) SuggestCrop(img image.Image, subjectCenter *types.Point) (*types.CropSuggestion, error) {
	if err := a.ValidateImage(img); err != nil {
		return nil, err
	}

	mat, err := a.processor.ToMat(img)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	focal := subjectCenter
	if focal == nil {
		subject := a.locator.Locate(mat)
		if !subject.Fallback {
			center := subject.Center
			focal = &center
		}
	}

	box := a.planner.Plan(mat.Cols(), mat.Rows(), focal)
	cropped := a.planner.Apply(mat, box)
	defer cropped.Close()

	encoded, err := a.processor.EncodeMatBase64(cropped)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cropped image: %w", err)
	}

	ratio := a.cfg.Crop.DefaultSideRatio
	if focal != nil {
		ratio = a.cfg.Crop.FocalSideRatio
	}

	return &types.CropSuggestion{
		CropBox:       box,
		SubjectCenter: focal,
		ThirdsPoints:  grid.Intersections(mat.Cols(), mat.Rows()),
		CropRatio:     ratio,
		CroppedImage:  encoded,
	}, nil
}

// languageClient builds the configured model client once.
func (a *Analyzer) languageClient() (client.LanguageClient, error) {
	a.modelOnce.Do(func() {
		switch a.cfg.Model.Backend {
		case "llamacpp":
			a.modelClient, a.modelErr = llamacpp.NewClient(a.cfg.Model.URL)
		default:
			a.modelClient, a.modelErr = ollama.NewClient(a.cfg.Model.URL)
		}
	})
	return a.modelClient, a.modelErr
}

// GenerateFeedback turns an analysis summary into coaching feedback. When
// the model backend is unreachable the result carries the deterministic
// fallback with Success unset.
func (a *Analyzer) GenerateFeedback(ctx context.Context, summary types.AnalysisSummary) feedback.Result {
	c, err := a.languageClient()
	if err != nil {
		return feedback.Result{
			Success:  false,
			Feedback: feedback.Fallback(summary),
			Error:    err.Error(),
		}
	}
	return feedback.NewGenerator(c, a.cfg.Model.ChatModel).Generate(ctx, summary)
}

// similarityFinder builds the similarity finder once.
func (a *Analyzer) similarityFinder() (*similarity.Finder, error) {
	a.finderOnce.Do(func() {
		c, err := a.languageClient()
		if err != nil {
			a.finderErr = err
			return
		}
		a.finder, a.finderErr = similarity.NewFinder(c, a.cfg.Model.EmbedModel, a.cfg.Similarity.EmbeddingsFile)
	})
	return a.finder, a.finderErr
}

// SimilarPhotographers embeds the given style descriptions and returns the
// top configured number of matching photographers.
func (a *Analyzer) SimilarPhotographers(ctx context.Context, descriptions []string) ([]types.PhotographerMatch, []string, error) {
	finder, err := a.similarityFinder()
	if err != nil {
		return nil, nil, fmt.Errorf("similarity search unavailable: %w", err)
	}

	embeddings, errs := finder.EmbedAll(ctx, descriptions)
	if len(embeddings) == 0 {
		return nil, errs, fmt.Errorf("no inputs could be embedded")
	}

	return finder.FindSimilar(embeddings, a.cfg.Similarity.TopK), errs, nil
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
