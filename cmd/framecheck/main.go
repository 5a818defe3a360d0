package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/framecheck/framecheck"
	"github.com/framecheck/framecheck/internal/config"
	"github.com/framecheck/framecheck/internal/utils"
	"github.com/framecheck/framecheck/pkg/types"
)

func main() {
	var in, outDir, cfgPath string
	var deskewMode, cropMode, feedbackMode bool
	var subjectX, subjectY int
	var saveImages bool

	flag.StringVar(&in, "in", "", "input image path or URL, or a directory for batch mode")
	flag.StringVar(&outDir, "out", "out", "output directory")
	flag.StringVar(&cfgPath, "config", "", "config file path (JSON)")
	flag.BoolVar(&deskewMode, "deskew", false, "straighten the image and crop around the convergence point")
	flag.BoolVar(&cropMode, "crop", false, "suggest a rule-of-thirds crop without rotating")
	flag.BoolVar(&feedbackMode, "feedback", false, "generate model feedback for the composition")
	flag.IntVar(&subjectX, "sx", -1, "subject center x in pixels (optional, used with -deskew/-crop)")
	flag.IntVar(&subjectY, "sy", -1, "subject center y in pixels (optional, used with -deskew/-crop)")
	flag.BoolVar(&saveImages, "save", false, "keep base64 result images in the JSON report")

	flag.Parse()
	if in == "" {
		log.Fatalf("usage: %s -in photo.jpg|URL|dir [-deskew] [-crop] [-feedback] [-out outdir]", filepath.Base(os.Args[0]))
	}

	cfg := config.Default()
	if cfgPath != "" {
		if !utils.FileExists(cfgPath) {
			log.Fatalf("config file not found: %s", cfgPath)
		}
		loaded, err := config.LoadFromFile(cfgPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		if err := loaded.Validate(); err != nil {
			log.Fatalf("invalid config: %v", err)
		}
		cfg = loaded
	}

	if err := utils.EnsureDir(outDir); err != nil {
		log.Fatal(err)
	}

	fc := framecheck.NewWithConfig(cfg)

	var subject *types.Point
	if subjectX >= 0 && subjectY >= 0 {
		subject = &types.Point{X: subjectX, Y: subjectY}
	}

	inputs := []string{in}
	if isLocalDir(in) {
		files, err := utils.ListImageFiles(in)
		if err != nil {
			log.Fatalf("failed to list %s: %v", in, err)
		}
		if len(files) == 0 {
			log.Fatalf("no image files found in %s", in)
		}
		inputs = files
	}

	for _, input := range inputs {
		if err := processOne(fc, input, outDir, subject, deskewMode, cropMode, feedbackMode, saveImages); err != nil {
			log.Printf("%s: %v", input, err)
		}
	}
}

func isLocalDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func processOne(fc *framecheck.Analyzer, input, outDir string, subject *types.Point, deskewMode, cropMode, feedbackMode, saveImages bool) error {
	img, err := fc.LoadImageSmart(input)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}

	report, err := fc.Analyze(img, filepath.Base(input))
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	out := map[string]any{
		"filename":       report.Filename,
		"width":          report.Width,
		"height":         report.Height,
		"rule_of_thirds": report.RuleOfThirds,
		"leading_lines":  report.LeadingLines,
		"summary":        report.Summary,
	}

	sizeNote := ""
	if info, err := os.Stat(input); err == nil && !info.IsDir() {
		sizeNote = " (" + utils.FormatFileSize(info.Size()) + ")"
	}
	log.Printf("%s%s: %dx%d, follows thirds=%v, lines=%d (diagonals=%d, corners=%d)",
		report.Filename, sizeNote, report.Width, report.Height,
		report.Summary.FollowsRuleOfThirds, report.Summary.TotalLines,
		report.Summary.DiagonalLines, report.Summary.CornerLines)

	if deskewMode {
		result, err := fc.DeskewAndCrop(img, subject)
		if err != nil {
			return fmt.Errorf("deskew failed: %w", err)
		}
		log.Printf("%s: rotation=%.2f deg, lines=%d, crop=%dx%d",
			report.Filename, result.RotationAngle, result.LinesDetected,
			result.CropBox.Width(), result.CropBox.Height())
		if !saveImages {
			// keep the JSON small when the images are not written out
			result.OriginalImage = ""
			result.RotatedImage = ""
			result.FinalImage = ""
		}
		out["deskew"] = result
	}

	if cropMode {
		suggestion, err := fc.SuggestCrop(img, subject)
		if err != nil {
			return fmt.Errorf("crop suggestion failed: %w", err)
		}
		log.Printf("%s: suggested crop %dx%d at (%d,%d)",
			report.Filename, suggestion.CropBox.Width(), suggestion.CropBox.Height(),
			suggestion.CropBox.X1, suggestion.CropBox.Y1)
		if !saveImages {
			suggestion.CroppedImage = ""
		}
		out["crop_suggestion"] = suggestion
	}

	if feedbackMode {
		fb := fc.GenerateFeedback(context.Background(), report.Summary)
		if !fb.Success {
			log.Printf("%s: model unavailable, using fallback feedback (%s)", report.Filename, fb.Error)
		}
		out["ai_feedback"] = fb
	}

	reportPath := utils.GenerateOutputFilename(input, outDir, "_report")
	reportPath = reportPath[:len(reportPath)-len(filepath.Ext(reportPath))] + ".json"
	js, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(reportPath, js, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	log.Printf("wrote %s", reportPath)

	return nil
}
