package types

// Point is a pixel coordinate with the origin at the top-left corner.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// GridSpec describes the rule-of-thirds grid for a given image size: two
// vertical and two horizontal divider lines and their four intersections,
// ordered (v1,h1), (v1,h2), (v2,h1), (v2,h2).
type GridSpec struct {
	Width         int      `json:"width"`
	Height        int      `json:"height"`
	Vertical      [2]int   `json:"vertical"`
	Horizontal    [2]int   `json:"horizontal"`
	Intersections [4]Point `json:"intersections"`
}

// Subject is the detected focal subject of an image. Fallback is set when no
// qualifying contour existed and the geometric center was substituted.
type Subject struct {
	Center              Point   `json:"center"`
	Fallback            bool    `json:"fallback"`
	ClosestIntersection Point   `json:"closest_intersection"`
	Distance            float64 `json:"distance_to_intersection"`
	Threshold           float64 `json:"threshold"`
	FollowsRuleOfThirds bool    `json:"follows_rule_of_thirds"`
}

// LineSegment is a straight line feature detected in an image. Angle is in
// degrees, normalized to (-90, 90].
type LineSegment struct {
	Start        Point   `json:"start"`
	End          Point   `json:"end"`
	Length       float64 `json:"length"`
	Angle        float64 `json:"angle"`
	Diagonal     bool    `json:"is_diagonal"`
	CornerOrigin bool    `json:"originates_from_corner"`
}

// CropBox is a pixel-space crop rectangle with x1 < x2 and y1 < y2.
type CropBox struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Width returns the horizontal extent of the box.
func (b CropBox) Width() int { return b.X2 - b.X1 }

// Height returns the vertical extent of the box.
func (b CropBox) Height() int { return b.Y2 - b.Y1 }

// Valid reports whether the box has positive area.
func (b CropBox) Valid() bool { return b.X2 > b.X1 && b.Y2 > b.Y1 }

// RuleOfThirdsResult is the full rule-of-thirds report for one image.
type RuleOfThirdsResult struct {
	Grid      GridSpec `json:"grid"`
	Subject   Subject  `json:"subject"`
	GridImage string   `json:"grid_image,omitempty"`
}

// LeadingLinesResult summarizes the detected leading lines.
type LeadingLinesResult struct {
	TotalLines            int           `json:"total_lines"`
	DiagonalLines         int           `json:"diagonal_lines"`
	CornerLines           int           `json:"corner_lines"`
	HasStrongLeadingLines bool          `json:"has_strong_leading_lines"`
	Lines                 []LineSegment `json:"leading_lines"`
	LinesImage            string        `json:"lines_image,omitempty"`
}

// DeskewResult is the outcome of the deskew-and-reframe pipeline. The image
// fields hold base64 JPEG data URLs; ConvergencePoint is nil when no pair of
// detected segments intersects within their finite extents.
type DeskewResult struct {
	RotationAngle    float64 `json:"rotation_angle"`
	LinesDetected    int     `json:"lines_detected"`
	ConvergencePoint *Point  `json:"convergence_point"`
	CropBox          CropBox `json:"crop_box"`
	OriginalImage    string  `json:"original_image,omitempty"`
	RotatedImage     string  `json:"rotated_image,omitempty"`
	FinalImage       string  `json:"final_image,omitempty"`
}

// CropSuggestion is the standalone crop proposal for one image.
type CropSuggestion struct {
	CropBox       CropBox  `json:"crop_box"`
	SubjectCenter *Point   `json:"subject_center"`
	ThirdsPoints  [4]Point `json:"rule_of_thirds_points"`
	CropRatio     float64  `json:"crop_ratio"`
	CroppedImage  string   `json:"cropped_image,omitempty"`
}

// AnalysisSummary is the compact classification summary handed to the
// feedback generator: booleans, counts and distances only, never pixels.
type AnalysisSummary struct {
	Filename            string  `json:"filename"`
	FollowsRuleOfThirds bool    `json:"follows_rule_of_thirds"`
	SubjectDetected     bool    `json:"subject_detected"`
	DistanceToThirds    float64 `json:"distance_to_intersection"`
	TotalLines          int     `json:"total_lines"`
	DiagonalLines       int     `json:"diagonal_lines"`
	CornerLines         int     `json:"corner_lines"`
	HasStrongLines      bool    `json:"has_strong_leading_lines"`
}

// Feedback is the structured text feedback produced for a composition.
type Feedback struct {
	OverallAssessment string `json:"overall_assessment"`
	WhatWorksWell     string `json:"what_works_well"`
	Suggestions       string `json:"suggestions"`
	AdvancedTechnique string `json:"advanced_technique"`
}

// PhotographerMatch is one ranked entry from the style similarity search.
type PhotographerMatch struct {
	Name            string  `json:"name"`
	DisplayName     string  `json:"display_name"`
	Description     string  `json:"description"`
	SimilarityScore float64 `json:"similarity_score"`
	SampleSize      int     `json:"sample_size"`
}
