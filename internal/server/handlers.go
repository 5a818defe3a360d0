package server

import (
	"fmt"
	"image"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/framecheck/framecheck/internal/utils"
	"github.com/framecheck/framecheck/pkg/types"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "FrameCheck API is running",
		"version": "1.0.0",
	})
}

// readUpload parses the multipart upload and decodes the image under the
// given form field. It enforces the configured upload size limit.
func (s *Server) readUpload(r *http.Request, field string) (image.Image, string, error) {
	maxBytes := s.cfg.Server.MaxUploadMB << 20
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return nil, "", fmt.Errorf("failed to parse upload: %v", err)
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", fmt.Errorf("missing %q upload", field)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read upload: %v", err)
	}

	img, err := s.analyzer.DecodeBytes(data)
	if err != nil {
		return nil, "", fmt.Errorf("file must be an image: %v", err)
	}

	return img, utils.SanitizeFilename(header.Filename), nil
}

// subjectCenter reads the optional subject_x/subject_y form fields. Both
// must be present for a point to be returned.
func subjectCenter(r *http.Request) (*types.Point, error) {
	xs := strings.TrimSpace(r.FormValue("subject_x"))
	ys := strings.TrimSpace(r.FormValue("subject_y"))
	if xs == "" && ys == "" {
		return nil, nil
	}
	if xs == "" || ys == "" {
		return nil, fmt.Errorf("subject_x and subject_y must be supplied together")
	}

	x, err := strconv.Atoi(xs)
	if err != nil {
		return nil, fmt.Errorf("invalid subject_x: %v", err)
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return nil, fmt.Errorf("invalid subject_y: %v", err)
	}
	return &types.Point{X: x, Y: y}, nil
}

func (s *Server) handleAnalyzeImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	reqID := uuid.NewString()
	img, filename, err := s.readUpload(r, "file")
	if err != nil {
		s.logger.Printf("[%s] analyze-image rejected: %v", reqID, err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Printf("[%s] analyze-image %s", reqID, filename)

	report, err := s.analyzer.Analyze(img, filename)
	if err != nil {
		s.logger.Printf("[%s] analysis failed: %v", reqID, err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("image processing failed: %v", err))
		return
	}

	fb := s.analyzer.GenerateFeedback(r.Context(), report.Summary)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"image_info": map[string]any{
			"filename": report.Filename,
			"width":    report.Width,
			"height":   report.Height,
		},
		"rule_of_thirds": report.RuleOfThirds,
		"leading_lines":  report.LeadingLines,
		"ai_feedback":    fb,
	})
}

func (s *Server) handleDeskewCrop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	reqID := uuid.NewString()
	img, filename, err := s.readUpload(r, "file")
	if err != nil {
		s.logger.Printf("[%s] deskew-crop rejected: %v", reqID, err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	center, err := subjectCenter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Printf("[%s] deskew-crop %s", reqID, filename)

	result, err := s.analyzer.DeskewAndCrop(img, center)
	if err != nil {
		s.logger.Printf("[%s] deskew failed: %v", reqID, err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("image processing failed: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"result":  result,
	})
}

func (s *Server) handleSuggestCrop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	reqID := uuid.NewString()
	img, filename, err := s.readUpload(r, "file")
	if err != nil {
		s.logger.Printf("[%s] suggest-crop rejected: %v", reqID, err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	center, err := subjectCenter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Printf("[%s] suggest-crop %s", reqID, filename)

	suggestion, err := s.analyzer.SuggestCrop(img, center)
	if err != nil {
		s.logger.Printf("[%s] crop suggestion failed: %v", reqID, err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("image processing failed: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"result":  suggestion,
	})
}

func (s *Server) handleSimilarPhotographers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	reqID := uuid.NewString()
	maxBytes := s.cfg.Server.MaxUploadMB << 20
	r.Body = http.MaxBytesReader(nil, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err))
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "at least one image is required")
		return
	}
	s.logger.Printf("[%s] similar-photographers: %d images", reqID, len(files))

	// Each image is summarized into a style description; the descriptions
	// are embedded and matched against the photographer library.
	var descriptions []string
	var errors []string
	for i, header := range files {
		file, err := header.Open()
		if err != nil {
			errors = append(errors, fmt.Sprintf("failed to open image %d: %v", i+1, err))
			continue
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			errors = append(errors, fmt.Sprintf("failed to read image %d: %v", i+1, err))
			continue
		}

		img, err := s.analyzer.DecodeBytes(data)
		if err != nil {
			errors = append(errors, fmt.Sprintf("failed to decode image %d: %v", i+1, err))
			continue
		}

		report, err := s.analyzer.Analyze(img, utils.SanitizeFilename(header.Filename))
		if err != nil {
			errors = append(errors, fmt.Sprintf("failed to analyze image %d: %v", i+1, err))
			continue
		}
		descriptions = append(descriptions, styleDescription(report.Summary))
	}

	if len(descriptions) == 0 {
		writeError(w, http.StatusBadRequest, "no uploaded image could be processed")
		return
	}

	matches, embedErrs, err := s.analyzer.SimilarPhotographers(r.Context(), descriptions)
	errors = append(errors, embedErrs...)
	if err != nil {
		s.logger.Printf("[%s] similarity failed: %v", reqID, err)
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"matches":         matches,
		"images_analyzed": len(descriptions),
		"errors":          errors,
	})
}

// styleDescription condenses an analysis summary into a short sentence
// suitable for text embedding.
func styleDescription(s types.AnalysisSummary) string {
	var parts []string
	if s.FollowsRuleOfThirds {
		parts = append(parts, "subject placed on a rule of thirds intersection")
	} else if s.SubjectDetected {
		parts = append(parts, "centered subject placement")
	} else {
		parts = append(parts, "no dominant subject")
	}
	if s.HasStrongLines {
		parts = append(parts, fmt.Sprintf("strong leading lines with %d diagonals", s.DiagonalLines))
	} else if s.TotalLines > 0 {
		parts = append(parts, fmt.Sprintf("%d subtle lines", s.TotalLines))
	} else {
		parts = append(parts, "minimal linear structure")
	}
	return "A photograph with " + strings.Join(parts, " and ") + "."
}
