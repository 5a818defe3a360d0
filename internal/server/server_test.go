package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/framecheck/framecheck"
	"github.com/framecheck/framecheck/internal/config"
	"github.com/framecheck/framecheck/pkg/types"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	return New(framecheck.New(), config.Default(), logger)
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// multipartUpload builds a request body with one file part and optional
// extra form fields.
func multipartUpload(t *testing.T, field, filename string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatal(err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &body, mw.FormDataContentType()
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid JSON response %q: %v", rec.Body.String(), err)
	}
	return payload
}

func TestRoot(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	payload := decodeJSON(t, rec)
	if payload["message"] != "FrameCheck API is running" {
		t.Errorf("message = %v", payload["message"])
	}
}

func TestRootUnknownPath(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/no-such-endpoint", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/analyze-image", "/deskew-crop", "/suggest-crop", "/similar-photographers"} {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("GET %s: status = %d, want 405", path, rec.Code)
		}
		payload := decodeJSON(t, rec)
		if payload["success"] != false {
			t.Errorf("GET %s: success = %v, want false", path, payload["success"])
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/analyze-image", nil))

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS origin header")
	}
}

func TestAnalyzeImageMissingFile(t *testing.T) {
	s := newTestServer(t)

	body, contentType := multipartUpload(t, "wrong_field", "x.png", testPNG(t, 120, 120), nil)
	req := httptest.NewRequest(http.MethodPost, "/analyze-image", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	payload := decodeJSON(t, rec)
	if detail, _ := payload["detail"].(string); !strings.Contains(detail, `"file"`) {
		t.Errorf("detail = %v", payload["detail"])
	}
}

func TestAnalyzeImageRejectsGarbage(t *testing.T) {
	s := newTestServer(t)

	body, contentType := multipartUpload(t, "file", "x.png", []byte("not an image"), nil)
	req := httptest.NewRequest(http.MethodPost, "/analyze-image", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestSuggestCrop(t *testing.T) {
	s := newTestServer(t)

	body, contentType := multipartUpload(t, "file", "photo.png", testPNG(t, 240, 180), nil)
	req := httptest.NewRequest(http.MethodPost, "/suggest-crop", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	payload := decodeJSON(t, rec)
	if payload["success"] != true {
		t.Errorf("success = %v", payload["success"])
	}
	if _, ok := payload["result"].(map[string]any); !ok {
		t.Errorf("result missing: %v", payload)
	}
}

func TestSuggestCropPartialSubject(t *testing.T) {
	s := newTestServer(t)

	body, contentType := multipartUpload(t, "file", "photo.png", testPNG(t, 240, 180),
		map[string]string{"subject_x": "120"})
	req := httptest.NewRequest(http.MethodPost, "/suggest-crop", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	payload := decodeJSON(t, rec)
	if detail, _ := payload["detail"].(string); !strings.Contains(detail, "together") {
		t.Errorf("detail = %v", payload["detail"])
	}
}

func TestDeskewCrop(t *testing.T) {
	s := newTestServer(t)

	body, contentType := multipartUpload(t, "file", "scan.png", testPNG(t, 240, 180),
		map[string]string{"subject_x": "80", "subject_y": "60"})
	req := httptest.NewRequest(http.MethodPost, "/deskew-crop", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	payload := decodeJSON(t, rec)
	if payload["success"] != true {
		t.Errorf("success = %v", payload["success"])
	}
}

func TestSimilarPhotographersNoFiles(t *testing.T) {
	s := newTestServer(t)

	var empty bytes.Buffer
	mw := multipart.NewWriter(&empty)
	mw.WriteField("unused", "1")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/similar-photographers", &empty)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestStyleDescription(t *testing.T) {
	tests := []struct {
		name    string
		summary types.AnalysisSummary
		want    []string
	}{
		{
			name: "thirds and strong lines",
			summary: types.AnalysisSummary{
				FollowsRuleOfThirds: true,
				SubjectDetected:     true,
				HasStrongLines:      true,
				DiagonalLines:       4,
			},
			want: []string{"rule of thirds intersection", "strong leading lines with 4 diagonals"},
		},
		{
			name: "centered with weak lines",
			summary: types.AnalysisSummary{
				SubjectDetected: true,
				TotalLines:      2,
			},
			want: []string{"centered subject placement", "2 subtle lines"},
		},
		{
			name:    "empty frame",
			summary: types.AnalysisSummary{},
			want:    []string{"no dominant subject", "minimal linear structure"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := styleDescription(tt.summary)
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("styleDescription() = %q, missing %q", got, want)
				}
			}
		})
	}
}
