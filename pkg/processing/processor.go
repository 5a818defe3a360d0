// Package processing handles image decoding, encoding, Mat conversion and
// overlay rendering for the analysis pipeline.
package processing

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"
	_ "golang.org/x/image/webp"

	"github.com/framecheck/framecheck/pkg/types"
)

// Processor handles image loading, conversion and rendering.
type Processor struct {
	// JPEGQuality is used for encoded result images.
	JPEGQuality int
	// MinImageSize is the smallest side length accepted for analysis.
	MinImageSize int
}

// NewProcessor creates a new image processor.
func NewProcessor() *Processor {
	return &Processor{JPEGQuality: 90, MinImageSize: 100}
}

// ValidateImage checks if an image meets minimum requirements
func (p *Processor) ValidateImage(img image.Image) error {
	bounds := img.Bounds()
	if bounds.Dx() < p.MinImageSize || bounds.Dy() < p.MinImageSize {
		return fmt.Errorf("image too small: %dx%d (minimum: %d)",
			bounds.Dx(), bounds.Dy(), p.MinImageSize)
	}
	return nil
}

// LoadImageFromURL downloads and loads an image from a URL
func (p *Processor) LoadImageFromURL(imageURL string) (image.Image, error) {
	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme: %s (only http and https are supported)", parsedURL.Scheme)
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	req, err := http.NewRequest("GET", imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("User-Agent", "FrameCheck/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: HTTP %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("URL does not point to an image (Content-Type: %s)", contentType)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %v", err)
	}

	return p.DecodeBytes(imageData)
}

// LoadImage loads an image from a file path with WebP support
func (p *Processor) LoadImage(path string) (image.Image, error) {
	// Try imaging.Open (registered decoders)
	if img, err := imaging.Open(path); err == nil {
		return img, nil
	}

	// Fallback: explicit WebP decode
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	low := strings.ToLower(path)
	if strings.HasSuffix(low, ".webp") || strings.Contains(low, ".webp") {
		if img, err := webp.Decode(f); err == nil {
			return img, nil
		}
		if _, err := f.Seek(0, 0); err == nil {
			if img, _, err := image.Decode(f); err == nil {
				return img, nil
			}
		}
	} else {
		if _, err := f.Seek(0, 0); err == nil {
			if img, _, err := image.Decode(f); err == nil {
				return img, nil
			}
		}
	}
	return nil, fmt.Errorf("image: unknown format for %s", path)
}

// LoadImageSmart loads an image from either a file path or URL
func (p *Processor) LoadImageSmart(source string) (image.Image, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return p.LoadImageFromURL(source)
	}
	return p.LoadImage(source)
}

// DecodeBytes decodes an image from byte data with WebP support
func (p *Processor) DecodeBytes(data []byte) (image.Image, error) {
	reader := bytes.NewReader(data)
	if img, _, err := image.Decode(reader); err == nil {
		return img, nil
	}

	reader = bytes.NewReader(data)
	if img, err := webp.Decode(reader); err == nil {
		return img, nil
	}

	return nil, fmt.Errorf("image: unknown or unsupported format")
}

// ToMat converts an image to a BGR Mat for the detection pipeline. The
// caller owns the returned Mat.
func (p *Processor) ToMat(img image.Image) (gocv.Mat, error) {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || bounds.Min != image.Pt(0, 0) {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}

	mat, err := gocv.NewMatFromBytes(bounds.Dy(), bounds.Dx(), gocv.MatTypeCV8UC4, rgba.Pix)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("failed to create Mat: %v", err)
	}
	defer mat.Close()

	bgr := gocv.NewMat()
	gocv.CvtColor(mat, &bgr, gocv.ColorRGBAToBGR)
	return bgr, nil
}

// ToImage converts a Mat back to a Go image.
func (p *Processor) ToImage(mat gocv.Mat) (image.Image, error) {
	img, err := mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("failed to convert Mat: %v", err)
	}
	return img, nil
}

// EncodeBase64 encodes an image as a base64 JPEG data URL.
func (p *Processor) EncodeBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.JPEGQuality}); err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// EncodeMatBase64 encodes a Mat as a base64 JPEG data URL.
func (p *Processor) EncodeMatBase64(mat gocv.Mat) (string, error) {
	img, err := p.ToImage(mat)
	if err != nil {
		return "", err
	}
	return p.EncodeBase64(img)
}

// PrepareImageForModel converts an image to base64 for sending to vision models
func (p *Processor) PrepareImageForModel(img image.Image, format string, maxDim int, quality int) (string, error) {
	if maxDim > 0 {
		b := img.Bounds()
		w, h := b.Dx(), b.Dy()
		if w > maxDim || h > maxDim {
			if w >= h {
				img = imaging.Resize(img, maxDim, 0, imaging.Lanczos)
			} else {
				img = imaging.Resize(img, 0, maxDim, imaging.Lanczos)
			}
		}
	}

	var buf bytes.Buffer
	switch strings.ToLower(format) {
	case "png":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return "", err
		}
	default: // jpg
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return "", err
		}
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// SaveImage saves an image to a file with the specified format and quality
func (p *Processor) SaveImage(img image.Image, path, format string, quality int, lossless bool) error {
	switch strings.ToLower(format) {
	case "webp":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		opts := &webp.Options{Lossless: lossless, Quality: float32(quality)}
		return webp.Encode(f, img, opts)
	case "png":
		return imaging.Save(img, path)
	default: // jpg/jpeg
		return imaging.Save(img, path, imaging.JPEGQuality(quality))
	}
}

// SaveMat saves a Mat to a file.
func (p *Processor) SaveMat(mat gocv.Mat, path string) error {
	img, err := p.ToImage(mat)
	if err != nil {
		return err
	}
	return p.SaveImage(img, path, strings.TrimPrefix(strings.ToLower(pathExt(path)), "."), p.JPEGQuality, false)
}

func pathExt(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i:]
	}
	return ".jpg"
}

// Overlay colors.
var (
	gridColor      = color.RGBA{0, 255, 0, 255}   // thirds grid
	intersectColor = color.RGBA{0, 0, 255, 255}   // grid intersections
	subjectColor   = color.RGBA{255, 0, 0, 255}   // subject marker
	diagonalColor  = color.RGBA{255, 204, 0, 255} // diagonal leading lines
	lineColor      = color.RGBA{255, 255, 255, 255}
	cropColor      = color.RGBA{0, 170, 255, 255} // suggested crop
)

// RenderOverlay draws the analysis results onto a copy of img: the thirds
// grid with its intersections, detected leading lines (diagonals
// highlighted), the subject marker and the suggested crop box. Nil or
// zero-value arguments skip the corresponding layer. The caller owns the
// returned Mat.
func (p *Processor) RenderOverlay(img gocv.Mat, grid types.GridSpec, subject *types.Subject, segments []types.LineSegment, box *types.CropBox) gocv.Mat {
	out := img.Clone()
	w := out.Cols()
	h := out.Rows()
	stroke := maxInt(2, minInt(w, h)/400)

	if grid.Width > 0 && grid.Height > 0 {
		for _, x := range grid.Vertical {
			gocv.Line(&out, image.Pt(x, 0), image.Pt(x, h), gridColor, stroke)
		}
		for _, y := range grid.Horizontal {
			gocv.Line(&out, image.Pt(0, y), image.Pt(w, y), gridColor, stroke)
		}
		for _, pt := range grid.Intersections {
			gocv.Circle(&out, image.Pt(pt.X, pt.Y), 3*stroke, intersectColor, -1)
		}
	}

	for _, seg := range segments {
		clr := lineColor
		if seg.Diagonal {
			clr = diagonalColor
		}
		gocv.Line(&out, image.Pt(seg.Start.X, seg.Start.Y), image.Pt(seg.End.X, seg.End.Y), clr, stroke)
	}

	if subject != nil {
		gocv.Circle(&out, image.Pt(subject.Center.X, subject.Center.Y), 5*stroke, subjectColor, stroke)
	}

	if box != nil && box.Valid() {
		gocv.Rectangle(&out, image.Rect(box.X1, box.Y1, box.X2, box.Y2), cropColor, stroke)
	}

	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
