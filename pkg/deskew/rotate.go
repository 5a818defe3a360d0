package deskew

import (
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"
)

// minRotationDeg is the smallest angle that triggers an actual warp.
const minRotationDeg = 0.1

// Rotate rotates img about its center by angle degrees, expanding the canvas
// so no pixel is clipped. Border pixels are replicated into the exposed
// corners. Angles below the minimum return an unmodified clone. The caller
// owns the returned Mat.
func Rotate(img gocv.Mat, angle float64) gocv.Mat {
	if math.Abs(angle) < minRotationDeg {
		return img.Clone()
	}

	w := img.Cols()
	h := img.Rows()
	center := image.Pt(w/2, h/2)

	m := gocv.GetRotationMatrix2D(center, angle, 1.0)
	defer m.Close()

	cos := math.Abs(m.GetDoubleAt(0, 0))
	sin := math.Abs(m.GetDoubleAt(0, 1))
	newW := int(float64(h)*sin + float64(w)*cos)
	newH := int(float64(h)*cos + float64(w)*sin)

	// Shift the transform so the rotated image is centered on the
	// expanded canvas.
	m.SetDoubleAt(0, 2, m.GetDoubleAt(0, 2)+float64(newW)/2-float64(center.X))
	m.SetDoubleAt(1, 2, m.GetDoubleAt(1, 2)+float64(newH)/2-float64(center.Y))

	rotated := gocv.NewMat()
	gocv.WarpAffineWithParams(img, &rotated, m, image.Pt(newW, newH),
		gocv.InterpolationCubic, gocv.BorderReplicate, color.RGBA{})
	return rotated
}
