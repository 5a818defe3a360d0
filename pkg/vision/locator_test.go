package vision

import (
	"image"
	"image/color"
	"math"
	"testing"

	"gocv.io/x/gocv"
)

func TestLocateBlankImageFallsBack(t *testing.T) {
	mat := gocv.NewMatWithSize(400, 600, gocv.MatTypeCV8UC3)
	defer mat.Close()

	l := New()
	subject := l.Locate(mat)

	if !subject.Fallback {
		t.Fatal("expected fallback subject for a blank image")
	}
	if subject.Center.X != 300 || subject.Center.Y != 200 {
		t.Errorf("fallback center = %+v, want (300,200)", subject.Center)
	}
	if subject.FollowsRuleOfThirds {
		t.Error("image center should not satisfy the rule of thirds for 600x400")
	}
	if subject.Threshold != 60 {
		t.Errorf("threshold = %v, want 60", subject.Threshold)
	}
}

func TestLocateEmptyMat(t *testing.T) {
	mat := gocv.NewMat()
	defer mat.Close()

	subject := New().Locate(mat)
	if !subject.Fallback {
		t.Error("expected fallback subject for an empty mat")
	}
}

func TestLocateDarkSubject(t *testing.T) {
	// White field with a dark square centered on the upper-left thirds
	// intersection of a 600x400 frame.
	mat := gocv.NewMatWithSizeFromScalar(
		gocv.NewScalar(255, 255, 255, 0), 400, 600, gocv.MatTypeCV8UC3)
	defer mat.Close()
	gocv.Rectangle(&mat, image.Rect(150, 83, 250, 183),
		color.RGBA{R: 30, G: 30, B: 30, A: 255}, -1)

	l := New()
	subject := l.Locate(mat)

	if subject.Fallback {
		t.Fatal("expected the dark square to be detected")
	}
	dx := math.Abs(float64(subject.Center.X - 200))
	dy := math.Abs(float64(subject.Center.Y - 133))
	if dx > 25 || dy > 25 {
		t.Errorf("subject center = %+v, want near (200,133)", subject.Center)
	}
	if !subject.FollowsRuleOfThirds {
		t.Errorf("subject at %+v (distance %.1f, threshold %.1f) should follow the rule of thirds",
			subject.Center, subject.Distance, subject.Threshold)
	}
}

func TestLocateIgnoresTinyRegions(t *testing.T) {
	// A 10x10 blob on 600x400 is 0.04% of the frame, below the 1% floor.
	mat := gocv.NewMatWithSizeFromScalar(
		gocv.NewScalar(255, 255, 255, 0), 400, 600, gocv.MatTypeCV8UC3)
	defer mat.Close()
	gocv.Rectangle(&mat, image.Rect(100, 100, 110, 110),
		color.RGBA{R: 30, G: 30, B: 30, A: 255}, -1)

	subject := New().Locate(mat)
	if !subject.Fallback {
		t.Errorf("tiny region should be ignored, got center %+v", subject.Center)
	}
}
