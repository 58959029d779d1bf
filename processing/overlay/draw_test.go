package overlay

import (
	"image"
	"image/color"
	"testing"

	"poseview/internal/models"
)

func TestDrawLine_EndpointsSet(t *testing.T) {
	tests := []struct {
		name           string
		x1, y1, x2, y2 int
	}{
		{"horizontal", 2, 5, 20, 5},
		{"vertical", 5, 2, 5, 20},
		{"diagonal", 0, 0, 15, 23},
		{"reversed", 20, 20, 3, 4},
	}

	col := color.RGBA{0, 255, 0, 255}

	for _, test := range tests {
		img := image.NewRGBA(image.Rect(0, 0, 32, 32))
		drawLine(img, test.x1, test.y1, test.x2, test.y2, col)

		for _, pt := range [][2]int{{test.x1, test.y1}, {test.x2, test.y2}} {
			if img.RGBAAt(pt[0], pt[1]) != col {
				t.Errorf("%s: endpoint (%d,%d) not set", test.name, pt[0], pt[1])
			}
		}
	}
}

func TestDrawLine_OutOfBoundsDoesNotPanic(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	drawLine(img, -10, -10, 50, 50, color.RGBA{255, 0, 0, 255})
	drawLine(img, 100, 3, -100, 3, color.RGBA{255, 0, 0, 255})
}

func TestDrawPoint_FillsDiscWithinBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	col := color.RGBA{255, 80, 80, 255}

	drawPoint(img, 8, 8, 2, col)

	if img.RGBAAt(8, 8) != col {
		t.Error("center pixel not set")
	}
	if img.RGBAAt(8, 10) != col {
		t.Error("pixel at radius not set")
	}
	if img.RGBAAt(12, 12) == col {
		t.Error("pixel outside radius set")
	}

	// center near the corner: only the in-bounds part is drawn
	drawPoint(img, 0, 0, 3, col)
	if img.RGBAAt(0, 0) != col {
		t.Error("corner pixel not set")
	}
}

func TestDrawPose_ProjectsNormalizedLandmarks(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))

	pose := models.PoseResult{Landmarks: make([]models.Landmark, 33)}
	for i := range pose.Landmarks {
		pose.Landmarks[i] = models.Landmark{X: 0.5, Y: 0.5, Visibility: 0.0}
	}
	// only the nose is visible; nothing else should be drawn
	pose.Landmarks[0] = models.Landmark{X: 0.25, Y: 0.75, Visibility: 0.9}

	drawPose(img, pose)

	if img.RGBAAt(25, 75) != jointColor {
		t.Error("visible landmark not projected to pixel coordinates")
	}
	if img.RGBAAt(50, 50) == jointColor {
		t.Error("landmark below visibility threshold was drawn")
	}
}
