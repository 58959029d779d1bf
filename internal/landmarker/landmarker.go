// Package landmarker binds the viewer to the external pose runtime: the
// engine connection, the detector handle, and the loader that builds a
// handle per source selection.
package landmarker

import (
	"image"
	"sync"

	"poseview/internal/models"
)

// Landmarker is the detector handle bound to one model asset and the fixed
// video running mode. Close releases the engine connection.
type Landmarker struct {
	opts   models.LandmarkerOptions
	engine *Engine

	closeOnce sync.Once
}

func newLandmarker(opts models.LandmarkerOptions, engine *Engine) *Landmarker {
	return &Landmarker{opts: opts, engine: engine}
}

func (l *Landmarker) Options() models.LandmarkerOptions {
	return l.opts
}

// Detect submits a frame for detection. Frames are dropped when the engine
// is behind; detection never blocks the video path.
func (l *Landmarker) Detect(frame image.Image) {
	select {
	case l.engine.InputFrames <- frame:
	default:
	}
}

// Results yields landmark sets as the engine produces them.
func (l *Landmarker) Results() <-chan []models.PoseResult {
	return l.engine.Results
}

func (l *Landmarker) Close() {
	l.closeOnce.Do(func() {
		l.engine.Stop()
	})
}
