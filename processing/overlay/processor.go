// Package overlay runs the per-frame loop: submit the frame to the current
// detector, draw the last known pose skeleton on it, publish it for display.
package overlay

import (
	"image"
	"image/color"
	"sync"
	"time"

	"poseview/internal/config"
	"poseview/internal/landmarker"
	"poseview/internal/models"
	"poseview/pkg/log"
	"poseview/processing/capture"
)

var (
	boneColor  = color.RGBA{0, 255, 0, 255}
	jointColor = color.RGBA{255, 80, 80, 255}
)

// visibilityThreshold hides landmarks the model is unsure about.
const visibilityThreshold = 0.5

type Processor struct {
	InImageStream  capture.VideoStreamer
	OutImageStream chan image.Image

	ErrChan  chan error
	StopChan chan struct{}

	Latency  time.Duration
	FPS      uint
	IsActive bool

	cfg    *config.Config
	loader *landmarker.Loader

	lastPoses []models.PoseResult
	mu        sync.RWMutex
}

func NewProcessor(cfg *config.Config, loader *landmarker.Loader) *Processor {
	return &Processor{
		cfg:            cfg,
		loader:         loader,
		ErrChan:        make(chan error, 1),
		StopChan:       make(chan struct{}),
		OutImageStream: make(chan image.Image, cfg.GetFPS()),
	}
}

func (p *Processor) Start() {
	go func() {
		p.IsActive = true
		var frameCount uint = 0
		lastFpsUpdate := time.Now()

		for {
			select {
			case frame, ok := <-p.InImageStream.FrameChan():
				if !ok {
					p.IsActive = false
					return
				}
				if frame == nil {
					continue
				}

				start := time.Now()

				lm := p.loader.Current()
				if lm != nil {
					lm.Detect(frame)
					p.drainResults(lm)
				}

				if rgba, ok := frame.(*image.RGBA); ok {
					p.mu.RLock()
					poses := p.lastPoses
					p.mu.RUnlock()

					for _, pose := range poses {
						drawPose(rgba, pose)
					}
				}

				p.mu.Lock()
				p.Latency = time.Since(start)
				p.mu.Unlock()

				select {
				case p.OutImageStream <- frame:
				default:
				}

				frameCount++
				if time.Since(lastFpsUpdate) >= time.Second {
					p.FPS = frameCount
					frameCount = 0
					lastFpsUpdate = time.Now()
				}

			case err := <-p.InImageStream.ErrorChan():
				if err != nil {
					log.Error(log.Fields{"error": err.Error()}, "video stream failed")
					select {
					case p.ErrChan <- err:
					default:
					}
				}
				p.IsActive = false
				return

			case <-p.StopChan:
				p.IsActive = false
				return
			}
		}
	}()
}

// drainResults picks up whatever landmark sets arrived since the last frame.
func (p *Processor) drainResults(lm *landmarker.Landmarker) {
	for {
		select {
		case poses := <-lm.Results():
			p.mu.Lock()
			p.lastPoses = poses
			p.mu.Unlock()
		default:
			return
		}
	}
}

func (p *Processor) Stop() {
	p.StopChan <- struct{}{}
}

func drawPose(img *image.RGBA, pose models.PoseResult) {
	bounds := img.Bounds()
	w := float32(bounds.Dx())
	h := float32(bounds.Dy())

	visible := func(i int) bool {
		return i < len(pose.Landmarks) && pose.Landmarks[i].Visibility >= visibilityThreshold
	}
	px := func(i int) (int, int) {
		return int(pose.Landmarks[i].X * w), int(pose.Landmarks[i].Y * h)
	}

	for _, conn := range models.PoseConnections {
		a, b := conn[0], conn[1]
		if !visible(a) || !visible(b) {
			continue
		}
		x1, y1 := px(a)
		x2, y2 := px(b)
		drawLine(img, x1, y1, x2, y2, boneColor)
	}

	for i := range pose.Landmarks {
		if !visible(i) {
			continue
		}
		x, y := px(i)
		drawPoint(img, x, y, 2, jointColor)
	}
}
