package capture

import (
	"fmt"

	"poseview/internal/config"
)

// NewStreamer builds the streamer matching the configured source.
func NewStreamer(cfg *config.Config) (VideoStreamer, error) {
	switch cfg.ActiveSource {
	case config.SourceWebcam:
		return NewWebcamStreamer(cfg.Webcam.DeviceID, cfg.GetFPS(), cfg.GetWidth(), cfg.GetHeight()), nil
	case config.SourceFile:
		return NewFileStreamer(cfg.File.Path, cfg.GetFPS(), cfg.GetWidth(), cfg.GetHeight())
	default:
		return nil, fmt.Errorf("unknown video source: %s", cfg.ActiveSource)
	}
}
