// Package capture produces raw RGBA video frames from the selected source.
// Both sources go through an ffmpeg subprocess piping rawvideo to stdout.
package capture

import (
	"image"
)

type VideoStreamer interface {
	Start() error
	Stop()
	FrameChan() <-chan image.Image
	ErrorChan() <-chan error
}
