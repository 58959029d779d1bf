package capture

import (
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os/exec"
	"sync"
	"time"
)

const (
	bytesPerPixel = 4
	fallbackFPS   = 30
)

// FileStreamer decodes a local video file through ffmpeg and paces the
// frames at the target FPS.
type FileStreamer struct {
	stopOnce sync.Once

	path      string
	targetFPS uint

	scaleW int
	scaleH int

	srcW uint16
	srcH uint16

	cmd       *exec.Cmd
	frameChan chan image.Image
	errChan   chan error
	stopChan  chan struct{}
}

func NewFileStreamer(path string, targetFPS uint, scaleW, scaleH int) (*FileStreamer, error) {
	w, h, err := probeVideoDimensions(path)
	if err != nil {
		return nil, fmt.Errorf("failed to probe video: %w", err)
	}

	return &FileStreamer{
		path:      path,
		targetFPS: targetFPS,
		srcW:      w,
		srcH:      h,
		scaleW:    scaleW,
		scaleH:    scaleH,
		frameChan: make(chan image.Image, 10),
		errChan:   make(chan error, 1),
		stopChan:  make(chan struct{}),
	}, nil
}

func (fs *FileStreamer) Start() error {
	args := []string{
		"-i", fs.path,
		"-vf", fmt.Sprintf("fps=%d,scale=%d:%d:flags=neighbor", fs.targetFPS, fs.scaleW, fs.scaleH),
		"-f", "image2pipe",
		"-pix_fmt", "rgba",
		"-vcodec", "rawvideo",
		"-",
	}

	fs.cmd = exec.Command("ffmpeg", args...)

	stdout, err := fs.cmd.StdoutPipe()
	if err != nil {
		return err
	}

	if err := fs.cmd.Start(); err != nil {
		return err
	}

	go fs.readFrames(stdout)

	return nil
}

func (fs *FileStreamer) readFrames(stdout io.ReadCloser) {
	defer close(fs.frameChan)
	defer close(fs.errChan)
	defer stdout.Close()
	defer fs.stopCmd()

	frameSize := fs.scaleW * fs.scaleH * bytesPerPixel
	buffer := make([]byte, frameSize)

	fps := fs.targetFPS
	if fps == 0 {
		fps = fallbackFPS
	}

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-fs.stopChan:
			return

		case <-ticker.C:
			if _, err := io.ReadFull(stdout, buffer); err != nil {
				select {
				case <-fs.stopChan:
				default:
					fs.errChan <- fmt.Errorf("read error: %v", err)
				}
				return
			}

			pixels := make([]byte, len(buffer))
			copy(pixels, buffer)

			img := &image.RGBA{
				Pix:    pixels,
				Stride: fs.scaleW * bytesPerPixel,
				Rect:   image.Rect(0, 0, fs.scaleW, fs.scaleH),
			}

			select {
			case fs.frameChan <- img:
			case <-fs.stopChan:
				return
			}
		}
	}
}

func (fs *FileStreamer) stopCmd() {
	if fs.cmd != nil && fs.cmd.Process != nil {
		fs.cmd.Process.Kill()
		fs.cmd.Wait()
	}
}

func (fs *FileStreamer) Stop() {
	fs.stopOnce.Do(func() {
		close(fs.stopChan)
		fs.stopCmd()
	})
}

func (fs *FileStreamer) FrameChan() <-chan image.Image { return fs.frameChan }
func (fs *FileStreamer) ErrorChan() <-chan error       { return fs.errChan }

type probeData struct {
	Streams []struct {
		Width  uint16 `json:"width"`
		Height uint16 `json:"height"`
	} `json:"streams"`
}

func probeVideoDimensions(path string) (uint16, uint16, error) {
	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "json",
		path,
	)

	output, err := cmd.Output()
	if err != nil {
		return 0, 0, err
	}

	var data probeData
	if err := json.Unmarshal(output, &data); err != nil {
		return 0, 0, err
	}

	if len(data.Streams) == 0 {
		return 0, 0, fmt.Errorf("no video streams found")
	}

	return data.Streams[0].Width, data.Streams[0].Height, nil
}
