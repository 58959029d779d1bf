package capture

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os/exec"
	"regexp"
	"runtime"
	"sync"
)

// WebcamStreamer captures from a camera device through ffmpeg (v4l2 on
// Linux, dshow on Windows).
type WebcamStreamer struct {
	stopOnce sync.Once

	deviceID  string
	width     int
	height    int
	targetFPS uint

	cmd       *exec.Cmd
	frameChan chan image.Image
	errChan   chan error
	stopChan  chan struct{}
}

func NewWebcamStreamer(deviceID string, targetFPS uint, width, height int) *WebcamStreamer {
	return &WebcamStreamer{
		deviceID:  deviceID,
		width:     width,
		height:    height,
		targetFPS: targetFPS,
		frameChan: make(chan image.Image),
		errChan:   make(chan error, 1),
		stopChan:  make(chan struct{}),
	}
}

func (ws *WebcamStreamer) Start() error {
	input := ws.deviceID
	inputFormat := "v4l2"
	if runtime.GOOS == "windows" {
		inputFormat = "dshow"
		input = fmt.Sprintf("video=%s", ws.deviceID)
	}

	args := []string{
		"-f", inputFormat,
		"-i", input,
		"-vf", fmt.Sprintf("fps=%d,scale=%d:%d", ws.targetFPS, ws.width, ws.height),
		"-f", "image2pipe",
		"-pix_fmt", "rgba",
		"-vcodec", "rawvideo",
		"-",
	}

	ws.cmd = exec.Command("ffmpeg", args...)

	var stderr bytes.Buffer
	ws.cmd.Stderr = &stderr

	stdout, err := ws.cmd.StdoutPipe()
	if err != nil {
		return err
	}

	if err := ws.cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start error: %w. Details: %s", err, stderr.String())
	}

	go ws.readLoop(stdout)

	return nil
}

func (ws *WebcamStreamer) readLoop(stdout io.ReadCloser) {
	defer close(ws.frameChan)
	defer close(ws.errChan)
	defer stdout.Close()
	defer ws.stopCmd()

	frameSize := ws.width * ws.height * bytesPerPixel
	buffer := make([]byte, frameSize)

	for {
		select {
		case <-ws.stopChan:
			return

		default:
			if _, err := io.ReadFull(stdout, buffer); err != nil {
				select {
				case <-ws.stopChan:
				default:
					ws.errChan <- fmt.Errorf("read error: %v", err)
				}
				return
			}

			pixels := make([]byte, len(buffer))
			copy(pixels, buffer)

			img := &image.RGBA{
				Pix:    pixels,
				Stride: ws.width * bytesPerPixel,
				Rect:   image.Rect(0, 0, ws.width, ws.height),
			}

			select {
			case ws.frameChan <- img:
			default:
			}
		}
	}
}

func (ws *WebcamStreamer) stopCmd() {
	if ws.cmd != nil && ws.cmd.Process != nil {
		ws.cmd.Process.Kill()
		ws.cmd.Wait()
	}
}

func (ws *WebcamStreamer) Stop() {
	ws.stopOnce.Do(func() {
		close(ws.stopChan)
		ws.stopCmd()
	})
}

func (ws *WebcamStreamer) FrameChan() <-chan image.Image { return ws.frameChan }
func (ws *WebcamStreamer) ErrorChan() <-chan error       { return ws.errChan }

// ListCameras enumerates capture devices. On Linux the common v4l2 nodes are
// offered directly; on Windows ffmpeg's dshow device listing is parsed.
func ListCameras() ([]string, error) {
	if runtime.GOOS != "windows" {
		return []string{"/dev/video0", "/dev/video1"}, nil
	}

	cmd := exec.Command("ffmpeg", "-list_devices", "true", "-f", "dshow", "-i", "dummy")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.Run()

	re := regexp.MustCompile(`"([^"]+)"\s+\(video\)`)
	matches := re.FindAllStringSubmatch(stderr.String(), -1)

	var cameras []string
	seen := make(map[string]bool)
	for _, m := range matches {
		name := m[1]
		if name != "dummy" && !seen[name] {
			cameras = append(cameras, name)
			seen[name] = true
		}
	}

	if len(cameras) == 0 {
		return []string{"No cameras found"}, nil
	}

	return cameras, nil
}
