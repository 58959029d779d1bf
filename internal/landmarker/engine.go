package landmarker

import (
	"bytes"
	"image"
	"image/jpeg"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"

	"poseview/internal/models"
	"poseview/pkg/log"
)

// Engine is the websocket connection to the external pose runtime. Frames go
// in as JPEG binary messages, landmark sets come back as JSON.
type Engine struct {
	serverURL string

	InputFrames chan image.Image
	Results     chan []models.PoseResult

	stopOnce sync.Once
	stopChan chan struct{}
}

func NewEngine(wsURL string) *Engine {
	return &Engine{
		serverURL:   wsURL,
		InputFrames: make(chan image.Image, 5),
		Results:     make(chan []models.PoseResult, 5),
		stopChan:    make(chan struct{}),
	}
}

func (e *Engine) Start() {
	go e.runLoop()
}

func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		close(e.stopChan)
	})
}

func (e *Engine) runLoop() {
	for {
		select {
		case <-e.stopChan:
			return
		default:
		}

		log.Debug(log.Fields{"url": e.serverURL}, "connecting to pose engine")
		conn, _, err := websocket.DefaultDialer.Dial(e.serverURL, nil)
		if err != nil {
			log.Warn(log.Fields{"url": e.serverURL, "error": err.Error()}, "pose engine connection failed, retrying")
			select {
			case <-e.stopChan:
				return
			case <-time.After(2 * time.Second):
			}
			continue
		}

		log.Info(log.Fields{"url": e.serverURL}, "connected to pose engine")

		errChan := make(chan error, 2)

		go func() {
			for {
				select {
				case <-e.stopChan:
					errChan <- nil
					return
				case img := <-e.InputFrames:
					var buf bytes.Buffer
					if err := jpeg.Encode(&buf, img, nil); err != nil {
						log.Warn(log.Fields{"error": err.Error()}, "frame encode failed")
						continue
					}

					if err := conn.WriteMessage(websocket.BinaryMessage, buf.Bytes()); err != nil {
						errChan <- err
						return
					}
				}
			}
		}()

		go func() {
			for {
				_, message, err := conn.ReadMessage()
				if err != nil {
					errChan <- err
					return
				}

				var results []models.PoseResult
				if err := jsoniter.Unmarshal(message, &results); err != nil {
					log.Warn(log.Fields{"error": err.Error()}, "pose result decode failed")
					continue
				}

				select {
				case e.Results <- results:
				default:
				}
			}
		}()

		err = <-errChan
		conn.Close()

		select {
		case <-e.stopChan:
			return
		default:
		}

		if err != nil {
			log.Warn(log.Fields{"error": err.Error()}, "pose engine connection lost")
		}
	}
}
