package server

import (
	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// PoseRelay bridges websocket clients to the external pose engine: binary
// frames go upstream, landmark JSON comes back. One upstream connection per
// client.
type PoseRelay struct {
	log       *logrus.Logger
	engineURL string
}

func NewPoseRelay(log *logrus.Logger, engineURL string) *PoseRelay {
	return &PoseRelay{
		log:       log,
		engineURL: engineURL,
	}
}

func (h *PoseRelay) Start(srv fiber.Router) {
	pose := srv.Group("/pose")
	pose.Use("/ws", func(c *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	pose.Get("/ws", fiberws.New(h.handle))
}

func (h *PoseRelay) handle(c *fiberws.Conn) {
	h.log.Info("pose relay client connected")
	defer h.log.Info("pose relay client disconnected")

	up, _, err := websocket.DefaultDialer.Dial(h.engineURL, nil)
	if err != nil {
		h.log.WithField("error", err.Error()).Error("pose engine unreachable")
		c.WriteJSON(map[string]string{"error": "pose engine unreachable"})
		return
	}
	defer up.Close()

	errChan := make(chan error, 2)

	go func() {
		for {
			messageType, message, err := c.ReadMessage()
			if err != nil {
				errChan <- err
				return
			}
			if messageType != fiberws.BinaryMessage {
				continue
			}
			if err := up.WriteMessage(websocket.BinaryMessage, message); err != nil {
				errChan <- err
				return
			}
		}
	}()

	go func() {
		for {
			_, message, err := up.ReadMessage()
			if err != nil {
				errChan <- err
				return
			}
			if err := c.WriteMessage(fiberws.TextMessage, message); err != nil {
				errChan <- err
				return
			}
		}
	}()

	if err := <-errChan; err != nil {
		h.log.WithField("error", err.Error()).Debug("pose relay closed")
	}
}
