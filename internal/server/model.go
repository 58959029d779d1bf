package server

import (
	"bytes"
	"path/filepath"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"poseview/internal/assets"
	"poseview/internal/models"
	"poseview/pkg/blob"
	"poseview/pkg/response"
)

// modelDownloadErrMsg is the payload callers key their retry logic on.
const modelDownloadErrMsg = "Error al descargar el archivo"

// ModelHandler is the model fetch proxy: GET pulls the asset from the blob
// store into the static model directory and answers with the local URL.
// Any failure becomes a 400 so the caller retries. No retries or caching
// here.
type ModelHandler struct {
	log     *logrus.Logger
	fetcher blob.Fetcher
	tracker *assets.Tracker

	mu      sync.Mutex
	current string
}

func NewModelHandler(log *logrus.Logger, fetcher blob.Fetcher, tracker *assets.Tracker) *ModelHandler {
	return &ModelHandler{
		log:     log,
		fetcher: fetcher,
		tracker: tracker,
	}
}

func (h *ModelHandler) Start(srv fiber.Router) {
	srv.Get("/model", h.GetModel)
}

func (h *ModelHandler) GetModel(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.fetcher.Fetch(c.UserContext(), &buf); err != nil {
		h.log.WithFields(logrus.Fields{
			"request_id": requestID(c),
			"error":      err.Error(),
		}).Warn("model upstream fetch failed")
		return handleErr(c, h.log, "GetModel", response.NewError(fiber.StatusBadRequest, modelDownloadErrMsg))
	}

	path, err := h.tracker.Create(models.ModelFileName, &buf)
	if err != nil {
		h.log.WithFields(logrus.Fields{
			"request_id": requestID(c),
			"error":      err.Error(),
		}).Error("failed to store model copy")
		return handleErr(c, h.log, "GetModel", response.NewError(fiber.StatusBadRequest, modelDownloadErrMsg))
	}

	h.mu.Lock()
	prev := h.current
	h.current = path
	h.mu.Unlock()

	if prev != "" {
		h.tracker.Release(prev)
	}

	return c.JSON(fiber.Map{
		"status":   fiber.StatusOK,
		"modelURL": "/models/" + filepath.Base(path),
	})
}
