package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"poseview/pkg/response"
)

// handleErr maps a handler error onto the wire. A *response.Error carries its
// own status code; anything else is an internal error.
func handleErr(c *fiber.Ctx, log *logrus.Logger, operation string, err error) error {
	var respErr *response.Error
	if errors.As(err, &respErr) {
		log.WithFields(logrus.Fields{
			"request_id": requestID(c),
			"error":      err.Error(),
			"code":       respErr.Code,
			"operation":  operation,
		}).Warn("Operation failed with error response")
		return c.Status(respErr.Code).JSON(fiber.Map{"error": err.Error()})
	}

	log.WithFields(logrus.Fields{
		"request_id": requestID(c),
		"error":      err.Error(),
		"operation":  operation,
	}).Error("Operation failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}
