package server

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	jwtPkg "poseview/pkg/jwt"
	"poseview/pkg/response"
)

type issueTokenRequest struct {
	ClientID string `json:"client_id" validate:"omitempty,min=1,max=128"`
}

// TokenHandler issues and refreshes bearer tokens. The viewer's main flow
// does not use them; the endpoints exist for authenticated deployments.
type TokenHandler struct {
	log       *logrus.Logger
	validator *validator.Validate
	secret    string
	ttl       time.Duration
}

func NewTokenHandler(log *logrus.Logger, v *validator.Validate, secret string, ttl time.Duration) *TokenHandler {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenHandler{
		log:       log,
		validator: v,
		secret:    secret,
		ttl:       ttl,
	}
}

func (h *TokenHandler) Start(srv fiber.Router) {
	srv.Post("/token", h.IssueToken)
	srv.Post("/token/refresh", h.RefreshToken)
}

func (h *TokenHandler) IssueToken(c *fiber.Ctx) error {
	var req issueTokenRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return handleErr(c, h.log, "IssueToken", response.NewError(fiber.StatusBadRequest, "invalid request body"))
		}
		if err := h.validator.Struct(req); err != nil {
			return handleErr(c, h.log, "IssueToken", response.NewError(fiber.StatusBadRequest, err.Error()))
		}
	}

	clientID := req.ClientID
	if clientID == "" {
		clientID = uuid.NewString()
	}

	token, _, err := jwtPkg.Sign(h.secret, map[string]interface{}{"client_id": clientID}, h.ttl)
	if err != nil {
		return handleErr(c, h.log, "IssueToken", err)
	}

	return c.JSON(fiber.Map{"access_token": token})
}

func (h *TokenHandler) RefreshToken(c *fiber.Ctx) error {
	raw, err := jwtPkg.FromAuthHeader(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return handleErr(c, h.log, "RefreshToken", response.NewError(fiber.StatusUnauthorized, err.Error()))
	}

	claims, err := jwtPkg.Parse(h.secret, raw)
	if err != nil {
		return handleErr(c, h.log, "RefreshToken", response.NewError(fiber.StatusUnauthorized, "invalid token"))
	}

	clientID, _ := claims["client_id"].(string)
	if clientID == "" {
		clientID = uuid.NewString()
	}

	token, _, err := jwtPkg.Sign(h.secret, map[string]interface{}{"client_id": clientID}, h.ttl)
	if err != nil {
		return handleErr(c, h.log, "RefreshToken", err)
	}

	return c.JSON(fiber.Map{"access_token": token})
}
