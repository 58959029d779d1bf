// Package server is the model server: the model fetch proxy, static model
// hosting, the token endpoints, and the pose websocket relay.
package server

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"poseview/internal/assets"
)

type handler interface {
	Start(srv fiber.Router)
}

type Server struct {
	engine    *fiber.App
	log       *logrus.Logger
	validator *validator.Validate
	cfg       Config
	handlers  []handler
}

func NewFiber() *fiber.App {
	return fiber.New(fiber.Config{
		AppName:       "poseview model server",
		StrictRouting: false,
		CaseSensitive: true,
		JSONEncoder:   jsoniter.Marshal,
		JSONDecoder:   jsoniter.Unmarshal,
	})
}

func New(cfg Config, logger *logrus.Logger) (*Server, error) {
	v := NewValidator()
	if err := v.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid server config: %w", err)
	}

	tracker, err := assets.NewTracker(cfg.ModelDir)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare model directory: %w", err)
	}

	fetcher, err := cfg.Fetcher()
	if err != nil {
		return nil, fmt.Errorf("failed to build blob fetcher: %w", err)
	}

	s := &Server{
		engine:    NewFiber(),
		log:       logger,
		validator: v,
		cfg:       cfg,
	}

	s.handlers = append(s.handlers,
		NewModelHandler(logger, fetcher, tracker),
		NewTokenHandler(logger, v, cfg.JWTSecret, cfg.TokenTTL),
		NewPoseRelay(logger, cfg.EngineURL),
	)

	s.registerRoutes()

	return s, nil
}

func (s *Server) registerRoutes() {
	s.engine.Use(NewRequestIDMiddleware())
	s.engine.Use(NewRequestLogger(s.log))

	s.engine.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	s.engine.Static("/models", s.cfg.ModelDir)

	router := s.engine.Group("/api/v1")
	for _, h := range s.handlers {
		h.Start(router)
	}
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.engine
}

func (s *Server) Run() error {
	return s.engine.Listen(fmt.Sprintf(":%s", s.cfg.Port))
}

func (s *Server) Shutdown() error {
	return s.engine.Shutdown()
}
