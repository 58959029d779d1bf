package server

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestNew_RejectsIncompleteConfig(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	tests := []struct {
		name string
		cfg  Config
	}{
		{
			"missing jwt secret",
			Config{Port: "3000", ModelDir: "m", ModelUpstreamURL: "http://x", EngineURL: "ws://x"},
		},
		{
			"missing upstream and bucket",
			Config{Port: "3000", ModelDir: "m", EngineURL: "ws://x", JWTSecret: "s"},
		},
		{
			"non-numeric port",
			Config{Port: "abc", ModelDir: "m", ModelUpstreamURL: "http://x", EngineURL: "ws://x", JWTSecret: "s"},
		},
	}

	for _, test := range tests {
		if _, err := New(test.cfg, logger); err == nil {
			t.Errorf("%s: New() accepted invalid config", test.name)
		}
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("MODEL_DIR", "")
	t.Setenv("ENGINE_WS_URL", "")

	cfg := FromEnv()

	if cfg.Port != "3000" {
		t.Errorf("Port = %q, expected 3000", cfg.Port)
	}
	if cfg.ModelDir != "./models" {
		t.Errorf("ModelDir = %q, expected ./models", cfg.ModelDir)
	}
	if cfg.EngineURL != "ws://localhost:8080/ws" {
		t.Errorf("EngineURL = %q, expected default engine URL", cfg.EngineURL)
	}
	if cfg.TokenTTL != time.Hour {
		t.Errorf("TokenTTL = %v, expected 1h", cfg.TokenTTL)
	}
}
