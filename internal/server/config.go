package server

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"

	"poseview/pkg/blob"
)

// Config is assembled once at startup (env is read here, not in handlers)
// and handed to New.
type Config struct {
	Port     string `validate:"required,numeric"`
	ModelDir string `validate:"required"`

	// ModelUpstreamURL is the blob store location the proxy route pulls the
	// model from. An S3 bucket takes precedence when configured.
	ModelUpstreamURL string `validate:"required_without=S3Bucket,omitempty,url"`

	// EngineURL is the websocket endpoint of the external pose runtime.
	EngineURL string `validate:"required"`

	JWTSecret string `validate:"required"`
	TokenTTL  time.Duration

	S3Region          string
	S3Bucket          string
	S3Key             string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

func NewValidator() *validator.Validate {
	return validator.New()
}

func FromEnv() Config {
	cfg := Config{
		Port:             os.Getenv("APP_PORT"),
		ModelDir:         os.Getenv("MODEL_DIR"),
		ModelUpstreamURL: os.Getenv("MODEL_UPSTREAM_URL"),
		EngineURL:        os.Getenv("ENGINE_WS_URL"),
		JWTSecret:        os.Getenv("JWT_ACCESS_TOKEN_SECRET"),
		TokenTTL:         time.Hour,

		S3Region:          os.Getenv("AWS_REGION"),
		S3Bucket:          os.Getenv("AWS_BUCKET_NAME"),
		S3Key:             os.Getenv("AWS_MODEL_KEY"),
		S3AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		S3SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
	}

	if cfg.Port == "" {
		cfg.Port = "3000"
	}
	if cfg.ModelDir == "" {
		cfg.ModelDir = "./models"
	}
	if cfg.EngineURL == "" {
		cfg.EngineURL = "ws://localhost:8080/ws"
	}

	return cfg
}

// Fetcher picks the blob upstream: S3 when a bucket is configured, plain
// HTTP otherwise.
func (c Config) Fetcher() (blob.Fetcher, error) {
	if c.S3Bucket != "" {
		return blob.NewS3Fetcher(blob.S3Config{
			Region:          c.S3Region,
			Bucket:          c.S3Bucket,
			Key:             c.S3Key,
			AccessKeyID:     c.S3AccessKeyID,
			SecretAccessKey: c.S3SecretAccessKey,
		})
	}
	return blob.NewHTTPFetcher(c.ModelUpstreamURL), nil
}
