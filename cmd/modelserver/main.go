package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"poseview/internal/server"
	"poseview/pkg/log"
)

func main() {
	logger := log.NewLogger()

	if err := godotenv.Load(); err != nil {
		logger.Infof("No .env file loaded: %v", err)
	}

	srv, err := server.New(server.FromEnv(), logger)
	if err != nil {
		logger.Fatalf("Failed to build server: %v", err)
	}

	go func() {
		if err := srv.Run(); err != nil {
			logger.Fatalf("Server stopped: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down")
	if err := srv.Shutdown(); err != nil {
		logger.Errorf("Shutdown error: %v", err)
	}
}
