package main

import (
	"os"
	"path/filepath"

	"poseview/internal/assets"
	"poseview/internal/config"
	"poseview/internal/modelapi"
	"poseview/internal/ui"
	"poseview/pkg/log"
)

func main() {
	logger := log.NewLogger()

	cfg := config.LoadConfigFile(config.DefaultConfigPath)

	cacheDir := filepath.Join(os.TempDir(), "poseview")
	tracker, err := assets.NewTracker(cacheDir)
	if err != nil {
		logger.Fatalf("Failed to prepare asset cache: %v", err)
	}
	defer tracker.ReleaseAll()

	client := modelapi.New(cfg.GetServerURL())

	app := ui.CreateApp(cfg, client, tracker)
	app.Run()
}
