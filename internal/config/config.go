package config

import (
	"encoding/json"
	"os"
	"sync"
)

type SourceType string

const (
	SourceFile   SourceType = "File"
	SourceWebcam SourceType = "Web-Camera"

	DefaultConfigPath string = "config.json"
	DefaultServerURL  string = "http://localhost:3000"
)

var SourcesList = [...]string{
	string(SourceFile),
	string(SourceWebcam),
}

type FileConfig struct {
	Path string `json:"path"`
}

type WebcamConfig struct {
	DeviceID string `json:"device_id"`
}

type Config struct {
	mu sync.RWMutex

	ActiveSource SourceType `json:"active_source"`
	TargetFPS    uint       `json:"target_fps"`
	ScaledWidth  int        `json:"scaled_width"`
	ScaledHeight int        `json:"scaled_height"`

	// ServerURL points at the model server; the engine websocket and the
	// static model asset both live behind it.
	ServerURL string `json:"server_url"`

	File   FileConfig   `json:"file"`
	Webcam WebcamConfig `json:"webcam"`
}

func (c *Config) GetFPS() uint {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.TargetFPS
}

func (c *Config) SetFPS(fps uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.TargetFPS = fps
}

func (c *Config) GetWidth() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ScaledWidth
}

func (c *Config) SetWidth(width int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ScaledWidth = width
}

func (c *Config) GetHeight() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ScaledHeight
}

func (c *Config) SetHeight(height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ScaledHeight = height
}

func (c *Config) GetServerURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ServerURL
}

func (c *Config) Save(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	return enc.Encode(c)
}

func (c *Config) SaveByDefault() {
	c.Save(DefaultConfigPath)
}

func LoadConfigFile(path string) *Config {
	cfg := NewDefaultConfig()

	if _, err := os.Stat(path); err == nil {
		f, err := os.Open(path)
		if err != nil {
			return cfg
		}
		defer f.Close()

		dec := json.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return NewDefaultConfig()
		}
	}

	return cfg
}

func NewDefaultConfig() *Config {
	return &Config{
		ActiveSource: SourceFile,
		File:         FileConfig{Path: ""},
		Webcam:       WebcamConfig{DeviceID: "/dev/video0"},
		ServerURL:    DefaultServerURL,
		TargetFPS:    24,
		ScaledWidth:  640,
		ScaledHeight: 480,
	}
}
