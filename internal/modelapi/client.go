// Package modelapi is the viewer-side client of the model server: model
// asset resolution and the bearer token helpers.
package modelapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"poseview/internal/assets"
	"poseview/internal/models"
)

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type modelResponse struct {
	Status   int    `json:"status"`
	ModelURL string `json:"modelURL"`
	Error    string `json:"error"`
}

// FetchModel asks the proxy route to pull the model from the blob store and
// returns the absolute URL of the local copy it produced.
func (c *Client) FetchModel(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/v1/model", nil)
	if err != nil {
		return "", err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var body modelResponse
	if err := jsoniter.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		if body.Error != "" {
			return "", fmt.Errorf("model fetch failed: %s", body.Error)
		}
		return "", fmt.Errorf("model fetch failed: status %d", resp.StatusCode)
	}
	if body.ModelURL == "" {
		return "", fmt.Errorf("model fetch returned empty modelURL")
	}

	return c.BaseURL + body.ModelURL, nil
}

// StaticModelURL is the direct static-asset path of the model, the path the
// viewer uses by default.
func (c *Client) StaticModelURL() string {
	return c.BaseURL + "/models/" + models.ModelFileName
}

// Download pulls url into the tracker and returns the local path.
func (c *Client) Download(ctx context.Context, tracker *assets.Tracker, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model download failed: %s", resp.Status)
	}

	return tracker.Create(models.ModelFileName, resp.Body)
}

// ResolveModel fetches the static model asset into a tracked local file.
func (c *Client) ResolveModel(ctx context.Context, tracker *assets.Tracker) (string, error) {
	return c.Download(ctx, tracker, c.StaticModelURL())
}

// EngineWSURL is the websocket endpoint of the pose relay behind the server.
func (c *Client) EngineWSURL() string {
	url := c.BaseURL
	switch {
	case strings.HasPrefix(url, "https://"):
		url = "wss://" + strings.TrimPrefix(url, "https://")
	case strings.HasPrefix(url, "http://"):
		url = "ws://" + strings.TrimPrefix(url, "http://")
	}
	return url + "/api/v1/pose/ws"
}
