// Package blob fetches static assets from the blob store that hosts the pose
// model. The default upstream is a plain HTTP URL; an S3 bucket can be used
// instead when one is configured.
package blob

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Fetcher streams a single configured asset into dst.
type Fetcher interface {
	Fetch(ctx context.Context, dst io.Writer) error
}

type HTTPFetcher struct {
	URL    string
	Client *http.Client
}

func NewHTTPFetcher(url string) *HTTPFetcher {
	return &HTTPFetcher{
		URL:    url,
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, dst io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return err
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected upstream status: %s", resp.Status)
	}

	_, err = io.Copy(dst, resp.Body)
	return err
}
