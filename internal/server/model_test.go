package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func newTestServer(t *testing.T, upstreamURL, modelDir string) *Server {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	srv, err := New(Config{
		Port:             "3000",
		ModelDir:         modelDir,
		ModelUpstreamURL: upstreamURL,
		EngineURL:        "ws://localhost:8080/ws",
		JWTSecret:        "test-secret",
		TokenTTL:         time.Hour,
	}, logger)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return srv
}

type modelBody struct {
	Status   int    `json:"status"`
	ModelURL string `json:"modelURL"`
	Error    string `json:"error"`
}

func getModel(t *testing.T, srv *Server) (int, modelBody) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/model", nil)
	resp, err := srv.App().Test(req, 5000)
	if err != nil {
		t.Fatalf("app.Test() error: %v", err)
	}
	defer resp.Body.Close()

	var body modelBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("response decode error: %v", err)
	}
	return resp.StatusCode, body
}

func TestModelHandler_Success(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("model-bytes"))
	}))
	defer upstream.Close()

	modelDir := t.TempDir()
	srv := newTestServer(t, upstream.URL, modelDir)

	status, body := getModel(t, srv)

	if status != http.StatusOK {
		t.Fatalf("status = %d, expected 200", status)
	}
	if body.Status != http.StatusOK {
		t.Errorf("body status = %d, expected 200", body.Status)
	}
	if body.ModelURL == "" {
		t.Fatal("modelURL is empty")
	}

	local := filepath.Join(modelDir, filepath.Base(body.ModelURL))
	data, err := os.ReadFile(local)
	if err != nil {
		t.Fatalf("proxied model file not readable: %v", err)
	}
	if string(data) != "model-bytes" {
		t.Errorf("proxied model content = %q", data)
	}

	// the returned URL is served by the static layer
	req := httptest.NewRequest(http.MethodGet, body.ModelURL, nil)
	resp, err := srv.App().Test(req, 5000)
	if err != nil {
		t.Fatalf("static fetch error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("static fetch status = %d, expected 200", resp.StatusCode)
	}
}

func TestModelHandler_UpstreamNon2xx(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer upstream.Close()

	srv := newTestServer(t, upstream.URL, t.TempDir())

	status, body := getModel(t, srv)

	if status != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", status)
	}
	if body.Error != "Error al descargar el archivo" {
		t.Errorf("error = %q, expected fixed download error message", body.Error)
	}
}

func TestModelHandler_UpstreamUnreachable(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close()

	srv := newTestServer(t, upstream.URL, t.TempDir())

	status, body := getModel(t, srv)

	if status != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", status)
	}
	if body.Error != "Error al descargar el archivo" {
		t.Errorf("error = %q, expected fixed download error message", body.Error)
	}
}

func TestModelHandler_SupersededCopyReleased(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("model-bytes"))
	}))
	defer upstream.Close()

	modelDir := t.TempDir()
	srv := newTestServer(t, upstream.URL, modelDir)

	_, first := getModel(t, srv)
	_, second := getModel(t, srv)

	if first.ModelURL == second.ModelURL {
		t.Fatalf("expected distinct copies, got %s twice", first.ModelURL)
	}

	firstPath := filepath.Join(modelDir, filepath.Base(first.ModelURL))
	if _, err := os.Stat(firstPath); !os.IsNotExist(err) {
		t.Errorf("superseded model copy %s still exists", firstPath)
	}

	secondPath := filepath.Join(modelDir, filepath.Base(second.ModelURL))
	if _, err := os.Stat(secondPath); err != nil {
		t.Errorf("current model copy %s missing: %v", secondPath, err)
	}
}
