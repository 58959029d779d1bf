package modelapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClient_GetToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/token" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok-1"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	token, err := c.GetToken(context.Background())
	if err != nil {
		t.Fatalf("GetToken() error: %v", err)
	}
	if token != "tok-1" {
		t.Errorf("GetToken() = %q, expected tok-1", token)
	}
}

func TestClient_GetTokenNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL)
	if _, err := c.GetToken(context.Background()); err == nil {
		t.Fatal("GetToken() expected error on 500 response")
	}
}

func TestClient_RefreshToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/token":
			w.Write([]byte(`{"access_token":"tok-1"}`))
		case "/api/v1/token/refresh":
			if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
				t.Errorf("refresh Authorization = %q, expected Bearer tok-1", got)
			}
			w.Write([]byte(`{"access_token":"tok-2"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	token, err := c.RefreshToken(context.Background())
	if err != nil {
		t.Fatalf("RefreshToken() error: %v", err)
	}
	if token != "tok-2" {
		t.Errorf("RefreshToken() = %q, expected tok-2", token)
	}
}

func TestClient_RefreshTokenFailsWhenRefreshEndpointRejects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/token":
			w.Write([]byte(`{"access_token":"tok-1"}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	if _, err := c.RefreshToken(context.Background()); err == nil {
		t.Fatal("RefreshToken() expected error on 401 refresh response")
	}
}
