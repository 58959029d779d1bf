package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	jwtPkg "poseview/pkg/jwt"
)

type tokenBody struct {
	AccessToken string `json:"access_token"`
	Error       string `json:"error"`
}

func postToken(t *testing.T, srv *Server, path, payload, bearer string) (int, tokenBody) {
	t.Helper()

	var reqBody *strings.Reader
	if payload != "" {
		reqBody = strings.NewReader(payload)
	} else {
		reqBody = strings.NewReader("")
	}

	req := httptest.NewRequest(http.MethodPost, path, reqBody)
	if payload != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := srv.App().Test(req, 5000)
	if err != nil {
		t.Fatalf("app.Test() error: %v", err)
	}
	defer resp.Body.Close()

	var body tokenBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("response decode error: %v", err)
	}
	return resp.StatusCode, body
}

func TestTokenHandler_Issue(t *testing.T) {
	srv := newTestServer(t, "http://localhost:1", t.TempDir())

	status, body := postToken(t, srv, "/api/v1/token", "", "")

	if status != http.StatusOK {
		t.Fatalf("status = %d, expected 200", status)
	}
	if body.AccessToken == "" {
		t.Fatal("access_token is empty")
	}

	claims, err := jwtPkg.Parse("test-secret", body.AccessToken)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if id, _ := claims["client_id"].(string); id == "" {
		t.Error("issued token missing client_id claim")
	}
}

func TestTokenHandler_IssueWithClientID(t *testing.T) {
	srv := newTestServer(t, "http://localhost:1", t.TempDir())

	status, body := postToken(t, srv, "/api/v1/token", `{"client_id":"viewer-1"}`, "")

	if status != http.StatusOK {
		t.Fatalf("status = %d, expected 200", status)
	}

	claims, err := jwtPkg.Parse("test-secret", body.AccessToken)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if id, _ := claims["client_id"].(string); id != "viewer-1" {
		t.Errorf("client_id claim = %q, expected viewer-1", id)
	}
}

func TestTokenHandler_Refresh(t *testing.T) {
	srv := newTestServer(t, "http://localhost:1", t.TempDir())

	_, issued := postToken(t, srv, "/api/v1/token", `{"client_id":"viewer-1"}`, "")

	status, refreshed := postToken(t, srv, "/api/v1/token/refresh", "", issued.AccessToken)

	if status != http.StatusOK {
		t.Fatalf("refresh status = %d, expected 200", status)
	}
	if refreshed.AccessToken == "" {
		t.Fatal("refreshed access_token is empty")
	}

	claims, err := jwtPkg.Parse("test-secret", refreshed.AccessToken)
	if err != nil {
		t.Fatalf("refreshed token does not verify: %v", err)
	}
	if id, _ := claims["client_id"].(string); id != "viewer-1" {
		t.Errorf("refreshed client_id = %q, expected viewer-1", id)
	}
}

func TestTokenHandler_RefreshRejectsMissingOrBadToken(t *testing.T) {
	srv := newTestServer(t, "http://localhost:1", t.TempDir())

	tests := []struct {
		name   string
		bearer string
	}{
		{"missing header", ""},
		{"garbage token", "not-a-jwt"},
	}

	for _, test := range tests {
		status, body := postToken(t, srv, "/api/v1/token/refresh", "", test.bearer)
		if status != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, expected 401", test.name, status)
		}
		if body.Error == "" {
			t.Errorf("%s: expected error payload", test.name)
		}
	}
}

func TestTokenHandler_IssueRejectsMalformedBody(t *testing.T) {
	srv := newTestServer(t, "http://localhost:1", t.TempDir())

	status, _ := postToken(t, srv, "/api/v1/token", "{not json", "")
	if status != http.StatusBadRequest {
		t.Errorf("status = %d, expected 400", status)
	}
}
