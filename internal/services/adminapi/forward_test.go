package adminapi

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/j-veylop/team-usage-dashboard/internal/models"
)

func TestForward_PassesStatusAndBody(t *testing.T) {
	client, seen, recorder := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Upstream", "yes")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":"forbidden"}`)
	})

	resp, err := client.Forward(context.Background(), ForwardRequest{
		Method:       http.MethodPost,
		PathAndQuery: "/teams/spend?debug=1",
		Body:         []byte(`{"searchTerm":"ada"}`),
		RequestID:    "req-1",
	})
	if err != nil {
		t.Fatalf("Forward() failed: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d, want 403", resp.StatusCode)
	}
	if string(resp.Body) != `{"error":"forbidden"}` {
		t.Errorf("Body = %s", resp.Body)
	}
	if resp.Header.Get("X-Upstream") != "yes" {
		t.Error("upstream headers should be returned")
	}

	req := (*seen)[0]
	if req.Auth != "Basic a2V5X2FiYzo=" {
		t.Errorf("Authorization = %q", req.Auth)
	}
	if req.Body["searchTerm"] != "ada" {
		t.Errorf("body not forwarded: %v", req.Body)
	}

	call := recorder.calls[0]
	if call.Source != models.SourceProxy || call.Endpoint != "/teams/spend" || call.RequestID != "req-1" {
		t.Errorf("recorded call = %+v", call)
	}
}

func TestForward_TransportError(t *testing.T) {
	cred, _ := NewCredential("key_abc")
	client := New(cred, Config{BaseURL: "http://127.0.0.1:1"})

	if _, err := client.Forward(context.Background(), ForwardRequest{Method: http.MethodGet, PathAndQuery: "/teams/members"}); err == nil {
		t.Error("Forward() should fail when upstream is unreachable")
	}
}

func TestStripQuery(t *testing.T) {
	tests := map[string]string{
		"/teams/members":        "/teams/members",
		"/teams/members?page=2": "/teams/members",
		"":                      "",
	}
	for in, want := range tests {
		if got := stripQuery(in); got != want {
			t.Errorf("stripQuery(%q) = %q, want %q", in, got, want)
		}
	}
}
