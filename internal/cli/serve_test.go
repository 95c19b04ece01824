package cli

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBuildServerServesHealth(t *testing.T) {
	cfg := newTestConfig(t, "http://127.0.0.1:1")
	rt, err := openRuntime(cfg)
	if err != nil {
		t.Fatalf("openRuntime() error: %v", err)
	}
	defer rt.Close()

	app, sessions, err := buildServer(cfg, rt)
	if err != nil {
		t.Fatalf("buildServer() error: %v", err)
	}

	response, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil), -1)
	if err != nil {
		t.Fatalf("GET /healthz failed: %v", err)
	}
	if response.StatusCode != http.StatusOK {
		t.Fatalf("GET /healthz status = %d", response.StatusCode)
	}

	response, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/app", nil), -1)
	if err != nil || response.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/app = %v, %v", response, err)
	}
	if sessions.Count() != 1 {
		t.Fatalf("sessions = %d, want 1", sessions.Count())
	}
}

func TestRootCommandTree(t *testing.T) {
	cmd := NewRootCommand(newTestConfig(t, ""))
	for _, path := range [][]string{{"serve"}, {"credential", "status"}, {"credential", "set"}, {"credential", "clear"}, {"credential", "test"}} {
		found, _, err := cmd.Find(path)
		if err != nil || found.Name() != path[len(path)-1] {
			t.Fatalf("command %v missing: %v", path, err)
		}
	}
	if flag := cmd.PersistentFlags().Lookup("db"); flag == nil {
		t.Fatal("expected persistent --db flag")
	}
}
