package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/scholarcast/scholarcast/internal/config"
)

func newTestRouter(t *testing.T, backendURL string, cfg *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if cfg == nil {
		cfg = &config.Config{Mode: "release", Secret: "test-secret"}
	}
	cfg.BackendURL = backendURL
	return SetupRouter(cfg, New(cfg))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response not JSON: %v (%s)", err, rec.Body.String())
	}
	return body
}

func TestTokenMissingParams(t *testing.T) {
	r := newTestRouter(t, "http://backend.invalid", nil)

	cases := []struct {
		name string
		path string
	}{
		{"no room", "/api/token?username=ada@example.org"},
		{"no username", "/api/token?room=room-1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestTokenProxyForwardsAuthorization(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/rooms/room-1/token") {
			t.Errorf("unexpected upstream path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer abc" {
			t.Errorf("auth header not forwarded, got %q", r.Header.Get("Authorization"))
		}
		if r.URL.Query().Get("role") != "guest" {
			t.Errorf("role not forwarded, got %q", r.URL.Query().Get("role"))
		}
		json.NewEncoder(w).Encode(map[string]string{"token": "backend-jwt", "room_id": "room-1"})
	}))
	defer backend.Close()

	r := newTestRouter(t, backend.URL, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/token?room=room-1&username=ada@example.org&role=guest", nil)
	req.Header.Set("Authorization", "Bearer abc")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if body := decodeBody(t, rec); body["token"] != "backend-jwt" {
		t.Fatalf("expected relayed backend token, got %v", body)
	}
}

func TestTokenProxyWrapsBackendFailure(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer backend.Close()

	r := newTestRouter(t, backend.URL, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/token?room=room-1&username=ada@example.org", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "failed to get token" {
		t.Fatalf("expected wrapped error, got %v", body)
	}
}

func TestTokenLocalMint(t *testing.T) {
	cfg := &config.Config{
		Mode:           "release",
		Secret:         "test-secret",
		MediaAPIKey:    "devkey",
		MediaAPISecret: "devsecret-with-enough-entropy-for-signing",
		TokenTTL:       time.Hour,
	}
	r := newTestRouter(t, "http://backend.invalid", cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/token?room=room-1&username=ada@example.org&role=host", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	token, _ := body["token"].(string)
	if token == "" || len(strings.Split(token, ".")) != 3 {
		t.Fatalf("expected a signed JWT, got %q", token)
	}
	if body["can_publish"] != true {
		t.Errorf("a host grant must allow publishing, got %v", body["can_publish"])
	}
	if body["role"] != "host" {
		t.Errorf("expected role echoed, got %v", body["role"])
	}
}

func TestTokenUnknownRoleDefaultsToViewer(t *testing.T) {
	cfg := &config.Config{
		Mode:           "release",
		Secret:         "test-secret",
		MediaAPIKey:    "devkey",
		MediaAPISecret: "devsecret-with-enough-entropy-for-signing",
	}
	r := newTestRouter(t, "http://backend.invalid", cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/token?room=room-1&username=ada@example.org&role=superadmin", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	body := decodeBody(t, rec)
	if body["role"] != "viewer" || body["can_publish"] != false {
		t.Fatalf("unknown role must degrade to viewer, got %v", body)
	}
}

func TestPaperSearchValidation(t *testing.T) {
	r := newTestRouter(t, "http://backend.invalid", nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/papers/search", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing query: expected 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/papers/search?query=crispr", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing auth: expected 401, got %d", rec.Code)
	}
}

func TestPaperSearchRelaysBackendStatus(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("query") != "dark matter" {
			t.Errorf("query not forwarded, got %q", r.URL.Query().Get("query"))
		}
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]string{"error": "rate limited"})
	}))
	defer backend.Close()

	r := newTestRouter(t, backend.URL, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/papers/search?query=dark+matter", nil)
	req.Header.Set("Authorization", "Bearer abc")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected backend status relayed, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "rate limited" {
		t.Fatalf("expected backend body relayed, got %v", body)
	}
}

func TestPaperSearchWrapsNonJSONBackend(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "<html>502 Bad Gateway</html>", http.StatusBadGateway)
	}))
	defer backend.Close()

	r := newTestRouter(t, backend.URL, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/papers/search?query=crispr", nil)
	req.Header.Set("Authorization", "Bearer abc")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected relayed 502, got %d", rec.Code)
	}
	if body := decodeBody(t, rec); body["error"] != "backend server error (502)" {
		t.Fatalf("expected wrapped non-JSON error, got %v", body)
	}
}

func TestClientTokenCookieIsPinned(t *testing.T) {
	r := newTestRouter(t, "http://backend.invalid", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var pinned bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "ct" && c.Value != "" {
			pinned = true
		}
	}
	if !pinned {
		t.Fatal("expected client token cookie on first response")
	}
}
