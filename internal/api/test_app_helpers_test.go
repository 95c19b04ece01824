package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/just/internal/credential"
	"github.com/terraincognita07/just/internal/db"
	"github.com/terraincognita07/just/internal/genai"
	"github.com/terraincognita07/just/internal/i18n"
	"github.com/terraincognita07/just/internal/reward"
	"github.com/terraincognita07/just/internal/services"
	"github.com/terraincognita07/just/internal/session"
)

const testSecretKey = "0123456789abcdef0123456789abcdef"

// 2026-10-21 is a Wednesday.
var testNow = time.Date(2026, time.October, 21, 9, 0, 0, 0, time.UTC)

// fakeGemini answers generateContent calls. Requests carrying validKey get
// text or JSON depending on the requested mime type; any other key is refused.
type fakeGemini struct {
	mu        sync.Mutex
	validKey  string
	quote     string
	goalsJSON string
	calls     int
}

func (fake *fakeGemini) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fake.mu.Lock()
	fake.calls++
	validKey, quote, goalsJSON := fake.validKey, fake.quote, fake.goalsJSON
	fake.mu.Unlock()

	if r.Header.Get("x-goog-api-key") != validKey {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
		return
	}

	body, _ := io.ReadAll(r.Body)
	text := quote
	if strings.Contains(string(body), "application/json") {
		text = goalsJSON
	}
	payload, _ := json.Marshal(map[string]any{
		"candidates": []any{map[string]any{
			"content": map[string]any{"parts": []any{map[string]any{"text": text}}},
		}},
	})
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(payload)
}

func (fake *fakeGemini) callCount() int {
	fake.mu.Lock()
	defer fake.mu.Unlock()
	return fake.calls
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (clock *testClock) Now() time.Time {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	return clock.now
}

func (clock *testClock) Advance(d time.Duration) {
	clock.mu.Lock()
	defer clock.mu.Unlock()
	clock.now = clock.now.Add(d)
}

type testApp struct {
	app         *fiber.App
	clock       *testClock
	handler     *Handler
	gemini      *fakeGemini
	store       *credential.Store
	credentials *services.CredentialService
	sessions    *session.Manager
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	gemini := &fakeGemini{
		validKey:  "AIzaValidKey1234",
		quote:     "작은 걸음도 걸음이에요.",
		goalsJSON: `[{"text":"스트레칭 5분","type":"health"},{"text":"친구에게 문자","type":"social"},{"text":"영단어 3개","type":"study"}]`,
	}
	server := httptest.NewServer(gemini)
	t.Cleanup(server.Close)

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "just.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	messages, err := i18n.NewManager("ko")
	if err != nil {
		t.Fatalf("i18n: %v", err)
	}

	clock := &testClock{now: testNow}
	repositories := db.NewRepositories(database)
	store := credential.NewStore(repositories.KeyValues)
	factory := genai.NewFactory(genai.Config{BaseURL: server.URL, Timeout: 5 * time.Second})
	content := services.NewContentService(store, func(secret string) services.ContentGenerator {
		return factory.New(secret)
	}, messages)
	credentials := services.NewCredentialService(store, content, credential.Masked)
	sessions := session.NewManager(content, session.Config{
		InitialQuote: func(lang string) string { return messages.Translate(lang, "quote.initial") },
	})
	credentials.Subscribe(sessions.HandleCredentialChanged)

	handler, err := NewHandler(Dependencies{
		SecretKey:    testSecretKey,
		I18n:         messages,
		Sessions:     sessions,
		Content:      content,
		Credentials:  credentials,
		Community:    services.NewCommunityService(messages, func() time.Time { return testNow }),
		Rewards:      reward.NewMachine(clock.Now, time.UTC),
		GenerateRate: 100,
	})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}

	app := fiber.New()
	RegisterRoutes(app, handler)

	return &testApp{
		app:         app,
		clock:       clock,
		handler:     handler,
		gemini:      gemini,
		store:       store,
		credentials: credentials,
		sessions:    sessions,
	}
}

// client replays the session cookie across requests.
type client struct {
	t      *testing.T
	app    *fiber.App
	cookie string
	lang   string
}

func (env *testApp) newClient(t *testing.T) *client {
	return &client{t: t, app: env.app}
}

func (cl *client) do(method string, path string, body any) (int, map[string]any) {
	cl.t.Helper()

	if body == nil {
		return cl.send(method, path, nil)
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		cl.t.Fatalf("marshal body: %v", err)
	}
	return cl.send(method, path, encoded)
}

// doRaw sends raw as a JSON body without encoding it first.
func (cl *client) doRaw(method string, path string, raw string) (int, map[string]any) {
	cl.t.Helper()
	return cl.send(method, path, []byte(raw))
}

func (cl *client) send(method string, path string, body []byte) (int, map[string]any) {
	cl.t.Helper()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	request := httptest.NewRequest(method, path, reader)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if cl.cookie != "" {
		request.Header.Set("Cookie", sessionCookieName+"="+cl.cookie)
	}
	if cl.lang != "" {
		request.Header.Set("Accept-Language", cl.lang)
	}

	response, err := cl.app.Test(request, -1)
	if err != nil {
		cl.t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer response.Body.Close()

	for _, cookie := range response.Cookies() {
		if cookie.Name == sessionCookieName {
			cl.cookie = cookie.Value
		}
	}

	payload := map[string]any{}
	raw, _ := io.ReadAll(response.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			cl.t.Fatalf("%s %s returned non-JSON body %q", method, path, raw)
		}
	}
	return response.StatusCode, payload
}

func (cl *client) onboard(nickname string, isPublic bool) {
	cl.t.Helper()
	status, body := cl.do(http.MethodPost, "/api/onboarding", map[string]any{"nickname": nickname, "is_public": isPublic})
	if status != http.StatusCreated {
		cl.t.Fatalf("onboarding status = %d, body %v", status, body)
	}
}

func goalsOf(t *testing.T, body map[string]any) []map[string]any {
	t.Helper()
	raw, ok := body["goals"].([]any)
	if !ok {
		t.Fatalf("response has no goals: %v", body)
	}
	goals := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		goals = append(goals, item.(map[string]any))
	}
	return goals
}
