package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hoanghai1803/synopsis/internal/ai"
	"github.com/hoanghai1803/synopsis/internal/auth"
	"github.com/hoanghai1803/synopsis/internal/config"
	"github.com/hoanghai1803/synopsis/internal/storage"
	"github.com/hoanghai1803/synopsis/internal/summary"
	"github.com/hoanghai1803/synopsis/internal/themes"
)

// stubClient returns a fixed summary, or err when set.
type stubClient struct {
	text  string
	err   error
	calls atomic.Int32
}

func (c *stubClient) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	c.calls.Add(1)
	if c.err != nil {
		return "", c.err
	}
	return c.text, nil
}

// testEnv holds everything a handler under test may need.
type testEnv struct {
	store   *storage.Store
	holder  *config.Holder
	svc     *summary.Service
	themes  *themes.Store
	gateway *auth.Gateway
	client  *stubClient
}

func testConfig() config.Config {
	return config.Config{
		AI: config.AIConfig{
			Provider:       "openai",
			APIKey:         "test-key",
			Model:          "test-model",
			SystemPrompt:   "summarize briefly",
			TimeoutSeconds: 5,
		},
		Server: config.ServerConfig{Port: 4000, CORSOrigins: []string{"*"}},
		Blog: config.BlogConfig{
			ArticlePathMarker: "/archives/",
			FeedURL:           "https://blog.example.com/feed.xml",
		},
		Themes: config.ThemesConfig{Active: "light"},
		Log:    config.LogConfig{Level: "info", Format: "text"},
	}
}

// newTestStore creates an in-memory SQLite store with migrations applied. It
// registers a cleanup function to close the database when the test completes.
func newTestStore(t *testing.T) *storage.Store {
	t.Helper()

	db, err := storage.OpenDatabase(":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := storage.RunMigrations(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	return storage.NewStore(db)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := newTestStore(t)
	holder := config.NewHolder(testConfig())
	client := &stubClient{text: "A short summary."}
	svc := summary.NewService(store, holder, func(ai.ProviderConfig) (ai.Client, error) {
		return client, nil
	}, nil)

	themeStore, err := themes.Open(t.TempDir())
	if err != nil {
		t.Fatalf("opening theme store: %v", err)
	}

	return &testEnv{
		store:   store,
		holder:  holder,
		svc:     svc,
		themes:  themeStore,
		gateway: auth.NewGateway([]byte("test-secret"), time.Hour),
		client:  client,
	}
}

// seed stores a summary for id through the service.
func (e *testEnv) seed(t *testing.T, id, modified string) {
	t.Helper()
	reported, err := parseTimestamp(modified)
	if err != nil {
		t.Fatalf("parsing %q: %v", modified, err)
	}
	if _, err := e.svc.SummarizeContent(context.Background(), id, "article body", reported); err != nil {
		t.Fatalf("seeding %q: %v", id, err)
	}
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("encoding request body: %v", err)
	}
	return bytes.NewReader(data)
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response body: %v (body %q)", err, w.Body.String())
	}
	return v
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[map[string]string](t, w)["error"]
}

func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}
