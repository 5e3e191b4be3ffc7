package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jbctechsolutions/playground/internal/application/agent"
	appChat "github.com/jbctechsolutions/playground/internal/application/chat"
	"github.com/jbctechsolutions/playground/internal/application/dispatch"
	appProvider "github.com/jbctechsolutions/playground/internal/application/provider"
	"github.com/jbctechsolutions/playground/internal/domain/chat"
	domainProvider "github.com/jbctechsolutions/playground/internal/domain/provider"
	"github.com/jbctechsolutions/playground/internal/infrastructure/logging"
	"github.com/jbctechsolutions/playground/internal/infrastructure/storage"
)

// echoGenerator replies with the last user message.
type echoGenerator struct{}

func (echoGenerator) GenerateResponse(_ context.Context, req dispatch.Request) *chat.DispatchResult {
	text := "echo: " + req.Messages[len(req.Messages)-1].Content
	return &chat.DispatchResult{
		ReplyText:    text,
		InputTokens:  10,
		OutputTokens: 4,
		TotalTokens:  14,
		Cost:         chat.CostBreakdown{TotalCost: 0.00042},
		Model:        req.Model,
		Provider:     "yandexgpt",
	}
}

type staticProviders []appProvider.ProviderStatus

func (p staticProviders) AllStatus() []appProvider.ProviderStatus { return p }

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	conn, err := storage.NewConnection(storage.MemoryPath)
	if err != nil {
		t.Fatalf("NewConnection() error = %v", err)
	}
	if err := conn.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	db, _ := conn.DB()

	sessions := storage.NewSessionRepository(db)
	chatService, err := appChat.NewService(sessions, storage.NewStatsRepository(db), echoGenerator{}, "yandexgpt", logging.Discard())
	if err != nil {
		t.Fatalf("chat.NewService() error = %v", err)
	}
	agentService, err := agent.NewService(storage.NewAgentRepository(db), sessions, storage.NewStatsRepository(db), "yandexgpt", logging.Discard())
	if err != nil {
		t.Fatalf("agent.NewService() error = %v", err)
	}

	srv := &Server{
		Chat:      chatService,
		Agents:    agentService,
		Catalog:   domainProvider.DefaultCatalog(),
		Providers: staticProviders{{Name: "yandexgpt", Configured: true}},
		Logger:    logging.Discard(),
	}
	return srv.Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) (int, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("%s %s: invalid json %q: %v", method, path, rec.Body.String(), err)
	}
	return rec.Code, out
}

func field(t *testing.T, m map[string]any, keys ...string) any {
	t.Helper()
	var cur any = m
	for _, k := range keys {
		obj, ok := cur.(map[string]any)
		if !ok {
			t.Fatalf("%v is not an object at %q", cur, k)
		}
		cur = obj[k]
	}
	return cur
}

func TestHealth(t *testing.T) {
	h := newTestServer(t)

	code, body := do(t, h, http.MethodGet, "/health", "")
	if code != http.StatusOK || body["ok"] != true {
		t.Errorf("GET /health = %d %v", code, body)
	}
}

func TestRequestID(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "req-42" {
		t.Errorf("X-Request-ID = %q, want req-42", got)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected a generated X-Request-ID")
	}
}

func TestModels(t *testing.T) {
	h := newTestServer(t)

	code, body := do(t, h, http.MethodGet, "/api/models", "")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	giga, ok := field(t, body, "models", "gigachat").([]any)
	if !ok || len(giga) != 2 {
		t.Errorf("gigachat models = %v", field(t, body, "models", "gigachat"))
	}
	providers := body["providers"].([]any)
	if len(providers) != 1 {
		t.Errorf("providers = %v", providers)
	}
}

func TestSessionFlow(t *testing.T) {
	h := newTestServer(t)

	code, body := do(t, h, http.MethodPost, "/api/sessions", `{"system_prompt":"Be brief.","functions":[{"name":"weather"}]}`)
	if code != http.StatusCreated {
		t.Fatalf("create = %d %v", code, body)
	}
	id := field(t, body, "session", "id").(string)
	if field(t, body, "session", "model") != "yandexgpt" {
		t.Errorf("model = %v", field(t, body, "session", "model"))
	}
	if fns := field(t, body, "session", "functions").([]any); len(fns) != 1 {
		t.Errorf("functions = %v", fns)
	}

	code, body = do(t, h, http.MethodPost, "/api/sessions/"+id+"/settings", `{"temperature":0.2,"functions":"[]"}`)
	if code != http.StatusOK {
		t.Fatalf("settings = %d %v", code, body)
	}
	if field(t, body, "session", "temperature") != 0.2 {
		t.Errorf("temperature = %v", field(t, body, "session", "temperature"))
	}

	code, body = do(t, h, http.MethodPost, "/api/sessions/"+id+"/files", `{"filename":"notes.txt","content":"hello"}`)
	if code != http.StatusCreated {
		t.Fatalf("file = %d %v", code, body)
	}
	if field(t, body, "file", "file_type") != "text" || field(t, body, "file", "file_size") != float64(5) {
		t.Errorf("file = %v", body["file"])
	}

	code, body = do(t, h, http.MethodPost, "/api/sessions/"+id+"/messages", `{"message":"Hi"}`)
	if code != http.StatusOK {
		t.Fatalf("message = %d %v", code, body)
	}
	if field(t, body, "assistant_message", "content") != "echo: Hi" {
		t.Errorf("reply = %v", field(t, body, "assistant_message", "content"))
	}
	if field(t, body, "assistant_message", "token_stats", "total_tokens") != float64(14) {
		t.Errorf("token stats = %v", field(t, body, "assistant_message", "token_stats"))
	}
	if field(t, body, "session_stats", "message_count") != float64(2) {
		t.Errorf("session stats = %v", body["session_stats"])
	}

	code, body = do(t, h, http.MethodGet, "/api/sessions/"+id, "")
	if code != http.StatusOK {
		t.Fatalf("get = %d %v", code, body)
	}
	if msgs := body["messages"].([]any); len(msgs) != 2 {
		t.Errorf("messages = %v", msgs)
	}
	if files := body["files"].([]any); len(files) != 1 {
		t.Errorf("files = %v", files)
	}
	if field(t, body, "session", "title") != "Hi" {
		t.Errorf("title = %v", field(t, body, "session", "title"))
	}

	code, body = do(t, h, http.MethodGet, "/api/sessions/"+id+"/stats", "")
	if code != http.StatusOK || field(t, body, "stats", "total_tokens") != float64(14) {
		t.Errorf("stats = %d %v", code, body)
	}

	code, body = do(t, h, http.MethodGet, "/api/sessions?limit=10", "")
	if code != http.StatusOK || len(body["sessions"].([]any)) != 1 {
		t.Errorf("list = %d %v", code, body)
	}

	code, body = do(t, h, http.MethodGet, "/api/stats", "")
	if code != http.StatusOK || field(t, body, "overview", "total_sessions") != float64(1) {
		t.Errorf("global stats = %d %v", code, body)
	}
}

func TestSessionErrors(t *testing.T) {
	h := newTestServer(t)
	_, created := do(t, h, http.MethodPost, "/api/sessions", "")
	id := field(t, created, "session", "id").(string)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		substr string
	}{
		{"unknown session", http.MethodGet, "/api/sessions/missing", "", http.StatusNotFound, "session not found"},
		{"empty message", http.MethodPost, "/api/sessions/" + id + "/messages", `{"message":"  "}`, http.StatusBadRequest, "message text required"},
		{"invalid json", http.MethodPost, "/api/sessions/" + id + "/messages", `{`, http.StatusBadRequest, "invalid json"},
		{"negative temperature", http.MethodPost, "/api/sessions/" + id + "/settings", `{"temperature":-1}`, http.StatusBadRequest, "temperature"},
		{"bad functions", http.MethodPost, "/api/sessions/" + id + "/settings", `{"functions":"{}"}`, http.StatusBadRequest, "functions"},
		{"file without name", http.MethodPost, "/api/sessions/" + id + "/files", `{"content":"x"}`, http.StatusBadRequest, "filename"},
		{"message to unknown session", http.MethodPost, "/api/sessions/missing/messages", `{"message":"hi"}`, http.StatusNotFound, "session not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := do(t, h, tt.method, tt.path, tt.body)
			if code != tt.status {
				t.Errorf("status = %d, want %d (%v)", code, tt.status, body)
			}
			if body["ok"] != false {
				t.Errorf("ok = %v", body["ok"])
			}
			if msg, _ := body["error"].(string); !strings.Contains(msg, tt.substr) {
				t.Errorf("error = %q, want substring %q", msg, tt.substr)
			}
		})
	}
}

func TestAgentFlow(t *testing.T) {
	h := newTestServer(t)

	code, body := do(t, h, http.MethodPost, "/api/agents", `{"name":"Translator","system_prompt":"Translate."}`)
	if code != http.StatusCreated {
		t.Fatalf("create = %d %v", code, body)
	}
	id := field(t, body, "agent", "id").(string)

	code, body = do(t, h, http.MethodGet, "/api/agents/"+id, "")
	if code != http.StatusOK {
		t.Fatalf("get = %d %v", code, body)
	}
	sessionID := field(t, body, "session", "id").(string)
	if field(t, body, "session", "title") != "Session Translator" {
		t.Errorf("session title = %v", field(t, body, "session", "title"))
	}

	code, body = do(t, h, http.MethodPost, "/api/agents/"+id, `{"description":"EN"}`)
	if code != http.StatusOK || field(t, body, "agent", "description") != "EN" {
		t.Errorf("update = %d %v", code, body)
	}

	code, body = do(t, h, http.MethodPost, "/api/sessions/"+sessionID+"/messages", `{"message":"Bonjour"}`)
	if code != http.StatusOK {
		t.Fatalf("send = %d %v", code, body)
	}

	code, body = do(t, h, http.MethodPost, "/api/agents/"+id+"/sessions", "")
	if code != http.StatusCreated || field(t, body, "session", "id") == sessionID {
		t.Errorf("new session = %d %v", code, body)
	}

	code, body = do(t, h, http.MethodGet, "/api/agents/"+id+"/stats", "")
	if code != http.StatusOK {
		t.Fatalf("stats = %d %v", code, body)
	}
	if field(t, body, "stats", "overview", "total_sessions") != 2.0 || field(t, body, "stats", "overview", "total_messages") != 2.0 {
		t.Errorf("stats overview = %v", field(t, body, "stats", "overview"))
	}
	if field(t, body, "stats", "overview", "total_tokens") != 14.0 || field(t, body, "stats", "overview", "total_cost") != "0.00042" {
		t.Errorf("stats totals = %v", field(t, body, "stats", "overview"))
	}
	if sessions := field(t, body, "stats", "sessions").([]any); len(sessions) != 2 {
		t.Errorf("stats sessions = %v", sessions)
	}

	code, body = do(t, h, http.MethodGet, "/api/agents", "")
	if code != http.StatusOK || len(body["agents"].([]any)) != 1 {
		t.Errorf("list = %d %v", code, body)
	}

	code, _ = do(t, h, http.MethodDelete, "/api/agents/"+id, "")
	if code != http.StatusOK {
		t.Errorf("delete = %d", code)
	}
	code, _ = do(t, h, http.MethodGet, "/api/agents/"+id, "")
	if code != http.StatusNotFound {
		t.Errorf("get deleted = %d, want 404", code)
	}
}

func TestFunctionsText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *string
	}{
		{"absent", ``, nil},
		{"null", `null`, nil},
		{"array", `[{"name":"f"}]`, ptr(`[{"name":"f"}]`)},
		{"string", `"[]"`, ptr(`[]`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := functionsText(json.RawMessage(tt.raw))
			if err != nil {
				t.Fatalf("functionsText() error = %v", err)
			}
			if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
				t.Errorf("functionsText(%s) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func ptr(s string) *string { return &s }
