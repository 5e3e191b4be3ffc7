package chat

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/jbctechsolutions/playground/internal/application/dispatch"
	"github.com/jbctechsolutions/playground/internal/domain/chat"
	domainErrors "github.com/jbctechsolutions/playground/internal/domain/errors"
	"github.com/jbctechsolutions/playground/internal/infrastructure/logging"
	"github.com/jbctechsolutions/playground/internal/infrastructure/storage"
)

// fakeGenerator records requests and answers with a fixed result.
type fakeGenerator struct {
	mu       sync.Mutex
	requests []dispatch.Request
	result   chat.DispatchResult
}

func (g *fakeGenerator) GenerateResponse(_ context.Context, req dispatch.Request) *chat.DispatchResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	res := g.result
	res.Model = req.Model
	return &res
}

func (g *fakeGenerator) last(t *testing.T) dispatch.Request {
	t.Helper()
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.requests) == 0 {
		t.Fatal("generator was not called")
	}
	return g.requests[len(g.requests)-1]
}

func newTestService(t *testing.T) (*Service, *fakeGenerator) {
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

	gen := &fakeGenerator{result: chat.DispatchResult{
		ReplyText:    "Hello there",
		InputTokens:  12,
		OutputTokens: 3,
		TotalTokens:  15,
		Cost:         chat.CostBreakdown{InputCost: 0.0000121, OutputCost: 0.000018, TotalCost: 0.0000301},
		Provider:     "yandexgpt",
	}}

	svc, err := NewService(storage.NewSessionRepository(db), storage.NewStatsRepository(db), gen, "yandexgpt", logging.Discard())
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return svc, gen
}

func ptr[T any](v T) *T { return &v }

func TestNewService_Validation(t *testing.T) {
	if _, err := NewService(nil, nil, &fakeGenerator{}, "m", nil); err == nil {
		t.Error("expected error for nil session store")
	}
	svc, _ := newTestService(t)
	if _, err := NewService(svc.sessions, nil, nil, "m", nil); err == nil {
		t.Error("expected error for nil generator")
	}
}

func TestService_CreateSession(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	sess, err := svc.CreateSession(ctx, "", Settings{SystemPrompt: ptr("Be brief."), WebSearch: ptr(true)})
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if sess.Params.Model != "yandexgpt" {
		t.Errorf("Model = %q, want default", sess.Params.Model)
	}

	got, err := svc.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got.SystemPrompt != "Be brief." || !got.Params.WebSearch {
		t.Errorf("stored session = %+v", got)
	}
}

func TestService_UpdateSettings(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	sess, _ := svc.CreateSession(ctx, "GigaChat:latest", Settings{})

	updated, err := svc.UpdateSettings(ctx, sess.ID, Settings{
		Temperature: ptr(0.3),
		Functions:   ptr(`[{"name":"weather"}]`),
	})
	if err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}
	if updated.Params.Temperature != 0.3 || len(updated.Params.Functions) != 1 {
		t.Errorf("params = %+v", updated.Params)
	}

	tests := []struct {
		name     string
		settings Settings
	}{
		{"negative temperature", Settings{Temperature: ptr(-1.0)}},
		{"zero max tokens", Settings{MaxTokens: ptr(0)}},
		{"functions not an array", Settings{Functions: ptr(`{"name":"x"}`)}},
		{"empty model", Settings{Model: ptr("")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateSettings(ctx, sess.ID, tt.settings)
			if domainErrors.CodeOf(err) != domainErrors.CodeValidation {
				t.Errorf("error = %v, want validation error", err)
			}
		})
	}

	stored, _ := svc.GetSession(ctx, sess.ID)
	if stored.Params.Temperature != 0.3 {
		t.Errorf("rejected settings leaked into storage: %+v", stored.Params)
	}
}

func TestService_SendMessage(t *testing.T) {
	ctx := context.Background()
	svc, gen := newTestService(t)
	sess, _ := svc.CreateSession(ctx, "yandexgpt", Settings{SystemPrompt: ptr("You are terse.")})

	res, err := svc.SendMessage(ctx, sess.ID, "  What is Go?  ")
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}

	req := gen.last(t)
	if len(req.Messages) != 2 {
		t.Fatalf("messages = %+v", req.Messages)
	}
	if req.Messages[0].Role != chat.RoleSystem || req.Messages[0].Content != "You are terse." {
		t.Errorf("system message = %+v", req.Messages[0])
	}
	if req.Messages[1].Content != "What is Go?" {
		t.Errorf("user message = %q", req.Messages[1].Content)
	}

	if res.UserMessage.InputTokens != 0 || res.AssistantMessage.TotalTokens != 15 {
		t.Errorf("accounting: user=%+v assistant=%+v", res.UserMessage, res.AssistantMessage)
	}
	if res.Totals.TotalTokens != 15 || res.Totals.MessageCount != 2 {
		t.Errorf("totals = %+v", res.Totals)
	}
	if res.Totals.TotalEstimatedCost.String() != "0.00003" {
		t.Errorf("total cost = %s", res.Totals.TotalEstimatedCost)
	}

	var meta map[string]any
	if err := json.Unmarshal(res.AssistantMessage.Metadata, &meta); err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if meta["provider"] != "yandexgpt" || meta["model"] != "yandexgpt" {
		t.Errorf("metadata = %v", meta)
	}
	cost, ok := meta["cost"].(map[string]any)
	if !ok || cost["input_cost"] != 0.0000121 || cost["output_cost"] != 0.000018 || cost["total_cost"] != 0.0000301 {
		t.Errorf("metadata cost = %v", meta["cost"])
	}

	stored, _ := svc.GetSession(ctx, sess.ID)
	if stored.Title != "What is Go?" {
		t.Errorf("Title = %q, want derived from first message", stored.Title)
	}

	// The second turn carries the first exchange as history.
	if _, err := svc.SendMessage(ctx, sess.ID, "And Rust?"); err != nil {
		t.Fatalf("second SendMessage() error = %v", err)
	}
	req = gen.last(t)
	if len(req.Messages) != 4 || req.Messages[2].Content != "Hello there" || req.Messages[3].Content != "And Rust?" {
		t.Errorf("second request messages = %+v", req.Messages)
	}

	stats, err := svc.SessionStats(ctx, sess.ID)
	if err != nil {
		t.Fatalf("SessionStats() error = %v", err)
	}
	if stats.TotalTokens != 30 || stats.MessageCount != 4 {
		t.Errorf("session stats = %+v", stats)
	}
}

func TestService_SendMessage_Empty(t *testing.T) {
	ctx := context.Background()
	svc, gen := newTestService(t)
	sess, _ := svc.CreateSession(ctx, "", Settings{})

	_, err := svc.SendMessage(ctx, sess.ID, "   ")
	if !errors.Is(err, domainErrors.ErrEmptyMessage) {
		t.Errorf("error = %v, want ErrEmptyMessage", err)
	}
	if len(gen.requests) != 0 {
		t.Error("generator should not be called for empty text")
	}

	history, _ := svc.History(ctx, sess.ID)
	if len(history) != 0 {
		t.Errorf("history = %d messages, want none", len(history))
	}
}

func TestService_SendMessage_UnknownSession(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.SendMessage(context.Background(), "missing", "hi")
	if !errors.Is(err, domainErrors.ErrSessionNotFound) {
		t.Errorf("error = %v, want ErrSessionNotFound", err)
	}
}

func TestService_SendMessage_ProviderFailureIsStored(t *testing.T) {
	ctx := context.Background()
	svc, gen := newTestService(t)
	gen.result = chat.DispatchResult{
		ReplyText:    "Error: gigachat: [PROTOCOL] HTTP 401: unauthorized",
		InputTokens:  4,
		OutputTokens: 9,
		TotalTokens:  13,
		Provider:     "gigachat",
		Failed:       true,
	}
	sess, _ := svc.CreateSession(ctx, "GigaChat", Settings{})

	res, err := svc.SendMessage(ctx, sess.ID, "hi")
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	if !strings.HasPrefix(res.AssistantMessage.Content, "Error: gigachat:") {
		t.Errorf("reply = %q", res.AssistantMessage.Content)
	}
	if res.Totals.TotalTokens != 13 {
		t.Errorf("failed call should still be accounted, totals = %+v", res.Totals)
	}
	if !strings.Contains(string(res.AssistantMessage.Metadata), `"failed":true`) {
		t.Errorf("metadata = %s", res.AssistantMessage.Metadata)
	}
}

func TestService_AttachFile(t *testing.T) {
	ctx := context.Background()
	svc, gen := newTestService(t)
	sess, _ := svc.CreateSession(ctx, "", Settings{})

	long := strings.Repeat("a", chat.MaxPreviewRunes+100)
	f, err := svc.AttachFile(ctx, sess.ID, chat.FilePreview{Filename: "data.csv", Content: long}, 4096)
	if err != nil {
		t.Fatalf("AttachFile() error = %v", err)
	}
	if f.Preview.Type != chat.FileTypeCSV {
		t.Errorf("Type = %q, want csv", f.Preview.Type)
	}
	if got := len([]rune(f.Preview.Content)); got != ResponsePreviewRunes+3 {
		t.Errorf("response preview length = %d", got)
	}

	if _, err := svc.AttachFile(ctx, sess.ID, chat.FilePreview{Filename: "main.go", Content: "package main"}, 12); err != nil {
		t.Fatalf("AttachFile() error = %v", err)
	}

	if _, err := svc.SendMessage(ctx, sess.ID, "Explain"); err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}
	files := gen.last(t).Files
	if len(files) != 2 || files[0].Filename != "data.csv" || files[1].Type != chat.FileTypeCode {
		t.Fatalf("dispatched files = %+v", files)
	}
	// Truncated previews end with an ellipsis after MaxPreviewRunes runes.
	if got := len([]rune(files[0].Content)); got != chat.MaxPreviewRunes+3 {
		t.Errorf("stored preview length = %d, want %d", got, chat.MaxPreviewRunes+3)
	}
	if !strings.HasSuffix(files[0].Content, "...") {
		t.Errorf("stored preview should end with an ellipsis")
	}

	if _, err := svc.AttachFile(ctx, sess.ID, chat.FilePreview{}, 0); domainErrors.CodeOf(err) != domainErrors.CodeValidation {
		t.Errorf("missing filename error = %v", err)
	}
	if _, err := svc.AttachFile(ctx, "missing", chat.FilePreview{Filename: "a.txt"}, 1); !errors.Is(err, domainErrors.ErrSessionNotFound) {
		t.Errorf("unknown session error = %v", err)
	}
}

func TestService_Ask(t *testing.T) {
	svc, gen := newTestService(t)

	res, err := svc.Ask(context.Background(), chat.Parameters{Temperature: 0.5, MaxTokens: 100}, "Answer in French.", "Hello", nil)
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if res.ReplyText != "Hello there" {
		t.Errorf("ReplyText = %q", res.ReplyText)
	}
	req := gen.last(t)
	if req.Model != "yandexgpt" || len(req.Messages) != 2 {
		t.Errorf("request = %+v", req)
	}

	if _, err := svc.Ask(context.Background(), chat.Parameters{}, "", "", nil); !errors.Is(err, domainErrors.ErrEmptyMessage) {
		t.Errorf("empty Ask() error = %v", err)
	}
}

func TestService_GlobalStats(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	for _, model := range []string{"yandexgpt", "GigaChat"} {
		sess, _ := svc.CreateSession(ctx, model, Settings{})
		if _, err := svc.SendMessage(ctx, sess.ID, "hi"); err != nil {
			t.Fatalf("SendMessage() error = %v", err)
		}
	}

	stats, err := svc.GlobalStats(ctx)
	if err != nil {
		t.Fatalf("GlobalStats() error = %v", err)
	}
	if stats.Overview.TotalSessions != 2 || stats.Overview.TotalMessages != 4 || stats.Overview.TotalTokens != 30 {
		t.Errorf("overview = %+v", stats.Overview)
	}
	if len(stats.ByModel) != 2 {
		t.Errorf("by model = %+v", stats.ByModel)
	}
}
