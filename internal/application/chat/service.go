// Package chat provides the application service behind the playground's
// chat sessions: settings, file previews, sending messages and statistics.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jbctechsolutions/playground/internal/application/dispatch"
	"github.com/jbctechsolutions/playground/internal/application/ports"
	"github.com/jbctechsolutions/playground/internal/domain/chat"
	"github.com/jbctechsolutions/playground/internal/domain/errors"
	"github.com/jbctechsolutions/playground/internal/domain/metrics"
	"github.com/jbctechsolutions/playground/internal/domain/session"
	"github.com/jbctechsolutions/playground/internal/infrastructure/logging"
)

// ResponsePreviewRunes bounds the file preview echoed back after an upload.
const ResponsePreviewRunes = 500

// Generator produces a reply for a dispatch request.
type Generator interface {
	GenerateResponse(ctx context.Context, req dispatch.Request) *chat.DispatchResult
}

// Service provides chat session operations on top of the dispatcher and storage.
type Service struct {
	sessions  ports.SessionStore
	stats     ports.StatsStore
	generator Generator
	logger    *logging.Logger
	defaults  chat.Parameters
}

// NewService creates a new chat service. defaultModel is used for sessions
// created without an explicit model.
func NewService(sessions ports.SessionStore, stats ports.StatsStore, generator Generator, defaultModel string, logger *logging.Logger) (*Service, error) {
	if sessions == nil {
		return nil, fmt.Errorf("session store cannot be nil")
	}
	if generator == nil {
		return nil, fmt.Errorf("generator cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &Service{
		sessions:  sessions,
		stats:     stats,
		generator: generator,
		logger:    logger,
		defaults:  chat.DefaultParameters(defaultModel),
	}, nil
}

// Settings are the user-editable fields of a session. Nil fields are left unchanged.
type Settings struct {
	Title        *string
	Model        *string
	Temperature  *float64
	TopP         *float64
	MaxTokens    *int
	Functions    *string
	WebSearch    *bool
	SystemPrompt *string
}

// CreateSession starts a new session. An empty model selects the default one.
func (s *Service) CreateSession(ctx context.Context, model string, settings Settings) (*session.Session, error) {
	if model == "" {
		model = s.defaults.Model
	}

	sess := session.New(model)
	if err := applySettings(sess, settings); err != nil {
		return nil, err
	}

	if err := s.sessions.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("could not create session: %w", err)
	}

	s.logger.InfoContext(logging.WithSessionID(ctx, sess.ID), "session created", "model", sess.Params.Model)
	return sess, nil
}

// GetSession returns a session.
func (s *Service) GetSession(ctx context.Context, id string) (*session.Session, error) {
	return s.sessions.GetSession(ctx, id)
}

// ListSessions returns the most recently used sessions.
func (s *Service) ListSessions(ctx context.Context, limit int) ([]*session.Session, error) {
	return s.sessions.ListSessions(ctx, limit)
}

// History returns a session's messages in order.
func (s *Service) History(ctx context.Context, sessionID string) ([]*session.Exchange, error) {
	if _, err := s.sessions.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.sessions.ListExchanges(ctx, sessionID)
}

// Files returns the file previews attached to a session.
func (s *Service) Files(ctx context.Context, sessionID string) ([]*session.UploadedFile, error) {
	if _, err := s.sessions.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.sessions.ListFiles(ctx, sessionID)
}

// UpdateSettings changes a session's parameters and system prompt.
func (s *Service) UpdateSettings(ctx context.Context, sessionID string, settings Settings) (*session.Session, error) {
	sess, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := applySettings(sess, settings); err != nil {
		return nil, err
	}
	sess.UpdatedAt = time.Now().UTC()

	if err := s.sessions.UpdateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("could not update session: %w", err)
	}
	return sess, nil
}

// AttachFile stores an already-extracted file preview on a session. The
// file type is detected from the name when the preview does not carry one.
// The returned file's preview is shortened for display.
func (s *Service) AttachFile(ctx context.Context, sessionID string, preview chat.FilePreview, size int64) (*session.UploadedFile, error) {
	if strings.TrimSpace(preview.Filename) == "" {
		return nil, errors.NewError(errors.CodeValidation, "filename is required", nil)
	}
	if _, err := s.sessions.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}

	if preview.Type == "" {
		preview.Type = chat.DetectFileType(preview.Filename)
	}
	preview.Content = chat.TruncatePreview(preview.Content)

	f := &session.UploadedFile{
		ID:         uuid.New().String(),
		SessionID:  sessionID,
		Preview:    preview,
		Size:       size,
		UploadedAt: time.Now().UTC(),
	}
	if err := s.sessions.AddFile(ctx, f); err != nil {
		return nil, fmt.Errorf("could not attach file: %w", err)
	}

	shown := *f
	shown.Preview.Content = shortPreview(f.Preview.Content)
	return &shown, nil
}

// MessageResult is the outcome of SendMessage.
type MessageResult struct {
	UserMessage      *session.Exchange
	AssistantMessage *session.Exchange
	Result           *chat.DispatchResult
	Totals           session.Totals
}

// SendMessage persists a user message, dispatches the conversation with the
// session's system prompt, history and file previews, persists the reply
// with its token accounting and refreshes the session totals. A provider
// failure is not an error: its text is stored as the reply.
func (s *Service) SendMessage(ctx context.Context, sessionID, text string) (*MessageResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.NewError(errors.CodeValidation, "cannot send message", errors.ErrEmptyMessage)
	}

	ctx = logging.WithSessionID(ctx, sessionID)

	sess, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	history, err := s.sessions.ListExchanges(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("could not load history: %w", err)
	}
	files, err := s.sessions.ListFiles(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("could not load files: %w", err)
	}

	userMsg := session.NewExchange(sessionID, chat.RoleUser, text)
	if err := s.sessions.AppendExchange(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("could not store message: %w", err)
	}

	if sess.Title == "" {
		sess.Title = session.TitleFromMessage(text)
		sess.UpdatedAt = userMsg.CreatedAt
		if err := s.sessions.UpdateSession(ctx, sess); err != nil {
			return nil, fmt.Errorf("could not title session: %w", err)
		}
	}

	req := dispatch.Request{
		Model:       sess.Params.Model,
		Messages:    buildMessages(sess.SystemPrompt, history, text),
		Temperature: sess.Params.Temperature,
		TopP:        sess.Params.TopP,
		MaxTokens:   sess.Params.MaxTokens,
		Files:       previews(files),
		Functions:   sess.Params.Functions,
		WebSearch:   sess.Params.WebSearch,
	}
	res := s.generator.GenerateResponse(ctx, req)

	assistantMsg := session.NewAssistantExchange(sessionID, res)
	assistantMsg.Metadata = replyMetadata(res)
	if err := s.sessions.AppendExchange(ctx, assistantMsg); err != nil {
		return nil, fmt.Errorf("could not store reply: %w", err)
	}

	totals, err := s.sessions.RefreshTotals(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("could not refresh totals: %w", err)
	}
	logging.LogTotalsRecomputed(ctx, s.logger, sessionID, totals.TotalTokens, totals.TotalEstimatedCost.String())

	return &MessageResult{
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
		Result:           res,
		Totals:           totals,
	}, nil
}

// Ask runs a single stateless dispatch without touching storage.
func (s *Service) Ask(ctx context.Context, params chat.Parameters, systemPrompt, text string, files []chat.FilePreview) (*chat.DispatchResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.NewError(errors.CodeValidation, "cannot send message", errors.ErrEmptyMessage)
	}
	if params.Model == "" {
		params.Model = s.defaults.Model
	}

	return s.generator.GenerateResponse(ctx, dispatch.Request{
		Model:       params.Model,
		Messages:    buildMessages(systemPrompt, nil, text),
		Temperature: params.Temperature,
		TopP:        params.TopP,
		MaxTokens:   params.MaxTokens,
		Files:       files,
		Functions:   params.Functions,
		WebSearch:   params.WebSearch,
	}), nil
}

// SessionStats returns the stored totals of a session.
func (s *Service) SessionStats(ctx context.Context, sessionID string) (session.Totals, error) {
	sess, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return session.Totals{}, err
	}
	return sess.Totals, nil
}

// GlobalStats returns usage across all sessions.
func (s *Service) GlobalStats(ctx context.Context) (*metrics.UsageStats, error) {
	if s.stats == nil {
		return nil, fmt.Errorf("statistics are not available")
	}
	return s.stats.UsageStats(ctx)
}

func applySettings(sess *session.Session, st Settings) error {
	p := sess.Params
	if st.Model != nil {
		p.Model = *st.Model
	}
	if st.Temperature != nil {
		p.Temperature = *st.Temperature
	}
	if st.TopP != nil {
		p.TopP = *st.TopP
	}
	if st.MaxTokens != nil {
		p.MaxTokens = *st.MaxTokens
	}
	if st.WebSearch != nil {
		p.WebSearch = *st.WebSearch
	}
	if st.Functions != nil {
		fns, err := chat.ParseFunctions(strings.TrimSpace(*st.Functions))
		if err != nil {
			return errors.NewError(errors.CodeValidation, "invalid functions", err)
		}
		p.Functions = fns
	}
	if err := p.Validate(); err != nil {
		return errors.NewError(errors.CodeValidation, "invalid settings", err)
	}

	sess.Params = p
	if st.Title != nil {
		sess.Title = strings.TrimSpace(*st.Title)
	}
	if st.SystemPrompt != nil {
		sess.SystemPrompt = *st.SystemPrompt
	}
	return nil
}

// buildMessages lays out the system prompt, the prior conversation and the
// new user text.
func buildMessages(systemPrompt string, history []*session.Exchange, text string) []chat.Message {
	msgs := make([]chat.Message, 0, len(history)+2)
	if strings.TrimSpace(systemPrompt) != "" {
		msgs = append(msgs, chat.Message{Role: chat.RoleSystem, Content: systemPrompt})
	}
	for _, ex := range history {
		msgs = append(msgs, ex.Message())
	}
	return append(msgs, chat.Message{Role: chat.RoleUser, Content: text})
}

func previews(files []*session.UploadedFile) []chat.FilePreview {
	if len(files) == 0 {
		return nil
	}
	out := make([]chat.FilePreview, len(files))
	for i, f := range files {
		out[i] = f.Preview
	}
	return out
}

type replyMeta struct {
	Provider string             `json:"provider"`
	Model    string             `json:"model"`
	Failed   bool               `json:"failed,omitempty"`
	Cost     chat.CostBreakdown `json:"cost"`
}

func replyMetadata(res *chat.DispatchResult) json.RawMessage {
	data, err := json.Marshal(replyMeta{
		Provider: res.Provider,
		Model:    res.Model,
		Failed:   res.Failed,
		Cost:     res.Cost,
	})
	if err != nil {
		return nil
	}
	return data
}

func shortPreview(content string) string {
	if utf8.RuneCountInString(content) <= ResponsePreviewRunes {
		return content
	}
	return string([]rune(content)[:ResponsePreviewRunes]) + "..."
}
