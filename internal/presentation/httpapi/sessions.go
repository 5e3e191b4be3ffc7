package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	appChat "github.com/jbctechsolutions/playground/internal/application/chat"
	"github.com/jbctechsolutions/playground/internal/domain/chat"
)

// defaultListLimit and maxListLimit bound GET /api/sessions.
const (
	defaultListLimit = 50
	maxListLimit     = 500
)

type settingsBody struct {
	Title        *string         `json:"title"`
	Model        *string         `json:"model"`
	Temperature  *float64        `json:"temperature"`
	TopP         *float64        `json:"top_p"`
	MaxTokens    *int            `json:"max_tokens"`
	Functions    json.RawMessage `json:"functions"`
	WebSearch    *bool           `json:"web_search"`
	SystemPrompt *string         `json:"system_prompt"`
}

func (b settingsBody) settings() (appChat.Settings, error) {
	functions, err := functionsText(b.Functions)
	if err != nil {
		return appChat.Settings{}, err
	}
	return appChat.Settings{
		Title:        b.Title,
		Model:        b.Model,
		Temperature:  b.Temperature,
		TopP:         b.TopP,
		MaxTokens:    b.MaxTokens,
		Functions:    functions,
		WebSearch:    b.WebSearch,
		SystemPrompt: b.SystemPrompt,
	}, nil
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var body settingsBody
	if err := readJSON(r, &body); err != nil {
		badRequest(w, err)
		return
	}
	settings, err := body.settings()
	if err != nil {
		badRequest(w, err)
		return
	}

	model := ""
	if body.Model != nil {
		model = strings.TrimSpace(*body.Model)
		settings.Model = nil
	}

	sess, err := s.Chat.CreateSession(r.Context(), model, settings)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "session": newSessionView(sess)})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	limit := intFromQuery(r, "limit", defaultListLimit)
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	sessions, err := s.Chat.ListSessions(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "sessions": newSessionViews(sessions)})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ctx := r.Context()

	sess, err := s.Chat.GetSession(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	history, err := s.Chat.History(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	files, err := s.Chat.Files(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}

	fileViews := make([]fileView, 0, len(files))
	for _, f := range files {
		fileViews = append(fileViews, newFileView(f))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"session":  newSessionView(sess),
		"messages": newMessageViews(history),
		"files":    fileViews,
	})
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var body settingsBody
	if err := readJSON(r, &body); err != nil {
		badRequest(w, err)
		return
	}
	settings, err := body.settings()
	if err != nil {
		badRequest(w, err)
		return
	}

	sess, err := s.Chat.UpdateSettings(r.Context(), r.PathValue("id"), settings)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "session": newSessionView(sess)})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Message string `json:"message"`
	}
	if err := readJSON(r, &body); err != nil {
		badRequest(w, err)
		return
	}

	res, err := s.Chat.SendMessage(r.Context(), r.PathValue("id"), body.Message)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":                true,
		"user_message":      newMessageView(res.UserMessage),
		"assistant_message": newMessageView(res.AssistantMessage),
		"provider":          res.Result.Provider,
		"failed":            res.Result.Failed,
		"session_stats":     res.Totals,
	})
}

type fileBody struct {
	Filename    string        `json:"filename"`
	FileType    chat.FileType `json:"file_type"`
	Content     string        `json:"content"`
	ImageFormat string        `json:"image_format"`
	Width       int           `json:"width"`
	Height      int           `json:"height"`
	Size        int64         `json:"size"`
}

func (s *Server) handleAttachFile(w http.ResponseWriter, r *http.Request) {
	var body fileBody
	if err := readJSON(r, &body); err != nil {
		badRequest(w, err)
		return
	}
	if body.Size < 0 {
		badRequest(w, fmt.Errorf("size must be non-negative"))
		return
	}

	preview := chat.FilePreview{
		Filename:    body.Filename,
		Type:        body.FileType,
		Content:     body.Content,
		ImageFormat: body.ImageFormat,
		Width:       body.Width,
		Height:      body.Height,
	}
	size := body.Size
	if size == 0 {
		size = int64(len(body.Content))
	}

	f, err := s.Chat.AttachFile(r.Context(), r.PathValue("id"), preview, size)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "file": newFileView(f)})
}

func (s *Server) handleSessionStats(w http.ResponseWriter, r *http.Request) {
	totals, err := s.Chat.SessionStats(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "stats": totals})
}
