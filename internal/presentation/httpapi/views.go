package httpapi

import (
	"encoding/json"
	"time"

	"github.com/jbctechsolutions/playground/internal/domain/chat"
	"github.com/jbctechsolutions/playground/internal/domain/session"
)

type sessionView struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Model        string            `json:"model"`
	Temperature  float64           `json:"temperature"`
	TopP         float64           `json:"top_p"`
	MaxTokens    int               `json:"max_tokens"`
	Functions    []json.RawMessage `json:"functions"`
	WebSearch    bool              `json:"web_search"`
	SystemPrompt string            `json:"system_prompt"`
	Stats        session.Totals    `json:"stats"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func newSessionView(s *session.Session) sessionView {
	functions := s.Params.Functions
	if functions == nil {
		functions = []json.RawMessage{}
	}
	return sessionView{
		ID:           s.ID,
		Title:        s.DisplayTitle(),
		Model:        s.Params.Model,
		Temperature:  s.Params.Temperature,
		TopP:         s.Params.TopP,
		MaxTokens:    s.Params.MaxTokens,
		Functions:    functions,
		WebSearch:    s.Params.WebSearch,
		SystemPrompt: s.SystemPrompt,
		Stats:        s.Totals,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func newSessionViews(sessions []*session.Session) []sessionView {
	out := make([]sessionView, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, newSessionView(s))
	}
	return out
}

type tokenStats struct {
	InputTokens   int    `json:"input_tokens"`
	OutputTokens  int    `json:"output_tokens"`
	TotalTokens   int    `json:"total_tokens"`
	EstimatedCost string `json:"estimated_cost"`
}

type messageView struct {
	ID         string           `json:"id"`
	Role       chat.MessageRole `json:"role"`
	Content    string           `json:"content"`
	Timestamp  time.Time        `json:"timestamp"`
	TokenStats *tokenStats      `json:"token_stats,omitempty"`
	Metadata   json.RawMessage  `json:"metadata,omitempty"`
}

func newMessageView(ex *session.Exchange) messageView {
	v := messageView{
		ID:        ex.ID,
		Role:      ex.Role,
		Content:   ex.Content,
		Timestamp: ex.CreatedAt,
		Metadata:  ex.Metadata,
	}
	if ex.Role == chat.RoleAssistant {
		v.TokenStats = &tokenStats{
			InputTokens:   ex.InputTokens,
			OutputTokens:  ex.OutputTokens,
			TotalTokens:   ex.TotalTokens,
			EstimatedCost: ex.EstimatedCost.String(),
		}
	}
	return v
}

func newMessageViews(exchanges []*session.Exchange) []messageView {
	out := make([]messageView, 0, len(exchanges))
	for _, ex := range exchanges {
		out = append(out, newMessageView(ex))
	}
	return out
}

type fileView struct {
	ID          string        `json:"id"`
	Filename    string        `json:"filename"`
	FileType    chat.FileType `json:"file_type"`
	Size        int64         `json:"file_size"`
	Preview     string        `json:"content_preview"`
	ImageFormat string        `json:"image_format,omitempty"`
	Width       int           `json:"width,omitempty"`
	Height      int           `json:"height,omitempty"`
	UploadedAt  time.Time     `json:"uploaded_at"`
}

func newFileView(f *session.UploadedFile) fileView {
	return fileView{
		ID:          f.ID,
		Filename:    f.Preview.Filename,
		FileType:    f.Preview.Type,
		Size:        f.Size,
		Preview:     f.Preview.Content,
		ImageFormat: f.Preview.ImageFormat,
		Width:       f.Preview.Width,
		Height:      f.Preview.Height,
		UploadedAt:  f.UploadedAt,
	}
}

type agentView struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Model            string    `json:"model"`
	Temperature      float64   `json:"temperature"`
	TopP             float64   `json:"top_p"`
	MaxTokens        int       `json:"max_tokens"`
	WebSearch        bool      `json:"web_search"`
	SystemPrompt     string    `json:"system_prompt"`
	CurrentSessionID string    `json:"current_session_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func newAgentView(a *session.Agent) agentView {
	return agentView{
		ID:               a.ID,
		Name:             a.Name,
		Description:      a.Description,
		Model:            a.Params.Model,
		Temperature:      a.Params.Temperature,
		TopP:             a.Params.TopP,
		MaxTokens:        a.Params.MaxTokens,
		WebSearch:        a.Params.WebSearch,
		SystemPrompt:     a.SystemPrompt,
		CurrentSessionID: a.CurrentSessionID,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}
