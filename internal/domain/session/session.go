// Package session defines the persisted conversation model and its token accounting.
package session

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jbctechsolutions/playground/internal/domain/chat"
)

// CostPlaces is the number of decimal places kept for persisted costs.
const CostPlaces = 6

// Session is a persisted conversation with its generation settings and
// cached token totals.
type Session struct {
	ID           string
	Title        string
	Params       chat.Parameters
	SystemPrompt string
	// AgentID is set for sessions opened by an agent.
	AgentID      string
	Totals       Totals
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// New creates a session with default parameters for model.
func New(model string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.New().String(),
		Params:    chat.DefaultParameters(model),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Exchange is one persisted message with the accounting recorded for it.
// User messages carry zero tokens; the assistant message of a turn carries
// the whole turn's input and output tokens.
type Exchange struct {
	ID            string
	SessionID     string
	Role          chat.MessageRole
	Content       string
	InputTokens   int
	OutputTokens  int
	TotalTokens   int
	EstimatedCost decimal.Decimal
	Metadata      json.RawMessage
	CreatedAt     time.Time
}

// NewExchange creates an exchange without accounting.
func NewExchange(sessionID string, role chat.MessageRole, content string) *Exchange {
	return &Exchange{
		ID:            uuid.New().String(),
		SessionID:     sessionID,
		Role:          role,
		Content:       content,
		EstimatedCost: decimal.Zero,
		CreatedAt:     time.Now().UTC(),
	}
}

// NewAssistantExchange records a dispatch result as an assistant message.
func NewAssistantExchange(sessionID string, res *chat.DispatchResult) *Exchange {
	ex := NewExchange(sessionID, chat.RoleAssistant, res.ReplyText)
	ex.InputTokens = res.InputTokens
	ex.OutputTokens = res.OutputTokens
	ex.TotalTokens = res.TotalTokens
	ex.EstimatedCost = RoundCost(res.Cost.TotalCost)
	return ex
}

// Message returns the provider-neutral view of the exchange.
func (e *Exchange) Message() chat.Message {
	return chat.Message{Role: e.Role, Content: e.Content}
}

// RoundCost converts a float cost to its persisted decimal form.
func RoundCost(cost float64) decimal.Decimal {
	if cost < 0 {
		cost = 0
	}
	return decimal.NewFromFloat(cost).Round(CostPlaces)
}

// UploadedFile is a file preview attached to a session.
type UploadedFile struct {
	ID         string
	SessionID  string
	Preview    chat.FilePreview
	Size       int64
	UploadedAt time.Time
}
