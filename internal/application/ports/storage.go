// Package ports defines the application layer port interfaces following hexagonal architecture.
// Ports are abstractions that allow the application core to interact with external systems
// (adapters) without knowing their implementation details.
package ports

import (
	"context"

	"github.com/jbctechsolutions/playground/internal/domain/metrics"
	"github.com/jbctechsolutions/playground/internal/domain/session"
)

// SessionStore persists sessions, their messages and attached files.
type SessionStore interface {
	// CreateSession inserts a new session.
	CreateSession(ctx context.Context, s *session.Session) error

	// GetSession returns the session or an error wrapping errors.ErrSessionNotFound.
	GetSession(ctx context.Context, id string) (*session.Session, error)

	// UpdateSession saves title, parameters and system prompt.
	UpdateSession(ctx context.Context, s *session.Session) error

	// ListSessions returns the most recently updated sessions first.
	ListSessions(ctx context.Context, limit int) ([]*session.Session, error)

	// AppendExchange persists one message with its accounting.
	AppendExchange(ctx context.Context, ex *session.Exchange) error

	// ListExchanges returns a session's messages in creation order.
	ListExchanges(ctx context.Context, sessionID string) ([]*session.Exchange, error)

	// RefreshTotals recomputes and stores the session totals from all of its messages.
	RefreshTotals(ctx context.Context, sessionID string) (session.Totals, error)

	// AddFile attaches a file preview to a session.
	AddFile(ctx context.Context, f *session.UploadedFile) error

	// ListFiles returns a session's files in upload order.
	ListFiles(ctx context.Context, sessionID string) ([]*session.UploadedFile, error)
}

// AgentStore persists agent presets.
type AgentStore interface {
	CreateAgent(ctx context.Context, a *session.Agent) error
	GetAgent(ctx context.Context, id string) (*session.Agent, error)
	UpdateAgent(ctx context.Context, a *session.Agent) error
	ListActiveAgents(ctx context.Context) ([]*session.Agent, error)
}

// StatsStore computes usage statistics from cached session totals.
type StatsStore interface {
	UsageStats(ctx context.Context) (*metrics.UsageStats, error)

	// AgentUsage reports the sessions opened by an agent and their totals.
	AgentUsage(ctx context.Context, agentID string) (*metrics.AgentUsage, error)
}
