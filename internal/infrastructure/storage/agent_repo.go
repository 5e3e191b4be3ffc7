package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jbctechsolutions/playground/internal/application/ports"
	domainErrors "github.com/jbctechsolutions/playground/internal/domain/errors"
	"github.com/jbctechsolutions/playground/internal/domain/session"
)

// Compile-time check that AgentRepository implements AgentStore.
var _ ports.AgentStore = (*AgentRepository)(nil)

// AgentRepository implements ports.AgentStore using SQLite.
type AgentRepository struct {
	db *sql.DB
}

// NewAgentRepository creates a new agent repository.
func NewAgentRepository(db *sql.DB) *AgentRepository {
	return &AgentRepository{db: db}
}

const agentColumns = `id, name, description, model, temperature, top_p, max_tokens, functions, web_search,
	system_prompt, is_active, current_session_id, created_at, updated_at`

// CreateAgent persists a new agent.
func (r *AgentRepository) CreateAgent(ctx context.Context, a *session.Agent) error {
	if a.ID == "" {
		return domainErrors.NewError(domainErrors.CodeValidation, "agent ID is required", nil)
	}

	functions, err := marshalFunctions(a.Params.Functions)
	if err != nil {
		return err
	}

	query := `INSERT INTO agents (` + agentColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		a.ID,
		a.Name,
		a.Description,
		a.Params.Model,
		a.Params.Temperature,
		a.Params.TopP,
		a.Params.MaxTokens,
		functions,
		a.Params.WebSearch,
		a.SystemPrompt,
		a.Active,
		nullableString(a.CurrentSessionID),
		formatTime(a.CreatedAt),
		formatTime(a.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create agent: %w", err)
	}

	return nil
}

// GetAgent retrieves an agent by ID, including inactive ones.
func (r *AgentRepository) GetAgent(ctx context.Context, id string) (*session.Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agents WHERE id = ?`

	a, err := scanAgent(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, domainErrors.NewError(domainErrors.CodeNotFound, fmt.Sprintf("agent %s", id), domainErrors.ErrAgentNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}

	return a, nil
}

// UpdateAgent saves every mutable field of an agent. Deleting an agent is
// an update with Active set to false.
func (r *AgentRepository) UpdateAgent(ctx context.Context, a *session.Agent) error {
	functions, err := marshalFunctions(a.Params.Functions)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE agents
		SET name = ?, description = ?, model = ?, temperature = ?, top_p = ?, max_tokens = ?, functions = ?,
			web_search = ?, system_prompt = ?, is_active = ?, current_session_id = ?, updated_at = ?
		WHERE id = ?
	`,
		a.Name,
		a.Description,
		a.Params.Model,
		a.Params.Temperature,
		a.Params.TopP,
		a.Params.MaxTokens,
		functions,
		a.Params.WebSearch,
		a.SystemPrompt,
		a.Active,
		nullableString(a.CurrentSessionID),
		formatTime(a.UpdatedAt),
		a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update agent: %w", err)
	}

	return requireRow(result, a.ID, domainErrors.ErrAgentNotFound)
}

// ListActiveAgents returns active agents, most recently updated first.
func (r *AgentRepository) ListActiveAgents(ctx context.Context) ([]*session.Agent, error) {
	query := `SELECT ` + agentColumns + ` FROM agents WHERE is_active = 1 ORDER BY updated_at DESC, rowid DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list agents: %w", err)
	}
	defer rows.Close()

	var agents []*session.Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan agent: %w", err)
		}
		agents = append(agents, a)
	}

	return agents, rows.Err()
}

func scanAgent(row rowScanner) (*session.Agent, error) {
	var (
		a              session.Agent
		functions      string
		currentSession sql.NullString
		createdAt      string
		updatedAt      string
	)

	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Description,
		&a.Params.Model,
		&a.Params.Temperature,
		&a.Params.TopP,
		&a.Params.MaxTokens,
		&functions,
		&a.Params.WebSearch,
		&a.SystemPrompt,
		&a.Active,
		&currentSession,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.CurrentSessionID = currentSession.String
	if a.Params.Functions, err = unmarshalFunctions(functions); err != nil {
		return nil, err
	}
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if a.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	return &a, nil
}
