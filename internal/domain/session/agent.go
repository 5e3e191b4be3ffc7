package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jbctechsolutions/playground/internal/domain/chat"
)

// DefaultAgentName is used when an agent is created without a name.
const DefaultAgentName = "New agent"

// Agent is a saved preset of model settings and a system prompt. Each agent
// tracks the session it is currently chatting in.
type Agent struct {
	ID               string
	Name             string
	Description      string
	Params           chat.Parameters
	SystemPrompt     string
	Active           bool
	CurrentSessionID string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewAgent creates an active agent with default parameters.
func NewAgent(name, model string) *Agent {
	if name == "" {
		name = DefaultAgentName
	}
	now := time.Now().UTC()
	return &Agent{
		ID:        uuid.New().String(),
		Name:      name,
		Params:    chat.DefaultParameters(model),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewSession creates a session carrying the agent's settings.
func (a *Agent) NewSession() *Session {
	s := New(a.Params.Model)
	s.Title = AgentSessionTitle(a.Name)
	s.Params = a.Params
	s.Params.Functions = nil
	s.SystemPrompt = a.SystemPrompt
	s.AgentID = a.ID
	return s
}

// AgentSessionTitle is the title given to sessions opened for an agent.
func AgentSessionTitle(agentName string) string {
	return fmt.Sprintf("Session %s", agentName)
}
