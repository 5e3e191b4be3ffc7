// Package agent manages agent presets: saved model settings plus a system
// prompt, each with its own current chat session.
package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jbctechsolutions/playground/internal/application/ports"
	"github.com/jbctechsolutions/playground/internal/domain/chat"
	"github.com/jbctechsolutions/playground/internal/domain/errors"
	"github.com/jbctechsolutions/playground/internal/domain/metrics"
	"github.com/jbctechsolutions/playground/internal/domain/session"
	"github.com/jbctechsolutions/playground/internal/infrastructure/logging"
)

// Service provides agent operations.
type Service struct {
	agents       ports.AgentStore
	sessions     ports.SessionStore
	stats        ports.StatsStore
	defaultModel string
	logger       *logging.Logger
}

// NewService creates a new agent service.
func NewService(agents ports.AgentStore, sessions ports.SessionStore, stats ports.StatsStore, defaultModel string, logger *logging.Logger) (*Service, error) {
	if agents == nil {
		return nil, fmt.Errorf("agent store cannot be nil")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session store cannot be nil")
	}
	if stats == nil {
		return nil, fmt.Errorf("stats store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &Service{
		agents:       agents,
		sessions:     sessions,
		stats:        stats,
		defaultModel: defaultModel,
		logger:       logger,
	}, nil
}

// Spec describes an agent. On update, nil fields are left unchanged.
type Spec struct {
	Name         *string
	Description  *string
	Model        *string
	Temperature  *float64
	TopP         *float64
	MaxTokens    *int
	WebSearch    *bool
	SystemPrompt *string
}

// Create saves a new active agent.
func (s *Service) Create(ctx context.Context, spec Spec) (*session.Agent, error) {
	a := session.NewAgent("", s.defaultModel)
	if err := apply(a, spec); err != nil {
		return nil, err
	}

	if err := s.agents.CreateAgent(ctx, a); err != nil {
		return nil, fmt.Errorf("could not create agent: %w", err)
	}

	s.logger.InfoContext(ctx, "agent created", "agent_id", a.ID, "model", a.Params.Model)
	return a, nil
}

// Get returns an active agent.
func (s *Service) Get(ctx context.Context, id string) (*session.Agent, error) {
	a, err := s.agents.GetAgent(ctx, id)
	if err != nil {
		return nil, err
	}
	if !a.Active {
		return nil, errors.NewError(errors.CodeNotFound, fmt.Sprintf("agent %s", id), errors.ErrAgentNotFound)
	}
	return a, nil
}

// Update changes an active agent. Sessions already opened for it keep
// their own settings.
func (s *Service) Update(ctx context.Context, id string, spec Spec) (*session.Agent, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := apply(a, spec); err != nil {
		return nil, err
	}
	a.UpdatedAt = time.Now().UTC()

	if err := s.agents.UpdateAgent(ctx, a); err != nil {
		return nil, fmt.Errorf("could not update agent: %w", err)
	}
	return a, nil
}

// Delete deactivates an agent. Its sessions and messages are kept.
func (s *Service) Delete(ctx context.Context, id string) error {
	a, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	a.Active = false
	a.UpdatedAt = time.Now().UTC()
	if err := s.agents.UpdateAgent(ctx, a); err != nil {
		return fmt.Errorf("could not delete agent: %w", err)
	}

	s.logger.InfoContext(ctx, "agent deleted", "agent_id", a.ID)
	return nil
}

// List returns the active agents.
func (s *Service) List(ctx context.Context) ([]*session.Agent, error) {
	return s.agents.ListActiveAgents(ctx)
}

// Stats returns the sessions an active agent has opened with their
// combined message, token and cost totals.
func (s *Service) Stats(ctx context.Context, id string) (*metrics.AgentUsage, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	usage, err := s.stats.AgentUsage(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not load agent stats: %w", err)
	}
	return usage, nil
}

// CurrentSession returns the agent's current session, opening a new one
// when it has none or the stored one no longer exists.
func (s *Service) CurrentSession(ctx context.Context, id string) (*session.Session, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if a.CurrentSessionID != "" {
		sess, err := s.sessions.GetSession(ctx, a.CurrentSessionID)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, errors.ErrSessionNotFound) {
			return nil, err
		}
	}

	return s.openSession(ctx, a)
}

// NewSession always opens a fresh session for the agent and makes it current.
func (s *Service) NewSession(ctx context.Context, id string) (*session.Session, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.openSession(ctx, a)
}

func (s *Service) openSession(ctx context.Context, a *session.Agent) (*session.Session, error) {
	sess := a.NewSession()
	if err := s.sessions.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("could not create agent session: %w", err)
	}

	a.CurrentSessionID = sess.ID
	a.UpdatedAt = time.Now().UTC()
	if err := s.agents.UpdateAgent(ctx, a); err != nil {
		return nil, fmt.Errorf("could not link agent session: %w", err)
	}

	s.logger.InfoContext(logging.WithSessionID(ctx, sess.ID), "agent session opened", "agent_id", a.ID)
	return sess, nil
}

func apply(a *session.Agent, spec Spec) error {
	p := a.Params
	if spec.Model != nil {
		p.Model = *spec.Model
	}
	if spec.Temperature != nil {
		p.Temperature = *spec.Temperature
	}
	if spec.TopP != nil {
		p.TopP = *spec.TopP
	}
	if spec.MaxTokens != nil {
		p.MaxTokens = *spec.MaxTokens
	}
	if spec.WebSearch != nil {
		p.WebSearch = *spec.WebSearch
	}
	if err := validate(p); err != nil {
		return err
	}
	a.Params = p

	if spec.Name != nil {
		name := strings.TrimSpace(*spec.Name)
		if name == "" {
			name = session.DefaultAgentName
		}
		a.Name = name
	}
	if spec.Description != nil {
		a.Description = *spec.Description
	}
	if spec.SystemPrompt != nil {
		a.SystemPrompt = *spec.SystemPrompt
	}
	return nil
}

func validate(p chat.Parameters) error {
	if err := p.Validate(); err != nil {
		return errors.NewError(errors.CodeValidation, "invalid agent settings", err)
	}
	return nil
}
