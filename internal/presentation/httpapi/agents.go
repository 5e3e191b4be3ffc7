package httpapi

import (
	"net/http"

	"github.com/jbctechsolutions/playground/internal/application/agent"
)

type agentBody struct {
	Name         *string  `json:"name"`
	Description  *string  `json:"description"`
	Model        *string  `json:"model"`
	Temperature  *float64 `json:"temperature"`
	TopP         *float64 `json:"top_p"`
	MaxTokens    *int     `json:"max_tokens"`
	WebSearch    *bool    `json:"web_search"`
	SystemPrompt *string  `json:"system_prompt"`
}

func (b agentBody) spec() agent.Spec {
	return agent.Spec{
		Name:         b.Name,
		Description:  b.Description,
		Model:        b.Model,
		Temperature:  b.Temperature,
		TopP:         b.TopP,
		MaxTokens:    b.MaxTokens,
		WebSearch:    b.WebSearch,
		SystemPrompt: b.SystemPrompt,
	}
}

func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := s.Agents.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]agentView, 0, len(agents))
	for _, a := range agents {
		views = append(views, newAgentView(a))
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "agents": views})
}

func (s *Server) handleCreateAgent(w http.ResponseWriter, r *http.Request) {
	var body agentBody
	if err := readJSON(r, &body); err != nil {
		badRequest(w, err)
		return
	}

	a, err := s.Agents.Create(r.Context(), body.spec())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "agent": newAgentView(a)})
}

// handleGetAgent returns the agent with its current session, opening one
// if needed.
func (s *Server) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ctx := r.Context()

	sess, err := s.Agents.CurrentSession(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	a, err := s.Agents.Get(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	history, err := s.Chat.History(ctx, sess.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"agent":    newAgentView(a),
		"session":  newSessionView(sess),
		"messages": newMessageViews(history),
	})
}

func (s *Server) handleUpdateAgent(w http.ResponseWriter, r *http.Request) {
	var body agentBody
	if err := readJSON(r, &body); err != nil {
		badRequest(w, err)
		return
	}

	a, err := s.Agents.Update(r.Context(), r.PathValue("id"), body.spec())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "agent": newAgentView(a)})
}

func (s *Server) handleDeleteAgent(w http.ResponseWriter, r *http.Request) {
	if err := s.Agents.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleNewAgentSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Agents.NewSession(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "session": newSessionView(sess)})
}

func (s *Server) handleAgentStats(w http.ResponseWriter, r *http.Request) {
	usage, err := s.Agents.Stats(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "stats": usage})
}
