// Package httpapi exposes the playground over a JSON HTTP API.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jbctechsolutions/playground/internal/application/agent"
	"github.com/jbctechsolutions/playground/internal/application/chat"
	appProvider "github.com/jbctechsolutions/playground/internal/application/provider"
	domainProvider "github.com/jbctechsolutions/playground/internal/domain/provider"
	"github.com/jbctechsolutions/playground/internal/infrastructure/logging"
)

// maxBodyBytes bounds request bodies, file previews included.
const maxBodyBytes = 4 << 20

// ProviderLister reports the registered providers.
type ProviderLister interface {
	AllStatus() []appProvider.ProviderStatus
}

// Server is the HTTP transport for the chat and agent services.
type Server struct {
	Chat      *chat.Service
	Agents    *agent.Service
	Catalog   domainProvider.Catalog
	Providers ProviderLister
	Logger    *logging.Logger
}

// Handler returns the routed API with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/models", s.handleModels)
	mux.HandleFunc("GET /api/stats", s.handleGlobalStats)

	// Sessions
	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/sessions", s.handleListSessions)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("POST /api/sessions/{id}/settings", s.handleUpdateSettings)
	mux.HandleFunc("POST /api/sessions/{id}/messages", s.handleSendMessage)
	mux.HandleFunc("POST /api/sessions/{id}/files", s.handleAttachFile)
	mux.HandleFunc("GET /api/sessions/{id}/stats", s.handleSessionStats)

	// Agents
	mux.HandleFunc("GET /api/agents", s.handleListAgents)
	mux.HandleFunc("POST /api/agents", s.handleCreateAgent)
	mux.HandleFunc("GET /api/agents/{id}", s.handleGetAgent)
	mux.HandleFunc("POST /api/agents/{id}", s.handleUpdateAgent)
	mux.HandleFunc("DELETE /api/agents/{id}", s.handleDeleteAgent)
	mux.HandleFunc("POST /api/agents/{id}/sessions", s.handleNewAgentSession)
	mux.HandleFunc("GET /api/agents/{id}/stats", s.handleAgentStats)

	return s.logRequests(mux)
}

// ListenAndServe runs the API on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger().Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logger() *logging.Logger {
	if s.Logger == nil {
		return logging.Default()
	}
	return s.Logger
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestIDHeader carries the correlation ID of a request. A client-supplied
// value is kept; otherwise one is generated.
const requestIDHeader = "X-Request-ID"

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		ctx := logging.WithCorrelationID(r.Context(), id)
		w.Header().Set(requestIDHeader, logging.CorrelationID(ctx))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(ctx))
		logging.LogHTTPRequest(ctx, s.logger(), r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":   true,
		"time": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	var providers []appProvider.ProviderStatus
	if s.Providers != nil {
		providers = s.Providers.AllStatus()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"models":    s.Catalog.ByProvider(),
		"providers": providers,
	})
}

func (s *Server) handleGlobalStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.Chat.GlobalStats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":                     true,
		"overview":               stats.Overview,
		"average_cost_per_token": stats.Overview.AverageCostPerToken(),
		"by_model":               stats.ByModel,
	})
}
