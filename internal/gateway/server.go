// Package gateway exposes the persona pipeline through OpenAI-compatible
// HTTP endpoints, so any chat UI that speaks the chat-completions protocol
// can drive it by selecting a persona as the "model".
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/RouteClaw/RouteClaw/internal/orchestrator"
	"github.com/RouteClaw/RouteClaw/internal/persona"
	"github.com/RouteClaw/RouteClaw/internal/transcript"
)

// Options configures the gateway server.
type Options struct {
	Host        string
	Port        int
	AuthToken   string // empty disables auth
	Registry    *persona.Registry
	Pipeline    *orchestrator.Orchestrator
	Transcripts *transcript.Store // optional, for /healthz counters
}

// Server serves the OpenAI-compatible chat surface.
type Server struct {
	opts      Options
	startedAt time.Time
}

// NewServer creates a gateway server.
func NewServer(opts Options) *Server {
	return &Server{opts: opts, startedAt: time.Now().UTC()}
}

// Handler returns the route table. Split from Run so tests can drive it
// through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/models", s.handleModels)
	mux.HandleFunc("/v1/models", s.auth(s.handleModels))
	mux.HandleFunc("/v1/chat/completions", s.auth(s.handleChatCompletions))
	return mux
}

// Run blocks serving HTTP until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("gateway listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("gateway server: %w", err)
		}
		return nil
	}
}

// auth enforces the bearer token on /v1 routes when one is configured.
func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	if s.opts.AuthToken == "" {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header != "Bearer "+s.opts.AuthToken {
			writeError(w, http.StatusUnauthorized, "invalid or missing API key", "invalid_request_error", "invalid_api_key")
			return
		}
		next(w, r)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{
		"ok":         true,
		"started_at": s.startedAt.Format(time.RFC3339),
	}
	if s.opts.Transcripts != nil {
		if counters, err := s.opts.Transcripts.Count(); err == nil {
			body["handled"] = counters.Handled
			body["failed"] = counters.Failed
			body["total_tokens"] = counters.TotalTokens
		}
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "invalid_request_error", "method_not_allowed")
		return
	}

	created := s.startedAt.Unix()
	data := []modelEntry{{
		ID:          persona.Auto,
		Name:        "Auto Router",
		Object:      "model",
		Created:     created,
		OwnedBy:     "routeclaw",
		Description: "Classifies each message and routes it to the best persona.",
	}}
	for _, p := range s.opts.Registry.List() {
		data = append(data, modelEntry{
			ID:          p.ID,
			Name:        p.DisplayName,
			Object:      "model",
			Created:     created,
			OwnedBy:     "routeclaw",
			Description: p.Goal,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"object": "list", "data": data})
}

func (s *Server) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "invalid_request_error", "method_not_allowed")
		return
	}

	var req chatCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err), "invalid_request_error", "invalid_body")
		return
	}

	message := lastUserMessage(req.Messages)
	if message == "" {
		writeError(w, http.StatusBadRequest, "no user message in request", "invalid_request_error", "empty_message")
		return
	}

	// Explicit non-auto personas must exist; "auto" and empty go to the router.
	model := strings.TrimSpace(req.Model)
	if model != "" && model != persona.Auto && !s.opts.Registry.Has(model) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown persona %q", model), "invalid_request_error", "model_not_found")
		return
	}

	reply := s.opts.Pipeline.HandleMessage(r.Context(), orchestrator.Request{
		Message:    message,
		Persona:    model,
		SessionKey: sessionKey(r, req.User),
		User:       userInfo(r, req.User),
	})

	// Compatibility choice: internal failures still produce a well-formed
	// chat.completion body with HTTP 200, carrying an error object, because
	// several chat UIs drop 5xx bodies on the floor.
	if reply.Failed {
		writeJSON(w, http.StatusOK, map[string]any{
			"error": map[string]any{
				"message": reply.Content,
				"type":    "server_error",
				"code":    "engine_execution_failed",
			},
		})
		return
	}

	resp := chatCompletionResponse{
		ID:      "chatcmpl-" + uuid.NewString(),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   reply.Persona,
		Choices: []chatChoice{{
			Index:        0,
			Message:      chatMessage{Role: "assistant", Content: reply.Content},
			FinishReason: "stop",
		}},
		Usage: chatUsage{
			PromptTokens:     reply.Usage.PromptTokens,
			CompletionTokens: reply.Usage.CompletionTokens,
			TotalTokens:      reply.Usage.TotalTokens,
		},
	}
	writeJSON(w, http.StatusOK, resp)
}

// lastUserMessage extracts the newest user-role message.
func lastUserMessage(messages []chatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return strings.TrimSpace(messages[i].Content)
		}
	}
	return ""
}

// sessionKey derives a stable session identity from the request. Explicit
// header wins, then the OpenAI "user" field, then a shared default.
func sessionKey(r *http.Request, user string) string {
	if key := strings.TrimSpace(r.Header.Get("X-Session-Key")); key != "" {
		return "web:" + key
	}
	if user = strings.TrimSpace(user); user != "" {
		return "user:" + user
	}
	return "web:default"
}

func userInfo(r *http.Request, user string) *orchestrator.UserInfo {
	name := strings.TrimSpace(r.Header.Get("X-User-Name"))
	if user = strings.TrimSpace(user); user == "" && name == "" {
		return nil
	}
	return &orchestrator.UserInfo{
		ID:              user,
		DisplayName:     name,
		Email:           strings.TrimSpace(r.Header.Get("X-User-Email")),
		IsAuthenticated: user != "",
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message, errType, code string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": message,
			"type":    errType,
			"code":    code,
		},
	})
}
