package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/RouteClaw/RouteClaw/internal/engine"
	"github.com/RouteClaw/RouteClaw/internal/orchestrator"
	"github.com/RouteClaw/RouteClaw/internal/persona"
	"github.com/RouteClaw/RouteClaw/internal/provider"
	"github.com/RouteClaw/RouteClaw/internal/router"
	"github.com/RouteClaw/RouteClaw/internal/session"
)

type stubRunner struct {
	content string
	err     error
}

func (r *stubRunner) Run(_ context.Context, _ engine.RunInput) (*engine.RunResult, error) {
	if r.err != nil {
		return nil, r.err
	}
	return &engine.RunResult{
		Content: r.content,
		Usage:   provider.Usage{PromptTokens: 3, CompletionTokens: 4, TotalTokens: 7},
	}, nil
}

func newTestServer(t *testing.T, runner engine.Runner, authToken string) *httptest.Server {
	t.Helper()
	reg, err := persona.NewRegistry(persona.Builtins(), nil)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	pipeline := orchestrator.New(orchestrator.Options{
		Registry: reg,
		Router:   router.New(router.Options{KnownPersona: reg.Has}),
		Runner:   runner,
		Sessions: session.NewManager("", 40, false),
	})
	srv := NewServer(Options{
		AuthToken: authToken,
		Registry:  reg,
		Pipeline:  pipeline,
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postCompletion(t *testing.T, url string, body map[string]any, headers map[string]string) (*http.Response, map[string]any) {
	t.Helper()
	raw, _ := json.Marshal(body)
	req, err := http.NewRequest(http.MethodPost, url+"/v1/chat/completions", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp, decoded
}

func TestChatCompletionSuccess(t *testing.T) {
	ts := newTestServer(t, &stubRunner{content: "Hello from the assistant."}, "")

	resp, body := postCompletion(t, ts.URL, map[string]any{
		"model":    "auto",
		"messages": []map[string]string{{"role": "user", "content": "hello there"}},
	}, nil)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body["object"] != "chat.completion" {
		t.Errorf("expected chat.completion object, got %v", body["object"])
	}
	if id, _ := body["id"].(string); !strings.HasPrefix(id, "chatcmpl-") {
		t.Errorf("expected chatcmpl- id, got %v", body["id"])
	}
	choices := body["choices"].([]any)
	msg := choices[0].(map[string]any)["message"].(map[string]any)
	if msg["content"] != "Hello from the assistant." {
		t.Errorf("unexpected content %v", msg["content"])
	}
	usage := body["usage"].(map[string]any)
	if usage["total_tokens"].(float64) != 7 {
		t.Errorf("unexpected usage %v", usage)
	}
}

func TestChatCompletionUnknownModel(t *testing.T) {
	ts := newTestServer(t, &stubRunner{content: "x"}, "")

	resp, body := postCompletion(t, ts.URL, map[string]any{
		"model":    "nonexistent_persona",
		"messages": []map[string]string{{"role": "user", "content": "hi"}},
	}, nil)

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	errObj := body["error"].(map[string]any)
	if errObj["code"] != "model_not_found" {
		t.Errorf("expected model_not_found, got %v", errObj["code"])
	}
}

func TestChatCompletionEngineFailureEnvelope(t *testing.T) {
	ts := newTestServer(t, &stubRunner{err: errors.New("boom")}, "")

	resp, body := postCompletion(t, ts.URL, map[string]any{
		"model":    "auto",
		"messages": []map[string]string{{"role": "user", "content": "hi"}},
	}, nil)

	// Failures ride an HTTP 200 so chat UIs render the error body.
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with error envelope, got %d", resp.StatusCode)
	}
	errObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object, got %v", body)
	}
	if errObj["code"] != "engine_execution_failed" {
		t.Errorf("unexpected code %v", errObj["code"])
	}
	if errObj["message"] == "" {
		t.Error("expected non-empty error message")
	}
}

func TestChatCompletionNoUserMessage(t *testing.T) {
	ts := newTestServer(t, &stubRunner{content: "x"}, "")

	resp, _ := postCompletion(t, ts.URL, map[string]any{
		"model":    "auto",
		"messages": []map[string]string{{"role": "system", "content": "be nice"}},
	}, nil)

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestModelsListsAutoFirst(t *testing.T) {
	ts := newTestServer(t, &stubRunner{content: "x"}, "")

	resp, err := http.Get(ts.URL + "/v1/models")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Data []struct {
			ID      string `json:"id"`
			OwnedBy string `json:"owned_by"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data) != 6 {
		t.Fatalf("expected auto + 5 personas, got %d", len(body.Data))
	}
	if body.Data[0].ID != "auto" {
		t.Errorf("expected auto first, got %q", body.Data[0].ID)
	}
	if body.Data[1].ID != "personal_assistant" {
		t.Errorf("expected personal_assistant second, got %q", body.Data[1].ID)
	}
	if body.Data[0].OwnedBy != "routeclaw" {
		t.Errorf("unexpected owned_by %q", body.Data[0].OwnedBy)
	}
}

func TestBearerAuth(t *testing.T) {
	ts := newTestServer(t, &stubRunner{content: "secret"}, "token-123")

	// /v1 without token is rejected.
	resp, err := http.Get(ts.URL + "/v1/models")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}

	// With the right bearer token it succeeds.
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/v1/models", nil)
	req.Header.Set("Authorization", "Bearer token-123")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 with token, got %d", resp.StatusCode)
	}

	// The unversioned /models alias stays open for UI discovery.
	resp, err = http.Get(ts.URL + "/models")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected open /models, got %d", resp.StatusCode)
	}

	// Health endpoint is never behind auth.
	resp, err = http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected open /healthz, got %d", resp.StatusCode)
	}
}

func TestSessionKeyDerivation(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", nil)
	req.Header.Set("X-Session-Key", "abc")
	if got := sessionKey(req, "user1"); got != "web:abc" {
		t.Errorf("header must win, got %q", got)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/chat/completions", nil)
	if got := sessionKey(req, "user1"); got != "user:user1" {
		t.Errorf("expected user-derived key, got %q", got)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/chat/completions", nil)
	if got := sessionKey(req, ""); got != "web:default" {
		t.Errorf("expected default key, got %q", got)
	}
}

func TestLastUserMessage(t *testing.T) {
	msgs := []chatMessage{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "first"},
		{Role: "assistant", Content: "ok"},
		{Role: "user", Content: "  second  "},
	}
	if got := lastUserMessage(msgs); got != "second" {
		t.Errorf("expected trimmed newest user message, got %q", got)
	}
	if got := lastUserMessage(nil); got != "" {
		t.Errorf("expected empty for no messages, got %q", got)
	}
}
