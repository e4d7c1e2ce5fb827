// Package orchestrator wires routing, guidance composition, task construction
// and engine execution into the single HandleMessage pipeline behind the chat
// surface. The pipeline is the chat-facing error boundary: whatever fails
// underneath, HandleMessage returns a usable reply string.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/RouteClaw/RouteClaw/internal/engine"
	"github.com/RouteClaw/RouteClaw/internal/guidance"
	"github.com/RouteClaw/RouteClaw/internal/persona"
	"github.com/RouteClaw/RouteClaw/internal/provider"
	"github.com/RouteClaw/RouteClaw/internal/router"
	"github.com/RouteClaw/RouteClaw/internal/session"
	"github.com/RouteClaw/RouteClaw/internal/transcript"
)

// UserInfo identifies the calling user, as supplied by the chat gateway.
// Read-only from the pipeline's perspective.
type UserInfo struct {
	ID              string
	DisplayName     string
	Email           string
	Role            string
	IsAuthenticated bool
}

// Request is one inbound chat message.
type Request struct {
	Message    string
	Persona    string // persona id or "auto"
	SessionKey string
	User       *UserInfo
}

// Reply is the pipeline's answer.
type Reply struct {
	Content  string
	Persona  string
	Decision router.Decision
	Usage    provider.Usage
	Failed   bool
}

// Options configures an Orchestrator.
type Options struct {
	Registry     *persona.Registry
	Router       *router.Router
	Runner       engine.Runner
	Sessions     *session.Manager
	Transcripts  *transcript.Store // optional
	HistoryTurns int               // turns included in the task description
	Debug        bool              // append routing metadata to replies
}

// Orchestrator is safe for concurrent use; per-session ordering is enforced
// by the session turn lock.
type Orchestrator struct {
	registry     *persona.Registry
	router       *router.Router
	runner       engine.Runner
	sessions     *session.Manager
	transcripts  *transcript.Store
	historyTurns int
	debug        bool
}

// New creates an Orchestrator.
func New(opts Options) *Orchestrator {
	if opts.HistoryTurns <= 0 {
		opts.HistoryTurns = 12
	}
	return &Orchestrator{
		registry:     opts.Registry,
		router:       opts.Router,
		runner:       opts.Runner,
		sessions:     opts.Sessions,
		transcripts:  opts.Transcripts,
		historyTurns: opts.HistoryTurns,
		debug:        opts.Debug,
	}
}

const apologyReply = "I'm sorry — something went wrong while handling your message. Please try again."

// HandleMessage runs the full pipeline for one message. It never returns an
// error: engine and infrastructure failures are logged and converted to an
// apologetic reply so the HTTP handler always has a string to send.
func (o *Orchestrator) HandleMessage(ctx context.Context, req Request) Reply {
	// 1. Routing
	decision := o.router.Classify(req.Message, req.Persona)

	p, err := o.registry.Get(decision.PrimaryPersona)
	if err != nil {
		// The router only emits registered personas; reaching this means the
		// configured default is missing. Degrade, don't crash.
		slog.Error("routed persona not in registry", "persona", decision.PrimaryPersona, "error", err)
		return Reply{Content: apologyReply, Persona: decision.PrimaryPersona, Decision: decision, Failed: true}
	}

	// 2. Guidance
	guide := guidance.Compose(decision.MatchedCategories, p)

	// 3. Task construction
	sess := o.sessions.GetOrCreate(req.SessionKey)
	sess.BeginTurn()
	defer sess.EndTurn()

	task := o.buildTask(req, p, sess.History(o.historyTurns), guide)

	toolReg, err := o.registry.ToolRegistry(p.ID)
	if err != nil {
		toolReg = nil
	}

	// 4. Execution — the single blocking operation in the pipeline.
	result, err := o.runner.Run(ctx, engine.RunInput{
		Persona: p,
		Task:    task,
		Tools:   toolReg,
	})
	if err != nil {
		slog.Error("engine execution failed",
			"persona", p.ID,
			"categories", decision.MatchedCategories,
			"confidence", decision.Confidence,
			"task_preview", preview(task, 200),
			"error", err)
		reply := Reply{Content: apologyReply, Persona: p.ID, Decision: decision, Failed: true}
		o.record(req, reply)
		return reply
	}

	// 5. Post-processing
	content := result.Content
	if strings.TrimSpace(content) == "" {
		content = apologyReply
	}
	if o.debug {
		content += fmt.Sprintf("\n\n---\npersona: %s | categories: %s | confidence: %.2f",
			p.ID, strings.Join(decision.MatchedCategories, ","), decision.Confidence)
	}

	// 6. History update
	sess.AddMessage("user", req.Message)
	sess.AddMessage("assistant", content)
	if err := o.sessions.Save(sess); err != nil {
		slog.Warn("session save failed", "session", req.SessionKey, "error", err)
	}

	reply := Reply{Content: content, Persona: p.ID, Decision: decision, Usage: result.Usage}
	o.record(req, reply)
	return reply
}

// buildTask concatenates the persona identity block, user context, trimmed
// history, the raw message and the guidance block.
func (o *Orchestrator) buildTask(req Request, p persona.Persona, history []session.Message, guide string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "## Persona\nActing as %s (%s).\n\n", p.DisplayName, p.ID)

	if req.User != nil && req.User.IsAuthenticated {
		sb.WriteString("## User\n")
		fmt.Fprintf(&sb, "Name: %s (id: %s)\n", req.User.DisplayName, req.User.ID)
		if req.User.Email != "" {
			fmt.Fprintf(&sb, "Email: %s\n", req.User.Email)
		}
		if req.User.Role != "" {
			fmt.Fprintf(&sb, "Role: %s\n", req.User.Role)
		}
		sb.WriteString("\n")
	}

	if len(history) > 0 {
		sb.WriteString("## Conversation so far\n")
		for _, msg := range history {
			fmt.Fprintf(&sb, "%s: %s\n", msg.Role, msg.Content)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "## Message\n%s\n\n", req.Message)
	sb.WriteString(guide)

	return sb.String()
}

func (o *Orchestrator) record(req Request, reply Reply) {
	if o.transcripts == nil {
		return
	}
	status := "ok"
	if reply.Failed {
		status = "error"
	}
	err := o.transcripts.Record(transcript.Entry{
		SessionKey:       req.SessionKey,
		Persona:          reply.Persona,
		Categories:       reply.Decision.MatchedCategories,
		Confidence:       reply.Decision.Confidence,
		UserText:         req.Message,
		ReplyText:        reply.Content,
		PromptTokens:     reply.Usage.PromptTokens,
		CompletionTokens: reply.Usage.CompletionTokens,
		TotalTokens:      reply.Usage.TotalTokens,
		Status:           status,
	})
	if err != nil {
		slog.Warn("transcript record failed", "session", req.SessionKey, "error", err)
	}
}

func preview(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
