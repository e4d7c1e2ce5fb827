// Package engine runs a persona against a task description. It owns the
// tool-call loop: system prompt from the persona identity, bounded rounds of
// chat-completion calls, tool results fed back as tool-role messages.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/RouteClaw/RouteClaw/internal/persona"
	"github.com/RouteClaw/RouteClaw/internal/provider"
	"github.com/RouteClaw/RouteClaw/internal/tools"
)

// Runner executes a persona task. The orchestrator treats it as the single
// blocking operation in the pipeline.
type Runner interface {
	Run(ctx context.Context, input RunInput) (*RunResult, error)
}

// RunInput is one task execution request.
type RunInput struct {
	Persona persona.Persona
	Task    string
	Tools   *tools.Registry
}

// RunResult is the engine's output for one task.
type RunResult struct {
	Content   string
	ToolCalls int
	Usage     provider.Usage
}

// Options configures a LoopRunner.
type Options struct {
	Provider      provider.LLMProvider
	Model         string
	MaxTokens     int
	Temperature   float64
	MaxIterations int
}

// LoopRunner is the default Runner implementation.
type LoopRunner struct {
	provider      provider.LLMProvider
	model         string
	maxTokens     int
	temperature   float64
	maxIterations int
}

// NewLoopRunner creates a LoopRunner.
func NewLoopRunner(opts Options) *LoopRunner {
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = 8
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 4096
	}
	return &LoopRunner{
		provider:      opts.Provider,
		model:         opts.Model,
		maxTokens:     opts.MaxTokens,
		temperature:   opts.Temperature,
		maxIterations: opts.MaxIterations,
	}
}

// Run executes the tool-call loop until the model answers in plain text or
// the iteration budget runs out.
func (r *LoopRunner) Run(ctx context.Context, input RunInput) (*RunResult, error) {
	messages := []provider.Message{
		{Role: "system", Content: systemPrompt(input.Persona)},
		{Role: "user", Content: input.Task},
	}

	var defs []provider.ToolDefinition
	if input.Tools != nil {
		for _, tool := range input.Tools.List() {
			defs = append(defs, provider.ToolDefinition{
				Type: "function",
				Function: provider.FunctionDef{
					Name:        tool.Name(),
					Description: tool.Description(),
					Parameters:  tool.Parameters(),
				},
			})
		}
	}

	result := &RunResult{}

	for i := 0; i < r.maxIterations; i++ {
		llmStart := time.Now()
		resp, err := r.provider.Chat(ctx, &provider.ChatRequest{
			Messages:    messages,
			Tools:       defs,
			Model:       r.model,
			MaxTokens:   r.maxTokens,
			Temperature: r.temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("engine chat call: %w", err)
		}
		result.Usage.Add(resp.Usage)
		slog.Debug("engine chat round",
			"persona", input.Persona.ID,
			"iteration", i,
			"tool_calls", len(resp.ToolCalls),
			"duration_ms", time.Since(llmStart).Milliseconds())

		// No tool calls means the model produced its final answer.
		if len(resp.ToolCalls) == 0 {
			result.Content = resp.Content
			return result, nil
		}

		messages = append(messages, provider.Message{
			Role:      "assistant",
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		for _, tc := range resp.ToolCalls {
			result.ToolCalls++
			toolStart := time.Now()
			out, err := input.Tools.Execute(ctx, tc.Name, tc.Arguments)
			if err != nil {
				out = fmt.Sprintf("Error: %v", err)
			}
			slog.Debug("engine tool call",
				"tool", tc.Name,
				"duration_ms", time.Since(toolStart).Milliseconds(),
				"result_len", len(out))

			messages = append(messages, provider.Message{
				Role:       "tool",
				Content:    out,
				ToolCallID: tc.ID,
			})
		}
	}

	return nil, fmt.Errorf("engine exceeded %d tool iterations for persona %s", r.maxIterations, input.Persona.ID)
}

// systemPrompt builds the persona identity block.
func systemPrompt(p persona.Persona) string {
	return fmt.Sprintf("You are %s.\n\nGoal: %s\n\nBackstory: %s\n\nCurrent time: %s",
		p.DisplayName, p.Goal, p.Backstory, time.Now().Format("2006-01-02 15:04 (Monday)"))
}
