package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/RouteClaw/RouteClaw/internal/backend"
)

// MemorySearchTool searches the personal memory service for relevant entries.
type MemorySearchTool struct {
	client *backend.Client
}

func NewMemorySearchTool(client *backend.Client) *MemorySearchTool {
	return &MemorySearchTool{client: client}
}

func (t *MemorySearchTool) Name() string { return "memory_search" }
func (t *MemorySearchTool) Description() string {
	return "Search long-term personal memory for information relevant to a query. Returns the most relevant stored memories."
}

func (t *MemorySearchTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The search query to find relevant memories",
			},
			"limit": map[string]any{
				"type":        "integer",
				"description": "Maximum number of results (default: 5)",
			},
		},
		"required": []string{"query"},
	}
}

func (t *MemorySearchTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	query := GetString(params, "query", "")
	limit := GetInt(params, "limit", 5)

	if query == "" {
		return "Error: query is required", nil
	}

	return renderResult(t.client.MemorySearch(ctx, query, limit)), nil
}

// PeopleLookupTool looks up a person in the memory service's people index.
type PeopleLookupTool struct {
	client *backend.Client
}

func NewPeopleLookupTool(client *backend.Client) *PeopleLookupTool {
	return &PeopleLookupTool{client: client}
}

func (t *PeopleLookupTool) Name() string { return "people_lookup" }
func (t *PeopleLookupTool) Description() string {
	return "Look up a person by name in the contacts/people index of personal memory."
}

func (t *PeopleLookupTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{
				"type":        "string",
				"description": "Full or partial name of the person",
			},
		},
		"required": []string{"name"},
	}
}

func (t *PeopleLookupTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	name := GetString(params, "name", "")
	if name == "" {
		return "Error: name is required", nil
	}
	return renderResult(t.client.MemoryPeople(ctx, name)), nil
}

// renderResult flattens a backend Result into a string for the LLM.
// Failures are reported inline rather than raised, so the model can decide
// whether to retry, reformulate, or apologize.
func renderResult(res backend.Result) string {
	if !res.Success {
		return fmt.Sprintf("Tool call failed: %s", res.Error)
	}
	if len(res.Payload) == 0 {
		return "No data returned."
	}
	data, err := json.MarshalIndent(res.Payload, "", "  ")
	if err != nil {
		return fmt.Sprintf("Tool call succeeded but payload could not be rendered: %v", err)
	}
	return string(data)
}
