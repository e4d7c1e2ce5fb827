package tools

import (
	"context"

	"github.com/RouteClaw/RouteClaw/internal/backend"
)

// ProfileTool fetches the authenticated user's profile from the backend.
type ProfileTool struct {
	client *backend.Client
}

func NewProfileTool(client *backend.Client) *ProfileTool {
	return &ProfileTool{client: client}
}

func (t *ProfileTool) Name() string { return "profile_get" }
func (t *ProfileTool) Description() string {
	return "Fetch the current user's profile (name, preferences, timezone) from the personal data service."
}

func (t *ProfileTool) Parameters() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

func (t *ProfileTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	return renderResult(t.client.ProfileSelf(ctx)), nil
}

// StatusUpdateTool posts a status update to the backend.
type StatusUpdateTool struct {
	client *backend.Client
}

func NewStatusUpdateTool(client *backend.Client) *StatusUpdateTool {
	return &StatusUpdateTool{client: client}
}

func (t *StatusUpdateTool) Name() string { return "status_update" }
func (t *StatusUpdateTool) Description() string {
	return "Post a short status update for the user to the personal data service. Use only when explicitly asked."
}

func (t *StatusUpdateTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"status": map[string]any{
				"type":        "string",
				"description": "The status text to publish",
			},
		},
		"required": []string{"status"},
	}
}

func (t *StatusUpdateTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	status := GetString(params, "status", "")
	if status == "" {
		return "Error: status is required", nil
	}
	return renderResult(t.client.StatusUpdate(ctx, status)), nil
}
