package tools

import (
	"context"

	"github.com/RouteClaw/RouteClaw/internal/backend"
)

// WeatherTool fetches current weather conditions for a location.
type WeatherTool struct {
	client *backend.Client
}

func NewWeatherTool(client *backend.Client) *WeatherTool {
	return &WeatherTool{client: client}
}

func (t *WeatherTool) Name() string { return "weather_current" }
func (t *WeatherTool) Description() string {
	return "Get current weather conditions for a city or location name."
}

func (t *WeatherTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"location": map[string]any{
				"type":        "string",
				"description": "City or location name, e.g. 'Austin' or 'Berlin, Germany'",
			},
		},
		"required": []string{"location"},
	}
}

func (t *WeatherTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	location := GetString(params, "location", "")
	if location == "" {
		return "Error: location is required", nil
	}
	return renderResult(t.client.WeatherCurrent(ctx, location)), nil
}

// ClockTool returns the current time in a timezone.
type ClockTool struct {
	client *backend.Client
}

func NewClockTool(client *backend.Client) *ClockTool {
	return &ClockTool{client: client}
}

func (t *ClockTool) Name() string { return "time_current" }
func (t *ClockTool) Description() string {
	return "Get the current date and time for an IANA timezone, e.g. 'America/Chicago'."
}

func (t *ClockTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"timezone": map[string]any{
				"type":        "string",
				"description": "IANA timezone string, e.g. 'Europe/Berlin'. Never a UTC offset.",
			},
		},
		"required": []string{"timezone"},
	}
}

func (t *ClockTool) Execute(ctx context.Context, params map[string]any) (string, error) {
	timezone := GetString(params, "timezone", "")
	if timezone == "" {
		return "Error: timezone is required", nil
	}
	return renderResult(t.client.TimeCurrent(ctx, timezone)), nil
}
