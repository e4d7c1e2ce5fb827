// Package config provides configuration types and loading for routeclaw.
package config

import "time"

// Config is the root configuration struct.
// Top-level groups: Paths, Model, Providers, Gateway, Backend, Router, Session.
type Config struct {
	Paths     PathsConfig     `json:"paths"`
	Model     ModelConfig     `json:"model"`
	Providers ProvidersConfig `json:"providers"`
	Gateway   GatewayConfig   `json:"gateway"`
	Backend   BackendConfig   `json:"backend"`
	Router    RouterConfig    `json:"router"`
	Session   SessionConfig   `json:"session"`
}

// ---------------------------------------------------------------------------
// Paths – filesystem locations
// ---------------------------------------------------------------------------

// PathsConfig groups all filesystem path settings.
type PathsConfig struct {
	StateDir     string `json:"stateDir" envconfig:"STATE_DIR"`
	TranscriptDB string `json:"transcriptDb" envconfig:"TRANSCRIPT_DB"`
	SessionsDir  string `json:"sessionsDir" envconfig:"SESSIONS_DIR"`
}

// ---------------------------------------------------------------------------
// Model – LLM behaviour
// ---------------------------------------------------------------------------

// ModelConfig groups LLM model and engine-loop settings.
type ModelConfig struct {
	Name              string  `json:"name" envconfig:"MODEL"`
	MaxTokens         int     `json:"maxTokens" envconfig:"MAX_TOKENS"`
	Temperature       float64 `json:"temperature" envconfig:"TEMPERATURE"`
	MaxToolIterations int     `json:"maxToolIterations" envconfig:"MAX_TOOL_ITERATIONS"`
}

// ---------------------------------------------------------------------------
// Providers – LLM API keys & endpoints
// ---------------------------------------------------------------------------

// ProvidersConfig contains LLM provider configurations.
type ProvidersConfig struct {
	OpenAI     ProviderConfig `json:"openai"`
	OpenRouter ProviderConfig `json:"openrouter"`
	Local      ProviderConfig `json:"local"`
}

// ProviderConfig contains settings for a single LLM provider.
type ProviderConfig struct {
	APIKey  string `json:"apiKey" envconfig:"API_KEY"`
	APIBase string `json:"apiBase,omitempty" envconfig:"API_BASE"`
}

// ---------------------------------------------------------------------------
// Gateway – HTTP server networking
// ---------------------------------------------------------------------------

// GatewayConfig contains gateway server settings.
type GatewayConfig struct {
	Host      string `json:"host" envconfig:"HOST"`
	Port      int    `json:"port" envconfig:"PORT"`
	AuthToken string `json:"authToken" envconfig:"AUTH_TOKEN"`
	Debug     bool   `json:"debug" envconfig:"DEBUG"`
}

// ---------------------------------------------------------------------------
// Backend – personal data service integration
// ---------------------------------------------------------------------------

// BackendConfig configures the memory/profile/status backend connection.
type BackendConfig struct {
	URL     string        `json:"url" envconfig:"URL"`
	APIKey  string        `json:"apiKey" envconfig:"API_KEY"`
	Timeout time.Duration `json:"timeout" envconfig:"TIMEOUT"`
}

// ---------------------------------------------------------------------------
// Router – message classification
// ---------------------------------------------------------------------------

// RouterConfig contains message router settings.
type RouterConfig struct {
	DefaultPersona     string  `json:"defaultPersona" envconfig:"DEFAULT_PERSONA"`
	FallbackConfidence float64 `json:"fallbackConfidence" envconfig:"FALLBACK_CONFIDENCE"`
}

// ---------------------------------------------------------------------------
// Session – conversation history
// ---------------------------------------------------------------------------

// SessionConfig contains session history settings.
type SessionConfig struct {
	MaxHistory int  `json:"maxHistory" envconfig:"MAX_HISTORY"`
	Persist    bool `json:"persist" envconfig:"PERSIST"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Paths: PathsConfig{
			StateDir: "~/.routeclaw",
		},
		Model: ModelConfig{
			Name:              "anthropic/claude-sonnet-4-5",
			MaxTokens:         4096,
			Temperature:       0.7,
			MaxToolIterations: 8,
		},
		Gateway: GatewayConfig{
			Host: "127.0.0.1", // Secure default
			Port: 18890,
		},
		Backend: BackendConfig{
			URL:     "http://127.0.0.1:8080",
			Timeout: 15 * time.Second,
		},
		Router: RouterConfig{
			DefaultPersona:     "personal_assistant",
			FallbackConfidence: 0.3,
		},
		Session: SessionConfig{
			MaxHistory: 40,
			Persist:    true,
		},
	}
}
