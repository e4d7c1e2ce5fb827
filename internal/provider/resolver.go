package provider

import (
	"github.com/RouteClaw/RouteClaw/internal/config"
)

// Resolve creates the LLMProvider for the configured model.
// Resolution order:
//  1. providers.local (explicit base URL → local runtime such as Ollama or vLLM)
//  2. providers.openrouter (API key set)
//  3. providers.openai (default)
func Resolve(cfg *config.Config) LLMProvider {
	if cfg.Providers.Local.APIBase != "" {
		return NewOpenAIProvider(cfg.Providers.Local.APIKey, cfg.Providers.Local.APIBase, cfg.Model.Name)
	}
	if cfg.Providers.OpenRouter.APIKey != "" {
		base := cfg.Providers.OpenRouter.APIBase
		if base == "" {
			base = "https://openrouter.ai/api/v1"
		}
		return NewOpenAIProvider(cfg.Providers.OpenRouter.APIKey, base, cfg.Model.Name)
	}
	return NewOpenAIProvider(cfg.Providers.OpenAI.APIKey, cfg.Providers.OpenAI.APIBase, cfg.Model.Name)
}
