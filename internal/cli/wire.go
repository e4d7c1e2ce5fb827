package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/RouteClaw/RouteClaw/internal/backend"
	"github.com/RouteClaw/RouteClaw/internal/config"
	"github.com/RouteClaw/RouteClaw/internal/engine"
	"github.com/RouteClaw/RouteClaw/internal/orchestrator"
	"github.com/RouteClaw/RouteClaw/internal/persona"
	"github.com/RouteClaw/RouteClaw/internal/provider"
	"github.com/RouteClaw/RouteClaw/internal/router"
	"github.com/RouteClaw/RouteClaw/internal/session"
	"github.com/RouteClaw/RouteClaw/internal/tools"
	"github.com/RouteClaw/RouteClaw/internal/transcript"
)

// pipeline bundles everything a command needs to handle messages.
type pipeline struct {
	cfg          *config.Config
	backend      *backend.Client
	registry     *persona.Registry
	orchestrator *orchestrator.Orchestrator
	transcripts  *transcript.Store
}

// buildPipeline is the single composition root: it loads config and wires
// backend client, tool registry, persona registry, router, provider, engine,
// sessions and transcripts into one orchestrator.
func buildPipeline() (*pipeline, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	client := backend.NewClient(backend.Config{
		URL:     cfg.Backend.URL,
		APIKey:  cfg.Backend.APIKey,
		Timeout: cfg.Backend.Timeout,
	})

	toolReg := tools.NewRegistry()
	toolReg.Register(tools.NewMemorySearchTool(client))
	toolReg.Register(tools.NewPeopleLookupTool(client))
	toolReg.Register(tools.NewProfileTool(client))
	toolReg.Register(tools.NewStatusUpdateTool(client))
	toolReg.Register(tools.NewWeatherTool(client))
	toolReg.Register(tools.NewClockTool(client))
	toolReg.Register(tools.NewHealthSummaryTool(client))
	toolReg.Register(tools.NewSpendingTool(client))

	registry, err := persona.NewRegistry(persona.Builtins(), toolReg)
	if err != nil {
		return nil, fmt.Errorf("build persona registry: %w", err)
	}

	rt := router.New(router.Options{
		DefaultPersona:     cfg.Router.DefaultPersona,
		FallbackConfidence: cfg.Router.FallbackConfidence,
		KnownPersona:       registry.Has,
	})

	runner := engine.NewLoopRunner(engine.Options{
		Provider:      provider.Resolve(cfg),
		Model:         cfg.Model.Name,
		MaxTokens:     cfg.Model.MaxTokens,
		Temperature:   cfg.Model.Temperature,
		MaxIterations: cfg.Model.MaxToolIterations,
	})

	if err := os.MkdirAll(cfg.Paths.StateDir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	sessions := session.NewManager(cfg.Paths.SessionsDir, cfg.Session.MaxHistory, cfg.Session.Persist)

	var transcripts *transcript.Store
	if err := os.MkdirAll(filepath.Dir(cfg.Paths.TranscriptDB), 0o755); err == nil {
		transcripts, err = transcript.NewStore(cfg.Paths.TranscriptDB)
		if err != nil {
			slog.Warn("transcript store unavailable", "error", err)
			transcripts = nil
		}
	}

	orch := orchestrator.New(orchestrator.Options{
		Registry:    registry,
		Router:      rt,
		Runner:      runner,
		Sessions:    sessions,
		Transcripts: transcripts,
		Debug:       cfg.Gateway.Debug,
	})

	return &pipeline{
		cfg:          cfg,
		backend:      client,
		registry:     registry,
		orchestrator: orch,
		transcripts:  transcripts,
	}, nil
}

// Close releases pipeline resources.
func (p *pipeline) Close() {
	if p.transcripts != nil {
		_ = p.transcripts.Close()
	}
}
