package factory

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/timewise/timewise/internal/config"
	"github.com/timewise/timewise/internal/health"
	"github.com/timewise/timewise/internal/suggest"
	"github.com/timewise/timewise/internal/suggest/gemini"
	"github.com/timewise/timewise/internal/suggest/ollama"
)

// NewSuggestProvider creates the suggestion provider named by cfg.SuggestProvider.
// A provider that cannot be constructed disables suggestions instead of failing
// startup. Launches an async warmup probe; returns immediately.
func NewSuggestProvider(ctx context.Context, cfg *config.Config, log zerolog.Logger) suggest.Provider {
	var provider suggest.Provider

	switch cfg.SuggestProvider {
	case "", "none":
		return suggest.NopProvider{}
	case "ollama":
		provider = ollama.New(cfg.OllamaURL, cfg.SuggestModel)
	case "genai":
		p, err := gemini.New(ctx, cfg.GenAIAPIKey, cfg.SuggestModel, gemini.Options{})
		if err != nil {
			log.Warn().Err(err).Msg("genai provider unavailable; suggestions disabled")
			return suggest.NopProvider{}
		}
		provider = p
	default:
		log.Warn().Str("provider", cfg.SuggestProvider).Msg("unknown suggestion provider; suggestions disabled")
		return suggest.NopProvider{}
	}

	pinger, ok := provider.(health.HealthPinger)
	if !ok {
		return provider
	}

	// Optional async warmup with configurable timeout; don't block startup
	go func() {
		warmupTimeout := time.Duration(cfg.BootstrapTimeoutSeconds) * time.Second
		warmupCtx, cancel := context.WithTimeout(ctx, warmupTimeout)
		defer cancel()

		if err := pinger.HealthPing(warmupCtx); err != nil {
			log.Warn().Err(err).Str("provider", provider.Name()).Msg("suggestion provider warmup failed")
		} else {
			log.Debug().Str("provider", provider.Name()).Msg("suggestion provider warmup completed")
		}
	}()

	return provider
}
