package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/aura-cli/internal/config"
	"github.com/sells-group/aura-cli/internal/farm"
	"github.com/sells-group/aura-cli/internal/fixture"
	"github.com/sells-group/aura-cli/internal/oracle"
	"github.com/sells-group/aura-cli/internal/resilience"
	"github.com/sells-group/aura-cli/internal/store"
	anthropicpkg "github.com/sells-group/aura-cli/pkg/anthropic"
)

// farmEnv holds the store, registry-backed service, and advisor shared by
// the serve, farms and advise commands.
type farmEnv struct {
	Store   store.Store
	Service *farm.Service
	Advisor *oracle.Advisor
	Linker  farm.MapLinker
}

// Close releases resources held by the environment.
func (fe *farmEnv) Close() {
	if fe.Store != nil {
		_ = fe.Store.Close()
	}
}

// initFarmEnv loads parcels, builds the registry, and opens the snapshot
// store. Callers should defer env.Close().
func initFarmEnv(ctx context.Context, c *config.Config) (*farmEnv, error) {
	parcels, err := loadParcels(c.Farm.FixturePath)
	if err != nil {
		return nil, err
	}

	synth := farm.NewSynthesizer(farm.WithRand(farm.NewRand(c.Farm.Seed)))
	registry, err := farm.NewRegistry(synth, parcels)
	if err != nil {
		return nil, eris.Wrap(err, "build farm registry")
	}

	st, err := store.New(ctx, c.Store.Driver, c.Store.DatabaseURL)
	if err != nil {
		return nil, eris.Wrap(err, "open snapshot store")
	}

	svc := farm.NewService(registry, synth,
		farm.WithStore(st),
		farm.WithLatency(time.Duration(c.Farm.LatencyMS)*time.Millisecond),
		farm.WithConcurrency(c.Farm.RefreshConcurrency),
	)

	zap.L().Info("farm registry ready",
		zap.Int("farms", registry.Len()),
		zap.String("store", c.Store.Driver),
		zap.Bool("advisor", c.Anthropic.Key != ""),
	)

	return &farmEnv{
		Store:   st,
		Service: svc,
		Advisor: newAdvisor(c.Anthropic),
		Linker:  farm.MapLinker{BaseURL: c.Map.BaseURL, Zoom: c.Map.Zoom},
	}, nil
}

// loadParcels reads path, or the embedded parcels when path is empty.
func loadParcels(path string) ([]fixture.Parcel, error) {
	if path == "" {
		parcels, err := fixture.Default()
		return parcels, eris.Wrap(err, "load embedded parcels")
	}
	parcels, err := fixture.LoadFile(path)
	return parcels, eris.Wrapf(err, "load parcels from %s", path)
}

// newAdvisor returns a disabled advisor when no key is configured.
func newAdvisor(ac config.AnthropicConfig) *oracle.Advisor {
	if ac.Key == "" {
		return oracle.New(nil, ac.Model, ac.MaxTokens)
	}
	breaker := oracle.NewBreaker(
		resilience.WithThreshold(ac.BreakerThreshold),
		resilience.WithCooldown(ac.BreakerCooldown),
	)
	return oracle.New(anthropicpkg.NewClient(ac.Key), ac.Model, ac.MaxTokens, oracle.WithBreaker(breaker))
}
