package main

import (
	"context"
	"os"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"hotel_lookup/internal/adapters/observability"
	"hotel_lookup/internal/bootstrap"
	"hotel_lookup/internal/shared"
)

// ingestor warms the local cache for every known place.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv, nil)

	deps, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("bootstrap failed")
	}
	defer deps.Close()

	places := deps.Registry.Places()
	log.Info().
		Str("base", cfg.BookingBase).
		Int("workers", cfg.Workers).
		Int("places", len(places)).
		Bool("force", cfg.ForceIngest).
		Msg("ingestor starting")

	sem := semaphore.NewWeighted(int64(max(cfg.Workers, 1)))
	var wg sync.WaitGroup
	var failed atomic.Int32

	for _, p := range places {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(label string) {
			defer wg.Done()
			defer sem.Release(1)

			var err error
			if cfg.ForceIngest {
				_, err = deps.Local.Populate(ctx, label)
			} else {
				err = deps.Local.EnsurePopulated(ctx, label)
			}
			if err != nil {
				failed.Add(1)
				log.Warn().Str("place", label).Err(err).Msg("ingest failed")
				return
			}
			log.Info().Str("place", label).Msg("ingest ok")
		}(p.Label)
	}

	wg.Wait()
	log.Info().Int32("failed", failed.Load()).Msg("ingestion completed")
	if failed.Load() > 0 {
		deps.Close()
		os.Exit(1)
	}
}
