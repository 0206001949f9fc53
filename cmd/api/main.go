package main

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	server "hotel_lookup/internal/adapters/http_server"
	"hotel_lookup/internal/adapters/observability"
	"hotel_lookup/internal/bootstrap"
	"hotel_lookup/internal/shared"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, nil)

	observability.Serve()

	if cfg.BookingUser == "" {
		log.Warn().Msg("BOOKING_USER is empty")
	}

	deps, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("bootstrap failed")
	}
	defer deps.Close()
	log.Info().Int("places", len(deps.Registry.Places())).Str("store", cfg.Store).Msg("lookup engine ready")

	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Local: deps.Local, Resolver: deps.Resolver, Info: deps.Info})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
