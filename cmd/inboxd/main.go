// Command inboxd serves the conversation projection over HTTP while a recorded
// feed streams events into the reducer
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"inboxd/internal/platform/config"
	"inboxd/internal/platform/logger"
	"inboxd/internal/platform/metrics"
	phttp "inboxd/internal/platform/net/http"
	"inboxd/internal/platform/net/middleware"

	"inboxd/internal/services/api"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

func main() {
	// .env is optional; real env wins
	envErr := config.LoadDotenv()

	// bring up logging early
	logger.Init(logger.FromEnv())
	l := logger.Get()
	if envErr != nil {
		l.Warn().Err(envErr).Msg("ignoring unreadable .env")
	}

	root := config.New()
	core := root.Prefix("CORE_")
	apiCfg := core.Prefix("API_")

	reg := metrics.New("inboxd")

	// http server (reads CORE_API_PORT, CORE_API_SHUTDOWN_GRACE)
	srv := phttp.NewServer(core, func(m *chi.Mux) {
		m.Use(middleware.Heartbeat("/healthz"))
	})
	srv.Router().Handle("/metrics", reg.Handler())

	feed, err := api.Mount(srv.Router(), api.Options{
		Config:         root,
		Logger:         l,
		Metrics:        reg,
		EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
		EnableProfiler: apiCfg.MayBool("PROFILER", false),
		CORSOrigins:    apiCfg.MayCSV("CORS_ORIGINS", nil),
	})
	if err != nil {
		l.Fatal().Err(err).Msg("api mount failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return feed.Runner.Run(gctx) })
	g.Go(func() error { return srv.Run(gctx) })

	if err := g.Wait(); err != nil {
		l.Fatal().Err(err).Msg("inboxd stopped")
	}
	l.Info().Msg("bye")
}
