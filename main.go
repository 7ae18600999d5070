package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"runtime/debug"
	"time"

	"github.com/equinox-loot/loot-bridge/internal/battlenet"
	"github.com/equinox-loot/loot-bridge/internal/cache"
	"github.com/equinox-loot/loot-bridge/internal/config"
	"github.com/equinox-loot/loot-bridge/internal/observe"
	"github.com/equinox-loot/loot-bridge/internal/server"
	"github.com/equinox-loot/loot-bridge/internal/store"
	"github.com/justinas/alice"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

func configureLogging() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if os.Getenv("ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	zerolog.DefaultContextLogger = &log.Logger
}

func logBuildInfo() {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	ev := log.Info().Str("go_version", buildInfo.GoVersion)
	for _, setting := range buildInfo.Settings {
		switch setting.Key {
		case "vcs.revision", "vcs.time", "vcs.modified":
			ev = ev.Str(setting.Key, setting.Value)
		}
	}
	ev.Msg("build information")
}

func configureServerRoutes(
	cfg config.Config,
	client *battlenet.Client,
	authority *battlenet.Authority,
	documents store.DocumentStore,
) http.Handler {
	// wrap standard library mux with a telemetry-instrumenting registrar
	muxWithoutTelemetry := http.NewServeMux()
	mux := observe.NewMux(muxWithoutTelemetry)

	standard := alice.New(
		maxRequestSize(1<<20),
		requestLogging(),
	)

	mux.Handle("GET /api/journal-instances", standard.Then(handleListInstances(client, cfg.Battlenet)))
	mux.Handle("GET /api/raids", standard.Then(handleListRaids(client, cfg.Battlenet)))
	mux.Handle("GET /api/raids/{id}", standard.Then(handleRaidDetail(client)))
	mux.Handle("GET /api/encounters/{id}/loot", standard.Then(handleEncounterLoot(client)))
	mux.Handle("GET /api/encounters/{id}/loot/filtered", standard.Then(handleFilteredLoot(client)))
	mux.Handle("GET /api/items/{id}", standard.Then(handleItemDetail(client)))

	mux.Handle("GET /api/cache/stats", standard.Then(handleCacheStats(client)))
	mux.Handle("DELETE /api/cache", standard.Then(handleCacheClear(client)))

	mux.Handle("GET /api/bosses", standard.Then(handleListBosses()))
	mux.Handle("GET /api/bosses/{id}/loot", standard.Then(handleBossLoot()))

	mux.Handle("GET /api/documents/{name}", standard.Then(handleGetDocument(documents)))
	mux.Handle("PUT /api/documents/{name}", standard.Then(handlePutDocument(documents)))

	// healthcheck is deliberately uninstrumented
	muxWithoutTelemetry.Handle("GET /healthcheck", handleHealthCheck(authority, cfg.Battlenet))

	// the roster frontend is served from a different origin
	return cors.AllowAll().Handler(mux)
}

func requestLogging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		accessLogger := hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
			hlog.FromRequest(r).Info().
				Str("method", r.Method).
				Stringer("url", r.URL).
				Int("status", status).
				Int("size", size).
				Dur("elapsed", duration).
				Msg("request handled")
		})
		return hlog.NewHandler(log.Logger)(accessLogger(next))
	}
}

func launchServer(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("configuration load failed: %w", err)
	}

	shutdownHooks := &server.ShutdownHooks{}

	telemetryShutdown, err := observe.Configure(ctx, cfg.Observe)
	if err != nil {
		return fmt.Errorf("telemetry bootstrap failed: %w", err)
	}
	shutdownHooks.AddContext("telemetry", telemetryShutdown)

	// outbound client shared by the token exchange and resource fetches
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConns = cfg.Server.OutgoingHTTPMaxIdleConns
	transport.MaxConnsPerHost = cfg.Server.OutgoingHTTPMaxConnsPerHost

	outboundClient := &http.Client{
		Timeout:   time.Duration(cfg.Battlenet.UpstreamTimeoutSeconds) * time.Second,
		Transport: observe.HTTPTransport(transport, cfg.Observe),
	}

	authority := battlenet.NewAuthority(cfg.Battlenet, battlenet.WithHTTPClient(outboundClient))

	resourceCache, err := cache.NewFromConfig[json.RawMessage](ctx, cfg.Cache)
	if err != nil {
		return fmt.Errorf("cache initialization failed: %w", err)
	}
	shutdownHooks.Add("resource-cache", resourceCache.Close)

	client := battlenet.NewClient(cfg.Battlenet, authority, resourceCache,
		battlenet.WithClientHTTPClient(outboundClient))

	documents, err := store.NewFromConfig(ctx, cfg.Store, cfg.Cache.Valkey)
	if err != nil {
		return fmt.Errorf("document store initialization failed: %w", err)
	}
	shutdownHooks.Add("document-store", documents.Close)

	// warm the token eagerly so the first request doesn't pay for the
	// exchange; startup proceeds either way and the first caller retries
	if _, err := authority.Authenticate(ctx); err != nil {
		log.Warn().Err(err).Msg("startup authentication failed, will retry on first request")
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: configureServerRoutes(cfg, client, authority, documents),

		ReadHeaderTimeout: 20 * time.Second,
		MaxHeaderBytes:    20 << 10, // 20 KB
	}

	return server.Serve(cfg.Server, httpServer, shutdownHooks)
}

func main() {
	configureLogging()
	logBuildInfo()

	if err := launchServer(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
