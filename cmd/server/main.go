package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BerylCAtieno/starstruck-agent/internal/a2a"
	"github.com/BerylCAtieno/starstruck-agent/internal/config"
	"github.com/BerylCAtieno/starstruck-agent/internal/handler"
	"github.com/BerylCAtieno/starstruck-agent/internal/logger"
	"github.com/BerylCAtieno/starstruck-agent/internal/pipeline"
	"github.com/BerylCAtieno/starstruck-agent/internal/profiler"
	"github.com/BerylCAtieno/starstruck-agent/internal/sources"
	"github.com/BerylCAtieno/starstruck-agent/internal/venues"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	log, flush := logger.Install(cfg.App.LogFilePath, cfg.IsProduction())
	defer flush()

	gen, closeGen, err := newGenerator(ctx, cfg.LLM)
	if err != nil {
		log.Fatal("failed to create generator", zap.Error(err))
	}
	defer closeGen()
	gen = profiler.Wrap(gen, profiler.WithLogging(log), profiler.WithTimeout(cfg.LLM.Timeout))

	coord := sources.NewCoordinator(sources.NewRegistry(newAdapters(cfg.Sources)...))
	analyst := profiler.NewService(gen)
	engine := pipeline.New(pipeline.Deps{
		Sources: coord,
		Analyst: analyst,
		Venues:  venues.NewPlacesClient(cfg.Places.APIKey, cfg.Places.BaseURL, cfg.Places.Timeout),
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(handler.RequestLogger(log), gin.Recovery(), handler.CORS(cfg.App.CorsAllowedOrigins))

	handler.NewMatchHandler(engine, coord, analyst).RegisterRoutes(router)
	a2a.NewA2AHandler(engine, cfg.App.BaseURL).RegisterRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("starstruck agent starting",
			zap.String("port", cfg.App.Port),
			zap.String("llm_provider", cfg.LLM.Provider),
			zap.Strings("sources", coord.Registry().Names()),
			zap.String("agent_card", cfg.App.BaseURL+"/.well-known/agent.json"),
			zap.String("a2a_endpoint", cfg.App.BaseURL+"/a2a/starstruck"),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed to start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newGenerator(ctx context.Context, cfg config.LLMConfig) (profiler.Generator, func(), error) {
	if cfg.Provider == "fake" {
		zap.L().Warn("using the canned generator; responses are not model output")
		return profiler.NewFakeGenerator(true), func() {}, nil
	}
	client, err := profiler.NewGeminiClient(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

func newAdapters(cfg config.SourcesConfig) []sources.Adapter {
	adapters := []sources.Adapter{
		sources.NewGitHub(cfg.GitHubBaseURL, cfg.GitHubToken, cfg.FetchTimeout),
		sources.NewSpotify(cfg.SpotifyBaseURL, cfg.FetchTimeout),
		sources.NewLetterboxd(cfg.LetterboxdURL, cfg.FetchTimeout),
	}
	if cfg.BrowserEnabled {
		scraper := sources.NewRodScraper(cfg.BrowserURL, cfg.BrowserTimeout)
		adapters = append(adapters, sources.NewInstagram(scraper), sources.NewLinkedIn(scraper))
	}
	return sources.WithCache(cfg.CacheSize, cfg.CacheTTL, adapters...)
}
