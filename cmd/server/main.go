package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vidrelay/internal/adapters/extractors"
	"vidrelay/internal/adapters/handlers"
	"vidrelay/internal/adapters/htmlpage"
	"vidrelay/internal/adapters/origin"
	"vidrelay/internal/adapters/youtube"
	"vidrelay/internal/adapters/ytdlp"
	"vidrelay/internal/config"
	"vidrelay/internal/core/domain"
	"vidrelay/internal/core/services"
	"vidrelay/internal/platform/httpx"
	"vidrelay/internal/platform/logger"
	"vidrelay/internal/platform/metrics"
)

func main() {
	started := time.Now()

	// 1. Config and logging
	cfg, err := config.Load(os.Getenv)
	if err != nil {
		slog.Error("Invalid configuration", "key", config.Key(err), "error", err)
		os.Exit(1)
	}
	log := logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.YtDlpAutoInstall && cfg.YtDlpPath == "" {
		log.Info("Ensuring yt-dlp is installed")
		if err := ytdlp.Install(ctx); err != nil {
			log.Error("yt-dlp install failed", "error", err)
			os.Exit(1)
		}
	}

	// 2. Adapters (Driven)
	client, err := httpx.NewClient(httpx.Options{
		Headers:       httpx.BrowserHeaders(cfg.UserAgent, cfg.Referer),
		ProxyURL:      cfg.ProxyURL,
		HeaderTimeout: cfg.OriginHeaderTimeout,
	})
	if err != nil {
		log.Error("Failed to build http client", "error", err)
		os.Exit(1)
	}

	registry, err := extractors.NewRegistry(cfg.Extractors,
		ytdlp.NewYtDlpAdapter(ytdlp.Options{
			Executable:    cfg.YtDlpPath,
			Cookies:       cfg.YtDlpCookies,
			ProxyURL:      cfg.ProxyURL,
			SocketTimeout: cfg.OriginHeaderTimeout,
		}),
		youtube.NewYouTubeRepository(client),
		htmlpage.NewPageExtractor(client),
	)
	if err != nil {
		log.Error("Failed to build extractor registry", "error", err)
		os.Exit(1)
	}
	mediaOrigin := origin.NewHTTPOrigin(client)

	// 3. Core Services
	opts := domain.DefaultExtractOptions()
	opts.PreferredFormat = cfg.Format
	opts.AllowPlaylist = cfg.AllowPlaylist
	resolver := services.NewResolverService(registry, opts, cfg.ExtractTimeout, log)
	relay := services.NewRelayService(mediaOrigin)

	// 4. Adapter (Driving)
	m := metrics.New()
	httpHandler := handlers.NewHTTPHandler(resolver, relay, m, log)

	// 5. Router
	router := handlers.NewRouter(httpHandler, m, log, handlers.RouterOptions{
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
		StaticDir: cfg.StaticDir,
		Started:   started,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting", "addr", cfg.Addr, "extractors", registry.Name())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		log.Info("Shutting down", "timeout", cfg.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Shutdown incomplete", "error", err)
		}
	}
}
