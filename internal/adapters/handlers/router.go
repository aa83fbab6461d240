package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vidrelay/internal/platform/metrics"
)

type RouterOptions struct {
	RateLimit float64
	RateBurst int
	// StaticDir, when set, is served at "/".
	StaticDir string
	Started   time.Time
}

// NewRouter mounts both endpoints with and without a trailing slash.
func NewRouter(h *HTTPHandler, m *metrics.Registry, log *slog.Logger, opts RouterOptions) http.Handler {
	if opts.Started.IsZero() {
		opts.Started = time.Now()
	}

	r := chi.NewRouter()
	r.Use(RequestID(log))
	r.Use(AccessLog(log))
	r.Use(Recover(log, m))

	r.Group(func(api chi.Router) {
		api.Use(RateLimit(opts.RateLimit, opts.RateBurst, m))

		info := m.Wrap("info", http.HandlerFunc(h.HandleInfo))
		for _, p := range []string{"/fetch-video-info", "/fetch-video-info/"} {
			api.Handle(p, info)
		}

		stream := m.Wrap("stream", http.HandlerFunc(h.HandleStream))
		for _, p := range []string{"/stream-video", "/stream-video/"} {
			api.Handle(p, stream)
		}
	})

	r.Method(http.MethodGet, "/metrics", m.Handler())
	r.Get("/healthz", Health(opts.Started))

	if opts.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(opts.StaticDir)))
	}
	return r
}
