package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"vidrelay/internal/core/domain"
	"vidrelay/internal/platform/metrics"
)

const (
	RequestIDHeader = "X-Request-ID"
	maxRequestIDLen = 128
)

type ctxKey int

const loggerKey ctxKey = iota

// requestLogger returns the request-scoped logger set by RequestID.
func requestLogger(r *http.Request, fallback *slog.Logger) *slog.Logger {
	if l, ok := r.Context().Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return fallback
}

// RequestID tags each request with an ID, reusing a sane incoming one.
func RequestID(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" || len(id) > maxRequestIDLen {
				id = uuid.New().String()
			}
			w.Header().Set(RequestIDHeader, id)
			ctx := context.WithValue(r.Context(), loggerKey, log.With("request_id", id))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying flusher.
func (s *statusRecorder) Unwrap() http.ResponseWriter { return s.ResponseWriter }

// AccessLog logs method, path, status and duration of every request.
func AccessLog(fallback *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			duration := time.Since(start)
			log := requestLogger(r, fallback)
			attrs := []any{"method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", duration}
			if duration > 5*time.Second {
				log.Info("Request completed (slow)", attrs...)
			} else {
				log.Debug("Request completed", attrs...)
			}
		})
	}
}

// Recover turns a handler panic into an InternalError response. Once the
// response has started it aborts the connection instead.
func Recover(fallback *slog.Logger, m *metrics.Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w}
			defer func() {
				rv := recover()
				if rv == nil {
					return
				}
				if rv == http.ErrAbortHandler {
					panic(rv)
				}
				requestLogger(r, fallback).Error("Panic recovered", "error", rv, "stack", string(debug.Stack()))
				m.Inc("errors_" + string(domain.InternalError))
				if rec.status != 0 {
					panic(http.ErrAbortHandler)
				}
				writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
			}()
			next.ServeHTTP(rec, r)
		})
	}
}

// RateLimit applies one shared token bucket. perSecond <= 0 disables it.
func RateLimit(perSecond float64, burst int, m *metrics.Registry) func(http.Handler) http.Handler {
	if perSecond <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(perSecond), burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				m.Inc("rate_limited")
				writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "Too many requests"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
