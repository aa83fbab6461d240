package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"vidrelay/internal/core/domain"
	"vidrelay/internal/core/ports"
	"vidrelay/internal/platform/buffer"
	"vidrelay/internal/platform/metrics"
)

const maxInfoBody = 64 << 10

// Kinds whose underlying message is shown to the client.
var detailedKinds = map[domain.Kind]bool{
	domain.ExtractionDenied: true,
	domain.MalformedData:    true,
	domain.InternalError:    true,
}

type HTTPHandler struct {
	resolver ports.InfoResolver
	relay    ports.StreamRelay
	metrics  *metrics.Registry
	log      *slog.Logger
	pool     *buffer.Pool
}

func NewHTTPHandler(resolver ports.InfoResolver, relay ports.StreamRelay, m *metrics.Registry, log *slog.Logger) *HTTPHandler {
	if m == nil {
		m = metrics.New()
	}
	if log == nil {
		log = slog.Default()
	}
	return &HTTPHandler{
		resolver: resolver,
		relay:    relay,
		metrics:  m,
		log:      log,
		pool:     buffer.NewPool(buffer.ChunkSize),
	}
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HandleInfo resolves a page URL into a title and a direct mp4 URL.
func (h *HTTPHandler) HandleInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, r, domain.NewError(domain.InvalidMethod, nil).WithMessage("Only POST requests are allowed"))
		return
	}

	var req domain.InfoRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxInfoBody)).Decode(&req); err != nil {
		h.writeError(w, r, domain.NewError(domain.MissingInput, err).WithMessage("Invalid request body"))
		return
	}

	info, err := h.resolver.Resolve(r.Context(), req.URL)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, info)
}

// HandleStream relays a direct media URL to the client as an attachment.
func (h *HTTPHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, r, domain.NewError(domain.InvalidMethod, nil).WithMessage("Only GET requests are allowed"))
		return
	}

	q := r.URL.Query()
	stream, err := h.relay.Open(r.Context(), domain.StreamRequest{
		URL:   q.Get("url"),
		Title: q.Get("title"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer stream.Body.Close()

	hdr := w.Header()
	hdr.Set("Content-Type", stream.ContentType)
	hdr.Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", stream.Filename))
	hdr.Set("Access-Control-Allow-Origin", "*")
	if stream.ContentLength > 0 {
		hdr.Set("Content-Length", fmt.Sprint(stream.ContentLength))
	}
	w.WriteHeader(http.StatusOK)

	n, err := h.copyChunks(w, stream.Body)
	h.metrics.Add("relay_bytes", uint64(n))
	if err != nil {
		// Headers are gone; the client sees a truncated body.
		h.metrics.Inc("errors_" + string(domain.StreamingError))
		requestLogger(r, h.log).Warn("Stream interrupted", "bytes", n, "error", err)
		return
	}
	requestLogger(r, h.log).Debug("Stream finished", "bytes", n, "filename", stream.Filename)
}

// copyChunks forwards src in pool-sized chunks, flushing after each one.
func (h *HTTPHandler) copyChunks(w http.ResponseWriter, src io.Reader) (int64, error) {
	bp := h.pool.Get()
	defer h.pool.Put(bp)
	buf := *bp

	rc := http.NewResponseController(w)
	var total int64
	for {
		nr, rerr := src.Read(buf)
		if nr > 0 {
			nw, werr := w.Write(buf[:nr])
			total += int64(nw)
			if werr != nil {
				return total, fmt.Errorf("write: %w", werr)
			}
			if err := rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
				return total, fmt.Errorf("flush: %w", err)
			}
		}
		if rerr == io.EOF {
			return total, nil
		}
		if rerr != nil {
			return total, fmt.Errorf("read origin: %w", rerr)
		}
	}
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := domain.AsError(err)
	status := domain.StatusOf(e)

	h.metrics.Inc("errors_" + string(e.Kind))
	log := requestLogger(r, h.log)
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", "kind", e.Kind, "status", status, "error", e)
	} else {
		log.Info("Request rejected", "kind", e.Kind, "status", status, "error", e)
	}

	resp := errorResponse{Error: e.Message}
	if detailedKinds[e.Kind] {
		resp.Details = e.Details
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
