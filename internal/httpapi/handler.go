package httpapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"vectile/internal/geomstore"
	"vectile/internal/metrics"
	"vectile/internal/mvtenc"
	"vectile/internal/tilegrid"
)

const tileContentType = "application/x-protobuf"

// Pinger is the readiness surface of the warehouse pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	log        zerolog.Logger
	fetcher    geomstore.Fetcher
	encoder    *mvtenc.Encoder
	pinger     Pinger
	metrics    *metrics.Metrics
	featureCap int
}

func NewHandler(log zerolog.Logger, fetcher geomstore.Fetcher, encoder *mvtenc.Encoder, pinger Pinger, m *metrics.Metrics, featureCap int) *Handler {
	if encoder == nil {
		encoder = mvtenc.New(mvtenc.Options{})
	}
	if featureCap <= 0 {
		featureCap = 30000
	}
	return &Handler{
		log:        log,
		fetcher:    fetcher,
		encoder:    encoder,
		pinger:     pinger,
		metrics:    m,
		featureCap: featureCap,
	}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(h.accessLog)

	// Map viewer
	r.Get("/", h.handleIndex)

	// Tiles
	r.Get("/tiles/{z}/{x}/{y}.pbf", h.handleTile)

	// Health + metrics
	r.Get("/healthz", h.handleHealthz)
	r.Get("/readyz", h.handleReadyZ)
	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	return r
}

func (h *Handler) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		h.log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("http_request")
		h.metrics.ObserveHTTPRequest(r.Method, routePattern(r), ww.Status(), time.Since(start))
	})
}

// routePattern returns the chi template for the matched route so metric
// labels stay low-cardinality.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return r.URL.Path
	}
	if p := rctx.RoutePattern(); p != "" {
		return p
	}
	return r.URL.Path
}

// writeError emits the plain-text diagnostic body tile clients expect on
// failure paths.
func (h *Handler) writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, msg+"\n")
}

// handleTile runs the full pipeline: coordinate validation, envelope,
// bounded warehouse fetch, completeness guard, MVT encoding. Every failure
// path produces a defined response; nothing escapes the handler.
func (h *Handler) handleTile(w http.ResponseWriter, r *http.Request) {
	coord, err := tilegrid.ParseCoord(chi.URLParam(r, "z"), chi.URLParam(r, "x"), chi.URLParam(r, "y"))
	if err != nil {
		h.metrics.ObserveTile("invalid", 0)
		h.writeError(w, http.StatusBadRequest, "bad tile path "+r.URL.Path+": "+err.Error())
		return
	}

	envelope, err := tilegrid.Envelope(coord)
	if err != nil {
		h.metrics.ObserveTile("invalid", 0)
		h.writeError(w, http.StatusBadRequest, "bad tile path "+r.URL.Path+": "+err.Error())
		return
	}

	res, err := h.fetcher.FetchIntersecting(r.Context(), envelope, h.featureCap)
	if err != nil {
		h.log.Error().Err(err).Str("tile", coord.String()).Msg("warehouse fetch failed")
		h.metrics.ObserveTile("remote_error", 0)
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	records := geomstore.Complete(res, h.featureCap)
	overflowed := res.Count() == h.featureCap
	if overflowed {
		h.metrics.IncTileOverflow()
		h.log.Debug().
			Str("tile", coord.String()).
			Int("cap", h.featureCap).
			Msg("feature cap hit, serving empty tile")
	}

	data, err := h.encoder.Encode(coord, records)
	if err != nil {
		// Malformed geometry degrades to the empty tile rather than failing
		// the request.
		h.log.Error().Err(err).Str("tile", coord.String()).Msg("encoding failed, degrading to empty tile")
		var ee *mvtenc.EncodingError
		if !errors.As(err, &ee) {
			h.metrics.ObserveTile("encode_error", 0)
			h.writeError(w, http.StatusInternalServerError, "tile encoding failed for "+coord.String())
			return
		}
		data, err = h.encoder.Encode(coord, nil)
		if err != nil {
			h.metrics.ObserveTile("encode_error", 0)
			h.writeError(w, http.StatusInternalServerError, "tile encoding failed for "+coord.String())
			return
		}
		records = nil
	}

	switch {
	case overflowed:
		h.metrics.ObserveTile("overflow", 0)
	case len(records) == 0:
		h.metrics.ObserveTile("empty", 0)
	default:
		h.metrics.ObserveTile("ok", len(records))
	}

	w.Header().Set("Content-Type", tileContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, indexHTML)
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "ok\n")
}

func (h *Handler) handleReadyZ(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.pinger == nil {
		h.writeError(w, http.StatusServiceUnavailable, "warehouse not configured")
		return
	}
	if err := h.pinger.Ping(ctx); err != nil {
		h.writeError(w, http.StatusServiceUnavailable, "warehouse not ready")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "ready\n")
}
