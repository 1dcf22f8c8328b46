// Package api - JSON HTTP API over the conversion engine
// Handlers decode requests and shape responses. All arithmetic stays in core/conversion.
package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"distconv/core/input"
	"distconv/core/units"
	apperrors "distconv/internal/errors"
	"distconv/internal/logging"
	"distconv/internal/ratelimit"
)

// maxBodyBytes bounds request bodies, batch files included
const maxBodyBytes = 1 << 20

// Options configures a Server
type Options struct {
	// Version is reported by /health and /version
	Version string

	// Policy is applied to request values
	Policy input.Policy

	// Limiter throttles clients; nil disables limiting
	Limiter *ratelimit.Store

	// Stats records limiter decisions; may be nil
	Stats ratelimit.StatsStore

	// TrustXForwardedFor keys clients by the X-Forwarded-For header
	TrustXForwardedFor bool
}

// Server is the API server
type Server struct {
	handler *Handler
	mux     *http.ServeMux
	root    http.Handler
	version string
	stats   ratelimit.StatsStore
	log     *zap.Logger
}

// NewServer creates a new API server
func NewServer(opts Options) *Server {
	if opts.Policy == "" {
		opts.Policy = input.PolicyReject
	}

	s := &Server{
		handler: NewHandler(opts.Policy),
		mux:     http.NewServeMux(),
		version: opts.Version,
		stats:   opts.Stats,
		log:     logging.Named("api"),
	}
	s.registerRoutes()

	limit := ratelimit.Middleware(ratelimit.Options{
		Store:               opts.Limiter,
		Stats:               opts.Stats,
		TrustXForwardedFor:  opts.TrustXForwardedFor,
		AddRateLimitHeaders: true,
		OnReject: func(w http.ResponseWriter, r *http.Request) {
			s.writeError(w, r, "RATE_LIMITED", "too many requests, retry later", http.StatusTooManyRequests)
		},
	})
	s.root = withRequestID(s.logRequests(limit(s.routeErrors(s.mux))))
	return s
}

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	// Core endpoints
	s.mux.HandleFunc("POST /convert", s.handleConvert)
	s.mux.HandleFunc("POST /batch", s.handleBatch)
	s.mux.HandleFunc("GET /units", s.handleUnits)
	s.mux.HandleFunc("GET /systems", s.handleSystems)

	// Supporting endpoints
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /version", s.handleVersion)
	s.mux.HandleFunc("GET /stats", s.handleStats)
}

// handleConvert handles POST /convert
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, r, "INVALID_BODY", err.Error(), http.StatusRequestEntityTooLarge)
		return
	}

	var req ConvertRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeError(w, r, "INVALID_JSON", err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := s.handler.Convert(&req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	resp.Metadata = s.metadata(r, body, start)
	s.writeJSON(w, resp, http.StatusOK)
}

// handleBatch handles POST /batch with an HCL batch document as body
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, r, "INVALID_BODY", err.Error(), http.StatusRequestEntityTooLarge)
		return
	}

	resp, err := s.handler.Batch(r.Context(), body, r.URL.Query().Get("exact") == "true")
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	resp.Metadata = s.metadata(r, body, start)
	s.writeJSON(w, resp, http.StatusOK)
}

// handleUnits handles GET /units?system=imperial|metric
func (s *Server) handleUnits(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("system")
	if name == "" {
		s.writeJSON(w, map[string]interface{}{"units": unitViews(units.All())}, http.StatusOK)
		return
	}

	sys, err := units.ParseSystem(name)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.writeJSON(w, map[string]interface{}{
		"system": sys,
		"label":  sys.Label(),
		"units":  unitViews(units.For(sys)),
	}, http.StatusOK)
}

// handleSystems handles GET /systems
func (s *Server) handleSystems(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{"systems": Systems()}, http.StatusOK)
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"status":  "healthy",
		"version": s.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// handleVersion handles GET /version
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"version":     s.version,
		"engine":      "distconv",
		"api_version": "v1",
	}, http.StatusOK)
}

// handleStats handles GET /stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	var (
		total ratelimit.Counters
		err   error
	)
	switch st := s.stats.(type) {
	case *ratelimit.MemoryStats:
		total = st.Total()
	case *ratelimit.RedisStats:
		total, err = st.Total(r.Context())
	default:
		s.writeError(w, r, "STATS_DISABLED", "rate limit stats are not enabled", http.StatusNotFound)
		return
	}
	if err != nil {
		s.writeError(w, r, "STATS_UNAVAILABLE", err.Error(), http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, map[string]interface{}{"total": total}, http.StatusOK)
}

func (s *Server) metadata(r *http.Request, body []byte, start time.Time) *ResponseMetadata {
	return &ResponseMetadata{
		RequestID:     RequestID(r.Context()),
		InputHash:     computeInputHash(body),
		EngineVersion: s.version,
		DurationMs:    time.Since(start).Milliseconds(),
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, code, message string, status int) {
	s.writeJSON(w, ErrorResponse{
		RequestID: RequestID(r.Context()),
		Error:     ErrorBody{Code: code, Message: message},
	}, status)
}

// writeDomainError maps an error's type to an HTTP status
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	t := apperrors.TypeOf(err)
	status := http.StatusInternalServerError
	switch t {
	case apperrors.TypeInput, apperrors.TypeParsing:
		status = http.StatusBadRequest
	case apperrors.TypeNotFound:
		status = http.StatusNotFound
	}
	if errors.Is(err, context.Canceled) {
		status = 499
	}

	message := err.Error()
	var e *apperrors.Error
	if errors.As(err, &e) {
		message = e.Message
	}
	s.writeError(w, r, string(t), message, status)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.root.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func computeInputHash(body []byte) string {
	hash := sha256.Sum256(body)
	return hex.EncodeToString(hash[:])
}
