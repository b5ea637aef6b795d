// Package server serves the escape pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/mdescape/internal/service"
	"github.com/Sumatoshi-tech/mdescape/pkg/bundle"
	"github.com/Sumatoshi-tech/mdescape/pkg/componentast"
	"github.com/Sumatoshi-tech/mdescape/pkg/config"
	"github.com/Sumatoshi-tech/mdescape/pkg/mdast"
	"github.com/Sumatoshi-tech/mdescape/pkg/observability"
)

// EscapeRequest is the body of POST /api/escape.
type EscapeRequest struct {
	Tree *mdast.Node `json:"tree"`
}

// UnescapeRequest is the body of POST /api/unescape.
type UnescapeRequest struct {
	Bundle     *bundle.Bundle `json:"bundle"`
	Translated string         `json:"translated"`
}

// UnescapeResponse is the body answered by POST /api/unescape.
type UnescapeResponse struct {
	*service.Result

	Cause string `json:"cause,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Deps holds the collaborators of the HTTP server.
type Deps struct {
	Service *service.Service
	Logger  *slog.Logger
	Tracer  trace.Tracer
	// Metrics serves /metrics. Nil leaves the route unregistered.
	Metrics http.Handler
}

// Server is the mdescape HTTP API.
type Server struct {
	httpServer *http.Server
	svc        *service.Service
	logger     *slog.Logger
	cfg        config.ServerConfig
}

// New builds a server listening on cfg.Addr().
func New(cfg config.ServerConfig, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = observability.DiscardLogger()
	}

	srv := &Server{
		svc:    deps.Service,
		logger: logger,
		cfg:    cfg,
	}

	srv.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      srv.routes(deps),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	return srv
}

// Handler returns the root handler, middleware included.
func (srv *Server) Handler() http.Handler {
	return srv.httpServer.Handler
}

func (srv *Server) routes(deps Deps) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/escape", srv.handleEscape)
	mux.HandleFunc("POST /api/unescape", srv.handleUnescape)
	mux.Handle("GET /healthz", observability.HealthHandler())
	mux.Handle("GET /readyz", observability.ReadyHandler(srv.svc.Ready))

	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics)
	}

	tracer := deps.Tracer
	if tracer == nil {
		return mux
	}

	return observability.HTTPMiddleware(tracer, srv.logger, mux)
}

// Serve accepts connections on listener until ctx is canceled, then shuts
// down gracefully within the configured timeout.
func (srv *Server) Serve(ctx context.Context, listener net.Listener) error {
	serveErr := make(chan error, 1)

	go func() {
		serveErr <- srv.httpServer.Serve(listener)
	}()

	srv.logger.InfoContext(ctx, "http server listening", "addr", listener.Addr().String())

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("serve http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), srv.cfg.ShutdownTimeout)
	defer cancel()

	srv.logger.InfoContext(ctx, "http server shutting down")

	err := srv.httpServer.Shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	return nil
}

// ListenAndServe listens on the configured address and calls Serve.
func (srv *Server) ListenAndServe(ctx context.Context) error {
	var listenConfig net.ListenConfig

	listener, err := listenConfig.Listen(ctx, "tcp", srv.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", srv.httpServer.Addr, err)
	}

	return srv.Serve(ctx, listener)
}

func (srv *Server) handleEscape(rw http.ResponseWriter, hr *http.Request) {
	var req EscapeRequest

	if !srv.decode(rw, hr, &req) {
		return
	}

	if req.Tree == nil {
		srv.writeError(rw, hr, http.StatusBadRequest, service.ErrNilTree)

		return
	}

	req.Tree.Normalize()

	result, err := srv.svc.Escape(hr.Context(), req.Tree)
	if err != nil {
		srv.writeError(rw, hr, http.StatusUnprocessableEntity, err)

		return
	}

	srv.writeJSON(rw, hr, http.StatusOK, result)
}

func (srv *Server) handleUnescape(rw http.ResponseWriter, hr *http.Request) {
	var req UnescapeRequest

	if !srv.decode(rw, hr, &req) {
		return
	}

	if req.Bundle == nil {
		srv.writeError(rw, hr, http.StatusBadRequest, service.ErrNilBundle)

		return
	}

	for _, originals := range req.Bundle.Components {
		for _, original := range originals {
			if original != nil {
				original.Normalize()
			}
		}
	}

	result, err := srv.svc.Unescape(hr.Context(), req.Bundle, req.Translated)
	if err != nil {
		srv.writeError(rw, hr, statusFor(err), err)

		return
	}

	response := UnescapeResponse{Result: result}
	if result.Cause != nil {
		response.Cause = result.Cause.Error()
	}

	srv.writeJSON(rw, hr, http.StatusOK, response)
}

// decode reads a JSON body bounded by the configured size. It answers the
// request itself and returns false on failure.
func (srv *Server) decode(rw http.ResponseWriter, hr *http.Request, target any) bool {
	body := http.MaxBytesReader(rw, hr.Body, srv.cfg.MaxBodyBytes)

	err := json.NewDecoder(body).Decode(target)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		srv.writeError(rw, hr, http.StatusRequestEntityTooLarge, err)

		return false
	}

	srv.writeError(rw, hr, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))

	return false
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, bundle.ErrUnsupportedVersion), errors.Is(err, bundle.ErrMissingRoot):
		return http.StatusBadRequest
	case componentast.IsTranslationError(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (srv *Server) writeError(rw http.ResponseWriter, hr *http.Request, status int, err error) {
	srv.writeJSON(rw, hr, status, ErrorResponse{Error: err.Error()})
}

func (srv *Server) writeJSON(rw http.ResponseWriter, hr *http.Request, status int, value any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)

	encodeErr := json.NewEncoder(rw).Encode(value)
	if encodeErr != nil {
		srv.logger.ErrorContext(hr.Context(), "failed to encode JSON response", "error", encodeErr)
	}
}
