package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-gateway/errors"
	"github.com/wippyai/wasm-gateway/openapi"
)

// Config carries the HTTP surface settings.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// Swagger enables the interactive UI under /swagger/.
	Swagger bool

	// Docs feeds the OpenAPI document metadata.
	Docs openapi.Config

	// RequestTimeout bounds one request including the wait for the
	// instance lease. Zero means 60 seconds.
	RequestTimeout time.Duration
}

// Server exposes registered endpoints over HTTP: one POST route per
// function, the OpenAPI document at /openapi.json, and a health probe.
type Server struct {
	router chi.Router
	doc    *openapi.Document
	log    *zap.Logger
	addr   string
}

// NewServer builds the router for the given endpoints. Every call is
// dispatched through d, which owns the instance guard.
func NewServer(endpoints []Endpoint, d *Dispatcher, cfg Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.RequestTimeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	s := &Server{
		router: chi.NewRouter(),
		doc:    openapi.Build(Routes(endpoints), cfg.Docs),
		log:    logger,
		addr:   cfg.Addr,
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(timeout))
	s.router.Use(s.logRequests)

	for i := range endpoints {
		ep := &endpoints[i]
		s.router.Post(ep.Path, s.invoke(d, ep))
	}

	s.router.Get("/openapi.json", s.serveDocument)
	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Swagger {
		s.router.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/openapi.json"),
		))
	}

	return s
}

// Handler returns the assembled router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Document returns the OpenAPI document served at /openapi.json.
func (s *Server) Document() *openapi.Document {
	return s.doc
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.router,
	}

	done := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", s.addr))
		done <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-done:
		return err
	}
}

func (s *Server) invoke(d *Dispatcher, ep *Endpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := d.Handle(r.Context(), ep, r.Body)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) serveDocument(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.doc)
}

// writeError maps a dispatch error to an HTTP status and the standard error
// body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	kind := "internal"
	message := err.Error()

	if e, ok := err.(*errors.Error); ok {
		kind = string(e.Kind)
		switch {
		case errors.IsClientError(e):
			status = http.StatusBadRequest
		case e.Kind == errors.KindNotFound:
			status = http.StatusNotFound
		case e.Kind == errors.KindCanceled:
			status = http.StatusRequestTimeout
		}
	}

	if status >= 500 {
		s.log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err))
	}

	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"kind":    kind,
			"message": message,
		},
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
