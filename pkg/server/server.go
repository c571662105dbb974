// Package server exposes a loaded DNA set over a read-only HTTP API.
//
// Routes:
//
//	GET /healthz                 liveness
//	GET /dna                     set size, slot sizes and capacity
//	GET /dna/{id}                one vector with named slots
//	GET /dna/{id}/manifest       the render manifest for the vector
//	GET /dna/{id}/preview        Graphviz SVG of the configured scene
//
// Every request that configures the scene works on its own clone, so
// requests can run concurrently.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/traitforge/pkg/buildinfo"
	"github.com/matzehuels/traitforge/pkg/configure"
	"github.com/matzehuels/traitforge/pkg/dna"
	"github.com/matzehuels/traitforge/pkg/errors"
	"github.com/matzehuels/traitforge/pkg/palette"
	"github.com/matzehuels/traitforge/pkg/render"
	"github.com/matzehuels/traitforge/pkg/scene"
)

// Config holds what the server serves.
type Config struct {
	Set          dna.Set
	Bank         dna.Bank
	Scene        *scene.Scene
	Colors       *palette.Table
	OutputPrefix string
	Logger       *log.Logger
}

// Server serves one DNA set.
type Server struct {
	cfg    Config
	logger *log.Logger
	router chi.Router
}

// New builds the server and its routes. The scene in cfg is used as a
// template and never modified.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	s := &Server{cfg: cfg, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/dna", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Get("/manifest", s.handleManifest)
			r.Get("/preview", s.handlePreview)
		})
	})
	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("serving", "addr", addr, "dna", len(s.cfg.Set))

	select {
	case err := <-errc:
		if err == http.ErrServerClosed {
			return nil
		}
		return errors.Wrap(errors.ErrCodeInternal, err, "listen on %s", addr)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

type listResponse struct {
	Count    int            `json:"count"`
	Capacity uint64         `json:"capacity"`
	Slots    map[string]int `json:"slots"`
}

type dnaResponse struct {
	ID     int            `json:"id"`
	DNA    dna.DNA        `json:"dna"`
	Slots  map[string]int `json:"slots"`
	Output string         `json:"output"`
}

type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	resp := listResponse{Count: len(s.cfg.Set), Capacity: s.cfg.Bank.Capacity(), Slots: map[string]int{}}
	for _, slot := range dna.Slots() {
		resp.Slots[slot.String()] = s.cfg.Bank.Size(slot)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, v, err := s.lookup(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp := dnaResponse{ID: id, DNA: v, Slots: map[string]int{}, Output: render.OutputPath(s.cfg.OutputPrefix, id)}
	for _, slot := range dna.Slots() {
		resp.Slots[slot.String()] = v.Get(slot)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	f, err := s.frame(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := render.WriteManifest(w, f); err != nil {
		s.logger.Error("write manifest", "id", f.ID, "err", err)
	}
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	f, err := s.frame(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	opts := render.GraphOptions{Hidden: r.URL.Query().Get("hidden") != ""}
	svg, err := render.RenderSVG(r.Context(), f.State, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

// lookup parses the id route parameter and returns the vector.
func (s *Server) lookup(r *http.Request) (int, dna.DNA, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, dna.DNA{}, errors.New(errors.ErrCodeInvalidInput, "invalid dna id %q", raw)
	}
	v, err := s.cfg.Set.At(id)
	if err != nil {
		return 0, dna.DNA{}, err
	}
	return id, v, nil
}

// frame configures a private clone of the scene for the requested vector.
func (s *Server) frame(r *http.Request) (render.Frame, error) {
	id, v, err := s.lookup(r)
	if err != nil {
		return render.Frame{}, err
	}
	if s.cfg.Scene == nil || s.cfg.Colors == nil {
		return render.Frame{}, errors.New(errors.ErrCodeUnsupported, "server has no scene loaded")
	}
	sc := s.cfg.Scene.Clone()
	if err := configure.New(sc, s.cfg.Colors, s.logger).Apply(v); err != nil {
		return render.Frame{}, err
	}
	return render.Frame{ID: id, Path: render.OutputPath(s.cfg.OutputPrefix, id), DNA: v, State: sc.Snapshot()}, nil
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeLookup:
		status = http.StatusNotFound
	case errors.ErrCodeInvalidInput:
		status = http.StatusBadRequest
	case errors.ErrCodeUnsupported:
		status = http.StatusNotImplemented
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorResponse{Error: errors.UserMessage(err), Code: errors.GetCode(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
