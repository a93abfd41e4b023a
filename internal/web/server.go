package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tristan-derez/league-skin-picker/internal/dispatch"
	"github.com/tristan-derez/league-skin-picker/internal/selection"
	"github.com/tristan-derez/league-skin-picker/internal/skins"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Dispatcher installs a selected skin.
type Dispatcher interface {
	Dispatch(ctx context.Context, display, skin string) (dispatch.Result, error)
}

// Selection is the published champion and its change feed.
type Selection interface {
	Snapshot() selection.Published
	Subscribe() (<-chan selection.Published, func())
}

// Catalog rebuilds the skin index and metadata from disk.
type Catalog interface {
	Reload(ctx context.Context) (champions int, err error)
}

// Images locates cached splash art.
type Images interface {
	ImagePath(id int) string
}

// Status reports the watcher phase and catalog size for health checks.
type Status interface {
	PhaseName() string
	Champions() int
}

type Deps struct {
	Selection  Selection
	Metadata   *skins.MetadataHolder
	Dispatcher Dispatcher
	Catalog    Catalog
	Images     Images
	Status     Status
}

type Server struct {
	deps       Deps
	httpServer *http.Server
}

func New(addr string, deps Deps) *Server {
	s := &Server{deps: deps}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Routes returns the page, the JSON API and the websocket feed.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealthz)
	r.Get("/ws", s.handleWebsocket)

	r.Route("/api", func(r chi.Router) {
		r.Get("/current_data", s.handleCurrentData)
		r.Post("/select_skin", s.handleSelectSkin)
		r.Post("/catalog/reload", s.handleCatalogReload)
		r.Get("/images/{id}", s.handleImage)
	})
	return r
}

// ListenAndServe binds the address first so a port in use is reported before
// the watcher opens a browser on it.
func (s *Server) ListenAndServe() (<-chan error, error) {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	slog.Info("web server listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	return errCh, nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
