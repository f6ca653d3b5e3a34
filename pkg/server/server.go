// Package server exposes layouts and workspace pane configuration over HTTP.
//
// Routes:
//
//	GET    /healthz
//	GET    /v1/layouts
//	POST   /v1/arrange                          scene JSON in, arrangement out
//	GET    /v1/workspaces
//	GET    /v1/workspaces/{key}/panes
//	PUT    /v1/workspaces/{key}/panes
//	DELETE /v1/workspaces/{key}/panes
//	POST   /v1/workspaces/{key}/panes/{action}  increase, decrease, expand, shrink
//
// POST /v1/arrange accepts ?format= (json, svg, png, pdf, dot) and ?view=
// (frames, tree) to return a rendered artifact instead of the arrangement.
//
// Errors are JSON objects with the error code and a message:
//
//	{"code": "INVALID_RATIO", "message": "main pane ratio 1.5 outside [0, 1]"}
package server

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/stacktile/pkg/errors"
	"github.com/matzehuels/stacktile/pkg/layout"
	"github.com/matzehuels/stacktile/pkg/pipeline"
	"github.com/matzehuels/stacktile/pkg/state"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// shutdownTimeout bounds graceful shutdown in [Server.ListenAndServe].
const shutdownTimeout = 5 * time.Second

// Options configures a [Server].
type Options struct {
	// Runner arranges and renders scenes. Its Store is used for workspaces
	// when Store is nil.
	Runner *pipeline.Runner
	// Store holds workspace pane configuration.
	Store state.Store
	// ResizeStep is the ratio change of expand and shrink. Zero selects
	// [layout.DefaultResizeStep].
	ResizeStep float64
	Logger     *log.Logger
}

// Server is the HTTP API.
type Server struct {
	runner *pipeline.Runner
	store  state.Store
	step   float64
	logger *log.Logger
	router chi.Router
}

// New builds the server and its routes. A nil runner gets an uncached one
// and a nil store an in-memory one.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	runner := opts.Runner
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, logger)
	}
	store := opts.Store
	if store == nil {
		store = runner.Store
	}
	if store == nil {
		store = state.NewMemoryStore()
	}
	if runner.Store == nil {
		runner.Store = store
	}
	step := opts.ResizeStep
	if step == 0 {
		step = layout.DefaultResizeStep
	}

	s := &Server{
		runner: runner,
		store:  store,
		step:   step,
		logger: logger.WithPrefix("server"),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/layouts", s.handleLayouts)
		r.Post("/arrange", s.handleArrange)

		r.Get("/workspaces", s.handleListWorkspaces)
		r.Route("/workspaces/{key}/panes", func(r chi.Router) {
			r.Get("/", s.handleGetPanes)
			r.Put("/", s.handlePutPanes)
			r.Delete("/", s.handleDeletePanes)
			r.Post("/{action}", s.handlePaneAction)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, s.logger, errNotFound(r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorBody{
			Code:    errors.ErrCodeUnsupported,
			Message: r.Method + " not allowed on " + r.URL.Path,
		})
	})
	return r
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is done.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", listener.Addr().String())
		if err := srv.Serve(listener); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
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
	return <-errCh
}
