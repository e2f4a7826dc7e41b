// Package dashboard serves the units dashboard API over HTTP. Every backend
// result is returned both as JSON with nested JSON strings decoded and as
// the prettified text the dashboard displays.
package dashboard

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"pkt.systems/unitsctl/internal/rpc"
)

// DefaultMaxUpload caps multipart bodies.
const DefaultMaxUpload = 32 << 20

// Backend is the rpc surface the dashboard exposes.
type Backend interface {
	LoadDriver(ctx context.Context, name, version string, binary []byte) (*rpc.LoadDriverResponse, error)
	UnloadDriver(ctx context.Context, name, version string) (*rpc.UnloadDriverResponse, error)
	ListResolver(ctx context.Context) (*rpc.ListResolverResponse, error)
	Bind(ctx context.Context, req rpc.BindRequest) (*rpc.BindResponse, error)
	Unbind(ctx context.Context, path string) (*rpc.UnbindResponse, error)
	Execute(ctx context.Context, req rpc.ExecutionRequest, md map[string]string) (*rpc.ExecutionResponse, error)
	Submit(ctx context.Context, name, version string, binary []byte) (*rpc.SubmitProgramResponse, error)
	ListPrograms(ctx context.Context) (*rpc.ListProgramResponse, error)
	DriverDetails(ctx context.Context) (*rpc.DriverDetailsResponse, error)
}

// Server routes dashboard requests to a Backend.
type Server struct {
	backend   Backend
	log       logr.Logger
	domain    string
	maxUpload int64
	router    *mux.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l logr.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithUnitDomain sets the domain used to build unit ids.
func WithUnitDomain(domain string) Option {
	return func(s *Server) { s.domain = domain }
}

// WithMaxUpload overrides DefaultMaxUpload.
func WithMaxUpload(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// New builds the router.
func New(b Backend, opts ...Option) *Server {
	s := &Server{
		backend:   b,
		log:       logr.Discard(),
		domain:    "myunits",
		maxUpload: DefaultMaxUpload,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := mux.NewRouter()
	r.Use(s.logRequests)
	r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/drivers", s.listDrivers).Methods(http.MethodGet)
	api.HandleFunc("/drivers", s.loadDriver).Methods(http.MethodPost)
	api.HandleFunc("/drivers/{name}/{version}", s.unloadDriver).Methods(http.MethodDelete)
	api.HandleFunc("/bindings", s.listBindings).Methods(http.MethodGet)
	api.HandleFunc("/bindings", s.bind).Methods(http.MethodPost)
	api.HandleFunc("/bindings", s.unbind).Methods(http.MethodDelete)
	api.HandleFunc("/programs", s.listPrograms).Methods(http.MethodGet)
	api.HandleFunc("/programs", s.submitProgram).Methods(http.MethodPost)
	api.HandleFunc("/execute", s.execute).Methods(http.MethodPost)
	api.HandleFunc("/prettify", s.prettify).Methods(http.MethodPost)
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info("dashboard listening", "addr", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(rpc.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(rpc.RequestIDHeader, id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		s.log.V(1).Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"request_id", id,
			"elapsed", time.Since(start).String())
	})
}
