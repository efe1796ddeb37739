// Package http serves the tracker's web UI: a server-rendered form and ledger
// with htmx partial updates.
package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/display"
	applog "expensetracker/internal/log"
	"expensetracker/internal/middleware/security"
	"expensetracker/internal/middleware/trace"
	"expensetracker/internal/tracker"
	appweb "expensetracker/web"
)

// Server wraps http.Server with the tracker it renders.
type Server struct {
	http.Server
	templates *template.Template
	tracker   *tracker.Tracker
	formatter display.Formatter
	logger    *applog.Logger
	tracer    *trace.Middleware

	shutdownOnce sync.Once
}

type Option func(*Server)

// WithLocale selects the locale used to format dates.
func WithLocale(locale string) Option {
	return func(s *Server) {
		s.formatter = display.NewFormatter(locale)
	}
}

func WithLogger(l *applog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, tr *tracker.Tracker, opts ...Option) (*Server, error) {
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		tracker:   tr,
		formatter: display.NewFormatter(""),
		logger:    applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP),
	}
	for _, opt := range opts {
		opt(s)
	}

	t, err := template.New("").Funcs(s.templateFuncs()).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	s.templates = t

	mux := http.NewServeMux()

	sub, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}
	static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
	mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/expenses", s.handleCreate)
	mux.HandleFunc("/expenses/remove", s.handleRemoveForm)
	mux.HandleFunc("/expenses/{id}", s.handleDelete)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	s.tracer = trace.NewMiddleware(s.logger, security.ClientIP)
	s.Handler = s.tracer.Middleware(headers.Middleware(mux))

	return s, nil
}

func (s *Server) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"date": func(d core.Date) string {
			return s.formatter.Date(d.Time)
		},
		"amount": display.Amount,
	}
}

// Requests returns how many requests the server has handled.
func (s *Server) Requests() int64 {
	return s.tracer.Requests()
}

// Shutdown stops accepting requests and waits for in-flight ones. Repeated
// calls are no-ops.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.logger.InfoContext(ctx, "Shutting down HTTP server",
			applog.FieldOperation, applog.OpShutdown,
			"requests", s.Requests())
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
