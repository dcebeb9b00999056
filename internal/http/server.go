package http

import (
	"bytes"
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"expensetracker/internal/cache"
	"expensetracker/internal/log"
	"expensetracker/internal/middleware/security"
	"expensetracker/internal/middleware/trace"
	"expensetracker/internal/services"
	appweb "expensetracker/web"
)

const (
	defaultReportCacheTTL = 5 * time.Minute
	reportCacheSize       = 24
	cacheSweepInterval    = 10 * time.Minute
	staticMaxAge          = 3600
)

// Options tunes a Server. The zero value is usable.
type Options struct {
	Logger         *log.Logger
	ReportCacheTTL time.Duration
	// ExportDir receives server-side exports. Defaults to the working directory.
	ExportDir string
}

type Server struct {
	http.Server
	tracker   *services.Tracker
	templates *template.Template
	logger    *log.Logger
	tracer    *trace.Middleware
	exportDir string

	// Rendered monthly reports keyed by period, dropped on every append.
	// reportGen counts appends; a report computed under an older generation
	// is never stored. cacheMu orders Set against invalidation.
	reportCache  *cache.LRUCache[services.MonthlyReport]
	cacheManager *cache.Manager
	cacheMu      sync.Mutex
	reportGen    uint64

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, tracker *services.Tracker, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	ttl := opts.ReportCacheTTL
	if ttl <= 0 {
		ttl = defaultReportCacheTTL
	}
	exportDir := opts.ExportDir
	if exportDir == "" {
		exportDir = "."
	}

	s := &Server{
		tracker:      tracker,
		exportDir:    exportDir,
		logger:       logger.WithComponent(log.ComponentHTTP),
		reportCache:  cache.NewLRUCache[services.MonthlyReport](reportCacheSize, ttl),
		cacheManager: cache.NewManager(logger),
	}
	s.cacheManager.Register(s.reportCache)
	s.cacheManager.StartCleanup(cacheSweepInterval)

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Error("Failed parsing templates", log.FieldComponent, log.ComponentTemplate, log.FieldError, err)
	}
	s.templates = t

	mux := http.NewServeMux()

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(staticMaxAge)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/transactions", s.handleCreateTransaction)
	mux.HandleFunc("/ui/balance", s.handleBalance)
	mux.HandleFunc("/ui/transactions", s.handleTransactions)
	mux.HandleFunc("/ui/monthly-report", s.handleMonthlyReport)
	mux.Handle("/reports/monthly", security.NoStore(http.HandlerFunc(s.handleDownloadReport)))
	mux.HandleFunc("/reports/monthly/export", s.handleExportReport)

	resolver := security.NewClientIPResolver()
	s.tracer = trace.NewMiddleware(logger, resolver.ExtractClientIP)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	var handler http.Handler = security.SameOrigin(mux)
	handler = log.RequestIDMiddleware(trace.RequestID)(handler)
	handler = log.Middleware(s.logger)(handler)
	handler = s.tracer.Middleware(handler)
	handler = headers.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Metrics exposes request counters collected by the trace middleware.
func (s *Server) Metrics() trace.Metrics {
	return s.tracer.GetMetrics()
}

// Shutdown stops the cache sweeper and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// render executes a template into memory first so a failure never leaves a
// half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			log.FieldOperation, log.OpRender,
			"template", name,
			log.FieldError, err)
		http.Error(w, services.MsgGeneric, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports ready once templates are loaded and the store answers.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusServiceUnavailable)
		return
	}
	if _, err := s.tracker.ListTransactions(r.Context()); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
