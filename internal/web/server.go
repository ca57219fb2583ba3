package web

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/planwell/planwell/internal/catalog"
	"github.com/planwell/planwell/internal/config"
	"github.com/planwell/planwell/internal/db"
	"github.com/planwell/planwell/internal/recommend"
	"github.com/planwell/planwell/internal/rules"
	"github.com/planwell/planwell/internal/schedule"
	"github.com/planwell/planwell/internal/tracker"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// NewServer creates and configures the HTTP server for the planwell web UI.
// The catalog is hydrated from the stored course records.
func NewServer(database *sql.DB, cfg *config.Config, version, bind string, port int) (*http.Server, error) {
	raws, err := db.LoadRawCourses(database)
	if err != nil {
		return nil, err
	}
	cat := catalog.FromRawRecords(raws)

	oracle, err := rules.Load(cfg.RulesPath)
	if err != nil {
		return nil, err
	}

	opts := []schedule.Option{}
	if cfg.ValidateEnrollment {
		opts = append(opts, schedule.WithEnrollmentValidation())
	}
	if cfg.InvalidateSuggestionOnChange {
		opts = append(opts, schedule.WithSuggestionInvalidation())
	}
	if ai := recommend.NewOpenAI(cfg.OpenAIModel); ai != nil {
		opts = append(opts, schedule.WithRecommenders(ai))
	}

	h := &Handlers{
		db:       database,
		cfg:      cfg,
		catalog:  cat,
		engine:   schedule.New(cat, opts...),
		tracker:  tracker.New(oracle),
		renderer: newEmbeddedRenderer(version),
	}

	return newServerWith(h, bind, port), nil
}

// newServerWith builds the HTTP server around an existing handler set.
// Split out so tests can inject their own domain fixtures.
func newServerWith(h *Handlers, bind string, port int) *http.Server {
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		log.Fatalf("failed to create static sub-FS: %v", err)
	}

	mux := http.NewServeMux()

	// Routes using Go 1.22+ pattern syntax
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/courses", http.StatusFound)
	})
	mux.HandleFunc("GET /courses", h.HandleCourses)
	mux.HandleFunc("GET /courses/{id}", h.HandleCourseDetail)
	mux.HandleFunc("GET /schedule/{user}", h.HandleSchedule)
	mux.HandleFunc("POST /schedule/{user}/add", h.HandleScheduleAdd)
	mux.HandleFunc("POST /schedule/{user}/remove", h.HandleScheduleRemove)
	mux.HandleFunc("GET /travel", h.HandleTravel)

	// Static file server
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticSub)))

	// Wrap with security headers
	handler := securityHeaders(mux)

	return &http.Server{
		Addr:    fmt.Sprintf("%s:%d", bind, port),
		Handler: handler,
	}
}

// newEmbeddedRenderer builds the Renderer over the embedded template FS.
func newEmbeddedRenderer(version string) *Renderer {
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		log.Fatalf("failed to create template sub-FS: %v", err)
	}
	return NewRenderer(templateSub, version)
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
func Run(srv *http.Server) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Printf("planwell UI running at http://%s", srv.Addr)

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		log.Printf("WARNING: Server is binding to all interfaces and may be accessible from the network")
	}

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
