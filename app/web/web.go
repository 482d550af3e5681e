// Package web implements the operator UI and JSON API of the shopfloor terminal
package web

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/didip/tollbooth/v8"
	"github.com/didip/tollbooth/v8/limiter"
	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/umputun/shopfloor/app/catalog"
	"github.com/umputun/shopfloor/app/enums"
	"github.com/umputun/shopfloor/app/health"
	"github.com/umputun/shopfloor/app/progress"
	"github.com/umputun/shopfloor/app/session"
	"github.com/umputun/shopfloor/app/workorder"
)

//go:embed templates/*.html templates/partials/*.html
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Terminal is the operator station served by the UI, implemented by workorder.Terminal
type Terminal interface {
	Login(ctx context.Context, employeeNumber, workstation string) (session.EmployeeSession, error)
	Session() (session.EmployeeSession, bool)
	Catalog() *catalog.Catalog
	Pending() []progress.OrderProgress
	Active() (workorder.Run, bool)
	Confirmation() (workorder.Confirmation, bool)
	Scan(ctx context.Context, orderNumber string) (enums.ScanResult, error)
	Continue(orderNumber string) (workorder.Run, error)
	Advance() (workorder.Run, error)
	Retreat() (workorder.Run, error)
	JumpTo(index int) (workorder.Run, error)
	Pause(ctx context.Context) (progress.OrderProgress, error)
	Exit() error
	RequestFinish() (workorder.Confirmation, error)
	RequestDelete(orderNumber string) (workorder.Confirmation, error)
	RequestLogout() (workorder.Confirmation, error)
	Cancel() bool
	Confirm(ctx context.Context) (workorder.Confirmation, error)
}

// HealthChecker reports host resources
type HealthChecker interface {
	Check(ctx context.Context) health.Report
}

// Server represents the web server
type Server struct {
	terminal       Terminal
	templates      map[string]*template.Template
	baseURL        string // base URL path for reverse proxy (e.g., /shopfloor), empty for root
	version        string
	metrics        http.Handler
	health         HealthChecker
	passwordHash   string // bcrypt hash for api basic auth
	csrfProtection *http.CrossOriginProtection
	formLimiter    *limiter.Limiter
	now            func() time.Time
}

// Config holds server configuration
type Config struct {
	Terminal        Terminal
	BaseURL         string
	Version         string
	Metrics         http.Handler  // served on /metrics if set
	Health          HealthChecker // served on /api/v1/health if set
	APIPasswordHash string        // bcrypt hash protecting api and metrics, empty to disable
	FormRateLimit   float64       // max login and scan requests per second per client, 10 if not set
}

// TemplateData holds data for templates
type TemplateData struct {
	Theme        enums.Theme
	BaseURL      string
	Version      string
	CurrentYear  int
	Flash        string
	Session      *session.EmployeeSession
	Workstations []string
	Employees    []string // quick-fill employee numbers for the login form
	SampleOrders []string // quick-fill order numbers for the scanner
	Run          *workorder.Run
	Confirm      *workorder.Confirmation
	Pending      []PendingItem
}

// PendingItem is a pending record prepared for the list view
type PendingItem struct {
	progress.OrderProgress
	TotalSteps int  // 0 if the order is not in the catalog anymore
	Known      bool // order exists in the catalog and can be continued
}

// New creates a new web server
func New(cfg Config) (*Server, error) {
	if cfg.Terminal == nil {
		return nil, fmt.Errorf("web server initialization failed: terminal is required")
	}
	rateLimit := cfg.FormRateLimit
	if rateLimit <= 0 {
		rateLimit = 10
	}

	formLimiter := tollbooth.NewLimiter(rateLimit, &limiter.ExpirableOptions{DefaultExpirationTTL: time.Hour})
	formLimiter.SetIPLookup(limiter.IPLookup{Name: "RemoteAddr"})
	formLimiter.SetMessage("Too many requests, slow down")

	s := &Server{
		terminal:       cfg.Terminal,
		baseURL:        cfg.BaseURL,
		version:        cfg.Version,
		metrics:        cfg.Metrics,
		health:         cfg.Health,
		passwordHash:   cfg.APIPasswordHash,
		csrfProtection: http.NewCrossOriginProtection(),
		formLimiter:    formLimiter,
		now:            time.Now,
	}

	templates, err := s.parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("web server initialization failed: failed to parse HTML templates: %w", err)
	}
	s.templates = templates
	return s, nil
}

// Run starts the web server
func (s *Server) Run(ctx context.Context, address string) error {
	server := &http.Server{
		Addr:              address,
		Handler:           s.handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] failed to shutdown server: %v", err)
		}
	}()

	log.Printf("[INFO] starting web server on %s", address)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("web server failed: %w", err)
	}
	return nil
}

// handler returns the http.Handler with base URL wrapping applied
func (s *Server) handler() http.Handler {
	routes := s.routes()
	if s.baseURL == "" {
		return routes
	}

	mux := http.NewServeMux()
	mux.HandleFunc(s.baseURL, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, s.baseURL+"/", http.StatusMovedPermanently)
	})
	mux.Handle(s.baseURL+"/", http.StripPrefix(s.baseURL, routes))
	return mux
}

// routes returns the http.Handler with all routes configured
func (s *Server) routes() http.Handler {
	router := routegroup.New(http.NewServeMux())

	router.Use(
		rest.RealIP,
		rest.Recoverer(log.Default()),
		rest.Throttle(1000),
		rest.AppInfo("shopfloor", "umputun", s.version),
		rest.Ping,
		rest.Trace,
		rest.SizeLimit(64*1024), // 64KB max request size
		logger.New(logger.Log(log.Default()), logger.Prefix("[DEBUG]")).Handler,
	)

	router.HandleFunc("GET /{$}", s.handleIndex)

	// operator actions, form posts with redirect back to the index
	router.Group().Route(func(ui *routegroup.Bundle) {
		ui.Use(s.csrfProtection.Handler)
		ui.With(tollbooth.HTTPMiddleware(s.formLimiter)).HandleFunc("POST /login", s.handleLogin)
		ui.With(tollbooth.HTTPMiddleware(s.formLimiter)).HandleFunc("POST /scan", s.handleScan)
		ui.HandleFunc("POST /logout", s.handleLogout)
		ui.HandleFunc("POST /confirm", s.handleConfirm)
		ui.HandleFunc("POST /cancel", s.handleCancel)
		ui.HandleFunc("POST /orders/{number}/continue", s.handleContinue)
		ui.HandleFunc("POST /orders/{number}/delete", s.handleDelete)
		ui.HandleFunc("POST /step/next", s.handleNext)
		ui.HandleFunc("POST /step/prev", s.handlePrev)
		ui.HandleFunc("POST /step/{index}", s.handleJump)
		ui.HandleFunc("POST /pause", s.handlePause)
		ui.HandleFunc("POST /finish", s.handleFinish)
		ui.HandleFunc("POST /exit", s.handleExit)
		ui.HandleFunc("POST /theme", s.handleThemeToggle)
	})

	// JSON API for line dashboards and scripts
	router.Mount("/api/v1").Route(func(api *routegroup.Bundle) {
		api.Use(rest.NoCache)
		if s.passwordHash != "" {
			api.Use(s.apiAuth)
		}
		api.HandleFunc("GET /state", s.handleAPIState)
		api.HandleFunc("GET /pending", s.handleAPIPending)
		api.HandleFunc("GET /catalog", s.handleAPICatalog)
		if s.health != nil {
			api.HandleFunc("GET /health", s.handleAPIHealth)
		}
	})

	if s.metrics != nil {
		if s.passwordHash != "" {
			router.With(s.apiAuth).Handle("GET /metrics", s.metrics)
		} else {
			router.Handle("GET /metrics", s.metrics)
		}
	}

	fsys, err := fs.Sub(staticFS, "static")
	if err != nil {
		log.Printf("[ERROR] failed to create static file system: %v", err)
		router.Handle("GET /static/", http.FileServer(http.FS(staticFS)))
	} else {
		router.HandleFiles("/static/", http.FS(fsys))
	}

	return router
}

// render renders a template
func (s *Server) render(w http.ResponseWriter, page, tmplName string, data any) {
	tmpl, ok := s.templates[page]
	if !ok {
		log.Printf("[WARN] template %s not found", page)
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}

	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, tmplName, data); err != nil {
		log.Printf("[WARN] failed to execute template: %v", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("[WARN] failed to write response: %v", err)
	}
}

// parseTemplates parses all templates
func (s *Server) parseTemplates() (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template)

	funcMap := template.FuncMap{
		"url":              s.url,
		"inc":              func(i int) int { return i + 1 },
		"humanTime":        s.humanTime,
		"since":            s.since,
		"shortWorkstation": session.ShortWorkstation,
		"pathEscape":       url.PathEscape,
	}

	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templatesFS,
		"templates/base.html", "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse base template: %w", err)
	}
	templates["base.html"] = base

	return templates, nil
}

// getTheme gets the theme from cookie, light by default
func (s *Server) getTheme(r *http.Request) enums.Theme {
	cookie, err := r.Cookie("theme")
	if err != nil {
		return enums.ThemeLight
	}
	theme, err := enums.ParseTheme(cookie.Value)
	if err != nil {
		log.Printf("[WARN] invalid theme %q: %v", cookie.Value, err)
		return enums.ThemeLight
	}
	return theme
}

func (s *Server) humanTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("Jan 2, 15:04")
}

// since renders age of the timestamp in a short form
func (s *Server) since(t time.Time) string {
	d := s.now().Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// url prepends the base URL to a path for reverse proxy support
func (s *Server) url(path string) string {
	return s.baseURL + path
}

// cookiePath returns the cookie path with base URL support
func (s *Server) cookiePath() string {
	if s.baseURL == "" {
		return "/"
	}
	return s.baseURL + "/"
}

// orderHint makes "Try 001, 002 or 003" hint from catalog numbers, up to 5 of them
func orderHint(numbers []string) string {
	if len(numbers) > 5 {
		numbers = numbers[:5]
	}
	switch len(numbers) {
	case 0:
		return ""
	case 1:
		return "Try " + numbers[0]
	default:
		return "Try " + strings.Join(numbers[:len(numbers)-1], ", ") + " or " + numbers[len(numbers)-1]
	}
}
