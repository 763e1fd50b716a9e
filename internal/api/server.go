// Package api provides the HTTP API server and handlers for the CardBinder application.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/cardbinder/cardbinder-server/internal/http/response"
	"github.com/cardbinder/cardbinder-server/internal/ratelimit"
	"github.com/cardbinder/cardbinder-server/internal/service"
	"github.com/cardbinder/cardbinder-server/internal/validation"
)

// Options carries the API-facing configuration.
type Options struct {
	// AdminToken guards /api/v1/admin. Empty means open admin access,
	// which config only allows outside production.
	AdminToken string
	// ImportRatePerMinute and ImportBurst throttle the import endpoints
	// per client IP.
	ImportRatePerMinute int
	ImportBurst         int
	CORSOrigins         []string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	setService       *service.SetService
	checklistService *service.ChecklistService
	statsService     *service.StatsService
	searchService    *service.SearchService
	adminService     *service.AdminService
	validator        *validation.Validator
	importLimiter    *ratelimit.KeyedRateLimiter
	router           *chi.Mux
	logger           *slog.Logger
	opts             Options
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(sets *service.SetService, checklists *service.ChecklistService, stats *service.StatsService, search *service.SearchService, admin *service.AdminService, opts Options, logger *slog.Logger) *Server {
	if opts.ImportRatePerMinute <= 0 {
		opts.ImportRatePerMinute = 10
	}
	if opts.ImportBurst <= 0 {
		opts.ImportBurst = 3
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	s := &Server{
		setService:       sets,
		checklistService: checklists,
		statsService:     stats,
		searchService:    search,
		adminService:     admin,
		validator:        validation.New(),
		importLimiter:    ratelimit.New(float64(opts.ImportRatePerMinute)/60.0, opts.ImportBurst),
		router:           chi.NewRouter(),
		logger:           logger,
		opts:             opts,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases server-held resources.
func (s *Server) Close() {
	s.importLimiter.Stop()
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Admin-Token"},
		MaxAge:         300,
	}))
	s.router.Use(middleware.Timeout(60 * time.Second))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		// Sets and their checklists.
		r.Route("/sets", func(r chi.Router) {
			r.Post("/", s.handleCreateSet)
			r.Get("/", s.handleListSets)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSet)
				r.Patch("/", s.handleUpdateSet)
				r.Delete("/", s.handleDeleteSet)

				r.Get("/cards", s.handleListCards)
				r.Post("/cards", s.handleAddCard)
				r.Delete("/cards", s.handleDeleteCards)
				r.Get("/stats", s.handleSetStats)
				r.Get("/export", s.handleExportCSV)

				r.Post("/parallels", s.handleAddParallel)
				r.Put("/display-order", s.handleSetDisplayOrder)
				r.Post("/year", s.handleChangeYear)

				// Imports are multi-chunk writes; throttle per client IP.
				r.Group(func(r chi.Router) {
					r.Use(s.importRateLimit)
					r.Post("/import", s.handleImportChecklist)
					r.Post("/import/rainbow", s.handleImportRainbow)
				})

				r.Post("/bulk-status/preview", s.handleBulkStatusPreview)
				r.Post("/bulk-status", s.handleBulkStatusApply)
			})
		})

		// Individual cards.
		r.Patch("/cards/{id}", s.handleEditCard)
		r.Post("/cards/{id}/serial", s.handleCaptureSerial)

		// Collections.
		r.Route("/collections", func(r chi.Router) {
			r.Post("/", s.handleCreateCollection)
			r.Get("/", s.handleListCollections)
			r.Get("/{id}/stats", s.handleCollectionStats)
			r.Post("/{id}/sets/{setID}", s.handleAttachSet)
			r.Delete("/{id}/sets/{setID}", s.handleDetachSet)
		})

		// Cross-set card search.
		r.Get("/search/cards", s.handleSearchCards)

		// Admin surface.
		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireAdmin)

			r.Post("/brands", s.handleCreateBrand)
			r.Get("/brands", s.handleListBrands)
			r.Delete("/brands/{id}", s.handleDeleteBrand)

			r.Post("/product-lines", s.handleCreateProductLine)
			r.Get("/product-lines", s.handleListProductLines)
			r.Delete("/product-lines/{id}", s.handleDeleteProductLine)

			r.Post("/insert-sets", s.handleCreateInsertSetName)
			r.Get("/insert-sets", s.handleListInsertSetNames)
			r.Delete("/insert-sets/{id}", s.handleDeleteInsertSetName)

			r.Post("/users", s.handleCreateUser)
			r.Get("/users", s.handleListUsers)
			r.Post("/users/{id}/subscription", s.handleSubscriptionChange)

			r.Post("/search/reindex", s.handleReindex)
		})
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}
