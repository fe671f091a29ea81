package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/devfolio/portfolio-api/internal/auth"
	"github.com/devfolio/portfolio-api/internal/config"
	"github.com/devfolio/portfolio-api/internal/constants"
	"github.com/devfolio/portfolio-api/internal/middleware"
	"github.com/devfolio/portfolio-api/internal/storage"
	"github.com/devfolio/portfolio-api/internal/utils"
)

// SetupRoutes configures the routes for the application.
//
// The configured routes include:
//   - Health, version and metrics endpoints (unprotected)
//   - Uploaded images when images are kept on local disk
//   - Authentication and account endpoints under /api/auth
//   - Project CRUD under /api/projects, writes restricted to signed-in users
//   - The signed-in user's portfolio and the public portfolio of any user
//
// Route protection is handled through auth.RequireUser on the groups that need it.
func (s *Server) SetupRoutes() {
	r := chi.NewRouter()

	r.Use(corsMiddleware(s.Config.CORS))

	// Base middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recovery())
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders())
	if s.Config.Logging.RequestLog {
		r.Use(middleware.RequestLogger())
	}
	r.Use(middleware.Metrics(s.metrics))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.NotFound(w, constants.MsgRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.MethodNotAllowed(w)
	})

	// Health check, version and metrics routes (unprotected)
	r.Group(func(r chi.Router) {
		r.Get(constants.HealthPath, healthHandler(s.Db, s.Config.App.Version))

		r.Get(constants.VersionPath, func(w http.ResponseWriter, r *http.Request) {
			utils.JSON(w, http.StatusOK, map[string]string{
				"name":        s.Config.App.Name,
				"version":     s.Config.App.Version,
				"environment": s.Config.App.Environment,
			})
		})

		if s.metrics != nil {
			r.Handle(metricsPath(s.Config.Metrics), s.metrics.Handler())
		}
	})

	if local, ok := s.images.(*storage.LocalStore); ok {
		r.Handle(constants.UploadsPath+"/*", uploadsHandler(local.Dir()))
	}

	requireUser := auth.RequireUser(s.authProviders.JWTService, s.repos.userRepo)

	// Authentication and account routes
	r.Route(constants.AuthBasePath, func(r chi.Router) {
		r.Use(middleware.NoStore())

		// Public auth endpoints
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(s.authLimiter(), constants.RateLimitCategoryAuth))

			r.Post(constants.AuthSignupPath, s.Handlers.AuthHandler.Signup)
			r.Post(constants.AuthSigninPath, s.Handlers.AuthHandler.Signin)
			r.Post(constants.AuthForgotPasswordPath, s.Handlers.PasswordResetHandler.ForgotPassword)
			r.Post(constants.AuthResetPasswordPath, s.Handlers.PasswordResetHandler.ResetPassword)
		})

		// Protected auth endpoints
		r.Group(func(r chi.Router) {
			r.Use(requireUser)

			r.Get(constants.AuthMePath, s.Handlers.UserHandler.GetCurrentUser)
			r.Put(constants.AuthProfilePath, s.Handlers.UserHandler.UpdateProfile)
			r.Put(constants.AuthPasswordPath, s.Handlers.UserHandler.ChangePassword)
		})
	})

	// Project routes, reads are public
	r.Route(constants.ProjectsBasePath, func(r chi.Router) {
		r.Get("/", s.Handlers.ProjectHandler.ListProjects)
		r.Get(constants.ProjectDetailPath, s.Handlers.ProjectHandler.GetProject)

		r.Group(func(r chi.Router) {
			r.Use(requireUser)

			r.Post("/", s.Handlers.ProjectHandler.CreateProject)
			r.Put(constants.ProjectDetailPath, s.Handlers.ProjectHandler.UpdateProject)
			r.Delete(constants.ProjectDetailPath, s.Handlers.ProjectHandler.DeleteProject)
		})
	})

	// Portfolio routes
	r.Route(constants.PortfolioBasePath, func(r chi.Router) {
		r.Use(requireUser)

		r.Get("/", s.Handlers.PortfolioHandler.GetPortfolio)
		r.Put("/", s.Handlers.PortfolioHandler.UpdatePortfolio)
	})
	r.Get(constants.PublicPortfolioPath, s.Handlers.PortfolioHandler.GetPublicPortfolio)

	s.router = r
}

// GetRouter returns the configured router.
func (s *Server) GetRouter() chi.Router {
	return s.router
}

// authLimiter returns the limiter for the auth routes, or nil when rate
// limiting is disabled.
func (s *Server) authLimiter() middleware.RateLimiter {
	if s.rateLimiter == nil {
		return nil
	}
	return s.rateLimiter
}

// healthHandler reports 200 with the running version while the database
// answers and 503 otherwise.
func healthHandler(db ServerDBHealthChecker, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.HealthCheck(r.Context()); err != nil {
			log.Error().Err(err).Msg("Health check failed")
			utils.Error(w, http.StatusServiceUnavailable, constants.MsgServiceUnhealthy, nil)
			return
		}

		utils.JSON(w, http.StatusOK, map[string]string{
			"status":  "healthy",
			"version": version,
		})
	}
}

// uploadsHandler serves stored images from dir. Directory listings are
// never served.
func uploadsHandler(dir string) http.Handler {
	files := http.StripPrefix(constants.UploadsPath, http.FileServer(http.Dir(dir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			utils.NotFound(w, constants.MsgRouteNotFound)
			return
		}
		files.ServeHTTP(w, r)
	})
}

func metricsPath(cfg config.MetricsSettings) string {
	if cfg.Path == "" {
		return constants.MetricsPath
	}
	return cfg.Path
}

// corsMiddleware creates a CORS middleware for the configured origins.
// Requests from other origins pass through without CORS headers, and
// preflight requests from allowed origins are answered with 204.
//
// Parameters:
//   - cfg: allowed origins ("*" allows any) and whether credentials are allowed
//
// Returns:
//   - A middleware function that adds CORS headers to responses
func corsMiddleware(cfg config.CORSSettings) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || !originAllowed(cfg.AllowedOrigins, origin) {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			if cfg.AllowCredentials {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			if r.Method != http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			// Preflight
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID")
			w.Header().Set("Access-Control-Max-Age", strconv.Itoa(constants.CORSMaxAgeSeconds))
			w.WriteHeader(http.StatusNoContent)
		})
	}
}

func originAllowed(allowed []string, origin string) bool {
	for _, o := range allowed {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}
