package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/Clark-Hu/movie-score-api/internal/auth"
	"github.com/Clark-Hu/movie-score-api/internal/config"
	"github.com/Clark-Hu/movie-score-api/internal/domain"
	"github.com/Clark-Hu/movie-score-api/internal/service"
	"github.com/Clark-Hu/movie-score-api/internal/store"
)

// HealthChecker reports whether backing storage is reachable and how its
// connection pool is used.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
	Stats() store.PoolStats
}

// MovieService is the movie use-case surface consumed by handlers.
type MovieService interface {
	FindAll(ctx context.Context, title string, page domain.PageRequest) (domain.Page[domain.Movie], error)
	FindByID(ctx context.Context, id int64) (domain.Movie, error)
	Insert(ctx context.Context, in service.MovieInput) (domain.Movie, error)
	Update(ctx context.Context, id int64, in service.MovieInput) (domain.Movie, error)
	Delete(ctx context.Context, id int64) error
}

// ScoreService records scores.
type ScoreService interface {
	SaveScore(ctx context.Context, principal auth.Principal, in service.ScoreInput) (domain.Movie, error)
}

// UserService resolves and registers users.
type UserService interface {
	Authenticated(ctx context.Context, principal auth.Principal) (domain.User, error)
	Login(ctx context.Context, username, password string) (auth.Token, error)
	Insert(ctx context.Context, in service.UserInput) (domain.User, error)
}

// TokenParser validates bearer tokens.
type TokenParser interface {
	Parse(raw string) (auth.Principal, error)
}

// Deps groups the collaborators the server routes requests to.
type Deps struct {
	Health HealthChecker
	Movies MovieService
	Scores ScoreService
	Users  UserService
	Tokens TokenParser
}

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	cfg      config.Config
	health   HealthChecker
	movies   MovieService
	scores   ScoreService
	users    UserService
	tokens   TokenParser
	validate *validator.Validate
	logger   *slog.Logger
	router   chi.Router
	httpSrv  *http.Server
}

// New constructs the HTTP server with base middleware and routes.
func New(cfg config.Config, deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "http")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	s := &Server{
		cfg:      cfg,
		health:   deps.Health,
		movies:   deps.Movies,
		scores:   deps.Scores,
		users:    deps.Users,
		tokens:   deps.Tokens,
		validate: newValidator(),
		logger:   logger,
		router:   r,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	admin := s.requireAuthority(domain.RoleAdmin)

	s.router.Get("/healthz", s.handleHealthz)
	s.router.Post("/oauth2/token", s.handleToken)

	s.router.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Route("/movies", func(r chi.Router) {
			r.Get("/", s.handleListMovies)
			r.With(admin).Post("/", s.handleCreateMovie)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetMovie)
				r.With(admin).Put("/", s.handleUpdateMovie)
				r.With(admin).Delete("/", s.handleDeleteMovie)
			})
		})

		r.With(s.requireAuthority(domain.RoleClient, domain.RoleAdmin)).Put("/scores", s.handleSaveScore)

		r.Route("/users", func(r chi.Router) {
			r.With(s.requireAuthority()).Get("/me", s.handleCurrentUser)
			r.With(admin).Post("/", s.handleCreateUser)
		})
	})
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start boots the HTTP server and blocks until ctx is cancelled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeoutSecs) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", s.httpSrv.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if s.health == nil {
		s.respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Storage not configured")
		return
	}
	if err := s.health.HealthCheck(ctx); err != nil {
		s.logger.Warn("health check failed", "error", err)
		s.respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Storage unreachable")
		return
	}
	stats := s.health.Stats()
	s.respondJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Pool: poolResponse{
			TotalConns:    stats.TotalConns,
			IdleConns:     stats.IdleConns,
			AcquiredConns: stats.AcquiredConns,
			MaxConns:      stats.MaxConns,
		},
	})
}

type healthResponse struct {
	Status string       `json:"status"`
	Pool   poolResponse `json:"pool"`
}

type poolResponse struct {
	TotalConns    int32 `json:"totalConns"`
	IdleConns     int32 `json:"idleConns"`
	AcquiredConns int32 `json:"acquiredConns"`
	MaxConns      int32 `json:"maxConns"`
}
