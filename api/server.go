package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/skni-kod/kolo-rest-api/auth"
	"github.com/skni-kod/kolo-rest-api/config"
	"github.com/skni-kod/kolo-rest-api/database"
	"github.com/skni-kod/kolo-rest-api/errs"
	"github.com/skni-kod/kolo-rest-api/services"
	"github.com/skni-kod/kolo-rest-api/storage"
)

type Server struct {
	*http.Server
	startupTime time.Time
}

// ServerOptions are the collaborators of the HTTP server. Github may be nil when social login is disabled.
type ServerOptions struct {
	Config   *config.Config
	Database database.Database
	JWT      *auth.JWTService
	Github   *services.GithubClient
	Storage  storage.Storage
}

func NewServer(opts ServerOptions) (Server, error) {
	c := opts.Config
	startupTime := time.Now()

	server := &http.Server{
		Addr:         c.Address(),
		Handler:      NewRouter(opts),
		ReadTimeout:  c.ReadTimeout(),
		WriteTimeout: c.WriteTimeout(),
		IdleTimeout:  c.IdleTimeout(),
	}

	return Server{server, startupTime}, nil
}

// NewRouter builds the complete handler tree.
func NewRouter(opts ServerOptions) *chi.Mux {
	c := opts.Config
	deps := handlerDeps{
		db:      opts.Database,
		cfg:     c,
		jwt:     opts.JWT,
		github:  opts.Github,
		storage: opts.Storage,
		pager:   pager{defaultLimit: c.DefaultPageSize, maxLimit: c.MaxPageSize},
	}
	handlers := initializeHandlers(deps)
	authMiddleware := newAuthMiddleware(opts.JWT, opts.Database.UserRepo())

	chiRouter := chi.NewRouter()
	chiRouter.Use(LogInternalServerErrors)
	chiRouter.Use(HTTPLoggingMiddleware(c.LogPretty))
	chiRouter.Use(CORSCheckMiddleware(c.AcceptedOrigins))
	chiRouter.Use(cors.Handler(cors.Options{
		AllowedOrigins:   c.AcceptedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	chiRouter.Use(middleware.StripSlashes)
	chiRouter.Use(authMiddleware.authenticate)

	responder := NewResponder(log.With().Str("handlerName", "router").Logger())
	chiRouter.NotFound(func(w http.ResponseWriter, r *http.Request) {
		responder.WriteError(w, errs.NewNotFoundError("Not found"))
	})
	chiRouter.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		responder.WriteError(w, errs.NewMethodNotAllowedError(r.Method))
	})

	setupResourceRoutes(chiRouter, handlers)
	setupAuthRoutes(chiRouter, handlers)

	return chiRouter
}

func (s Server) Start(errChannel chan<- error) {
	log.Info().Msgf("Server started on: %s", s.Addr)
	errChannel <- s.ListenAndServe()
}

func (s Server) ShutdownGracefully(timeout time.Duration) {
	log.Info().Msg("Gracefully shutting down...")

	gracefullCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(gracefullCtx); err != nil {
		log.Error().Msgf("Error shutting down the server: %v", err)
	} else {
		log.Info().Msg("HttpServer gracefully shut down")
	}
}
