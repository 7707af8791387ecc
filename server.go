package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/hako/durafmt"
	"github.com/ironstar-io/chizerolog"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/food-connect-platform/food-connect-api/api/foods"
	"github.com/food-connect-platform/food-connect-api/api/popular"
	"github.com/food-connect-platform/food-connect-api/api/requests"
	apiUpload "github.com/food-connect-platform/food-connect-api/api/upload"
	"github.com/food-connect-platform/food-connect-api/db"
	"github.com/food-connect-platform/food-connect-api/db/memory"
	"github.com/food-connect-platform/food-connect-api/db/mongo"
	"github.com/food-connect-platform/food-connect-api/env"
	"github.com/food-connect-platform/food-connect-api/upload"
	"github.com/food-connect-platform/food-connect-api/upload/s3"
	"github.com/food-connect-platform/food-connect-api/util"
)

// livenessMessage is the plain-text body of the root route
const livenessMessage = "Food Connect is Running"

var defaultAllowedOrigins = []string{
	"http://localhost:5173",
	"https://food-connect-platform.web.app",
	"https://food-connect-platform.firebaseapp.com",
}

// APIServer is a struct that bundles together the various server-wide
// resources used at runtime that each have
// a lifecycle of initialization, connection, and disconnection
type APIServer struct {
	dbProvider db.Provider
	// nil when uploads are not configured
	uploadProvider upload.Provider
	logger         zerolog.Logger

	allowedOrigins  []string
	maxBodyBytes    int64
	shutdownTimeout time.Duration
}

// NewAPIServer initializes the struct and all constituent components
func NewAPIServer(logger zerolog.Logger) (*APIServer, error) {
	dbProvider, err := newDBProvider(logger)
	if err != nil {
		return nil, err
	}

	var uploadProvider upload.Provider
	if s3.Configured() {
		s3Provider, err := s3.NewProvider(logger)
		if err != nil {
			return nil, err
		}
		uploadProvider = s3Provider
	} else {
		logger.Info().Msg("UPLOAD_S3_BUCKET not set; image uploads are disabled")
	}

	maxBodySize, err := env.GetBytesEnv("max request body size", "REQUEST_MAX_BODY_SIZE", datasize.MB)
	if err != nil {
		return nil, err
	}

	shutdownTimeout, err := env.GetDurationEnv("shutdown timeout", "SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}

	return &APIServer{
		dbProvider:      dbProvider,
		uploadProvider:  uploadProvider,
		logger:          logger,
		allowedOrigins:  env.GetListEnv("CORS_ALLOWED_ORIGINS", defaultAllowedOrigins),
		maxBodyBytes:    int64(maxBodySize.Bytes()),
		shutdownTimeout: shutdownTimeout,
	}, nil
}

func newDBProvider(logger zerolog.Logger) (db.Provider, error) {
	switch driver := env.GetEnvOrDefault("DB_PROVIDER", "mongo"); driver {
	case "mongo":
		return mongo.NewProvider(logger)
	case "memory":
		logger.Warn().Msg("using the in-memory database; data is lost on exit")
		return memory.NewProvider(), nil
	default:
		return nil, fmt.Errorf("unknown DB_PROVIDER '%s' (expected 'mongo' or 'memory')", driver)
	}
}

// Connect connects all constituent components
func (a *APIServer) Connect(ctx context.Context) error {
	a.logger.Info().Msg("initializing database provider")
	err := a.dbProvider.Connect(ctx)
	if err != nil {
		a.logger.Error().Err(err).Msg("could not connect to the database")
		return err
	}
	a.logger.Info().Msg("successfully connected to and pinged the database")

	return nil
}

// Disconnect disconnects all constituent components
func (a *APIServer) Disconnect(ctx context.Context) error {
	err := a.dbProvider.Disconnect(ctx)
	if err != nil {
		a.logger.Error().Err(err).Msg("could not disconnect from the database")
		return err
	}
	a.logger.Info().Msg("disconnected from the database")

	return nil
}

// Serve runs the main API server until it's cancelled for some reason,
// in which case it attempts to gracefully shutdown.
// This function blocks.
func (a *APIServer) Serve(ctx context.Context, port int) {
	startedAt := time.Now()
	router := a.routes()
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Fatal().Err(err).Int("port", port).Msg("could not listen")
		}
	}()
	a.logger.Info().Int("port", port).Msg("Food Connect server is running")

	<-ctx.Done()
	a.logger.Info().Msg("API server stopped")

	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		a.logger.Fatal().Err(err).Msg("API server shutdown failed")
	}
	a.logger.Info().
		Str("uptime", durafmt.Parse(time.Since(startedAt)).LimitFirstN(2).String()).
		Msg("API server exited properly")
}

func (a *APIServer) routes() *chi.Mux {
	router := chi.NewRouter()
	router.Use(
		middleware.Recoverer,                          // Recover from panics without crashing the server
		hlog.NewHandler(a.logger),                     // Make the logger available to handlers
		chizerolog.LoggerMiddleware(&a.logger),        // Log API request calls
		middleware.RedirectSlashes,                    // Redirect slashes to no slash URL versions
		render.SetContentType(render.ContentTypeJSON), // Set content-type headers to application/json
		middleware.Compress(5),                        // Compress results, mostly json
		middleware.NoCache,                            // Prevent clients from caching the results
		a.corsMiddleware(),                            // Create cors middleware from go-chi/cors
	)

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(livenessMessage))
	})

	// Can be used for health checks
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// JSON resources share the request body limit
	router.Group(func(r chi.Router) {
		r.Use(util.LimitBody(a.maxBodyBytes))

		r.Mount("/foods", foods.Routes(a.dbProvider))
		r.Get("/foods-available", foods.GetAvailable(a.dbProvider))
		r.Mount("/requests", requests.Routes(a.dbProvider))
		r.Mount("/popular", popular.Routes(a.dbProvider))
	})

	if a.uploadProvider != nil {
		router.Mount("/upload", apiUpload.Routes(a.uploadProvider))
	}

	return router
}

// corsMiddleware applies the single allow-list of browser origins
func (a *APIServer) corsMiddleware() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   a.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
