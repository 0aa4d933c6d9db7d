// Package server defines the core Server struct that composes the app's main dependencies.
//
// It owns the lifecycle of:
//   - configuration
//   - logger + optional New Relic service wrapper
//   - the KV store selected by kv.backend (memory, redis or postgres)
//   - redis client / database pool backing that store
//   - background job worker server (asynq) purging expired postgres entries
//   - http.Server
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jbeeko/contacts-worker/internal/config"
	"github.com/jbeeko/contacts-worker/internal/database"
	"github.com/jbeeko/contacts-worker/internal/kv"
	"github.com/jbeeko/contacts-worker/internal/lib/job"
	"github.com/newrelic/go-agent/v3/integrations/nrredis-v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	loggerPkg "github.com/jbeeko/contacts-worker/internal/logger"
)

// RedisPingTimeout bounds the startup ping for the redis backend.
const RedisPingTimeout = 5 * time.Second

// Server is the application container that holds shared resources.
// It is not the HTTP server itself.
type Server struct {
	Config *config.Config

	Logger *zerolog.Logger

	// LoggerService optionally holds the New Relic application instance.
	LoggerService *loggerPkg.LoggerService

	// Store is the key-value backend every contact operation goes through.
	Store kv.Store

	// Redis is set for the redis backend only.
	Redis *redis.Client

	// DB is set for the postgres backend only.
	DB *database.Database

	// Job is set when job.enabled is true.
	Job *job.JobService

	httpServer *http.Server
}

// New constructs a Server and connects the configured KV backend.
//
// Unlike optional caches, the store is the system of record, so a backend
// that cannot be reached fails startup.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService) (*Server, error) {
	server := &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
	}

	switch cfg.KV.Backend {
	case config.BackendRedis:
		client, err := newRedisClient(cfg, loggerService)
		if err != nil {
			return nil, err
		}
		server.Redis = client
		server.Store = kv.NewRedisStore(client, cfg.KV.Namespace)

	case config.BackendPostgres:
		db, err := database.New(cfg, logger, loggerService)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		server.DB = db
		server.Store = kv.NewPostgresStore(db.Pool)

	default:
		server.Store = kv.NewMemoryStore()
	}

	if cfg.Job.Enabled {
		purger, ok := server.Store.(job.Purger)
		if !ok {
			return nil, fmt.Errorf("kv backend %q does not support purging", cfg.KV.Backend)
		}

		jobService := job.NewJobService(logger, cfg)
		if err := jobService.Start(purger); err != nil {
			return nil, fmt.Errorf("failed to start job service: %w", err)
		}
		server.Job = jobService
	}

	logger.Info().
		Str("backend", cfg.KV.Backend).
		Bool("jobs", cfg.Job.Enabled).
		Msg("kv store ready")

	return server, nil
}

// NewWithStore builds a Server around an existing store. Used by tests and
// tools that bring their own backend.
func NewWithStore(cfg *config.Config, logger *zerolog.Logger, store kv.Store) *Server {
	return &Server{
		Config: cfg,
		Logger: logger,
		Store:  store,
	}
}

func newRedisClient(cfg *config.Config, loggerService *loggerPkg.LoggerService) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Hooks put Redis commands into New Relic traces.
	if loggerService.GetApplication() != nil {
		client.AddHook(nrredis.NewHook(client.Options()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), RedisPingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Redis.Address, err)
	}

	return client, nil
}

// SetupHTTPServer configures the internal net/http server around handler.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      handler,
		ReadTimeout:  s.Config.Server.ReadTimeout,
		WriteTimeout: s.Config.Server.WriteTimeout,
		IdleTimeout:  s.Config.Server.IdleTimeout,
	}
}

// Start runs the HTTP server. It blocks until the server stops.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Str("backend", s.Config.KV.Backend).
		Msg("starting server")

	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests until ctx expires, then releases the
// job service, the store connections and the New Relic agent.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown HTTP server: %w", err))
		}
	}

	if s.Job != nil {
		s.Job.Stop()
	}

	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database connection: %w", err))
		}
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis client: %w", err))
		}
	}

	s.LoggerService.Shutdown()

	return errors.Join(errs...)
}
