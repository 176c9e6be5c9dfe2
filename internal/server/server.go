package server

import (
	"fmt"
	"net"
	"net/http"
	"time"

	"affiliate-market/internal/config"
	"affiliate-market/internal/database"
	"affiliate-market/internal/imagehost"
	custommiddleware "affiliate-market/internal/middleware"
	"affiliate-market/internal/repository"
	"affiliate-market/internal/service"
	"affiliate-market/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     database.Service
	redis  *redis.Client
}

// NewRedisClient builds the client backing the rate limiter
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewServer wires repositories, services and handlers over the shared connections.
// The server owns db and redisClient from here on and closes them in Close.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	db database.Service,
	redisClient *redis.Client,
	auth service.AuthService,
	uploader imagehost.Uploader,
) *Server {
	router := chi.NewRouter()

	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.CORS, !cfg.Server.IsProduction()))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := db.Health(r.Context())
		status := http.StatusOK
		if health["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		if cfg.Server.IsProduction() {
			delete(health, "error")
		}
		custommiddleware.RespondWithJSON(w, status, health)
	})

	// Initialize repositories
	productRepo := repository.NewProductRepository(db.DB())
	storeRepo := repository.NewStoreRepository(db.DB())
	categoryRepo := repository.NewCategoryRepository(db.DB())
	clickRepo := repository.NewClickRepository(db.DB())

	// Initialize services
	catalogService := service.NewCatalogService(productRepo, categoryRepo, storeRepo)
	clickService := service.NewClickService(productRepo, clickRepo, logger)
	adminService := service.NewAdminService(productRepo, storeRepo, categoryRepo, clickRepo, uploader, logger)

	// Initialize handlers
	exposeErrors := !cfg.Server.IsProduction()
	productHandler := transport.NewProductHandler(catalogService, clickService, logger, exposeErrors)
	storeHandler := transport.NewStoreHandler(catalogService, logger, exposeErrors)
	adminHandler := transport.NewAdminHandler(auth, adminService, logger, exposeErrors)

	apiLimiter := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.Requests,
		Window:            cfg.RateLimit.Window,
		KeyPrefix:         "ratelimit:api",
	}, logger)
	clickLimiter := custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.ClickRequests,
		Window:            cfg.RateLimit.ClickWindow,
		KeyPrefix:         "ratelimit:click",
	}, logger)

	// Register routes
	router.Group(func(r chi.Router) {
		r.Use(apiLimiter)

		productHandler.RegisterRoutes(r, clickLimiter)
		storeHandler.RegisterRoutes(r)
		adminHandler.RegisterRoutes(r,
			custommiddleware.AuthMiddleware(auth, logger),
			custommiddleware.RequireAdmin(logger),
		)
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		custommiddleware.RespondWithError(w, http.StatusNotFound, "route not found")
	})

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}

	return server
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
