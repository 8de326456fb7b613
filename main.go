package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/secretwall/secretwall/handlers"
	"github.com/secretwall/secretwall/internal/auth"
	"github.com/secretwall/secretwall/internal/config"
	"github.com/secretwall/secretwall/internal/database"
	"github.com/secretwall/secretwall/internal/oidc"
	"github.com/secretwall/secretwall/internal/secrets"
	"github.com/secretwall/secretwall/internal/sessions"
	"github.com/secretwall/secretwall/internal/users"
	"github.com/secretwall/secretwall/pkg/logger"
	"github.com/secretwall/secretwall/pkg/metrics"
	"github.com/secretwall/secretwall/pkg/middleware"
	"go.mongodb.org/mongo-driver/mongo"
)

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))
	defer func() { _ = logger.Sync() }()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)
	logger.Infof("config loaded: store=%s redis=%v google=%v", cfg.Store.Driver, cfg.Redis.Host != "", cfg.Google.ClientID != "")
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	health := handlers.NewHealthHandler(cfg.MongoDB.Timeout)

	// Redis is optional: it backs sessions and the shared rate limiter when reachable
	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			_ = rdb.Close()
			rdb = nil
		} else {
			logger.Infof("connected to Redis %s:%s", cfg.Redis.Host, cfg.Redis.Port)
			health.Add("redis", func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
		}
	}

	var (
		userRepo users.UserRepository
		sessRepo sessions.Repository
		mongoCli *mongo.Client
	)
	switch cfg.Store.Driver {
	case config.StoreMongo:
		mongoCli, err = database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5, time.Second)
		if err != nil {
			logger.Fatalf("failed to connect to MongoDB: %v", err)
		}
		logger.Infof("connected to MongoDB, database %s", cfg.MongoDB.Database)
		health.Add("mongodb", func(ctx context.Context) error { return database.Ping(ctx, mongoCli, cfg.MongoDB.Timeout) })

		db := mongoCli.Database(cfg.MongoDB.Database)
		mu := users.NewMongoUserRepository(db.Collection("users"))
		if err := mu.EnsureIndexes(ctx); err != nil {
			logger.Fatalf("failed to create user indexes: %v", err)
		}
		userRepo = mu
		if rdb == nil {
			ms := sessions.NewMongoRepository(db.Collection("sessions"))
			if err := ms.EnsureIndexes(ctx); err != nil {
				logger.Fatalf("failed to create session indexes: %v", err)
			}
			sessRepo = ms
		}
	case config.StoreMemory:
		logger.Warn("using in-memory user store; data is lost on restart")
		userRepo = users.NewMemoryRepository()
	}
	switch {
	case rdb != nil:
		sessRepo = sessions.NewRedisRepository(rdb, "")
	case sessRepo == nil:
		sessRepo = sessions.NewMemoryRepository()
	}

	userSvc := users.NewService(userRepo)
	manager := auth.NewManager(userSvc, sessions.NewService(sessRepo), cfg.Session.TTL)

	var google *auth.GoogleStrategy
	if cfg.Google.ClientID != "" {
		provider, err := oidc.NewGoogleProvider(ctx, cfg.Google)
		if err != nil {
			logger.Fatalf("failed to initialise Google sign-in: %v", err)
		}
		google = auth.NewGoogleStrategy(manager, provider, []byte(cfg.Session.Secret))
		logger.Infof("Google sign-in enabled, callback %s", cfg.Google.CallbackURL)
	} else {
		logger.Infof("CLIENT_ID not set; Google sign-in disabled")
	}

	var limiter gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && rdb != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			limiter = middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win)
		} else {
			limiter = middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		}
	}

	store := middleware.NewSessionStore([]byte(cfg.Session.Secret), cfg.Session.TTL, cfg.Session.Secure)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)

	r, err := handlers.NewRouter(handlers.RouterDeps{
		Auth:         manager,
		Secrets:      secrets.NewService(userRepo),
		Google:       google,
		SessionStore: store,
		CookieName:   cfg.Session.CookieName,
		AuthLimiter:  limiter,
		Health:       health,
		Metrics:      promhttp.Handler(),
	})
	if err != nil {
		logger.Fatalf("failed to build router: %v", err)
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("starting secretwall on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server shutdown: %v", err)
	}
	if mongoCli != nil {
		if err := mongoCli.Disconnect(shutdownCtx); err != nil {
			logger.Errorf("mongo disconnect: %v", err)
		}
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Errorf("redis close: %v", err)
		}
	}
}
