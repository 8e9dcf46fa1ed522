package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/reelbase/catalog/config"
	"github.com/reelbase/catalog/handlers"
	"github.com/reelbase/catalog/logging"
	"github.com/reelbase/catalog/models"
	"github.com/reelbase/catalog/service"
	"github.com/reelbase/catalog/store"
	"github.com/reelbase/catalog/store/memory"
)

// backend is what the services need from a document store.
type backend interface {
	service.UserRepository
	service.RoleRepository
	service.VideoRepository
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// No logger yet; config decides its shape.
		logging.New("info", "production").Fatal("config", zap.Error(err))
	}
	log := logging.New(cfg.LogLevel, cfg.Environment)
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	var (
		db     backend
		health = &handlers.HealthHandler{Log: log}
	)
	switch cfg.StoreDriver {
	case config.StoreMemory:
		log.Warn("using in-memory store; data is lost on restart")
		db = memory.New()
	default:
		mongo, err := store.NewMongoDB(ctx, cfg.MongoURI, cfg.DBName, log)
		if err != nil {
			log.Fatal("mongodb", zap.Error(err))
		}
		defer func() {
			if err := mongo.Disconnect(context.Background()); err != nil {
				log.Warn("mongodb disconnect", zap.Error(err))
			}
		}()
		if err := mongo.EnsureIndexes(ctx); err != nil {
			log.Fatal("mongodb indexes", zap.Error(err))
		}
		db = mongo
		health.Store = mongo
	}

	tokenOpts := []service.TokenOption{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()
		tokenOpts = append(tokenOpts, service.WithDenylist(service.NewRedisDenylist(rdb)))
		log.Info("token revocation enabled", zap.String("redis", cfg.RedisAddr))
	} else {
		log.Info("REDIS_ADDR not set; tokens cannot be revoked before expiry")
	}

	var (
		media        service.MediaStore
		mediaHandler *handlers.MediaHandler
	)
	if cfg.S3Bucket != "" {
		s3Media, err := service.NewS3Media(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3AccessKeyID, cfg.S3SecretKey)
		if err != nil {
			log.Fatal("s3", zap.Error(err))
		}
		media = s3Media
		mediaHandler = &handlers.MediaHandler{
			Media:    s3Media,
			MaxBytes: cfg.MaxUploadMB * 1024 * 1024,
			Log:      log,
		}
	} else {
		log.Warn("AWS_S3_BUCKET not set; media uploads and s3:// playback are disabled")
	}

	tokens := service.NewTokenService(cfg.JWTSecret, cfg.TokenTTL, tokenOpts...)
	creds := service.NewCredentialStore(db, cfg.BcryptCost, log)
	guard := service.NewAccessGuard(tokens, db, log)
	catalog := service.NewCatalogQueryEngine(db, service.NewViewCounter(db), media, log)

	if cfg.AdminBootstrap() {
		admin, err := service.EnsureAdmin(ctx, creds, db, models.RegisterInput{
			Username: cfg.AdminUsername,
			Email:    cfg.AdminEmail,
			Password: cfg.AdminPassword,
		})
		if err != nil {
			log.Fatal("bootstrap admin", zap.Error(err))
		}
		log.Info("bootstrap admin ready", zap.String("userId", admin.ID.Hex()))
	}

	router := handlers.NewRouter(handlers.RouterConfig{
		Guard: guard,
		Auth: &handlers.AuthHandler{
			Accounts:  service.NewAccountService(creds, tokens, db),
			Watchlist: service.NewWatchlistManager(db, log),
			Log:       log,
		},
		Videos:      &handlers.VideosHandler{Catalog: catalog, Log: log},
		Health:      health,
		Media:       mediaHandler,
		CORSOrigins: cfg.CORSOrigins,
		Log:         log,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("server listening", zap.String("port", cfg.Port), zap.String("store", cfg.StoreDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
}
