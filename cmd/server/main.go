package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"bookstack/internal/app"
	"bookstack/internal/config"
	"bookstack/internal/server"
	"bookstack/internal/util"
	"bookstack/pkg/cache"
	"bookstack/pkg/storage"
	"bookstack/pkg/store"
	"bookstack/pkg/token"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := util.InitLogger(cfg.LogLevel)

	jwtTTL, err := config.ParseJWTTTL(cfg.JWTTTL)
	if err != nil {
		log.Fatalf("failed to parse jwt ttl: %v", err)
	}
	tokens, err := token.NewManager(cfg.JWTSecret, jwtTTL)
	if err != nil {
		log.Fatalf("failed to init token manager: %v", err)
	}

	dataStore, err := store.NewGormStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to init postgres store: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	listCache, err := cache.NewRedisListCache(redisClient, "bookstack:books:list", 0)
	if err != nil {
		log.Fatalf("failed to init list cache: %v", err)
	}

	objects, err := storage.NewMinioStore(
		cfg.MinioEndpoint,
		cfg.MinioAccessKey,
		cfg.MinioSecretKey,
		cfg.MinioBucket,
		cfg.MinioUseSSL,
	)
	if err != nil {
		log.Fatalf("failed to init object store: %v", err)
	}

	appCore, err := app.New(app.Config{
		Store:       dataStore,
		Cache:       listCache,
		Objects:     objects,
		Tokens:      tokens,
		MediaFolder: cfg.MediaFolder,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	trustedProxies, err := util.NewTrustedProxies(cfg.TrustedProxyCIDRs)
	if err != nil {
		log.Fatalf("failed to parse trusted proxies: %v", err)
	}

	httpServer, err := server.New(server.Config{
		App:            appCore,
		Redis:          redisClient,
		TrustedProxies: trustedProxies,
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
