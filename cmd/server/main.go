package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"chatme/internal/comms"
	"chatme/internal/config"
	"chatme/internal/httpserver"
	"chatme/internal/security"
	"chatme/internal/store/mongodb"
	"chatme/internal/ws"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize database
	client, db, err := mongodb.Connect(cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer mongodb.Disconnect(client)

	if err := mongodb.EnsureIndexes(context.Background(), db); err != nil {
		log.Fatalf("failed to ensure indexes: %v", err)
	}

	// Redis is optional; without it the API runs unthrottled.
	var rdb *redis.Client
	if cfg.RedisURI != "" {
		opts, err := redis.ParseURL(cfg.RedisURI)
		if err != nil {
			log.Fatalf("invalid REDIS_URI: %v", err)
		}
		rdb = redis.NewClient(opts)
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Printf("redis unreachable, rate limiting disabled: %v", err)
			rdb = nil
		}
	}

	// Security components
	tokenSvc := security.NewTokenService(cfg.JWTSecret, time.Duration(cfg.AccessTokenMinutes)*time.Minute)
	passwordHasher := security.NewPasswordHasher(0)

	// Communications platform client
	provider, err := comms.NewStreamClient(cfg.StreamAPIKey, cfg.StreamAPISecret, cfg.StreamBaseURL)
	if err != nil {
		log.Fatalf("failed to initialize stream client: %v", err)
	}

	// Connection registry for signaling pushes
	hub := ws.NewHub()

	// Build HTTP router
	router := httpserver.NewRouter(cfg, db, rdb, hub, tokenSvc, passwordHasher, provider)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		log.Printf("Starting %s on %s\n", cfg.AppName, cfg.HTTPAddr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
