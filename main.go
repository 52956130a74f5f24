package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.mongodb.org/mongo-driver/mongo"

	"farmstore/internal/catalog"
	"farmstore/internal/config"
	"farmstore/internal/database"
	"farmstore/internal/handlers"
	"farmstore/internal/notifications"
	"farmstore/internal/pricing"
	"farmstore/internal/session"
	"farmstore/internal/storage"
	"farmstore/internal/telemetry"
)

func main() {
	config.Load()
	cfg := config.AppEnv

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName:  cfg.ServiceName,
		Exporter:     cfg.TraceExporter,
		OTLPEndpoint: cfg.OTLPEndpoint,
	})
	if err != nil {
		log.Fatal(err)
	}

	var redisClient *redis.Client
	if cfg.StorageDriver == "redis" || cfg.FeedDriver == "redis" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("redis unavailable: ", err)
		}
		log.Println("Redis connected to:", cfg.RedisAddr)
	}

	kv, mongoClient, err := openStorage(ctx, cfg, redisClient)
	if err != nil {
		log.Fatal(err)
	}

	currency := pricing.ParseCurrency(cfg.Currency)
	catalogClient := catalog.NewClient(cfg.APIURL, telemetry.NewHTTPClient(cfg.APITimeout), cfg.APIToken)

	feed, orderEvents := openFeed(cfg, redisClient)
	hub := notifications.NewHub(nil)
	channel := notifications.NewChannel(ctx, notifications.NewKVRepository(kv), feed, notifications.Options{
		Limit:    cfg.NotificationLogLimit,
		Currency: currency,
		Notifier: notifications.MultiNotifier{notifications.LogNotifier{}, hub},
		Presence: hub,
	})
	go hub.Run(ctx, channel.Updates())
	if err := channel.Start(ctx); err != nil {
		log.Println("[NOTIFY] [ERROR] order feed unavailable, admin alerts disabled:", err)
	}

	sessions := session.NewManager(kv, catalogClient, cfg.DeliveryFee)
	go sessions.RunSweeper(ctx, 10*time.Minute, cfg.SessionIdleTTL)

	r := gin.Default()
	handlers.Register(r, handlers.Dependencies{
		Catalog:       catalogClient,
		Sessions:      sessions,
		Notifications: channel,
		Hub:           hub,
		OrderEvents:   orderEvents,
		Currency:      currency,
		DeliveryFee:   cfg.DeliveryFee,
		Admin: handlers.AdminCredentials{
			Email:        cfg.AdminEmail,
			PasswordHash: cfg.AdminPasswordHash,
		},
		JWTSecret:      cfg.JWTSecret,
		AccessTokenTTL: cfg.AccessTokenTTL,
		CheckoutLimit:  cfg.CheckoutRatePerMin,
		SecureCookies:  cfg.SecureCookies,
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Session-ID"},
		ExposedHeaders:   []string{"X-Session-ID"},
		AllowCredentials: true,
	}).Handler(r)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           telemetry.Handler(corsHandler, cfg.ServiceName),
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutdown signal received; shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("Graceful shutdown failed:", err)
	}
	channel.Stop()
	if mongoClient != nil {
		if err := mongoClient.Disconnect(shutdownCtx); err != nil {
			log.Println("MongoDB disconnect failed:", err)
		}
	}
	if redisClient != nil {
		redisClient.Close()
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Println("tracing shutdown failed:", err)
	}
	log.Println("Server stopped cleanly")
}

func openStorage(ctx context.Context, cfg config.Config, redisClient *redis.Client) (storage.KV, *mongo.Client, error) {
	switch cfg.StorageDriver {
	case "memory":
		log.Println("[STORAGE] [WARN] using in-memory storage, carts are lost on restart")
		return storage.NewMemoryKV(), nil, nil

	case "redis":
		return storage.NewRedisKV(redisClient, cfg.ServiceName), nil, nil

	case "mongo":
		client, err := database.Connect(cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		db := client.Database(cfg.DBName)
		log.Println("MongoDB connected to:", db.Name())

		if err := database.EnsureKVIndexes(db); err != nil {
			log.Printf("kv index warning: %v", err)
		}
		return storage.NewMongoKV(db), client, nil

	default:
		kv, err := storage.NewFileKV(cfg.StorageDir)
		if err != nil {
			return nil, nil, err
		}
		return kv, nil, nil
	}
}

// openFeed picks where new-order events come from. Redis and local feeds
// are written to by this process after each confirmed checkout.
func openFeed(cfg config.Config, redisClient *redis.Client) (notifications.Feed, notifications.Publisher) {
	switch cfg.FeedDriver {
	case "redis":
		feed := notifications.NewRedisFeed(redisClient)
		return feed, feed
	case "local":
		feed := notifications.NewLocalFeed(64)
		return feed, feed
	default:
		return &notifications.SocketIOFeed{URL: cfg.SocketURL}, nil
	}
}
