package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/velora/storefront/internal/cart"
	"github.com/velora/storefront/internal/catalog"
	"github.com/velora/storefront/internal/checkout"
	"github.com/velora/storefront/internal/events"
	h "github.com/velora/storefront/internal/http"
	"github.com/velora/storefront/internal/repository"
)

type Config struct {
	HTTPPort string

	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDBName   string
	MigrationsPath   string

	MongoURI    string
	MongoDBName string

	RedisAddr     string
	RedisPassword string

	KafkaBrokers []string

	StripeSecretKey     string
	StripeWebhookSecret string
	PublicBaseURL       string
	Currency            string

	CatalogRefreshInterval time.Duration
	RequestTimeout         time.Duration
	ShutdownTimeout        time.Duration
}

func loadConfig() *Config {
	pgPort, err := strconv.Atoi(getEnv("POSTGRES_PORT", "5432"))
	if err != nil {
		log.Fatalf("Invalid POSTGRES_PORT: %v", err)
	}

	refreshInterval, err := time.ParseDuration(getEnv("CATALOG_REFRESH_INTERVAL", "5m"))
	if err != nil {
		log.Fatalf("Invalid CATALOG_REFRESH_INTERVAL: %v", err)
	}

	return &Config{
		HTTPPort:               getEnv("HTTP_PORT", "8080"),
		PostgresHost:           getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:           pgPort,
		PostgresUser:           getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword:       getEnv("POSTGRES_PASSWORD", "postgres"),
		PostgresDBName:         getEnv("POSTGRES_DB", "storefront"),
		MigrationsPath:         getEnv("MIGRATIONS_PATH", "./migrations"),
		MongoURI:               getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:            getEnv("MONGO_DB_NAME", "storefront"),
		RedisAddr:              getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:          getEnv("REDIS_PASSWORD", ""),
		KafkaBrokers:           strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
		StripeSecretKey:        getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret:    getEnv("STRIPE_WEBHOOK_SECRET", ""),
		PublicBaseURL:          getEnv("PUBLIC_BASE_URL", "http://localhost:3000"),
		Currency:               getEnv("CURRENCY", "pkr"),
		CatalogRefreshInterval: refreshInterval,
		RequestTimeout:         30 * time.Second,
		ShutdownTimeout:        10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	log.Println("storefront starting...")
	cfg := loadConfig()
	var wg sync.WaitGroup

	// Postgres: orders, products, reviews, banner
	creds := &repository.Credentials{
		Host:              cfg.PostgresHost,
		Port:              cfg.PostgresPort,
		User:              cfg.PostgresUser,
		Password:          cfg.PostgresPassword,
		DBName:            cfg.PostgresDBName,
		MigrationsDirPath: cfg.MigrationsPath,
	}

	repo, err := repository.NewRepository(creds)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer repo.Close()

	if err := repo.RunMigrations(creds); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	// Catalog snapshot, refreshed on a timer
	store := catalog.NewStore(repo)
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := store.Reload(startupCtx); err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}
	startupCancel()
	log.Printf("Catalog loaded: %d products", store.Len())

	refreshCtx, refreshCancel := context.WithCancel(context.Background())
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(cfg.CatalogRefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-refreshCtx.Done():
				return
			case <-ticker.C:
				if err := store.Reload(refreshCtx); err != nil {
					log.Printf("catalog reload failed, keeping previous snapshot: %v", err)
				}
			}
		}
	}()

	// MongoDB: cart ledger
	ctx := context.Background()
	mongoDB, err := cart.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer mongoDB.Client().Disconnect(context.Background())

	cartRepo := cart.NewMongoRepository(mongoDB)
	if idx, ok := cartRepo.(interface{ CreateIndexes(context.Context) error }); ok {
		if err := idx.CreateIndexes(ctx); err != nil {
			log.Printf("failed to create cart indexes: %v", err)
		}
	}
	log.Printf("Connected to MongoDB at %s", cfg.MongoURI)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()

	cartService := cart.NewService(cartRepo, cart.NewRedisCache(redisClient))

	// Checkout gateway
	sessions := checkout.NewBreakerSessions(
		checkout.NewStripeSessions(cfg.StripeSecretKey, cfg.Currency, cfg.PublicBaseURL))
	gateway := checkout.NewGateway(store, sessions, repo, cfg.Currency)

	// Kafka: paid-order events clear the session cart
	publisher := events.NewPublisher(cfg.KafkaBrokers...)
	defer publisher.Close()

	poller := events.NewPoller(cartService, cfg.KafkaBrokers...)
	pollerCtx, pollerCancel := context.WithCancel(context.Background())
	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Run(pollerCtx)
	}()

	// HTTP surface
	cartHandler := h.NewCartHandler(cartService, store, cfg.RequestTimeout)
	catalogHandler := h.NewCatalogHandler(store, repo, cfg.RequestTimeout)
	reviewsHandler := h.NewReviewsHandler(repo, cfg.RequestTimeout)
	ordersHandler := h.NewOrdersHandler(gateway, repo, cfg.RequestTimeout)
	webhookHandler := h.NewWebhookHandler(repo, publisher, cfg.StripeWebhookSecret, cfg.RequestTimeout)

	router := h.NewRouter(cartHandler, catalogHandler, reviewsHandler, ordersHandler, webhookHandler, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Storefront listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}

	refreshCancel()
	pollerCancel()

	doneChan := make(chan struct{})
	go func() {
		wg.Wait()
		close(doneChan)
	}()

	select {
	case <-doneChan:
		log.Println("background workers stopped cleanly")
	case <-shutdownCtx.Done():
		log.Println("background workers didn't stop in time")
	}

	poller.Close()
	log.Println("storefront stopped")
}
