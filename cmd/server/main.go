package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	authrepo "github.com/corveoperu/cuervo-blanco-web/internal/auth/repository"
	authservice "github.com/corveoperu/cuervo-blanco-web/internal/auth/service"
	"github.com/corveoperu/cuervo-blanco-web/internal/auth/session"
	cartcache "github.com/corveoperu/cuervo-blanco-web/internal/cart/cache"
	cartrepo "github.com/corveoperu/cuervo-blanco-web/internal/cart/repository"
	cartservice "github.com/corveoperu/cuervo-blanco-web/internal/cart/service"
	catalogrepo "github.com/corveoperu/cuervo-blanco-web/internal/catalog/repository"
	catalogservice "github.com/corveoperu/cuervo-blanco-web/internal/catalog/service"
	"github.com/corveoperu/cuervo-blanco-web/internal/checkout/publisher"
	checkoutrepo "github.com/corveoperu/cuervo-blanco-web/internal/checkout/repository"
	checkoutservice "github.com/corveoperu/cuervo-blanco-web/internal/checkout/service"
	contentrepo "github.com/corveoperu/cuervo-blanco-web/internal/content/repository"
	contentservice "github.com/corveoperu/cuervo-blanco-web/internal/content/service"
	"github.com/corveoperu/cuervo-blanco-web/internal/database"
	"github.com/corveoperu/cuervo-blanco-web/internal/httpapi"
	"github.com/corveoperu/cuervo-blanco-web/internal/inventory"
	orderrepo "github.com/corveoperu/cuervo-blanco-web/internal/order/repository"
	orderservice "github.com/corveoperu/cuervo-blanco-web/internal/order/service"
	"github.com/corveoperu/cuervo-blanco-web/internal/storage"
	"github.com/corveoperu/cuervo-blanco-web/pkg/config"
	"github.com/corveoperu/cuervo-blanco-web/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	// .env is optional, real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zapLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := database.Connect(&database.Credentials{
		Host:              cfg.PostgresHost,
		Port:              cfg.PostgresPort,
		User:              cfg.PostgresUser,
		Password:          cfg.PostgresPassword,
		DBName:            cfg.PostgresDB,
		MigrationsDirPath: cfg.MigrationsPath,
	})
	if err != nil {
		zapLogger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	if err := database.RunMigrations(db, cfg.MigrationsPath); err != nil {
		zapLogger.Fatal("failed to run migrations", zap.Error(err))
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStartup()

	mongoDB, err := cartrepo.ConnectMongoDB(startupCtx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		zapLogger.Fatal("failed to connect to mongodb", zap.Error(err))
	}
	defer mongoDB.Client().Disconnect(context.Background())

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(startupCtx).Err(); err != nil {
		zapLogger.Fatal("failed to connect to redis", zap.Error(err))
	}

	s3Client, err := storage.NewS3Client(startupCtx, cfg.AWSRegion)
	if err != nil {
		zapLogger.Fatal("failed to create s3 client", zap.Error(err))
	}
	blobs := storage.NewS3Store(s3Client, cfg.UploadBucket, cfg.AWSRegion)

	// Repositories
	productRepo := catalogrepo.NewRepository(db)
	cartRepository := cartrepo.NewMongoRepository(mongoDB)
	if err := cartrepo.CreateIndexes(startupCtx, mongoDB); err != nil {
		zapLogger.Warn("failed to create mongo indexes", zap.Error(err))
	}
	orderRepository := orderrepo.NewRepository(db)
	checkoutRepository := checkoutrepo.NewRepository(db)
	userRepository := authrepo.NewPostgresRepository(db)
	contentRepository := contentrepo.NewPostgresRepository(db)
	stock := inventory.NewPostgresStore(db)

	// Services
	catalog := catalogservice.NewCatalogService(productRepo, zapLogger)
	cart := cartservice.NewCartService(cartRepository, cartcache.NewRedisCache(redisClient), catalog, zapLogger)
	orders := orderservice.NewOrderService(orderRepository, stock, checkoutRepository, zapLogger)
	checkout := checkoutservice.NewCheckoutService(
		checkoutRepository, orderRepository, cart, catalog, stock, blobs, zapLogger)
	sessions := session.NewRedisStore(redisClient, cfg.SessionTTL)
	auth := authservice.NewAuthService(userRepository, sessions, zapLogger)
	content := contentservice.NewContentService(contentRepository, zapLogger)

	// Outbox publisher
	poller := publisher.NewOutboxPoller(checkoutRepository, zapLogger, cfg.KafkaBrokers...)
	pollerCtx, stopPoller := context.WithCancel(context.Background())
	go poller.Run(pollerCtx)

	router := httpapi.NewRouter(httpapi.Handlers{
		Auth:     httpapi.NewAuthHandler(auth),
		Catalog:  httpapi.NewCatalogHandler(catalog),
		Cart:     httpapi.NewCartHandler(cart),
		Checkout: httpapi.NewCheckoutHandler(checkout),
		Orders:   httpapi.NewOrdersHandler(orders),
		Content:  httpapi.NewContentHandler(content),
	}, auth, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zapLogger.Info("server starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down server")
	stopPoller()
	if err := poller.Close(); err != nil {
		zapLogger.Warn("failed to close kafka writer", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("server exited")
}
