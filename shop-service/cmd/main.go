package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"northberries/pkg/logger"
	"northberries/shop-service/internal/app/shop/config"
	"northberries/shop-service/internal/app/shop/handler"
	paymenthttp "northberries/shop-service/internal/app/shop/infrastructure/http"
	"northberries/shop-service/internal/app/shop/infrastructure/mail"
	"northberries/shop-service/internal/app/shop/infrastructure/messaging"
	"northberries/shop-service/internal/app/shop/processor"
	"northberries/shop-service/internal/app/shop/repository"
	"northberries/shop-service/internal/app/shop/service"
	"northberries/shop-service/internal/app/shop/util"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logger.Init("shop-service", logLevel)

	logstashAddr := os.Getenv("LOGSTASH_ADDR")
	if logstashAddr != "" {
		if err := logger.InitLogstash(logstashAddr, "shop-service", logLevel); err != nil {
			logger.Warn().Err(err).Msg("Failed to connect to Logstash, using stdout only")
		} else {
			logger.Info().Str("logstash_addr", logstashAddr).Msg("Connected to Logstash")
		}
	}

	mongoClient, err := connectMongoDB(cfg.MongoDB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(ctx); err != nil {
			logger.Error().Err(err).Msg("Error disconnecting from MongoDB")
		}
	}()
	logger.Info().
		Str("database", cfg.MongoDB.Database).
		Msg("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB.Database)

	redisClient, err := util.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()
	logger.Info().
		Str("addr", cfg.Redis.Addr).
		Msg("Connected to Redis")

	kafkaProducer := messaging.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer kafkaProducer.Close()
	logger.Info().
		Str("topic", cfg.Kafka.Topic).
		Msg("Initialized Kafka producer")

	mailSender := mail.NewSMTPSender(cfg.Mail.SMTPHost, cfg.Mail.SMTPPort, cfg.Mail.Username, cfg.Mail.Password)
	paymentProvider := paymenthttp.NewPaymentClient(cfg.Payment.BaseURL, cfg.Payment.APIKey)

	localizedValueRepo := repository.NewLocalizedValueRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	wishlistRepo := repository.NewWishlistRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	orderItemRepo := repository.NewOrderItemRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	counterRepo := repository.NewNotificationCounterRepository(db)
	paymentTypeRepo := repository.NewPaymentTypeRepository(db)
	deliveryTypeRepo := repository.NewDeliveryTypeRepository(db)

	orderConfig := service.OrderConfig{
		AdminUserID:        cfg.Shop.AdminUserID,
		AdminEmail:         cfg.Shop.AdminEmail,
		MailFrom:           cfg.Mail.From,
		Currency:           cfg.Payment.Currency,
		ConfirmationWindow: cfg.Shop.ConfirmationWindow,
	}

	localizedValueService := service.NewLocalizedValueService(localizedValueRepo, cfg.Shop.SupportedLanguages)
	notificationService := service.NewNotificationService(notificationRepo, counterRepo)
	cartService := service.NewCartService(cartRepo, wishlistRepo, productRepo)
	catalogService := service.NewCatalogService(categoryRepo, productRepo, cartRepo, wishlistRepo, localizedValueService, redisClient)
	orderService := service.NewOrderService(orderRepo, orderItemRepo, productRepo, paymentTypeRepo, deliveryTypeRepo, paymentProvider, notificationService, mailSender, kafkaProducer, orderConfig)
	paymentService := service.NewPaymentService(orderRepo, orderItemRepo, productRepo, paymentProvider, notificationService, mailSender, kafkaProducer, orderConfig)

	sweeper := processor.NewOrderSweeper(orderRepo, orderItemRepo)
	if err := sweeper.Start(context.Background(), cfg.Shop.SweeperSchedule); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start order sweeper")
	}
	defer sweeper.Stop()

	authMiddleware := handler.NewAuthMiddleware(cfg.JWT.Secret)
	catalogHandler := handler.NewCatalogHandler(catalogService, cfg.Shop.DefaultLanguage, cfg.Shop.FeaturedPerGroup)
	cartHandler := handler.NewCartHandler(cartService)
	orderHandler := handler.NewOrderHandler(orderService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	notificationHandler := handler.NewNotificationHandler(notificationService)

	router := handler.SetupRoutes(catalogHandler, cartHandler, orderHandler, paymentHandler, notificationHandler, authMiddleware)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("Starting Shop Service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Shop Service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Shop Service stopped gracefully")
}

func connectMongoDB(cfg config.MongoDBConfig) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(cfg.URI)

	var client *mongo.Client
	var err error

	for i := 0; i < 10; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, err = mongo.Connect(ctx, clientOptions)
		if err == nil {
			pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer pingCancel()

			if err = client.Ping(pingCtx, nil); err == nil {
				return client, nil
			}
		}

		logger.Warn().
			Int("attempt", i+1).
			Err(err).
			Msg("Failed to connect to MongoDB, retrying...")
		time.Sleep(3 * time.Second)
	}

	return nil, err
}
