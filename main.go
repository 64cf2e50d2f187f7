// File: thuere/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"thuere/config"
	"thuere/handlers"
	"thuere/middleware"
	"thuere/models"
	"thuere/routes"
	"thuere/services/availability"
	"thuere/services/polling"
	"thuere/services/selection"
	"thuere/upstream"
	"thuere/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	utils.InitCache()
	utils.InitSessionCache()

	creds := upstream.NewCredentialProvider(config.AppConfig.UpstreamAPIToken)
	client := upstream.NewClient(config.AppConfig.UpstreamBaseURL, creds, logger)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	router.Use(cors.Default())

	// services.
	availabilityService := &availability.DefaultAvailabilityService{
		Source: client,
		Cache:  utils.GetCacheClient(),
		Logger: logger,
	}
	promotionService := &selection.DefaultPromotionService{
		Source: client,
		Cache:  utils.GetCacheClient(),
		Logger: logger,
	}
	confirmer := &selection.Confirmer{
		API:     client,
		Refetch: availabilityService,
		Logger:  logger,
	}

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Re-fetch availability shortly after observed hold expiries so held
	// courts flip back to available without client-driven polling.
	holdWatcher := availability.NewWatcher(func(fieldCode, date string) {
		ctx, cancel := context.WithTimeout(rootCtx, 10*time.Second)
		defer cancel()
		if err := availabilityService.Refresh(ctx, fieldCode, date); err != nil {
			logger.Warn("hold-expiry refresh failed",
				zap.String("fieldCode", fieldCode), zap.String("date", date), zap.Error(err))
		}
	}, logger)
	availabilityService.Watcher = holdWatcher

	watchPayment := func(bookingCode string) {
		poller := polling.NewPaymentPoller(bookingCode, client.CheckPaymentStatus, polling.PaymentPollerConfig{
			Interval: time.Duration(config.AppConfig.PaymentPollInterval) * time.Second,
			OnSuccess: func(status string) {
				logger.Debug("payment status observed",
					zap.String("bookingCode", bookingCode), zap.String("status", status))
			},
			Logger: logger,
		})
		poller.Start(rootCtx)
	}

	// Assemble the handler bundle.
	handlerBundle := &routes.HandlerBundle{
		Availability: handlers.NewAvailabilityHandler(availabilityService),
		Booking: &handlers.BookingHandler{
			Avail:        availabilityService,
			Windows:      client,
			Promotions:   promotionService,
			Confirmer:    confirmer,
			Cache:        utils.GetSessionCacheClient(),
			ShopCode:     config.AppConfig.ShopCode,
			Logger:       logger,
			WatchPayment: watchPayment,
		},
		Payments:      handlers.NewPaymentHandler(client),
		Notifications: handlers.NewNotificationHandler(client),
	}
	routes.RegisterRoutes(router, handlerBundle)

	// Background notification polling, delivered to telegram when configured.
	var notificationPoller *polling.NotificationPoller
	if config.AppConfig.TelegramBotToken != "" {
		sink, err := polling.NewTelegramNotifier(config.AppConfig.TelegramBotToken, config.AppConfig.TelegramChatID)
		if err != nil {
			logger.Sugar().Fatalf("main: failed to initialize telegram notifier: %v", err)
		}
		fetch := func(ctx context.Context) (*models.NotificationList, error) {
			return client.Notifications(ctx, "", 20, 0)
		}
		notificationPoller = polling.NewNotificationPoller(
			fetch,
			sink,
			polling.NotificationPollerConfig{
				Interval: time.Duration(config.AppConfig.NotificationPollInterval) * time.Second,
				Logger:   logger,
			},
		)
		notificationPoller.Start(rootCtx)
	}

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	rootCancel()
	holdWatcher.Stop()
	if notificationPoller != nil {
		notificationPoller.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
