package cmd

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"events-system/config"
	"events-system/handlers"
	"events-system/internal/gateway/paystack"
	"events-system/monitoring"
	"events-system/security"
	"events-system/services"
	"events-system/utils"

	_ "events-system/migrations"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	pubnub "github.com/pubnub/go"
)

func Start() error {
	app := pocketbase.New()

	// Load configuration
	cfg := config.LoadConfig()

	// Initialize Redis
	redisClient := utils.NewRedisClient(cfg.RedisURL)
	defer redisClient.Close()

	// Initialize PubNub
	pnConfig := pubnub.NewConfig()
	pnConfig.PublishKey = cfg.PubNubPublishKey
	pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
	pnConfig.SecretKey = cfg.PubNubSecretKey

	var pn *pubnub.PubNub
	if cfg.PubNubPublishKey != "" {
		pn = pubnub.NewPubNub(pnConfig)
	}

	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	paystackClient := paystack.NewClient(&paystack.ClientConfig{
		BaseURL:   cfg.PaystackBaseURL,
		SecretKey: cfg.PaystackSecretKey,
		Timeout:   cfg.GatewayTimeout,
	})

	// Initialize services
	notifyService := services.NewNotifyService(pn)
	catalogService := services.NewCatalogService(app, cfg.DefaultEventCapacity)
	ticketService := services.NewTicketService(app)
	paymentService := services.NewPaymentService(app)
	verifyService := services.NewVerifyService(app, notifyService)
	gatewayService := services.NewGatewayService(paystackClient, redisClient, cfg.VerifyCacheTTL)
	pricingService := services.NewPricingService()

	// Initialize handlers
	ticketHandler := handlers.NewTicketHandler(app, catalogService, ticketService, paymentService, verifyService, notifyService)
	paymentHandler := handlers.NewPaymentHandler(app, gatewayService, paymentService, notifyService, cfg.PaystackSecretKey)
	bookingHandler := handlers.NewBookingHandler(app, pricingService)
	eventHandler := handlers.NewEventHandler(app)

	limiter := security.NewRateLimiter(redisClient)

	// Enable migrations
	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: true,
	})

	if cfg.EnableMetrics {
		monitoring.StartMetricsServer(cfg.MetricsPort)
	}

	// Setup graceful shutdown
	go handleShutdown(cancel)

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		// Ticket reconciliation endpoints
		e.Router.POST("/api/store-ticket/", ticketHandler.StoreTicket)
		e.Router.POST("/api/verify-ticket/", ticketHandler.VerifyTicket).
			BindFunc(limiter.Limit("verify", cfg.VerifyRateLimit, cfg.VerifyRateWindow))

		// Payment endpoints
		e.Router.POST("/api/verify-payment/", paymentHandler.VerifyPayment)
		e.Router.POST("/api/paystack/webhook", paymentHandler.PaystackWebhook)

		// Booking endpoints
		e.Router.POST("/api/booking-quote/", bookingHandler.CreateQuote)
		e.Router.GET("/api/booking-quote/{quoteId}", bookingHandler.GetQuote)

		// Event catalog endpoints
		e.Router.GET("/api/events", eventHandler.ListEvents)
		e.Router.GET("/api/events/{eventId}", eventHandler.GetEvent)
		e.Router.GET("/api/events/{eventId}/stats", eventHandler.EventStats)
		e.Router.POST("/api/events", eventHandler.CreateEvent)
		e.Router.PATCH("/api/events/{eventId}", eventHandler.UpdateEvent)
		e.Router.DELETE("/api/events/{eventId}", eventHandler.DeleteEvent)

		// Health check
		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if err := utils.RedisHealthCheck(redisClient); err != nil {
				return e.JSON(503, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
			return e.JSON(200, map[string]string{"status": "healthy"})
		})

		log.Println("Server routes registered")

		slog.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)

		return e.Next()
	})

	// Start server
	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
	return nil
}

// handleShutdown handles graceful shutdown
func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
	cancel()
}
