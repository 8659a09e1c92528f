package main

import (
	"context"
	"net/http"

	analyticshandler "agrirent/internal/analytics/handler"
	analyticsrepo "agrirent/internal/analytics/repository"
	analyticssvc "agrirent/internal/analytics/service"
	bookinghandler "agrirent/internal/bookings/handler"
	bookingrepo "agrirent/internal/bookings/repository"
	bookingsvc "agrirent/internal/bookings/service"
	bookingvalidator "agrirent/internal/bookings/validator"
	equipmenthandler "agrirent/internal/equipment/handler"
	equipmentrepo "agrirent/internal/equipment/repository"
	equipmentsvc "agrirent/internal/equipment/service"
	equipmentvalidator "agrirent/internal/equipment/validator"
	paymenthandler "agrirent/internal/payments/handler"
	"agrirent/internal/payments/provider"
	paymentrepo "agrirent/internal/payments/repository"
	paymentsvc "agrirent/internal/payments/service"
	paymentvalidator "agrirent/internal/payments/validator"
	"agrirent/pkg/app"
	"agrirent/pkg/auth"
	"agrirent/pkg/config"
	"agrirent/pkg/contracts"
	"agrirent/pkg/events"
	"agrirent/pkg/middleware"

	"github.com/julienschmidt/httprouter"
)

const ServiceName = "agrirent-api"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	verifier := auth.NewVerifier(cfg.JWTSecret)
	publisher := newPublisher(cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	}()

	cfg.Log.Info("Starting AgriRent API")
	handlers := initServices(cfg, verifier, publisher)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, handlers, rateLimitKey(verifier))
	defer cfg.GracefulShutdown()
	serverApp.Run()
}

// compositeHandler mounts every domain router on the shared app router.
type compositeHandler []contracts.Handler

func (c compositeHandler) RegisterRoutes(router *httprouter.Router) {
	for _, h := range c {
		h.RegisterRoutes(router)
	}
}

func initServices(cfg *config.Config, verifier *auth.Verifier, publisher events.Publisher) contracts.Handler {
	equipmentRepo := equipmentrepo.NewMongoEquipmentRepository(cfg)
	equipmentService := equipmentsvc.NewEquipmentService(
		equipmentRepo,
		equipmentvalidator.NewEquipmentValidator(cfg.Log),
		cfg,
	)

	analyticsRepo := analyticsrepo.NewMongoAnalyticsRepository(cfg)
	analyticsService := analyticssvc.NewAnalyticsService(analyticsRepo, cfg)

	bookingRepo := bookingrepo.NewMongoBookingRepository(cfg)
	bookingService := bookingsvc.NewBookingService(
		bookingRepo,
		bookingrepo.NewBookingLockRepository(cfg),
		equipmentRepo,
		analyticsService,
		publisher,
		bookingvalidator.NewBookingValidator(cfg.Log),
		cfg,
	)

	paymentService := paymentsvc.NewPaymentService(
		paymentrepo.NewMongoPaymentRepository(cfg),
		bookingRepo,
		newProviderRegistry(cfg),
		publisher,
		paymentvalidator.NewPaymentValidator(cfg.Log),
		cfg,
	)

	seedAnalytics(cfg, analyticsService)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)
	return compositeHandler{
		equipmenthandler.NewEquipmentHandler(equipmentService, verifier, cfg.Log),
		bookinghandler.NewBookingHandler(bookingService, verifier, cfg.Log),
		paymenthandler.NewPaymentHandler(paymentService, verifier, cfg.Log),
		analyticshandler.NewAnalyticsHandler(analyticsService, verifier, cfg.Log),
	}
}

func newProviderRegistry(cfg *config.Config) provider.Registry {
	registry := provider.Registry{}

	if cfg.RazorpayKeyID != "" && cfg.RazorpayKeySecret != "" {
		razorpay := provider.NewRazorpayProvider(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
		registry[razorpay.Method()] = razorpay
		cfg.Log.Info("Razorpay provider registered")
	}

	if cfg.PayPalClientID != "" && cfg.PayPalSecret != "" {
		paypal, err := provider.NewPayPalProvider(cfg.PayPalClientID, cfg.PayPalSecret, cfg.PayPalAPIBase)
		if err != nil {
			cfg.Log.Error("Failed to initialize PayPal provider", "error", err)
		} else {
			registry[paypal.Method()] = paypal
			cfg.Log.Info("PayPal provider registered")
		}
	}

	if len(registry) == 0 {
		cfg.Log.Warn("No payment providers configured, payment endpoints will reject requests")
	}

	return registry
}

func newPublisher(cfg *config.Config) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		cfg.Log.Info("Kafka brokers not configured, domain events disabled")
		return events.NoopPublisher{}
	}
	cfg.Log.Info("Kafka publisher configured", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, ServiceName)
}

// seedAnalytics backfills zeroed rows so the dashboard lists equipment
// that has never been rented.
func seedAnalytics(cfg *config.Config, analytics analyticssvc.AnalyticsService) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnTimeout)
	defer cancel()
	if err := analytics.InitializeAll(ctx); err != nil {
		cfg.Log.Error("Analytics backfill failed", "error", err)
	}
}

// rateLimitKey buckets authenticated traffic per user and everything
// else per client IP.
func rateLimitKey(verifier *auth.Verifier) middleware.KeyExtractor {
	return func(r *http.Request) string {
		if key := verifier.RateLimitKey(r); key != "" {
			return key
		}
		return middleware.RemoteAddrExtractor(r)
	}
}
