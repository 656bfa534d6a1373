package cmd

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"nightmarket/config"
	"nightmarket/internal/handlers"
	"nightmarket/internal/services"
	"nightmarket/internal/store/pbstore"
	"nightmarket/monitoring"
	"nightmarket/security"
	"nightmarket/utils"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	pubnub "github.com/pubnub/go/v7"
	"github.com/redis/go-redis/v9"
)

func Start() error {
	app := pocketbase.New()

	cfg := config.LoadConfig()

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := utils.NewRedisClient(cfg.RedisURL, cfg.RedisPoolSize)
		if err != nil {
			return err
		}
		defer client.Close()
		redisClient = client
	} else {
		slog.Warn("REDIS_URL not set, event cache, brand lock and rate limits are disabled")
	}

	var pn *pubnub.PubNub
	if cfg.PubNubEnabled() {
		pnConfig := pubnub.NewConfigWithUserId(pubnub.UserId(cfg.PubNubUserID))
		pnConfig.PublishKey = cfg.PubNubPublishKey
		pnConfig.SubscribeKey = cfg.PubNubSubscribeKey
		pnConfig.SecretKey = cfg.PubNubSecretKey
		pn = pubnub.NewPubNub(pnConfig)
	}

	st := pbstore.New(app)

	var (
		eventCache services.EventCache
		locker     services.BrandLocker
		feed       services.AdmissionPublisher
		limiter    *security.RateLimiter
	)
	if redisClient != nil {
		eventCache = services.NewRedisEventCache(redisClient, cfg.EventCacheTTL)
		locker = services.NewRedisBrandLocker(redisClient, cfg.BrandLockTTL)
		limiter = security.NewRateLimiter(redisClient)
	}
	if pn != nil && cfg.EnableGateFeed {
		feed = services.NewGateFeed(services.NewPubNubPublisher(pn), nil)
	}

	ticketService := services.NewTicketService(st, eventCache, feed)
	eventService := services.NewEventService(st, eventCache)
	vendorService := services.NewVendorService(st, locker)
	testimonialService := services.NewTestimonialService(st)
	paymentService := services.NewPaymentService(ticketService, cfg.WebhookSecret)

	h := handlers.Handlers{
		Tickets:      handlers.NewTicketHandler(ticketService, eventService, cfg.ReferencePrefix),
		Gate:         handlers.NewGateHandler(ticketService),
		Payments:     handlers.NewPaymentHandler(paymentService),
		Vendors:      handlers.NewVendorHandler(vendorService),
		Events:       handlers.NewEventHandler(eventService),
		Testimonials: handlers.NewTestimonialHandler(testimonialService),
		Admin:        handlers.NewAdminHandler(eventService, vendorService),
	}

	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: cfg.IsDevelopment(),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.EnableMetrics {
		go monitoring.NewMonitor(st, cfg.MetricsInterval).Run(ctx)
	}
	if pn != nil && cfg.EnablePaymentNotify {
		go paymentService.Subscribe(ctx, pn, cfg.PaymentChannel)
	}

	go handleShutdown(cancel)

	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		handlers.RegisterRoutes(e.Router, h, handlers.RouteOptions{
			Limiter:     limiter,
			GateLimit:   cfg.GateRateLimit,
			ApplyLimit:  cfg.ApplyRateLimit,
			RateWindow:  cfg.RateWindow,
			Development: cfg.IsDevelopment(),
		})

		if cfg.EnableMetrics {
			e.Router.GET("/metrics", apis.WrapStdHandler(promhttp.Handler()))
		}

		e.Router.GET("/health", func(e *core.RequestEvent) error {
			if redisClient != nil {
				if err := utils.RedisHealthCheck(redisClient); err != nil {
					return e.JSON(http.StatusServiceUnavailable, map[string]string{
						"status": "unhealthy",
						"error":  err.Error(),
					})
				}
			}
			return e.JSON(http.StatusOK, map[string]string{"status": "healthy"})
		})

		log.Println("Server routes registered")

		return e.Next()
	})

	return app.Start()
}

func handleShutdown(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutdown signal received, cleaning up...")
	cancel()
}
