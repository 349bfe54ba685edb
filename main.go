// @title LocalTrip Membership API
// @version 1.0
// @description Membership, metered credits and AI concierge access for LocalTrip.
// @BasePath /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/localtrip/backend/internal/client"
	"github.com/localtrip/backend/internal/config"
	"github.com/localtrip/backend/internal/db"
	"github.com/localtrip/backend/internal/handler"
	"github.com/localtrip/backend/internal/logger"
	"github.com/localtrip/backend/internal/metrics"
	"github.com/localtrip/backend/internal/ratelimit"
	"github.com/localtrip/backend/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// database and schema
	pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	store := &db.Postgres{Pool: pool}
	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatal("failed to ensure schema", zap.Error(err))
	}

	reg := metrics.New(prometheus.DefaultRegisterer)

	// external clients
	stripeClient := client.NewStripeClient(cfg.Stripe, reg)
	slackClient := client.NewSlackClient(cfg.Slack)
	if !slackClient.IsConfigured() {
		log.Warn("slack not configured, ops notifications disabled")
	}
	contentClient := client.NewContentClient(cfg.Content)
	if !contentClient.IsConfigured() {
		log.Warn("content API not configured, concierge answers without spots")
	}
	aiClient, err := client.NewGenAIClient(ctx, cfg.AI)
	if err != nil {
		log.Warn("AI client unavailable, concierge endpoints will return 502", zap.Error(err))
	}

	var redisClient *redis.Client
	if cfg.RateLimit.RedisURL != "" {
		redisClient, err = ratelimit.NewClient(ctx, cfg.RateLimit.RedisURL)
		if err != nil {
			log.Warn("redis unavailable, AI rate limiting disabled", zap.Error(err))
		} else {
			defer func() { _ = redisClient.Close() }()
		}
	} else {
		log.Warn("REDIS_URL not set, AI rate limiting disabled")
	}

	// services
	authService, err := service.NewAuthService(cfg.OIDC, cfg.Session, cfg.Cookie, log.Named("auth"))
	if err != nil {
		log.Fatal("failed to create auth service", zap.Error(err))
	}
	membershipCookie, err := service.NewCookieConfig(cfg.Membership.CookieName, cfg.Membership.TokenTTL, cfg.Cookie)
	if err != nil {
		log.Fatal("invalid membership cookie settings", zap.Error(err))
	}

	tokens := service.NewTokenCodec(cfg.Membership.TokenSecret)
	verifier := service.NewSubscriptionVerifier(stripeClient, cfg.Stripe.Timeout, log.Named("billing"))
	directory := service.NewMembershipDirectory(store, slackClient, log.Named("membership"))
	ledger := service.NewCreditLedger(store, log.Named("ledger"))
	gate := service.NewAccessGate(tokens, verifier, directory, ledger, reg, log.Named("gate"))

	checkoutService := service.NewCheckoutService(stripeClient, directory, tokens, cfg.Stripe, cfg.Pass, cfg.Membership.TokenTTL, log.Named("checkout"))
	webhookService := service.NewBillingWebhookService(stripeClient, store, directory, ledger, cfg.Pass, slackClient, reg, log.Named("webhook"))
	chatService := service.NewChatService(gate, contentClient, aiClient, log.Named("chat"))
	itineraryService := service.NewItineraryService(gate, contentClient, aiClient, log.Named("itinerary"))

	// handlers
	authHandler := handler.NewAuthHandler(authService, cfg.OIDC.PostLoginURL, log.Named("http"))
	membershipHandler := handler.NewMembershipHandler(checkoutService, gate, ledger, membershipCookie)
	webhookHandler := handler.NewBillingWebhookHandler(webhookService)
	chatHandler := handler.NewChatHandler(chatService, itineraryService, membershipCookie.Name)

	aiRateLimit := handler.RateLimitMiddleware(nil, log)
	if redisClient != nil {
		limiter := ratelimit.NewRedisLimiter(redisClient, cfg.RateLimit.Limit, cfg.RateLimit.Window, log.Named("ratelimit"))
		aiRateLimit = handler.RateLimitMiddleware(limiter, log)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(handler.RequestLogger(log.Named("http")))
	router.Use(reg.GinMiddleware())
	router.Use(handler.CORSMiddleware(cfg.Server.CORSAllowedOrigins, true))
	router.Use(handler.IdentityMiddleware(authService))

	// health and docs
	router.GET("/ping", handler.Ping)
	router.GET("/", handler.Root)
	router.GET("/openapi.json", handler.OpenAPIDoc)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		auth.GET("/login", authHandler.Login)
		auth.GET("/callback", authHandler.Callback)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/me", handler.RequireIdentity(), authHandler.Me)

		// authenticated by Stripe signature
		api.POST("/billing/webhook", webhookHandler.Receive)
		api.POST("/billing/checkout", handler.RequireIdentity(), membershipHandler.CreateCheckout)

		membership := api.Group("/membership")
		membership.GET("/status", membershipHandler.Status)
		membership.DELETE("/token", membershipHandler.ClearToken)
		membership.POST("/checkout/complete", handler.RequireIdentity(), membershipHandler.CompleteCheckout)
		membership.POST("/sync", handler.RequireIdentity(), membershipHandler.Sync)
		membership.POST("/token", handler.RequireIdentity(), membershipHandler.AcceptToken)

		api.GET("/credits", handler.RequireIdentity(), membershipHandler.Credits)

		concierge := api.Group("/concierge", aiRateLimit)
		concierge.POST("/chat", chatHandler.Chat)
		concierge.POST("/itinerary", chatHandler.Itinerary)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
