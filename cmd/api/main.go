package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/lumiskin/lumiskin-api/internal/http/handlers"
	"github.com/lumiskin/lumiskin-api/internal/platform/mailer"
	"github.com/lumiskin/lumiskin-api/internal/ratelimit"
	"github.com/lumiskin/lumiskin-api/internal/repo/postgres"
	"github.com/lumiskin/lumiskin-api/internal/service"
	"github.com/lumiskin/lumiskin-api/pkg/auth"
	"github.com/lumiskin/lumiskin-api/pkg/config"
	"github.com/lumiskin/lumiskin-api/pkg/database"
	"github.com/lumiskin/lumiskin-api/pkg/events"
	"github.com/lumiskin/lumiskin-api/pkg/logger"
	mw "github.com/lumiskin/lumiskin-api/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Events are best-effort; the API runs without NATS.
	var eventBus events.Publisher
	if bus, err := events.NewNATSEventBus(cfg.NATS.URL); err != nil {
		logger.Warn("NATS unavailable, events disabled", "error", err)
		eventBus = events.NopEventBus{}
	} else {
		eventBus = bus
		defer bus.Close()
	}

	var limiter ratelimit.Limiter
	switch cfg.RateLimit.Backend {
	case "redis":
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Error("Invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		limiter = ratelimit.NewRedisLimiter(redis.NewClient(opts))
	default:
		limiter = ratelimit.NewPostgresLimiter(pool)
	}

	mailSvc := buildMailer(cfg.Email)
	sessions := auth.NewSessionManager(cfg.Session)

	// Repositories
	customersRepo := postgres.NewCustomersRepo(pool)
	analysesRepo := postgres.NewAnalysesRepo(pool)
	discountsRepo := postgres.NewDiscountsRepo(pool)
	referralsRepo := postgres.NewReferralsRepo(pool)
	guestsRepo := postgres.NewGuestsRepo(pool)
	streaksRepo := postgres.NewStreaksRepo(pool)
	productsRepo := postgres.NewProductsRepo(pool)

	// Services
	discountSvc := service.NewDiscountService(discountsRepo, service.HighestPercentFirst, eventBus)
	authSvc := service.NewAuthService(customersRepo, analysesRepo, discountSvc, mailSvc, eventBus)
	referralSvc := service.NewReferralService(referralsRepo, customersRepo, discountSvc, discountsRepo, mailSvc, eventBus, cfg.Referral)
	guestSvc := service.NewGuestService(guestsRepo, limiter, eventBus, cfg.Guest, cfg.RateLimit)
	streakSvc := service.NewStreakService(streaksRepo, customersRepo, analysesRepo, service.DailyStreakPolicy{}, eventBus, cfg.Streak)
	analysisSvc := service.NewAnalysisService(analysesRepo, streakSvc, eventBus)
	checkoutSvc := service.NewCheckoutService(productsRepo, discountsRepo, service.NewStripeProvider(cfg.Stripe), eventBus, cfg.Stripe)

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("api"))
	r.Use(mw.Logging)
	r.Use(mw.Recover)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(mw.Health)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/auth", handlers.NewAuthHandler(authSvc, sessions, limiter, cfg.RateLimit).Routes())
		r.Mount("/discount", handlers.NewDiscountHandler(discountSvc, sessions, limiter, cfg.RateLimit).Routes())
		r.Mount("/guest", handlers.NewGuestHandler(guestSvc, cfg.Guest, cfg.Session.Secure).Routes())
		r.Mount("/referral", handlers.NewReferralHandler(referralSvc, sessions).Routes())
		r.Mount("/skin-analysis", handlers.NewAnalysisHandler(analysisSvc, sessions).Routes())
		r.Mount("/streak", handlers.NewStreakHandler(streakSvc, sessions).Routes())
		r.Mount("/products", handlers.NewProductHandler(productsRepo).Routes())
		r.Mount("/checkout", handlers.NewCheckoutHandler(checkoutSvc, sessions).Routes())
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting API", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down API...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	// Periodic cleanup of expired guest sessions and rate-limit counters.
	g.Go(func() error {
		ticker := time.NewTicker(15 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if n, err := guestsRepo.DeleteExpired(gctx); err != nil {
					logger.Warn("Guest session cleanup failed", "error", err)
				} else if n > 0 {
					logger.Info("Cleaned up expired guest sessions", "count", n)
				}
				if n, err := limiter.CleanupExpired(gctx); err != nil {
					logger.Warn("Rate limit cleanup failed", "error", err)
				} else if n > 0 {
					logger.Info("Cleaned up expired rate limit entries", "count", n)
				}
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("API exited with error", "error", err)
		os.Exit(1)
	}
}

func buildMailer(cfg config.EmailConfig) mailer.Service {
	switch {
	case cfg.DevMode:
		return mailer.NewDevMailer()
	case cfg.MailerSendKey != "":
		return mailer.NewMailerSend(cfg.MailerSendKey, cfg.FromName, cfg.SMTPFrom)
	default:
		return mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPUser, cfg.SMTPPass)
	}
}
