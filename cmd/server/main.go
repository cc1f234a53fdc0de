package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"aiplatform/internal/admin"
	"aiplatform/internal/auth"
	"aiplatform/internal/handler"
	"aiplatform/internal/middleware"
	"aiplatform/internal/partner"
	"aiplatform/internal/payment"
	"aiplatform/internal/repository/postgres"
	"aiplatform/internal/subscription"
	"aiplatform/internal/withdrawal"
	"aiplatform/pkg/cache"
	"aiplatform/pkg/clock"
	"aiplatform/pkg/config"
	"aiplatform/pkg/logger"
	"aiplatform/pkg/mailer"
	"aiplatform/pkg/validator"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New("api-server")

	if err := cfg.ValidateCore(); err != nil {
		log.Fatal("Invalid configuration", map[string]interface{}{"error": err.Error()})
	}

	log.Info("Starting AI Platform API", map[string]interface{}{
		"port": cfg.Server.Port,
	})

	// Database connection
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal("Failed to connect to database", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	log.Info("Database connected", nil)

	// Redis connection
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.URL,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to Redis", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log.Info("Redis connected", nil)

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	partnerRepo := postgres.NewPartnerRepository(db)
	referralRepo := postgres.NewReferralRepository(db)
	paymentRepo := postgres.NewPaymentRequestRepository(db)
	withdrawalRepo := postgres.NewWithdrawalRequestRepository(db)
	serviceRepo := postgres.NewServiceRepository(db)
	subscriptionRepo := postgres.NewSubscriptionRepository(db)

	// Services
	clk := clock.New()

	var notifier payment.Notifier
	if cfg.Email.SMTPUsername != "" {
		notifier = mailer.New(mailer.Config{
			Host:     cfg.Email.SMTPHost,
			Port:     cfg.Email.SMTPPort,
			Username: cfg.Email.SMTPUsername,
			Password: cfg.Email.SMTPPassword,
			From:     cfg.Email.SMTPFrom,
			UseTLS:   cfg.Email.SMTPUseTLS,
		})
	}

	partnerService := partner.NewService(partnerRepo, referralRepo, cfg.App.SiteBaseURL, clk, log)
	authService := auth.NewService(userRepo, partnerRepo, partnerService, cfg.JWT.Secret, cfg.JWT.Expiration, clk, log)
	paymentService := payment.NewService(paymentRepo, userRepo, notifier, clk, log)
	withdrawalService := withdrawal.NewService(withdrawalRepo, partnerRepo, clk, log)
	subscriptionService := subscription.NewService(serviceRepo, subscriptionRepo, userRepo, clk, log)
	adminService := admin.NewService(userRepo, partnerRepo, cache.NewFromClient(redisClient), log)

	// Handlers
	val := validator.New()
	authHandler := handler.NewAuthHandler(authService, val, log)
	walletHandler := handler.NewWalletHandler(paymentService, userRepo, val, log)
	withdrawalHandler := handler.NewWithdrawalHandler(withdrawalService, partnerRepo, val, log)
	servicesHandler := handler.NewServicesHandler(subscriptionService, log)
	partnerHandler := handler.NewPartnerHandler(partnerService, log)
	adminHandler := handler.NewAdminHandler(adminService, partnerService, log)

	// Router
	r := mux.NewRouter()

	r.Use(middleware.CORS)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Recovery)
	r.Use(middleware.CorrelationID)
	r.Use(middleware.NewLoggingMiddleware(log).Log)
	r.Use(middleware.BodyLimit(1 << 20)) // 1MB global cap
	r.Use(middleware.NewRateLimiter(redisClient, 150, time.Minute).Limit)

	authMW := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Health check routes (no auth)
	r.HandleFunc("/health", healthCheck).Methods("GET")
	r.HandleFunc("/ready", readyCheck(db)).Methods("GET")

	// Public auth routes
	public := r.PathPrefix("/api/v1/auth").Subrouter()
	public.Use(middleware.NewRateLimiter(redisClient, 20, time.Minute).Limit)
	public.HandleFunc("/register", authHandler.Register).Methods("POST")
	public.HandleFunc("/login", authHandler.Login).Methods("POST")
	public.HandleFunc("/partner/apply", authHandler.PartnerApply).Methods("POST")
	public.HandleFunc("/partner/login", authHandler.PartnerLogin).Methods("POST")

	// Authenticated routes
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(authMW.Authenticate)
	api.Use(middleware.NewRateLimiter(redisClient, 60, time.Minute).Limit)

	// End-user routes
	userRoutes := api.NewRoute().Subrouter()
	userRoutes.Use(authMW.RequireRole(middleware.RoleUser, middleware.RoleAdmin))
	userRoutes.HandleFunc("/wallet", walletHandler.Balance).Methods("GET")
	userRoutes.HandleFunc("/wallet/recharges", walletHandler.SubmitRecharge).Methods("POST")
	userRoutes.HandleFunc("/wallet/recharges", walletHandler.RechargeHistory).Methods("GET")
	userRoutes.HandleFunc("/services", servicesHandler.Catalog).Methods("GET")
	userRoutes.HandleFunc("/services/{id}/subscribe", servicesHandler.Subscribe).Methods("POST")
	userRoutes.HandleFunc("/subscriptions", servicesHandler.Subscriptions).Methods("GET")

	// Marketing partner routes
	partnerRoutes := api.PathPrefix("/partner").Subrouter()
	partnerRoutes.Use(authMW.RequireRole(middleware.RolePartner))
	partnerRoutes.HandleFunc("/summary", partnerHandler.Summary).Methods("GET")
	partnerRoutes.HandleFunc("/referrals", partnerHandler.Referrals).Methods("GET")
	partnerRoutes.HandleFunc("/withdrawals", withdrawalHandler.Submit).Methods("POST")
	partnerRoutes.HandleFunc("/withdrawals", withdrawalHandler.History).Methods("GET")

	// Admin routes
	adminRoutes := api.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(authMW.RequireRole(middleware.RoleAdmin))
	adminRoutes.HandleFunc("/overview", adminHandler.Overview).Methods("GET")
	adminRoutes.HandleFunc("/users", adminHandler.Users).Methods("GET")
	adminRoutes.HandleFunc("/users/export", adminHandler.UsersCSV).Methods("GET")
	adminRoutes.HandleFunc("/partners", adminHandler.Partners).Methods("GET")
	adminRoutes.HandleFunc("/partners/export", adminHandler.PartnersCSV).Methods("GET")
	adminRoutes.HandleFunc("/partners/{id}/activate", adminHandler.ActivatePartner).Methods("POST")
	adminRoutes.HandleFunc("/partners/{id}/suspend", adminHandler.SuspendPartner).Methods("POST")
	adminRoutes.HandleFunc("/payment-requests", walletHandler.PaymentQueue).Methods("GET")
	adminRoutes.HandleFunc("/payment-requests/{id}/decision", walletHandler.DecidePayment).Methods("POST")
	adminRoutes.HandleFunc("/withdrawal-requests", withdrawalHandler.Queue).Methods("GET")
	adminRoutes.HandleFunc("/withdrawal-requests/{id}/decision", withdrawalHandler.Decide).Methods("POST")
	adminRoutes.HandleFunc("/2fa/setup", authHandler.TwoFactorSetup).Methods("POST")
	adminRoutes.HandleFunc("/2fa/verify", authHandler.TwoFactorVerify).Methods("POST")

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		log.Info("API server started", map[string]interface{}{
			"address": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down API server...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("API server forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
	}

	log.Info("API server stopped gracefully", nil)
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	_ = r
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","service":"api","timestamp":"` + time.Now().Format(time.RFC3339) + `"}`))
}

func readyCheck(db *sqlx.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = r
		if err := db.Ping(); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"not ready","reason":"database unavailable"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready","service":"api"}`))
	}
}
