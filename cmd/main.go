package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/finalxcard/invest-api/internal/auth"
	"github.com/finalxcard/invest-api/internal/config"
	"github.com/finalxcard/invest-api/internal/db"
	"github.com/finalxcard/invest-api/internal/handlers"
	"github.com/finalxcard/invest-api/internal/logger"
	"github.com/finalxcard/invest-api/internal/middleware"
	"github.com/finalxcard/invest-api/internal/repository"
	"github.com/finalxcard/invest-api/internal/scheduler"
	"github.com/finalxcard/invest-api/internal/services"
)

func main() {
	// .env dosyasını yükle
	if err := godotenv.Load(); err != nil {
		stdlog.Println(".env dosyası bulunamadı, ortam değişkenlerinden okunacak.")
	}

	// config yükle
	cfg := config.LoadConfig()

	// logger başlat
	logger.Init(cfg.AppEnv)

	// JWT imzalama anahtarı
	auth.Init(cfg.JWTSecret)

	log.Info().
		Str("environment", cfg.AppEnv).
		Str("port", cfg.Port).
		Msg("🚀 Yatırım API'si başlatıldı")

	// Database bağlantısı
	database, err := db.Connect(cfg.GetDSN())
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Veritabanı bağlantısı başarısız")
	}
	defer database.Close()

	// Repository katmanı
	userRepo := repository.NewUserRepository(database)
	packageRepo := repository.NewPackageRepository(database)
	investmentRepo := repository.NewInvestmentRepository(database)
	referralRepo := repository.NewReferralRepository(database)
	ledgerRepo := repository.NewLedgerRepository(database)
	bonusRepo := repository.NewBonusRepository(database)

	// Service katmanı
	txRunner := db.NewRunner(database)
	catalogService := services.NewCatalogService(packageRepo)
	bonusService := services.NewBonusService(txRunner, userRepo, bonusRepo, ledgerRepo, cfg)
	investmentService := services.NewInvestmentService(txRunner, userRepo, investmentRepo, ledgerRepo, catalogService, bonusService, cfg)
	treeService := services.NewTreeService(txRunner, userRepo, referralRepo, investmentRepo)
	payoutService := services.NewPayoutService(txRunner, userRepo, referralRepo, ledgerRepo, treeService, cfg)
	activityService := services.NewActivityService(txRunner, userRepo, ledgerRepo, cfg)

	// Payout queue (3 worker, 50 buffer)
	payoutQueue := services.NewPayoutQueue(3, payoutService, 50)
	payoutQueue.Start()

	// Günlük compound scheduler'ı
	compoundScheduler := scheduler.New(investmentService)
	if err := compoundScheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("❌ Scheduler başlatılamadı")
	}

	// Handler katmanı
	investmentHandler := handlers.NewInvestmentHandler(investmentService, payoutQueue)
	referralHandler := handlers.NewReferralHandler(treeService, payoutQueue)
	packageHandler := handlers.NewPackageHandler(catalogService)
	activityHandler := handlers.NewActivityHandler(activityService)

	// Gorilla Mux Router Setup
	router := setupRouter(investmentHandler, referralHandler, packageHandler, activityHandler)

	// HTTP Server configuration
	serverAddr := ":" + cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown setup
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Server'ı goroutine'de başlat
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("addr", serverAddr).
			Msg("🌐 HTTP Server (Gorilla Mux) başlatıldı")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("❌ Server başlatma hatası")
		}
	}()

	// Shutdown signal'ını bekle
	<-shutdown
	log.Info().Msg("🛑 Shutdown signal alındı, server kapatılıyor...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// 1. HTTP Server'ı kapat (aktif bağlantıları bekle)
	log.Info().Msg("📡 HTTP Server kapatılıyor...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("❌ HTTP Server kapatma hatası")
	} else {
		log.Info().Msg("✅ HTTP Server başarıyla kapatıldı")
	}

	// 2. Scheduler'ı durdur
	compoundScheduler.Stop()

	// 3. Payout queue'yu kapat
	payoutQueue.Stop()

	log.Info().Msg("👋 Yatırım API'si başarıyla kapatıldı")
}

// setupRouter Gorilla Mux router'ını ayarlar
func setupRouter(
	investmentHandler *handlers.InvestmentHandler,
	referralHandler *handlers.ReferralHandler,
	packageHandler *handlers.PackageHandler,
	activityHandler *handlers.ActivityHandler,
) *mux.Router {
	router := mux.NewRouter()

	// Global middleware zinciri
	rateLimiter := middleware.NewRateLimitMiddleware(middleware.DefaultRateLimitConfig())
	router.Use(middleware.RecoveryMiddleware)
	router.Use(middleware.RequestLoggingMiddleware)
	router.Use(middleware.CORSMiddleware(middleware.DefaultCORSConfig()))
	router.Use(rateLimiter.Handler())

	// Health check
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// API v1 subrouter
	api := router.PathPrefix("/api/v1").Subrouter()

	// Public endpoints
	api.HandleFunc("/packages", packageHandler.List).Methods("GET")

	// Protected endpoints (Authentication required)
	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.AuthMiddleware)

	// Investment endpoints
	investments := protected.PathPrefix("/investments").Subrouter()
	investments.HandleFunc("", investmentHandler.Create).Methods("POST")
	investments.HandleFunc("", investmentHandler.List).Methods("GET")
	investments.HandleFunc("/active", investmentHandler.GetActive).Methods("GET")
	investments.HandleFunc("/cancel", investmentHandler.Cancel).Methods("POST")

	// Referral/tree endpoints
	referrals := protected.PathPrefix("/referrals").Subrouter()
	referrals.HandleFunc("/place", referralHandler.Place).Methods("POST")
	referrals.HandleFunc("/tree", referralHandler.GetTree).Methods("GET")
	referrals.HandleFunc("/stats", referralHandler.GetStats).Methods("GET")
	referrals.HandleFunc("/upline", referralHandler.GetUpline).Methods("GET")

	// Balance/activity endpoints
	balances := protected.PathPrefix("/balances").Subrouter()
	balances.HandleFunc("", activityHandler.GetBalances).Methods("GET")
	balances.HandleFunc("/transfer", activityHandler.Transfer).Methods("POST")
	balances.HandleFunc("/withdraw", activityHandler.Withdraw).Methods("POST")

	// Transaction history
	protected.HandleFunc("/transactions", activityHandler.GetHistory).Methods("GET")

	// Admin/ops endpoints
	admin := protected.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/packages", packageHandler.Create).Methods("POST")
	admin.HandleFunc("/packages/{id:[0-9]+}", packageHandler.Update).Methods("PUT")
	admin.HandleFunc("/packages/{id:[0-9]+}", packageHandler.Delete).Methods("DELETE")
	admin.HandleFunc("/compound", investmentHandler.Compound).Methods("POST")

	// Route listesini log'la (development için)
	router.Walk(func(route *mux.Route, router *mux.Router, ancestors []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err == nil {
			methods, _ := route.GetMethods()
			log.Debug().
				Str("path", pathTemplate).
				Strs("methods", methods).
				Msg("📍 Route registered")
		}
		return nil
	})

	return router
}
