package main

import (
	"encoding/json"
	stdlog "log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/username/investinghurdle/backend/src/config"
	"github.com/username/investinghurdle/backend/src/handlers"
	"github.com/username/investinghurdle/backend/src/logger"
	"github.com/username/investinghurdle/backend/src/services"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("InvestingHurdle backend server starting...")

	logger.L.Info("Initializing report cache...",
		"ttl", config.Cfg.ReportCacheTTL.String(), "cleanup", config.Cfg.ReportCacheCleanup.String())
	reportCache := cache.New(config.Cfg.ReportCacheTTL, config.Cfg.ReportCacheCleanup)

	logger.L.Info("Initializing services and handlers...")
	calculationService := services.NewCalculationService(reportCache)
	calculationHandler := handlers.NewCalculationHandler(calculationService)

	logger.L.Info("Configuring routes...")
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(rateLimitMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   config.Cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Length", "X-API-Key"},
		ExposedHeaders:   []string{"ETag", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"message": "InvestingHurdle backend is running"})
	})
	r.Get("/api/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(handlers.APIKeyMiddleware(config.Cfg.APIKey))
		r.Post("/api/calculate", calculationHandler.HandleCalculate)
		r.Post("/api/calculate/export/csv", calculationHandler.HandleExportCSV)
		r.Post("/api/calculate/export/xlsx", calculationHandler.HandleExportXLSX)
		r.Get("/api/quarters", calculationHandler.HandleGetQuarters)
	})

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	} else if err == http.ErrServerClosed {
		logger.L.Info("Server stopped gracefully.")
	}
}
